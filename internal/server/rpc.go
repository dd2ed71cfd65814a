package server

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"

	"github.com/fjglira/visualtestgen/internal/domain"
)

// ProtocolVersion is the protocol revision reported by initialize.
const ProtocolVersion = "2024-11-05"

// JSON-RPC 2.0 error codes.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
)

// maxMessageSize bounds a single newline-delimited message.
const maxMessageSize = 16 << 20

// rpcRequest represents a JSON-RPC request or notification.
type rpcRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// rpcResponse represents a JSON-RPC response.
type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

// rpcError represents an error in a JSON-RPC response.
type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

type toolDescriptor struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

type callParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// Serve reads newline-delimited JSON-RPC messages from r and writes one
// response line per request to w. Requests are handled in arrival order.
// It returns nil at end of input and ctx.Err() when ctx is cancelled.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	lines := make(chan []byte)
	readErr := make(chan error, 1)

	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), maxMessageSize)
		for scanner.Scan() {
			line := bytes.TrimSpace(scanner.Bytes())
			if len(line) == 0 {
				continue
			}
			msg := append([]byte(nil), line...)
			select {
			case lines <- msg:
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	enc := json.NewEncoder(w)
	s.log.Infof("Serving %s %s on stdio", s.info.Name, s.info.Version)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-readErr:
					return err
				default:
					return ctx.Err()
				}
			}
			resp := s.handleMessage(ctx, line)
			if resp == nil {
				continue
			}
			if err := enc.Encode(resp); err != nil {
				return domain.NewError("write", "", 0, "failed to write response", err)
			}
		}
	}
}

// handleMessage processes one raw message. It returns nil for notifications.
func (s *Server) handleMessage(ctx context.Context, line []byte) *rpcResponse {
	var req rpcRequest
	if err := json.Unmarshal(line, &req); err != nil {
		s.log.WithError(err).Warn("Failed to parse JSON-RPC message")
		return errorResponse(nil, CodeParseError, "parse error", err.Error())
	}

	log := s.log.WithField("method", req.Method)
	log.Debug("Received request")

	if req.JSONRPC != "2.0" || req.Method == "" {
		if isNotification(req.ID) {
			return nil
		}
		return errorResponse(req.ID, CodeInvalidRequest, "invalid request", nil)
	}

	result, rerr := s.dispatch(ctx, req)
	if isNotification(req.ID) {
		return nil
	}
	if rerr != nil {
		log.WithField("code", rerr.Code).Debug(rerr.Message)
		return &rpcResponse{JSONRPC: "2.0", ID: req.ID, Error: rerr}
	}
	return &rpcResponse{JSONRPC: "2.0", ID: req.ID, Result: result}
}

func (s *Server) dispatch(ctx context.Context, req rpcRequest) (any, *rpcError) {
	switch req.Method {
	case "initialize":
		return map[string]any{
			"protocolVersion": ProtocolVersion,
			"capabilities": map[string]any{
				"tools": map[string]any{},
			},
			"serverInfo": s.info,
		}, nil

	case "notifications/initialized", "initialized", "ping":
		return map[string]any{}, nil

	case "tools/list":
		tools := s.registry.List()
		out := make([]toolDescriptor, len(tools))
		for i, t := range tools {
			out[i] = toolDescriptor{Name: t.Name, Description: t.Description, InputSchema: t.InputSchema}
		}
		return map[string]any{"tools": out}, nil

	case "tools/call":
		var params callParams
		if len(req.Params) > 0 {
			if err := json.Unmarshal(req.Params, &params); err != nil {
				return nil, &rpcError{Code: CodeInvalidParams, Message: "invalid params", Data: err.Error()}
			}
		}
		res, err := s.Invoke(ctx, params.Name, params.Arguments)
		if err != nil {
			return nil, toRPCError(err)
		}
		return res, nil

	default:
		return nil, &rpcError{Code: CodeMethodNotFound, Message: "method not found: " + req.Method}
	}
}

// toRPCError maps invocation errors to JSON-RPC codes.
func toRPCError(err error) *rpcError {
	switch {
	case errors.Is(err, domain.ErrMissingArgument),
		errors.Is(err, domain.ErrMalformedInput),
		errors.Is(err, ErrUnknownTool):
		return &rpcError{Code: CodeInvalidParams, Message: err.Error()}
	default:
		return &rpcError{Code: CodeInternalError, Message: err.Error()}
	}
}

func errorResponse(id json.RawMessage, code int, message string, data any) *rpcResponse {
	return &rpcResponse{JSONRPC: "2.0", ID: id, Error: &rpcError{Code: code, Message: message, Data: data}}
}

func isNotification(id json.RawMessage) bool {
	return len(id) == 0
}

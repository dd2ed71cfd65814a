// Package server exposes the generator as named tools over a JSON-RPC 2.0
// stdio transport.
package server

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ErrUnknownTool is wrapped when an invocation names no registered tool.
var ErrUnknownTool = errors.New("unknown tool")

// Content is one block of tool output.
type Content struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Result is the structured result of a tool invocation.
type Result struct {
	Content []Content `json:"content"`
}

// TextResult wraps text in a single-block Result.
func TextResult(text string) *Result {
	return &Result{Content: []Content{{Type: "text", Text: text}}}
}

// Handler runs a tool with decoded JSON arguments.
type Handler func(ctx context.Context, args map[string]any) (*Result, error)

// Tool is a named operation callable through Invoke.
type Tool struct {
	Name        string
	Aliases     []string
	Description string
	InputSchema map[string]any
	Handler     Handler
}

// ToolRegistry maps tool names and aliases to tools.
type ToolRegistry interface {
	Register(tool Tool)
	Lookup(name string) (Tool, bool)
	List() []Tool
}

// DefaultToolRegistry is a thread-safe ToolRegistry.
type DefaultToolRegistry struct {
	mu    sync.RWMutex
	tools map[string]Tool
	names map[string]string // name or alias -> canonical name
}

// NewToolRegistry creates an empty DefaultToolRegistry.
func NewToolRegistry() *DefaultToolRegistry {
	return &DefaultToolRegistry{
		tools: make(map[string]Tool),
		names: make(map[string]string),
	}
}

// Register adds a tool under its name and aliases. A later registration
// replaces an earlier one with the same name.
func (r *DefaultToolRegistry) Register(t Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[t.Name] = t
	r.names[t.Name] = t.Name
	for _, a := range t.Aliases {
		r.names[a] = t.Name
	}
}

// Lookup returns the tool registered under name or one of its aliases.
func (r *DefaultToolRegistry) Lookup(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	canonical, ok := r.names[strings.TrimSpace(name)]
	if !ok {
		return Tool{}, false
	}
	t, ok := r.tools[canonical]
	return t, ok
}

// List returns the registered tools sorted by name.
func (r *DefaultToolRegistry) List() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Tool, 0, len(r.tools))
	for _, t := range r.tools {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// stringArg returns args[key] when it is a string. present is false when the
// key is absent or null.
func stringArg(args map[string]any, key string) (value string, present bool, err error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return "", false, nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", true, fmt.Errorf("argument %q must be a string, got %T", key, raw)
	}
	return s, true, nil
}

// boolArg returns args[key] as a *bool, nil when absent.
func boolArg(args map[string]any, key string) (*bool, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return nil, nil
	}
	switch v := raw.(type) {
	case bool:
		return &v, nil
	case string:
		switch strings.ToLower(v) {
		case "true", "yes", "1":
			b := true
			return &b, nil
		case "false", "no", "0":
			b := false
			return &b, nil
		}
	}
	return nil, fmt.Errorf("argument %q must be a boolean, got %v", key, raw)
}

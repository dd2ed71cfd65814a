package server_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/fjglira/visualtestgen/internal/config"
	"github.com/fjglira/visualtestgen/internal/domain"
	"github.com/fjglira/visualtestgen/internal/generator"
	"github.com/fjglira/visualtestgen/internal/server"
)

const scenarioCSV = "file_name,test_url,test_description,test_selector,test_hide,test_action\npdp,https://x,Full Page,body,.modal,\n"

// countingGenerator records calls and delegates to a real generator.
type countingGenerator struct {
	calls int
	last  generator.Request
	next  generator.Generator
}

func (c *countingGenerator) Generate(ctx context.Context, req generator.Request) (*domain.Artifact, error) {
	c.calls++
	c.last = req
	return c.next.Generate(ctx, req)
}

func newServer() (*server.Server, *countingGenerator) {
	log, _ := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	gen, err := generator.New(config.DefaultConfig(), log)
	Expect(err).ToNot(HaveOccurred())
	counting := &countingGenerator{next: gen}
	return server.New(server.Info{Name: "test", Version: "0.0.1"}, counting, log), counting
}

var _ = Describe("Invoke", func() {
	var (
		srv *server.Server
		gen *countingGenerator
		ctx context.Context
	)

	BeforeEach(func() {
		srv, gen = newServer()
		ctx = context.Background()
	})

	It("should return the composed text", func() {
		res, err := srv.Invoke(ctx, server.ToolGenerate, map[string]any{"csvData": scenarioCSV})
		Expect(err).ToNot(HaveOccurred())
		Expect(res.Content).To(HaveLen(1))
		Expect(res.Content[0].Type).To(Equal("text"))
		Expect(res.Content[0].Text).To(ContainSubstring("@fullpage-tag"))
		Expect(gen.last.ID).ToNot(BeEmpty())
	})

	It("should accept the alias", func() {
		_, err := srv.Invoke(ctx, server.ToolGenerateAlias, map[string]any{"csvData": scenarioCSV})
		Expect(err).ToNot(HaveOccurred())
	})

	It("should fail with MissingArgument before generating", func() {
		res, err := srv.Invoke(ctx, server.ToolGenerate, map[string]any{})
		Expect(res).To(BeNil())
		Expect(errors.Is(err, domain.ErrMissingArgument)).To(BeTrue())
		Expect(gen.calls).To(BeZero())
	})

	It("should treat nil arguments and empty csvData as missing", func() {
		_, err := srv.Invoke(ctx, server.ToolGenerate, nil)
		Expect(errors.Is(err, domain.ErrMissingArgument)).To(BeTrue())
		_, err = srv.Invoke(ctx, server.ToolGenerate, map[string]any{"csvData": ""})
		Expect(errors.Is(err, domain.ErrMissingArgument)).To(BeTrue())
		Expect(gen.calls).To(BeZero())
	})

	It("should reject a non-string csvData", func() {
		_, err := srv.Invoke(ctx, server.ToolGenerate, map[string]any{"csvData": 42})
		Expect(errors.Is(err, domain.ErrMalformedInput)).To(BeTrue())
	})

	It("should report whitespace-only csvData as malformed", func() {
		_, err := srv.Invoke(ctx, server.ToolGenerate, map[string]any{"csvData": "  \n "})
		Expect(errors.Is(err, domain.ErrMalformedInput)).To(BeTrue())
	})

	It("should pass options through", func() {
		_, err := srv.Invoke(ctx, server.ToolGenerate, map[string]any{
			"csvData": scenarioCSV, "includeLocators": false, "includeTestData": "true", "representative": "all",
		})
		Expect(err).ToNot(HaveOccurred())
		Expect(*gen.last.Locators).To(BeFalse())
		Expect(*gen.last.TestData).To(BeTrue())
		Expect(gen.last.Representative).To(Equal("all"))
	})

	It("should reject invalid option types", func() {
		_, err := srv.Invoke(ctx, server.ToolGenerate, map[string]any{"csvData": scenarioCSV, "includeLocators": "maybe"})
		Expect(err).To(HaveOccurred())
		Expect(gen.calls).To(BeZero())
	})

	It("should fail for unknown tools", func() {
		_, err := srv.Invoke(ctx, "nope", nil)
		Expect(errors.Is(err, server.ErrUnknownTool)).To(BeTrue())
	})

	It("should list tools and commands", func() {
		res, err := srv.Invoke(ctx, server.ToolListTools, nil)
		Expect(err).ToNot(HaveOccurred())
		Expect(res.Content[0].Text).To(ContainSubstring("`generateVisualTests` (also `create_playwright_visual_tests`)"))
		Expect(res.Content[0].Text).To(ContainSubstring("`list_commands`"))

		res, err = srv.Invoke(ctx, server.ToolListCommands, nil)
		Expect(err).ToNot(HaveOccurred())
		Expect(res.Content[0].Text).To(ContainSubstring("npx playwright test"))
		Expect(gen.calls).To(BeZero())
	})
})

var _ = Describe("ToolRegistry", func() {
	It("should resolve names and aliases", func() {
		r := server.NewToolRegistry()
		r.Register(server.Tool{Name: "a", Aliases: []string{"b"}})
		r.Register(server.Tool{Name: "c"})

		t, ok := r.Lookup("b")
		Expect(ok).To(BeTrue())
		Expect(t.Name).To(Equal("a"))
		_, ok = r.Lookup("d")
		Expect(ok).To(BeFalse())
		Expect(r.List()).To(HaveLen(2))
		Expect(r.List()[0].Name).To(Equal("a"))
	})
})

// response mirrors the wire format for assertions.
type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func serve(input string) []response {
	srv, _ := newServer()
	var out bytes.Buffer
	Expect(srv.Serve(context.Background(), strings.NewReader(input), &out)).To(Succeed())

	var responses []response
	scanner := bufio.NewScanner(&out)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<24)
	for scanner.Scan() {
		var r response
		Expect(json.Unmarshal(scanner.Bytes(), &r)).To(Succeed())
		responses = append(responses, r)
	}
	return responses
}

func call(id int, params any) string {
	msg, err := json.Marshal(map[string]any{"jsonrpc": "2.0", "id": id, "method": "tools/call", "params": params})
	Expect(err).ToNot(HaveOccurred())
	return string(msg) + "\n"
}

var _ = Describe("Serve", func() {
	It("should complete the initialize handshake", func() {
		responses := serve(`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}` + "\n" +
			`{"jsonrpc":"2.0","method":"notifications/initialized"}` + "\n" +
			`{"jsonrpc":"2.0","id":2,"method":"ping"}` + "\n")
		Expect(responses).To(HaveLen(2))
		Expect(string(responses[0].ID)).To(Equal("1"))
		Expect(string(responses[0].Result)).To(ContainSubstring(`"serverInfo":{"name":"test","version":"0.0.1"}`))
		Expect(string(responses[1].ID)).To(Equal("2"))
		Expect(responses[1].Error).To(BeNil())
	})

	It("should list tools with schemas", func() {
		responses := serve(`{"jsonrpc":"2.0","id":"a","method":"tools/list"}` + "\n")
		Expect(responses).To(HaveLen(1))
		Expect(string(responses[0].ID)).To(Equal(`"a"`))
		Expect(string(responses[0].Result)).To(ContainSubstring(`"name":"generateVisualTests"`))
		Expect(string(responses[0].Result)).To(ContainSubstring(`"required":["csvData"]`))
	})

	It("should return generated text from tools/call", func() {
		responses := serve(call(3, map[string]any{"name": "generateVisualTests", "arguments": map[string]any{"csvData": scenarioCSV}}))
		Expect(responses).To(HaveLen(1))
		Expect(responses[0].Error).To(BeNil())

		var res server.Result
		Expect(json.Unmarshal(responses[0].Result, &res)).To(Succeed())
		Expect(res.Content[0].Text).To(ContainSubstring("for (const selector of ["))
	})

	It("should map a missing csvData to invalid params without content", func() {
		responses := serve(call(4, map[string]any{"name": "generateVisualTests", "arguments": map[string]any{}}))
		Expect(responses).To(HaveLen(1))
		Expect(responses[0].Error).ToNot(BeNil())
		Expect(responses[0].Error.Code).To(Equal(server.CodeInvalidParams))
		Expect(responses[0].Result).To(BeEmpty())
	})

	It("should map unknown tools to invalid params", func() {
		responses := serve(call(5, map[string]any{"name": "nope"}))
		Expect(responses[0].Error.Code).To(Equal(server.CodeInvalidParams))
	})

	It("should report parse errors and unknown methods", func() {
		responses := serve("{not json}\n" + `{"jsonrpc":"2.0","id":6,"method":"resources/list"}` + "\n")
		Expect(responses).To(HaveLen(2))
		Expect(responses[0].Error.Code).To(Equal(server.CodeParseError))
		Expect(string(responses[0].ID)).To(Equal("null"))
		Expect(responses[1].Error.Code).To(Equal(server.CodeMethodNotFound))
	})

	It("should reject requests without the protocol version", func() {
		responses := serve(`{"id":7,"method":"ping"}` + "\n")
		Expect(responses[0].Error.Code).To(Equal(server.CodeInvalidRequest))
	})

	It("should skip blank lines", func() {
		Expect(serve("\n\n   \n")).To(BeEmpty())
	})

	It("should stop when the context is cancelled", func() {
		srv, _ := newServer()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		reader, writer := io.Pipe()
		defer writer.Close()
		Expect(srv.Serve(ctx, reader, &bytes.Buffer{})).To(MatchError(context.Canceled))
	})
})

package llm_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/Alpha-Sight/propellantBE/common/llm"
)

const toolCallCompletion = `{
  "id": "chatcmpl-1",
  "object": "chat.completion",
  "created": 1700000000,
  "model": "test-model",
  "choices": [{
    "index": 0,
    "finish_reason": "tool_calls",
    "message": {
      "role": "assistant",
      "content": null,
      "tool_calls": [{
        "id": "call_1",
        "type": "function",
        "function": {"name": "provide_edited_cv", "arguments": "{\"skills\":[\"Go\"]}"}
      }]
    }
  }],
  "usage": {"prompt_tokens": 12, "completion_tokens": 7, "total_tokens": 19}
}`

type capturedRequest struct {
	Authorization string
	Body          map[string]any
}

var _ = Describe("Client", func() {
	var (
		server   *httptest.Server
		calls    atomic.Int32
		captured capturedRequest
		status   int
		body     string
	)

	newClient := func() llm.Client {
		c, err := llm.New(llm.Config{
			APIKey:  "sk-test",
			BaseURL: server.URL + "/v1",
			Model:   "test-model",
		})
		Expect(err).NotTo(HaveOccurred())
		return c
	}

	BeforeEach(func() {
		calls.Store(0)
		captured = capturedRequest{}
		status = http.StatusOK
		body = toolCallCompletion

		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			defer GinkgoRecover()
			Expect(r.URL.Path).To(HaveSuffix("/chat/completions"))

			captured.Authorization = r.Header.Get("Authorization")
			raw, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(raw, &captured.Body)

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			_, _ = w.Write([]byte(body))
		}))
		DeferCleanup(server.Close)
	})

	It("requires an API key", func() {
		c, err := llm.New(llm.Config{Model: "m"})
		Expect(err).To(MatchError(ContainSubstring("API key is required")))
		Expect(c).To(BeNil())
	})

	It("requires a model", func() {
		_, err := llm.New(llm.Config{APIKey: "k"})
		Expect(err).To(MatchError(ContainSubstring("model is required")))
	})

	It("sends one bearer-authenticated request with the model and a user message", func() {
		resp, err := newClient().Complete(context.Background(), llm.Request{
			Messages: []llm.Message{llm.UserMessage("rewrite this")},
			Tools: []llm.Tool{{
				Name:        "provide_edited_cv",
				Description: "Return the edited CV",
				Parameters:  map[string]any{"type": "object"},
			}},
		})
		Expect(err).NotTo(HaveOccurred())

		Expect(calls.Load()).To(Equal(int32(1)))
		Expect(captured.Authorization).To(Equal("Bearer sk-test"))
		Expect(captured.Body["model"]).To(Equal("test-model"))

		messages, ok := captured.Body["messages"].([]any)
		Expect(ok).To(BeTrue())
		Expect(messages).To(HaveLen(1))
		Expect(messages[0]).To(HaveKeyWithValue("role", "user"))
		Expect(messages[0]).To(HaveKeyWithValue("content", "rewrite this"))
		Expect(captured.Body["tools"]).To(HaveLen(1))

		Expect(resp.PromptTokens).To(Equal(12))
		Expect(resp.CompletionTokens).To(Equal(7))
		tc, found := resp.FindToolCall("provide_edited_cv")
		Expect(found).To(BeTrue())
		Expect(tc.Arguments).To(MatchJSON(`{"skills":["Go"]}`))
	})

	It("reports non-success statuses as upstream errors without retrying", func() {
		status = http.StatusInternalServerError
		body = `{"error":{"message":"boom","type":"server_error"}}`

		_, err := newClient().Complete(context.Background(), llm.Request{
			Messages: []llm.Message{llm.UserMessage("x")},
		})

		Expect(errors.Is(err, llm.ErrUpstream)).To(BeTrue())
		Expect(err.Error()).To(ContainSubstring("status 500"))
		Expect(calls.Load()).To(Equal(int32(1)))
	})

	It("reports rate limiting as an upstream error", func() {
		status = http.StatusTooManyRequests
		body = `{"error":{"message":"slow down","type":"rate_limit"}}`

		_, err := newClient().Complete(context.Background(), llm.Request{
			Messages: []llm.Message{llm.UserMessage("x")},
		})

		Expect(errors.Is(err, llm.ErrUpstream)).To(BeTrue())
		Expect(calls.Load()).To(Equal(int32(1)))
	})

	It("reports transport failures as network errors", func() {
		c := newClient()
		server.Close()

		_, err := c.Complete(context.Background(), llm.Request{
			Messages: []llm.Message{llm.UserMessage("x")},
		})

		Expect(errors.Is(err, llm.ErrNetwork)).To(BeTrue())
		Expect(errors.Is(err, llm.ErrUpstream)).To(BeFalse())
	})

	It("rejects non-user roles without calling the provider", func() {
		_, err := newClient().Complete(context.Background(), llm.Request{
			Messages: []llm.Message{{Role: "system", Content: "x"}},
		})

		Expect(err).To(MatchError(ContainSubstring(`unsupported message role "system"`)))
		Expect(calls.Load()).To(BeZero())
	})

	It("treats an empty choice list as an upstream error", func() {
		body = `{"id":"x","object":"chat.completion","created":1,"model":"m","choices":[]}`

		_, err := newClient().Complete(context.Background(), llm.Request{
			Messages: []llm.Message{llm.UserMessage("x")},
		})

		Expect(errors.Is(err, llm.ErrUpstream)).To(BeTrue())
	})
})

var _ = Describe("StripCodeFence", func() {
	DescribeTable("removes markdown fences",
		func(input, expected string) {
			Expect(llm.StripCodeFence(input)).To(Equal(expected))
		},
		Entry("plain json unchanged", `{"a":1}`, `{"a":1}`),
		Entry("json fence", "```json\n{\"a\":1}\n```", `{"a":1}`),
		Entry("bare fence", "```\n{\"a\":1}\n```", `{"a":1}`),
		Entry("surrounding whitespace", "  \n{\"a\":1}\n ", `{"a":1}`),
	)
})

var _ = Describe("GenerateSchema", func() {
	type sample struct {
		Name   string   `json:"name"`
		Skills []string `json:"skills"`
	}

	It("inlines properties without references", func() {
		raw, err := json.Marshal(llm.GenerateSchema[sample]())
		Expect(err).NotTo(HaveOccurred())
		Expect(string(raw)).To(ContainSubstring(`"skills"`))
		Expect(strings.Contains(string(raw), `"$ref"`)).To(BeFalse())
	})
})

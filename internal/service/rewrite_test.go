package service_test

import (
	"context"
	"encoding/json"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/Alpha-Sight/propellantBE/common/llm"
	"github.com/Alpha-Sight/propellantBE/internal/model"
	"github.com/Alpha-Sight/propellantBE/internal/service"
)

var _ = Describe("RewriteService", func() {
	var (
		ctx    context.Context
		client *mockLLMClient
		svc    service.RewriteService
		req    model.CVAnalysisRequest
	)

	BeforeEach(func() {
		ctx = context.Background()
		client = &mockLLMClient{}
		svc = service.NewRewriteService(client)
		req = model.CVAnalysisRequest{
			ResumeText:     "Worked at Acme as Engineer",
			JobDescription: "Senior Engineer role",
			Skills:         map[string]string{"Go": "5 years"},
		}
	})

	It("sends one user message carrying the prompt and the edit tool", func() {
		client.completeFn = func(_ context.Context, _ llm.Request) (*llm.Response, error) {
			return &llm.Response{ToolCalls: []llm.ToolCall{{
				Name:      "provide_edited_cv",
				Arguments: `{"work_experience":[],"skills":["Go"],"professional_summary":"Engineer"}`,
			}}}, nil
		}

		_, err := svc.Rewrite(ctx, req, model.Rules{"tone": "formal"})
		Expect(err).NotTo(HaveOccurred())

		Expect(client.requests).To(HaveLen(1))
		sent := client.requests[0]
		Expect(sent.Messages).To(HaveLen(1))
		Expect(sent.Messages[0].Role).To(Equal("user"))
		Expect(sent.Messages[0].Content).To(Equal(service.BuildPrompt(req, model.Rules{"tone": "formal"})))
		Expect(sent.Tools).To(HaveLen(1))
		Expect(sent.Tools[0].Name).To(Equal("provide_edited_cv"))
		Expect(sent.Tools[0].Parameters).NotTo(BeNil())
	})

	It("normalizes tool call arguments", func() {
		client.completeFn = func(_ context.Context, _ llm.Request) (*llm.Response, error) {
			return &llm.Response{
				ToolCalls: []llm.ToolCall{{
					Name:      "provide_edited_cv",
					Arguments: `{"work_experience":[{"company_name":"Acme","job_title":"Engineer","duration":"2019-2024"}],"professional_summary":"Engineer"}`,
				}},
				PromptTokens:     120,
				CompletionTokens: 80,
			}, nil
		}

		result, err := svc.Rewrite(ctx, req, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Model).To(Equal("test-model"))
		Expect(result.PromptTokens).To(Equal(120))
		Expect(result.CompletionTokens).To(Equal(80))

		var cv model.EditedCV
		Expect(json.Unmarshal(result.Content, &cv)).To(Succeed())
		Expect(cv.WorkExperience).To(HaveLen(1))
		Expect(cv.WorkExperience[0].CompanyName).To(Equal("Acme"))
		Expect(string(result.Content)).To(ContainSubstring(`"duties":[]`))
		Expect(string(result.Content)).To(ContainSubstring(`"skills":[]`))
	})

	It("falls back to fenced message content", func() {
		client.completeFn = func(_ context.Context, _ llm.Request) (*llm.Response, error) {
			return &llm.Response{Content: "```json\n{\"skills\":[\"Go\"]}\n```"}, nil
		}

		result, err := svc.Rewrite(ctx, req, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(result.Content)).To(MatchJSON(`{"work_experience":[],"skills":["Go"],"professional_summary":""}`))
	})

	It("passes other JSON shapes through untouched", func() {
		client.completeFn = func(_ context.Context, _ llm.Request) (*llm.Response, error) {
			return &llm.Response{Content: `{"summary":"x","extra":[1,2]}`}, nil
		}

		result, err := svc.Rewrite(ctx, req, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(result.Content)).To(Equal(`{"summary":"x","extra":[1,2]}`))
	})

	It("rejects empty and non-JSON answers as upstream errors", func() {
		client.completeFn = func(_ context.Context, _ llm.Request) (*llm.Response, error) {
			return &llm.Response{Content: "Sure! Here is your CV."}, nil
		}
		_, err := svc.Rewrite(ctx, req, nil)
		Expect(errors.Is(err, service.ErrUpstream)).To(BeTrue())

		client.completeFn = func(_ context.Context, _ llm.Request) (*llm.Response, error) {
			return &llm.Response{}, nil
		}
		_, err = svc.Rewrite(ctx, req, nil)
		Expect(errors.Is(err, service.ErrUpstream)).To(BeTrue())
	})

	It("maps provider failures to service error kinds", func() {
		client.completeFn = func(_ context.Context, _ llm.Request) (*llm.Response, error) {
			return nil, errors.Join(llm.ErrUpstream, errors.New("status 500"))
		}
		_, err := svc.Rewrite(ctx, req, nil)
		Expect(errors.Is(err, service.ErrUpstream)).To(BeTrue())
		Expect(errors.Is(err, service.ErrNetwork)).To(BeFalse())

		client.completeFn = func(_ context.Context, _ llm.Request) (*llm.Response, error) {
			return nil, errors.Join(llm.ErrNetwork, errors.New("connection refused"))
		}
		_, err = svc.Rewrite(ctx, req, nil)
		Expect(errors.Is(err, service.ErrNetwork)).To(BeTrue())
		Expect(errors.Is(err, service.ErrUpstream)).To(BeTrue())

		Expect(client.requests).To(HaveLen(2))
	})
})

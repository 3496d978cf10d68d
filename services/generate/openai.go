package generate

import (
	"context"
	"fmt"

	"playbook-controlplane/pkg/config"

	openai "github.com/sashabaranov/go-openai"
)

const systemPrompt = "You are an expert Ansible playbook developer. Generate only valid YAML playbooks."

type openAIProvider struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
}

func NewOpenAIProvider(cfg *config.Config) Provider {
	return &openAIProvider{
		client:      openai.NewClient(cfg.LLM.OpenAI.APIKey),
		model:       cfg.LLM.OpenAI.Model,
		maxTokens:   cfg.LLM.MaxTokens,
		temperature: float32(cfg.LLM.Temperature),
	}
}

func (p *openAIProvider) Name() string { return "openai" }

func (p *openAIProvider) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   p.maxTokens,
		Temperature: p.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("openai completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

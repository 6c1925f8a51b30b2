// Package llm is the language-model tool service. Skills delegate
// summarization and categorization steps to it.
package llm

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/viant/skillet/model/types"
)

const name = "llm"

// DefaultModel is used when a step does not name a model.
const DefaultModel = openai.GPT4oMini

// Completer is the chat-completion surface the service depends on;
// *openai.Client satisfies it and tests inject a stub.
type Completer interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Service generates text with a chat-completion model.
type Service struct {
	completer Completer
	model     string
}

// Option customizes the llm service.
type Option func(*Service)

// WithCompleter overrides the completion backend.
func WithCompleter(completer Completer) Option {
	return func(s *Service) {
		s.completer = completer
	}
}

// WithModel overrides the default model.
func WithModel(model string) Option {
	return func(s *Service) {
		s.model = model
	}
}

// New creates an llm service talking to the given API endpoint.
func New(apiKey, baseURL string, options ...Option) *Service {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	ret := &Service{
		completer: openai.NewClientWithConfig(config),
		model:     DefaultModel,
	}
	for _, option := range options {
		option(ret)
	}
	return ret
}

// Name returns the service name
func (s *Service) Name() string {
	return name
}

// Methods returns the service methods
func (s *Service) Methods() types.Signatures {
	return []types.Signature{
		{
			Name:        "generate",
			Description: "Generates a completion for the given prompt.",
			Input:       reflect.TypeOf(&GenerateInput{}),
			Output:      reflect.TypeOf(&GenerateOutput{}),
		},
		{
			Name:        "summarize",
			Description: "Summarizes the given content in a few sentences.",
			Input:       reflect.TypeOf(&SummarizeInput{}),
			Output:      reflect.TypeOf(&GenerateOutput{}),
		},
	}
}

// Method returns the specified method
func (s *Service) Method(name string) (types.Executable, error) {
	switch strings.ToLower(name) {
	case "generate":
		return s.generate, nil
	case "summarize":
		return s.summarize, nil
	default:
		return nil, types.NewMethodNotFoundError(name)
	}
}

type GenerateInput struct {
	Prompt string `json:"prompt"`
	System string `json:"system,omitempty"`
	Model  string `json:"model,omitempty"`
}

type GenerateOutput struct {
	Content string `json:"content"`
	Model   string `json:"model,omitempty"`
}

type SummarizeInput struct {
	Content   string `json:"content"`
	Sentences int    `json:"sentences,omitempty"`
}

func (s *Service) generate(ctx context.Context, in, out interface{}) error {
	input, ok := in.(*GenerateInput)
	if !ok {
		return types.NewInvalidInputError(in)
	}
	output, ok := out.(*GenerateOutput)
	if !ok {
		return types.NewInvalidOutputError(out)
	}
	return s.complete(ctx, input.System, input.Prompt, input.Model, output)
}

func (s *Service) summarize(ctx context.Context, in, out interface{}) error {
	input, ok := in.(*SummarizeInput)
	if !ok {
		return types.NewInvalidInputError(in)
	}
	output, ok := out.(*GenerateOutput)
	if !ok {
		return types.NewInvalidOutputError(out)
	}
	sentences := input.Sentences
	if sentences <= 0 {
		sentences = 3
	}
	prompt := fmt.Sprintf("Summarize the following content in at most %d sentences:\n\n%s", sentences, input.Content)
	return s.complete(ctx, "You are a concise summarization assistant.", prompt, "", output)
}

func (s *Service) complete(ctx context.Context, system, prompt, model string, output *GenerateOutput) error {
	if prompt == "" {
		return fmt.Errorf("prompt was empty")
	}
	if model == "" {
		model = s.model
	}
	var messages []openai.ChatCompletionMessage
	if system != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: system})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: prompt})

	response, err := s.completer.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    model,
		Messages: messages,
	})
	if err != nil {
		return fmt.Errorf("completion failed: %w", err)
	}
	if len(response.Choices) == 0 {
		return fmt.Errorf("completion returned no choices")
	}
	output.Content = strings.TrimSpace(response.Choices[0].Message.Content)
	output.Model = model
	return nil
}

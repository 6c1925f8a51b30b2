package llm

import (
	"context"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
)

type stubCompleter struct {
	request openai.ChatCompletionRequest
	content string
	err     error
}

func (s *stubCompleter) CreateChatCompletion(_ context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	s.request = request
	if s.err != nil {
		return openai.ChatCompletionResponse{}, s.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: s.content}},
		},
	}, nil
}

func TestService_Generate(t *testing.T) {
	stub := &stubCompleter{content: "  generated text  "}
	service := New("", "", WithCompleter(stub))

	method, err := service.Method("generate")
	assert.Nil(t, err)

	output := &GenerateOutput{}
	err = method(context.Background(), &GenerateInput{Prompt: "say hi", System: "be brief"}, output)
	assert.Nil(t, err)
	assert.Equal(t, "generated text", output.Content)
	assert.Equal(t, DefaultModel, output.Model)
	assert.Equal(t, 2, len(stub.request.Messages))
	assert.Equal(t, openai.ChatMessageRoleSystem, stub.request.Messages[0].Role)
}

func TestService_Summarize(t *testing.T) {
	stub := &stubCompleter{content: "short summary"}
	service := New("", "", WithCompleter(stub), WithModel("custom-model"))

	method, err := service.Method("summarize")
	assert.Nil(t, err)

	output := &GenerateOutput{}
	err = method(context.Background(), &SummarizeInput{Content: "a very long article"}, output)
	assert.Nil(t, err)
	assert.Equal(t, "short summary", output.Content)
	assert.Equal(t, "custom-model", stub.request.Model)
	assert.Contains(t, stub.request.Messages[1].Content, "a very long article")
}

func TestService_GenerateEmptyPrompt(t *testing.T) {
	service := New("", "", WithCompleter(&stubCompleter{}))
	method, _ := service.Method("generate")
	err := method(context.Background(), &GenerateInput{}, &GenerateOutput{})
	assert.NotNil(t, err)
}

package news

import (
	"context"

	"github.com/openai/openai-go"
)

type stubChatClient struct {
	content string
	err     error
}

func (s stubChatClient) CreateChatCompletion(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &openai.ChatCompletion{
		Choices: []openai.ChatCompletionChoice{{
			Message: openai.ChatCompletionMessage{Content: s.content},
		}},
	}, nil
}

package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/smartcharts/coursetrack-engine/pkg/retry"
)

// OpenAIClient talks to any OpenAI-compatible chat completion endpoint.
type OpenAIClient struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

var _ ChatClient = (*OpenAIClient)(nil)

// NewOpenAIClient creates a client. baseURL may be empty for the default
// OpenAI endpoint; set it to target a compatible gateway.
func NewOpenAIClient(baseURL, model, apiKey string, logger *zap.Logger) (*OpenAIClient, error) {
	if model == "" {
		return nil, fmt.Errorf("model is required")
	}

	clientConfig := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		clientConfig.BaseURL = strings.TrimSuffix(baseURL, "/")
	}

	return &OpenAIClient{
		client: openai.NewClientWithConfig(clientConfig),
		model:  model,
		logger: logger.Named("llm-openai"),
	}, nil
}

func (c *OpenAIClient) Model() string { return c.model }

func (c *OpenAIClient) StreamChat(ctx context.Context, system string, messages []Message, onDelta func(string)) (string, error) {
	chatMessages := make([]openai.ChatCompletionMessage, 0, len(messages)+1)
	if system != "" {
		chatMessages = append(chatMessages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: system,
		})
	}
	for _, m := range messages {
		chatMessages = append(chatMessages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	req := openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: chatMessages,
		Stream:   true,
	}

	start := time.Now()

	// Opening the stream is the call that hits rate limits and gateway
	// hiccups, so only the open is retried, never the delta reads.
	var stream *openai.ChatCompletionStream
	err := retry.Do(ctx, retry.DefaultConfig(), func() error {
		var openErr error
		stream, openErr = c.client.CreateChatCompletionStream(ctx, req)
		if openErr != nil {
			c.logger.Warn("Chat stream failed to open", zap.Error(openErr))
		}
		return openErr
	})
	if err != nil {
		c.logger.Error("Chat stream failed to open", zap.Error(err))
		return "", fmt.Errorf("create chat stream: %w", err)
	}
	defer stream.Close()

	var sb strings.Builder
	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return sb.String(), fmt.Errorf("receive chat delta: %w", err)
		}
		if len(resp.Choices) == 0 {
			continue
		}
		delta := resp.Choices[0].Delta.Content
		if delta == "" {
			continue
		}
		sb.WriteString(delta)
		if onDelta != nil {
			onDelta(delta)
		}
	}

	c.logger.Debug("Chat stream completed",
		zap.Int("response_len", sb.Len()),
		zap.Duration("elapsed", time.Since(start)))
	return sb.String(), nil
}

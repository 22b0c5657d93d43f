package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/liushuangls/go-anthropic/v2"
	"go.uber.org/zap"

	"github.com/smartcharts/coursetrack-engine/pkg/retry"
)

const anthropicMaxTokens = 2048

// AnthropicClient talks to the Anthropic Messages API.
type AnthropicClient struct {
	client *anthropic.Client
	model  string
	logger *zap.Logger
}

var _ ChatClient = (*AnthropicClient)(nil)

// NewAnthropicClient creates a client. baseURL may be empty for the
// default endpoint.
func NewAnthropicClient(baseURL, model, apiKey string, logger *zap.Logger) (*AnthropicClient, error) {
	if model == "" {
		return nil, fmt.Errorf("model is required")
	}

	var opts []anthropic.ClientOption
	if baseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(strings.TrimSuffix(baseURL, "/")))
	}

	return &AnthropicClient{
		client: anthropic.NewClient(apiKey, opts...),
		model:  model,
		logger: logger.Named("llm-anthropic"),
	}, nil
}

func (c *AnthropicClient) Model() string { return c.model }

func (c *AnthropicClient) StreamChat(ctx context.Context, system string, messages []Message, onDelta func(string)) (string, error) {
	converted := make([]anthropic.Message, 0, len(messages))
	for _, m := range messages {
		role := anthropic.RoleUser
		if m.Role == RoleAssistant {
			role = anthropic.RoleAssistant
		}
		converted = append(converted, anthropic.Message{
			Role:    role,
			Content: []anthropic.MessageContent{anthropic.NewTextMessageContent(m.Content)},
		})
	}

	var sb strings.Builder
	start := time.Now()

	req := anthropic.MessagesStreamRequest{
		MessagesRequest: anthropic.MessagesRequest{
			Model:     anthropic.Model(c.model),
			System:    system,
			Messages:  converted,
			MaxTokens: anthropicMaxTokens,
		},
		OnContentBlockDelta: func(data anthropic.MessagesEventContentBlockDeltaData) {
			if data.Delta.Text == nil {
				return
			}
			sb.WriteString(*data.Delta.Text)
			if onDelta != nil {
				onDelta(*data.Delta.Text)
			}
		},
	}

	err := retry.Do(ctx, retry.DefaultConfig(), func() error {
		_, streamErr := c.client.CreateMessagesStream(ctx, req)
		if streamErr != nil {
			c.logger.Warn("Chat stream attempt failed", zap.Error(streamErr))
			if sb.Len() > 0 {
				// Once content has streamed, a rerun would duplicate it.
				return retry.Permanent(streamErr)
			}
		}
		return streamErr
	})
	if err != nil {
		c.logger.Error("Chat stream failed", zap.Error(err))
		return sb.String(), fmt.Errorf("anthropic chat stream: %w", err)
	}

	c.logger.Debug("Chat stream completed",
		zap.Int("response_len", sb.Len()),
		zap.Duration("elapsed", time.Since(start)))
	return sb.String(), nil
}

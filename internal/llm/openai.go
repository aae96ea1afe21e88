package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/pageza/recipepdf/config"
	"github.com/pageza/recipepdf/internal/types"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const defaultBaseBackoff = 500 * time.Millisecond

// contentGenerator is the part of a langchaingo model the adapter needs
type contentGenerator interface {
	GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error)
}

// OpenAI implements Model on top of langchaingo's OpenAI client
type OpenAI struct {
	llm         contentGenerator
	temperature float64
	limiter     *rate.Limiter
	maxRetries  int
	baseBackoff time.Duration
	logger      *zap.Logger
}

// NewOpenAI creates a chat model client from the LLM configuration
func NewOpenAI(cfg config.LLMConfig, logger *zap.Logger) (*OpenAI, error) {
	client, err := newClient(cfg)
	if err != nil {
		return nil, err
	}
	return newOpenAI(client, cfg, logger), nil
}

func newOpenAI(gen contentGenerator, cfg config.LLMConfig, logger *zap.Logger) *OpenAI {
	if logger == nil {
		logger = zap.NewNop()
	}
	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	return &OpenAI{
		llm:         gen,
		temperature: cfg.Temperature,
		limiter:     rate.NewLimiter(limit, burst),
		maxRetries:  cfg.MaxRetries,
		baseBackoff: defaultBaseBackoff,
		logger:      logger,
	}
}

// NewEmbedder creates an embedder that batches documents through the
// configured embedding model
func NewEmbedder(cfg config.LLMConfig, batchSize int) (*embeddings.EmbedderImpl, error) {
	client, err := newClient(cfg)
	if err != nil {
		return nil, err
	}
	opts := []embeddings.Option{embeddings.WithStripNewLines(false)}
	if batchSize > 0 {
		opts = append(opts, embeddings.WithBatchSize(batchSize))
	}
	embedder, err := embeddings.NewEmbedder(client, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}
	return embedder, nil
}

func newClient(cfg config.LLMConfig) (*openai.LLM, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai API key required")
	}
	opts := []openai.Option{
		openai.WithToken(cfg.APIKey),
		openai.WithModel(cfg.Model),
		openai.WithEmbeddingModel(cfg.EmbeddingModel),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, openai.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}))
	}
	client, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create openai client: %w", err)
	}
	return client, nil
}

// Complete sends the request to the model, waiting on the client side rate
// limiter and retrying transient failures with exponential backoff
func (o *OpenAI) Complete(ctx context.Context, req Request) (*Response, error) {
	if err := o.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limiter: %w", types.ErrModel, err)
	}

	messages := toMessageContent(req.Messages)
	opts := o.callOptions(req)

	var lastErr error
	for attempt := 0; attempt <= o.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := o.baseBackoff * time.Duration(1<<(attempt-1))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %w", types.ErrModel, ctx.Err())
			}
		}

		resp, err := o.llm.GenerateContent(ctx, messages, opts...)
		if err == nil {
			return fromContentResponse(resp)
		}

		lastErr = err
		if !isRetryable(err) {
			break
		}
		o.logger.Warn("model call failed, retrying",
			zap.Int("attempt", attempt+1),
			zap.Error(err))
	}

	return nil, fmt.Errorf("%w: %w", types.ErrModel, lastErr)
}

func (o *OpenAI) callOptions(req Request) []llms.CallOption {
	temperature := req.Temperature
	if temperature == 0 {
		temperature = o.temperature
	}
	opts := []llms.CallOption{llms.WithTemperature(temperature)}
	if req.JSON {
		opts = append(opts, llms.WithJSONMode())
	}
	if len(req.Tools) > 0 {
		opts = append(opts, llms.WithTools(toTools(req.Tools)))
	}
	return opts
}

func isRetryable(err error) bool {
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

func toMessageContent(msgs []Message) []llms.MessageContent {
	out := make([]llms.MessageContent, 0, len(msgs))
	for _, m := range msgs {
		switch m.Role {
		case RoleSystem:
			out = append(out, llms.TextParts(llms.ChatMessageTypeSystem, m.Text))
		case RoleAssistant:
			mc := llms.MessageContent{Role: llms.ChatMessageTypeAI}
			if m.Text != "" {
				mc.Parts = append(mc.Parts, llms.TextPart(m.Text))
			}
			for _, tc := range m.ToolCalls {
				mc.Parts = append(mc.Parts, llms.ToolCall{
					ID:   tc.ID,
					Type: "function",
					FunctionCall: &llms.FunctionCall{
						Name:      tc.Name,
						Arguments: tc.Arguments,
					},
				})
			}
			out = append(out, mc)
		case RoleTool:
			out = append(out, llms.MessageContent{
				Role: llms.ChatMessageTypeTool,
				Parts: []llms.ContentPart{llms.ToolCallResponse{
					ToolCallID: m.ToolCallID,
					Name:       m.ToolName,
					Content:    m.Text,
				}},
			})
		default:
			mc := llms.MessageContent{Role: llms.ChatMessageTypeHuman}
			for _, a := range m.Attachments {
				mc.Parts = append(mc.Parts, llms.BinaryPart(a.MIMEType, a.Data))
			}
			mc.Parts = append(mc.Parts, llms.TextPart(m.Text))
			out = append(out, mc)
		}
	}
	return out
}

func toTools(tools []Tool) []llms.Tool {
	out := make([]llms.Tool, len(tools))
	for i, t := range tools {
		out[i] = llms.Tool{
			Type: "function",
			Function: &llms.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		}
	}
	return out
}

func fromContentResponse(resp *llms.ContentResponse) (*Response, error) {
	if resp == nil || len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: empty response", types.ErrModel)
	}
	choice := resp.Choices[0]
	if len(choice.ToolCalls) > 0 {
		calls := make([]ToolCall, 0, len(choice.ToolCalls))
		for _, tc := range choice.ToolCalls {
			if tc.FunctionCall == nil {
				continue
			}
			calls = append(calls, ToolCall{
				ID:        tc.ID,
				Name:      tc.FunctionCall.Name,
				Arguments: tc.FunctionCall.Arguments,
			})
		}
		if len(calls) > 0 {
			return &Response{Kind: ResponseToolCall, Text: choice.Content, ToolCalls: calls}, nil
		}
	}
	return &Response{Kind: ResponseText, Text: choice.Content}, nil
}

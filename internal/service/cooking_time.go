package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/pageza/recipepdf/config"
	"github.com/pageza/recipepdf/internal/llm"
	"github.com/pageza/recipepdf/internal/parser"
	"github.com/pageza/recipepdf/internal/types"
	"go.uber.org/zap"
)

// SumMinutesTool is the name of the summation tool offered to the model
const SumMinutesTool = "sumMinutes"

var sumMinutesDefinition = llm.Tool{
	Name:        SumMinutesTool,
	Description: "調理時間（分）のリストを受け取り、合計時間（分）を返します",
	Parameters: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"minutes": map[string]any{
				"type":        "array",
				"description": "調理時間（分）のリスト",
				"items":       map[string]any{"type": "number"},
			},
		},
		"required": []string{"minutes"},
	},
}

type sumMinutesArgs struct {
	Minutes []float64 `json:"minutes"`
}

// timeAnswer is the model's final cooking time answer
type timeAnswer struct {
	TotalMinutes *float64 `json:"totalMinutes"`
	Durations    []struct {
		Phrase  string   `json:"phrase"`
		Minutes *float64 `json:"minutes"`
	} `json:"durations"`
}

// CookingTimeExtractor finds time related chunks and asks the model for the
// total cooking time, running sumMinutes locally when the model calls it
type CookingTimeExtractor struct {
	model     llm.Model
	searcher  ISearcher
	query     string
	topK      int
	maxRounds int
	logger    *zap.Logger
}

// NewCookingTimeExtractor creates a CookingTimeExtractor
func NewCookingTimeExtractor(model llm.Model, searcher ISearcher, cfg config.PipelineConfig, logger *zap.Logger) *CookingTimeExtractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CookingTimeExtractor{
		model:     model,
		searcher:  searcher,
		query:     cfg.TimeQuery,
		topK:      cfg.TimeTopK,
		maxRounds: cfg.MaxToolRounds,
		logger:    logger,
	}
}

// ExtractTime retrieves time related chunks from set and extracts the total
// cooking time from them. It returns nil without calling the model when no
// chunks are found.
func (e *CookingTimeExtractor) ExtractTime(ctx context.Context, set *types.EmbeddedChunks) (*types.CookingTime, error) {
	chunks, err := e.searcher.Search(ctx, set, e.query, e.topK)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve time chunks: %w", err)
	}
	if len(chunks) == 0 {
		e.logger.Debug("no time related chunks found")
		return nil, nil
	}
	return e.ExtractFromChunks(ctx, chunks)
}

// ExtractFromChunks asks the model for the total cooking time in chunks
func (e *CookingTimeExtractor) ExtractFromChunks(ctx context.Context, chunks []string) (*types.CookingTime, error) {
	if len(chunks) == 0 {
		return nil, nil
	}

	msgs := []llm.Message{
		llm.System(cookingTimeSystemPrompt),
		llm.User(fmt.Sprintf(cookingTimePrompt, buildContext(chunks))),
	}

	// the last successful sumMinutes call, used when the final answer is unusable
	var fromTool *types.CookingTime

	for round := 0; ; round++ {
		req := llm.Request{Messages: msgs, JSON: true}
		if round < e.maxRounds {
			req.Tools = []llm.Tool{sumMinutesDefinition}
		}

		resp, err := e.model.Complete(ctx, req)
		if err != nil {
			if fromTool != nil {
				e.logger.Warn("model call failed after sumMinutes, using tool result", zap.Error(err))
				return fromTool, nil
			}
			return nil, fmt.Errorf("failed to extract cooking time: %w", err)
		}

		if resp.Kind == llm.ResponseToolCall && round < e.maxRounds {
			msgs = append(msgs, llm.Message{Role: llm.RoleAssistant, Text: resp.Text, ToolCalls: resp.ToolCalls})
			for _, call := range resp.ToolCalls {
				content, ct := e.dispatch(call)
				if ct != nil {
					fromTool = ct
				}
				msgs = append(msgs, llm.Message{
					Role:       llm.RoleTool,
					Text:       content,
					ToolCallID: call.ID,
					ToolName:   call.Name,
				})
			}
			continue
		}

		ct, err := parseTimeAnswer(ctx, resp.Text)
		if err == nil {
			e.logger.Info("cooking time extracted",
				zap.Float64("total_minutes", ct.TotalMinutes),
				zap.Int("durations", len(ct.Breakdown)))
			return ct, nil
		}
		if fromTool != nil {
			e.logger.Debug("final answer unusable, using sumMinutes result", zap.Error(err))
			return fromTool, nil
		}
		return nil, fmt.Errorf("failed to parse cooking time: %w", err)
	}
}

// dispatch runs a tool call locally and returns the content to send back
func (e *CookingTimeExtractor) dispatch(call llm.ToolCall) (string, *types.CookingTime) {
	if call.Name != SumMinutesTool {
		return fmt.Sprintf("error: unknown tool %q", call.Name), nil
	}

	var args sumMinutesArgs
	if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
		return fmt.Sprintf("error: invalid arguments: %v", err), nil
	}
	for _, m := range args.Minutes {
		if m < 0 || math.IsNaN(m) || math.IsInf(m, 0) {
			return fmt.Sprintf("error: invalid duration %v", m), nil
		}
	}

	total := SumMinutes(args.Minutes)
	e.logger.Debug("sumMinutes called",
		zap.Float64s("minutes", args.Minutes),
		zap.Float64("total", total))

	breakdown := make([]types.Duration, len(args.Minutes))
	for i, m := range args.Minutes {
		breakdown[i] = types.Duration{Minutes: m}
	}
	return strconv.FormatFloat(total, 'f', -1, 64), &types.CookingTime{TotalMinutes: total, Breakdown: breakdown}
}

func parseTimeAnswer(ctx context.Context, raw string) (*types.CookingTime, error) {
	answer, err := parser.ParseWithRetry[timeAnswer](ctx, raw, "", nil, 0, nil)
	if err != nil {
		return nil, err
	}

	ct := &types.CookingTime{}
	for _, d := range answer.Durations {
		dur := types.Duration{Phrase: d.Phrase}
		switch {
		case d.Minutes != nil:
			dur.Minutes = *d.Minutes
		default:
			m, ok := NormalizeDuration(d.Phrase)
			if !ok {
				continue
			}
			dur.Minutes = m
		}
		if dur.Minutes < 0 {
			return nil, fmt.Errorf("%w: negative duration %q", types.ErrStructuredOutputParse, d.Phrase)
		}
		ct.Breakdown = append(ct.Breakdown, dur)
	}

	switch {
	case answer.TotalMinutes != nil:
		ct.TotalMinutes = *answer.TotalMinutes
	case len(ct.Breakdown) > 0:
		minutes := make([]float64, len(ct.Breakdown))
		for i, d := range ct.Breakdown {
			minutes[i] = d.Minutes
		}
		ct.TotalMinutes = SumMinutes(minutes)
	default:
		return nil, fmt.Errorf("%w: answer has no total or durations", types.ErrStructuredOutputParse)
	}

	if ct.TotalMinutes < 0 || math.IsNaN(ct.TotalMinutes) || math.IsInf(ct.TotalMinutes, 0) {
		return nil, errors.New("total minutes must be a finite non-negative number")
	}
	return ct, nil
}

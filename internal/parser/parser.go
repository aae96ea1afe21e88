// Package parser decodes structured model output, asking a Fixer to repair
// output that does not match the expected shape.
package parser

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/pageza/recipepdf/internal/types"
)

// Fixer rewrites raw output so that it satisfies schema
type Fixer interface {
	Fix(ctx context.Context, raw, schema string, parseErr error) (string, error)
}

// ParseError is returned when output is still invalid after every fixing attempt
type ParseError struct {
	Attempts int
	Raw      string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse structured output after %d attempts: %v", e.Attempts, e.Err)
}

// Unwrap exposes both the sentinel and the last decode error
func (e *ParseError) Unwrap() []error {
	return []error{types.ErrStructuredOutputParse, e.Err}
}

// ParseWithRetry decodes raw into a T and runs check on it. When either step
// fails and a fixer is given, the fixer is asked to repair the output, up to
// maxRetries times. A nil check accepts any decoded value.
func ParseWithRetry[T any](ctx context.Context, raw, schema string, fixer Fixer, maxRetries int, check func(*T) error) (*T, error) {
	attempts := 0
	for {
		attempts++
		v, err := decode[T](raw, check)
		if err == nil {
			return v, nil
		}

		if fixer == nil || attempts > maxRetries {
			return nil, &ParseError{Attempts: attempts, Raw: raw, Err: err}
		}

		fixed, fixErr := fixer.Fix(ctx, raw, schema, err)
		if fixErr != nil {
			return nil, &ParseError{Attempts: attempts, Raw: raw, Err: errors.Join(err, fixErr)}
		}
		raw = fixed
	}
}

func decode[T any](raw string, check func(*T) error) (*T, error) {
	payload := ExtractJSON(raw)
	if payload == "" {
		return nil, errors.New("no JSON object found in output")
	}

	var v T
	dec := json.NewDecoder(bytes.NewReader([]byte(payload)))
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if check != nil {
		if err := check(&v); err != nil {
			return nil, err
		}
	}
	return &v, nil
}

// ExtractJSON strips markdown code fences and surrounding prose and returns
// the outermost JSON object in s, or "" if there is none
func ExtractJSON(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		if nl := strings.IndexByte(s, '\n'); nl >= 0 {
			s = s[nl+1:]
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end < start {
		return ""
	}
	return s[start : end+1]
}

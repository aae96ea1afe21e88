package types

import (
	"errors"
	"fmt"
)

var (
	// ErrDownload indicates the PDF could not be fetched
	ErrDownload = errors.New("download failed")
	// ErrTextExtraction indicates the PDF bytes could not be turned into text
	ErrTextExtraction = errors.New("text extraction failed")
	// ErrEmbedding indicates a chunk or query could not be embedded
	ErrEmbedding = errors.New("embedding failed")
	// ErrModel indicates a language model call failed
	ErrModel = errors.New("model call failed")
	// ErrStructuredOutputParse indicates model output did not match the expected structure
	ErrStructuredOutputParse = errors.New("structured output could not be parsed")
)

// Stage names a step of the extraction pipeline
type Stage string

const (
	StageDownload       Stage = "download"
	StageTextExtraction Stage = "text_extraction"
	StageValidation     Stage = "validation"
	StageChunking       Stage = "chunking"
	StageEmbedding      Stage = "embedding"
	StageRetrieval      Stage = "retrieval"
	StageExtraction     Stage = "extraction"
)

// StageError reports which fatal stage of a run failed
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// NewStageError wraps err with the stage it occurred in
func NewStageError(stage Stage, err error) error {
	if err == nil {
		return nil
	}
	return &StageError{Stage: stage, Err: err}
}

// StageOf returns the stage of the first StageError in err's chain, if any
func StageOf(err error) (Stage, bool) {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage, true
	}
	return "", false
}

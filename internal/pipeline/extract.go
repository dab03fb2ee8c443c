package pipeline

import (
	"context"

	"vega/internal"
)

// Extractor turns header text into a client record. Two implementations
// exist: the hosted-model adapter and the local heuristic.
type Extractor interface {
	Parse(ctx context.Context, text string) (internal.ClientRecord, error)
}

type HeuristicExtractor struct{}

func (HeuristicExtractor) Parse(_ context.Context, text string) (internal.ClientRecord, error) {
	return ParseClientBlock(text), nil
}

// ExtractorSet tries the remote adapter first and falls back to the local
// heuristic on any error. The remote result wins outright when it succeeds;
// the two outputs are never merged field by field.
type ExtractorSet struct {
	Remote    Extractor
	Heuristic Extractor
}

func (s ExtractorSet) Parse(ctx context.Context, text string) (internal.ClientRecord, internal.RecordSource) {
	if s.Remote != nil {
		if rec, err := s.Remote.Parse(ctx, text); err == nil {
			return rec, internal.SourceRemote
		}
	}
	rec, _ := s.Heuristic.Parse(ctx, text)
	return rec, internal.SourceHeuristic
}

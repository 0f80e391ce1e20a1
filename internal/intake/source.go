// Package intake sources candidate messages for the pipeline. The only
// production source is Gmail; tests and the scan command can inject others.
package intake

import (
	"context"

	"github.com/sells-group/deal-scout/internal/model"
)

// Source produces candidate messages for a pipeline pass.
type Source interface {
	Fetch(ctx context.Context) ([]model.CandidateMessage, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context) ([]model.CandidateMessage, error)

func (f SourceFunc) Fetch(ctx context.Context) ([]model.CandidateMessage, error) {
	return f(ctx)
}

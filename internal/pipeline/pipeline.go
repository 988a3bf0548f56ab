package pipeline

import (
	"log/slog"
	"strings"
)

// Middleware transforms one harvested line before it is written out.
// Returning keep=false drops the line.
type Middleware interface {
	// Name returns the middleware's identifier.
	Name() string

	// Process transforms a line.
	Process(line string) (out string, keep bool)
}

// Pipeline chains middleware processors together.
type Pipeline struct {
	middlewares []Middleware
	logger      *slog.Logger
}

// New creates a new Pipeline.
func New(logger *slog.Logger) *Pipeline {
	return &Pipeline{
		logger: logger.With("component", "pipeline"),
	}
}

// Default returns the pipeline applied before an artifact is committed.
func Default(logger *slog.Logger) *Pipeline {
	p := New(logger)
	p.Use(&TrimMiddleware{})
	return p
}

// Use adds a middleware to the pipeline chain.
func (p *Pipeline) Use(mw Middleware) {
	p.middlewares = append(p.middlewares, mw)
	p.logger.Debug("middleware added", "name", mw.Name(), "position", len(p.middlewares))
}

// Process runs every line through all middleware in order and returns the
// surviving lines in their original order.
func (p *Pipeline) Process(lines []string) []string {
	out := make([]string, 0, len(lines))
	dropped := 0

next:
	for _, line := range lines {
		for _, mw := range p.middlewares {
			var keep bool
			line, keep = mw.Process(line)
			if !keep {
				dropped++
				continue next
			}
		}
		out = append(out, line)
	}

	if dropped > 0 {
		p.logger.Debug("lines dropped", "count", dropped)
	}
	return out
}

// Len returns the number of middleware in the chain.
func (p *Pipeline) Len() int {
	return len(p.middlewares)
}

// TrimMiddleware strips leading and trailing whitespace.
type TrimMiddleware struct{}

func (m *TrimMiddleware) Name() string { return "trim" }

func (m *TrimMiddleware) Process(line string) (string, bool) {
	return strings.TrimSpace(line), true
}

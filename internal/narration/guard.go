package narration

import (
	"context"
	"log/slog"
	"time"

	"github.com/hperssn/sous/internal/domain"
)

const callTimeout = 3 * time.Second

// DefaultOptions matches what the mobile client reads steps with.
var DefaultOptions = domain.SpeakOptions{Language: "en-US", Rate: 0.9}

// Guard is the boundary between the session state machine and a narrator.
// Failures are logged and swallowed here and never reach the caller.
type Guard struct {
	inner  domain.Narrator
	opts   domain.SpeakOptions
	logger *slog.Logger
}

func NewGuard(inner domain.Narrator, opts domain.SpeakOptions, logger *slog.Logger) *Guard {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Language == "" {
		opts.Language = DefaultOptions.Language
	}
	if opts.Rate <= 0 {
		opts.Rate = DefaultOptions.Rate
	}
	return &Guard{inner: inner, opts: opts, logger: logger}
}

func (g *Guard) Speak(text string) {
	if g.inner == nil || text == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()

	if err := g.inner.Speak(ctx, text, g.opts); err != nil {
		g.logger.Warn("narration speak failed", "error", err)
	}
}

func (g *Guard) Stop() {
	if g.inner == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()

	if err := g.inner.Stop(ctx); err != nil {
		g.logger.Warn("narration stop failed", "error", err)
	}
}

// IsSpeaking reports false when the narrator cannot answer.
func (g *Guard) IsSpeaking(ctx context.Context) bool {
	if g.inner == nil {
		return false
	}
	speaking, err := g.inner.IsSpeaking(ctx)
	if err != nil {
		g.logger.Warn("narration status failed", "error", err)
		return false
	}
	return speaking
}

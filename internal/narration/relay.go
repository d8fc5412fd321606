package narration

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/hperssn/sous/internal/domain"
)

type UtteranceKind string

const (
	UtteranceSpeak UtteranceKind = "speak"
	UtteranceStop  UtteranceKind = "stop"
)

// Utterance is a narration instruction pushed to a remote client, which does
// the actual speaking.
type Utterance struct {
	Kind     UtteranceKind       `json:"kind"`
	Text     string              `json:"text,omitempty"`
	Options  domain.SpeakOptions `json:"options"`
	At       time.Time           `json:"at"`
	Estimate time.Duration       `json:"estimate,omitempty"`
}

const wordsPerMinute = 150

// Relay is a Narrator that forwards speech to subscribed clients. It tracks
// speaking state from an estimate of how long the text takes to read, cut
// short by Stop or by the client reporting it finished.
type Relay struct {
	mu            sync.Mutex
	now           func() time.Time
	subs          []chan Utterance
	speakingUntil time.Time
}

func NewRelay(now func() time.Time) *Relay {
	if now == nil {
		now = time.Now
	}
	return &Relay{now: now}
}

func (r *Relay) Subscribe(buffer int) <-chan Utterance {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Utterance, buffer)
	r.mu.Lock()
	r.subs = append(r.subs, ch)
	r.mu.Unlock()
	return ch
}

func (r *Relay) Unsubscribe(ch <-chan Utterance) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, sub := range r.subs {
		if sub == ch {
			close(sub)
			r.subs = append(r.subs[:i], r.subs[i+1:]...)
			return
		}
	}
}

func (r *Relay) Subscribers() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subs)
}

func (r *Relay) Speak(_ context.Context, text string, opts domain.SpeakOptions) error {
	now := r.now()
	est := EstimateDuration(text, opts.Rate)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.speakingUntil = now.Add(est)
	r.publishLocked(Utterance{Kind: UtteranceSpeak, Text: text, Options: opts, At: now, Estimate: est})
	return nil
}

func (r *Relay) Stop(_ context.Context) error {
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.speakingUntil = time.Time{}
	r.publishLocked(Utterance{Kind: UtteranceStop, At: now})
	return nil
}

func (r *Relay) IsSpeaking(_ context.Context) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.now().Before(r.speakingUntil), nil
}

// Finished records that the client is done reading the last utterance.
func (r *Relay) Finished() {
	r.mu.Lock()
	r.speakingUntil = time.Time{}
	r.mu.Unlock()
}

// Close drops all subscribers.
func (r *Relay) Close() {
	r.mu.Lock()
	subs := r.subs
	r.subs = nil
	r.speakingUntil = time.Time{}
	r.mu.Unlock()

	for _, ch := range subs {
		close(ch)
	}
}

func (r *Relay) publishLocked(u Utterance) {
	for _, ch := range r.subs {
		select {
		case ch <- u:
		default:
		}
	}
}

// EstimateDuration approximates reading time at 150 words per minute scaled
// by rate, never less than one second.
func EstimateDuration(text string, rate float64) time.Duration {
	if rate <= 0 {
		rate = 1
	}
	words := len(strings.Fields(text))
	est := time.Duration(float64(words) / (wordsPerMinute * rate) * float64(time.Minute))
	if est < time.Second {
		return time.Second
	}
	return est
}

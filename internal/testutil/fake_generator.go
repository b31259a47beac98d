package testutil

import (
	"context"
	"errors"
	"sync"
)

// ErrScriptExhausted is returned when FakeGenerator has no replies left.
var ErrScriptExhausted = errors.New("fake generator: no scripted reply")

// FakeReply is one scripted generator result.
type FakeReply struct {
	Text string
	Err  error
}

// FakeGenerator returns scripted replies in order and records every prompt.
type FakeGenerator struct {
	mu      sync.Mutex
	replies []FakeReply
	prompts []string
}

// NewFakeGenerator creates a FakeGenerator that answers with replies in order.
func NewFakeGenerator(replies ...FakeReply) *FakeGenerator {
	return &FakeGenerator{replies: replies}
}

// Reply is shorthand for a successful FakeReply.
func Reply(text string) FakeReply {
	return FakeReply{Text: text}
}

// Fail is shorthand for a failing FakeReply.
func Fail(err error) FakeReply {
	return FakeReply{Err: err}
}

// Generate implements the generator contract used by the pipeline.
func (f *FakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.prompts = append(f.prompts, prompt)
	if len(f.replies) == 0 {
		return "", ErrScriptExhausted
	}
	next := f.replies[0]
	f.replies = f.replies[1:]
	return next.Text, next.Err
}

// Prompts returns every prompt received so far.
func (f *FakeGenerator) Prompts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.prompts))
	copy(out, f.prompts)
	return out
}

// Calls returns how many times Generate ran.
func (f *FakeGenerator) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

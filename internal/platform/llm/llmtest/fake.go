package llmtest

import (
	"context"
	"errors"
	"sync"

	"github.com/yungbote/salesagent-backend/internal/platform/llm"
)

var ErrScripted = errors.New("llmtest: scripted failure")

// Fake is an llm.Client that replays scripted replies in order. When the script runs out
// the last reply repeats. Err, when set, is returned for every call.
type Fake struct {
	mu      sync.Mutex
	Replies []string
	Err     error
	Calls   [][]llm.Message
}

func New(replies ...string) *Fake {
	return &Fake{Replies: replies}
}

func Failing(err error) *Fake {
	if err == nil {
		err = ErrScripted
	}
	return &Fake{Err: err}
}

func (f *Fake) Complete(ctx context.Context, messages []llm.Message, _ ...llm.CallOption) (llm.Completion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, append([]llm.Message(nil), messages...))
	if f.Err != nil {
		return llm.Completion{}, f.Err
	}
	if err := ctx.Err(); err != nil {
		return llm.Completion{}, err
	}
	if len(f.Replies) == 0 {
		return llm.Completion{}, errors.New("llmtest: no scripted reply")
	}
	idx := len(f.Calls) - 1
	if idx >= len(f.Replies) {
		idx = len(f.Replies) - 1
	}
	return llm.Completion{Content: f.Replies[idx], Model: "fake"}, nil
}

func (f *Fake) GenerateText(ctx context.Context, system, user string) (string, error) {
	out, err := f.Complete(ctx, []llm.Message{{Role: "system", Content: system}, {Role: "user", Content: user}})
	if err != nil {
		return "", err
	}
	return out.Content, nil
}

func (f *Fake) GenerateJSON(ctx context.Context, system, user string) (map[string]any, error) {
	text, err := f.GenerateText(ctx, system, user)
	if err != nil {
		return nil, err
	}
	return llm.ParseJSONObject(text)
}

func (f *Fake) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Calls)
}

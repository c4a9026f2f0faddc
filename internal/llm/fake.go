package llm

import (
	"context"
	"strings"
)

// FakeClient returns deterministic text for offline runs and tests.
// When Reply is nil a canned Swedish motion skeleton is produced that
// echoes the user content, so pipeline tests can assert on it.
type FakeClient struct {
	Reply func(system, user string) (string, error)
}

func NewFakeClient() *FakeClient { return &FakeClient{} }

func (f *FakeClient) Name() string { return "FakeLLM" }
func (f *FakeClient) Close() error { return nil }

func (f *FakeClient) Complete(ctx context.Context, system, user string) (string, error) {
	if f.Reply != nil {
		return f.Reply(system, user)
	}
	var b strings.Builder
	b.WriteString("Motion\n\n")
	b.WriteString("Bakgrund:\n")
	b.WriteString(user)
	b.WriteString("\n\nFörslag till beslut:\n- att kommunfullmäktige bifaller motionen\n")
	return b.String(), nil
}

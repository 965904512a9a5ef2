package testhelpers

import (
	"bytes"
	"context"
	"testing"
	"time"

	"backport.dev/backport/internal/runtime"
	"backport.dev/backport/internal/tui"
)

// FixedTime is the clock reading returned by contexts built with NewTestContext
var FixedTime = time.Date(2026, time.March, 14, 15, 9, 26, 0, time.UTC)

// MockPrompter is a scripted tui.Prompter
type MockPrompter struct {
	// ConfirmAnswer is returned by Confirm
	ConfirmAnswer bool
	// Selection is returned by SelectCommits; nil selects the defaults
	Selection []string
	// Text is returned by TextInput
	Text string
	// Err is returned by every prompt when set
	Err error
	// Asked records the prompt messages
	Asked []string
	// Offered records the options of the last SelectCommits call
	Offered []string
}

var _ tui.Prompter = (*MockPrompter)(nil)

func (p *MockPrompter) Confirm(message string, _ bool) (bool, error) {
	p.Asked = append(p.Asked, message)
	return p.ConfirmAnswer, p.Err
}

func (p *MockPrompter) SelectCommits(message string, options, defaults []string) ([]string, error) {
	p.Asked = append(p.Asked, message)
	p.Offered = options
	if p.Err != nil {
		return nil, p.Err
	}
	if p.Selection == nil {
		return defaults, nil
	}
	return p.Selection, nil
}

func (p *MockPrompter) TextInput(message, defaultValue string) (string, error) {
	p.Asked = append(p.Asked, message)
	if p.Err != nil {
		return "", p.Err
	}
	if p.Text == "" {
		return defaultValue, nil
	}
	return p.Text, nil
}

// NewTestContext builds a runtime context around runner whose console output
// is captured in the returned buffer. The clock is fixed at FixedTime.
func NewTestContext(t *testing.T, runner *MockRunner) (*runtime.Context, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	splog, err := tui.NewSplogWithConfig(tui.SplogOptions{Writer: &out})
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}

	ctx := runtime.NewContext(context.Background(), runner, splog)
	ctx.Prompter = &MockPrompter{}
	ctx.PatchSource = NewMockPatchSource()
	ctx.Now = func() time.Time { return FixedTime }
	return ctx, &out
}

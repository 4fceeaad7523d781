package runners_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/arnavsurve/smokeshot/pkg/core"
	"github.com/arnavsurve/smokeshot/pkg/steprunner"
	"github.com/arnavsurve/smokeshot/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/arnavsurve/smokeshot/pkg/steprunner/runners"
)

type stubPage struct {
	visible  map[string]bool
	timeouts map[string]time.Duration
}

func (p *stubPage) Goto(string, time.Duration) error { return nil }
func (p *stubPage) Screenshot(string, bool) error    { return nil }
func (p *stubPage) URL() string                      { return "http://stub.local" }
func (p *stubPage) Locator(selector string) types.Element {
	return &stubElement{page: p, selector: selector}
}

type stubElement struct {
	page     *stubPage
	selector string
}

func (e *stubElement) ExpectVisible(timeout time.Duration) error {
	e.page.timeouts[e.selector] = timeout
	if e.page.visible[e.selector] {
		return nil
	}
	return fmt.Errorf("waiting for %s: %w", e.selector, types.ErrTimeout)
}

func newStubPage(visible ...string) *stubPage {
	p := &stubPage{visible: map[string]bool{}, timeouts: map[string]time.Duration{}}
	for _, s := range visible {
		p.visible[s] = true
	}
	return p
}

func TestVisibleRunner_Validate(t *testing.T) {
	tests := []struct {
		name        string
		check       core.Check
		shouldError bool
		errorMsg    string
	}{
		{
			name:  "Valid selector",
			check: core.Check{ID: "heading", Uses: "visible", Selector: "h1"},
		},
		{
			name:  "Valid selector with timeout",
			check: core.Check{ID: "heading", Uses: "visible", Selector: "h1", Timeout: "30s"},
		},
		{
			name:        "Missing selector",
			check:       core.Check{ID: "heading", Uses: "visible", Selector: "  "},
			shouldError: true,
			errorMsg:    "must define 'selector'",
		},
		{
			name:        "Has call",
			check:       core.Check{ID: "heading", Uses: "visible", Selector: "h1", Call: &core.HTTPCall{Url: "http://x"}},
			shouldError: true,
			errorMsg:    "must not define 'call'",
		},
		{
			name:        "Bad timeout",
			check:       core.Check{ID: "heading", Uses: "visible", Selector: "h1", Timeout: "soon"},
			shouldError: true,
			errorMsg:    "invalid 'timeout'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner, err := steprunner.GetRunner(core.ExecutionContext{Check: tt.check})
			require.NoError(t, err)

			err = runner.Validate()
			if tt.shouldError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestVisibleRunner_Run(t *testing.T) {
	page := newStubPage(`h1:has-text("Invoice Scanner")`)

	t.Run("visible element uses check timeout", func(t *testing.T) {
		runner, err := steprunner.GetRunner(core.ExecutionContext{
			Check:          core.Check{ID: "heading", Uses: "visible", Selector: `h1:has-text("Invoice Scanner")`, Timeout: "30s"},
			Page:           page,
			DefaultTimeout: 5 * time.Second,
		})
		require.NoError(t, err)

		result, err := runner.Run()
		require.NoError(t, err)
		assert.Equal(t, true, result.Output.(map[string]any)["visible"])
		assert.Equal(t, 30*time.Second, page.timeouts[`h1:has-text("Invoice Scanner")`])
	})

	t.Run("missing element falls back to default timeout and reports ErrTimeout", func(t *testing.T) {
		runner, err := steprunner.GetRunner(core.ExecutionContext{
			Check:          core.Check{ID: "dropzone", Uses: "visible", Selector: "p.dropzone"},
			Page:           page,
			DefaultTimeout: 5 * time.Second,
		})
		require.NoError(t, err)

		_, err = runner.Run()
		require.Error(t, err)
		assert.True(t, errors.Is(err, types.ErrTimeout))
		assert.Contains(t, err.Error(), "p.dropzone not visible within 5s")
		assert.Equal(t, 5*time.Second, page.timeouts["p.dropzone"])
	})

	t.Run("no page", func(t *testing.T) {
		runner, err := steprunner.GetRunner(core.ExecutionContext{
			Check: core.Check{ID: "heading", Uses: "visible", Selector: "h1"},
		})
		require.NoError(t, err)

		_, err = runner.Run()
		assert.ErrorContains(t, err, "has no page to inspect")
	})
}

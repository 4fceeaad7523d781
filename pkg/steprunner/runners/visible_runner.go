package runners

import (
	"fmt"
	"strings"
	"time"

	"github.com/arnavsurve/smokeshot/pkg/log"
	"github.com/arnavsurve/smokeshot/pkg/steprunner"
	"github.com/arnavsurve/smokeshot/pkg/types"
)

// VisibleRunner asserts that the element matched by the check's selector becomes visible.
type VisibleRunner struct {
	StepCtx types.ExecutionContext
}

func init() {
	steprunner.RegisterRunnerFactory("visible", func(ctx types.ExecutionContext) (steprunner.StepRunner, error) {
		return &VisibleRunner{StepCtx: withLogger(ctx)}, nil
	})
}

// withLogger installs a no-op logger when none is set, which is the case during validation.
func withLogger(ctx types.ExecutionContext) types.ExecutionContext {
	if ctx.Logger == nil {
		ctx.Logger = log.NewNopLogger()
	}
	return ctx
}

func (vr *VisibleRunner) Validate() error {
	check := vr.StepCtx.Check

	if strings.TrimSpace(check.Selector) == "" {
		return fmt.Errorf("visible check %q must define 'selector'", check.ID)
	}
	if check.Call != nil {
		return fmt.Errorf("visible check %q must not define 'call'", check.ID)
	}
	if _, err := check.ResolveTimeout(vr.StepCtx.DefaultTimeout); err != nil {
		return fmt.Errorf("visible check %q has invalid 'timeout': %w", check.ID, err)
	}

	return nil
}

func (vr *VisibleRunner) Run() (*types.CheckResult, error) {
	check := vr.StepCtx.Check
	logger := vr.StepCtx.Logger
	page := vr.StepCtx.Page

	if page == nil {
		return nil, fmt.Errorf("visible check %q has no page to inspect", check.ID)
	}

	timeout, err := check.ResolveTimeout(vr.StepCtx.DefaultTimeout)
	if err != nil {
		return nil, fmt.Errorf("visible check %q has invalid 'timeout': %w", check.ID, err)
	}

	logger.Info().
		Str("selector", check.Selector).
		Dur("timeout", timeout).
		Msg("Waiting for element to be visible")

	start := time.Now()
	if err := page.Locator(check.Selector).ExpectVisible(timeout); err != nil {
		return nil, fmt.Errorf("element %s not visible within %s: %w", check.Selector, timeout, err)
	}
	elapsed := time.Since(start)

	logger.Info().Dur("elapsed", elapsed).Msg("Element is visible")

	return &types.CheckResult{
		Output: map[string]any{
			"selector": check.Selector,
			"visible":  true,
		},
		DurationMs: elapsed.Milliseconds(),
	}, nil
}

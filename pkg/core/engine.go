package core

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/arnavsurve/smokeshot/pkg/browser"
	"github.com/arnavsurve/smokeshot/pkg/fileutil"
	"github.com/arnavsurve/smokeshot/pkg/steprunner"
	"github.com/arnavsurve/smokeshot/pkg/types"
)

type VerificationEngine struct {
	Logger Logger
	Driver browser.Driver
	// Stdout receives the one-line diagnostic printed when a run fails.
	Stdout io.Writer
}

func NewVerificationEngine(logger Logger, driver browser.Driver) *VerificationEngine {
	return &VerificationEngine{
		Logger: logger,
		Driver: driver,
		Stdout: os.Stdout,
	}
}

// Execute runs one verification: launch, navigate, run every check, capture
// evidence, close. Verification failures are reported in the Outcome; the
// returned error is only for configs that cannot be executed at all.
// cfg must already have its config-level variables resolved.
func (e *VerificationEngine) Execute(cfg *Config, varCtx VarContext, runID string) (*Outcome, error) {
	navTimeout, assertTimeout, err := cfg.Timeouts()
	if err != nil {
		return nil, fmt.Errorf("parsing timeouts: %w", err)
	}

	start := time.Now()
	outcome := &Outcome{
		RunID:     runID,
		Name:      cfg.Name,
		Target:    cfg.Target.URL,
		StartedAt: start,
		Checks:    []CheckOutcome{},
	}
	defer func() {
		outcome.Duration = time.Since(start)
		outcome.DurationMs = outcome.Duration.Milliseconds()
	}()

	headless := cfg.Browser.Headless == nil || *cfg.Browser.Headless
	e.Logger.Info().Str("engine", cfg.Browser.Engine).Msg("Launching browser")

	b, err := e.Driver.Launch(browser.LaunchOptions{Engine: cfg.Browser.Engine, Headless: headless})
	if err != nil {
		e.fail(cfg, outcome, &VerificationError{Kind: KindLaunch, Err: err}, nil)
		return outcome, nil
	}
	defer func() {
		if err := b.Close(); err != nil {
			e.Logger.Warn().Err(err).Msg("Failed to close browser")
			return
		}
		e.Logger.Debug().Msg("Browser closed")
	}()

	bctx, err := b.NewContext()
	if err != nil {
		e.fail(cfg, outcome, &VerificationError{Kind: KindLaunch, Err: err}, nil)
		return outcome, nil
	}
	page, err := bctx.NewPage()
	if err != nil {
		e.fail(cfg, outcome, &VerificationError{Kind: KindLaunch, Err: err}, nil)
		return outcome, nil
	}

	if verr := e.verify(cfg, varCtx, page, navTimeout, assertTimeout, outcome); verr != nil {
		e.fail(cfg, outcome, verr, page)
		return outcome, nil
	}

	successPath := cfg.Artifacts.ArtifactPath(cfg.Artifacts.Success)
	if err := e.screenshot(page, successPath, cfg); err != nil {
		e.fail(cfg, outcome, &VerificationError{Kind: KindAutomation, Err: fmt.Errorf("capturing success screenshot: %w", err)}, page)
		return outcome, nil
	}
	outcome.EvidencePath = successPath
	e.Logger.Info().Str("path", successPath).Msg("Verification passed, screenshot saved")

	return outcome, nil
}

func (e *VerificationEngine) verify(
	cfg *Config,
	varCtx VarContext,
	page types.Page,
	navTimeout, assertTimeout time.Duration,
	outcome *Outcome,
) *VerificationError {
	e.Logger.Info().Str("url", cfg.Target.URL).Dur("timeout", navTimeout).Msg("Navigating to target")
	if err := page.Goto(cfg.Target.URL, navTimeout); err != nil {
		kind := KindAutomation
		if errors.Is(err, types.ErrTimeout) {
			kind = KindNavigationTimeout
		}
		return &VerificationError{Kind: kind, Err: fmt.Errorf("navigating to %s: %w", cfg.Target.URL, err)}
	}

	results := make(CheckResultsContext)
	for _, check := range cfg.Checks {
		resolvedCheck, err := ResolveCheckVariables(&check, varCtx, results)
		if err != nil {
			return &VerificationError{Kind: KindCheckFailed, CheckID: check.ID, Err: err}
		}

		scopedLogger := e.Logger.With().Str("check_id", resolvedCheck.ID).Str("check_type", resolvedCheck.Uses).Logger()
		execCtx := types.ExecutionContext{
			Check:          *resolvedCheck,
			Logger:         scopedLogger,
			Page:           page,
			DefaultTimeout: assertTimeout,
		}

		runner, err := steprunner.GetRunner(execCtx)
		if err != nil {
			return &VerificationError{Kind: KindCheckFailed, CheckID: check.ID, Err: err}
		}

		scopedLogger.Info().Msgf("Running check %q (uses=%s)", resolvedCheck.ID, resolvedCheck.Uses)
		result, err := runner.Run()
		if err != nil {
			outcome.Checks = append(outcome.Checks, CheckOutcome{
				ID:          check.ID,
				Uses:        check.Uses,
				CheckResult: types.CheckResult{Error: err.Error()},
			})
			kind := KindCheckFailed
			if errors.Is(err, types.ErrTimeout) {
				kind = KindAssertionTimeout
			}
			return &VerificationError{Kind: kind, CheckID: check.ID, Err: err}
		}

		if result == nil {
			result = &types.CheckResult{}
		}
		results[check.ID] = *result
		outcome.Checks = append(outcome.Checks, CheckOutcome{
			ID:          check.ID,
			Uses:        check.Uses,
			Passed:      true,
			CheckResult: *result,
		})
	}

	return nil
}

// fail records verr on the outcome, prints the diagnostic line and, when a
// page exists, captures the error screenshot on a best-effort basis.
func (e *VerificationEngine) fail(cfg *Config, outcome *Outcome, verr *VerificationError, page types.Page) {
	outcome.Err = verr
	fmt.Fprintf(e.Stdout, "An error occurred: %v\n", verr)
	if page == nil {
		e.Logger.Error().Err(verr).Str("kind", string(verr.Kind)).Msg("Verification failed")
		return
	}
	e.Logger.Error().Err(verr).Str("kind", string(verr.Kind)).Str("page_url", page.URL()).Msg("Verification failed")

	errorPath := cfg.Artifacts.ArtifactPath(cfg.Artifacts.Error)
	if err := e.screenshot(page, errorPath, cfg); err != nil {
		e.Logger.Warn().Err(err).Str("path", errorPath).Msg("Failed to capture error screenshot")
		return
	}
	outcome.EvidencePath = errorPath
	e.Logger.Info().Str("path", errorPath).Msg("Error screenshot saved")
}

func (e *VerificationEngine) screenshot(page types.Page, path string, cfg *Config) error {
	if err := fileutil.EnsureParentDir(path); err != nil {
		return err
	}
	fullPage := cfg.Artifacts.FullPage == nil || *cfg.Artifacts.FullPage
	return page.Screenshot(path, fullPage)
}

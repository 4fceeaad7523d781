package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/arnavsurve/smokeshot/pkg/browser"
	"github.com/arnavsurve/smokeshot/pkg/steprunner"
	"github.com/arnavsurve/smokeshot/pkg/types"
)

// ValidateConfigStructure checks fields at the config level: name, input types/uniqueness,
// check uniqueness, durations, browser engine and artifact paths.
func ValidateConfigStructure(cfg *Config) error {
	if cfg.Name == "" {
		return fmt.Errorf("config is missing 'name'")
	}

	validInputTypes := map[string]bool{
		"string":  true,
		"file":    true,
		"number":  true,
		"boolean": true,
	}

	inputNames := make(map[string]bool)
	for i, input := range cfg.Inputs {
		if input.Name == "" {
			return fmt.Errorf("input %d is missing 'name'", i)
		}
		if inputNames[input.Name] {
			return fmt.Errorf("duplicate input name: %q", input.Name)
		}
		inputNames[input.Name] = true

		if !validInputTypes[input.Type] {
			return fmt.Errorf("input %q has invalid type %q", input.Name, input.Type)
		}
	}

	if cfg.Target.URL == "" {
		return fmt.Errorf("config is missing 'target.url'")
	}
	if err := validatePositiveDuration("target.navigation_timeout", cfg.Target.NavigationTimeout); err != nil {
		return err
	}
	if err := validatePositiveDuration("assertion_timeout", cfg.AssertionTimeout); err != nil {
		return err
	}

	if !browser.IsSupportedEngine(cfg.Browser.Engine) {
		return fmt.Errorf("browser.engine %q is not one of chromium, firefox, webkit", cfg.Browser.Engine)
	}

	if cfg.Artifacts.ArtifactPath(cfg.Artifacts.Success) == cfg.Artifacts.ArtifactPath(cfg.Artifacts.Error) {
		return fmt.Errorf("artifacts.success and artifacts.error must be different paths")
	}

	if cfg.Publish != nil && cfg.Publish.Bucket == "" {
		return fmt.Errorf("publish is missing 'bucket'")
	}

	if len(cfg.Checks) == 0 {
		return fmt.Errorf("config must define at least one check")
	}

	checkIDs := make(map[string]bool)
	for i, check := range cfg.Checks {
		if check.ID == "" {
			return fmt.Errorf("check %d is missing 'id'", i)
		}
		if checkIDs[check.ID] {
			return fmt.Errorf("duplicate check id: %q", check.ID)
		}
		checkIDs[check.ID] = true

		if check.Uses == "" {
			return fmt.Errorf("check %q is missing 'uses'", check.ID)
		}
		if check.Timeout != "" {
			if err := validatePositiveDuration(fmt.Sprintf("checks[%s].timeout", check.ID), check.Timeout); err != nil {
				return err
			}
		}
	}

	return nil
}

func validatePositiveDuration(field, value string) error {
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("%s %q is not a valid duration: %w", field, value, err)
	}
	if d <= 0 {
		return fmt.Errorf("%s must be greater than 0", field)
	}
	return nil
}

func ValidateRequiredInputs(cfg *Config, varCtx VarContext) error {
	for _, input := range cfg.Inputs {
		if input.Required {
			if _, exists := varCtx[input.Name]; !exists && input.Default == "" {
				return fmt.Errorf("required input %q is missing from the varfile and no default value is provided", input.Name)
			}
		}
	}
	return nil
}

// ValidateCheckRunners builds the runner for every check and runs its Validate method.
func ValidateCheckRunners(cfg *Config, logger types.Logger) error {
	for _, check := range cfg.Checks {
		ctx := types.ExecutionContext{
			Check:  check,
			Logger: logger,
		}

		runner, err := steprunner.GetRunner(ctx)
		if err != nil {
			return fmt.Errorf("getting runner for check %q (known types: %s): %w",
				check.ID, strings.Join(steprunner.RegisteredTypes(), ", "), err)
		}

		if err = runner.Validate(); err != nil {
			return fmt.Errorf("validating check %q: %w", check.ID, err)
		}
	}
	return nil
}

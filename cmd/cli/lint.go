package cli

import (
	"fmt"

	"github.com/arnavsurve/smokeshot/pkg/core"
	"github.com/arnavsurve/smokeshot/pkg/log"
	"github.com/arnavsurve/smokeshot/pkg/log/sinks"
	"github.com/arnavsurve/smokeshot/pkg/steprunner"
	"github.com/arnavsurve/smokeshot/pkg/types"
	"github.com/rs/zerolog"

	// Ensure all runner implementations are initialized
	_ "github.com/arnavsurve/smokeshot/pkg/steprunner/runners"
)

type LintCmd struct {
	Config  string `help:"The verification config file." default:"smokeshot.yml"`
	Varfile string `help:"The YAML varfile for input variables." default:"smokevars.yml"`
	EnvFile string `help:"Dotenv file loaded before variables are resolved." default:".env"`
}

func (l *LintCmd) Run() error {
	logRouter := log.NewRouter(sinks.NewConsoleSink())
	cmdLogger := log.NewRouterLogger(logRouter, zerolog.InfoLevel)
	defer logRouter.Close()

	return l.lint(cmdLogger)
}

func (l *LintCmd) lint(cmdLogger types.Logger) error {
	cmdLogger.Info().Msgf("Validating %s using %s", l.Config, l.Varfile)

	loaded, err := loadConfig(cmdLogger, l.Config, l.Varfile, l.EnvFile)
	if err != nil {
		return err
	}
	cmdLogger.Info().Msg("Required input validation passed")

	if loaded.cfg.Publish != nil {
		if _, err := core.ResolvePublishVariables(loaded.cfg.Publish, loaded.varCtx); err != nil {
			cmdLogger.Error().Err(err).Msg("Publish configuration has an issue")
			return err
		}
		cmdLogger.Info().Msg("Publish validation passed")
	}

	validationCfg, err := core.InjectVarsIntoConfig(loaded.cfg, loaded.varCtx)
	if err != nil {
		cmdLogger.Error().Err(err).Msg("Could not resolve global variables for config validation")
		return fmt.Errorf("resolving global variables for config: %w", err)
	}

	cmdLogger.Info().Msg("Validating individual checks...")
	for _, check := range validationCfg.Checks {
		checkLogger := cmdLogger.With().
			Str("check_id", check.ID).
			Str("check_type", check.Uses).
			Logger()

		checkLogger.Info().Msg("Validating check configuration...")

		execCtx := types.ExecutionContext{
			Check:  check,
			Logger: checkLogger,
		}

		runner, err := steprunner.GetRunner(execCtx)
		if err != nil {
			checkLogger.Error().Err(err).Msg("Error getting runner for check")
			return fmt.Errorf("getting runner for check %q: %w", check.ID, err)
		}

		if err := runner.Validate(); err != nil {
			checkLogger.Error().Err(err).Msg("Check configuration validation failed")
			return fmt.Errorf("validating check %q (uses: %s): %w", check.ID, check.Uses, err)
		}

		checkLogger.Info().Msg("Check configuration validation passed")
	}

	cmdLogger.Info().Msg("Successfully validated configuration ✅")
	return nil
}

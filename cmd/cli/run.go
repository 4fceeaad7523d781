package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/arnavsurve/smokeshot/pkg/artifacts"
	"github.com/arnavsurve/smokeshot/pkg/browser"
	"github.com/arnavsurve/smokeshot/pkg/core"
	"github.com/arnavsurve/smokeshot/pkg/log"
	"github.com/arnavsurve/smokeshot/pkg/log/sinks"
	"github.com/arnavsurve/smokeshot/pkg/security"
	"github.com/arnavsurve/smokeshot/pkg/types"
	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	// Ensure all runner implementations are initialized
	_ "github.com/arnavsurve/smokeshot/pkg/steprunner/runners"
)

const defaultVarfile = "smokevars.yml"

type RunCmd struct {
	Config  string `help:"The verification config file. The built-in invoice scanner check runs when it is missing." default:"smokeshot.yml"`
	Varfile string `help:"The YAML varfile for input variables." default:"smokevars.yml"`
	EnvFile string `help:"Dotenv file loaded before variables are resolved." default:".env"`
	URL     string `name:"url" help:"Override target.url."`
	Browser string `help:"Override browser.engine (chromium, firefox, webkit)."`
	Headed  bool   `help:"Show the browser window, overriding browser.headless."`
	Install bool   `help:"Install the playwright driver and browser before launching."`
	Strict  bool   `help:"Exit non-zero when the verification fails."`
	LogsDir string `help:"Directory for per-run JSON logs." default:".smokeshot/logs"`
	Verbose bool   `short:"v" help:"Print debug logs to the console."`

	// Driver replaces the playwright driver. Set by tests.
	Driver browser.Driver `kong:"-"`
}

func (r *RunCmd) Run() error {
	runID := uuid.New().String()

	consoleLevel := types.InfoLevel
	if r.Verbose {
		consoleLevel = types.DebugLevel
	}
	consoleSink := sinks.NewConsoleSinkWriter(color.Output, consoleLevel)

	logFilePath := filepath.Join(r.LogsDir, fmt.Sprintf("%s.json", runID))
	fileSink, err := sinks.NewFileSink(logFilePath)
	if err != nil {
		return fmt.Errorf("creating file log sink: %w", err)
	}

	logRouter := log.NewRouter(consoleSink)
	logRouter.AddSink(fileSink)
	cmdLogger := log.NewRouterLogger(logRouter, zerolog.DebugLevel)

	cmdLogger.Info().Msgf("Starting verification run with ID: %s", runID)
	cmdLogger.Info().Msgf("Logs will be saved to %q", logFilePath)

	defer func() {
		cmdLogger.Debug().Msg("Shutting down logger...")
		if err := logRouter.Close(); err != nil {
			fmt.Printf("Error during log shutdown: %v\n", err)
		}
	}()

	loaded, err := loadConfig(cmdLogger, r.Config, r.Varfile, r.EnvFile)
	if err != nil {
		return err
	}

	redactor := security.NewRedactor(loaded.cfg.Inputs, loaded.varCtx)
	logRouter.Redactor = redactor

	cfg, err := core.ResolveConfigVariables(loaded.cfg, loaded.varCtx)
	if err != nil {
		cmdLogger.Error().Err(err).Msg("Failed to resolve config variables")
		return fmt.Errorf("resolving config variables: %w", err)
	}
	if cfg.Publish != nil {
		redactor.Add(cfg.Publish.AccessKeyID, cfg.Publish.SecretAccessKey)
	}

	r.applyOverrides(cfg)
	if err := cfg.ResolveArtifactsDir(loaded.configDir); err != nil {
		return err
	}
	if err := core.ValidateConfigStructure(cfg); err != nil {
		cmdLogger.Error().Err(err).Msg("Config validation failed")
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := core.ValidateCheckRunners(cfg, cmdLogger); err != nil {
		cmdLogger.Error().Err(err).Msg("Check runner validation failed")
		return fmt.Errorf("validating check runners: %w", err)
	}
	cmdLogger.Info().Msg("Config validation passed")

	driver := r.Driver
	if driver == nil {
		driver = browser.NewPlaywrightDriver(cmdLogger, r.Install)
	}

	engine := core.NewVerificationEngine(cmdLogger, driver)
	outcome, err := engine.Execute(cfg, loaded.varCtx, runID)
	if err != nil {
		return err
	}

	reportPath := ""
	if cfg.Artifacts.Report != "" {
		reportPath = cfg.Artifacts.ArtifactPath(cfg.Artifacts.Report)
		if err := artifacts.WriteReport(reportPath, outcome); err != nil {
			cmdLogger.Warn().Err(err).Msg("Failed to write run report")
			reportPath = ""
		} else {
			cmdLogger.Info().Str("path", reportPath).Msg("Run report written")
		}
	}

	if cfg.Publish != nil {
		publishArtifacts(cmdLogger, cfg.Publish, runID, outcome.EvidencePath, reportPath)
	}

	if outcome.OK() {
		cmdLogger.Info().Msgf("Verification %q passed in %dms. Logs can be found at %q", cfg.Name, outcome.DurationMs, logFilePath)
	} else {
		cmdLogger.Warn().Str("kind", string(outcome.Err.Kind)).Msgf("Verification %q failed. Logs can be found at %q", cfg.Name, logFilePath)
	}

	return verdict(outcome, r.Strict)
}

func (r *RunCmd) applyOverrides(cfg *core.Config) {
	if r.URL != "" {
		cfg.Target.URL = r.URL
	}
	if r.Browser != "" {
		cfg.Browser.Engine = r.Browser
	}
	if r.Headed {
		headless := false
		cfg.Browser.Headless = &headless
	}
}

// publishArtifacts uploads the evidence and report. Failures never change the outcome.
func publishArtifacts(logger types.Logger, cfg *core.PublishConfig, runID string, paths ...string) {
	ctx := context.Background()
	publisher, err := artifacts.NewPublisher(ctx, *cfg)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to configure artifact publishing")
		return
	}

	uris, err := publisher.Publish(ctx, runID, paths...)
	for _, uri := range uris {
		logger.Info().Str("uri", uri).Msg("Artifact published")
	}
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to publish artifacts")
	}
}

// verdict turns an outcome into the command's error. A browser that never
// started is always an error; any other failed verification only becomes one,
// and so a non-zero exit, in strict mode.
func verdict(outcome *core.Outcome, strict bool) error {
	if outcome.OK() {
		return nil
	}
	if outcome.Err.Kind == core.KindLaunch {
		return fmt.Errorf("starting browser: %w", outcome.Err)
	}
	if !strict {
		return nil
	}
	return fmt.Errorf("verification failed (%s): %w", outcome.Err.Kind, outcome.Err)
}

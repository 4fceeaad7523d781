package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/arnavsurve/smokeshot/pkg/core"
	"github.com/arnavsurve/smokeshot/pkg/types"
	"github.com/joho/godotenv"
)

// CLI is the root command tree parsed by kong.
type CLI struct {
	Run  RunCmd  `cmd:"" default:"1" help:"Verify the target application in a real browser."`
	Lint LintCmd `cmd:"" help:"Validate the configuration without launching a browser."`
}

// loadedConfig is a configuration file together with the variables used to
// resolve it. configDir anchors relative paths: the config file's directory,
// or the working directory for the built-in verification.
type loadedConfig struct {
	cfg       *core.Config
	varCtx    core.VarContext
	configDir string
}

// loadConfig reads .env, the config (or the built-in default) and the
// varfile, applies input defaults and checks required inputs.
func loadConfig(logger types.Logger, configPath, varfilePath, envFile string) (*loadedConfig, error) {
	if err := godotenv.Load(envFile); err != nil {
		logger.Debug().Err(err).Msgf("No %s file loaded. Relying on existing ENV if vars use {{ env.* }}", envFile)
	}

	cfg, usedDefault, err := core.LoadConfigOrDefault(configPath)
	if err != nil {
		logger.Error().Err(err).Msgf("Failed to load config file %s", configPath)
		return nil, fmt.Errorf("loading config file %q: %w", configPath, err)
	}
	if usedDefault {
		logger.Info().Msgf("Config file %s not found. Using the built-in %q verification", configPath, cfg.Name)
	} else {
		logger.Info().Msgf("Successfully loaded config: %q", cfg.Name)
	}

	configDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("determining working directory: %w", err)
	}
	if !usedDefault {
		configAbsPath, err := filepath.Abs(configPath)
		if err != nil {
			return nil, fmt.Errorf("determining absolute path for config file %q: %w", configPath, err)
		}
		configDir = filepath.Dir(configAbsPath)
	}

	varCtx := make(core.VarContext)
	if varfilePath != "" {
		resolved, err := core.ResolveVarfile(varfilePath, logger)
		switch {
		case err == nil:
			varCtx = resolved
			logger.Info().Msgf("Successfully loaded and resolved varfile: %s", varfilePath)
		case usedDefault || varfilePath == defaultVarfile:
			logger.Debug().Err(err).Msgf("Varfile %s not loaded. Proceeding without global variables", varfilePath)
		default:
			logger.Warn().Err(err).Msgf("Could not resolve varfile %q. Proceeding without global variables", varfilePath)
		}
	}

	core.ApplyInputDefaults(cfg, varCtx)
	if err := core.ValidateRequiredInputs(cfg, varCtx); err != nil {
		logger.Error().Err(err).Msg("Required input validation failed")
		return nil, err
	}

	return &loadedConfig{
		cfg:       cfg,
		varCtx:    varCtx,
		configDir: configDir,
	}, nil
}

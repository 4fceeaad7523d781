package core

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/arnavsurve/smokeshot/pkg/fileutil"
)

const (
	DefaultConfigName        = "invoice-scanner"
	DefaultTargetURL         = "http://localhost:5173"
	DefaultNavigationTimeout = 60 * time.Second
	// DefaultAssertionTimeout matches playwright's own expect() default.
	DefaultAssertionTimeout = 5 * time.Second
	DefaultBrowserEngine    = "chromium"
	DefaultArtifactsDir     = "jules-scratch/verification"
	DefaultSuccessShot      = "initial_view.png"
	DefaultErrorShot        = "error_screenshot.png"
)

// DefaultConfig is the built-in verification used when no configuration file
// exists: the invoice scanner heading and dropzone prompt.
func DefaultConfig() *Config {
	return &Config{
		Name:        DefaultConfigName,
		Description: "Invoice scanner renders its heading and dropzone prompt",
		Target: TargetConfig{
			URL:               DefaultTargetURL,
			NavigationTimeout: DefaultNavigationTimeout.String(),
		},
		Checks: []Check{
			{
				ID:       "heading",
				Uses:     "visible",
				Selector: `h1:has-text("Invoice Scanner")`,
				Timeout:  "30s",
			},
			{
				ID:       "dropzone",
				Uses:     "visible",
				Selector: `p:has-text("Drag & drop images here, or click to select files")`,
			},
		},
	}
}

// ApplyDefaults fills every unset optional field.
func ApplyDefaults(cfg *Config) {
	if cfg.Target.URL == "" {
		cfg.Target.URL = DefaultTargetURL
	}
	if cfg.Target.NavigationTimeout == "" {
		cfg.Target.NavigationTimeout = DefaultNavigationTimeout.String()
	}
	if cfg.AssertionTimeout == "" {
		cfg.AssertionTimeout = DefaultAssertionTimeout.String()
	}
	if cfg.Browser.Engine == "" {
		cfg.Browser.Engine = DefaultBrowserEngine
	}
	if cfg.Browser.Headless == nil {
		headless := true
		cfg.Browser.Headless = &headless
	}
	if cfg.Artifacts.Dir == "" {
		cfg.Artifacts.Dir = DefaultArtifactsDir
	}
	if cfg.Artifacts.Success == "" {
		cfg.Artifacts.Success = DefaultSuccessShot
	}
	if cfg.Artifacts.Error == "" {
		cfg.Artifacts.Error = DefaultErrorShot
	}
	if cfg.Artifacts.FullPage == nil {
		fullPage := true
		cfg.Artifacts.FullPage = &fullPage
	}
}

// ArtifactPath joins name onto the artifacts directory unless name is absolute.
func (a ArtifactsConfig) ArtifactPath(name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(a.Dir, name)
}

// ResolveArtifactsDir anchors a relative artifacts.dir at configDir, so
// evidence lands next to the config file whatever the working directory.
func (c *Config) ResolveArtifactsDir(configDir string) error {
	dir, err := fileutil.ResolvePathFromConfig(configDir, c.Artifacts.Dir)
	if err != nil {
		return fmt.Errorf("resolving artifacts.dir: %w", err)
	}
	c.Artifacts.Dir = dir
	return nil
}

// Timeouts returns the parsed navigation and default assertion timeouts.
func (c *Config) Timeouts() (navigation, assertion time.Duration, err error) {
	navigation, err = time.ParseDuration(c.Target.NavigationTimeout)
	if err != nil {
		return 0, 0, err
	}
	assertion, err = time.ParseDuration(c.AssertionTimeout)
	if err != nil {
		return 0, 0, err
	}
	return navigation, assertion, nil
}

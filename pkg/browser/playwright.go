package browser

import (
	"errors"
	"fmt"
	"time"

	"github.com/arnavsurve/smokeshot/pkg/log"
	"github.com/arnavsurve/smokeshot/pkg/types"
	"github.com/playwright-community/playwright-go"
)

// PlaywrightDriver launches browsers through playwright-go.
type PlaywrightDriver struct {
	// Install downloads the playwright driver and the requested engine before launching.
	Install bool
	// Logger may be nil, in which case driver events are discarded.
	Logger types.Logger
}

func NewPlaywrightDriver(logger types.Logger, install bool) *PlaywrightDriver {
	return &PlaywrightDriver{Install: install, Logger: logger}
}

func (d *PlaywrightDriver) logger() types.Logger {
	if d.Logger == nil {
		return log.NewNopLogger()
	}
	return d.Logger
}

func (d *PlaywrightDriver) Launch(opts LaunchOptions) (Browser, error) {
	logger := d.logger()
	engine := opts.Engine
	if engine == "" {
		engine = "chromium"
	}
	if !IsSupportedEngine(engine) {
		return nil, fmt.Errorf("unsupported browser engine %q", engine)
	}

	if d.Install {
		logger.Info().Str("engine", engine).Msg("Installing playwright driver and browser")
		if err := playwright.Install(&playwright.RunOptions{Browsers: []string{engine}}); err != nil {
			return nil, fmt.Errorf("installing playwright: %w", err)
		}
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("starting playwright: %w", err)
	}

	var browserType playwright.BrowserType
	switch engine {
	case "firefox":
		browserType = pw.Firefox
	case "webkit":
		browserType = pw.WebKit
	default:
		browserType = pw.Chromium
	}

	logger.Debug().Str("engine", engine).Bool("headless", opts.Headless).Msg("Launching browser")
	b, err := browserType.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
	})
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("launching %s: %w", engine, err)
	}

	return &pwBrowser{pw: pw, browser: b}, nil
}

type pwBrowser struct {
	pw      *playwright.Playwright
	browser playwright.Browser
}

func (b *pwBrowser) NewContext() (Context, error) {
	ctx, err := b.browser.NewContext()
	if err != nil {
		return nil, fmt.Errorf("creating browser context: %w", err)
	}
	return &pwContext{ctx: ctx}, nil
}

func (b *pwBrowser) Close() error {
	closeErr := b.browser.Close()
	if err := b.pw.Stop(); err != nil && closeErr == nil {
		closeErr = err
	}
	return closeErr
}

type pwContext struct {
	ctx playwright.BrowserContext
}

func (c *pwContext) NewPage() (types.Page, error) {
	page, err := c.ctx.NewPage()
	if err != nil {
		return nil, fmt.Errorf("creating page: %w", err)
	}
	return &pwPage{page: page}, nil
}

type pwPage struct {
	page playwright.Page
}

func (p *pwPage) Goto(url string, timeout time.Duration) error {
	_, err := p.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateLoad,
		Timeout:   playwright.Float(toMillis(timeout)),
	})
	return translateError(err)
}

func (p *pwPage) Locator(selector string) types.Element {
	return &pwElement{locator: p.page.Locator(selector)}
}

func (p *pwPage) Screenshot(path string, fullPage bool) error {
	_, err := p.page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(fullPage),
	})
	return translateError(err)
}

func (p *pwPage) URL() string {
	return p.page.URL()
}

type pwElement struct {
	locator playwright.Locator
}

func (e *pwElement) ExpectVisible(timeout time.Duration) error {
	err := e.locator.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(toMillis(timeout)),
	})
	return translateError(err)
}

// translateError bridges playwright's timeout sentinel to types.ErrTimeout so
// callers never import playwright to classify failures.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, playwright.ErrTimeout) {
		return fmt.Errorf("%w: %w", types.ErrTimeout, err)
	}
	return err
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

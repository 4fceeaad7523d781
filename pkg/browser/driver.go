// Package browser is the boundary between the verification engine and the
// browser automation library. The engine only ever sees these interfaces.
package browser

import "github.com/arnavsurve/smokeshot/pkg/types"

// LaunchOptions configures a browser instance.
type LaunchOptions struct {
	Engine   string
	Headless bool
}

// Driver starts browser instances.
type Driver interface {
	Launch(opts LaunchOptions) (Browser, error)
}

// Browser is a running browser instance. Close releases every resource the
// instance holds, including the automation server it was launched from.
type Browser interface {
	NewContext() (Context, error)
	Close() error
}

// Context is an isolated browsing session inside a Browser.
type Context interface {
	NewPage() (types.Page, error)
}

var supportedEngines = map[string]bool{
	"chromium": true,
	"firefox":  true,
	"webkit":   true,
}

// IsSupportedEngine reports whether name is a browser engine the driver can launch.
func IsSupportedEngine(name string) bool {
	return supportedEngines[name]
}

package types

import "time"

// ExecutionContext contains the context needed for check execution
type ExecutionContext struct {
	Check  Check
	Logger Logger
	// Page is nil during validation
	Page Page
	// DefaultTimeout applies to checks that don't set their own timeout
	DefaultTimeout time.Duration
}

// Check represents a single verification performed against the target page
type Check struct {
	ID       string    `yaml:"id"`
	Uses     string    `yaml:"uses"`
	Selector string    `yaml:"selector,omitempty"`
	Call     *HTTPCall `yaml:"call,omitempty"`
	Timeout  string    `yaml:"timeout,omitempty"`
}

// HTTPCall represents an HTTP request issued by an http check
type HTTPCall struct {
	Method       string            `yaml:"method,omitempty"`
	Url          string            `yaml:"url"`
	Headers      map[string]string `yaml:"headers,omitempty"`
	ExpectStatus int               `yaml:"expect_status,omitempty"`
	Selector     string            `yaml:"selector,omitempty"`
}

// ResolveTimeout returns the check's own timeout if it sets one, otherwise fallback.
func (c Check) ResolveTimeout(fallback time.Duration) (time.Duration, error) {
	if c.Timeout == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, err
	}
	return d, nil
}

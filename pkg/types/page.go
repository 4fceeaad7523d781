package types

import (
	"errors"
	"time"
)

// ErrTimeout is wrapped by every Page and Element operation that gave up waiting.
var ErrTimeout = errors.New("timeout")

// Page is a single browser tab owned by one verification run.
type Page interface {
	Goto(url string, timeout time.Duration) error
	Locator(selector string) Element
	Screenshot(path string, fullPage bool) error
	URL() string
}

// Element is a lazy handle to whatever currently matches a selector on a Page.
type Element interface {
	ExpectVisible(timeout time.Duration) error
}

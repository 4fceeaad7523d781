package types

// CheckResult is the standardized output structure returned by every runner's Run method.
type CheckResult struct {
	Output     any    `json:"output,omitempty"`
	DurationMs int64  `json:"duration_ms"`
	Error      string `json:"error,omitempty"`
}

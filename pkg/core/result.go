package core

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/arnavsurve/smokeshot/pkg/types"
)

// ErrorKind classifies why a verification run failed.
type ErrorKind string

const (
	KindLaunch            ErrorKind = "launch"
	KindNavigationTimeout ErrorKind = "navigation_timeout"
	KindAssertionTimeout  ErrorKind = "assertion_timeout"
	KindCheckFailed       ErrorKind = "check_failed"
	KindAutomation        ErrorKind = "automation"
)

// VerificationError is the failure branch of an Outcome.
type VerificationError struct {
	Kind    ErrorKind
	CheckID string
	Err     error
}

func (e *VerificationError) Error() string {
	if e.CheckID != "" {
		return fmt.Sprintf("check %q: %v", e.CheckID, e.Err)
	}
	return e.Err.Error()
}

func (e *VerificationError) Unwrap() error {
	return e.Err
}

func (e *VerificationError) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{
		"kind":     string(e.Kind),
		"check_id": e.CheckID,
		"message":  e.Error(),
	})
}

// CheckOutcome records one executed check.
type CheckOutcome struct {
	ID     string `json:"id"`
	Uses   string `json:"uses"`
	Passed bool   `json:"passed"`
	types.CheckResult
}

// Outcome is the result of one verification run. Err is nil when every step
// passed; EvidencePath is the screenshot written for whichever branch was taken
// and is empty when no screenshot could be captured.
type Outcome struct {
	RunID        string             `json:"run_id"`
	Name         string             `json:"name"`
	Target       string             `json:"target"`
	StartedAt    time.Time          `json:"started_at"`
	Duration     time.Duration      `json:"-"`
	DurationMs   int64              `json:"duration_ms"`
	EvidencePath string             `json:"evidence_path,omitempty"`
	Checks       []CheckOutcome     `json:"checks"`
	Err          *VerificationError `json:"error,omitempty"`
}

func (o *Outcome) OK() bool {
	return o.Err == nil
}

// Error returns the failure as a plain error, or nil on success.
func (o *Outcome) Error() error {
	if o.Err == nil {
		return nil
	}
	return o.Err
}

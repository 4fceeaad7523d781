package steprunner

import "github.com/arnavsurve/smokeshot/pkg/types"

// StepRunner executes one check against the page held in its ExecutionContext.
type StepRunner interface {
	Validate() error
	Run() (*types.CheckResult, error)
}

package steprunner

import (
	"fmt"
	"sort"

	"github.com/arnavsurve/smokeshot/pkg/types"
)

type RunnerFactory func(ctx types.ExecutionContext) (StepRunner, error)

// registry stores each type of check runner's factory function. GetRunner calls the appropriate StepRunner
// factory function to yield a new instance of that StepRunner
var registry = map[string]RunnerFactory{}

// This is called in each check runner's init() function to register its factory function with the registry.
// This allows GetRunner to return an instance of the appropriate StepRunner, using the registry to resolve
// the runner's factory.
func RegisterRunnerFactory(checkType string, factory RunnerFactory) {
	registry[checkType] = factory
}

// GetRunner returns an instance of the appropriate StepRunner based on the check's 'uses' field,
// calling the corresponding runner's factory function from the registry.
func GetRunner(ctx types.ExecutionContext) (StepRunner, error) {
	checkType := ctx.Check.Uses
	factory, ok := registry[checkType]
	if !ok {
		return nil, fmt.Errorf("no runner registered for type: %s", checkType)
	}

	return factory(ctx)
}

// RegisteredTypes lists the registered check types in sorted order.
func RegisteredTypes() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

package core

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/arnavsurve/smokeshot/pkg/types"
	"gopkg.in/yaml.v3"
)

// VarContext holds resolved input variables from smokevars.yml.
type VarContext map[string]string

// varRegex matches {{ varName }} placeholders.
var varRegex = regexp.MustCompile(`\{\{\s*([a-zA-Z0-9\._-]+)\s*\}\}`)

var envRegex = regexp.MustCompile(`^\s*\{\{\s*env\.([A-Za-z0-9_]+)\s*}}\s*$`)

// ResolveVarfile loads a YAML varfile (e.g. smokevars.yml), parses it, and resolves {{ env.NAME }} values.
// Missing environment variables resolve to "" and are reported through logger when it is non-nil.
func ResolveVarfile(path string, logger types.Logger) (VarContext, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading varfile %q: %w", path, err)
	}

	var rawVars map[string]string
	if err := yaml.Unmarshal(data, &rawVars); err != nil {
		return nil, fmt.Errorf("parsing varfile YAML from %q: %w", path, err)
	}

	resolvedCtx := make(VarContext, len(rawVars))
	for key, val := range rawVars {
		match := envRegex.FindStringSubmatch(val)
		if match == nil {
			resolvedCtx[key] = val
			continue
		}
		envVal, exists := os.LookupEnv(match[1])
		if !exists && logger != nil {
			logger.Warn().Str("env", match[1]).Str("key", key).Msg("Environment variable not found for varfile key")
		}
		resolvedCtx[key] = envVal
	}

	return resolvedCtx, nil
}

// ApplyInputDefaults fills varCtx with the default of every input it does not define.
func ApplyInputDefaults(cfg *Config, varCtx VarContext) {
	for _, input := range cfg.Inputs {
		if _, exists := varCtx[input.Name]; !exists && input.Default != "" {
			varCtx[input.Name] = input.Default
		}
	}
}

// ResolveCheckVariables takes a single check and resolves all its templated
// fields using the global context and the results of previously executed checks.
func ResolveCheckVariables(check *Check, globals VarContext, results CheckResultsContext) (*Check, error) {
	resolved := *check
	resolver := func(input string) (string, error) {
		return ResolveStringWithContext(input, globals, results)
	}

	var err error
	resolved.Selector, err = resolver(check.Selector)
	if err != nil {
		return nil, fmt.Errorf("resolving selector for check %q: %w", check.ID, err)
	}

	if check.Call != nil {
		call := *check.Call
		call.Url, err = resolver(call.Url)
		if err != nil {
			return nil, fmt.Errorf("resolving call.url for check %q: %w", check.ID, err)
		}
		call.Method, err = resolver(call.Method)
		if err != nil {
			return nil, fmt.Errorf("resolving call.method for check %q: %w", check.ID, err)
		}
		call.Selector, err = resolver(call.Selector)
		if err != nil {
			return nil, fmt.Errorf("resolving call.selector for check %q: %w", check.ID, err)
		}
		if check.Call.Headers != nil {
			call.Headers = make(map[string]string, len(check.Call.Headers))
			for k, v := range check.Call.Headers {
				resolvedV, errHeader := resolver(v)
				if errHeader != nil {
					return nil, fmt.Errorf("resolving call.headers[%s] for check %q: %w", k, check.ID, errHeader)
				}
				call.Headers[k] = resolvedV
			}
		}
		resolved.Call = &call
	}

	return &resolved, nil
}

// ResolveConfigVariables resolves the config-level templated fields (target,
// artifacts, publish). Undefined variables are an error. Checks are left
// untouched; they are resolved one at a time during execution.
func ResolveConfigVariables(cfg *Config, globals VarContext) (*Config, error) {
	if cfg == nil {
		return nil, fmt.Errorf("resolving vars in nil config")
	}

	resolved := *cfg
	resolver := func(field, input string) (string, error) {
		out, err := ResolveStringWithContext(input, globals, nil)
		if err != nil {
			return "", fmt.Errorf("resolving %s: %w", field, err)
		}
		return out, nil
	}

	var err error
	if resolved.Target.URL, err = resolver("target.url", cfg.Target.URL); err != nil {
		return nil, err
	}
	if resolved.Artifacts.Dir, err = resolver("artifacts.dir", cfg.Artifacts.Dir); err != nil {
		return nil, err
	}
	if resolved.Artifacts.Success, err = resolver("artifacts.success", cfg.Artifacts.Success); err != nil {
		return nil, err
	}
	if resolved.Artifacts.Error, err = resolver("artifacts.error", cfg.Artifacts.Error); err != nil {
		return nil, err
	}
	if resolved.Artifacts.Report, err = resolver("artifacts.report", cfg.Artifacts.Report); err != nil {
		return nil, err
	}

	if cfg.Publish != nil {
		p, err := ResolvePublishVariables(cfg.Publish, globals)
		if err != nil {
			return nil, err
		}
		resolved.Publish = p
	}

	resolved.Checks = append([]Check(nil), cfg.Checks...)
	return &resolved, nil
}

func ResolvePublishVariables(p *PublishConfig, globals VarContext) (*PublishConfig, error) {
	resolved := *p
	fields := []struct {
		name string
		ptr  *string
	}{
		{"publish.bucket", &resolved.Bucket},
		{"publish.prefix", &resolved.Prefix},
		{"publish.region", &resolved.Region},
		{"publish.endpoint", &resolved.Endpoint},
		{"publish.access_key_id", &resolved.AccessKeyID},
		{"publish.secret_access_key", &resolved.SecretAccessKey},
	}
	for _, f := range fields {
		out, err := ResolveStringWithContext(*f.ptr, globals, nil)
		if err != nil {
			return nil, fmt.Errorf("resolving %s: %w", f.name, err)
		}
		*f.ptr = out
	}
	return &resolved, nil
}

// InjectVarsIntoConfig is used by the linter: it substitutes known global
// variables everywhere and leaves unknown placeholders in place.
func InjectVarsIntoConfig(cfg *Config, globalVarCtx VarContext) (*Config, error) {
	if cfg == nil {
		return nil, fmt.Errorf("injecting vars into nil config")
	}

	resolver := func(input string) string {
		return varRegex.ReplaceAllStringFunc(input, func(match string) string {
			key := varRegex.FindStringSubmatch(match)[1]
			if val, ok := globalVarCtx[key]; ok {
				return val
			}
			return match
		})
	}

	updated := *cfg
	updated.Target.URL = resolver(cfg.Target.URL)
	updated.Artifacts.Dir = resolver(cfg.Artifacts.Dir)

	updated.Checks = make([]Check, len(cfg.Checks))
	for i, check := range cfg.Checks {
		c := check
		c.Selector = resolver(c.Selector)
		if check.Call != nil {
			call := *check.Call
			call.Url = resolver(call.Url)
			call.Selector = resolver(call.Selector)
			c.Call = &call
		}
		updated.Checks[i] = c
	}

	return &updated, nil
}

// ResolveStringWithContext is the core template resolution engine.
func ResolveStringWithContext(input string, globals VarContext, results CheckResultsContext) (string, error) {
	var firstErr error
	output := varRegex.ReplaceAllStringFunc(input, func(match string) string {
		if firstErr != nil {
			return match
		}
		key := varRegex.FindStringSubmatch(match)[1]
		val, found := FindValueInContext(key, globals, results)
		if !found {
			firstErr = fmt.Errorf("undefined variable: %s", key)
			return match
		}
		return fmt.Sprintf("%v", val)
	})

	if firstErr != nil {
		return "", firstErr
	}
	return output, nil
}

// FindValueInContext looks key up in the results of earlier checks
// (checks.<id>.output...) or in the globals. A ".json" suffix returns the
// value JSON-encoded.
func FindValueInContext(key string, globals VarContext, results CheckResultsContext) (any, bool) {
	wantsJSON := strings.HasSuffix(key, ".json")
	if wantsJSON {
		key = strings.TrimSuffix(key, ".json")
	}

	var value any
	var found bool

	if strings.HasPrefix(key, "checks.") {
		parts := strings.Split(key, ".")
		if len(parts) < 3 { // Must be at least `checks.id.field`
			return nil, false
		}
		checkID := parts[1]
		field := parts[2]

		if result, ok := results[checkID]; ok && field == "output" {
			value, found = GetNestedValue(result.Output, parts[3:])
		}
	} else if val, ok := globals[key]; ok {
		value, found = val, true
	}

	if !found {
		return nil, false
	}

	if wantsJSON {
		jsonBytes, err := json.Marshal(value)
		if err != nil {
			return fmt.Sprintf("{\"error\": \"failed to marshal to json: %v\"}", err), true
		}
		return string(jsonBytes), true
	}

	return value, true
}

// GetNestedValue traverses a data structure (map or string) using a path slice.
func GetNestedValue(data any, path []string) (any, bool) {
	if len(path) == 0 {
		return data, true
	}
	if data == nil {
		return nil, false
	}

	current := data
	for _, keyInPath := range path {
		switch typedCurrent := current.(type) {
		case map[string]any:
			val, exists := typedCurrent[keyInPath]
			if !exists {
				return nil, false
			}
			current = val
		case map[string]string:
			val, exists := typedCurrent[keyInPath]
			if !exists {
				return nil, false
			}
			current = val
		default:
			return nil, false
		}
	}
	return current, true
}

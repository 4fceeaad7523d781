package core_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arnavsurve/smokeshot/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestResolveVarfile(t *testing.T) {
	tempDir := t.TempDir()
	varfilePath := filepath.Join(tempDir, "test_vars.yml")

	t.Setenv("TEST_ENV_VAR", "env_value")

	varfileContent := `
plain_var: plain_value
env_var: "{{ env.TEST_ENV_VAR }}"
empty_env_var: "{{ env.NONEXISTENT_VAR }}"
`
	require.NoError(t, os.WriteFile(varfilePath, []byte(varfileContent), 0644))

	vars, err := core.ResolveVarfile(varfilePath, nil)
	require.NoError(t, err)

	assert.Equal(t, "plain_value", vars["plain_var"])
	assert.Equal(t, "env_value", vars["env_var"])
	assert.Equal(t, "", vars["empty_env_var"])

	_, err = core.ResolveVarfile("nonexistent_file.yml", nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "reading varfile")

	invalidPath := filepath.Join(tempDir, "invalid.yml")
	require.NoError(t, os.WriteFile(invalidPath, []byte("invalid: yaml: ]:"), 0644))
	_, err = core.ResolveVarfile(invalidPath, nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "parsing varfile YAML")
}

func TestApplyInputDefaults(t *testing.T) {
	cfg := &core.Config{Inputs: []core.Input{
		{Name: "base_url", Type: "string", Default: "http://localhost:5173"},
		{Name: "engine", Type: "string", Default: "chromium"},
		{Name: "token", Type: "string"},
	}}
	varCtx := core.VarContext{"engine": "webkit"}

	core.ApplyInputDefaults(cfg, varCtx)

	assert.Equal(t, core.VarContext{"base_url": "http://localhost:5173", "engine": "webkit"}, varCtx)
}

func TestFindValueInContext(t *testing.T) {
	globals := core.VarContext{"url": "https://example.com"}
	results := core.CheckResultsContext{
		"index": {
			Output: map[string]any{
				"headers":     map[string]string{"Content-Type": "text/html"},
				"status_code": 200,
			},
		},
		"raw": {
			Output: "raw string output",
		},
	}

	testCases := []struct {
		key      string
		expected any
		found    bool
	}{
		{"url", "https://example.com", true},
		{"checks.index.output.status_code", 200, true},
		{"checks.index.output.headers.Content-Type", "text/html", true},
		{"checks.raw.output", "raw string output", true},
		{"checks.raw.output.key", nil, false},
		{"checks.index.duration", nil, false},
		{"checks.index", nil, false},
		{"nonexistent", nil, false},
		{"checks.nonexistent.output", nil, false},
	}

	for _, tc := range testCases {
		t.Run(tc.key, func(t *testing.T) {
			val, found := core.FindValueInContext(tc.key, globals, results)
			assert.Equal(t, tc.found, found)
			if tc.found {
				assert.Equal(t, tc.expected, val)
			}
		})
	}
}

func TestResolveCheckVariables(t *testing.T) {
	globals := core.VarContext{"base_url": "http://localhost:5173", "heading": "Invoice Scanner"}
	results := core.CheckResultsContext{
		"index": {Output: map[string]any{"title": "Invoice Scanner"}},
	}

	check := &core.Check{
		ID:       "heading",
		Uses:     "visible",
		Selector: `h1:has-text("{{ checks.index.output.title }}")`,
	}
	resolved, err := core.ResolveCheckVariables(check, globals, results)
	require.NoError(t, err)
	assert.Equal(t, `h1:has-text("Invoice Scanner")`, resolved.Selector)

	httpCheck := &core.Check{
		ID:   "assets",
		Uses: "http",
		Call: &core.HTTPCall{
			Method:   "GET",
			Url:      "{{ base_url }}/assets",
			Selector: "h1:contains('{{ heading }}')",
			Headers:  map[string]string{"X-Page": "{{ checks.index.output.title }}"},
		},
	}
	resolved, err = core.ResolveCheckVariables(httpCheck, globals, results)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:5173/assets", resolved.Call.Url)
	assert.Equal(t, "h1:contains('Invoice Scanner')", resolved.Call.Selector)
	assert.Equal(t, "Invoice Scanner", resolved.Call.Headers["X-Page"])
	assert.Equal(t, "{{ base_url }}/assets", httpCheck.Call.Url, "original check must not be modified")

	_, err = core.ResolveCheckVariables(&core.Check{ID: "x", Selector: "{{ missing }}"}, globals, results)
	assert.ErrorContains(t, err, "undefined variable: missing")
}

func TestResolveStringWithContext_UndefinedVar(t *testing.T) {
	input := "Hello {{ undefined_var }}"
	_, err := core.ResolveStringWithContext(input, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "undefined variable: undefined_var")
}

func TestResolveStringWithContext_Json(t *testing.T) {
	globals := core.VarContext{"simple": "value"}
	results := core.CheckResultsContext{
		"index": {
			Output: map[string]any{
				"nested": map[string]any{
					"values": []string{"one", "two"},
				},
				"id": 123,
			},
		},
	}

	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{"Simple JSON variable", "JSON: {{ checks.index.output.json }}", `JSON: {"id":123,"nested":{"values":["one","two"]}}`},
		{"Nested JSON variable", "Nested: {{ checks.index.output.nested.json }}", `Nested: {"values":["one","two"]}`},
		{"Primitive value as JSON", "ID: {{ checks.index.output.id.json }}", `ID: 123`},
		{"Global variable as JSON", "Global: {{ simple.json }}", `Global: "value"`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := core.ResolveStringWithContext(tc.input, globals, results)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, result)
		})
	}
}

func TestResolveStringWithContext_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		name := rapid.StringMatching(`[a-z][a-z0-9_]{0,11}`).Draw(rt, "name")
		value := rapid.StringMatching(`[A-Za-z0-9:/._-]{0,40}`).Draw(rt, "value")
		prefix := rapid.StringMatching(`[a-z ]{0,10}`).Draw(rt, "prefix")

		out, err := core.ResolveStringWithContext(prefix+"{{ "+name+" }}", core.VarContext{name: value}, nil)
		if err != nil {
			rt.Fatalf("unexpected error: %v", err)
		}
		if out != prefix+value {
			rt.Fatalf("got %q, want %q", out, prefix+value)
		}

		out, err = core.ResolveStringWithContext(prefix, nil, nil)
		if err != nil || out != prefix {
			rt.Fatalf("text without placeholders must pass through: %q -> %q (%v)", prefix, out, err)
		}
	})
}

func TestGetNestedValue(t *testing.T) {
	testData := map[string]any{
		"a": map[string]any{
			"b": map[string]any{
				"c": "value",
			},
		},
		"stringMap": map[string]string{"key": "value"},
	}

	val, ok := core.GetNestedValue(testData, []string{"a", "b", "c"})
	assert.True(t, ok)
	assert.Equal(t, "value", val)

	val, ok = core.GetNestedValue(testData, []string{"stringMap", "key"})
	assert.True(t, ok)
	assert.Equal(t, "value", val)

	_, ok = core.GetNestedValue(testData, []string{"a", "missing"})
	assert.False(t, ok)

	_, ok = core.GetNestedValue(nil, []string{"a"})
	assert.False(t, ok)

	val, ok = core.GetNestedValue("raw", nil)
	assert.True(t, ok)
	assert.Equal(t, "raw", val)
}

func TestInjectVarsIntoConfig(t *testing.T) {
	cfg := core.DefaultConfig()
	cfg.Target.URL = "{{ base_url }}"
	cfg.Checks[0].Selector = `h1:has-text("{{ title }}")`

	injected, err := core.InjectVarsIntoConfig(cfg, core.VarContext{"base_url": "http://127.0.0.1:3000"})
	require.NoError(t, err)

	assert.Equal(t, "http://127.0.0.1:3000", injected.Target.URL)
	assert.Equal(t, `h1:has-text("{{ title }}")`, injected.Checks[0].Selector, "unknown vars are left in place")
	assert.Equal(t, "{{ base_url }}", cfg.Target.URL)

	_, err = core.InjectVarsIntoConfig(nil, nil)
	assert.Error(t, err)
}

func TestResolvePublishVariables(t *testing.T) {
	p := &core.PublishConfig{
		Bucket:          "{{ bucket }}",
		Prefix:          "runs/{{ env_name }}",
		AccessKeyID:     "{{ key }}",
		SecretAccessKey: "{{ secret }}",
	}
	globals := core.VarContext{"bucket": "smoke", "env_name": "staging", "key": "AKIA", "secret": "shh"}

	resolved, err := core.ResolvePublishVariables(p, globals)
	require.NoError(t, err)
	assert.Equal(t, "smoke", resolved.Bucket)
	assert.Equal(t, "runs/staging", resolved.Prefix)
	assert.Equal(t, "AKIA", resolved.AccessKeyID)
	assert.Equal(t, "shh", resolved.SecretAccessKey)
	assert.Equal(t, "{{ bucket }}", p.Bucket)

	_, err = core.ResolvePublishVariables(&core.PublishConfig{Bucket: "{{ nope }}"}, globals)
	assert.ErrorContains(t, err, "resolving publish.bucket")
}

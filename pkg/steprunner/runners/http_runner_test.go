package runners_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/arnavsurve/smokeshot/pkg/core"
	"github.com/arnavsurve/smokeshot/pkg/steprunner"
	"github.com/arnavsurve/smokeshot/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const indexHTML = `<!doctype html>
<html><head><title>Invoice Scanner</title></head>
<body><div id="root"><h1>Invoice Scanner</h1></div></body></html>`

func newIndexServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		assert.Equal(t, "Smokeshot-Http-Client/1.0", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(indexHTML))
	})
	mux.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func runHttpCheck(t *testing.T, check core.Check) (*types.CheckResult, error) {
	t.Helper()
	runner, err := steprunner.GetRunner(core.ExecutionContext{Check: check})
	require.NoError(t, err)
	require.NoError(t, runner.Validate())
	return runner.Run()
}

func TestHttpRunner_Validate(t *testing.T) {
	tests := []struct {
		name     string
		check    core.Check
		errorMsg string
	}{
		{"missing call", core.Check{ID: "c", Uses: "http"}, "must define 'call'"},
		{"missing url", core.Check{ID: "c", Uses: "http", Call: &core.HTTPCall{Method: "GET"}}, "'call.url' is required"},
		{"bad status", core.Check{ID: "c", Uses: "http", Call: &core.HTTPCall{Url: "http://x", ExpectStatus: 42}}, "not a valid HTTP status"},
		{"top-level selector", core.Check{ID: "c", Uses: "http", Selector: "h1", Call: &core.HTTPCall{Url: "http://x"}}, "must not define 'selector'"},
		{"ok", core.Check{ID: "c", Uses: "http", Call: &core.HTTPCall{Url: "http://x", Method: "PURGE"}}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner, err := steprunner.GetRunner(core.ExecutionContext{Check: tt.check})
			require.NoError(t, err)

			err = runner.Validate()
			if tt.errorMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorMsg)
		})
	}
}

func TestHttpRunner_Run(t *testing.T) {
	srv := newIndexServer(t)

	t.Run("status and selector match", func(t *testing.T) {
		result, err := runHttpCheck(t, core.Check{
			ID:   "index",
			Uses: "http",
			Call: &core.HTTPCall{Url: srv.URL + "/", ExpectStatus: 200, Selector: "#root h1"},
		})
		require.NoError(t, err)

		output := result.Output.(map[string]any)
		assert.Equal(t, 200, output["status_code"])
		assert.Equal(t, "Invoice Scanner", output["title"])
		assert.Equal(t, 1, output["matches"])
	})

	t.Run("unexpected status", func(t *testing.T) {
		_, err := runHttpCheck(t, core.Check{
			ID:   "missing",
			Uses: "http",
			Call: &core.HTTPCall{Url: srv.URL + "/nope", ExpectStatus: 200},
		})
		assert.ErrorContains(t, err, "expected status 200, got 404")
	})

	t.Run("selector not found", func(t *testing.T) {
		_, err := runHttpCheck(t, core.Check{
			ID:   "index",
			Uses: "http",
			Call: &core.HTTPCall{Url: srv.URL + "/", Selector: "p.dropzone"},
		})
		assert.ErrorContains(t, err, `selector "p.dropzone" matched no elements`)
	})

	t.Run("request deadline is a check failure", func(t *testing.T) {
		_, err := runHttpCheck(t, core.Check{
			ID:      "slow",
			Uses:    "http",
			Timeout: "50ms",
			Call:    &core.HTTPCall{Url: srv.URL + "/slow"},
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "HTTP request timed out after 50ms")
		assert.True(t, errors.Is(err, context.DeadlineExceeded))
		assert.False(t, errors.Is(err, types.ErrTimeout))
	})

	t.Run("connection refused", func(t *testing.T) {
		closed := httptest.NewServer(http.NotFoundHandler())
		url := closed.URL
		closed.Close()

		_, err := runHttpCheck(t, core.Check{ID: "down", Uses: "http", Call: &core.HTTPCall{Url: url}})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "HTTP request failed")
		assert.False(t, errors.Is(err, types.ErrTimeout))
	})
}

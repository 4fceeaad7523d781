package security

import (
	"net/url"
	"sort"
	"strings"

	"github.com/arnavsurve/smokeshot/pkg/core"
)

const mask = "********"

// Redactor masks secret values in log output. Secrets are also matched in
// their URL query-escaped form, since they often travel inside target URLs.
type Redactor struct {
	Secrets []string
}

// NewRedactor collects the values of every input marked secret.
func NewRedactor(inputs []core.Input, varCtx core.VarContext) *Redactor {
	var secretValues []string
	for _, input := range inputs {
		if input.Secret {
			if val, ok := varCtx[input.Name]; ok && val != "" {
				secretValues = append(secretValues, val)
			}
		}
	}
	return &Redactor{
		Secrets: secretValues,
	}
}

// Add registers extra secret values, such as resolved publish credentials.
func (r *Redactor) Add(secrets ...string) {
	for _, s := range secrets {
		if s != "" {
			r.Secrets = append(r.Secrets, s)
		}
	}
}

func (r *Redactor) Redact(s string) string {
	if r == nil || len(r.Secrets) == 0 {
		return s
	}

	// Longest first, so a secret that contains another one is masked whole
	candidates := make([]string, 0, len(r.Secrets)*2)
	for _, secret := range r.Secrets {
		if secret == "" {
			continue
		}
		candidates = append(candidates, secret)
		if escaped := url.QueryEscape(secret); escaped != secret {
			candidates = append(candidates, escaped)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return len(candidates[i]) > len(candidates[j])
	})

	for _, secret := range candidates {
		s = strings.ReplaceAll(s, secret, mask)
	}
	return s
}

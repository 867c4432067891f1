// Package envcheck inspects environment variables and filesystem access
// without changing either.
package envcheck

import (
	"os"
	"sort"

	"github.com/briamv/qacli/internal/domain"
)

// Watched are the variables reported by 'qa doctor' even when no planned
// tool requires them.
var Watched = []string{
	"SNYK_TOKEN",
	"SEMGREP_APP_TOKEN",
	"CI",
	"HTTP_PROXY",
	"HTTPS_PROXY",
	"NO_PROXY",
	"NPM_CONFIG_REGISTRY",
	"PIP_INDEX_URL",
}

// Validator implements domain.EnvValidator.
type Validator struct {
	lookup func(string) (string, bool)
	access func(string) bool
}

func New() *Validator {
	return &Validator{lookup: os.LookupEnv, access: accessible}
}

// NewWithLookup builds a Validator over a fixed variable set.
func NewWithLookup(env map[string]string) *Validator {
	return &Validator{
		lookup: func(k string) (string, bool) {
			v, ok := env[k]
			return v, ok
		},
		access: accessible,
	}
}

// CheckEnvironmentVariables reports every watched variable plus those in
// required. A variable is available when set to a non-empty value.
func (v *Validator) CheckEnvironmentVariables(required []string) map[string]domain.EnvVarStatus {
	out := make(map[string]domain.EnvVarStatus, len(Watched)+len(required))
	for _, name := range Watched {
		val, ok := v.lookup(name)
		out[name] = domain.EnvVarStatus{Available: ok && val != ""}
	}
	for _, name := range required {
		val, ok := v.lookup(name)
		out[name] = domain.EnvVarStatus{Required: true, Available: ok && val != ""}
	}
	return out
}

// CheckFileSystemPermissions reports whether every path is readable and
// writable by the current user.
func (v *Validator) CheckFileSystemPermissions(paths []string) bool {
	for _, p := range paths {
		if !v.access(p) {
			return false
		}
	}
	return true
}

// Missing returns the required variables that are not available, sorted.
func Missing(status map[string]domain.EnvVarStatus) []string {
	var out []string
	for name, st := range status {
		if st.Required && !st.Available {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

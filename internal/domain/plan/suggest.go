package plan

import (
	"fmt"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/briamv/qacli/internal/domain"
)

// invalidValue builds the configuration error for an unknown flag value,
// suggesting the closest valid spelling when one exists.
func invalidValue(flag, got string, valid []string) *domain.Error {
	err := domain.NewError(domain.ErrCodeInvalidFlag,
		fmt.Sprintf("invalid value %q for %s", got, flag)).WithFlag(flag)
	if s := Suggest(got, valid); s != "" {
		err.WithSuggestions(fmt.Sprintf("did you mean %s=%s?", flag, s))
	}
	return err.WithSuggestions("valid values: " + strings.Join(valid, ", "))
}

// Suggest returns the best fuzzy match for input among candidates, or "".
func Suggest(input string, candidates []string) string {
	input = strings.ToLower(strings.TrimSpace(input))
	if input == "" {
		return ""
	}
	matches := fuzzy.Find(input, candidates)
	if len(matches) > 0 {
		return matches[0].Str
	}
	// Fall back to a shared prefix so typos past the first letters still help.
	for _, c := range candidates {
		if len(input) >= 2 && strings.HasPrefix(c, input[:2]) {
			return c
		}
	}
	return ""
}

package recommend

import (
	"strings"

	"github.com/medisave/alternatives-api/interfaces"
	"github.com/medisave/alternatives-api/medicines"
)

// Compile-time check to ensure SubstringMatcher implements Matcher
var _ interfaces.Matcher = (*SubstringMatcher)(nil)

// SubstringMatcher resolves queries by case-insensitive literal substring
// match against the clean names, returning the first hit in table order.
// Multiple matches are not disambiguated further.
type SubstringMatcher struct{}

// NewSubstringMatcher creates the default matcher.
func NewSubstringMatcher() *SubstringMatcher {
	return &SubstringMatcher{}
}

// Match returns the index of the first record whose clean name contains the
// query. The query must already be lowercased and trimmed.
func (m *SubstringMatcher) Match(catalog *medicines.Catalog, query string) (int, bool) {
	for i := range catalog.Medicines {
		if strings.Contains(catalog.Medicines[i].CleanName, query) {
			return i, true
		}
	}
	return 0, false
}

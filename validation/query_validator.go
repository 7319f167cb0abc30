// Package validation provides input validation for the alternatives API.
package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/medisave/alternatives-api/interfaces"
)

// Pre-compiled regex for query input: letters, numbers, spaces and the
// punctuation that occurs in medicine names (hyphens, apostrophes, periods,
// plus, percent).
var queryRegex = regexp.MustCompile(`^[a-zA-Z0-9\s\-\.\+'%]+$`)

// Dangerous patterns as strings; strings.Contains is 5-10x faster than
// regex for these.
var dangerousPatterns = []string{
	"<script", "</script>", "javascript:", "onload=", "onerror=",
	"eval(", "expression(", "@import",
	// SQL injection patterns
	"' or ", "\" or ", "union select", "drop table", "delete from",
	"insert into", "--", "/*", "*/",
	// Command injection patterns
	"; ", "| ", "& ", "`", "$(", "${",
	// Path traversal patterns
	"../", "..\\", "%2e%2e", "file://",
}

// QueryValidatorImpl implements the interfaces.QueryValidator interface
type QueryValidatorImpl struct{}

// NewQueryValidator creates a new query validator
func NewQueryValidator() interfaces.QueryValidator {
	return &QueryValidatorImpl{}
}

// ValidateQuery validates a user-supplied medicine name query.
func (v *QueryValidatorImpl) ValidateQuery(input string) error {
	if strings.TrimSpace(input) == "" {
		return fmt.Errorf("query cannot be empty")
	}

	if len(input) < 3 {
		return fmt.Errorf("query too short: minimum 3 characters")
	}

	if len(input) > 100 {
		return fmt.Errorf("query too long: maximum 100 characters")
	}

	// Word count validation to prevent DoS with many short words
	words := strings.Fields(input)
	if len(words) > 8 {
		return fmt.Errorf("query too complex: maximum 8 words allowed")
	}

	lowerInput := strings.ToLower(input)
	for _, pattern := range dangerousPatterns {
		if strings.Contains(lowerInput, pattern) {
			return fmt.Errorf("query contains potentially dangerous content")
		}
	}

	if !queryRegex.MatchString(input) {
		return fmt.Errorf("query contains invalid characters. Only letters, numbers, spaces, hyphens, apostrophes, periods, plus and percent signs are allowed")
	}

	if hasExcessiveRepetition(input) {
		return fmt.Errorf("query contains excessive character repetition")
	}

	return nil
}

// hasExcessiveRepetition checks for the same character repeated more than
// 10 times consecutively.
func hasExcessiveRepetition(input string) bool {
	for i := 0; i < len(input)-10; i++ {
		allSame := true
		for j := 1; j <= 10; j++ {
			if input[i] != input[i+j] {
				allSame = false
				break
			}
		}
		if allSame {
			return true
		}
	}
	return false
}

package strength

import (
	"strings"

	zxcvbn "github.com/ccojocar/zxcvbn-go"
)

// Zxcvbn wraps the zxcvbn entropy estimator. Its 0..4 score is scaled by 25
// so it reads on the same 0..100 dial as Weighted. Hints are passed as
// user inputs, so a password built from the username scores lower.
type Zxcvbn struct{}

// zxcvbn is slow on very long input; everything past this is ignored.
const zxcvbnMaxLen = 100

func (Zxcvbn) Name() string { return NameZxcvbn }

func (Zxcvbn) Evaluate(password string, hints ...string) Report {
	if password == "" {
		return Report{
			Strategy:    NameZxcvbn,
			Max:         100,
			Category:    Weak,
			Suggestions: weightedSuggestions(password),
		}
	}

	checked := password
	if r := []rune(checked); len(r) > zxcvbnMaxLen {
		checked = string(r[:zxcvbnMaxLen])
	}

	var inputs []string
	for _, h := range hints {
		if h = strings.TrimSpace(h); h != "" {
			inputs = append(inputs, h)
		}
	}

	result := zxcvbn.PasswordStrength(checked, inputs)
	score := result.Score * 25

	var category Category
	switch {
	case result.Score <= 1:
		category = Weak
	case result.Score == 2:
		category = Medium
	default:
		category = Strong
	}

	suggestions := []string{}
	if category != Strong {
		suggestions = weightedSuggestions(password)
		if containsHint(password, inputs) {
			suggestions = append(suggestions, SuggestAvoidUser)
		}
	}

	return Report{
		Strategy:    NameZxcvbn,
		Score:       score,
		Max:         100,
		Category:    category,
		Suggestions: suggestions,
	}
}

func weightedSuggestions(password string) []string {
	_, missing := weightedScore(scan(password))
	if missing == nil {
		return []string{}
	}
	return missing
}

func containsHint(password string, hints []string) bool {
	lower := strings.ToLower(password)
	for _, h := range hints {
		if strings.Contains(lower, strings.ToLower(h)) {
			return true
		}
	}
	return false
}

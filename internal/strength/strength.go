// Package strength scores passwords.
//
// Three strategies live side by side and are picked by name:
//
//	weighted  0..100, six cumulative rules (the strength indicator)
//	criteria  0..5, five equal predicates (the signup checklist)
//	zxcvbn    0..100, entropy estimate from zxcvbn-go scaled x25
//
// The first two classify some passwords differently: "Abcdefgh12" is strong
// under weighted (70) but only medium under criteria (4 of 5, no special).
// Callers pick the one their screen uses.
//
// Every strategy is total: any string, including the empty one, yields a
// report and never an error.
package strength

import (
	"fmt"
	"strings"

	"github.com/sakif/password-analyzer/internal/apperror"
)

// Category is the coarse verdict shown next to a score.
type Category string

const (
	Weak   Category = "weak"
	Medium Category = "medium"
	Strong Category = "strong"
)

// Suggestion texts. The order of a report's suggestions follows the order
// of the rules that produced them.
const (
	SuggestLength    = "Use at least 8 characters"
	SuggestUpper     = "Add uppercase letters"
	SuggestLower     = "Add lowercase letters"
	SuggestDigit     = "Add numbers"
	SuggestSpecial   = "Add special characters (e.g., !@#$%)"
	SuggestLength10  = "Use at least 10 characters"
	SuggestAvoidUser = "Avoid your name or email in the password"
)

// Report is the outcome of scoring one password.
type Report struct {
	Strategy    string   `json:"strategy"`
	Score       int      `json:"score"`
	Max         int      `json:"max"`
	Category    Category `json:"category"`
	Suggestions []string `json:"suggestions"`
}

// Percent scales Score to 0..100 for progress-bar style display.
func (r Report) Percent() int {
	if r.Max <= 0 {
		return 0
	}
	return r.Score * 100 / r.Max
}

// Strategy scores a password. hints are words tied to the account (username,
// email) that a strategy may penalise; strategies that ignore them must
// still accept them.
type Strategy interface {
	Name() string
	Evaluate(password string, hints ...string) Report
}

const (
	NameWeighted = "weighted"
	NameCriteria = "criteria"
	NameZxcvbn   = "zxcvbn"
)

// Names lists the selectable strategies, default first.
var Names = []string{NameWeighted, NameCriteria, NameZxcvbn}

// Lookup returns the strategy registered under name. An empty name selects
// the weighted strategy.
func Lookup(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", NameWeighted:
		return Weighted{}, nil
	case NameCriteria:
		return Criteria{}, nil
	case NameZxcvbn:
		return Zxcvbn{}, nil
	default:
		return nil, apperror.ValidationFailed("strategy",
			fmt.Sprintf("unknown strength strategy %q (want one of %s)", name, strings.Join(Names, ", ")))
	}
}

// All returns one instance of every strategy in Names order.
func All() []Strategy {
	return []Strategy{Weighted{}, Criteria{}, Zxcvbn{}}
}

// classes records which character classes appear in a password. The classes
// are ASCII ranges, so a non-ASCII letter counts as a special character.
type classes struct {
	upper, lower, digit, other bool
	specialSet                 bool // one of criteriaSpecials
	length                     int  // in runes
}

const criteriaSpecials = `!@#$%^&*(),.?":{}|<>`

func scan(password string) classes {
	var c classes
	for _, r := range password {
		c.length++
		switch {
		case r >= 'A' && r <= 'Z':
			c.upper = true
		case r >= 'a' && r <= 'z':
			c.lower = true
		case r >= '0' && r <= '9':
			c.digit = true
		default:
			c.other = true
			if strings.ContainsRune(criteriaSpecials, r) {
				c.specialSet = true
			}
		}
	}
	return c
}

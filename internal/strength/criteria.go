package strength

// Criteria is the five-predicate checklist used on signup: lowercase,
// uppercase, digit, a special from !@#$%^&*(),.?":{}|<> and length >= 10.
// Each satisfied predicate is worth one point. 0..2 is weak, 3..4 medium,
// 5 strong.
type Criteria struct{}

const criteriaMax = 5

func (Criteria) Name() string { return NameCriteria }

// Checks returns the predicates in checklist order, for rendering ticks.
func (Criteria) Checks(password string) []Check {
	c := scan(password)
	return []Check{
		{Label: "lowercase letter", Met: c.lower, Suggestion: SuggestLower},
		{Label: "uppercase letter", Met: c.upper, Suggestion: SuggestUpper},
		{Label: "number", Met: c.digit, Suggestion: SuggestDigit},
		{Label: "special character", Met: c.specialSet, Suggestion: SuggestSpecial},
		{Label: "at least 10 characters", Met: c.length >= 10, Suggestion: SuggestLength10},
	}
}

// Check is one checklist line.
type Check struct {
	Label      string `json:"label"`
	Met        bool   `json:"met"`
	Suggestion string `json:"-"`
}

func (cr Criteria) Evaluate(password string, _ ...string) Report {
	score := 0
	suggestions := []string{}
	for _, check := range cr.Checks(password) {
		if check.Met {
			score++
		} else {
			suggestions = append(suggestions, check.Suggestion)
		}
	}

	category := CriteriaCategory(score)
	if category == Strong {
		suggestions = []string{}
	}

	return Report{
		Strategy:    NameCriteria,
		Score:       score,
		Max:         criteriaMax,
		Category:    category,
		Suggestions: suggestions,
	}
}

// CriteriaCategory maps a 0..5 count onto a category.
func CriteriaCategory(score int) Category {
	switch {
	case score <= 2:
		return Weak
	case score <= 4:
		return Medium
	default:
		return Strong
	}
}

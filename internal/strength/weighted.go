package strength

// Weighted is the 0..100 cumulative scorer.
//
//	length >= 8   +20
//	length >= 12  +10
//	[A-Z]         +20
//	[a-z]         +15
//	[0-9]         +15
//	[^A-Za-z0-9]  +20
//
// Below 40 is weak, below 70 medium, the rest strong.
type Weighted struct{}

const weightedMax = 100

func (Weighted) Name() string { return NameWeighted }

// Score returns the 0..100 score alone.
func (Weighted) Score(password string) int {
	score, _ := weightedScore(scan(password))
	return score
}

func (w Weighted) Evaluate(password string, _ ...string) Report {
	score, missing := weightedScore(scan(password))
	category := WeightedCategory(score)

	suggestions := []string{}
	if category != Strong {
		suggestions = missing
	}

	return Report{
		Strategy:    NameWeighted,
		Score:       score,
		Max:         weightedMax,
		Category:    category,
		Suggestions: suggestions,
	}
}

// WeightedCategory maps a 0..100 score onto a category.
func WeightedCategory(score int) Category {
	switch {
	case score < 40:
		return Weak
	case score < 70:
		return Medium
	default:
		return Strong
	}
}

// weightedScore returns the capped score and the suggestions for every
// unmet rule in rule order. The length >= 12 bonus has no suggestion of its
// own.
func weightedScore(c classes) (int, []string) {
	score := 0
	var missing []string

	if c.length >= 8 {
		score += 20
	} else {
		missing = append(missing, SuggestLength)
	}
	if c.length >= 12 {
		score += 10
	}
	if c.upper {
		score += 20
	} else {
		missing = append(missing, SuggestUpper)
	}
	if c.lower {
		score += 15
	} else {
		missing = append(missing, SuggestLower)
	}
	if c.digit {
		score += 15
	} else {
		missing = append(missing, SuggestDigit)
	}
	if c.other {
		score += 20
	} else {
		missing = append(missing, SuggestSpecial)
	}

	if score > weightedMax {
		score = weightedMax
	}
	return score, missing
}

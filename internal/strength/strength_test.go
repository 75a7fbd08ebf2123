package strength

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/sakif/password-analyzer/internal/apperror"
)

// =========================================================================
// WEIGHTED TESTS
// =========================================================================

func TestWeightedScore(t *testing.T) {
	tests := []struct {
		name     string
		password string
		want     int
		category Category
	}{
		{"empty", "", 0, Weak},
		{"lowercase eight", "abcdefgh", 20, Weak},
		{"all rules twelve chars", "Abcdef1!ghij", 100, Strong},
		{"short mixed", "aB1!", 70, Strong},
		{"digits only", "12345678", 35, Weak},
		{"lower and digits ten chars", "abcdefgh12", 50, Medium},
		{"upper lower digit ten chars", "Abcdefgh12", 70, Strong},
		{"long lowercase", "abcdefghijklmnop", 45, Medium},
		{"non-ascii letter counts as special", "é", 20, Weak},
		{"space counts as special", "a b", 35, Weak},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Weighted{}.Evaluate(tt.password)
			if r.Score != tt.want {
				t.Errorf("Score = %d, want %d", r.Score, tt.want)
			}
			if r.Category != tt.category {
				t.Errorf("Category = %q, want %q", r.Category, tt.category)
			}
			if got := (Weighted{}).Score(tt.password); got != tt.want {
				t.Errorf("Weighted.Score() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestWeightedScoreBounds(t *testing.T) {
	inputs := []string{
		"", "a", "A", "1", "!", "aA1!", "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
		"Aa1!Aa1!Aa1!Aa1!Aa1!", strings.Repeat("Zz9#", 50), "パスワード",
	}
	for _, p := range inputs {
		r := Weighted{}.Evaluate(p)
		if r.Score < 0 || r.Score > 100 {
			t.Errorf("Evaluate(%q).Score = %d, out of [0,100]", p, r.Score)
		}
		if r.Max != 100 {
			t.Errorf("Evaluate(%q).Max = %d, want 100", p, r.Max)
		}
	}
}

func TestWeightedCategoryBoundaries(t *testing.T) {
	tests := []struct {
		score int
		want  Category
	}{
		{0, Weak}, {39, Weak}, {40, Medium}, {69, Medium}, {70, Strong}, {100, Strong},
	}
	for _, tt := range tests {
		if got := WeightedCategory(tt.score); got != tt.want {
			t.Errorf("WeightedCategory(%d) = %q, want %q", tt.score, got, tt.want)
		}
	}
}

func TestWeightedSuggestions(t *testing.T) {
	t.Run("empty password gets every suggestion in order", func(t *testing.T) {
		got := Weighted{}.Evaluate("").Suggestions
		want := []string{SuggestLength, SuggestUpper, SuggestLower, SuggestDigit, SuggestSpecial}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Suggestions = %v, want %v", got, want)
		}
	})

	t.Run("unmet rules only", func(t *testing.T) {
		got := Weighted{}.Evaluate("abcdefgh").Suggestions
		want := []string{SuggestUpper, SuggestDigit, SuggestSpecial}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Suggestions = %v, want %v", got, want)
		}
	})

	t.Run("strong hides suggestions", func(t *testing.T) {
		// 70: missing the special character, but strong already.
		r := Weighted{}.Evaluate("Abcdefgh12")
		if r.Category != Strong {
			t.Fatalf("Category = %q, want strong", r.Category)
		}
		if len(r.Suggestions) != 0 {
			t.Errorf("Suggestions = %v, want none", r.Suggestions)
		}
	})
}

// =========================================================================
// CRITERIA TESTS
// =========================================================================

func TestCriteria(t *testing.T) {
	tests := []struct {
		name     string
		password string
		score    int
		category Category
	}{
		{"empty", "", 0, Weak},
		{"lower only", "abc", 1, Weak},
		{"lower and digit", "abc1", 2, Weak},
		{"lower digit ten chars", "abcdefgh12", 3, Medium},
		{"missing special", "Abcdefgh12", 4, Medium},
		{"all five", "Abcdefgh1!", 5, Strong},
		{"special outside the set does not count", "Abcdefgh1~", 4, Medium},
		{"underscore is not in the set", "Abcdefgh1_", 4, Medium},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Criteria{}.Evaluate(tt.password)
			if r.Score != tt.score {
				t.Errorf("Score = %d, want %d", r.Score, tt.score)
			}
			if r.Category != tt.category {
				t.Errorf("Category = %q, want %q", r.Category, tt.category)
			}
			if r.Max != 5 {
				t.Errorf("Max = %d, want 5", r.Max)
			}
		})
	}
}

func TestCriteriaSuggestions(t *testing.T) {
	got := Criteria{}.Evaluate("abc").Suggestions
	want := []string{SuggestUpper, SuggestDigit, SuggestSpecial, SuggestLength10}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Suggestions = %v, want %v", got, want)
	}

	if s := (Criteria{}).Evaluate("Abcdefgh1!").Suggestions; len(s) != 0 {
		t.Errorf("strong password Suggestions = %v, want none", s)
	}
}

func TestCriteriaChecksOrder(t *testing.T) {
	checks := Criteria{}.Checks("A1")
	labels := make([]string, len(checks))
	for i, c := range checks {
		labels[i] = c.Label
	}
	want := []string{"lowercase letter", "uppercase letter", "number", "special character", "at least 10 characters"}
	if !reflect.DeepEqual(labels, want) {
		t.Errorf("labels = %v, want %v", labels, want)
	}
	if checks[0].Met || !checks[1].Met || !checks[2].Met || checks[3].Met || checks[4].Met {
		t.Errorf("unexpected Met flags: %+v", checks)
	}
}

// The two strategies disagree on some inputs. Both verdicts must survive.
func TestStrategiesDisagree(t *testing.T) {
	p := "Abcdefgh12"
	w := Weighted{}.Evaluate(p)
	c := Criteria{}.Evaluate(p)
	if w.Category != Strong || c.Category != Medium {
		t.Errorf("weighted=%q criteria=%q, want strong and medium", w.Category, c.Category)
	}
}

// =========================================================================
// ZXCVBN TESTS
// =========================================================================

func TestZxcvbn(t *testing.T) {
	t.Run("empty is weak", func(t *testing.T) {
		r := Zxcvbn{}.Evaluate("")
		if r.Score != 0 || r.Category != Weak {
			t.Errorf("Evaluate(\"\") = %+v, want score 0 weak", r)
		}
	})

	t.Run("common password is weak", func(t *testing.T) {
		r := Zxcvbn{}.Evaluate("password")
		if r.Category != Weak {
			t.Errorf("Category = %q, want weak", r.Category)
		}
		if len(r.Suggestions) == 0 {
			t.Error("expected suggestions for a weak password")
		}
	})

	t.Run("long random password is strong", func(t *testing.T) {
		r := Zxcvbn{}.Evaluate("Xk9#mQ2vLp7$Zt-rW4&nB8")
		if r.Category != Strong {
			t.Errorf("Category = %q (score %d), want strong", r.Category, r.Score)
		}
		if len(r.Suggestions) != 0 {
			t.Errorf("Suggestions = %v, want none", r.Suggestions)
		}
	})

	t.Run("score is a multiple of 25", func(t *testing.T) {
		for _, p := range []string{"a", "hunter2", "correct horse battery staple", "Tr0ub4dor&3"} {
			r := Zxcvbn{}.Evaluate(p)
			if r.Score%25 != 0 || r.Score < 0 || r.Score > 100 {
				t.Errorf("Evaluate(%q).Score = %d", p, r.Score)
			}
		}
	})

	t.Run("hint inside password adds a suggestion", func(t *testing.T) {
		// A password equal to a user input is a rank-1 dictionary match.
		r := Zxcvbn{}.Evaluate("demo_user", "demo_user")
		if r.Category != Weak {
			t.Fatalf("Category = %q (score %d), want weak", r.Category, r.Score)
		}
		found := false
		for _, s := range r.Suggestions {
			if s == SuggestAvoidUser {
				found = true
			}
		}
		if !found {
			t.Errorf("Suggestions = %v, want %q", r.Suggestions, SuggestAvoidUser)
		}
	})
}

// =========================================================================
// LOOKUP TESTS
// =========================================================================

func TestLookup(t *testing.T) {
	for _, name := range []string{"", "weighted", "criteria", "zxcvbn", " Criteria "} {
		s, err := Lookup(name)
		if err != nil {
			t.Fatalf("Lookup(%q) error = %v", name, err)
		}
		if name == "" && s.Name() != NameWeighted {
			t.Errorf("Lookup(\"\").Name() = %q, want weighted", s.Name())
		}
	}

	_, err := Lookup("entropy")
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("Lookup(unknown) error = %v, want ErrValidation", err)
	}
}

func TestAllMatchesNames(t *testing.T) {
	all := All()
	if len(all) != len(Names) {
		t.Fatalf("len(All()) = %d, want %d", len(all), len(Names))
	}
	for i, s := range all {
		if s.Name() != Names[i] {
			t.Errorf("All()[%d].Name() = %q, want %q", i, s.Name(), Names[i])
		}
	}
}

func TestPercent(t *testing.T) {
	r := Criteria{}.Evaluate("abcdefgh12")
	if got := r.Percent(); got != 60 {
		t.Errorf("Percent() = %d, want 60", got)
	}
	if got := (Report{}).Percent(); got != 0 {
		t.Errorf("zero Report Percent() = %d, want 0", got)
	}
}

package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/password-analyzer/internal/apperror"
	"github.com/sakif/password-analyzer/internal/cracker"
	"github.com/sakif/password-analyzer/internal/strength"
)

func TestAnalyzer_Strength(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	reports, err := env.analyzer.Strength(ctx, "", "Password123!")
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, strength.NameWeighted, reports[0].Strategy)
	assert.Equal(t, 100, reports[0].Score)

	reports, err = env.analyzer.Strength(ctx, "criteria", "Password123!")
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, 5, reports[0].Score)

	reports, err = env.analyzer.Strength(ctx, "ALL", "abc")
	require.NoError(t, err)
	require.Len(t, reports, 3)
	for i, name := range strength.Names {
		assert.Equal(t, name, reports[i].Strategy)
		assert.Equal(t, strength.Weak, reports[i].Category)
	}

	_, err = env.analyzer.Strength(ctx, "entropy", "abc")
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestAnalyzer_StrengthUsesAccountHints(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.signup(t, "Jane", "margaretha@example.com", "password1")

	reports, err := env.analyzer.Strength(ctx, strength.NameZxcvbn, "margaretha")
	require.NoError(t, err)
	assert.Contains(t, reports[0].Suggestions, strength.SuggestAvoidUser)
}

func TestAnalyzer_ResolveUsername(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	got, err := env.analyzer.ResolveUsername(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "user", got)

	env.signup(t, "Jane", "jane@example.com", "password1")
	got, err = env.analyzer.ResolveUsername(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "jane", got)

	got, err = env.analyzer.ResolveUsername(ctx, "explicit")
	require.NoError(t, err)
	assert.Equal(t, "explicit", got)
}

func TestAnalyzer_Crack(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	res, err := env.analyzer.Crack(ctx, cracker.Request{Password: "Xk9#mP2$vL7q"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Dictionary (rockyou.txt)", res.WordlistOrMethod)
	assert.False(t, res.Cracked)
	assert.Equal(t, cracker.TimeoutLabel, res.TimeTaken)

	// "user" is the fallback username and cracks on sight
	res, err = env.analyzer.Crack(ctx, cracker.Request{Password: "SuperUser!!X", Method: cracker.BruteForce}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Brute Force", res.WordlistOrMethod)
	assert.True(t, res.Cracked)

	_, err = env.analyzer.Crack(ctx, cracker.Request{Password: "x", Wordlist: "missing.txt"}, nil)
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestAnalyzer_Batch(t *testing.T) {
	env := newTestEnv(t)

	var seen []string
	res, err := env.analyzer.Batch(context.Background(), "qwerty!Long#", "nobody", func(_ int, wl cracker.Wordlist, pct float64) {
		if pct == 100 {
			seen = append(seen, wl.ID)
		}
	})
	require.NoError(t, err)
	require.Len(t, res.Results, 4)
	assert.True(t, res.Cracked)
	assert.Equal(t, []string{"rockyou.txt", "darkweb2017.txt", "hibp.txt", "custom.txt"}, seen)
}

func TestAnalyzer_Wordlists(t *testing.T) {
	env := newTestEnv(t)
	assert.Len(t, env.analyzer.Wordlists(), 4)
	assert.NotEmpty(t, env.analyzer.Transcript(cracker.Request{Method: cracker.Dictionary}, 50))
}

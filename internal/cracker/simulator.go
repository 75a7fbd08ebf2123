// Package cracker simulates an offline password cracking run.
//
// NOTHING IS CRACKED HERE.
// No hash is computed and no wordlist is opened. A run waits for a fixed
// time while reporting made-up progress, then decides "cracked" from three
// cheap heuristics:
//
//  1. the password is 1..8 characters of [a-z0-9] only
//  2. the password contains the username (case-insensitive)
//  3. the password contains one of password, 123456, qwerty, admin
//
// A cracked result carries a random time (1..60 seconds) and attempt count
// (1..10,000,000). Anything else "times out after 24 hours" at exactly
// 100,000,000 attempts.
//
// RANDOMNESS:
// Every random draw goes through the Rand interface. Production code passes
// a math/rand/v2 generator; tests pass a seeded PCG so results repeat.
package cracker

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Method is the attack style.
type Method string

const (
	Dictionary Method = "dictionary"
	BruteForce Method = "bruteforce"
)

// ParseMethod accepts the method names plus the aliases used on the command
// line ("wordlist", "brute-force").
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "dictionary", "wordlist":
		return Dictionary, nil
	case "bruteforce", "brute-force", "brute":
		return BruteForce, nil
	default:
		return "", fmt.Errorf("cracker: unknown method %q", s)
	}
}

// Fixed outcome of a run that is not cracked.
const (
	TimeoutLabel    = "Timeout after 24 hours"
	TimeoutAttempts = 100_000_000

	maxCrackSeconds  = 60
	maxCrackAttempts = 10_000_000
)

// weakTokens are substrings that crack a password on sight.
var weakTokens = []string{"password", "123456", "qwerty", "admin"}

// Request describes one run.
type Request struct {
	Password string
	Username string
	Method   Method
	Wordlist string // dictionary only; DefaultWordlist when empty
}

// Result is the outcome of one run.
type Result struct {
	WordlistOrMethod string `json:"wordlistOrMethod"`
	Cracked          bool   `json:"cracked"`
	TimeTaken        string `json:"timeTaken"`
	Attempts         int    `json:"attempts"`
}

// Rand is the random source. *math/rand/v2.Rand satisfies it.
type Rand interface {
	// IntN returns a value in [0, n). It panics if n <= 0.
	IntN(n int) int
}

// ProgressFunc receives a percentage in [0, 100]. Successive calls within a
// run never decrease and the last call of a completed run is exactly 100.
type ProgressFunc func(percent float64)

// Config controls the simulated latency.
type Config struct {
	Duration time.Duration // total run time; 0 finishes immediately
	Tick     time.Duration // progress interval; 0 disables intermediate updates
}

// DefaultConfig is three seconds with an update every 200ms.
func DefaultConfig() Config {
	return Config{Duration: 3 * time.Second, Tick: 200 * time.Millisecond}
}

// Simulator runs simulated cracking sessions. It is safe for concurrent use;
// draws from the shared Rand are serialised.
type Simulator struct {
	cfg Config

	mu  sync.Mutex
	rnd Rand
}

// New returns a Simulator. Negative durations are treated as zero.
func New(cfg Config, rnd Rand) *Simulator {
	if cfg.Duration < 0 {
		cfg.Duration = 0
	}
	if cfg.Tick < 0 {
		cfg.Tick = 0
	}
	return &Simulator{cfg: cfg, rnd: rnd}
}

// Crackable reports whether the heuristics consider password cracked. Every
// password contains the empty username.
func Crackable(password, username string) bool {
	if isShortLowerAlnum(password) {
		return true
	}

	lower := strings.ToLower(password)
	if strings.Contains(lower, strings.ToLower(username)) {
		return true
	}
	for _, tok := range weakTokens {
		if strings.Contains(lower, tok) {
			return true
		}
	}
	return false
}

// isShortLowerAlnum is ^[a-z0-9]{1,8}$.
func isShortLowerAlnum(p string) bool {
	if len(p) == 0 || len(p) > 8 {
		return false
	}
	for i := 0; i < len(p); i++ {
		c := p[i]
		if !(c >= 'a' && c <= 'z') && !(c >= '0' && c <= '9') {
			return false
		}
	}
	return true
}

// Label returns the wordlistOrMethod text for req.
func Label(req Request) string {
	if req.Method == BruteForce {
		return "Brute Force"
	}
	wl := req.Wordlist
	if wl == "" {
		wl = DefaultWordlist
	}
	return fmt.Sprintf("Dictionary (%s)", wl)
}

// Evaluate computes a result without any delay.
func (s *Simulator) Evaluate(req Request) Result {
	res := Result{WordlistOrMethod: Label(req)}

	if !Crackable(req.Password, req.Username) {
		res.TimeTaken = TimeoutLabel
		res.Attempts = TimeoutAttempts
		return res
	}

	s.mu.Lock()
	seconds := s.rnd.IntN(maxCrackSeconds) + 1
	attempts := s.rnd.IntN(maxCrackAttempts) + 1
	s.mu.Unlock()

	res.Cracked = true
	res.TimeTaken = fmt.Sprintf("%d seconds", seconds)
	res.Attempts = attempts
	return res
}

// Simulate waits out the configured duration, reporting progress, then
// returns the result. The only error is ctx's, when it ends first; no
// further progress is reported after that.
func (s *Simulator) Simulate(ctx context.Context, req Request, progress ProgressFunc) (Result, error) {
	if progress == nil {
		progress = func(float64) {}
	}

	if err := s.wait(ctx, progress); err != nil {
		return Result{}, err
	}
	return s.Evaluate(req), nil
}

// wait runs the progress animation on the caller's goroutine.
func (s *Simulator) wait(ctx context.Context, progress ProgressFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	progress(0)

	if s.cfg.Duration == 0 {
		progress(100)
		return nil
	}

	done := time.NewTimer(s.cfg.Duration)
	defer done.Stop()

	var tick <-chan time.Time
	if s.cfg.Tick > 0 {
		ticker := time.NewTicker(s.cfg.Tick)
		defer ticker.Stop()
		tick = ticker.C
	}

	pct := 0.0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tick:
			pct = s.advance(pct)
			progress(pct)
		case <-done.C:
			progress(100)
			return nil
		}
	}
}

// advance adds a random step in [0, 5) and clamps at 100.
func (s *Simulator) advance(pct float64) float64 {
	s.mu.Lock()
	step := float64(s.rnd.IntN(500)) / 100
	s.mu.Unlock()

	pct += step
	if pct >= 100 {
		return 100
	}
	return pct
}

package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/password-analyzer/internal/apperror"
	"github.com/sakif/password-analyzer/internal/cracker"
	"github.com/sakif/password-analyzer/internal/strength"
)

// StrategyAll selects every strength strategy.
const StrategyAll = "all"

// fallbackUsername is used by crack runs when nobody is signed in.
const fallbackUsername = "user"

// AnalyzerService scores passwords and runs crack simulations. The
// signed-in user's name and email feed the zxcvbn strategy and the
// username heuristic.
type AnalyzerService struct {
	sim     *cracker.Simulator
	session *Session
	logger  *slog.Logger
}

func NewAnalyzerService(sim *cracker.Simulator, session *Session, logger *slog.Logger) *AnalyzerService {
	return &AnalyzerService{sim: sim, session: session, logger: logger}
}

// Strength scores password with the named strategy, or with every
// strategy when name is "all". An empty name is the weighted strategy.
func (s *AnalyzerService) Strength(ctx context.Context, name, password string) ([]strength.Report, error) {
	var strategies []strength.Strategy
	if strings.EqualFold(name, StrategyAll) {
		strategies = strength.All()
	} else {
		st, err := strength.Lookup(name)
		if err != nil {
			return nil, err
		}
		strategies = []strength.Strategy{st}
	}

	hints, err := s.userHints(ctx)
	if err != nil {
		return nil, err
	}

	reports := make([]strength.Report, 0, len(strategies))
	for _, st := range strategies {
		reports = append(reports, st.Evaluate(password, hints...))
	}
	return reports, nil
}

func (s *AnalyzerService) userHints(ctx context.Context) ([]string, error) {
	user, err := s.session.CurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/analyzer: %w", err)
	}
	if user == nil {
		return nil, nil
	}
	return []string{user.Username, user.Email, user.FullName}, nil
}

// ResolveUsername returns username, or the signed-in user's username, or
// "user".
func (s *AnalyzerService) ResolveUsername(ctx context.Context, username string) (string, error) {
	if username != "" {
		return username, nil
	}
	user, err := s.session.CurrentUser(ctx)
	if err != nil {
		return "", fmt.Errorf("service/analyzer: %w", err)
	}
	if user != nil && user.Username != "" {
		return user.Username, nil
	}
	return fallbackUsername, nil
}

// Crack runs one simulation. The dictionary method only accepts wordlists
// from the catalogue.
func (s *AnalyzerService) Crack(ctx context.Context, req cracker.Request, progress cracker.ProgressFunc) (cracker.Result, error) {
	if req.Method == "" {
		req.Method = cracker.Dictionary
	}
	if req.Method == cracker.Dictionary {
		if req.Wordlist == "" {
			req.Wordlist = cracker.DefaultWordlist
		}
		if _, ok := cracker.LookupWordlist(req.Wordlist); !ok {
			return cracker.Result{}, apperror.ValidationFailed("wordlist", fmt.Sprintf("Unknown wordlist %q", req.Wordlist))
		}
	}

	username, err := s.ResolveUsername(ctx, req.Username)
	if err != nil {
		return cracker.Result{}, err
	}
	req.Username = username

	res, err := s.sim.Simulate(ctx, req, progress)
	if err != nil {
		return cracker.Result{}, err
	}

	s.logger.Debug("crack simulation finished",
		slog.String("method", res.WordlistOrMethod),
		slog.Bool("cracked", res.Cracked),
	)
	return res, nil
}

// Batch runs the dictionary simulation against every catalogue wordlist.
func (s *AnalyzerService) Batch(ctx context.Context, password, username string, progress cracker.BatchProgressFunc) (cracker.BatchResult, error) {
	username, err := s.ResolveUsername(ctx, username)
	if err != nil {
		return cracker.BatchResult{}, err
	}

	res, err := s.sim.SimulateBatch(ctx, password, username, progress)
	if err != nil {
		return res, err
	}

	s.logger.Debug("batch simulation finished", slog.Bool("cracked", res.Cracked))
	return res, nil
}

// Transcript is the hashcat-style status block for a run in flight.
func (s *AnalyzerService) Transcript(req cracker.Request, percent float64) []string {
	return s.sim.Transcript(req, percent)
}

// Wordlists is the wordlist catalogue.
func (s *AnalyzerService) Wordlists() []cracker.Wordlist {
	return cracker.Wordlists
}

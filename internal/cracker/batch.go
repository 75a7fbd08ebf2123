package cracker

import "context"

// BatchResult holds one dictionary result per catalogue wordlist, in
// catalogue order. Cracked is true when any of them is.
type BatchResult struct {
	Results []Result `json:"results"`
	Cracked bool     `json:"cracked"`
}

// BatchProgressFunc is told which wordlist is running alongside the
// percentage for that wordlist.
type BatchProgressFunc func(index int, wl Wordlist, percent float64)

// SimulateBatch runs a dictionary simulation against every wordlist in
// Wordlists, one after another. Each step waits the full configured
// duration. On cancellation the results gathered so far are returned with
// ctx's error.
func (s *Simulator) SimulateBatch(ctx context.Context, password, username string, progress BatchProgressFunc) (BatchResult, error) {
	batch := BatchResult{Results: make([]Result, 0, len(Wordlists))}

	for i, wl := range Wordlists {
		var step ProgressFunc
		if progress != nil {
			step = func(pct float64) { progress(i, wl, pct) }
		}

		res, err := s.Simulate(ctx, Request{
			Password: password,
			Username: username,
			Method:   Dictionary,
			Wordlist: wl.ID,
		}, step)
		if err != nil {
			return batch, err
		}

		batch.Results = append(batch.Results, res)
	}

	batch.Cracked = anyCracked(batch.Results)
	return batch, nil
}

func anyCracked(results []Result) bool {
	for _, r := range results {
		if r.Cracked {
			return true
		}
	}
	return false
}

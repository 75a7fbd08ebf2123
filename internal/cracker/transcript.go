package cracker

import "fmt"

// Transcript returns the hashcat-style status block shown while a run is in
// flight. Speeds are random; percent scales the progress counter.
func (s *Simulator) Transcript(req Request, percent float64) []string {
	attack, target := 0, req.Wordlist
	if target == "" {
		target = DefaultWordlist
	}
	if req.Method == BruteForce {
		attack, target = 3, "?a?a?a?a?a?a?a?a"
	}

	keyspace := "unknown"
	if wl, ok := LookupWordlist(target); ok && wl.Entries > 0 {
		keyspace = FormatCount(wl.Entries)
	}

	s.mu.Lock()
	speed1 := s.rnd.IntN(10000) + 5000
	speed2 := s.rnd.IntN(10000) + 5000
	s.mu.Unlock()

	lines := []string{
		fmt.Sprintf("$ hashcat -m 0 -a %d hash.txt %s", attack, target),
		"Initializing hashcat v6.2.5...",
	}
	if req.Method != BruteForce {
		lines = append(lines,
			"Dictionary cache built:",
			"* Filename..: "+target,
			"* Passwords.: "+keyspace,
		)
	}
	lines = append(lines,
		"Session..........: hashcat",
		"Status...........: Running",
		"Hash.Mode........: 0 (MD5)",
		fmt.Sprintf("Speed.#1.........: %d MH/s", speed1),
		fmt.Sprintf("Speed.#2.........: %d MH/s", speed2),
		fmt.Sprintf("Speed.#*.........: %d MH/s", speed1+speed2),
		fmt.Sprintf("Progress.........: %d/%s", int64(percent*10000), keyspace),
	)
	return lines
}

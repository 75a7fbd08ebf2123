package cracker

import "fmt"

// Wordlist is a named dictionary used as a label in simulated output. None
// of them is ever read from disk.
type Wordlist struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Entries int64  `json:"entries"` // 0 when unknown
}

// DefaultWordlist is used by dictionary runs that name no wordlist.
const DefaultWordlist = "rockyou.txt"

// Wordlists is the catalogue, in batch order.
var Wordlists = []Wordlist{
	{ID: "rockyou.txt", Name: "rockyou.txt (14 million)", Entries: 14_344_391},
	{ID: "darkweb2017.txt", Name: "darkweb2017.txt (40 million)", Entries: 40_593_089},
	{ID: "hibp.txt", Name: "Have I Been Pwned (550 million)", Entries: 550_273_337},
	{ID: "custom.txt", Name: "Custom Wordlist", Entries: 0},
}

// LookupWordlist returns the catalogue entry for id.
func LookupWordlist(id string) (Wordlist, bool) {
	for _, w := range Wordlists {
		if w.ID == id {
			return w, true
		}
	}
	return Wordlist{}, false
}

// FormatCount renders n with thousands separators: 14344391 -> "14,344,391".
func FormatCount(n int64) string {
	if n < 0 {
		return "-" + FormatCount(-n)
	}
	s := fmt.Sprintf("%d", n)
	out := make([]byte, 0, len(s)+len(s)/3)
	for i := range len(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, s[i])
	}
	return string(out)
}

package core

import "strings"

// urgentKeywords is the fixed, ordered set of phrases that short-circuit the
// pipeline to risk HIGH.  The scan expects English text: it runs after
// inbound translation so that symptoms reported in another language are
// matched against the same list.
var urgentKeywords = []string{
	"chest pain",
	"breathless",
	"unconscious",
	"bleeding heavily",
	"severe headache",
	"can't breathe",
	"heart attack",
	"stroke",
	"poisoning",
	"severe burn",
	"seizure",
	"suicide",
	"overdose",
}

// DetectEmergency scans text for urgent phrases, case-insensitively, and
// returns the matches in list order.  An empty slice means no emergency.
func DetectEmergency(text string) []string {
	lower := strings.ToLower(text)
	var found []string
	for _, kw := range urgentKeywords {
		if strings.Contains(lower, kw) {
			found = append(found, kw)
		}
	}
	return found
}

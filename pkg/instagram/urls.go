package instagram

import (
	"regexp"
	"strings"
)

// BaseURL is the base URL for Instagram
const BaseURL = "https://www.instagram.com"

// nonProfilePaths are first path segments that never denote a profile
var nonProfilePaths = map[string]struct{}{
	"p":        {},
	"reel":     {},
	"reels":    {},
	"tv":       {},
	"explore":  {},
	"stories":  {},
	"accounts": {},
	"direct":   {},
}

var profileSegmentPattern = regexp.MustCompile(`(?i)instagram\.com/([^/?#]+)`)

// segmentOf pulls the first path segment out of anything that looks like an
// Instagram URL
func segmentOf(raw string) (string, bool) {
	if raw == "" || !strings.Contains(strings.ToLower(raw), "instagram.com/") {
		return "", false
	}
	m := profileSegmentPattern.FindStringSubmatch(raw)
	if m == nil {
		return "", false
	}
	seg := strings.TrimSpace(m[1])
	if seg == "" {
		return "", false
	}
	if _, reserved := nonProfilePaths[strings.ToLower(strings.TrimPrefix(seg, "@"))]; reserved {
		return "", false
	}
	return seg, true
}

// CleanProfileURL validates a candidate result URL and returns its canonical
// profile form, https://www.instagram.com/<segment>/. Post, reel, story and
// other non-profile URLs are rejected.
func CleanProfileURL(raw string) (string, bool) {
	seg, ok := segmentOf(raw)
	if !ok {
		return "", false
	}
	return BaseURL + "/" + strings.TrimPrefix(seg, "@") + "/", true
}

// IsProfileURL reports whether the URL points at a profile
func IsProfileURL(raw string) bool {
	_, ok := segmentOf(raw)
	return ok
}

// HandleFromURL extracts the profile handle from a URL, without a leading @
func HandleFromURL(raw string) (string, bool) {
	seg, ok := segmentOf(raw)
	if !ok {
		return "", false
	}
	return strings.TrimPrefix(seg, "@"), true
}

// ProfileURL builds the canonical profile URL for a handle
func ProfileURL(handle string) string {
	return BaseURL + "/" + strings.TrimPrefix(strings.TrimSpace(handle), "@") + "/"
}

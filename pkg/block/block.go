// Package block detects search engine anti-bot interstitials and runs the
// operator-assisted recovery that clears them.
package block

import "strings"

// State classifies the search session
type State int

const (
	// StateClear means the session is serving normal results
	StateClear State = iota
	// StateBlocked means a challenge or interstitial page is showing
	StateBlocked
)

func (s State) String() string {
	if s == StateBlocked {
		return "blocked"
	}
	return "clear"
}

// Address fragments that identify challenge redirects
var urlMarkers = []string{
	"sorry",
	"captcha",
	"challenge",
	"recaptcha",
}

// Page text phrases that identify a challenge, matched lower-cased
var bodyMarkers = []string{
	"captcha",
	"unusual traffic",
	"automated queries",
	"our systems have detected unusual traffic",
	"verify you are a human",
	"re-enter the characters",
	"recaptcha",
	"i'm not a robot",
}

// Detector applies the interstitial predicates to page state. It runs after
// every provider interaction.
type Detector struct{}

// CheckURL reports whether the address points at a challenge page
func (Detector) CheckURL(url string) bool {
	lowered := strings.ToLower(url)
	for _, marker := range urlMarkers {
		if strings.Contains(lowered, marker) {
			return true
		}
	}
	return false
}

// CheckBody reports whether the visible page text reads like a challenge
func (Detector) CheckBody(body string) bool {
	lowered := strings.ToLower(body)
	for _, marker := range bodyMarkers {
		if strings.Contains(lowered, marker) {
			return true
		}
	}
	// Generic block notices phrase it this way without naming a captcha
	return strings.Contains(lowered, "sorry") && strings.Contains(lowered, "blocked")
}

// Inspect classifies the current page state
func (d Detector) Inspect(url, body string) State {
	if d.CheckURL(url) || d.CheckBody(body) {
		return StateBlocked
	}
	return StateClear
}

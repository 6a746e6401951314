package models

import (
	"strings"

	"igcounts/pkg/counts"
)

// Subject is a single roster entry to look up.
type Subject struct {
	Name   string
	Handle string // optional known profile handle, without '@'
}

// Tier identifies which extraction stage produced a count.
type Tier int

const (
	TierNone Tier = iota
	TierSnippet
	TierProfileMeta
)

func (t Tier) String() string {
	switch t {
	case TierSnippet:
		return "snippet"
	case TierProfileMeta:
		return "profile_meta"
	default:
		return "none"
	}
}

// Extraction carries the counts pulled for one subject. A nil side means
// no value was found; that is an ordinary outcome, not an error.
type Extraction struct {
	Following *int64
	Followers *int64
	Tier      Tier
	Snippet   string // collapsed snippet text the first stage saw
}

// Empty reports whether neither side carries a value.
func (e Extraction) Empty() bool {
	return e.Following == nil && e.Followers == nil
}

// Complete reports whether both sides carry a value.
func (e Extraction) Complete() bool {
	return e.Following != nil && e.Followers != nil
}

// CountsRow mirrors one row of the counts checkpoint CSV. Cells hold the
// formatted numbers; an empty or placeholder cell means missing.
type CountsRow struct {
	Name      string
	Following string
	Followers string
}

// Filled reports whether both cells hold a real value.
func (r CountsRow) Filled() bool {
	return !counts.IsMissing(r.Following) && !counts.IsMissing(r.Followers)
}

// HasGap reports whether either cell is missing.
func (r CountsRow) HasGap() bool {
	return counts.IsMissing(r.Following) || counts.IsMissing(r.Followers)
}

// HandleRow mirrors one row of the handle-discovery checkpoint CSV.
type HandleRow struct {
	Name   string
	Handle string
}

// Filled reports whether the handle cell holds a value.
func (r HandleRow) Filled() bool {
	return !counts.IsMissing(r.Handle)
}

// Candidate is one externally produced stats row, keyed by profile handle.
// Fields keep their raw CSV cell text; cleaning happens at merge time.
type Candidate struct {
	Username       string
	Status         string
	Followers      string
	Following      string
	MediaCount     string
	EngagementRate string
	AvgLikes       string
	AvgComments    string
}

// Admissible reports whether the candidate may touch the store: the status
// must be exactly the success marker and a followers value must be present.
// Any other status, or an empty followers cell, leaves the record untouched.
func (c Candidate) Admissible() bool {
	return strings.TrimSpace(c.Status) == "OK" &&
		strings.TrimSpace(c.Followers) != ""
}

// StatsUpdate is the field-level partial update applied to a store record.
// Nil fields are left untouched on the record.
type StatsUpdate struct {
	Followers      *int64
	Following      *int64
	Posts          *int64
	EngagementRate *float64
	AvgLikes       *float64
	AvgComments    *float64
}

// HasStats reports whether any stat field would be written.
func (u StatsUpdate) HasStats() bool {
	return u.Followers != nil || u.Following != nil || u.Posts != nil ||
		u.EngagementRate != nil || u.AvgLikes != nil || u.AvgComments != nil
}

// SyncTotals summarizes one merge run.
type SyncTotals struct {
	Updated int
	Skipped int
	NoMatch int
	Errors  int
}

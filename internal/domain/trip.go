package domain

import "time"

// Trip status values.
const (
	TripStatusCollecting   = "collecting_preferences"
	TripStatusResultsReady = "results_ready"
)

// Trip is one group planning session: participants submit preferences, the
// matcher produces results, and participants vote on them.
type Trip struct {
	ID            string           `json:"id"`
	TripName      string           `json:"trip_name"`
	OrganizerName string           `json:"organizer_name,omitempty"`
	TripType      string           `json:"trip_type,omitempty"`
	DurationDays  int              `json:"duration_days,omitempty"`
	Status        string           `json:"status"`
	CreatedAt     time.Time        `json:"created_at"`
	Participants  []UserPreference `json:"participants"`
	Votes         []Vote           `json:"votes,omitempty"`
	Results       *TripResults     `json:"results,omitempty"`
}

// Clone returns a deep copy of the trip. Stores hand clones to callers so
// readers never share mutable state with writers holding the store lock.
// Region and City pointers inside results are shared: the catalog is
// immutable after load.
func (t *Trip) Clone() *Trip {
	if t == nil {
		return nil
	}

	clone := *t
	if t.Participants != nil {
		clone.Participants = make([]UserPreference, len(t.Participants))
		for i, p := range t.Participants {
			p.Environment = cloneStrings(p.Environment)
			p.Style = cloneStrings(p.Style)
			p.Activities = cloneStrings(p.Activities)
			clone.Participants[i] = p
		}
	}
	if t.Votes != nil {
		clone.Votes = make([]Vote, len(t.Votes))
		copy(clone.Votes, t.Votes)
	}
	clone.Results = t.Results.clone()
	return &clone
}

func (r *TripResults) clone() *TripResults {
	if r == nil {
		return nil
	}

	clone := *r
	clone.Regions = make([]ScoredResult, len(r.Regions))
	for i, result := range r.Regions {
		result.UserBreakdown = cloneScores(result.UserBreakdown)
		result.Pros = cloneStrings(result.Pros)
		result.Cons = cloneStrings(result.Cons)
		clone.Regions[i] = result
	}
	if r.GeographicAnalysis.Preferences != nil {
		prefs := make(map[string]int, len(r.GeographicAnalysis.Preferences))
		for scope, count := range r.GeographicAnalysis.Preferences {
			prefs[scope] = count
		}
		clone.GeographicAnalysis.Preferences = prefs
	}
	return &clone
}

func cloneScores(scores []UserScore) []UserScore {
	if scores == nil {
		return nil
	}
	out := make([]UserScore, len(scores))
	for i, score := range scores {
		score.MatchReasons = cloneStrings(score.MatchReasons)
		score.MismatchReasons = cloneStrings(score.MismatchReasons)
		out[i] = score
	}
	return out
}

func cloneStrings(tags []string) []string {
	if tags == nil {
		return nil
	}
	out := make([]string, len(tags))
	copy(out, tags)
	return out
}

// Vote records one participant's pick. One vote per user name; re-voting
// replaces the previous vote.
type Vote struct {
	UserName string    `json:"user_name"`
	RegionID string    `json:"region_id"`
	VotedAt  time.Time `json:"voted_at"`
}

// TripResults is the stored outcome of a match calculation.
type TripResults struct {
	Regions            []ScoredResult     `json:"regions"`
	GeographicAnalysis GeographicAnalysis `json:"geographic_analysis"`
	CalculatedAt       time.Time          `json:"calculated_at"`
}

// GeographicAnalysis summarizes where the group wants to go.
type GeographicAnalysis struct {
	Preferences map[string]int `json:"preferences"` // scope -> how many asked for it
	IsSplit     bool           `json:"is_split"`    // more than two distinct scopes
}

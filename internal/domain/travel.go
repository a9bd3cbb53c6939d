package domain

// UserPreference holds one traveler's submitted preferences. The name is the
// display key; re-submission under the same name replaces the whole record.
type UserPreference struct {
	Name                 string   `json:"name"`
	GeographicPreference string   `json:"geographic_preference,omitempty"`
	Environment          []string `json:"environment"`
	Style                []string `json:"style"`
	Activities           []string `json:"activities"`
	BudgetRange          [2]int   `json:"budget_range"` // daily spend, currency-agnostic
	Climate              string   `json:"climate,omitempty"`
}

// Region is a top-level destination candidate in canonical form. Style and
// activities are already flattened to tag lists by the catalog mapper; budget
// is either a flat range (BudgetTiers nil) or a set of named tiers resolved
// per user at scoring time.
type Region struct {
	ID             string            `json:"id"`
	Name           string            `json:"name"`
	Country        string            `json:"country,omitempty"`
	Continent      string            `json:"continent,omitempty"`
	Tags           []string          `json:"tags,omitempty"`
	Environment    []string          `json:"environment"`
	Style          []string          `json:"style"`
	Activities     []string          `json:"activities"`
	BudgetRange    [2]int            `json:"budget_range"`
	BudgetTiers    map[string][2]int `json:"budget_tiers,omitempty"`
	Climate        string            `json:"climate,omitempty"`
	NightlifeScore int               `json:"nightlife_score,omitempty"`
	FamilyFriendly int               `json:"family_friendly,omitempty"`
	CultureScore   int               `json:"culture_score,omitempty"`
}

// City is a destination candidate nested under a region.
type City struct {
	ID             string            `json:"id"`
	Name           string            `json:"name"`
	RegionID       string            `json:"region_id"`
	Environment    []string          `json:"environment"`
	Style          []string          `json:"style"`
	Activities     []string          `json:"activities"`
	BudgetRange    [2]int            `json:"budget_range"`
	BudgetTiers    map[string][2]int `json:"budget_tiers,omitempty"`
	NightlifeScore int               `json:"nightlife_score,omitempty"`
	FamilyFriendly int               `json:"family_friendly,omitempty"`
	CultureScore   int               `json:"culture_score,omitempty"`
}

// Catalog is the immutable destination dataset, loaded once at startup and
// read-only afterwards. Continents maps display names ("Europe") to continent
// ids ("europe") and may be empty when no continents source was supplied.
type Catalog struct {
	Regions    []Region
	Cities     []City
	Continents map[string]string
}

// Sentiment summarizes how well a destination fits one traveler.
type Sentiment string

const (
	SentimentPerfectFor Sentiment = "Perfect for"
	// SentimentGreatFor is reserved for weight profiles with four sentiment
	// bands; the default profile maps its top band to SentimentPerfectFor
	// and never produces this value.
	SentimentGreatFor      Sentiment = "Great for"
	SentimentGoodFor       Sentiment = "Good for"
	SentimentCompromiseFor Sentiment = "Compromise for"
)

// UserScore is the per-traveler breakdown for one scored destination.
type UserScore struct {
	UserName        string    `json:"user_name"`
	MatchPercentage float64   `json:"match_percentage"` // 0-100, one decimal
	Sentiment       Sentiment `json:"sentiment"`
	MatchReasons    []string  `json:"match_reasons"`
	MismatchReasons []string  `json:"mismatch_reasons"`
}

// ScoredResult is one ranked destination with its group fit explanation.
// Exactly one of Region/City is set depending on which scorer produced it.
type ScoredResult struct {
	Region          *Region     `json:"region,omitempty"`
	City            *City       `json:"city,omitempty"`
	AggregateScore  float64     `json:"aggregate_score"`
	MatchPercentage float64     `json:"match_percentage"` // 0-100, one decimal
	UserBreakdown   []UserScore `json:"user_breakdown"`
	BestFor         string      `json:"best_for,omitempty"` // cities only
	Pros            []string    `json:"pros"`
	Cons            []string    `json:"cons"`
}

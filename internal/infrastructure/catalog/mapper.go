package catalog

import (
	"bytes"
	"encoding/json"

	"github.com/tripmatch/backend/internal/domain"
)

// Catalog sources come in two schema generations. The older one uses flat tag
// lists and a single budget_range pair; the newer one nests activities under
// categories, expresses style as 0-100 score dimensions, and splits budget
// into named tiers. The mapper reduces every record to the canonical form in
// one pass so scoring never branches on schema shape.

// styleScoreThreshold is the minimum dimension score that earns a style tag.
const styleScoreThreshold = 75

// styleDimensionTags maps score dimensions of the rich style schema to tags.
// Unknown dimensions are ignored.
var styleDimensionTags = map[string]string{
	"romantic_score":   "romantic",
	"adventure_level":  "adventure",
	"party_scene":      "party",
	"culture_richness": "cultural",
	"nature_immersion": "nature",
	"luxury_level":     "luxury",
}

// tierOrder is the fixed selection order for named budget tiers.
var tierOrder = [4]string{"budget", "moderate", "comfortable", "luxury"}

// defaultBudgetRange is the documented fallback when a record carries no
// usable budget information.
var defaultBudgetRange = [2]int{50, 150}

// rawRegion mirrors a region record as it appears on the wire. Style,
// activities and budget are kept raw because their shape varies by schema
// generation.
type rawRegion struct {
	ID             string            `json:"id"`
	Name           string            `json:"name"`
	Country        string            `json:"country"`
	Continent      string            `json:"continent"`
	Tags           []string          `json:"tags"`
	Environment    []string          `json:"environment"`
	Style          json.RawMessage   `json:"style"`
	Activities     json.RawMessage   `json:"activities"`
	BudgetRange    json.RawMessage   `json:"budget_range"`
	BudgetRanges   map[string][2]int `json:"budget_ranges"`
	Climate        string            `json:"climate"`
	NightlifeScore int               `json:"nightlife_score"`
	FamilyFriendly int               `json:"family_friendly"`
	CultureScore   int               `json:"culture_score"`
}

// rawCity mirrors a city record as it appears on the wire.
type rawCity struct {
	ID             string            `json:"id"`
	Name           string            `json:"name"`
	RegionID       string            `json:"region_id"`
	Environment    []string          `json:"environment"`
	Style          json.RawMessage   `json:"style"`
	Activities     json.RawMessage   `json:"activities"`
	BudgetRange    json.RawMessage   `json:"budget_range"`
	BudgetRanges   map[string][2]int `json:"budget_ranges"`
	NightlifeScore int               `json:"nightlife_score"`
	FamilyFriendly int               `json:"family_friendly"`
	CultureScore   int               `json:"culture_score"`
}

// mapRegion converts a raw region record to the canonical domain form,
// supplying documented defaults for anything missing.
func mapRegion(raw rawRegion) domain.Region {
	flat, tiers := normalizeBudget(raw.BudgetRange, raw.BudgetRanges)

	return domain.Region{
		ID:             raw.ID,
		Name:           raw.Name,
		Country:        raw.Country,
		Continent:      raw.Continent,
		Tags:           raw.Tags,
		Environment:    emptyIfNil(raw.Environment),
		Style:          NormalizeStyle(raw.Style),
		Activities:     NormalizeActivities(raw.Activities),
		BudgetRange:    flat,
		BudgetTiers:    tiers,
		Climate:        raw.Climate,
		NightlifeScore: raw.NightlifeScore,
		FamilyFriendly: raw.FamilyFriendly,
		CultureScore:   raw.CultureScore,
	}
}

// mapCity converts a raw city record to the canonical domain form.
func mapCity(raw rawCity) domain.City {
	flat, tiers := normalizeBudget(raw.BudgetRange, raw.BudgetRanges)

	return domain.City{
		ID:             raw.ID,
		Name:           raw.Name,
		RegionID:       raw.RegionID,
		Environment:    emptyIfNil(raw.Environment),
		Style:          NormalizeStyle(raw.Style),
		Activities:     NormalizeActivities(raw.Activities),
		BudgetRange:    flat,
		BudgetTiers:    tiers,
		NightlifeScore: raw.NightlifeScore,
		FamilyFriendly: raw.FamilyFriendly,
		CultureScore:   raw.CultureScore,
	}
}

// NormalizeActivities reduces an activities field to a flat tag list.
// Accepts either a flat list (pass-through) or a category -> tag list map,
// which is flattened in document order so byte-identical sources always
// yield the same canonical list. Duplicate tags across categories collapse;
// consumers use set semantics downstream. Idempotent: a flat list
// normalizes to itself.
func NormalizeActivities(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return []string{}
	}

	var flat []string
	if err := json.Unmarshal(raw, &flat); err == nil {
		return dedupe(flat)
	}

	// Category map. Decoding into map[string][]string would lose the source
	// ordering of the categories, so walk the tokens instead.
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return []string{}
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return []string{}
	}

	var tags []string
	for dec.More() {
		if _, err := dec.Token(); err != nil {
			return []string{}
		}
		var list []string
		if err := dec.Decode(&list); err != nil {
			return []string{}
		}
		tags = append(tags, list...)
	}
	return dedupe(tags)
}

// NormalizeStyle reduces a style field to a flat tag list. Accepts either a
// flat list (pass-through) or a dimension -> score map, reduced via the fixed
// dimension table: a tag is included iff its dimension scores at least 75.
// Idempotent: a flat list normalizes to itself.
func NormalizeStyle(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return []string{}
	}

	var flat []string
	if err := json.Unmarshal(raw, &flat); err == nil {
		return dedupe(flat)
	}

	var scores map[string]float64
	if err := json.Unmarshal(raw, &scores); err == nil {
		// Walk the fixed table, not the input, so tag order is stable.
		var tags []string
		for _, dimension := range []string{
			"romantic_score", "adventure_level", "party_scene",
			"culture_richness", "nature_immersion", "luxury_level",
		} {
			if scores[dimension] >= styleScoreThreshold {
				tags = append(tags, styleDimensionTags[dimension])
			}
		}
		if tags == nil {
			tags = []string{}
		}
		return tags
	}

	return []string{}
}

// normalizeBudget decides between the flat pair and the tier map. When the
// record carries tiers, the flat range stays at the default and resolution is
// deferred to ResolveBudget (tier choice depends on the user's midpoint).
func normalizeBudget(flatRaw json.RawMessage, tiers map[string][2]int) ([2]int, map[string][2]int) {
	if len(tiers) > 0 {
		return defaultBudgetRange, tiers
	}

	var pair []int
	if err := json.Unmarshal(flatRaw, &pair); err == nil && len(pair) == 2 && pair[0] <= pair[1] {
		return [2]int{pair[0], pair[1]}, nil
	}

	return defaultBudgetRange, nil
}

// ResolveBudget produces the effective [min,max] budget of a record for one
// traveler. A flat range passes through untouched. For tiered budgets the
// traveler's midpoint picks the first tier (in budget/moderate/comfortable/
// luxury order) whose max covers it, falling back to the moderate tier and
// finally to the default range. Idempotent for flat input.
func ResolveBudget(flat [2]int, tiers map[string][2]int, userMin, userMax int) [2]int {
	if len(tiers) == 0 {
		return flat
	}

	midpoint := float64(userMin+userMax) / 2

	for _, name := range tierOrder {
		if tier, ok := tiers[name]; ok && float64(tier[1]) >= midpoint {
			return tier
		}
	}

	if tier, ok := tiers["moderate"]; ok {
		return tier
	}
	return defaultBudgetRange
}

// dedupe collapses duplicates preserving first-seen order.
func dedupe(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	result := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		result = append(result, tag)
	}
	return result
}

func emptyIfNil(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}

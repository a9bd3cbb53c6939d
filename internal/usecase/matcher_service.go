package usecase

import (
	"context"
	"fmt"
	"log"
	"math"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/tripmatch/backend/internal/domain"
	"github.com/tripmatch/backend/internal/infrastructure/catalog"
)

// Criterion points for region scoring
const (
	environmentPoints = 10 // per overlapping environment tag
	stylePoints       = 8  // per overlapping style tag
	activityPoints    = 5  // per overlapping activity tag
	budgetBonus       = 5  // budget ranges overlap
	budgetPenalty     = 10 // budget ranges disjoint (regions only)
)

// Normalization and ranking constants. The denominators are soft caps, not
// the true achievable maxima; kept as-is for output parity with the catalog
// generation they were tuned against.
const (
	regionScoreDenominator = 30.0
	cityScoreDenominator   = 20.0
	regionInclusionGate    = 20.0 // aggregate must exceed this to appear
	regionResultLimit      = 10
	cityResultLimit        = 5
)

// Sentiment thresholds on the normalized per-user score.
const (
	greatForThreshold = 70.0
	goodForThreshold  = 50.0
)

// Reason and explanation caps
const (
	maxMatchReasons    = 3
	maxMismatchReasons = 2
	maxRegionPros      = 5
	maxRegionCons      = 4
	maxCityPros        = 3
	maxCityCons        = 3
)

// weightProfile is the extension point keyed by trip type. Every trip type
// currently resolves to the one default profile; the hook exists so a future
// profile (e.g. the older veto-style scoring) can slot in without touching
// the engine interface.
type weightProfile struct {
	Environment int
	Style       int
	Activities  int
	BudgetBonus int
	BudgetMiss  int
}

var defaultProfile = weightProfile{
	Environment: environmentPoints,
	Style:       stylePoints,
	Activities:  activityPoints,
	BudgetBonus: budgetBonus,
	BudgetMiss:  -budgetPenalty,
}

// profileFor resolves a trip type to a weight profile. Every trip type maps
// to the default profile for now; the lookup is the forward-compatible hook.
func profileFor(tripType string) weightProfile {
	return defaultProfile
}

// MatcherConfig holds configuration for the matcher service
type MatcherConfig struct {
	RegionLimit        int
	CityLimit          int
	EnableDebugLogging bool
}

// MatcherService ranks catalog destinations against a group's preferences.
// It is stateless across calls: the catalog is read-only after load and each
// request's working set is local, so concurrent scoring needs no coordination.
type MatcherService struct {
	catalog            *domain.Catalog
	regionLimit        int
	cityLimit          int
	enableDebugLogging bool
}

// NewMatcherService creates a matcher service over an immutable catalog.
func NewMatcherService(cat *domain.Catalog, config MatcherConfig) *MatcherService {
	regionLimit := config.RegionLimit
	if regionLimit <= 0 {
		regionLimit = regionResultLimit
	}

	cityLimit := config.CityLimit
	if cityLimit <= 0 {
		cityLimit = cityResultLimit
	}

	return &MatcherService{
		catalog:            cat,
		regionLimit:        regionLimit,
		cityLimit:          cityLimit,
		enableDebugLogging: config.EnableDebugLogging,
	}
}

// ScoreRegions ranks the regions in scope against the whole group.
// Regions whose aggregate score does not clear the inclusion gate are
// dropped, the rest are sorted descending (stable, catalog order preserved
// on ties) and truncated. An empty result is valid output.
func (s *MatcherService) ScoreRegions(
	ctx context.Context,
	group []domain.UserPreference,
	scope, tripType string,
) ([]domain.ScoredResult, error) {
	profile := profileFor(tripType)
	results := make([]domain.ScoredResult, 0, s.regionLimit)

	for i := range s.catalog.Regions {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		region := &s.catalog.Regions[i]
		if !regionInScope(scope, region, s.catalog.Continents) {
			continue
		}

		result := s.scoreRegion(region, group, profile)
		if result.AggregateScore <= regionInclusionGate {
			if s.enableDebugLogging {
				log.Printf("[MATCH] Region %q below gate (%.1f)", region.Name, result.AggregateScore)
			}
			continue
		}

		results = append(results, result)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].AggregateScore > results[j].AggregateScore
	})
	if len(results) > s.regionLimit {
		results = results[:s.regionLimit]
	}

	if s.enableDebugLogging {
		log.Printf("[MATCH] Scope %q: %d regions qualify for %d travelers", scope, len(results), len(group))
	}

	return results, nil
}

// ScoreCities ranks the cities of one chosen region against the group.
// Cities outside the region are excluded entirely, not scored. There is no
// inclusion gate at city level.
func (s *MatcherService) ScoreCities(
	ctx context.Context,
	regionID string,
	group []domain.UserPreference,
	tripType string,
) ([]domain.ScoredResult, error) {
	if regionID == "" {
		return nil, domain.ErrInvalidRequest
	}

	results := make([]domain.ScoredResult, 0, s.cityLimit)

	for i := range s.catalog.Cities {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		city := &s.catalog.Cities[i]
		if city.RegionID != regionID {
			continue
		}

		results = append(results, s.scoreCity(city, group))
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].AggregateScore > results[j].AggregateScore
	})
	if len(results) > s.cityLimit {
		results = results[:s.cityLimit]
	}

	return results, nil
}

// scoreRegion computes the full scored result for one region.
func (s *MatcherService) scoreRegion(
	region *domain.Region,
	group []domain.UserPreference,
	profile weightProfile,
) domain.ScoredResult {
	breakdown := make([]domain.UserScore, 0, len(group))
	var sum float64

	for _, user := range group {
		score := s.scoreRegionForUser(region, user, profile)
		breakdown = append(breakdown, score)
		sum += score.MatchPercentage
	}

	// Zero users must not divide by zero; the aggregate defaults to 0.
	var aggregate float64
	if len(group) > 0 {
		aggregate = sum / float64(len(group))
	}

	return domain.ScoredResult{
		Region:          region,
		AggregateScore:  aggregate,
		MatchPercentage: roundOneDecimal(aggregate),
		UserBreakdown:   breakdown,
		Pros:            regionPros(region, breakdown),
		Cons:            regionCons(region, group, breakdown),
	}
}

// scoreRegionForUser applies the four criteria in fixed order (environment,
// style, activities, budget) and normalizes the raw score.
func (s *MatcherService) scoreRegionForUser(
	region *domain.Region,
	user domain.UserPreference,
	profile weightProfile,
) domain.UserScore {
	var raw int
	var matchReasons, mismatchReasons []string

	// Environment
	envMatches := intersect(user.Environment, region.Environment)
	if len(envMatches) > 0 {
		raw += len(envMatches) * profile.Environment
		matchReasons = append(matchReasons, "Environment: "+strings.Join(envMatches, ", "))
	} else if len(user.Environment) > 0 {
		mismatchReasons = append(mismatchReasons,
			fmt.Sprintf("Environment doesn't match (wants: %s)", strings.Join(user.Environment, ", ")))
	}

	// Style
	styleMatches := intersect(user.Style, region.Style)
	if len(styleMatches) > 0 {
		raw += len(styleMatches) * profile.Style
		matchReasons = append(matchReasons, "Style: "+strings.Join(styleMatches, ", "))
	}

	// Activities
	activityMatches := intersect(user.Activities, region.Activities)
	if len(activityMatches) > 0 {
		raw += len(activityMatches) * profile.Activities
		matchReasons = append(matchReasons, fmt.Sprintf("%d activities available", len(activityMatches)))
	}

	// Budget: overlap of the user's range with the region's effective range,
	// resolved against this user when the record carries tiers.
	effective := catalog.ResolveBudget(region.BudgetRange, region.BudgetTiers, user.BudgetRange[0], user.BudgetRange[1])
	if rangesOverlap(user.BudgetRange, effective) {
		raw += profile.BudgetBonus
		matchReasons = append(matchReasons, "Budget compatible")
	} else {
		raw += profile.BudgetMiss
		mismatchReasons = append(mismatchReasons, "Outside budget range")
	}

	normalized := normalizeScore(raw, regionScoreDenominator)

	if s.enableDebugLogging {
		log.Printf("[MATCH] %s vs %s: raw=%d normalized=%.1f", userName(user), region.Name, raw, normalized)
	}

	return domain.UserScore{
		UserName:        userName(user),
		MatchPercentage: normalized,
		Sentiment:       sentimentFor(normalized),
		MatchReasons:    capReasons(matchReasons, maxMatchReasons),
		MismatchReasons: capReasons(mismatchReasons, maxMismatchReasons),
	}
}

// scoreCity computes the full scored result for one city. Cities use a
// reduced criteria set: no style, no climate, and no budget penalty term.
func (s *MatcherService) scoreCity(city *domain.City, group []domain.UserPreference) domain.ScoredResult {
	breakdown := make([]domain.UserScore, 0, len(group))
	var sum float64

	for _, user := range group {
		var raw int
		var matchReasons, mismatchReasons []string

		envMatches := intersect(user.Environment, city.Environment)
		if len(envMatches) > 0 {
			raw += len(envMatches) * environmentPoints
			matchReasons = append(matchReasons, strings.Join(envMatches, ", "))
		} else if len(user.Environment) > 0 {
			mismatchReasons = append(mismatchReasons,
				fmt.Sprintf("Environment doesn't match (wants: %s)", strings.Join(user.Environment, ", ")))
		}

		activityMatches := intersect(user.Activities, city.Activities)
		if len(activityMatches) > 0 {
			raw += len(activityMatches) * activityPoints
			matchReasons = append(matchReasons, fmt.Sprintf("%d activities", len(activityMatches)))
		}

		effective := catalog.ResolveBudget(city.BudgetRange, city.BudgetTiers, user.BudgetRange[0], user.BudgetRange[1])
		if rangesOverlap(user.BudgetRange, effective) {
			raw += budgetBonus
			matchReasons = append(matchReasons, "Budget compatible")
		}
		// No penalty term at city level: a budget miss simply contributes 0.

		normalized := normalizeScore(raw, cityScoreDenominator)
		score := domain.UserScore{
			UserName:        userName(user),
			MatchPercentage: normalized,
			Sentiment:       sentimentFor(normalized),
			MatchReasons:    capReasons(matchReasons, maxMatchReasons),
			MismatchReasons: capReasons(mismatchReasons, maxMismatchReasons),
		}
		breakdown = append(breakdown, score)
		sum += normalized
	}

	var aggregate float64
	if len(group) > 0 {
		aggregate = sum / float64(len(group))
	}

	return domain.ScoredResult{
		City:            city,
		AggregateScore:  aggregate,
		MatchPercentage: roundOneDecimal(aggregate),
		UserBreakdown:   breakdown,
		BestFor:         cityBestFor(city),
		Pros:            cityPros(city, group, breakdown),
		Cons:            cityCons(city, group),
	}
}

// normalizeScore maps a raw criterion score to 0-100 against a soft-cap
// denominator, rounded to one decimal. Non-positive raw scores floor at 0.
func normalizeScore(raw int, denominator float64) float64 {
	if raw <= 0 {
		return 0
	}
	return roundOneDecimal(math.Min(100, float64(raw)/denominator*100))
}

// sentimentFor labels a normalized score. The top band is displayed as
// "Perfect for" in the user breakdown.
func sentimentFor(normalized float64) domain.Sentiment {
	switch {
	case normalized >= greatForThreshold:
		return domain.SentimentPerfectFor
	case normalized >= goodForThreshold:
		return domain.SentimentGoodFor
	default:
		return domain.SentimentCompromiseFor
	}
}

// regionPros builds up to three descriptive entries plus a group-fit count.
func regionPros(region *domain.Region, breakdown []domain.UserScore) []string {
	var pros []string

	if len(region.Environment) > 0 {
		pros = append(pros, "Environments: "+strings.Join(region.Environment, ", "))
	}
	if len(region.Style) > 0 {
		pros = append(pros, "Styles: "+strings.Join(region.Style, ", "))
	}
	if len(region.Activities) > 0 {
		pros = append(pros, "Activities: "+strings.Join(region.Activities, ", "))
	}
	if len(pros) > 3 {
		pros = pros[:3]
	}

	if good := countAtLeast(breakdown, goodForThreshold); good > 0 {
		pros = append(pros, fmt.Sprintf("Good for %d/%d travelers", good, len(breakdown)))
	}

	if len(pros) > maxRegionPros {
		pros = pros[:maxRegionPros]
	}
	return pros
}

// regionCons flags travelers the region would be a compromise for, and
// travelers it prices out.
func regionCons(region *domain.Region, group []domain.UserPreference, breakdown []domain.UserScore) []string {
	var cons []string

	compromised := len(breakdown) - countAtLeast(breakdown, goodForThreshold)
	if compromised > 0 {
		cons = append(cons, fmt.Sprintf("Compromise for %d traveler(s)", compromised))
	}

	var pricedOut int
	for _, user := range group {
		effective := catalog.ResolveBudget(region.BudgetRange, region.BudgetTiers, user.BudgetRange[0], user.BudgetRange[1])
		if !rangesOverlap(user.BudgetRange, effective) {
			pricedOut++
		}
	}
	if pricedOut > 0 {
		cons = append(cons, fmt.Sprintf("Outside budget range for %d/%d travelers", pricedOut, len(group)))
	}

	if len(cons) > maxRegionCons {
		cons = cons[:maxRegionCons]
	}
	return cons
}

// cityBestFor derives a short label from up to two style tags and one
// environment tag.
func cityBestFor(city *domain.City) string {
	var parts []string
	for _, tag := range city.Style {
		if len(parts) == 2 {
			break
		}
		parts = append(parts, tag)
	}
	if len(city.Environment) > 0 {
		parts = append(parts, city.Environment[0])
	}

	if len(parts) == 0 {
		return "Versatile destination"
	}

	label := strings.Join(parts, ", ")
	first, size := utf8.DecodeRuneInString(label)
	return string(unicode.ToUpper(first)) + label[size:]
}

// cityPros builds up to three entries: environment, the resolved budget
// range, and a preference-fit count.
func cityPros(city *domain.City, group []domain.UserPreference, breakdown []domain.UserScore) []string {
	var pros []string

	if len(city.Environment) > 0 {
		pros = append(pros, "Environments: "+strings.Join(city.Environment, ", "))
	}

	groupMin, groupMax := groupBudget(group)
	effective := catalog.ResolveBudget(city.BudgetRange, city.BudgetTiers, groupMin, groupMax)
	pros = append(pros, fmt.Sprintf("$%d-%d/day", effective[0], effective[1]))

	if matched := countAtLeast(breakdown, goodForThreshold); matched > 0 {
		pros = append(pros, fmt.Sprintf("Matches %d/%d preferences", matched, len(breakdown)))
	}

	if len(pros) > maxCityPros {
		pros = pros[:maxCityPros]
	}
	return pros
}

func cityCons(city *domain.City, group []domain.UserPreference) []string {
	var cons []string

	var pricedOut int
	for _, user := range group {
		effective := catalog.ResolveBudget(city.BudgetRange, city.BudgetTiers, user.BudgetRange[0], user.BudgetRange[1])
		if !rangesOverlap(user.BudgetRange, effective) {
			pricedOut++
		}
	}
	if pricedOut > 0 {
		cons = append(cons, "May be pricey for some")
	}

	if city.NightlifeScore > 0 && city.NightlifeScore <= 2 {
		cons = append(cons, "Limited nightlife")
	}
	if city.FamilyFriendly > 0 && city.FamilyFriendly <= 2 {
		cons = append(cons, "Not ideal for young kids")
	}

	if len(cons) > maxCityCons {
		cons = cons[:maxCityCons]
	}
	return cons
}

// groupBudget averages the group's budget bounds for display-time tier
// resolution. Falls back to the default range for an empty group.
func groupBudget(group []domain.UserPreference) (int, int) {
	if len(group) == 0 {
		return 50, 150
	}
	var minSum, maxSum int
	for _, user := range group {
		minSum += user.BudgetRange[0]
		maxSum += user.BudgetRange[1]
	}
	return minSum / len(group), maxSum / len(group)
}

// rangesOverlap is the budget compatibility test: overlap, not containment.
// Symmetric in its arguments.
func rangesOverlap(a, b [2]int) bool {
	return a[1] >= b[0] && b[1] >= a[0]
}

// intersect returns the tags present in both lists, in the order of the
// first, without duplicates.
func intersect(wanted, offered []string) []string {
	offeredSet := make(map[string]bool, len(offered))
	for _, tag := range offered {
		offeredSet[tag] = true
	}

	var matches []string
	seen := make(map[string]bool, len(wanted))
	for _, tag := range wanted {
		if offeredSet[tag] && !seen[tag] {
			matches = append(matches, tag)
			seen[tag] = true
		}
	}
	return matches
}

func countAtLeast(breakdown []domain.UserScore, threshold float64) int {
	var count int
	for _, score := range breakdown {
		if score.MatchPercentage >= threshold {
			count++
		}
	}
	return count
}

func capReasons(reasons []string, max int) []string {
	if len(reasons) > max {
		return reasons[:max]
	}
	return reasons
}

func userName(user domain.UserPreference) string {
	if user.Name == "" {
		return "Anonymous"
	}
	return user.Name
}

func roundOneDecimal(v float64) float64 {
	return math.Round(v*10) / 10
}

package usecase

import (
	"strings"

	"github.com/tripmatch/backend/internal/domain"
	"github.com/tripmatch/backend/internal/infrastructure/catalog"
)

// ScopeAnywhere matches every region regardless of continent or tags.
const ScopeAnywhere = "Anywhere"

// regionInScope decides whether a region belongs to the requested geographic
// scope. The scope is either "Anywhere", a continent display name, or an
// arbitrary tag. Continent names resolve through the catalog's continent map
// when present, else through slug normalization ("South America" ->
// "south-america"). No partial or fuzzy matching.
func regionInScope(scope string, region *domain.Region, continents map[string]string) bool {
	if scope == ScopeAnywhere {
		return true
	}

	resolved, ok := continents[scope]
	if !ok {
		resolved = catalog.Slugify(scope)
	}

	if strings.ToLower(region.Continent) == resolved {
		return true
	}

	// Tag match: the tags field, or environment as a legacy fallback for
	// records predating tags.
	tags := region.Tags
	if len(tags) == 0 {
		tags = region.Environment
	}

	scopeLower := strings.ToLower(scope)
	for _, tag := range tags {
		normalized := catalog.Slugify(tag)
		if normalized == resolved || normalized == scopeLower {
			return true
		}
	}

	return false
}

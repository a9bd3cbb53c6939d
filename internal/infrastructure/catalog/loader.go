package catalog

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/tripmatch/backend/internal/domain"
)

// Load builds an immutable catalog from raw JSON sources. Regions and cities
// are required; an unparseable source aborts with domain.ErrCatalogFormat.
// The continents source is optional: when nil or broken, continent-name
// resolution degrades to slug normalization in the scope resolver, and the
// degradation is logged so it is not silently identical to success.
//
// Each source is accepted either as a bare array or as an object wrapping the
// array under its collection key ("regions", "cities", "continents").
func Load(regions, cities, continents []byte) (*domain.Catalog, error) {
	regionRecords, err := unwrapCollection(regions, "regions")
	if err != nil {
		return nil, fmt.Errorf("regions: %w", err)
	}

	cityRecords, err := unwrapCollection(cities, "cities")
	if err != nil {
		return nil, fmt.Errorf("cities: %w", err)
	}

	catalog := &domain.Catalog{
		Regions:    make([]domain.Region, 0, len(regionRecords)),
		Cities:     make([]domain.City, 0, len(cityRecords)),
		Continents: map[string]string{},
	}

	for _, record := range regionRecords {
		var raw rawRegion
		if err := json.Unmarshal(record, &raw); err != nil {
			return nil, fmt.Errorf("%w: region record: %v", domain.ErrCatalogFormat, err)
		}
		catalog.Regions = append(catalog.Regions, mapRegion(raw))
	}

	for _, record := range cityRecords {
		var raw rawCity
		if err := json.Unmarshal(record, &raw); err != nil {
			return nil, fmt.Errorf("%w: city record: %v", domain.ErrCatalogFormat, err)
		}
		catalog.Cities = append(catalog.Cities, mapCity(raw))
	}

	catalog.Continents = loadContinents(continents)

	log.Printf("[CATALOG] Loaded %d regions, %d cities, %d continents",
		len(catalog.Regions), len(catalog.Cities), len(catalog.Continents))

	return catalog, nil
}

// LoadFromFiles reads the catalog sources from disk. The continents path may
// be empty.
func LoadFromFiles(regionsPath, citiesPath, continentsPath string) (*domain.Catalog, error) {
	regions, err := os.ReadFile(regionsPath)
	if err != nil {
		return nil, fmt.Errorf("%w: read regions: %v", domain.ErrCatalogFormat, err)
	}

	cities, err := os.ReadFile(citiesPath)
	if err != nil {
		return nil, fmt.Errorf("%w: read cities: %v", domain.ErrCatalogFormat, err)
	}

	var continents []byte
	if continentsPath != "" {
		continents, err = os.ReadFile(continentsPath)
		if err != nil {
			log.Printf("[CATALOG] Continents file unreadable (%v), falling back to name normalization", err)
			continents = nil
		}
	}

	return Load(regions, cities, continents)
}

// rawContinent is one entry of the optional continents source.
type rawContinent struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// loadContinents builds the display-name -> id map. Failure here is
// non-fatal: the scope resolver falls back to slug normalization.
func loadContinents(data []byte) map[string]string {
	result := map[string]string{}
	if len(data) == 0 {
		log.Printf("[CATALOG] No continents source, using name normalization fallback")
		return result
	}

	records, err := unwrapCollection(data, "continents")
	if err != nil {
		log.Printf("[CATALOG] Continents source unparseable (%v), using name normalization fallback", err)
		return result
	}

	for _, record := range records {
		var raw rawContinent
		if err := json.Unmarshal(record, &raw); err != nil {
			log.Printf("[CATALOG] Skipping malformed continent record: %v", err)
			continue
		}
		if raw.Name == "" {
			continue
		}
		id := raw.ID
		if id == "" {
			id = Slugify(raw.Name)
		}
		result[raw.Name] = id
	}

	return result
}

// unwrapCollection accepts either a bare JSON array or an object wrapping the
// array under the given key, and returns the raw records.
func unwrapCollection(data []byte, key string) ([]json.RawMessage, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty source", domain.ErrCatalogFormat)
	}

	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err == nil {
		return records, nil
	}

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return nil, fmt.Errorf("%w: neither array nor object", domain.ErrCatalogFormat)
	}

	inner, ok := wrapper[key]
	if !ok {
		return nil, fmt.Errorf("%w: object has no %q key", domain.ErrCatalogFormat, key)
	}

	if err := json.Unmarshal(inner, &records); err != nil {
		return nil, fmt.Errorf("%w: %q is not an array", domain.ErrCatalogFormat, key)
	}

	return records, nil
}

// Slugify lowercases and hyphenates a display name ("South America" ->
// "south-america"). The scope resolver uses the same normalization for its
// continent-name fallback and tag comparisons.
func Slugify(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "-")
}

package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/tripmatch/backend/config"
	"github.com/tripmatch/backend/internal/infrastructure/catalog"
	"github.com/tripmatch/backend/internal/infrastructure/store"
	"github.com/tripmatch/backend/internal/usecase"
)

// TestMain sets up test environment before running tests
func TestMain(m *testing.M) {
	// Set Gin to test mode once for all tests
	gin.SetMode(gin.TestMode)

	os.Exit(m.Run())
}

var testRegions = []byte(`[
	{
		"id": "andalusia",
		"name": "Andalusia",
		"country": "Spain",
		"continent": "europe",
		"environment": ["beach", "urban"],
		"style": ["romantic", "cultural"],
		"activities": ["diving", "museums"],
		"budget_range": [60, 140]
	},
	{
		"id": "bali",
		"name": "Bali",
		"country": "Indonesia",
		"continent": "asia",
		"environment": ["beach", "tropical"],
		"style": ["romantic"],
		"activities": ["diving", "surfing"],
		"budget_range": [30, 90]
	}
]`)

var testCities = []byte(`[
	{
		"id": "seville",
		"name": "Seville",
		"region_id": "andalusia",
		"environment": ["urban"],
		"style": ["cultural"],
		"activities": ["museums"],
		"budget_range": [60, 120]
	},
	{
		"id": "cadiz",
		"name": "Cadiz",
		"region_id": "andalusia",
		"environment": ["beach"],
		"style": ["romantic"],
		"activities": ["diving"],
		"budget_range": [50, 100]
	}
]`)

var testContinents = []byte(`[
	{"name": "Europe", "id": "europe"},
	{"name": "Asia", "id": "asia"}
]`)

// setupTestRouter wires the real stack over an in-memory store and a small
// fixture catalog.
func setupTestRouter(t *testing.T) *gin.Engine {
	t.Helper()

	cfg := &config.Config{
		Server: config.ServerConfig{
			Port:           "8080",
			Environment:    "test",
			AllowedOrigins: []string{"http://localhost:*"},
		},
	}

	cat, err := catalog.Load(testRegions, testCities, testContinents)
	if err != nil {
		t.Fatalf("catalog.Load: %v", err)
	}

	matcher := usecase.NewMatcherService(cat, usecase.MatcherConfig{})
	trips := usecase.NewTripService(store.NewMemoryStore(0), matcher, usecase.TripServiceConfig{})

	return SetupRouter(cfg, NewHandler(trips))
}

func doJSON(t *testing.T, router *gin.Engine, method, path, payload string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var body *strings.Reader
	if payload != "" {
		body = strings.NewReader(payload)
	} else {
		body = strings.NewReader("")
	}

	req, _ := http.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var response map[string]interface{}
	if len(w.Body.Bytes()) > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
			t.Fatalf("%s %s: invalid JSON response: %v", method, path, err)
		}
	}
	return w, response
}

func TestHealthCheckEndpoint(t *testing.T) {
	t.Run("returns healthy status", func(t *testing.T) {
		router := setupTestRouter(t)

		w, response := doJSON(t, router, "GET", "/health", "")
		if w.Code != http.StatusOK {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusOK)
		}

		if response["status"] != "healthy" {
			t.Errorf("status = %v, want healthy", response["status"])
		}
		if response["service"] != "tripmatch-backend" {
			t.Errorf("service = %v, want tripmatch-backend", response["service"])
		}
		version, ok := response["version"].(string)
		if !ok || strings.TrimSpace(version) == "" {
			t.Errorf("version = %v, want non-empty string", response["version"])
		}
	})

	t.Run("accepts GET requests only", func(t *testing.T) {
		router := setupTestRouter(t)

		for _, method := range []string{"POST", "PUT", "DELETE", "PATCH"} {
			w, _ := doJSON(t, router, method, "/health", "")
			if w.Code != http.StatusNotFound {
				t.Errorf("Method %s: Status = %d, want %d", method, w.Code, http.StatusNotFound)
			}
		}
	})
}

// TestTripPlanningFlow drives the whole trip lifecycle over HTTP: create a
// trip, collect two sets of preferences, calculate matches, vote, and drill
// into cities.
func TestTripPlanningFlow(t *testing.T) {
	router := setupTestRouter(t)

	// Create
	w, response := doJSON(t, router, "POST", "/api/v1/trips",
		`{"trip_name":"Summer Escape","organizer_name":"Ana","trip_type":"friends","duration_days":7}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: Status = %d, want %d (body: %s)", w.Code, http.StatusCreated, w.Body.String())
	}
	tripID, ok := response["trip_id"].(string)
	if !ok || len(tripID) != 8 {
		t.Fatalf("trip_id = %v, want 8-character id", response["trip_id"])
	}
	if response["share_link"] != "/join/"+tripID {
		t.Errorf("share_link = %v, want /join/%s", response["share_link"], tripID)
	}

	base := "/api/v1/trips/" + tripID

	// Preferences for two participants
	w, response = doJSON(t, router, "POST", base+"/preferences",
		`{"name":"Ana","geographic_preference":"Europe","environment":["beach"],"style":["romantic"],"activities":["diving"],"budget_range":[50,150]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("preferences(Ana): Status = %d, want %d (body: %s)", w.Code, http.StatusOK, w.Body.String())
	}
	if response["participant_count"] != float64(1) {
		t.Errorf("participant_count = %v, want 1", response["participant_count"])
	}

	w, response = doJSON(t, router, "POST", base+"/preferences",
		`{"name":"Ben","geographic_preference":"Europe","environment":["urban"],"style":["cultural"],"activities":["museums"],"budget_range":[60,120]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("preferences(Ben): Status = %d, want %d", w.Code, http.StatusOK)
	}
	if response["participant_count"] != float64(2) {
		t.Errorf("participant_count = %v, want 2", response["participant_count"])
	}

	// Calculate
	w, response = doJSON(t, router, "POST", base+"/calculate", "")
	if w.Code != http.StatusOK {
		t.Fatalf("calculate: Status = %d, want %d (body: %s)", w.Code, http.StatusOK, w.Body.String())
	}
	results, ok := response["results"].(map[string]interface{})
	if !ok {
		t.Fatalf("results missing from response: %v", response)
	}
	regions, ok := results["regions"].([]interface{})
	if !ok || len(regions) == 0 {
		t.Fatalf("regions = %v, want at least one match", results["regions"])
	}
	top := regions[0].(map[string]interface{})
	region := top["region"].(map[string]interface{})
	if region["id"] != "andalusia" {
		t.Errorf("top region = %v, want andalusia (in scope, both users match)", region["id"])
	}

	// Trip now carries the results
	w, response = doJSON(t, router, "GET", base, "")
	if w.Code != http.StatusOK {
		t.Fatalf("get: Status = %d, want %d", w.Code, http.StatusOK)
	}
	trip := response["trip"].(map[string]interface{})
	if trip["status"] != "results_ready" {
		t.Errorf("status = %v, want results_ready", trip["status"])
	}

	// Vote
	w, response = doJSON(t, router, "POST", base+"/vote",
		`{"user_name":"Ana","region_id":"andalusia"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("vote: Status = %d, want %d", w.Code, http.StatusOK)
	}
	counts := response["vote_counts"].(map[string]interface{})
	if counts["andalusia"] != float64(1) {
		t.Errorf("vote_counts = %v, want andalusia:1", counts)
	}
	if response["total_votes"] != float64(1) {
		t.Errorf("total_votes = %v, want 1", response["total_votes"])
	}

	// Cities
	w, response = doJSON(t, router, "POST", base+"/cities",
		`{"region_id":"andalusia"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("cities: Status = %d, want %d (body: %s)", w.Code, http.StatusOK, w.Body.String())
	}
	cities, ok := response["cities"].([]interface{})
	if !ok || len(cities) != 2 {
		t.Fatalf("cities = %v, want both Andalusian cities", response["cities"])
	}
}

func TestTripEndpointErrors(t *testing.T) {
	t.Run("unknown trip returns 404", func(t *testing.T) {
		router := setupTestRouter(t)

		paths := []struct {
			method  string
			path    string
			payload string
		}{
			{"GET", "/api/v1/trips/unknown1", ""},
			{"POST", "/api/v1/trips/unknown1/preferences", `{"name":"Ana"}`},
			{"POST", "/api/v1/trips/unknown1/calculate", ""},
			{"POST", "/api/v1/trips/unknown1/vote", `{"user_name":"Ana","region_id":"bali"}`},
			{"POST", "/api/v1/trips/unknown1/cities", `{"region_id":"bali"}`},
		}
		for _, p := range paths {
			w, response := doJSON(t, router, p.method, p.path, p.payload)
			if w.Code != http.StatusNotFound {
				t.Errorf("%s %s: Status = %d, want %d", p.method, p.path, w.Code, http.StatusNotFound)
			}
			if response["success"] != false {
				t.Errorf("%s %s: success = %v, want false", p.method, p.path, response["success"])
			}
		}
	})

	t.Run("calculate with one participant returns 400", func(t *testing.T) {
		router := setupTestRouter(t)

		_, response := doJSON(t, router, "POST", "/api/v1/trips", `{"trip_name":"Solo"}`)
		tripID := response["trip_id"].(string)

		doJSON(t, router, "POST", "/api/v1/trips/"+tripID+"/preferences", `{"name":"Ana"}`)

		w, _ := doJSON(t, router, "POST", "/api/v1/trips/"+tripID+"/calculate", "")
		if w.Code != http.StatusBadRequest {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusBadRequest)
		}
	})

	t.Run("preferences without a name return 400", func(t *testing.T) {
		router := setupTestRouter(t)

		_, response := doJSON(t, router, "POST", "/api/v1/trips", `{}`)
		tripID := response["trip_id"].(string)

		w, _ := doJSON(t, router, "POST", "/api/v1/trips/"+tripID+"/preferences", `{"environment":["beach"]}`)
		if w.Code != http.StatusBadRequest {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusBadRequest)
		}
	})

	t.Run("invalid JSON returns 400", func(t *testing.T) {
		router := setupTestRouter(t)

		w, _ := doJSON(t, router, "POST", "/api/v1/trips", `{invalid json}`)
		if w.Code != http.StatusBadRequest {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusBadRequest)
		}
	})

	t.Run("vote without region returns 400", func(t *testing.T) {
		router := setupTestRouter(t)

		_, response := doJSON(t, router, "POST", "/api/v1/trips", `{}`)
		tripID := response["trip_id"].(string)

		w, _ := doJSON(t, router, "POST", "/api/v1/trips/"+tripID+"/vote", `{"user_name":"Ana"}`)
		if w.Code != http.StatusBadRequest {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusBadRequest)
		}
	})
}

// TestCORSIntegration tests CORS headers work end-to-end with full router
func TestCORSIntegration(t *testing.T) {
	t.Run("health endpoint has CORS for the frontend", func(t *testing.T) {
		router := setupTestRouter(t)

		req, _ := http.NewRequest("GET", "/health", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusOK)
		}

		gotOrigin := w.Header().Get("Access-Control-Allow-Origin")
		if gotOrigin != "http://localhost:3000" {
			t.Errorf("Access-Control-Allow-Origin = %q, want %q", gotOrigin, "http://localhost:3000")
		}

		gotCreds := w.Header().Get("Access-Control-Allow-Credentials")
		if gotCreds != "true" {
			t.Errorf("Access-Control-Allow-Credentials = %q, want %q", gotCreds, "true")
		}
	})
}

// TestRecoveryMiddleware tests panic recovery
func TestRecoveryMiddleware(t *testing.T) {
	t.Run("recovers from panic without crashing server", func(t *testing.T) {
		router := setupTestRouter(t)

		router.GET("/panic", func(c *gin.Context) {
			panic("test panic")
		})

		req, _ := http.NewRequest("GET", "/panic", nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		// Gin's default recovery returns 500
		if w.Code != http.StatusInternalServerError {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusInternalServerError)
		}
	})
}

// TestAPIVersioning tests that API v1 routes are correctly versioned
func TestAPIVersioning(t *testing.T) {
	t.Run("non-versioned routes return 404", func(t *testing.T) {
		router := setupTestRouter(t)

		w, _ := doJSON(t, router, "POST", "/api/trips", `{}`)
		if w.Code != http.StatusNotFound {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusNotFound)
		}
	})
}

// TestJSONResponses tests that all responses are valid JSON
func TestJSONResponses(t *testing.T) {
	endpoints := []struct {
		method  string
		path    string
		payload string
	}{
		{"GET", "/health", ""},
		{"POST", "/api/v1/trips", `{}`},
		{"GET", "/api/v1/trips/unknown1", ""},
	}

	for _, endpoint := range endpoints {
		t.Run(endpoint.method+" "+endpoint.path, func(t *testing.T) {
			router := setupTestRouter(t)

			w, _ := doJSON(t, router, endpoint.method, endpoint.path, endpoint.payload)

			gotContentType := w.Header().Get("Content-Type")
			wantContentType := "application/json; charset=utf-8"
			if gotContentType != wantContentType {
				t.Errorf("Content-Type = %q, want %q", gotContentType, wantContentType)
			}
		})
	}
}

package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tripmatch/backend/internal/domain"
	"github.com/tripmatch/backend/internal/usecase"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	trips *usecase.TripService
}

// NewHandler creates a new HTTP handler
func NewHandler(trips *usecase.TripService) *Handler {
	return &Handler{trips: trips}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "tripmatch-backend",
		"version": "1.0.0",
	})
}

// createTripRequest is the payload for starting a trip
type createTripRequest struct {
	TripName      string `json:"trip_name"`
	OrganizerName string `json:"organizer_name"`
	TripType      string `json:"trip_type"`
	DurationDays  int    `json:"duration_days"`
}

// CreateTrip starts a new planning session
func (h *Handler) CreateTrip(c *gin.Context) {
	var req createTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	trip, err := h.trips.CreateTrip(c.Request.Context(), req.TripName, req.OrganizerName, req.TripType, req.DurationDays)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":    true,
		"trip_id":    trip.ID,
		"share_link": "/join/" + trip.ID,
	})
}

// GetTrip returns trip details
func (h *Handler) GetTrip(c *gin.Context) {
	trip, err := h.trips.GetTrip(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"trip":    trip,
	})
}

// submitPreferencesRequest is the payload for one participant's preferences
type submitPreferencesRequest struct {
	Name                 string   `json:"name" binding:"required"`
	GeographicPreference string   `json:"geographic_preference"`
	Environment          []string `json:"environment"`
	Style                []string `json:"style"`
	Activities           []string `json:"activities"`
	BudgetRange          []int    `json:"budget_range"`
	Climate              string   `json:"climate"`
}

// SubmitPreferences records a participant's preferences; resubmitting under
// the same name replaces the earlier record
func (h *Handler) SubmitPreferences(c *gin.Context) {
	var req submitPreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	pref := domain.UserPreference{
		Name:                 req.Name,
		GeographicPreference: req.GeographicPreference,
		Environment:          req.Environment,
		Style:                req.Style,
		Activities:           req.Activities,
		Climate:              req.Climate,
	}
	if len(req.BudgetRange) == 2 && req.BudgetRange[0] <= req.BudgetRange[1] {
		pref.BudgetRange = [2]int{req.BudgetRange[0], req.BudgetRange[1]}
	}

	trip, err := h.trips.SubmitPreferences(c.Request.Context(), c.Param("id"), pref)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":           true,
		"message":           "Preferences saved",
		"participant_count": len(trip.Participants),
	})
}

// CalculateMatches runs the matcher for a trip
func (h *Handler) CalculateMatches(c *gin.Context) {
	results, err := h.trips.CalculateMatches(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"results": results,
	})
}

// voteRequest is the payload for one participant's vote
type voteRequest struct {
	UserName string `json:"user_name" binding:"required"`
	RegionID string `json:"region_id" binding:"required"`
}

// Vote records a destination vote; revoting replaces the earlier vote
func (h *Handler) Vote(c *gin.Context) {
	var req voteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	tally, err := h.trips.Vote(c.Request.Context(), c.Param("id"), req.UserName, req.RegionID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	var total int
	for _, count := range tally {
		total += count
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"vote_counts": tally,
		"total_votes": total,
	})
}

// citiesRequest selects the region to drill into
type citiesRequest struct {
	RegionID string `json:"region_id" binding:"required"`
}

// CityMatches returns ranked cities for a chosen region
func (h *Handler) CityMatches(c *gin.Context) {
	var req citiesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	cities, err := h.trips.CityMatches(c.Request.Context(), c.Param("id"), req.RegionID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"cities":  cities,
	})
}

// respondServiceError maps domain errors to HTTP status codes
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrTripNotFound):
		respondError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrNotEnoughParticipants), errors.Is(err, domain.ErrInvalidRequest):
		respondError(c, http.StatusBadRequest, err.Error())
	default:
		respondError(c, http.StatusInternalServerError, err.Error())
	}
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error":   message,
	})
}

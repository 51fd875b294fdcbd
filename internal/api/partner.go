package api

import (
	"net/http"
	"strconv"
	"strings"

	"cleanhive/internal/models"
)

// Partner endpoints back external booking widgets: read-only availability
// and service-area coverage checks.

func (s *Server) handlePartnerAvailability(w http.ResponseWriter, r *http.Request) {
	start, days, ok := parsePeriod(w, r)
	if !ok {
		return
	}

	slots, err := s.bookings.GetAvailability(r.Context(), start, days)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	results := make([]map[string]any, 0, len(slots))
	for _, slot := range slots {
		results = append(results, map[string]any{
			"date":      slot.Date.Format("2006-01-02"),
			"time_slot": slot.TimeSlot,
			"available": slot.Available,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

func (s *Server) handlePartnerCoverage(w http.ResponseWriter, r *http.Request) {
	latRaw := strings.TrimSpace(r.URL.Query().Get("lat"))
	lngRaw := strings.TrimSpace(r.URL.Query().Get("lng"))
	if latRaw == "" || lngRaw == "" {
		writeError(w, http.StatusBadRequest, "lat and lng are required")
		return
	}

	lat, err := strconv.ParseFloat(latRaw, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid lat")
		return
	}
	lng, err := strconv.ParseFloat(lngRaw, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid lng")
		return
	}

	covered, err := s.bookings.CheckCoverage(r.Context(), models.GeoPoint{Lat: lat, Lng: lng})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"covered": covered})
}

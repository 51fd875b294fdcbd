package api

import (
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"cleanhive/internal/models"
)

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := s.admin.DashboardStats(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleRevenue(w http.ResponseWriter, r *http.Request) {
	months := 6
	if raw := strings.TrimSpace(r.URL.Query().Get("months")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 36 {
			writeError(w, http.StatusBadRequest, "months must be between 1 and 36")
			return
		}
		months = parsed
	}

	points, err := s.admin.RevenueReport(r.Context(), months)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"revenue": points})
}

func (s *Server) handleGetRules(w http.ResponseWriter, r *http.Request) {
	rules, err := s.admin.BookingRules(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rules)
}

func (s *Server) handleSaveRules(w http.ResponseWriter, r *http.Request) {
	var rules models.BookingRules
	if !decodeBody(w, r, &rules) {
		return
	}
	if err := s.admin.SaveBookingRules(r.Context(), &rules); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, rules)
}

func (s *Server) handleAudit(w http.ResponseWriter, r *http.Request) {
	entity := strings.TrimSpace(r.URL.Query().Get("entity"))
	entityID, _ := strconv.ParseInt(r.URL.Query().Get("entity_id"), 10, 64)

	limit := 50
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 500 {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 500")
			return
		}
		limit = parsed
	}

	entries, err := s.admin.ListAuditEntries(r.Context(), entity, entityID, limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	checks, err := s.admin.LatestHealthChecks(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"checks": checks})
}

func (s *Server) handleFailedOutbox(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.admin.FailedOutboxTasks(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tasks": tasks})
}

func (s *Server) handleRequeueOutbox(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.admin.RequeueOutboxTask(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "requeued"})
}

type syncScheduleRequest struct {
	Start string `json:"start"`
	Days  int    `json:"days"`
}

func (s *Server) handleSyncSchedule(w http.ResponseWriter, r *http.Request) {
	var req syncScheduleRequest
	if !decodeBody(w, r, &req) {
		return
	}

	start := time.Now().AddDate(0, 0, 1)
	if req.Start != "" {
		parsed, err := time.Parse("2006-01-02", req.Start)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid start; expected YYYY-MM-DD")
			return
		}
		start = parsed
	}

	if err := s.admin.SyncSchedule(r.Context(), start, req.Days); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}

func (s *Server) handleSyncBookings(w http.ResponseWriter, r *http.Request) {
	var req syncScheduleRequest
	if !decodeBody(w, r, &req) {
		return
	}

	start := time.Now().AddDate(0, 0, 1)
	if req.Start != "" {
		parsed, err := time.Parse("2006-01-02", req.Start)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid start; expected YYYY-MM-DD")
			return
		}
		start = parsed
	}

	if err := s.admin.SyncBookings(r.Context(), start, req.Days); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var tables []string
	if raw := strings.TrimSpace(r.URL.Query().Get("tables")); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			if trimmed := strings.TrimSpace(t); trimmed != "" {
				tables = append(tables, trimmed)
			}
		}
	}

	dumps, err := s.export.Dump(r.Context(), tables)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, dumps)
}

// handleScheduleExcel renders the period schedule as an xlsx download.
func (s *Server) handleScheduleExcel(w http.ResponseWriter, r *http.Request) {
	start, days, ok := parsePeriod(w, r)
	if !ok {
		return
	}

	rules, err := s.admin.BookingRules(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	path, err := s.export.ScheduleToExcel(r.Context(), start, start.AddDate(0, 0, days-1), rules.TimeSlots, rules.SlotCapacity)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename="+filepath.Base(path))
	http.ServeFile(w, r, path)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	counts, err := s.export.Import(r.Context(), r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"imported": counts})
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	role := strings.TrimSpace(r.URL.Query().Get("role"))
	status := strings.TrimSpace(r.URL.Query().Get("status"))

	users, err := s.users.ListUsers(r.Context(), role, status)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": users})
}

type userStatusRequest struct {
	Status  string `json:"status"`
	Version int64  `json:"version"`
}

func (s *Server) handleUserStatus(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req userStatusRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if _, err := models.ParseUserStatus(req.Status); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.users.ChangeStatus(r.Context(), id, req.Version, req.Status, claims.UserID); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": req.Status})
}

type assignProviderRequest struct {
	ProviderID int64 `json:"provider_id"`
	Version    int64 `json:"version"`
}

func (s *Server) handleAssignProvider(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req assignProviderRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.ProviderID <= 0 {
		writeError(w, http.StatusBadRequest, "provider_id is required")
		return
	}

	if err := s.bookings.AssignProvider(r.Context(), id, req.Version, req.ProviderID, claims.UserID); err != nil {
		if strings.Contains(err.Error(), "provider") {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "assigned"})
}

func (s *Server) handleListLeads(w http.ResponseWriter, r *http.Request) {
	stage := strings.TrimSpace(r.URL.Query().Get("stage"))
	if stage != "" {
		if _, err := models.ParseLeadStage(stage); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	leads, err := s.leads.ListLeads(r.Context(), stage)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"leads": leads})
}

type leadStageRequest struct {
	Stage   string `json:"stage"`
	Version int64  `json:"version"`
}

func (s *Server) handleLeadStage(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req leadStageRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if _, err := models.ParseLeadStage(req.Stage); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.leads.AdvanceStage(r.Context(), id, req.Version, req.Stage, claims.UserID); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"stage": req.Stage})
}

type leadNotesRequest struct {
	Notes string `json:"notes"`
}

func (s *Server) handleLeadNotes(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req leadNotesRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := s.leads.UpdateNotes(r.Context(), id, req.Notes); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (s *Server) handleListPromotions(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"

	promos, err := s.promotions.ListPromotions(r.Context(), activeOnly)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"promotions": promos})
}

func (s *Server) handleCreatePromotion(w http.ResponseWriter, r *http.Request) {
	var promo models.Promotion
	if !decodeBody(w, r, &promo) {
		return
	}

	if err := s.promotions.CreatePromotion(r.Context(), &promo); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, promo)
}

func (s *Server) handleDeactivatePromotion(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.promotions.Deactivate(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deactivated"})
}

package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"bookline/internal/availability/service"
	httputil "bookline/pkg/http"
	"bookline/pkg/logger"
	"bookline/pkg/model"
)

// OrganizationSource resolves organizations for slot queries.
type OrganizationSource interface {
	GetByID(ctx context.Context, id string) (*model.Organization, error)
}

type AvailabilityHandler struct {
	service       service.AvailabilityService
	organizations OrganizationSource
	log           *logger.Logger
}

func NewAvailabilityHandler(svc service.AvailabilityService, organizations OrganizationSource, log *logger.Logger) *AvailabilityHandler {
	return &AvailabilityHandler{
		service:       svc,
		organizations: organizations,
		log:           log,
	}
}

func (h *AvailabilityHandler) CreateRule(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var rule model.AvailabilityRule
	if err := json.NewDecoder(r.Body).Decode(&rule); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "CreateRule", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}
	rule.OrganizationID = ps.ByName("id")

	created, err := h.service.CreateRule(r.Context(), &rule)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "CreateRule", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, created); err != nil {
		h.log.Error("failed to write created response", "handler", "CreateRule", "operation", "WriteCreated", "error", err)
	}
}

func (h *AvailabilityHandler) ListRules(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	rules, err := h.service.ListRules(r.Context(), ps.ByName("id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ListRules", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, rules); err != nil {
		h.log.Error("failed to write success response", "handler", "ListRules", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AvailabilityHandler) DeleteRule(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.DeleteRule(r.Context(), ps.ByName("ruleId")); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "DeleteRule", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}

func (h *AvailabilityHandler) CreateBlackout(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var blackout model.BlackoutDate
	if err := json.NewDecoder(r.Body).Decode(&blackout); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "CreateBlackout", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}
	blackout.OrganizationID = ps.ByName("id")

	created, err := h.service.CreateBlackout(r.Context(), &blackout)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "CreateBlackout", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, created); err != nil {
		h.log.Error("failed to write created response", "handler", "CreateBlackout", "operation", "WriteCreated", "error", err)
	}
}

func (h *AvailabilityHandler) ListBlackouts(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	from, err := httputil.ExtractTime(r, "from")
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ListBlackouts", "operation", "WriteError", "error", writeErr)
		}
		return
	}
	to, err := httputil.ExtractTime(r, "to")
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ListBlackouts", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	rangeFrom := time.Now().UTC()
	if from != nil {
		rangeFrom = *from
	}
	rangeTo := rangeFrom.AddDate(0, 3, 0)
	if to != nil {
		rangeTo = *to
	}

	blackouts, err := h.service.ListBlackouts(r.Context(), ps.ByName("id"), rangeFrom, rangeTo)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ListBlackouts", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, blackouts); err != nil {
		h.log.Error("failed to write success response", "handler", "ListBlackouts", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AvailabilityHandler) DeleteBlackout(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.DeleteBlackout(r.Context(), ps.ByName("blackoutId")); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "DeleteBlackout", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}

func (h *AvailabilityHandler) FreeSlots(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	query := r.URL.Query()
	serviceID := query.Get("service_id")
	date := query.Get("date")

	if serviceID == "" || date == "" {
		if err := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "service_id and date query parameters are required",
		}); err != nil {
			h.log.Error("failed to write bad request response", "handler", "FreeSlots", "operation", "WriteJSON", "error", err)
		}
		return
	}

	org, err := h.organizations.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "FreeSlots", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	slots, err := h.service.FreeSlots(r.Context(), org, serviceID, date)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "FreeSlots", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	formatted := make([]string, 0, len(slots))
	for _, slot := range slots {
		formatted = append(formatted, slot.Format(time.RFC3339))
	}

	if err := httputil.WriteSuccess(w, formatted); err != nil {
		h.log.Error("failed to write success response", "handler", "FreeSlots", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AvailabilityHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/organizations/:id/availability-rules", h.CreateRule)
	router.GET("/api/v1/organizations/:id/availability-rules", h.ListRules)
	router.DELETE("/api/v1/organizations/:id/availability-rules/:ruleId", h.DeleteRule)
	router.POST("/api/v1/organizations/:id/blackouts", h.CreateBlackout)
	router.GET("/api/v1/organizations/:id/blackouts", h.ListBlackouts)
	router.DELETE("/api/v1/organizations/:id/blackouts/:blackoutId", h.DeleteBlackout)
	router.GET("/api/v1/organizations/:id/slots", h.FreeSlots)
}

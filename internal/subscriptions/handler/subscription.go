package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"bookline/internal/subscriptions/service"
	httputil "bookline/pkg/http"
	"bookline/pkg/logger"
)

type SubscriptionHandler struct {
	service service.SubscriptionService
	log     *logger.Logger
}

func NewSubscriptionHandler(svc service.SubscriptionService, log *logger.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{
		service: svc,
		log:     log,
	}
}

type activateRequest struct {
	Plan string `json:"plan"`
	Days int    `json:"days"`
}

func (h *SubscriptionHandler) Activate(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req activateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Activate", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	sub, err := h.service.Activate(r.Context(), ps.ByName("id"), req.Plan, req.Days)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Activate", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, sub); err != nil {
		h.log.Error("failed to write success response", "handler", "Activate", "operation", "WriteSuccess", "error", err)
	}
}

func (h *SubscriptionHandler) Status(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	sub, err := h.service.Status(r.Context(), ps.ByName("id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Status", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, sub); err != nil {
		h.log.Error("failed to write success response", "handler", "Status", "operation", "WriteSuccess", "error", err)
	}
}

func (h *SubscriptionHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.Cancel(r.Context(), ps.ByName("id")); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Cancel", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}

func (h *SubscriptionHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/organizations/:id/subscription/activate", h.Activate)
	router.GET("/api/v1/organizations/:id/subscription", h.Status)
	router.DELETE("/api/v1/organizations/:id/subscription", h.Cancel)
}

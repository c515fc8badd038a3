package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"bookline/internal/organizations/service"
	httputil "bookline/pkg/http"
	"bookline/pkg/logger"
	"bookline/pkg/model"
)

type OrganizationHandler struct {
	service service.OrganizationService
	log     *logger.Logger
}

func NewOrganizationHandler(svc service.OrganizationService, log *logger.Logger) *OrganizationHandler {
	return &OrganizationHandler{
		service: svc,
		log:     log,
	}
}

type createOrganizationRequest struct {
	Name     string `json:"name"`
	Timezone string `json:"timezone"`
}

type addAdminRequest struct {
	UserID int64  `json:"user_id"`
	Role   string `json:"role"`
}

func (h *OrganizationHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req createOrganizationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Create", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	org, err := h.service.Create(r.Context(), req.Name, req.Timezone)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Create", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, org); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *OrganizationHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	org, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByID", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, org); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *OrganizationHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetAll", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	orgs, err := h.service.GetAll(r.Context(), limit, offset)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetAll", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, orgs); err != nil {
		h.log.Error("failed to write success response", "handler", "GetAll", "operation", "WriteSuccess", "error", err)
	}
}

func (h *OrganizationHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var updates model.OrganizationUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Update", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	if err := h.service.Update(r.Context(), ps.ByName("id"), &updates); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Update", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}

func (h *OrganizationHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.Delete(r.Context(), ps.ByName("id")); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Delete", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}

func (h *OrganizationHandler) AddAdmin(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req addAdminRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "AddAdmin", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	if err := h.service.AddAdmin(r.Context(), ps.ByName("id"), req.UserID, req.Role); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "AddAdmin", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}

func (h *OrganizationHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/organizations", h.Create)
	router.GET("/api/v1/organizations", h.GetAll)
	router.GET("/api/v1/organizations/:id", h.GetByID)
	router.PATCH("/api/v1/organizations/:id", h.Update)
	router.DELETE("/api/v1/organizations/:id", h.Delete)
	router.POST("/api/v1/organizations/:id/admins", h.AddAdmin)
}

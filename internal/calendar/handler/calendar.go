package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"bookline/internal/calendar/service"
	httputil "bookline/pkg/http"
	"bookline/pkg/logger"
)

type CalendarHandler struct {
	service service.CalendarService
	log     *logger.Logger
}

func NewCalendarHandler(svc service.CalendarService, log *logger.Logger) *CalendarHandler {
	return &CalendarHandler{
		service: svc,
		log:     log,
	}
}

// Feed serves the iCalendar document. The token in the path is the only
// credential; rotating it revokes previously shared feed URLs.
func (h *CalendarHandler) Feed(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ics, err := h.service.Feed(r.Context(), ps.ByName("token"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Feed", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="bookings.ics"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(ics)); err != nil {
		h.log.Error("failed to write calendar response", "handler", "Feed", "error", err)
	}
}

func (h *CalendarHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/calendar/:token", h.Feed)
}

package httppresentation

import (
	"errors"
	"net/http"

	appOrder "github.com/HacAtac/Ecom-Order-Microservice/internal/application/order"
	"github.com/HacAtac/Ecom-Order-Microservice/internal/observability"
	"github.com/HacAtac/Ecom-Order-Microservice/internal/observability/logctx"
)

const (
	errorCodeNotFound       = "NOT_FOUND"
	errorCodeInvalidRequest = "INVALID_REQUEST"
	errorCodeInternal       = "INTERNAL_ERROR"
)

type errorResponse struct {
	Message   string `json:"message"`
	ErrorCode string `json:"errorCode"`
	Status    int    `json:"status"`
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Message: message, ErrorCode: code, Status: status})
}

// writeDomainError maps application errors to responses. Stock reservation
// failures have no code of their own and surface as INTERNAL_ERROR. Store
// failures are checked first so a wrapped not-found cause stays a 500.
func (h *Handler) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, appOrder.ErrRepository):
		h.writeInternalError(w, r, err)
	case errors.Is(err, appOrder.ErrNotFound):
		writeError(w, http.StatusNotFound, errorCodeNotFound, err.Error())
	case errors.Is(err, appOrder.ErrValidation):
		writeError(w, http.StatusBadRequest, errorCodeInvalidRequest, err.Error())
	default:
		h.writeInternalError(w, r, err)
	}
}

func (h *Handler) writeInternalError(w http.ResponseWriter, r *http.Request, err error) {
	logctx.FromOr(r.Context(), h.log).Error("request_failed",
		observability.F("path", r.URL.Path),
		observability.F("error", err),
	)
	writeError(w, http.StatusInternalServerError, errorCodeInternal, http.StatusText(http.StatusInternalServerError))
}

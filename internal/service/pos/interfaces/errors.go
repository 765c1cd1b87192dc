package interfaces

import (
	"encoding/json"
	"errors"
	"net/http"

	"till/internal/service/pos/domain"
)

const (
	codeInvalidInput        = "invalid_input"
	codeInvalidRequestBody  = "invalid_request_body"
	codeNotFound            = "not_found"
	codeDuplicateProduct    = "duplicate_product"
	codeInsufficientStock   = "insufficient_stock"
	codeInsufficientPayment = "insufficient_payment"
	codeInvalidState        = "invalid_state"
	codeConflict            = "conflict"
	codeBusy                = "busy"
	codeInternalError       = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: msg, Code: code})
}

// writeDomainError maps the error taxonomy onto HTTP statuses and
// structured codes.
func writeDomainError(w http.ResponseWriter, err error) {
	status, code := http.StatusInternalServerError, codeInternalError
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		status, code = http.StatusBadRequest, codeInvalidInput
	case errors.Is(err, domain.ErrNotFound):
		status, code = http.StatusNotFound, codeNotFound
	case errors.Is(err, domain.ErrDuplicateProduct):
		status, code = http.StatusConflict, codeDuplicateProduct
	case errors.Is(err, domain.ErrInsufficientStock):
		status, code = http.StatusConflict, codeInsufficientStock
	case errors.Is(err, domain.ErrInsufficientPayment):
		status, code = http.StatusPaymentRequired, codeInsufficientPayment
	case errors.Is(err, domain.ErrInvalidState):
		status, code = http.StatusConflict, codeInvalidState
	case errors.Is(err, domain.ErrConflict):
		status, code = http.StatusConflict, codeConflict
	case errors.Is(err, domain.ErrBusy):
		status, code = http.StatusServiceUnavailable, codeBusy
	}
	rejectionsTotal.WithLabelValues(code).Inc()
	writeError(w, status, code, err.Error())
}

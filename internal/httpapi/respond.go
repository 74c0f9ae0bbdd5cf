package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/branched-services/go-crowdfund"
	"github.com/branched-services/go-crowdfund/client"
)

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("encode response error", slog.Any("error", err))
	}
}

func (h *Handler) writeMessage(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, client.ErrorResponse{Error: msg})
}

// writeError maps a backend error to a status code. Anything the chain
// included in a block, and any contract revert, is a 422.
func (h *Handler) writeError(w http.ResponseWriter, receipt *crowdfund.Receipt, err error) {
	body := client.ErrorResponse{
		Error:   err.Error(),
		Receipt: client.NewReceipt(receipt),
	}
	if reason := crowdfund.ReasonOf(err); reason != "" {
		body.Reason = reason
		body.Data = crowdfund.EncodeRevert(reason)
	}
	status := statusFor(receipt, err)
	if status == http.StatusInternalServerError {
		h.logger.Error("backend error", slog.Any("error", err))
		body.Error = "internal error"
	}
	h.writeJSON(w, status, body)
}

func statusFor(receipt *crowdfund.Receipt, err error) int {
	var (
		rerr   *crowdfund.RevertError
		argErr *crowdfund.ArgumentError
		decErr *crowdfund.DecodeError
		mnfErr *crowdfund.MethodNotFoundError
	)
	switch {
	case receipt != nil, errors.As(err, &rerr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, crowdfund.ErrNoContract), errors.Is(err, crowdfund.ErrUnknownContract):
		return http.StatusNotFound
	case errors.Is(err, crowdfund.ErrInvalidAmount),
		errors.Is(err, crowdfund.ErrInsufficientBalance),
		errors.Is(err, crowdfund.ErrNonPayable),
		errors.Is(err, crowdfund.ErrReadOnly),
		errors.Is(err, crowdfund.ErrArgumentCount),
		errors.As(err, &argErr),
		errors.As(err, &decErr),
		errors.As(err, &mnfErr):
		return http.StatusBadRequest
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

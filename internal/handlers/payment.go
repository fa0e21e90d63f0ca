package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mentorhub/apiserver/internal/auth"
	"github.com/mentorhub/apiserver/internal/services"
	"github.com/mentorhub/apiserver/internal/store"
	"github.com/mentorhub/apiserver/types"
)

// PaymentHandler records gateway results and serves them back to their
// owner.
type PaymentHandler struct {
	payments *services.PaymentService
}

func NewPaymentHandler(payments *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

// PaymentRouter registers payment routes on the given router.
func PaymentRouter(r chi.Router, payments *services.PaymentService) {
	handler := NewPaymentHandler(payments)

	r.With(auth.RequireKind(types.KindUser)).Get("/", handler.ListMyPayments)
	r.With(auth.RequireKind(types.KindUser)).Post("/", handler.RecordPayment)
	r.With(auth.RequireAuthenticated).Get("/{paymentID}", handler.GetPayment)
}

// PaymentRecordRequest is the gateway result to record.
type PaymentRecordRequest struct {
	CourseID    int    `json:"course_id"`
	Reference   string `json:"reference"`
	AmountCents int64  `json:"amount_cents"`
	Status      string `json:"status"`
}

func (h *PaymentHandler) ListMyPayments(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.FromContext(r.Context())

	payments, err := h.payments.ListByUser(r.Context(), principal.ID())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list payments")
		return
	}
	if payments == nil {
		payments = []types.Payment{}
	}

	writeJSON(w, http.StatusOK, payments)
}

func (h *PaymentHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.FromContext(r.Context())

	var req PaymentRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	created, err := h.payments.Record(r.Context(), principal.ID(), types.Payment{
		CourseID:    req.CourseID,
		Reference:   req.Reference,
		AmountCents: req.AmountCents,
		Status:      req.Status,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrValidation):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "course not found")
		default:
			writeError(w, http.StatusInternalServerError, "failed to record payment")
		}
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func (h *PaymentHandler) GetPayment(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "paymentID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	payment, err := h.payments.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "payment not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch payment")
		return
	}

	principal, _ := auth.FromContext(r.Context())
	if !auth.CanModify(types.UserOwner(payment.UserID), principal) {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}

	writeJSON(w, http.StatusOK, payment)
}

package handler

import (
	"encoding/json"
	"net/http"

	"github.com/tarjetero/tarjetero-api/internal/domain"
	"github.com/tarjetero/tarjetero-api/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ============================================================
// 3. Meses sin intereses
// ============================================================

func listInstallmentsHandler(svc *service.CardsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/cards/{cardId}/installments")
		defer span.End()

		plans, err := svc.ListInstallments(ctx, chi.URLParam(r, "cardId"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{"installments": plans})
	}
}

type payInstallmentRequest struct {
	Date domain.Date `json:"date"`
}

func payInstallmentHandler(svc *service.CardsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/cards/{cardId}/installments/{installmentId}/payments")
		defer span.End()

		var req payInstallmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}

		payment, err := svc.PayInstallment(ctx, chi.URLParam(r, "cardId"), chi.URLParam(r, "installmentId"), req.Date)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusCreated, payment)
	}
}

func deleteInstallmentHandler(svc *service.CardsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/cards/{cardId}/installments/{installmentId}")
		defer span.End()

		err := svc.DeleteInstallment(ctx, chi.URLParam(r, "cardId"), chi.URLParam(r, "installmentId"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

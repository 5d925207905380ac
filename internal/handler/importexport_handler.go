package handler

import (
	"encoding/json"
	"net/http"

	"github.com/tarjetero/tarjetero-api/internal/domain"
	"github.com/tarjetero/tarjetero-api/internal/service"

	"go.uber.org/zap"
)

// ============================================================
// 5. Respaldo
// ============================================================

func exportHandler(svc *service.CardsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/export")
		defer span.End()

		cards, err := svc.ExportData(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{"cards": cards})
	}
}

type importRequest struct {
	Cards []*domain.Card `json:"cards"`
}

func importHandler(svc *service.CardsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/import")
		defer span.End()

		var req importRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}

		if err := svc.ImportData(ctx, req.Cards); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{"imported": len(req.Cards)})
	}
}

package integration_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/tarjetero/tarjetero-api/internal/domain"
	"github.com/tarjetero/tarjetero-api/internal/handler"
	"github.com/tarjetero/tarjetero-api/internal/infra/backup"
	"github.com/tarjetero/tarjetero-api/internal/infra/cache"
	"github.com/tarjetero/tarjetero-api/internal/infra/observability"
	"github.com/tarjetero/tarjetero-api/internal/infra/resilience"
	"github.com/tarjetero/tarjetero-api/internal/service"
	"github.com/tarjetero/tarjetero-api/internal/store/jsonstore"

	"go.uber.org/zap"
)

// TestIntegration_FullFlow drives a card's lifecycle through the HTTP surface
// with a mock backup mirror receiving snapshots, then checks the derived
// statement figures and that the mirror saw the data.
func TestIntegration_FullFlow(t *testing.T) {
	// --- Mock backup mirror ---
	var (
		mu        sync.Mutex
		snapshots [][]byte
	)
	backupServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		snapshots = append(snapshots, body)
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer backupServer.Close()

	// --- Build service ---
	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	cb := resilience.NewCircuitBreaker("test-backup")
	cfg := resilience.Config{MaxRetries: 1, InitialBackoff: 10 * time.Millisecond}
	httpClient := &http.Client{Timeout: 5 * time.Second}

	store, err := jsonstore.Open(filepath.Join(t.TempDir(), "cards.json"), logger)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	store.OnPersist(metrics.IncrSnapshotPersist)

	svc := service.NewCardsService(
		store,
		cache.New[domain.CardSummary](5*time.Minute),
		backup.NewClient(httpClient, backupServer.URL, cb, cfg),
		metrics,
		logger,
	)

	router := handler.NewRouter(svc, metrics, logger)

	post := func(path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader([]byte(body)))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}
	get := func(path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	// --- Create card ---
	rec := post("/v1/cards",
		`{"alias":"BBVA Azul","bank":"BBVA","last4":"4821","limit":50000,"cutoffDay":15,"paymentDay":5}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create card: %d %s", rec.Code, rec.Body.String())
	}
	var card domain.Card
	if err := json.Unmarshal(rec.Body.Bytes(), &card); err != nil {
		t.Fatalf("decode card: %v", err)
	}

	// --- Add an installment purchase ---
	rec = post("/v1/cards/"+card.ID+"/transactions",
		`{"type":"installment_purchase","date":"2024-01-20","description":"Laptop","totalAmount":24000,"months":12}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("add installment: %d %s", rec.Code, rec.Body.String())
	}
	var inst domain.InstallmentPurchase
	if err := json.Unmarshal(rec.Body.Bytes(), &inst); err != nil {
		t.Fatalf("decode installment: %v", err)
	}

	// --- Pay one month ---
	rec = post(fmt.Sprintf("/v1/cards/%s/installments/%s/payments", card.ID, inst.ID),
		`{"date":"2024-03-18"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("pay installment: %d %s", rec.Code, rec.Body.String())
	}
	var payment domain.Payment
	if err := json.Unmarshal(rec.Body.Bytes(), &payment); err != nil {
		t.Fatalf("decode payment: %v", err)
	}
	if payment.RelatedInstallmentID != inst.ID {
		t.Fatalf("payment not linked to plan: %q", payment.RelatedInstallmentID)
	}

	// --- Summary as of 2024-03-20 ---
	rec = get("/v1/cards/" + card.ID + "/summary?as_of=2024-03-20")
	if rec.Code != http.StatusOK {
		t.Fatalf("summary: %d %s", rec.Code, rec.Body.String())
	}
	var summary domain.CardSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}

	// Remaining principal 22000 minus the 2000 payment.
	if math.Abs(summary.CurrentBalance-20000) > 1e-9 {
		t.Errorf("currentBalance = %v, want 20000", summary.CurrentBalance)
	}
	if math.Abs(summary.AvailableCredit-30000) > 1e-9 {
		t.Errorf("availableCredit = %v, want 30000", summary.AvailableCredit)
	}
	if summary.PaymentDueDate.String() != "2024-04-05" {
		t.Errorf("paymentDueDate = %s, want 2024-04-05", summary.PaymentDueDate)
	}
	// The tagged payment covers the open window; the closed one projects.
	if math.Abs(summary.PaymentForPeriod-2000) > 1e-9 {
		t.Errorf("paymentForPeriod = %v, want 2000", summary.PaymentForPeriod)
	}
	if len(summary.Warnings) != 0 {
		t.Errorf("unexpected warnings: %+v", summary.Warnings)
	}

	// --- Portfolio summary ---
	rec = get("/v1/summary?as_of=2024-03-20")
	if rec.Code != http.StatusOK {
		t.Fatalf("portfolio: %d %s", rec.Code, rec.Body.String())
	}
	var portfolio domain.PortfolioSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &portfolio); err != nil {
		t.Fatalf("decode portfolio: %v", err)
	}
	if portfolio.Cards != 1 || math.Abs(portfolio.TotalDebt-20000) > 1e-9 {
		t.Errorf("portfolio = %+v, want 1 card with 20000 debt", portfolio)
	}

	// --- Backup mirror received snapshots ---
	// Pushes run detached from the mutation, so wait briefly.
	deadline := time.Now().Add(2 * time.Second)
	for {
		mu.Lock()
		n := len(snapshots)
		mu.Unlock()
		if n >= 3 || time.Now().After(deadline) {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(snapshots) < 3 {
		t.Fatalf("backup mirror saw %d snapshots, want one per mutation (3)", len(snapshots))
	}
	// Pushes are concurrent, so snapshots may arrive out of order; the full
	// state must be among them.
	var sawFull bool
	for _, snap := range snapshots {
		var mirrored []*domain.Card
		if err := json.Unmarshal(snap, &mirrored); err != nil {
			t.Fatalf("decode mirrored snapshot: %v", err)
		}
		if len(mirrored) == 1 && len(mirrored[0].Transactions) == 2 {
			sawFull = true
			break
		}
	}
	if !sawFull {
		t.Fatal("no mirrored snapshot contained the full card state")
	}
}

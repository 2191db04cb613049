package httpserver_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/davidbz/howl/internal/config"
	"github.com/davidbz/howl/internal/domain"
	"github.com/davidbz/howl/internal/httpserver"
	"github.com/davidbz/howl/internal/observability"
	"github.com/davidbz/howl/internal/provider/openai"
	"github.com/davidbz/howl/internal/store/sqlstore"
)

type testServer struct {
	handler http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db, err := sqlstore.Open(&config.DatabaseConfig{
		Type:         "sqlite",
		DSN:          filepath.Join(t.TempDir(), "ledger.db") + "?_pragma=busy_timeout(5000)",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
		LogLevel:     "silent",
		AutoMigrate:  true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	store := sqlstore.NewStore(db)
	billing := domain.NewBillingService(
		store,
		domain.NewTieredStrategy(domain.DefaultRateTable(), domain.DefaultTierMultipliers()),
		domain.NewSettlementEngine(),
		domain.NewRevenueShareCalculator(nil, domain.DefaultRewardRates()),
		nil,
		0,
		nil,
		nil,
	)

	handler := httpserver.NewHandler(billing, domain.NewListingService(store, nil), openai.NewUsageMapper(nil))
	server := httpserver.NewServer(&config.ServerConfig{Port: 0}, handler, observability.NewMetrics(), nil)

	return &testServer{handler: server.Routes()}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, httptest.NewRequest(method, path, reader))
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.NewDecoder(w.Body).Decode(&v))
	return v
}

func usageBody(userID, model string, prompt, completion int64) map[string]interface{} {
	return map[string]interface{}{
		"user_id": userID,
		"model":   model,
		"usage": map[string]interface{}{
			"prompt_tokens":     prompt,
			"completion_tokens": completion,
			"total_tokens":      prompt + completion,
		},
	}
}

func TestHandleQuote(t *testing.T) {
	server := newTestServer(t)

	t.Run("model tier is resolved from the model name", func(t *testing.T) {
		w := server.do(t, http.MethodPost, "/v1/quotes", usageBody("user-1", "gpt-4o", 100, 50))
		require.Equal(t, http.StatusOK, w.Code)

		quote := decode[domain.Quote](t, w)
		require.Equal(t, int64(300), quote.Amount)
		require.Equal(t, domain.TierPro, quote.Breakdown.Tier)
	})

	t.Run("explicit tier overrides the model", func(t *testing.T) {
		body := usageBody("user-1", "gpt-4o", 100, 50)
		body["tier"] = "lite"

		w := server.do(t, http.MethodPost, "/v1/quotes", body)
		require.Equal(t, http.StatusOK, w.Code)

		quote := decode[domain.Quote](t, w)
		require.Zero(t, quote.Amount)
		require.True(t, quote.Breakdown.Free)
	})

	t.Run("malformed body", func(t *testing.T) {
		w := httptest.NewRecorder()
		server.handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/quotes", bytes.NewBufferString("{")))
		require.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandleRecordUsage(t *testing.T) {
	server := newTestServer(t)

	t.Run("stores a pending record", func(t *testing.T) {
		body := usageBody("user-1", "gpt-4o-mini", 1000, 500)
		body["tool_costs"] = 10
		body["message_id"] = "msg-1"

		w := server.do(t, http.MethodPost, "/v1/usage", body)
		require.Equal(t, http.StatusCreated, w.Code)

		record := decode[domain.ConsumptionRecord](t, w)
		require.NotEmpty(t, record.ID)
		require.Equal(t, domain.RecordStatePending, record.State)
		require.Equal(t, int64(2010), record.Amount)
		require.Equal(t, "msg-1", record.MessageID)
	})

	t.Run("user id is required", func(t *testing.T) {
		w := server.do(t, http.MethodPost, "/v1/usage", usageBody("", "gpt-4o-mini", 10, 10))
		require.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandleSettle(t *testing.T) {
	server := newTestServer(t)

	w := server.do(t, http.MethodPost, "/v1/wallets/user-1/credits", map[string]int64{"amount": 100})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, int64(100), decode[domain.Wallet](t, w).VirtualBalance)

	record := func(amountTokens int64) string {
		w := server.do(t, http.MethodPost, "/v1/usage", usageBody("user-1", "gpt-4o-mini", amountTokens, 0))
		require.Equal(t, http.StatusCreated, w.Code)
		return decode[domain.ConsumptionRecord](t, w).ID
	}

	t.Run("success deducts the balance", func(t *testing.T) {
		id := record(60)
		w := server.do(t, http.MethodPost, "/v1/settlements", map[string]interface{}{
			"user_id": "user-1", "auth_provider": "github", "record_ids": []string{id}, "total_amount": 60,
		})
		require.Equal(t, http.StatusOK, w.Code)

		result := decode[domain.SettlementResult](t, w)
		require.Equal(t, domain.OutcomeSuccess, result.Outcome)
		require.Equal(t, int64(60), result.Charged)

		w = server.do(t, http.MethodGet, "/v1/wallets/user-1", nil)
		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, int64(40), decode[domain.Wallet](t, w).VirtualBalance)

		w = server.do(t, http.MethodGet, "/v1/wallets/user-1/summaries/github", nil)
		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, int64(60), decode[domain.UserConsumeSummary](t, w).TotalAmount)
	})

	t.Run("insufficient balance is payment required", func(t *testing.T) {
		id := record(50)
		w := server.do(t, http.MethodPost, "/v1/settlements", map[string]interface{}{
			"user_id": "user-1", "record_ids": []string{id}, "total_amount": 50,
		})
		require.Equal(t, http.StatusPaymentRequired, w.Code)

		var body struct {
			Required  int64 `json:"required"`
			Available int64 `json:"available"`
		}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		require.Equal(t, int64(50), body.Required)
		require.Equal(t, int64(40), body.Available)
	})

	t.Run("missing user is bad request", func(t *testing.T) {
		w := server.do(t, http.MethodPost, "/v1/settlements", map[string]interface{}{"total_amount": 1})
		require.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandleSettle_Reward(t *testing.T) {
	server := newTestServer(t)

	w := server.do(t, http.MethodPut, "/v1/listings/agent-1", map[string]interface{}{
		"owner_id": "dev-1", "published": true, "fork_mode": "editable",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = server.do(t, http.MethodPost, "/v1/wallets/user-1/credits", map[string]int64{"amount": 5000})
	require.Equal(t, http.StatusOK, w.Code)

	w = server.do(t, http.MethodPost, "/v1/usage", usageBody("user-1", "gpt-4o-mini", 1000, 0))
	require.Equal(t, http.StatusCreated, w.Code)
	id := decode[domain.ConsumptionRecord](t, w).ID

	w = server.do(t, http.MethodPost, "/v1/settlements", map[string]interface{}{
		"user_id":      "user-1",
		"record_ids":   []string{id},
		"total_amount": 1000,
		"reward": map[string]interface{}{
			"developer_user_id": "dev-1",
			"marketplace_id":    "agent-1",
		},
	})
	require.Equal(t, http.StatusOK, w.Code)

	result := decode[domain.SettlementResult](t, w)
	require.NotNil(t, result.Earning)
	require.Equal(t, int64(300), result.Earning.Amount)

	w = server.do(t, http.MethodGet, "/v1/developers/dev-1/wallet", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, int64(300), decode[domain.DeveloperWallet](t, w).AvailableBalance)
}

func TestHandleListings(t *testing.T) {
	server := newTestServer(t)

	w := server.do(t, http.MethodPut, "/v1/listings/agent-1", map[string]interface{}{
		"owner_id": "dev-1", "published": true, "fork_mode": "locked",
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, decode[domain.MarketplaceListing](t, w).Published)

	w = server.do(t, http.MethodPut, "/v1/listings/agent-1", map[string]interface{}{
		"owner_id": "dev-1", "published": false, "fork_mode": "locked",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = server.do(t, http.MethodGet, "/v1/listings/agent-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	listing := decode[domain.MarketplaceListing](t, w)
	require.False(t, listing.Published)
	require.Equal(t, domain.ForkModeLocked, listing.ForkMode)

	w = server.do(t, http.MethodPut, "/v1/listings/agent-2", map[string]interface{}{"fork_mode": "remix"})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleGrantCredits(t *testing.T) {
	server := newTestServer(t)

	w := server.do(t, http.MethodPost, "/v1/wallets/user-1/credits", map[string]int64{"amount": 0})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = server.do(t, http.MethodPost, "/v1/wallets/user-1/credits", map[string]int64{"amount": 25})
	require.Equal(t, http.StatusOK, w.Code)

	wallet := decode[domain.Wallet](t, w)
	require.Equal(t, int64(25), wallet.GrantedBalance)
	require.Equal(t, int64(25), wallet.TotalCredited)
}

func TestReads_NotFound(t *testing.T) {
	server := newTestServer(t)

	for _, path := range []string{
		"/v1/wallets/nobody",
		"/v1/wallets/nobody/summaries/github",
		"/v1/developers/nobody/wallet",
		"/v1/listings/nobody",
	} {
		t.Run(path, func(t *testing.T) {
			w := server.do(t, http.MethodGet, path, nil)
			require.Equal(t, http.StatusNotFound, w.Code)
		})
	}
}

func TestHealthAndMetrics(t *testing.T) {
	server := newTestServer(t)

	w := server.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "healthy", decode[map[string]string](t, w)["status"])

	w = server.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = server.do(t, http.MethodGet, "/v1/settlements", nil)
	require.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

//go:build integration

package router_test

// End-to-end tests against real Postgres + Redis via testcontainers.
// Run with: go test -tags integration ./internal/router/... -v

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"agartpos/internal/config"
	"agartpos/internal/infra"
	"agartpos/internal/model"
	"agartpos/internal/router"
	"agartpos/internal/worker"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ── Helpers ──────────────────────────────────────────────────────────────────

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func do(t *testing.T, srv *httptest.Server, method, path string, body *bytes.Buffer, token string) *http.Response {
	t.Helper()
	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequest(method, srv.URL+path, body)
	} else {
		req, err = http.NewRequest(method, srv.URL+path, nil)
	}
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

// ── Setup ────────────────────────────────────────────────────────────────────

type testEnv struct {
	server  *httptest.Server
	db      *gorm.DB
	token   string
	storeID string
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("agartpos_test"),
		tcPostgres.WithUsername("agartpos"),
		tcPostgres.WithPassword("agartpos"),
		tcPostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	rdC, err := tcRedis.RunContainer(ctx,
		testcontainers.WithImage("redis:7-alpine"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	cfg := &config.Config{
		Port:               "8080",
		Env:                "test",
		DatabaseURL:        pgURL,
		RedisURL:           rdURL,
		JWTSecret:          "e2e-secret",
		JWTExpirationHours: 8,
		JWTRefreshHours:    24,
		WorkerPoolSize:     1,
		CacheTTLSeconds:    30,
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	require.NoError(t, err)
	rdb, err := infra.NewRedis(cfg.RedisURL)
	require.NoError(t, err)

	storeID := uuid.New()
	hash, err := bcrypt.GenerateFromPassword([]byte("e2e-password"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, db.Create(&model.Staff{
		StoreID:      storeID,
		Username:     "admin.e2e",
		Name:         "Admin E2E",
		PasswordHash: string(hash),
		Role:         model.RoleAdmin,
		Active:       true,
	}).Error)

	r := router.New(cfg, db, rdb, worker.NewDispatcher(rdb))
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	loginResp := do(t, srv, "POST", "/v1/auth/login",
		jsonBody(t, map[string]string{"username": "admin.e2e", "password": "e2e-password"}), "")
	require.Equal(t, http.StatusOK, loginResp.StatusCode)
	var loginBody struct {
		AccessToken string `json:"access_token"`
	}
	decodeJSON(t, loginResp, &loginBody)
	require.NotEmpty(t, loginBody.AccessToken)

	return &testEnv{server: srv, db: db, token: loginBody.AccessToken, storeID: storeID.String()}
}

func (env *testEnv) createProduct(t *testing.T, name string, price float64, stock int) string {
	t.Helper()
	resp := do(t, env.server, "POST", "/v1/products", jsonBody(t, map[string]any{
		"store_id":   env.storeID,
		"name":       name,
		"unit_price": price,
		"stock":      stock,
	}), env.token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var prod struct {
		ID string `json:"id"`
	}
	decodeJSON(t, resp, &prod)
	return prod.ID
}

func (env *testEnv) openShift(t *testing.T, openingCash float64) string {
	t.Helper()
	resp := do(t, env.server, "POST", "/v1/shifts", jsonBody(t, map[string]any{
		"store_id":     env.storeID,
		"opening_cash": openingCash,
	}), env.token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var shift struct {
		ID string `json:"id"`
	}
	decodeJSON(t, resp, &shift)
	return shift.ID
}

// ── Tests ────────────────────────────────────────────────────────────────────

func TestE2E_FullSaleCycle(t *testing.T) {
	env := setupTestEnv(t)

	productID := env.createProduct(t, "Soda 500ml", 2.50, 20)
	shiftID := env.openShift(t, 100)

	saleResp := do(t, env.server, "POST", "/v1/sales", jsonBody(t, map[string]any{
		"shift_id":       shiftID,
		"store_id":       env.storeID,
		"payment_method": "cash",
		"items": []map[string]any{
			{"product_id": productID, "quantity": 3},
		},
	}), env.token)
	require.Equal(t, http.StatusCreated, saleResp.StatusCode)
	var sale struct {
		ID       string `json:"id"`
		TicketNo int    `json:"ticket_no"`
		Total    string `json:"total"`
		Status   string `json:"status"`
	}
	decodeJSON(t, saleResp, &sale)
	assert.Equal(t, "completed", sale.Status)
	assert.Positive(t, sale.TicketNo)

	// Stock is down and the movement is on the log.
	prodResp := do(t, env.server, "GET", "/v1/products/"+productID, nil, env.token)
	require.Equal(t, http.StatusOK, prodResp.StatusCode)
	var prod struct {
		Stock int `json:"stock"`
	}
	decodeJSON(t, prodResp, &prod)
	assert.Equal(t, 17, prod.Stock)

	movResp := do(t, env.server, "GET", "/v1/inventory/movements?product_id="+productID+"&kind=sale", nil, env.token)
	require.Equal(t, http.StatusOK, movResp.StatusCode)
	var movements struct {
		Data []struct {
			Quantity     int `json:"quantity"`
			CurrentStock int `json:"current_stock"`
		} `json:"data"`
	}
	decodeJSON(t, movResp, &movements)
	require.Len(t, movements.Data, 1)
	assert.Equal(t, -3, movements.Data[0].Quantity)
	assert.Equal(t, 17, movements.Data[0].CurrentStock)

	// Close the shift: expected cash = 100 + 7.50.
	closeResp := do(t, env.server, "POST", "/v1/shifts/close", jsonBody(t, map[string]any{
		"shift_id":     shiftID,
		"closing_cash": 107.50,
	}), env.token)
	require.Equal(t, http.StatusOK, closeResp.StatusCode)
	var closed struct {
		Status   string `json:"status"`
		Variance struct {
			ExpectedCash string `json:"expected_cash"`
			Amount       string `json:"amount"`
			Level        string `json:"level"`
		} `json:"variance"`
	}
	decodeJSON(t, closeResp, &closed)
	assert.Equal(t, "closed", closed.Status)
	assert.Equal(t, "107.5", closed.Variance.ExpectedCash)
	assert.Equal(t, "normal", closed.Variance.Level)
}

func TestE2E_CreditSaleAndStatement(t *testing.T) {
	env := setupTestEnv(t)

	productID := env.createProduct(t, "Rice 5kg", 10, 50)
	shiftID := env.openShift(t, 0)

	custResp := do(t, env.server, "POST", "/v1/customers", jsonBody(t, map[string]any{
		"store_id":     env.storeID,
		"name":         "Daw Mya",
		"credit_limit": 100,
	}), env.token)
	require.Equal(t, http.StatusCreated, custResp.StatusCode)
	var customer struct {
		ID string `json:"id"`
	}
	decodeJSON(t, custResp, &customer)

	saleResp := do(t, env.server, "POST", "/v1/sales", jsonBody(t, map[string]any{
		"shift_id":       shiftID,
		"store_id":       env.storeID,
		"payment_method": "credit",
		"customer_id":    customer.ID,
		"items": []map[string]any{
			{"product_id": productID, "quantity": 4},
		},
	}), env.token)
	require.Equal(t, http.StatusCreated, saleResp.StatusCode)

	// A second credit sale that would blow the limit is rejected atomically.
	overResp := do(t, env.server, "POST", "/v1/sales", jsonBody(t, map[string]any{
		"shift_id":       shiftID,
		"store_id":       env.storeID,
		"payment_method": "credit",
		"customer_id":    customer.ID,
		"items": []map[string]any{
			{"product_id": productID, "quantity": 7},
		},
	}), env.token)
	require.Equal(t, http.StatusConflict, overResp.StatusCode)
	overResp.Body.Close()

	stmtResp := do(t, env.server, "GET", "/v1/customers/"+customer.ID+"/statement", nil, env.token)
	require.Equal(t, http.StatusOK, stmtResp.StatusCode)
	var stmt struct {
		Customer struct {
			Balance string `json:"balance"`
		} `json:"customer"`
		Entries []struct {
			Kind   string `json:"kind"`
			Amount string `json:"amount"`
		} `json:"entries"`
	}
	decodeJSON(t, stmtResp, &stmt)
	assert.Equal(t, "40", stmt.Customer.Balance)
	require.Len(t, stmt.Entries, 1)
	assert.Equal(t, "charge", stmt.Entries[0].Kind)

	// Repay, then a repayment against zero balance records nothing.
	repayResp := do(t, env.server, "POST", "/v1/customers/"+customer.ID+"/repayments",
		jsonBody(t, map[string]any{"amount": 40}), env.token)
	require.Equal(t, http.StatusOK, repayResp.StatusCode)
	decodeJSON(t, repayResp, &stmt)
	assert.Equal(t, "0", stmt.Customer.Balance)

	againResp := do(t, env.server, "POST", "/v1/customers/"+customer.ID+"/repayments",
		jsonBody(t, map[string]any{"amount": 50}), env.token)
	require.Equal(t, http.StatusOK, againResp.StatusCode)
	decodeJSON(t, againResp, &stmt)
	assert.Equal(t, "0", stmt.Customer.Balance)
	assert.Len(t, stmt.Entries, 2)
}

func TestE2E_InsufficientStockConflict(t *testing.T) {
	env := setupTestEnv(t)

	productID := env.createProduct(t, "Last Few", 5, 2)
	shiftID := env.openShift(t, 0)

	resp := do(t, env.server, "POST", "/v1/sales", jsonBody(t, map[string]any{
		"shift_id":       shiftID,
		"store_id":       env.storeID,
		"payment_method": "cash",
		"items": []map[string]any{
			{"product_id": productID, "quantity": 5},
		},
	}), env.token)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	var body struct {
		Detail string `json:"detail"`
	}
	decodeJSON(t, resp, &body)
	assert.Contains(t, body.Detail, "insufficient stock")
	assert.Contains(t, body.Detail, "Last Few")
}

//go:build e2e

package e2e_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/ptrack/fiscalia-backend/internal/adapter/postgres"
	"github.com/ptrack/fiscalia-backend/internal/adapter/postgres/audit"
	"github.com/ptrack/fiscalia-backend/internal/adapter/postgres/casefile"
	"github.com/ptrack/fiscalia-backend/internal/adapter/postgres/catalog"
	"github.com/ptrack/fiscalia-backend/internal/adapter/postgres/office"
	"github.com/ptrack/fiscalia-backend/internal/adapter/postgres/prosecutor"
	"github.com/ptrack/fiscalia-backend/internal/adapter/postgres/testhelper"
	userrepo "github.com/ptrack/fiscalia-backend/internal/adapter/postgres/user"
	authpkg "github.com/ptrack/fiscalia-backend/internal/auth"
	"github.com/ptrack/fiscalia-backend/internal/config"
	"github.com/ptrack/fiscalia-backend/internal/domain"
	authsvc "github.com/ptrack/fiscalia-backend/internal/service/auth"
	"github.com/ptrack/fiscalia-backend/internal/service/history"
	"github.com/ptrack/fiscalia-backend/internal/service/registry"
	"github.com/ptrack/fiscalia-backend/internal/service/report"
	"github.com/ptrack/fiscalia-backend/internal/service/summary"
	"github.com/ptrack/fiscalia-backend/internal/service/workflow"
	"github.com/ptrack/fiscalia-backend/internal/transport/middleware"
	"github.com/ptrack/fiscalia-backend/internal/transport/rest"
)

// testLogWriter adapts testing.T to io.Writer for slog.
type testLogWriter struct{ t *testing.T }

func (w testLogWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	w.t.Log(string(p))
	return len(p), nil
}

// testServer wraps the full-stack HTTP server for E2E tests. Each server
// seeds its own workflow states so the reserved-state configuration matches
// the shared database.
type testServer struct {
	URL    string
	Client *http.Client
	Pool   *pgxpool.Pool

	PendingState   domain.CaseState
	InProcessState domain.CaseState
	FinalizedState domain.CaseState

	jwt *authpkg.JWTManager
}

// setupTestServer bootstraps the full application stack backed by a real
// PostgreSQL container (shared via testhelper).
func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	pool := testhelper.SetupTestDB(t)

	logger := slog.New(slog.NewTextHandler(testLogWriter{t}, nil))
	txm := postgres.NewTxManager(pool)

	// State names carry a unique suffix because the container is shared
	// between servers and the name column is unique.
	run := fmt.Sprintf("%d", time.Now().UnixNano())
	pending := testhelper.SeedState(t, pool, "PENDIENTE-"+run)
	inProcess := testhelper.SeedState(t, pool, "EN_PROCESO-"+run)
	finalized := testhelper.SeedState(t, pool, "FINALIZADO-"+run)

	wfCfg := config.WorkflowConfig{
		PendingStateID:   pending.ID,
		FinalizedStateID: finalized.ID,
	}
	reportCfg := config.ReportConfig{
		MaxRows:       1000,
		SheetName:     "Casos",
		DateFormat:    "2006-01-02 15:04",
		HeaderColorBG: "007ACC",
	}

	caseRepo := casefile.New(pool)
	prosecutorRepo := prosecutor.New(pool)
	officeRepo := office.New(pool)
	catalogRepo := catalog.New(pool)
	auditRepo := audit.New(pool)
	userRepo := userrepo.New(pool)

	jwtManager := authpkg.NewJWTManager("e2e-test-secret", "fiscalia-test", time.Hour)

	authService := authsvc.NewService(logger, userRepo, jwtManager)
	registryService := registry.NewService(logger, caseRepo, prosecutorRepo, officeRepo, catalogRepo, auditRepo, userRepo, wfCfg)
	workflowService := workflow.NewService(logger, caseRepo, prosecutorRepo, auditRepo, txm, wfCfg)
	historyService := history.NewService(logger, auditRepo, caseRepo, prosecutorRepo, officeRepo, catalogRepo, userRepo)
	summaryService := summary.NewService(logger, caseRepo, wfCfg)
	reportService := report.NewService(logger, caseRepo, userRepo, prosecutorRepo, reportCfg)

	rateLimiter := middleware.NewRateLimiter(time.Minute)
	t.Cleanup(rateLimiter.Stop)

	router := rest.NewRouter(rest.RouterDeps{
		Auth:     rest.NewAuthHandler(authService, logger),
		Cases:    rest.NewCaseHandler(registryService, summaryService, logger),
		Workflow: rest.NewWorkflowHandler(workflowService, historyService, logger),
		Report:   rest.NewReportHandler(reportService, logger),
		Catalogs: rest.NewCatalogHandler(registryService, logger),
		Health:   rest.NewHealthHandler(pool, "e2e"),

		TokenValidator: authService,
		RateLimiter:    rateLimiter,
		CORS:           config.CORSConfig{AllowedOrigins: "*"},
		Logger:         logger,
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &testServer{
		URL:            srv.URL,
		Client:         srv.Client(),
		Pool:           pool,
		PendingState:   pending,
		InProcessState: inProcess,
		FinalizedState: finalized,
		jwt:            jwtManager,
	}
}

// tokenFor issues an access token for a seeded user, bypassing the login
// endpoint.
func (ts *testServer) tokenFor(t *testing.T, u domain.User) string {
	t.Helper()
	token, err := ts.jwt.GenerateAccessToken(u.ID, u.Role)
	require.NoError(t, err)
	return token
}

// seedLoginUser creates a user with a real bcrypt hash so the login flow
// can be exercised end to end.
func seedLoginUser(t *testing.T, pool *pgxpool.Pool, username, password, role string) domain.User {
	t.Helper()

	hash, err := authsvc.HashPassword(password)
	require.NoError(t, err)

	var u domain.User
	err = pool.QueryRow(t.Context(),
		`INSERT INTO users (username, password_hash, role) VALUES ($1, $2, $3)
		 RETURNING id, username, role`,
		username, hash, role).Scan(&u.ID, &u.Username, &u.Role)
	require.NoError(t, err)
	return u
}

// doJSON performs an HTTP request with an optional JSON body and bearer
// token, decoding the JSON response body into a generic map or slice.
func (ts *testServer) doJSON(t *testing.T, method, path string, body any, token string) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, ts.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := ts.Client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func decodeMap(t *testing.T, data []byte) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m), "body: %s", data)
	return m
}

func decodeSlice(t *testing.T, data []byte) []map[string]any {
	t.Helper()
	var s []map[string]any
	require.NoError(t, json.Unmarshal(data, &s), "body: %s", data)
	return s
}

func uniqueCorrelative(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}

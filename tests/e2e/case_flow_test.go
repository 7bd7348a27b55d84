//go:build e2e

package e2e_test

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ptrack/fiscalia-backend/internal/adapter/postgres/testhelper"
	"github.com/ptrack/fiscalia-backend/internal/domain"
)

// TestE2E_CaseLifecycle drives a case through its full workflow over HTTP:
// register, assign a prosecutor, move the state, then read back the
// reconstructed history and the raw audit log.
func TestE2E_CaseLifecycle(t *testing.T) {
	ts := setupTestServer(t)

	admin := seedLoginUser(t, ts.Pool, "admin-"+uniqueCorrelative("u"), "pw", domain.RoleAdministrator)
	token := ts.tokenFor(t, admin)

	office := testhelper.SeedOffice(t, ts.Pool)
	prosecutor := testhelper.SeedProsecutor(t, ts.Pool, &office.ID)

	// Register.
	correlative := uniqueCorrelative("EXP")
	status, body := ts.doJSON(t, http.MethodPost, "/api/casos",
		map[string]any{"correlative": correlative, "name": "robo agravado"}, token)
	require.Equal(t, http.StatusCreated, status, "body: %s", body)

	created := decodeMap(t, body)
	caseID := int64(created["id"].(float64))
	assert.Equal(t, float64(ts.PendingState.ID), created["state_id"], "new cases start pending")

	// Assign.
	status, body = ts.doJSON(t, http.MethodPost, "/api/casos/asignar-fiscal",
		map[string]any{"caso_id": caseID, "fiscal_id": prosecutor.ID, "comentario": "turno"}, token)
	require.Equal(t, http.StatusOK, status, "body: %s", body)

	assigned := decodeMap(t, body)
	require.NotNil(t, assigned["prosecutor_id"])
	assert.Equal(t, float64(prosecutor.ID), assigned["prosecutor_id"])

	// Change state.
	status, body = ts.doJSON(t, http.MethodPost, "/api/casos/modificar-estado",
		map[string]any{"caso_id": caseID, "estado_id": ts.InProcessState.ID}, token)
	require.Equal(t, http.StatusOK, status, "body: %s", body)

	// Timeline: two narrative entries in chronological order.
	status, body = ts.doJSON(t, http.MethodGet, fmt.Sprintf("/api/casos/%d/historial", caseID), nil, token)
	require.Equal(t, http.StatusOK, status, "body: %s", body)

	timeline := decodeSlice(t, body)
	require.Len(t, timeline, 2)
	assert.Contains(t, timeline[0]["description"], "no prosecutor")
	assert.Contains(t, timeline[0]["description"], prosecutor.Person.ShortName())
	assert.Equal(t, admin.Username, timeline[0]["actor_name"])
	assert.Contains(t, timeline[1]["description"], ts.PendingState.Name)
	assert.Contains(t, timeline[1]["description"], ts.InProcessState.Name)

	// Raw audit log, newest first.
	status, body = ts.doJSON(t, http.MethodGet, fmt.Sprintf("/api/logs/cases/%d", caseID), nil, token)
	require.Equal(t, http.StatusOK, status, "body: %s", body)

	logs := decodeSlice(t, body)
	require.Len(t, logs, 2)
	entry, ok := logs[0]["entry"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, string(domain.AuditActionChangeState), entry["Action"])
	assert.Equal(t, admin.Username, logs[0]["username"])
}

// TestE2E_AssignmentConflict verifies the cross-office rule end to end:
// the second assignment is rejected with 409 and the rejection itself is
// recorded in the audit log.
func TestE2E_AssignmentConflict(t *testing.T) {
	ts := setupTestServer(t)

	admin := seedLoginUser(t, ts.Pool, "admin-"+uniqueCorrelative("u"), "pw", domain.RoleAdministrator)
	token := ts.tokenFor(t, admin)

	officeA := testhelper.SeedOffice(t, ts.Pool)
	officeB := testhelper.SeedOffice(t, ts.Pool)
	first := testhelper.SeedProsecutor(t, ts.Pool, &officeA.ID)
	second := testhelper.SeedProsecutor(t, ts.Pool, &officeB.ID)

	kase := testhelper.SeedCase(t, ts.Pool, ts.PendingState.ID, nil)

	status, body := ts.doJSON(t, http.MethodPost, "/api/casos/asignar-fiscal",
		map[string]any{"caso_id": kase.ID, "fiscal_id": first.ID}, token)
	require.Equal(t, http.StatusOK, status, "body: %s", body)

	status, _ = ts.doJSON(t, http.MethodPost, "/api/casos/asignar-fiscal",
		map[string]any{"caso_id": kase.ID, "fiscal_id": second.ID}, token)
	assert.Equal(t, http.StatusConflict, status)

	// The case keeps its original prosecutor.
	status, body = ts.doJSON(t, http.MethodGet, fmt.Sprintf("/api/casos/%d", kase.ID), nil, token)
	require.Equal(t, http.StatusOK, status, "body: %s", body)
	detail := decodeMap(t, body)
	assert.Equal(t, float64(first.ID), detail["prosecutor_id"])

	// The rejected attempt is durable in the log.
	status, body = ts.doJSON(t, http.MethodGet, fmt.Sprintf("/api/logs/cases/%d", kase.ID), nil, token)
	require.Equal(t, http.StatusOK, status)
	logs := decodeSlice(t, body)
	require.Len(t, logs, 2)
	entry, ok := logs[0]["entry"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, string(domain.AuditActionInvalidAssignment), entry["Action"])
}

// TestE2E_AssignmentRequiresPendingState verifies the precondition over HTTP.
func TestE2E_AssignmentRequiresPendingState(t *testing.T) {
	ts := setupTestServer(t)

	admin := seedLoginUser(t, ts.Pool, "admin-"+uniqueCorrelative("u"), "pw", domain.RoleAdministrator)
	token := ts.tokenFor(t, admin)

	prosecutor := testhelper.SeedProsecutor(t, ts.Pool, nil)
	kase := testhelper.SeedCase(t, ts.Pool, ts.InProcessState.ID, nil)

	status, body := ts.doJSON(t, http.MethodPost, "/api/casos/asignar-fiscal",
		map[string]any{"caso_id": kase.ID, "fiscal_id": prosecutor.ID}, token)
	assert.Equal(t, http.StatusBadRequest, status, "body: %s", body)

	// No log entry for the refused attempt.
	status, body = ts.doJSON(t, http.MethodGet, fmt.Sprintf("/api/logs/cases/%d", kase.ID), nil, token)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, decodeSlice(t, body))
}

// TestE2E_SummaryAndReport checks the dashboard counts move with the data
// and the spreadsheet export round-trips through excelize.
func TestE2E_SummaryAndReport(t *testing.T) {
	ts := setupTestServer(t)

	admin := seedLoginUser(t, ts.Pool, "admin-"+uniqueCorrelative("u"), "pw", domain.RoleAdministrator)
	token := ts.tokenFor(t, admin)

	status, body := ts.doJSON(t, http.MethodGet, "/api/casos/resumen", nil, token)
	require.Equal(t, http.StatusOK, status, "body: %s", body)
	before := decodeMap(t, body)

	prosecutor := testhelper.SeedProsecutor(t, ts.Pool, nil)
	testhelper.SeedCase(t, ts.Pool, ts.PendingState.ID, nil)
	testhelper.SeedCase(t, ts.Pool, ts.FinalizedState.ID, &prosecutor.ID)

	status, body = ts.doJSON(t, http.MethodGet, "/api/casos/resumen", nil, token)
	require.Equal(t, http.StatusOK, status, "body: %s", body)
	after := decodeMap(t, body)

	assert.Equal(t, before["unassigned"].(float64)+1, after["unassigned"])
	assert.Equal(t, before["assigned"].(float64)+1, after["assigned"])
	assert.Equal(t, before["finalized"].(float64)+1, after["finalized"])

	// Export, narrowed to the seeded prosecutor.
	req, err := http.NewRequest(http.MethodGet,
		fmt.Sprintf("%s/api/casos/reporte?prosecutor_id=%d", ts.URL, prosecutor.ID), nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := ts.Client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "spreadsheetml")

	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)

	wb, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer wb.Close()

	rows, err := wb.GetRows("Casos")
	require.NoError(t, err)
	require.Len(t, rows, 2, "header plus the one case of this prosecutor")
	assert.Equal(t, "Correlativo", rows[0][0])
	assert.True(t, strings.HasPrefix(rows[1][0], "EXP-"))
}

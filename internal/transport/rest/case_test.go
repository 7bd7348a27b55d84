package rest

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ptrack/fiscalia-backend/internal/domain"
	"github.com/ptrack/fiscalia-backend/internal/service/registry"
)

type registryServiceMock struct {
	GetCaseFunc    func(ctx context.Context, id int64) (*domain.CaseDetail, error)
	ListCasesFunc  func(ctx context.Context, in registry.ListCasesInput) ([]domain.CaseDetail, error)
	CreateCaseFunc func(ctx context.Context, in registry.CreateCaseInput) (*domain.Case, error)
	UpdateCaseFunc func(ctx context.Context, id int64, params domain.CaseUpdateParams) (*domain.Case, error)
	DeleteCaseFunc func(ctx context.Context, id int64) error
	SearchLogsFunc func(ctx context.Context, tableName string, entityID int64) ([]registry.LogRecord, error)
}

func (m *registryServiceMock) GetCase(ctx context.Context, id int64) (*domain.CaseDetail, error) {
	return m.GetCaseFunc(ctx, id)
}

func (m *registryServiceMock) ListCases(ctx context.Context, in registry.ListCasesInput) ([]domain.CaseDetail, error) {
	return m.ListCasesFunc(ctx, in)
}

func (m *registryServiceMock) CreateCase(ctx context.Context, in registry.CreateCaseInput) (*domain.Case, error) {
	return m.CreateCaseFunc(ctx, in)
}

func (m *registryServiceMock) UpdateCase(ctx context.Context, id int64, params domain.CaseUpdateParams) (*domain.Case, error) {
	return m.UpdateCaseFunc(ctx, id, params)
}

func (m *registryServiceMock) DeleteCase(ctx context.Context, id int64) error {
	return m.DeleteCaseFunc(ctx, id)
}

func (m *registryServiceMock) SearchLogs(ctx context.Context, tableName string, entityID int64) ([]registry.LogRecord, error) {
	return m.SearchLogsFunc(ctx, tableName, entityID)
}

type summaryServiceMock struct {
	SummarizeFunc func(ctx context.Context) (domain.CaseSummary, error)
}

func (m *summaryServiceMock) Summarize(ctx context.Context) (domain.CaseSummary, error) {
	return m.SummarizeFunc(ctx)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCaseHandler_Get_OK(t *testing.T) {
	t.Parallel()

	officeID := int64(2)
	reg := &registryServiceMock{
		GetCaseFunc: func(_ context.Context, id int64) (*domain.CaseDetail, error) {
			if id != 5 {
				t.Fatalf("unexpected id %d", id)
			}
			return &domain.CaseDetail{
				Case: domain.Case{
					ID:           5,
					Correlative:  "EXP-001",
					Name:         "robo agravado",
					StateID:      1,
					RegisteredAt: time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC),
				},
				Prosecutor: &domain.Prosecutor{
					ID:       7,
					OfficeID: &officeID,
					Person:   &domain.Person{FirstName: "Ana", FirstSurname: "Gómez"},
					Office:   &domain.Office{ID: 2, Name: "Fiscalía Central"},
				},
				State: &domain.CaseState{ID: 1, Name: "PENDIENTE"},
			}, nil
		},
	}
	h := NewCaseHandler(reg, nil, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/casos/5", nil)
	req.SetPathValue("id", "5")
	rec := httptest.NewRecorder()

	h.Get(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp caseDetailResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Correlative != "EXP-001" {
		t.Errorf("expected correlative EXP-001, got %q", resp.Correlative)
	}
	if resp.Prosecutor == nil || resp.Prosecutor.Name != "Ana Gómez" {
		t.Errorf("expected resolved prosecutor name, got %+v", resp.Prosecutor)
	}
	if resp.State == nil || resp.State.Name != "PENDIENTE" {
		t.Errorf("expected resolved state, got %+v", resp.State)
	}
}

func TestCaseHandler_Get_NotFound(t *testing.T) {
	t.Parallel()

	reg := &registryServiceMock{
		GetCaseFunc: func(_ context.Context, _ int64) (*domain.CaseDetail, error) {
			return nil, domain.ErrNotFound
		},
	}
	h := NewCaseHandler(reg, nil, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/casos/99", nil)
	req.SetPathValue("id", "99")
	rec := httptest.NewRecorder()

	h.Get(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}

func TestCaseHandler_Get_BadID(t *testing.T) {
	t.Parallel()

	h := NewCaseHandler(&registryServiceMock{}, nil, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/casos/abc", nil)
	req.SetPathValue("id", "abc")
	rec := httptest.NewRecorder()

	h.Get(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestCaseHandler_List_PassesFilters(t *testing.T) {
	t.Parallel()

	var got registry.ListCasesInput
	reg := &registryServiceMock{
		ListCasesFunc: func(_ context.Context, in registry.ListCasesInput) ([]domain.CaseDetail, error) {
			got = in
			return nil, nil
		},
	}
	h := NewCaseHandler(reg, nil, testLogger())

	req := httptest.NewRequest(http.MethodGet,
		"/api/casos?from=2024-01-01&to=2024-12-31&state_id=2&prosecutor_id=7", nil)
	rec := httptest.NewRecorder()

	h.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got.From == nil || got.From.Year() != 2024 || got.From.Month() != time.January {
		t.Errorf("from filter not passed: %+v", got.From)
	}
	if got.StateID == nil || *got.StateID != 2 {
		t.Errorf("state filter not passed: %+v", got.StateID)
	}
	if got.ProsecutorID == nil || *got.ProsecutorID != 7 {
		t.Errorf("prosecutor filter not passed: %+v", got.ProsecutorID)
	}
}

func TestCaseHandler_List_BadDate(t *testing.T) {
	t.Parallel()

	h := NewCaseHandler(&registryServiceMock{}, nil, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/casos?from=yesterday", nil)
	rec := httptest.NewRecorder()

	h.List(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestCaseHandler_Create_OK(t *testing.T) {
	t.Parallel()

	reg := &registryServiceMock{
		CreateCaseFunc: func(_ context.Context, in registry.CreateCaseInput) (*domain.Case, error) {
			if in.Correlative != "EXP-002" {
				t.Fatalf("unexpected correlative %q", in.Correlative)
			}
			return &domain.Case{ID: 11, Correlative: in.Correlative, Name: in.Name, StateID: 1}, nil
		},
	}
	h := NewCaseHandler(reg, nil, testLogger())

	body := strings.NewReader(`{"correlative":"EXP-002","name":"estafa"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/casos", body)
	rec := httptest.NewRecorder()

	h.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp caseResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ID != 11 || resp.StateID != 1 {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestCaseHandler_Create_ValidationDetails(t *testing.T) {
	t.Parallel()

	reg := &registryServiceMock{
		CreateCaseFunc: func(_ context.Context, _ registry.CreateCaseInput) (*domain.Case, error) {
			return nil, domain.NewValidationError("correlative", "required")
		},
	}
	h := NewCaseHandler(reg, nil, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/casos", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()

	h.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}

	var resp validationResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Fields) != 1 || resp.Fields[0].Field != "correlative" {
		t.Errorf("expected field detail for correlative, got %+v", resp.Fields)
	}
}

func TestCaseHandler_Create_DuplicateCorrelative(t *testing.T) {
	t.Parallel()

	reg := &registryServiceMock{
		CreateCaseFunc: func(_ context.Context, _ registry.CreateCaseInput) (*domain.Case, error) {
			return nil, domain.ErrAlreadyExists
		},
	}
	h := NewCaseHandler(reg, nil, testLogger())

	body := strings.NewReader(`{"correlative":"EXP-001","name":"x"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/casos", body)
	rec := httptest.NewRecorder()

	h.Create(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", rec.Code)
	}
}

func TestCaseHandler_Summary(t *testing.T) {
	t.Parallel()

	sum := &summaryServiceMock{
		SummarizeFunc: func(_ context.Context) (domain.CaseSummary, error) {
			return domain.CaseSummary{Unassigned: 3, Assigned: 5, Finalized: 2}, nil
		},
	}
	h := NewCaseHandler(&registryServiceMock{}, sum, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/casos/resumen", nil)
	rec := httptest.NewRecorder()

	h.Summary(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var resp domain.CaseSummary
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp != (domain.CaseSummary{Unassigned: 3, Assigned: 5, Finalized: 2}) {
		t.Errorf("unexpected summary %+v", resp)
	}
}

func TestCaseHandler_SearchLogs(t *testing.T) {
	t.Parallel()

	reg := &registryServiceMock{
		SearchLogsFunc: func(_ context.Context, table string, entityID int64) ([]registry.LogRecord, error) {
			if table != "cases" || entityID != 5 {
				t.Fatalf("unexpected args %q %d", table, entityID)
			}
			return []registry.LogRecord{
				{Entry: domain.AuditEntry{ID: 1, Action: domain.AuditActionAssignProsecutor}, Username: "secretaria1"},
			}, nil
		},
	}
	h := NewCaseHandler(reg, nil, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/logs/cases/5", nil)
	req.SetPathValue("tabla", "cases")
	req.SetPathValue("identificador", "5")
	rec := httptest.NewRecorder()

	h.SearchLogs(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var resp []registry.LogRecord
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp) != 1 || resp[0].Username != "secretaria1" {
		t.Errorf("unexpected records %+v", resp)
	}
}

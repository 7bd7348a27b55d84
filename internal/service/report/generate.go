package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/ptrack/fiscalia-backend/internal/adapter/postgres/casefile"
	"github.com/ptrack/fiscalia-backend/internal/domain"
	"github.com/ptrack/fiscalia-backend/pkg/ctxutil"
)

// Input narrows which cases appear in the spreadsheet.
type Input struct {
	From         *time.Time
	To           *time.Time
	StateID      *int64
	ProsecutorID *int64
}

var headers = []string{
	"Correlativo",
	"Nombre",
	"Observación",
	"Fiscal",
	"Fiscalía",
	"Estado",
	"Tipo",
	"Fecha de registro",
}

// Generate renders the filtered case listing as an .xlsx workbook and
// returns its bytes. Callers with the prosecutor role are restricted to
// their own cases regardless of the requested filter.
func (s *Service) Generate(ctx context.Context, in Input) ([]byte, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if in.From != nil && in.To != nil && in.To.Before(*in.From) {
		return nil, domain.NewValidationError("to", "must not precede from")
	}

	filter := casefile.Filter{
		From:         in.From,
		To:           in.To,
		StateID:      in.StateID,
		ProsecutorID: in.ProsecutorID,
		Limit:        s.cfg.MaxRows,
	}

	if ctxutil.RoleFromCtx(ctx) == domain.RoleProsecutor {
		prosecutorID, err := s.ownProsecutorID(ctx, userID)
		if err != nil {
			return nil, err
		}
		filter.ProsecutorID = &prosecutorID
	}

	cases, err := s.cases.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list cases: %w", err)
	}

	data, err := s.render(cases)
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "report generated", "rows", len(cases))
	return data, nil
}

// ownProsecutorID resolves the prosecutor record behind a logged-in user.
func (s *Service) ownProsecutorID(ctx context.Context, userID int64) (int64, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("resolve user: %w", err)
	}
	if u.PersonID == nil {
		return 0, fmt.Errorf("%w: user is not linked to a prosecutor", domain.ErrForbidden)
	}

	p, err := s.prosecutors.GetByPersonID(ctx, *u.PersonID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return 0, fmt.Errorf("%w: user is not linked to a prosecutor", domain.ErrForbidden)
		}
		return 0, fmt.Errorf("resolve prosecutor: %w", err)
	}

	return p.ID, nil
}

func (s *Service) render(cases []domain.CaseDetail) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := s.cfg.SheetName
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("name sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{s.cfg.HeaderColorBG}},
	})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}

	for col, h := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, fmt.Errorf("header cell: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
	}

	lastHeader, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := f.SetCellStyle(sheet, "A1", lastHeader, headerStyle); err != nil {
		return nil, fmt.Errorf("style header: %w", err)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(headers))
	if err := f.SetColWidth(sheet, "A", lastCol, 22); err != nil {
		return nil, fmt.Errorf("column width: %w", err)
	}

	for i, c := range cases {
		values := []any{
			c.Correlative,
			c.Name,
			c.Observation,
			prosecutorLabel(c.Prosecutor),
			officeLabel(c.Prosecutor),
			stateLabel(c.State),
			typeLabel(c.Type),
			c.RegisteredAt.Format(s.cfg.DateFormat),
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return nil, fmt.Errorf("data cell: %w", err)
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, fmt.Errorf("write row %d: %w", i+2, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}

	return buf.Bytes(), nil
}

func prosecutorLabel(p *domain.Prosecutor) string {
	if p == nil || p.Person == nil {
		return ""
	}
	return p.Person.FullName()
}

func officeLabel(p *domain.Prosecutor) string {
	if p == nil || p.Office == nil {
		return ""
	}
	return p.Office.Name
}

func stateLabel(s *domain.CaseState) string {
	if s == nil {
		return ""
	}
	return s.Name
}

func typeLabel(t *domain.CaseType) string {
	if t == nil {
		return ""
	}
	return t.Name
}

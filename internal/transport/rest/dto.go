package rest

import (
	"time"

	"github.com/ptrack/fiscalia-backend/internal/domain"
)

type caseResponse struct {
	ID           int64     `json:"id"`
	Correlative  string    `json:"correlative"`
	Name         string    `json:"name"`
	Observation  string    `json:"observation,omitempty"`
	ProsecutorID *int64    `json:"prosecutor_id"`
	StateID      int64     `json:"state_id"`
	TypeID       *int64    `json:"type_id"`
	RegisteredAt time.Time `json:"registered_at"`
}

type caseDetailResponse struct {
	caseResponse
	Prosecutor *prosecutorResponse `json:"prosecutor"`
	State      *catalogResponse    `json:"state"`
	Type       *catalogResponse    `json:"type"`
}

type prosecutorResponse struct {
	ID     int64           `json:"id"`
	Name   string          `json:"name"`
	Office *officeResponse `json:"office"`
}

type officeResponse struct {
	ID      int64   `json:"id"`
	Name    string  `json:"name"`
	Address *string `json:"address,omitempty"`
	Phone   *string `json:"phone,omitempty"`
}

type catalogResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func toCaseResponse(c *domain.Case) caseResponse {
	return caseResponse{
		ID:           c.ID,
		Correlative:  c.Correlative,
		Name:         c.Name,
		Observation:  c.Observation,
		ProsecutorID: c.ProsecutorID,
		StateID:      c.StateID,
		TypeID:       c.TypeID,
		RegisteredAt: c.RegisteredAt,
	}
}

func toCaseDetailResponse(d *domain.CaseDetail) caseDetailResponse {
	resp := caseDetailResponse{caseResponse: toCaseResponse(&d.Case)}
	if d.Prosecutor != nil {
		p := toProsecutorResponse(d.Prosecutor)
		resp.Prosecutor = &p
	}
	if d.State != nil {
		resp.State = &catalogResponse{ID: d.State.ID, Name: d.State.Name}
	}
	if d.Type != nil {
		resp.Type = &catalogResponse{ID: d.Type.ID, Name: d.Type.Name}
	}
	return resp
}

func toProsecutorResponse(p *domain.Prosecutor) prosecutorResponse {
	resp := prosecutorResponse{ID: p.ID}
	if p.Person != nil {
		resp.Name = p.Person.FullName()
	}
	if p.Office != nil {
		o := toOfficeResponse(p.Office)
		resp.Office = &o
	}
	return resp
}

func toOfficeResponse(o *domain.Office) officeResponse {
	return officeResponse{ID: o.ID, Name: o.Name, Address: o.Address, Phone: o.Phone}
}

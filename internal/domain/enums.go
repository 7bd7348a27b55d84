package domain

// AuditAction is the kind of state-changing action recorded in the audit log.
type AuditAction string

const (
	AuditActionAssignProsecutor  AuditAction = "ASSIGN_PROSECUTOR"
	AuditActionChangeState       AuditAction = "CHANGE_STATE"
	AuditActionInvalidAssignment AuditAction = "INVALID_ASSIGNMENT"
	AuditActionOther             AuditAction = "OTHER"
)

func (a AuditAction) String() string { return string(a) }

func (a AuditAction) IsValid() bool {
	switch a {
	case AuditActionAssignProsecutor, AuditActionChangeState,
		AuditActionInvalidAssignment, AuditActionOther:
		return true
	}
	return false
}

// TableCases is the audit log target name for the cases table. Workflow
// operations only ever mutate cases, but the log is keyed by table name so
// other entities can be audited through the OTHER action without schema
// changes.
const TableCases = "cases"

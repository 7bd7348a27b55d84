package config

import (
	"fmt"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwt_secret must be at least 32 characters (got %d)", len(c.Auth.JWTSecret))
	}

	if err := c.Workflow.validate(); err != nil {
		return fmt.Errorf("workflow: %w", err)
	}

	if c.Report.MaxRows <= 0 {
		return fmt.Errorf("report.max_rows must be > 0 (got %d)", c.Report.MaxRows)
	}

	return nil
}

func (w *WorkflowConfig) validate() error {
	if w.PendingStateID <= 0 {
		return fmt.Errorf("pending_state_id must be > 0 (got %d)", w.PendingStateID)
	}
	if w.FinalizedStateID <= 0 {
		return fmt.Errorf("finalized_state_id must be > 0 (got %d)", w.FinalizedStateID)
	}
	if w.PendingStateID == w.FinalizedStateID {
		return fmt.Errorf("pending_state_id and finalized_state_id must differ (both %d)", w.PendingStateID)
	}
	return nil
}

package domain

import "time"

// Project is a construction contract that owns templates and transactions.
type Project struct {
	ProjectID         string     `json:"projectID"`
	Name              string     `json:"name"`
	ContractStartDate *time.Time `json:"contractStartDate,omitempty"` // Nullable; no generation before this date
	ContractEndDate   *time.Time `json:"contractEndDate,omitempty"`
	RenewalDueAt      *time.Time `json:"renewalDueAt,omitempty"` // Set by the renewal check
	IsActive          bool       `json:"isActive"`
	AuditFields
}

// Category classifies transactions within a project.
type Category struct {
	CategoryID string `json:"categoryID"`
	ProjectID  string `json:"projectID"`
	Name       string `json:"name"`
	IsActive   bool   `json:"isActive"`
}

package models

import "time"

// Project maps a row of projects.
type Project struct {
	ProjectID         string     `db:"project_id"`
	Name              string     `db:"name"`
	ContractStartDate *time.Time `db:"contract_start_date"`
	ContractEndDate   *time.Time `db:"contract_end_date"`
	RenewalDueAt      *time.Time `db:"renewal_due_at"`
	IsActive          bool       `db:"is_active"`
	AuditFields
}

// Category maps a row of categories.
type Category struct {
	CategoryID string `db:"category_id"`
	ProjectID  string `db:"project_id"`
	Name       string `db:"name"`
	IsActive   bool   `db:"is_active"`
}

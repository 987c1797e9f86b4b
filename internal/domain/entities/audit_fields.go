package entities

import "time"

// AuditFields are the bookkeeping columns shared by users, articles and
// comments.
type AuditFields struct {
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	CreatedBy string    `json:"createdBy" db:"created_by"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
	UpdatedBy string    `json:"updatedBy" db:"updated_by"`
}

// Now returns the timestamp format stored in the database: UTC, truncated
// to microseconds so values survive a Postgres round trip unchanged.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// Stamp fills all four audit fields for a newly created row.
func (a *AuditFields) Stamp(by string, at time.Time) {
	a.CreatedAt = at
	a.CreatedBy = by
	a.UpdatedAt = at
	a.UpdatedBy = by
}

// Touch records a modification.
func (a *AuditFields) Touch(by string, at time.Time) {
	a.UpdatedAt = at
	a.UpdatedBy = by
}

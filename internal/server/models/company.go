package models

import "time"

// Company is a record owned by exactly one user. UserID never changes after
// creation.
type Company struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Address   *string   `json:"address"`
	Industry  *string   `json:"industry"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CompanyPatch describes a partial update. A nil field is left unchanged; the
// Set flags allow Address and Industry to be cleared to NULL explicitly.
type CompanyPatch struct {
	Name        *string
	Address     *string
	SetAddress  bool
	Industry    *string
	SetIndustry bool
}

package model

import "time"

// Contact represents a row in the `contacts` table.  Every contact belongs
// to exactly one user; all repository queries filter by UserID so one user
// can never see another's contacts.
type Contact struct {
	ID        uint64    `json:"id"`         // contacts.id
	UserID    uint64    `json:"-"`          // contacts.user_id (owner)
	Name      string    `json:"name"`       // contacts.name
	Surname   string    `json:"surname"`    // contacts.surname
	Email     string    `json:"email"`      // contacts.email
	Phone     string    `json:"phone"`      // contacts.phone
	Birthday  time.Time `json:"birthday"`   // contacts.birthday (date only)
	Notes     string    `json:"notes"`      // contacts.notes
	CreatedAt time.Time `json:"created_at"` // contacts.created_at
	UpdatedAt time.Time `json:"updated_at"` // contacts.updated_at
}

package entity

import (
	"fmt"
	"strings"

	"rowstore/internal/repository"
)

// Person represents one record of the people table. The ID pointer is nil
// exactly while the row is unsaved; once persisted the backend-assigned key
// is set and stays fixed for the row's lifetime.
type Person struct {
	ID        *int64 `json:"id,omitempty"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// NewPerson creates an unsaved person.
func NewPerson(email, firstName, lastName string) Person {
	return Person{
		Email:     email,
		FirstName: firstName,
		LastName:  lastName,
	}
}

// Saved reports whether the person has been persisted.
func (p Person) Saved() bool {
	return p.ID != nil
}

// Validate checks the required fields are present and plausible.
func (p Person) Validate() error {
	email := strings.TrimSpace(p.Email)
	if email == "" {
		return fmt.Errorf("person: email is required")
	}
	if !strings.Contains(email, "@") {
		return fmt.Errorf("person: invalid email %q", p.Email)
	}
	if strings.TrimSpace(p.FirstName) == "" {
		return fmt.Errorf("person: first name is required")
	}
	if strings.TrimSpace(p.LastName) == "" {
		return fmt.Errorf("person: last name is required")
	}
	return nil
}

// PersonMapping maps Person onto the people table. Keys are int64 and
// assigned by the backend.
func PersonMapping() repository.Mapping[int64, Person] {
	return repository.Mapping[int64, Person]{
		Table:    "people",
		IDColumn: "id",
		Columns:  []string{"email", "first_name", "last_name"},
		ColumnDefs: []string{
			"email TEXT NOT NULL",
			"first_name TEXT NOT NULL",
			"last_name TEXT NOT NULL",
		},
		ID: func(p Person) (int64, bool) {
			if p.ID == nil {
				return 0, false
			}
			return *p.ID, true
		},
		SetID: func(p *Person, id int64) {
			p.ID = &id
		},
		Args: func(p Person) []any {
			return []any{p.Email, p.FirstName, p.LastName}
		},
		ScanDest: func(p *Person) []any {
			return []any{&p.Email, &p.FirstName, &p.LastName}
		},
	}
}

// Package store defines the employee service's data access interface.
// Concrete drivers live under drivers/.
package store

import (
	"context"
	"errors"

	"github.com/renzoproject/workforce/internal/employee/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Page carries pagination parameters. Page numbers are 0-based, matching
// the HTTP contract.
type Page struct {
	Number int
	Size   int
}

// Offset returns the row offset for the page.
func (p Page) Offset() int { return p.Number * p.Size }

// Sort carries an ordering request. Field names are domain field names
// (firstName, lastName, jobTitle, hiredDate, createdAt); drivers validate
// them against their own allow-list.
type Sort struct {
	Field      string
	Descending bool
}

// Store is the root data access interface for the employee service.
type Store interface {
	Employees() Employees

	ApplyMigrations() error
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Employees is the employee profile repository.
type Employees interface {
	// Create inserts a new employee (id is provided by the service via ULID).
	Create(ctx context.Context, e domain.Employee) error

	// GetByID returns an employee by id.
	GetByID(ctx context.Context, id string) (domain.Employee, error)

	// Update replaces every mutable field and bumps updated_at.
	Update(ctx context.Context, e domain.Employee) error

	// Delete removes the employee. Missing rows return ErrNotFound.
	Delete(ctx context.Context, id string) error

	// List returns a page of employees plus the unpaged total, ordered by
	// the given sort (zero Sort means insertion order by id).
	List(ctx context.Context, page Page, sort Sort) ([]domain.Employee, int64, error)

	// SearchByName returns employees whose first or last name contains the
	// fragment, case-insensitive.
	SearchByName(ctx context.Context, name string, page Page) ([]domain.Employee, int64, error)

	// ListByJobTitle returns employees with exactly this job title.
	ListByJobTitle(ctx context.Context, jobTitle string, page Page) ([]domain.Employee, int64, error)
}

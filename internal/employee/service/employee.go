// Package service implements the employee service's business logic on top
// of the store interface.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/renzoproject/workforce/internal/employee/domain"
	"github.com/renzoproject/workforce/internal/employee/store"
	"github.com/renzoproject/workforce/pkg/idx"
)

var (
	// ErrNotFound is returned when the addressed employee does not exist.
	ErrNotFound = errors.New("employee not found")

	// ErrValidation wraps input validation failures; handlers translate it
	// to 400.
	ErrValidation = errors.New("validation failed")
)

// EmployeeService owns employee profile lifecycle and queries.
type EmployeeService struct {
	store store.Store

	// now is a clock hook for tests.
	now func() time.Time
}

func NewEmployeeService(st store.Store) *EmployeeService {
	return &EmployeeService{
		store: st,
		now:   time.Now,
	}
}

// PageRequest carries pagination from the HTTP layer, already defaulted.
type PageRequest struct {
	Page int
	Size int
}

func (p PageRequest) normalize() store.Page {
	if p.Size <= 0 {
		p.Size = 10
	}
	if p.Page < 0 {
		p.Page = 0
	}
	return store.Page{Number: p.Page, Size: p.Size}
}

// PagedEmployees is a page of list-view summaries plus paging metadata,
// shaped like the API's page envelope.
type PagedEmployees struct {
	Content       []domain.Summary `json:"content"`
	Page          int              `json:"page"`
	Size          int              `json:"size"`
	TotalElements int64            `json:"totalElements"`
	TotalPages    int              `json:"totalPages"`
}

// Create validates and persists a new employee profile. The actor is the
// authenticated user id propagated by the gateway; it lands in the audit
// fields.
func (s *EmployeeService) Create(ctx context.Context, e domain.Employee, actor string) (domain.Employee, error) {
	if err := validate(e); err != nil {
		return domain.Employee{}, err
	}

	now := s.now().UTC()
	e.ID = idx.New().String()
	e.CreatedAt = now
	e.UpdatedAt = now
	e.CreatedBy = actor
	e.ModifiedBy = actor

	if err := s.store.Employees().Create(ctx, e); err != nil {
		return domain.Employee{}, fmt.Errorf("create employee: %w", err)
	}
	return e, nil
}

// Get returns a single employee profile.
func (s *EmployeeService) Get(ctx context.Context, id string) (domain.Employee, error) {
	e, err := s.store.Employees().GetByID(ctx, id)
	if err != nil {
		return domain.Employee{}, mapStoreErr(err)
	}
	return e, nil
}

// List returns a page of employees in insertion order.
func (s *EmployeeService) List(ctx context.Context, page PageRequest) (PagedEmployees, error) {
	return s.page(ctx, page, func(p store.Page) ([]domain.Employee, int64, error) {
		return s.store.Employees().List(ctx, p, store.Sort{})
	})
}

// ListSorted returns a page of employees ordered by the given field.
func (s *EmployeeService) ListSorted(ctx context.Context, page PageRequest, sortBy string, descending bool) (PagedEmployees, error) {
	if sortBy == "" {
		sortBy = "firstName"
	}
	return s.page(ctx, page, func(p store.Page) ([]domain.Employee, int64, error) {
		return s.store.Employees().List(ctx, p, store.Sort{Field: sortBy, Descending: descending})
	})
}

// SearchByName returns employees whose first or last name contains the
// fragment.
func (s *EmployeeService) SearchByName(ctx context.Context, name string, page PageRequest) (PagedEmployees, error) {
	if name == "" {
		return PagedEmployees{}, fmt.Errorf("%w: name is required", ErrValidation)
	}
	return s.page(ctx, page, func(p store.Page) ([]domain.Employee, int64, error) {
		return s.store.Employees().SearchByName(ctx, name, p)
	})
}

// ListByJobTitle returns employees whose job title matches exactly.
func (s *EmployeeService) ListByJobTitle(ctx context.Context, jobTitle string, page PageRequest) (PagedEmployees, error) {
	if jobTitle == "" {
		return PagedEmployees{}, fmt.Errorf("%w: jobTitle is required", ErrValidation)
	}
	return s.page(ctx, page, func(p store.Page) ([]domain.Employee, int64, error) {
		return s.store.Employees().ListByJobTitle(ctx, jobTitle, p)
	})
}

// Update replaces every mutable field of an existing profile. Audit
// creation fields survive the update.
func (s *EmployeeService) Update(ctx context.Context, id string, e domain.Employee, actor string) (domain.Employee, error) {
	if err := validate(e); err != nil {
		return domain.Employee{}, err
	}

	existing, err := s.store.Employees().GetByID(ctx, id)
	if err != nil {
		return domain.Employee{}, mapStoreErr(err)
	}

	e.ID = existing.ID
	e.CreatedAt = existing.CreatedAt
	e.CreatedBy = existing.CreatedBy
	e.UpdatedAt = s.now().UTC()
	e.ModifiedBy = actor

	if err := s.store.Employees().Update(ctx, e); err != nil {
		return domain.Employee{}, mapStoreErr(err)
	}
	return e, nil
}

// UpdateAddress replaces just the address block.
func (s *EmployeeService) UpdateAddress(ctx context.Context, id string, addr domain.Address, actor string) (domain.Address, error) {
	e, err := s.patch(ctx, id, actor, func(e *domain.Employee) { e.Address = addr })
	if err != nil {
		return domain.Address{}, err
	}
	return e.Address, nil
}

// UpdateContactInformation replaces just the contact block.
func (s *EmployeeService) UpdateContactInformation(ctx context.Context, id string, ci domain.ContactInformation, actor string) (domain.ContactInformation, error) {
	e, err := s.patch(ctx, id, actor, func(e *domain.Employee) { e.ContactInformation = ci })
	if err != nil {
		return domain.ContactInformation{}, err
	}
	return e.ContactInformation, nil
}

// UpdateEmergencyContact replaces just the emergency contact block.
func (s *EmployeeService) UpdateEmergencyContact(ctx context.Context, id string, ec domain.EmergencyContact, actor string) (domain.EmergencyContact, error) {
	e, err := s.patch(ctx, id, actor, func(e *domain.Employee) { e.EmergencyContact = ec })
	if err != nil {
		return domain.EmergencyContact{}, err
	}
	return e.EmergencyContact, nil
}

// Delete removes an employee profile.
func (s *EmployeeService) Delete(ctx context.Context, id string) error {
	if err := s.store.Employees().Delete(ctx, id); err != nil {
		return mapStoreErr(err)
	}
	return nil
}

func (s *EmployeeService) patch(ctx context.Context, id, actor string, apply func(*domain.Employee)) (domain.Employee, error) {
	e, err := s.store.Employees().GetByID(ctx, id)
	if err != nil {
		return domain.Employee{}, mapStoreErr(err)
	}

	apply(&e)
	e.UpdatedAt = s.now().UTC()
	e.ModifiedBy = actor

	if err := s.store.Employees().Update(ctx, e); err != nil {
		return domain.Employee{}, mapStoreErr(err)
	}
	return e, nil
}

func (s *EmployeeService) page(
	ctx context.Context,
	page PageRequest,
	query func(store.Page) ([]domain.Employee, int64, error),
) (PagedEmployees, error) {
	p := page.normalize()
	employees, total, err := query(p)
	if err != nil {
		return PagedEmployees{}, fmt.Errorf("list employees: %w", err)
	}

	summaries := make([]domain.Summary, 0, len(employees))
	for _, e := range employees {
		summaries = append(summaries, e.Summary())
	}

	totalPages := int((total + int64(p.Size) - 1) / int64(p.Size))
	return PagedEmployees{
		Content:       summaries,
		Page:          p.Number,
		Size:          p.Size,
		TotalElements: total,
		TotalPages:    totalPages,
	}, nil
}

func validate(e domain.Employee) error {
	if e.FirstName == "" {
		return fmt.Errorf("%w: firstName is required", ErrValidation)
	}
	if e.LastName == "" {
		return fmt.Errorf("%w: lastName is required", ErrValidation)
	}
	return nil
}

func mapStoreErr(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

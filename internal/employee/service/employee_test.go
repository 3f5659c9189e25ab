package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/renzoproject/workforce/internal/employee/domain"
	"github.com/renzoproject/workforce/internal/employee/store/drivers/sqlite"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *EmployeeService {
	t.Helper()

	st, err := sqlite.NewStore("file:" + filepath.Join(t.TempDir(), "employees.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	return NewEmployeeService(st)
}

func sampleEmployee(first, last, title string) domain.Employee {
	hired, _ := domain.ParseDate("2023-01-15")
	return domain.Employee{
		FirstName: first,
		LastName:  last,
		JobTitle:  title,
		HiredDate: hired,
		Address: domain.Address{
			Street: "1 Main St", City: "Springfield", State: "VIC", ZipCode: "3000",
		},
		ContactInformation: domain.ContactInformation{
			PhoneNumber: "0400000000",
			Email:       first + "@example.com",
		},
		EmergencyContact: domain.EmergencyContact{
			FirstName: "Em", LastName: last, PhoneNumber: "0400000001",
		},
	}
}

func TestCreateAndGet(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, sampleEmployee("Jane", "Doe", "Engineer"), "user-1")
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.Equal(t, "user-1", created.CreatedBy)
	require.Equal(t, "user-1", created.ModifiedBy)
	require.False(t, created.CreatedAt.IsZero())

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "Jane", got.FirstName)
	require.Equal(t, "2023-01-15", got.HiredDate.String())
	require.Equal(t, "Springfield", got.Address.City)
	require.Equal(t, "jane@example.com", got.ContactInformation.Email)
}

func TestCreateValidation(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)

	_, err := svc.Create(context.Background(), domain.Employee{LastName: "Doe"}, "")
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.Create(context.Background(), domain.Employee{FirstName: "Jane"}, "")
	require.ErrorIs(t, err, ErrValidation)
}

func TestGetUnknown(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)

	_, err := svc.Get(context.Background(), "nope")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUpdatePreservesCreationAudit(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, sampleEmployee("Jane", "Doe", "Engineer"), "creator")
	require.NoError(t, err)

	svc.now = func() time.Time { return created.CreatedAt.Add(time.Hour) }

	next := sampleEmployee("Jane", "Smith", "Senior Engineer")
	updated, err := svc.Update(ctx, created.ID, next, "editor")
	require.NoError(t, err)
	require.Equal(t, "Smith", updated.LastName)
	require.Equal(t, "creator", updated.CreatedBy)
	require.Equal(t, "editor", updated.ModifiedBy)
	require.True(t, updated.UpdatedAt.After(created.UpdatedAt))

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "Senior Engineer", got.JobTitle)
	require.Equal(t, "creator", got.CreatedBy)
}

func TestUpdateUnknown(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)

	_, err := svc.Update(context.Background(), "nope", sampleEmployee("J", "D", ""), "")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestPartialUpdates(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, sampleEmployee("Jane", "Doe", "Engineer"), "creator")
	require.NoError(t, err)

	t.Run("address", func(t *testing.T) {
		addr, err := svc.UpdateAddress(ctx, created.ID, domain.Address{Street: "9 New St", City: "Melbourne"}, "editor")
		require.NoError(t, err)
		require.Equal(t, "9 New St", addr.Street)

		got, err := svc.Get(ctx, created.ID)
		require.NoError(t, err)
		require.Equal(t, "Melbourne", got.Address.City)
		// Untouched blocks survive the patch.
		require.Equal(t, "jane@example.com", got.ContactInformation.Email)
		require.Equal(t, "editor", got.ModifiedBy)
	})

	t.Run("contact", func(t *testing.T) {
		ci, err := svc.UpdateContactInformation(ctx, created.ID, domain.ContactInformation{Email: "new@example.com"}, "editor")
		require.NoError(t, err)
		require.Equal(t, "new@example.com", ci.Email)
	})

	t.Run("emergency contact", func(t *testing.T) {
		ec, err := svc.UpdateEmergencyContact(ctx, created.ID, domain.EmergencyContact{FirstName: "Max", PhoneNumber: "0400"}, "editor")
		require.NoError(t, err)
		require.Equal(t, "Max", ec.FirstName)
	})

	t.Run("unknown employee", func(t *testing.T) {
		_, err := svc.UpdateAddress(ctx, "nope", domain.Address{}, "editor")
		require.ErrorIs(t, err, ErrNotFound)
	})
}

func TestDelete(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, sampleEmployee("Jane", "Doe", "Engineer"), "")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))
	_, err = svc.Get(ctx, created.ID)
	require.ErrorIs(t, err, ErrNotFound)

	require.ErrorIs(t, svc.Delete(ctx, created.ID), ErrNotFound)
}

func TestListPagination(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)
	ctx := context.Background()

	for _, name := range []string{"Alice", "Bob", "Carol", "Dave", "Eve"} {
		_, err := svc.Create(ctx, sampleEmployee(name, "Smith", "Engineer"), "")
		require.NoError(t, err)
	}

	page, err := svc.List(ctx, PageRequest{Page: 0, Size: 2})
	require.NoError(t, err)
	require.Len(t, page.Content, 2)
	require.Equal(t, int64(5), page.TotalElements)
	require.Equal(t, 3, page.TotalPages)

	last, err := svc.List(ctx, PageRequest{Page: 2, Size: 2})
	require.NoError(t, err)
	require.Len(t, last.Content, 1)
}

func TestListSorted(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)
	ctx := context.Background()

	for _, name := range []string{"Carol", "Alice", "Bob"} {
		_, err := svc.Create(ctx, sampleEmployee(name, "Smith", "Engineer"), "")
		require.NoError(t, err)
	}

	asc, err := svc.ListSorted(ctx, PageRequest{Size: 10}, "firstName", false)
	require.NoError(t, err)
	require.Equal(t, "Alice", asc.Content[0].FirstName)
	require.Equal(t, "Carol", asc.Content[2].FirstName)

	desc, err := svc.ListSorted(ctx, PageRequest{Size: 10}, "firstName", true)
	require.NoError(t, err)
	require.Equal(t, "Carol", desc.Content[0].FirstName)

	_, err = svc.ListSorted(ctx, PageRequest{Size: 10}, "not_a_field", false)
	require.Error(t, err)
}

func TestSearchByName(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, sampleEmployee("Jane", "Doe", "Engineer"), "")
	require.NoError(t, err)
	_, err = svc.Create(ctx, sampleEmployee("John", "Janeway", "Captain"), "")
	require.NoError(t, err)
	_, err = svc.Create(ctx, sampleEmployee("Bob", "Smith", "Engineer"), "")
	require.NoError(t, err)

	page, err := svc.SearchByName(ctx, "Jane", PageRequest{Size: 10})
	require.NoError(t, err)
	require.Equal(t, int64(2), page.TotalElements)

	_, err = svc.SearchByName(ctx, "", PageRequest{Size: 10})
	require.ErrorIs(t, err, ErrValidation)
}

func TestListByJobTitle(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, sampleEmployee("Jane", "Doe", "Engineer"), "")
	require.NoError(t, err)
	_, err = svc.Create(ctx, sampleEmployee("John", "Smith", "Manager"), "")
	require.NoError(t, err)

	page, err := svc.ListByJobTitle(ctx, "Engineer", PageRequest{Size: 10})
	require.NoError(t, err)
	require.Equal(t, int64(1), page.TotalElements)
	require.Equal(t, "Jane", page.Content[0].FirstName)

	_, err = svc.ListByJobTitle(ctx, "", PageRequest{Size: 10})
	require.ErrorIs(t, err, ErrValidation)
}

package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/renzoproject/workforce/internal/employee/domain"
	"github.com/renzoproject/workforce/internal/employee/store"
)

type employeesRepo struct {
	db *sql.DB
}

const employeeColumns = `
	id, first_name, middle_name, last_name,
	job_title, image_url, hired_date, birth_date,
	street, city, state, zip_code,
	phone_number, email,
	emergency_contact_first_name, emergency_contact_last_name, emergency_contact_phone_number,
	created_at, updated_at, created_by, modified_by`

// sortColumns maps domain sort fields onto columns. Anything outside this
// map is rejected before it can reach the query string.
var sortColumns = map[string]string{
	"firstName": "first_name",
	"lastName":  "last_name",
	"jobTitle":  "job_title",
	"hiredDate": "hired_date",
	"createdAt": "created_at",
}

func (r *employeesRepo) Create(ctx context.Context, e domain.Employee) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO employee_profile (`+employeeColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.FirstName, e.MiddleName, e.LastName,
		e.JobTitle, e.ImageURL, e.HiredDate.String(), e.BirthDate.String(),
		e.Address.Street, e.Address.City, e.Address.State, e.Address.ZipCode,
		e.ContactInformation.PhoneNumber, e.ContactInformation.Email,
		e.EmergencyContact.FirstName, e.EmergencyContact.LastName, e.EmergencyContact.PhoneNumber,
		e.CreatedAt, e.UpdatedAt, e.CreatedBy, e.ModifiedBy,
	)
	return mapConstraint(err)
}

func (r *employeesRepo) GetByID(ctx context.Context, id string) (domain.Employee, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+employeeColumns+`
		FROM employee_profile
		WHERE id = ?`, id)

	e, err := scanEmployee(row)
	if err != nil {
		return domain.Employee{}, mapNotFound(err)
	}
	return e, nil
}

func (r *employeesRepo) Update(ctx context.Context, e domain.Employee) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE employee_profile SET
			first_name = ?, middle_name = ?, last_name = ?,
			job_title = ?, image_url = ?, hired_date = ?, birth_date = ?,
			street = ?, city = ?, state = ?, zip_code = ?,
			phone_number = ?, email = ?,
			emergency_contact_first_name = ?, emergency_contact_last_name = ?, emergency_contact_phone_number = ?,
			updated_at = ?, modified_by = ?
		WHERE id = ?`,
		e.FirstName, e.MiddleName, e.LastName,
		e.JobTitle, e.ImageURL, e.HiredDate.String(), e.BirthDate.String(),
		e.Address.Street, e.Address.City, e.Address.State, e.Address.ZipCode,
		e.ContactInformation.PhoneNumber, e.ContactInformation.Email,
		e.EmergencyContact.FirstName, e.EmergencyContact.LastName, e.EmergencyContact.PhoneNumber,
		e.UpdatedAt, e.ModifiedBy,
		e.ID,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *employeesRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM employee_profile WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *employeesRepo) List(ctx context.Context, page store.Page, sort store.Sort) ([]domain.Employee, int64, error) {
	orderBy := "id"
	if sort.Field != "" {
		col, ok := sortColumns[sort.Field]
		if !ok {
			return nil, 0, fmt.Errorf("unsupported sort field %q", sort.Field)
		}
		orderBy = col
		if sort.Descending {
			orderBy += " DESC"
		}
	}

	return r.pageQuery(ctx, page, `
		SELECT `+employeeColumns+`
		FROM employee_profile
		ORDER BY `+orderBy+`
		LIMIT ? OFFSET ?`,
		`SELECT COUNT(*) FROM employee_profile`,
		nil)
}

func (r *employeesRepo) SearchByName(ctx context.Context, name string, page store.Page) ([]domain.Employee, int64, error) {
	pattern := "%" + name + "%"
	return r.pageQuery(ctx, page, `
		SELECT `+employeeColumns+`
		FROM employee_profile
		WHERE first_name LIKE ? OR last_name LIKE ?
		ORDER BY id
		LIMIT ? OFFSET ?`,
		`SELECT COUNT(*) FROM employee_profile WHERE first_name LIKE ? OR last_name LIKE ?`,
		[]any{pattern, pattern})
}

func (r *employeesRepo) ListByJobTitle(ctx context.Context, jobTitle string, page store.Page) ([]domain.Employee, int64, error) {
	return r.pageQuery(ctx, page, `
		SELECT `+employeeColumns+`
		FROM employee_profile
		WHERE job_title = ?
		ORDER BY id
		LIMIT ? OFFSET ?`,
		`SELECT COUNT(*) FROM employee_profile WHERE job_title = ?`,
		[]any{jobTitle})
}

func (r *employeesRepo) pageQuery(
	ctx context.Context,
	page store.Page,
	query, countQuery string,
	filters []any,
) ([]domain.Employee, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, countQuery, filters...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args := append(append([]any{}, filters...), page.Size, page.Offset())
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	employees := make([]domain.Employee, 0, page.Size)
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, 0, err
		}
		employees = append(employees, e)
	}
	return employees, total, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEmployee(row scanner) (domain.Employee, error) {
	var (
		e                    domain.Employee
		hiredDate, birthDate string
		createdAt, updatedAt time.Time
	)
	err := row.Scan(
		&e.ID, &e.FirstName, &e.MiddleName, &e.LastName,
		&e.JobTitle, &e.ImageURL, &hiredDate, &birthDate,
		&e.Address.Street, &e.Address.City, &e.Address.State, &e.Address.ZipCode,
		&e.ContactInformation.PhoneNumber, &e.ContactInformation.Email,
		&e.EmergencyContact.FirstName, &e.EmergencyContact.LastName, &e.EmergencyContact.PhoneNumber,
		&createdAt, &updatedAt, &e.CreatedBy, &e.ModifiedBy,
	)
	if err != nil {
		return domain.Employee{}, err
	}

	if e.HiredDate, err = domain.ParseDate(hiredDate); err != nil {
		return domain.Employee{}, err
	}
	if e.BirthDate, err = domain.ParseDate(birthDate); err != nil {
		return domain.Employee{}, err
	}
	e.CreatedAt = createdAt
	e.UpdatedAt = updatedAt
	return e, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

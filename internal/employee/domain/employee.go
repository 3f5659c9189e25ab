// Package domain holds the employee service's core types. These are
// storage-agnostic; the store drivers map them to rows and the http layer
// maps them to payloads.
package domain

import "time"

// Date is a calendar date without a time component, serialized as
// "2006-01-02". Hire and birth dates carry no timezone semantics.
type Date struct {
	time.Time
}

const dateLayout = "2006-01-02"

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" || s == `""` {
		*d = Date{}
		return nil
	}
	t, err := time.Parse(`"`+dateLayout+`"`, s)
	if err != nil {
		return err
	}
	*d = Date{t}
	return nil
}

// String returns the wire format, or "" for the zero date.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

// ParseDate parses the wire format. An empty string is the zero date.
func ParseDate(s string) (Date, error) {
	if s == "" {
		return Date{}, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, err
	}
	return Date{t}, nil
}

// Address is an employee's postal address.
type Address struct {
	Street  string `json:"street,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	ZipCode string `json:"zipCode,omitempty"`
}

// ContactInformation is an employee's reachable contact details.
type ContactInformation struct {
	PhoneNumber string `json:"phoneNumber,omitempty"`
	Email       string `json:"email,omitempty"`
}

// EmergencyContact is who to call when something happens to the employee.
type EmergencyContact struct {
	FirstName   string `json:"firstName,omitempty"`
	LastName    string `json:"lastName,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
}

// Employee is the full employee profile.
type Employee struct {
	ID string `json:"id"`

	FirstName  string `json:"firstName"`
	MiddleName string `json:"middleName,omitempty"`
	LastName   string `json:"lastName"`

	JobTitle string `json:"jobTitle,omitempty"`
	ImageURL string `json:"imageUrl,omitempty"`

	HiredDate Date `json:"hiredDate,omitempty"`
	BirthDate Date `json:"birthDate,omitempty"`

	Address            Address            `json:"address"`
	ContactInformation ContactInformation `json:"contactInformation"`
	EmergencyContact   EmergencyContact   `json:"emergencyContact"`

	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
	CreatedBy  string    `json:"createdBy,omitempty"`
	ModifiedBy string    `json:"modifiedBy,omitempty"`
}

// Summary is the list-view projection of an employee.
type Summary struct {
	ID         string `json:"id"`
	FirstName  string `json:"firstName"`
	MiddleName string `json:"middleName,omitempty"`
	LastName   string `json:"lastName"`
	JobTitle   string `json:"jobTitle,omitempty"`
	ImageURL   string `json:"imageUrl,omitempty"`
}

// Summary projects the list-view fields of the employee.
func (e Employee) Summary() Summary {
	return Summary{
		ID:         e.ID,
		FirstName:  e.FirstName,
		MiddleName: e.MiddleName,
		LastName:   e.LastName,
		JobTitle:   e.JobTitle,
		ImageURL:   e.ImageURL,
	}
}

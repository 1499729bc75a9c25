package query

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/frahmantamala/employee-management/internal"
	employeeDatamodel "github.com/frahmantamala/employee-management/internal/core/datamodel/employee"
	"github.com/frahmantamala/employee-management/internal/employee"
)

type Field string

const (
	FieldID               Field = "id"
	FieldName             Field = "name"
	FieldDateOfJoining    Field = "dateOfJoining"
	FieldEmployeeCode     Field = "employeeCode"
	FieldMobileNumber     Field = "mobileNumber"
	FieldCreatedBy        Field = "createdBy"
	FieldEmail            Field = "email"
	FieldDepartment       Field = "department"
	FieldPosition         Field = "position"
	FieldSalary           Field = "salary"
	FieldAddress          Field = "address"
	FieldEmergencyContact Field = "emergencyContact"
	FieldBloodGroup       Field = "bloodGroup"
	FieldMaritalStatus    Field = "maritalStatus"
	FieldCreatedAt        Field = "createdAt"
	FieldUpdatedAt        Field = "updatedAt"
)

var fields = []Field{
	FieldID, FieldName, FieldDateOfJoining, FieldEmployeeCode, FieldMobileNumber,
	FieldCreatedBy, FieldEmail, FieldDepartment, FieldPosition, FieldSalary,
	FieldAddress, FieldEmergencyContact, FieldBloodGroup, FieldMaritalStatus,
	FieldCreatedAt, FieldUpdatedAt,
}

type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// DefaultLocale is used when a sorter is built without a locale.
const DefaultLocale = "en"

// ParseField accepts a field name case-insensitively.
func ParseField(s string) (Field, error) {
	for _, f := range fields {
		if strings.EqualFold(string(f), s) {
			return f, nil
		}
	}
	return "", internal.NewValidationError(fmt.Sprintf("cannot sort by %q", s), internal.ErrCodeInvalidSortField)
}

// ParseDirection maps "" to Ascending.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(s) {
	case "", "asc", "ascending":
		return Ascending, nil
	case "desc", "descending":
		return Descending, nil
	}
	return "", internal.NewValidationError(fmt.Sprintf("unknown sort direction %q", s), internal.ErrCodeInvalidSortField)
}

// Toggle picks the direction for a click on field: descending when field is
// already sorted ascending, ascending otherwise.
func Toggle(current Field, currentDir Direction, field Field) Direction {
	if current == field && currentDir == Ascending {
		return Descending
	}
	return Ascending
}

// Sorter orders records with a locale's collation.
type Sorter struct {
	tag language.Tag
}

func NewSorter(locale string) *Sorter {
	if locale == "" {
		locale = DefaultLocale
	}
	return &Sorter{tag: language.Make(locale)}
}

// SortBy returns a stably sorted copy; the input is not modified.
func (s *Sorter) SortBy(employees []employee.Employee, field Field, dir Direction) []employee.Employee {
	sorted := slices.Clone(employees)
	// Collators keep scratch buffers and are not safe to share.
	c := collate.New(s.tag)

	slices.SortStableFunc(sorted, func(a, b employee.Employee) int {
		if dir == Descending {
			a, b = b, a
		}
		return c.CompareString(Value(a, field), Value(b, field))
	})
	return sorted
}

// SortBy sorts with the default locale.
func SortBy(employees []employee.Employee, field Field, dir Direction) []employee.Employee {
	return NewSorter(DefaultLocale).SortBy(employees, field, dir)
}

// Value is the string a field is compared by. Absent optional values are "".
func Value(e employee.Employee, field Field) string {
	switch field {
	case FieldID:
		return e.ID
	case FieldName:
		return e.Name
	case FieldDateOfJoining:
		return e.DateOfJoining
	case FieldEmployeeCode:
		return e.EmployeeCode
	case FieldMobileNumber:
		return e.MobileNumber
	case FieldCreatedBy:
		return e.CreatedBy
	case FieldEmail:
		return e.Email
	case FieldDepartment:
		return e.Department
	case FieldPosition:
		return e.Position
	case FieldSalary:
		if e.Salary == nil {
			return ""
		}
		return strconv.FormatFloat(*e.Salary, 'f', -1, 64)
	case FieldAddress:
		return e.Address
	case FieldEmergencyContact:
		return e.EmergencyContact
	case FieldBloodGroup:
		return e.BloodGroup
	case FieldMaritalStatus:
		return e.MaritalStatus
	case FieldCreatedAt:
		return e.CreatedAt.UTC().Format(employeeDatamodel.TimestampLayout)
	case FieldUpdatedAt:
		return e.UpdatedAt.UTC().Format(employeeDatamodel.TimestampLayout)
	}
	return ""
}

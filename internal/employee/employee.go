package employee

import (
	"fmt"
	"time"

	employeeDatamodel "github.com/frahmantamala/employee-management/internal/core/datamodel/employee"
)

// DateLayout is the ISO calendar date used for DateOfJoining.
const DateLayout = "2006-01-02"

type Employee struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	DateOfJoining string `json:"dateOfJoining"`
	EmployeeCode  string `json:"employeeCode"`
	MobileNumber  string `json:"mobileNumber"`
	CreatedBy     string `json:"createdBy"`

	Email            string   `json:"email,omitempty"`
	Department       string   `json:"department,omitempty"`
	Position         string   `json:"position,omitempty"`
	Salary           *float64 `json:"salary,omitempty"`
	Address          string   `json:"address,omitempty"`
	EmergencyContact string   `json:"emergencyContact,omitempty"`
	BloodGroup       string   `json:"bloodGroup,omitempty"`
	MaritalStatus    string   `json:"maritalStatus,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewEmployee builds a record from submitted form data. createdAt and
// updatedAt both start at now.
func NewEmployee(id string, form FormData, createdBy string, now time.Time) Employee {
	e := Employee{
		ID:        id,
		CreatedBy: createdBy,
		CreatedAt: now,
		UpdatedAt: now,
	}
	e.apply(form)
	return e
}

// Edit replaces every editable field and refreshes UpdatedAt. ID, CreatedBy
// and CreatedAt are left alone.
func (e *Employee) Edit(form FormData, now time.Time) {
	e.apply(form)
	e.UpdatedAt = now
}

func (e *Employee) apply(form FormData) {
	e.Name = form.Name
	e.DateOfJoining = form.DateOfJoining
	e.EmployeeCode = form.EmployeeCode
	e.MobileNumber = form.MobileNumber
	e.Email = form.Email
	e.Department = form.Department
	e.Position = form.Position
	e.Salary = cloneFloat(form.Salary)
	e.Address = form.Address
	e.EmergencyContact = form.EmergencyContact
	e.BloodGroup = form.BloodGroup
	e.MaritalStatus = form.MaritalStatus
}

// Form returns the editable subset, used to pre-fill an edit form.
func (e Employee) Form() FormData {
	return FormData{
		Name:             e.Name,
		DateOfJoining:    e.DateOfJoining,
		EmployeeCode:     e.EmployeeCode,
		MobileNumber:     e.MobileNumber,
		Email:            e.Email,
		Department:       e.Department,
		Position:         e.Position,
		Salary:           cloneFloat(e.Salary),
		Address:          e.Address,
		EmergencyContact: e.EmergencyContact,
		BloodGroup:       e.BloodGroup,
		MaritalStatus:    e.MaritalStatus,
	}
}

// JoinedIn reports whether DateOfJoining falls in the given month.
func (e Employee) JoinedIn(year int, month time.Month) bool {
	d, err := time.Parse(DateLayout, e.DateOfJoining)
	if err != nil {
		return false
	}
	return d.Year() == year && d.Month() == month
}

// Clone returns a deep copy.
func (e Employee) Clone() Employee {
	e.Salary = cloneFloat(e.Salary)
	return e
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}

func ToDataModel(e Employee) employeeDatamodel.Employee {
	return employeeDatamodel.Employee{
		ID:               e.ID,
		Name:             e.Name,
		DateOfJoining:    e.DateOfJoining,
		EmployeeCode:     e.EmployeeCode,
		MobileNumber:     e.MobileNumber,
		CreatedBy:        e.CreatedBy,
		Email:            e.Email,
		Department:       e.Department,
		Position:         e.Position,
		Salary:           cloneFloat(e.Salary),
		Address:          e.Address,
		EmergencyContact: e.EmergencyContact,
		BloodGroup:       e.BloodGroup,
		MaritalStatus:    e.MaritalStatus,
		CreatedAt:        e.CreatedAt.UTC().Format(employeeDatamodel.TimestampLayout),
		UpdatedAt:        e.UpdatedAt.UTC().Format(employeeDatamodel.TimestampLayout),
	}
}

// FromDataModel fails when a stored timestamp is not RFC 3339.
func FromDataModel(e employeeDatamodel.Employee) (Employee, error) {
	createdAt, err := time.Parse(time.RFC3339Nano, e.CreatedAt)
	if err != nil {
		return Employee{}, fmt.Errorf("employee %s: createdAt: %w", e.ID, err)
	}
	updatedAt, err := time.Parse(time.RFC3339Nano, e.UpdatedAt)
	if err != nil {
		return Employee{}, fmt.Errorf("employee %s: updatedAt: %w", e.ID, err)
	}
	return Employee{
		ID:               e.ID,
		Name:             e.Name,
		DateOfJoining:    e.DateOfJoining,
		EmployeeCode:     e.EmployeeCode,
		MobileNumber:     e.MobileNumber,
		CreatedBy:        e.CreatedBy,
		Email:            e.Email,
		Department:       e.Department,
		Position:         e.Position,
		Salary:           cloneFloat(e.Salary),
		Address:          e.Address,
		EmergencyContact: e.EmergencyContact,
		BloodGroup:       e.BloodGroup,
		MaritalStatus:    e.MaritalStatus,
		CreatedAt:        createdAt.UTC(),
		UpdatedAt:        updatedAt.UTC(),
	}, nil
}

func ToDataModelSlice(employees []Employee) []employeeDatamodel.Employee {
	result := make([]employeeDatamodel.Employee, len(employees))
	for i, e := range employees {
		result[i] = ToDataModel(e)
	}
	return result
}

func FromDataModelSlice(employees []employeeDatamodel.Employee) ([]Employee, error) {
	result := make([]Employee, len(employees))
	for i, e := range employees {
		converted, err := FromDataModel(e)
		if err != nil {
			return nil, err
		}
		result[i] = converted
	}
	return result, nil
}

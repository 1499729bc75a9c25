package employee

import (
	"github.com/frahmantamala/employee-management/internal/core/common/validation"
)

// FormData is the editable subset of Employee submitted by the create/edit form.
type FormData struct {
	Name          string `json:"name"`
	DateOfJoining string `json:"dateOfJoining"`
	EmployeeCode  string `json:"employeeCode"`
	MobileNumber  string `json:"mobileNumber"`

	Email            string   `json:"email,omitempty"`
	Department       string   `json:"department,omitempty"`
	Position         string   `json:"position,omitempty"`
	Salary           *float64 `json:"salary,omitempty"`
	Address          string   `json:"address,omitempty"`
	EmergencyContact string   `json:"emergencyContact,omitempty"`
	BloodGroup       string   `json:"bloodGroup,omitempty"`
	MaritalStatus    string   `json:"maritalStatus,omitempty"`
}

// Validate enforces the required fields of the form. The returned value is
// either nil or an *internal.AppError with per-field details.
func (f FormData) Validate() error {
	v := validation.NewValidator()
	v.Field("name", f.Name).Required()
	v.Field("dateOfJoining", f.DateOfJoining).Required().Date(DateLayout)
	v.Field("employeeCode", f.EmployeeCode).Required()
	v.Field("mobileNumber", f.MobileNumber).Required()

	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

// Choices offered by the form's select inputs.
var (
	Departments     = []string{"Engineering", "HR", "Sales", "Marketing", "Finance", "Operations", "Legal", "IT Support"}
	BloodGroups     = []string{"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"}
	MaritalStatuses = []string{"Single", "Married", "Divorced", "Widowed"}
)

package employee

// TimestampLayout matches what browsers produce from Date.toISOString, so
// collections written here stay readable by the browser client.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Employee is the persisted JSON shape of one record in the "employees" slot.
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

	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

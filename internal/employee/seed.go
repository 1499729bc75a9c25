package employee

import "time"

func seedTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t.UTC()
}

// SeedEmployees returns the sample records written on first run.
func SeedEmployees() []Employee {
	return []Employee{
		{
			ID:            "1",
			Name:          "John Doe",
			DateOfJoining: "2023-01-15",
			EmployeeCode:  "EMP001",
			MobileNumber:  "+1-555-0123",
			CreatedBy:     "admin",
			Email:         "john.doe@company.com",
			Department:    "Engineering",
			Position:      "Software Developer",
			CreatedAt:     seedTime("2023-01-15T09:00:00Z"),
			UpdatedAt:     seedTime("2023-01-15T09:00:00Z"),
		},
		{
			ID:            "2",
			Name:          "Jane Smith",
			DateOfJoining: "2023-02-01",
			EmployeeCode:  "EMP002",
			MobileNumber:  "+1-555-0124",
			CreatedBy:     "admin",
			Email:         "jane.smith@company.com",
			Department:    "HR",
			Position:      "HR Manager",
			CreatedAt:     seedTime("2023-02-01T09:00:00Z"),
			UpdatedAt:     seedTime("2023-02-01T09:00:00Z"),
		},
		{
			ID:            "3",
			Name:          "Mike Johnson",
			DateOfJoining: "2023-03-10",
			EmployeeCode:  "EMP003",
			MobileNumber:  "+1-555-0125",
			CreatedBy:     "admin",
			Email:         "mike.johnson@company.com",
			Department:    "Sales",
			Position:      "Sales Representative",
			CreatedAt:     seedTime("2023-03-10T09:00:00Z"),
			UpdatedAt:     seedTime("2023-03-10T09:00:00Z"),
		},
	}
}

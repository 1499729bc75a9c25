// Package query holds the stateless search and sort functions applied to the
// employee list view.
package query

import (
	"strings"

	"github.com/frahmantamala/employee-management/internal/employee"
)

// Filter keeps the records where term is a substring of name, employee code,
// department or creator (case-insensitive) or of the mobile number
// (case-sensitive). An empty term returns the input unchanged.
func Filter(employees []employee.Employee, term string) []employee.Employee {
	if term == "" {
		return employees
	}

	lower := strings.ToLower(term)
	result := make([]employee.Employee, 0, len(employees))
	for _, e := range employees {
		if matches(e, term, lower) {
			result = append(result, e)
		}
	}
	return result
}

func matches(e employee.Employee, term, lower string) bool {
	return strings.Contains(strings.ToLower(e.Name), lower) ||
		strings.Contains(strings.ToLower(e.EmployeeCode), lower) ||
		strings.Contains(e.MobileNumber, term) ||
		(e.Department != "" && strings.Contains(strings.ToLower(e.Department), lower)) ||
		strings.Contains(strings.ToLower(e.CreatedBy), lower)
}

package employee

import "time"

// Stats are the summary figures shown above the employee list.
type Stats struct {
	Total           int `json:"total"`
	JoinedThisMonth int `json:"joinedThisMonth"`
	Departments     int `json:"departments"`
}

// ComputeStats counts records joined in now's calendar month and the
// distinct non-empty departments.
func ComputeStats(employees []Employee, now time.Time) Stats {
	stats := Stats{Total: len(employees)}
	departments := make(map[string]struct{})
	year, month := now.Year(), now.Month()

	for _, e := range employees {
		if e.JoinedIn(year, month) {
			stats.JoinedThisMonth++
		}
		if e.Department != "" {
			departments[e.Department] = struct{}{}
		}
	}
	stats.Departments = len(departments)
	return stats
}

// Stats summarises the in-memory collection.
func (r *Repository) Stats(now time.Time) Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return ComputeStats(r.employees, now)
}

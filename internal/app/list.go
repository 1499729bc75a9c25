package app

import (
	"slices"

	"github.com/frahmantamala/employee-management/internal/employee"
	"github.com/frahmantamala/employee-management/internal/query"
)

// listView is the working set behind the list screen: the whole collection
// in the current sort order plus the search term. Sorting is sticky for the
// session and re-applied whenever the collection changes; it is never
// persisted.
type listView struct {
	working   []employee.Employee
	term      string
	sortField query.Field
	sortDir   query.Direction
}

func (l *listView) rebuild(sorter *query.Sorter, employees []employee.Employee) {
	if l.sortField != "" {
		employees = sorter.SortBy(employees, l.sortField, l.sortDir)
	}
	l.working = employees
}

func (l *listView) sort(sorter *query.Sorter, field query.Field, dir query.Direction) {
	l.sortField = field
	l.sortDir = dir
	l.working = sorter.SortBy(l.working, field, dir)
}

// rows never shares backing storage with working.
func (l *listView) rows() []employee.Employee {
	return slices.Clone(query.Filter(l.working, l.term))
}

func (l *listView) reset() {
	*l = listView{}
}

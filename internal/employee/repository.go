package employee

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/frahmantamala/employee-management/internal"
	employeeDatamodel "github.com/frahmantamala/employee-management/internal/core/datamodel/employee"
	"github.com/frahmantamala/employee-management/internal/storage"
	"github.com/google/uuid"
)

// Clock provides the current time.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

// NewID returns a time-ordered UUIDv7, unique and increasing within a process.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

type Options struct {
	// EnforceUniqueCodes rejects create/update when another record already
	// uses the employee code.
	EnforceUniqueCodes bool
	// RecoverCorrupt replaces an unreadable collection with the seed instead
	// of failing LoadAll.
	RecoverCorrupt bool

	Clock Clock
	NewID func() string
}

// Repository owns the authoritative employee collection and is the only
// writer of the "employees" slot. Every mutation rewrites the whole
// collection.
type Repository struct {
	mu        sync.RWMutex
	slot      *storage.Slot[[]employeeDatamodel.Employee]
	employees []Employee
	loaded    bool

	opts   Options
	logger *slog.Logger
}

func NewRepository(kv storage.KV, logger *slog.Logger, opts Options) *Repository {
	if opts.Clock == nil {
		opts.Clock = realClock{}
	}
	if opts.NewID == nil {
		opts.NewID = NewID
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		slot:   storage.NewJSONSlot[[]employeeDatamodel.Employee](kv, storage.KeyEmployees),
		opts:   opts,
		logger: logger,
	}
}

// LoadAll reads the collection from the store. An absent slot is initialised
// with the seed records.
func (r *Repository) LoadAll(ctx context.Context) ([]Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.load(ctx); err != nil {
		return nil, err
	}
	return cloneAll(r.employees), nil
}

// Reload discards the in-memory collection and reads it again.
func (r *Repository) Reload(ctx context.Context) ([]Employee, error) {
	return r.LoadAll(ctx)
}

func (r *Repository) load(ctx context.Context) error {
	stored, ok, err := r.slot.Get(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrCorrupt) {
			return r.handleCorrupt(ctx, err)
		}
		r.logger.Error("failed to read employees", "error", err)
		return err
	}

	if !ok {
		seed := SeedEmployees()
		if err := r.persist(ctx, seed); err != nil {
			return err
		}
		r.logger.Info("initialized employee store with sample data", "count", len(seed))
		r.set(seed)
		return nil
	}

	employees, err := FromDataModelSlice(stored)
	if err != nil {
		return r.handleCorrupt(ctx, fmt.Errorf("%w: %v", storage.ErrCorrupt, err))
	}
	r.set(employees)
	return nil
}

func (r *Repository) handleCorrupt(ctx context.Context, cause error) error {
	if !r.opts.RecoverCorrupt {
		r.logger.Error("employee store is corrupt", "error", cause)
		return internal.ErrStoreCorrupt.WithCause(cause)
	}

	r.logger.Error("employee store is corrupt, restoring sample data", "error", cause)
	seed := SeedEmployees()
	if err := r.persist(ctx, seed); err != nil {
		return err
	}
	r.set(seed)
	return nil
}

func (r *Repository) ensureLoaded(ctx context.Context) error {
	if r.loaded {
		return nil
	}
	return r.load(ctx)
}

// List returns a copy of the in-memory collection in persisted order.
func (r *Repository) List() []Employee {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneAll(r.employees)
}

// Get returns one record by id.
func (r *Repository) Get(ctx context.Context, id string) (Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.ensureLoaded(ctx); err != nil {
		return Employee{}, err
	}
	idx := r.indexOf(id)
	if idx < 0 {
		return Employee{}, internal.ErrEmployeeNotFound
	}
	return r.employees[idx].Clone(), nil
}

// NextEmployeeCode suggests "EMP" + (size+1) padded to three digits. The code
// is not reserved and may collide with hand-edited codes.
func (r *Repository) NextEmployeeCode() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return fmt.Sprintf("EMP%03d", len(r.employees)+1)
}

func (r *Repository) Create(ctx context.Context, form FormData, createdBy string) (Employee, error) {
	if err := form.Validate(); err != nil {
		r.logger.Warn("employee validation failed", "error", err)
		return Employee{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.ensureLoaded(ctx); err != nil {
		return Employee{}, err
	}
	if r.opts.EnforceUniqueCodes && r.codeTaken(form.EmployeeCode, "") {
		r.logger.Warn("duplicate employee code", "employee_code", form.EmployeeCode)
		return Employee{}, internal.ErrDuplicateEmployeeCode
	}

	created := NewEmployee(r.opts.NewID(), form, createdBy, r.now())

	next := make([]Employee, 0, len(r.employees)+1)
	next = append(next, r.employees...)
	next = append(next, created)

	if err := r.persist(ctx, next); err != nil {
		return Employee{}, err
	}
	r.employees = next

	r.logger.Info("employee created",
		"employee_id", created.ID,
		"employee_code", created.EmployeeCode,
		"created_by", createdBy)

	return created.Clone(), nil
}

func (r *Repository) Update(ctx context.Context, id string, form FormData) (Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.ensureLoaded(ctx); err != nil {
		return Employee{}, err
	}
	idx := r.indexOf(id)
	if idx < 0 {
		r.logger.Warn("employee not found for update", "employee_id", id)
		return Employee{}, internal.ErrEmployeeNotFound
	}
	if err := form.Validate(); err != nil {
		r.logger.Warn("employee validation failed", "error", err, "employee_id", id)
		return Employee{}, err
	}
	if r.opts.EnforceUniqueCodes && r.codeTaken(form.EmployeeCode, id) {
		r.logger.Warn("duplicate employee code", "employee_code", form.EmployeeCode, "employee_id", id)
		return Employee{}, internal.ErrDuplicateEmployeeCode
	}

	updated := r.employees[idx].Clone()
	now := r.now()
	if now.Before(updated.UpdatedAt) {
		now = updated.UpdatedAt
	}
	updated.Edit(form, now)

	next := cloneAll(r.employees)
	next[idx] = updated

	if err := r.persist(ctx, next); err != nil {
		return Employee{}, err
	}
	r.employees = next

	r.logger.Info("employee updated", "employee_id", id)
	return updated.Clone(), nil
}

// Remove deletes one record. Nothing else is touched.
func (r *Repository) Remove(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.ensureLoaded(ctx); err != nil {
		return err
	}
	idx := r.indexOf(id)
	if idx < 0 {
		r.logger.Warn("employee not found for delete", "employee_id", id)
		return internal.ErrEmployeeNotFound
	}

	next := make([]Employee, 0, len(r.employees)-1)
	next = append(next, r.employees[:idx]...)
	next = append(next, r.employees[idx+1:]...)

	if err := r.persist(ctx, next); err != nil {
		return err
	}
	r.employees = next

	r.logger.Info("employee deleted", "employee_id", id)
	return nil
}

// Save replaces the whole collection.
func (r *Repository) Save(ctx context.Context, employees []Employee) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := cloneAll(employees)
	if err := r.persist(ctx, next); err != nil {
		return err
	}
	r.set(next)
	return nil
}

// Reset overwrites the collection with the sample records.
func (r *Repository) Reset(ctx context.Context) ([]Employee, error) {
	seed := SeedEmployees()
	if err := r.Save(ctx, seed); err != nil {
		return nil, err
	}
	r.logger.Info("employee store reset to sample data", "count", len(seed))
	return cloneAll(seed), nil
}

func (r *Repository) persist(ctx context.Context, employees []Employee) error {
	if err := r.slot.Set(ctx, ToDataModelSlice(employees)); err != nil {
		r.logger.Error("failed to persist employees", "error", err, "count", len(employees))
		return err
	}
	return nil
}

func (r *Repository) set(employees []Employee) {
	r.employees = employees
	r.loaded = true
}

func (r *Repository) indexOf(id string) int {
	for i := range r.employees {
		if r.employees[i].ID == id {
			return i
		}
	}
	return -1
}

func (r *Repository) codeTaken(code, exceptID string) bool {
	for _, e := range r.employees {
		if e.ID != exceptID && e.EmployeeCode == code {
			return true
		}
	}
	return false
}

// now is truncated to the millisecond precision the store keeps, so a record
// compares equal to itself after a reload.
func (r *Repository) now() time.Time {
	return r.opts.Clock.Now().UTC().Truncate(time.Millisecond)
}

func cloneAll(employees []Employee) []Employee {
	out := make([]Employee, len(employees))
	for i, e := range employees {
		out[i] = e.Clone()
	}
	return out
}

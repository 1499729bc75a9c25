// Package app is the application controller: it decides which view is
// active and drives the session manager, the employee repository and the
// query engine on behalf of a view adapter.
package app

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/frahmantamala/employee-management/internal"
	"github.com/frahmantamala/employee-management/internal/core/events"
	"github.com/frahmantamala/employee-management/internal/employee"
	"github.com/frahmantamala/employee-management/internal/query"
	"github.com/frahmantamala/employee-management/internal/session"
)

type View string

const (
	ViewLogin View = "login"
	ViewList  View = "list"
	ViewAdd   View = "add"
	ViewEdit  View = "edit"
)

const DefaultSimulatedLatency = 800 * time.Millisecond

type Options struct {
	// SimulatedLatency delays login and save. Zero disables it.
	SimulatedLatency time.Duration
	CollationLocale  string
	Now              func() time.Time
}

type Controller struct {
	sessions  *session.Manager
	employees *employee.Repository
	publisher events.Publisher
	sorter    *query.Sorter
	logger    *slog.Logger
	opts      Options

	busy atomic.Bool

	mu        sync.Mutex
	view      View
	editingID string
	list      listView
}

func NewController(sessions *session.Manager, employees *employee.Repository, publisher events.Publisher, logger *slog.Logger, opts Options) *Controller {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		sessions:  sessions,
		employees: employees,
		publisher: publisher,
		sorter:    query.NewSorter(opts.CollationLocale),
		logger:    logger,
		opts:      opts,
		view:      ViewLogin,
	}
}

// Start restores a remembered session and opens the list when there is one.
// A collection that cannot be read still opens the list, empty, and the load
// error is returned.
func (c *Controller) Start(ctx context.Context) (View, error) {
	if _, ok := c.sessions.RestoreSession(ctx); !ok {
		c.mu.Lock()
		c.view = ViewLogin
		c.mu.Unlock()
		return ViewLogin, nil
	}

	err := c.openList(ctx)
	return ViewList, err
}

// openList switches to the list view over a freshly loaded collection. On a
// load error the working set is left empty.
func (c *Controller) openList(ctx context.Context) error {
	employees, err := c.employees.LoadAll(ctx)
	if err != nil {
		employees = nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.list.reset()
	c.list.rebuild(c.sorter, employees)
	c.view = ViewList
	c.editingID = ""
	return err
}

func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

// Session returns the active session, if any.
func (c *Controller) Session() (session.Session, bool) {
	return c.sessions.Current()
}

func (c *Controller) RememberedUsername(ctx context.Context) string {
	return c.sessions.RememberedUsername(ctx)
}

func (c *Controller) Login(ctx context.Context, username, password string, remember bool) (Notice, error) {
	release, err := c.acquire()
	if err != nil {
		return Notice{}, err
	}
	defer release()

	if err := c.simulateLatency(ctx); err != nil {
		return Notice{}, err
	}

	ok, err := c.sessions.AttemptLogin(ctx, username, password, remember)
	if err != nil {
		return noticeLoginFailed(), err
	}
	if !ok {
		return noticeLoginFailed(), internal.ErrAuthenticationFailed
	}

	loadErr := c.openList(ctx)
	c.publish(ctx, events.NewLoggedInEvent(username, remember))
	if loadErr != nil {
		return noticeLoadFailed(), loadErr
	}
	return noticeLoginSuccessful(), nil
}

func (c *Controller) Logout(ctx context.Context) (Notice, error) {
	current, _ := c.sessions.Current()

	c.mu.Lock()
	c.view = ViewLogin
	c.editingID = ""
	c.list.reset()
	c.mu.Unlock()

	if err := c.sessions.Logout(ctx); err != nil {
		return Notice{}, err
	}
	c.publish(ctx, events.NewLoggedOutEvent(current.Username))
	return noticeLoggedOut(), nil
}

// Rows is the list view: the sorted working set filtered by the search term.
func (c *Controller) Rows() ([]employee.Employee, error) {
	if _, err := c.requireSession(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.list.rows(), nil
}

func (c *Controller) Search(term string) ([]employee.Employee, error) {
	if _, err := c.requireSession(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.list.term = term
	return c.list.rows(), nil
}

// Sort toggles like a column header: a second click on an ascending column
// sorts it descending.
func (c *Controller) Sort(field query.Field) ([]employee.Employee, error) {
	if _, err := c.requireSession(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	dir := query.Toggle(c.list.sortField, c.list.sortDir, field)
	c.list.sort(c.sorter, field, dir)
	return c.list.rows(), nil
}

func (c *Controller) SortBy(field query.Field, dir query.Direction) ([]employee.Employee, error) {
	if _, err := c.requireSession(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.list.sort(c.sorter, field, dir)
	return c.list.rows(), nil
}

// SortState reports the sticky sort; field is empty when unsorted.
func (c *Controller) SortState() (query.Field, query.Direction) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.list.sortField, c.list.sortDir
}

func (c *Controller) SearchTerm() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.list.term
}

// Refresh re-reads the collection from the store.
func (c *Controller) Refresh(ctx context.Context) (Notice, error) {
	if _, err := c.requireSession(); err != nil {
		return Notice{}, err
	}
	employees, err := c.employees.Reload(ctx)
	if err != nil {
		return noticeLoadFailed(), err
	}
	c.mu.Lock()
	c.list.rebuild(c.sorter, employees)
	c.mu.Unlock()
	return noticeDataRefreshed(), nil
}

func (c *Controller) Stats() (employee.Stats, error) {
	if _, err := c.requireSession(); err != nil {
		return employee.Stats{}, err
	}
	return c.employees.Stats(c.opts.Now()), nil
}

func (c *Controller) NextEmployeeCode() (string, error) {
	if _, err := c.requireSession(); err != nil {
		return "", err
	}
	return c.employees.NextEmployeeCode(), nil
}

func (c *Controller) Get(ctx context.Context, id string) (employee.Employee, error) {
	if _, err := c.requireSession(); err != nil {
		return employee.Employee{}, err
	}
	e, err := c.employees.Get(ctx, id)
	if err != nil {
		c.reloadOnNotFound(ctx, err)
		return employee.Employee{}, err
	}
	return e, nil
}

// BeginAdd opens the add form pre-filled with the suggested code.
func (c *Controller) BeginAdd(ctx context.Context) (employee.FormData, error) {
	if _, err := c.requireSession(); err != nil {
		return employee.FormData{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.view = ViewAdd
	c.editingID = ""
	return employee.FormData{EmployeeCode: c.employees.NextEmployeeCode()}, nil
}

// BeginEdit opens the edit form for id pre-filled with its current values.
func (c *Controller) BeginEdit(ctx context.Context, id string) (employee.FormData, error) {
	e, err := c.Get(ctx, id)
	if err != nil {
		return employee.FormData{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.view = ViewEdit
	c.editingID = id
	return e.Form(), nil
}

// Cancel closes the form without saving.
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.view == ViewAdd || c.view == ViewEdit {
		c.view = ViewList
	}
	c.editingID = ""
}

// Save submits the open form: a create in the add view, an update in the
// edit view. On success the list view is shown again.
func (c *Controller) Save(ctx context.Context, form employee.FormData) (employee.Employee, Notice, error) {
	c.mu.Lock()
	view, id := c.view, c.editingID
	c.mu.Unlock()

	switch view {
	case ViewAdd:
		return c.Create(ctx, form)
	case ViewEdit:
		return c.Update(ctx, id, form)
	}
	if _, err := c.requireSession(); err != nil {
		return employee.Employee{}, Notice{}, err
	}
	return employee.Employee{}, noticeSaveFailed(), internal.NewValidationError("no employee form is open", internal.ErrCodeValidationFailed)
}

func (c *Controller) Create(ctx context.Context, form employee.FormData) (employee.Employee, Notice, error) {
	s, err := c.requireSession()
	if err != nil {
		return employee.Employee{}, Notice{}, err
	}
	release, err := c.acquire()
	if err != nil {
		return employee.Employee{}, Notice{}, err
	}
	defer release()

	if err := c.simulateLatency(ctx); err != nil {
		return employee.Employee{}, Notice{}, err
	}

	created, err := c.employees.Create(ctx, form, s.Username)
	if err != nil {
		return employee.Employee{}, c.failureNotice(err), err
	}

	c.afterMutation()
	c.publish(ctx, events.NewEmployeeCreatedEvent(s.Username, created.ID, created.EmployeeCode, created.Name))
	return created, noticeEmployeeAdded(created.Name), nil
}

func (c *Controller) Update(ctx context.Context, id string, form employee.FormData) (employee.Employee, Notice, error) {
	s, err := c.requireSession()
	if err != nil {
		return employee.Employee{}, Notice{}, err
	}
	release, err := c.acquire()
	if err != nil {
		return employee.Employee{}, Notice{}, err
	}
	defer release()

	if err := c.simulateLatency(ctx); err != nil {
		return employee.Employee{}, Notice{}, err
	}

	updated, err := c.employees.Update(ctx, id, form)
	if err != nil {
		c.reloadOnNotFound(ctx, err)
		return employee.Employee{}, c.failureNotice(err), err
	}

	c.afterMutation()
	c.publish(ctx, events.NewEmployeeUpdatedEvent(s.Username, updated.ID, updated.EmployeeCode, updated.Name))
	return updated, noticeEmployeeUpdated(updated.Name), nil
}

// Delete removes one record. Confirmation is the view's concern.
func (c *Controller) Delete(ctx context.Context, id string) (Notice, error) {
	s, err := c.requireSession()
	if err != nil {
		return Notice{}, err
	}

	target, err := c.employees.Get(ctx, id)
	if err != nil {
		c.reloadOnNotFound(ctx, err)
		return Notice{}, err
	}
	if err := c.employees.Remove(ctx, id); err != nil {
		c.reloadOnNotFound(ctx, err)
		return Notice{}, err
	}

	c.mu.Lock()
	c.list.rebuild(c.sorter, c.employees.List())
	if c.editingID == id {
		c.editingID = ""
		c.view = ViewList
	}
	c.mu.Unlock()

	c.publish(ctx, events.NewEmployeeDeletedEvent(s.Username, target.ID, target.EmployeeCode, target.Name))
	return noticeEmployeeDeleted(target.Name), nil
}

func (c *Controller) afterMutation() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.list.rebuild(c.sorter, c.employees.List())
	c.view = ViewList
	c.editingID = ""
}

// requireSession fails with ErrUnauthenticated and falls back to the login
// view when nobody is logged in.
func (c *Controller) requireSession() (session.Session, error) {
	s, ok := c.sessions.Current()
	if !ok {
		c.mu.Lock()
		c.view = ViewLogin
		c.editingID = ""
		c.mu.Unlock()
		return session.Session{}, internal.ErrUnauthenticated
	}
	return s, nil
}

// acquire is the busy guard: a second login or save while one is in flight
// is refused rather than queued.
func (c *Controller) acquire() (func(), error) {
	if !c.busy.CompareAndSwap(false, true) {
		return nil, internal.ErrOperationInProgress
	}
	return func() { c.busy.Store(false) }, nil
}

func (c *Controller) Busy() bool {
	return c.busy.Load()
}

func (c *Controller) simulateLatency(ctx context.Context) error {
	if c.opts.SimulatedLatency <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(c.opts.SimulatedLatency)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (c *Controller) reloadOnNotFound(ctx context.Context, err error) {
	if !errors.Is(err, internal.ErrEmployeeNotFound) {
		return
	}
	employees, reloadErr := c.employees.Reload(ctx)
	if reloadErr != nil {
		c.logger.Warn("failed to reload employees", "error", reloadErr)
		return
	}
	c.mu.Lock()
	c.list.rebuild(c.sorter, employees)
	c.mu.Unlock()
}

func (c *Controller) failureNotice(err error) Notice {
	if appErr, ok := internal.IsAppError(err); ok && appErr.Type == internal.ErrorTypeValidation {
		return noticeInvalidForm()
	}
	return noticeSaveFailed()
}

func (c *Controller) publish(ctx context.Context, event events.Event) {
	if c.publisher == nil {
		return
	}
	if err := c.publisher.Publish(ctx, event); err != nil {
		c.logger.Warn("failed to publish event", "event_type", event.EventType(), "error", err)
	}
}

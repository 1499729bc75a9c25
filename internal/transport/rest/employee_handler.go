package rest

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/frahmantamala/employee-management/internal"
	"github.com/frahmantamala/employee-management/internal/app"
	"github.com/frahmantamala/employee-management/internal/employee"
	"github.com/frahmantamala/employee-management/internal/query"
	"github.com/frahmantamala/employee-management/internal/transport"
	"github.com/frahmantamala/employee-management/pkg/logger"
)

type EmployeeController interface {
	Rows() ([]employee.Employee, error)
	Search(term string) ([]employee.Employee, error)
	SortBy(field query.Field, dir query.Direction) ([]employee.Employee, error)
	SortState() (query.Field, query.Direction)
	Refresh(ctx context.Context) (app.Notice, error)
	Stats() (employee.Stats, error)
	NextEmployeeCode() (string, error)
	Get(ctx context.Context, id string) (employee.Employee, error)
	Create(ctx context.Context, form employee.FormData) (employee.Employee, app.Notice, error)
	Update(ctx context.Context, id string, form employee.FormData) (employee.Employee, app.Notice, error)
	Delete(ctx context.Context, id string) (app.Notice, error)
}

type EmployeeListResponse struct {
	Employees []employee.Employee `json:"employees"`
	Total     int                 `json:"total"`
	Search    string              `json:"search,omitempty"`
	Sort      query.Field         `json:"sort,omitempty"`
	Direction query.Direction     `json:"direction,omitempty"`
	Notice    *app.Notice         `json:"notice,omitempty"`
}

type EmployeeResult struct {
	Employee employee.Employee `json:"employee"`
	Notice   app.Notice        `json:"notice"`
}

type EmployeeHandler struct {
	*transport.BaseHandler
	Controller EmployeeController
}

func NewEmployeeHandler(controller EmployeeController, lg *slog.Logger) *EmployeeHandler {
	return &EmployeeHandler{
		BaseHandler: transport.NewBaseHandler(lg),
		Controller:  controller,
	}
}

// ListEmployees applies refresh, sort and search in that order. A sort given
// once stays in effect for later requests in the same session.
func (h *EmployeeHandler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	resp := EmployeeListResponse{}

	if raw := q.Get("refresh"); raw != "" {
		refresh, err := strconv.ParseBool(raw)
		if err != nil {
			h.HandleServiceError(w, internal.NewValidationError("refresh must be a boolean", internal.ErrCodeValidationFailed))
			return
		}
		if refresh {
			notice, err := h.Controller.Refresh(r.Context())
			if err != nil {
				h.HandleServiceError(w, err)
				return
			}
			resp.Notice = &notice
		}
	}

	if raw := q.Get("sort"); raw != "" {
		field, err := query.ParseField(raw)
		if err != nil {
			h.HandleServiceError(w, err)
			return
		}
		dir, err := query.ParseDirection(q.Get("direction"))
		if err != nil {
			h.HandleServiceError(w, err)
			return
		}
		if _, err := h.Controller.SortBy(field, dir); err != nil {
			h.HandleServiceError(w, err)
			return
		}
	}

	rows, err := h.Controller.Search(q.Get("search"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	resp.Employees = rows
	resp.Total = len(rows)
	resp.Search = q.Get("search")
	resp.Sort, resp.Direction = h.Controller.SortState()
	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *EmployeeHandler) NextEmployeeCode(w http.ResponseWriter, r *http.Request) {
	code, err := h.Controller.NextEmployeeCode()
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]string{"employeeCode": code})
}

func (h *EmployeeHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Controller.Stats()
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, stats)
}

func (h *EmployeeHandler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	e, err := h.Controller.Get(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, e)
}

func (h *EmployeeHandler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var form employee.FormData
	if err := h.DecodeJSON(r, &form); err != nil {
		logger.From(r.Context()).Warn("CreateEmployee: invalid request body", "error", err)
		h.HandleServiceError(w, internal.NewValidationError("invalid request body", internal.ErrCodeValidationFailed))
		return
	}

	created, notice, err := h.Controller.Create(r.Context(), form)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	logger.From(r.Context()).Info("CreateEmployee: employee created", "employee_id", created.ID)
	h.WriteJSON(w, http.StatusCreated, EmployeeResult{Employee: created, Notice: notice})
}

func (h *EmployeeHandler) UpdateEmployee(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var form employee.FormData
	if err := h.DecodeJSON(r, &form); err != nil {
		logger.From(r.Context()).Warn("UpdateEmployee: invalid request body", "error", err, "employee_id", id)
		h.HandleServiceError(w, internal.NewValidationError("invalid request body", internal.ErrCodeValidationFailed))
		return
	}

	updated, notice, err := h.Controller.Update(r.Context(), id, form)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, EmployeeResult{Employee: updated, Notice: notice})
}

func (h *EmployeeHandler) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	notice, err := h.Controller.Delete(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, notice)
}

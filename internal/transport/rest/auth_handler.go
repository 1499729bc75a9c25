package rest

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/frahmantamala/employee-management/internal"
	"github.com/frahmantamala/employee-management/internal/app"
	"github.com/frahmantamala/employee-management/internal/session"
	"github.com/frahmantamala/employee-management/internal/transport"
)

type AuthController interface {
	Login(ctx context.Context, username, password string, remember bool) (app.Notice, error)
	Logout(ctx context.Context) (app.Notice, error)
	Session() (session.Session, bool)
	RememberedUsername(ctx context.Context) string
}

type TokenIssuer interface {
	Issue(s session.Session) (string, time.Time, error)
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Remember bool   `json:"remember"`
}

type LoginResponse struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expiresAt"`
	Session   session.Session `json:"session"`
	Notice    app.Notice      `json:"notice"`
}

type SessionState struct {
	Authenticated      bool             `json:"authenticated"`
	Session            *session.Session `json:"session,omitempty"`
	RememberedUsername string           `json:"rememberedUsername,omitempty"`
}

type AuthHandler struct {
	*transport.BaseHandler
	Controller AuthController
	Tokens     TokenIssuer
}

func NewAuthHandler(controller AuthController, tokens TokenIssuer, lg *slog.Logger) *AuthHandler {
	return &AuthHandler{
		BaseHandler: transport.NewBaseHandler(lg),
		Controller:  controller,
		Tokens:      tokens,
	}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.Logger.Warn("Login: invalid request body", "error", err)
		h.HandleServiceError(w, internal.NewValidationError("invalid request body", internal.ErrCodeValidationFailed))
		return
	}

	notice, err := h.Controller.Login(r.Context(), req.Username, req.Password, req.Remember)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	s, ok := h.Controller.Session()
	if !ok {
		h.HandleServiceError(w, internal.ErrUnauthenticated)
		return
	}

	token, expiresAt, err := h.Tokens.Issue(s)
	if err != nil {
		h.Logger.Error("Login: failed to issue token", "error", err, "username", s.Username)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		Session:   s,
		Notice:    notice,
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	notice, err := h.Controller.Logout(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.Logger.Info("user logged out", "username", internal.UsernameFromContext(r.Context()))
	h.WriteJSON(w, http.StatusOK, notice)
}

func (h *AuthHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	state := SessionState{RememberedUsername: h.Controller.RememberedUsername(r.Context())}
	if s, ok := h.Controller.Session(); ok {
		state.Authenticated = true
		state.Session = &s
	}
	h.WriteJSON(w, http.StatusOK, state)
}

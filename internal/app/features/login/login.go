// internal/app/features/login/login.go
package login

import (
	"net/http"

	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"github.com/go-chi/chi/v5"
	errorsfeature "github.com/schoolworks/schoolsite/internal/app/features/errors"
	userstore "github.com/schoolworks/schoolsite/internal/app/store/users"
	"github.com/schoolworks/schoolsite/internal/app/system/auth"
	"github.com/schoolworks/schoolsite/internal/app/system/authutil"
	"github.com/schoolworks/schoolsite/internal/app/system/network"
	"github.com/schoolworks/schoolsite/internal/app/system/viewdata"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler provides login handlers.
type Handler struct {
	userStore  *userstore.Store
	sessionMgr *auth.SessionManager
	errLog     *errorsfeature.ErrorLogger
	logger     *zap.Logger
}

// NewHandler creates a new login Handler.
func NewHandler(db *mongo.Database, sessionMgr *auth.SessionManager, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		userStore:  userstore.New(db),
		sessionMgr: sessionMgr,
		errLog:     errLog,
		logger:     logger,
	}
}

// LoginVM is the view model for the login page.
type LoginVM struct {
	viewdata.BaseVM
	Error     string
	Email     string
	ReturnURL string
}

// Routes returns a chi.Router with login routes mounted.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.showLogin)
	r.Post("/", h.handleLogin)
	return r
}

// showLogin renders the login form.
func (h *Handler) showLogin(w http.ResponseWriter, r *http.Request) {
	// Already signed in: skip the form
	if _, ok := auth.CurrentUser(r); ok {
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}

	vm := LoginVM{
		BaseVM:    viewdata.New(r),
		ReturnURL: r.URL.Query().Get("return"),
	}
	vm.Title = "Admin Login"

	templates.Render(w, r, "login/index", vm)
}

// handleLogin verifies email + password and creates a session.
// Lookup misses and wrong passwords get the same response so the form
// doesn't leak which emails have accounts.
func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.errLog.Log(r, "failed to parse login form", err)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	email := r.FormValue("email")
	password := r.FormValue("password")
	returnURL := r.FormValue("return")

	renderError := func(msg string) {
		vm := LoginVM{
			BaseVM:    viewdata.New(r),
			Error:     msg,
			Email:     email,
			ReturnURL: returnURL,
		}
		vm.Title = "Admin Login"
		templates.Render(w, r, "login/index", vm)
	}

	if email == "" || password == "" {
		renderError("Email and password are required.")
		return
	}

	user, err := h.userStore.GetByEmail(r.Context(), email)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			h.logger.Info("login failed: unknown email",
				zap.String("email", email),
				zap.String("ip", network.GetClientIP(r)))
			renderError("Invalid credentials")
			return
		}
		h.errLog.Log(r, "database error during login lookup", err)
		renderError("Service temporarily unavailable. Please try again.")
		return
	}

	if !user.IsActive() {
		h.logger.Info("login failed: account disabled",
			zap.String("user_id", user.ID.Hex()),
			zap.String("ip", network.GetClientIP(r)))
		renderError("Account is disabled")
		return
	}

	if user.PasswordHash == nil || !authutil.CheckPassword(password, *user.PasswordHash) {
		h.logger.Info("login failed: wrong password",
			zap.String("user_id", user.ID.Hex()),
			zap.String("ip", network.GetClientIP(r)))
		renderError("Invalid credentials")
		return
	}

	if err := h.sessionMgr.CreateSession(w, r, user.ID, user.Role, ""); err != nil {
		h.errLog.Log(r, "failed to create session", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.logger.Info("login success", zap.String("user_id", user.ID.Hex()))

	http.Redirect(w, r, urlutil.SafeReturn(returnURL, "", "/admin"), http.StatusSeeOther)
}

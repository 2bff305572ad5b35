// internal/app/features/profile/profile.go
package profile

import (
	"net/http"

	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	errorsfeature "github.com/schoolworks/schoolsite/internal/app/features/errors"
	userstore "github.com/schoolworks/schoolsite/internal/app/store/users"
	"github.com/schoolworks/schoolsite/internal/app/system/auth"
	"github.com/schoolworks/schoolsite/internal/app/system/authutil"
	"github.com/schoolworks/schoolsite/internal/app/system/viewdata"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler provides the admin profile page.
type Handler struct {
	userStore *userstore.Store
	errLog    *errorsfeature.ErrorLogger
	logger    *zap.Logger
}

// NewHandler creates a new profile Handler.
func NewHandler(db *mongo.Database, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		userStore: userstore.New(db),
		errLog:    errLog,
		logger:    logger,
	}
}

// VM is the view model for the profile page.
type VM struct {
	viewdata.BaseVM
	Error   string
	Success string
}

// Routes returns a chi.Router with profile routes mounted.
func Routes(h *Handler, sessionMgr *auth.SessionManager) http.Handler {
	r := chi.NewRouter()
	r.Use(sessionMgr.RequireRole("admin"))
	r.Get("/", h.show)
	r.Post("/password", h.changePassword)
	return r
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	msg := ""
	if r.URL.Query().Get("success") == "1" {
		msg = "Password changed"
	}
	h.render(w, r, "", msg)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, errMsg, successMsg string) {
	vm := VM{
		BaseVM:  viewdata.New(r),
		Error:   errMsg,
		Success: successMsg,
	}
	vm.Title = "Profile"

	templates.Render(w, r, "profile/index", vm)
}

// changePassword verifies the current password before replacing the hash.
func (h *Handler) changePassword(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.errLog.Log(r, "failed to parse form", err)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	sessionUser, ok := auth.CurrentUser(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	current := r.FormValue("current_password")
	newPassword := r.FormValue("new_password")
	confirm := r.FormValue("confirm_password")

	if current == "" || newPassword == "" || confirm == "" {
		h.render(w, r, "All fields are required.", "")
		return
	}
	if newPassword != confirm {
		h.render(w, r, "New passwords do not match.", "")
		return
	}

	user, err := h.userStore.GetByID(r.Context(), sessionUser.UserID())
	if err != nil {
		h.errLog.Log(r, "failed to load user for password change", err)
		h.render(w, r, "Failed to change password. Please try again.", "")
		return
	}

	if user.PasswordHash == nil || !authutil.CheckPassword(current, *user.PasswordHash) {
		h.logger.Info("password change rejected: wrong current password",
			zap.String("user_id", user.ID.Hex()))
		h.render(w, r, "Current password is incorrect.", "")
		return
	}

	if err := authutil.ValidatePassword(newPassword); err != nil {
		h.render(w, r, err.Error(), "")
		return
	}

	hash, err := authutil.HashPassword(newPassword)
	if err != nil {
		h.errLog.Log(r, "failed to hash new password", err)
		h.render(w, r, "Failed to change password. Please try again.", "")
		return
	}

	if err := h.userStore.UpdatePassword(r.Context(), user.ID, hash); err != nil {
		h.errLog.Log(r, "failed to update password", err)
		h.render(w, r, "Failed to change password. Please try again.", "")
		return
	}

	h.logger.Info("password changed", zap.String("user_id", user.ID.Hex()))

	http.Redirect(w, r, "/admin/profile?success=1", http.StatusSeeOther)
}

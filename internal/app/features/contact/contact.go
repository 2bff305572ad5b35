// internal/app/features/contact/contact.go
package contact

import (
	"net/http"
	"strings"

	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	errorsfeature "github.com/schoolworks/schoolsite/internal/app/features/errors"
	contactstore "github.com/schoolworks/schoolsite/internal/app/store/contact"
	"github.com/schoolworks/schoolsite/internal/app/system/auth"
	"github.com/schoolworks/schoolsite/internal/app/system/inputval"
	"github.com/schoolworks/schoolsite/internal/app/system/normalize"
	"github.com/schoolworks/schoolsite/internal/app/system/viewdata"
	"github.com/schoolworks/schoolsite/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler provides the contact info editor.
type Handler struct {
	store  *contactstore.Store
	errLog *errorsfeature.ErrorLogger
	logger *zap.Logger
}

// NewHandler creates a new contact Handler.
func NewHandler(db *mongo.Database, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		store:  contactstore.New(db),
		errLog: errLog,
		logger: logger,
	}
}

// EditorVM is the view model for the contact info editor.
type EditorVM struct {
	viewdata.BaseVM
	Contact    *models.ContactInfo
	MapWarning string
	Error      string
	Success    string
}

// Routes returns a chi.Router with contact editor routes mounted.
func Routes(h *Handler, sessionMgr *auth.SessionManager) http.Handler {
	r := chi.NewRouter()
	r.Use(sessionMgr.RequireRole("admin"))
	r.Get("/", h.show)
	r.Post("/", h.save)
	return r
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	msg := ""
	if r.URL.Query().Get("success") == "1" {
		msg = "Contact info saved"
	}
	h.render(w, r, "", msg)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, errMsg, successMsg string) {
	info, err := h.store.Get(r.Context())
	if err != nil {
		h.errLog.Log(r, "failed to load contact info", err)
		info = &models.ContactInfo{}
	}

	vm := EditorVM{
		BaseVM:  viewdata.New(r),
		Contact: info,
		Error:   errMsg,
		Success: successMsg,
	}
	vm.Title = "Contact Info"

	// Saved as-is either way; the public page only embeds known map hosts
	if info.MapURL != "" && !models.IsEmbeddableMapURL(info.MapURL) {
		vm.MapWarning = "This map URL is not from a recognized map provider and will be shown as a plain link on the public page."
	}

	templates.Render(w, r, "contact/edit", vm)
}

func (h *Handler) save(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.errLog.Log(r, "failed to parse form", err)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	input := contactstore.UpdateInput{
		Address: strings.TrimSpace(r.FormValue("address")),
		Email:   normalize.Email(r.FormValue("email")),
		Phone:   strings.TrimSpace(r.FormValue("phone")),
		MapURL:  strings.TrimSpace(r.FormValue("map_url")),
	}

	// A malformed email is the only thing that blocks the save. The map
	// URL is accepted as-is; anything unrecognized just gets the preview
	// warning and renders as a plain link on the public page.
	if input.Email != "" && !inputval.IsValidEmail(input.Email) {
		h.render(w, r, "A valid email address is required.", "")
		return
	}

	if err := h.store.Save(r.Context(), input); err != nil {
		h.errLog.Log(r, "failed to save contact info", err)
		h.render(w, r, "Failed to save contact info. Please try again.", "")
		return
	}

	http.Redirect(w, r, "/admin/contact?success=1", http.StatusSeeOther)
}

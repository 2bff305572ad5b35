// internal/app/features/notices/notices.go
package notices

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	errorsfeature "github.com/schoolworks/schoolsite/internal/app/features/errors"
	noticestore "github.com/schoolworks/schoolsite/internal/app/store/notices"
	"github.com/schoolworks/schoolsite/internal/app/system/auth"
	"github.com/schoolworks/schoolsite/internal/app/system/htmlsanitize"
	"github.com/schoolworks/schoolsite/internal/app/system/inputval"
	"github.com/schoolworks/schoolsite/internal/app/system/viewdata"
	"github.com/schoolworks/schoolsite/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// MaxContentLength is the maximum allowed length for a notice body (100KB).
const MaxContentLength = 100000

// Handler provides the notice board editor.
type Handler struct {
	store  *noticestore.Store
	errLog *errorsfeature.ErrorLogger
	logger *zap.Logger
}

// NewHandler creates a new notices Handler.
func NewHandler(db *mongo.Database, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		store:  noticestore.New(db),
		errLog: errLog,
		logger: logger,
	}
}

// ListVM is the view model for the notice board editor.
type ListVM struct {
	viewdata.BaseVM
	Notices []models.Notice
	Version int64
	Query   string
	Error   string
	Success string
}

// Routes returns a chi.Router with notice editor routes mounted.
func Routes(h *Handler, sessionMgr *auth.SessionManager) http.Handler {
	r := chi.NewRouter()
	r.Use(sessionMgr.RequireRole("admin"))
	r.Get("/", h.list)
	r.Post("/", h.add)
	r.Post("/{id}", h.update)
	r.Post("/{id}/delete", h.remove)
	r.Post("/{id}/toggle-active", h.toggleActive)
	r.Post("/{id}/toggle-important", h.toggleImportant)
	return r
}

// list renders the notice board editor, optionally filtered by ?q=.
func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	msg := ""
	if r.URL.Query().Get("success") == "1" {
		msg = "Changes saved"
	}
	h.render(w, r, "", msg)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, errMsg, successMsg string) {
	board, err := h.store.Load(r.Context())
	if err != nil {
		h.errLog.Log(r, "failed to load notice board", err)
		board = &models.NoticeBoard{}
	}

	vm := ListVM{
		BaseVM:  viewdata.New(r),
		Version: board.Version,
		Query:   r.URL.Query().Get("q"),
		Error:   errMsg,
		Success: successMsg,
	}
	vm.Title = "Notices"

	// Title/content search over the in-memory list; the board is one
	// document, so there is no server-side query to push this into
	query := strings.ToLower(strings.TrimSpace(vm.Query))
	for _, n := range board.Notices {
		if query != "" &&
			!strings.Contains(strings.ToLower(n.Title), query) &&
			!strings.Contains(strings.ToLower(n.Content), query) {
			continue
		}
		vm.Notices = append(vm.Notices, n)
	}

	templates.Render(w, r, "notices/list", vm)
}

// add creates a notice from the add form.
func (h *Handler) add(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.errLog.Log(r, "failed to parse form", err)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	content := r.FormValue("content")

	if title == "" || strings.TrimSpace(content) == "" {
		h.render(w, r, "Title and content are required.", "")
		return
	}
	if len(content) > MaxContentLength {
		h.render(w, r, "Notice content is too long. Maximum length is 100,000 characters.", "")
		return
	}

	_, err := h.store.Add(r.Context(), models.Notice{
		Title:     title,
		Content:   htmlsanitize.Sanitize(content),
		Date:      r.FormValue("date"),
		Important: r.FormValue("important") == "on",
		Active:    r.FormValue("active") == "on",
	})
	if err != nil {
		h.errLog.Log(r, "failed to add notice", err)
		h.render(w, r, "Failed to add notice. Please try again.", "")
		return
	}

	http.Redirect(w, r, "/admin/notices?success=1", http.StatusSeeOther)
}

// update edits a notice.
func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.errLog.Log(r, "failed to parse form", err)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	id := chi.URLParam(r, "id")
	version, ok := inputval.ParseVersion(r.FormValue("version"))
	if !ok {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	content := r.FormValue("content")
	if title == "" || strings.TrimSpace(content) == "" {
		h.render(w, r, "Title and content are required.", "")
		return
	}
	if len(content) > MaxContentLength {
		h.render(w, r, "Notice content is too long. Maximum length is 100,000 characters.", "")
		return
	}

	err := h.store.Update(r.Context(), id, version, noticestore.NoticeUpdate{
		Title:     title,
		Content:   htmlsanitize.Sanitize(content),
		Date:      r.FormValue("date"),
		Important: r.FormValue("important") == "on",
		Active:    r.FormValue("active") == "on",
	})
	if err != nil {
		h.renderStoreError(w, r, err, "update notice")
		return
	}

	http.Redirect(w, r, "/admin/notices?success=1", http.StatusSeeOther)
}

// remove deletes a notice by id.
func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	id, version, ok := h.idAndVersion(w, r)
	if !ok {
		return
	}

	if err := h.store.Delete(r.Context(), id, version); err != nil {
		h.renderStoreError(w, r, err, "delete notice")
		return
	}

	http.Redirect(w, r, "/admin/notices?success=1", http.StatusSeeOther)
}

// toggleActive flips whether a notice shows on the public page.
func (h *Handler) toggleActive(w http.ResponseWriter, r *http.Request) {
	id, version, ok := h.idAndVersion(w, r)
	if !ok {
		return
	}
	active := r.FormValue("active") == "true"

	if err := h.store.SetActive(r.Context(), id, version, active); err != nil {
		h.renderStoreError(w, r, err, "toggle notice visibility")
		return
	}

	http.Redirect(w, r, "/admin/notices?success=1", http.StatusSeeOther)
}

// toggleImportant flips a notice's importance flag.
func (h *Handler) toggleImportant(w http.ResponseWriter, r *http.Request) {
	id, version, ok := h.idAndVersion(w, r)
	if !ok {
		return
	}
	important := r.FormValue("important") == "true"

	if err := h.store.SetImportant(r.Context(), id, version, important); err != nil {
		h.renderStoreError(w, r, err, "toggle notice importance")
		return
	}

	http.Redirect(w, r, "/admin/notices?success=1", http.StatusSeeOther)
}

func (h *Handler) idAndVersion(w http.ResponseWriter, r *http.Request) (string, int64, bool) {
	if err := r.ParseForm(); err != nil {
		h.errLog.Log(r, "failed to parse form", err)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return "", 0, false
	}
	id := chi.URLParam(r, "id")
	version, ok := inputval.ParseVersion(r.FormValue("version"))
	if !ok {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return "", 0, false
	}
	return id, version, true
}

// renderStoreError maps store errors to user-facing messages.
func (h *Handler) renderStoreError(w http.ResponseWriter, r *http.Request, err error, action string) {
	switch {
	case errors.Is(err, noticestore.ErrVersionConflict):
		h.render(w, r, "Someone else changed the notice board while you were editing. Review the latest version below and try again.", "")
	case errors.Is(err, noticestore.ErrNoticeNotFound):
		h.render(w, r, "That notice no longer exists.", "")
	default:
		h.errLog.Log(r, "failed to "+action, err)
		h.render(w, r, "Failed to save changes. Please try again.", "")
	}
}

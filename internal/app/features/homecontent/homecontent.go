// internal/app/features/homecontent/homecontent.go
package homecontent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	errorsfeature "github.com/schoolworks/schoolsite/internal/app/features/errors"
	homecontentstore "github.com/schoolworks/schoolsite/internal/app/store/homecontent"
	"github.com/schoolworks/schoolsite/internal/app/system/auth"
	"github.com/schoolworks/schoolsite/internal/app/system/blobpath"
	"github.com/schoolworks/schoolsite/internal/app/system/htmlsanitize"
	"github.com/schoolworks/schoolsite/internal/app/system/inputval"
	"github.com/schoolworks/schoolsite/internal/app/system/viewdata"
	"github.com/schoolworks/schoolsite/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// MaxSectionLength is the maximum allowed length for a text section (100KB).
const MaxSectionLength = 100000

// maxUploadBytes caps facility image uploads (10MB).
const maxUploadBytes = 10 << 20

// Handler provides the home content editor.
type Handler struct {
	store       *homecontentstore.Store
	fileStorage storage.Store
	errLog      *errorsfeature.ErrorLogger
	logger      *zap.Logger
}

// NewHandler creates a new home content Handler.
func NewHandler(db *mongo.Database, fileStorage storage.Store, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		store:       homecontentstore.New(db),
		fileStorage: fileStorage,
		errLog:      errLog,
		logger:      logger,
	}
}

// facilityForm carries the validated fields of the facility add/edit forms.
type facilityForm struct {
	Name string `validate:"required,max=200" label:"Facility name"`
}

// FacilityRowVM is one facility row in the editor.
type FacilityRowVM struct {
	ID          string
	Name        string
	Description string
	ImageURL    string
	ImageName   string
}

// EditorVM is the view model for the home content editor.
type EditorVM struct {
	viewdata.BaseVM
	Content    *models.HomeContent
	Facilities []FacilityRowVM
	Version    int64
	Error      string
	Success    string
}

// Routes returns a chi.Router with home content editor routes mounted.
// The caller is expected to wrap this with the admin session gate.
func Routes(h *Handler, sessionMgr *auth.SessionManager) http.Handler {
	r := chi.NewRouter()
	r.Use(sessionMgr.RequireRole("admin"))
	r.Get("/", h.show)
	r.Post("/", h.saveText)
	r.Post("/facilities", h.addFacility)
	r.Post("/facilities/{id}", h.updateFacility)
	r.Post("/facilities/{id}/delete", h.deleteFacility)
	return r
}

// show renders the editor form.
func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	msg := ""
	if r.URL.Query().Get("success") == "1" {
		msg = "Changes saved"
	}
	h.render(w, r, "", msg)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, errMsg, successMsg string) {
	hc, err := h.store.Get(r.Context())
	if err != nil {
		h.errLog.Log(r, "failed to load home content", err)
		hc = &models.HomeContent{}
	}

	vm := EditorVM{
		BaseVM:  viewdata.New(r),
		Content: hc,
		Version: hc.Version,
		Error:   errMsg,
		Success: successMsg,
	}
	vm.Title = "Home Content"

	for _, f := range hc.Facilities {
		row := FacilityRowVM{
			ID:          f.ID,
			Name:        f.Name,
			Description: f.Description,
			ImageName:   f.ImageName,
		}
		if f.HasImage() {
			row.ImageURL = h.fileStorage.URL(f.ImagePath)
		}
		vm.Facilities = append(vm.Facilities, row)
	}

	templates.Render(w, r, "homecontent/edit", vm)
}

// saveText saves the four text sections.
func (h *Handler) saveText(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.errLog.Log(r, "failed to parse form", err)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	sections := map[string]string{
		"welcome": r.FormValue("welcome"),
		"mission": r.FormValue("mission"),
		"vision":  r.FormValue("vision"),
		"history": r.FormValue("history"),
	}
	for name, content := range sections {
		if len(content) > MaxSectionLength {
			h.render(w, r, fmt.Sprintf("The %s section is too long. Maximum length is 100,000 characters.", name), "")
			return
		}
	}

	err := h.store.SaveText(r.Context(), homecontentstore.TextUpdate{
		Welcome: htmlsanitize.Sanitize(sections["welcome"]),
		Mission: htmlsanitize.Sanitize(sections["mission"]),
		Vision:  htmlsanitize.Sanitize(sections["vision"]),
		History: htmlsanitize.Sanitize(sections["history"]),
	})
	if err != nil {
		h.errLog.Log(r, "failed to save home content", err)
		h.render(w, r, "Failed to save changes. Please try again.", "")
		return
	}

	http.Redirect(w, r, "/admin/home?success=1", http.StatusSeeOther)
}

// addFacility creates a facility, uploading its image first if one is
// attached. A failed upload aborts before anything is written.
func (h *Handler) addFacility(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		h.errLog.Log(r, "failed to parse form", err)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	if result := inputval.Validate(facilityForm{Name: name}); result.HasErrors() {
		h.render(w, r, result.First(), "")
		return
	}

	facility := models.Facility{
		Name:        name,
		Description: r.FormValue("description"),
	}

	file, header, fileErr := r.FormFile("image")
	if fileErr == nil && header != nil && header.Size > 0 {
		defer file.Close()

		path, err := h.uploadImage(r.Context(), header.Filename, file, header.Header.Get("Content-Type"))
		if err != nil {
			h.logger.Error("facility image upload failed", zap.Error(err))
			h.render(w, r, "Failed to upload image. The facility was not added.", "")
			return
		}
		facility.ImagePath = path
		facility.ImageName = header.Filename
	}

	if _, err := h.store.AddFacility(r.Context(), facility); err != nil {
		h.errLog.Log(r, "failed to add facility", err)
		// The document write failed after the blob went up; drop the blob
		if facility.HasImage() {
			if delErr := h.fileStorage.Delete(r.Context(), facility.ImagePath); delErr != nil {
				h.logger.Error("orphaned facility image after failed add",
					zap.String("path", facility.ImagePath), zap.Error(delErr))
			}
		}
		h.render(w, r, "Failed to add facility. Please try again.", "")
		return
	}

	http.Redirect(w, r, "/admin/home?success=1", http.StatusSeeOther)
}

// updateFacility edits a facility's text and optionally replaces its image.
func (h *Handler) updateFacility(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
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

	name := strings.TrimSpace(r.FormValue("name"))
	if result := inputval.Validate(facilityForm{Name: name}); result.HasErrors() {
		h.render(w, r, result.First(), "")
		return
	}

	upd := homecontentstore.FacilityUpdate{
		Name:        name,
		Description: r.FormValue("description"),
	}

	// A replacement image uploads before the write; the superseded blob is
	// removed only after the write succeeds.
	var oldPath string
	file, header, fileErr := r.FormFile("image")
	if fileErr == nil && header != nil && header.Size > 0 {
		defer file.Close()

		if current, err := h.store.Get(r.Context()); err == nil {
			for _, f := range current.Facilities {
				if f.ID == id {
					oldPath = f.ImagePath
					break
				}
			}
		}

		path, err := h.uploadImage(r.Context(), header.Filename, file, header.Header.Get("Content-Type"))
		if err != nil {
			h.logger.Error("facility image upload failed", zap.Error(err))
			h.render(w, r, "Failed to upload image. The facility was not changed.", "")
			return
		}
		upd.SetImage = true
		upd.ImagePath = path
		upd.ImageName = header.Filename
	}

	if err := h.store.UpdateFacility(r.Context(), id, version, upd); err != nil {
		// The new blob has no record pointing at it; drop it
		if upd.SetImage {
			if delErr := h.fileStorage.Delete(r.Context(), upd.ImagePath); delErr != nil {
				h.logger.Error("orphaned facility image after failed update",
					zap.String("path", upd.ImagePath), zap.Error(delErr))
			}
		}
		h.renderStoreError(w, r, err, "update facility")
		return
	}

	if upd.SetImage && oldPath != "" {
		if err := h.fileStorage.Delete(r.Context(), oldPath); err != nil {
			h.logger.Warn("failed to delete superseded facility image",
				zap.String("path", oldPath), zap.Error(err))
		}
	}

	http.Redirect(w, r, "/admin/home?success=1", http.StatusSeeOther)
}

// deleteFacility removes a facility and cleans up its image blob.
func (h *Handler) deleteFacility(w http.ResponseWriter, r *http.Request) {
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

	var imagePath string
	if current, err := h.store.Get(r.Context()); err == nil {
		for _, f := range current.Facilities {
			if f.ID == id {
				imagePath = f.ImagePath
				break
			}
		}
	}

	if err := h.store.DeleteFacility(r.Context(), id, version); err != nil {
		h.renderStoreError(w, r, err, "delete facility")
		return
	}

	if imagePath != "" {
		if err := h.fileStorage.Delete(r.Context(), imagePath); err != nil {
			h.logger.Warn("failed to delete facility image blob",
				zap.String("path", imagePath), zap.Error(err))
		}
	}

	http.Redirect(w, r, "/admin/home?success=1", http.StatusSeeOther)
}

// renderStoreError maps store errors to user-facing messages.
func (h *Handler) renderStoreError(w http.ResponseWriter, r *http.Request, err error, action string) {
	switch {
	case errors.Is(err, homecontentstore.ErrVersionConflict):
		h.render(w, r, "Someone else changed the home content while you were editing. Review the latest version below and try again.", "")
	case errors.Is(err, homecontentstore.ErrFacilityNotFound):
		h.render(w, r, "That facility no longer exists.", "")
	default:
		h.errLog.Log(r, "failed to "+action, err)
		h.render(w, r, "Failed to save changes. Please try again.", "")
	}
}

// uploadImage stores a facility image with a unique path and returns the storage path.
func (h *Handler) uploadImage(ctx context.Context, filename string, file io.Reader, contentType string) (string, error) {
	path := blobpath.For("facilities", filename)

	opts := &storage.PutOptions{
		ContentType: contentType,
	}
	if err := h.fileStorage.Put(ctx, path, file, opts); err != nil {
		return "", fmt.Errorf("failed to upload facility image: %w", err)
	}

	return path, nil
}

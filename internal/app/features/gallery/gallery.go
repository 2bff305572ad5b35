// internal/app/features/gallery/gallery.go
package gallery

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	errorsfeature "github.com/schoolworks/schoolsite/internal/app/features/errors"
	gallerystore "github.com/schoolworks/schoolsite/internal/app/store/gallery"
	"github.com/schoolworks/schoolsite/internal/app/system/auth"
	"github.com/schoolworks/schoolsite/internal/app/system/viewdata"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// maxUploadBytes caps a single gallery upload at 10MB.
const maxUploadBytes = 10 << 20

// Handler provides the gallery manager.
type Handler struct {
	store       *gallerystore.Store
	fileStorage storage.Store
	errLog      *errorsfeature.ErrorLogger
	logger      *zap.Logger
}

// NewHandler creates a new gallery Handler.
func NewHandler(store *gallerystore.Store, fileStorage storage.Store, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		store:       store,
		fileStorage: fileStorage,
		errLog:      errLog,
		logger:      logger,
	}
}

// ImageVM is one gallery image row.
type ImageVM struct {
	ID         string
	Name       string
	URL        string
	Size       int64
	UploadedAt time.Time
}

// ListVM is the view model for the gallery manager.
type ListVM struct {
	viewdata.BaseVM
	Images  []ImageVM
	Error   string
	Warning string
	Success string
}

// Routes returns a chi.Router with gallery manager routes mounted.
func Routes(h *Handler, sessionMgr *auth.SessionManager) http.Handler {
	r := chi.NewRouter()
	r.Use(sessionMgr.RequireRole("admin"))
	r.Get("/", h.list)
	r.Post("/", h.upload)
	r.Post("/{id}/delete", h.remove)
	return r
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	msg := ""
	if r.URL.Query().Get("success") == "1" {
		msg = "Gallery updated"
	}
	h.render(w, r, "", "", msg)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, errMsg, warnMsg, successMsg string) {
	images, err := h.store.List(r.Context())
	if err != nil {
		h.errLog.Log(r, "failed to list gallery images", err)
		if errMsg == "" {
			errMsg = "Failed to load the gallery."
		}
	}

	vm := ListVM{
		BaseVM:  viewdata.New(r),
		Error:   errMsg,
		Warning: warnMsg,
		Success: successMsg,
	}
	vm.Title = "Gallery"

	for _, img := range images {
		vm.Images = append(vm.Images, ImageVM{
			ID:         img.ID.Hex(),
			Name:       img.ImageName,
			URL:        h.fileStorage.URL(img.StoragePath),
			Size:       img.Size,
			UploadedAt: img.UploadedAt,
		})
	}

	templates.Render(w, r, "gallery/list", vm)
}

func (h *Handler) upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		h.render(w, r, "The upload is too large. Maximum size is 10MB.", "", "")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		h.render(w, r, "Choose an image to upload.", "", "")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		h.render(w, r, "Only image files can be added to the gallery.", "", "")
		return
	}

	if _, err := h.store.Create(r.Context(), header.Filename, contentType, header.Size, file); err != nil {
		h.errLog.Log(r, "failed to upload gallery image", err)
		h.render(w, r, "Failed to upload the image. Please try again.", "", "")
		return
	}

	http.Redirect(w, r, "/admin/gallery?success=1", http.StatusSeeOther)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	err = h.store.Delete(r.Context(), id)
	switch {
	case err == nil:
		http.Redirect(w, r, "/admin/gallery?success=1", http.StatusSeeOther)
	case errors.Is(err, gallerystore.ErrNotFound):
		h.render(w, r, "That image no longer exists.", "", "")
	case errors.Is(err, gallerystore.ErrBlobOrphaned):
		// The record is gone, so the public page is already fixed
		h.errLog.Log(r, "gallery image file left behind", err)
		h.render(w, r, "", "The image was removed from the gallery, but its file could not be deleted from storage.", "")
	default:
		h.errLog.Log(r, "failed to delete gallery image", err)
		h.render(w, r, "Failed to delete the image. Please try again.", "", "")
	}
}

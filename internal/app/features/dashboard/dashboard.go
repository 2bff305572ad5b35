// internal/app/features/dashboard/dashboard.go
package dashboard

import (
	"net/http"

	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	gallerystore "github.com/schoolworks/schoolsite/internal/app/store/gallery"
	noticestore "github.com/schoolworks/schoolsite/internal/app/store/notices"
	"github.com/schoolworks/schoolsite/internal/app/system/auth"
	"github.com/schoolworks/schoolsite/internal/app/system/viewdata"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler provides the admin console landing page.
type Handler struct {
	noticeStore  *noticestore.Store
	galleryStore *gallerystore.Store
	logger       *zap.Logger
}

// NewHandler creates a new dashboard Handler.
func NewHandler(db *mongo.Database, galleryStore *gallerystore.Store, logger *zap.Logger) *Handler {
	return &Handler{
		noticeStore:  noticestore.New(db),
		galleryStore: galleryStore,
		logger:       logger,
	}
}

// DashboardVM is the view model for the admin dashboard.
type DashboardVM struct {
	viewdata.BaseVM
	NoticeCount       int
	ActiveNoticeCount int
	GalleryCount      int
}

// Routes returns a chi.Router with dashboard routes mounted.
func Routes(h *Handler, sessionMgr *auth.SessionManager) http.Handler {
	r := chi.NewRouter()
	r.Use(sessionMgr.RequireRole("admin"))
	r.Get("/", h.showDashboard)
	return r
}

// showDashboard displays the admin console landing page with content counts.
func (h *Handler) showDashboard(w http.ResponseWriter, r *http.Request) {
	vm := DashboardVM{
		BaseVM: viewdata.New(r),
	}
	vm.Title = "Admin Dashboard"

	if board, err := h.noticeStore.Load(r.Context()); err != nil {
		h.logger.Warn("failed to load notices for dashboard", zap.Error(err))
	} else {
		vm.NoticeCount = len(board.Notices)
		for _, n := range board.Notices {
			if n.Active {
				vm.ActiveNoticeCount++
			}
		}
	}

	if images, err := h.galleryStore.List(r.Context()); err != nil {
		h.logger.Warn("failed to load gallery for dashboard", zap.Error(err))
	} else {
		vm.GalleryCount = len(images)
	}

	templates.Render(w, r, "dashboard/index", vm)
}

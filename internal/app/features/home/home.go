// internal/app/features/home/home.go
package home

import (
	"html/template"
	"net/http"

	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	contactstore "github.com/schoolworks/schoolsite/internal/app/store/contact"
	gallerystore "github.com/schoolworks/schoolsite/internal/app/store/gallery"
	homecontentstore "github.com/schoolworks/schoolsite/internal/app/store/homecontent"
	noticestore "github.com/schoolworks/schoolsite/internal/app/store/notices"
	"github.com/schoolworks/schoolsite/internal/app/system/htmlsanitize"
	"github.com/schoolworks/schoolsite/internal/app/system/viewdata"
	"github.com/schoolworks/schoolsite/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler provides the public home page.
type Handler struct {
	homeStore    *homecontentstore.Store
	noticeStore  *noticestore.Store
	contactStore *contactstore.Store
	galleryStore *gallerystore.Store
	fileStorage  storage.Store
	logger       *zap.Logger
}

// NewHandler creates a new home Handler.
func NewHandler(db *mongo.Database, fileStorage storage.Store, logger *zap.Logger) *Handler {
	return &Handler{
		homeStore:    homecontentstore.New(db),
		noticeStore:  noticestore.New(db),
		contactStore: contactstore.New(db),
		galleryStore: gallerystore.New(db, fileStorage, logger),
		fileStorage:  fileStorage,
		logger:       logger,
	}
}

// FacilityVM is a facility card on the home page.
type FacilityVM struct {
	Name        string
	Description string
	ImageURL    string
}

// NoticeVM is a notice entry on the home page.
type NoticeVM struct {
	Title     string
	Content   template.HTML
	Date      string
	Important bool
}

// GalleryImageVM is one gallery image in the marquee.
type GalleryImageVM struct {
	URL  string
	Name string
}

// HomeVM is the view model for the public home page.
type HomeVM struct {
	viewdata.BaseVM
	Welcome template.HTML
	Mission template.HTML
	Vision  template.HTML
	History template.HTML

	Facilities []FacilityVM
	Notices    []NoticeVM
	Gallery    []GalleryImageVM

	Contact    *models.ContactInfo
	ShowMap    bool
	MapURL     template.URL
	HasNotices bool
}

// Routes returns a chi.Router with home routes mounted.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.Index)
	return r
}

// Index renders the public home page: welcome text, notices, facilities,
// gallery, and contact details in one server-rendered page. Each content
// source degrades independently so one failed read never blanks the page.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	vm := HomeVM{
		BaseVM: viewdata.New(r),
	}
	vm.Title = "Home"

	hc, err := h.homeStore.Get(ctx)
	if err != nil {
		h.logger.Warn("failed to load home content", zap.Error(err))
		hc = &models.HomeContent{Welcome: models.DefaultWelcome}
	}
	vm.Welcome = htmlsanitize.PrepareForDisplay(hc.Welcome)
	vm.Mission = htmlsanitize.PrepareForDisplay(hc.Mission)
	vm.Vision = htmlsanitize.PrepareForDisplay(hc.Vision)
	vm.History = htmlsanitize.PrepareForDisplay(hc.History)

	for _, f := range hc.Facilities {
		fvm := FacilityVM{
			Name:        f.Name,
			Description: f.Description,
		}
		if f.HasImage() {
			fvm.ImageURL = h.fileStorage.URL(f.ImagePath)
		}
		vm.Facilities = append(vm.Facilities, fvm)
	}

	board, err := h.noticeStore.Load(ctx)
	if err != nil {
		h.logger.Warn("failed to load notices", zap.Error(err))
	} else {
		// Only active notices are public; important ones float to the top
		var important, regular []NoticeVM
		for _, n := range board.Notices {
			if !n.Active {
				continue
			}
			nvm := NoticeVM{
				Title:     n.Title,
				Content:   htmlsanitize.PrepareForDisplay(n.Content),
				Date:      n.Date,
				Important: n.Important,
			}
			if n.Important {
				important = append(important, nvm)
			} else {
				regular = append(regular, nvm)
			}
		}
		vm.Notices = append(important, regular...)
		vm.HasNotices = len(vm.Notices) > 0
	}

	images, err := h.galleryStore.List(ctx)
	if err != nil {
		h.logger.Warn("failed to load gallery", zap.Error(err))
	} else {
		for _, img := range images {
			vm.Gallery = append(vm.Gallery, GalleryImageVM{
				URL:  h.fileStorage.URL(img.StoragePath),
				Name: img.ImageName,
			})
		}
	}

	ci, err := h.contactStore.Get(ctx)
	if err != nil {
		h.logger.Warn("failed to load contact info", zap.Error(err))
		ci = &models.ContactInfo{}
	}
	vm.Contact = ci
	// Only frame-safe map URLs are embedded on the public page
	if ci.MapURL != "" && models.IsEmbeddableMapURL(ci.MapURL) {
		vm.ShowMap = true
		vm.MapURL = template.URL(ci.MapURL)
	}

	templates.Render(w, r, "home/index", vm)
}

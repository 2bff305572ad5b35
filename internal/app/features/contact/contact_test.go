package contact

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	errorsfeature "github.com/schoolworks/schoolsite/internal/app/features/errors"
	contactstore "github.com/schoolworks/schoolsite/internal/app/store/contact"
	"github.com/schoolworks/schoolsite/internal/app/system/auth"
	"github.com/schoolworks/schoolsite/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*Handler, *mongo.Database, *contactstore.Store) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()

	handler := NewHandler(db, errorsfeature.NewErrorLogger(logger), logger)

	return handler, db, contactstore.New(db)
}

func TestNewHandler(t *testing.T) {
	h, _, _ := newTestHandler(t)
	if h == nil {
		t.Fatal("NewHandler() returned nil")
	}
}

func TestRoutes(t *testing.T) {
	h, _, _ := newTestHandler(t)
	logger := zap.NewNop()

	sessionMgr, err := auth.NewSessionManager(
		"test-session-key-for-testing-1234567890",
		"test-session",
		"",
		24*time.Hour,
		false,
		logger,
	)
	if err != nil {
		t.Fatalf("failed to create session manager: %v", err)
	}

	router := Routes(h, sessionMgr)
	if router == nil {
		t.Fatal("Routes() returned nil")
	}
}

func TestShow_Empty(t *testing.T) {
	testutil.MustBootTemplates(t)
	h, _, _ := newTestHandler(t)

	req := testutil.NewAuthenticatedRequestWithCSRF(http.MethodGet, "/admin/contact", testutil.AdminUser())
	rec := httptest.NewRecorder()

	h.show(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestSave_Success(t *testing.T) {
	h, _, store := newTestHandler(t)

	form := url.Values{}
	form.Set("address", "12 School Lane")
	form.Set("email", "Office@School.Test")
	form.Set("phone", "+1 555 0100")
	form.Set("map_url", "https://www.google.com/maps/embed?pb=abc")

	req := httptest.NewRequest(http.MethodPost, "/admin/contact", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req = testutil.WithUser(req, testutil.AdminUser())
	req = testutil.WithCSRFToken(req)
	rec := httptest.NewRecorder()

	h.save(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}

	ctx, cancel := testutil.TestContext()
	defer cancel()

	info, err := store.Get(ctx)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if info.Address != "12 School Lane" {
		t.Errorf("Address = %q", info.Address)
	}
	if info.Email != "office@school.test" {
		t.Errorf("email should be lowercased, got %q", info.Email)
	}
	if info.Phone != "+1 555 0100" {
		t.Errorf("Phone = %q", info.Phone)
	}
}

func TestSave_UnrecognizedMapURLStillSaves(t *testing.T) {
	testutil.MustBootTemplates(t)
	h, _, store := newTestHandler(t)

	form := url.Values{}
	form.Set("address", "12 School Lane")
	form.Set("map_url", "our campus, behind the library")

	req := httptest.NewRequest(http.MethodPost, "/admin/contact", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req = testutil.WithUser(req, testutil.AdminUser())
	req = testutil.WithCSRFToken(req)
	rec := httptest.NewRecorder()

	h.save(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}

	ctx, cancel := testutil.TestContext()
	defer cancel()

	info, err := store.Get(ctx)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if info.MapURL != "our campus, behind the library" {
		t.Errorf("MapURL = %q, want the submitted value saved as-is", info.MapURL)
	}

	// The editor warns about it but the save went through
	showReq := testutil.NewAuthenticatedRequestWithCSRF(http.MethodGet, "/admin/contact", testutil.AdminUser())
	showRec := httptest.NewRecorder()
	h.show(showRec, showReq)
	if !strings.Contains(showRec.Body.String(), "not from a recognized map provider") {
		t.Error("expected a warning about the unrecognized map URL")
	}
}

func TestSave_SchemelessEmbedURLSaves(t *testing.T) {
	h, _, store := newTestHandler(t)

	form := url.Values{}
	form.Set("map_url", "www.google.com/maps/embed?pb=abc")

	req := httptest.NewRequest(http.MethodPost, "/admin/contact", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req = testutil.WithUser(req, testutil.AdminUser())
	req = testutil.WithCSRFToken(req)
	rec := httptest.NewRecorder()

	h.save(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}

	ctx, cancel := testutil.TestContext()
	defer cancel()

	info, err := store.Get(ctx)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if info.MapURL != "www.google.com/maps/embed?pb=abc" {
		t.Errorf("MapURL = %q", info.MapURL)
	}
}

func TestShow_MapWarningForUnknownHost(t *testing.T) {
	testutil.MustBootTemplates(t)
	h, _, store := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	err := store.Save(ctx, contactstore.UpdateInput{
		Address: "12 School Lane",
		MapURL:  "https://example.com/not-a-map",
	})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	req := testutil.NewAuthenticatedRequestWithCSRF(http.MethodGet, "/admin/contact", testutil.AdminUser())
	rec := httptest.NewRecorder()

	h.show(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), "not from a recognized map provider") {
		t.Error("expected a warning about the unrecognized map URL")
	}
}

func TestShow_NoWarningForGoogleMaps(t *testing.T) {
	testutil.MustBootTemplates(t)
	h, _, store := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	err := store.Save(ctx, contactstore.UpdateInput{
		MapURL: "https://www.google.com/maps/embed?pb=abc",
	})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	req := testutil.NewAuthenticatedRequestWithCSRF(http.MethodGet, "/admin/contact", testutil.AdminUser())
	rec := httptest.NewRecorder()

	h.show(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if strings.Contains(rec.Body.String(), "not from a recognized map provider") {
		t.Error("embeddable map URL should not trigger a warning")
	}
}

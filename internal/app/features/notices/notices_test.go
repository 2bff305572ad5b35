package notices

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	errorsfeature "github.com/schoolworks/schoolsite/internal/app/features/errors"
	noticestore "github.com/schoolworks/schoolsite/internal/app/store/notices"
	"github.com/schoolworks/schoolsite/internal/app/system/auth"
	"github.com/schoolworks/schoolsite/internal/domain/models"
	"github.com/schoolworks/schoolsite/internal/testutil"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*Handler, *mongo.Database, *noticestore.Store) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()

	handler := NewHandler(db, errorsfeature.NewErrorLogger(logger), logger)

	return handler, db, noticestore.New(db)
}

func postForm(target string, form url.Values, user testutil.TestUser) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req = testutil.WithUser(req, user)
	return testutil.WithCSRFToken(req)
}

func withNoticeID(req *http.Request, id string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
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

func TestList(t *testing.T) {
	testutil.MustBootTemplates(t)
	h, _, _ := newTestHandler(t)

	req := testutil.NewAuthenticatedRequestWithCSRF(http.MethodGet, "/admin/notices", testutil.AdminUser())
	rec := httptest.NewRecorder()

	h.list(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestAdd_Success(t *testing.T) {
	h, _, store := newTestHandler(t)

	form := url.Values{}
	form.Set("title", "Sports Day")
	form.Set("content", "<p>Annual sports day on the main ground.</p>")
	form.Set("date", "2026-09-15")
	form.Set("important", "on")
	form.Set("active", "on")

	req := postForm("/admin/notices", form, testutil.AdminUser())
	rec := httptest.NewRecorder()

	h.add(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}

	ctx, cancel := testutil.TestContext()
	defer cancel()

	board, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(board.Notices) != 1 {
		t.Fatalf("notices = %d, want 1", len(board.Notices))
	}
	n := board.Notices[0]
	if n.Title != "Sports Day" {
		t.Errorf("Title = %q", n.Title)
	}
	if !n.Important {
		t.Error("Important should be true")
	}
	if !n.Active {
		t.Error("Active should be true")
	}
	if n.ID == "" {
		t.Error("notice should have been assigned an id")
	}
}

func TestAdd_UncheckedFlagsStayFalse(t *testing.T) {
	h, _, store := newTestHandler(t)

	form := url.Values{}
	form.Set("title", "Draft Notice")
	form.Set("content", "Not ready to publish yet")

	req := postForm("/admin/notices", form, testutil.AdminUser())
	rec := httptest.NewRecorder()

	h.add(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}

	ctx, cancel := testutil.TestContext()
	defer cancel()

	board, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(board.Notices) != 1 {
		t.Fatalf("notices = %d, want 1", len(board.Notices))
	}
	n := board.Notices[0]
	if n.Active {
		t.Error("Active should be false when the box is unchecked")
	}
	if n.Important {
		t.Error("Important should be false when the box is unchecked")
	}
}

func TestAdd_SanitizesContent(t *testing.T) {
	h, _, store := newTestHandler(t)

	form := url.Values{}
	form.Set("title", "Exam Schedule")
	form.Set("content", `<p>Exams start Monday.</p><script>alert("x")</script>`)

	req := postForm("/admin/notices", form, testutil.AdminUser())
	rec := httptest.NewRecorder()

	h.add(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}

	ctx, cancel := testutil.TestContext()
	defer cancel()

	board, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if strings.Contains(board.Notices[0].Content, "<script>") {
		t.Errorf("content not sanitized: %q", board.Notices[0].Content)
	}
}

func TestAdd_MissingTitle(t *testing.T) {
	testutil.MustBootTemplates(t)
	h, _, store := newTestHandler(t)

	form := url.Values{}
	form.Set("content", "Body without a title")

	req := postForm("/admin/notices", form, testutil.AdminUser())
	rec := httptest.NewRecorder()

	h.add(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want re-rendered form (%d)", rec.Code, http.StatusOK)
	}

	ctx, cancel := testutil.TestContext()
	defer cancel()

	board, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(board.Notices) != 0 {
		t.Errorf("notices = %d, want 0", len(board.Notices))
	}
}

func TestUpdate_Success(t *testing.T) {
	h, _, store := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	added, err := store.Add(ctx, models.Notice{Title: "Old Title", Content: "Old body", Active: true})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	form := url.Values{}
	form.Set("version", "1")
	form.Set("title", "New Title")
	form.Set("content", "New body")
	form.Set("active", "on")

	req := withNoticeID(postForm("/admin/notices/"+added.ID, form, testutil.AdminUser()), added.ID)
	rec := httptest.NewRecorder()

	h.update(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d, body: %s", rec.Code, http.StatusSeeOther, rec.Body.String())
	}

	board, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if board.Notices[0].Title != "New Title" {
		t.Errorf("Title = %q, want %q", board.Notices[0].Title, "New Title")
	}
}

func TestUpdate_StaleVersion(t *testing.T) {
	testutil.MustBootTemplates(t)
	h, _, store := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	added, err := store.Add(ctx, models.Notice{Title: "Title", Content: "Body", Active: true})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	form := url.Values{}
	form.Set("version", "99")
	form.Set("title", "New Title")
	form.Set("content", "New body")

	req := withNoticeID(postForm("/admin/notices/"+added.ID, form, testutil.AdminUser()), added.ID)
	rec := httptest.NewRecorder()

	h.update(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want re-rendered form (%d)", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), "Someone else changed") {
		t.Error("expected a version conflict message in the response")
	}

	board, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if board.Notices[0].Title != "Title" {
		t.Errorf("stale update should not change the notice, got %q", board.Notices[0].Title)
	}
}

func TestRemove(t *testing.T) {
	h, _, store := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	added, err := store.Add(ctx, models.Notice{Title: "Doomed", Content: "Body", Active: true})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	form := url.Values{}
	form.Set("version", "1")

	req := withNoticeID(postForm("/admin/notices/"+added.ID+"/delete", form, testutil.AdminUser()), added.ID)
	rec := httptest.NewRecorder()

	h.remove(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}

	board, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(board.Notices) != 0 {
		t.Errorf("notices = %d, want 0", len(board.Notices))
	}
}

func TestToggleActive(t *testing.T) {
	h, _, store := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	added, err := store.Add(ctx, models.Notice{Title: "Title", Content: "Body", Active: true})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	form := url.Values{}
	form.Set("version", "1")
	form.Set("active", "false")

	req := withNoticeID(postForm("/admin/notices/"+added.ID+"/toggle-active", form, testutil.AdminUser()), added.ID)
	rec := httptest.NewRecorder()

	h.toggleActive(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}

	board, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if board.Notices[0].Active {
		t.Error("notice should have been hidden")
	}
}

func TestToggleImportant(t *testing.T) {
	h, _, store := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	added, err := store.Add(ctx, models.Notice{Title: "Title", Content: "Body", Active: true})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	form := url.Values{}
	form.Set("version", "1")
	form.Set("important", "true")

	req := withNoticeID(postForm("/admin/notices/"+added.ID+"/toggle-important", form, testutil.AdminUser()), added.ID)
	rec := httptest.NewRecorder()

	h.toggleImportant(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}

	board, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !board.Notices[0].Important {
		t.Error("notice should have been marked important")
	}
}

func TestList_SearchFilter(t *testing.T) {
	testutil.MustBootTemplates(t)
	h, _, store := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Add(ctx, models.Notice{Title: "Holiday Notice", Content: "School closed Friday", Active: true}); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if _, err := store.Add(ctx, models.Notice{Title: "Exam Schedule", Content: "Finals next month", Active: true}); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	req := testutil.NewAuthenticatedRequestWithCSRF(http.MethodGet, "/admin/notices?q=holiday", testutil.AdminUser())
	rec := httptest.NewRecorder()

	h.list(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Holiday Notice") {
		t.Error("matching notice missing from filtered list")
	}
	if strings.Contains(body, "Exam Schedule") {
		t.Error("non-matching notice should be filtered out")
	}
}

package noticestore

import (
	"errors"
	"testing"
	"time"

	"github.com/schoolworks/schoolsite/internal/domain/models"
	"github.com/schoolworks/schoolsite/internal/testutil"
)

func TestStore_Load_CreatesEmptyBoard(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	board, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if board.ID != models.NoticeBoardID {
		t.Errorf("Load() ID = %q, want %q", board.ID, models.NoticeBoardID)
	}
	if len(board.Notices) != 0 {
		t.Errorf("Load() Notices = %d entries, want 0", len(board.Notices))
	}
	if board.Version != 0 {
		t.Errorf("Load() Version = %d, want 0", board.Version)
	}

	// Load is idempotent: a second call must not reset anything
	if _, err := store.Add(ctx, models.Notice{Title: "Holiday", Content: "School closed", Active: true}); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	board, err = store.Load(ctx)
	if err != nil {
		t.Fatalf("Load() second error = %v", err)
	}
	if len(board.Notices) != 1 {
		t.Errorf("Load() after Add = %d notices, want 1", len(board.Notices))
	}
}

func TestStore_Add(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	added, err := store.Add(ctx, models.Notice{
		Title:     "Sports Day",
		Content:   "Annual sports day on the main ground",
		Date:      "2026-03-14",
		Important: true,
		Active:    true,
	})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if added.ID == "" {
		t.Error("Add() should assign an id")
	}
	if added.CreatedAt.IsZero() {
		t.Error("Add() should stamp CreatedAt")
	}
	if added.Date != "2026-03-14" {
		t.Errorf("Add() Date = %q, want unchanged valid date", added.Date)
	}

	board, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(board.Notices) != 1 {
		t.Fatalf("Notices = %d entries, want 1", len(board.Notices))
	}
	n := board.Notices[0]
	if n.Title != "Sports Day" || !n.Important || !n.Active {
		t.Errorf("stored notice = %+v, fields did not round-trip", n)
	}
	if board.Version != 1 {
		t.Errorf("Version = %d, want 1 after add", board.Version)
	}
}

func TestStore_Add_NormalizesBadDate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	added, err := store.Add(ctx, models.Notice{Title: "Exam", Content: "Schedule", Date: "not-a-date"})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	today := time.Now().UTC().Format(models.NoticeDateLayout)
	if added.Date != today {
		t.Errorf("Add() Date = %q, want today %q for invalid input", added.Date, today)
	}
}

func TestStore_Update(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	added, err := store.Add(ctx, models.Notice{Title: "Fees", Content: "Due this week", Date: "2026-02-01", Active: true})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	board, _ := store.Load(ctx)

	err = store.Update(ctx, added.ID, board.Version, NoticeUpdate{
		Title:     "Fees extended",
		Content:   "Due next week",
		Date:      "2026-02-08",
		Important: true,
		Active:    true,
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	board, _ = store.Load(ctx)
	n := board.Notices[0]
	if n.Title != "Fees extended" || n.Content != "Due next week" || n.Date != "2026-02-08" || !n.Important {
		t.Errorf("updated notice = %+v, patch did not apply", n)
	}
	if n.ID != added.ID {
		t.Errorf("notice ID changed on update: %q -> %q", added.ID, n.ID)
	}
}

func TestStore_Update_StaleVersion(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	added, err := store.Add(ctx, models.Notice{Title: "Original", Content: "Body", Active: true})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	board, _ := store.Load(ctx)

	// Another session adds a notice, bumping the version
	if _, err := store.Add(ctx, models.Notice{Title: "Other", Content: "Body"}); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	err = store.Update(ctx, added.ID, board.Version, NoticeUpdate{Title: "Stale edit", Content: "Body"})
	if !errors.Is(err, ErrVersionConflict) {
		t.Errorf("Update() error = %v, want ErrVersionConflict", err)
	}

	current, _ := store.Load(ctx)
	for _, n := range current.Notices {
		if n.Title == "Stale edit" {
			t.Error("stale edit should not have been written")
		}
	}
}

func TestStore_Update_MissingNotice(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	board, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	err = store.Update(ctx, "no-such-id", board.Version, NoticeUpdate{Title: "X", Content: "Y"})
	if !errors.Is(err, ErrNoticeNotFound) {
		t.Errorf("Update() error = %v, want ErrNoticeNotFound", err)
	}
}

func TestStore_Delete_ByIDOnly(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// Two notices with identical fields but distinct ids
	a, err := store.Add(ctx, models.Notice{Title: "Twin", Content: "Same body", Date: "2026-01-01"})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	b, err := store.Add(ctx, models.Notice{Title: "Twin", Content: "Same body", Date: "2026-01-01"})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if a.ID == b.ID {
		t.Fatalf("Add() assigned duplicate id %q", a.ID)
	}
	board, _ := store.Load(ctx)

	if err := store.Delete(ctx, a.ID, board.Version); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	current, _ := store.Load(ctx)
	if len(current.Notices) != 1 {
		t.Fatalf("Notices = %d entries, want 1 (only the addressed id removed)", len(current.Notices))
	}
	if current.Notices[0].ID != b.ID {
		t.Error("Delete() removed the wrong notice")
	}
}

func TestStore_SetActive(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	added, err := store.Add(ctx, models.Notice{Title: "Visible", Content: "Body", Active: true})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	board, _ := store.Load(ctx)

	if err := store.SetActive(ctx, added.ID, board.Version, false); err != nil {
		t.Fatalf("SetActive() error = %v", err)
	}

	board, _ = store.Load(ctx)
	if board.Notices[0].Active {
		t.Error("SetActive(false) did not hide the notice")
	}

	if err := store.SetActive(ctx, added.ID, board.Version, true); err != nil {
		t.Fatalf("SetActive() error = %v", err)
	}
	board, _ = store.Load(ctx)
	if !board.Notices[0].Active {
		t.Error("SetActive(true) did not restore the notice")
	}
}

func TestStore_SetImportant(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	added, err := store.Add(ctx, models.Notice{Title: "Plain", Content: "Body", Active: true})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	board, _ := store.Load(ctx)

	if err := store.SetImportant(ctx, added.ID, board.Version, true); err != nil {
		t.Fatalf("SetImportant() error = %v", err)
	}

	board, _ = store.Load(ctx)
	if !board.Notices[0].Important {
		t.Error("SetImportant(true) did not mark the notice")
	}

	// Other fields are untouched by the targeted toggle
	if board.Notices[0].Title != "Plain" || !board.Notices[0].Active {
		t.Errorf("toggle clobbered other fields: %+v", board.Notices[0])
	}
}

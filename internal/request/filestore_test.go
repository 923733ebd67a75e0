package request

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func testRecord(userID string) Pending {
	return Pending{
		UserID:            userID,
		Username:          userID,
		ChannelID:         "ticket-" + userID,
		Language:          "en",
		Summary:           "summary for " + userID,
		Status:            StatusPending,
		ApprovalChannelID: "approvals",
		ApprovalMessageID: "appr-" + userID,
		SubmittedAt:       time.Now().UTC().Truncate(time.Second),
	}
}

func openTestStore(t *testing.T, path string) *FileStore {
	t.Helper()
	s, err := OpenFileStore(path)
	if err != nil {
		t.Fatalf("OpenFileStore: %v", err)
	}
	return s
}

func TestCreateRejectsDuplicate(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, filepath.Join(t.TempDir(), "requests.json"))

	if err := s.Create(ctx, testRecord("u1")); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if err := s.Create(ctx, testRecord("u1")); !errors.Is(err, ErrExists) {
		t.Fatalf("duplicate create = %v, want ErrExists", err)
	}
}

func TestStoreSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "requests.json")

	s := openTestStore(t, path)
	rec := testRecord("u1")
	rec.Status = StatusApproved
	rec.ConfirmMessageID = "confirm-1"
	if err := s.Create(ctx, rec); err != nil {
		t.Fatalf("create: %v", err)
	}

	reopened := openTestStore(t, path)
	got, ok := reopened.Get(ctx, "u1")
	if !ok {
		t.Fatal("record lost across restart")
	}
	if got.Status != StatusApproved || got.ConfirmMessageID != "confirm-1" {
		t.Errorf("reloaded record = %+v", got)
	}
	if !got.SubmittedAt.Equal(rec.SubmittedAt) {
		t.Errorf("submitted at = %v, want %v", got.SubmittedAt, rec.SubmittedAt)
	}
}

func TestTakeRemovesExactlyOnce(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "requests.json")
	s := openTestStore(t, path)
	if err := s.Create(ctx, testRecord("u1")); err != nil {
		t.Fatalf("create: %v", err)
	}

	rec, ok, err := s.Take(ctx, "u1")
	if err != nil || !ok {
		t.Fatalf("first take: ok=%v err=%v", ok, err)
	}
	if rec.UserID != "u1" {
		t.Errorf("took %q", rec.UserID)
	}

	if _, ok, _ := s.Take(ctx, "u1"); ok {
		t.Fatal("second take returned a record")
	}

	// Removal must be durable, not just in-memory.
	reopened := openTestStore(t, path)
	if _, ok := reopened.Get(ctx, "u1"); ok {
		t.Fatal("taken record resurfaced after restart")
	}
}

func TestLookupByMessageIDs(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, filepath.Join(t.TempDir(), "requests.json"))

	rec := testRecord("u1")
	rec.ConfirmMessageID = "confirm-1"
	if err := s.Create(ctx, rec); err != nil {
		t.Fatalf("create: %v", err)
	}

	if got, ok := s.GetByApproval(ctx, "appr-u1"); !ok || got.UserID != "u1" {
		t.Errorf("GetByApproval = %+v, ok=%v", got, ok)
	}
	if _, ok := s.GetByApproval(ctx, "other"); ok {
		t.Error("GetByApproval matched an unknown message")
	}
	if got, ok := s.GetByConfirmation(ctx, "confirm-1"); !ok || got.UserID != "u1" {
		t.Errorf("GetByConfirmation = %+v, ok=%v", got, ok)
	}
	// Records without a confirmation prompt never match an empty id.
	other := testRecord("u2")
	other.ApprovalMessageID = "appr-u2"
	if err := s.Create(ctx, other); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, ok := s.GetByConfirmation(ctx, ""); ok {
		t.Error("GetByConfirmation matched an empty id")
	}
}

func TestDeleteByChannel(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, filepath.Join(t.TempDir(), "requests.json"))

	if err := s.Create(ctx, testRecord("u1")); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.Create(ctx, testRecord("u2")); err != nil {
		t.Fatalf("create: %v", err)
	}

	purged, err := s.DeleteByChannel(ctx, "ticket-u1")
	if err != nil {
		t.Fatalf("DeleteByChannel: %v", err)
	}
	if len(purged) != 1 || purged[0].UserID != "u1" {
		t.Fatalf("purged = %+v", purged)
	}
	if _, ok := s.Get(ctx, "u2"); !ok {
		t.Error("unrelated record purged")
	}
}

func TestAllSortedBySubmission(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, filepath.Join(t.TempDir(), "requests.json"))

	older := testRecord("u1")
	older.SubmittedAt = time.Now().Add(-time.Hour)
	newer := testRecord("u2")

	if err := s.Create(ctx, newer); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.Create(ctx, older); err != nil {
		t.Fatalf("create: %v", err)
	}

	all := s.All(ctx)
	if len(all) != 2 {
		t.Fatalf("All returned %d records", len(all))
	}
	if all[0].UserID != "u1" || all[1].UserID != "u2" {
		t.Errorf("order = %s, %s", all[0].UserID, all[1].UserID)
	}
}

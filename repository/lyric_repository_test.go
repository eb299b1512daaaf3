package repository

import (
	"context"
	"errors"
	"testing"

	"LrcSync/model"
)

func TestMemoryLyricRepositorySaveAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryLyricRepository()

	got, err := repo.GetByTrackKey(ctx, "missing")
	if err != nil || got != nil {
		t.Fatalf("GetByTrackKey(missing) = (%v, %v), want (nil, nil)", got, err)
	}

	rec := &model.LyricRecord{TrackKey: "t1", Content: "[00:01]a", Source: "local"}
	if err := repo.Save(ctx, rec); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if rec.ID == 0 {
		t.Errorf("Save did not assign an ID")
	}

	got, err = repo.GetByTrackKey(ctx, "t1")
	if err != nil {
		t.Fatalf("GetByTrackKey: %v", err)
	}
	if got.Content != "[00:01]a" || got.Source != "local" {
		t.Errorf("GetByTrackKey = %+v", got)
	}

	got.Content = "mutated"
	again, _ := repo.GetByTrackKey(ctx, "t1")
	if again.Content != "[00:01]a" {
		t.Errorf("repository returned shared record")
	}

	firstID := rec.ID
	if err := repo.Save(ctx, &model.LyricRecord{TrackKey: "t1", Content: "[00:02]b"}); err != nil {
		t.Fatalf("Save overwrite: %v", err)
	}
	again, _ = repo.GetByTrackKey(ctx, "t1")
	if again.ID != firstID || again.Content != "[00:02]b" {
		t.Errorf("overwrite = %+v, want ID %d", again, firstID)
	}
}

func TestMemoryLyricRepositoryUpdateOffset(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryLyricRepository()

	v := 300
	if err := repo.UpdateOffset(ctx, "nope", &v); !errors.Is(err, ErrLyricNotFound) {
		t.Errorf("UpdateOffset(missing) = %v, want ErrLyricNotFound", err)
	}

	_ = repo.Save(ctx, &model.LyricRecord{TrackKey: "t1", Content: "x"})
	if err := repo.UpdateOffset(ctx, "t1", &v); err != nil {
		t.Fatalf("UpdateOffset: %v", err)
	}
	v = 999
	got, _ := repo.GetByTrackKey(ctx, "t1")
	if got.Offset == nil || *got.Offset != 300 {
		t.Errorf("Offset = %v, want 300", got.Offset)
	}

	if err := repo.UpdateOffset(ctx, "t1", nil); err != nil {
		t.Fatalf("UpdateOffset(nil): %v", err)
	}
	got, _ = repo.GetByTrackKey(ctx, "t1")
	if got.Offset != nil {
		t.Errorf("Offset = %v, want nil", *got.Offset)
	}
}

func TestMemoryLyricRepositoryDeleteAndList(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryLyricRepository()
	for _, key := range []string{"a", "b", "c"} {
		_ = repo.Save(ctx, &model.LyricRecord{TrackKey: key, Content: key})
	}

	all, err := repo.List(ctx, 0, 0)
	if err != nil || len(all) != 3 {
		t.Fatalf("List = (%d records, %v), want 3", len(all), err)
	}
	page, _ := repo.List(ctx, 2, 2)
	if len(page) != 1 {
		t.Errorf("List(2, 2) returned %d records, want 1", len(page))
	}
	empty, _ := repo.List(ctx, 10, 10)
	if len(empty) != 0 {
		t.Errorf("List past end returned %d records", len(empty))
	}

	if err := repo.Delete(ctx, "b"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := repo.Delete(ctx, "b"); !errors.Is(err, ErrLyricNotFound) {
		t.Errorf("second Delete = %v, want ErrLyricNotFound", err)
	}
	all, _ = repo.List(ctx, 0, 0)
	if len(all) != 2 {
		t.Errorf("List after delete = %d records, want 2", len(all))
	}
}

package library

import (
	"context"
	"errors"
	"testing"

	"LrcSync/core/lyrics"
	"LrcSync/model"
	"LrcSync/repository"
)

type fakeCache struct {
	records map[string]*model.LyricRecord
	getErr  error
	sets    int
}

func newFakeCache() *fakeCache {
	return &fakeCache{records: make(map[string]*model.LyricRecord)}
}

func (c *fakeCache) Get(_ context.Context, key string) (*model.LyricRecord, error) {
	if c.getErr != nil {
		return nil, c.getErr
	}
	if r, ok := c.records[key]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, nil
}

func (c *fakeCache) Set(_ context.Context, r *model.LyricRecord) error {
	cp := *r
	c.records[r.TrackKey] = &cp
	c.sets++
	return nil
}

func (c *fakeCache) Delete(_ context.Context, key string) error {
	delete(c.records, key)
	return nil
}

type fakeArchive struct {
	objects map[string]string
	putErr  error
}

func newFakeArchive() *fakeArchive {
	return &fakeArchive{objects: make(map[string]string)}
}

func (a *fakeArchive) Put(_ context.Context, key, content string) error {
	if a.putErr != nil {
		return a.putErr
	}
	a.objects[key] = content
	return nil
}

func (a *fakeArchive) Get(_ context.Context, key string) (string, bool, error) {
	c, ok := a.objects[key]
	return c, ok, nil
}

func (a *fakeArchive) Delete(_ context.Context, key string) error {
	delete(a.objects, key)
	return nil
}

const sample = "[ti:Song]\n[offset:500]\n[00:10]b\n[00:01]a"

func TestServiceSaveAndLoad(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryLyricRepository()
	cache := newFakeCache()
	archive := newFakeArchive()
	svc := NewService(repo, cache, archive)

	doc, err := svc.Save(ctx, SaveRequest{TrackKey: "t1", Content: sample, SearchTitle: "Song"})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if doc.Len() != 2 || doc.Offset() != 500 {
		t.Errorf("saved doc: len=%d offset=%d", doc.Len(), doc.Offset())
	}
	if doc.Metadata()[lyrics.MetaSource] != lyrics.SourceUnknown {
		t.Errorf("source = %q, want %q", doc.Metadata()[lyrics.MetaSource], lyrics.SourceUnknown)
	}
	if archive.objects["t1"] != sample {
		t.Errorf("archive not written")
	}
	if _, ok := cache.records["t1"]; !ok {
		t.Errorf("cache not written")
	}

	loaded, record, err := svc.Load(ctx, "t1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if record.Content != sample {
		t.Errorf("record content = %q", record.Content)
	}
	if loaded.Metadata()[lyrics.MetaSearchTitle] != "Song" {
		t.Errorf("metadata = %v", loaded.Metadata())
	}
}

func TestServiceSaveRejectsUntimedText(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryLyricRepository()
	svc := NewService(repo, nil, nil)

	_, err := svc.Save(ctx, SaveRequest{TrackKey: "t1", Content: "[ti:only tags]"})
	if !errors.Is(err, lyrics.ErrNoTimedLines) {
		t.Fatalf("Save error = %v, want ErrNoTimedLines", err)
	}
	if rec, _ := repo.GetByTrackKey(ctx, "t1"); rec != nil {
		t.Errorf("untimed text was persisted")
	}
}

func TestServiceInvalidTrackKey(t *testing.T) {
	svc := NewService(repository.NewMemoryLyricRepository(), nil, nil)
	if _, err := svc.Save(context.Background(), SaveRequest{TrackKey: "  ", Content: sample}); !errors.Is(err, ErrInvalidTrackKey) {
		t.Errorf("Save error = %v, want ErrInvalidTrackKey", err)
	}
	if _, _, err := svc.Load(context.Background(), ""); !errors.Is(err, ErrInvalidTrackKey) {
		t.Errorf("Load error = %v, want ErrInvalidTrackKey", err)
	}
}

func TestServiceLoadNotFound(t *testing.T) {
	svc := NewService(repository.NewMemoryLyricRepository(), newFakeCache(), newFakeArchive())
	if _, _, err := svc.Load(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load error = %v, want ErrNotFound", err)
	}
}

func TestServiceLoadFallsBackToArchive(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryLyricRepository()
	archive := newFakeArchive()
	archive.objects["t9"] = sample
	svc := NewService(repo, nil, archive)

	doc, _, err := svc.Load(ctx, "t9")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if doc.Len() != 2 {
		t.Errorf("Len() = %d, want 2", doc.Len())
	}
	if rec, _ := repo.GetByTrackKey(ctx, "t9"); rec == nil {
		t.Errorf("archive hit was not written back to the repository")
	}
}

func TestServiceLoadIgnoresCacheErrors(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryLyricRepository()
	_ = repo.Save(ctx, &model.LyricRecord{TrackKey: "t1", Content: sample})
	cache := newFakeCache()
	cache.getErr = errors.New("redis down")
	svc := NewService(repo, cache, nil)

	if _, _, err := svc.Load(ctx, "t1"); err != nil {
		t.Errorf("Load with broken cache: %v", err)
	}
}

func TestServiceArchiveFailureIsNotFatal(t *testing.T) {
	archive := newFakeArchive()
	archive.putErr = errors.New("minio down")
	svc := NewService(repository.NewMemoryLyricRepository(), nil, archive)

	if _, err := svc.Save(context.Background(), SaveRequest{TrackKey: "t1", Content: sample}); err != nil {
		t.Errorf("Save with broken archive: %v", err)
	}
}

func TestServiceOffsetOverride(t *testing.T) {
	ctx := context.Background()
	cache := newFakeCache()
	svc := NewService(repository.NewMemoryLyricRepository(), cache, nil)
	if _, err := svc.Save(ctx, SaveRequest{TrackKey: "t1", Content: sample}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	doc, err := svc.SetOffset(ctx, "t1", -250)
	if err != nil {
		t.Fatalf("SetOffset: %v", err)
	}
	if doc.Offset() != -250 || doc.TimeDelay() != -0.25 {
		t.Errorf("offset = %d delay = %v", doc.Offset(), doc.TimeDelay())
	}

	loaded, _, err := svc.Load(ctx, "t1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Offset() != -250 {
		t.Errorf("loaded offset = %d, want -250", loaded.Offset())
	}

	reset, err := svc.ResetOffset(ctx, "t1")
	if err != nil {
		t.Fatalf("ResetOffset: %v", err)
	}
	if reset.Offset() != 500 {
		t.Errorf("reset offset = %d, want the file's 500", reset.Offset())
	}

	if _, err := svc.SetOffset(ctx, "missing", 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("SetOffset(missing) = %v, want ErrNotFound", err)
	}
}

func TestServiceDelete(t *testing.T) {
	ctx := context.Background()
	cache := newFakeCache()
	archive := newFakeArchive()
	svc := NewService(repository.NewMemoryLyricRepository(), cache, archive)
	_, _ = svc.Save(ctx, SaveRequest{TrackKey: "t1", Content: sample})

	if err := svc.Delete(ctx, "t1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(cache.records) != 0 || len(archive.objects) != 0 {
		t.Errorf("cache or archive still holds the track")
	}
	if err := svc.Delete(ctx, "t1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete = %v, want ErrNotFound", err)
	}
}

func TestServiceList(t *testing.T) {
	ctx := context.Background()
	svc := NewService(repository.NewMemoryLyricRepository(), nil, nil)
	for _, key := range []string{"a", "b"} {
		if _, err := svc.Save(ctx, SaveRequest{TrackKey: key, Content: sample}); err != nil {
			t.Fatalf("Save(%s): %v", key, err)
		}
	}
	records, err := svc.List(ctx, 10, 0)
	if err != nil || len(records) != 2 {
		t.Errorf("List = (%d, %v), want 2 records", len(records), err)
	}
}

func TestBuildAppliesRecord(t *testing.T) {
	off := 1500
	doc, err := Build(&model.LyricRecord{
		Content:   "[00:05]x",
		Offset:    &off,
		Source:    "netease",
		LyricsURL: "https://example.com/a.lrc",
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if doc.TimeDelay() != 1.5 {
		t.Errorf("TimeDelay() = %v, want 1.5", doc.TimeDelay())
	}
	if !doc.HasMetadata(lyrics.MetaLyricsURL) || doc.HasMetadata(lyrics.MetaSearchArtist) {
		t.Errorf("metadata = %v", doc.Metadata())
	}
}

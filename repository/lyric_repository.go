package repository

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"LrcSync/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LyricRepository 歌词原文数据访问接口
type LyricRepository interface {
	// Save 按 TrackKey 插入或覆盖
	Save(ctx context.Context, record *model.LyricRecord) error
	// GetByTrackKey 不存在时返回 (nil, nil)
	GetByTrackKey(ctx context.Context, trackKey string) (*model.LyricRecord, error)
	UpdateOffset(ctx context.Context, trackKey string, offset *int) error
	Delete(ctx context.Context, trackKey string) error
	List(ctx context.Context, limit, offset int) ([]*model.LyricRecord, error)
}

// ErrLyricNotFound 更新或删除时目标不存在
var ErrLyricNotFound = errors.New("lyric record not found")

// gormLyricRepository GORM 实现
type gormLyricRepository struct {
	db *gorm.DB
}

// NewGormLyricRepository 创建 GORM 歌词仓库
func NewGormLyricRepository(db *gorm.DB) LyricRepository {
	return &gormLyricRepository{db: db}
}

func (r *gormLyricRepository) Save(ctx context.Context, record *model.LyricRecord) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "track_key"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"content", "offset", "source", "lyrics_url", "search_title", "search_artist", "updated_at",
		}),
	}).Create(record).Error
}

func (r *gormLyricRepository) GetByTrackKey(ctx context.Context, trackKey string) (*model.LyricRecord, error) {
	var record model.LyricRecord
	err := r.db.WithContext(ctx).Where("track_key = ?", trackKey).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

func (r *gormLyricRepository) UpdateOffset(ctx context.Context, trackKey string, offset *int) error {
	result := r.db.WithContext(ctx).Model(&model.LyricRecord{}).
		Where("track_key = ?", trackKey).
		Updates(map[string]interface{}{"offset": offset, "updated_at": time.Now()})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrLyricNotFound
	}
	return nil
}

func (r *gormLyricRepository) Delete(ctx context.Context, trackKey string) error {
	result := r.db.WithContext(ctx).Where("track_key = ?", trackKey).Delete(&model.LyricRecord{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrLyricNotFound
	}
	return nil
}

func (r *gormLyricRepository) List(ctx context.Context, limit, offset int) ([]*model.LyricRecord, error) {
	limit, offset = normalizePage(limit, offset)
	var records []*model.LyricRecord
	err := r.db.WithContext(ctx).
		Order("updated_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&records).Error
	return records, err
}

// DefaultPageSize List 未指定数量时的默认值
const DefaultPageSize = 50

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// memoryLyricRepository 未配置数据库时使用的内存实现
type memoryLyricRepository struct {
	mu      sync.RWMutex
	nextID  int64
	records map[string]*model.LyricRecord
}

// NewMemoryLyricRepository 创建内存歌词仓库
func NewMemoryLyricRepository() LyricRepository {
	return &memoryLyricRepository{records: make(map[string]*model.LyricRecord)}
}

func cloneRecord(r *model.LyricRecord) *model.LyricRecord {
	c := *r
	if r.Offset != nil {
		v := *r.Offset
		c.Offset = &v
	}
	return &c
}

func (r *memoryLyricRepository) Save(_ context.Context, record *model.LyricRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	if existing, ok := r.records[record.TrackKey]; ok {
		record.ID = existing.ID
		record.CreatedAt = existing.CreatedAt
	} else {
		r.nextID++
		record.ID = r.nextID
		record.CreatedAt = now
	}
	record.UpdatedAt = now
	r.records[record.TrackKey] = cloneRecord(record)
	return nil
}

func (r *memoryLyricRepository) GetByTrackKey(_ context.Context, trackKey string) (*model.LyricRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if rec, ok := r.records[trackKey]; ok {
		return cloneRecord(rec), nil
	}
	return nil, nil
}

func (r *memoryLyricRepository) UpdateOffset(_ context.Context, trackKey string, offset *int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[trackKey]
	if !ok {
		return ErrLyricNotFound
	}
	if offset != nil {
		v := *offset
		rec.Offset = &v
	} else {
		rec.Offset = nil
	}
	rec.UpdatedAt = time.Now()
	return nil
}

func (r *memoryLyricRepository) Delete(_ context.Context, trackKey string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[trackKey]; !ok {
		return ErrLyricNotFound
	}
	delete(r.records, trackKey)
	return nil
}

func (r *memoryLyricRepository) List(_ context.Context, limit, offset int) ([]*model.LyricRecord, error) {
	limit, offset = normalizePage(limit, offset)
	r.mu.RLock()
	all := make([]*model.LyricRecord, 0, len(r.records))
	for _, rec := range r.records {
		all = append(all, cloneRecord(rec))
	}
	r.mu.RUnlock()

	slices.SortFunc(all, func(a, b *model.LyricRecord) int {
		if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	if offset >= len(all) {
		return []*model.LyricRecord{}, nil
	}
	all = all[offset:]
	if limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

package library

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"LrcSync/core/lyrics"
	"LrcSync/logger"
	"LrcSync/model"
	"LrcSync/repository"
)

var (
	// ErrNotFound 指定曲目没有歌词
	ErrNotFound = errors.New("lyrics not found")
	// ErrInvalidTrackKey 曲目键为空或过长
	ErrInvalidTrackKey = errors.New("invalid track key")
)

const maxTrackKeyLen = 191

// RecordCache 歌词原文缓存，由 cache.LyricCache 实现
type RecordCache interface {
	Get(ctx context.Context, trackKey string) (*model.LyricRecord, error)
	Set(ctx context.Context, record *model.LyricRecord) error
	Delete(ctx context.Context, trackKey string) error
}

// Archive 原文归档，由 storage.LyricArchive 实现
type Archive interface {
	Put(ctx context.Context, trackKey, content string) error
	Get(ctx context.Context, trackKey string) (string, bool, error)
	Delete(ctx context.Context, trackKey string) error
}

// SaveRequest 保存歌词的参数
type SaveRequest struct {
	TrackKey     string
	Content      string
	Source       string
	LyricsURL    string
	SearchTitle  string
	SearchArtist string
}

// Service 歌词库：按曲目保存原文，读取时解析成文档
type Service struct {
	repo    repository.LyricRepository
	cache   RecordCache
	archive Archive
}

// NewService cache 和 archive 可以为 nil
func NewService(repo repository.LyricRepository, cache RecordCache, archive Archive) *Service {
	return &Service{repo: repo, cache: cache, archive: archive}
}

func validateTrackKey(trackKey string) error {
	if strings.TrimSpace(trackKey) == "" || len(trackKey) > maxTrackKeyLen {
		return fmt.Errorf("%w: %q", ErrInvalidTrackKey, trackKey)
	}
	return nil
}

// Save 解析通过后才会持久化，解析失败返回 lyrics.ErrNoTimedLines
func (s *Service) Save(ctx context.Context, req SaveRequest) (*lyrics.Document, error) {
	if err := validateTrackKey(req.TrackKey); err != nil {
		return nil, err
	}

	record := &model.LyricRecord{
		TrackKey:     req.TrackKey,
		Content:      req.Content,
		Source:       req.Source,
		LyricsURL:    req.LyricsURL,
		SearchTitle:  req.SearchTitle,
		SearchArtist: req.SearchArtist,
	}
	if record.Source == "" {
		record.Source = lyrics.SourceUnknown
	}

	doc, err := Build(record)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, record); err != nil {
		return nil, fmt.Errorf("保存歌词失败: %w", err)
	}
	s.refreshCache(ctx, record)

	if s.archive != nil {
		if err := s.archive.Put(ctx, record.TrackKey, record.Content); err != nil {
			logger.Warn("歌词归档失败",
				logger.String("trackKey", record.TrackKey),
				logger.ErrorField(err))
		}
	}

	logger.Info("歌词已保存",
		logger.String("trackKey", record.TrackKey),
		logger.String("source", record.Source),
		logger.Int("lines", doc.Len()))
	return doc, nil
}

// Load 依次查找缓存、数据库、归档
func (s *Service) Load(ctx context.Context, trackKey string) (*lyrics.Document, *model.LyricRecord, error) {
	record, err := s.loadRecord(ctx, trackKey)
	if err != nil {
		return nil, nil, err
	}
	doc, err := Build(record)
	if err != nil {
		return nil, nil, err
	}
	return doc, record, nil
}

func (s *Service) loadRecord(ctx context.Context, trackKey string) (*model.LyricRecord, error) {
	if err := validateTrackKey(trackKey); err != nil {
		return nil, err
	}

	if s.cache != nil {
		record, err := s.cache.Get(ctx, trackKey)
		if err != nil {
			logger.Warn("读取歌词缓存失败",
				logger.String("trackKey", trackKey),
				logger.ErrorField(err))
		} else if record != nil {
			logger.Debug("歌词缓存命中", logger.String("trackKey", trackKey))
			return record, nil
		}
	}

	record, err := s.repo.GetByTrackKey(ctx, trackKey)
	if err != nil {
		return nil, fmt.Errorf("查询歌词失败: %w", err)
	}
	if record != nil {
		s.refreshCache(ctx, record)
		return record, nil
	}

	if s.archive == nil {
		return nil, ErrNotFound
	}
	content, ok, err := s.archive.Get(ctx, trackKey)
	if err != nil {
		return nil, fmt.Errorf("读取歌词归档失败: %w", err)
	}
	if !ok {
		return nil, ErrNotFound
	}

	// 归档中存在但数据库中没有，回填数据库
	record = &model.LyricRecord{TrackKey: trackKey, Content: content, Source: lyrics.SourceUnknown}
	if err := s.repo.Save(ctx, record); err != nil {
		logger.Warn("回填歌词记录失败",
			logger.String("trackKey", trackKey),
			logger.ErrorField(err))
	}
	s.refreshCache(ctx, record)
	return record, nil
}

// SetOffset 保存用户调整的偏移（毫秒）
func (s *Service) SetOffset(ctx context.Context, trackKey string, offset int) (*lyrics.Document, error) {
	return s.updateOffset(ctx, trackKey, &offset)
}

// ResetOffset 清除用户调整，恢复文件中的 offset 标签
func (s *Service) ResetOffset(ctx context.Context, trackKey string) (*lyrics.Document, error) {
	return s.updateOffset(ctx, trackKey, nil)
}

func (s *Service) updateOffset(ctx context.Context, trackKey string, offset *int) (*lyrics.Document, error) {
	record, err := s.loadRecord(ctx, trackKey)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateOffset(ctx, trackKey, offset); err != nil {
		if errors.Is(err, repository.ErrLyricNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("更新偏移失败: %w", err)
	}
	record.Offset = offset
	s.refreshCache(ctx, record)

	return Build(record)
}

// Delete 删除歌词及其缓存、归档
func (s *Service) Delete(ctx context.Context, trackKey string) error {
	if err := validateTrackKey(trackKey); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, trackKey); err != nil {
		if errors.Is(err, repository.ErrLyricNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("删除歌词失败: %w", err)
	}
	if s.cache != nil {
		if err := s.cache.Delete(ctx, trackKey); err != nil {
			logger.Warn("删除歌词缓存失败", logger.String("trackKey", trackKey), logger.ErrorField(err))
		}
	}
	if s.archive != nil {
		if err := s.archive.Delete(ctx, trackKey); err != nil {
			logger.Warn("删除歌词归档失败", logger.String("trackKey", trackKey), logger.ErrorField(err))
		}
	}
	return nil
}

// List 分页列出已保存的歌词记录
func (s *Service) List(ctx context.Context, limit, offset int) ([]*model.LyricRecord, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) refreshCache(ctx context.Context, record *model.LyricRecord) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, record); err != nil {
		logger.Warn("写入歌词缓存失败",
			logger.String("trackKey", record.TrackKey),
			logger.ErrorField(err))
	}
}

// Build 解析记录中的原文，并套用偏移覆盖和元数据
func Build(record *model.LyricRecord) (*lyrics.Document, error) {
	doc, err := lyrics.Parse(record.Content)
	if err != nil {
		return nil, err
	}
	if record.Offset != nil {
		doc.SetOffset(*record.Offset)
	}

	meta := lyrics.Metadata{}
	if record.Source != "" {
		meta[lyrics.MetaSource] = record.Source
	}
	if record.LyricsURL != "" {
		meta[lyrics.MetaLyricsURL] = record.LyricsURL
	}
	if record.SearchTitle != "" {
		meta[lyrics.MetaSearchTitle] = record.SearchTitle
	}
	if record.SearchArtist != "" {
		meta[lyrics.MetaSearchArtist] = record.SearchArtist
	}
	doc.SetMetadata(meta)
	return doc, nil
}

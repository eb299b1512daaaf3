package server

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"

	"LrcSync/core/library"
	"LrcSync/core/lyrics"
	"LrcSync/logger"
	"LrcSync/model"

	"github.com/gorilla/mux"
	"github.com/samber/lo"
)

// 单个 LRC 文本的上限
const maxLyricBody = 1 << 20

// SaveLyricRequest 保存歌词请求
type SaveLyricRequest struct {
	Content      string `json:"content"`
	Source       string `json:"source"`
	LyricsURL    string `json:"lyricsUrl"`
	SearchTitle  string `json:"searchTitle"`
	SearchArtist string `json:"searchArtist"`
}

// OffsetRequest 二选一：offset 为毫秒，timeDelay 为秒
type OffsetRequest struct {
	Offset    *int     `json:"offset"`
	TimeDelay *float64 `json:"timeDelay"`
}

// LyricSummary 列表项
type LyricSummary struct {
	TrackKey  string `json:"trackKey"`
	Source    string `json:"source"`
	Offset    *int   `json:"offset,omitempty"`
	UpdatedAt int64  `json:"updatedAt"`
}

func parsePosition(r *http.Request) (float64, error) {
	raw := r.URL.Query().Get("position")
	if raw == "" {
		return 0, fmt.Errorf("missing position")
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("invalid position %q", raw)
	}
	return v, nil
}

func queryInt(r *http.Request, key string, fallback int) int {
	if v, err := strconv.Atoi(r.URL.Query().Get(key)); err == nil {
		return v
	}
	return fallback
}

// ParseLyricHandler 解析请求体中的 LRC 文本，不做持久化
func (h *Handler) ParseLyricHandler(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxLyricBody+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read body")
		return
	}
	if len(body) > maxLyricBody {
		writeError(w, http.StatusRequestEntityTooLarge, "lyrics too large")
		return
	}

	doc, err := lyrics.Parse(string(body))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	logger.Debug("解析歌词", logger.Int("bytes", len(body)), logger.Int("lines", doc.Len()))
	writeJSON(w, http.StatusOK, newDocumentResponse("", doc))
}

// ListLyricsHandler 分页列出歌词
func (h *Handler) ListLyricsHandler(w http.ResponseWriter, r *http.Request) {
	records, err := h.lyrics.List(r.Context(), queryInt(r, "limit", 0), queryInt(r, "offset", 0))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lo.Map(records, func(rec *model.LyricRecord, _ int) LyricSummary {
		return LyricSummary{
			TrackKey:  rec.TrackKey,
			Source:    rec.Source,
			Offset:    rec.Offset,
			UpdatedAt: rec.UpdatedAt.UnixMilli(),
		}
	}))
}

// GetLyricHandler 获取解析后的歌词
func (h *Handler) GetLyricHandler(w http.ResponseWriter, r *http.Request) {
	trackKey := mux.Vars(r)["trackKey"]
	doc, _, err := h.lyrics.Load(r.Context(), trackKey)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newDocumentResponse(trackKey, doc))
}

// SaveLyricHandler 保存歌词原文
func (h *Handler) SaveLyricHandler(w http.ResponseWriter, r *http.Request) {
	trackKey := mux.Vars(r)["trackKey"]

	var req SaveLyricRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 2*maxLyricBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	doc, err := h.lyrics.Save(r.Context(), library.SaveRequest{
		TrackKey:     trackKey,
		Content:      req.Content,
		Source:       req.Source,
		LyricsURL:    req.LyricsURL,
		SearchTitle:  req.SearchTitle,
		SearchArtist: req.SearchArtist,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	logger.Info("保存歌词",
		logger.String("trackKey", trackKey),
		logger.Int("lines", doc.Len()),
		operatorField(r))
	writeJSON(w, http.StatusOK, newDocumentResponse(trackKey, doc))
}

// DeleteLyricHandler 删除歌词
func (h *Handler) DeleteLyricHandler(w http.ResponseWriter, r *http.Request) {
	trackKey := mux.Vars(r)["trackKey"]
	if err := h.lyrics.Delete(r.Context(), trackKey); err != nil {
		writeServiceError(w, err)
		return
	}
	logger.Info("删除歌词", logger.String("trackKey", trackKey), operatorField(r))
	w.WriteHeader(http.StatusNoContent)
}

// LocateLyricHandler 按播放位置查询当前行与下一行
func (h *Handler) LocateLyricHandler(w http.ResponseWriter, r *http.Request) {
	position, err := parsePosition(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	doc, _, err := h.lyrics.Load(r.Context(), mux.Vars(r)["trackKey"])
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := LocateResponse{At: position}
	resp.Current, resp.Next = doc.Locate(position)
	resp.Index = doc.LocateIndex(position)
	resp.TimeDelay = doc.TimeDelay()
	writeJSON(w, http.StatusOK, resp)
}

// DescribeLyricHandler 以纯文本输出调试信息
func (h *Handler) DescribeLyricHandler(w http.ResponseWriter, r *http.Request) {
	doc, _, err := h.lyrics.Load(r.Context(), mux.Vars(r)["trackKey"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, doc.Describe())
}

// SetOffsetHandler 保存用户调整的偏移
func (h *Handler) SetOffsetHandler(w http.ResponseWriter, r *http.Request) {
	trackKey := mux.Vars(r)["trackKey"]

	var req OffsetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var offset int
	switch {
	case req.Offset != nil:
		offset = *req.Offset
	case req.TimeDelay != nil:
		// 与 Document.SetTimeDelay 相同的截断规则
		var tmp lyrics.Document
		tmp.SetTimeDelay(*req.TimeDelay)
		offset = tmp.Offset()
	default:
		writeError(w, http.StatusBadRequest, "offset or timeDelay is required")
		return
	}

	doc, err := h.lyrics.SetOffset(r.Context(), trackKey, offset)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	logger.Info("更新歌词偏移",
		logger.String("trackKey", trackKey),
		logger.Int("offset", offset),
		operatorField(r))
	writeJSON(w, http.StatusOK, newDocumentResponse(trackKey, doc))
}

// ResetOffsetHandler 恢复文件自带的偏移
func (h *Handler) ResetOffsetHandler(w http.ResponseWriter, r *http.Request) {
	trackKey := mux.Vars(r)["trackKey"]
	doc, err := h.lyrics.ResetOffset(r.Context(), trackKey)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	logger.Info("恢复歌词偏移", logger.String("trackKey", trackKey), operatorField(r))
	writeJSON(w, http.StatusOK, newDocumentResponse(trackKey, doc))
}

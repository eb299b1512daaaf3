package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"LrcSync/core/library"
	"LrcSync/core/lyrics"
	"LrcSync/core/session"
	"LrcSync/logger"
)

// ErrorResponse 错误响应
type ErrorResponse struct {
	Error string `json:"error"`
}

// DocumentResponse 歌词文档的 JSON 表示
type DocumentResponse struct {
	TrackKey  string            `json:"trackKey,omitempty"`
	Lines     []lyrics.Line     `json:"lines"`
	Tags      map[string]string `json:"tags"`
	Metadata  map[string]string `json:"metadata"`
	Offset    int               `json:"offset"`
	TimeDelay float64           `json:"timeDelay"`
}

func newDocumentResponse(trackKey string, doc *lyrics.Document) DocumentResponse {
	tags := make(map[string]string)
	for k, v := range doc.Tags() {
		tags[string(k)] = v
	}
	meta := make(map[string]string)
	for k, v := range doc.Metadata() {
		meta[string(k)] = v
	}
	return DocumentResponse{
		TrackKey:  trackKey,
		Lines:     doc.Lines(),
		Tags:      tags,
		Metadata:  meta,
		Offset:    doc.Offset(),
		TimeDelay: doc.TimeDelay(),
	}
}

// LocateResponse 定位结果
type LocateResponse struct {
	At float64 `json:"position"`
	session.Position
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("写入响应失败", logger.ErrorField(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// writeServiceError 将业务错误映射为 HTTP 状态码
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, lyrics.ErrNoTimedLines):
		writeError(w, http.StatusUnprocessableEntity, "no usable lyrics in this text")
	case errors.Is(err, library.ErrNotFound), errors.Is(err, session.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, library.ErrInvalidTrackKey):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		logger.Error("请求处理失败", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

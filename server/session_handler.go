package server

import (
	"encoding/json"
	"net/http"

	"LrcSync/logger"

	"github.com/gorilla/mux"
)

// CreateSessionRequest 为某首歌创建播放会话
type CreateSessionRequest struct {
	TrackKey string `json:"trackKey"`
}

// SessionResponse 会话信息
type SessionResponse struct {
	ID        string  `json:"id"`
	TrackKey  string  `json:"trackKey"`
	Offset    int     `json:"offset"`
	TimeDelay float64 `json:"timeDelay"`
}

// DelayRequest delta 为相对调整，timeDelay 为绝对值（秒）
type DelayRequest struct {
	Delta     *float64 `json:"delta"`
	TimeDelay *float64 `json:"timeDelay"`
}

// CreateSessionHandler 加载歌词并创建会话
func (h *Handler) CreateSessionHandler(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	doc, _, err := h.lyrics.Load(r.Context(), req.TrackKey)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	s := h.sessions.Create(req.TrackKey, doc)
	writeJSON(w, http.StatusCreated, SessionResponse{
		ID:        s.ID,
		TrackKey:  req.TrackKey,
		Offset:    s.Offset(),
		TimeDelay: s.TimeDelay(),
	})
}

// LocateSessionHandler 查询会话在 position 处的歌词
func (h *Handler) LocateSessionHandler(w http.ResponseWriter, r *http.Request) {
	position, err := parsePosition(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s, err := h.sessions.Get(mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, LocateResponse{At: position, Position: s.Locate(position)})
}

// AdjustDelayHandler 调整会话的 timeDelay，只影响本会话
func (h *Handler) AdjustDelayHandler(w http.ResponseWriter, r *http.Request) {
	s, err := h.sessions.Get(mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}

	var req DelayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	switch {
	case req.TimeDelay != nil:
		s.SetTimeDelay(*req.TimeDelay)
	case req.Delta != nil:
		s.AdjustDelay(*req.Delta)
	default:
		writeError(w, http.StatusBadRequest, "delta or timeDelay is required")
		return
	}

	logger.Debug("调整会话延迟",
		logger.String("sessionId", s.ID),
		logger.Float64("timeDelay", s.TimeDelay()))
	writeJSON(w, http.StatusOK, SessionResponse{
		ID:        s.ID,
		TrackKey:  s.Track(),
		Offset:    s.Offset(),
		TimeDelay: s.TimeDelay(),
	})
}

// CloseSessionHandler 关闭会话
func (h *Handler) CloseSessionHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if _, err := h.sessions.Get(id); err != nil {
		writeServiceError(w, err)
		return
	}
	h.sessions.Remove(id)
	w.WriteHeader(http.StatusNoContent)
}

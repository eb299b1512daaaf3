package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"LrcSync/core/session"
	"LrcSync/logger"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

// MessageType 同步消息类型
type MessageType string

const (
	MsgTypePosition MessageType = "position"  // 播放端上报进度
	MsgTypeDelay    MessageType = "delay"     // 相对调整 timeDelay
	MsgTypeSetDelay MessageType = "set_delay" // 设置 timeDelay
	MsgTypeLine     MessageType = "line"      // 当前行变化
	MsgTypeError    MessageType = "error"
	MsgTypePing     MessageType = "ping"
	MsgTypePong     MessageType = "pong"
)

const (
	wsReadLimit    = 4096
	wsPongWait     = 60 * time.Second
	wsPingInterval = 30 * time.Second
	wsWriteWait    = 10 * time.Second
	wsSendBuffer   = 32
)

// WSMessage 收发共用的消息结构
type WSMessage struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

type positionPayload struct {
	Position float64 `json:"position"`
}

// delayPayload Delta 缺省时按 delayStep 调整，显式的 0 不做调整
type delayPayload struct {
	Delta     *float64 `json:"delta,omitempty"`
	TimeDelay float64 `json:"timeDelay"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// SyncClient 一个绑定到歌词会话的 WebSocket 连接
type SyncClient struct {
	Conn    *websocket.Conn
	Send    chan []byte
	Session *session.Session
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// SyncWebSocketHandler 播放端上报进度，服务端在当前行变化时推送
func (h *Handler) SyncWebSocketHandler(w http.ResponseWriter, r *http.Request) {
	s, err := h.sessions.Get(mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("websocket upgrade failed", logger.ErrorField(err))
		return
	}

	client := &SyncClient{
		Conn:    conn,
		Send:    make(chan []byte, wsSendBuffer),
		Session: s,
	}
	logger.Debug("歌词同步连接建立", logger.String("sessionId", s.ID))

	go client.WritePump()
	client.ReadPump(context.Background(), h.delayStep)
}

// ReadPump 读取客户端消息，返回时关闭 Send 通知 WritePump 退出
func (c *SyncClient) ReadPump(ctx context.Context, delayStep float64) {
	defer close(c.Send)

	c.Conn.SetReadLimit(wsReadLimit)
	c.Conn.SetReadDeadline(time.Now().Add(wsPongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(wsPongWait))
		return nil
	})

	for {
		if ctx.Err() != nil {
			return
		}
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("websocket read error",
					logger.ErrorField(err),
					logger.String("sessionId", c.Session.ID))
			}
			return
		}

		var msg WSMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			c.sendError("invalid message format")
			continue
		}
		c.handle(&msg, delayStep)
	}
}

func (c *SyncClient) handle(msg *WSMessage, delayStep float64) {
	switch msg.Type {
	case MsgTypePing:
		c.SendMessage(&WSMessage{Type: MsgTypePong})

	case MsgTypePosition:
		var p positionPayload
		if err := json.Unmarshal(msg.Data, &p); err != nil {
			c.sendError("invalid position")
			return
		}
		if pos, changed := c.Session.LocateChanged(p.Position); changed {
			c.sendData(MsgTypeLine, LocateResponse{At: p.Position, Position: pos})
		}

	case MsgTypeDelay:
		var p delayPayload
		if len(msg.Data) > 0 {
			if err := json.Unmarshal(msg.Data, &p); err != nil {
				c.sendError("invalid delay")
				return
			}
		}
		delta := delayStep
		if p.Delta != nil {
			delta = *p.Delta
		}
		c.sendData(MsgTypeDelay, delayPayload{TimeDelay: c.Session.AdjustDelay(delta)})

	case MsgTypeSetDelay:
		var p delayPayload
		if err := json.Unmarshal(msg.Data, &p); err != nil {
			c.sendError("invalid delay")
			return
		}
		c.Session.SetTimeDelay(p.TimeDelay)
		c.sendData(MsgTypeDelay, delayPayload{TimeDelay: c.Session.TimeDelay()})

	default:
		logger.Debug("未知同步消息",
			logger.String("sessionId", c.Session.ID),
			logger.Any("message", msg))
		c.sendError("unknown message type: " + string(msg.Type))
	}
}

// WritePump 串行写出 Send 中的消息并定时发送 ping
func (c *SyncClient) WritePump() {
	ticker := time.NewTicker(wsPingInterval)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			if err := c.Conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				return
			}
		}
	}
}

// SendMessage 缓冲区满时丢弃
func (c *SyncClient) SendMessage(msg *WSMessage) {
	msg.Timestamp = time.Now().UnixMilli()
	data, err := json.Marshal(msg)
	if err != nil {
		logger.Warn("序列化同步消息失败", logger.ErrorField(err))
		return
	}
	select {
	case c.Send <- data:
	default:
	}
}

func (c *SyncClient) sendData(t MessageType, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		logger.Warn("序列化同步消息失败", logger.ErrorField(err))
		return
	}
	c.SendMessage(&WSMessage{Type: t, Data: data})
}

func (c *SyncClient) sendError(message string) {
	c.sendData(MsgTypeError, errorPayload{Message: message})
}

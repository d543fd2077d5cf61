package main

import (
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"VisionAlertServer/imaging"
	"VisionAlertServer/logger"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// session is one streaming client. The device sends base64 frames as text
// messages and receives one result JSON per frame.
type session struct {
	id          string
	conn        *websocket.Conn
	lastActive  atomic.Int64 // unix nanos
	cancelTimer chan struct{}
	closeOnce   sync.Once
	cancelOnce  sync.Once
}

func (s *session) touch() {
	s.lastActive.Store(time.Now().UnixNano())
}

func (s *session) idleFor() time.Duration {
	return time.Since(time.Unix(0, s.lastActive.Load()))
}

func (s *session) release(reason string) {
	s.closeOnce.Do(func() {
		_ = s.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason))
		_ = s.conn.Close()
	})
	s.cancelOnce.Do(func() {
		close(s.cancelTimer)
	})
}

func (s *server) startIdleMonitor(sess *session, idle time.Duration) {
	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-sess.cancelTimer:
				return
			case <-ticker.C:
				if sess.idleFor() > idle {
					sess.release("session idle, released")
					logger.Log().Info("streaming session idle timeout", zap.String("session", sess.id))
					return
				}
			}
		}
	}()
}

type wsError struct {
	Error string `json:"error"`
}

func (s *server) handleStream(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// upgrade already wrote its response
		return
	}
	sess := &session{
		id:          uuid.NewString(),
		conn:        conn,
		cancelTimer: make(chan struct{}),
	}
	sess.touch()
	conn.SetReadLimit(20 * 1024 * 1024)
	s.startIdleMonitor(sess, s.cfg.SessionIdle())
	logger.Log().Info("streaming session opened", zap.String("session", sess.id))

	for {
		mt, msg, err := conn.ReadMessage()
		if err != nil {
			sess.release("connection closed")
			logger.Log().Info("streaming session closed",
				zap.String("session", sess.id), zap.Error(err))
			return
		}
		sess.touch()
		if mt != websocket.TextMessage {
			_ = conn.WriteJSON(wsError{Error: "unsupported message type"})
			continue
		}
		data, err := imaging.DecodeBase64(string(msg))
		if err != nil {
			_ = conn.WriteJSON(wsError{Error: err.Error()})
			continue
		}
		result, err := s.pipe.ProcessImage(c.Request.Context(), data, time.Now())
		if err != nil {
			_ = conn.WriteJSON(wsError{Error: err.Error()})
			continue
		}
		_ = conn.WriteJSON(result)
	}
}

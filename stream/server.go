// Package stream serves a playback of a computed trace to websocket viewers.
// Every connected viewer sees the same player: controls sent by one viewer
// move the playback for all of them.
package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/sibexico/HexPager/paging"
)

// Control actions accepted from viewers
const (
	ActionPlay     = "play"
	ActionPause    = "pause"
	ActionToggle   = "toggle"
	ActionForward  = "forward"
	ActionBackward = "backward"
	ActionStart    = "start"
	ActionEnd      = "end"
	ActionSeek     = "seek"
	ActionSpeed    = "speed"
)

// ControlRequest is a message from a viewer
type ControlRequest struct {
	Action  string `json:"action"`
	Step    int    `json:"step,omitempty"`
	SpeedMs int    `json:"speed_ms,omitempty"`
}

// Update is the message broadcast to viewers on every change
type Update struct {
	StepCount int             `json:"step_count"`
	Playing   bool            `json:"playing"`
	SpeedMs   int64           `json:"speed_ms"`
	Snapshot  paging.Snapshot `json:"snapshot"`
}

// Server is an http.Handler that upgrades requests to websocket viewers of one player
type Server struct {
	player   *paging.Player
	hub      *hub
	upgrader websocket.Upgrader
	logger   *slog.Logger

	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// NewServer binds a server to a player. logger may be nil.
func NewServer(player *paging.Player, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	ctx, cancel := context.WithCancel(context.Background())

	s := &Server{
		player: player,
		hub:    newHub(logger),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
	player.OnChange(s.publish)
	return s
}

// Close stops playback and disconnects every viewer
func (s *Server) Close() {
	s.closeOnce.Do(func() {
		s.player.OnChange(nil)
		s.cancel()
		s.hub.close()
	})
}

// ServeHTTP upgrades the connection and serves controls until the viewer leaves
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", slog.Any("error", err))
		return
	}

	// The hub becomes the only writer once the viewer is registered
	initial, err := s.update(s.player.Current())
	if err == nil {
		err = conn.WriteMessage(websocket.TextMessage, initial)
	}
	if err != nil {
		s.logger.Warn("failed to send initial snapshot", slog.Any("error", err))
		conn.Close()
		return
	}
	if !s.hub.add(conn) {
		conn.Close()
		return
	}
	s.logger.Info("viewer connected", slog.String("remote", r.RemoteAddr))

	defer s.hub.drop(conn)
	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("websocket error", slog.Any("error", err))
			}
			return
		}

		var req ControlRequest
		if err := json.Unmarshal(message, &req); err != nil {
			s.logger.Warn("malformed control request", slog.Any("error", err))
			continue
		}
		if err := s.apply(req); err != nil {
			s.logger.Warn("control request rejected",
				slog.String("action", req.Action),
				slog.Any("error", err),
			)
		}
	}
}

// apply executes one control request. Step changes reach viewers through the
// player's change callback; state-only changes are published here.
func (s *Server) apply(req ControlRequest) error {
	p := s.player

	switch req.Action {
	case ActionPlay:
		p.Start(s.ctx)
	case ActionPause:
		p.Pause()
	case ActionToggle:
		p.TogglePlay(s.ctx)
	case ActionForward:
		p.StepForward()
		return nil
	case ActionBackward:
		p.StepBackward()
		return nil
	case ActionStart:
		p.GoToStart()
		return nil
	case ActionEnd:
		p.GoToEnd()
		return nil
	case ActionSeek:
		return p.Seek(req.Step)
	case ActionSpeed:
		if req.SpeedMs <= 0 {
			return fmt.Errorf("speed must be positive, got %d ms", req.SpeedMs)
		}
		p.SetSpeed(time.Duration(req.SpeedMs) * time.Millisecond)
	default:
		return fmt.Errorf("unknown action %q", req.Action)
	}

	s.publish(p.Current())
	return nil
}

func (s *Server) publish(snap paging.Snapshot) {
	msg, err := s.update(snap)
	if err != nil {
		s.logger.Error("failed to marshal snapshot", slog.Int("step", snap.Step), slog.Any("error", err))
		return
	}
	s.hub.send(msg)
}

func (s *Server) update(snap paging.Snapshot) ([]byte, error) {
	return json.Marshal(Update{
		StepCount: s.player.Len(),
		Playing:   s.player.IsPlaying(),
		SpeedMs:   s.player.Speed().Milliseconds(),
		Snapshot:  snap,
	})
}

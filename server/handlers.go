package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/wfunc/simonsays/game"
	"github.com/wfunc/simonsays/input"
	"github.com/wfunc/simonsays/logger"
	"github.com/wfunc/simonsays/models"
	"github.com/wfunc/simonsays/network"
	"github.com/wfunc/simonsays/session"
)

var ErrBadPayload = errors.New("malformed payload")

func (s *GameServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Infof("Failed to upgrade connection: %v", err)
		return
	}
	s.handleConnection(conn)
}

func (s *GameServer) newSession(conn network.Connection) (*session.Session, error) {
	sess := session.NewSession(uuid.New().String(), conn)

	opts := []game.Option{
		game.WithID(sess.ID),
		game.WithTiming(s.timing),
		game.WithDifficulty(s.difficulty),
		game.WithObserver(s.monitor),
	}
	if s.newRand != nil {
		opts = append(opts, game.WithRand(s.newRand()))
	}
	sess.Controller = game.NewController(s.scheduler, sess, sess, opts...)

	if err := s.sessionManager.Add(sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *GameServer) handleConnection(conn *websocket.Conn) {
	wsConn := network.NewWSConnection(conn)
	sess, err := s.newSession(wsConn)
	if err != nil {
		logger.Log.Errorf("Failed to create session: %v", err)
		wsConn.Close()
		return
	}
	wsConn.SetHeartbeat(s.heartbeat)
	s.monitor.IncActiveSessions()

	logger.Log.Infof("New connection from %s, session ID: %s", wsConn.RemoteAddr(), sess.GetID())

	defer func() {
		logger.Log.Infof("Connection closed from %s, session ID: %s", wsConn.RemoteAddr(), sess.GetID())
		sess.Controller.Stop()
		s.sessionManager.Remove(sess.GetID())
		s.monitor.DecActiveSessions()
		wsConn.Close()
	}()

	if err := sess.SendJSON(network.MsgTypeWelcome, models.NewWelcome(sess.ID)); err != nil {
		logger.Log.Warnf("Session %s: send welcome: %v", sess.GetID(), err)
		return
	}
	// paint the idle screen
	sess.Controller.Reset()

	for {
		packet, err := wsConn.ReadPacket()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Log.Debugf("Session %s read: %v", sess.GetID(), err)
			}
			return
		}
		start := time.Now()
		s.handlePacket(sess, packet)
		s.monitor.IncMessagesReceived(strconv.Itoa(int(packet.MsgID)))
		s.monitor.ObserveMessageLatency(time.Since(start))
	}
}

func (s *GameServer) handlePacket(sess *session.Session, packet *network.Packet) {
	sess.Touch()
	ctrl := sess.Controller

	switch packet.MsgID {
	case network.MsgTypeHeartbeat:
		if err := sess.Send(network.MsgTypeHeartbeat, nil); err != nil {
			logger.Log.Debugf("Session %s heartbeat: %v", sess.GetID(), err)
		}
	case network.MsgTypeStart:
		ctrl.Start()
	case network.MsgTypeReset:
		ctrl.Reset()
	case network.MsgTypeSetDifficulty:
		var req models.DifficultyRequest
		if err := decode(packet, &req); err != nil {
			sess.SendError(err)
			return
		}
		d, err := game.ParseDifficulty(req.Difficulty)
		if err != nil {
			sess.SendError(fmt.Errorf("%q: %w", req.Difficulty, err))
			return
		}
		if err := ctrl.SetDifficulty(d); err != nil {
			sess.SendError(err)
		}
	case network.MsgTypeInputColor:
		var req models.InputRequest
		if err := decode(packet, &req); err != nil {
			sess.SendError(err)
			return
		}
		color, err := game.ParseColor(req.Color)
		if err != nil {
			sess.SendError(fmt.Errorf("%q: %w", req.Color, err))
			return
		}
		ctrl.HandleInput(color)
	case network.MsgTypeKeyPress:
		var req models.KeyRequest
		if err := decode(packet, &req); err != nil {
			sess.SendError(err)
			return
		}
		if color, ok := input.ColorForKey(req.Key); ok {
			ctrl.HandleInput(color)
		}
	case network.MsgTypeAudioStatus:
		var req models.AudioStatus
		if err := decode(packet, &req); err != nil {
			sess.SendError(err)
			return
		}
		sess.SetAudio(req)
	case network.MsgTypeSnapshotRequest:
		if err := sess.SendJSON(network.MsgTypeSnapshot, models.NewSnapshot(ctrl.Snapshot())); err != nil {
			logger.Log.Debugf("Session %s snapshot: %v", sess.GetID(), err)
		}
	default:
		logger.Log.Infof("Unknown message type: %d", packet.MsgID)
	}
}

func decode(packet *network.Packet, v interface{}) error {
	if err := json.Unmarshal(packet.Data, v); err != nil {
		return fmt.Errorf("message %d: %w", packet.MsgID, ErrBadPayload)
	}
	return nil
}

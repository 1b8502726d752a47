// session/session.go
package session

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/wfunc/simonsays/game"
	"github.com/wfunc/simonsays/logger"
	"github.com/wfunc/simonsays/models"
	"github.com/wfunc/simonsays/network"
	"github.com/wfunc/simonsays/tone"
)

// Session is one connected player. It renders its controller's output as
// frames on the connection, so it is both the game's Presenter and its
// TonePlayer.
type Session struct {
	ID         string
	Conn       network.Connection
	Controller *game.Controller
	CreatedAt  time.Time

	lastActive time.Time
	audio      bool
	mutex      sync.RWMutex
}

func NewSession(id string, conn network.Connection) *Session {
	now := time.Now()
	return &Session{
		ID:         id,
		Conn:       conn,
		CreatedAt:  now,
		lastActive: now,
		audio:      true,
	}
}

func (s *Session) GetID() string {
	return s.ID
}

func (s *Session) Touch() {
	s.mutex.Lock()
	s.lastActive = time.Now()
	s.mutex.Unlock()
}

func (s *Session) LastActive() time.Time {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.lastActive
}

// SetAudio records whether the client can play sound. Tones are not sent to a
// client that reported it cannot.
func (s *Session) SetAudio(status models.AudioStatus) {
	s.mutex.Lock()
	s.audio = status.Available
	s.mutex.Unlock()

	if !status.Available {
		logger.Log.Debugf("session %s: %v: %s", s.ID, game.ErrAudioUnavailable, status.Reason)
	}
}

func (s *Session) AudioAvailable() bool {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.audio
}

func (s *Session) Send(msgID uint16, data []byte) error {
	return s.Conn.Send(msgID, data)
}

// SendJSON sends v as msgID.
func (s *Session) SendJSON(msgID uint16, v interface{}) error {
	return network.SendJSON(s.Conn, msgID, v)
}

// SendError reports a rejected request to the client.
func (s *Session) SendError(err error) {
	s.push(network.MsgTypeError, models.ErrorPayload{Error: err.Error()})
}

func (s *Session) Close() error {
	return s.Conn.Close()
}

// push sends a display update. A write failure means the client is gone and
// the read loop will notice, so it is only logged.
func (s *Session) push(msgID uint16, v interface{}) {
	if err := s.SendJSON(msgID, v); err != nil {
		logger.Log.Debugf("session %s: send %d: %v", s.ID, msgID, err)
	}
}

func (s *Session) ShowScore(score int) {
	s.push(network.MsgTypeScore, models.ScorePayload{Score: score})
}

func (s *Session) ShowRound(round int) {
	s.push(network.MsgTypeRound, models.RoundPayload{Round: round})
}

func (s *Session) ShowMessage(text string, severity game.Severity) {
	s.push(network.MsgTypeMessage, models.MessagePayload{Text: text, Severity: string(severity)})
}

func (s *Session) SetControlsEnabled(enabled bool) {
	s.push(network.MsgTypeControls, models.EnabledPayload{Enabled: enabled})
}

func (s *Session) SetColorButtonsEnabled(enabled bool) {
	s.push(network.MsgTypeColorButtons, models.EnabledPayload{Enabled: enabled})
}

func (s *Session) FlashColor(color game.Color, duration time.Duration) {
	s.push(network.MsgTypeFlash, models.NewFlash(color, duration))
}

func (s *Session) PlayTone(color game.Color, duration time.Duration) {
	s.playVoices(tone.ForColor(color, duration))
}

func (s *Session) PlaySuccessChime() {
	s.playVoices(tone.SuccessChime())
}

func (s *Session) PlayErrorChime() {
	s.playVoices(tone.ErrorChime())
}

func (s *Session) playVoices(voices []tone.Voice) {
	if !s.AudioAvailable() {
		return
	}
	s.push(network.MsgTypeTone, models.NewTone(voices))
}

// Manager tracks live sessions.
type Manager struct {
	sessions map[string]*Session
	mutex    sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
	}
}

func (m *Manager) Add(session *Session) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if _, exists := m.sessions[session.ID]; exists {
		return fmt.Errorf("session %s: %w", session.ID, ErrDuplicateSession)
	}
	m.sessions[session.ID] = session
	return nil
}

func (m *Manager) Remove(sessionID string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.sessions, sessionID)
}

func (m *Manager) Get(sessionID string) (*Session, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	session, exists := m.sessions[sessionID]
	return session, exists
}

// List returns the live sessions, oldest first.
func (m *Manager) List() []*Session {
	m.mutex.RLock()
	result := make([]*Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		result = append(result, session)
	}
	m.mutex.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result
}

func (m *Manager) Len() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.sessions)
}

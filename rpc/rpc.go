package rpc

import (
	"errors"
	"fmt"
	"io"
	"net"
	"net/rpc"
	"time"

	"github.com/wfunc/simonsays/logger"
	"github.com/wfunc/simonsays/models"
	"github.com/wfunc/simonsays/session"
)

// Server manages the RPC listener.
type Server struct {
	listener  net.Listener
	address   string
	rpcServer *rpc.Server
}

// NewServer registers a GameService for sessions and listens on addr.
func NewServer(addr string, sessions *session.Manager) (*Server, error) {
	rpcServer := rpc.NewServer()
	if err := rpcServer.Register(NewGameService(sessions)); err != nil {
		return nil, fmt.Errorf("register game service: %w", err)
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Server{
		listener:  listener,
		address:   listener.Addr().String(),
		rpcServer: rpcServer,
	}, nil
}

func (s *Server) Addr() string {
	return s.address
}

// Start accepts RPC connections until Stop is called.
func (s *Server) Start() error {
	logger.Log.Infof("RPC server listening on %s", s.address)
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				logger.Log.Info("RPC server listener closed.")
				return nil
			}
			logger.Log.Errorf("RPC server accept error: %v", err)
			return err
		}
		go s.ServeConn(conn)
	}
}

func (s *Server) ServeConn(conn io.ReadWriteCloser) {
	s.rpcServer.ServeConn(conn)
}

// Stop closes the RPC listener.
func (s *Server) Stop() {
	if s.listener != nil {
		logger.Log.Info("Stopping RPC server.")
		s.listener.Close()
	}
}

// GameService exposes live sessions to operators. Methods follow the net/rpc
// signature: exported args, pointer reply, error result.
type GameService struct {
	sessions *session.Manager
}

func NewGameService(sessions *session.Manager) *GameService {
	return &GameService{sessions: sessions}
}

type SessionInfo struct {
	ID         string
	RemoteAddr string
	CreatedAt  time.Time
	LastActive time.Time
	Snapshot   models.Snapshot
}

type ListSessionsArgs struct {
	Limit int // 0 lists every session
}

type ListSessionsReply struct {
	Sessions []SessionInfo
}

func (gs *GameService) ListSessions(args *ListSessionsArgs, reply *ListSessionsReply) error {
	for i, sess := range gs.sessions.List() {
		if args.Limit > 0 && i >= args.Limit {
			break
		}
		reply.Sessions = append(reply.Sessions, describe(sess))
	}
	return nil
}

type GetSnapshotArgs struct {
	SessionID string
}

type GetSnapshotReply struct {
	Session SessionInfo
}

func (gs *GameService) GetSnapshot(args *GetSnapshotArgs, reply *GetSnapshotReply) error {
	sess, ok := gs.sessions.Get(args.SessionID)
	if !ok {
		return fmt.Errorf("%s: %w", args.SessionID, session.ErrSessionNotFound)
	}
	reply.Session = describe(sess)
	return nil
}

func describe(sess *session.Session) SessionInfo {
	info := SessionInfo{
		ID:         sess.ID,
		CreatedAt:  sess.CreatedAt,
		LastActive: sess.LastActive(),
	}
	if addr := sess.Conn.RemoteAddr(); addr != nil {
		info.RemoteAddr = addr.String()
	}
	if sess.Controller != nil {
		info.Snapshot = models.NewSnapshot(sess.Controller.Snapshot())
	}
	return info
}

package ipc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"sync"

	"log/slog"

	"pustakam/internal/daemon"
	"pustakam/internal/logging"
	"pustakam/internal/preflight"
)

// Server exposes daemon control via JSON-RPC over a Unix domain socket.
type Server struct {
	path      string
	logger    *slog.Logger
	listener  net.Listener
	rpcServer *rpc.Server

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer configures the IPC server at the given socket path.
func NewServer(ctx context.Context, path string, d *daemon.Daemon, logger *slog.Logger) (*Server, error) {
	if d == nil {
		return nil, errors.New("ipc server requires daemon")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen on socket: %w", err)
	}

	rpcServer := rpc.NewServer()
	srv := &service{daemon: d, logger: logging.WithComponent(logger, "ipc"), ctx: ctx}
	if err := rpcServer.RegisterName("Pustakam", srv); err != nil {
		listener.Close()
		return nil, fmt.Errorf("register rpc service: %w", err)
	}

	serverCtx, cancel := context.WithCancel(ctx)
	return &Server{
		path:      path,
		logger:    logger,
		listener:  listener,
		rpcServer: rpcServer,
		ctx:       serverCtx,
		cancel:    cancel,
	}, nil
}

// Serve starts accepting RPC connections until the context is canceled.
func (s *Server) Serve() {
	s.logger.Debug("IPC server listening", logging.String("socket", s.path))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := s.listener.Accept()
			if err != nil {
				select {
				case <-s.ctx.Done():
					return
				default:
				}
				s.logger.Warn("accept failed", logging.Error(err))
				continue
			}
			s.wg.Add(1)
			go func(c net.Conn) {
				defer s.wg.Done()
				s.rpcServer.ServeCodec(jsonrpc.NewServerCodec(c))
			}(conn)
		}
	}()
}

// Close stops the server and removes the socket file.
func (s *Server) Close() {
	s.cancel()
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.wg.Wait()
	if err := os.RemoveAll(s.path); err != nil {
		s.logger.Warn("failed to remove socket",
			logging.String("socket", s.path),
			logging.Error(err))
	}
}

type service struct {
	daemon *daemon.Daemon
	logger *slog.Logger
	ctx    context.Context
}

func convertChecks(checks []preflight.Check) []Check {
	out := make([]Check, 0, len(checks))
	for _, check := range checks {
		out = append(out, Check{Name: check.Name, OK: check.OK, Detail: check.Detail})
	}
	return out
}

func (s *service) Ping(_ PingRequest, resp *PingResponse) error {
	resp.PID = os.Getpid()
	return nil
}

func (s *service) Status(_ StatusRequest, resp *StatusResponse) error {
	status := s.daemon.Status(s.ctx)
	resp.PID = status.PID
	resp.StartedAt = status.StartedAt
	resp.DatabasePath = status.DatabasePath
	resp.SocketPath = status.SocketPath
	resp.LogPath = status.LogPath
	resp.ActiveBooks = status.ActiveBooks
	resp.CreditBalance = status.CreditBalance
	resp.CreditsOn = status.CreditsOn
	resp.Checks = convertChecks(status.Checks)
	return nil
}

func (s *service) GenerateStart(req GenerateStartRequest, resp *GenerateStartResponse) error {
	s.logger.Debug("generation start requested", logging.String(logging.FieldBookID, req.BookID))
	if err := s.daemon.StartGeneration(s.ctx, req.BookID); err != nil {
		return err
	}
	resp.Started = true
	return nil
}

func (s *service) GeneratePause(req GeneratePauseRequest, resp *GeneratePauseResponse) error {
	s.logger.Debug("generation pause requested", logging.String(logging.FieldBookID, req.BookID))
	if err := s.daemon.PauseGeneration(req.BookID); err != nil {
		return err
	}
	resp.Paused = true
	return nil
}

func (s *service) ModuleRetry(req ModuleRetryRequest, resp *ModuleRetryResponse) error {
	if err := s.daemon.RetryModule(s.ctx, req.BookID, req.ModuleID); err != nil {
		return err
	}
	resp.Started = true
	return nil
}

func (s *service) ModuleRegenerate(req ModuleRegenerateRequest, resp *ModuleRegenerateResponse) error {
	if err := s.daemon.RegenerateModule(s.ctx, req.BookID, req.ModuleID); err != nil {
		return err
	}
	resp.Started = true
	return nil
}

func (s *service) BookStatus(req BookStatusRequest, resp *BookStatusResponse) error {
	view, err := s.daemon.BookStatus(s.ctx, req.BookID, req.WithContent)
	if err != nil {
		return err
	}
	resp.Book = view
	return nil
}

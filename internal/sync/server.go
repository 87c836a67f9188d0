package sync

import (
	"bufio"
	"errors"
	"net"
	"sync"

	"go.uber.org/zap"
)

// Server accepts line-oriented TCP subscribers for the change feed.
type Server struct {
	Addr string
	Hub  *Hub

	mu     sync.Mutex
	ln     net.Listener
	closed bool
}

func NewServer(addr string, hub *Hub) *Server {
	return &Server{Addr: addr, Hub: hub}
}

// Run blocks accepting connections until Close is called.
func (s *Server) Run() error {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

func (s *Server) Serve(ln net.Listener) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		_ = ln.Close()
		return net.ErrClosed
	}
	s.ln = ln
	s.mu.Unlock()

	s.Hub.log.Info("tcp feed listening", zap.String("addr", ln.Addr().String()))

	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.Hub.log.Warn("tcp accept", zap.Error(err))
			continue
		}

		s.Hub.Add(conn)
		s.Hub.welcome(conn)
		s.Hub.log.Debug("tcp subscriber connected", zap.Stringer("addr", conn.RemoteAddr()))

		go func(c net.Conn) {
			defer func() {
				s.Hub.Remove(c)
				s.Hub.log.Debug("tcp subscriber disconnected", zap.Stringer("addr", c.RemoteAddr()))
			}()

			// subscribers are read-only; drain until they hang up
			sc := bufio.NewScanner(c)
			for sc.Scan() {
			}
		}(conn)
	}
}

func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.ln == nil {
		return nil
	}
	return s.ln.Close()
}

// Package content implements the content side of the process split: it
// takes requests off a transport, renders documents and reports back.
package content

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"tessera/pkg/engine"
	"tessera/pkg/ipc"
	"tessera/pkg/script"
)

// Transport is the content-facing half of an ipc transport.
type Transport interface {
	RecvForContent() (ipc.BrowserToContent, error)
	SendToBrowser(msg ipc.ContentToBrowser)
}

// Server answers browser requests. It is driven by Drain and is not safe for
// concurrent use.
type Server struct {
	log       *zap.Logger
	transport Transport
	documents map[uint64]engine.Output // until taken by the browser side
	frame     uint64
	stopped   bool
}

func NewServer(transport Transport, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		log:       log.Named("content"),
		transport: transport,
		documents: make(map[uint64]engine.Output),
	}
}

// Drain handles queued messages until the queue is empty, a Shutdown has
// been acknowledged or ctx is done. Undecodable messages are reported to the
// browser as error logs and skipped.
func (s *Server) Drain(ctx context.Context) error {
	for !s.stopped {
		if err := ctx.Err(); err != nil {
			return err
		}
		msg, err := s.transport.RecvForContent()
		if errors.Is(err, ipc.ErrEmpty) {
			return nil
		}
		if err != nil {
			s.log.Warn("Dropping undecodable message", zap.Error(err))
			s.reply(ipc.Log{Level: ipc.LevelError, Message: fmt.Sprintf("bad message: %v", err)})
			continue
		}
		s.Handle(msg)
	}
	return nil
}

// Handle processes a single message.
func (s *Server) Handle(msg ipc.BrowserToContent) {
	if s.stopped {
		s.log.Debug("Ignoring message after shutdown", zap.Stringer("message", msg))
		return
	}
	switch m := msg.(type) {
	case ipc.LoadDocument:
		s.load(m)
	case ipc.Tick:
		s.frame = m.FrameIndex
		s.log.Debug("Tick", zap.Uint64("frame", m.FrameIndex))
	case ipc.Shutdown:
		s.stopped = true
		s.reply(ipc.AckShutdown{})
		s.log.Debug("Shutdown acknowledged")
	}
}

func (s *Server) load(m ipc.LoadDocument) {
	out := engine.RenderDocument(m.HTML, m.Viewport.Width, m.Viewport.Height)
	s.documents[m.RequestID] = out

	host := script.NewStubHost(s.log)
	if err := host.Execute(out.Scripts); err != nil {
		var unsupported *script.UnsupportedError
		if errors.As(err, &unsupported) {
			s.log.Warn("Script execution unsupported", zap.String("url", m.URL), zap.Int("scripts", unsupported.ScriptCount))
			s.reply(ipc.Log{Level: ipc.LevelWarn, Message: err.Error()})
		} else {
			s.reply(ipc.Log{Level: ipc.LevelError, Message: err.Error()})
		}
	}
	for _, d := range host.Diagnostics() {
		s.reply(ipc.Log{Level: ipc.LevelWarn, Message: fmt.Sprintf("script in node %d: %v", d.NodeID, d.Err)})
	}

	s.log.Debug("Document ready",
		zap.Uint64("request", m.RequestID),
		zap.String("url", m.URL),
		zap.Uint64("frame", s.frame),
		zap.Int("nodes", out.Document.Len()),
		zap.Int("commands", len(out.DisplayList.Commands)))
	s.reply(ipc.DocumentReady{RequestID: m.RequestID, CommandCount: uint32(len(out.DisplayList.Commands))})
}

func (s *Server) reply(msg ipc.ContentToBrowser) {
	s.transport.SendToBrowser(msg)
}

// TakeDocument returns the output rendered for a request and forgets it.
func (s *Server) TakeDocument(requestID uint64) (engine.Output, bool) {
	out, ok := s.documents[requestID]
	delete(s.documents, requestID)
	return out, ok
}

// Stopped reports whether Shutdown has been handled.
func (s *Server) Stopped() bool {
	return s.stopped
}

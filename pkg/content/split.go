package content

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"tessera/pkg/engine"
	"tessera/pkg/ipc"
)

// Result is what the browser side learns from one in-process load.
type Result struct {
	Ready  ipc.DocumentReady
	Logs   []ipc.Log
	Output engine.Output
}

// LoadInProcess renders a document through the message boundary: the
// request and a Shutdown are encoded onto a fresh transport, the server
// drains them and the replies are decoded and checked.
func LoadInProcess(ctx context.Context, req ipc.LoadDocument, log *zap.Logger) (*Result, error) {
	transport := ipc.NewInProcessTransport()
	server := NewServer(transport, log)

	transport.SendToContent(req)
	transport.SendToContent(ipc.Shutdown{})
	if err := server.Drain(ctx); err != nil {
		return nil, fmt.Errorf("content side: %w", err)
	}

	res := &Result{}
	var ready, acked bool
	for {
		msg, err := transport.RecvForBrowser()
		if errors.Is(err, ipc.ErrEmpty) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decoding reply: %w", err)
		}
		switch m := msg.(type) {
		case ipc.DocumentReady:
			res.Ready = m
			ready = true
		case ipc.Log:
			res.Logs = append(res.Logs, m)
		case ipc.AckShutdown:
			acked = true
		}
	}
	if !ready {
		return nil, fmt.Errorf("no DocumentReady for request %d", req.RequestID)
	}
	if !acked {
		return nil, errors.New("content side did not acknowledge shutdown")
	}
	if res.Ready.RequestID != req.RequestID {
		return nil, fmt.Errorf("reply for request %d, expected %d", res.Ready.RequestID, req.RequestID)
	}

	out, ok := server.TakeDocument(req.RequestID)
	if !ok {
		return nil, fmt.Errorf("request %d has no output", req.RequestID)
	}
	if int(res.Ready.CommandCount) != len(out.DisplayList.Commands) {
		return nil, fmt.Errorf("command count mismatch: reported %d, have %d", res.Ready.CommandCount, len(out.DisplayList.Commands))
	}
	res.Output = out
	return res, nil
}

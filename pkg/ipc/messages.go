// Package ipc defines the messages exchanged between the browser side and
// the content side, their binary encoding and an in-process transport.
package ipc

import "fmt"

// SchemaVersion prefixes every encoded message.
const SchemaVersion uint32 = 1

type Viewport struct {
	Width  uint32
	Height uint32
}

// BrowserToContent is a message sent to the content side. It is implemented
// by LoadDocument, Tick and Shutdown.
type BrowserToContent interface {
	browserToContent()
	String() string
}

type LoadDocument struct {
	RequestID uint64
	URL       string
	HTML      string
	Viewport  Viewport
}

type Tick struct {
	FrameIndex uint64
}

type Shutdown struct{}

func (LoadDocument) browserToContent() {}
func (Tick) browserToContent()         {}
func (Shutdown) browserToContent()     {}

func (m LoadDocument) String() string {
	return fmt.Sprintf("LoadDocument(id=%d url=%q %dx%d, %d bytes)",
		m.RequestID, m.URL, m.Viewport.Width, m.Viewport.Height, len(m.HTML))
}

func (m Tick) String() string { return fmt.Sprintf("Tick(%d)", m.FrameIndex) }

func (Shutdown) String() string { return "Shutdown" }

// ContentToBrowser is a message sent back to the browser side. It is
// implemented by DocumentReady, Log and AckShutdown.
type ContentToBrowser interface {
	contentToBrowser()
	String() string
}

type DocumentReady struct {
	RequestID    uint64
	CommandCount uint32
}

type Log struct {
	Level   LogLevel
	Message string
}

type AckShutdown struct{}

func (DocumentReady) contentToBrowser() {}
func (Log) contentToBrowser()           {}
func (AckShutdown) contentToBrowser()   {}

func (m DocumentReady) String() string {
	return fmt.Sprintf("DocumentReady(id=%d commands=%d)", m.RequestID, m.CommandCount)
}

func (m Log) String() string { return fmt.Sprintf("Log(%s %q)", m.Level, m.Message) }

func (AckShutdown) String() string { return "AckShutdown" }

// LogLevel is carried as a single byte on the wire.
type LogLevel uint8

const (
	LevelTrace LogLevel = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
)

func (l LogLevel) String() string {
	switch l {
	case LevelTrace:
		return "trace"
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	}
	return fmt.Sprintf("level(%d)", uint8(l))
}

// message tags, one byte after the schema version
const (
	tagLoadDocument  uint8 = 1
	tagTick          uint8 = 2
	tagShutdown      uint8 = 3
	tagDocumentReady uint8 = 1
	tagLog           uint8 = 2
	tagAckShutdown   uint8 = 3
)

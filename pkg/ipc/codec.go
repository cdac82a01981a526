package ipc

import (
	"encoding/binary"
	"errors"
	"fmt"
	"unicode/utf8"
)

var (
	ErrUnexpectedEOF = errors.New("ipc: unexpected end of message")
	ErrInvalidUTF8   = errors.New("ipc: string is not valid utf-8")
)

// InvalidTagError reports a message tag the decoder does not know.
type InvalidTagError struct {
	Tag uint8
}

func (e *InvalidTagError) Error() string {
	return fmt.Sprintf("ipc: invalid message tag %d", e.Tag)
}

// Wire layout, all integers little-endian:
//
//	u32 schema version | u8 tag | payload
//
// Strings are a u32 byte length followed by UTF-8 bytes.

func EncodeBrowserToContent(msg BrowserToContent) []byte {
	w := newWriter()
	switch m := msg.(type) {
	case LoadDocument:
		w.u8(tagLoadDocument)
		w.u64(m.RequestID)
		w.string(m.URL)
		w.string(m.HTML)
		w.u32(m.Viewport.Width)
		w.u32(m.Viewport.Height)
	case Tick:
		w.u8(tagTick)
		w.u64(m.FrameIndex)
	case Shutdown:
		w.u8(tagShutdown)
	default:
		panic(fmt.Sprintf("ipc: cannot encode %T", msg))
	}
	return w.buf
}

// DecodeBrowserToContent parses one message. The schema version is read but
// not checked; trailing bytes are ignored.
func DecodeBrowserToContent(data []byte) (BrowserToContent, error) {
	r := reader{data: data}
	tag, err := r.header()
	if err != nil {
		return nil, err
	}
	switch tag {
	case tagLoadDocument:
		var m LoadDocument
		if m.RequestID, err = r.u64(); err != nil {
			return nil, err
		}
		if m.URL, err = r.string(); err != nil {
			return nil, err
		}
		if m.HTML, err = r.string(); err != nil {
			return nil, err
		}
		if m.Viewport.Width, err = r.u32(); err != nil {
			return nil, err
		}
		if m.Viewport.Height, err = r.u32(); err != nil {
			return nil, err
		}
		return m, nil
	case tagTick:
		frame, err := r.u64()
		if err != nil {
			return nil, err
		}
		return Tick{FrameIndex: frame}, nil
	case tagShutdown:
		return Shutdown{}, nil
	}
	return nil, &InvalidTagError{Tag: tag}
}

func EncodeContentToBrowser(msg ContentToBrowser) []byte {
	w := newWriter()
	switch m := msg.(type) {
	case DocumentReady:
		w.u8(tagDocumentReady)
		w.u64(m.RequestID)
		w.u32(m.CommandCount)
	case Log:
		w.u8(tagLog)
		w.u8(uint8(m.Level))
		w.string(m.Message)
	case AckShutdown:
		w.u8(tagAckShutdown)
	default:
		panic(fmt.Sprintf("ipc: cannot encode %T", msg))
	}
	return w.buf
}

func DecodeContentToBrowser(data []byte) (ContentToBrowser, error) {
	r := reader{data: data}
	tag, err := r.header()
	if err != nil {
		return nil, err
	}
	switch tag {
	case tagDocumentReady:
		var m DocumentReady
		if m.RequestID, err = r.u64(); err != nil {
			return nil, err
		}
		if m.CommandCount, err = r.u32(); err != nil {
			return nil, err
		}
		return m, nil
	case tagLog:
		level, err := r.u8()
		if err != nil {
			return nil, err
		}
		message, err := r.string()
		if err != nil {
			return nil, err
		}
		return Log{Level: LogLevel(level), Message: message}, nil
	case tagAckShutdown:
		return AckShutdown{}, nil
	}
	return nil, &InvalidTagError{Tag: tag}
}

type writer struct {
	buf []byte
}

func newWriter() *writer {
	w := &writer{buf: make([]byte, 0, 32)}
	w.u32(SchemaVersion)
	return w
}

func (w *writer) u8(v uint8)   { w.buf = append(w.buf, v) }
func (w *writer) u32(v uint32) { w.buf = binary.LittleEndian.AppendUint32(w.buf, v) }
func (w *writer) u64(v uint64) { w.buf = binary.LittleEndian.AppendUint64(w.buf, v) }

func (w *writer) string(s string) {
	w.u32(uint32(len(s)))
	w.buf = append(w.buf, s...)
}

type reader struct {
	data []byte
	off  int
}

func (r *reader) header() (uint8, error) {
	if _, err := r.u32(); err != nil {
		return 0, err
	}
	return r.u8()
}

func (r *reader) take(n int) ([]byte, error) {
	if n < 0 || n > len(r.data)-r.off {
		return nil, ErrUnexpectedEOF
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b, nil
}

func (r *reader) u8() (uint8, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *reader) u32() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *reader) u64() (uint64, error) {
	b, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (r *reader) string() (string, error) {
	n, err := r.u32()
	if err != nil {
		return "", err
	}
	if uint64(n) > uint64(len(r.data)-r.off) {
		return "", ErrUnexpectedEOF
	}
	b, err := r.take(int(n))
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", ErrInvalidUTF8
	}
	return string(b), nil
}

package ipc

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodec_LoadDocumentRoundTrip(t *testing.T) {
	msg := LoadDocument{
		RequestID: 44,
		URL:       "file:///test.html",
		HTML:      "<p>hello</p>",
		Viewport:  Viewport{Width: 800, Height: 600},
	}
	got, err := DecodeBrowserToContent(EncodeBrowserToContent(msg))
	require.NoError(t, err)
	assert.Equal(t, msg, got)
}

func TestCodec_LogRoundTrip(t *testing.T) {
	msg := Log{Level: LevelInfo, Message: "ready ✓"}
	got, err := DecodeContentToBrowser(EncodeContentToBrowser(msg))
	require.NoError(t, err)
	assert.Equal(t, msg, got)
}

func TestCodec_WireLayout(t *testing.T) {
	assert.Equal(t,
		[]byte{1, 0, 0, 0, 2, 3, 0, 0, 0, 0, 0, 0, 0},
		EncodeBrowserToContent(Tick{FrameIndex: 3}))
	assert.Equal(t, []byte{1, 0, 0, 0, 3}, EncodeBrowserToContent(Shutdown{}))
	assert.Equal(t,
		[]byte{1, 0, 0, 0, 1, 7, 0, 0, 0, 0, 0, 0, 0, 9, 0, 0, 0},
		EncodeContentToBrowser(DocumentReady{RequestID: 7, CommandCount: 9}))
	assert.Equal(t,
		[]byte{1, 0, 0, 0, 2, 3, 2, 0, 0, 0, 'h', 'i'},
		EncodeContentToBrowser(Log{Level: LevelWarn, Message: "hi"}))
	assert.Equal(t, []byte{1, 0, 0, 0, 3}, EncodeContentToBrowser(AckShutdown{}))
}

func TestCodec_TruncatedInput(t *testing.T) {
	full := EncodeBrowserToContent(LoadDocument{
		RequestID: 1,
		URL:       "about:blank",
		HTML:      "<p>x</p>",
		Viewport:  Viewport{Width: 10, Height: 20},
	})
	for n := 0; n < len(full); n++ {
		_, err := DecodeBrowserToContent(full[:n])
		assert.ErrorIs(t, err, ErrUnexpectedEOF, "prefix of %d bytes", n)
	}

	reply := EncodeContentToBrowser(Log{Level: LevelError, Message: "boom"})
	for n := 0; n < len(reply); n++ {
		_, err := DecodeContentToBrowser(reply[:n])
		assert.ErrorIs(t, err, ErrUnexpectedEOF, "prefix of %d bytes", n)
	}
}

func TestCodec_OversizedStringLength(t *testing.T) {
	data := []byte{1, 0, 0, 0, 2, 0, 0xff, 0xff, 0xff, 0xff, 'a'}
	_, err := DecodeContentToBrowser(data)
	assert.ErrorIs(t, err, ErrUnexpectedEOF)
}

func TestCodec_InvalidTag(t *testing.T) {
	_, err := DecodeBrowserToContent([]byte{1, 0, 0, 0, 9})
	var tagErr *InvalidTagError
	require.True(t, errors.As(err, &tagErr))
	assert.Equal(t, uint8(9), tagErr.Tag)

	_, err = DecodeContentToBrowser([]byte{1, 0, 0, 0, 0})
	require.True(t, errors.As(err, &tagErr))
	assert.Equal(t, uint8(0), tagErr.Tag)
}

func TestCodec_InvalidUTF8(t *testing.T) {
	data := []byte{1, 0, 0, 0, 2, 1, 2, 0, 0, 0, 0xc3, 0x28}
	_, err := DecodeContentToBrowser(data)
	assert.ErrorIs(t, err, ErrInvalidUTF8)
}

func TestCodec_IgnoresVersionAndTrailingBytes(t *testing.T) {
	data := append([]byte{7, 0, 0, 0, 3}, 0xaa, 0xbb)
	got, err := DecodeBrowserToContent(data)
	require.NoError(t, err)
	assert.Equal(t, Shutdown{}, got)
}

func TestTransport_FIFO(t *testing.T) {
	var tr InProcessTransport

	_, err := tr.RecvForContent()
	assert.ErrorIs(t, err, ErrEmpty)

	tr.SendToContent(Tick{FrameIndex: 3})
	tr.SendToContent(Shutdown{})
	tr.SendToBrowser(AckShutdown{})

	toContent, toBrowser := tr.Pending()
	assert.Equal(t, 2, toContent)
	assert.Equal(t, 1, toBrowser)

	msg, err := tr.RecvForContent()
	require.NoError(t, err)
	assert.Equal(t, Tick{FrameIndex: 3}, msg)

	msg, err = tr.RecvForContent()
	require.NoError(t, err)
	assert.Equal(t, Shutdown{}, msg)

	reply, err := tr.RecvForBrowser()
	require.NoError(t, err)
	assert.Equal(t, AckShutdown{}, reply)

	_, err = tr.RecvForBrowser()
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestTransport_BadPayloadIsConsumed(t *testing.T) {
	tr := NewInProcessTransport()
	tr.PushRawToContent([]byte{1, 0})
	tr.SendToContent(Tick{FrameIndex: 1})

	_, err := tr.RecvForContent()
	assert.ErrorIs(t, err, ErrUnexpectedEOF)

	msg, err := tr.RecvForContent()
	require.NoError(t, err)
	assert.Equal(t, Tick{FrameIndex: 1}, msg)
}

func TestTransport_ConcurrentSenders(t *testing.T) {
	tr := NewInProcessTransport()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				tr.SendToContent(Tick{FrameIndex: uint64(i*100 + j)})
			}
		}(i)
	}
	wg.Wait()

	n := 0
	for {
		_, err := tr.RecvForContent()
		if errors.Is(err, ErrEmpty) {
			break
		}
		require.NoError(t, err)
		n++
	}
	assert.Equal(t, 16*50, n)
}

func TestMessages_String(t *testing.T) {
	assert.Equal(t, "Tick(5)", Tick{FrameIndex: 5}.String())
	assert.Equal(t, `Log(warn "x")`, Log{Level: LevelWarn, Message: "x"}.String())
	assert.Equal(t, "level(42)", LogLevel(42).String())
}

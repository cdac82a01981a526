package ipc

import (
	"errors"
	"sync"
)

// ErrEmpty is returned by the receive methods when no message is queued.
var ErrEmpty = errors.New("ipc: no message queued")

// InProcessTransport carries encoded messages between the two sides through
// a pair of FIFO queues. The zero value is ready to use and it is safe for
// concurrent use.
type InProcessTransport struct {
	mu        sync.Mutex
	toContent [][]byte
	toBrowser [][]byte
}

func NewInProcessTransport() *InProcessTransport {
	return &InProcessTransport{}
}

func (t *InProcessTransport) SendToContent(msg BrowserToContent) {
	payload := EncodeBrowserToContent(msg)
	t.mu.Lock()
	t.toContent = append(t.toContent, payload)
	t.mu.Unlock()
}

// RecvForContent pops the oldest message for the content side. A payload
// that fails to decode is still consumed.
func (t *InProcessTransport) RecvForContent() (BrowserToContent, error) {
	payload, ok := t.pop(&t.toContent)
	if !ok {
		return nil, ErrEmpty
	}
	return DecodeBrowserToContent(payload)
}

func (t *InProcessTransport) SendToBrowser(msg ContentToBrowser) {
	payload := EncodeContentToBrowser(msg)
	t.mu.Lock()
	t.toBrowser = append(t.toBrowser, payload)
	t.mu.Unlock()
}

func (t *InProcessTransport) RecvForBrowser() (ContentToBrowser, error) {
	payload, ok := t.pop(&t.toBrowser)
	if !ok {
		return nil, ErrEmpty
	}
	return DecodeContentToBrowser(payload)
}

// PushRawToContent queues an already encoded payload.
func (t *InProcessTransport) PushRawToContent(payload []byte) {
	t.mu.Lock()
	t.toContent = append(t.toContent, payload)
	t.mu.Unlock()
}

// Pending returns the queue lengths towards content and browser.
func (t *InProcessTransport) Pending() (toContent, toBrowser int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.toContent), len(t.toBrowser)
}

func (t *InProcessTransport) pop(queue *[][]byte) ([]byte, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	q := *queue
	if len(q) == 0 {
		return nil, false
	}
	payload := q[0]
	q[0] = nil
	*queue = q[1:]
	return payload, true
}

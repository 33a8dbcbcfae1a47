package editor

import (
	"sync"
	"time"
)

// StatusKind is the tone of a status message.
type StatusKind string

const (
	StatusInfo    StatusKind = "info"
	StatusSuccess StatusKind = "success"
	StatusError   StatusKind = "error"
)

// StatusMessage is a transient line shown under the editor.
type StatusMessage struct {
	Kind StatusKind `json:"kind"`
	Text string     `json:"text"`
	At   time.Time  `json:"at"`
}

// statusBoard holds at most one message and dismisses it after ttl.
type statusBoard struct {
	mu      sync.Mutex
	ttl     time.Duration
	current *StatusMessage
	timer   *time.Timer
	notify  func(StatusMessage)
}

func newStatusBoard(ttl time.Duration, notify func(StatusMessage)) *statusBoard {
	return &statusBoard{ttl: ttl, notify: notify}
}

func (b *statusBoard) show(kind StatusKind, text string) {
	msg := &StatusMessage{Kind: kind, Text: text, At: time.Now()}

	b.mu.Lock()
	if b.timer != nil {
		b.timer.Stop()
	}
	b.current = msg
	b.timer = time.AfterFunc(b.ttl, func() { b.dismiss(msg) })
	b.mu.Unlock()

	if b.notify != nil {
		b.notify(*msg)
	}
}

// dismiss clears msg unless a newer message replaced it.
func (b *statusBoard) dismiss(msg *StatusMessage) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.current == msg {
		b.current = nil
	}
}

func (b *statusBoard) get() (StatusMessage, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.current == nil {
		return StatusMessage{}, false
	}
	return *b.current, true
}

func (b *statusBoard) stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	b.current = nil
}

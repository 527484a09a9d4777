// Package flash shows a transient message that hides itself after a fixed
// delay, the only asynchronous behaviour of the form engine.
package flash

import (
	"sync"
	"time"
)

// DefaultDelay is how long a message stays visible.
const DefaultDelay = 2500 * time.Millisecond

// Option configures a Message.
type Option func(*Message)

// WithDelay overrides DefaultDelay.
func WithDelay(d time.Duration) Option {
	return func(m *Message) {
		if d > 0 {
			m.delay = d
		}
	}
}

// WithOnChange registers a callback invoked with the visible text whenever
// the message is shown or hidden (empty text and false on hide). It runs on
// the timer goroutine for hides.
func WithOnChange(fn func(text string, visible bool)) Option {
	return func(m *Message) {
		m.onChange = fn
	}
}

// Message holds at most one visible text. Showing a new text restarts the
// timer.
type Message struct {
	mu       sync.Mutex
	delay    time.Duration
	text     string
	visible  bool
	timer    *time.Timer
	gen      uint64
	onChange func(string, bool)
}

// New returns a hidden message.
func New(opts ...Option) *Message {
	m := &Message{delay: DefaultDelay}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m
}

// Show makes text visible and schedules it to hide after the delay.
func (m *Message) Show(text string) {
	m.mu.Lock()
	if m.timer != nil {
		m.timer.Stop()
	}
	m.gen++
	gen := m.gen
	m.text = text
	m.visible = true
	m.timer = time.AfterFunc(m.delay, func() { m.expire(gen) })
	onChange := m.onChange
	m.mu.Unlock()

	if onChange != nil {
		onChange(text, true)
	}
}

// Hide dismisses the message immediately.
func (m *Message) Hide() {
	m.mu.Lock()
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	m.gen++
	wasVisible := m.visible
	m.text, m.visible = "", false
	onChange := m.onChange
	m.mu.Unlock()

	if wasVisible && onChange != nil {
		onChange("", false)
	}
}

// Current returns the visible text.
func (m *Message) Current() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.text, m.visible
}

// Delay returns the configured visibility window.
func (m *Message) Delay() time.Duration {
	return m.delay
}

func (m *Message) expire(gen uint64) {
	m.mu.Lock()
	if gen != m.gen || !m.visible {
		m.mu.Unlock()
		return
	}
	m.text, m.visible = "", false
	m.timer = nil
	onChange := m.onChange
	m.mu.Unlock()

	if onChange != nil {
		onChange("", false)
	}
}

// Package notify renders the short tone played when someone else posts in
// the open room.
package notify

import (
	"encoding/binary"
	"errors"
	"io"
	"math"
	"sync"
	"time"
)

const (
	Frequency  = 880.0
	Duration   = 120 * time.Millisecond
	Gain       = 0.08
	SampleRate = 44100
)

var ErrClosed = errors.New("tone is closed")

// Tone is rendered once, on first use, into signed 16-bit little-endian mono
// PCM and written to its output on every Play.
type Tone struct {
	mu     sync.Mutex
	pcm    []byte
	out    io.Writer
	closed bool
}

func NewTone(out io.Writer) *Tone {
	if out == nil {
		out = io.Discard
	}
	return &Tone{out: out}
}

func (t *Tone) SetOutput(out io.Writer) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if out == nil {
		out = io.Discard
	}
	t.out = out
}

// PCM returns the rendered samples, nil once the tone is closed.
func (t *Tone) PCM() []byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.samplesLocked()
}

func (t *Tone) samplesLocked() []byte {
	if t.pcm == nil && !t.closed {
		t.pcm = render(Frequency, Duration, Gain, SampleRate)
	}
	return t.pcm
}

func (t *Tone) Play() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return ErrClosed
	}

	_, err := t.out.Write(t.samplesLocked())
	return err
}

// Close releases the rendered samples. Later calls to Play fail with
// ErrClosed.
func (t *Tone) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	t.pcm = nil
	if c, ok := t.out.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func render(freq float64, d time.Duration, gain float64, rate int) []byte {
	n := int(float64(rate) * d.Seconds())
	buf := make([]byte, 2*n)
	for i := 0; i < n; i++ {
		v := gain * math.Sin(2*math.Pi*freq*float64(i)/float64(rate))
		binary.LittleEndian.PutUint16(buf[2*i:], uint16(int16(v*math.MaxInt16)))
	}
	return buf
}

var (
	sharedMu   sync.Mutex
	sharedOnce sync.Once
	shared     *Tone
)

// Shared is the process-wide tone, created on first use.
func Shared() *Tone {
	sharedOnce.Do(func() {
		sharedMu.Lock()
		defer sharedMu.Unlock()
		shared = NewTone(io.Discard)
	})

	sharedMu.Lock()
	defer sharedMu.Unlock()
	return shared
}

// CloseShared disposes of the process-wide tone. A later Shared call returns
// the closed instance.
func CloseShared() error {
	sharedMu.Lock()
	t := shared
	sharedMu.Unlock()
	if t == nil {
		return nil
	}
	return t.Close()
}

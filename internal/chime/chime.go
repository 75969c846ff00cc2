// Package chime plays short alert tones for urgent reminders via the
// system audio device.
package chime

import (
	"bytes"
	"context"
	"encoding/binary"
	"math"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/hammamikhairi/proofbox/internal/domain"
	"github.com/hammamikhairi/proofbox/internal/logger"
)

const (
	sampleRate   = 24000
	channelCount = 1
)

// Chime synthesizes and plays alert tones via oto.
type Chime struct {
	ctx *oto.Context
	log *logger.Logger
	mu  sync.Mutex
}

// New creates a chime player. Initializes the system audio context.
// Returns an error if the audio device is unavailable; callers should
// treat that as "run silent", not fatal.
func New(log *logger.Logger) (*Chime, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: channelCount,
		Format:       oto.FormatSignedInt16LE,
	}

	ctx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return nil, err
	}
	<-readyChan

	log.Debug("chime initialized (rate=%d)", sampleRate)
	return &Chime{ctx: ctx, log: log}, nil
}

// Ring plays a two-note alert. Blocks until playback finishes; one ring
// at a time.
func (c *Chime) Ring() {
	c.mu.Lock()
	defer c.mu.Unlock()

	// A5 then E5, a short descending ding-dong.
	pcm := append(tone(880, 180*time.Millisecond), tone(659.25, 260*time.Millisecond)...)
	c.play(pcm)
}

func (c *Chime) play(pcm []byte) {
	player := c.ctx.NewPlayer(bytes.NewReader(pcm))
	player.Play()
	for player.IsPlaying() {
		time.Sleep(10 * time.Millisecond)
	}
	player.Close()
}

// tone renders a sine wave as signed 16-bit LE PCM with a linear fade
// at both ends to avoid clicks.
func tone(freq float64, dur time.Duration) []byte {
	n := int(float64(sampleRate) * dur.Seconds())
	fade := sampleRate / 100 // 10ms
	buf := make([]byte, n*2)
	for i := 0; i < n; i++ {
		v := math.Sin(2 * math.Pi * freq * float64(i) / sampleRate)
		gain := 0.35
		if i < fade {
			gain *= float64(i) / float64(fade)
		} else if n-i < fade {
			gain *= float64(n-i) / float64(fade)
		}
		sample := int16(v * gain * math.MaxInt16)
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(sample))
	}
	return buf
}

// RingingNotifier wraps another notifier and rings the chime on urgent
// notifications. Normal notifications pass through silently.
type RingingNotifier struct {
	inner domain.Notifier
	chime *Chime
}

var _ domain.Notifier = (*RingingNotifier)(nil)

// NewRingingNotifier wraps inner. A nil chime disables the sound and
// leaves the wrapper a pass-through.
func NewRingingNotifier(inner domain.Notifier, chime *Chime) *RingingNotifier {
	return &RingingNotifier{inner: inner, chime: chime}
}

// Notify passes through to the wrapped notifier.
func (n *RingingNotifier) Notify(ctx context.Context, message string) error {
	return n.inner.Notify(ctx, message)
}

// NotifyUrgent rings, then passes through. The ring happens off the
// caller's goroutine so a slow audio device never delays the message.
func (n *RingingNotifier) NotifyUrgent(ctx context.Context, message string) error {
	if n.chime != nil {
		go n.chime.Ring()
	}
	return n.inner.NotifyUrgent(ctx, message)
}

// Package decoder reconstructs validated tag identifiers from the raw
// character stream a keyboard-wedge reader emits: one symbol per physical
// keystroke event, terminated by an enter keystroke, with no framing
// beyond that.
package decoder

import (
	"log"
	"strings"
	"time"
)

// Reason classifies why a finalized candidate was rejected.
type Reason string

const (
	ReasonFormat    Reason = "format"
	ReasonTooShort  Reason = "too-short"
	ReasonTooLong   Reason = "too-long"
	ReasonZeroValue Reason = "zero-value"
)

// Listener receives decode outcomes. Implementations must not block; the
// decoder calls them inline from Feed.
type Listener interface {
	TagDetected(tag string, at time.Time)
	InvalidScan(reason Reason, candidate string, at time.Time)
	ScanThrottled(tag string, at time.Time)
}

// noiseFinalizeLen is the buffer length at which a non-hex symbol is taken
// as a finalize trigger rather than noise. Readers occasionally emit stray
// characters after a complete tag; below this length the buffer cannot be
// a tag, so it is discarded instead.
const noiseFinalizeLen = 8

type Config struct {
	// InputTimeout is the maximum gap between two symbols of one scan.
	// A longer gap discards the buffered partial as stale.
	InputTimeout time.Duration

	// MinScanInterval suppresses a validated tag arriving this soon after
	// the previous accepted one (reader repeat-fire).
	MinScanInterval time.Duration

	// MaxBufferLength caps the buffer; on overflow the oldest characters
	// are dropped, keeping the most recent ones.
	MaxBufferLength int

	TagLengthMin int
	TagLengthMax int

	// Now is the clock; nil means time.Now. Injected for tests.
	Now func() time.Time
}

// Decoder is the per-reader decode state machine. One hardware stream is
// inherently sequential, so Feed is not safe for concurrent use.
type Decoder struct {
	cfg      Config
	listener Listener
	logger   *log.Logger

	buf          []byte
	lastEvent    time.Time
	lastAccepted time.Time
}

func New(cfg Config, listener Listener, logger *log.Logger) *Decoder {
	if cfg.InputTimeout <= 0 {
		cfg.InputTimeout = 500 * time.Millisecond
	}
	if cfg.TagLengthMin <= 0 {
		cfg.TagLengthMin = 8
	}
	if cfg.TagLengthMax < cfg.TagLengthMin {
		cfg.TagLengthMax = 12
	}
	if cfg.MaxBufferLength < cfg.TagLengthMax {
		cfg.MaxBufferLength = 64
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Decoder{cfg: cfg, listener: listener, logger: logger}
}

// Feed processes one symbol from the reader.
func (d *Decoder) Feed(sym byte) {
	now := d.cfg.Now()

	// Stale partial: the reader emits a whole tag within milliseconds, so
	// a long inter-symbol gap means the buffer belongs to an abandoned scan.
	if len(d.buf) > 0 && !d.lastEvent.IsZero() && now.Sub(d.lastEvent) > d.cfg.InputTimeout {
		d.logger.Printf("decoder: discarding stale partial (%d chars)", len(d.buf))
		d.buf = d.buf[:0]
	}
	d.lastEvent = now

	switch {
	case sym == '\n' || sym == '\r':
		d.finalize(now)

	case isHexDigit(sym):
		d.buf = append(d.buf, upperHex(sym))
		if len(d.buf) > d.cfg.MaxBufferLength {
			// Keep the most recent characters: the tag digits arrive last,
			// immediately before the terminator.
			d.buf = d.buf[len(d.buf)-d.cfg.MaxBufferLength:]
		}

	default:
		if len(d.buf) >= noiseFinalizeLen {
			// Tolerate reader noise after a complete tag.
			d.finalize(now)
		} else if len(d.buf) > 0 {
			d.logger.Printf("decoder: discarding noise (%d chars)", len(d.buf))
			d.buf = d.buf[:0]
		}
	}
}

// FeedString feeds each byte of s in order.
func (d *Decoder) FeedString(s string) {
	for i := 0; i < len(s); i++ {
		d.Feed(s[i])
	}
}

func (d *Decoder) finalize(now time.Time) {
	if len(d.buf) == 0 {
		return
	}
	candidate := string(d.buf)
	d.buf = d.buf[:0]

	if reason, ok := d.validate(candidate); !ok {
		d.listener.InvalidScan(reason, candidate, now)
		return
	}

	if !d.lastAccepted.IsZero() && now.Sub(d.lastAccepted) < d.cfg.MinScanInterval {
		// Physical misreads repeat-fire the same tag; suppress instead of
		// pushing a second login through.
		d.listener.ScanThrottled(candidate, now)
		return
	}
	d.lastAccepted = now

	d.listener.TagDetected(candidate, now)
}

func (d *Decoder) validate(candidate string) (Reason, bool) {
	for i := 0; i < len(candidate); i++ {
		c := candidate[i]
		if !(c >= '0' && c <= '9' || c >= 'A' && c <= 'F') {
			// Unreachable via Feed (only normalized hex is buffered), but
			// validate stands alone for direct candidates.
			return ReasonFormat, false
		}
	}
	if len(candidate) < d.cfg.TagLengthMin {
		return ReasonTooShort, false
	}
	if len(candidate) > d.cfg.TagLengthMax {
		return ReasonTooLong, false
	}
	// Tags up to 20 hex digits exceed uint64; test the value via digits.
	if strings.TrimLeft(candidate, "0") == "" {
		return ReasonZeroValue, false
	}
	return "", true
}

func isHexDigit(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'
}

func upperHex(c byte) byte {
	if c >= 'a' && c <= 'f' {
		return c - ('a' - 'A')
	}
	return c
}

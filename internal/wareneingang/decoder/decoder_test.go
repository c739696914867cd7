package decoder_test

import (
	"io"
	"log"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shirtful/wareneingang/server/internal/wareneingang/decoder"
)

type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

type recordedInvalid struct {
	reason    decoder.Reason
	candidate string
}

type recorder struct {
	tags      []string
	invalid   []recordedInvalid
	throttled []string
}

func (r *recorder) TagDetected(tag string, _ time.Time) {
	r.tags = append(r.tags, tag)
}

func (r *recorder) InvalidScan(reason decoder.Reason, candidate string, _ time.Time) {
	r.invalid = append(r.invalid, recordedInvalid{reason: reason, candidate: candidate})
}

func (r *recorder) ScanThrottled(tag string, _ time.Time) {
	r.throttled = append(r.throttled, tag)
}

func newTestDecoder(cfg decoder.Config, clock *fakeClock) (*decoder.Decoder, *recorder) {
	rec := &recorder{}
	cfg.Now = clock.now
	logger := log.New(io.Discard, "", 0)
	return decoder.New(cfg, rec, logger), rec
}

func TestFeed_SymbolSequenceProducesTag(t *testing.T) {
	clock := newFakeClock()
	d, rec := newTestDecoder(decoder.Config{}, clock)

	for _, sym := range []byte("53004114\n") {
		d.Feed(sym)
		clock.advance(10 * time.Millisecond)
	}

	require.Equal(t, []string{"53004114"}, rec.tags)
	assert.Empty(t, rec.invalid)
}

func TestFeed_LowercaseNormalizedToUpper(t *testing.T) {
	clock := newFakeClock()
	d, rec := newTestDecoder(decoder.Config{}, clock)

	d.FeedString("aabbccdd\n")

	require.Equal(t, []string{"AABBCCDD"}, rec.tags)
}

func TestFeed_RejectionReasons(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		reason decoder.Reason
	}{
		{"too short", "ABC123\n", decoder.ReasonTooShort},
		{"too long", "AABBCCDDEEFF11\n", decoder.ReasonTooLong},
		{"zero value", "00000000\n", decoder.ReasonZeroValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := newFakeClock()
			d, rec := newTestDecoder(decoder.Config{
				TagLengthMin: 8,
				TagLengthMax: 12,
			}, clock)

			d.FeedString(tt.input)

			assert.Empty(t, rec.tags)
			require.Len(t, rec.invalid, 1)
			assert.Equal(t, tt.reason, rec.invalid[0].reason)
		})
	}
}

func TestFeed_TimeoutResetsBuffer(t *testing.T) {
	clock := newFakeClock()
	d, rec := newTestDecoder(decoder.Config{InputTimeout: 500 * time.Millisecond}, clock)

	d.FeedString("5300")
	clock.advance(501 * time.Millisecond)
	d.FeedString("AABBCCDD\n")

	// The stale "5300" prefix is discarded; only the fresh tag survives.
	require.Equal(t, []string{"AABBCCDD"}, rec.tags)
}

func TestFeed_GapEqualToTimeoutDoesNotReset(t *testing.T) {
	clock := newFakeClock()
	d, rec := newTestDecoder(decoder.Config{InputTimeout: 500 * time.Millisecond}, clock)

	d.FeedString("5300")
	clock.advance(500 * time.Millisecond)
	d.FeedString("4114\n")

	require.Equal(t, []string{"53004114"}, rec.tags)
}

func TestFeed_OverflowKeepsMostRecentCharacters(t *testing.T) {
	clock := newFakeClock()
	d, rec := newTestDecoder(decoder.Config{
		TagLengthMin:    8,
		TagLengthMax:    12,
		MaxBufferLength: 12,
	}, clock)

	// 4 characters of leading garbage overflow out the front.
	d.FeedString("FFFF" + "AABBCCDD1122" + "\n")

	require.Equal(t, []string{"AABBCCDD1122"}, rec.tags)
}

func TestFeed_NoiseAfterCompleteTagFinalizes(t *testing.T) {
	clock := newFakeClock()
	d, rec := newTestDecoder(decoder.Config{}, clock)

	// A stray non-hex character after >= 8 buffered digits acts as the
	// terminator.
	d.FeedString("53004114x")

	require.Equal(t, []string{"53004114"}, rec.tags)
}

func TestFeed_NoiseWithShortBufferDiscards(t *testing.T) {
	clock := newFakeClock()
	d, rec := newTestDecoder(decoder.Config{}, clock)

	d.FeedString("5300x")
	d.FeedString("AABBCCDD\n")

	require.Equal(t, []string{"AABBCCDD"}, rec.tags)
	assert.Empty(t, rec.invalid)
}

func TestFeed_RepeatFireThrottled(t *testing.T) {
	clock := newFakeClock()
	d, rec := newTestDecoder(decoder.Config{MinScanInterval: time.Second}, clock)

	d.FeedString("53004114\n")
	clock.advance(200 * time.Millisecond)
	d.FeedString("53004114\n")

	require.Equal(t, []string{"53004114"}, rec.tags)
	require.Equal(t, []string{"53004114"}, rec.throttled)

	// Past the interval the tag is accepted again.
	clock.advance(time.Second)
	d.FeedString("53004114\n")
	assert.Equal(t, []string{"53004114", "53004114"}, rec.tags)
}

func TestFeed_EmptyFinalizeIsIgnored(t *testing.T) {
	clock := newFakeClock()
	d, rec := newTestDecoder(decoder.Config{}, clock)

	d.FeedString("\n\r\n")

	assert.Empty(t, rec.tags)
	assert.Empty(t, rec.invalid)
}

func TestFeed_CRLFDoesNotDoubleFinalize(t *testing.T) {
	clock := newFakeClock()
	d, rec := newTestDecoder(decoder.Config{}, clock)

	d.FeedString("53004114\r\n")

	require.Equal(t, []string{"53004114"}, rec.tags)
}

func TestFeed_AcceptsAllValidLengths(t *testing.T) {
	clock := newFakeClock()
	d, rec := newTestDecoder(decoder.Config{
		TagLengthMin:    6,
		TagLengthMax:    20,
		MaxBufferLength: 20,
		MinScanInterval: 0,
	}, clock)

	for length := 6; length <= 20; length++ {
		d.FeedString(strings.Repeat("A", length) + "\n")
	}

	assert.Len(t, rec.tags, 15)
	assert.Empty(t, rec.invalid)
}

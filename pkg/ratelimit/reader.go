package ratelimit

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"
)

// minBucketSize keeps transfers smooth for very low limits
const minBucketSize = 64 * 1024

// Limiter is a token bucket shared by every reader of one pass, so the limit
// applies to the pass as a whole rather than to each file.
type Limiter struct {
	bytesPerSecond int64
	bucketSize     int64

	mu         sync.Mutex
	tokens     int64
	lastUpdate time.Time
}

// NewLimiter creates a limiter allowing bytesPerSecond on average.
// It returns nil (no limiting) when bytesPerSecond is not positive.
func NewLimiter(bytesPerSecond int64) *Limiter {
	if bytesPerSecond <= 0 {
		return nil
	}

	// Bucket holds one second worth of data, at least minBucketSize
	bucketSize := bytesPerSecond
	if bucketSize < minBucketSize {
		bucketSize = minBucketSize
	}

	return &Limiter{
		bytesPerSecond: bytesPerSecond,
		bucketSize:     bucketSize,
		tokens:         bucketSize,
		lastUpdate:     time.Now(),
	}
}

// Rate returns the configured limit in bytes per second
func (l *Limiter) Rate() int64 {
	return l.bytesPerSecond
}

// Wait blocks until n bytes may be transferred or ctx is done
func (l *Limiter) Wait(ctx context.Context, n int64) error {
	if n > l.bucketSize {
		n = l.bucketSize
	}

	for {
		l.mu.Lock()
		l.refill(time.Now())
		if l.tokens >= n {
			l.tokens -= n
			l.mu.Unlock()
			return nil
		}
		deficit := n - l.tokens
		l.mu.Unlock()

		wait := time.Duration(float64(deficit) / float64(l.bytesPerSecond) * float64(time.Second))
		if wait < time.Millisecond {
			wait = time.Millisecond
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// refill adds tokens for the time elapsed since the last update (lock held)
func (l *Limiter) refill(now time.Time) {
	elapsed := now.Sub(l.lastUpdate)
	add := int64(elapsed.Seconds() * float64(l.bytesPerSecond))
	if add <= 0 {
		return
	}
	l.tokens += add
	if l.tokens > l.bucketSize {
		l.tokens = l.bucketSize
	}
	l.lastUpdate = now
}

// Reader wraps an io.Reader with bandwidth limiting
type Reader struct {
	ctx     context.Context
	reader  io.Reader
	limiter *Limiter
}

// NewReader wraps reader with limiter. A nil limiter returns reader unchanged.
func NewReader(ctx context.Context, reader io.Reader, limiter *Limiter) io.Reader {
	if limiter == nil {
		return reader
	}
	return &Reader{ctx: ctx, reader: reader, limiter: limiter}
}

// Read implements io.Reader, never reading more than one bucket at a time
func (r *Reader) Read(p []byte) (int, error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}

	if int64(len(p)) > r.limiter.bucketSize {
		p = p[:r.limiter.bucketSize]
	}

	if err := r.limiter.Wait(r.ctx, int64(len(p))); err != nil {
		return 0, err
	}

	return r.reader.Read(p)
}

// ParseBandwidth parses a limit such as "512K", "10M" or "1G" (binary
// multiples, optional trailing "B" or "iB") into bytes per second.
// An empty string or "0" means unlimited.
func ParseBandwidth(input string) (int64, error) {
	s := strings.TrimSpace(strings.ToUpper(input))
	if s == "" || s == "0" {
		return 0, nil
	}

	s = strings.TrimSuffix(s, "IB")
	s = strings.TrimSuffix(s, "B")

	multiplier := int64(1)
	switch {
	case strings.HasSuffix(s, "K"):
		multiplier = 1 << 10
	case strings.HasSuffix(s, "M"):
		multiplier = 1 << 20
	case strings.HasSuffix(s, "G"):
		multiplier = 1 << 30
	}
	if multiplier > 1 {
		s = s[:len(s)-1]
	}

	value, err := strconv.ParseFloat(s, 64)
	if err != nil || value < 0 {
		return 0, fmt.Errorf("invalid bandwidth limit: %q", input)
	}

	return int64(value * float64(multiplier)), nil
}

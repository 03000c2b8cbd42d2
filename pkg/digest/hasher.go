package digest

import (
	"context"
	"crypto/md5"
	"fmt"
	"io"
	"sync"

	"github.com/go-git/go-billy/v5"
	"github.com/zeebo/xxh3"

	"github.com/sdejongh/foldermirror/pkg/models"
)

// Algorithm names a 128-bit content hash
type Algorithm string

const (
	// XXH3 is the 128-bit variant of xxHash3, fast non-cryptographic hashing
	XXH3 Algorithm = "xxh3"
	// MD5 is kept for trees previously mirrored with md5 checksums
	MD5 Algorithm = "md5"
)

// DefaultBufferSize is the read chunk size when none is configured
const DefaultBufferSize = 64 * 1024

const minBufferSize = 4096

// ParseAlgorithm validates an algorithm name
func ParseAlgorithm(name string) (Algorithm, error) {
	switch Algorithm(name) {
	case XXH3, MD5:
		return Algorithm(name), nil
	case "":
		return XXH3, nil
	default:
		return "", fmt.Errorf("unsupported hash algorithm: %s (use: xxh3, md5)", name)
	}
}

// ReaderWrapper wraps file readers before hashing or copying (e.g., for rate limiting)
type ReaderWrapper func(io.Reader) io.Reader

// Hasher computes content digests by streaming files in fixed-size chunks,
// so memory use does not depend on file size. It is safe for concurrent use.
type Hasher struct {
	algorithm     Algorithm
	bufferSize    int
	bufferPool    *sync.Pool
	readerWrapper ReaderWrapper
}

// NewHasher creates a hasher for algo reading bufferSize bytes at a time
func NewHasher(algo Algorithm, bufferSize int) *Hasher {
	if algo == "" {
		algo = XXH3
	}
	if bufferSize < minBufferSize {
		bufferSize = minBufferSize
	}
	return &Hasher{
		algorithm:  algo,
		bufferSize: bufferSize,
		bufferPool: &sync.Pool{
			New: func() interface{} {
				buf := make([]byte, bufferSize)
				return &buf
			},
		},
	}
}

// SetReaderWrapper sets a function to wrap readers
func (h *Hasher) SetReaderWrapper(wrapper ReaderWrapper) {
	h.readerWrapper = wrapper
}

// Algorithm returns the configured algorithm
func (h *Hasher) Algorithm() Algorithm {
	return h.algorithm
}

// Sum returns the digest of the file at name in fsys.
// Open and read failures are returned as *models.HashError.
func (h *Hasher) Sum(ctx context.Context, fsys billy.Basic, name string) (models.Digest, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return models.Digest{}, &models.HashError{Path: name, Err: err}
	}
	defer func() {
		_ = f.Close()
	}()

	d, err := h.SumReader(ctx, f)
	if err != nil {
		return models.Digest{}, &models.HashError{Path: name, Err: err}
	}
	return d, nil
}

// SumReader returns the digest of everything read from r
func (h *Hasher) SumReader(ctx context.Context, r io.Reader) (models.Digest, error) {
	if h.readerWrapper != nil {
		r = h.readerWrapper(r)
	}

	w, sum := h.newState()

	bufPtr := h.bufferPool.Get().(*[]byte)
	defer h.bufferPool.Put(bufPtr)
	buf := *bufPtr

	for {
		select {
		case <-ctx.Done():
			return models.Digest{}, ctx.Err()
		default:
		}

		n, err := r.Read(buf)
		if n > 0 {
			_, _ = w.Write(buf[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return models.Digest{}, fmt.Errorf("failed to read: %w", err)
		}
	}

	return sum(), nil
}

// newState returns a fresh hash writer and a function producing its digest
func (h *Hasher) newState() (io.Writer, func() models.Digest) {
	switch h.algorithm {
	case MD5:
		m := md5.New()
		return m, func() models.Digest {
			var d models.Digest
			copy(d[:], m.Sum(nil))
			return d
		}
	default:
		x := xxh3.New()
		return x, func() models.Digest {
			return models.Digest(x.Sum128().Bytes())
		}
	}
}

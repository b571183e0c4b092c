// Package digest implements the content fingerprint used throughout modman:
// a truncated SHA-256, kept to 224 bits so the hex rendering fits a single
// terminal line without wrapping.
package digest

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
)

// Size is the digest length in bytes (224 bits).
const Size = 28

// HexSize is the length of a digest's lowercase hex rendering.
const HexSize = Size * 2

// Digest is a content fingerprint: the first Size bytes of a SHA-256 sum.
type Digest [Size]byte

// Zero is the unset Digest value. Callers track "no original file" with a
// separate bool (FileRecord.HasOriginal) rather than this zero value,
// since the empty file's digest is itself a valid, non-zero Digest.
var Zero Digest

// HashBytes streams r through SHA-256 and returns the truncated digest.
func HashBytes(r io.Reader) (Digest, error) {
	h := sha256.New()
	buf := make([]byte, 32*1024)
	if _, err := io.CopyBuffer(h, r, buf); err != nil {
		return Digest{}, err
	}
	var d Digest
	copy(d[:], h.Sum(nil)[:Size])
	return d, nil
}

// HashFile opens path and returns its truncated SHA-256 digest.
func HashFile(path string) (Digest, error) {
	f, err := os.Open(path)
	if err != nil {
		return Digest{}, err
	}
	defer f.Close()
	return HashBytes(f)
}

// String renders the digest as lowercase, fixed-width hex.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// Equal reports whether two digests are byte-for-byte identical.
func (d Digest) Equal(other Digest) bool {
	return d == other
}

// Parse decodes a 56-character lowercase hex string into a Digest.
func Parse(s string) (Digest, error) {
	var d Digest
	b, err := hex.DecodeString(s)
	if err != nil {
		return Digest{}, err
	}
	if len(b) != Size {
		return Digest{}, &InvalidLengthError{Got: len(b)}
	}
	copy(d[:], b)
	return d, nil
}

// InvalidLengthError reports a hex string that didn't decode to Size bytes.
type InvalidLengthError struct {
	Got int
}

func (e *InvalidLengthError) Error() string {
	return "digest: invalid length"
}

// TeeHasher wraps a writer so that bytes written through it are also hashed,
// letting the activation engine obtain a file's digest in the same pass
// that writes it to disk.
type TeeHasher struct {
	w io.Writer
	h interface {
		io.Writer
		Sum([]byte) []byte
	}
}

// NewTeeHasher returns a Writer that forwards writes to w while hashing them.
func NewTeeHasher(w io.Writer) *TeeHasher {
	return &TeeHasher{w: w, h: sha256.New()}
}

func (t *TeeHasher) Write(p []byte) (int, error) {
	n, err := t.w.Write(p)
	if n > 0 {
		t.h.Write(p[:n])
	}
	return n, err
}

// Sum returns the truncated digest of everything written so far.
func (t *TeeHasher) Sum() Digest {
	var d Digest
	copy(d[:], t.h.Sum(nil)[:Size])
	return d
}

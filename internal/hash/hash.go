// Package hash computes the engine's content digest (XXH64, matching
// the original implementation's verifier) and a separate, unrelated
// job-identity fingerprint (BLAKE3) used to namespace resume and
// journal records rather than to verify content.
package hash

import (
	"encoding/hex"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"
	"github.com/zeebo/blake3"

	"github.com/cclone/cclone/internal/errs"
)

const blockSize = 4 * 1024 * 1024

// File computes the XXH64 digest of path, seeded with 0, streaming it
// in 4 MiB blocks.
func File(path string) (uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, errs.Wrap(errs.FileNotFound, "cannot open file for hashing", err)
		}
		return 0, errs.Wrap(errs.PermissionDenied, "cannot open file for hashing", err)
	}
	defer f.Close()

	h := xxhash.New()
	buf := make([]byte, blockSize)
	if _, err := io.CopyBuffer(h, f, buf); err != nil {
		return 0, errs.Wrap(errs.Unknown, "error reading file for hashing", err)
	}
	return h.Sum64(), nil
}

// VerifyFiles digests both src and dst and reports whether they match.
// A mismatch is not itself an error; it is a boolean outcome the caller
// translates into a ChecksumMismatch error for its job.
func VerifyFiles(src, dst string) (bool, error) {
	srcHash, err := File(src)
	if err != nil {
		return false, err
	}
	dstHash, err := File(dst)
	if err != nil {
		return false, err
	}
	return srcHash == dstHash, nil
}

// JobID returns a short, content-independent fingerprint of a
// (source, destination) pair: the first 8 bytes of the BLAKE3 digest of
// "source\x00destination", hex-encoded. Used only to namespace resume
// and journal records, never for content verification.
func JobID(source, destination string) string {
	h := blake3.New()
	_, _ = h.WriteString(source)
	_, _ = h.Write([]byte{0})
	_, _ = h.WriteString(destination)
	sum := h.Sum(nil)
	return hex.EncodeToString(sum[:8])
}

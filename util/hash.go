package keautil

import (
	"encoding/hex"
	"hash/fnv"
)

// Returns the hex-encoded FNV-1 128-bit hash of the parts. Each part is
// terminated with a NUL byte, so the part boundaries affect the result.
func Fnv128(parts ...string) string {
	h := fnv.New128()
	for _, part := range parts {
		// The hash writer never fails.
		_, _ = h.Write([]byte(part))
		_, _ = h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

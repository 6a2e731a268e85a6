package oracle

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// FragmentHash computes a BLAKE3 hash of a fragment within a namespace and
// returns it as a hex string. The namespace keeps scores from different
// providers apart.
func FragmentHash(namespace, fragment string) string {
	h := blake3.New()
	_, _ = h.Write([]byte(namespace))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(fragment))
	return hex.EncodeToString(h.Sum(nil))
}

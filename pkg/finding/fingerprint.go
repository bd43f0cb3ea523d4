package finding

import (
	"github.com/spaolacci/murmur3"
)

// fingerprint field separator. Keeps ("ab","c") and ("a","bc") distinct.
const fpSep = 0x1f

// Fingerprint returns a stable 64-bit hash of the finding's identity
// (type, data, module). The scan store uses it to deduplicate findings
// accumulated across monitor polls; two findings with equal fingerprints
// are treated as the same observation.
func (f Finding) Fingerprint() uint64 {
	h := murmur3.New64()
	h.Write([]byte(f.Type))
	h.Write([]byte{fpSep})
	h.Write([]byte(f.Data))
	h.Write([]byte{fpSep})
	h.Write([]byte(f.Module))
	return h.Sum64()
}

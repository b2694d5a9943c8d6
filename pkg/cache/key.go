package cache

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// Fingerprint derives the cache key for one parameter set: the center id
// joined with a blake2b digest of the JSON-encoded parameters. Two
// requests share a key exactly when their parameters marshal identically.
func Fingerprint(centerID string, params any) string {
	encoded, err := json.Marshal(params)
	if err != nil {
		// Unmarshalable params cannot be keyed reliably; fall back to a
		// per-center key so correctness never depends on it.
		encoded = []byte(fmt.Sprintf("%+v", params))
	}
	sum := blake2b.Sum256(encoded)
	return centerID + ":" + hex.EncodeToString(sum[:16])
}

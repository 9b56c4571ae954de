package hapsim_api

import (
	"encoding/binary"
	"encoding/hex"
	"math/rand/v2"

	"github.com/google/uuid"
)

const sampleIdLength = 10

// GenerateSampleIds returns n unique random sample IDs. The IDs are the first
// hex digits of random UUIDs drawn from a stream keyed by seed, so a seeded
// run names its samples the same way every time.
func GenerateSampleIds(n int, seed uint64) ([]string, error) {
	var key [32]byte
	binary.LittleEndian.PutUint64(key[:8], seed)
	copy(key[8:], "hapsim-sample-ids")
	stream := rand.NewChaCha8(key)

	ids := make([]string, 0, n)
	seen := make(map[string]struct{}, n)
	for len(ids) < n {
		u, err := uuid.NewRandomFromReader(stream)
		if err != nil {
			return nil, err
		}
		id := hex.EncodeToString(u[:])[:sampleIdLength]
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, nil
}

package continuum

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// XXHash128Hasher derives a 128-bit digest from two 64-bit xxhash sums:
// the low half over the input as is, the high half over the input with a
// 0x01 byte appended. It is an order of magnitude faster than MD5Hasher at
// the ring sizes this package builds, at the cost of deployment-wide
// agreement: every process consulting the same ring must use the same
// Hasher, so swapping this in is a decision for the whole fleet, not a
// single process.
type XXHash128Hasher struct{}

// Hash128 implements Hasher.
func (XXHash128Hasher) Hash128(data []byte) [16]byte {
	var out [16]byte

	lo := xxhash.Sum64(data)
	binary.LittleEndian.PutUint64(out[0:8], lo)

	salted := make([]byte, len(data)+1)
	copy(salted, data)
	salted[len(data)] = 0x01
	hi := xxhash.Sum64(salted)
	binary.LittleEndian.PutUint64(out[8:16], hi)

	return out
}

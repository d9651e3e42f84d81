// hash.go -- the mcdb hash function
//
// A 32-bit djb2 variant: starting state 5381; for each byte b,
// h = ((h << 5) + h) ^ b, with 32-bit wraparound. Deterministic and
// order-dependent; good enough for bucketed open-addressed hash tables,
// not a cryptographic hash.
//
// Author: Sudhi Herle <sudhi@herle.net>
//
// This software does not come with any express or implied
// warranty; it is provided "as is". No claim  is made to its
// suitability for any purpose.

package mcdb

const hashSeed uint32 = 5381

// Hash computes the mcdb hash of key.
func Hash(key []byte) uint32 {
	h := hashSeed
	for _, b := range key {
		h = ((h << 5) + h) ^ uint32(b)
	}
	return h
}

// hashTagged folds an optional one-byte tag into the hash as if it were
// prepended to key, without allocating a concatenated buffer. tag == 0 is
// the "untagged" convention: the hash is then identical to Hash(key).
func hashTagged(tag byte, key []byte) uint32 {
	h := hashSeed
	if tag != 0 {
		h = ((h << 5) + h) ^ uint32(tag)
	}
	for _, b := range key {
		h = ((h << 5) + h) ^ uint32(b)
	}
	return h
}

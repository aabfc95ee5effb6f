package blocks

import "github.com/cespare/xxhash/v2"

// HashName computes the hash of the file name used to speed up directory lookups.
func HashName(name string) Hash {
	return Hash(xxhash.Sum64String(name))
}

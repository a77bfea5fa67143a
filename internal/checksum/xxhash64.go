// Package checksum provides checksum functions compatible with RocksDB.
//
// XXHash64 support is a thin wrapper over github.com/cespare/xxhash/v2.
package checksum

import "github.com/cespare/xxhash/v2"

// XXHash64 computes the 64-bit XXHash of data using seed 0.
func XXHash64(data []byte) uint64 {
	return xxhash.Sum64(data)
}

// XXHash64WithSeed computes the 64-bit XXHash of data with a seed.
func XXHash64WithSeed(data []byte, seed uint64) uint64 {
	d := xxhash.NewWithSeed(seed)
	d.Write(data) //nolint:errcheck // xxhash.Digest.Write never returns an error
	return d.Sum64()
}

// XXHash64ChecksumWithLastByte computes an XXHash64 block checksum with a
// separate last byte, returning the lower 32 bits as used by RocksDB.
func XXHash64ChecksumWithLastByte(data []byte, lastByte byte) uint32 {
	d := xxhash.New()
	d.Write(data) //nolint:errcheck // xxhash.Digest.Write never returns an error
	d.Write([]byte{lastByte}) //nolint:errcheck
	return uint32(d.Sum64())
}

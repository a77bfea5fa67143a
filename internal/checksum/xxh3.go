// Package checksum provides checksum functions compatible with RocksDB.
//
// XXH3 support is a thin wrapper over github.com/zeebo/xxh3, RocksDB's
// format_version 5+ default block checksum.
package checksum

import "github.com/zeebo/xxh3"

// XXH3_64bits computes the 64-bit XXH3 hash of data.
func XXH3_64bits(data []byte) uint64 { //nolint:revive // name matches the RocksDB/xxHash reference API
	return xxh3.Hash(data)
}

// XXH3Checksum computes a 32-bit block checksum from data, folding the
// trailing byte (normally the compression type) into the hash the way
// RocksDB's ChecksumModifierForContext does.
func XXH3Checksum(data []byte) uint32 {
	if len(data) == 0 {
		return 0
	}
	return XXH3ChecksumWithLastByte(data[:len(data)-1], data[len(data)-1])
}

// XXH3ChecksumWithLastByte computes an XXH3 block checksum with a separate
// last byte, used when the compression type is not in the data buffer.
func XXH3ChecksumWithLastByte(data []byte, lastByte byte) uint32 {
	h := xxh3.Hash(data)
	v := uint32(h)

	const randomPrime = 0x6b9083d9
	return v ^ (uint32(lastByte) * randomPrime)
}

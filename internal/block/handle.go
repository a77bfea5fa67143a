// Package block implements the RocksDB/Pebble block-based SSTable format:
// block handles, the footer, and prefix-compressed data/index blocks.
//
// Reference: RocksDB v10.7.5
//   - table/format.h (BlockHandle class)
//   - table/format.cc
package block

import (
	"errors"

	"github.com/aalhour/sstreader/internal/encoding"
)

var (
	// ErrBadBlockHandle is returned when a block handle is corrupted.
	ErrBadBlockHandle = errors.New("block: bad block handle")

	// ErrBadBlockFooter is returned when the footer is corrupted.
	ErrBadBlockFooter = errors.New("block: bad block footer")

	// ErrBadBlock is returned when a block body is corrupted.
	ErrBadBlock = errors.New("block: corrupted block")
)

// Handle is a pointer to the extent of a file that stores a data block or a
// meta block: an (offset, length) pair encoded as two consecutive unsigned
// varints. Bit-compatible with RocksDB's BlockHandle.
type Handle struct {
	Offset uint64
	Size   uint64
}

// NullHandle is a block handle with offset=0 and size=0, representing "no block".
var NullHandle = Handle{Offset: 0, Size: 0}

// MaxEncodedLength is the maximum encoding length of a Handle: two varint64s,
// each up to 10 bytes.
const MaxEncodedLength = 2 * encoding.MaxVarint64Length

// IsNull returns true if this is a null block handle.
func (h Handle) IsNull() bool {
	return h.Offset == 0 && h.Size == 0
}

// InBounds reports whether the handle's extent lies within [0, fileSize).
func (h Handle) InBounds(fileSize uint64) bool {
	end := h.Offset + h.Size
	return end >= h.Offset && end <= fileSize
}

// EncodeTo appends the encoding of h to dst.
func (h Handle) EncodeTo(dst []byte) []byte {
	dst = encoding.AppendVarint64(dst, h.Offset)
	dst = encoding.AppendVarint64(dst, h.Size)
	return dst
}

// EncodedLength returns the encoded length of this handle.
func (h Handle) EncodedLength() int {
	return encoding.VarintLength(h.Offset) + encoding.VarintLength(h.Size)
}

// DecodeHandle decodes a block handle from data and returns the remaining bytes.
func DecodeHandle(data []byte) (Handle, []byte, error) {
	var h Handle

	offset, n1, err := encoding.DecodeVarint64(data)
	if err != nil {
		return Handle{}, nil, ErrBadBlockHandle
	}
	h.Offset = offset
	data = data[n1:]

	size, n2, err := encoding.DecodeVarint64(data)
	if err != nil {
		return Handle{}, nil, ErrBadBlockHandle
	}
	h.Size = size
	data = data[n2:]

	return h, data, nil
}

// DecodeHandleReader decodes a block handle from a streaming byte reader,
// the form the footer decoder uses so that the whole footer can be consumed
// through one counted reader.
func DecodeHandleReader(r encoding.ByteReader) (Handle, error) {
	offset, err := encoding.ReadUvarint(r)
	if err != nil {
		return Handle{}, err
	}
	size, err := encoding.ReadUvarint(r)
	if err != nil {
		return Handle{}, err
	}
	return Handle{Offset: offset, Size: size}, nil
}

package block

import (
	"encoding/binary"

	"github.com/aalhour/sstreader/internal/dbformat"
	"github.com/aalhour/sstreader/internal/encoding"
)

// Block represents a parsed data or index block: a sequence of
// prefix-compressed entries followed by a restart-point array.
//
// Each entry has the format:
//
//	shared_bytes: varint32 (shared prefix with previous key)
//	unshared_bytes: varint32 (unshared key suffix length)
//	value_length: varint32
//	key_delta: char[unshared_bytes]
//	value: char[value_length]
//
// followed by a trailer of uint32[num_restarts] restart offsets and a
// trailing uint32 num_restarts.
type Block struct {
	data []byte

	// restarts is the offset of the restarts array within data.
	restarts int

	// numRestarts is the number of restart points.
	numRestarts int
}

// NewBlock creates a new Block from raw (already decompressed) block data.
// The data slice is not copied; the caller must ensure it remains valid for
// the life of any iterator created from the block.
func NewBlock(data []byte) (*Block, error) {
	if len(data) < 4 {
		return nil, encoding.Truncated(int64(len(data)), "block trailer")
	}

	numRestarts := binary.LittleEndian.Uint32(data[len(data)-4:])
	if numRestarts == 0 {
		return nil, encoding.BadBlockStructure(int64(len(data)), "block has zero restart points")
	}

	restartsSize := int(numRestarts+1) * 4
	if restartsSize > len(data) {
		return nil, encoding.Truncated(int64(len(data)), "restart point array")
	}
	restartsOffset := len(data) - restartsSize

	b := &Block{
		data:        data,
		restarts:    restartsOffset,
		numRestarts: int(numRestarts),
	}
	if err := b.validateRestarts(); err != nil {
		return nil, err
	}
	return b, nil
}

// validateRestarts checks that restart offsets are strictly increasing and
// lie within the entry area, and that the first restart point is offset 0.
// A block with no entries has an empty entry area and a single restart
// point at offset 0; that restart point is accepted.
func (b *Block) validateRestarts() error {
	prev := -1
	for i := 0; i < b.numRestarts; i++ {
		off := b.GetRestartPoint(i)
		if off < 0 || off > b.restarts || (off == b.restarts && off != 0) {
			return encoding.BadBlockStructure(int64(off), "restart point out of bounds")
		}
		if off <= prev {
			return encoding.BadBlockStructure(int64(off), "restart points are not strictly increasing")
		}
		prev = off
	}
	if b.GetRestartPoint(0) != 0 {
		return encoding.BadBlockStructure(0, "first restart point is not at offset 0")
	}
	return nil
}

// Size returns the size of the block data.
func (b *Block) Size() int {
	return len(b.data)
}

// Data returns the raw block data.
func (b *Block) Data() []byte {
	return b.data
}

// NumRestarts returns the number of restart points.
func (b *Block) NumRestarts() int {
	return b.numRestarts
}

// GetRestartPoint returns the offset of the i-th restart point.
func (b *Block) GetRestartPoint(i int) int {
	if i < 0 || i >= b.numRestarts {
		return -1
	}
	offset := b.restarts + i*4
	return int(binary.LittleEndian.Uint32(b.data[offset:]))
}

// DataEnd returns the end offset of the data section (start of restarts array).
func (b *Block) DataEnd() int {
	return b.restarts
}

// Entry represents a decoded key-value entry from a block.
type Entry struct {
	Key   []byte
	Value []byte
}

// Iterator is a forward-only, single-pass iterator over the entries of a
// block. It validates restart-point invariants as it walks rather than
// trusting them up front, so a block with a corrupt shared-prefix length or
// an entry that crosses a restart boundary incorrectly fails during
// iteration instead of silently returning wrong keys.
type Iterator struct {
	block       *Block
	data        []byte // points to block.data
	restartsEnd int    // end of the entry area
	current     int    // current entry start offset in data
	nextOffset  int    // offset of next entry (after current key+value)
	restartIdx  int    // index of the next restart point to expect
	key         []byte // current key (fully assembled)
	value       []byte // current value (slice into data)
	valid       bool   // whether iterator is at a valid entry
	err         error
}

// NewIterator creates a new, unpositioned block iterator. Call SeekToFirst
// or Next to begin iterating.
func (b *Block) NewIterator() *Iterator {
	return &Iterator{
		block:       b,
		data:        b.data,
		restartsEnd: b.restarts,
	}
}

// Valid returns true if the iterator is positioned at a valid entry.
func (it *Iterator) Valid() bool {
	return it.valid && it.err == nil
}

// Key returns the current key. Only valid if Valid() returns true.
func (it *Iterator) Key() []byte {
	return it.key
}

// Value returns the current value. Only valid if Valid() returns true.
func (it *Iterator) Value() []byte {
	return it.value
}

// Error returns any error encountered during iteration.
func (it *Iterator) Error() error {
	return it.err
}

// SeekToFirst positions the iterator at the first entry.
func (it *Iterator) SeekToFirst() {
	it.key = it.key[:0]
	it.value = nil
	it.valid = false
	it.current = 0
	it.nextOffset = 0
	it.restartIdx = 0
	it.Next()
}

// Next moves to the next entry.
func (it *Iterator) Next() {
	if it.err != nil {
		it.valid = false
		return
	}

	if it.nextOffset >= it.restartsEnd {
		it.valid = false
		return
	}

	it.current = it.nextOffset
	it.parseCurrentEntry()
}

// parseCurrentEntry parses the entry at it.current and validates it against
// the restart-point structure: shared must be 0 exactly at a restart offset,
// and shared must never exceed the length of the previous key.
func (it *Iterator) parseCurrentEntry() {
	if it.current >= it.restartsEnd {
		it.valid = false
		return
	}

	atRestart := it.restartIdx < it.block.numRestarts && it.block.GetRestartPoint(it.restartIdx) == it.current

	data := it.data[it.current:]
	offset := 0

	shared, n1, err := encoding.DecodeVarint32(data)
	if err != nil {
		it.err = err
		it.valid = false
		return
	}
	offset += n1
	data = data[n1:]

	unshared, n2, err := encoding.DecodeVarint32(data)
	if err != nil {
		it.err = err
		it.valid = false
		return
	}
	offset += n2
	data = data[n2:]

	valueLen, n3, err := encoding.DecodeVarint32(data)
	if err != nil {
		it.err = err
		it.valid = false
		return
	}
	offset += n3
	data = data[n3:]

	if atRestart && shared != 0 {
		it.err = encoding.BadBlockStructure(int64(it.current), "restart point entry has nonzero shared prefix")
		it.valid = false
		return
	}
	if int(shared) > len(it.key) {
		it.err = encoding.BadBlockStructure(int64(it.current), "shared prefix longer than previous key")
		it.valid = false
		return
	}
	if len(data) < int(unshared)+int(valueLen) {
		it.err = encoding.Truncated(int64(it.current), "entry key/value payload")
		it.valid = false
		return
	}

	it.key = append(it.key[:shared], data[:unshared]...)
	offset += int(unshared)
	data = data[unshared:]

	it.value = data[:valueLen]
	offset += int(valueLen)

	it.nextOffset = it.current + offset
	it.valid = true
	if atRestart {
		it.restartIdx++
	}
}

// CompareInternalKeys compares two internal keys using bytewise user-key
// order ascending, then sequence/type trailer descending. Delegates to
// dbformat, the single canonical comparator the rest of the reader uses.
func CompareInternalKeys(a, b []byte) int {
	return dbformat.CompareInternalKeys(a, b)
}

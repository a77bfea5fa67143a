// Package table provides SST file reading functionality: opening a table,
// decoding its footer and properties, and streaming its entries in stored
// order through a single forward-only iterator.
//
// SST File Layout:
//
//	[data block 1]
//	[data block 2]
//	...
//	[data block N]
//	[index block(s)]     (one level, or a top-level block pointing at
//	                       second-level index blocks)
//	[properties block]
//	[metaindex block]
//	[Footer]              (fixed size, at the end of the file)
package table

import (
	"errors"
	"fmt"
	"io"

	"github.com/aalhour/sstreader/internal/block"
	"github.com/aalhour/sstreader/internal/checksum"
	"github.com/aalhour/sstreader/internal/compression"
	"github.com/aalhour/sstreader/internal/encoding"
	"github.com/aalhour/sstreader/internal/logging"
)

var (
	// ErrInvalidSST indicates the file is not a valid SST file.
	ErrInvalidSST = errors.New("table: invalid SST file")

	// ErrChecksumMismatch indicates a block checksum verification failed.
	ErrChecksumMismatch = errors.New("table: checksum mismatch")

	// ErrBlockNotFound indicates a required block handle was missing or null.
	ErrBlockNotFound = errors.New("table: block not found")
)

// metaPropertiesName is the metaindex entry name under which the properties
// block is registered.
const metaPropertiesName = "rocksdb.properties"

// ReadableFile is an interface for reading from an SST file.
type ReadableFile interface {
	io.Closer

	// ReadAt reads len(p) bytes from the file starting at offset.
	ReadAt(p []byte, off int64) (n int, err error)

	// Size returns the total size of the file.
	Size() int64
}

// ReaderOptions controls the behavior of the table reader.
type ReaderOptions struct {
	// VerifyChecksums recomputes and checks the checksum named by the
	// footer's checksum kind for every block read. Off by default: the core
	// path reads but does not verify.
	VerifyChecksums bool

	// Decompress enables decompression of blocks whose compression byte
	// names a codec other than none. Off by default: the core path returns
	// an *encoding.Error of kind KindUnsupportedCompression for any
	// compressed block.
	Decompress bool

	// Logger receives diagnostic messages (checksum mismatches, properties
	// falling back to single-level indexing, and similar non-fatal
	// conditions). Defaults to a WARN-level logger writing to stderr when
	// nil.
	Logger logging.Logger
}

// blockTrailerSize is the number of bytes following a block's payload: one
// compression-type byte and a four-byte checksum.
const blockTrailerSize = 5

// maxBlockSize bounds the memory a single corrupted block handle can force
// the reader to allocate.
const maxBlockSize = 256 * 1024 * 1024

// Reader reads an SST file in the block-based table format.
type Reader struct {
	file    ReadableFile
	size    int64
	options ReaderOptions

	footer *block.Footer
	logger logging.Logger

	propertiesHandle block.Handle
	properties       *TableProperties

	indexBlock    *block.Block
	twoLevelIndex bool
}

// Open opens an SST file for reading: it locates and decodes the footer,
// reads the metaindex and properties blocks, and loads the index block. The
// properties block is decoded eagerly (not lazily) because the index
// topology — single-level or two-level — is only discoverable through the
// rocksdb.block.based.table.index.type property.
func Open(file ReadableFile, opts ReaderOptions) (*Reader, error) {
	size := file.Size()
	if size < block.FooterLength {
		return nil, ErrInvalidSST
	}

	r := &Reader{
		file:    file,
		size:    size,
		options: opts,
		logger:  logging.OrDefault(opts.Logger),
	}

	footer, err := block.ReadFooter(file, size)
	if err != nil {
		return nil, err
	}
	r.footer = footer

	if err := r.readMetaindex(); err != nil {
		return nil, err
	}

	if props, err := r.Properties(); err == nil {
		r.twoLevelIndex = props.IndexType == IndexTypeTwoLevel
	} else {
		r.logger.Warnf(logging.NSIngest+"properties block unavailable, assuming single-level index: %v", err)
	}
	// A missing or undecodable properties block is not fatal: it just means
	// we fall back to treating the index as single-level.

	if err := r.readIndex(); err != nil {
		return nil, err
	}

	return r, nil
}

// readMetaindex reads the metaindex block and records the properties handle.
func (r *Reader) readMetaindex() error {
	if r.footer.MetaIndexHandle.IsNull() {
		return nil
	}

	metaBlock, err := r.readBlock(r.footer.MetaIndexHandle)
	if err != nil {
		return err
	}

	iter := metaBlock.NewIterator()
	for iter.SeekToFirst(); iter.Valid(); iter.Next() {
		if string(iter.Key()) != metaPropertiesName {
			continue
		}
		handle, _, err := block.DecodeHandle(iter.Value())
		if err != nil {
			continue
		}
		r.propertiesHandle = handle
	}
	if iter.Error() != nil {
		return fmt.Errorf("read metaindex: %w", iter.Error())
	}

	return nil
}

// readIndex reads and caches the top-level index block.
func (r *Reader) readIndex() error {
	if r.footer.IndexHandle.IsNull() {
		return ErrBlockNotFound
	}
	indexBlock, err := r.readBlock(r.footer.IndexHandle)
	if err != nil {
		return err
	}
	r.indexBlock = indexBlock
	return nil
}

// readBlock reads, optionally verifies, and optionally decompresses the
// block named by handle.
func (r *Reader) readBlock(handle block.Handle) (*block.Block, error) {
	if handle.Size > maxBlockSize {
		return nil, fmt.Errorf("block size %d exceeds maximum %d: %w", handle.Size, maxBlockSize, ErrInvalidSST)
	}

	totalSize := handle.Size + blockTrailerSize
	end := handle.Offset + totalSize
	if end < handle.Offset || end > uint64(r.size) {
		return nil, fmt.Errorf("block at offset %d size %d exceeds file size %d: %w",
			handle.Offset, totalSize, r.size, ErrInvalidSST)
	}

	buf := make([]byte, totalSize)
	n, err := r.file.ReadAt(buf, int64(handle.Offset))
	if err != nil {
		return nil, err
	}
	if n < len(buf) {
		return nil, ErrInvalidSST
	}

	payload := buf[:handle.Size]
	compressionType := compression.Type(buf[len(buf)-blockTrailerSize])
	storedChecksum := encoding.DecodeFixed32(buf[len(buf)-4:])

	if r.options.VerifyChecksums && r.footer.ChecksumKind != block.ChecksumNone {
		computed := checksum.ComputeChecksum(checksum.Type(r.footer.ChecksumKind), payload, byte(compressionType))
		if computed != storedChecksum {
			r.logger.Warnf(logging.NSIngest+"checksum mismatch at block offset %d: got %d, want %d",
				handle.Offset, computed, storedChecksum)
			return nil, ErrChecksumMismatch
		}
	}

	blockData := payload
	if compressionType != compression.NoCompression {
		if !r.options.Decompress {
			return nil, encoding.UnsupportedCompression(int64(handle.Offset), fmt.Sprintf("compression type %s", compressionType))
		}
		decompressed, err := compression.DecompressWithSize(compressionType, payload, 0)
		if err != nil {
			return nil, fmt.Errorf("decompress block: %w", err)
		}
		blockData = decompressed
	}

	return block.NewBlock(blockData)
}

// NewIterator returns a forward-only iterator over the table's entries in
// stored order, composing the index (single- or two-level, transparently)
// with each data block it names.
func (r *Reader) NewIterator() *TableIterator {
	return &TableIterator{
		reader: r,
		idx:    newIndexWalker(r, r.indexBlock, r.twoLevelIndex),
	}
}

// Close releases resources associated with the reader.
func (r *Reader) Close() error {
	return r.file.Close()
}

// Footer returns the parsed footer.
func (r *Reader) Footer() *block.Footer {
	return r.footer
}

// Properties returns the table properties, decoding them on first call.
func (r *Reader) Properties() (*TableProperties, error) {
	if r.properties != nil {
		return r.properties, nil
	}
	if r.propertiesHandle.IsNull() {
		return nil, ErrBlockNotFound
	}

	propsBlock, err := r.readBlock(r.propertiesHandle)
	if err != nil {
		return nil, err
	}
	props, err := ParsePropertiesBlock(propsBlock.Data())
	if err != nil {
		return nil, err
	}

	r.properties = props
	return props, nil
}

// TableIterator iterates over key-value pairs in an SST file, walking the
// index to find each data block and streaming its entries in order. It is
// single-pass and forward-only: there is no Seek, Prev, or SeekToLast. A new
// iteration must be obtained from Reader.NewIterator.
type TableIterator struct {
	reader   *Reader
	idx      *indexWalker
	dataIter *block.Iterator
	err      error
}

// Valid returns true if the iterator is positioned at a valid entry.
func (it *TableIterator) Valid() bool {
	return it.err == nil && it.dataIter != nil && it.dataIter.Valid()
}

// SeekToFirst positions the iterator at the first entry.
func (it *TableIterator) SeekToFirst() {
	it.idx.SeekToFirst()
	it.loadDataBlock()
}

// Next moves to the next entry, crossing into the next data block when the
// current one is exhausted.
func (it *TableIterator) Next() {
	if it.dataIter == nil {
		return
	}
	it.dataIter.Next()
	if !it.dataIter.Valid() {
		if it.dataIter.Error() != nil {
			it.err = it.dataIter.Error()
			it.dataIter = nil
			return
		}
		it.idx.Next()
		it.loadDataBlock()
	}
}

// Key returns the current key.
func (it *TableIterator) Key() []byte {
	if it.dataIter == nil {
		return nil
	}
	return it.dataIter.Key()
}

// Value returns the current value.
func (it *TableIterator) Value() []byte {
	if it.dataIter == nil {
		return nil
	}
	return it.dataIter.Value()
}

// Error returns any error encountered during iteration.
func (it *TableIterator) Error() error {
	return it.err
}

// loadDataBlock loads the data block named by the index walker's current
// position, skipping over any data-block handles that turn out to name an
// empty block, until a non-empty block is found or the index is exhausted.
func (it *TableIterator) loadDataBlock() {
	for it.idx.Valid() {
		handle, err := it.idx.Handle()
		if err != nil {
			it.err = err
			it.dataIter = nil
			return
		}

		dataBlock, err := it.reader.readBlock(handle)
		if err != nil {
			it.err = err
			it.dataIter = nil
			return
		}

		di := dataBlock.NewIterator()
		di.SeekToFirst()
		if di.Valid() {
			it.dataIter = di
			return
		}
		if di.Error() != nil {
			it.err = di.Error()
			it.dataIter = nil
			return
		}
		it.idx.Next()
	}

	if it.idx.Error() != nil {
		it.err = it.idx.Error()
	}
	it.dataIter = nil
}

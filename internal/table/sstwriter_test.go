package table

import (
	"bytes"

	"github.com/aalhour/sstreader/internal/block"
	"github.com/aalhour/sstreader/internal/checksum"
	"github.com/aalhour/sstreader/internal/compression"
	"github.com/aalhour/sstreader/internal/encoding"
)

// MemFile is a ReadableFile backed by an in-memory byte slice, used by tests
// to read back tables synthesized by sstWriter without touching a real
// filesystem.
type MemFile struct {
	data []byte
}

// NewMemFile wraps data as a ReadableFile.
func NewMemFile(data []byte) *MemFile {
	return &MemFile{data: data}
}

func (m *MemFile) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off > int64(len(m.data)) {
		return 0, ErrInvalidSST
	}
	n := copy(p, m.data[off:])
	return n, nil
}

func (m *MemFile) Size() int64 { return int64(len(m.data)) }

func (m *MemFile) Close() error { return nil }

// sstWriterOptions controls how sstWriter lays out the table it synthesizes.
type sstWriterOptions struct {
	BlockSize       int
	IndexBlockSize  int // only used when TwoLevel is true
	RestartInterval int
	Compression     compression.Type
	ChecksumKind    block.ChecksumKind
	TwoLevel        bool
}

func defaultSSTWriterOptions() sstWriterOptions {
	return sstWriterOptions{
		BlockSize:       4096,
		IndexBlockSize:  4096,
		RestartInterval: 16,
		Compression:     compression.NoCompression,
		ChecksumKind:    block.ChecksumCRC32C,
		TwoLevel:        false,
	}
}

// indexEntry is a (separator key, child handle) pair awaiting placement into
// an index block.
type indexEntry struct {
	key    []byte
	handle block.Handle
}

// sstWriter builds a minimal, spec-conformant SST file entirely in memory,
// the from-scratch writer spec.md's Testable Properties section describes
// using in place of binary fixture files. It is test-only: production code
// never writes SSTables.
type sstWriter struct {
	opts sstWriterOptions
	out  bytes.Buffer

	data     *block.Builder
	dataIdx  []indexEntry
	lastKey  []byte
	hasEntry bool
}

func newSSTWriter(opts sstWriterOptions) *sstWriter {
	return &sstWriter{
		opts: opts,
		data: block.NewBuilder(opts.RestartInterval),
	}
}

// Add appends a key/value pair. Keys must be added in ascending order.
func (w *sstWriter) Add(key, value []byte) {
	if w.hasEntry && w.data.CurrentSizeEstimate() >= w.opts.BlockSize {
		w.flushDataBlock()
	}
	w.data.Add(key, value)
	w.lastKey = append(w.lastKey[:0], key...)
	w.hasEntry = true
}

func (w *sstWriter) flushDataBlock() {
	if !w.hasEntry {
		return
	}
	raw := w.data.Finish()
	handle := w.writeBlockCompressed(raw, w.opts.Compression)
	w.dataIdx = append(w.dataIdx, indexEntry{key: append([]byte(nil), w.lastKey...), handle: handle})
	w.data = block.NewBuilder(w.opts.RestartInterval)
	w.hasEntry = false
}

// writeBlock checksums and appends raw, uncompressed block bytes to the
// output. Index, properties, and metaindex blocks are always written
// uncompressed: only data blocks carry the table's chosen compression, so
// that Open (which must read the index and properties to decide the index
// topology) never itself needs ReaderOptions.Decompress.
func (w *sstWriter) writeBlock(raw []byte) block.Handle {
	return w.writeBlockCompressed(raw, compression.NoCompression)
}

// writeBlockCompressed compresses (if comp != NoCompression), checksums, and
// appends raw block bytes to the output, returning the handle for the
// written payload.
func (w *sstWriter) writeBlockCompressed(raw []byte, comp compression.Type) block.Handle {
	offset := uint64(w.out.Len())

	payload := raw
	compType := compression.NoCompression
	if comp != compression.NoCompression {
		compressed, err := compression.Compress(comp, raw)
		if err == nil && compressed != nil {
			payload = compressed
			compType = comp
		}
	}

	w.out.Write(payload)
	w.out.WriteByte(byte(compType))

	crc := checksum.ComputeChecksum(checksum.Type(w.opts.ChecksumKind), payload, byte(compType))
	w.out.Write(encoding.AppendFixed32(nil, crc))

	return block.Handle{Offset: offset, Size: uint64(len(payload))}
}

// buildIndexBlock writes one index block whose entries are (key, handle
// encoded as two varints) pairs, returning its handle and the last key
// written (the separator callers above this level should use).
func (w *sstWriter) buildIndexBlock(entries []indexEntry, restartInterval int) (block.Handle, []byte) {
	b := block.NewBuilder(restartInterval)
	for _, e := range entries {
		b.Add(e.key, e.handle.EncodeTo(nil))
	}
	handle := w.writeBlock(b.Finish())
	if len(entries) == 0 {
		return handle, nil
	}
	return handle, entries[len(entries)-1].key
}

// Finish flushes any pending data block, writes the index (single- or
// two-level per opts.TwoLevel), the properties block, the metaindex block,
// and the footer, and returns the complete encoded file.
func (w *sstWriter) Finish(numEntries uint64, comparatorName string) []byte {
	w.flushDataBlock()

	var indexHandle block.Handle
	indexType := IndexTypeBinarySearch

	if !w.opts.TwoLevel || len(w.dataIdx) == 0 {
		indexHandle, _ = w.buildIndexBlock(w.dataIdx, w.opts.RestartInterval)
	} else {
		indexType = IndexTypeTwoLevel
		const entriesPerPartition = 4
		var topEntries []indexEntry
		for start := 0; start < len(w.dataIdx); start += entriesPerPartition {
			end := min(start+entriesPerPartition, len(w.dataIdx))
			partitionHandle, lastKey := w.buildIndexBlock(w.dataIdx[start:end], w.opts.RestartInterval)
			topEntries = append(topEntries, indexEntry{key: lastKey, handle: partitionHandle})
		}
		indexHandle, _ = w.buildIndexBlock(topEntries, w.opts.RestartInterval)
	}

	props := block.NewBuilder(16)
	props.Add([]byte(PropNumEntries), encoding.AppendVarint64(nil, numEntries))
	props.Add([]byte(PropComparator), []byte(comparatorName))
	props.Add([]byte(PropIndexType), encoding.AppendVarint64(nil, uint64(indexType)))
	props.Add([]byte(PropCompression), []byte(w.opts.Compression.String()))
	propsHandle := w.writeBlock(props.Finish())

	meta := block.NewBuilder(16)
	meta.Add([]byte(metaPropertiesName), propsHandle.EncodeTo(nil))
	metaHandle := w.writeBlock(meta.Finish())

	footer := &block.Footer{
		MetaIndexHandle: metaHandle,
		IndexHandle:     indexHandle,
		Version:         1,
		ChecksumKind:    w.opts.ChecksumKind,
	}
	footerBytes, err := footer.EncodeTo()
	if err != nil {
		panic(err) //nolint:forbidigo // test helper: a too-large handle is a test bug, not a runtime condition
	}
	w.out.Write(footerBytes)

	return w.out.Bytes()
}

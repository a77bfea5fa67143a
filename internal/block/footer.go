// footer.go implements the SSTable footer: the fixed-size trailer at the end
// of the file that carries the meta-index and index handles, the format
// version, the checksum kind, and the magic number.
//
// Layout (53 bytes, fixed, regardless of how short the two handles encode):
//
//	meta_index_handle (varint offset, varint size) |
//	index_handle      (varint offset, varint size) |
//	zero padding to a 37-byte handle region          |
//	version       (u32 LE)                           |
//	checksum_kind (u32 LE)                           |
//	magic         (u64 LE)
//
// Reference: RocksDB v10.7.5 table/format.h/.cc (Footer class), and the
// Pebble-era magic number (the same constant Pebble calls pebbleDBMagic).
package block

import (
	"bytes"
	"io"

	"github.com/aalhour/sstreader/internal/encoding"
)

// Magic is the 8-byte magic number every footer this reader accepts must end
// with. It is checked byte-for-byte, not compared as an integer.
var Magic = [8]byte{0xf0, 0x9f, 0xaa, 0xb3, 0xf0, 0x9f, 0xaa, 0xb3}

const (
	// handleRegionLength is the fixed size of the meta-index/index handle
	// region, including whatever zero padding follows the two varint-encoded
	// handles.
	handleRegionLength = 37

	// FooterLength is the total, constant size of the encoded footer.
	FooterLength = handleRegionLength + 4 + 4 + 8

	// LatestFormatVersion is the highest footer version this reader targets.
	// A footer naming a higher version is rejected rather than guessed at.
	LatestFormatVersion uint32 = 1
)

// ChecksumKind identifies the checksum algorithm named by a footer's
// checksum_kind field. It only determines which algorithm an opt-in
// verifier uses (see table.ReaderOptions.VerifyChecksums); the core read
// path never verifies a checksum on its own.
type ChecksumKind uint32

const (
	ChecksumNone ChecksumKind = 0
	ChecksumCRC32C ChecksumKind = 1
	ChecksumXXHash ChecksumKind = 2
	ChecksumXXHash64 ChecksumKind = 3
	ChecksumXXH3 ChecksumKind = 4
)

func (k ChecksumKind) String() string {
	switch k {
	case ChecksumNone:
		return "none"
	case ChecksumCRC32C:
		return "crc32c"
	case ChecksumXXHash:
		return "xxhash"
	case ChecksumXXHash64:
		return "xxhash64"
	case ChecksumXXH3:
		return "xxh3"
	default:
		return "unknown"
	}
}

// Footer is the decoded fixed-size trailer of an SSTable.
type Footer struct {
	MetaIndexHandle Handle
	IndexHandle     Handle
	Version         uint32
	ChecksumKind    ChecksumKind
}

// DecodeFooter parses exactly FooterLength bytes from r: the meta-index
// handle, the index handle, the zero padding between them and the fixed
// tail, the version, the checksum kind, and the magic number. r must be
// exhausted when DecodeFooter returns successfully — any unconsumed byte
// signals a layout mismatch the caller should treat as corruption, which is
// why the function checks that r has no byte left after the magic, and
// reads through a CountingReader to check its own count, rather than
// trusting the caller to have sized the buffer exactly.
func DecodeFooter(r encoding.ByteReader) (*Footer, error) {
	cr := encoding.NewCountingReader(r)

	metaHandle, err := DecodeHandleReader(cr)
	if err != nil {
		return nil, err
	}
	indexHandle, err := DecodeHandleReader(cr)
	if err != nil {
		return nil, err
	}

	consumed := cr.Count()
	if consumed > handleRegionLength {
		return nil, encoding.BadFileFormat(consumed, "block handles exceed the footer's fixed handle region")
	}
	if err := encoding.Skip(cr, handleRegionLength-consumed); err != nil {
		return nil, err
	}

	version, err := encoding.ReadFixed32Unsigned(cr)
	if err != nil {
		return nil, err
	}
	checksumKind, err := encoding.ReadFixed32Unsigned(cr)
	if err != nil {
		return nil, err
	}
	if err := encoding.ReadMagic(cr, Magic[:]); err != nil {
		return nil, err
	}
	if _, err := cr.ReadByte(); err == nil {
		return nil, encoding.BadFileFormat(cr.Count(), "surplus bytes after the footer")
	}

	if cr.Count() != FooterLength {
		return nil, encoding.BadFileFormat(cr.Count(), "footer did not consume exactly FooterLength bytes")
	}

	if version > LatestFormatVersion {
		return nil, encoding.UnsupportedVersion(cr.Count(), "footer version is newer than this reader targets")
	}

	return &Footer{
		MetaIndexHandle: metaHandle,
		IndexHandle:     indexHandle,
		Version:         version,
		ChecksumKind:    ChecksumKind(checksumKind),
	}, nil
}

// EncodeTo encodes f as a FooterLength-byte buffer, for use by tests that
// synthesize SSTables. Returns an error if the two handles do not fit in the
// fixed handle region.
func (f *Footer) EncodeTo() ([]byte, error) {
	handles := f.MetaIndexHandle.EncodeTo(nil)
	handles = f.IndexHandle.EncodeTo(handles)
	if len(handles) > handleRegionLength {
		return nil, encoding.BadFileFormat(int64(len(handles)), "block handles exceed the footer's fixed handle region")
	}

	buf := make([]byte, FooterLength)
	copy(buf, handles)
	copy(buf[handleRegionLength:], encoding.AppendFixed32(nil, f.Version))
	copy(buf[handleRegionLength+4:], encoding.AppendFixed32(nil, uint32(f.ChecksumKind)))
	copy(buf[handleRegionLength+8:], Magic[:])
	return buf, nil
}

// IsSupportedFormatVersion reports whether version is one DecodeFooter will
// accept.
func IsSupportedFormatVersion(version uint32) bool {
	return version <= LatestFormatVersion
}

// ReadFooter locates and decodes the footer at the end of a byte source of
// the given total length.
func ReadFooter(r io.ReaderAt, fileSize int64) (*Footer, error) {
	if fileSize < FooterLength {
		return nil, encoding.Truncated(fileSize, "file shorter than the footer")
	}
	buf := make([]byte, FooterLength)
	if _, err := r.ReadAt(buf, fileSize-FooterLength); err != nil {
		return nil, err
	}
	return DecodeFooter(bytes.NewReader(buf))
}

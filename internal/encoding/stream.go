package encoding

import (
	"encoding/binary"
	"io"
)

// ByteReader is the forward-only byte iterator the stream decoders in this
// file consume. bytes.Reader and bufio.Reader both satisfy it, so the same
// decoder functions read an in-memory block payload and a file-backed
// section of an SSTable without adaptation.
type ByteReader interface {
	io.Reader
	io.ByteReader
}

// CountingReader wraps a ByteReader and counts every byte it yields. It is
// used by decoders (the footer decoder in particular) that need to know how
// many bytes they have consumed, e.g. to prove the input was exhausted.
type CountingReader struct {
	r ByteReader
	n int64
}

// NewCountingReader wraps r with a byte counter starting at zero.
func NewCountingReader(r ByteReader) *CountingReader {
	return &CountingReader{r: r}
}

// Read implements io.Reader.
func (c *CountingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

// ReadByte implements io.ByteReader.
func (c *CountingReader) ReadByte() (byte, error) {
	b, err := c.r.ReadByte()
	if err == nil {
		c.n++
	}
	return b, err
}

// Count returns the number of bytes yielded so far.
func (c *CountingReader) Count() int64 {
	return c.n
}

// ReadUvarint reads an unsigned varint from r: 7 bits per byte, MSB
// continuation, least-significant group first, maximum 10 bytes. Fails with
// a Truncated error if r runs dry before the varint terminates, and an
// Overflow error if a tenth continuation byte appears or the value would
// require bits above bit 63.
func ReadUvarint(r io.ByteReader) (uint64, error) {
	v, err := binary.ReadUvarint(r)
	if err == nil {
		return v, nil
	}
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return 0, Truncated(0, "unsigned varint")
	}
	return 0, Overflow(0, "unsigned varint exceeds 64 bits")
}

// ReadVarint reads a signed varint: an unsigned varint decoded via
// ReadUvarint, then zig-zag decoded per ZigzagToI64.
func ReadVarint(r io.ByteReader) (int64, error) {
	u, err := ReadUvarint(r)
	if err != nil {
		return 0, err
	}
	return ZigzagToI64(u), nil
}

// ReadFixed32 reads four little-endian bytes and returns them interpreted as
// a signed 32-bit integer: b0 | b1<<8 | b2<<16 | b3<<24.
func ReadFixed32(r io.Reader) (int32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, Truncated(0, "fixed32")
	}
	return int32(binary.LittleEndian.Uint32(buf[:])), nil
}

// ReadFixed32Unsigned reads four little-endian bytes as an unsigned 32-bit integer.
func ReadFixed32Unsigned(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, Truncated(0, "fixed32")
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

// ReadFixed64Unsigned reads eight little-endian bytes as an unsigned 64-bit integer.
func ReadFixed64Unsigned(r io.Reader) (uint64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, Truncated(0, "fixed64")
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}

// ReadMagic reads len(want) bytes and compares them byte-for-byte against
// want. A short read is Truncated; a byte mismatch is BadFileFormat.
func ReadMagic(r io.Reader, want []byte) error {
	got := make([]byte, len(want))
	if _, err := io.ReadFull(r, got); err != nil {
		return Truncated(0, "magic")
	}
	for i := range want {
		if got[i] != want[i] {
			return BadFileFormat(0, "magic mismatch")
		}
	}
	return nil
}

// ReadLengthPrefixed reads an unsigned varint n, then exactly n bytes.
func ReadLengthPrefixed(r ByteReader) ([]byte, error) {
	n, err := ReadUvarint(r)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, Truncated(0, "length-prefixed bytes")
	}
	return buf, nil
}

// Skip discards exactly n bytes from r, failing with Truncated if fewer are available.
func Skip(r io.Reader, n int64) error {
	if n < 0 {
		return BadFileFormat(0, "negative skip length")
	}
	if _, err := io.CopyN(io.Discard, r, n); err != nil {
		return Truncated(0, "skip")
	}
	return nil
}

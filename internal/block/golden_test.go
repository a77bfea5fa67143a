package block

import (
	"bytes"
	"testing"
)

// TestGoldenFooterMagic tests that the magic number matches the constant
// byte sequence every footer this reader accepts must end with.
func TestGoldenFooterMagic(t *testing.T) {
	want := []byte{0xf0, 0x9f, 0xaa, 0xb3, 0xf0, 0x9f, 0xaa, 0xb3}
	if !bytes.Equal(Magic[:], want) {
		t.Errorf("Magic = % x, want % x", Magic, want)
	}
}

// TestGoldenChecksumKinds tests checksum kind constants.
func TestGoldenChecksumKinds(t *testing.T) {
	testCases := []struct {
		name     string
		got      ChecksumKind
		expected uint32
	}{
		{"ChecksumNone", ChecksumNone, 0},
		{"ChecksumCRC32C", ChecksumCRC32C, 1},
		{"ChecksumXXHash", ChecksumXXHash, 2},
		{"ChecksumXXHash64", ChecksumXXHash64, 3},
		{"ChecksumXXH3", ChecksumXXH3, 4},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if uint32(tc.got) != tc.expected {
				t.Errorf("%s = %d, want %d", tc.name, tc.got, tc.expected)
			}
		})
	}
}

// TestGoldenBlockHandleFormat tests BlockHandle encoding format: two
// consecutive unsigned varints, offset then size.
func TestGoldenBlockHandleFormat(t *testing.T) {
	testCases := []struct {
		name     string
		offset   uint64
		size     uint64
		expected []byte
	}{
		{"zero handle", 0, 0, []byte{0x00, 0x00}},
		{"small values", 100, 50, []byte{0x64, 0x32}},
		{"larger values", 1000, 500, []byte{0xe8, 0x07, 0xf4, 0x03}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			h := Handle{Offset: tc.offset, Size: tc.size}
			encoded := h.EncodeTo(nil)

			if !bytes.Equal(encoded, tc.expected) {
				t.Errorf("Handle{%d, %d}.EncodeTo(nil) = % x, want % x",
					tc.offset, tc.size, encoded, tc.expected)
			}

			decoded, remaining, err := DecodeHandle(encoded)
			if err != nil {
				t.Fatalf("DecodeHandle failed: %v", err)
			}
			if len(remaining) != 0 {
				t.Errorf("DecodeHandle left %d bytes unconsumed", len(remaining))
			}
			if decoded.Offset != tc.offset || decoded.Size != tc.size {
				t.Errorf("DecodeHandle = {%d, %d}, want {%d, %d}",
					decoded.Offset, decoded.Size, tc.offset, tc.size)
			}
		})
	}
}

// TestGoldenFooterSize tests the footer size constant.
func TestGoldenFooterSize(t *testing.T) {
	if FooterLength != 53 {
		t.Errorf("FooterLength = %d, want 53", FooterLength)
	}
}

// TestGoldenBlockBuilderFormat tests block builder output format.
func TestGoldenBlockBuilderFormat(t *testing.T) {
	builder := NewBuilder(2) // restart interval = 2

	builder.Add([]byte("key1"), []byte("val1"))
	builder.Add([]byte("key2"), []byte("val2"))
	builder.Add([]byte("key3"), []byte("val3"))

	data := builder.Finish()

	blk, err := NewBlock(data)
	if err != nil {
		t.Fatalf("NewBlock failed: %v", err)
	}

	iter := blk.NewIterator()
	iter.SeekToFirst()

	expected := []struct {
		key   string
		value string
	}{
		{"key1", "val1"},
		{"key2", "val2"},
		{"key3", "val3"},
	}

	for i, exp := range expected {
		if !iter.Valid() {
			t.Fatalf("Iterator not valid at entry %d", i)
		}
		if string(iter.Key()) != exp.key {
			t.Errorf("Entry %d key = %q, want %q", i, iter.Key(), exp.key)
		}
		if string(iter.Value()) != exp.value {
			t.Errorf("Entry %d value = %q, want %q", i, iter.Value(), exp.value)
		}
		iter.Next()
	}

	if iter.Valid() {
		t.Error("Iterator still valid after last entry")
	}
}

package encoding

import "testing"

func TestDecodeVarint64RoundTrip(t *testing.T) {
	values := []uint64{0, 1, 127, 128, 16384, 1 << 40, ^uint64(0)}
	for _, v := range values {
		buf := AppendVarint64(nil, v)
		got, n, err := DecodeVarint64(buf)
		if err != nil {
			t.Fatalf("DecodeVarint64(%d) error: %v", v, err)
		}
		if got != v || n != len(buf) {
			t.Errorf("DecodeVarint64(%d) = (%d, %d), want (%d, %d)", v, got, n, v, len(buf))
		}
	}
}

func TestDecodeVarint32Overflow(t *testing.T) {
	buf := AppendVarint64(nil, uint64(1)<<33)
	if _, _, err := DecodeVarint32(buf); err == nil {
		t.Fatalf("expected overflow decoding a value above 32 bits as varint32")
	}
}

func TestDecodeFixed32And64(t *testing.T) {
	buf := AppendFixed32(nil, 0x11223344)
	if got := DecodeFixed32(buf); got != 0x11223344 {
		t.Errorf("DecodeFixed32 = %x, want %x", got, 0x11223344)
	}

	buf64 := AppendFixed64(nil, 0x1122334455667788)
	if got := DecodeFixed64(buf64); got != 0x1122334455667788 {
		t.Errorf("DecodeFixed64 = %x, want %x", got, 0x1122334455667788)
	}
}

func TestLengthPrefixedSliceRoundTrip(t *testing.T) {
	buf := AppendLengthPrefixedSlice(nil, []byte("rockyard"))
	got, n, err := DecodeLengthPrefixedSlice(buf)
	if err != nil {
		t.Fatalf("DecodeLengthPrefixedSlice error: %v", err)
	}
	if string(got) != "rockyard" || n != len(buf) {
		t.Errorf("DecodeLengthPrefixedSlice = (%q, %d), want (%q, %d)", got, n, "rockyard", len(buf))
	}
}

func TestZigzagRoundTrip(t *testing.T) {
	values := []int64{0, -1, 1, -2, 2, 1<<62 - 1, -(1 << 62)}
	for _, v := range values {
		if got := ZigzagToI64(I64ToZigzag(v)); got != v {
			t.Errorf("zigzag round trip for %d produced %d", v, got)
		}
	}
}

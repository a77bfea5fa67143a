package block

import (
	"bytes"
	"errors"
	"testing"

	"github.com/aalhour/sstreader/internal/encoding"
)

func TestFooterRoundTrip(t *testing.T) {
	f := &Footer{
		MetaIndexHandle: Handle{Offset: 100, Size: 50},
		IndexHandle:     Handle{Offset: 200, Size: 75},
		Version:         1,
		ChecksumKind:    ChecksumCRC32C,
	}
	buf, err := f.EncodeTo()
	if err != nil {
		t.Fatalf("EncodeTo: %v", err)
	}
	if len(buf) != FooterLength {
		t.Fatalf("EncodeTo produced %d bytes, want %d", len(buf), FooterLength)
	}

	got, err := DecodeFooter(bytes.NewReader(buf))
	if err != nil {
		t.Fatalf("DecodeFooter: %v", err)
	}
	if *got != *f {
		t.Errorf("DecodeFooter = %+v, want %+v", *got, *f)
	}
}

func TestFooterExhaustsInput(t *testing.T) {
	f := &Footer{MetaIndexHandle: Handle{Offset: 1, Size: 2}, IndexHandle: Handle{Offset: 3, Size: 4}}
	buf, err := f.EncodeTo()
	if err != nil {
		t.Fatalf("EncodeTo: %v", err)
	}
	r := bytes.NewReader(buf)
	if _, err := DecodeFooter(r); err != nil {
		t.Fatalf("DecodeFooter: %v", err)
	}
	if r.Len() != 0 {
		t.Errorf("reader has %d unread bytes after DecodeFooter, want 0", r.Len())
	}
}

func TestFooterBadMagic(t *testing.T) {
	f := &Footer{MetaIndexHandle: Handle{Offset: 1, Size: 2}, IndexHandle: Handle{Offset: 3, Size: 4}}
	buf, err := f.EncodeTo()
	if err != nil {
		t.Fatalf("EncodeTo: %v", err)
	}
	buf[FooterLength-1] ^= 0xFF

	_, err = DecodeFooter(bytes.NewReader(buf))
	var decErr *encoding.Error
	if !errors.As(err, &decErr) || decErr.Kind != encoding.KindBadFileFormat {
		t.Fatalf("expected KindBadFileFormat, got %v", err)
	}
}

func TestFooterTruncated(t *testing.T) {
	_, err := DecodeFooter(bytes.NewReader([]byte{0x01, 0x02}))
	var decErr *encoding.Error
	if !errors.As(err, &decErr) || decErr.Kind != encoding.KindTruncated {
		t.Fatalf("expected KindTruncated, got %v", err)
	}
}

func TestReadFooterLocatesTail(t *testing.T) {
	f := &Footer{MetaIndexHandle: Handle{Offset: 10, Size: 20}, IndexHandle: Handle{Offset: 30, Size: 40}, Version: 1}
	encoded, err := f.EncodeTo()
	if err != nil {
		t.Fatalf("EncodeTo: %v", err)
	}
	file := append([]byte("some data block payload preceding the footer"), encoded...)

	got, err := ReadFooter(bytes.NewReader(file), int64(len(file)))
	if err != nil {
		t.Fatalf("ReadFooter: %v", err)
	}
	if *got != *f {
		t.Errorf("ReadFooter = %+v, want %+v", *got, *f)
	}
}

func TestReadFooterFileTooShort(t *testing.T) {
	_, err := ReadFooter(bytes.NewReader([]byte("too short")), 9)
	var decErr *encoding.Error
	if !errors.As(err, &decErr) || decErr.Kind != encoding.KindTruncated {
		t.Fatalf("expected KindTruncated, got %v", err)
	}
}

func TestDecodeFooterUnsupportedVersion(t *testing.T) {
	f := &Footer{
		MetaIndexHandle: Handle{Offset: 1, Size: 2},
		IndexHandle:     Handle{Offset: 3, Size: 4},
		Version:         LatestFormatVersion + 1,
	}
	buf, err := f.EncodeTo()
	if err != nil {
		t.Fatalf("EncodeTo: %v", err)
	}

	_, err = DecodeFooter(bytes.NewReader(buf))
	var decErr *encoding.Error
	if !errors.As(err, &decErr) || decErr.Kind != encoding.KindUnsupportedVersion {
		t.Fatalf("expected KindUnsupportedVersion, got %v", err)
	}
}

func TestIsSupportedFormatVersion(t *testing.T) {
	if !IsSupportedFormatVersion(LatestFormatVersion) {
		t.Error("LatestFormatVersion should be supported")
	}
	if IsSupportedFormatVersion(LatestFormatVersion + 1) {
		t.Error("version past LatestFormatVersion should not be supported")
	}
}

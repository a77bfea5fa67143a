package table

import (
	"strings"
	"testing"

	"github.com/kr/pretty"

	"github.com/aalhour/sstreader/internal/block"
	"github.com/aalhour/sstreader/internal/encoding"
)

func TestPropertyConstants(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"PropDataSize", PropDataSize},
		{"PropIndexSize", PropIndexSize},
		{"PropIndexType", PropIndexType},
		{"PropRawKeySize", PropRawKeySize},
		{"PropRawValueSize", PropRawValueSize},
		{"PropNumDataBlocks", PropNumDataBlocks},
		{"PropNumEntries", PropNumEntries},
		{"PropColumnFamilyID", PropColumnFamilyID},
		{"PropColumnFamilyName", PropColumnFamilyName},
		{"PropComparator", PropComparator},
		{"PropCompression", PropCompression},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if len(tt.value) == 0 {
				t.Errorf("%s is empty", tt.name)
			}
			if len(tt.value) < 8 || tt.value[:8] != "rocksdb." {
				t.Errorf("%s = %q, expected to start with 'rocksdb.'", tt.name, tt.value)
			}
		})
	}
}

func TestPropertiesDefaults(t *testing.T) {
	props := &TableProperties{}

	if props.DataSize != 0 {
		t.Error("DataSize should default to 0")
	}
	if props.NumEntries != 0 {
		t.Error("NumEntries should default to 0")
	}
	if props.ColumnFamilyID != 0 {
		t.Error("ColumnFamilyID should default to 0")
	}
	if props.ComparatorName != "" {
		t.Error("ComparatorName should default to empty")
	}
	if props.IndexType != IndexTypeBinarySearch {
		t.Error("IndexType should default to IndexTypeBinarySearch (zero value)")
	}
}

func TestPropertyNamesFormat(t *testing.T) {
	names := []string{
		PropDataSize,
		PropIndexSize,
		PropIndexType,
		PropRawKeySize,
		PropRawValueSize,
		PropNumDataBlocks,
		PropNumEntries,
		PropColumnFamilyID,
		PropColumnFamilyName,
		PropComparator,
		PropCompression,
		PropDeletedKeys,
		PropMergeOperands,
		PropNumRangeDeletions,
		PropFormatVersion,
		PropFilterPolicy,
		PropCreationTime,
	}

	for _, name := range names {
		if len(name) < 8 {
			t.Errorf("Property name %q is too short", name)
		}
		if name[:8] != "rocksdb." {
			t.Errorf("Property %q should start with 'rocksdb.'", name)
		}
	}
}

func TestParsePropertiesBlockBasic(t *testing.T) {
	b := block.NewBuilder(16)
	b.Add([]byte(PropNumEntries), encoding.AppendVarint64(nil, 42))
	b.Add([]byte(PropComparator), []byte("leveldb.BytewiseComparator"))
	b.Add([]byte(PropIndexType), encoding.AppendVarint64(nil, uint64(IndexTypeTwoLevel)))
	b.Add([]byte("rocksdb.some.unknown.property"), []byte("value"))
	data := b.Finish()

	props, err := ParsePropertiesBlock(data)
	if err != nil {
		t.Fatalf("ParsePropertiesBlock: %v", err)
	}

	if props.NumEntries != 42 {
		t.Errorf("NumEntries = %d, want 42", props.NumEntries)
	}
	if props.ComparatorName != "leveldb.BytewiseComparator" {
		t.Errorf("ComparatorName = %q, want %q", props.ComparatorName, "leveldb.BytewiseComparator")
	}
	if props.IndexType != IndexTypeTwoLevel {
		t.Errorf("IndexType = %d, want %d", props.IndexType, IndexTypeTwoLevel)
	}
	if got := props.UserCollectedProperties["rocksdb.some.unknown.property"]; got != "value" {
		t.Errorf("UserCollectedProperties[unknown] = %q, want %q", got, "value")
	}
}

// TestParsePropertiesBlockFullStruct compares the entire decoded struct
// against an expected value at once. A field-by-field mismatch here is
// common (one typo'd property name affects everything downstream of it),
// so failures print a field-level diff via kr/pretty rather than a single
// opaque %+v dump.
func TestParsePropertiesBlockFullStruct(t *testing.T) {
	b := block.NewBuilder(16)
	b.Add([]byte(PropNumEntries), encoding.AppendVarint64(nil, 7))
	b.Add([]byte(PropDataSize), encoding.AppendVarint64(nil, 1024))
	b.Add([]byte(PropIndexType), encoding.AppendVarint64(nil, uint64(IndexTypeBinarySearch)))
	b.Add([]byte(PropCompression), []byte("Snappy"))
	data := b.Finish()

	props, err := ParsePropertiesBlock(data)
	if err != nil {
		t.Fatalf("ParsePropertiesBlock: %v", err)
	}

	want := &TableProperties{
		NumEntries:              7,
		DataSize:                1024,
		IndexType:               IndexTypeBinarySearch,
		CompressionName:         "Snappy",
		UserCollectedProperties: map[string]string{},
	}

	if diff := pretty.Diff(want, props); len(diff) > 0 {
		t.Errorf("ParsePropertiesBlock mismatch:\n%s", strings.Join(diff, "\n"))
	}
}

package table

import "github.com/aalhour/sstreader/internal/dbformat"

// makeKey builds an internal key (user key + 8-byte sequence/type trailer)
// for use as a table entry key in tests.
func makeKey(userKey string, seq uint64) []byte {
	return dbformat.AppendInternalKey(nil, &dbformat.ParsedInternalKey{
		UserKey:  []byte(userKey),
		Sequence: dbformat.SequenceNumber(seq),
		Type:     dbformat.TypeValue,
	})
}

package table

import "github.com/aalhour/sstreader/internal/block"

// indexWalker composes the table's index into a flat, forward-only sequence
// of data-block handles. An index block has the same physical layout as a
// data block; each value is an encoded block handle. In the single-level
// case the walker simply passes the top-level block's entries through. In
// the two-level case, the top-level entries point at second-level index
// blocks, and the walker transparently descends into each one in turn so
// that callers never see the distinction.
//
// State is explicit rather than recursive: a top-level cursor plus an
// optional second-level cursor into the block the top-level entry currently
// names.
type indexWalker struct {
	reader   *Reader
	top      *block.Iterator
	twoLevel bool
	second   *block.Iterator
	err      error
}

func newIndexWalker(r *Reader, topBlock *block.Block, twoLevel bool) *indexWalker {
	return &indexWalker{
		reader:   r,
		top:      topBlock.NewIterator(),
		twoLevel: twoLevel,
	}
}

// SeekToFirst positions the walker at the first data-block handle.
func (w *indexWalker) SeekToFirst() {
	w.err = nil
	w.second = nil
	w.top.SeekToFirst()
	if w.twoLevel {
		w.descend()
	}
}

// descend loads the second-level index block named by the top-level
// iterator's current entry, advancing past top-level entries that name an
// empty second-level block, until a non-empty one is found or the top level
// is exhausted.
func (w *indexWalker) descend() {
	for w.top.Valid() {
		handle, _, err := block.DecodeHandle(w.top.Value())
		if err != nil {
			w.err = err
			w.second = nil
			return
		}
		blk, err := w.reader.readBlock(handle)
		if err != nil {
			w.err = err
			w.second = nil
			return
		}
		it := blk.NewIterator()
		it.SeekToFirst()
		if it.Valid() {
			w.second = it
			return
		}
		if it.Error() != nil {
			w.err = it.Error()
			w.second = nil
			return
		}
		w.top.Next()
	}
	w.second = nil
}

// Valid reports whether the walker is positioned at a data-block handle.
func (w *indexWalker) Valid() bool {
	if w.err != nil {
		return false
	}
	if w.twoLevel {
		return w.second != nil && w.second.Valid()
	}
	return w.top.Valid()
}

// Handle decodes the block handle at the walker's current position.
func (w *indexWalker) Handle() (block.Handle, error) {
	raw := w.top.Value()
	if w.twoLevel {
		raw = w.second.Value()
	}
	h, _, err := block.DecodeHandle(raw)
	return h, err
}

// Next advances to the next data-block handle, descending into the next
// second-level block when a two-level index exhausts the current one.
func (w *indexWalker) Next() {
	if w.twoLevel {
		w.second.Next()
		if !w.second.Valid() {
			if w.second.Error() != nil {
				w.err = w.second.Error()
				return
			}
			w.top.Next()
			w.descend()
		}
		return
	}
	w.top.Next()
}

// Error returns any error encountered while walking the index.
func (w *indexWalker) Error() error {
	if w.err != nil {
		return w.err
	}
	if w.twoLevel && w.second != nil {
		return w.second.Error()
	}
	return w.top.Error()
}

package feed

// Page is the immutable result of one adapter call.
type Page struct {
	// Cursor is the position this page was fetched at.
	Cursor Cursor
	// Items are the valid, normalized entries in upstream order.
	Items []Item
	// Fetched counts upstream entries before filtering.
	Fetched int
	// Next is where the listing continues, nil when it ends here.
	Next *Cursor
}

// HasMore reports whether the adapter saw a continuation.
func (p Page) HasMore() bool {
	return p.Next != nil
}

// Hint is the continuation reported by upstreams that paginate with
// has_more / next_offset. NextOffset is nil when the upstream omitted it.
type Hint struct {
	HasMore    bool
	NextOffset *int
}

// Advance computes the cursor following at, given how many raw entries the
// upstream returned and, for hinted offsets, the upstream's hint.
//
//	page number: stop on an empty page or at MaxPages, else page+1
//	offset:      stop on an empty page, else offset+fetched
//	hinted:      stop when has_more is false, else next_offset (or the current offset)
func Advance(at Cursor, fetched int, hint Hint) *Cursor {
	var next Cursor
	switch at.Kind {
	case KindPageNumber:
		if fetched == 0 || at.Page >= MaxPages {
			return nil
		}
		next = PageNumber(at.Page + 1)
	case KindOffset:
		if fetched == 0 {
			return nil
		}
		next = Offset(at.Offset + fetched)
	case KindOffsetWithHint:
		if !hint.HasMore {
			return nil
		}
		off := at.Offset
		if hint.NextOffset != nil && *hint.NextOffset >= 0 {
			off = *hint.NextOffset
		}
		next = OffsetWithHint(off, true)
	default:
		return nil
	}
	return &next
}

// NewPage assembles a page fetched at cursor from the raw mapped entries,
// filtering invalid items and computing the continuation.
func NewPage(at Cursor, raw []Item, hint Hint) Page {
	return Page{
		Cursor:  at,
		Items:   Filter(raw),
		Fetched: len(raw),
		Next:    Advance(at, len(raw), hint),
	}
}

// NewFilteredPage is NewPage for upstreams whose listing ends on a page with
// no valid entries: the continuation counts the filtered items, while
// Fetched still reports the raw count.
func NewFilteredPage(at Cursor, raw []Item, hint Hint) Page {
	p := NewPage(at, raw, hint)
	p.Next = Advance(at, len(p.Items), hint)
	return p
}

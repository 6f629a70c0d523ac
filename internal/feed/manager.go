package feed

// NextCursor decides where a session continues given the pages fetched so far.
// It returns false once the listing is over: the last page reported no
// continuation, the session holds MaxPages pages, or the continuation points
// at a position the session already fetched. The answer depends only on its
// inputs, so repeated calls without new pages agree.
func NextCursor(initial Cursor, pages []Page) (Cursor, bool) {
	if len(pages) == 0 {
		return initial, true
	}
	if len(pages) >= MaxPages {
		return Cursor{}, false
	}

	last := pages[len(pages)-1]
	if last.Next == nil {
		return Cursor{}, false
	}

	next := *last.Next
	key := next.Key()
	for _, p := range pages {
		if p.Cursor.Key() == key {
			return Cursor{}, false
		}
	}
	return next, true
}

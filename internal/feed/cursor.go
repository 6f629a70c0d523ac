package feed

import (
	"fmt"
	"strconv"
)

// MaxPages bounds every listing session regardless of pagination kind.
const MaxPages = 100

// Kind identifies how a provider paginates.
type Kind int

const (
	// KindPageNumber walks 1, 2, 3... until a page comes back empty.
	KindPageNumber Kind = iota + 1
	// KindOffset advances by the number of entries the upstream returned.
	KindOffset
	// KindOffsetWithHint follows the upstream's has_more / next_offset pair.
	KindOffsetWithHint
)

func (k Kind) String() string {
	switch k {
	case KindPageNumber:
		return "page_number"
	case KindOffset:
		return "offset"
	case KindOffsetWithHint:
		return "offset_with_hint"
	default:
		return "unknown"
	}
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	for _, k := range []Kind{KindPageNumber, KindOffset, KindOffsetWithHint} {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown cursor kind %q", s)
}

// Param is the query parameter carrying the cursor value for this kind.
func (k Kind) Param() string {
	if k == KindPageNumber {
		return "page"
	}
	return "offset"
}

// Cursor is a tagged pagination position. Only the fields belonging to Kind
// are meaningful.
type Cursor struct {
	Kind    Kind
	Page    int
	Offset  int
	HasMore bool
}

// PageNumber returns a page cursor.
func PageNumber(page int) Cursor {
	return Cursor{Kind: KindPageNumber, Page: page}
}

// Offset returns a list-based offset cursor.
func Offset(offset int) Cursor {
	return Cursor{Kind: KindOffset, Offset: offset}
}

// OffsetWithHint returns an offset cursor that carries the upstream's continuation hint.
func OffsetWithHint(offset int, hasMore bool) Cursor {
	return Cursor{Kind: KindOffsetWithHint, Offset: offset, HasMore: hasMore}
}

// Initial returns the first cursor of a listing of kind k.
func Initial(k Kind) Cursor {
	switch k {
	case KindPageNumber:
		return PageNumber(1)
	case KindOffset:
		return Offset(0)
	case KindOffsetWithHint:
		return OffsetWithHint(0, true)
	default:
		panic(fmt.Sprintf("feed: unknown cursor kind %d", k))
	}
}

// FromParam builds a cursor of kind k from its query value.
func FromParam(k Kind, value int) Cursor {
	switch k {
	case KindPageNumber:
		return PageNumber(value)
	case KindOffset:
		return Offset(value)
	case KindOffsetWithHint:
		return OffsetWithHint(value, true)
	default:
		panic(fmt.Sprintf("feed: unknown cursor kind %d", k))
	}
}

// Value is the number sent upstream: the page for page cursors, the offset otherwise.
func (c Cursor) Value() int {
	if c.Kind == KindPageNumber {
		return c.Page
	}
	return c.Offset
}

// Key identifies the position a cursor points at. Two cursors with the same
// key fetch the same upstream page; the hint flag does not take part.
func (c Cursor) Key() string {
	return c.Kind.Param() + "=" + strconv.Itoa(c.Value())
}

func (c Cursor) String() string {
	return c.Kind.String() + "(" + c.Key() + ")"
}

// Validate checks the cursor's range for its kind.
func (c Cursor) Validate() error {
	switch c.Kind {
	case KindPageNumber:
		if c.Page < 1 {
			return fmt.Errorf("page must be >= 1, got %d", c.Page)
		}
	case KindOffset, KindOffsetWithHint:
		if c.Offset < 0 {
			return fmt.Errorf("offset must be >= 0, got %d", c.Offset)
		}
	default:
		return fmt.Errorf("unknown cursor kind %d", c.Kind)
	}
	return nil
}

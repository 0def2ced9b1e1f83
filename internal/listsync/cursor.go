package listsync

// Cursor is the page cursor. The alternate flag marks a first page reached
// by Toggle: it requests the same wire page as FirstPage but compares as a
// different cursor, so a refresh on page 1 still changes the cursor. Next
// from the alternate first page goes to page 2.
type Cursor struct {
	page      int
	alternate bool
}

// FirstPage is the cursor after a filter change.
func FirstPage() Cursor {
	return Cursor{page: 1}
}

// Page is the page number sent on the wire (always >= 1).
func (c Cursor) Page() int {
	if c.page < 1 {
		return 1
	}
	return c.page
}

// Sentinel reports the cursor as a single number: 0 for the alternate first
// page, otherwise the page number.
func (c Cursor) Sentinel() int {
	if c.alternate {
		return 0
	}
	return c.Page()
}

// IsFirst reports whether the cursor points at the first page in either form.
func (c Cursor) IsFirst() bool {
	return c.Page() == 1
}

// Toggle returns the cursor a refresh moves to: the alternate first page
// becomes the plain first page, anything else becomes the alternate first page.
func (c Cursor) Toggle() Cursor {
	if c.alternate {
		return Cursor{page: 1}
	}
	return Cursor{page: 1, alternate: true}
}

// Next returns the cursor for the following page. The alternate first page
// advances straight to page 2.
func (c Cursor) Next() Cursor {
	return Cursor{page: c.Page() + 1}
}

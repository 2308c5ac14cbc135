package user

// DefaultMaxPageSize is the largest page a listing returns unless configured otherwise.
const DefaultMaxPageSize = 10

// Page is an offset window over users ordered by id.
type Page struct {
	Offset int // Number of users to skip
	Limit  int // Number of users to take after clamping
}

// NewPage builds a Page, silently clamping size to maxSize.
// Callers validate offset and size beforehand.
func NewPage(offset, size, maxSize int) Page {
	if maxSize > 0 && size > maxSize {
		size = maxSize
	}
	return Page{Offset: offset, Limit: size}
}

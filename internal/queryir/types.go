package queryir

import (
	"fmt"
	"strings"

	"github.com/roach88/mangaq/internal/ir"
)

// Predicate is one resolved filter semantic. Each variant pairs exactly one
// field name with one legal value shape.
type Predicate interface {
	predicateNode() // Marker method - seals interface to this package

	// Field returns the filter field the predicate came from.
	Field() string
}

// Favorites matches records in the viewer's "Favorites" list.
type Favorites struct{}

// Reading matches records the viewer has reading progress on.
type Reading struct{}

// Title fuzzy-matches any title in any language.
type Title struct{ Text string }

// Artist matches records listing the user as an artist.
type Artist struct {
	Name string
	ID   string
}

// Author matches records listing the user as an author.
type Author struct {
	Name string
	ID   string
}

// Uploader matches records uploaded by the user.
type Uploader struct {
	Name string
	ID   string
}

// ChapterCount compares the number of chapters.
type ChapterCount struct{ Cmp ir.CmpInt }

// UploadedAt compares the creation time, Cmp.Value in epoch milliseconds.
type UploadedAt struct{ Cmp ir.CmpInt }

// Kind matches the record kind (manga, manhwa, ...).
type Kind struct {
	Name string
	ID   string
}

// Source fuzzy-matches any source URL.
type Source struct{ Text string }

// Status matches the publication status code.
type Status struct{ Value int64 }

// Tag matches records carrying any of the resolved tags.
// Sex narrows the tag lookup to one demographic when set.
type Tag struct {
	Sex  *TagSex
	Text string
	IDs  []string
}

func (Favorites) predicateNode()    {}
func (Reading) predicateNode()      {}
func (Title) predicateNode()        {}
func (Artist) predicateNode()       {}
func (Author) predicateNode()       {}
func (Uploader) predicateNode()     {}
func (ChapterCount) predicateNode() {}
func (UploadedAt) predicateNode()   {}
func (Kind) predicateNode()         {}
func (Source) predicateNode()       {}
func (Status) predicateNode()       {}
func (Tag) predicateNode()          {}

func (Favorites) Field() string    { return "favorites" }
func (Reading) Field() string      { return "reading" }
func (Title) Field() string        { return "title" }
func (Artist) Field() string       { return "artist" }
func (Author) Field() string       { return "author" }
func (Uploader) Field() string     { return "uploader" }
func (ChapterCount) Field() string { return "chapters" }
func (UploadedAt) Field() string   { return "uploaded" }
func (Kind) Field() string         { return "kind" }
func (Source) Field() string       { return "source" }
func (Status) Field() string       { return "status" }
func (Tag) Field() string          { return "tag" }

// TagSex is the demographic a tag belongs to.
type TagSex uint8

const (
	TagSexFemale TagSex = iota
	TagSexMale
	TagSexUnisex
)

var tagSexNames = [...]string{"female", "male", "unisex"}

func (s TagSex) String() string {
	if int(s) < len(tagSexNames) {
		return tagSexNames[s]
	}
	return fmt.Sprintf("sex(%d)", uint8(s))
}

// ParseTagSex maps "female", "male" or "unisex" (any case) to a TagSex.
func ParseTagSex(name string) (TagSex, bool) {
	for i, n := range tagSexNames {
		if strings.EqualFold(n, name) {
			return TagSex(i), true
		}
	}
	return 0, false
}

// Filter is a resolved boolean tree: Cond or Bool.
type Filter interface {
	filterNode() // Marker method - seals interface to this package
}

// Cond is a single predicate, negated by flipping its operator when rendered.
type Cond struct {
	Predicate Predicate
	Negate    bool
}

// Bool joins terms with AND (Or == false) or OR (Or == true).
// An empty Bool renders to nothing.
type Bool struct {
	Or    bool
	Terms []Filter
}

func (Cond) filterNode() {}
func (Bool) filterNode() {}

// Order selects the result ordering of a search.
type Order int

const (
	OrderCreated Order = iota
	OrderAlphabetical
	OrderUpdated
	OrderLastRead
	OrderPopularity
	OrderRandom
)

var orderNames = [...]string{"created", "alphabetical", "updated", "last_read", "popularity", "random"}

func (o Order) String() string {
	if int(o) >= 0 && int(o) < len(orderNames) {
		return orderNames[o]
	}
	return fmt.Sprintf("order(%d)", int(o))
}

// ParseOrder maps an order name (any case) to an Order.
func ParseOrder(name string) (Order, error) {
	for i, n := range orderNames {
		if strings.EqualFold(n, name) {
			return Order(i), nil
		}
	}
	return 0, fmt.Errorf("unknown order %q: must be one of %s", name, strings.Join(orderNames[:], ", "))
}

// Base is the record set a Select reads from.
type Base interface {
	baseNode() // Marker method - seals interface to this package
}

// Table reads the primary record table directly.
type Table struct{ Name string }

// LatestActivity is the pivot source: the viewer's activity records grouped
// by parent record, ordered by the latest activity timestamp. It carries its
// own ordering, so a Select using it has no Ordering.
type LatestActivity struct {
	Viewer string
	Desc   bool
}

func (Table) baseNode()          {}
func (LatestActivity) baseNode() {}

// Ordering is the ORDER clause of a Select: OrderBy or Random.
// A nil Ordering means the source is already ordered.
type Ordering interface {
	orderingNode() // Marker method - seals interface to this package
}

// OrderBy sorts by one stored or computed column.
type OrderBy struct {
	Column string
	Desc   bool
}

// Random selects rows in random order.
type Random struct{}

func (OrderBy) orderingNode() {}
func (Random) orderingNode()  {}

// Select is a fully resolved search.
//
// Semantics:
//
//	SELECT <fields> FROM <source> [WHERE <filter>] [<order>] LIMIT <limit> OFFSET <offset>
//
// Viewer is the record id of the user the search runs for. Favorites,
// Reading and LatestActivity need it.
type Select struct {
	Fields []string
	Source Base
	Filter Filter // nil = no filter
	Order  Ordering
	Limit  uint
	Offset uint
	Viewer string
}

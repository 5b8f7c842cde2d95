package catalog

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCatalog is returned when an item fails validation.
	ErrInvalidCatalog = errors.New("invalid catalog")

	// ErrOutOfRange is returned by ItemAt for an index outside the catalog.
	ErrOutOfRange = errors.New("index out of range")
)

// Catalog is an immutable, ordered list of quiz items.
type Catalog struct {
	items []Item
	byID  map[string]int
}

// New validates items and builds a catalog. An empty catalog is valid.
func New(items ...Item) (*Catalog, error) {
	c := &Catalog{
		items: make([]Item, len(items)),
		byID:  make(map[string]int, len(items)),
	}
	for i, it := range items {
		if err := it.validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
		}
		if _, dup := c.byID[it.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate item id %q", ErrInvalidCatalog, it.ID)
		}
		c.byID[it.ID] = i
		c.items[i] = it
	}
	return c, nil
}

// MustNew is like New but panics on error. Intended for package-level
// catalogs and tests.
func MustNew(items ...Item) *Catalog {
	c, err := New(items...)
	if err != nil {
		panic(err)
	}
	return c
}

// Len returns the number of items.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.items)
}

// ItemAt returns the item at index.
func (c *Catalog) ItemAt(index int) (Item, error) {
	if index < 0 || index >= c.Len() {
		return Item{}, fmt.Errorf("%w: %d (len %d)", ErrOutOfRange, index, c.Len())
	}
	return c.items[index], nil
}

// Items returns a copy of all items in order.
func (c *Catalog) Items() []Item {
	out := make([]Item, c.Len())
	if c != nil {
		copy(out, c.items)
	}
	return out
}

// Lookup finds an item by id.
func (c *Catalog) Lookup(id string) (Item, bool) {
	if c == nil {
		return Item{}, false
	}
	i, ok := c.byID[id]
	if !ok {
		return Item{}, false
	}
	return c.items[i], true
}

// IndexOf returns the position of the item with id, or -1.
func (c *Catalog) IndexOf(id string) int {
	if c == nil {
		return -1
	}
	if i, ok := c.byID[id]; ok {
		return i
	}
	return -1
}

package sortkey

import "strings"

// Key is the primary sort field of a search request.
type Key string

// Sort keys.
const (
	// Quality orders by the computed quality score and is the default.
	Quality     Key = "quality"
	Rating      Key = "rating"
	Price       Key = "price"
	Name        Key = "name"
	CreatedDate Key = "created_date"
)

// IsValid checks if the key is one of the supported values.
func (k Key) IsValid() bool {
	switch k {
	case Quality, Rating, Price, Name, CreatedDate:
		return true
	}
	return false
}

// Parse maps a raw sort key to a Key, falling back to Quality for unknown or
// empty input. An unknown sort key is not an error.
func Parse(raw string) Key {
	k := Key(strings.ToLower(strings.TrimSpace(raw)))
	if !k.IsValid() {
		return Quality
	}
	return k
}

// Direction is the sort order.
type Direction string

// Sort directions.
const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// IsValid checks if the direction is one of the supported values.
func (d Direction) IsValid() bool {
	return d == Asc || d == Desc
}

// ParseDirection maps a raw direction to Direction, falling back to the
// natural direction of the key: ascending for price and name, descending for
// the score-like keys.
func ParseDirection(raw string, k Key) Direction {
	d := Direction(strings.ToLower(strings.TrimSpace(raw)))
	if d.IsValid() {
		return d
	}
	return DefaultDirection(k)
}

// DefaultDirection returns the natural direction for a key.
func DefaultDirection(k Key) Direction {
	switch k {
	case Price, Name:
		return Asc
	default:
		return Desc
	}
}

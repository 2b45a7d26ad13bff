package okulbul

import (
	"context"
	"fmt"

	"github.com/okulbul/okulbul/internal/domain/search/request"
)

// SearchBuilder is a fluent builder for search queries. Locators are set
// either by id (InstitutionType, Province, ...) or by display name
// (InstitutionTypeName, ProvinceName, ...), never both.
type SearchBuilder struct {
	client *Client
	params request.Params
}

// InstitutionType sets the institution type locator by id.
func (b *SearchBuilder) InstitutionType(id int64) *SearchBuilder {
	b.params.InstitutionTypeID = id
	return b
}

// Province sets the province locator by id.
func (b *SearchBuilder) Province(id int64) *SearchBuilder {
	b.params.ProvinceID = id
	return b
}

// District narrows the search to one district by id.
func (b *SearchBuilder) District(id int64) *SearchBuilder {
	b.params.DistrictID = id
	return b
}

// Neighborhood narrows the search to one neighborhood by id.
func (b *SearchBuilder) Neighborhood(id int64) *SearchBuilder {
	b.params.NeighborhoodID = id
	return b
}

// InstitutionTypeName sets the institution type locator by display name,
// matched with Turkish case folding.
func (b *SearchBuilder) InstitutionTypeName(name string) *SearchBuilder {
	b.params.InstitutionTypeName = name
	return b
}

// ProvinceName sets the province locator by display name.
func (b *SearchBuilder) ProvinceName(name string) *SearchBuilder {
	b.params.ProvinceName = name
	return b
}

// DistrictName narrows the search to one district by display name.
func (b *SearchBuilder) DistrictName(name string) *SearchBuilder {
	b.params.DistrictName = name
	return b
}

// NeighborhoodName narrows the search to one neighborhood by display name.
func (b *SearchBuilder) NeighborhoodName(name string) *SearchBuilder {
	b.params.NeighborhoodName = name
	return b
}

// Ages requires the school's published age range to cover [min, max].
func (b *SearchBuilder) Ages(min, max int) *SearchBuilder {
	b.params.MinAge = &min
	b.params.MaxAge = &max
	return b
}

// Fees bounds the monthly fee inclusively.
func (b *SearchBuilder) Fees(min, max float64) *SearchBuilder {
	b.params.MinFee = &min
	b.params.MaxFee = &max
	return b
}

// MaxFee bounds the monthly fee from above only.
func (b *SearchBuilder) MaxFee(max float64) *SearchBuilder {
	b.params.MaxFee = &max
	return b
}

// Curriculum filters by curriculum, folded.
func (b *SearchBuilder) Curriculum(c string) *SearchBuilder {
	b.params.Curriculum = c
	return b
}

// Language filters by language of instruction, folded.
func (b *SearchBuilder) Language(l string) *SearchBuilder {
	b.params.Language = l
	return b
}

// MinRating keeps only schools with at least one rating and an average at or
// above min.
func (b *SearchBuilder) MinRating(min float64) *SearchBuilder {
	b.params.MinRating = &min
	return b
}

// Subscribed filters on the subscription flag.
func (b *SearchBuilder) Subscribed(v bool) *SearchBuilder {
	b.params.Subscribed = &v
	return b
}

// Term adds a free-text term matched against school names and properties.
func (b *SearchBuilder) Term(t string) *SearchBuilder {
	b.params.Term = t
	return b
}

// Properties requires at least one of the given property ids (id mode).
func (b *SearchBuilder) Properties(ids ...int64) *SearchBuilder {
	b.params.PropertyIDs = append(b.params.PropertyIDs, ids...)
	return b
}

// PropertyNames requires at least one of the given property display names
// (name mode).
func (b *SearchBuilder) PropertyNames(names ...string) *SearchBuilder {
	b.params.PropertyNames = append(b.params.PropertyNames, names...)
	return b
}

// Near sets the radius search center.
func (b *SearchBuilder) Near(lat, lon float64) *SearchBuilder {
	b.params.Lat = &lat
	b.params.Lon = &lon
	return b
}

// Km sets the search radius in kilometers. Schools without coordinates are
// excluded from radius searches.
func (b *SearchBuilder) Km(radius float64) *SearchBuilder {
	b.params.RadiusKm = &radius
	return b
}

// SortBy sets the sort key (quality, rating, price, name, created_date) and
// direction (asc, desc). Unknown keys fall back to quality.
func (b *SearchBuilder) SortBy(key, direction string) *SearchBuilder {
	b.params.Sort = key
	b.params.Direction = direction
	return b
}

// Page sets the 0-based page number.
func (b *SearchBuilder) Page(n int) *SearchBuilder {
	b.params.Page = n
	return b
}

// Size sets the page size, clamped to the maximum.
func (b *SearchBuilder) Size(n int) *SearchBuilder {
	b.params.Size = n
	return b
}

// Do validates the query and executes it against the current snapshot.
func (b *SearchBuilder) Do(ctx context.Context) (Page, error) {
	req, err := request.New(b.params, b.client.bounds)
	if err != nil {
		return Page{}, fmt.Errorf("search: %w", err)
	}

	page, err := b.client.searchSvc.Search(ctx, &req)
	if err != nil {
		return Page{}, fmt.Errorf("search: %w", err)
	}
	return fromPage(page), nil
}

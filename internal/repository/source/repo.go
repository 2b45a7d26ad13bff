// Package source reads the normalized institution entities from the
// source-of-truth store. The write side lives in a separate service; this
// repository only scans and reads hashes during projection rebuilds.
package source

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/okulbul/okulbul/internal/db"
)

// Entity key segments under the configured prefix.
const (
	kindSchool       = "school"
	kindCampus       = "campus"
	kindBrand        = "brand"
	kindType         = "institution_type"
	kindCountry      = "country"
	kindProvince     = "province"
	kindDistrict     = "district"
	kindNeighborhood = "neighborhood"
	kindPricing      = "pricing"
	kindProperty     = "property"
	kindPropVals     = "propvals"
)

// Warning records a source row that could not be read or parsed. Warnings do
// not fail a load; the projection cycle logs them.
type Warning struct {
	Key string
	Err error
}

// Dataset is one consistent read of all normalized entities.
type Dataset struct {
	Schools      map[int64]School
	Campuses     map[int64]Campus
	Brands       map[int64]Brand
	Types        map[int64]InstitutionType
	Countries    map[int64]Place
	Provinces    map[int64]Place
	Districts    map[int64]Place
	Neighborhood map[int64]Place
	Pricing      map[int64]Pricing

	PropertyDefs map[int64]PropertyDef
	// SchoolPropVals and CampusPropVals map owner id -> property id -> raw value.
	SchoolPropVals map[int64]map[int64]string
	CampusPropVals map[int64]map[int64]string

	Warnings []Warning
}

// Repo loads normalized source rows.
type Repo struct {
	store  db.HashReader
	prefix string
}

// New creates a source repository. prefix namespaces all entity keys.
func New(store db.HashReader, prefix string) *Repo {
	return &Repo{store: store, prefix: prefix}
}

// LoadAll reads the full normalized dataset. Entity families load
// concurrently; a failed family fails the load (the refresh cycle keeps the
// previous snapshot), while individual bad rows only produce warnings.
func (r *Repo) LoadAll(ctx context.Context) (*Dataset, error) {
	ds := &Dataset{
		Schools:        make(map[int64]School),
		Campuses:       make(map[int64]Campus),
		Brands:         make(map[int64]Brand),
		Types:          make(map[int64]InstitutionType),
		Countries:      make(map[int64]Place),
		Provinces:      make(map[int64]Place),
		Districts:      make(map[int64]Place),
		Neighborhood:   make(map[int64]Place),
		Pricing:        make(map[int64]Pricing),
		PropertyDefs:   make(map[int64]PropertyDef),
		SchoolPropVals: make(map[int64]map[int64]string),
		CampusPropVals: make(map[int64]map[int64]string),
	}

	// Each loader owns distinct Dataset fields, so no locking between them;
	// warnings are merged after the group finishes.
	warnings := make([][]Warning, 12)
	g, gctx := errgroup.WithContext(ctx)

	loaders := []func(context.Context) ([]Warning, error){
		func(c context.Context) ([]Warning, error) { return r.loadSchools(c, ds) },
		func(c context.Context) ([]Warning, error) { return r.loadCampuses(c, ds) },
		func(c context.Context) ([]Warning, error) { return r.loadBrands(c, ds) },
		func(c context.Context) ([]Warning, error) { return r.loadTypes(c, ds) },
		func(c context.Context) ([]Warning, error) { return r.loadPlaces(c, kindCountry, "", ds.Countries) },
		func(c context.Context) ([]Warning, error) {
			return r.loadPlaces(c, kindProvince, "country_id", ds.Provinces)
		},
		func(c context.Context) ([]Warning, error) {
			return r.loadPlaces(c, kindDistrict, "province_id", ds.Districts)
		},
		func(c context.Context) ([]Warning, error) {
			return r.loadPlaces(c, kindNeighborhood, "district_id", ds.Neighborhood)
		},
		func(c context.Context) ([]Warning, error) { return r.loadPricing(c, ds) },
		func(c context.Context) ([]Warning, error) { return r.loadPropertyDefs(c, ds) },
		func(c context.Context) ([]Warning, error) { return r.loadPropVals(c, kindSchool, ds.SchoolPropVals) },
		func(c context.Context) ([]Warning, error) { return r.loadPropVals(c, kindCampus, ds.CampusPropVals) },
	}
	for i, load := range loaders {
		i, load := i, load
		g.Go(func() error {
			w, err := load(gctx)
			warnings[i] = w
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load source data: %w", err)
	}

	for _, w := range warnings {
		ds.Warnings = append(ds.Warnings, w...)
	}
	return ds, nil
}

// loadKind scans one entity family and hands each (id, hash) pair to collect.
func (r *Repo) loadKind(
	ctx context.Context, kind string,
	collect func(id int64, m map[string]string),
) ([]Warning, error) {
	pattern := r.prefix + kind + ":*"
	keys, err := r.store.Scan(ctx, pattern)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", pattern, err)
	}
	if len(keys) == 0 {
		return nil, nil
	}

	rows, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("read %s rows: %w", kind, err)
	}

	var warns []Warning
	for i, m := range rows {
		id, err := idFromKey(keys[i])
		if err != nil {
			warns = append(warns, Warning{Key: keys[i], Err: err})
			continue
		}
		if len(m) == 0 {
			// Key expired between SCAN and HGETALL.
			continue
		}
		collect(id, m)
	}
	return warns, nil
}

func (r *Repo) loadSchools(ctx context.Context, ds *Dataset) ([]Warning, error) {
	return r.loadKind(ctx, kindSchool, func(id int64, m map[string]string) {
		ds.Schools[id] = parseSchool(id, m)
	})
}

func (r *Repo) loadCampuses(ctx context.Context, ds *Dataset) ([]Warning, error) {
	return r.loadKind(ctx, kindCampus, func(id int64, m map[string]string) {
		ds.Campuses[id] = parseCampus(id, m)
	})
}

func (r *Repo) loadBrands(ctx context.Context, ds *Dataset) ([]Warning, error) {
	return r.loadKind(ctx, kindBrand, func(id int64, m map[string]string) {
		ds.Brands[id] = Brand{ID: id, Name: m["name"]}
	})
}

func (r *Repo) loadTypes(ctx context.Context, ds *Dataset) ([]Warning, error) {
	return r.loadKind(ctx, kindType, func(id int64, m map[string]string) {
		ds.Types[id] = parseInstitutionType(id, m)
	})
}

func (r *Repo) loadPlaces(
	ctx context.Context, kind, parentField string, dst map[int64]Place,
) ([]Warning, error) {
	return r.loadKind(ctx, kind, func(id int64, m map[string]string) {
		dst[id] = parsePlace(id, m, parentField)
	})
}

func (r *Repo) loadPricing(ctx context.Context, ds *Dataset) ([]Warning, error) {
	return r.loadKind(ctx, kindPricing, func(id int64, m map[string]string) {
		ds.Pricing[id] = parsePricing(id, m)
	})
}

func (r *Repo) loadPropertyDefs(ctx context.Context, ds *Dataset) ([]Warning, error) {
	var defWarns []Warning
	warns, err := r.loadKind(ctx, kindProperty, func(id int64, m map[string]string) {
		def, ok := parsePropertyDef(id, m)
		if !ok {
			defWarns = append(defWarns, Warning{
				Key: r.prefix + kindProperty + ":" + strconv.FormatInt(id, 10),
				Err: fmt.Errorf("unknown data type %q", m["data_type"]),
			})
			return
		}
		ds.PropertyDefs[id] = def
	})
	return append(warns, defWarns...), err
}

// loadPropVals reads the per-owner property value hashes; fields are property
// ids, values the raw stored value. A null-valued property is simply absent
// from its owner's hash.
func (r *Repo) loadPropVals(
	ctx context.Context, ownerKind string, dst map[int64]map[int64]string,
) ([]Warning, error) {
	pattern := r.prefix + kindPropVals + ":" + ownerKind + ":*"
	keys, err := r.store.Scan(ctx, pattern)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", pattern, err)
	}
	if len(keys) == 0 {
		return nil, nil
	}

	rows, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("read %s property values: %w", ownerKind, err)
	}

	var warns []Warning
	for i, m := range rows {
		ownerID, err := idFromKey(keys[i])
		if err != nil {
			warns = append(warns, Warning{Key: keys[i], Err: err})
			continue
		}
		if len(m) == 0 {
			continue
		}
		vals := make(map[int64]string, len(m))
		for field, raw := range m {
			propID, err := strconv.ParseInt(field, 10, 64)
			if err != nil {
				warns = append(warns, Warning{Key: keys[i], Err: fmt.Errorf("bad property field %q", field)})
				continue
			}
			vals[propID] = raw
		}
		dst[ownerID] = vals
	}
	return warns, nil
}

// idFromKey extracts the trailing numeric id of an entity key.
func idFromKey(key string) (int64, error) {
	idx := strings.LastIndexByte(key, ':')
	if idx < 0 || idx == len(key)-1 {
		return 0, fmt.Errorf("malformed key %q", key)
	}
	id, err := strconv.ParseInt(key[idx+1:], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed key %q: %w", key, err)
	}
	return id, nil
}

package request

import (
	"errors"
	"math"
	"testing"

	"github.com/okulbul/okulbul/internal/domain"
	"github.com/okulbul/okulbul/internal/domain/search/sortkey"
)

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

func idParams() Params {
	return Params{InstitutionTypeID: 5, ProvinceID: 34}
}

func nameParams() Params {
	return Params{InstitutionTypeName: "Anaokulu", ProvinceName: "İstanbul"}
}

func TestNew_IDMode(t *testing.T) {
	r, err := New(idParams(), Bounds{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Mode() != ByID {
		t.Errorf("mode = %v", r.Mode())
	}
	if r.TypeID() != 5 || r.ProvinceID() != 34 {
		t.Errorf("locator ids = %d/%d", r.TypeID(), r.ProvinceID())
	}
}

func TestNew_NameMode_Folded(t *testing.T) {
	r, err := New(nameParams(), Bounds{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Mode() != ByName {
		t.Errorf("mode = %v", r.Mode())
	}
	if r.ProvinceName() != "istanbul" {
		t.Errorf("province not folded: %q", r.ProvinceName())
	}
	if r.TypeName() != "anaokulu" {
		t.Errorf("type not folded: %q", r.TypeName())
	}
}

func TestNew_MixedLocators_Ambiguous(t *testing.T) {
	p := idParams()
	p.ProvinceName = "İstanbul"
	_, err := New(p, Bounds{})
	if !errors.Is(err, domain.ErrAmbiguousMode) {
		t.Fatalf("expected ErrAmbiguousMode, got %v", err)
	}
}

func TestNew_IncompleteLocatorPair(t *testing.T) {
	tests := []struct {
		name string
		p    Params
	}{
		{"no locators", Params{}},
		{"only type id", Params{InstitutionTypeID: 5}},
		{"only province id", Params{ProvinceID: 34}},
		{"only district id", Params{DistrictID: 421}},
		{"only type name", Params{InstitutionTypeName: "Anaokulu"}},
		{"only district name", Params{DistrictName: "Kadıköy"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.p, Bounds{})
			if !errors.Is(err, domain.ErrInvalidRequest) {
				t.Fatalf("expected ErrInvalidRequest, got %v", err)
			}
		})
	}
}

func TestNew_PropertyStyleMustMatchMode(t *testing.T) {
	p := idParams()
	p.PropertyNames = []string{"Servis"}
	if _, err := New(p, Bounds{}); !errors.Is(err, domain.ErrInvalidRequest) {
		t.Errorf("property names in id mode: %v", err)
	}

	n := nameParams()
	n.PropertyIDs = []int64{1}
	if _, err := New(n, Bounds{}); !errors.Is(err, domain.ErrInvalidRequest) {
		t.Errorf("property ids in name mode: %v", err)
	}
}

func TestNew_PropertiesDedupedAndFolded(t *testing.T) {
	p := idParams()
	p.PropertyIDs = []int64{3, 1, 3, 0, -2, 1}
	r, err := New(p, Bounds{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := r.PropertyIDs(); len(got) != 2 || got[0] != 3 || got[1] != 1 {
		t.Errorf("property ids = %v", got)
	}

	n := nameParams()
	n.PropertyNames = []string{"SERVİS", "servis", " Havuz "}
	rn, err := New(n, Bounds{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := rn.PropertyNames(); len(got) != 2 || got[0] != "servis" || got[1] != "havuz" {
		t.Errorf("property names = %v", got)
	}
}

func TestNew_TooManyProperties(t *testing.T) {
	p := idParams()
	for i := int64(1); i <= MaxPropertySet+1; i++ {
		p.PropertyIDs = append(p.PropertyIDs, i)
	}
	if _, err := New(p, Bounds{}); !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestNew_RangeValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Params)
	}{
		{"min age above max", func(p *Params) { p.MinAge = intPtr(7); p.MaxAge = intPtr(3) }},
		{"negative min age", func(p *Params) { p.MinAge = intPtr(-1) }},
		{"min fee above max", func(p *Params) { p.MinFee = floatPtr(5000); p.MaxFee = floatPtr(1000) }},
		{"negative min fee", func(p *Params) { p.MinFee = floatPtr(-10) }},
		{"rating above scale", func(p *Params) { p.MinRating = floatPtr(5.5) }},
		{"negative rating", func(p *Params) { p.MinRating = floatPtr(-0.5) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := idParams()
			tt.mutate(&p)
			if _, err := New(p, Bounds{}); !errors.Is(err, domain.ErrInvalidRequest) {
				t.Fatalf("expected ErrInvalidRequest, got %v", err)
			}
		})
	}
}

func TestNew_TermFolded(t *testing.T) {
	p := idParams()
	p.Term = " Montessori EĞİTİM "
	r, err := New(p, Bounds{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Term() != "montessori eğitim" {
		t.Errorf("term = %q", r.Term())
	}
	if toks := r.TermTokens(); len(toks) != 2 || toks[0] != "montessori" || toks[1] != "eğitim" {
		t.Errorf("tokens = %v", toks)
	}
}

func TestNew_TermTooLong(t *testing.T) {
	p := idParams()
	for i := 0; i <= MaxTermLength; i++ {
		p.Term += "x"
	}
	if _, err := New(p, Bounds{}); !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestNew_GeoTriple(t *testing.T) {
	p := idParams()
	p.Lat = floatPtr(41.0)
	if _, err := New(p, Bounds{}); !errors.Is(err, domain.ErrInvalidRequest) {
		t.Errorf("partial geo triple accepted: %v", err)
	}

	p.Lon = floatPtr(29.0)
	p.RadiusKm = floatPtr(0)
	if _, err := New(p, Bounds{}); !errors.Is(err, domain.ErrInvalidRequest) {
		t.Errorf("zero radius accepted: %v", err)
	}

	p.RadiusKm = floatPtr(5)
	r, err := New(p, Bounds{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Center() == nil || r.Center().Lat != 41.0 || r.RadiusKm() != 5 {
		t.Errorf("geo not stored: center=%v radius=%v", r.Center(), r.RadiusKm())
	}
}

func TestNew_GeoOutOfRange(t *testing.T) {
	p := idParams()
	p.Lat = floatPtr(95.0)
	p.Lon = floatPtr(29.0)
	p.RadiusKm = floatPtr(5)
	if _, err := New(p, Bounds{}); !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestNew_SortFallback(t *testing.T) {
	p := idParams()
	p.Sort = "relevance" // unknown
	r, err := New(p, Bounds{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Sort() != sortkey.Quality || r.Direction() != sortkey.Desc {
		t.Errorf("fallback sort = %v %v", r.Sort(), r.Direction())
	}

	p.Sort = "price"
	r, _ = New(p, Bounds{})
	if r.Sort() != sortkey.Price || r.Direction() != sortkey.Asc {
		t.Errorf("price sort = %v %v", r.Sort(), r.Direction())
	}
}

func TestNew_PageClamping(t *testing.T) {
	p := idParams()
	p.Page = -3
	p.Size = 0
	r, err := New(p, Bounds{DefaultSize: 25, MaxSize: 50})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Page() != 0 {
		t.Errorf("page = %d", r.Page())
	}
	if r.Size() != 25 {
		t.Errorf("size = %d", r.Size())
	}

	p.Size = 500
	r, _ = New(p, Bounds{DefaultSize: 25, MaxSize: 50})
	if r.Size() != 50 {
		t.Errorf("clamped size = %d", r.Size())
	}

	// A huge page number must clamp so page*size can never overflow.
	p.Page = math.MaxInt
	p.Size = 20
	r, _ = New(p, Bounds{})
	if r.Page() != MaxPage {
		t.Errorf("page = %d, want %d", r.Page(), MaxPage)
	}
}

func TestNew_DefaultBounds(t *testing.T) {
	p := idParams()
	p.Size = 99999
	r, err := New(p, Bounds{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Size() != MaxPageSize {
		t.Errorf("size = %d, want %d", r.Size(), MaxPageSize)
	}
}

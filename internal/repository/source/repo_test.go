package source

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// --- Mocks ---

type mockHashReader struct {
	// hashes maps full key -> hash fields.
	hashes  map[string]map[string]string
	scanErr error
	readErr error
}

func (m *mockHashReader) HGetAll(_ context.Context, key string) (map[string]string, error) {
	if m.readErr != nil {
		return nil, m.readErr
	}
	return m.hashes[key], nil
}

func (m *mockHashReader) HGetAllMulti(_ context.Context, keys []string) ([]map[string]string, error) {
	if m.readErr != nil {
		return nil, m.readErr
	}
	out := make([]map[string]string, len(keys))
	for i, k := range keys {
		out[i] = m.hashes[k]
	}
	return out, nil
}

func (m *mockHashReader) Scan(_ context.Context, pattern string) ([]string, error) {
	if m.scanErr != nil {
		return nil, m.scanErr
	}
	prefix := strings.TrimSuffix(pattern, "*")
	var keys []string
	for k := range m.hashes {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

func fixtureStore() *mockHashReader {
	return &mockHashReader{hashes: map[string]map[string]string{
		"okulbul:school:1": {
			"name": "Özel Yıldız Anaokulu", "campus_id": "10",
			"institution_type_id": "5", "active": "1",
			"min_age": "3", "max_age": "6",
			"view_count": "120", "rating_count": "4", "rating_avg": "4.5",
			"created_at": "1700000000",
		},
		"okulbul:campus:10": {
			"name": "Yıldız Kampüs", "brand_id": "2",
			"country_id": "1", "province_id": "34", "district_id": "421",
			"lat": "41.02", "lon": "29.01", "subscribed": "1", "verified": "true",
		},
		"okulbul:brand:2":            {"name": "Yıldız Eğitim"},
		"okulbul:institution_type:5": {"name": "Anaokulu", "group_id": "1", "group_name": "Okul Öncesi"},
		"okulbul:country:1":          {"name": "Türkiye", "slug": "turkiye"},
		"okulbul:province:34":        {"name": "İstanbul", "slug": "istanbul", "country_id": "1"},
		"okulbul:district:421":       {"name": "Kadıköy", "slug": "kadikoy", "province_id": "34"},
		"okulbul:pricing:1":          {"monthly_fee": "8500", "currency": "TRY"},
		"okulbul:property:7":         {"display_name": "Servis", "category": "ulaşım", "data_type": "bool"},
		"okulbul:propvals:school:1":  {"7": "true"},
	}}
}

// --- Tests ---

func TestLoadAll(t *testing.T) {
	repo := New(fixtureStore(), "okulbul:")

	ds, err := repo.LoadAll(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	school, ok := ds.Schools[1]
	if !ok {
		t.Fatal("school 1 missing")
	}
	if school.Name != "Özel Yıldız Anaokulu" || school.CampusID != 10 || !school.Active {
		t.Errorf("school = %+v", school)
	}
	if school.MinAge == nil || *school.MinAge != 3 {
		t.Errorf("min age = %v", school.MinAge)
	}
	if school.CreatedAt.IsZero() {
		t.Error("created_at not parsed")
	}

	campus, ok := ds.Campuses[10]
	if !ok {
		t.Fatal("campus 10 missing")
	}
	if campus.Lat == nil || *campus.Lat != 41.02 || !campus.Subscribed || !campus.Verified {
		t.Errorf("campus = %+v", campus)
	}

	if ds.Provinces[34].Name != "İstanbul" || ds.Provinces[34].ParentID != 1 {
		t.Errorf("province = %+v", ds.Provinces[34])
	}

	pricing, ok := ds.Pricing[1]
	if !ok || pricing.MonthlyFee == nil || *pricing.MonthlyFee != 8500 {
		t.Errorf("pricing = %+v", pricing)
	}
	if pricing.AnnualFee != nil {
		t.Error("absent annual fee should stay nil")
	}

	def, ok := ds.PropertyDefs[7]
	if !ok || def.DisplayName != "Servis" {
		t.Errorf("property def = %+v", def)
	}

	vals, ok := ds.SchoolPropVals[1]
	if !ok || vals[7] != "true" {
		t.Errorf("school prop vals = %+v", vals)
	}

	if len(ds.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", ds.Warnings)
	}
}

func TestLoadAll_ScanFailureFailsLoad(t *testing.T) {
	store := fixtureStore()
	store.scanErr = errors.New("connection reset")
	repo := New(store, "okulbul:")

	if _, err := repo.LoadAll(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestLoadAll_BadRowsWarnNotFail(t *testing.T) {
	store := fixtureStore()
	store.hashes["okulbul:school:abc"] = map[string]string{"name": "bozuk"}
	store.hashes["okulbul:property:9"] = map[string]string{"display_name": "Tuhaf", "data_type": "blob"}
	store.hashes["okulbul:propvals:school:2"] = map[string]string{"x": "1"}
	repo := New(store, "okulbul:")

	ds, err := repo.LoadAll(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ds.Warnings) != 3 {
		t.Errorf("warnings = %v", ds.Warnings)
	}
	if _, ok := ds.PropertyDefs[9]; ok {
		t.Error("bad property def should be dropped")
	}
}

func TestIDFromKey(t *testing.T) {
	tests := []struct {
		key     string
		want    int64
		wantErr bool
	}{
		{"okulbul:school:42", 42, false},
		{"okulbul:propvals:school:7", 7, false},
		{"okulbul:school:", 0, true},
		{"okulbul:school:abc", 0, true},
		{"plain", 0, true},
	}
	for _, tt := range tests {
		got, err := idFromKey(tt.key)
		if tt.wantErr {
			if err == nil {
				t.Errorf("idFromKey(%q): expected error", tt.key)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("idFromKey(%q) = %d, %v", tt.key, got, err)
		}
	}
}

package catalog

import (
	"strings"
	"testing"
)

func testRecord() SearchRecord {
	return SearchRecord{
		SchoolID:            1,
		SchoolName:          "Özel İstanbul Anaokulu",
		InstitutionTypeID:   5,
		InstitutionTypeName: "Anaokulu",
		Location: Location{
			ProvinceID:   34,
			ProvinceName: "İstanbul",
			DistrictID:   421,
			DistrictName: "Kadıköy",
		},
		Curriculum: "Montessori",
		Language:   "İngilizce",
		Properties: []Property{
			{ID: 1, DisplayName: "Servis", Category: "ulaşım", Value: BoolValue(true)},
			{ID: 2, DisplayName: "Beslenme Programı", Category: "sağlık", Value: TextValue("Organik Menü")},
		},
	}
}

func TestComputeDerived_Folds(t *testing.T) {
	rec := testRecord()
	rec.ComputeDerived()

	if rec.Folded.SchoolName != "özel istanbul anaokulu" {
		t.Errorf("folded school name = %q", rec.Folded.SchoolName)
	}
	if rec.Folded.ProvinceName != "istanbul" {
		t.Errorf("folded province = %q", rec.Folded.ProvinceName)
	}
	if rec.Folded.DistrictName != "kadıköy" {
		t.Errorf("folded district = %q", rec.Folded.DistrictName)
	}
	if rec.Folded.Curriculum != "montessori" {
		t.Errorf("folded curriculum = %q", rec.Folded.Curriculum)
	}
}

func TestComputeDerived_SearchBlob(t *testing.T) {
	rec := testRecord()
	rec.ComputeDerived()

	// Folded display names and text-typed values, not bool values.
	for _, want := range []string{"servis", "beslenme programı", "organik menü"} {
		if !strings.Contains(rec.SearchBlob, want) {
			t.Errorf("search blob missing %q: %q", want, rec.SearchBlob)
		}
	}
	if strings.Contains(rec.SearchBlob, "true") {
		t.Errorf("bool values must not leak into the blob: %q", rec.SearchBlob)
	}
}

func TestComputeDerived_ByCategory(t *testing.T) {
	rec := testRecord()
	rec.ComputeDerived()

	if len(rec.ByCategory) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(rec.ByCategory))
	}
	if len(rec.ByCategory["ulaşım"]) != 1 {
		t.Errorf("ulaşım entries = %d", len(rec.ByCategory["ulaşım"]))
	}
}

func TestHasRating(t *testing.T) {
	rec := testRecord()
	if rec.HasRating() {
		t.Error("no ratings yet")
	}
	rec.Engagement.RatingCount = 3
	rec.Engagement.RatingAvg = 4.2
	if !rec.HasRating() {
		t.Error("expected HasRating with count > 0")
	}
}

func TestHasAnyPropertyID(t *testing.T) {
	rec := testRecord()
	if !rec.HasAnyPropertyID([]int64{99, 2}) {
		t.Error("expected match on id 2")
	}
	if rec.HasAnyPropertyID([]int64{99, 100}) {
		t.Error("unexpected match")
	}
}

func TestHasAnyPropertyName(t *testing.T) {
	rec := testRecord()
	if !rec.HasAnyPropertyName([]string{"servis"}) {
		t.Error("expected folded name match")
	}
	if rec.HasAnyPropertyName([]string{"havuz"}) {
		t.Error("unexpected match")
	}
}

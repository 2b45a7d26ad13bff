package catalog

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseValue(t *testing.T) {
	tests := []struct {
		name     string
		dataType DataType
		raw      string
		want     Value
		wantErr  bool
	}{
		{"text", TypeText, "tam gün", TextValue("tam gün"), false},
		{"number", TypeNumber, "24.5", NumberValue(24.5), false},
		{"bool true", TypeBool, "true", BoolValue(true), false},
		{"bool numeric", TypeBool, "1", BoolValue(true), false},
		{"date", TypeDate, "2024-09-01", DateValue(time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)), false},
		{"bad number", TypeNumber, "abc", nil, true},
		{"bad bool", TypeBool, "evet", nil, true},
		{"bad date", TypeDate, "01.09.2024", nil, true},
		{"unknown type", DataType("blob"), "x", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseValue(tt.dataType, tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProperty_JSONRoundTrip(t *testing.T) {
	props := []Property{
		{ID: 1, DisplayName: "Servis", Category: "ulaşım", Value: BoolValue(true)},
		{ID: 2, DisplayName: "Sınıf Mevcudu", Category: "eğitim", Value: NumberValue(18)},
		{ID: 3, DisplayName: "Müfredat Notu", Value: TextValue("IB devam ediyor")},
	}
	for _, p := range props {
		data, err := json.Marshal(p)
		if err != nil {
			t.Fatalf("marshal %d: %v", p.ID, err)
		}
		var back Property
		if err := json.Unmarshal(data, &back); err != nil {
			t.Fatalf("unmarshal %d: %v", p.ID, err)
		}
		if back.ID != p.ID || back.DisplayName != p.DisplayName || back.Category != p.Category {
			t.Errorf("metadata changed: %+v vs %+v", back, p)
		}
		if back.Value.Type() != p.Value.Type() || back.Value.Text() != p.Value.Text() {
			t.Errorf("value changed: %v vs %v", back.Value, p.Value)
		}
	}
}

func TestProperty_MarshalWireShape(t *testing.T) {
	p := Property{ID: 7, DisplayName: "Yüzme Havuzu", Category: "tesis", Value: BoolValue(true)}
	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("unmarshal raw: %v", err)
	}
	if m["propertyId"] != float64(7) {
		t.Errorf("propertyId = %v", m["propertyId"])
	}
	if m["dataType"] != "bool" {
		t.Errorf("dataType = %v", m["dataType"])
	}
	if m["value"] != true {
		t.Errorf("value = %v", m["value"])
	}
}

func TestGroupByCategory(t *testing.T) {
	props := []Property{
		{ID: 1, DisplayName: "Servis", Category: "ulaşım", Value: BoolValue(true)},
		{ID: 2, DisplayName: "Kapalı Otopark", Category: "ulaşım", Value: BoolValue(false)},
		{ID: 3, DisplayName: "Robotik", Value: BoolValue(true)},
	}

	got := GroupByCategory(props)
	if len(got) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(got))
	}
	if len(got["ulaşım"]) != 2 {
		t.Errorf("ulaşım group has %d entries", len(got["ulaşım"]))
	}
	if len(got[""]) != 1 {
		t.Errorf("uncategorized group has %d entries", len(got[""]))
	}

	if GroupByCategory(nil) != nil {
		t.Error("expected nil for empty input")
	}
}

package catalog

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// DataType is the value type of an institution property.
type DataType string

// Property data types.
const (
	TypeText   DataType = "text"
	TypeNumber DataType = "number"
	TypeBool   DataType = "bool"
	TypeDate   DataType = "date"
)

// IsValid checks if the data type is one of the supported values.
func (t DataType) IsValid() bool {
	return t == TypeText || t == TypeNumber || t == TypeBool || t == TypeDate
}

// Value is a typed property value. Implementations are TextValue, NumberValue,
// BoolValue, and DateValue.
type Value interface {
	Type() DataType
	// Text returns the value rendered as a string, used for search blobs and
	// hash storage.
	Text() string
	isValue()
}

// TextValue is a free-text property value.
type TextValue string

// Type returns TypeText.
func (TextValue) Type() DataType { return TypeText }

// Text returns the raw string.
func (v TextValue) Text() string { return string(v) }
func (TextValue) isValue()       {}

// NumberValue is a numeric property value.
type NumberValue float64

// Type returns TypeNumber.
func (NumberValue) Type() DataType { return TypeNumber }

// Text formats the number without trailing zeros.
func (v NumberValue) Text() string { return strconv.FormatFloat(float64(v), 'f', -1, 64) }
func (NumberValue) isValue()       {}

// BoolValue is a boolean property value.
type BoolValue bool

// Type returns TypeBool.
func (BoolValue) Type() DataType { return TypeBool }

// Text returns "true" or "false".
func (v BoolValue) Text() string { return strconv.FormatBool(bool(v)) }
func (BoolValue) isValue()       {}

// DateValue is a date property value.
type DateValue time.Time

// Type returns TypeDate.
func (DateValue) Type() DataType { return TypeDate }

// Text returns the date in RFC 3339 date form.
func (v DateValue) Text() string { return time.Time(v).Format("2006-01-02") }
func (DateValue) isValue()       {}

// ParseValue parses a raw stored value into its typed form.
func ParseValue(t DataType, raw string) (Value, error) {
	switch t {
	case TypeText:
		return TextValue(raw), nil
	case TypeNumber:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("parse number value %q: %w", raw, err)
		}
		return NumberValue(f), nil
	case TypeBool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("parse bool value %q: %w", raw, err)
		}
		return BoolValue(b), nil
	case TypeDate:
		d, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return nil, fmt.Errorf("parse date value %q: %w", raw, err)
		}
		return DateValue(d), nil
	default:
		return nil, fmt.Errorf("unknown property data type %q", t)
	}
}

// Property is one extensible institution attribute attached to a record.
// A property whose source value is null is absent from the record entirely.
type Property struct {
	ID          int64
	DisplayName string
	Category    string
	Value       Value
}

// propertyJSON is the wire shape of a Property.
type propertyJSON struct {
	ID          int64    `json:"propertyId"`
	DisplayName string   `json:"displayName"`
	Category    string   `json:"category,omitempty"`
	DataType    DataType `json:"dataType"`
	Value       any      `json:"value"`
}

// MarshalJSON renders the tagged value as a plain JSON scalar.
func (p Property) MarshalJSON() ([]byte, error) {
	out := propertyJSON{
		ID:          p.ID,
		DisplayName: p.DisplayName,
		Category:    p.Category,
		DataType:    p.Value.Type(),
	}
	switch v := p.Value.(type) {
	case TextValue:
		out.Value = string(v)
	case NumberValue:
		out.Value = float64(v)
	case BoolValue:
		out.Value = bool(v)
	case DateValue:
		out.Value = v.Text()
	}
	return json.Marshal(out)
}

// UnmarshalJSON restores the tagged value from its wire shape.
func (p *Property) UnmarshalJSON(data []byte) error {
	var in propertyJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	var raw string
	switch v := in.Value.(type) {
	case string:
		raw = v
	case float64:
		raw = strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		raw = strconv.FormatBool(v)
	default:
		return fmt.Errorf("property %d: unsupported value %T", in.ID, in.Value)
	}
	val, err := ParseValue(in.DataType, raw)
	if err != nil {
		return fmt.Errorf("property %d: %w", in.ID, err)
	}
	p.ID = in.ID
	p.DisplayName = in.DisplayName
	p.Category = in.Category
	p.Value = val
	return nil
}

// GroupByCategory builds the category view of an ordered property list.
// Properties without a category land under the empty key.
func GroupByCategory(props []Property) map[string][]Property {
	if len(props) == 0 {
		return nil
	}
	out := make(map[string][]Property)
	for _, p := range props {
		out[p.Category] = append(out[p.Category], p)
	}
	return out
}

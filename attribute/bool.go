package attribute

import "github.com/syssam/dynamix"

// IndexableBool stores a boolean as the number 1 or 0.
//
// Native DynamoDB booleans cannot be used in key schemas or range
// conditions. Storing them as numbers makes boolean attributes usable as
// sort keys of indexes.
type IndexableBool struct{}

// Kind implements dynamix.Codec.
func (IndexableBool) Kind() dynamix.Kind { return dynamix.KindNumber }

// Serialize implements dynamix.Codec.
func (IndexableBool) Serialize(v bool) (string, error) {
	if v {
		return "1", nil
	}
	return "0", nil
}

// Deserialize implements dynamix.Codec. Any non-zero number decodes to true.
func (IndexableBool) Deserialize(s string) (bool, error) {
	d, err := parseNumber(s)
	if err != nil {
		return false, err
	}
	return !d.IsZero(), nil
}

var _ dynamix.Codec[bool] = IndexableBool{}

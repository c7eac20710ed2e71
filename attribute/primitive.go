package attribute

import (
	"encoding/base64"
	"fmt"
	"math"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/syssam/dynamix"
)

// formatInt renders an integer as a number literal.
func formatInt(v int64) string {
	return strconv.FormatInt(v, 10)
}

// parseNumber decodes number text into an exact decimal. Integer, decimal
// and exponent forms are accepted.
func parseNumber(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, dynamix.NewDecodeError(dynamix.KindNumber, s, err)
	}
	return d, nil
}

// parseInt decodes number text that must hold an exact 64-bit integer.
func parseInt(s string) (int64, error) {
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v, nil
	}
	d, err := parseNumber(s)
	if err != nil {
		return 0, err
	}
	if !d.IsInteger() {
		return 0, dynamix.NewDecodeError(dynamix.KindNumber, s, fmt.Errorf("not an integer"))
	}
	n := d.BigInt()
	if !n.IsInt64() {
		return 0, dynamix.NewDecodeError(dynamix.KindNumber, s, fmt.Errorf("integer out of range"))
	}
	return n.Int64(), nil
}

func encodeBinary(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

func decodeBinary(s string) ([]byte, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, dynamix.NewDecodeError(dynamix.KindBinary, s, err)
	}
	return b, nil
}

// Unicode stores a string as is.
type Unicode struct{}

// Kind implements dynamix.Codec.
func (Unicode) Kind() dynamix.Kind { return dynamix.KindString }

// Serialize implements dynamix.Codec.
func (Unicode) Serialize(v string) (string, error) { return v, nil }

// Deserialize implements dynamix.Codec.
func (Unicode) Deserialize(s string) (string, error) { return s, nil }

// Integer stores a 64-bit integer as a number.
type Integer struct{}

// Kind implements dynamix.Codec.
func (Integer) Kind() dynamix.Kind { return dynamix.KindNumber }

// Serialize implements dynamix.Codec.
func (Integer) Serialize(v int64) (string, error) { return formatInt(v), nil }

// Deserialize implements dynamix.Codec.
func (Integer) Deserialize(s string) (int64, error) { return parseInt(s) }

// Float stores a 64-bit float as a number. NaN and infinities have no
// number representation and fail to serialize.
type Float struct{}

// Kind implements dynamix.Codec.
func (Float) Kind() dynamix.Kind { return dynamix.KindNumber }

// Serialize implements dynamix.Codec.
func (Float) Serialize(v float64) (string, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "", fmt.Errorf("attribute: %v is not a finite number", v)
	}
	return strconv.FormatFloat(v, 'g', -1, 64), nil
}

// Deserialize implements dynamix.Codec.
func (Float) Deserialize(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, dynamix.NewDecodeError(dynamix.KindNumber, s, err)
	}
	return v, nil
}

// SerializePtr serializes *v, passing nil through unchanged.
func SerializePtr[T any](c dynamix.Codec[T], v *T) (*string, error) {
	if v == nil {
		return nil, nil
	}
	s, err := c.Serialize(*v)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// DeserializePtr deserializes *s, passing nil through unchanged.
func DeserializePtr[T any](c dynamix.Codec[T], s *string) (*T, error) {
	if s == nil {
		return nil, nil
	}
	v, err := c.Deserialize(*s)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

var (
	_ dynamix.Codec[string]  = Unicode{}
	_ dynamix.Codec[int64]   = Integer{}
	_ dynamix.Codec[float64] = Float{}
)

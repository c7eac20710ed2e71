package attribute

import (
	"errors"
	"fmt"
	"strings"

	"github.com/syssam/dynamix"
)

// DefaultDelimiter separates the elements of a DelimitedList.
const DefaultDelimiter = "::"

var errEmptyElement = errors.New("attribute: a single empty element cannot be told apart from an empty list")

// DelimitedList stores a list of strings joined by a delimiter, which is
// useful for composite sort keys such as "tenant::project::task".
// The empty string decodes to an empty list.
type DelimitedList struct {
	Delimiter string // Defaults to DefaultDelimiter
}

func (c DelimitedList) delimiter() string {
	if c.Delimiter == "" {
		return DefaultDelimiter
	}
	return c.Delimiter
}

// Kind implements dynamix.Codec.
func (DelimitedList) Kind() dynamix.Kind { return dynamix.KindString }

// Serialize implements dynamix.Codec. Elements containing the delimiter
// are rejected since they would not split back, as is a list holding a
// single empty element.
func (c DelimitedList) Serialize(v []string) (string, error) {
	if len(v) == 1 && v[0] == "" {
		return "", errEmptyElement
	}
	sep := c.delimiter()
	for _, e := range v {
		if strings.Contains(e, sep) {
			return "", fmt.Errorf("attribute: element %q contains delimiter %q", e, sep)
		}
	}
	return strings.Join(v, sep), nil
}

// Deserialize implements dynamix.Codec.
func (c DelimitedList) Deserialize(s string) ([]string, error) {
	if s == "" {
		return []string{}, nil
	}
	return strings.Split(s, c.delimiter()), nil
}

// Delimited stores a list of typed elements joined by a delimiter. Each
// element goes through Elem, so composite keys like "2024::42" decode back
// to their typed parts. Elem must produce string or number text.
type Delimited[T any] struct {
	Elem      dynamix.Codec[T]
	Delimiter string // Defaults to DefaultDelimiter
}

// Kind implements dynamix.Codec.
func (Delimited[T]) Kind() dynamix.Kind { return dynamix.KindString }

// Serialize implements dynamix.Codec.
func (c Delimited[T]) Serialize(v []T) (string, error) {
	parts := make([]string, len(v))
	for i, e := range v {
		s, err := c.Elem.Serialize(e)
		if err != nil {
			return "", fmt.Errorf("attribute: element %d: %w", i, err)
		}
		parts[i] = s
	}
	return DelimitedList{Delimiter: c.Delimiter}.Serialize(parts)
}

// Deserialize implements dynamix.Codec.
func (c Delimited[T]) Deserialize(s string) ([]T, error) {
	parts, _ := DelimitedList{Delimiter: c.Delimiter}.Deserialize(s)
	out := make([]T, len(parts))
	for i, p := range parts {
		v, err := c.Elem.Deserialize(p)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

var (
	_ dynamix.Codec[[]string] = DelimitedList{}
	_ dynamix.Codec[[]int64]  = Delimited[int64]{}
)

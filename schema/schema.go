package schema

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-openapi/inflect"
	"github.com/shopspring/decimal"

	"github.com/syssam/dynamix"
)

// Schema describes the attributes and key layout of a table.
type Schema struct {
	table    string
	fields   []Field
	index    map[string]Field
	hashKey  Field
	rangeKey Field
}

// New returns a schema for table. Exactly one attribute must be marked as
// hash key, at most one as range key, and attribute names must be unique.
func New(table string, fields ...Field) (*Schema, error) {
	if table == "" {
		return nil, dynamix.NewDefinitionError("schema", "", errors.New("missing table name"))
	}
	s := &Schema{
		table:  table,
		fields: slices.Clone(fields),
		index:  make(map[string]Field, len(fields)),
	}
	for _, f := range fields {
		d := f.Descriptor()
		if d.Name == "" {
			return nil, dynamix.NewDefinitionError(table, "", errors.New("attribute has no name"))
		}
		if _, ok := s.index[d.Name]; ok {
			return nil, dynamix.NewDefinitionError(table, d.Name, errors.New("duplicate attribute"))
		}
		s.index[d.Name] = f
		switch {
		case d.HashKey && d.RangeKey:
			return nil, dynamix.NewDefinitionError(table, d.Name, errors.New("attribute is both hash and range key"))
		case d.HashKey:
			if s.hashKey != nil {
				return nil, dynamix.NewDefinitionError(table, d.Name, fmt.Errorf("hash key already defined by %q", s.hashKey.Name()))
			}
			s.hashKey = f
		case d.RangeKey:
			if s.rangeKey != nil {
				return nil, dynamix.NewDefinitionError(table, d.Name, fmt.Errorf("range key already defined by %q", s.rangeKey.Name()))
			}
			s.rangeKey = f
		}
		if (d.HashKey || d.RangeKey) && d.Nullable {
			return nil, dynamix.NewDefinitionError(table, d.Name, errors.New("key attribute cannot be nullable"))
		}
	}
	if s.hashKey == nil {
		return nil, dynamix.NewDefinitionError(table, "", errors.New("no hash key attribute"))
	}
	return s, nil
}

// MustNew is like New but panics on error.
func MustNew(table string, fields ...Field) *Schema {
	s, err := New(table, fields...)
	if err != nil {
		panic(err)
	}
	return s
}

// TableNameFor derives a table name from the Go type of v, following the
// snake_case plural convention: UserProfile becomes user_profiles.
func TableNameFor(v any) string {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Name() == "" {
		return ""
	}
	return inflect.Underscore(inflect.Pluralize(t.Name()))
}

// Table returns the table name.
func (s *Schema) Table() string { return s.table }

// Fields returns the attributes in declaration order.
func (s *Schema) Fields() []Field { return slices.Clone(s.fields) }

// Field returns the attribute with the given name.
func (s *Schema) Field(name string) (Field, bool) {
	f, ok := s.index[name]
	return f, ok
}

// HashKey returns the partition key attribute.
func (s *Schema) HashKey() Field { return s.hashKey }

// RangeKey returns the sort key attribute, or nil.
func (s *Schema) RangeKey() Field { return s.rangeKey }

// NewItem returns an empty item with defaults applied, including the
// defaults reserved for new items.
func (s *Schema) NewItem() *Item {
	item := &Item{schema: s, values: make(map[string]any, len(s.fields))}
	item.applyDefaults(true)
	return item
}

// Decode builds an item from its stored representation. Unknown
// attributes and NULL values are skipped; defaults for new items are not
// applied.
func (s *Schema) Decode(av map[string]types.AttributeValue) (*Item, error) {
	item := &Item{schema: s, values: make(map[string]any, len(s.fields))}
	if err := item.Refresh(av); err != nil {
		return nil, err
	}
	return item, nil
}

// Key encodes a primary key. rangeKey is ignored for tables without a sort
// key and required otherwise.
func (s *Schema) Key(hashKey, rangeKey any) (map[string]types.AttributeValue, error) {
	key := make(map[string]types.AttributeValue, 2)
	av, err := s.hashKey.EncodeAny(hashKey)
	if err != nil {
		return nil, err
	}
	key[s.hashKey.Name()] = av
	if s.rangeKey != nil {
		if rangeKey == nil {
			return nil, dynamix.NewValidationError(s.rangeKey.Name(), errors.New("missing range key"))
		}
		av, err := s.rangeKey.EncodeAny(rangeKey)
		if err != nil {
			return nil, err
		}
		key[s.rangeKey.Name()] = av
	}
	return key, nil
}

// KeyOf extracts the primary key attributes from a stored item.
func (s *Schema) KeyOf(av map[string]types.AttributeValue) map[string]types.AttributeValue {
	key := make(map[string]types.AttributeValue, 2)
	if v, ok := av[s.hashKey.Name()]; ok {
		key[s.hashKey.Name()] = v
	}
	if s.rangeKey != nil {
		if v, ok := av[s.rangeKey.Name()]; ok {
			key[s.rangeKey.Name()] = v
		}
	}
	return key
}

// KeyID returns a canonical string for an encoded primary key. Numbers are
// normalized so that "1" and "1.0" name the same item. Each part is
// length prefixed, so no key content can mimic a part boundary.
func (s *Schema) KeyID(key map[string]types.AttributeValue) string {
	var b strings.Builder
	part := func(kind byte, v string) {
		b.WriteByte(kind)
		b.WriteString(strconv.Itoa(len(v)))
		b.WriteByte(':')
		b.WriteString(v)
	}
	for _, f := range []Field{s.hashKey, s.rangeKey} {
		if f == nil {
			continue
		}
		switch v := key[f.Name()].(type) {
		case *types.AttributeValueMemberS:
			part('S', v.Value)
		case *types.AttributeValueMemberN:
			if d, err := decimal.NewFromString(v.Value); err == nil {
				part('N', d.String())
			} else {
				part('N', v.Value)
			}
		case *types.AttributeValueMemberB:
			part('B', string(v.Value))
		default:
			part('-', "")
		}
	}
	return b.String()
}

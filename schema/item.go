package schema

import (
	"errors"
	"maps"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/syssam/dynamix"
)

// Item is one record of a table. It is a plain value holder and is not
// safe for concurrent use.
type Item struct {
	schema *Schema
	values map[string]any
}

// Schema returns the schema of the item.
func (i *Item) Schema() *Schema { return i.schema }

// Values returns a copy of the attribute map.
func (i *Item) Values() map[string]any { return maps.Clone(i.values) }

// Has reports whether the attribute is present.
func (i *Item) Has(name string) bool {
	_, ok := i.values[name]
	return ok
}

// Value returns the raw value of an attribute.
func (i *Item) Value(name string) (any, bool) {
	v, ok := i.values[name]
	return v, ok
}

// Encode returns the stored representation of the item. Missing key
// attributes and missing non-nullable attributes are validation errors.
func (i *Item) Encode() (map[string]types.AttributeValue, error) {
	av := make(map[string]types.AttributeValue, len(i.values))
	for _, f := range i.schema.fields {
		v, ok := i.values[f.Name()]
		if !ok {
			if d := f.Descriptor(); !d.Nullable {
				return nil, dynamix.NewValidationError(d.Name, errors.New("attribute cannot be absent"))
			}
			continue
		}
		enc, err := f.EncodeAny(v)
		if err != nil {
			return nil, err
		}
		av[f.Name()] = enc
	}
	return av, nil
}

// Key returns the encoded primary key of the item.
func (i *Item) Key() (map[string]types.AttributeValue, error) {
	key := make(map[string]types.AttributeValue, 2)
	for _, f := range []Field{i.schema.hashKey, i.schema.rangeKey} {
		if f == nil {
			continue
		}
		v, ok := i.values[f.Name()]
		if !ok {
			return nil, dynamix.NewValidationError(f.Name(), errors.New("missing key attribute"))
		}
		enc, err := f.EncodeAny(v)
		if err != nil {
			return nil, err
		}
		key[f.Name()] = enc
	}
	return key, nil
}

// Refresh replaces the attribute values with a stored representation,
// typically the attributes returned by an update.
func (i *Item) Refresh(av map[string]types.AttributeValue) error {
	values := make(map[string]any, len(av))
	for name, v := range av {
		f, ok := i.schema.index[name]
		if !ok {
			continue
		}
		if _, null := v.(*types.AttributeValueMemberNULL); null {
			continue
		}
		dv, err := f.DecodeAny(v)
		if err != nil {
			return err
		}
		values[name] = dv
	}
	i.values = values
	i.applyDefaults(false)
	return nil
}

func (i *Item) applyDefaults(isNew bool) {
	for _, f := range i.schema.fields {
		if _, ok := i.values[f.Name()]; ok {
			continue
		}
		if v, ok := f.defaultValue(isNew); ok {
			i.values[f.Name()] = v
		}
	}
}

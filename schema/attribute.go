package schema

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/syssam/dynamix"
)

// Field is the untyped view of an attribute used by Schema and Item.
// It is implemented by *Attribute[T].
type Field interface {
	// Name returns the attribute name on the stored item.
	Name() string
	// Kind returns the storage primitive of the attribute.
	Kind() dynamix.Kind
	// Descriptor returns the attribute metadata.
	Descriptor() *Descriptor
	// EncodeAny encodes a value held by an Item.
	EncodeAny(v any) (types.AttributeValue, error)
	// DecodeAny decodes a stored value into the form held by an Item.
	DecodeAny(av types.AttributeValue) (any, error)

	defaultValue(isNew bool) (any, bool)
}

// Descriptor holds the metadata of an attribute.
type Descriptor struct {
	Name          string
	Kind          dynamix.Kind
	HashKey       bool
	RangeKey      bool
	Nullable      bool
	Default       bool // Has a default applied to every item
	DefaultForNew bool // Has a default applied to new items only
}

// Attribute is a typed attribute handle.
type Attribute[T any] struct {
	name      string
	codec     dynamix.Codec[T]
	hashKey   bool
	rangeKey  bool
	nullable  bool
	def       func() T
	defForNew func() T
}

// NewAttribute returns an attribute stored under name and encoded by codec.
func NewAttribute[T any](name string, codec dynamix.Codec[T]) *Attribute[T] {
	return &Attribute[T]{name: name, codec: codec}
}

// HashKey marks the attribute as the partition key.
func (a *Attribute[T]) HashKey() *Attribute[T] {
	a.hashKey = true
	return a
}

// RangeKey marks the attribute as the sort key.
func (a *Attribute[T]) RangeKey() *Attribute[T] {
	a.rangeKey = true
	return a
}

// Nullable allows the attribute to be absent when an item is saved.
func (a *Attribute[T]) Nullable() *Attribute[T] {
	a.nullable = true
	return a
}

// Default sets a value applied to items missing the attribute, both new
// items and items read from the table.
func (a *Attribute[T]) Default(fn func() T) *Attribute[T] {
	a.def = fn
	return a
}

// DefaultForNew sets a value applied only to items created by
// Schema.NewItem, never to items read from the table.
func (a *Attribute[T]) DefaultForNew(fn func() T) *Attribute[T] {
	a.defForNew = fn
	return a
}

// Name implements Field.
func (a *Attribute[T]) Name() string { return a.name }

// Kind implements Field.
func (a *Attribute[T]) Kind() dynamix.Kind { return a.codec.Kind() }

// Codec returns the attribute codec.
func (a *Attribute[T]) Codec() dynamix.Codec[T] { return a.codec }

// Descriptor implements Field.
func (a *Attribute[T]) Descriptor() *Descriptor {
	return &Descriptor{
		Name:          a.name,
		Kind:          a.codec.Kind(),
		HashKey:       a.hashKey,
		RangeKey:      a.rangeKey,
		Nullable:      a.nullable,
		Default:       a.def != nil,
		DefaultForNew: a.defForNew != nil,
	}
}

// Encode serializes v into its wire representation.
func (a *Attribute[T]) Encode(v T) (types.AttributeValue, error) {
	s, err := a.codec.Serialize(v)
	if err != nil {
		return nil, dynamix.NewValidationError(a.name, err)
	}
	return a.codec.Kind().AttributeValue(s)
}

// Decode deserializes a wire value.
func (a *Attribute[T]) Decode(av types.AttributeValue) (T, error) {
	var zero T
	s, err := a.codec.Kind().Primitive(av)
	if err != nil {
		return zero, fmt.Errorf("schema: decode %q: %w", a.name, err)
	}
	v, err := a.codec.Deserialize(s)
	if err != nil {
		return zero, fmt.Errorf("schema: decode %q: %w", a.name, err)
	}
	return v, nil
}

// EncodeAny implements Field.
func (a *Attribute[T]) EncodeAny(v any) (types.AttributeValue, error) {
	tv, ok := v.(T)
	if !ok {
		return nil, dynamix.NewValidationError(a.name, fmt.Errorf("expected %T, got %T", *new(T), v))
	}
	return a.Encode(tv)
}

// DecodeAny implements Field.
func (a *Attribute[T]) DecodeAny(av types.AttributeValue) (any, error) {
	return a.Decode(av)
}

func (a *Attribute[T]) defaultValue(isNew bool) (any, bool) {
	switch {
	case a.def != nil:
		return a.def(), true
	case isNew && a.defForNew != nil:
		return a.defForNew(), true
	default:
		return nil, false
	}
}

// Get returns the value of the attribute on item.
func (a *Attribute[T]) Get(item *Item) (T, bool) {
	v, ok := item.values[a.name].(T)
	return v, ok
}

// Put sets the value of the attribute on item.
func (a *Attribute[T]) Put(item *Item, v T) {
	item.values[a.name] = v
}

// Clear removes the attribute from item.
func (a *Attribute[T]) Clear(item *Item) {
	delete(item.values, a.name)
}

var _ Field = (*Attribute[string])(nil)

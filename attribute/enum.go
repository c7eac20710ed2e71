package attribute

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"slices"

	"github.com/syssam/dynamix"
)

// Member is a named constant of an enum.
type Member struct {
	Name  string
	Value any
}

// String returns the member name.
func (m Member) String() string { return m.Name }

// EnumType is a closed, ordered set of named members.
type EnumType struct {
	name    string
	members []Member
	index   map[string]int
}

// NewEnumType returns an enum with the given members. Member names must be
// non-empty and unique. Values are not checked here; value-keyed codecs
// validate them when they are built.
func NewEnumType(name string, members ...Member) (*EnumType, error) {
	if name == "" {
		return nil, dynamix.NewDefinitionError("enum", "", errors.New("missing enum name"))
	}
	if len(members) == 0 {
		return nil, dynamix.NewDefinitionError(name, "", errors.New("enum has no members"))
	}
	index := make(map[string]int, len(members))
	for i, m := range members {
		if m.Name == "" {
			return nil, dynamix.NewDefinitionError(name, "", fmt.Errorf("member %d has no name", i))
		}
		if _, ok := index[m.Name]; ok {
			return nil, dynamix.NewDefinitionError(name, m.Name, errors.New("duplicate member name"))
		}
		index[m.Name] = i
	}
	return &EnumType{name: name, members: slices.Clone(members), index: index}, nil
}

// MustEnumType is like NewEnumType but panics on error.
func MustEnumType(name string, members ...Member) *EnumType {
	e, err := NewEnumType(name, members...)
	if err != nil {
		panic(err)
	}
	return e
}

// EnumFromStringers builds an enum from Go constants. Each constant becomes
// a member named by its String method and valued by the constant itself.
//
//	type Color int
//	const (Red Color = iota; Green)
//	func (c Color) String() string { ... }
//
//	colors, err := attribute.EnumFromStringers("Color", Red, Green)
func EnumFromStringers[E fmt.Stringer](name string, values ...E) (*EnumType, error) {
	members := make([]Member, len(values))
	for i, v := range values {
		members[i] = Member{Name: v.String(), Value: v}
	}
	return NewEnumType(name, members...)
}

// Name returns the enum name.
func (e *EnumType) Name() string { return e.name }

// Members returns the members in declaration order.
func (e *EnumType) Members() []Member { return slices.Clone(e.members) }

// Lookup returns the member with the given name.
func (e *EnumType) Lookup(name string) (Member, error) {
	i, ok := e.index[name]
	if !ok {
		return Member{}, dynamix.NewLookupError(e.name, name)
	}
	return e.members[i], nil
}

type enumMode uint8

const (
	enumByName enumMode = iota
	enumByString
	enumByInt
)

// EnumCodec stores enum members by name or by value.
type EnumCodec struct {
	enum    *EnumType
	mode    enumMode
	values  []any       // normalized member values, by member index
	byValue map[any]int // normalized value to member index
}

// NewEnumNameCodec returns a codec storing the member name as a string.
// Names are unique by construction, so no value checks apply.
func NewEnumNameCodec(e *EnumType) *EnumCodec {
	return &EnumCodec{enum: e, mode: enumByName}
}

// NewStringEnumCodec returns a codec storing the member value as a string.
// All member values must be strings and pairwise distinct.
func NewStringEnumCodec(e *EnumType) (*EnumCodec, error) {
	return newValueCodec(e, enumByString)
}

// NewIntEnumCodec returns a codec storing the member value as a number.
// All member values must be integers and pairwise distinct.
func NewIntEnumCodec(e *EnumType) (*EnumCodec, error) {
	return newValueCodec(e, enumByInt)
}

// MustEnumCodec panics if err is non-nil and returns c otherwise.
//
//	codec := attribute.MustEnumCodec(attribute.NewIntEnumCodec(status))
func MustEnumCodec(c *EnumCodec, err error) *EnumCodec {
	if err != nil {
		panic(err)
	}
	return c
}

func newValueCodec(e *EnumType, mode enumMode) (*EnumCodec, error) {
	c := &EnumCodec{
		enum:    e,
		mode:    mode,
		values:  make([]any, len(e.members)),
		byValue: make(map[any]int, len(e.members)),
	}
	for i, m := range e.members {
		v, err := c.normalize(m.Value)
		if err != nil {
			return nil, dynamix.NewDefinitionError(e.name, m.Name, err)
		}
		c.values[i] = v
		c.byValue[v] = i
	}
	if len(c.byValue) != len(e.members) {
		return nil, dynamix.NewDefinitionError(e.name, "", dynamix.ErrNotUnique)
	}
	return c, nil
}

// normalize maps a member value onto its comparable storage form: string
// for string enums, int64 for integer enums.
func (c *EnumCodec) normalize(v any) (any, error) {
	rv := reflect.ValueOf(v)
	switch c.mode {
	case enumByString:
		if rv.Kind() == reflect.String {
			return rv.String(), nil
		}
		return nil, fmt.Errorf("%w: string expected, got %T", dynamix.ErrTypeMismatch, v)
	default:
		switch rv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return rv.Int(), nil
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			if u := rv.Uint(); u <= math.MaxInt64 {
				return int64(u), nil
			}
		}
		return nil, fmt.Errorf("%w: integer expected, got %T", dynamix.ErrTypeMismatch, v)
	}
}

// Enum returns the enum bound to the codec.
func (c *EnumCodec) Enum() *EnumType { return c.enum }

// Kind implements dynamix.Codec.
func (c *EnumCodec) Kind() dynamix.Kind {
	if c.mode == enumByInt {
		return dynamix.KindNumber
	}
	return dynamix.KindString
}

// MemberByName returns the member with the given name.
func (c *EnumCodec) MemberByName(name string) (Member, error) {
	return c.enum.Lookup(name)
}

// MustMember is like MemberByName but panics on unknown names.
func (c *EnumCodec) MustMember(name string) Member {
	m, err := c.MemberByName(name)
	if err != nil {
		panic(err)
	}
	return m
}

// EnumNames returns the member names in declaration order.
func (c *EnumCodec) EnumNames() []string {
	names := make([]string, len(c.enum.members))
	for i, m := range c.enum.members {
		names[i] = m.Name
	}
	return names
}

// EnumValues returns the member values in declaration order.
func (c *EnumCodec) EnumValues() []any {
	values := make([]any, len(c.enum.members))
	for i, m := range c.enum.members {
		values[i] = m.Value
	}
	return values
}

// Serialize implements dynamix.Codec. The member is resolved by name
// against the bound enum.
func (c *EnumCodec) Serialize(m Member) (string, error) {
	i, ok := c.enum.index[m.Name]
	if !ok {
		return "", dynamix.NewLookupError(c.enum.name, m.Name)
	}
	switch c.mode {
	case enumByName:
		return c.enum.members[i].Name, nil
	case enumByString:
		return c.values[i].(string), nil
	default:
		return formatInt(c.values[i].(int64)), nil
	}
}

// Deserialize implements dynamix.Codec.
func (c *EnumCodec) Deserialize(s string) (Member, error) {
	var key any = s
	switch c.mode {
	case enumByName:
		return c.enum.Lookup(s)
	case enumByInt:
		n, err := parseInt(s)
		if err != nil {
			return Member{}, err
		}
		key = n
	}
	i, ok := c.byValue[key]
	if !ok {
		return Member{}, dynamix.NewLookupError(c.enum.name, s)
	}
	return c.enum.members[i], nil
}

var _ dynamix.Codec[Member] = (*EnumCodec)(nil)

package schema

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/shopspring/decimal"

	"github.com/syssam/dynamix"
)

type condOp uint8

const (
	opEqual condOp = iota + 1
	opNotEqual
	opLess
	opLessEqual
	opGreater
	opGreaterEqual
	opBetween
	opBeginsWith
	opExists
	opNotExists
	opAnd
	opOr
	opNot
)

var opNames = [...]string{
	opEqual:        "=",
	opNotEqual:     "<>",
	opLess:         "<",
	opLessEqual:    "<=",
	opGreater:      ">",
	opGreaterEqual: ">=",
	opBetween:      "BETWEEN",
	opBeginsWith:   "begins_with",
	opExists:       "attribute_exists",
	opNotExists:    "attribute_not_exists",
	opAnd:          "AND",
	opOr:           "OR",
	opNot:          "NOT",
}

// Condition is a predicate over item attributes. It compiles to a
// DynamoDB condition, filter or key condition expression and can also be
// evaluated against a stored item. The zero Condition matches everything.
type Condition struct {
	op     condOp
	name   string
	values []types.AttributeValue
	sub    []Condition
	err    error
}

// And returns the conjunction of conds. Zero conditions are dropped.
func And(conds ...Condition) Condition { return combine(opAnd, conds) }

// Or returns the disjunction of conds. Zero conditions are dropped.
func Or(conds ...Condition) Condition { return combine(opOr, conds) }

// Not negates c. The negation of the zero condition is the zero condition.
func Not(c Condition) Condition {
	if c.IsZero() {
		return c
	}
	return Condition{op: opNot, sub: []Condition{c}}
}

func combine(op condOp, conds []Condition) Condition {
	sub := make([]Condition, 0, len(conds))
	for _, c := range conds {
		if !c.IsZero() {
			sub = append(sub, c)
		}
	}
	switch len(sub) {
	case 0:
		return Condition{}
	case 1:
		return sub[0]
	default:
		return Condition{op: op, sub: sub}
	}
}

// And returns c AND others.
func (c Condition) And(others ...Condition) Condition {
	return And(append([]Condition{c}, others...)...)
}

// Or returns c OR others.
func (c Condition) Or(others ...Condition) Condition {
	return Or(append([]Condition{c}, others...)...)
}

// IsZero reports whether c is the empty condition.
func (c Condition) IsZero() bool { return c.op == 0 && c.err == nil }

// Err returns the first error recorded while building c.
func (c Condition) Err() error {
	if c.err != nil {
		return c.err
	}
	for _, s := range c.sub {
		if err := s.Err(); err != nil {
			return err
		}
	}
	return nil
}

// String returns a readable form of the condition, for logs and tests.
func (c Condition) String() string {
	switch c.op {
	case 0:
		return ""
	case opAnd, opOr:
		parts := make([]string, len(c.sub))
		for i, s := range c.sub {
			parts[i] = "(" + s.String() + ")"
		}
		return strings.Join(parts, " "+opNames[c.op]+" ")
	case opNot:
		return "NOT (" + c.sub[0].String() + ")"
	case opExists, opNotExists, opBeginsWith:
		if c.op == opBeginsWith {
			return fmt.Sprintf("begins_with(%s, %s)", c.name, formatValue(c.values[0]))
		}
		return fmt.Sprintf("%s(%s)", opNames[c.op], c.name)
	case opBetween:
		return fmt.Sprintf("%s BETWEEN %s AND %s", c.name, formatValue(c.values[0]), formatValue(c.values[1]))
	default:
		return fmt.Sprintf("%s %s %s", c.name, opNames[c.op], formatValue(c.values[0]))
	}
}

// Build compiles c into a condition builder usable for condition and
// filter expressions.
func (c Condition) Build() (expression.ConditionBuilder, error) {
	if err := c.Err(); err != nil {
		return expression.ConditionBuilder{}, err
	}
	if c.IsZero() {
		return expression.ConditionBuilder{}, errors.New("schema: build empty condition")
	}
	name := expression.Name(c.name)
	switch c.op {
	case opEqual:
		return name.Equal(value(c.values[0])), nil
	case opNotEqual:
		return name.NotEqual(value(c.values[0])), nil
	case opLess:
		return name.LessThan(value(c.values[0])), nil
	case opLessEqual:
		return name.LessThanEqual(value(c.values[0])), nil
	case opGreater:
		return name.GreaterThan(value(c.values[0])), nil
	case opGreaterEqual:
		return name.GreaterThanEqual(value(c.values[0])), nil
	case opBetween:
		return name.Between(value(c.values[0]), value(c.values[1])), nil
	case opBeginsWith:
		return name.BeginsWith(c.values[0].(*types.AttributeValueMemberS).Value), nil
	case opExists:
		return name.AttributeExists(), nil
	case opNotExists:
		return name.AttributeNotExists(), nil
	case opNot:
		sub, err := c.sub[0].Build()
		if err != nil {
			return expression.ConditionBuilder{}, err
		}
		return expression.Not(sub), nil
	case opAnd, opOr:
		subs := make([]expression.ConditionBuilder, len(c.sub))
		for i, s := range c.sub {
			b, err := s.Build()
			if err != nil {
				return expression.ConditionBuilder{}, err
			}
			subs[i] = b
		}
		if c.op == opAnd {
			return expression.And(subs[0], subs[1], subs[2:]...), nil
		}
		return expression.Or(subs[0], subs[1], subs[2:]...), nil
	default:
		return expression.ConditionBuilder{}, fmt.Errorf("schema: unknown condition operator %d", c.op)
	}
}

// KeyBuild compiles c into a key condition. Only comparisons, BETWEEN,
// begins_with and a single AND are valid in key conditions.
func (c Condition) KeyBuild() (expression.KeyConditionBuilder, error) {
	if err := c.Err(); err != nil {
		return expression.KeyConditionBuilder{}, err
	}
	key := expression.Key(c.name)
	switch c.op {
	case opEqual:
		return key.Equal(value(c.values[0])), nil
	case opLess:
		return key.LessThan(value(c.values[0])), nil
	case opLessEqual:
		return key.LessThanEqual(value(c.values[0])), nil
	case opGreater:
		return key.GreaterThan(value(c.values[0])), nil
	case opGreaterEqual:
		return key.GreaterThanEqual(value(c.values[0])), nil
	case opBetween:
		return key.Between(value(c.values[0]), value(c.values[1])), nil
	case opBeginsWith:
		return key.BeginsWith(c.values[0].(*types.AttributeValueMemberS).Value), nil
	case opAnd:
		if len(c.sub) != 2 {
			break
		}
		left, err := c.sub[0].KeyBuild()
		if err != nil {
			return expression.KeyConditionBuilder{}, err
		}
		right, err := c.sub[1].KeyBuild()
		if err != nil {
			return expression.KeyConditionBuilder{}, err
		}
		return expression.KeyAnd(left, right), nil
	}
	return expression.KeyConditionBuilder{}, fmt.Errorf("schema: %q is not a valid key condition", c.String())
}

// Eval evaluates c against a stored item. Absent and NULL attributes do
// not exist; ordering comparisons against them are false.
func (c Condition) Eval(av map[string]types.AttributeValue) (bool, error) {
	if err := c.Err(); err != nil {
		return false, err
	}
	switch c.op {
	case 0:
		return true, nil
	case opAnd:
		for _, s := range c.sub {
			if ok, err := s.Eval(av); err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	case opOr:
		for _, s := range c.sub {
			if ok, err := s.Eval(av); err != nil || ok {
				return ok, err
			}
		}
		return false, nil
	case opNot:
		ok, err := c.sub[0].Eval(av)
		return !ok, err
	}
	actual, present := av[c.name]
	if _, null := actual.(*types.AttributeValueMemberNULL); null {
		present = false
	}
	switch c.op {
	case opExists:
		return present, nil
	case opNotExists:
		return !present, nil
	case opNotEqual:
		if !present {
			return true, nil
		}
		cmp, ok := CompareValues(actual, c.values[0])
		return !ok || cmp != 0, nil
	}
	if !present {
		return false, nil
	}
	switch c.op {
	case opBeginsWith:
		s, ok := actual.(*types.AttributeValueMemberS)
		return ok && strings.HasPrefix(s.Value, c.values[0].(*types.AttributeValueMemberS).Value), nil
	case opBetween:
		lo, ok1 := CompareValues(actual, c.values[0])
		hi, ok2 := CompareValues(actual, c.values[1])
		return ok1 && ok2 && lo >= 0 && hi <= 0, nil
	}
	cmp, ok := CompareValues(actual, c.values[0])
	if !ok {
		return false, nil
	}
	switch c.op {
	case opEqual:
		return cmp == 0, nil
	case opLess:
		return cmp < 0, nil
	case opLessEqual:
		return cmp <= 0, nil
	case opGreater:
		return cmp > 0, nil
	case opGreaterEqual:
		return cmp >= 0, nil
	default:
		return false, fmt.Errorf("schema: unknown condition operator %d", c.op)
	}
}

// CompareValues orders two scalar attribute values of the same type.
// Strings compare by bytes, numbers numerically and binaries bytewise.
// Booleans only compare for equality. The second result is false when
// the values are not comparable.
func CompareValues(a, b types.AttributeValue) (int, bool) {
	switch x := a.(type) {
	case *types.AttributeValueMemberS:
		if y, ok := b.(*types.AttributeValueMemberS); ok {
			return strings.Compare(x.Value, y.Value), true
		}
	case *types.AttributeValueMemberN:
		if y, ok := b.(*types.AttributeValueMemberN); ok {
			dx, err1 := decimal.NewFromString(x.Value)
			dy, err2 := decimal.NewFromString(y.Value)
			if err1 != nil || err2 != nil {
				return 0, false
			}
			return dx.Cmp(dy), true
		}
	case *types.AttributeValueMemberB:
		if y, ok := b.(*types.AttributeValueMemberB); ok {
			return bytes.Compare(x.Value, y.Value), true
		}
	case *types.AttributeValueMemberBOOL:
		if y, ok := b.(*types.AttributeValueMemberBOOL); ok && x.Value == y.Value {
			return 0, true
		}
	}
	return 0, false
}

// FieldEqual matches items where f equals v. It serves callers that hold
// an untyped Field, such as the key of a schema.
func FieldEqual(f Field, v any) Condition {
	av, err := f.EncodeAny(v)
	if err != nil {
		return Condition{err: err}
	}
	return Condition{op: opEqual, name: f.Name(), values: []types.AttributeValue{av}}
}

// Exists matches items where the attribute is present.
func (a *Attribute[T]) Exists() Condition {
	return Condition{op: opExists, name: a.name}
}

// NotExists matches items where the attribute is absent.
func (a *Attribute[T]) NotExists() Condition {
	return Condition{op: opNotExists, name: a.name}
}

// Equal matches items where the attribute equals v.
func (a *Attribute[T]) Equal(v T) Condition { return a.compare(opEqual, v) }

// NotEqual matches items where the attribute differs from v.
func (a *Attribute[T]) NotEqual(v T) Condition { return a.compare(opNotEqual, v) }

// LessThan matches items where the attribute is less than v.
func (a *Attribute[T]) LessThan(v T) Condition { return a.compare(opLess, v) }

// LessThanEqual matches items where the attribute is at most v.
func (a *Attribute[T]) LessThanEqual(v T) Condition { return a.compare(opLessEqual, v) }

// GreaterThan matches items where the attribute is greater than v.
func (a *Attribute[T]) GreaterThan(v T) Condition { return a.compare(opGreater, v) }

// GreaterThanEqual matches items where the attribute is at least v.
func (a *Attribute[T]) GreaterThanEqual(v T) Condition { return a.compare(opGreaterEqual, v) }

// Between matches items where lower <= attribute <= upper.
func (a *Attribute[T]) Between(lower, upper T) Condition {
	lo, err := a.Encode(lower)
	if err != nil {
		return Condition{err: err}
	}
	hi, err := a.Encode(upper)
	if err != nil {
		return Condition{err: err}
	}
	return Condition{op: opBetween, name: a.name, values: []types.AttributeValue{lo, hi}}
}

// BeginsWith matches string attributes whose stored text starts with the
// encoding of prefix.
func (a *Attribute[T]) BeginsWith(prefix T) Condition {
	if a.Kind() != dynamix.KindString {
		return Condition{err: dynamix.NewValidationError(a.name, fmt.Errorf("begins_with requires a %s attribute", dynamix.KindString))}
	}
	return a.compare(opBeginsWith, prefix)
}

func (a *Attribute[T]) compare(op condOp, v T) Condition {
	av, err := a.Encode(v)
	if err != nil {
		return Condition{err: err}
	}
	return Condition{op: op, name: a.name, values: []types.AttributeValue{av}}
}

// rawValue passes an already encoded attribute value through the
// expression builder unchanged.
type rawValue struct {
	av types.AttributeValue
}

func (r rawValue) MarshalDynamoDBAttributeValue() (types.AttributeValue, error) {
	return r.av, nil
}

var _ attributevalue.Marshaler = rawValue{}

func value(av types.AttributeValue) expression.ValueBuilder {
	return expression.Value(rawValue{av: av})
}

func formatValue(av types.AttributeValue) string {
	switch v := av.(type) {
	case *types.AttributeValueMemberS:
		return fmt.Sprintf("%q", v.Value)
	case *types.AttributeValueMemberN:
		return v.Value
	case *types.AttributeValueMemberB:
		return fmt.Sprintf("0x%x", v.Value)
	case *types.AttributeValueMemberBOOL:
		return fmt.Sprint(v.Value)
	default:
		return fmt.Sprintf("%T", av)
	}
}

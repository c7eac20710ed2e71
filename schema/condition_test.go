package schema_test

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/dynamix"
	"github.com/syssam/dynamix/attribute"
	"github.com/syssam/dynamix/schema"
)

var (
	nameAttr  = schema.NewAttribute("name", attribute.Unicode{})
	ageAttr   = schema.NewAttribute("age", attribute.Integer{})
	flagAttr  = schema.NewAttribute("flag", attribute.IndexableBool{})
	stampAttr = schema.NewAttribute("deleted_at", attribute.Unicode{}).Nullable()
)

func TestConditionEval(t *testing.T) {
	t.Parallel()

	item := map[string]types.AttributeValue{
		"name":       &types.AttributeValueMemberS{Value: "alice"},
		"age":        &types.AttributeValueMemberN{Value: "30"},
		"flag":       &types.AttributeValueMemberN{Value: "1"},
		"deleted_at": &types.AttributeValueMemberNULL{Value: true},
	}

	tests := []struct {
		name string
		cond schema.Condition
		want bool
	}{
		{"zero", schema.Condition{}, true},
		{"equal", nameAttr.Equal("alice"), true},
		{"equal_miss", nameAttr.Equal("bob"), false},
		{"not_equal", nameAttr.NotEqual("bob"), true},
		{"not_equal_absent", schema.NewAttribute("other", attribute.Unicode{}).NotEqual("x"), true},
		{"less_numeric", ageAttr.LessThan(100), true},
		{"less_equal", ageAttr.LessThanEqual(30), true},
		{"greater", ageAttr.GreaterThan(30), false},
		{"greater_equal", ageAttr.GreaterThanEqual(30), true},
		{"between", ageAttr.Between(18, 65), true},
		{"between_outside", ageAttr.Between(31, 65), false},
		{"begins_with", nameAttr.BeginsWith("al"), true},
		{"begins_with_miss", nameAttr.BeginsWith("bo"), false},
		{"exists", flagAttr.Exists(), true},
		{"null_is_absent", stampAttr.NotExists(), true},
		{"null_not_exists", stampAttr.Exists(), false},
		{"and", schema.And(nameAttr.Equal("alice"), ageAttr.GreaterThan(18)), true},
		{"and_false", nameAttr.Equal("alice").And(ageAttr.GreaterThan(40)), false},
		{"or", schema.Or(nameAttr.Equal("bob"), flagAttr.Equal(true)), true},
		{"not", schema.Not(nameAttr.Equal("bob")), true},
		{"absent_ordering", schema.NewAttribute("other", attribute.Integer{}).LessThan(1), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.cond.Eval(item)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConditionCombine(t *testing.T) {
	t.Parallel()

	assert.True(t, schema.And().IsZero())
	assert.True(t, schema.Or(schema.Condition{}, schema.Condition{}).IsZero())
	assert.True(t, schema.Not(schema.Condition{}).IsZero())

	single := nameAttr.Equal("x")
	assert.Equal(t, single, schema.And(schema.Condition{}, single))
	assert.Equal(t, `(name = "x") AND (age > 1)`, schema.And(single, ageAttr.GreaterThan(1)).String())
	assert.Equal(t, "attribute_not_exists(deleted_at)", stampAttr.NotExists().String())
}

func TestConditionBuild(t *testing.T) {
	t.Parallel()

	t.Run("condition", func(t *testing.T) {
		cond, err := schema.And(nameAttr.Equal("alice"), stampAttr.NotExists()).Build()
		require.NoError(t, err)
		expr, err := expression.NewBuilder().WithCondition(cond).Build()
		require.NoError(t, err)
		require.NotNil(t, expr.Condition())
		assert.Contains(t, *expr.Condition(), "attribute_not_exists")
		assert.Contains(t, expr.Names(), "#0")
		assert.Contains(t, expr.Values(), ":0")
		assert.Equal(t, &types.AttributeValueMemberS{Value: "alice"}, expr.Values()[":0"])
	})

	t.Run("empty", func(t *testing.T) {
		_, err := schema.Condition{}.Build()
		assert.Error(t, err)
	})

	t.Run("key_condition", func(t *testing.T) {
		key, err := schema.And(nameAttr.Equal("alice"), ageAttr.Between(1, 9)).KeyBuild()
		require.NoError(t, err)
		expr, err := expression.NewBuilder().WithKeyCondition(key).Build()
		require.NoError(t, err)
		require.NotNil(t, expr.KeyCondition())
		assert.Contains(t, *expr.KeyCondition(), "BETWEEN")
	})

	t.Run("invalid_key_condition", func(t *testing.T) {
		_, err := nameAttr.NotEqual("x").KeyBuild()
		assert.Error(t, err)
		_, err = flagAttr.Exists().KeyBuild()
		assert.Error(t, err)
	})

	t.Run("begins_with_requires_string", func(t *testing.T) {
		cond := ageAttr.BeginsWith(1)
		require.Error(t, cond.Err())
		assert.True(t, dynamix.IsValidationError(cond.Err()))
		_, err := cond.Build()
		assert.Error(t, err)
		_, err = cond.Eval(nil)
		assert.Error(t, err)
	})
}

func TestCompareValues(t *testing.T) {
	t.Parallel()

	cmp, ok := schema.CompareValues(&types.AttributeValueMemberN{Value: "10"}, &types.AttributeValueMemberN{Value: "9.5"})
	require.True(t, ok)
	assert.Equal(t, 1, cmp)

	cmp, ok = schema.CompareValues(&types.AttributeValueMemberS{Value: "a"}, &types.AttributeValueMemberS{Value: "b"})
	require.True(t, ok)
	assert.Equal(t, -1, cmp)

	cmp, ok = schema.CompareValues(&types.AttributeValueMemberB{Value: []byte{1}}, &types.AttributeValueMemberB{Value: []byte{1}})
	require.True(t, ok)
	assert.Zero(t, cmp)

	cmp, ok = schema.CompareValues(
		&types.AttributeValueMemberN{Value: "99999999999999999999999999999999999999"},
		&types.AttributeValueMemberN{Value: "99999999999999999999999999999999999998"})
	require.True(t, ok)
	assert.Equal(t, 1, cmp)

	cmp, ok = schema.CompareValues(&types.AttributeValueMemberN{Value: "1.50"}, &types.AttributeValueMemberN{Value: "15e-1"})
	require.True(t, ok)
	assert.Zero(t, cmp)

	_, ok = schema.CompareValues(&types.AttributeValueMemberN{Value: "Inf"}, &types.AttributeValueMemberN{Value: "1"})
	assert.False(t, ok)

	_, ok = schema.CompareValues(&types.AttributeValueMemberS{Value: "1"}, &types.AttributeValueMemberN{Value: "1"})
	assert.False(t, ok)
	_, ok = schema.CompareValues(&types.AttributeValueMemberBOOL{Value: true}, &types.AttributeValueMemberBOOL{Value: false})
	assert.False(t, ok)
}

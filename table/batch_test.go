package table_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/dynamix"
	"github.com/syssam/dynamix/dialect/dynamo/dynamotest"
	"github.com/syssam/dynamix/table"
)

// echoBatch answers every requested key with a stored item.
func echoBatch(_ context.Context, in *dynamodb.BatchGetItemInput) (*dynamodb.BatchGetItemOutput, error) {
	out := &dynamodb.BatchGetItemOutput{Responses: map[string][]map[string]types.AttributeValue{}}
	for name, ka := range in.RequestItems {
		for _, key := range ka.Keys {
			out.Responses[name] = append(out.Responses[name], key)
		}
	}
	return out, nil
}

// =============================================================================
// BatchGet Tests
// =============================================================================

func TestTableBatchGet(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("chunks", func(t *testing.T) {
		t.Parallel()
		fake := &dynamotest.Client{BatchGetFunc: echoBatch}
		keys := make([]table.Key, 0, 250)
		for i := range 250 {
			keys = append(keys, table.Key{HashKey: "ann", RangeKey: int64(i)})
		}
		items, err := table.New(fake, notes).BatchGet(ctx, table.BatchGetInput{Keys: keys, ConsistentRead: true})
		require.NoError(t, err)
		assert.Len(t, items, 250)

		calls := fake.Calls()
		require.Len(t, calls, 3)
		sizes := make([]int, len(calls))
		for i, call := range calls {
			ka := call.Input.(*dynamodb.BatchGetItemInput).RequestItems["notes"]
			sizes[i] = len(ka.Keys)
			assert.True(t, aws.ToBool(ka.ConsistentRead))
		}
		assert.Equal(t, []int{100, 100, 50}, sizes)
	})

	t.Run("dedupes", func(t *testing.T) {
		t.Parallel()
		fake := &dynamotest.Client{BatchGetFunc: echoBatch}
		items, err := table.New(fake, notes).BatchGet(ctx, table.BatchGetInput{Keys: []table.Key{
			{HashKey: "ann", RangeKey: int64(1)},
			{HashKey: "ann", RangeKey: int64(1)},
			{HashKey: "bob", RangeKey: int64(1)},
		}})
		require.NoError(t, err)
		assert.Len(t, items, 2)
	})

	t.Run("unprocessed_retried", func(t *testing.T) {
		t.Parallel()
		calls := 0
		fake := &dynamotest.Client{
			BatchGetFunc: func(_ context.Context, in *dynamodb.BatchGetItemInput) (*dynamodb.BatchGetItemOutput, error) {
				calls++
				keys := in.RequestItems["notes"].Keys
				if calls == 1 {
					return &dynamodb.BatchGetItemOutput{
						Responses:       map[string][]map[string]types.AttributeValue{"notes": keys[:1]},
						UnprocessedKeys: map[string]types.KeysAndAttributes{"notes": {Keys: keys[1:]}},
					}, nil
				}
				return &dynamodb.BatchGetItemOutput{
					Responses: map[string][]map[string]types.AttributeValue{"notes": keys},
				}, nil
			},
		}
		items, err := table.New(fake, notes).BatchGet(ctx, table.BatchGetInput{Keys: []table.Key{
			{HashKey: "ann", RangeKey: int64(1)},
			{HashKey: "ann", RangeKey: int64(2)},
			{HashKey: "ann", RangeKey: int64(3)},
		}})
		require.NoError(t, err)
		assert.Len(t, items, 3)
		assert.Equal(t, 2, calls)
		assert.Len(t, fake.Last().(*dynamodb.BatchGetItemInput).RequestItems["notes"].Keys, 2)
	})

	t.Run("projection_includes_keys", func(t *testing.T) {
		t.Parallel()
		fake := &dynamotest.Client{BatchGetFunc: echoBatch}
		_, err := table.New(fake, notes).BatchGet(ctx, table.BatchGetInput{
			Keys:       []table.Key{{HashKey: "ann", RangeKey: int64(1)}},
			Attributes: []string{"body"},
		})
		require.NoError(t, err)
		ka := fake.Last().(*dynamodb.BatchGetItemInput).RequestItems["notes"]
		require.NotNil(t, ka.ProjectionExpression)
		var names []string
		for _, name := range ka.ExpressionAttributeNames {
			names = append(names, name)
		}
		assert.ElementsMatch(t, []string{"body", "owner", "seq"}, names)
	})

	t.Run("bad_key", func(t *testing.T) {
		t.Parallel()
		fake := &dynamotest.Client{}
		_, err := table.New(fake, notes).BatchGet(ctx, table.BatchGetInput{Keys: []table.Key{{HashKey: "ann"}}})
		assert.True(t, dynamix.IsValidationError(err))
		assert.Empty(t, fake.Calls())
	})

	t.Run("client_error", func(t *testing.T) {
		t.Parallel()
		boom := errors.New("boom")
		fake := &dynamotest.Client{
			BatchGetFunc: func(context.Context, *dynamodb.BatchGetItemInput) (*dynamodb.BatchGetItemOutput, error) {
				return nil, boom
			},
		}
		_, err := table.New(fake, notes).BatchGet(ctx, table.BatchGetInput{Keys: []table.Key{{HashKey: "ann", RangeKey: int64(1)}}})
		assert.ErrorIs(t, err, boom)
	})

	t.Run("canceled_during_backoff", func(t *testing.T) {
		t.Parallel()
		cctx, cancel := context.WithCancel(ctx)
		fake := &dynamotest.Client{
			BatchGetFunc: func(_ context.Context, in *dynamodb.BatchGetItemInput) (*dynamodb.BatchGetItemOutput, error) {
				cancel()
				return &dynamodb.BatchGetItemOutput{UnprocessedKeys: in.RequestItems}, nil
			},
		}
		_, err := table.New(fake, notes).BatchGet(cctx, table.BatchGetInput{Keys: []table.Key{{HashKey: "ann", RangeKey: int64(1)}}})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestEncodeKeys(t *testing.T) {
	t.Parallel()

	keys, err := table.EncodeKeys(notes, []table.Key{
		{HashKey: "ann", RangeKey: int64(1)},
		{HashKey: "ann", RangeKey: int64(1)},
	})
	require.NoError(t, err)
	assert.Equal(t, []map[string]types.AttributeValue{stored("ann", 1)}, keys)

	assert.Nil(t, table.ProjectedAttributes(notes, nil))
	assert.Equal(t, []string{"body", "owner", "seq"}, table.ProjectedAttributes(notes, []string{"body"}))
	assert.Equal(t, []string{"seq", "owner"}, table.ProjectedAttributes(notes, []string{"seq"}))
}

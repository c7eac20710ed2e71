package tabletest_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/dynamix"
	"github.com/syssam/dynamix/attribute"
	"github.com/syssam/dynamix/dialect/dynamo/dynamotest"
	"github.com/syssam/dynamix/schema"
	"github.com/syssam/dynamix/table"
	"github.com/syssam/dynamix/table/tabletest"
)

var (
	ownerAttr = schema.NewAttribute("owner", attribute.Unicode{}).HashKey()
	seqAttr   = schema.NewAttribute("seq", attribute.Integer{}).RangeKey()
	countAttr = schema.NewAttribute("count", attribute.Integer{}).Nullable()
	notes     = schema.MustNew("notes", ownerAttr, seqAttr, countAttr)
)

func note(owner string, seq int64) *schema.Item {
	item := notes.NewItem()
	ownerAttr.Put(item, owner)
	seqAttr.Put(item, seq)
	return item
}

func seqs(res *table.Result) []int64 {
	out := make([]int64, len(res.Items))
	for i, item := range res.Items {
		out[i], _ = seqAttr.Get(item)
	}
	return out
}

func TestMemoryCRUD(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m := tabletest.New(notes)

	require.NoError(t, m.Save(ctx, note("ann", 1), table.SaveInput{}))
	assert.Equal(t, 1, m.Len())

	got, err := m.Get(ctx, table.GetInput{HashKey: "ann", RangeKey: int64(1)})
	require.NoError(t, err)
	owner, _ := ownerAttr.Get(got)
	assert.Equal(t, "ann", owner)

	_, err = m.Get(ctx, table.GetInput{HashKey: "bob", RangeKey: int64(1)})
	assert.True(t, dynamix.IsNotFound(err))
	var nf *dynamix.NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, []any{"bob", int64(1)}, nf.Key())

	_, realErr := table.New(&dynamotest.Client{}, notes).Get(ctx, table.GetInput{HashKey: "bob", RangeKey: int64(1)})
	assert.Equal(t, realErr.Error(), err.Error())

	t.Run("conditional_save", func(t *testing.T) {
		err := m.Save(ctx, note("ann", 1), table.SaveInput{Condition: ownerAttr.NotExists()})
		var ccf *types.ConditionalCheckFailedException
		assert.True(t, errors.As(err, &ccf))
	})

	t.Run("update", func(t *testing.T) {
		item := note("ann", 1)
		require.NoError(t, m.Update(ctx, item, table.UpdateInput{Actions: []schema.Action{countAttr.Add(2)}}))
		require.NoError(t, m.Update(ctx, item, table.UpdateInput{Actions: []schema.Action{countAttr.Add(3)}}))
		count, ok := countAttr.Get(item)
		require.True(t, ok)
		assert.Equal(t, int64(5), count)

		err := m.Update(ctx, item, table.UpdateInput{
			Actions:   []schema.Action{countAttr.Set(0)},
			Condition: countAttr.Equal(1),
		})
		var ccf *types.ConditionalCheckFailedException
		assert.True(t, errors.As(err, &ccf))
		raw, _ := m.Stored("ann", int64(1))
		assert.Equal(t, &types.AttributeValueMemberN{Value: "5"}, raw["count"])
	})

	t.Run("update_creates", func(t *testing.T) {
		item := note("cat", 9)
		require.NoError(t, m.Update(ctx, item, table.UpdateInput{Actions: []schema.Action{countAttr.Set(1)}}))
		raw, ok := m.Stored("cat", int64(9))
		require.True(t, ok)
		assert.Len(t, raw, 3)
		assert.Error(t, m.Update(ctx, item, table.UpdateInput{}))
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, m.Save(ctx, note("del", 1), table.SaveInput{}))
		err := m.Delete(ctx, note("del", 1), table.DeleteInput{Condition: countAttr.Exists()})
		var ccf *types.ConditionalCheckFailedException
		require.True(t, errors.As(err, &ccf))
		require.NoError(t, m.Delete(ctx, note("del", 1), table.DeleteInput{}))
		_, ok := m.Stored("del", int64(1))
		assert.False(t, ok)
	})
}

func TestMemoryQuery(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m := tabletest.New(notes)
	for _, seq := range []int64{3, 1, 10, 2} {
		require.NoError(t, m.Save(ctx, note("ann", seq), table.SaveInput{}))
	}
	require.NoError(t, m.Save(ctx, note("bob", 1), table.SaveInput{}))

	res, err := m.Query(ctx, table.QueryInput{HashKey: "ann"})
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3, 10}, seqs(res))
	assert.Nil(t, res.LastEvaluatedKey)

	res, err = m.Query(ctx, table.QueryInput{HashKey: "ann", ScanIndexForward: aws.Bool(false)})
	require.NoError(t, err)
	assert.Equal(t, []int64{10, 3, 2, 1}, seqs(res))

	res, err = m.Query(ctx, table.QueryInput{HashKey: "ann", RangeKeyCondition: seqAttr.Between(2, 3)})
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 3}, seqs(res))

	t.Run("limit_and_resume", func(t *testing.T) {
		res, err := m.Query(ctx, table.QueryInput{HashKey: "ann", Limit: 2})
		require.NoError(t, err)
		assert.Equal(t, []int64{1, 2}, seqs(res))
		require.NotNil(t, res.LastEvaluatedKey)

		res, err = m.Query(ctx, table.QueryInput{HashKey: "ann", ExclusiveStartKey: res.LastEvaluatedKey})
		require.NoError(t, err)
		assert.Equal(t, []int64{3, 10}, seqs(res))
	})

	t.Run("filter", func(t *testing.T) {
		require.NoError(t, m.Update(ctx, note("ann", 2), table.UpdateInput{Actions: []schema.Action{countAttr.Set(1)}}))
		res, err := m.Query(ctx, table.QueryInput{HashKey: "ann", Filter: countAttr.Exists()})
		require.NoError(t, err)
		assert.Equal(t, []int64{2}, seqs(res))
		assert.Equal(t, 4, res.ScannedCount)
	})

	t.Run("index", func(t *testing.T) {
		_, err := m.Query(ctx, table.QueryInput{IndexName: "x", KeyCondition: countAttr.Equal(1)})
		assert.ErrorIs(t, err, tabletest.ErrIndexUnsupported)
	})
}

func TestMemoryScan(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m := tabletest.New(notes)
	for seq := range int64(20) {
		require.NoError(t, m.Save(ctx, note("ann", seq), table.SaveInput{}))
	}

	res, err := m.Scan(ctx, table.ScanInput{})
	require.NoError(t, err)
	assert.Len(t, res.Items, 20)

	res, err = m.Scan(ctx, table.ScanInput{Filter: seqAttr.LessThan(5), Attributes: []string{"seq"}})
	require.NoError(t, err)
	assert.Equal(t, []int64{0, 1, 2, 3, 4}, seqs(res))
	assert.False(t, res.Items[0].Has("owner"))

	merged, err := table.ScanSegments(ctx, m, table.ScanInput{}, 3)
	require.NoError(t, err)
	assert.Len(t, merged.Items, 20)
	seen := make(map[int64]bool)
	for _, s := range seqs(merged) {
		assert.False(t, seen[s])
		seen[s] = true
	}
}

func TestMemoryBatchGet(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m := tabletest.New(notes)
	for seq := range int64(3) {
		require.NoError(t, m.Save(ctx, note("ann", seq), table.SaveInput{}))
	}

	items, err := m.BatchGet(ctx, table.BatchGetInput{Keys: []table.Key{
		{HashKey: "ann", RangeKey: int64(2)},
		{HashKey: "ann", RangeKey: int64(9)},
		{HashKey: "ann", RangeKey: int64(2)},
		{HashKey: "ann", RangeKey: int64(0)},
	}})
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 0}, seqs(&table.Result{Items: items}))

	_, err = m.BatchGet(ctx, table.BatchGetInput{Keys: []table.Key{{HashKey: int64(1)}}})
	assert.True(t, dynamix.IsValidationError(err))
}

package table_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strconv"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/dynamix"
	"github.com/syssam/dynamix/attribute"
	"github.com/syssam/dynamix/dialect/dynamo/dynamotest"
	"github.com/syssam/dynamix/schema"
	"github.com/syssam/dynamix/table"
)

var (
	ownerAttr = schema.NewAttribute("owner", attribute.Unicode{}).HashKey()
	seqAttr   = schema.NewAttribute("seq", attribute.Integer{}).RangeKey()
	bodyAttr  = schema.NewAttribute("body", attribute.Unicode{}).Nullable()
	notes     = schema.MustNew("notes", ownerAttr, seqAttr, bodyAttr)
)

func note(owner string, seq int64, body string) *schema.Item {
	item := notes.NewItem()
	ownerAttr.Put(item, owner)
	seqAttr.Put(item, seq)
	if body != "" {
		bodyAttr.Put(item, body)
	}
	return item
}

func stored(owner string, seq int) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"owner": &types.AttributeValueMemberS{Value: owner},
		"seq":   &types.AttributeValueMemberN{Value: strconv.Itoa(seq)},
	}
}

// =============================================================================
// Item Operation Tests
// =============================================================================

func TestTableGet(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		fake := &dynamotest.Client{
			GetItemFunc: func(_ context.Context, in *dynamodb.GetItemInput) (*dynamodb.GetItemOutput, error) {
				return &dynamodb.GetItemOutput{Item: stored("ann", 1)}, nil
			},
		}
		tbl := table.New(fake, notes)
		item, err := tbl.Get(ctx, table.GetInput{HashKey: "ann", RangeKey: int64(1), ConsistentRead: true})
		require.NoError(t, err)
		owner, _ := ownerAttr.Get(item)
		assert.Equal(t, "ann", owner)

		in := fake.Last().(*dynamodb.GetItemInput)
		assert.Equal(t, "notes", aws.ToString(in.TableName))
		assert.True(t, aws.ToBool(in.ConsistentRead))
		assert.Equal(t, stored("ann", 1), in.Key)
		assert.Nil(t, in.ProjectionExpression)
	})

	t.Run("not_found", func(t *testing.T) {
		tbl := table.New(&dynamotest.Client{}, notes)
		_, err := tbl.Get(ctx, table.GetInput{HashKey: "ann", RangeKey: int64(1)})
		require.Error(t, err)
		assert.True(t, dynamix.IsNotFound(err))
		assert.ErrorIs(t, err, dynamix.ErrNotFound)
		var nf *dynamix.NotFoundError
		require.ErrorAs(t, err, &nf)
		assert.Equal(t, []any{"ann", int64(1)}, nf.Key())
	})

	t.Run("projection", func(t *testing.T) {
		fake := &dynamotest.Client{}
		tbl := table.New(fake, notes, table.WithTableName("prod_notes"))
		_, _ = tbl.Get(ctx, table.GetInput{HashKey: "ann", RangeKey: int64(1), Attributes: []string{"body"}})
		in := fake.Last().(*dynamodb.GetItemInput)
		assert.Equal(t, "prod_notes", aws.ToString(in.TableName))
		require.NotNil(t, in.ProjectionExpression)
		assert.Equal(t, map[string]string{"#0": "body"}, in.ExpressionAttributeNames)
	})

	t.Run("client_error_unchanged", func(t *testing.T) {
		boom := errors.New("boom")
		fake := &dynamotest.Client{
			GetItemFunc: func(context.Context, *dynamodb.GetItemInput) (*dynamodb.GetItemOutput, error) {
				return nil, boom
			},
		}
		_, err := table.New(fake, notes).Get(ctx, table.GetInput{HashKey: "ann", RangeKey: int64(1)})
		assert.Same(t, boom, err)
	})
}

func TestTableSave(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	fake := &dynamotest.Client{}
	tbl := table.New(fake, notes)
	require.NoError(t, tbl.Save(ctx, note("ann", 1, "hi"), table.SaveInput{}))
	in := fake.Last().(*dynamodb.PutItemInput)
	assert.Nil(t, in.ConditionExpression)
	assert.Equal(t, &types.AttributeValueMemberS{Value: "hi"}, in.Item["body"])

	require.NoError(t, tbl.Save(ctx, note("ann", 2, ""), table.SaveInput{Condition: ownerAttr.NotExists()}))
	in = fake.Last().(*dynamodb.PutItemInput)
	require.NotNil(t, in.ConditionExpression)
	assert.Contains(t, *in.ConditionExpression, "attribute_not_exists")
	assert.NotContains(t, in.Item, "body")

	err := tbl.Save(ctx, notes.NewItem(), table.SaveInput{})
	assert.True(t, dynamix.IsValidationError(err))
}

func TestTableUpdate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	fake := &dynamotest.Client{
		UpdateItemFunc: func(_ context.Context, in *dynamodb.UpdateItemInput) (*dynamodb.UpdateItemOutput, error) {
			out := stored("ann", 1)
			out["body"] = &types.AttributeValueMemberS{Value: "new"}
			return &dynamodb.UpdateItemOutput{Attributes: out}, nil
		},
	}
	tbl := table.New(fake, notes)
	item := note("ann", 1, "old")
	require.NoError(t, tbl.Update(ctx, item, table.UpdateInput{
		Actions:   []schema.Action{bodyAttr.Set("new")},
		Condition: bodyAttr.Equal("old"),
	}))
	body, _ := bodyAttr.Get(item)
	assert.Equal(t, "new", body)

	in := fake.Last().(*dynamodb.UpdateItemInput)
	assert.Equal(t, types.ReturnValueAllNew, in.ReturnValues)
	assert.Equal(t, stored("ann", 1), in.Key)
	require.NotNil(t, in.UpdateExpression)
	assert.Contains(t, *in.UpdateExpression, "SET")
	require.NotNil(t, in.ConditionExpression)
	assert.Len(t, in.ExpressionAttributeValues, 2)

	assert.Error(t, tbl.Update(ctx, item, table.UpdateInput{}))
}

func TestTableDelete(t *testing.T) {
	t.Parallel()

	fake := &dynamotest.Client{}
	tbl := table.New(fake, notes)
	require.NoError(t, tbl.Delete(context.Background(), note("ann", 1, ""), table.DeleteInput{Condition: bodyAttr.NotExists()}))
	in := fake.Last().(*dynamodb.DeleteItemInput)
	assert.Equal(t, stored("ann", 1), in.Key)
	assert.NotNil(t, in.ConditionExpression)
}

// =============================================================================
// Read Tests
// =============================================================================

func pagedQuery(pages ...[]map[string]types.AttributeValue) *dynamotest.Client {
	call := 0
	return &dynamotest.Client{
		QueryFunc: func(_ context.Context, in *dynamodb.QueryInput) (*dynamodb.QueryOutput, error) {
			page := pages[call]
			call++
			out := &dynamodb.QueryOutput{Items: page, ScannedCount: int32(len(page))}
			if call < len(pages) {
				out.LastEvaluatedKey = page[len(page)-1]
			}
			return out, nil
		},
	}
}

func TestTableQuery(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("paginates", func(t *testing.T) {
		fake := pagedQuery(
			[]map[string]types.AttributeValue{stored("ann", 1), stored("ann", 2)},
			[]map[string]types.AttributeValue{stored("ann", 3)},
		)
		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
		res, err := table.New(fake, notes, table.WithLogger(logger)).Query(ctx, table.QueryInput{
			HashKey:           "ann",
			RangeKeyCondition: seqAttr.GreaterThan(0),
			Filter:            bodyAttr.NotExists(),
			PageSize:          2,
		})
		require.NoError(t, err)
		assert.Len(t, res.Items, 3)
		assert.Equal(t, 3, res.ScannedCount)
		assert.Nil(t, res.LastEvaluatedKey)
		assert.Equal(t, []string{"Query", "Query"}, fake.Ops())
		assert.Contains(t, buf.String(), "dynamix page fetched")

		in := fake.Calls()[1].Input.(*dynamodb.QueryInput)
		assert.Equal(t, stored("ann", 2), in.ExclusiveStartKey)
		assert.Contains(t, *in.KeyConditionExpression, "AND")
		assert.Contains(t, *in.FilterExpression, "attribute_not_exists")
	})

	t.Run("limit", func(t *testing.T) {
		fake := pagedQuery(
			[]map[string]types.AttributeValue{stored("ann", 1), stored("ann", 2)},
			[]map[string]types.AttributeValue{stored("ann", 3)},
		)
		res, err := table.New(fake, notes).Query(ctx, table.QueryInput{HashKey: "ann", Limit: 2, PageSize: 10})
		require.NoError(t, err)
		assert.Len(t, res.Items, 2)
		assert.Equal(t, stored("ann", 2), res.LastEvaluatedKey)
		in := fake.Last().(*dynamodb.QueryInput)
		assert.Equal(t, int32(2), aws.ToInt32(in.Limit))
		assert.Nil(t, in.FilterExpression)
	})

	t.Run("index_requires_key_condition", func(t *testing.T) {
		_, err := table.New(&dynamotest.Client{}, notes).Query(ctx, table.QueryInput{HashKey: "ann", IndexName: "by_body"})
		assert.Error(t, err)
	})

	t.Run("index", func(t *testing.T) {
		fake := &dynamotest.Client{}
		_, err := table.New(fake, notes).Query(ctx, table.QueryInput{IndexName: "by_body", KeyCondition: bodyAttr.Equal("x")})
		require.NoError(t, err)
		assert.Equal(t, "by_body", aws.ToString(fake.Last().(*dynamodb.QueryInput).IndexName))
	})

	t.Run("invalid_range_condition", func(t *testing.T) {
		_, err := table.New(&dynamotest.Client{}, notes).Query(ctx, table.QueryInput{HashKey: "ann", RangeKeyCondition: seqAttr.Exists()})
		assert.Error(t, err)
	})
}

func TestTableScan(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	fake := &dynamotest.Client{
		ScanFunc: func(_ context.Context, in *dynamodb.ScanInput) (*dynamodb.ScanOutput, error) {
			seg := int(aws.ToInt32(in.Segment))
			return &dynamodb.ScanOutput{Items: []map[string]types.AttributeValue{stored("s", seg)}, ScannedCount: 1}, nil
		},
	}
	tbl := table.New(fake, notes)

	res, err := tbl.Scan(ctx, table.ScanInput{})
	require.NoError(t, err)
	assert.Len(t, res.Items, 1)
	in := fake.Last().(*dynamodb.ScanInput)
	assert.Nil(t, in.FilterExpression)
	assert.Nil(t, in.TotalSegments)

	_, err = tbl.Scan(ctx, table.ScanInput{Segment: 3, TotalSegments: 2})
	assert.Error(t, err)

	t.Run("segments", func(t *testing.T) {
		res, err := table.ScanSegments(ctx, tbl, table.ScanInput{Filter: bodyAttr.NotExists()}, 4)
		require.NoError(t, err)
		require.Len(t, res.Items, 4)
		for i, item := range res.Items {
			seq, _ := seqAttr.Get(item)
			assert.Equal(t, int64(i), seq)
		}
		assert.Equal(t, 4, res.ScannedCount)

		_, err = table.ScanSegments(ctx, tbl, table.ScanInput{}, 0)
		assert.Error(t, err)
	})

	t.Run("segment_error", func(t *testing.T) {
		boom := errors.New("boom")
		failing := &dynamotest.Client{
			ScanFunc: func(context.Context, *dynamodb.ScanInput) (*dynamodb.ScanOutput, error) { return nil, boom },
		}
		_, err := table.ScanSegments(ctx, table.New(failing, notes), table.ScanInput{}, 2)
		assert.ErrorIs(t, err, boom)
	})
}

func TestCreateTableInput(t *testing.T) {
	t.Parallel()

	in := table.CreateTableInput(notes, "")
	assert.Equal(t, "notes", aws.ToString(in.TableName))
	assert.Equal(t, types.BillingModePayPerRequest, in.BillingMode)
	require.Len(t, in.KeySchema, 2)
	assert.Equal(t, types.KeyTypeHash, in.KeySchema[0].KeyType)
	assert.Equal(t, "seq", aws.ToString(in.KeySchema[1].AttributeName))
	assert.Equal(t, types.ScalarAttributeTypeN, in.AttributeDefinitions[1].AttributeType)

	assert.Equal(t, "other", aws.ToString(table.CreateTableInput(notes, "other").TableName))
}

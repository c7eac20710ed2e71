package table

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/syssam/dynamix"
	"github.com/syssam/dynamix/dialect/dynamo"
	"github.com/syssam/dynamix/schema"
)

// Table is a Persister backed by DynamoDB.
type Table struct {
	client dynamo.Client
	schema *schema.Schema
	name   string
	logger *slog.Logger
}

// Option configures a Table.
type Option func(*Table)

// WithLogger sets the logger used for page fetches.
func WithLogger(l *slog.Logger) Option {
	return func(t *Table) {
		t.logger = l
	}
}

// WithTableName overrides the table name of the schema, e.g. to add an
// environment prefix.
func WithTableName(name string) Option {
	return func(t *Table) {
		t.name = name
	}
}

// New returns a Table persisting items of s through client.
func New(client dynamo.Client, s *schema.Schema, opts ...Option) *Table {
	t := &Table{
		client: client,
		schema: s,
		name:   s.Table(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Schema implements Persister.
func (t *Table) Schema() *schema.Schema { return t.schema }

// Name returns the DynamoDB table name.
func (t *Table) Name() string { return t.name }

// Get implements Persister.
func (t *Table) Get(ctx context.Context, in GetInput) (*schema.Item, error) {
	key, err := t.schema.Key(in.HashKey, in.RangeKey)
	if err != nil {
		return nil, err
	}
	input := &dynamodb.GetItemInput{
		TableName:      aws.String(t.name),
		Key:            key,
		ConsistentRead: aws.Bool(in.ConsistentRead),
	}
	if len(in.Attributes) > 0 {
		expr, err := expression.NewBuilder().WithProjection(projection(in.Attributes)).Build()
		if err != nil {
			return nil, fmt.Errorf("table: build projection: %w", err)
		}
		input.ProjectionExpression = expr.Projection()
		input.ExpressionAttributeNames = expr.Names()
	}
	out, err := t.client.GetItem(ctx, input)
	if err != nil {
		return nil, err
	}
	if len(out.Item) == 0 {
		return nil, dynamix.NewNotFoundErrorWithKey(t.name, Key{HashKey: in.HashKey, RangeKey: in.RangeKey}.Value())
	}
	return t.schema.Decode(out.Item)
}

// Save implements Persister.
func (t *Table) Save(ctx context.Context, item *schema.Item, in SaveInput) error {
	av, err := item.Encode()
	if err != nil {
		return err
	}
	input := &dynamodb.PutItemInput{
		TableName: aws.String(t.name),
		Item:      av,
	}
	if !in.Condition.IsZero() {
		expr, err := conditionExpr(in.Condition)
		if err != nil {
			return err
		}
		input.ConditionExpression = expr.Condition()
		input.ExpressionAttributeNames = expr.Names()
		input.ExpressionAttributeValues = expr.Values()
	}
	_, err = t.client.PutItem(ctx, input)
	return err
}

// Update implements Persister.
func (t *Table) Update(ctx context.Context, item *schema.Item, in UpdateInput) error {
	key, err := item.Key()
	if err != nil {
		return err
	}
	ub, err := schema.BuildUpdate(in.Actions)
	if err != nil {
		return err
	}
	b := expression.NewBuilder().WithUpdate(ub)
	if !in.Condition.IsZero() {
		cond, err := in.Condition.Build()
		if err != nil {
			return err
		}
		b = b.WithCondition(cond)
	}
	expr, err := b.Build()
	if err != nil {
		return fmt.Errorf("table: build update: %w", err)
	}
	out, err := t.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(t.name),
		Key:                       key,
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		return err
	}
	if len(out.Attributes) > 0 {
		return item.Refresh(out.Attributes)
	}
	return nil
}

// Delete implements Persister. The base table always deletes physically.
func (t *Table) Delete(ctx context.Context, item *schema.Item, in DeleteInput) error {
	key, err := item.Key()
	if err != nil {
		return err
	}
	input := &dynamodb.DeleteItemInput{
		TableName: aws.String(t.name),
		Key:       key,
	}
	if !in.Condition.IsZero() {
		expr, err := conditionExpr(in.Condition)
		if err != nil {
			return err
		}
		input.ConditionExpression = expr.Condition()
		input.ExpressionAttributeNames = expr.Names()
		input.ExpressionAttributeValues = expr.Values()
	}
	_, err = t.client.DeleteItem(ctx, input)
	return err
}

// Query implements Persister. Pages are fetched until Limit items are
// read or the partition is exhausted.
func (t *Table) Query(ctx context.Context, in QueryInput) (*Result, error) {
	keyCond := in.KeyCondition
	if keyCond.IsZero() {
		if in.IndexName != "" {
			return nil, errors.New("table: query on an index requires a key condition")
		}
		keyCond = schema.And(schema.FieldEqual(t.schema.HashKey(), in.HashKey), in.RangeKeyCondition)
	}
	kb, err := keyCond.KeyBuild()
	if err != nil {
		return nil, err
	}
	b := expression.NewBuilder().WithKeyCondition(kb)
	if b, err = withFilterAndProjection(b, in.Filter, in.Attributes); err != nil {
		return nil, err
	}
	expr, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("table: build query: %w", err)
	}
	input := &dynamodb.QueryInput{
		TableName:                 aws.String(t.name),
		KeyConditionExpression:    expr.KeyCondition(),
		FilterExpression:          expr.Filter(),
		ProjectionExpression:      expr.Projection(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ConsistentRead:            aws.Bool(in.ConsistentRead),
		ScanIndexForward:          in.ScanIndexForward,
	}
	if in.IndexName != "" {
		input.IndexName = aws.String(in.IndexName)
	}
	return t.paginate(ctx, "query", in.Limit, in.PageSize, in.ExclusiveStartKey, func(start map[string]types.AttributeValue, limit *int32) ([]map[string]types.AttributeValue, map[string]types.AttributeValue, int, error) {
		input.ExclusiveStartKey = start
		input.Limit = limit
		out, err := t.client.Query(ctx, input)
		if err != nil {
			return nil, nil, 0, err
		}
		return out.Items, out.LastEvaluatedKey, int(out.ScannedCount), nil
	})
}

// Scan implements Persister.
func (t *Table) Scan(ctx context.Context, in ScanInput) (*Result, error) {
	var expr expression.Expression
	if !in.Filter.IsZero() || len(in.Attributes) > 0 {
		b, err := withFilterAndProjection(expression.NewBuilder(), in.Filter, in.Attributes)
		if err != nil {
			return nil, err
		}
		if expr, err = b.Build(); err != nil {
			return nil, fmt.Errorf("table: build scan: %w", err)
		}
	}
	input := &dynamodb.ScanInput{
		TableName:                 aws.String(t.name),
		FilterExpression:          expr.Filter(),
		ProjectionExpression:      expr.Projection(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ConsistentRead:            aws.Bool(in.ConsistentRead),
	}
	if in.IndexName != "" {
		input.IndexName = aws.String(in.IndexName)
	}
	if in.TotalSegments > 0 {
		if in.Segment < 0 || in.Segment >= in.TotalSegments {
			return nil, fmt.Errorf("table: segment %d out of range [0,%d)", in.Segment, in.TotalSegments)
		}
		input.Segment = aws.Int32(int32(in.Segment))
		input.TotalSegments = aws.Int32(int32(in.TotalSegments))
	}
	return t.paginate(ctx, "scan", in.Limit, in.PageSize, in.ExclusiveStartKey, func(start map[string]types.AttributeValue, limit *int32) ([]map[string]types.AttributeValue, map[string]types.AttributeValue, int, error) {
		input.ExclusiveStartKey = start
		input.Limit = limit
		out, err := t.client.Scan(ctx, input)
		if err != nil {
			return nil, nil, 0, err
		}
		return out.Items, out.LastEvaluatedKey, int(out.ScannedCount), nil
	})
}

type fetchFunc func(start map[string]types.AttributeValue, limit *int32) (items []map[string]types.AttributeValue, last map[string]types.AttributeValue, scanned int, err error)

func (t *Table) paginate(ctx context.Context, op string, limit, pageSize int, start map[string]types.AttributeValue, fetch fetchFunc) (*Result, error) {
	res := &Result{}
	for page := 1; ; page++ {
		var reqLimit *int32
		if pageSize > 0 {
			reqLimit = aws.Int32(int32(pageSize))
		}
		if limit > 0 {
			if remaining := int32(limit - len(res.Items)); reqLimit == nil || *reqLimit > remaining {
				reqLimit = aws.Int32(remaining)
			}
		}
		items, last, scanned, err := fetch(start, reqLimit)
		if err != nil {
			return nil, err
		}
		res.ScannedCount += scanned
		for _, av := range items {
			item, err := t.schema.Decode(av)
			if err != nil {
				return nil, err
			}
			res.Items = append(res.Items, item)
		}
		start = last
		t.logger.DebugContext(ctx, "dynamix page fetched",
			"op", op, "table", t.name, "page", page, "items", len(items), "more", len(last) > 0)
		if len(start) == 0 || (limit > 0 && len(res.Items) >= limit) {
			break
		}
	}
	res.LastEvaluatedKey = start
	return res, nil
}

func conditionExpr(c schema.Condition) (expression.Expression, error) {
	cond, err := c.Build()
	if err != nil {
		return expression.Expression{}, err
	}
	expr, err := expression.NewBuilder().WithCondition(cond).Build()
	if err != nil {
		return expression.Expression{}, fmt.Errorf("table: build condition: %w", err)
	}
	return expr, nil
}

func withFilterAndProjection(b expression.Builder, filter schema.Condition, attrs []string) (expression.Builder, error) {
	if !filter.IsZero() {
		f, err := filter.Build()
		if err != nil {
			return b, err
		}
		b = b.WithFilter(f)
	}
	if len(attrs) > 0 {
		b = b.WithProjection(projection(attrs))
	}
	return b, nil
}

func projection(attrs []string) expression.ProjectionBuilder {
	names := make([]expression.NameBuilder, len(attrs))
	for i, a := range attrs {
		names[i] = expression.Name(a)
	}
	return expression.NamesList(names[0], names[1:]...)
}

var _ Persister = (*Table)(nil)

// Package dynamotest provides a recording dynamo.Client for tests.
package dynamotest

import (
	"context"
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/syssam/dynamix/dialect/dynamo"
)

// Call is one recorded client call.
type Call struct {
	Op    string
	Input any
}

// Client records every call and answers with the matching hook. Calls
// without a hook succeed with an empty output.
type Client struct {
	GetItemFunc    func(context.Context, *dynamodb.GetItemInput) (*dynamodb.GetItemOutput, error)
	BatchGetFunc   func(context.Context, *dynamodb.BatchGetItemInput) (*dynamodb.BatchGetItemOutput, error)
	PutItemFunc    func(context.Context, *dynamodb.PutItemInput) (*dynamodb.PutItemOutput, error)
	UpdateItemFunc func(context.Context, *dynamodb.UpdateItemInput) (*dynamodb.UpdateItemOutput, error)
	DeleteItemFunc func(context.Context, *dynamodb.DeleteItemInput) (*dynamodb.DeleteItemOutput, error)
	QueryFunc      func(context.Context, *dynamodb.QueryInput) (*dynamodb.QueryOutput, error)
	ScanFunc       func(context.Context, *dynamodb.ScanInput) (*dynamodb.ScanOutput, error)

	mu    sync.Mutex
	calls []Call
}

// Calls returns the recorded calls in order.
func (c *Client) Calls() []Call {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Call(nil), c.calls...)
}

// Ops returns the operation names of the recorded calls.
func (c *Client) Ops() []string {
	calls := c.Calls()
	ops := make([]string, len(calls))
	for i, call := range calls {
		ops[i] = call.Op
	}
	return ops
}

// Last returns the input of the last call, or nil.
func (c *Client) Last() any {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.calls) == 0 {
		return nil
	}
	return c.calls[len(c.calls)-1].Input
}

func (c *Client) record(op string, in any) {
	c.mu.Lock()
	c.calls = append(c.calls, Call{Op: op, Input: in})
	c.mu.Unlock()
}

// GetItem implements dynamo.Client.
func (c *Client) GetItem(ctx context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	c.record("GetItem", in)
	if c.GetItemFunc != nil {
		return c.GetItemFunc(ctx, in)
	}
	return &dynamodb.GetItemOutput{}, nil
}

// BatchGetItem implements dynamo.Client.
func (c *Client) BatchGetItem(ctx context.Context, in *dynamodb.BatchGetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.BatchGetItemOutput, error) {
	c.record("BatchGetItem", in)
	if c.BatchGetFunc != nil {
		return c.BatchGetFunc(ctx, in)
	}
	return &dynamodb.BatchGetItemOutput{}, nil
}

// PutItem implements dynamo.Client.
func (c *Client) PutItem(ctx context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	c.record("PutItem", in)
	if c.PutItemFunc != nil {
		return c.PutItemFunc(ctx, in)
	}
	return &dynamodb.PutItemOutput{}, nil
}

// UpdateItem implements dynamo.Client.
func (c *Client) UpdateItem(ctx context.Context, in *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	c.record("UpdateItem", in)
	if c.UpdateItemFunc != nil {
		return c.UpdateItemFunc(ctx, in)
	}
	return &dynamodb.UpdateItemOutput{}, nil
}

// DeleteItem implements dynamo.Client.
func (c *Client) DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	c.record("DeleteItem", in)
	if c.DeleteItemFunc != nil {
		return c.DeleteItemFunc(ctx, in)
	}
	return &dynamodb.DeleteItemOutput{}, nil
}

// Query implements dynamo.Client.
func (c *Client) Query(ctx context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	c.record("Query", in)
	if c.QueryFunc != nil {
		return c.QueryFunc(ctx, in)
	}
	return &dynamodb.QueryOutput{}, nil
}

// Scan implements dynamo.Client.
func (c *Client) Scan(ctx context.Context, in *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	c.record("Scan", in)
	if c.ScanFunc != nil {
		return c.ScanFunc(ctx, in)
	}
	return &dynamodb.ScanOutput{}, nil
}

var _ dynamo.Client = (*Client)(nil)

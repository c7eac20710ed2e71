package dynamo

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// DebugClient wraps a Client with debug logging.
type DebugClient struct {
	Client
	log func(context.Context, ...any)
}

// DebugOption configures the DebugClient.
type DebugOption func(*DebugClient)

// DebugWithLog sets a custom log function.
func DebugWithLog(logFunc func(context.Context, ...any)) DebugOption {
	return func(d *DebugClient) {
		d.log = logFunc
	}
}

// NewDebugClient wraps a Client with debug logging.
//
// Example:
//
//	debug := dynamo.NewDebugClient(client, dynamo.DebugWithLog(func(ctx context.Context, v ...any) {
//	    log.Println(v...)
//	}))
func NewDebugClient(c Client, opts ...DebugOption) *DebugClient {
	d := &DebugClient{
		Client: c,
		log: func(ctx context.Context, v ...any) {
			slog.DebugContext(ctx, fmt.Sprint(v...))
		},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// GetItem logs and forwards the call.
func (d *DebugClient) GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	d.log(ctx, fmt.Sprintf("GetItem: table=%s key=%v", aws.ToString(in.TableName), in.Key))
	return d.Client.GetItem(ctx, in, optFns...)
}

// BatchGetItem logs and forwards the call.
func (d *DebugClient) BatchGetItem(ctx context.Context, in *dynamodb.BatchGetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchGetItemOutput, error) {
	keys := 0
	for _, ka := range in.RequestItems {
		keys += len(ka.Keys)
	}
	d.log(ctx, fmt.Sprintf("BatchGetItem: tables=%s keys=%d", batchTables(in), keys))
	return d.Client.BatchGetItem(ctx, in, optFns...)
}

// PutItem logs and forwards the call.
func (d *DebugClient) PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	d.log(ctx, fmt.Sprintf("PutItem: table=%s condition=%s", aws.ToString(in.TableName), aws.ToString(in.ConditionExpression)))
	return d.Client.PutItem(ctx, in, optFns...)
}

// UpdateItem logs and forwards the call.
func (d *DebugClient) UpdateItem(ctx context.Context, in *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	d.log(ctx, fmt.Sprintf("UpdateItem: table=%s update=%s condition=%s names=%v",
		aws.ToString(in.TableName), aws.ToString(in.UpdateExpression), aws.ToString(in.ConditionExpression), in.ExpressionAttributeNames))
	return d.Client.UpdateItem(ctx, in, optFns...)
}

// DeleteItem logs and forwards the call.
func (d *DebugClient) DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	d.log(ctx, fmt.Sprintf("DeleteItem: table=%s key=%v", aws.ToString(in.TableName), in.Key))
	return d.Client.DeleteItem(ctx, in, optFns...)
}

// Query logs and forwards the call.
func (d *DebugClient) Query(ctx context.Context, in *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	d.log(ctx, fmt.Sprintf("Query: table=%s index=%s key=%s filter=%s names=%v",
		aws.ToString(in.TableName), aws.ToString(in.IndexName), aws.ToString(in.KeyConditionExpression),
		aws.ToString(in.FilterExpression), in.ExpressionAttributeNames))
	return d.Client.Query(ctx, in, optFns...)
}

// Scan logs and forwards the call.
func (d *DebugClient) Scan(ctx context.Context, in *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	d.log(ctx, fmt.Sprintf("Scan: table=%s index=%s segment=%d/%d filter=%s names=%v",
		aws.ToString(in.TableName), aws.ToString(in.IndexName), aws.ToInt32(in.Segment), aws.ToInt32(in.TotalSegments),
		aws.ToString(in.FilterExpression), in.ExpressionAttributeNames))
	return d.Client.Scan(ctx, in, optFns...)
}

var _ Client = (*DebugClient)(nil)

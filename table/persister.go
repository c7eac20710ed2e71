// Package table reads and writes the items of a schema.
//
// A Persister is the unit of composition: Table talks to DynamoDB,
// tabletest.Memory keeps items in memory, and the mixin package wraps
// either one to add behavior.
package table

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/syssam/dynamix/schema"
)

// Persister reads and writes the items of one schema.
type Persister interface {
	// Schema returns the schema of the persisted items.
	Schema() *schema.Schema
	// Get reads one item by primary key. A missing item is a
	// *dynamix.NotFoundError.
	Get(ctx context.Context, in GetInput) (*schema.Item, error)
	// Save writes the whole item, replacing any item with the same key.
	Save(ctx context.Context, item *schema.Item, in SaveInput) error
	// Update applies actions to the stored item and refreshes item with the
	// stored attributes.
	Update(ctx context.Context, item *schema.Item, in UpdateInput) error
	// Delete removes the item.
	Delete(ctx context.Context, item *schema.Item, in DeleteInput) error
	// Query reads the items sharing a hash key.
	Query(ctx context.Context, in QueryInput) (*Result, error)
	// Scan reads every item of the table.
	Scan(ctx context.Context, in ScanInput) (*Result, error)
}

// GetInput selects one item.
type GetInput struct {
	HashKey        any
	RangeKey       any
	ConsistentRead bool
	// Attributes restricts the returned attributes. Empty returns all.
	Attributes []string
}

// SaveInput configures Save.
type SaveInput struct {
	// Condition must hold on the stored item for the write to succeed.
	Condition schema.Condition
	// SkipTimestamp leaves the modification time untouched.
	SkipTimestamp bool
}

// UpdateInput configures Update.
type UpdateInput struct {
	Actions   []schema.Action
	Condition schema.Condition
	// SkipTimestamp leaves the modification time untouched.
	SkipTimestamp bool
}

// DeleteInput configures Delete.
type DeleteInput struct {
	Condition schema.Condition
	// Force removes the item physically even when soft deletion applies.
	Force bool
}

// QueryInput configures Query.
type QueryInput struct {
	HashKey           any
	RangeKeyCondition schema.Condition
	// KeyCondition replaces HashKey and RangeKeyCondition. It is required
	// when querying a secondary index.
	KeyCondition schema.Condition
	Filter       schema.Condition
	// IncludeDeleted returns soft-deleted items as well.
	IncludeDeleted   bool
	ConsistentRead   bool
	IndexName        string
	ScanIndexForward *bool
	// Limit bounds the number of returned items. Zero means no limit.
	Limit int
	// PageSize bounds the items evaluated per request.
	PageSize          int
	ExclusiveStartKey map[string]types.AttributeValue
	Attributes        []string
}

// ScanInput configures Scan.
type ScanInput struct {
	Filter schema.Condition
	// IncludeDeleted returns soft-deleted items as well.
	IncludeDeleted    bool
	Segment           int
	TotalSegments     int
	ConsistentRead    bool
	IndexName         string
	Limit             int
	PageSize          int
	ExclusiveStartKey map[string]types.AttributeValue
	Attributes        []string
}

// Result holds the items read by Query or Scan.
type Result struct {
	Items []*schema.Item
	// LastEvaluatedKey is set when Limit stopped the read before the end;
	// pass it as ExclusiveStartKey to resume.
	LastEvaluatedKey map[string]types.AttributeValue
	// ScannedCount is the number of items evaluated before filtering.
	ScannedCount int
}

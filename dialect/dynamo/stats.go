package dynamo

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// CallStats holds call statistics.
type CallStats struct {
	// TotalReads is the number of GetItem, BatchGetItem, Query and Scan calls.
	TotalReads atomic.Int64
	// TotalWrites is the number of PutItem, UpdateItem and DeleteItem calls.
	TotalWrites atomic.Int64
	// TotalDuration is the total time spent in calls.
	TotalDuration atomic.Int64 // nanoseconds
	// SlowCalls is the count of calls exceeding the slow threshold.
	SlowCalls atomic.Int64
	// Errors is the count of failed calls.
	Errors atomic.Int64
	// ConsumedCapacity sums the capacity units reported by the service.
	ConsumedCapacity atomic.Uint64 // float64 bits
}

// Stats returns a snapshot of the current statistics.
func (s *CallStats) Stats() StatsSnapshot {
	return StatsSnapshot{
		TotalReads:       s.TotalReads.Load(),
		TotalWrites:      s.TotalWrites.Load(),
		TotalDuration:    time.Duration(s.TotalDuration.Load()),
		SlowCalls:        s.SlowCalls.Load(),
		Errors:           s.Errors.Load(),
		ConsumedCapacity: math.Float64frombits(s.ConsumedCapacity.Load()),
	}
}

// Reset resets all statistics to zero.
func (s *CallStats) Reset() {
	s.TotalReads.Store(0)
	s.TotalWrites.Store(0)
	s.TotalDuration.Store(0)
	s.SlowCalls.Store(0)
	s.Errors.Store(0)
	s.ConsumedCapacity.Store(0)
}

// StatsSnapshot is a point-in-time snapshot of call statistics.
type StatsSnapshot struct {
	TotalReads       int64
	TotalWrites      int64
	TotalDuration    time.Duration
	SlowCalls        int64
	Errors           int64
	ConsumedCapacity float64
}

// AvgCallDuration returns the average call duration.
func (s StatsSnapshot) AvgCallDuration() time.Duration {
	total := s.TotalReads + s.TotalWrites
	if total == 0 {
		return 0
	}
	return s.TotalDuration / time.Duration(total)
}

// String returns a human-readable summary of the statistics.
func (s StatsSnapshot) String() string {
	return fmt.Sprintf(
		"reads=%d writes=%d duration=%s avg=%s slow=%d errors=%d capacity=%g",
		s.TotalReads, s.TotalWrites, s.TotalDuration, s.AvgCallDuration(),
		s.SlowCalls, s.Errors, s.ConsumedCapacity,
	)
}

// SlowCallHook is a function called when a slow call is detected.
type SlowCallHook func(ctx context.Context, op, table string, duration time.Duration)

// StatsClient wraps a Client with call statistics collection.
type StatsClient struct {
	Client
	stats         *CallStats
	slowThreshold time.Duration
	slowHook      SlowCallHook
	mu            sync.RWMutex
}

// StatsOption configures the StatsClient.
type StatsOption func(*StatsClient)

// WithSlowThreshold sets the threshold for slow call detection.
// Default is 100ms.
func WithSlowThreshold(d time.Duration) StatsOption {
	return func(s *StatsClient) {
		s.slowThreshold = d
	}
}

// WithSlowCallHook sets a callback function for slow calls.
func WithSlowCallHook(hook SlowCallHook) StatsOption {
	return func(s *StatsClient) {
		s.slowHook = hook
	}
}

// WithSlowCallLog logs slow calls to the default logger.
func WithSlowCallLog() StatsOption {
	return WithSlowCallHook(func(ctx context.Context, op, table string, duration time.Duration) {
		slog.WarnContext(ctx, "slow dynamodb call detected", "duration", duration, "op", op, "table", table)
	})
}

// NewStatsClient wraps a Client with statistics collection.
//
// Example:
//
//	stats := dynamo.NewStatsClient(client,
//	    dynamo.WithSlowThreshold(200*time.Millisecond),
//	    dynamo.WithSlowCallLog(),
//	)
//	docs := table.New(stats, documents)
//
//	// Later, check statistics:
//	fmt.Println(stats.CallStats().Stats())
func NewStatsClient(c Client, opts ...StatsOption) *StatsClient {
	s := &StatsClient{
		Client:        c,
		stats:         &CallStats{},
		slowThreshold: 100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CallStats returns the underlying CallStats for reading statistics.
func (c *StatsClient) CallStats() *CallStats {
	return c.stats
}

// SlowThreshold returns the current slow call threshold.
func (c *StatsClient) SlowThreshold() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.slowThreshold
}

// SetSlowThreshold updates the slow call threshold.
func (c *StatsClient) SetSlowThreshold(threshold time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.slowThreshold = threshold
}

// GetItem reads an item and records statistics.
func (c *StatsClient) GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	start := time.Now()
	out, err := c.Client.GetItem(ctx, in, optFns...)
	if out != nil && out.ConsumedCapacity != nil {
		c.consumed(out.ConsumedCapacity.CapacityUnits)
	}
	c.record(ctx, "GetItem", aws.ToString(in.TableName), start, err, true)
	return out, err
}

// BatchGetItem reads a batch of items and records statistics.
func (c *StatsClient) BatchGetItem(ctx context.Context, in *dynamodb.BatchGetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchGetItemOutput, error) {
	start := time.Now()
	out, err := c.Client.BatchGetItem(ctx, in, optFns...)
	if out != nil {
		for _, cc := range out.ConsumedCapacity {
			c.consumed(cc.CapacityUnits)
		}
	}
	c.record(ctx, "BatchGetItem", batchTables(in), start, err, true)
	return out, err
}

// PutItem writes an item and records statistics.
func (c *StatsClient) PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	start := time.Now()
	out, err := c.Client.PutItem(ctx, in, optFns...)
	if out != nil && out.ConsumedCapacity != nil {
		c.consumed(out.ConsumedCapacity.CapacityUnits)
	}
	c.record(ctx, "PutItem", aws.ToString(in.TableName), start, err, false)
	return out, err
}

// UpdateItem updates an item and records statistics.
func (c *StatsClient) UpdateItem(ctx context.Context, in *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	start := time.Now()
	out, err := c.Client.UpdateItem(ctx, in, optFns...)
	if out != nil && out.ConsumedCapacity != nil {
		c.consumed(out.ConsumedCapacity.CapacityUnits)
	}
	c.record(ctx, "UpdateItem", aws.ToString(in.TableName), start, err, false)
	return out, err
}

// DeleteItem deletes an item and records statistics.
func (c *StatsClient) DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	start := time.Now()
	out, err := c.Client.DeleteItem(ctx, in, optFns...)
	if out != nil && out.ConsumedCapacity != nil {
		c.consumed(out.ConsumedCapacity.CapacityUnits)
	}
	c.record(ctx, "DeleteItem", aws.ToString(in.TableName), start, err, false)
	return out, err
}

// Query runs a query page and records statistics.
func (c *StatsClient) Query(ctx context.Context, in *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	start := time.Now()
	out, err := c.Client.Query(ctx, in, optFns...)
	if out != nil && out.ConsumedCapacity != nil {
		c.consumed(out.ConsumedCapacity.CapacityUnits)
	}
	c.record(ctx, "Query", aws.ToString(in.TableName), start, err, true)
	return out, err
}

// Scan runs a scan page and records statistics.
func (c *StatsClient) Scan(ctx context.Context, in *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	start := time.Now()
	out, err := c.Client.Scan(ctx, in, optFns...)
	if out != nil && out.ConsumedCapacity != nil {
		c.consumed(out.ConsumedCapacity.CapacityUnits)
	}
	c.record(ctx, "Scan", aws.ToString(in.TableName), start, err, true)
	return out, err
}

func (c *StatsClient) consumed(units *float64) {
	if units == nil {
		return
	}
	for {
		old := c.stats.ConsumedCapacity.Load()
		if c.stats.ConsumedCapacity.CompareAndSwap(old, math.Float64bits(math.Float64frombits(old)+*units)) {
			return
		}
	}
}

func (c *StatsClient) record(ctx context.Context, op, table string, start time.Time, err error, isRead bool) {
	duration := time.Since(start)
	if isRead {
		c.stats.TotalReads.Add(1)
	} else {
		c.stats.TotalWrites.Add(1)
	}
	c.stats.TotalDuration.Add(int64(duration))

	if err != nil {
		c.stats.Errors.Add(1)
	}

	c.mu.RLock()
	threshold := c.slowThreshold
	hook := c.slowHook
	c.mu.RUnlock()

	if duration > threshold {
		c.stats.SlowCalls.Add(1)
		if hook != nil {
			hook(ctx, op, table, duration)
		}
	}
}

func batchTables(in *dynamodb.BatchGetItemInput) string {
	names := make([]string, 0, len(in.RequestItems))
	for name := range in.RequestItems {
		names = append(names, name)
	}
	slices.Sort(names)
	return strings.Join(names, ",")
}

var _ Client = (*StatsClient)(nil)

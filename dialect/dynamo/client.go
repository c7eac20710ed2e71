// Package dynamo connects dynamix to Amazon DynamoDB through aws-sdk-go-v2.
package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// Client is the subset of the DynamoDB API used to read and write items.
// It is satisfied by *dynamodb.Client.
type Client interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	BatchGetItem(ctx context.Context, in *dynamodb.BatchGetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchGetItemOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, in *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, in *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, in *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// Admin is the subset of the DynamoDB API used to manage tables.
type Admin interface {
	CreateTable(ctx context.Context, in *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
	DescribeTable(ctx context.Context, in *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
	DeleteTable(ctx context.Context, in *dynamodb.DeleteTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteTableOutput, error)
}

var (
	_ Client = (*dynamodb.Client)(nil)
	_ Admin  = (*dynamodb.Client)(nil)
)

// NewAWSClient builds a DynamoDB client from cfg. The shared AWS
// configuration sources (environment, profile files) fill in whatever cfg
// leaves unset.
func NewAWSClient(ctx context.Context, cfg *Config) (*dynamodb.Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, cfg.SessionToken),
		))
	}
	if cfg.MaxAttempts > 0 {
		opts = append(opts, config.WithRetryMaxAttempts(cfg.MaxAttempts))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("dynamo: load aws config: %w", err)
	}
	return dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	}), nil
}

// Wrap decorates c with the debug and stats layers enabled in cfg.
func Wrap(c Client, cfg *Config) Client {
	if cfg.Debug {
		c = NewDebugClient(c)
	}
	if cfg.Stats {
		opts := []StatsOption{WithSlowCallLog()}
		if cfg.SlowThreshold > 0 {
			opts = append(opts, WithSlowThreshold(cfg.SlowThreshold))
		}
		c = NewStatsClient(c, opts...)
	}
	return c
}

// Open builds a DynamoDB client from cfg and wraps it per cfg.
//
// Example:
//
//	cfg, err := dynamo.LoadConfig("config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	client, err := dynamo.Open(ctx, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	docs := table.New(client, documents)
func Open(ctx context.Context, cfg *Config) (Client, error) {
	c, err := NewAWSClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return Wrap(c, cfg), nil
}

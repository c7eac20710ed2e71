package table

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/syssam/dynamix/dialect/dynamo"
	"github.com/syssam/dynamix/schema"
)

// DefaultWaitTimeout bounds how long CreateTable and DropTable wait for
// the table to reach its target state.
const DefaultWaitTimeout = 2 * time.Minute

// CreateTableInput returns the on-demand CreateTable request for s.
func CreateTableInput(s *schema.Schema, name string) *dynamodb.CreateTableInput {
	if name == "" {
		name = s.Table()
	}
	keys := []schema.Field{s.HashKey()}
	if rk := s.RangeKey(); rk != nil {
		keys = append(keys, rk)
	}
	in := &dynamodb.CreateTableInput{
		TableName:   aws.String(name),
		BillingMode: types.BillingModePayPerRequest,
	}
	for i, k := range keys {
		keyType := types.KeyTypeHash
		if i == 1 {
			keyType = types.KeyTypeRange
		}
		in.AttributeDefinitions = append(in.AttributeDefinitions, types.AttributeDefinition{
			AttributeName: aws.String(k.Name()),
			AttributeType: k.Kind().ScalarType(),
		})
		in.KeySchema = append(in.KeySchema, types.KeySchemaElement{
			AttributeName: aws.String(k.Name()),
			KeyType:       keyType,
		})
	}
	return in
}

// CreateTable creates the table of s and waits until it is active. An
// existing table is left untouched.
func CreateTable(ctx context.Context, admin dynamo.Admin, s *schema.Schema, name string) error {
	in := CreateTableInput(s, name)
	if _, err := admin.CreateTable(ctx, in); err != nil {
		var inUse *types.ResourceInUseException
		if !errors.As(err, &inUse) {
			return fmt.Errorf("table: create %s: %w", aws.ToString(in.TableName), err)
		}
	}
	waiter := dynamodb.NewTableExistsWaiter(admin)
	if err := waiter.Wait(ctx, &dynamodb.DescribeTableInput{TableName: in.TableName}, DefaultWaitTimeout); err != nil {
		return fmt.Errorf("table: wait for %s: %w", aws.ToString(in.TableName), err)
	}
	return nil
}

// DropTable deletes the named table and waits until it is gone.
func DropTable(ctx context.Context, admin dynamo.Admin, name string) error {
	if _, err := admin.DeleteTable(ctx, &dynamodb.DeleteTableInput{TableName: aws.String(name)}); err != nil {
		var notFound *types.ResourceNotFoundException
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("table: drop %s: %w", name, err)
	}
	waiter := dynamodb.NewTableNotExistsWaiter(admin)
	if err := waiter.Wait(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(name)}, DefaultWaitTimeout); err != nil {
		return fmt.Errorf("table: wait for %s removal: %w", name, err)
	}
	return nil
}

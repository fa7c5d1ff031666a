/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"github.com/suparena/stockwatch/errors"
	"github.com/suparena/stockwatch/registry"
)

// DefaultTableWait bounds how long EnsureTable waits for a new table to become ACTIVE.
const DefaultTableWait = 2 * time.Minute

// EnsureTable creates the backing table when it does not exist yet and waits until it is ACTIVE.
// The hash key attributes come from T's registered index map; billing is pay-per-request.
// It reports whether the table was created.
func (d *DynamodbDataStore[T]) EnsureTable(ctx context.Context, maxWait time.Duration) (bool, error) {
	_, err := d.client.DescribeTable(ctx, &sdk.DescribeTableInput{TableName: &d.tableName})
	if err == nil {
		d.log.Debug("table already exists")
		return false, nil
	}
	var rnf *types.ResourceNotFoundException
	if !stderrors.As(err, &rnf) {
		return false, fmt.Errorf("failed to describe table %s: %w", d.tableName, err)
	}

	keyAttrs := registry.KeyAttributes[T]()
	if len(keyAttrs) == 0 {
		return false, errors.ErrNoIndexMap
	}
	if len(keyAttrs) > 1 {
		return false, errors.NewValidationError("key", "only a single hash key attribute is supported")
	}

	hashKey := keyAttrs[0]
	_, err = d.client.CreateTable(ctx, &sdk.CreateTableInput{
		TableName: &d.tableName,
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String(hashKey), AttributeType: types.ScalarAttributeTypeS},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String(hashKey), KeyType: types.KeyTypeHash},
		},
		BillingMode: types.BillingModePayPerRequest,
	})
	if err != nil {
		return false, fmt.Errorf("failed to create table %s: %w", d.tableName, err)
	}
	d.log.Info("table created, waiting for it to become active", zap.String("hash_key", hashKey))

	if maxWait <= 0 {
		maxWait = DefaultTableWait
	}
	waiter := sdk.NewTableExistsWaiter(d.client, func(o *sdk.TableExistsWaiterOptions) {
		o.MinDelay = 500 * time.Millisecond
		o.MaxDelay = 5 * time.Second
	})
	if err := waiter.Wait(ctx, &sdk.DescribeTableInput{TableName: &d.tableName}, maxWait); err != nil {
		return true, fmt.Errorf("table %s did not become active: %w", d.tableName, err)
	}
	return true, nil
}

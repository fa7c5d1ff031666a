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
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"github.com/suparena/stockwatch/storagemodels"
)

// Scan pages through the whole table and emits every record as type T.
// The first page that fails after retries is sent as an error result and ends the scan.
func (d *DynamodbDataStore[T]) Scan(ctx context.Context, opts ...storagemodels.ScanOption) <-chan storagemodels.ScanResult[T] {
	options := storagemodels.ApplyScanOptions(opts...)
	resultCh := make(chan storagemodels.ScanResult[T], options.BufferSize)

	go d.scanWorker(ctx, options, resultCh)

	return resultCh
}

func (d *DynamodbDataStore[T]) scanWorker(
	ctx context.Context,
	options storagemodels.ScanOptions,
	resultCh chan<- storagemodels.ScanResult[T],
) {
	defer close(resultCh)

	var itemIndex int64
	var pageNumber int
	var errs []error
	startTime := time.Now()

	reportProgress := func() {
		if options.ProgressHandler == nil {
			return
		}
		progress := storagemodels.ScanProgress{
			ItemsProcessed: itemIndex,
			PagesProcessed: pageNumber,
			Errors:         errs,
			StartTime:      startTime,
		}
		if elapsed := time.Since(startTime).Seconds(); elapsed > 0 {
			progress.CurrentRate = float64(itemIndex) / elapsed
		}
		options.ProgressHandler(progress)
	}

	input := &sdk.ScanInput{
		TableName:      &d.tableName,
		Limit:          aws.Int32(options.PageSize),
		ConsistentRead: aws.Bool(true),
	}

	for {
		if ctx.Err() != nil {
			return
		}

		out, err := d.scanWithRetry(ctx, input, options)
		if err != nil {
			d.log.Warn("scan aborted", zap.Int("page", pageNumber), zap.Error(err))
			select {
			case <-ctx.Done():
			case resultCh <- storagemodels.ScanResult[T]{
				Error: fmt.Errorf("scan failed: %w", err),
				Meta:  storagemodels.ScanMeta{Index: itemIndex, PageNumber: pageNumber, Timestamp: time.Now()},
			}:
			}
			return
		}

		pageNumber++

		for _, item := range out.Items {
			result := decodeItem[T](item, itemIndex, pageNumber)
			itemIndex++
			if result.Error != nil {
				errs = append(errs, result.Error)
			}

			select {
			case <-ctx.Done():
				return
			case resultCh <- result:
			}
		}

		reportProgress()

		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}

	d.log.Debug("scan complete",
		zap.Int64("items", itemIndex),
		zap.Int("pages", pageNumber),
		zap.Duration("elapsed", time.Since(startTime)))
}

// scanWithRetry executes one Scan page, retrying throttling and server errors with linear backoff.
func (d *DynamodbDataStore[T]) scanWithRetry(
	ctx context.Context,
	input *sdk.ScanInput,
	options storagemodels.ScanOptions,
) (*sdk.ScanOutput, error) {
	var lastErr error

	for attempt := 0; attempt <= options.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		out, err := d.client.Scan(ctx, input)
		if err == nil {
			return out, nil
		}
		lastErr = err

		if !isRetryableError(err) {
			return nil, err
		}

		if attempt < options.MaxRetries {
			backoff := time.Duration(attempt+1) * options.RetryBackoff
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}
	}

	return nil, fmt.Errorf("scan failed after %d retries: %w", options.MaxRetries, lastErr)
}

func decodeItem[T any](item map[string]types.AttributeValue, index int64, pageNumber int) storagemodels.ScanResult[T] {
	meta := storagemodels.ScanMeta{
		Index:      index,
		PageNumber: pageNumber,
		Timestamp:  time.Now(),
	}

	var result T
	if err := attributevalue.UnmarshalMap(item, &result); err != nil {
		return storagemodels.ScanResult[T]{
			Error: fmt.Errorf("failed to unmarshal item to type %T: %w", result, err),
			Meta:  meta,
		}
	}
	return storagemodels.ScanResult[T]{Item: result, Meta: meta}
}

// isRetryableError reports whether a DynamoDB error is worth retrying.
func isRetryableError(err error) bool {
	var pte *types.ProvisionedThroughputExceededException
	var rle *types.RequestLimitExceeded
	var ise *types.InternalServerError
	switch {
	case stderrors.As(err, &pte), stderrors.As(err, &rle), stderrors.As(err, &ise):
		return true
	}

	var retryable interface{ IsRetryable() bool }
	if stderrors.As(err, &retryable) {
		return retryable.IsRetryable()
	}
	return false
}

/*
Package errors provides semantic error types for stockwatch.

The package defines the failure modes of a check run with specific types that can be
checked using the standard errors.Is() function or the provided helper functions.

Common Errors:

	var (
	    ErrNotFound         = errors.New("record not found")
	    ErrInvalidInput     = errors.New("invalid input")
	    ErrConditionFailed  = errors.New("condition check failed")
	    ErrTransient        = errors.New("transient failure")
	    ErrMalformedPayload = errors.New("malformed payload")
	)

Usage:

	prev, err := store.GetOne(ctx, key)
	if err != nil && !errors.IsNotFound(err) {
	    return err
	}

	body, err := f.Fetch(ctx, req)
	if errors.IsTransient(err) {
	    // retries were exhausted on 503/541
	}

HTTPStatusError matches ErrTransient only for status 503 and 541.
*/
package errors

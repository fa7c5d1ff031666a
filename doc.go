/*
Package stockwatch watches store-pickup availability and reports changes to chat.

One run performs a configured number of passes. Each pass fetches the pickup payload for every
configured location, extracts (model, store, availability) entries, compares them with the last
recorded availability, persists what changed and sends the changes to every recipient:

	fetch → parse → diff → persist → notify

Basic Usage:

	cfg, _ := config.Load("stockwatch.yaml", "")
	checker, closer, err := stockwatch.NewFromConfig(ctx, cfg, log)
	if err != nil {
	    return err
	}
	defer closer.Close()

	result, err := checker.Run(ctx)

State lives in a DataStore keyed by "<model>@<store name>". DynamoDB is the production backend;
SQLite and an in-memory store serve local runs and tests.
*/
package stockwatch

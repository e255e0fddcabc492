// Package resource provides a Go client for the controller's resource service:
// reading and writing resource values and streaming their changes.
//
// # Change Streams
//
// The controller reports changes through a stateful triad: notifications are
// enabled for a set of resources, changes are fetched by long-polling, and the
// subscription is disabled again. StreamChanges drives that triad:
//
//   - EnableNotification runs once, before StreamChanges returns.
//   - GetResourceValueChanges is long-polled until the stream stops. A failed
//     poll is logged and retried after n*n*BackoffUnit; more than
//     MaxConsecutiveFailures in a row end the stream with ErrTooManyPollFailures.
//   - DisableNotification runs exactly once when the stream stops, whatever
//     the reason, even if the caller's context is already canceled.
//
// # Rate Limiting and Retries
//
// Regular calls and long-polls use separate rate limiters. Regular calls are
// retried with exponential backoff on 429, 502, 503, 504 and network errors.
// SOAP faults (HTTP 500) are never retried, and long-polls are not retried by
// the transport at all.
//
// # Example Usage
//
//	client, err := resource.New("https://homeserver.local", "admin", "secret")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	stream, err := client.StreamChanges(ctx, []resource.ID{101, 102}, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer stream.Close()
//
//	for v := range stream.Changes() {
//	    fmt.Println(v)
//	}
//	if err := stream.Err(); err != nil {
//	    log.Fatal(err)
//	}
package resource

/*
Package clients provides a client library for the loader HTTP API.

LoaderClient resolves datasets and manages registered files on a remote
loader server. Error responses are returned as *ResponseError, which matches
interfaces.ErrNoValidLoader, interfaces.ErrUnauthorized and
interfaces.ErrInstanceNotFound with errors.Is; LoadFile additionally wraps
interfaces.ErrFileNotRegistered for unknown handles.

# Usage Example

	client := &clients.LoaderClient{ServerAddr: "http://127.0.0.1:8080"}
	data, strategy, err := client.Resolve(ctx, api.ResolveRequest{Dataset: ds})
*/
package clients

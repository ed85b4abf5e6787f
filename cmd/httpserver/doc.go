// Package main (cmd/httpserver) runs the loader HTTP server.
//
// Registered files are spooled to the blob stores given with --blob-store;
// WADO-RS retrievals use the retry flags and the --auth-token bearer token
// unless a dataset carries its own authorization headers.
//
// Usage:
//
//	loader-server --listen-addr 0.0.0.0:8080 \
//	    --blob-store file:///var/lib/loader/blobs \
//	    --blob-store s3://loader-blobs/spool?region=eu-west-1 \
//	    --retry-attempts 5 --log-json
package main

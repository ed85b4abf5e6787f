// Package interfaces defines the data model and collaborator contracts of the
// instance data resolution engine, separating interface definitions from
// implementations.
//
// # Catalog Types
//
// Dataset: the descriptor handed to the resolver. It may reference an image
// instance directly, point at a display set, or carry dataset-level retrieval
// fields (WADO root, WADO URI, UIDs, authorization headers).
//
// Study, DisplaySet, Series, Instance: the read-only study collection the
// viewer has already indexed.
//
// # Transport Interfaces
//
//   - InstanceRetriever: multipart (WADO-RS) instance retrieval
//   - Fetcher: plain point-to-point retrieval of a URL
//   - FileManager / FileLoader: registry of local blobs addressed by handle
//   - ImageCache: decoded-image cache keyed by image identifier
//   - HeaderProvider, ErrorInterceptor, RequestHook: transport configuration
//
// # Storage Interfaces
//
// BlobStore: content-addressed storage behind the file manager (memory,
// file system, S3, IPFS).
//
// BlobStoreFactory: creates blob stores from URI strings and aggregates
// several of them for redundancy.
package interfaces

// Package storage provides the content-addressed blob stores behind the file
// manager. Blobs are identified by the SHA-256 hash of their bytes, so storing
// the same instance twice yields the same ContentID.
//
// # Location URIs
//
//	mem://
//	file:///var/lib/viewer/blobs
//	s3://[ACCESS_KEY:SECRET_KEY@]bucket/prefix?region=eu-west-1&endpoint=http://minio:9000&path_style=true
//	ipfs://127.0.0.1:5001/dicom-blobs?timeout=30s
//
// Several locations are combined with BlobStoreFactory.CreateMultiStore. The
// resulting MultiBlobStore writes to every available store and reads from the
// first one that has the content.
//
// # Usage Example
//
//	factory := storage.NewBlobStoreFactory(log)
//	store, err := factory.CreateMultiStore([]interfaces.BlobStoreLocation{
//	    "file:///var/lib/viewer/blobs",
//	    "s3://viewer-blobs/spool?region=eu-west-1",
//	})
//	id, err := store.Store(ctx, data)
//	data, err = store.Fetch(ctx, id)
package storage

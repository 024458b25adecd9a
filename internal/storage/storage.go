// Package storage abstracts the external object store holding photo bytes.
// The production implementation targets any S3-compatible endpoint (AWS,
// MinIO); tests use an in-memory fake.
package storage

import "context"

// StoredObject describes a successfully stored object: the provider key
// needed to delete it later and the durable public URL to serve it from.
type StoredObject struct {
	Key string
	URL string
}

// ObjectStore is the interface the upload pipeline and photo deletion
// depend on. Put must not return until the provider has confirmed the
// write — photo metadata is only persisted after Put succeeds.
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, data []byte) (*StoredObject, error)
	Delete(ctx context.Context, key string) error
}

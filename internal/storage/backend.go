// Package storage provides keyed blob storage backends for the annotation
// repository. The durable state surface is a small set of namespace keys whose
// values are opaque strings; every backend offers the same get/set contract so
// the repository can be tested against memory and run against a file or the
// application database.
package storage

import "context"

// Backend is a keyed string store. Get returns ok=false when the key has never
// been written; that is not an error.
type Backend interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}

// Package datasource resolves a configured location into a readable source.
package datasource

import (
	"context"
	"io"
	"strings"

	"payroll/internal/datasource/file"
	"payroll/internal/datasource/httpds"
)

// Source yields the raw bytes of one input table.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}

// IsRemote reports whether location is an http(s) URL.
func IsRemote(location string) bool {
	l := strings.ToLower(location)
	return strings.HasPrefix(l, "http://") || strings.HasPrefix(l, "https://")
}

// For returns an HTTP source for http(s) URLs and a local file source
// otherwise. client is only used for URLs; nil gets a default client.
func For(location string, client *httpds.Client) Source {
	if IsRemote(location) {
		if client == nil {
			client = httpds.NewClient(httpds.Config{})
		}
		return httpds.NewRemote(client, location)
	}
	return file.NewLocal(location)
}

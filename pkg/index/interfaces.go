package index

import (
	"context"
	"io"

	"github.com/glorpus-work/woezel/pkg/model"
)

// Opener opens a GET stream for a URL. transport.Client implements it.
type Opener interface {
	Open(ctx context.Context, url string) (io.ReadCloser, error)
}

// Fetcher defines the read operations against the package index.
type Fetcher interface {
	// GetMetadata fetches the metadata document of one package
	GetMetadata(ctx context.Context, name string) (*model.PackageMetadata, error)

	// ListAll lists every package of the configured basket
	ListAll(ctx context.Context) ([]model.PackageSummary, error)

	// Search queries the configured basket
	Search(ctx context.Context, query string) ([]model.PackageSummary, error)
}

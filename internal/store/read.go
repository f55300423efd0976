package store

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dmorgan81/fourpanel/internal/log"
)

type Reader interface {
	Open(context.Context, string) (io.ReadCloser, error)
}

type FileReader struct{}

func (*FileReader) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	log.FromContextOrDiscard(ctx).WithGroup("file").Info("opening", "file", name)
	return os.Open(name)
}

// SchemeReader dispatches s3:// locations to S3 and everything else to Local.
type SchemeReader struct {
	Local Reader
	S3    Reader
}

func (r *SchemeReader) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	if strings.HasPrefix(location, "s3://") {
		if r.S3 == nil {
			return nil, fmt.Errorf("store: no s3 reader for %s", location)
		}
		return r.S3.Open(ctx, location)
	}
	return r.Local.Open(ctx, location)
}

package param

import (
	"context"
	"fmt"
)

type Fetcher interface {
	Fetch(context.Context, string) (string, error)
}

// Resolve returns value when set. Otherwise, when path names a parameter, the value is fetched.
// An empty result is not an error: callers decide whether a credential is mandatory.
func Resolve(ctx context.Context, f Fetcher, value, path string) (string, error) {
	if value != "" || path == "" {
		return value, nil
	}
	if f == nil {
		return "", fmt.Errorf("param: no fetcher configured for %s", path)
	}
	return f.Fetch(ctx, path)
}

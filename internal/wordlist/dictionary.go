// Package wordlist holds the read-only set of words the service accepts.
package wordlist

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode"

	"github.com/dmorgan81/fourpanel/internal/log"
	"github.com/dmorgan81/fourpanel/internal/store"
	"github.com/samber/do"
	"github.com/samber/lo"
)

var wordRegexp = regexp.MustCompile(`^[a-z'-]+$`)

// Dictionary is immutable once built and safe for concurrent use. The zero value is not loaded
// and panics on lookup.
type Dictionary struct {
	words map[string]struct{}
}

func NewDictionary(i *do.Injector) (*Dictionary, error) {
	ctx := do.MustInvoke[context.Context](i)
	reader := do.MustInvoke[store.Reader](i)
	path := do.MustInvokeNamed[string](i, "wordlist_path")
	return Load(ctx, reader, path)
}

// Load reads a newline-delimited word list from path.
func Load(ctx context.Context, reader store.Reader, path string) (*Dictionary, error) {
	logger := log.FromContextOrDiscard(ctx).WithGroup("wordlist").With("path", path)

	rc, err := reader.Open(ctx, path)
	if err != nil {
		logger.Error("failed to open word list", log.Err(err))
		return nil, fmt.Errorf("wordlist: open %s: %w", path, err)
	}
	defer rc.Close()

	d, err := Read(rc)
	if err != nil {
		logger.Error("failed to read word list", log.Err(err))
		return nil, fmt.Errorf("wordlist: read %s: %w", path, err)
	}
	logger.Info("word list loaded", "count", d.Len())
	return d, nil
}

// Read builds a Dictionary from r, one word per line. Entries are trimmed and lower-cased and
// blank lines are dropped.
func Read(r io.Reader) (*Dictionary, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return New(lines...), nil
}

func New(words ...string) *Dictionary {
	normalized := lo.Filter(lo.Map(words, func(w string, _ int) string {
		return normalize(w)
	}), func(w string, _ int) bool {
		return w != ""
	})
	return &Dictionary{words: lo.SliceToMap(normalized, func(w string) (string, struct{}) {
		return w, struct{}{}
	})}
}

// IsValid reports whether word is a single dictionary word. Syntax is checked before the lookup.
func (d *Dictionary) IsValid(word string) bool {
	if d == nil || d.words == nil {
		panic("wordlist: dictionary used before it was loaded")
	}
	w := normalize(word)
	if w == "" || strings.IndexFunc(w, unicode.IsSpace) >= 0 || !wordRegexp.MatchString(w) {
		return false
	}
	_, ok := d.words[w]
	return ok
}

func (d *Dictionary) Len() int {
	if d == nil {
		return 0
	}
	return len(d.words)
}

func normalize(w string) string {
	return strings.ToLower(strings.TrimSpace(w))
}

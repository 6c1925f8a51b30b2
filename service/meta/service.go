// Package meta loads declarative assets (skill definitions) from any
// location the abstract file system understands: local files, embed FS,
// in-memory or cloud storage URLs.
package meta

import (
	"context"
	"fmt"
	"os"
	"strings"
	"unicode"

	"github.com/viant/afs"
	"github.com/viant/afs/storage"
	"github.com/viant/afs/url"
	"gopkg.in/yaml.v3"
)

// Service resolves and decodes YAML assets relative to a base URL.
type Service struct {
	fs      afs.Service
	baseURL string
	options []storage.Option
}

// New creates a meta service.
func New(fs afs.Service, baseURL string, options ...storage.Option) *Service {
	return &Service{fs: fs, baseURL: baseURL, options: options}
}

// Load fetches the asset at URI (joined with the base URL unless absolute)
// and unmarshals it into target. ${env.KEY} expressions in the document are
// expanded before decoding.
func (s *Service) Load(ctx context.Context, URI string, target interface{}) error {
	URL := URI
	if s.baseURL != "" && url.IsRelative(URI) {
		URL = url.Join(s.baseURL, URI)
	}
	data, err := s.fs.DownloadWithURL(ctx, URL, s.options...)
	if err != nil {
		return fmt.Errorf("failed to download %s: %w", URL, err)
	}
	expanded := expandEnvExpr(string(data))
	if err = yaml.Unmarshal([]byte(expanded), target); err != nil {
		return fmt.Errorf("failed to decode %s: %w", URL, err)
	}
	return nil
}

// expandEnvExpr replaces ${env.KEY} occurrences with the value of the
// corresponding environment variable (empty when unset).
func expandEnvExpr(value string) string {
	const prefix = "${env."
	var b strings.Builder
	i := 0
	for {
		idx := strings.Index(value[i:], prefix)
		if idx < 0 {
			b.WriteString(value[i:])
			break
		}
		b.WriteString(value[i : i+idx])
		startKey := i + idx + len(prefix)
		endKey := strings.IndexByte(value[startKey:], '}')
		if endKey < 0 {
			b.WriteString(value[i+idx:])
			break
		}
		key := value[startKey : startKey+endKey]
		valid := key != ""
		for _, r := range key {
			if !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_') {
				valid = false
				break
			}
		}
		if valid {
			b.WriteString(os.Getenv(key))
			i = startKey + endKey + 1
			continue
		}
		b.WriteString(value[i+idx : startKey])
		i = startKey
	}
	return b.String()
}

package resource

import (
	"errors"
	"fmt"
	"mime"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
)

// ErrNetworkUnsupported is returned for http and https URIs.
var ErrNetworkUnsupported = errors.New("network resources are not supported")

// Fetcher retrieves resources by URI.
type Fetcher interface {
	Fetch(uri string) (body []byte, contentType string, err error)
	FetchDocument(uri string) (string, error)
}

// FileFetcher loads documents from the local filesystem. Plain paths and
// file:// URLs are accepted; relative paths are resolved against the base
// directory. When a charset is configured, bodies are decoded to UTF-8.
type FileFetcher struct {
	baseDir  string
	charset  string
	encoding encoding.Encoding
}

// NewFileFetcher creates a fetcher rooted at baseDir. charset is an IANA
// name ("", "utf-8", "windows-1251", ...); empty means UTF-8.
func NewFileFetcher(baseDir, charset string) (*FileFetcher, error) {
	f := &FileFetcher{baseDir: baseDir, charset: charset}
	if charset == "" {
		return f, nil
	}
	enc, err := ianaindex.IANA.Encoding(charset)
	if err != nil {
		return nil, fmt.Errorf("unknown charset %q: %w", charset, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("charset %q is not supported", charset)
	}
	f.encoding = enc
	return f, nil
}

// Resolve maps a URI onto a filesystem path.
func (f *FileFetcher) Resolve(uri string) (string, error) {
	path := uri
	if strings.Contains(uri, "://") {
		u, err := url.Parse(uri)
		if err != nil {
			return "", fmt.Errorf("parsing %q: %w", uri, err)
		}
		switch strings.ToLower(u.Scheme) {
		case "file":
			path = u.Path
		case "http", "https":
			return "", fmt.Errorf("%s: %w", uri, ErrNetworkUnsupported)
		default:
			return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
		}
	}
	if path == "" {
		return "", errors.New("empty path")
	}
	if !filepath.IsAbs(path) && f.baseDir != "" {
		path = filepath.Join(f.baseDir, path)
	}
	return filepath.Clean(path), nil
}

// Fetch reads the resource, decoding it when a charset is configured.
func (f *FileFetcher) Fetch(uri string) ([]byte, string, error) {
	path, err := f.Resolve(uri)
	if err != nil {
		return nil, "", err
	}
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("reading %s: %w", path, err)
	}
	if f.encoding != nil {
		if body, err = f.encoding.NewDecoder().Bytes(body); err != nil {
			return nil, "", fmt.Errorf("decoding %s as %s: %w", path, f.charset, err)
		}
	}
	contentType := mime.TypeByExtension(filepath.Ext(path))
	if contentType == "" {
		contentType = "text/html; charset=utf-8"
	}
	return body, contentType, nil
}

// FetchDocument returns the resource as markup. Invalid UTF-8 sequences are
// replaced so the text can cross the ipc boundary.
func (f *FileFetcher) FetchDocument(uri string) (string, error) {
	body, _, err := f.Fetch(uri)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(body) {
		return strings.ToValidUTF8(string(body), "�"), nil
	}
	return string(body), nil
}

// FileURL returns the file:// URL of path.
func FileURL(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(path)}).String()
}

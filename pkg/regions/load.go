package regions

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrianmross/region-select/pkg/oci"
	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// EmbeddedSource names the dataset compiled into the binary.
const EmbeddedSource = "embedded"

//go:embed data/nigeria.json
var embeddedJSON []byte

// ErrDatasetLoad matches every failure to retrieve or parse a dataset.
var ErrDatasetLoad = errors.New("dataset load failed")

// LoadError reports why a dataset could not be loaded. Callers treat all
// causes alike; Err is kept for diagnostics.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load dataset %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

func (e *LoadError) Is(target error) bool { return target == ErrDatasetLoad }

// LoadOptions carries what non-file sources need.
type LoadOptions struct {
	HTTPClient    *http.Client
	OCIConfigPath string
	OCIProfile    string
	OCIRegion     string
	// Lenient accepts comments and trailing commas.
	Lenient bool
}

// fetchObject is a seam for tests.
var fetchObject = oci.GetObject

// Load retrieves and parses the dataset at source: "" or "embedded" for the
// compiled-in dataset, an http(s) URL, an oci://namespace/bucket/object
// reference, or a local file path.
func Load(ctx context.Context, source string, opts LoadOptions) (*Dataset, error) {
	raw, err := read(ctx, source, opts)
	if err != nil {
		return nil, &LoadError{Source: DisplaySource(source), Err: err}
	}
	parse := Parse
	if opts.Lenient {
		parse = ParseLenient
	}
	ds, err := parse(raw)
	if err != nil {
		return nil, &LoadError{Source: DisplaySource(source), Err: err}
	}
	return ds, nil
}

// Embedded returns the compiled-in dataset.
func Embedded() (*Dataset, error) {
	return Load(context.Background(), EmbeddedSource, LoadOptions{})
}

// DisplaySource names a source for messages.
func DisplaySource(source string) string {
	if source == "" {
		return EmbeddedSource
	}
	return source
}

func read(ctx context.Context, source string, opts LoadOptions) ([]byte, error) {
	switch {
	case source == "" || source == EmbeddedSource:
		return embeddedJSON, nil
	case strings.HasPrefix(source, "http://"), strings.HasPrefix(source, "https://"):
		return fetchHTTP(ctx, source, opts.HTTPClient)
	case strings.HasPrefix(source, "oci://"):
		ref, err := ParseObjectRef(source)
		if err != nil {
			return nil, err
		}
		return fetchObject(ctx, opts.OCIConfigPath, opts.OCIProfile, opts.OCIRegion, ref)
	default:
		return readFile(source)
	}
}

// ParseObjectRef parses oci://namespace/bucket/object. The object name may
// contain slashes.
func ParseObjectRef(source string) (oci.ObjectRef, error) {
	parts := strings.SplitN(strings.TrimPrefix(source, "oci://"), "/", 3)
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return oci.ObjectRef{}, fmt.Errorf("invalid object reference %q (want oci://namespace/bucket/object)", source)
	}
	return oci.ObjectRef{Namespace: parts[0], Bucket: parts[1], Object: parts[2]}, nil
}

func fetchHTTP(ctx context.Context, url string, client *http.Client) ([]byte, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Encoding", "gzip, br, zstd")

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return decode(resp.Body, resp.Header.Get("Content-Encoding"))
}

func readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	encoding := ""
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz":
		encoding = "gzip"
	case ".zst":
		encoding = "zstd"
	case ".br":
		encoding = "br"
	}
	return decode(f, encoding)
}

func decode(r io.Reader, encoding string) ([]byte, error) {
	switch strings.ToLower(encoding) {
	case "", "identity":
		return io.ReadAll(r)
	case "gzip":
		gr, err := gzip.NewReader(r)
		if err != nil {
			return nil, err
		}
		defer gr.Close()
		return io.ReadAll(gr)
	case "br":
		return io.ReadAll(brotli.NewReader(r))
	case "zstd":
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		return io.ReadAll(zr)
	default:
		return nil, fmt.Errorf("unsupported content encoding %q", encoding)
	}
}

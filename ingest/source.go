package ingest

import (
	"bufio"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrSourceNotFound    = errors.New("source not found")
	ErrUnsupportedSource = errors.New("unsupported source")
)

// sniffLen is how much of a source is inspected to detect its type.
const sniffLen = 3072

// Remote holds the clients used for non-local sources. Either may be nil, in
// which case sources of that kind are rejected.
type Remote struct {
	S3   *s3.Client
	HTTP *http.Client
}

// Open returns a stream over the CSV at location, which is a local path, an
// s3://bucket/key URL or an http(s) URL. Gzip content is decompressed on the
// fly; anything that is not text is rejected.
func Open(ctx context.Context, location string, remote Remote) (io.ReadCloser, error) {
	raw, err := openRaw(ctx, location, remote)
	if err != nil {
		return nil, err
	}
	rc, err := decode(raw)
	if err != nil {
		raw.Close()
		return nil, fmt.Errorf("%s: %w", location, err)
	}
	return rc, nil
}

func openRaw(ctx context.Context, location string, remote Remote) (io.ReadCloser, error) {
	u, err := url.Parse(location)
	if err != nil || u.Scheme == "" || len(u.Scheme) == 1 {
		// Plain paths, including Windows drive letters.
		return openFile(location)
	}
	switch u.Scheme {
	case "file":
		return openFile(u.Path)
	case "s3":
		if remote.S3 == nil {
			return nil, fmt.Errorf("%w: %s: no S3 client configured", ErrUnsupportedSource, location)
		}
		return openS3(ctx, remote.S3, u.Host, strings.TrimPrefix(u.Path, "/"))
	case "http", "https":
		if remote.HTTP == nil {
			return nil, fmt.Errorf("%w: %s: no HTTP client configured", ErrUnsupportedSource, location)
		}
		return openHTTP(ctx, remote.HTTP, location)
	default:
		return nil, fmt.Errorf("%w: scheme %q", ErrUnsupportedSource, u.Scheme)
	}
}

func openFile(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, path)
	}
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if info.IsDir() {
		f.Close()
		return nil, fmt.Errorf("%w: %s is a directory", ErrUnsupportedSource, path)
	}
	return f, nil
}

func openS3(ctx context.Context, client *s3.Client, bucket, key string) (io.ReadCloser, error) {
	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		var noBucket *types.NoSuchBucket
		if errors.As(err, &noKey) || errors.As(err, &noBucket) {
			return nil, fmt.Errorf("%w: s3://%s/%s", ErrSourceNotFound, bucket, key)
		}
		return nil, err
	}
	return out.Body, nil
}

func openHTTP(ctx context.Context, client *http.Client, location string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, location)
	case resp.StatusCode >= 300:
		resp.Body.Close()
		return nil, fmt.Errorf("fetching %s: %s", location, resp.Status)
	}
	return resp.Body, nil
}

// decode sniffs the head of raw and unwraps gzip. The returned ReadCloser
// closes raw.
func decode(raw io.ReadCloser) (io.ReadCloser, error) {
	br := bufio.NewReaderSize(raw, sniffLen)
	head, err := br.Peek(sniffLen)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, err
	}
	if len(head) == 0 {
		return &readCloser{Reader: br, closers: []io.Closer{raw}}, nil
	}
	mtype := mimetype.Detect(head)
	if mtype.Is("application/gzip") {
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, err
		}
		inner := bufio.NewReaderSize(zr, sniffLen)
		head, err := inner.Peek(sniffLen)
		if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
			zr.Close()
			return nil, err
		}
		if len(head) > 0 && !isText(mimetype.Detect(head)) {
			zr.Close()
			return nil, fmt.Errorf("%w: compressed %s", ErrUnsupportedSource, mimetype.Detect(head))
		}
		return &readCloser{Reader: inner, closers: []io.Closer{zr, raw}}, nil
	}
	if !isText(mtype) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedSource, mtype)
	}
	return &readCloser{Reader: br, closers: []io.Closer{raw}}, nil
}

func isText(mtype *mimetype.MIME) bool {
	for m := mtype; m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return true
		}
	}
	return false
}

type readCloser struct {
	io.Reader
	closers []io.Closer
}

func (rc *readCloser) Close() error {
	var err error
	for _, c := range rc.closers {
		if cerr := c.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

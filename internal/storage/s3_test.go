package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// memS3 is a path-style in-memory object store behind an http.RoundTripper.
type memS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (m *memS3) RoundTrip(req *http.Request) (*http.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	path := strings.TrimPrefix(req.URL.Path, "/")
	switch req.Method {
	case http.MethodPut:
		body, _ := io.ReadAll(req.Body)
		if strings.Contains(req.Header.Get("Content-Encoding"), "aws-chunked") {
			body = decodeAWSChunked(body)
		}
		m.objects[path] = body
		return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(bytes.NewReader(nil)), Header: http.Header{
			"Etag": {"\"etag\""},
		}}, nil
	case http.MethodGet:
		body, ok := m.objects[path]
		if !ok {
			msg := "<?xml version=\"1.0\"?><Error><Code>NoSuchKey</Code><Message>missing</Message></Error>"
			return &http.Response{StatusCode: http.StatusNotFound, Body: io.NopCloser(strings.NewReader(msg)), Header: http.Header{
				"Content-Type": {"application/xml"},
			}}, nil
		}
		return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(bytes.NewReader(body)), ContentLength: int64(len(body)), Header: http.Header{
			"Content-Length": {fmt.Sprintf("%d", len(body))},
			"Content-Type":   {"text/plain"},
		}}, nil
	}
	return &http.Response{StatusCode: http.StatusMethodNotAllowed, Body: io.NopCloser(bytes.NewReader(nil))}, nil
}

// decodeAWSChunked strips the chunk framing the SDK uses for trailing checksums.
func decodeAWSChunked(raw []byte) []byte {
	var out []byte
	for len(raw) > 0 {
		i := bytes.Index(raw, []byte("\r\n"))
		if i < 0 {
			break
		}
		header := string(raw[:i])
		if j := strings.IndexByte(header, ';'); j >= 0 {
			header = header[:j]
		}
		var n int
		if _, err := fmt.Sscanf(header, "%x", &n); err != nil || n == 0 {
			break
		}
		raw = raw[i+2:]
		if n > len(raw) {
			n = len(raw)
		}
		out = append(out, raw[:n]...)
		raw = bytes.TrimPrefix(raw[n:], []byte("\r\n"))
	}
	return out
}

func mockS3(t *testing.T) (*S3, *memS3) {
	t.Helper()
	rt := &memS3{objects: map[string][]byte{}}
	cfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithRegion("us-east-1"),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("AKIA", "SECRET", "")),
	)
	if err != nil {
		t.Fatal(err)
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.HTTPClient = &http.Client{Transport: rt}
		o.UsePathStyle = true
		o.BaseEndpoint = aws.String("http://mock.s3.local")
	})
	return NewS3FromClient(client), rt
}

func TestParseS3Name(t *testing.T) {
	b, k, err := ParseS3Name("s3://bucket/dir/catalog.txt")
	if err != nil || b != "bucket" || k != "dir/catalog.txt" {
		t.Errorf("got %q %q %v", b, k, err)
	}
	for _, bad := range []string{"bucket/key", "s3://bucket", "s3:///key"} {
		if _, _, err := ParseS3Name(bad); err == nil {
			t.Errorf("ParseS3Name(%q): expected error", bad)
		}
	}
}

func TestS3_CommitThenOpen(t *testing.T) {
	store, rt := mockS3(t)
	ctx := context.Background()

	sink, err := store.Create(ctx, "s3://reports/genedata.txt")
	if err != nil {
		t.Fatal(err)
	}
	_, _ = io.WriteString(sink, "report body\n")
	if len(rt.objects) != 0 {
		t.Error("nothing should be uploaded before commit")
	}
	if err := sink.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if got := string(rt.objects["reports/genedata.txt"]); got != "report body\n" {
		t.Errorf("uploaded = %q", got)
	}

	rc, err := store.Open(ctx, "s3://reports/genedata.txt")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	if string(data) != "report body\n" {
		t.Errorf("read back %q", data)
	}
}

func TestS3_AbortUploadsNothing(t *testing.T) {
	store, rt := mockS3(t)
	sink, _ := store.Create(context.Background(), "s3://reports/x.txt")
	_, _ = io.WriteString(sink, "partial")
	_ = sink.Abort()
	if err := sink.Commit(); err != nil {
		t.Fatal(err)
	}
	if len(rt.objects) != 0 {
		t.Errorf("objects = %v, want none", rt.objects)
	}
}

func TestS3_OpenMissing(t *testing.T) {
	store, _ := mockS3(t)
	if _, err := store.Open(context.Background(), "s3://reports/none.txt"); err == nil {
		t.Error("expected error for missing object")
	}
}

func TestMux_Routes(t *testing.T) {
	dir := t.TempDir()
	store, rt := mockS3(t)
	var stdout bytes.Buffer
	m, err := NewMux(dir, S3Config{})
	if err != nil {
		t.Fatal(err)
	}
	m.WithS3(store).WithStdout(&stdout)
	ctx := context.Background()

	for _, name := range []string{"local.txt", "s3://b/k.txt", StdinName} {
		sink, err := m.Create(ctx, name)
		if err != nil {
			t.Fatalf("Create(%s): %v", name, err)
		}
		_, _ = io.WriteString(sink, name)
		if err := sink.Commit(); err != nil {
			t.Fatalf("Commit(%s): %v", name, err)
		}
	}
	if stdout.String() != StdinName {
		t.Errorf("stdout = %q", stdout.String())
	}
	if string(rt.objects["b/k.txt"]) != "s3://b/k.txt" {
		t.Errorf("s3 object = %q", rt.objects["b/k.txt"])
	}
	rc, err := m.Open(ctx, "local.txt")
	if err != nil {
		t.Fatal(err)
	}
	data, _ := io.ReadAll(rc)
	rc.Close()
	if string(data) != "local.txt" {
		t.Errorf("local = %q", data)
	}
	if !IsLocal("local.txt") || IsLocal(StdinName) || IsLocal("s3://b/k") {
		t.Error("IsLocal misclassifies names")
	}
}

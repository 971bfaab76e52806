package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const listPage = `<?xml version="1.0" encoding="UTF-8"?>
<ListBucketResult xmlns="http://s3.amazonaws.com/doc/2006-03-01/">
<Name>portal-bucket</Name>
<KeyCount>%d</KeyCount>
<IsTruncated>%t</IsTruncated>
%s
%s
</ListBucketResult>`

func newTestService(t *testing.T, handler http.HandlerFunc) (*S3Service, *httptest.Server) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := s3.New(s3.Options{
		Region:           "us-east-1",
		Credentials:      credentials.NewStaticCredentialsProvider("AKIDEXAMPLE", "secret", ""),
		BaseEndpoint:     aws.String(srv.URL),
		UsePathStyle:     true,
		RetryMaxAttempts: 1,
	})
	return NewS3Service(client), srv
}

func contents(keys ...string) string {
	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "<Contents><Key>%s</Key><Size>3</Size><LastModified>2024-01-02T03:04:05.000Z</LastModified></Contents>", k)
	}
	return b.String()
}

func TestS3Service_ListObjectsFollowsContinuationTokens(t *testing.T) {
	svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/portal-bucket", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("list-type"))

		w.Header().Set("Content-Type", "application/xml")
		if r.URL.Query().Get("continuation-token") == "" {
			fmt.Fprintf(w, listPage, 2, true, "<NextContinuationToken>page-2</NextContinuationToken>", contents("b.txt", "a.txt"))
			return
		}
		assert.Equal(t, "page-2", r.URL.Query().Get("continuation-token"))
		fmt.Fprintf(w, listPage, 1, false, "", contents("c.txt"))
	})

	objects, err := svc.ListObjects(context.Background(), "portal-bucket", "")
	require.NoError(t, err)
	require.Len(t, objects, 3)

	assert.Equal(t, "b.txt", objects[0].Key)
	assert.Equal(t, "a.txt", objects[1].Key)
	assert.Equal(t, "c.txt", objects[2].Key)
	assert.Equal(t, int64(3), objects[0].Size)
	require.NotNil(t, objects[0].LastModified)
	assert.Equal(t, 2024, objects[0].LastModified.Year())
}

func TestS3Service_ListObjectsEmptyBucket(t *testing.T) {
	svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		fmt.Fprintf(w, listPage, 0, false, "", "")
	})

	objects, err := svc.ListObjects(context.Background(), "portal-bucket", "")
	require.NoError(t, err)
	assert.NotNil(t, objects)
	assert.Empty(t, objects)
}

func TestS3Service_ListObjectsProviderError(t *testing.T) {
	svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?>
<Error><Code>NoSuchBucket</Code><Message>The specified bucket does not exist</Message><BucketName>portal-bucket</BucketName></Error>`)
	})

	_, err := svc.ListObjects(context.Background(), "portal-bucket", "")
	require.Error(t, err)

	var opErr *OperationError
	require.True(t, errors.As(err, &opErr))
	assert.Equal(t, OpList, opErr.Op)
	assert.Equal(t, "portal-bucket", opErr.Bucket)
	assert.Equal(t, "NoSuchBucket", opErr.Code)
	assert.Contains(t, err.Error(), "NoSuchBucket")
}

func TestS3Service_RequiresBucket(t *testing.T) {
	svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected provider call %s %s", r.Method, r.URL)
	})
	ctx := context.Background()

	_, err := svc.ListObjects(ctx, "", "")
	assert.ErrorIs(t, err, ErrBucketRequired)

	err = svc.Upload(ctx, strings.NewReader("x"), UploadOptions{Key: "x"})
	assert.ErrorIs(t, err, ErrBucketRequired)

	_, err = svc.GetObjectURL(ctx, "", "x", time.Hour)
	assert.ErrorIs(t, err, ErrBucketRequired)
}

func TestS3Service_UploadPutsObject(t *testing.T) {
	var (
		mu     sync.Mutex
		method string
		path   string
		ctype  string
	)
	svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		method, path, ctype = r.Method, r.URL.Path, r.Header.Get("Content-Type")
		mu.Unlock()
		_, _ = io.Copy(io.Discard, r.Body)
		w.Header().Set("ETag", `"abc"`)
		w.WriteHeader(http.StatusOK)
	})

	payload := "hello portal"
	var lastDone, lastTotal int64
	err := svc.Upload(context.Background(), strings.NewReader(payload), UploadOptions{
		Bucket:      "portal-bucket",
		Key:         "hello.txt",
		ContentType: "text/plain",
		Size:        int64(len(payload)),
		ProgressCallback: func(done, total int64) {
			lastDone, lastTotal = done, total
		},
	})
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, http.MethodPut, method)
	assert.Equal(t, "/portal-bucket/hello.txt", path)
	assert.Equal(t, "text/plain", ctype)
	assert.Equal(t, int64(len(payload)), lastDone)
	assert.Equal(t, int64(len(payload)), lastTotal)
}

func TestS3Service_GetObjectURLIsPresigned(t *testing.T) {
	svc, srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("presigning must not call the provider: %s %s", r.Method, r.URL)
	})

	before := time.Now().UTC().Add(-time.Minute)
	raw, err := svc.GetObjectURL(context.Background(), "portal-bucket", "My_Report_final.pdf", time.Hour)
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(raw, srv.URL))
	assert.Equal(t, "/portal-bucket/My_Report_final.pdf", u.Path)

	q := u.Query()
	assert.Equal(t, "3600", q.Get("X-Amz-Expires"))
	assert.Equal(t, "AWS4-HMAC-SHA256", q.Get("X-Amz-Algorithm"))
	assert.NotEmpty(t, q.Get("X-Amz-Signature"))

	signedAt, err := time.Parse("20060102T150405Z", q.Get("X-Amz-Date"))
	require.NoError(t, err)
	assert.True(t, signedAt.After(before))
	assert.WithinDuration(t, time.Now().Add(time.Hour), signedAt.Add(time.Hour), time.Minute)
}

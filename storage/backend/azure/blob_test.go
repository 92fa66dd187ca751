package azure

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/stretchr/testify/mock"

	"github.com/meltwater/blobresolver/test"
)

type mockClient struct {
	mock.Mock
}

func (m *mockClient) GetProperties(ctx context.Context, o *blob.GetPropertiesOptions) (blob.GetPropertiesResponse, error) {
	args := m.Called(ctx, o)
	return args.Get(0).(blob.GetPropertiesResponse), args.Error(1)
}

func (m *mockClient) DownloadStream(ctx context.Context, o *blob.DownloadStreamOptions) (blob.DownloadStreamResponse, error) {
	args := m.Called(ctx, o)
	return args.Get(0).(blob.DownloadStreamResponse), args.Error(1)
}

func responseError(status int) error {
	return runtime.NewResponseError(&http.Response{
		Status:     http.StatusText(status),
		StatusCode: status,
		Header:     http.Header{},
		Body:       io.NopCloser(strings.NewReader("")),
		Request:    httptest.NewRequest(http.MethodHead, "https://acct.blob.core.windows.net/c/b", nil),
	})
}

type closeRecorder struct {
	io.Reader
	closed bool
}

func (c *closeRecorder) Close() error {
	c.closed = true
	return nil
}

func newTestBlob(c Client) *Blob {
	return NewBlob(nil, Address{Account: "acct", Container: "c", BlobName: "b"}, c)
}

func TestBlobExists(t *testing.T) {
	t.Parallel()

	boom := errors.New("connection reset")

	for _, tc := range []struct {
		name    string
		err     error
		want    bool
		wantErr bool
	}{
		{name: "found", want: true},
		{name: "not found", err: responseError(http.StatusNotFound), want: false},
		{name: "forbidden", err: responseError(http.StatusForbidden), wantErr: true},
		{name: "transport", err: boom, wantErr: true},
	} {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			c := &mockClient{}
			c.On("GetProperties", mock.Anything, mock.Anything).Return(blob.GetPropertiesResponse{}, tc.err)

			got, err := newTestBlob(c).Exists(context.Background())
			if tc.wantErr {
				test.NotOk(t, err)
				test.ErrorIs(t, err, tc.err)
				test.Equals(t, false, got)

				return
			}

			test.Ok(t, err)
			test.Equals(t, tc.want, got)
			c.AssertNumberOfCalls(t, "GetProperties", 1)
		})
	}
}

func TestBlobForbiddenKeepsResponseError(t *testing.T) {
	t.Parallel()

	c := &mockClient{}
	c.On("GetProperties", mock.Anything, mock.Anything).Return(blob.GetPropertiesResponse{}, responseError(http.StatusForbidden))

	_, err := newTestBlob(c).Exists(context.Background())

	var respErr *azcore.ResponseError
	test.Assert(t, errors.As(err, &respErr), "expected a response error, got %v", err)
	test.Equals(t, http.StatusForbidden, respErr.StatusCode)
}

func TestBlobProperties(t *testing.T) {
	t.Parallel()

	modified := time.Date(2023, time.March, 4, 5, 6, 7, 0, time.UTC)

	c := &mockClient{}
	c.On("GetProperties", mock.Anything, mock.Anything).Return(blob.GetPropertiesResponse{
		ContentLength:   to.Ptr(int64(1024)),
		LastModified:    &modified,
		ContentType:     to.Ptr("application/octet-stream"),
		ContentEncoding: to.Ptr("gzip"),
		ETag:            to.Ptr(azcore.ETag("0x8D")),
		Metadata:        map[string]*string{"owner": to.Ptr("team"), "empty": nil},
	}, nil)

	got, err := newTestBlob(c).Properties(context.Background())
	test.Ok(t, err)
	test.Equals(t, &Properties{
		ContentLength:   1024,
		LastModified:    modified,
		ContentType:     "application/octet-stream",
		ContentEncoding: "gzip",
		ETag:            "0x8D",
		Metadata:        map[string]string{"owner": "team"},
	}, got)
}

func TestBlobPropertiesError(t *testing.T) {
	t.Parallel()

	c := &mockClient{}
	c.On("GetProperties", mock.Anything, mock.Anything).Return(blob.GetPropertiesResponse{}, responseError(http.StatusNotFound))

	_, err := newTestBlob(c).Properties(context.Background())
	test.NotOk(t, err)
	test.Assert(t, isNotFound(err), "expected not found to be kept in the chain, got %v", err)
}

func TestBlobSummaryCallsPropertiesOnce(t *testing.T) {
	t.Parallel()

	modified := time.Date(2015, time.October, 21, 7, 28, 0, 0, time.FixedZone("PDT", -7*60*60))

	c := &mockClient{}
	c.On("GetProperties", mock.Anything, mock.Anything).Return(blob.GetPropertiesResponse{
		ContentLength: to.Ptr(int64(42)),
		LastModified:  &modified,
	}, nil)

	size, lastModified, err := newTestBlob(c).Summary(context.Background())
	test.Ok(t, err)
	test.Equals(t, uint64(42), size)
	test.Equals(t, "Wed, 21 Oct 2015 14:28:00 GMT", lastModified)

	c.AssertNumberOfCalls(t, "GetProperties", 1)
	c.AssertNotCalled(t, "DownloadStream", mock.Anything, mock.Anything)
}

func TestBlobSummaryMissingFields(t *testing.T) {
	t.Parallel()

	c := &mockClient{}
	c.On("GetProperties", mock.Anything, mock.Anything).Return(blob.GetPropertiesResponse{}, nil)

	size, lastModified, err := newTestBlob(c).Summary(context.Background())
	test.Ok(t, err)
	test.Equals(t, uint64(0), size)
	test.Equals(t, "", lastModified)
}

func TestBlobSummaryError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")

	c := &mockClient{}
	c.On("GetProperties", mock.Anything, mock.Anything).Return(blob.GetPropertiesResponse{}, boom)

	_, _, err := newTestBlob(c).Summary(context.Background())
	test.ErrorIs(t, err, boom)
	c.AssertNumberOfCalls(t, "GetProperties", 1)
}

func TestBlobDownload(t *testing.T) {
	t.Parallel()

	body := &closeRecorder{Reader: strings.NewReader("hello, blob")}

	c := &mockClient{}
	c.On("DownloadStream", mock.Anything, mock.Anything).Return(blob.DownloadStreamResponse{
		DownloadResponse: blob.DownloadResponse{
			Body:          body,
			ContentLength: to.Ptr(int64(11)),
		},
	}, nil)

	got, err := newTestBlob(c).Download(context.Background())
	test.Ok(t, err)
	test.Equals(t, []byte("hello, blob"), got)
	test.Assert(t, body.closed, "expected the body to be closed")
}

func TestBlobDownloadContentCarriesProperties(t *testing.T) {
	t.Parallel()

	c := &mockClient{}
	c.On("DownloadStream", mock.Anything, mock.Anything).Return(blob.DownloadStreamResponse{
		DownloadResponse: blob.DownloadResponse{
			Body:            io.NopCloser(strings.NewReader("zipped")),
			ContentLength:   to.Ptr(int64(6)),
			ContentEncoding: to.Ptr("gzip"),
			ContentType:     to.Ptr("application/gzip"),
		},
	}, nil)

	data, props, err := newTestBlob(c).DownloadContent(context.Background())
	test.Ok(t, err)
	test.Equals(t, []byte("zipped"), data)
	test.Equals(t, &Properties{ContentLength: 6, ContentType: "application/gzip", ContentEncoding: "gzip"}, props)

	c.AssertNumberOfCalls(t, "DownloadStream", 1)
	c.AssertNotCalled(t, "GetProperties", mock.Anything, mock.Anything)
}

func TestBlobDownloadError(t *testing.T) {
	t.Parallel()

	c := &mockClient{}
	c.On("DownloadStream", mock.Anything, mock.Anything).Return(blob.DownloadStreamResponse{}, responseError(http.StatusNotFound))

	_, err := newTestBlob(c).Download(context.Background())
	test.NotOk(t, err)
	test.Assert(t, isNotFound(err), "expected not found to be kept in the chain, got %v", err)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, io.ErrUnexpectedEOF }

func TestBlobDownloadReadError(t *testing.T) {
	t.Parallel()

	c := &mockClient{}
	c.On("DownloadStream", mock.Anything, mock.Anything).Return(blob.DownloadStreamResponse{
		DownloadResponse: blob.DownloadResponse{Body: io.NopCloser(failingReader{})},
	}, nil)

	_, err := newTestBlob(c).Download(context.Background())
	test.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

type blockingReader struct {
	release chan struct{}
}

func (r blockingReader) Read([]byte) (int, error) {
	<-r.release
	return 0, io.EOF
}

func TestBlobDownloadCanceled(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	defer close(release)

	c := &mockClient{}
	c.On("DownloadStream", mock.Anything, mock.Anything).Return(blob.DownloadStreamResponse{
		DownloadResponse: blob.DownloadResponse{Body: io.NopCloser(blockingReader{release: release})},
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestBlob(c).Download(ctx)
	test.ErrorIs(t, err, context.Canceled)
}

func TestFailedClientDefersError(t *testing.T) {
	t.Parallel()

	boom := errors.New("bad url")
	b := newTestBlob(failedClient{err: boom})

	_, err := b.Exists(context.Background())
	test.ErrorIs(t, err, boom)

	_, err = b.Properties(context.Background())
	test.ErrorIs(t, err, boom)

	_, err = b.Download(context.Background())
	test.ErrorIs(t, err, boom)
}

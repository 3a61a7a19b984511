// Copyright (c) Microsoft. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.
package webhdfs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rclone/rclone/lib/rest"
)

const (
	DefaultTimeout   = 30 * time.Second // deadline applied by harnesses when none is configured
	DefaultChunkSize = 65536            // size of chunks a range response is delivered in
	restPrefix       = "/webhdfs/v1"
)

// HdfsClientOptions tune the REST transport. Zero values select defaults.
type HdfsClientOptions struct {
	User       string        // sent as user.name (simple authentication), empty to omit
	Timeout    time.Duration // per operation deadline, DefaultTimeout if zero
	HTTPClient *http.Client  // http.DefaultClient if nil
	ChunkSize  int           // DefaultChunkSize if zero
}

// HdfsClient is the WebHDFS REST transport. Metadata operations go to the NameNode; data
// operations are redirected by the NameNode to a DataNode, whose address is passed through
// the NatMap before the second hop.
// Concurrency: thread safe: handles unlimited number of concurrent requests
type HdfsClient struct {
	entrypoint string        // NameNode base URL, e.g. http://namenode:9870
	natMap     NatMap        // DataNode address translation
	user       string        // user.name, may be empty
	timeout    time.Duration // value reported by DefaultTimeout()
	chunkSize  int           // chunk size of range responses
	srv        *rest.Client  // REST client rooted at entrypoint
}

var _ AsyncClient = (*HdfsClient)(nil) // ensure HdfsClient implements AsyncClient

// Creates a REST transport for the WebHDFS entrypoint
func NewHdfsClient(entrypoint string, natMap NatMap) (*HdfsClient, error) {
	return NewHdfsClientWithOptions(entrypoint, natMap, HdfsClientOptions{})
}

// Creates a REST transport for the WebHDFS entrypoint with explicit options
func NewHdfsClientWithOptions(entrypoint string, natMap NatMap, opts HdfsClientOptions) (*HdfsClient, error) {
	u, err := url.Parse(entrypoint)
	if err != nil {
		return nil, errors.Wrapf(err, "webhdfs: invalid entrypoint %q", entrypoint)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, errors.Errorf("webhdfs: entrypoint %q must be an http(s) URL with a host", entrypoint)
	}
	root := strings.TrimSuffix(u.Scheme+"://"+u.Host+u.Path, "/")

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	if timeout < 0 {
		return nil, errors.Errorf("webhdfs: timeout must be positive, got %s", timeout)
	}
	chunkSize := opts.ChunkSize
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	srv := rest.NewClient(httpClient).SetRoot(root)
	srv.SetErrorHandler(errorHandler)
	return &HdfsClient{
		entrypoint: root,
		natMap:     natMap,
		user:       opts.User,
		timeout:    timeout,
		chunkSize:  chunkSize,
		srv:        srv,
	}, nil
}

// Deadline for a single operation
func (this *HdfsClient) DefaultTimeout() time.Duration {
	return this.timeout
}

// NameNode base URL
func (this *HdfsClient) Entrypoint() string {
	return this.entrypoint
}

// Enumerates a directory
func (this *HdfsClient) Dir(path string) Future[*ListStatusResponse] {
	return func(ctx context.Context) (*ListStatusResponse, error) {
		var result ListStatusResponse
		resp, err := this.srv.CallJSON(ctx, this.opts(http.MethodGet, path, OpListStatus, nil), nil, &result)
		if err != nil {
			return nil, annotate("dir", path, resp, err)
		}
		return &result, nil
	}
}

// Retrieves file/directory status
func (this *HdfsClient) Stat(path string) Future[*FileStatusResponse] {
	return func(ctx context.Context) (*FileStatusResponse, error) {
		var result FileStatusResponse
		resp, err := this.srv.CallJSON(ctx, this.opts(http.MethodGet, path, OpGetFileStatus, nil), nil, &result)
		if err != nil {
			return nil, annotate("stat", path, resp, err)
		}
		return &result, nil
	}
}

// Creates a file holding body
func (this *HdfsClient) Create(path string, body []byte, opts CreateOptions) Future[struct{}] {
	return func(ctx context.Context) (struct{}, error) {
		params := url.Values{}
		params.Set("overwrite", strconv.FormatBool(opts.Overwrite))
		if opts.BlockSize > 0 {
			params.Set("blocksize", strconv.FormatInt(opts.BlockSize, 10))
		}
		if opts.Replication > 0 {
			params.Set("replication", strconv.Itoa(int(opts.Replication)))
		}
		if opts.Permission != 0 {
			params.Set("permission", strconv.FormatUint(uint64(opts.Permission.Perm()), 8))
		}
		if opts.BufferSize > 0 {
			params.Set("buffersize", strconv.Itoa(int(opts.BufferSize)))
		}
		return struct{}{}, this.upload(ctx, "create", http.MethodPut, path, OpCreate, params, body)
	}
}

// Appends body to an existing file
func (this *HdfsClient) Append(path string, body []byte, opts AppendOptions) Future[struct{}] {
	return func(ctx context.Context) (struct{}, error) {
		params := url.Values{}
		if opts.BufferSize > 0 {
			params.Set("buffersize", strconv.Itoa(int(opts.BufferSize)))
		}
		return struct{}{}, this.upload(ctx, "append", http.MethodPost, path, OpAppend, params, body)
	}
}

// Opens a byte range. The request is sent on the first Next.
func (this *HdfsClient) Open(path string, opts OpenOptions) ChunkStream {
	ctx, cancel := context.WithCancel(context.Background())
	return &restChunkStream{client: this, path: path, opts: opts, ctx: ctx, cancel: cancel}
}

func (this *HdfsClient) opts(method string, path string, op string, params url.Values) *rest.Opts {
	if params == nil {
		params = url.Values{}
	}
	params.Set("op", op)
	if this.user != "" {
		params.Set("user.name", this.user)
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return &rest.Opts{
		Method:     method,
		Path:       restPrefix + rest.URLPathEscape(path),
		Parameters: params,
	}
}

// locate sends the NameNode hop of a data operation without following the redirect.
// Returns the translated DataNode URL, or the response itself if the NameNode served
// the request directly.
func (this *HdfsClient) locate(ctx context.Context, method string, path string, op string, params url.Values) (*http.Response, *url.URL, error) {
	opts := this.opts(method, path, op, params)
	opts.NoRedirect = true
	opts.IgnoreStatus = true
	resp, err := this.srv.Call(ctx, opts)
	if err != nil {
		return nil, nil, err
	}
	switch {
	case resp.StatusCode >= 300 && resp.StatusCode < 400:
		_ = resp.Body.Close()
		location, err := resp.Location()
		if err != nil {
			return nil, nil, &Error{Kind: KindRemote, Msg: "redirect without location", Err: err}
		}
		return nil, this.natMap.TranslateURL(location), nil
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return resp, nil, nil
	default:
		return nil, nil, errorHandler(resp)
	}
}

// upload runs both hops of CREATE or APPEND
func (this *HdfsClient) upload(ctx context.Context, name string, method string, path string, op string, params url.Values, body []byte) error {
	resp, location, err := this.locate(ctx, method, path, op, params)
	if err != nil {
		return annotate(name, path, nil, err)
	}
	if location == nil {
		_ = resp.Body.Close()
		return newError(KindRemote, name, path, "NameNode did not redirect %s to a DataNode", op)
	}
	length := int64(len(body))
	opts := rest.Opts{
		Method:        method,
		RootURL:       location.String(),
		Body:          bytes.NewReader(body),
		ContentType:   "application/octet-stream",
		ContentLength: &length,
		NoResponse:    true,
	}
	resp, err = this.srv.Call(ctx, &opts)
	return annotate(name, path, resp, err)
}

// download runs both hops of OPEN and returns the response body
func (this *HdfsClient) download(ctx context.Context, path string, opts OpenOptions) (io.ReadCloser, error) {
	params := url.Values{}
	params.Set("offset", strconv.FormatInt(opts.Offset, 10))
	if opts.Length > 0 {
		params.Set("length", strconv.FormatInt(opts.Length, 10))
	}
	if opts.BufferSize > 0 {
		params.Set("buffersize", strconv.Itoa(int(opts.BufferSize)))
	}
	resp, location, err := this.locate(ctx, http.MethodGet, path, OpOpen, params)
	if err != nil {
		return nil, annotate("read", path, nil, err)
	}
	if location != nil {
		resp, err = this.srv.Call(ctx, &rest.Opts{Method: http.MethodGet, RootURL: location.String()})
		if err != nil {
			return nil, annotate("read", path, resp, err)
		}
	}
	return resp.Body, nil
}

// restChunkStream delivers an OPEN response in chunks of up to chunkSize bytes.
// The returned chunk is only valid until the next call to Next.
type restChunkStream struct {
	client *HdfsClient
	path   string
	opts   OpenOptions
	ctx    context.Context    // spans the whole response
	cancel context.CancelFunc // aborts the request
	mutex  sync.Mutex         // serializes Next and Close
	body   io.ReadCloser      // nil until the first Next
	buf    []byte
	done   bool
}

var _ ChunkStream = (*restChunkStream)(nil) // ensure restChunkStream implements ChunkStream

// Returns next chunk, or io.EOF at the end
func (this *restChunkStream) Next(ctx context.Context) ([]byte, error) {
	this.mutex.Lock()
	defer this.mutex.Unlock()
	if this.done {
		return nil, io.EOF
	}
	stop := context.AfterFunc(ctx, this.cancel)
	defer stop()

	if this.body == nil {
		body, err := this.client.download(this.ctx, this.path, this.opts)
		if err != nil {
			this.finish()
			return nil, err
		}
		this.body = body
		this.buf = make([]byte, this.client.chunkSize)
	}
	n, err := io.ReadFull(this.body, this.buf)
	switch err {
	case nil:
		return this.buf[:n], nil
	case io.EOF, io.ErrUnexpectedEOF:
		this.finish()
		if n == 0 {
			return nil, io.EOF
		}
		return this.buf[:n], nil
	default:
		this.finish()
		return nil, wrapError(KindConnection, "read", this.path, err, "response body")
	}
}

// Releases the connection, safe to call twice
func (this *restChunkStream) Close() error {
	this.cancel()
	this.mutex.Lock()
	defer this.mutex.Unlock()
	this.finish()
	return nil
}

func (this *restChunkStream) finish() {
	this.done = true
	if this.body != nil {
		_ = this.body.Close()
		this.body = nil
	}
	this.cancel()
}

// errorHandler decodes a non-2xx response, closing its body
func errorHandler(resp *http.Response) error {
	body, err := rest.ReadBody(resp)
	if err != nil {
		return &Error{Kind: KindConnection, Msg: "error reading error out of body", Err: err}
	}
	var remote RemoteExceptionResponse
	if json.Unmarshal(body, &remote) == nil && remote.RemoteException.Exception != "" {
		return &Error{
			Kind: exceptionKind(remote.RemoteException.Exception),
			Msg:  remote.RemoteException.Message,
			Err:  errors.Errorf("%s (HTTP %d)", remote.RemoteException.Exception, resp.StatusCode),
		}
	}
	return &Error{
		Kind: statusKind(resp.StatusCode),
		Msg:  fmt.Sprintf("HTTP error %d (%s) returned body: %q", resp.StatusCode, resp.Status, body),
	}
}

func exceptionKind(exception string) Kind {
	switch exception {
	case "FileNotFoundException":
		return KindNotFound
	case "AccessControlException", "SecurityException":
		return KindPermissionDenied
	case "FileAlreadyExistsException":
		return KindAlreadyExists
	case "IllegalArgumentException":
		return KindInvalidInput
	}
	return KindRemote
}

func statusKind(status int) Kind {
	switch status {
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		return KindPermissionDenied
	case http.StatusConflict:
		return KindAlreadyExists
	}
	return KindRemote
}

// annotate attaches op and path to a transport error. Errors that came with a response
// are decoding failures; errors without one never reached the cluster.
func annotate(op string, path string, resp *http.Response, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		if e.Op == "" {
			e.Op = op
			e.Path = path
		}
		return err
	}
	if resp != nil {
		return &Error{Kind: KindRemote, Op: op, Path: path, Msg: "malformed response", Err: err}
	}
	return &Error{Kind: KindConnection, Op: op, Path: path, Msg: "request failed", Err: err}
}

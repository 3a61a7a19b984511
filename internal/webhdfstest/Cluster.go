// Copyright (c) Microsoft. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.

// Package webhdfstest runs an in-memory WebHDFS cluster (one NameNode, one DataNode) for tests.
// The NameNode redirects data operations to DataNodeAddress, an address that only
// resolves through the map returned by NatMap().
package webhdfstest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
)

// DataNodeAddress is the cluster-internal address the NameNode hands out in redirects
const DataNodeAddress = "datanode.internal:9864"

// Request records one request received by the cluster
type Request struct {
	Server string     // "namenode" or "datanode"
	Method string     // HTTP method
	Path   string     // file path, without the /webhdfs/v1 prefix
	Op     string     // value of the op parameter
	Query  url.Values // all parameters
	Body   []byte     // request body
}

type entry struct {
	id    uint64
	dir   bool
	data  []byte
	perm  string
	mtime time.Time
}

// Cluster is a fake WebHDFS deployment
// Concurrency: thread safe
type Cluster struct {
	NameNode *httptest.Server
	DataNode *httptest.Server

	mutex    sync.Mutex
	entries  map[string]*entry
	nextID   uint64
	denied   map[string]bool
	hung     map[string]bool
	requests []Request
}

// Starts a cluster holding only the root directory
func NewCluster() *Cluster {
	this := &Cluster{
		entries: map[string]*entry{},
		denied:  map[string]bool{},
		hung:    map[string]bool{},
		nextID:  16385,
	}
	this.entries["/"] = &entry{id: this.nextID, dir: true, perm: "755", mtime: time.Now()}

	nameNode := chi.NewRouter()
	nameNode.Route("/webhdfs/v1", func(r chi.Router) {
		r.Get("/*", this.nameNodeGet)
		r.Put("/*", this.nameNodeRedirect)
		r.Post("/*", this.nameNodeRedirect)
	})
	dataNode := chi.NewRouter()
	dataNode.Route("/webhdfs/v1", func(r chi.Router) {
		r.Get("/*", this.dataNodeOpen)
		r.Put("/*", this.dataNodeCreate)
		r.Post("/*", this.dataNodeAppend)
	})
	this.NameNode = httptest.NewServer(nameNode)
	this.DataNode = httptest.NewServer(dataNode)
	return this
}

// Shuts both servers down
func (this *Cluster) Close() {
	this.NameNode.Close()
	this.DataNode.Close()
}

// Entrypoint is the NameNode base URL
func (this *Cluster) Entrypoint() string {
	return this.NameNode.URL
}

// NatMap maps DataNodeAddress to the address the DataNode actually listens on
func (this *Cluster) NatMap() map[string]string {
	u, _ := url.Parse(this.DataNode.URL)
	return map[string]string{DataNodeAddress: u.Host}
}

// Adds (or replaces) a file, creating missing parent directories
func (this *Cluster) AddFile(name string, data []byte) {
	this.mutex.Lock()
	defer this.mutex.Unlock()
	this.mkdirs(path.Dir(name))
	this.put(name, data)
}

// Adds a directory, creating missing parent directories
func (this *Cluster) AddDir(name string) {
	this.mutex.Lock()
	defer this.mutex.Unlock()
	this.mkdirs(name)
}

// Returns content of a file
func (this *Cluster) Content(name string) ([]byte, bool) {
	this.mutex.Lock()
	defer this.mutex.Unlock()
	e, ok := this.entries[path.Clean(name)]
	if !ok || e.dir {
		return nil, false
	}
	return append([]byte(nil), e.data...), true
}

// Makes every request on name fail with AccessControlException
func (this *Cluster) Deny(name string) {
	this.mutex.Lock()
	defer this.mutex.Unlock()
	this.denied[path.Clean(name)] = true
}

// Lifts a previous Deny
func (this *Cluster) Allow(name string) {
	this.mutex.Lock()
	defer this.mutex.Unlock()
	delete(this.denied, path.Clean(name))
}

// Makes every NameNode request with the given op block until the client goes away
func (this *Cluster) Hang(op string) {
	this.mutex.Lock()
	defer this.mutex.Unlock()
	this.hung[op] = true
}

// Returns requests received so far
func (this *Cluster) Requests() []Request {
	this.mutex.Lock()
	defer this.mutex.Unlock()
	return append([]Request(nil), this.requests...)
}

// Returns requests with the given op received by the given server
func (this *Cluster) RequestsFor(server string, op string) []Request {
	var result []Request
	for _, r := range this.Requests() {
		if r.Server == server && r.Op == op {
			result = append(result, r)
		}
	}
	return result
}

func (this *Cluster) mkdirs(name string) {
	name = path.Clean(name)
	if name == "/" || name == "." {
		return
	}
	this.mkdirs(path.Dir(name))
	if _, ok := this.entries[name]; !ok {
		this.nextID++
		this.entries[name] = &entry{id: this.nextID, dir: true, perm: "755", mtime: time.Now()}
	}
}

func (this *Cluster) put(name string, data []byte) {
	name = path.Clean(name)
	this.nextID++
	this.entries[name] = &entry{id: this.nextID, data: append([]byte(nil), data...), perm: "644", mtime: time.Now()}
}

// record logs the request and returns its file path, op and whether it is allowed
func (this *Cluster) record(server string, r *http.Request) (string, string, bool) {
	body, _ := io.ReadAll(r.Body)
	name := path.Clean("/" + chi.URLParam(r, "*"))
	op := strings.ToUpper(r.URL.Query().Get("op"))
	this.mutex.Lock()
	defer this.mutex.Unlock()
	this.requests = append(this.requests, Request{
		Server: server, Method: r.Method, Path: name, Op: op, Query: r.URL.Query(), Body: body})
	r.Body = io.NopCloser(bytes.NewReader(body))
	return name, op, !this.denied[name]
}

func (this *Cluster) hang(r *http.Request, op string) bool {
	this.mutex.Lock()
	hung := this.hung[op]
	this.mutex.Unlock()
	if hung {
		<-r.Context().Done()
	}
	return hung
}

func (this *Cluster) nameNodeGet(w http.ResponseWriter, r *http.Request) {
	name, op, allowed := this.record("namenode", r)
	if this.hang(r, op) {
		return
	}
	if !allowed {
		remoteException(w, http.StatusForbidden, "AccessControlException", "Permission denied: "+name)
		return
	}
	this.mutex.Lock()
	defer this.mutex.Unlock()
	e, ok := this.entries[name]
	if !ok {
		remoteException(w, http.StatusNotFound, "FileNotFoundException", "File does not exist: "+name)
		return
	}
	switch op {
	case "GETFILESTATUS":
		writeJSON(w, http.StatusOK, map[string]interface{}{"FileStatus": status(e, "")})
	case "LISTSTATUS":
		statuses := []interface{}{}
		if !e.dir {
			statuses = append(statuses, status(e, ""))
		} else {
			var names []string
			for child := range this.entries {
				if child != name && path.Dir(child) == name {
					names = append(names, child)
				}
			}
			sort.Strings(names)
			for _, child := range names {
				statuses = append(statuses, status(this.entries[child], path.Base(child)))
			}
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"FileStatuses": map[string]interface{}{"FileStatus": statuses}})
	case "OPEN":
		if e.dir {
			remoteException(w, http.StatusNotFound, "FileNotFoundException", "Path is not a file: "+name)
			return
		}
		redirect(w, r)
	default:
		remoteException(w, http.StatusBadRequest, "IllegalArgumentException", "Invalid value for webhdfs parameter \"op\": "+op)
	}
}

func (this *Cluster) nameNodeRedirect(w http.ResponseWriter, r *http.Request) {
	name, op, allowed := this.record("namenode", r)
	if this.hang(r, op) {
		return
	}
	if !allowed {
		remoteException(w, http.StatusForbidden, "AccessControlException", "Permission denied: "+name)
		return
	}
	this.mutex.Lock()
	e, exists := this.entries[name]
	this.mutex.Unlock()
	switch op {
	case "CREATE":
		if exists && (e.dir || r.URL.Query().Get("overwrite") != "true") {
			remoteException(w, http.StatusForbidden, "FileAlreadyExistsException", name+" already exists")
			return
		}
	case "APPEND":
		if !exists || e.dir {
			remoteException(w, http.StatusNotFound, "FileNotFoundException", "File does not exist: "+name)
			return
		}
	default:
		remoteException(w, http.StatusBadRequest, "IllegalArgumentException", "Invalid value for webhdfs parameter \"op\": "+op)
		return
	}
	redirect(w, r)
}

func (this *Cluster) dataNodeOpen(w http.ResponseWriter, r *http.Request) {
	name, _, _ := this.record("datanode", r)
	query := r.URL.Query()
	offset, _ := strconv.ParseInt(query.Get("offset"), 10, 64)
	this.mutex.Lock()
	e, ok := this.entries[name]
	var data []byte
	if ok {
		data = e.data
	}
	this.mutex.Unlock()
	if !ok {
		remoteException(w, http.StatusNotFound, "FileNotFoundException", "File does not exist: "+name)
		return
	}
	if offset < 0 || offset > int64(len(data)) {
		remoteException(w, http.StatusForbidden, "IOException", fmt.Sprintf("Offset=%d out of the range [0, %d)", offset, len(data)))
		return
	}
	end := int64(len(data))
	if length, err := strconv.ParseInt(query.Get("length"), 10, 64); err == nil && length >= 0 && offset+length < end {
		end = offset + length
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data[offset:end])
}

func (this *Cluster) dataNodeCreate(w http.ResponseWriter, r *http.Request) {
	name, _, _ := this.record("datanode", r)
	body, _ := io.ReadAll(r.Body)
	this.mutex.Lock()
	this.mkdirs(path.Dir(name))
	this.put(name, body)
	this.mutex.Unlock()
	w.Header().Set("Location", "hdfs://"+DataNodeAddress+name)
	w.WriteHeader(http.StatusCreated)
}

func (this *Cluster) dataNodeAppend(w http.ResponseWriter, r *http.Request) {
	name, _, _ := this.record("datanode", r)
	body, _ := io.ReadAll(r.Body)
	this.mutex.Lock()
	defer this.mutex.Unlock()
	e, ok := this.entries[name]
	if !ok {
		remoteException(w, http.StatusNotFound, "FileNotFoundException", "File does not exist: "+name)
		return
	}
	e.data = append(e.data, body...)
	e.mtime = time.Now()
	w.WriteHeader(http.StatusOK)
}

// redirect sends the client to the same request on the DataNode
func redirect(w http.ResponseWriter, r *http.Request) {
	location := url.URL{Scheme: "http", Host: DataNodeAddress, Path: r.URL.Path, RawQuery: r.URL.RawQuery}
	w.Header().Set("Location", location.String())
	w.WriteHeader(http.StatusTemporaryRedirect)
}

func status(e *entry, suffix string) map[string]interface{} {
	result := map[string]interface{}{
		"accessTime":       e.mtime.UnixMilli(),
		"blockSize":        134217728,
		"childrenNum":      0,
		"fileId":           e.id,
		"group":            "supergroup",
		"length":           len(e.data),
		"modificationTime": e.mtime.UnixMilli(),
		"owner":            "hdfs",
		"pathSuffix":       suffix,
		"permission":       e.perm,
		"replication":      3,
		"type":             "FILE",
	}
	if e.dir {
		result["type"] = "DIRECTORY"
		result["blockSize"] = 0
		result["replication"] = 0
	}
	return result
}

func remoteException(w http.ResponseWriter, code int, exception string, message string) {
	writeJSON(w, code, map[string]interface{}{
		"RemoteException": map[string]interface{}{
			"exception":     exception,
			"javaClassName": "org.apache.hadoop.security." + exception,
			"message":       message,
		}})
}

func writeJSON(w http.ResponseWriter, code int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

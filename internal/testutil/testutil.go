// Copyright (c) 2026 CloudMine Team
// cmpurge - bulk deletion tool for CloudMine applications
// This source code is licensed under the MIT license found in the LICENSE file.

// Package testutil holds test doubles shared across packages, most notably a
// fake CloudMine API server that records every request it receives.
package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
)

// Request is one request observed by FakeCloudMine.
type Request struct {
	Method string
	// Target is the request path plus "?query" when a query is present.
	Target string
	APIKey string
}

// String renders "METHOD /path?query".
func (r Request) String() string {
	return r.Method + " " + r.Target
}

// Reply is a canned response.
type Reply struct {
	Status int
	Body   string
}

// FakeCloudMine simulates the CloudMine endpoints cmpurge calls. Unless a
// reply is configured for "METHOD /target", GET listings answer with
// Listing and deletes answer 200 with an empty body.
type FakeCloudMine struct {
	Server *httptest.Server

	mu       sync.Mutex
	requests []Request
	replies  map[string]Reply
	listing  string
}

// NewFakeCloudMine starts a plain-HTTP fake. Callers must Close it.
func NewFakeCloudMine() *FakeCloudMine {
	f := &FakeCloudMine{replies: make(map[string]Reply), listing: `{"success":{}}`}
	f.Server = httptest.NewServer(http.HandlerFunc(f.handle))
	return f
}

// NewFakeCloudMineTLS starts the fake behind TLS. Use Server.Client() as
// the transport so its certificate is trusted.
func NewFakeCloudMineTLS() *FakeCloudMine {
	f := &FakeCloudMine{replies: make(map[string]Reply), listing: `{"success":{}}`}
	f.Server = httptest.NewTLSServer(http.HandlerFunc(f.handle))
	return f
}

// URL is the base URL with a trailing slash, as the client expects.
func (f *FakeCloudMine) URL() string {
	return f.Server.URL + "/"
}

// Close shuts the server down.
func (f *FakeCloudMine) Close() {
	f.Server.Close()
}

// SetListing sets the body served for account listings.
func (f *FakeCloudMine) SetListing(body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listing = body
}

// SetListingUsers serves {"success":{"u1":{},...}} in the given order.
func (f *FakeCloudMine) SetListingUsers(users ...string) {
	parts := make([]string, 0, len(users))
	for _, u := range users {
		parts = append(parts, fmt.Sprintf("%q:{}", u))
	}
	f.SetListing(`{"success":{` + strings.Join(parts, ",") + `}}`)
}

// Reply configures the response for "METHOD /target".
func (f *FakeCloudMine) Reply(method, target string, status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies[method+" "+target] = Reply{Status: status, Body: body}
}

// Requests returns a copy of everything received so far, in arrival order.
func (f *FakeCloudMine) Requests() []Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Request, len(f.requests))
	copy(out, f.requests)
	return out
}

// Calls returns Requests rendered as "METHOD /target" strings.
func (f *FakeCloudMine) Calls() []string {
	reqs := f.Requests()
	out := make([]string, 0, len(reqs))
	for _, r := range reqs {
		out = append(out, r.String())
	}
	return out
}

func (f *FakeCloudMine) handle(w http.ResponseWriter, r *http.Request) {
	target := r.URL.EscapedPath()
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}

	f.mu.Lock()
	f.requests = append(f.requests, Request{Method: r.Method, Target: target, APIKey: r.Header.Get("X-CloudMine-ApiKey")})
	reply, ok := f.replies[r.Method+" "+target]
	listing := f.listing
	f.mu.Unlock()

	if !ok {
		reply = Reply{Status: http.StatusOK}
		if r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/account") {
			reply.Body = listing
		}
	}
	if reply.Body != "" {
		w.Header().Set("Content-Type", "application/json")
	}
	w.WriteHeader(reply.Status)
	_, _ = w.Write([]byte(reply.Body))
}

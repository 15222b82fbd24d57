// Copyright (c) 2026 CloudMine Team
// cmpurge - bulk deletion tool for CloudMine applications
// This source code is licensed under the MIT license found in the LICENSE file.

package cloudmine

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudmine/cmpurge/internal/testutil"
)

func TestAppDataURL_Exact(t *testing.T) {
	got := AppDataURL("https://api.example.com/", "app123")
	assert.Equal(t, "https://api.example.com/v1/app/app123/data?all=true", got)
}

func TestURLBuilders(t *testing.T) {
	base := "http://localhost:8080/"
	assert.Equal(t, "http://localhost:8080/v1/app/demo/account", AccountsURL(base, "demo"))
	assert.Equal(t, "http://localhost:8080/v1/app/demo/account/alice", AccountURL(base, "demo", "alice"))
	assert.Equal(t, "http://localhost:8080/v1/app/demo/user/alice/data?all=true", UserDataURL(base, "demo", "alice"))
	// usernames are path-escaped so they cannot change the endpoint
	assert.Equal(t, "http://localhost:8080/v1/app/demo/account/a%2Fb", AccountURL(base, "demo", "a/b"))
}

func TestNormalizeBaseURL(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "https://api.example.com/", want: "https://api.example.com/"},
		{in: "https://api.example.com", want: "https://api.example.com/"},
		{in: "http://localhost:8080", want: "http://localhost:8080/"},
		{in: "api.example.com", want: "https://api.example.com/"},
		{in: "  https://api.example.com/  ", want: "https://api.example.com/"},
		{in: "https://api.example.com/prefix/", want: "https://api.example.com/prefix/"},
		{in: "", wantErr: true},
		{in: "ftp://api.example.com/", wantErr: true},
		{in: "https://", wantErr: true},
		{in: "https://api.example.com/?x=1", wantErr: true},
	}
	for _, tc := range cases {
		got, err := NormalizeBaseURL(tc.in)
		if tc.wantErr {
			assert.Error(t, err, "input %q", tc.in)
			continue
		}
		require.NoError(t, err, "input %q", tc.in)
		assert.Equal(t, tc.want, got, "input %q", tc.in)
	}
}

func TestUsesTLS_MirrorsScheme(t *testing.T) {
	for _, base := range []string{"https://a/", "http://a/", "https://b:8443/", "http://b:8080/"} {
		c, err := NewClient(base, "k")
		require.NoError(t, err)
		assert.Equal(t, base[:5] == "https", c.UsesTLS(), base)
	}
}

func TestNewClient_MissingInputsIsUsageError(t *testing.T) {
	_, err := NewClient("", "k")
	assert.ErrorIs(t, err, ErrUsage)
	_, err = NewClient("https://api.example.com/", "")
	assert.ErrorIs(t, err, ErrUsage)
	_, err = NewClient("ftp://x/", "k")
	assert.ErrorIs(t, err, ErrUsage)
}

func TestDeleteAppData_PlainHTTPIsNotUpgraded(t *testing.T) {
	fake := testutil.NewFakeCloudMine()
	defer fake.Close()

	c, err := NewClient(fake.URL(), "master")
	require.NoError(t, err)
	require.False(t, c.UsesTLS())

	res, err := c.DeleteAppData(context.Background(), "app123")
	require.NoError(t, err)
	assert.True(t, res.Empty)
	assert.Equal(t, []string{"DELETE /v1/app/app123/data?all=true"}, fake.Calls())
	assert.Equal(t, "master", fake.Requests()[0].APIKey)
}

func TestDeleteAppData_HTTPSUsesTLS(t *testing.T) {
	fake := testutil.NewFakeCloudMineTLS()
	defer fake.Close()

	c, err := NewClient(fake.URL(), "master", WithHTTPClient(fake.Server.Client()))
	require.NoError(t, err)
	require.True(t, c.UsesTLS())

	_, err = c.DeleteAppData(context.Background(), "app123")
	require.NoError(t, err)
	assert.Len(t, fake.Requests(), 1)
}

func TestEmptyBodyIsEmptyResult(t *testing.T) {
	fake := testutil.NewFakeCloudMine()
	defer fake.Close()
	fake.Reply(http.MethodDelete, "/v1/app/a/data?all=true", http.StatusOK, "  \n ")

	c, err := NewClient(fake.URL(), "k")
	require.NoError(t, err)
	res, err := c.DeleteAppData(context.Background(), "a")
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.True(t, res.Empty)
	assert.Equal(t, "", res.String())
}

func TestJSONBodyIsDecoded(t *testing.T) {
	fake := testutil.NewFakeCloudMine()
	defer fake.Close()
	fake.Reply(http.MethodDelete, "/v1/app/a/data?all=true", http.StatusOK, `{"success":{"deleted":3}}`)

	c, err := NewClient(fake.URL(), "k")
	require.NoError(t, err)
	res, err := c.DeleteAppData(context.Background(), "a")
	require.NoError(t, err)
	assert.False(t, res.Empty)
	assert.Contains(t, res.Body, "success")
	assert.Equal(t, `{"success":{"deleted":3}}`, res.String())
}

func TestMalformedJSONIsParseError(t *testing.T) {
	fake := testutil.NewFakeCloudMine()
	defer fake.Close()
	fake.Reply(http.MethodDelete, "/v1/app/a/data?all=true", http.StatusOK, `{"success":`)

	c, err := NewClient(fake.URL(), "k")
	require.NoError(t, err)
	_, err = c.DeleteAppData(context.Background(), "a")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrResponseParse)

	var cmErr *Error
	require.True(t, errors.As(err, &cmErr))
	assert.Equal(t, "delete-app-data", cmErr.Op)
}

func TestNon2xxIsRemoteFailureWithResult(t *testing.T) {
	fake := testutil.NewFakeCloudMine()
	defer fake.Close()
	fake.Reply(http.MethodDelete, "/v1/app/a/account/bob", http.StatusUnauthorized, `{"errors":["unauthorized"]}`)

	c, err := NewClient(fake.URL(), "k")
	require.NoError(t, err)
	res, err := c.DeleteAccount(context.Background(), "a", "bob")
	require.ErrorIs(t, err, ErrRemoteFailure)
	require.NotNil(t, res)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	assert.Contains(t, res.Body, "errors")
}

func TestConnectivityError(t *testing.T) {
	fake := testutil.NewFakeCloudMine()
	base := fake.URL()
	fake.Close()

	c, err := NewClient(base, "k")
	require.NoError(t, err)
	_, err = c.DeleteAppData(context.Background(), "a")
	assert.ErrorIs(t, err, ErrConnectivity)
}

func TestListAccounts_DocumentOrder(t *testing.T) {
	fake := testutil.NewFakeCloudMine()
	defer fake.Close()
	fake.SetListing(`{"errors":[],"success":{"zed":{"__id__":"1"},"amy":{"nested":{"a":[1,2]}},"bob":null},"count":3}`)

	c, err := NewClient(fake.URL(), "k")
	require.NoError(t, err)
	users, res, err := c.ListAccounts(context.Background(), "demo")
	require.NoError(t, err)
	assert.Equal(t, []string{"zed", "amy", "bob"}, users)
	assert.True(t, res.OK())
	assert.Equal(t, []string{"GET /v1/app/demo/account"}, fake.Calls())
}

func TestListAccounts_SuccessKeyIsCaseSensitive(t *testing.T) {
	for _, body := range []string{
		`{"success":{"alice":{}},"Success":null}`,
		`{"SUCCESS":null,"success":{"alice":{}}}`,
		`{"Success":{"mallory":{}},"success":{"alice":{}}}`,
	} {
		fake := testutil.NewFakeCloudMine()
		fake.SetListing(body)

		c, err := NewClient(fake.URL(), "k")
		require.NoError(t, err)
		users, _, err := c.ListAccounts(context.Background(), "demo")
		require.NoError(t, err, "body %q", body)
		assert.Equal(t, []string{"alice"}, users, "body %q", body)
		fake.Close()
	}
}

func TestListAccounts_MissingSuccessIsParseError(t *testing.T) {
	for _, body := range []string{`{"errors":["nope"]}`, `{"success":[]}`, `{"success":null}`, `{"Success":{"alice":{}}}`, `[]`, ``} {
		fake := testutil.NewFakeCloudMine()
		fake.SetListing(body)

		c, err := NewClient(fake.URL(), "k")
		require.NoError(t, err)
		_, _, err = c.ListAccounts(context.Background(), "demo")
		assert.ErrorIs(t, err, ErrResponseParse, "body %q", body)
		fake.Close()
	}
}

func TestObserverSeesEveryCall(t *testing.T) {
	fake := testutil.NewFakeCloudMine()
	defer fake.Close()
	fake.Reply(http.MethodDelete, "/v1/app/a/account/x", http.StatusNotFound, "")

	var mu sync.Mutex
	var calls []Call
	c, err := NewClient(fake.URL(), "k", WithObserver(func(call Call) {
		mu.Lock()
		defer mu.Unlock()
		calls = append(calls, call)
	}))
	require.NoError(t, err)

	_, _ = c.DeleteAccount(context.Background(), "a", "x")
	_, _ = c.DeleteUserData(context.Background(), "a", "x")

	require.Len(t, calls, 2)
	assert.Equal(t, "delete-account", calls[0].Op)
	assert.Equal(t, http.StatusNotFound, calls[0].StatusCode)
	assert.ErrorIs(t, calls[0].Err, ErrRemoteFailure)
	assert.Equal(t, "delete-user-data", calls[1].Op)
	assert.NoError(t, calls[1].Err)
	assert.NotContains(t, calls[1].URL, "k@")
}

func TestErrorMessageNeverContainsMasterKey(t *testing.T) {
	fake := testutil.NewFakeCloudMine()
	defer fake.Close()
	fake.Reply(http.MethodDelete, "/v1/app/a/data?all=true", http.StatusForbidden, "")

	c, err := NewClient(fake.URL(), "s3cr3t-master")
	require.NoError(t, err)
	_, err = c.DeleteAppData(context.Background(), "a")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "s3cr3t-master")
}

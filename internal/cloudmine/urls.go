// Copyright (c) 2026 CloudMine Team
// cmpurge - bulk deletion tool for CloudMine applications
// This source code is licensed under the MIT license found in the LICENSE file.

package cloudmine

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// NormalizeBaseURL accepts "https://host/", "http://host:8080" or a bare
// "host". A bare host gets https://; a missing trailing slash is added. The
// scheme is never changed otherwise.
func NormalizeBaseURL(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", errors.New("empty base url")
	}
	if !strings.Contains(s, "://") {
		s = "https://" + s
	}
	u, err := url.Parse(s)
	if err != nil {
		return "", fmt.Errorf("invalid base url %q: %w", raw, err)
	}
	switch u.Scheme {
	case "http", "https":
	default:
		return "", fmt.Errorf("unsupported scheme %q in base url", u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("base url %q has no host", raw)
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return "", fmt.Errorf("base url %q must not carry a query or fragment", raw)
	}
	if !strings.HasSuffix(s, "/") {
		s += "/"
	}
	return s, nil
}

// UsesTLS reports whether a request to baseURL uses TLS.
func UsesTLS(baseURL string) bool {
	return strings.HasPrefix(baseURL, "https")
}

// AppDataURL is the target of the application-wide data wipe.
func AppDataURL(base, appID string) string {
	return base + "v1/app/" + url.PathEscape(appID) + "/data?all=true"
}

// AccountsURL lists all accounts of the application.
func AccountsURL(base, appID string) string {
	return base + "v1/app/" + url.PathEscape(appID) + "/account"
}

// AccountURL addresses a single account.
func AccountURL(base, appID, username string) string {
	return AccountsURL(base, appID) + "/" + url.PathEscape(username)
}

// UserDataURL addresses all private data of a single user.
func UserDataURL(base, appID, username string) string {
	return base + "v1/app/" + url.PathEscape(appID) + "/user/" + url.PathEscape(username) + "/data?all=true"
}

// listingUsernames returns the keys of the "success" object in document
// order. Values are skipped without being decoded into any schema. The key
// match is exact: "Success" or "SUCCESS" are ignored like any other member.
func listingUsernames(raw []byte) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errors.New("listing is not a JSON object")
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, _ := tok.(string)
		if key != "success" {
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return nil, err
			}
			continue
		}
		return objectKeys(dec)
	}
	return nil, errors.New(`response has no "success" object`)
}

func objectKeys(dec *json.Decoder) ([]string, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errors.New(`"success" is not an object`)
	}
	keys := []string{}
	seen := make(map[string]struct{})
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v in listing", tok)
		}
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, err
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}
	return keys, nil
}

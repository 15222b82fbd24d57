// Copyright (c) 2026 CloudMine Team
// cmpurge - bulk deletion tool for CloudMine applications
// This source code is licensed under the MIT license found in the LICENSE file.

package cloudmine

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Result is a decoded API response. Several delete endpoints answer with an
// empty body on success; that decodes to Empty == true rather than an error.
type Result struct {
	StatusCode int
	Empty      bool
	// Raw is the trimmed response body.
	Raw json.RawMessage
	// Body is set when the response is a JSON object.
	Body map[string]any
}

// OK reports a 2xx status.
func (r *Result) OK() bool {
	return r != nil && r.StatusCode >= 200 && r.StatusCode < 300
}

// String renders the body for console output; an empty result renders as "".
func (r *Result) String() string {
	if r == nil || r.Empty {
		return ""
	}
	return string(r.Raw)
}

// decodeResult turns a response body into a Result. Whitespace-only bodies
// are empty results. Non-object JSON is accepted and kept in Raw.
func decodeResult(status int, body []byte) (*Result, error) {
	trimmed := bytes.TrimSpace(body)
	res := &Result{StatusCode: status}
	if len(trimmed) == 0 {
		res.Empty = true
		return res, nil
	}
	if !json.Valid(trimmed) {
		return res, fmt.Errorf("%d byte body is not valid JSON", len(trimmed))
	}
	res.Raw = json.RawMessage(trimmed)
	if trimmed[0] == '{' {
		if err := json.Unmarshal(trimmed, &res.Body); err != nil {
			return res, err
		}
	}
	return res, nil
}

package client

import (
	"encoding/json"
	"fmt"

	"github.com/scribedesk/scribe/pkg/domain"
)

// Payload holds the backend fields the client knows by name. Every field is
// optional; which ones are set depends on the route.
type Payload struct {
	ErrorType           domain.ErrorType `json:"errorType,omitempty"`
	Transcript          string           `json:"transcript,omitempty"`
	JobID               *int             `json:"jobId,omitempty"`
	JobIDs              []int            `json:"jobIds,omitempty"`
	Jobs                []domain.Job     `json:"jobs,omitempty"`
	AllowedEmailDomains []string         `json:"allowedEmailDomains,omitempty"`
	Email               string           `json:"email,omitempty"`
	IsAdmin             *bool            `json:"isAdmin,omitempty"`
	Activated           *bool            `json:"activated,omitempty"`
	AccessToken         string           `json:"accessToken,omitempty"`
}

// Response is the normalized result of every backend call. Failures of any
// kind are reported here with OK false; calls never return an error.
type Response struct {
	OK     bool   `json:"ok"`
	Status int    `json:"status"`
	Msg    string `json:"msg"`
	Payload

	// Fields is the backend's JSON object verbatim, including fields the
	// client has no name for.
	Fields map[string]json.RawMessage `json:"-"`

	// Incomplete is set when no usable response was obtained. Status is
	// then 404 although the backend never said so.
	Incomplete bool `json:"-"`
}

// Messages produced by the client itself.
const (
	msgNotLoggedIn  = "not logged in"
	msgTooLarge     = "Submitted file is too large. Please only submit files that are smaller than 1GB."
	msgNotJSON      = "Response not in JSON format. HTTP status code %d"
	msgMissingMsg   = "msg field missing from response json object. HTTP status code %d"
	msgSignatureBad = "Signature verification failed"
)

// statusNoResponse is reported when the request never completed.
const statusNoResponse = 404

func failedResponse(err error) *Response {
	return &Response{Status: statusNoResponse, Msg: err.Error(), Incomplete: true}
}

func notLoggedInResponse() *Response {
	return &Response{Status: 401, Msg: msgNotLoggedIn}
}

// decodeJSONResponse turns a JSON body into a Response. A body without a
// msg field (or with msg null) is an error response. Typed payload fields
// that fail to decode are left zero; Fields still carries them verbatim.
func decodeJSONResponse(body []byte, status int, ok bool) (*Response, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		if !json.Valid(body) {
			return nil, fmt.Errorf("decode response: %w", err)
		}
		// valid JSON, but not an object
		fields = nil
	}

	rawMsg, present := fields["msg"]
	if !present || string(rawMsg) == "null" {
		return &Response{Status: status, Msg: fmt.Sprintf(msgMissingMsg, status)}, nil
	}

	r := &Response{OK: ok, Status: status, Fields: fields}
	if err := json.Unmarshal(rawMsg, &r.Msg); err != nil {
		r.Msg = string(rawMsg)
	}
	if err := json.Unmarshal(body, &r.Payload); err != nil {
		return r, err
	}
	return r, nil
}

// Err returns nil for a successful response and an *HTTPError otherwise.
func (r *Response) Err() error {
	if r == nil {
		return &HTTPError{StatusCode: statusNoResponse, Message: "no response", Incomplete: true}
	}
	if r.OK {
		return nil
	}
	return &HTTPError{StatusCode: r.Status, Message: r.Msg, ErrorType: r.ErrorType, Incomplete: r.Incomplete}
}

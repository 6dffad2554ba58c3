package backend

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrTransport marks failures where no usable response came back: the
// request could not be sent, or the body could not be read or decoded.
var ErrTransport = errors.New("backend unreachable")

// APIError is a non-2xx response. Detail holds the server-provided message
// when the body carried one.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("backend returned %d: %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("backend returned %d", e.Status)
}

// Detail returns the server message carried by err, if any.
func Detail(err error) (string, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail, true
	}
	return "", false
}

type errorBody struct {
	Detail json.RawMessage `json:"detail"`
	Errors []struct {
		Msg string `json:"msg"`
	} `json:"errors"`
}

// parseDetail extracts a message from an error body. It accepts
// {"detail":"..."}, {"detail":[{"msg":"..."}]} and {"errors":[{"msg":"..."}]}.
func parseDetail(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return ""
	}
	if len(eb.Detail) > 0 {
		var s string
		if err := json.Unmarshal(eb.Detail, &s); err == nil && s != "" {
			return s
		}
		var list []struct {
			Msg string `json:"msg"`
		}
		if err := json.Unmarshal(eb.Detail, &list); err == nil && len(list) > 0 && list[0].Msg != "" {
			return list[0].Msg
		}
	}
	if len(eb.Errors) > 0 {
		return eb.Errors[0].Msg
	}
	return ""
}

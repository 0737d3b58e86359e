package types

import (
	"fmt"
	"strconv"
)

// TransportError is a network or HTTP level failure talking to an upstream API
type TransportError struct {
	Op     string
	URL    string
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	msg := e.Op + " " + e.URL + " failed"
	if e.Status != 0 {
		msg += " (HTTP " + strconv.Itoa(e.Status) + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// APIError is a well-formed error payload returned by an upstream API.
// Aggregations treat it exactly like a TransportError.
type APIError struct {
	Source  string
	Code    int
	Message string
}

func (e *APIError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("%s api error %d: %s", e.Source, e.Code, e.Message)
	}
	return fmt.Sprintf("%s api error: %s", e.Source, e.Message)
}

// LookupError is a per-item price lookup failure. It is recorded on the
// cache item and never propagated.
type LookupError struct {
	ItemID int64
	Err    error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("price lookup for item %d: %v", e.ItemID, e.Err)
}

func (e *LookupError) Unwrap() error {
	return e.Err
}

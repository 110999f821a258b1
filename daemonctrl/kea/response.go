package keactrl

import (
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
)

// Result code of the Kea response. The codes are defined in
// src/lib/cc/command_interpreter.h in the Kea sources.
type ResponseResult int

const (
	ResponseSuccess ResponseResult = 0
	ResponseError   ResponseResult = 1
	// The command is not supported, e.g., the hook library providing it
	// is not loaded.
	ResponseCommandUnsupported ResponseResult = 2
	// The command succeeded but found nothing.
	ResponseEmpty ResponseResult = 3
	// The arguments conflict with the server state.
	ResponseConflict ResponseResult = 4
)

// Result and text present in every Kea response.
type ResponseHeader struct {
	Result ResponseResult `json:"result"`
	Text   string         `json:"text"`
}

func (h ResponseHeader) GetResult() ResponseResult {
	return h.Result
}

func (h ResponseHeader) GetText() string {
	return h.Text
}

// Returns the error corresponding to the result code. The success and the
// empty results are not errors.
func (h ResponseHeader) GetError() error {
	base := KeaError{result: h.Result, text: h.Text}
	switch h.Result {
	case ResponseSuccess, ResponseEmpty:
		return nil
	case ResponseCommandUnsupported:
		return errors.WithStack(UnsupportedOperationKeaError{base})
	case ResponseConflict:
		return errors.WithStack(ConflictKeaError{base})
	default:
		return errors.WithStack(base)
	}
}

// Kea response with the raw arguments. They are decoded by the caller
// knowing the command.
type Response struct {
	ResponseHeader
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

func (r Response) GetArguments() json.RawMessage {
	return r.Arguments
}

// Decodes the arguments into the value. A response without arguments
// leaves the value untouched.
func (r Response) DecodeArguments(value any) error {
	if len(r.Arguments) == 0 {
		return nil
	}
	return errors.Wrap(json.Unmarshal(r.Arguments, value), "failed to parse the arguments of the Kea response")
}

// Parses the Kea response. The Control Agent returns a single-element
// array while the daemons return a bare object.
func ParseResponse(data []byte) (*Response, error) {
	var responses []json.RawMessage
	if err := json.Unmarshal(data, &responses); err == nil {
		if len(responses) != 1 {
			return nil, errors.Errorf("invalid number of responses received, got: %d, expected: 1", len(responses))
		}
		data = responses[0]
	}
	response := &Response{}
	if err := json.Unmarshal(data, response); err != nil {
		return nil, errors.Wrapf(err, "failed to parse the Kea response: %s", data)
	}
	return response, nil
}

// Error result returned by Kea.
type KeaError struct {
	result ResponseResult
	text   string
}

func (e KeaError) Error() string {
	message := fmt.Sprintf("non-success response result from Kea: %d", e.result)
	if e.text != "" {
		message += ", text: " + e.text
	}
	return message
}

func (e KeaError) GetResult() ResponseResult {
	return e.result
}

// Kea doesn't support the command.
type UnsupportedOperationKeaError struct {
	KeaError
}

// The command conflicts with the server state.
type ConflictKeaError struct {
	KeaError
}

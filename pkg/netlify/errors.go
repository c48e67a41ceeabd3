package netlify

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Limit how much of an error response is read into memory.
const errorBodyLimit = 64 * 1024

// SubmissionError is returned when a deployment could not be submitted,
// either because the provider answered with a non-success status or because
// no answer was received at all. In the latter case StatusCode is zero.
type SubmissionError struct {
	StatusCode int
	Status     string
	Message    string
	Err        error
}

func (e *SubmissionError) Error() string {
	return "submit deployment: " + describe(e.StatusCode, e.Status, e.Message, e.Err)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// StatusQueryError is returned when the status of a deployment could not be read.
type StatusQueryError struct {
	StatusCode int
	Status     string
	Message    string
	Err        error
}

func (e *StatusQueryError) Error() string {
	return "get deployment status: " + describe(e.StatusCode, e.Status, e.Message, e.Err)
}

func (e *StatusQueryError) Unwrap() error {
	return e.Err
}

func describe(statusCode int, status, message string, err error) string {
	if statusCode == 0 {
		return err.Error()
	}
	msg := fmt.Sprintf("Netlify API error: %s", status)
	if len(message) > 0 {
		msg += ": " + message
	}
	if err != nil {
		msg += ": " + err.Error()
	}
	return msg
}

// errorMessage extracts the human readable message from an error response, if any.
func errorMessage(resp *http.Response) string {
	body := struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	}{}
	data, err := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
	if err != nil {
		return ""
	}
	if json.Unmarshal(data, &body) != nil {
		return ""
	}
	return body.Message
}

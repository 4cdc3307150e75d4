package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/Kerhoff/todoapi/internal/repository"
)

// maxBodyBytes bounds request bodies read by the create handler.
const maxBodyBytes = 1 << 20

// errBodyTooLarge is returned when a request body exceeds maxBodyBytes.
var errBodyTooLarge = errors.New("request body too large")

type validationDetail struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

func validationBody(err *repository.ValidationError) map[string][]validationDetail {
	return map[string][]validationDetail{
		"detail": {{Loc: err.Loc, Msg: err.Msg, Type: err.Type}},
	}
}

// decodeCreateTodo extracts the required string field "content" from the
// request body. Unknown fields are ignored. Bodies over maxBodyBytes fail
// with errBodyTooLarge.
func decodeCreateTodo(w http.ResponseWriter, r *http.Request) (string, error) {
	if r.Body == nil {
		return "", repository.NewValidationError("field required", repository.ErrTypeMissing, "body")
	}
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return "", fmt.Errorf("%w: limit is %d bytes", errBodyTooLarge, tooLarge.Limit)
		}
		return "", fmt.Errorf("failed to read request body: %w", err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return "", repository.NewValidationError("field required", repository.ErrTypeMissing, "body")
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return "", repository.NewValidationError("value is not a valid dict", repository.ErrTypeDict, "body")
		}
		return "", repository.NewValidationError(err.Error(), repository.ErrTypeJSONDecode, "body")
	}
	if fields == nil {
		// The body was the literal null.
		return "", repository.NewValidationError("field required", repository.ErrTypeMissing, "body")
	}

	value, ok := fields["content"]
	if !ok {
		return "", repository.NewValidationError("field required", repository.ErrTypeMissing, "body", "content")
	}
	if string(bytes.TrimSpace(value)) == "null" {
		return "", repository.NewValidationError("none is not an allowed value", repository.ErrTypeNone, "body", "content")
	}

	var content string
	if err := json.Unmarshal(value, &content); err != nil {
		return "", repository.NewValidationError("str type expected", repository.ErrTypeString, "body", "content")
	}
	return content, nil
}

// pathID extracts the {id} path value and converts it to int64.
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		return 0, repository.NewValidationError("value is not a valid integer", repository.ErrTypeInteger, "path", "id")
	}
	return id, nil
}

// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"

	"github.com/joinportal/intake/internal/service"
)

// SubmitApplicationRequest is the join form payload. Fields are kept raw so
// that a value of the wrong JSON type fails that field's rule instead of
// failing the whole body.
type SubmitApplicationRequest struct {
	Name        json.RawMessage `json:"name"`
	Email       json.RawMessage `json:"email"`
	Phone       json.RawMessage `json:"phone"`
	Age         json.RawMessage `json:"age"`
	Governorate json.RawMessage `json:"governorate"`
	Education   json.RawMessage `json:"education"`
	Experience  json.RawMessage `json:"experience,omitempty"`
	Motivation  json.RawMessage `json:"motivation"`
}

// ErrNullBody is returned when the request body is the JSON literal null.
var ErrNullBody = errors.New("request body is null")

// UnmarshalJSON matches object keys exactly, unlike the default decoder
// which folds case. A JSON value that is not an object leaves every field
// absent, so the request fails validation on the first field.
func (r *SubmitApplicationRequest) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return ErrNullBody
	}
	*r = SubmitApplicationRequest{}
	if len(data) == 0 || data[0] != '{' {
		return nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	r.Name = fields["name"]
	r.Email = fields["email"]
	r.Phone = fields["phone"]
	r.Age = fields["age"]
	r.Governorate = fields["governorate"]
	r.Education = fields["education"]
	r.Experience = fields["experience"]
	r.Motivation = fields["motivation"]
	return nil
}

// SubmitApplicationResponse is returned for an accepted application.
type SubmitApplicationResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
}

// ToInput converts the raw payload to service input.
// Non-string text fields become empty (and fail validation); a non-string
// experience is treated as absent.
func (r *SubmitApplicationRequest) ToInput() service.SubmitApplicationInput {
	in := service.SubmitApplicationInput{
		Name:        rawString(r.Name),
		Email:       rawString(r.Email),
		Phone:       rawString(r.Phone),
		Age:         rawAge(r.Age),
		Governorate: rawString(r.Governorate),
		Education:   rawString(r.Education),
		Motivation:  rawString(r.Motivation),
	}

	if s, ok := asString(r.Experience); ok {
		in.Experience = &s
	}

	return in
}

func rawString(raw json.RawMessage) string {
	s, _ := asString(raw)
	return s
}

func asString(raw json.RawMessage) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// rawAge returns the textual form of a submitted age. Strings pass through;
// numbers are truncated toward zero. Other JSON types yield "".
func rawAge(raw json.RawMessage) string {
	if s, ok := asString(raw); ok {
		return s
	}

	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return ""
	}
	if i, err := n.Int64(); err == nil {
		return strconv.FormatInt(i, 10)
	}
	f, err := n.Float64()
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) || math.Abs(f) > math.MaxInt32 {
		return ""
	}
	return strconv.FormatInt(int64(math.Trunc(f)), 10)
}

// Package inputval validates request payloads before they reach the stores.
//
// Structs declare their rules in a `validate` tag and an optional `label`
// tag used in messages:
//
//	type registerInput struct {
//		Email    string `validate:"required,email" label:"Email"`
//		Password string `validate:"required,min=8" label:"Password"`
//	}
//
// Supported rules: required, min=N, max=N (rune counts), email, objectid.
// Only string fields are checked.
package inputval

import (
	"fmt"
	"net/mail"
	"reflect"
	"strconv"
	"strings"
	"unicode/utf8"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FieldError is one failed rule.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Result collects every failure for one payload, in field order.
type Result struct {
	Errors []FieldError
}

func (r *Result) HasErrors() bool { return len(r.Errors) > 0 }

// First returns the first message, or "".
func (r *Result) First() string {
	if len(r.Errors) == 0 {
		return ""
	}
	return r.Errors[0].Message
}

// All joins every message with "; ".
func (r *Result) All() string {
	msgs := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		msgs[i] = e.Message
	}
	return strings.Join(msgs, "; ")
}

// Validate checks v (a struct or pointer to struct) against its tags. Each
// field reports at most one error: the first rule it fails.
func Validate(v any) *Result {
	res := &Result{}
	rv := reflect.Indirect(reflect.ValueOf(v))
	if rv.Kind() != reflect.Struct {
		return res
	}
	rt := rv.Type()

	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		tag := f.Tag.Get("validate")
		if tag == "" || f.Type.Kind() != reflect.String {
			continue
		}
		label := f.Tag.Get("label")
		if label == "" {
			label = f.Name
		}
		if msg := check(rv.Field(i).String(), label, strings.Split(tag, ",")); msg != "" {
			res.Errors = append(res.Errors, FieldError{Field: jsonName(f), Message: msg})
		}
	}
	return res
}

func check(val, label string, rules []string) string {
	trimmed := strings.TrimSpace(val)
	for _, rule := range rules {
		name, arg, _ := strings.Cut(rule, "=")
		switch name {
		case "required":
			if trimmed == "" {
				return label + " is required."
			}
		case "min":
			n, _ := strconv.Atoi(arg)
			if trimmed != "" && utf8.RuneCountInString(val) < n {
				return fmt.Sprintf("%s must be at least %d characters.", label, n)
			}
		case "max":
			n, _ := strconv.Atoi(arg)
			if utf8.RuneCountInString(val) > n {
				return fmt.Sprintf("%s must be at most %d characters.", label, n)
			}
		case "email":
			if trimmed != "" && !IsValidEmail(trimmed) {
				return "A valid email address is required."
			}
		case "objectid":
			if trimmed != "" && !IsValidObjectID(trimmed) {
				return label + " is not a valid id."
			}
		}
	}
	return ""
}

func jsonName(f reflect.StructField) string {
	if tag := f.Tag.Get("json"); tag != "" {
		if name, _, _ := strings.Cut(tag, ","); name != "" && name != "-" {
			return name
		}
	}
	return f.Name
}

// IsValidEmail accepts a bare RFC 5322 addr-spec. Display-name forms,
// whitespace and misplaced dots are rejected. Single-label domains such as
// "localhost" are allowed.
func IsValidEmail(s string) bool {
	if s == "" || strings.ContainsAny(s, " \t\r\n") {
		return false
	}
	at := strings.LastIndex(s, "@")
	if at <= 0 || at == len(s)-1 {
		return false
	}
	for _, part := range []string{s[:at], s[at+1:]} {
		if strings.HasPrefix(part, ".") || strings.HasSuffix(part, ".") || strings.Contains(part, "..") {
			return false
		}
	}
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}

// IsValidObjectID reports whether s is a 24-character hex ObjectID.
func IsValidObjectID(s string) bool {
	_, err := primitive.ObjectIDFromHex(s)
	return err == nil
}

package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("maxbytes", maxBytes)
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// maxBytes limits the byte length of a string, where max counts runes.
func maxBytes(fl validator.FieldLevel) bool {
	n, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return len(fl.Field().String()) <= n
}

// fieldMessage renders a failed rule the way clients of this API expect,
// e.g. "The email field must be a valid email address.".
func fieldMessage(field, tag, param string) string {
	label := strings.ReplaceAll(field, "_", " ")
	switch tag {
	case "required":
		return fmt.Sprintf("The %s field is required.", label)
	case "email":
		return fmt.Sprintf("The %s field must be a valid email address.", label)
	case "max":
		return fmt.Sprintf("The %s field must not be greater than %s characters.", label, param)
	case "maxbytes":
		return fmt.Sprintf("The %s field must not be greater than %s bytes.", label, param)
	case "min":
		return fmt.Sprintf("The %s field must be at least %s characters.", label, param)
	default:
		return fmt.Sprintf("The %s field is invalid.", label)
	}
}

type fieldErrors map[string][]string

func (fe fieldErrors) add(field, msg string) {
	fe[field] = append(fe[field], msg)
}

func (fe fieldErrors) addValidation(field string, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		fe.add(field, fmt.Sprintf("The %s field is invalid.", field))
		return
	}
	for _, e := range verrs {
		name := field
		if name == "" {
			name = e.Field()
		}
		fe.add(name, fieldMessage(name, e.Tag(), e.Param()))
	}
}

// validateStruct runs the `validate` tags of v and returns nil when v is valid.
func validateStruct(v any) fieldErrors {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	fe := fieldErrors{}
	fe.addValidation("", err)
	return fe
}

// validateVar checks a single value against tag and records failures under field.
func validateVar(fe fieldErrors, field string, value any, tag string) {
	if err := validate.Var(value, tag); err != nil {
		fe.addValidation(field, err)
	}
}

// decodeJSON reads the request body into dst. An empty body decodes as {}.
// Unknown fields are ignored.
func decodeJSON(r *http.Request, dst any) error {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	return json.Unmarshal(body, dst)
}

// bodyErrors describes why a request body could not be decoded.
func bodyErrors(err error) fieldErrors {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return fieldErrors{"body": {fmt.Sprintf("The request body must not be greater than %d bytes.", tooLarge.Limit)}}
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return fieldErrors{typeErr.Field: {fmt.Sprintf("The %s field must be a %s.", strings.ReplaceAll(typeErr.Field, "_", " "), typeName(typeErr.Type))}}
	}
	return fieldErrors{"body": {"The request body must be a valid JSON object."}}
}

func typeName(t reflect.Type) string {
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Int, reflect.Int64, reflect.Float64:
		return "number"
	default:
		return "valid value"
	}
}

// optionalString tells an absent JSON key from an explicit null.
type optionalString struct {
	Set   bool
	Value *string
}

func (o *optionalString) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(bytes.TrimSpace(b)) == "null" {
		o.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}

// nullableTrimmed trims s and turns an empty result into nil.
func nullableTrimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

package validation

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/deppfellow/gpthub/internal/errs"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// BindAndValidate fills payload from the request and validates it.
//
// Flow:
//  1. path and query parameters are copied into fields tagged `param` / `query`
//  2. for requests with a body, the body must be a JSON object; each field
//     tagged `json` is decoded on its own, unknown keys are dropped
//  3. payload.Validate() runs the tag rules on whatever decoded cleanly
//
// All problems are returned together as one 400 errs.HTTPError, ordered like
// the struct fields. payload must be a pointer to a struct.
func BindAndValidate(c echo.Context, payload Validatable) error {
	target := reflect.ValueOf(payload)
	if target.Kind() != reflect.Pointer || target.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("validation: payload must be a pointer to struct, got %T", payload)
	}

	decodeErrors := bindParams(c, target.Elem())

	if hasBody(c.Request()) {
		fieldErrors, err := bindBody(c.Request().Body, target.Elem())
		if err != nil {
			return err
		}
		decodeErrors = append(decodeErrors, fieldErrors...)
	}

	fieldErrors := mergeErrors(target.Elem().Type(), decodeErrors, validateStruct(payload))
	if len(fieldErrors) > 0 {
		return errs.ValidationError(fieldErrors)
	}

	return nil
}

func hasBody(r *http.Request) bool {
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return true
	default:
		return false
	}
}

func bindParams(c echo.Context, v reflect.Value) []errs.FieldError {
	var fieldErrors []errs.FieldError

	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)

		var raw string
		switch {
		case sf.Tag.Get("param") != "":
			raw = c.Param(sf.Tag.Get("param"))
		case sf.Tag.Get("query") != "":
			raw = c.QueryParam(sf.Tag.Get("query"))
		default:
			continue
		}

		if raw == "" {
			continue
		}

		if err := setFromString(v.Field(i), raw); err != nil {
			fieldErrors = append(fieldErrors, typeError(fieldName(sf), sf.Type))
		}
	}

	return fieldErrors
}

func setFromString(field reflect.Value, raw string) error {
	if field.Kind() == reflect.Pointer {
		ptr := reflect.New(field.Type().Elem())
		if err := setFromString(ptr.Elem(), raw); err != nil {
			return err
		}
		field.Set(ptr)
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(raw)
	case reflect.Int, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetInt(n)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return err
		}
		field.SetBool(b)
	default:
		return fmt.Errorf("unsupported parameter kind %s", field.Kind())
	}
	return nil
}

// bindBody decodes a JSON object body into the json-tagged fields of v.
// A failure to read the body is returned as error; everything the client got
// wrong comes back as field errors.
func bindBody(body io.Reader, v reflect.Value) ([]errs.FieldError, error) {
	if body == nil {
		return nil, nil
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, errs.NewBadRequestError("Could not read request body", nil, nil)
	}

	if strings.TrimSpace(string(data)) == "" {
		data = []byte("{}")
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
		return []errs.FieldError{{
			Field: "body",
			Code:  "invalid_type",
			Error: "must be a JSON object",
		}}, nil
	}

	var fieldErrors []errs.FieldError

	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)

		name := strings.SplitN(sf.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			continue
		}

		raw, ok := fields[name]
		if !ok || string(raw) == "null" {
			continue
		}

		// Decode into a fresh value so a half-decoded array never leaks through.
		decoded := reflect.New(sf.Type)
		if err := json.Unmarshal(raw, decoded.Interface()); err != nil {
			fieldErrors = append(fieldErrors, typeError(name, sf.Type))
			continue
		}
		v.Field(i).Set(decoded.Elem())
	}

	return fieldErrors, nil
}

func typeError(name string, t reflect.Type) errs.FieldError {
	return errs.FieldError{
		Field: name,
		Code:  "invalid_type",
		Error: "must be " + describeType(t),
	}
}

func describeType(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	switch t.Kind() {
	case reflect.String:
		return "a string"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "an integer"
	case reflect.Float32, reflect.Float64:
		return "a number"
	case reflect.Bool:
		return "a boolean"
	case reflect.Slice, reflect.Array:
		if t.Elem().Kind() == reflect.String {
			return "an array of strings"
		}
		return "an array"
	default:
		return "an object"
	}
}

// validateStruct calls v.Validate() and extracts field errors if validation fails.
func validateStruct(v Validatable) []errs.FieldError {
	if err := v.Validate(); err != nil {
		return extractValidationErrors(err)
	}
	return nil
}

func extractValidationErrors(err error) []errs.FieldError {
	var fieldErrors []errs.FieldError

	switch e := err.(type) {
	case CustomValidationErrors:
		for _, ce := range e {
			fieldErrors = append(fieldErrors, errs.FieldError{
				Field: ce.Field,
				Code:  ce.Code,
				Error: ce.Message,
			})
		}
	case validator.ValidationErrors:
		for _, fe := range e {
			fieldErrors = append(fieldErrors, errs.FieldError{
				Field: fe.Field(),
				Code:  fe.Tag(),
				Error: describeRule(fe),
			})
		}
	default:
		fieldErrors = append(fieldErrors, errs.FieldError{
			Field: "body",
			Code:  "invalid",
			Error: err.Error(),
		})
	}

	return fieldErrors
}

func describeRule(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"

	case "notblank":
		return "must not be blank"

	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain at least %s items", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())

	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must not exceed %s characters", fe.Param())
		}
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must not contain more than %s items", fe.Param())
		}
		return fmt.Sprintf("must not exceed %s", fe.Param())

	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())

	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())

	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())

	case "email":
		return "must be a valid email address"

	case "url", "http_url":
		return "must be a valid URL"

	case "slug":
		return "must contain only lowercase letters, digits and single dashes"

	case "alphanum":
		return "must contain only letters and digits"

	default:
		if fe.Param() != "" {
			return fmt.Sprintf("failed %s:%s", fe.Tag(), fe.Param())
		}
		return fmt.Sprintf("failed %s", fe.Tag())
	}
}

// mergeErrors drops rule errors for fields that already failed to decode
// (their zero value would only add a misleading "is required") and orders the
// result by struct field position.
func mergeErrors(t reflect.Type, decodeErrors, ruleErrors []errs.FieldError) []errs.FieldError {
	failed := make(map[string]bool, len(decodeErrors))
	for _, fe := range decodeErrors {
		failed[rootField(fe.Field)] = true
	}

	merged := append([]errs.FieldError{}, decodeErrors...)
	for _, fe := range ruleErrors {
		if failed[rootField(fe.Field)] {
			continue
		}
		merged = append(merged, fe)
	}

	position := make(map[string]int, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		position[fieldName(t.Field(i))] = i
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return fieldPosition(position, merged[i].Field) < fieldPosition(position, merged[j].Field)
	})

	return merged
}

func fieldPosition(position map[string]int, field string) int {
	if p, ok := position[rootField(field)]; ok {
		return p
	}
	return -1
}

// rootField turns "promptExamples[2]" into "promptExamples".
func rootField(field string) string {
	if i := strings.IndexByte(field, '['); i >= 0 {
		return field[:i]
	}
	return field
}

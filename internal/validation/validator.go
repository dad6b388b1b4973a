// Package validation checks request data against its insertable contract.
//
// A request type declares the fields a client may send (json, param and
// query tags) and the rules they must satisfy (go-playground/validator
// tags). BindAndValidate decodes the request field by field so wrong types,
// missing values and malformed formats all come back as per-field errors.
package validation

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validatable is implemented by request payload types.
//
// Implementations usually just return Struct(req); custom rules return
// CustomValidationErrors.
type Validatable interface {
	Validate() error
}

// CustomValidationError is a rule that cannot be expressed with a tag.
type CustomValidationError struct {
	Field   string
	Code    string
	Message string
}

// CustomValidationErrors satisfies error so Validate can return it.
type CustomValidationErrors []CustomValidationError

func (c CustomValidationErrors) Error() string {
	return "Validation failed"
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields under the name the client used.
	v.RegisterTagNameFunc(fieldName)

	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugRegex.MatchString(fl.Field().String())
	})

	return v
}

// slugRegex accepts lowercase words joined by single dashes.
var slugRegex = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Struct runs the tag rules of v using the shared validator.
func Struct(v any) error {
	return validate.Struct(v)
}

// fieldName picks json, then param, then query tag, then the Go name.
func fieldName(fld reflect.StructField) string {
	if name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]; name != "" && name != "-" {
		return name
	}
	if name := fld.Tag.Get("param"); name != "" {
		return name
	}
	if name := fld.Tag.Get("query"); name != "" {
		return name
	}
	return fld.Name
}

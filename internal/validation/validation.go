// Package validation holds the request payload schemas and the shared
// validator instance that enforces them.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/nikhilbhutani/agencyhub/internal/apperr"
	"github.com/nikhilbhutani/agencyhub/internal/models"
)

var (
	ymdPattern   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	phonePattern = regexp.MustCompile(`^\+?[0-9 ().\-]{7,20}$`)

	ErrDateFormat   = errors.New("must use the YYYY-MM-DD format")
	ErrCalendarDate = errors.New("is not a real calendar date")
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	mustRegister(v, "ymd", func(fl validator.FieldLevel) bool {
		_, err := ParseDate(fl.Field().String())
		return err == nil
	})
	mustRegister(v, "phone", func(fl validator.FieldLevel) bool {
		return validPhone(fl.Field().String())
	})
	mustRegister(v, "compliance_type", func(fl validator.FieldLevel) bool {
		return models.ComplianceType(fl.Field().String()).Valid()
	})
	mustRegister(v, "not_future_year", func(fl validator.FieldLevel) bool {
		return fl.Field().Int() <= int64(time.Now().Year())
	})

	v.RegisterStructValidation(craftPayBand, CraftInput{})

	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s validation: %v", tag, err))
	}
}

func validPhone(s string) bool {
	if !phonePattern.MatchString(s) {
		return false
	}
	digits := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	return digits >= 7
}

// ParseDate accepts YYYY-MM-DD strings naming a real calendar day, so
// 2026-02-30 is rejected rather than normalised into March.
func ParseDate(s string) (time.Time, error) {
	if !ymdPattern.MatchString(s) {
		return time.Time{}, ErrDateFormat
	}
	y, _ := strconv.Atoi(s[0:4])
	m, _ := strconv.Atoi(s[5:7])
	d, _ := strconv.Atoi(s[8:10])

	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	if t.Year() != y || int(t.Month()) != m || t.Day() != d {
		return time.Time{}, ErrCalendarDate
	}
	return t, nil
}

// Struct validates v against its schema tags. Failures are VALIDATION_ERROR
// with one detail per field.
func Struct(v interface{}) *apperr.Error {
	details := check(v)
	if details == nil {
		return nil
	}
	return apperr.Validation("invalid request body", details...)
}

// Params is Struct for endpoints that report INVALID_PARAMS.
func Params(v interface{}) *apperr.Error {
	details := check(v)
	if details == nil {
		return nil
	}
	return apperr.InvalidParams("invalid parameters", details...)
}

func check(v interface{}) []apperr.FieldError {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []apperr.FieldError{{Field: "", Message: err.Error()}}
	}
	details := make([]apperr.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, apperr.FieldError{Field: fieldPath(fe), Message: message(fe)})
	}
	return details
}

func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func message(fe validator.FieldError) string {
	kind := fe.Kind()
	switch fe.Tag() {
	case "required", "required_if":
		return "is required"
	case "min":
		switch kind {
		case reflect.String:
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		case reflect.Slice, reflect.Array:
			return fmt.Sprintf("must contain at least %s items", fe.Param())
		}
		return "must be at least " + fe.Param()
	case "max":
		switch kind {
		case reflect.String:
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		case reflect.Slice, reflect.Array:
			return fmt.Sprintf("must contain at most %s items", fe.Param())
		}
		return "must be at most " + fe.Param()
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "uuid":
		return "must be a valid UUID"
	case "ymd":
		if _, err := ParseDate(stringValue(fe.Value())); err != nil {
			return err.Error()
		}
		return "must be a valid date"
	case "phone":
		return "must be a valid phone number"
	case "compliance_type":
		return "must be a known compliance type"
	case "not_future_year":
		return "cannot be in the future"
	case "pay_band":
		return "must be greater than or equal to pay_rate_min"
	}
	return "is invalid"
}

func stringValue(v interface{}) string {
	switch s := v.(type) {
	case string:
		return s
	case *string:
		if s != nil {
			return *s
		}
	}
	return ""
}

// DecodeJSON decodes a request body. Type mismatches become field details
// under the given code.
func DecodeJSON(r io.Reader, dst interface{}, code apperr.Code) *apperr.Error {
	err := json.NewDecoder(r).Decode(dst)
	if err == nil {
		return nil
	}

	mk := apperr.Validation
	if code == apperr.CodeInvalidParams {
		mk = apperr.InvalidParams
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return mk("invalid request body", apperr.FieldError{
			Field:   typeErr.Field,
			Message: "must be " + typeName(typeErr.Type),
		})
	}
	if errors.Is(err, io.EOF) {
		return mk("request body is required")
	}
	return mk("request body must be valid JSON")
}

func typeName(t reflect.Type) string {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Bool:
		return "a boolean"
	case reflect.String:
		return "a string"
	case reflect.Int, reflect.Int32, reflect.Int64, reflect.Float32, reflect.Float64:
		return "a number"
	case reflect.Slice, reflect.Array:
		return "an array"
	case reflect.Struct, reflect.Map:
		return "an object"
	}
	return "a valid " + t.String()
}

// Trim returns nil for blank strings and the trimmed value otherwise.
func Trim(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

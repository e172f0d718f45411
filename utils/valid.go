// utils/valid.go
package utils

import (
	"errors"
	"html"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var (
	emailRegex  = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	mobileRegex = regexp.MustCompile(`^\+?[0-9]{8,15}$`)
	mobileStrip = regexp.MustCompile(`[\s\-().]`)
)

// CustomValidator is a custom validator for Echo
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator returns the request validator with the service's custom tags registered
func NewValidator() *CustomValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// "mobile" accepts an optional leading + followed by 8-15 digits, separators allowed
	_ = v.RegisterValidation("mobile", func(fl validator.FieldLevel) bool {
		_, err := NormalizeMobile(fl.Field().String())
		return err == nil
	})
	// "maxbytes=N" bounds the UTF-8 encoded length, which is what bcrypt limits
	_ = v.RegisterValidation("maxbytes", func(fl validator.FieldLevel) bool {
		limit, err := strconv.Atoi(fl.Param())
		if err != nil {
			return false
		}
		return len(fl.Field().String()) <= limit
	})
	return &CustomValidator{validator: v}
}

// Validate validates the request body
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// SanitizeInput sanitizes user input to prevent XSS and injection attacks.
// Use it only for text rendered as HTML.
func SanitizeInput(input string) string {
	return html.EscapeString(CleanText(input))
}

// CleanText trims surrounding space and drops control characters, leaving
// the text otherwise as typed. Stored values go through this, not SanitizeInput.
func CleanText(input string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, strings.TrimSpace(input))
}

// SanitizeEmail sanitizes and validates an email address
func SanitizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !emailRegex.MatchString(email) {
		return "", errors.New("invalid email format")
	}
	return email, nil
}

// NormalizeMobile strips formatting characters so the same number always maps to the same key
func NormalizeMobile(mobile string) (string, error) {
	mobile = mobileStrip.ReplaceAllString(strings.TrimSpace(mobile), "")
	if !mobileRegex.MatchString(mobile) {
		return "", errors.New("invalid mobile number")
	}
	return mobile, nil
}

// ValidationMessage turns a validator error into a short user-facing message
func ValidationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid request body"
	}
	fe := verrs[0]
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return "Invalid email format"
	case "mobile":
		return "Invalid mobile number format"
	case "numeric":
		return field + " must contain digits only"
	case "min":
		return field + " must be at least " + fe.Param() + " characters long"
	case "max":
		return field + " must be at most " + fe.Param() + " characters long"
	case "maxbytes":
		return field + " must be at most " + fe.Param() + " bytes long"
	}
	return field + " is invalid"
}

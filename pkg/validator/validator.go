package validator

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// ErrWeakPassword is returned when a password fails the minimum policy
var ErrWeakPassword = errors.New("password must be at least 8 characters long")

// ValidateStruct validates a struct based on validate tags.
// Supported rules: required, email, min=N, max=N (string length).
func ValidateStruct(s interface{}) error {
	v := reflect.ValueOf(s)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return errors.New("not a struct")
	}

	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		tag := t.Field(i).Tag.Get("validate")
		if tag == "" {
			continue
		}
		for _, rule := range strings.Split(tag, ",") {
			if err := checkRule(t.Field(i).Name, v.Field(i), rule); err != nil {
				return err
			}
		}
	}

	return nil
}

func checkRule(fieldName string, value reflect.Value, rule string) error {
	name, param, _ := strings.Cut(rule, "=")

	switch name {
	case "required":
		if isZero(value) {
			return fmt.Errorf("%s is required", fieldName)
		}
	case "email":
		if value.Kind() == reflect.String && value.String() != "" {
			if err := ValidateEmail(value.String()); err != nil {
				return fmt.Errorf("%s must be a valid email", fieldName)
			}
		}
	case "min":
		n, err := strconv.Atoi(param)
		if err != nil {
			return fmt.Errorf("invalid min rule on %s", fieldName)
		}
		if value.Kind() == reflect.String && len(value.String()) < n {
			return fmt.Errorf("%s must be at least %d characters", fieldName, n)
		}
	case "max":
		n, err := strconv.Atoi(param)
		if err != nil {
			return fmt.Errorf("invalid max rule on %s", fieldName)
		}
		if value.Kind() == reflect.String && len(value.String()) > n {
			return fmt.Errorf("%s must be at most %d characters", fieldName, n)
		}
	}

	return nil
}

func isZero(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return v.String() == ""
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Ptr, reflect.Interface, reflect.Slice, reflect.Map:
		return v.IsNil()
	default:
		return v.IsZero()
	}
}

// ValidateEmail validates an email address
func ValidateEmail(email string) error {
	if email == "" {
		return errors.New("email is required")
	}
	if !emailRegex.MatchString(email) {
		return errors.New("invalid email format")
	}
	return nil
}

// ValidatePassword enforces the minimum password policy
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return ErrWeakPassword
	}
	return nil
}

// SanitizeString strips null bytes and surrounding whitespace
func SanitizeString(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "\x00", ""))
}

// SanitizeEmail lowercases a sanitized email address
func SanitizeEmail(email string) string {
	return strings.ToLower(SanitizeString(email))
}

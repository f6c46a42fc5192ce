// Waytrace - GPS Trace Waypoint and Path Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waytrace

package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

var (
	waypointIDPattern = regexp.MustCompile(`^[^\s:,]+$`)
	frameSizePattern  = regexp.MustCompile(`^[1-9][0-9]*[xX][1-9][0-9]*$`)
)

// customTags are the Waytrace-specific validation tags.
var customTags = map[string]*regexp.Regexp{
	"waypointid": waypointIDPattern,
	"framesize":  frameSizePattern,
}

// FieldError describes one failed rule.
type FieldError struct {
	// Field is the namespaced struct field (Config.Tiles.Zoom) or the name
	// given to ValidateVar.
	Field   string
	Tag     string
	Param   string
	Value   interface{}
	Message string
}

func (e FieldError) Error() string {
	return e.Message
}

// Errors is the list of rules a value failed.
type Errors []FieldError

func (es Errors) Error() string {
	if len(es) == 0 {
		return "validation failed"
	}
	msgs := make([]string, len(es))
	for i, e := range es {
		msgs[i] = e.Message
	}
	return strings.Join(msgs, "; ")
}

// GetValidator returns the shared validator with the custom tags
// registered. It is safe for concurrent use.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		for tag, re := range customTags {
			// Registration only fails for empty tags or nil functions.
			_ = validate.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
				return re.MatchString(fl.Field().String())
			})
		}
	})
	return validate
}

// ValidateStruct checks s against its validate tags. Failures are returned
// as Errors.
func ValidateStruct(s interface{}) error {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return Errors{{Field: "unknown", Tag: "unknown", Message: err.Error()}}
	}
	out := make(Errors, len(ves))
	for i, fe := range ves {
		out[i] = fieldError(fe.Namespace(), fe.Value(), fe)
	}
	return out
}

// ValidateVar checks a single value against tag, reporting failures under
// the name field.
func ValidateVar(field string, value interface{}, tag string) error {
	err := GetValidator().Var(value, tag)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if errors.As(err, &ves) && len(ves) > 0 {
		return Errors{fieldError(field, value, ves[0])}
	}
	return fmt.Errorf("%s: %w", field, err)
}

func fieldError(field string, value interface{}, fe validator.FieldError) FieldError {
	return FieldError{
		Field:   field,
		Tag:     fe.Tag(),
		Param:   fe.Param(),
		Value:   value,
		Message: message(field, fe),
	}
}

// messages holds the text per tag; %[1]s is the field and %[2]s the
// tag parameter.
var messages = map[string]string{
	"required":   "%[1]s is required",
	"url":        "%[1]s must be a valid URL",
	"latitude":   "%[1]s must be a valid latitude (-90 to 90)",
	"longitude":  "%[1]s must be a valid longitude (-180 to 180)",
	"waypointid": "%[1]s must not be empty or contain whitespace, ':' or ','",
	"framesize":  "%[1]s must look like WxH, e.g. 4x3",
	"oneof":      "%[1]s must be one of: %[2]s",
	"gte":        "%[1]s must be greater than or equal to %[2]s",
	"lte":        "%[1]s must be less than or equal to %[2]s",
	"gt":         "%[1]s must be greater than %[2]s",
	"lt":         "%[1]s must be less than %[2]s",
	"min":        "%[1]s must be at least %[2]s",
	"max":        "%[1]s must be at most %[2]s",
}

func message(field string, fe validator.FieldError) string {
	tmpl, ok := messages[fe.Tag()]
	if !ok {
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
	msg := fmt.Sprintf(tmpl, field, fe.Param())
	if (fe.Tag() == "min" || fe.Tag() == "max") && fe.Kind() == reflect.String {
		msg += " characters"
	}
	return msg
}

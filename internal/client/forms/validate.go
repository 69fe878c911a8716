// Package forms checks user-entered form values before anything is sent to
// the backend. Failures are reported as *common.ValidationError.
package forms

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/go-playground/validator/v10"
)

var personName = regexp.MustCompile(`^[A-Za-z\s'-]+$`)

var (
	once     sync.Once
	instance *validator.Validate
)

func validate() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("form"), ",")
			if name == "" || name == "-" {
				return f.Name
			}
			return name
		})
		_ = v.RegisterValidation("personname", func(fl validator.FieldLevel) bool {
			return personName.MatchString(fl.Field().String())
		})
		instance = v
	})
	return instance
}

// Messages maps a field name (its form tag) to the text shown when any rule
// on that field fails. A "field.tag" key narrows the override to one rule.
type Messages map[string]string

// Struct validates s and returns the first failing field.
func Struct(s any, msgs Messages) error {
	err := validate().Struct(s)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) || len(ve) == 0 {
		return err
	}
	fe := ve[0]
	return common.NewValidationError(fe.Field(), msgs.lookup(fe))
}

// Var validates a single value against tag.
func Var(field string, value any, tag string, msgs Messages) error {
	err := validate().Var(value, tag)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) || len(ve) == 0 {
		return err
	}
	fe := ve[0]
	if m, ok := msgs[field+"."+fe.Tag()]; ok {
		return common.NewValidationError(field, m)
	}
	if m, ok := msgs[field]; ok {
		return common.NewValidationError(field, m)
	}
	return common.NewValidationError(field, describe(field, fe.Tag(), fe.Param()))
}

func (m Messages) lookup(fe validator.FieldError) string {
	if s, ok := m[fe.Field()+"."+fe.Tag()]; ok {
		return s
	}
	if s, ok := m[fe.Field()]; ok {
		return s
	}
	return describe(fe.Field(), fe.Tag(), fe.Param())
}

func describe(field, tag, param string) string {
	switch tag {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, param)
	case "eqfield":
		return field + " does not match"
	case "datetime":
		return field + " must be a date (YYYY-MM-DD)"
	case "numeric", "len":
		return fmt.Sprintf("%s must be %s digits", field, param)
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, tag)
	}
}

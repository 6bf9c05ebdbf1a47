// Package inputval validates form input structs with go-playground/validator
// and renders the failures as sentences suitable for inline form messages.
//
// Fields name themselves in messages through a `label` struct tag.
package inputval

import (
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/dalemusser/studydesk/internal/domain/models"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// Custom tags.
const (
	tagNotBlank  = "notblank"
	tagIconName  = "iconname"
	tagEmbedURL  = "embedurl"
	tagBirthDate = "birthdate"
)

var (
	validate   *validator.Validate
	translator ut.Translator

	httpURL = regexp.MustCompile(`^https?://[^\s/$.?#][^\s]*$`)
)

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if label := fld.Tag.Get("label"); label != "" {
			return label
		}
		return fld.Name
	})

	_ = validate.RegisterValidation(tagNotBlank, func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = validate.RegisterValidation(tagIconName, func(fl validator.FieldLevel) bool {
		return models.IsKnownIcon(fl.Field().String())
	})
	_ = validate.RegisterValidation(tagEmbedURL, func(fl validator.FieldLevel) bool {
		return IsValidHTTPURL(fl.Field().String())
	})
	_ = validate.RegisterValidation(tagBirthDate, func(fl validator.FieldLevel) bool {
		_, err := time.Parse(time.DateOnly, fl.Field().String())
		return err == nil
	})

	message("required", "{0} is required.")
	message(tagNotBlank, "{0} is required.")
	message("email", "A valid email address is required.")
	message(tagIconName, "{0} must be one of the available icons.")
	message(tagEmbedURL, "{0} must be an http or https URL.")
	message(tagBirthDate, "{0} must be a date (YYYY-MM-DD).")
	messageWithParam("max", "{0} must be at most {1} characters.")
	messageWithParam("min", "{0} must be at least {1} characters.")
}

func message(tag, text string) {
	_ = validate.RegisterTranslation(tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		})
}

func messageWithParam(tag, text string) {
	key := tag + "-text"
	_ = validate.RegisterTranslation(tag, translator,
		func(t ut.Translator) error { return t.Add(key, text, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(key, fe.Field(), fe.Param())
			return s
		})
}

// FieldError is one failed rule.
type FieldError struct {
	Field   string
	Message string
}

// Result collects the failures of one Validate call, in field order.
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
	msgs := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		msgs = append(msgs, e.Message)
	}
	return strings.Join(msgs, "; ")
}

// Validate checks v against its `validate` tags.
func Validate(v any) *Result {
	r := &Result{}
	err := validate.Struct(v)
	if err == nil {
		return r
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		r.Errors = append(r.Errors, FieldError{Message: err.Error()})
		return r
	}
	for _, fe := range verrs {
		r.Errors = append(r.Errors, FieldError{Field: fe.StructField(), Message: fe.Translate(translator)})
	}
	return r
}

// IsValidEmail reports whether s is a bare email address.
func IsValidEmail(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	return validate.Var(s, "email") == nil
}

// IsValidHTTPURL reports whether s is an absolute http or https URL.
func IsValidHTTPURL(s string) bool {
	return httpURL.MatchString(strings.TrimSpace(s))
}

package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"moodmate/internal/models"

	"github.com/go-playground/validator/v10"
)

// Messages surfaced for the playlist rules.
const (
	MsgUnsupportedLinks = "One or more links are from unsupported platforms."
	MsgLinksRequired    = "Add at least one link."
	MsgTooManyLinks     = "A vibe can hold at most 5 links."
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func instance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
		if err := validate.RegisterValidation("musiclink", func(fl validator.FieldLevel) bool {
			return IsValidMusicLink(fl.Field().String())
		}); err != nil {
			panic(fmt.Sprintf("register musiclink validator: %v", err))
		}
	})
	return validate
}

// Struct validates v against its `validate` tags. The first failing rule is
// returned as a *models.AppError with code VALIDATION_ERROR.
func Struct(v any) error {
	err := instance().Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return models.NewValidationError(err.Error())
	}
	return models.NewValidationError(message(fieldErrs[0]))
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	if i := strings.IndexByte(field, '['); i >= 0 {
		field = field[:i]
	}

	if field == "links" {
		switch fe.Tag() {
		case "musiclink":
			return MsgUnsupportedLinks
		case "min", "required":
			return MsgLinksRequired
		case "max":
			return MsgTooManyLinks
		}
	}

	label := humanize(field)
	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", label, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
	case "http_url":
		return label + " must be an http(s) URL"
	case "uuid4", "uuid":
		return label + " must be a valid ID"
	default:
		return fmt.Sprintf("%s is invalid", label)
	}
}

func humanize(field string) string {
	s := strings.ReplaceAll(field, "_", " ")
	if s == "" {
		return "Field"
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

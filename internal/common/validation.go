package common

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

const mediaPathPrefix = "/media/"

func ValidateUsername(username string) error {
	username = strings.TrimSpace(username)
	if len(username) < 3 || len(username) > 50 {
		return Validation("username must be between 3 and 50 characters")
	}
	if !usernameRegex.MatchString(username) {
		return Validation("username can only contain letters, numbers, and underscores")
	}
	return nil
}

// Validator checks request structs tagged with `validate:"..."` before they
// reach the services. Failures come back as Validation errors named after the
// json field.
type Validator struct {
	v *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("mood", func(fl validator.FieldLevel) bool {
		return Mood(fl.Field().String()).IsValid()
	})
	_ = v.RegisterValidation("weather", func(fl validator.FieldLevel) bool {
		return Weather(fl.Field().String()).IsValid()
	})
	// mediaref accepts an absolute url or a /media/{id} path from the upload endpoint.
	_ = v.RegisterValidation("mediaref", func(fl validator.FieldLevel) bool {
		ref := fl.Field().String()
		if id, ok := strings.CutPrefix(ref, mediaPathPrefix); ok {
			return id != "" && !strings.ContainsAny(id, "/?#")
		}
		return v.Var(ref, "url") == nil
	})
	_ = v.RegisterValidation("sortkey", func(fl validator.FieldLevel) bool {
		switch fl.Field().String() {
		case "time", "likes", "comments":
			return true
		}
		return false
	})
	_ = v.RegisterValidation("timerange", func(fl validator.FieldLevel) bool {
		switch fl.Field().String() {
		case "day", "week", "month":
			return true
		}
		return false
	})

	return &Validator{v: v}
}

func (v *Validator) Struct(s interface{}) error {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		if fe.Param() != "" {
			return Validation("%s failed %s=%s", fe.Field(), fe.Tag(), fe.Param())
		}
		return Validation("%s failed %s", fe.Field(), fe.Tag())
	}
	return Validation("%v", err)
}

package extras

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

var keyRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// V returns the validator for feature definitions.
func V() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		_ = validate.RegisterValidation("featurekey", func(fl validator.FieldLevel) bool {
			return keyRegex.MatchString(fl.Field().String())
		})
	})
	return validate
}

// validationError flattens validator errors into ErrInvalidDefinition.
func validationError(kind, key string, err error) error {
	if err == nil {
		return nil
	}
	ve, ok := err.(validator.ValidationErrors)
	if !ok {
		return ErrInvalidDefinition.MsgErr(fmt.Sprintf("%s %q", kind, key), err)
	}
	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		msgs = append(msgs, fmt.Sprintf("%s failed on %q", fe.Namespace(), fe.Tag()))
	}
	return ErrInvalidDefinition.Msg(fmt.Sprintf("%s %q: %s", kind, key, strings.Join(msgs, ", ")))
}

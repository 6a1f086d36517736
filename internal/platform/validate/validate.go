// Package validate wraps go-playground/validator with english messages for config structs
package validate

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"sync"

	perr "floordwh/internal/platform/errors"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// FieldError aliases validator.FieldError
type FieldError = validator.FieldError

// Svc holds a singleton validator and translator
type Svc struct {
	Validator  *validator.Validate
	Translator ut.Translator
}

var (
	once sync.Once
	svc  *Svc

	// sqlIdent matches plain unquoted table/column names
	sqlIdent = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,62}$`)
)

// Get returns the validator singleton, initializing on first use
func Get() *Svc {
	once.Do(func() {
		enLoc := en.New()
		uni := ut.New(enLoc, enLoc)
		trans, _ := uni.GetTranslator("en")

		v := validator.New(validator.WithRequiredStructEnabled())

		// messages name the env key when the struct carries one
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			for _, k := range []string{"env", "yaml"} {
				tag := fld.Tag.Get(k)
				if idx := strings.Index(tag, ","); idx >= 0 {
					tag = tag[:idx]
				}
				if tag != "" && tag != "-" {
					return tag
				}
			}
			return fld.Name
		})

		_ = en_translations.RegisterDefaultTranslations(v, trans)

		_ = v.RegisterValidation("sqlident", func(fl validator.FieldLevel) bool {
			return IsIdent(fl.Field().String())
		})
		registerShort(v, trans, "min", "{0} must be at least {1}", true)
		registerShort(v, trans, "max", "{0} must be at most {1}", true)
		registerShort(v, trans, "sqlident", "{0} must be a plain sql identifier", false)

		svc = &Svc{Validator: v, Translator: trans}
	})
	return svc
}

// IsIdent reports whether s is safe to use as an unquoted sql identifier
func IsIdent(s string) bool { return sqlIdent.MatchString(s) }

// Struct validates v and maps the first failure to a perr validation error
// the error carries the offending field name
func Struct(v any) error {
	err := Get().Validator.Struct(v)
	if err == nil {
		return nil
	}
	var inv *validator.InvalidValidationError
	if errors.As(err, &inv) {
		return perr.Wrap(inv, perr.ErrorCodeInvalidArgument, "validator misuse")
	}
	field, msg := FieldAndMessage(err)
	return perr.WithField(perr.Newf(perr.ErrorCodeValidation, "%s", msg), field)
}

// FieldAndMessage returns the first field and translated message
func FieldAndMessage(err error) (field, message string) {
	if err == nil {
		return "", ""
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			return fe.Field(), fe.Translate(Get().Translator)
		}
	}
	return "", err.Error()
}

// registerShort installs a one line translation; withParam adds the tag param as {1}
func registerShort(v *validator.Validate, trans ut.Translator, tag, text string, withParam bool) {
	_ = v.RegisterTranslation(tag, trans,
		func(ut ut.Translator) error {
			return ut.Add(tag, text, true)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			if withParam {
				msg, _ := ut.T(tag, fe.Field(), fe.Param())
				return msg
			}
			msg, _ := ut.T(tag, fe.Field())
			return msg
		},
	)
}

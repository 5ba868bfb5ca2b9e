// Package bind maps path and query parameters onto structs and validates them
package bind

import (
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	perr "jarbas/internal/platform/errors"
	"jarbas/internal/platform/logger"
)

// ValidatorSvc holds a singleton validator and translator
type ValidatorSvc struct {
	Validator  *validator.Validate
	Translator ut.Translator
}

var (
	vOnce sync.Once
	vSvc  *ValidatorSvc
)

// Init initializes the singleton validator with english translations.
// Messages name fields by their param or query tag
func Init() *ValidatorSvc {
	vOnce.Do(func() {
		enLoc := en.New()
		uni := ut.New(enLoc, enLoc)
		trans, _ := uni.GetTranslator("en")

		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			if name, _ := sourceOf(fld); name != "" {
				return name
			}
			return fld.Name
		})

		_ = en_translations.RegisterDefaultTranslations(v, trans)
		registerShort(v, trans, "number", "{0} must be a non-negative integer")
		registerShort(v, trans, "max", "{0} must be at most {1} characters")

		vSvc = &ValidatorSvc{Validator: v, Translator: trans}
	})
	return vSvc
}

// Get returns the validator singleton, initializing on first use
func Get() *ValidatorSvc { return Init() }

// sourceOf reports the request name and location of a struct field
func sourceOf(fld reflect.StructField) (name, from string) {
	if tag := fld.Tag.Get("param"); tag != "" && tag != "-" {
		return tag, "param"
	}
	if tag := fld.Tag.Get("query"); tag != "" && tag != "-" {
		return tag, "query"
	}
	return "", ""
}

// Params fills the string fields of T tagged `param:"name"` from chi URL params
// and those tagged `query:"name"` from the query string, then validates T.
// Failures are InvalidArgument errors naming the offending field
func Params[T any](r *http.Request) (T, error) {
	var dst T
	rv := reflect.ValueOf(&dst).Elem()
	if rv.Kind() != reflect.Struct {
		return dst, perr.Internalf("bind: %T is not a struct", dst)
	}
	rt := rv.Type()
	q := r.URL.Query()
	for i := 0; i < rt.NumField(); i++ {
		fld := rt.Field(i)
		name, from := sourceOf(fld)
		if name == "" || fld.Type.Kind() != reflect.String || !fld.IsExported() {
			continue
		}
		var val string
		switch from {
		case "param":
			val = chi.URLParam(r, name)
		case "query":
			val = q.Get(name)
		}
		rv.Field(i).SetString(strings.TrimSpace(val))
	}

	if err := Get().Validator.Struct(dst); err != nil {
		var zero T
		if inv, ok := err.(*validator.InvalidValidationError); ok {
			logger.Get().Error().Err(inv).Msg("validator internal error")
			return zero, perr.Internalf("validation error")
		}
		field, msg := ValidationFieldAndMessage(err)
		return zero, perr.WithField(perr.InvalidArgf("%s", msg), field)
	}
	return dst, nil
}

// ValidationFieldAndMessage returns the first field and translated message
func ValidationFieldAndMessage(err error) (field, message string) {
	if err == nil {
		return "", ""
	}
	if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
		fe := verrs[0]
		return fe.Field(), fe.Translate(Get().Translator)
	}
	return "", err.Error()
}

func registerShort(v *validator.Validate, trans ut.Translator, tag, text string) {
	_ = v.RegisterTranslation(tag, trans,
		func(ut ut.Translator) error {
			return ut.Add(tag, text, true)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			msg, _ := ut.T(tag, fe.Field(), fe.Param())
			return msg
		},
	)
}

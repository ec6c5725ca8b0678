package model

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"slices"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldErrors maps a JSON path such as "workExperiences[0].endDate" to a
// human readable message.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	if len(fe) == 0 {
		return "no field errors"
	}
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+fe[k])
	}
	return strings.Join(parts, "; ")
}

// Only keeps errors whose path starts with one of the given top-level fields.
func (fe FieldErrors) Only(fields []string) FieldErrors {
	var out FieldErrors
	for path, msg := range fe {
		if slices.Contains(fields, TopLevelField(path)) {
			if out == nil {
				out = FieldErrors{}
			}
			out[path] = msg
		}
	}
	return out
}

// TopLevelField returns the first path segment: "skills[2].name" -> "skills".
func TopLevelField(path string) string {
	if i := strings.IndexAny(path, ".["); i >= 0 {
		return path[:i]
	}
	return path
}

var (
	validate   = newValidator()
	phoneRegex = regexp.MustCompile(`^\+?[0-9 ()\-.]{3,32}$`)
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	mustRegister(v, "docdate", func(fl validator.FieldLevel) bool {
		_, err := ParseDate(fl.Field().String())
		return err == nil
	})
	mustRegister(v, "borderstyle", func(fl validator.FieldLevel) bool {
		return slices.Contains(BorderStyles, fl.Field().String())
	})
	mustRegister(v, "fontfamily", func(fl validator.FieldLevel) bool {
		return slices.Contains(FontFamilies, fl.Field().String())
	})
	mustRegister(v, "phone", func(fl validator.FieldLevel) bool {
		return phoneRegex.MatchString(strings.TrimSpace(fl.Field().String()))
	})
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		switch entry := sl.Current().Interface().(type) {
		case WorkExperience:
			checkRange(sl, entry.StartDate, entry.EndDate)
		case Education:
			checkRange(sl, entry.StartDate, entry.EndDate)
		}
	}, WorkExperience{}, Education{})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register validation %s: %v", tag, err))
	}
}

func checkRange(sl validator.StructLevel, start, end string) {
	if strings.TrimSpace(start) == "" || strings.TrimSpace(end) == "" {
		return
	}
	s, errS := ParseDate(start)
	e, errE := ParseDate(end)
	if errS != nil || errE != nil {
		return
	}
	if e.Before(s) {
		sl.ReportError(end, "endDate", "EndDate", "daterange", "")
	}
}

func validateStruct(v any) FieldErrors {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return FieldErrors{"": err.Error()}
	}
	out := FieldErrors{}
	for _, fe := range verrs {
		out[jsonPath(fe.Namespace())] = message(fe)
	}
	return out
}

// jsonPath drops the root struct name from a validator namespace.
func jsonPath(ns string) string {
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "max":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("at most %s entries allowed", fe.Param())
		}
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "email":
		return "must be a valid email address"
	case "phone":
		return "must be a valid phone number"
	case "hexcolor":
		return "must be a hex color such as #1a2b3c"
	case "docdate":
		return "must be a date in YYYY-MM or YYYY-MM-DD format"
	case "daterange":
		return "must not be before the start date"
	case "borderstyle":
		return "must be one of " + strings.Join(BorderStyles, ", ")
	case "fontfamily":
		return "must be one of " + strings.Join(FontFamilies, ", ")
	default:
		return "is invalid"
	}
}

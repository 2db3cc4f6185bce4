package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cast"

	"github.com/Zeyna175/data-processor-app/pkg/contracts/domain"
)

// ErrInvalidOptions wraps every cleaning option failure
var ErrInvalidOptions = errors.New("invalid cleaning options")

// FieldError describes one violated option constraint
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// OptionsError lists every violated constraint of an options record
type OptionsError struct {
	Fields []FieldError
}

func (e *OptionsError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Message
	}
	return fmt.Sprintf("%s: %s", ErrInvalidOptions, strings.Join(msgs, "; "))
}

func (e *OptionsError) Unwrap() error { return ErrInvalidOptions }

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// structValidator returns the shared validator, reporting fields by their
// JSON names
func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// ValidateOptions checks every option against its allowed values
func ValidateOptions(opts domain.Options) error {
	err := structValidator().Struct(opts)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidOptions, err)
	}
	out := &OptionsError{}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{
			Field:   fieldName(fe),
			Message: formatFieldError(fe),
		})
	}
	return out
}

// fieldName strips the struct prefix, keeping slice indexes
func fieldName(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func formatFieldError(fe validator.FieldError) string {
	field := fieldName(fe)
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s (got %q)", field,
			strings.ReplaceAll(fe.Param(), " ", ", "), cast.ToString(fe.Value()))
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}

// ParseOptions builds options from a decoded JSON object. Absent keys take
// their defaults; values of the wrong type or outside their domain are
// rejected.
func ParseOptions(raw map[string]interface{}) (domain.Options, error) {
	return ParseOptionsOver(domain.DefaultOptions(), raw)
}

// ParseOptionsOver is ParseOptions with base supplying the absent keys
func ParseOptionsOver(base domain.Options, raw map[string]interface{}) (domain.Options, error) {
	opts := base
	opts.DuplicateSubset = append([]string(nil), base.DuplicateSubset...)
	var typeErrs []FieldError

	str := func(key string, dst *string) {
		v, ok := raw[key]
		if !ok || v == nil {
			return
		}
		s, ok := v.(string)
		if !ok {
			typeErrs = append(typeErrs, FieldError{
				Field:   key,
				Message: fmt.Sprintf("%s must be a string", key),
			})
			return
		}
		*dst = strings.TrimSpace(s)
	}
	str("missing_strategy", &opts.MissingStrategy)
	str("outlier_method", &opts.OutlierMethod)
	str("outlier_action", &opts.OutlierAction)
	str("normalization", &opts.Normalization)

	if v, ok := raw["duplicate_subset"]; ok && v != nil {
		subset, err := stringList(v)
		if err != nil {
			typeErrs = append(typeErrs, FieldError{
				Field:   "duplicate_subset",
				Message: "duplicate_subset must be a column name or a list of column names",
			})
		} else {
			opts.DuplicateSubset = subset
		}
	}

	if len(typeErrs) > 0 {
		return domain.Options{}, &OptionsError{Fields: typeErrs}
	}
	if err := ValidateOptions(opts); err != nil {
		return domain.Options{}, err
	}
	return opts, nil
}

// stringList accepts a list of names or a single name
func stringList(v interface{}) ([]string, error) {
	switch t := v.(type) {
	case string:
		if name := strings.TrimSpace(t); name != "" {
			return []string{name}, nil
		}
		return nil, nil
	case []string:
		return t, nil
	case []interface{}:
		out := make([]string, 0, len(t))
		for _, item := range t {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("element %v is not a string", item)
			}
			out = append(out, s)
		}
		return out, nil
	}
	return nil, fmt.Errorf("%T is not a list", v)
}

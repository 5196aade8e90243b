package input

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/huangsam/trendgate/schema"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New()

		// Use JSON tag names in error messages
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		v.RegisterStructValidation(validateSalesRecord, schema.SalesRecord{})
		validate = v
	})
	return validate
}

// validateSalesRecord requires a YYYYMM month key.
func validateSalesRecord(sl validator.StructLevel) {
	rec := sl.Current().Interface().(schema.SalesRecord)
	if rec.MonthKey == "" {
		return
	}
	if _, _, ok := rec.YearMonth(); !ok {
		sl.ReportError(rec.MonthKey, "dk", "MonthKey", "yyyymm", "")
	}
}

// Validate checks one product row and returns a readable error describing
// every failed constraint.
func Validate(row schema.ProductRow) error {
	return validateStruct(row)
}

// ValidateKeywords checks a standalone keyword set, as submitted for cycle detection.
func ValidateKeywords(set schema.KeywordSet) error {
	return validateStruct(set)
}

func validateStruct(v any) error {
	err := getValidator().Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, formatFieldError(fe))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func formatFieldError(fe validator.FieldError) string {
	field := fe.Namespace()
	if _, rest, ok := strings.Cut(field, "."); ok {
		field = rest
	}
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "required_with":
		return fmt.Sprintf("%s is required when %s is set", field, strings.ToLower(fe.Param()))
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "yyyymm":
		return fmt.Sprintf("%s must be a YYYYMM month key", field)
	default:
		return fmt.Sprintf("%s failed on '%s'", field, fe.Tag())
	}
}

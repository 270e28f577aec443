package api

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/payroll"
)

// newValidator returns a validator that reports JSON field names and knows
// the payroll formats:
//
//	money           non-negative decimal string ("100000", "1,250.50")
//	date            YYYY-MM-DD
//	period          YYYY-MM
//	allowance_name  not a fixed payslip line name
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	mustRegister(v, "money", func(fl validator.FieldLevel) bool {
		_, err := generic.ParseStrict(fl.Field().String())
		return err == nil
	})
	mustRegister(v, "date", func(fl validator.FieldLevel) bool {
		_, err := generic.ParseDate(fl.Field().String())
		return err == nil
	})
	mustRegister(v, "allowance_name", func(fl validator.FieldLevel) bool {
		return !payroll.IsReservedLineName(fl.Field().String())
	})
	mustRegister(v, "period", func(fl validator.FieldLevel) bool {
		_, err := generic.ParsePayPeriod(fl.Field().String())
		return err == nil
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s validation: %v", tag, err))
	}
}

// validationError converts validator output into a *generic.ValidationError
// listing every failed field.
func validationError(err error) error {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return err
	}

	verr := &generic.ValidationError{}
	for _, fe := range errs {
		verr.Add(fieldPath(fe), fieldMessage(fe))
	}
	return verr
}

// fieldPath drops the struct name from the namespace:
// "SaveEmployeeRequest.allowances[House]" becomes "allowances[House]".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "money":
		return "must be a non-negative amount"
	case "date":
		return "must be a date (YYYY-MM-DD)"
	case "period":
		return "must be a pay period (YYYY-MM)"
	case "allowance_name":
		return "is a reserved line name"
	case "email":
		return "must be a valid email"
	case "min", "max":
		return fmt.Sprintf("must be %s %s", map[string]string{"min": "at least", "max": "at most"}[fe.Tag()], fe.Param())
	default:
		return "is invalid"
	}
}

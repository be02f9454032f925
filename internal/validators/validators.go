package validators

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/BruksfildServices01/salon-scheduler/internal/domain/schedule"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
)

// New returns a validator with the schedule tags registered:
//
//	hhmm     "HH:MM" time of day
//	weekday  weekday name or index
func New() *validator.Validate {
	v := validator.New()
	register(v)
	return v
}

// RegisterGin installs the same tags on gin's binding validator.
func RegisterGin() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin binding engine is not go-playground/validator")
	}
	register(v)
	return nil
}

func register(v *validator.Validate) {
	v.RegisterTagNameFunc(jsonName)
	_ = v.RegisterValidation("hhmm", isHHMM)
	_ = v.RegisterValidation("weekday", isWeekday)
}

func isHHMM(fl validator.FieldLevel) bool {
	_, err := schedule.ParseTimeOfDay(fl.Field().String())
	return err == nil
}

func isWeekday(fl validator.FieldLevel) bool {
	_, err := schedule.ParseDayOfWeek(fl.Field().String())
	return err == nil
}

func jsonName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}

// Translate turns validator failures into a ValidationError naming the first
// offending field. Other errors pass through.
func Translate(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	return httperr.NewValidationError(fe.Field(), message(fe))
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "hhmm":
		return fmt.Sprintf("invalid time %q, use HH:MM", fe.Value())
	case "weekday":
		return fmt.Sprintf("unknown weekday %q", fe.Value())
	case "min":
		return fmt.Sprintf("must have at least %s item(s)", fe.Param())
	case "max":
		return fmt.Sprintf("must have at most %s item(s)", fe.Param())
	}
	return fmt.Sprintf("failed %s validation", fe.Tag())
}

// Package validation checks inbound requests before they reach the store or
// the ranking engine. It owns the scoring ranges and the member counts per category.
package validation

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/okian/aeroscore/internal/domain/types"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid request")

// Ranges enforced on submitted values.
const (
	MinScore = 0.0
	MaxScore = 10.0
	MinTotal = 0.0
	MaxTotal = 30.0
)

// Error lists every problem found in one request.
type Error struct {
	Problems []string
}

func (e *Error) Error() string { return strings.Join(e.Problems, "; ") }

// Unwrap lets errors.Is match ErrInvalid.
func (e *Error) Unwrap() error { return ErrInvalid }

// Validator validates request structs.
type Validator struct {
	v *validator.Validate
}

// New returns a Validator with the domain tags registered:
// category, scoretype, judgerole, score and total.
func New() (*Validator, error) {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonName)

	tags := map[string]validator.Func{
		"category":  func(fl validator.FieldLevel) bool { return types.IsCategory(fl.Field().String()) },
		"scoretype": func(fl validator.FieldLevel) bool { return types.ScoreType(fl.Field().String()).Valid() },
		"judgerole": validateJudgeRole,
		"score":     rangeFunc(MinScore, MaxScore),
		"total":     rangeFunc(MinTotal, MaxTotal),
	}
	for tag, fn := range tags {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return nil, fmt.Errorf("failed to register %s validator: %w", tag, err)
		}
	}
	v.RegisterStructValidation(validateMemberCount, CompetitorInput{})

	return &Validator{v: v}, nil
}

// Struct validates s and returns an *Error describing every failed rule.
func (val *Validator) Struct(s any) error {
	err := val.v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	out := &Error{}
	for _, fe := range verrs {
		out.Problems = append(out.Problems, message(fe))
	}
	return out
}

// RoundScore rounds v to the one decimal place scores are stored with.
func RoundScore(v float64) float64 {
	return math.Round(v*10) / 10
}

// RoundTotal rounds v to the two decimal places totals are stored with.
func RoundTotal(v float64) float64 {
	return math.Round(v*100) / 100
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "category":
		return "invalid or missing category"
	case "scoretype":
		return fmt.Sprintf("invalid score_type %q", fe.Value())
	case "judgerole":
		return fmt.Sprintf("invalid role %q", fe.Value())
	case "score":
		return fmt.Sprintf("score must be between %g and %g", MinScore, MaxScore)
	case "total":
		return fmt.Sprintf("total score must be between %g and %g", MinTotal, MaxTotal)
	case "membercount":
		return fmt.Sprintf("category requires %s members", fe.Param())
	case "email":
		return field + " must be a valid email"
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte", "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "lte", "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s", field, fe.Tag())
	}
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

func validateJudgeRole(fl validator.FieldLevel) bool {
	_, err := types.ParseJudgeRole(fl.Field().String())
	return err == nil
}

func rangeFunc(lo, hi float64) validator.Func {
	return func(fl validator.FieldLevel) bool {
		var v float64
		switch fl.Field().Kind() {
		case reflect.Float32, reflect.Float64:
			v = fl.Field().Float()
		default:
			return false
		}
		return !math.IsNaN(v) && v >= lo && v <= hi
	}
}

// validateMemberCount checks the member list against the category's range.
func validateMemberCount(sl validator.StructLevel) {
	in, ok := sl.Current().Interface().(CompetitorInput)
	if !ok || !types.IsCategory(in.Category) {
		return
	}
	lo, hi := types.MemberRange(in.Category)
	if n := len(in.Members); n < lo || n > hi {
		param := fmt.Sprintf("%d", lo)
		if lo != hi {
			param = fmt.Sprintf("%d-%d", lo, hi)
		}
		sl.ReportError(in.Members, "members", "Members", "membercount", param)
	}
}

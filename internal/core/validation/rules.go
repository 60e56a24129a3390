package validation

import (
	"fmt"
	"regexp"

	"loanapply/internal/adapters/persistence/models"
	"loanapply/internal/core/domain"
)

// Check inspects one aspect of a candidate application and returns a
// violation message, or "" when the rule is satisfied.
type Check func(a *models.Application) string

// Rule binds a field name to the checks that guard it.
type Rule struct {
	Field  string
	Checks []Check
}

// Evaluate runs every check of every rule against the candidate and
// collects all violations before failing, so the caller sees the whole
// list at once. Returns nil when the candidate is valid.
func Evaluate(rules []Rule, a *models.Application) error {
	var violations []domain.FieldViolation
	for _, rule := range rules {
		for _, check := range rule.Checks {
			if msg := check(a); msg != "" {
				violations = append(violations, domain.FieldViolation{
					Field:   rule.Field,
					Message: msg,
				})
			}
		}
	}
	if len(violations) > 0 {
		return domain.NewValidationError(violations)
	}
	return nil
}

// ============================================================
// Check combinators
// ============================================================

func required(get func(a *models.Application) string, msg string) Check {
	return func(a *models.Application) string {
		if get(a) == "" {
			return msg
		}
		return ""
	}
}

func lengthBetween(get func(a *models.Application) string, min, max int, msg string) Check {
	return func(a *models.Application) string {
		v := get(a)
		if v == "" {
			return "" // presence is a separate check
		}
		if len(v) < min || len(v) > max {
			return msg
		}
		return ""
	}
}

func pattern(get func(a *models.Application) string, re *regexp.Regexp, msg string) Check {
	return func(a *models.Application) string {
		v := get(a)
		if v == "" {
			return ""
		}
		if !re.MatchString(v) {
			return msg
		}
		return ""
	}
}

func oneOf(get func(a *models.Application) string, allowed []string, msg string) Check {
	return func(a *models.Application) string {
		v := get(a)
		if v == "" {
			return ""
		}
		for _, s := range allowed {
			if v == s {
				return ""
			}
		}
		return msg
	}
}

func minFloat(get func(a *models.Application) float64, min float64, msg string) Check {
	return func(a *models.Application) string {
		if get(a) < min {
			return msg
		}
		return ""
	}
}

func intBetween(get func(a *models.Application) int, min, max int, msg string) Check {
	return func(a *models.Application) string {
		v := get(a)
		if v < min || v > max {
			return msg
		}
		return ""
	}
}

func notZeroTime(a *models.Application) bool {
	return !a.DOB.IsZero()
}

// requiredWhen makes presence conditional on another field's value.
func requiredWhen(cond func(a *models.Application) bool, get func(a *models.Application) string, msg string) Check {
	return func(a *models.Application) string {
		if cond(a) && get(a) == "" {
			return msg
		}
		return ""
	}
}

// positiveWhen requires a positive numeric value when cond holds.
func positiveWhen(cond func(a *models.Application) bool, get func(a *models.Application) float64, msg string) Check {
	return func(a *models.Application) string {
		if cond(a) && get(a) <= 0 {
			return msg
		}
		return ""
	}
}

func enumList(allowed []string) string {
	out := ""
	for i, s := range allowed {
		if i > 0 {
			out += ", "
		}
		out += s
	}
	return out
}

func enumMsg(field string, allowed []string) string {
	return fmt.Sprintf("%s must be one of: %s", field, enumList(allowed))
}

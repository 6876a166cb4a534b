package validation

import (
	"regexp"
	"strings"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/school-dashboard-api/internal/dto"
)

const (
	phoneTag      = "phone"
	clockTag      = "clock"
	dateTag       = "date"
	notBlankTag   = "notblank"
	afterStartTag = "after_start"
)

var (
	phoneRegex = regexp.MustCompile(`^\+?[1-9]\d{1,14}$`)
	clockRegex = regexp.MustCompile(`^([01]\d|2[0-3]):([0-5]\d)$`)

	// Accepted date layouts, most specific first. The second one is what
	// browsers send for datetime-local inputs.
	dateLayouts = []string{
		time.RFC3339,
		"2006-01-02T15:04",
		"2006-01-02",
	}
)

func registerRules(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(phoneTag, func(fl validator.FieldLevel) bool {
		return phoneRegex.MatchString(fl.Field().String())
	})
	registerTranslation(validate, translator, phoneTag, "{0} must be a valid phone number")

	_ = validate.RegisterValidation(clockTag, func(fl validator.FieldLevel) bool {
		return clockRegex.MatchString(fl.Field().String())
	})
	registerTranslation(validate, translator, clockTag, "{0} must be in HH:mm format")

	_ = validate.RegisterValidation(dateTag, func(fl validator.FieldLevel) bool {
		_, err := parseDate(fl.Field().String())
		return err == nil
	})
	registerTranslation(validate, translator, dateTag, "{0} must be a valid date")

	_ = validate.RegisterValidation(notBlankTag, func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	registerTranslation(validate, translator, notBlankTag, "{0} is required")

	registerTranslation(validate, translator, afterStartTag, "{0} must be after the start date")
}

func registerTranslation(validate *validator.Validate, translator ut.Translator, tag, text string) {
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, false) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// assignmentStructValidation enforces dueDate > startDate. Unparseable dates
// are already reported by the field rules.
func assignmentStructValidation(sl validator.StructLevel) {
	form := sl.Current().Interface().(dto.AssignmentForm)

	start, err := parseDate(form.StartDate)
	if err != nil {
		return
	}
	due, err := parseDate(form.DueDate)
	if err != nil {
		return
	}
	if !due.After(start) {
		sl.ReportError(form.DueDate, "dueDate", "DueDate", afterStartTag, "")
	}
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, raw)
		if err == nil {
			return t.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// parseClock turns HH:mm into a time of day on the given date in UTC.
func parseClock(raw string, day time.Time) (time.Time, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, err
	}
	y, m, d := day.Date()
	return time.Date(y, m, d, t.Hour(), t.Minute(), 0, 0, time.UTC), nil
}

package validation

import (
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/noah-isme/school-dashboard-api/internal/dto"
	appErrors "github.com/noah-isme/school-dashboard-api/pkg/errors"
)

// messageSource is implemented by forms that override rule messages.
type messageSource interface {
	Messages() map[string]string
}

// Validator checks form payloads and converts them into normalized records.
type Validator struct {
	validate   *validator.Validate
	translator ut.Translator
	now        func() time.Time
}

// New builds a Validator with the dashboard's custom rules and English messages.
func New() *Validator {
	validate := validator.New()

	english := en.New()
	uni := ut.New(english, english)
	translator, _ := uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	registerRules(validate, translator)
	validate.RegisterStructValidation(assignmentStructValidation, dto.AssignmentForm{})

	return &Validator{validate: validate, translator: translator, now: time.Now}
}

// Check validates form and returns a VALIDATION_ERROR listing every violated field.
func (v *Validator) Check(form interface{}) error {
	return v.check(form, nil)
}

// check merges rule failures with extra field errors computed by a normalizer.
// A field keeps its first message.
func (v *Validator) check(form interface{}, extra map[string]string) error {
	fields := make(map[string]string)

	if err := v.validate.Struct(form); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate form")
		}

		var overrides map[string]string
		if src, ok := form.(messageSource); ok {
			overrides = src.Messages()
		}

		for _, fe := range verrs {
			field := fe.Field()
			if _, exists := fields[field]; exists {
				continue
			}
			if msg, ok := overrides[field+"."+fe.Tag()]; ok {
				fields[field] = msg
				continue
			}
			fields[field] = fe.Translate(v.translator)
		}
	}

	for field, msg := range extra {
		if _, exists := fields[field]; !exists {
			fields[field] = msg
		}
	}

	if len(fields) == 0 {
		return nil
	}
	return appErrors.Validation(fields)
}

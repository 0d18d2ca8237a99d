package core

import (
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/locales/ar"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// The portal is bilingual: every validation message is registered for both
// the "en" and "ar" translators and picked per request.
var (
	alphaNumUnderTag   = "alphanum_"
	alphaNumUnderRegex = regexp.MustCompile(`^[\w\s]+$`)

	civilIDTag   = "civilid"
	civilIDRegex = regexp.MustCompile(`^\d{12}$`)

	dateTag    = "date"
	dateLayout = "2006-01-02"

	requiredTag = "required"

	translations = map[string]map[string]string{
		"en": {
			requiredTag:      "this field is required",
			civilIDTag:       "a valid 12-digit civil ID is required",
			dateTag:          "a valid date (YYYY-MM-DD) is required",
			alphaNumUnderTag: "only alphanumeric characters and underscores are allowed",
		},
		"ar": {
			requiredTag:      "هذا الحقل مطلوب",
			civilIDTag:       "الرجاء إدخال رقم مدني صحيح مكون من 12 رقماً",
			dateTag:          "الرجاء إدخال تاريخ صحيح",
			alphaNumUnderTag: "يسمح فقط بالأحرف والأرقام والشرطة السفلية",
		},
	}
)

// NewValidator instantiates the shared validator and its en/ar translators.
func NewValidator() (*validator.Validate, *ut.UniversalTranslator) {
	enLoc := en.New()
	uni := ut.New(enLoc, enLoc, ar.New())
	validate := validator.New()

	// Use JSON tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation(alphaNumUnderTag, alphaNumUnderValidation)
	_ = validate.RegisterValidation(civilIDTag, civilIDValidation)
	_ = validate.RegisterValidation(dateTag, dateValidation)

	for lang, texts := range translations {
		trans, _ := uni.GetTranslator(lang)
		if lang == "en" {
			_ = en_translations.RegisterDefaultTranslations(validate, trans)
		}
		for tag, text := range texts {
			RegisterCustomTranslation(validate, trans, tag, text, true)
		}
	}
	return validate, uni
}

// Translator resolves the translator for a language code, falling back to the
// universal default when the language is unknown.
func Translator(uni *ut.UniversalTranslator, lang string) ut.Translator {
	trans, found := uni.GetTranslator(CleanString(lang, true /* lower */))
	if !found {
		return uni.GetFallback()
	}
	return trans
}

// RegisterCustomTranslation registers a custom translation for the specified validation tag.
func RegisterCustomTranslation(validate *validator.Validate, translator ut.Translator, tag, text string, override ...bool) {
	var ovrd bool
	if len(override) > 0 {
		ovrd = override[0]
	}
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, ovrd) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// Custom Global Validators

// alphaNumUnderValidation only allows alphanumeric characters and underscores.
func alphaNumUnderValidation(fl validator.FieldLevel) bool {
	return alphaNumUnderRegex.MatchString(fl.Field().String())
}

// civilIDValidation matches the 12-digit national civil ID format used on
// both the student and father ID fields.
func civilIDValidation(fl validator.FieldLevel) bool {
	return civilIDRegex.MatchString(fl.Field().String())
}

// dateValidation accepts the yyyy-mm-dd format produced by date inputs.
func dateValidation(fl validator.FieldLevel) bool {
	_, err := time.Parse(dateLayout, fl.Field().String())
	return err == nil
}

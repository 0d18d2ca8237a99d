package core

import (
	"testing"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

func translatedFieldErrors(err error, trans ut.Translator) map[string]string {
	msgs := make(map[string]string)
	if vErrs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range vErrs {
			msgs[fe.Field()] = fe.Translate(trans)
		}
	}
	return msgs
}

type applicantIDs struct {
	CivilID string `json:"civilId" validate:"required,civilid"`
	Expiry  string `json:"expiry" validate:"required,date"`
}

func TestNewValidator_customTags(t *testing.T) {
	validate, uni := NewValidator()

	assert.NoError(t, validate.Struct(&applicantIDs{CivilID: "123456789012", Expiry: "2030-06-01"}))

	err := validate.Struct(&applicantIDs{CivilID: "12345", Expiry: "01/06/2030"})
	assert.Error(t, err)

	// messages use the json field names and the registered translations
	trans := Translator(uni, "en")
	msgs := translatedFieldErrors(err, trans)
	assert.Equal(t, "a valid 12-digit civil ID is required", msgs["civilId"])
	assert.Equal(t, "a valid date (YYYY-MM-DD) is required", msgs["expiry"])

	trans = Translator(uni, "ar")
	msgs = translatedFieldErrors(err, trans)
	assert.Equal(t, "الرجاء إدخال رقم مدني صحيح مكون من 12 رقماً", msgs["civilId"])
}

func TestTranslator_fallback(t *testing.T) {
	_, uni := NewValidator()

	assert.Equal(t, "en", Translator(uni, "").Locale())
	assert.Equal(t, "en", Translator(uni, "fr").Locale())
	assert.Equal(t, "ar", Translator(uni, "AR").Locale())
}

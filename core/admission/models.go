package admission

import (
	"strings"

	"github.com/alrashid-edu/portal/core"
)

// Answer is the tri-state value of the yes/no questions: unanswered until
// the applicant picks one.
type Answer int

const (
	AnswerUnset Answer = iota
	AnswerYes
	AnswerNo
)

// ParseAnswer accepts the radio-button wire values; anything else is unset.
func ParseAnswer(s string) Answer {
	switch core.CleanString(s, true /* lower */) {
	case "yes", "true":
		return AnswerYes
	case "no", "false":
		return AnswerNo
	}
	return AnswerUnset
}

func (a Answer) Answered() bool { return a != AnswerUnset }

// Wire renders the answer the way the submission endpoint expects it.
func (a Answer) Wire() string {
	switch a {
	case AnswerYes:
		return "true"
	case AnswerNo:
		return "false"
	}
	return ""
}

// Sibling is one already-enrolled sibling of the applicant.
type Sibling struct {
	Name  string `json:"name"`
	Class string `json:"class"`
}

func (s Sibling) Complete() bool {
	return core.CleanString(s.Name) != "" && core.CleanString(s.Class) != ""
}

// File is an uploaded attachment held in memory until submission.
type File struct {
	Filename    string
	ContentType string
	Content     []byte
}

// ClassKG1 is the entry class; applying for it requires a photo or birth
// certificate upload, other classes do not.
const ClassKG1 = "kg1"

func fileRequired(appliedClass string) bool {
	return strings.EqualFold(core.CleanString(appliedClass), ClassKG1)
}

// Form is the admission application draft. Field names on the wire are the
// json tags; validation messages are keyed by them too.
type Form struct {
	AppliedClass       string    `json:"appliedClass" validate:"required"`
	StudentCivilID     string    `json:"studentCivilId" validate:"required,civilid"`
	StudentName        string    `json:"studentName" validate:"required"`
	Nationality        string    `json:"nationality" validate:"required"`
	GuardianName       string    `json:"guardianName" validate:"required"`
	FatherCivilID      string    `json:"fatherCivilId" validate:"required,civilid"`
	BirthDate          string    `json:"birthDate" validate:"required,date"`
	ResidencyExpiry    string    `json:"residencyExpiry" validate:"required,date"`
	PassportNumber     string    `json:"passportNumber" validate:"required"`
	PassportExpiry     string    `json:"passportExpiry" validate:"required,date"`
	SpecialNeeds       Answer    `json:"specialNeeds" validate:"required"`
	HasSiblings        Answer    `json:"hasSiblings" validate:"required"`
	Siblings           []Sibling `json:"siblings" validate:"-"`
	PhotoOrCertificate *File     `json:"-"`
	Agreement          bool      `json:"agreement" validate:"required"`
}

// IsEmpty reports whether the form equals its initial shape.
func (f Form) IsEmpty() bool {
	return f.AppliedClass == "" && f.StudentCivilID == "" && f.StudentName == "" &&
		f.Nationality == "" && f.GuardianName == "" && f.FatherCivilID == "" &&
		f.BirthDate == "" && f.ResidencyExpiry == "" && f.PassportNumber == "" &&
		f.PassportExpiry == "" && !f.SpecialNeeds.Answered() && !f.HasSiblings.Answered() &&
		f.Siblings == nil && f.PhotoOrCertificate == nil && !f.Agreement
}

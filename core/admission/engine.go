// Package admission drives the registration form: draft state, field and
// cross-field validation, and the submit state machine against the school's
// submission endpoint.
package admission

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"sync"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/oklog/ulid/v2"
	"github.com/pkg/errors"

	"github.com/alrashid-edu/portal/core"
)

// State is where the form currently is in its lifecycle.
type State int

const (
	StateEditing State = iota
	StateValidating
	StateSubmitting
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateEditing:
		return "editing"
	case StateValidating:
		return "validating"
	case StateSubmitting:
		return "submitting"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

var (
	// ErrSubmitInFlight gates the submit control: one submission at a time.
	ErrSubmitInFlight = errors.New("a submission is already in progress")

	errUnknownField = errors.New("unknown form field")
	errNoSuchRecord = errors.New("no such sibling record")
)

// SubmissionError wraps a failed submission; the entered values are
// preserved and the applicant may retry.
type SubmissionError struct {
	Err error
}

func (e *SubmissionError) Error() string { return "submission failed" }
func (e *SubmissionError) Unwrap() error { return e.Err }

// Submitter delivers a validated application to the outside world.
type Submitter interface {
	Submit(ctx context.Context, form *Form) error
}

// Engine owns one application draft. Mutations are only accepted while the
// form is editable; validation runs on submit only; a failed submission
// keeps every entered value.
type Engine struct {
	mu        sync.Mutex
	state     State
	form      Form
	fieldErrs map[string]string
	submitErr error

	submitter Submitter
	validate  *validator.Validate
	trans     ut.Translator
	logger    core.Logger
}

func NewEngine(submitter Submitter, validate *validator.Validate, trans ut.Translator, logger core.Logger) *Engine {
	return &Engine{
		state:     StateEditing,
		fieldErrs: make(map[string]string),
		submitter: submitter,
		validate:  validate,
		trans:     trans,
		logger:    logger,
	}
}

func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Form returns a snapshot of the draft.
func (e *Engine) Form() Form {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// FieldErrors returns the field-to-message mapping of the last failed
// validation.
func (e *Engine) FieldErrors() map[string]string {
	e.mu.Lock()
	defer e.mu.Unlock()
	m := make(map[string]string, len(e.fieldErrs))
	for k, v := range e.fieldErrs {
		m[k] = v
	}
	return m
}

// Err returns the dismissable submission error, if any.
func (e *Engine) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.submitErr
}

func (e *Engine) DismissError() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.submitErr = nil
}

// SetField mutates one field by its wire name. Setting a field clears its
// previously shown error without re-validating. Toggling appliedClass away
// from the upload-requiring class discards any attached file; answering the
// siblings question seeds or discards the sibling records.
func (e *Engine) SetField(name, value string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == StateSubmitting {
		return ErrSubmitInFlight
	}
	e.editLocked()

	switch name {
	case "appliedClass":
		e.form.AppliedClass = core.CleanString(value)
		if !fileRequired(e.form.AppliedClass) {
			e.form.PhotoOrCertificate = nil
		}
	case "studentCivilId":
		e.form.StudentCivilID = core.CleanDigits(value)
	case "studentName":
		e.form.StudentName = core.CleanString(value)
	case "nationality":
		e.form.Nationality = core.CleanString(value)
	case "guardianName":
		e.form.GuardianName = core.CleanString(value)
	case "fatherCivilId":
		e.form.FatherCivilID = core.CleanDigits(value)
	case "birthDate":
		e.form.BirthDate = core.CleanString(value)
	case "residencyExpiry":
		e.form.ResidencyExpiry = core.CleanString(value)
	case "passportNumber":
		e.form.PassportNumber = core.CleanString(value)
	case "passportExpiry":
		e.form.PassportExpiry = core.CleanString(value)
	case "specialNeeds":
		e.form.SpecialNeeds = ParseAnswer(value)
	case "hasSiblings":
		e.answerSiblingsLocked(ParseAnswer(value))
	case "agreement":
		checked, err := strconv.ParseBool(value)
		e.form.Agreement = err == nil && checked || value == "on"
	default:
		return errors.Wrap(errUnknownField, name)
	}
	delete(e.fieldErrs, name)
	return nil
}

// AttachFile reads and holds the uploaded file. Content type is sniffed
// when the client did not send one.
func (e *Engine) AttachFile(filename, contentType string, r io.Reader) error {
	content, err := io.ReadAll(r)
	if err != nil {
		return errors.Wrap(err, "reading upload")
	}
	if contentType == "" {
		contentType = http.DetectContentType(content)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == StateSubmitting {
		return ErrSubmitInFlight
	}
	e.editLocked()
	e.form.PhotoOrCertificate = &File{Filename: filename, ContentType: contentType, Content: content}
	delete(e.fieldErrs, "photoOrCertificate")
	return nil
}

func (e *Engine) RemoveFile() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == StateSubmitting {
		return
	}
	e.editLocked()
	e.form.PhotoOrCertificate = nil
}

// AddSibling appends an empty record and returns its index.
func (e *Engine) AddSibling() (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == StateSubmitting {
		return 0, ErrSubmitInFlight
	}
	e.editLocked()
	e.form.Siblings = append(e.form.Siblings, Sibling{})
	delete(e.fieldErrs, "siblings")
	return len(e.form.Siblings) - 1, nil
}

func (e *Engine) SetSibling(i int, name, class string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == StateSubmitting {
		return ErrSubmitInFlight
	}
	if i < 0 || i >= len(e.form.Siblings) {
		return errors.Wrapf(errNoSuchRecord, "index %d", i)
	}
	e.editLocked()
	e.form.Siblings[i] = Sibling{Name: core.CleanString(name), Class: core.CleanString(class)}
	delete(e.fieldErrs, "siblings")
	return nil
}

// Submit runs the full rule set and, when it passes, delivers the
// application. The reference string identifies the accepted submission.
func (e *Engine) Submit(ctx context.Context) (string, error) {
	e.mu.Lock()
	if e.state == StateSubmitting {
		e.mu.Unlock()
		return "", ErrSubmitInFlight
	}

	e.state = StateValidating
	if errs := e.validateLocked(); len(errs) > 0 {
		e.fieldErrs = errs
		e.state = StateEditing
		e.mu.Unlock()

		flds := make([]core.FieldError, 0, len(errs))
		for field, msg := range errs {
			flds = append(flds, core.FieldError{Field: field, Error: msg})
		}
		return "", core.NewValidationError(errors.New("application is incomplete"), flds...)
	}

	e.state = StateSubmitting
	form := e.snapshotLocked()
	e.mu.Unlock()

	err := e.submitter.Submit(ctx, &form)

	e.mu.Lock()
	defer e.mu.Unlock()
	if err != nil {
		// entered values stay put so the applicant can retry
		e.state = StateFailed
		e.submitErr = &SubmissionError{Err: err}
		e.logger.Error("admission submission failed", err)
		return "", e.submitErr
	}

	e.form = Form{}
	e.fieldErrs = make(map[string]string)
	e.submitErr = nil
	e.state = StateSucceeded
	return ulid.Make().String(), nil
}

// editLocked returns the machine to editing after a settled submission; a
// mutation is what dismisses the success/failure banner.
func (e *Engine) editLocked() {
	if e.state == StateSucceeded || e.state == StateFailed {
		e.state = StateEditing
		e.submitErr = nil
	}
}

func (e *Engine) answerSiblingsLocked(a Answer) {
	e.form.HasSiblings = a
	switch a {
	case AnswerYes:
		if len(e.form.Siblings) == 0 {
			e.form.Siblings = append(e.form.Siblings, Sibling{})
		}
	case AnswerNo, AnswerUnset:
		e.form.Siblings = nil
	}
}

func (e *Engine) snapshotLocked() Form {
	form := e.form
	if form.Siblings != nil {
		form.Siblings = append([]Sibling(nil), form.Siblings...)
	}
	return form
}

func (e *Engine) validateLocked() map[string]string {
	errs := make(map[string]string)
	if err := e.validate.Struct(&e.form); err != nil {
		if vErrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range vErrs {
				errs[fe.Field()] = fe.Translate(e.trans)
			}
		} else {
			errs["form"] = err.Error()
		}
	}

	if e.form.HasSiblings == AnswerYes {
		complete := len(e.form.Siblings) > 0
		for _, sib := range e.form.Siblings {
			if !sib.Complete() {
				complete = false
				break
			}
		}
		if !complete {
			errs["siblings"] = e.text(
				"every sibling record needs a name and a class",
				"الرجاء إدخال اسم وصف لكل أخ أو أخت",
			)
		}
	}

	if fileRequired(e.form.AppliedClass) && e.form.PhotoOrCertificate == nil {
		errs["photoOrCertificate"] = e.text(
			"a photo or birth certificate upload is required for this class",
			"الرجاء رفع صورة شخصية بخلفية زرقاء",
		)
	}
	return errs
}

func (e *Engine) text(en, ar string) string {
	if e.trans != nil && e.trans.Locale() == "ar" {
		return ar
	}
	return en
}

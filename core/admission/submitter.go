package admission

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/mail"
	"net/textproto"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/alrashid-edu/portal/core"
)

// HTTPSubmitter posts the application as a multipart form to the configured
// submission endpoint, file part included.
type HTTPSubmitter struct {
	endpoint string
	client   *http.Client
}

var _ Submitter = (*HTTPSubmitter)(nil)

func NewHTTPSubmitter(endpoint string, client *http.Client) *HTTPSubmitter {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPSubmitter{endpoint: endpoint, client: client}
}

func (s *HTTPSubmitter) Submit(ctx context.Context, form *Form) error {
	body := new(bytes.Buffer)
	w := multipart.NewWriter(body)

	fields := map[string]string{
		"appliedClass":    form.AppliedClass,
		"studentCivilId":  form.StudentCivilID,
		"studentName":     form.StudentName,
		"nationality":     form.Nationality,
		"guardianName":    form.GuardianName,
		"fatherCivilId":   form.FatherCivilID,
		"birthDate":       form.BirthDate,
		"residencyExpiry": form.ResidencyExpiry,
		"passportNumber":  form.PassportNumber,
		"passportExpiry":  form.PassportExpiry,
		"specialNeeds":    form.SpecialNeeds.Wire(),
		"hasSiblings":     form.HasSiblings.Wire(),
		"agreement":       strconv.FormatBool(form.Agreement),
	}
	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			return errors.Wrapf(err, "writing field %s", name)
		}
	}

	if len(form.Siblings) > 0 {
		data, err := json.Marshal(form.Siblings)
		if err != nil {
			return errors.Wrap(err, "marshaling siblings")
		}
		if err := w.WriteField("siblings", string(data)); err != nil {
			return errors.Wrap(err, "writing field siblings")
		}
	}

	if f := form.PhotoOrCertificate; f != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="photoOrCertificate"; filename=%q`, f.Filename))
		h.Set("Content-Type", f.ContentType)
		part, err := w.CreatePart(h)
		if err != nil {
			return errors.Wrap(err, "creating file part")
		}
		if _, err := part.Write(f.Content); err != nil {
			return errors.Wrap(err, "writing file part")
		}
	}

	if err := w.Close(); err != nil {
		return errors.Wrap(err, "finalizing multipart body")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, body)
	if err != nil {
		return errors.Wrap(err, "building submission request")
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	res, err := s.client.Do(req)
	if err != nil {
		return &core.TransportError{Op: "admission.submit", Err: err}
	}
	defer res.Body.Close()

	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		return &core.TransportError{Op: "admission.submit", StatusCode: res.StatusCode}
	}
	return nil
}

// EmailSubmitter delivers the application to the admission office inbox
// when no submission endpoint is configured. Delivery itself is
// fire-and-forget, like every EmailService send.
type EmailSubmitter struct {
	svc core.EmailService
	to  mail.Address
}

var _ Submitter = (*EmailSubmitter)(nil)

func NewEmailSubmitter(svc core.EmailService, to string) *EmailSubmitter {
	return &EmailSubmitter{svc: svc, to: mail.Address{Address: to}}
}

func (s *EmailSubmitter) Submit(_ context.Context, form *Form) error {
	var b strings.Builder
	fmt.Fprintf(&b, "New admission application\n\n")
	fmt.Fprintf(&b, "Applied class: %s\n", form.AppliedClass)
	fmt.Fprintf(&b, "Student name: %s\n", form.StudentName)
	fmt.Fprintf(&b, "Student civil ID: %s\n", form.StudentCivilID)
	fmt.Fprintf(&b, "Nationality: %s\n", form.Nationality)
	fmt.Fprintf(&b, "Guardian name: %s\n", form.GuardianName)
	fmt.Fprintf(&b, "Father civil ID: %s\n", form.FatherCivilID)
	fmt.Fprintf(&b, "Birth date: %s\n", form.BirthDate)
	fmt.Fprintf(&b, "Residency expiry: %s\n", form.ResidencyExpiry)
	fmt.Fprintf(&b, "Passport number: %s\n", form.PassportNumber)
	fmt.Fprintf(&b, "Passport expiry: %s\n", form.PassportExpiry)
	fmt.Fprintf(&b, "Special needs: %s\n", form.SpecialNeeds.Wire())
	fmt.Fprintf(&b, "Has siblings: %s\n", form.HasSiblings.Wire())
	for i, sib := range form.Siblings {
		fmt.Fprintf(&b, "Sibling %d: %s (%s)\n", i+1, sib.Name, sib.Class)
	}
	fmt.Fprintf(&b, "Agreement: %t\n", form.Agreement)

	msg := &core.EmailMessage{
		To:          []mail.Address{s.to},
		Subject:     "New admission application - " + form.StudentName,
		TextContent: b.String(),
	}
	if f := form.PhotoOrCertificate; f != nil {
		if err := msg.Attach(bytes.NewReader(f.Content), f.Filename, f.ContentType); err != nil {
			return errors.Wrap(err, "attaching upload")
		}
	}
	s.svc.SendMessages(msg)
	return nil
}

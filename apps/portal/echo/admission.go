package portalapi

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/alrashid-edu/portal/core"
	"github.com/alrashid-edu/portal/core/admission"
)

// admissionFields lists the multipart text fields in binding order;
// hasSiblings must precede the sibling records so answering "yes" seeds the
// list before it is filled.
var admissionFields = []string{
	"appliedClass",
	"studentCivilId",
	"studentName",
	"nationality",
	"guardianName",
	"fatherCivilId",
	"birthDate",
	"residencyExpiry",
	"passportNumber",
	"passportExpiry",
	"specialNeeds",
	"hasSiblings",
	"agreement",
}

type SubmissionResponse struct {
	Success   string `json:"success"`
	Reference string `json:"reference"`
}

// submitAdmission replays the posted multipart form through a fresh form
// engine and submits it; validation failures come back as a field-to-message
// map with nothing sent upstream.
func (s *server) submitAdmission(ctx echo.Context) error {
	form, err := ctx.MultipartForm()
	if err != nil {
		return core.NewValidationError(errors.Wrap(err, "a multipart form is expected"))
	}

	engine := admission.NewEngine(s.opts.Submitter, s.opts.Validate, s.translator(ctx), s.opts.Logger)

	for _, name := range admissionFields {
		if values, ok := form.Value[name]; ok && len(values) > 0 {
			if err := engine.SetField(name, values[0]); err != nil {
				return errors.Wrapf(err, "setting field %s", name)
			}
		}
	}

	if values, ok := form.Value["siblings"]; ok && len(values) > 0 && values[0] != "" {
		var sibs []admission.Sibling
		if err := json.Unmarshal([]byte(values[0]), &sibs); err != nil {
			return core.NewValidationError(nil, core.FieldError{
				Field: "siblings",
				Error: s.text(ctx, "malformed sibling records", "بيانات الإخوة غير صالحة"),
			})
		}
		for i, sib := range sibs {
			if i > 0 {
				if _, err := engine.AddSibling(); err != nil {
					return errors.Wrap(err, "adding sibling record")
				}
			}
			if err := engine.SetSibling(i, sib.Name, sib.Class); err != nil {
				return errors.Wrap(err, "setting sibling record")
			}
		}
	}

	if files, ok := form.File["photoOrCertificate"]; ok && len(files) > 0 {
		fh := files[0]
		src, err := fh.Open()
		if err != nil {
			return errors.Wrap(err, "opening upload")
		}
		err = engine.AttachFile(fh.Filename, fh.Header.Get("Content-Type"), src)
		_ = src.Close()
		if err != nil {
			return errors.Wrap(err, "attaching upload")
		}
	}

	ref, err := engine.Submit(ctx.Request().Context())
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, SubmissionResponse{
		Success:   s.text(ctx, "the application was submitted successfully", "تم إرسال البيانات بنجاح"),
		Reference: ref,
	})
}

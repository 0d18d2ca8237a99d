package admission

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/alrashid-edu/portal/core"
	emailsvc "github.com/alrashid-edu/portal/services/email"
)

func sampleForm() *Form {
	return &Form{
		AppliedClass:    "kg1",
		StudentCivilID:  "123456789012",
		StudentName:     "Sara Ali",
		Nationality:     "Kuwaiti",
		GuardianName:    "Ali Hassan",
		FatherCivilID:   "210987654321",
		BirthDate:       "2018-03-14",
		ResidencyExpiry: "2030-06-01",
		PassportNumber:  "P1234567",
		PassportExpiry:  "2031-01-01",
		SpecialNeeds:    AnswerNo,
		HasSiblings:     AnswerYes,
		Siblings:        []Sibling{{Name: "Yousef", Class: "grade3"}},
		PhotoOrCertificate: &File{
			Filename:    "photo.jpg",
			ContentType: "image/jpeg",
			Content:     []byte("fake-jpeg"),
		},
		Agreement: true,
	}
}

func TestHTTPSubmitter(t *testing.T) {
	var received *http.Request
	var siblingsField string
	var fileContent []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received = r
		assert.NoError(t, r.ParseMultipartForm(1<<20))
		siblingsField = r.FormValue("siblings")

		file, header, err := r.FormFile("photoOrCertificate")
		if assert.NoError(t, err) {
			defer file.Close()
			fileContent, _ = io.ReadAll(file)
			assert.Equal(t, "photo.jpg", header.Filename)
			assert.Equal(t, "image/jpeg", header.Header.Get("Content-Type"))
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	s := NewHTTPSubmitter(srv.URL+"/registration", srv.Client())
	assert.NoError(t, s.Submit(context.Background(), sampleForm()))

	assert.Equal(t, http.MethodPost, received.Method)
	assert.Equal(t, "/registration", received.URL.Path)
	assert.Equal(t, "kg1", received.FormValue("appliedClass"))
	assert.Equal(t, "123456789012", received.FormValue("studentCivilId"))
	assert.Equal(t, "false", received.FormValue("specialNeeds"))
	assert.Equal(t, "true", received.FormValue("hasSiblings"))
	assert.Equal(t, "true", received.FormValue("agreement"))
	assert.Equal(t, []byte("fake-jpeg"), fileContent)

	var siblings []Sibling
	assert.NoError(t, json.Unmarshal([]byte(siblingsField), &siblings))
	assert.Equal(t, []Sibling{{Name: "Yousef", Class: "grade3"}}, siblings)
}

func TestHTTPSubmitter_noSiblingsNoFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseMultipartForm(1<<20))
		_, ok := r.MultipartForm.Value["siblings"]
		assert.False(t, ok)
		assert.Empty(t, r.MultipartForm.File)
	}))
	defer srv.Close()

	form := sampleForm()
	form.HasSiblings = AnswerNo
	form.Siblings = nil
	form.PhotoOrCertificate = nil

	s := NewHTTPSubmitter(srv.URL, srv.Client())
	assert.NoError(t, s.Submit(context.Background(), form))
}

func TestHTTPSubmitter_endpointFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	s := NewHTTPSubmitter(srv.URL, srv.Client())
	err := s.Submit(context.Background(), sampleForm())
	assert.True(t, core.IsTransport(err))
}

func TestHTTPSubmitter_endpointUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	s := NewHTTPSubmitter(srv.URL, nil)
	err := s.Submit(context.Background(), sampleForm())
	assert.True(t, core.IsTransport(err))
}

func TestEmailSubmitter(t *testing.T) {
	emailsvc.ClearSentMessages()
	svc := emailsvc.NewConsoleServiceMock()

	s := NewEmailSubmitter(svc, "admission@school.test")
	assert.NoError(t, s.Submit(context.Background(), sampleForm()))

	if assert.Len(t, emailsvc.SentMessages, 1) {
		msg := emailsvc.SentMessages[0]
		assert.Equal(t, "admission@school.test", msg.To[0].Address)
		assert.Contains(t, msg.Subject, "Sara Ali")
		assert.Contains(t, msg.TextContent, "Student civil ID: 123456789012")
		assert.Contains(t, msg.TextContent, "Sibling 1: Yousef (grade3)")
		if assert.Len(t, msg.Attachments, 1) {
			assert.Equal(t, "photo.jpg", msg.Attachments[0].Filename)
		}
	}
}

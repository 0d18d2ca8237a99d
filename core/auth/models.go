package auth

import (
	"github.com/go-playground/validator/v10"
)

// Credentials is the numeric student/parent identifier pair accepted by the
// upstream login endpoint.
type Credentials struct {
	StudentID int `json:"studentId" validate:"required"`
	ParentID  int `json:"parentId" validate:"required"`
}

func (c *Credentials) Validate(validate *validator.Validate) error {
	return validate.Struct(c)
}

// loginResponse mirrors the upstream POST /auth/login payload. A frozen
// account arrives as a success-shaped body, not an HTTP failure.
type loginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	Role         string `json:"role"`
	Frozen       bool   `json:"frozen"`
}

type (
	UserData struct {
		StudentName string `json:"studentName"`
		ParentName  string `json:"parentName"`
		StudentID   string `json:"studentId"`
		YearID      string `json:"yearId"`
		ClassName   string `json:"className"`
		Role        string `json:"role"`
	}

	Subject struct {
		Subject     string `json:"subject"`
		MarksScored int    `json:"marksScored"`
		MaxMarks    int    `json:"maxMarks"`
		PassedMarks int    `json:"passedMarks"`
		Grade       string `json:"grade"`
	}

	Result struct {
		StudentName      string    `json:"studentName"`
		YearID           string    `json:"yearId"`
		ClassName        string    `json:"className"`
		Division         string    `json:"division,omitempty"`
		CivilID          string    `json:"civilId"`
		Percentage       float64   `json:"percentage"`
		TotalMarksScored int       `json:"totalMarksScored"`
		TotalMaxMarks    int       `json:"totalMaxMarks"`
		TotalPassedMarks int       `json:"totalPassedMarks"`
		Subjects         []Subject `json:"subjects"`
	}

	ProfileResult struct {
		User    UserData `json:"user"`
		Results []Result `json:"results"`
	}

	// profileEnvelope mirrors the upstream GET /auth/profile payload, which
	// wraps everything under "data".
	profileEnvelope struct {
		Data ProfileResult `json:"data"`
	}
)

// Passed reports whether the subject was passed; derived for display, never
// stored.
func (s Subject) Passed() bool {
	return s.MarksScored >= s.PassedMarks
}

// ProfileStatus discriminates the FetchProfile outcome so rendering code
// never pokes at partially-populated response shapes.
type ProfileStatus int

const (
	ProfileOK ProfileStatus = iota
	ProfileEmpty
	ProfileError
)

func (s ProfileStatus) String() string {
	switch s {
	case ProfileOK:
		return "ok"
	case ProfileEmpty:
		return "empty"
	}
	return "error"
}

// ProfileOutcome is the sum type returned by FetchProfile: exactly one of
// the three states is set. ProfileEmpty still carries the user header so the
// "no results uploaded yet" page can greet the student by name.
type ProfileOutcome struct {
	Status  ProfileStatus
	Profile ProfileResult
	Err     error
}

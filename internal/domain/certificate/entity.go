package certificate

import "time"

// Manifest is the stored record of an issued course certificate.
type Manifest struct {
	ID               string    `json:"id"`
	VerificationCode string    `json:"verificationCode"`
	UserID           string    `json:"userId"`
	UserName         string    `json:"userName"`
	CourseID         string    `json:"courseId"`
	CourseTitle      string    `json:"courseTitle"`
	Score            *int      `json:"score,omitempty"`
	IssuedAt         time.Time `json:"issuedAt"`
}

// Summary is one line of index.jsonl.
type Summary struct {
	ID               string    `json:"id"`
	UserID           string    `json:"userId"`
	CourseID         string    `json:"courseId"`
	CourseTitle      string    `json:"courseTitle"`
	VerificationCode string    `json:"verificationCode"`
	IssuedAt         time.Time `json:"issuedAt"`
	Path             string    `json:"path"` // relative to the certificate dir
}

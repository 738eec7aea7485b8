// Package model defines domain entities for the application.
package model

import "time"

// Application age bounds enforced at intake.
const (
	MinApplicantAge = 16
	MaxApplicantAge = 35
)

// Application is a join request accepted through the public intake endpoint.
// Records are created once and never modified by the intake path.
type Application struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	Age         int       `json:"age"`
	Governorate string    `json:"governorate"`
	Education   string    `json:"education"`
	Experience  *string   `json:"experience"`
	Motivation  string    `json:"motivation"`
	CreatedAt   time.Time `json:"created_at"`
}

// HasExperience reports whether the applicant provided prior experience.
func (a *Application) HasExperience() bool {
	return a.Experience != nil && *a.Experience != ""
}

package models

import "time"

type SatisfactionLevel string

const (
	SatisfactionSatisfied    SatisfactionLevel = "Satisfied"
	SatisfactionDissatisfied SatisfactionLevel = "Dissatisfied"
)

type VisitReason string

const (
	VisitReasonInformation  VisitReason = "Information"
	VisitReasonBloodTest    VisitReason = "BloodTest"
	VisitReasonResultPickup VisitReason = "ResultPickup"
)

// Survey is one anonymous intake form submission.
type Survey struct {
	ID              int64
	VisitedAt       time.Time
	LastName        string
	FirstName       *string
	Phone           string
	Email           *string
	VisitReason     VisitReason
	Satisfaction    SatisfactionLevel
	DepartmentID    int64
	DepartmentName  string
	Comments        *string
	Recommendations *string
	IPAddress       string
	UserAgent       string
	CreatedAt       time.Time
}

// SurveyFilter narrows survey listings. Zero values mean "no constraint".
type SurveyFilter struct {
	From         *time.Time
	To           *time.Time
	Satisfaction SatisfactionLevel
	VisitReason  VisitReason
	DepartmentID int64
	Search       string
}

// Department is a unit of the establishment a visitor can rate.
type Department struct {
	ID          int64
	Name        string
	Description string
	Active      bool
	CreatedAt   time.Time
}

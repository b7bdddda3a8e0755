package types

import "time"

// Recommendation is the interviewer's overall verdict.
type Recommendation string

const (
	RecommendationStrongYes Recommendation = "STRONG_YES"
	RecommendationYes       Recommendation = "YES"
	RecommendationMaybe     Recommendation = "MAYBE"
	RecommendationNo        Recommendation = "NO"
	RecommendationStrongNo  Recommendation = "STRONG_NO"
)

// Interview records an admin's evaluation of a student application.
// Scores are on a 1-10 scale; nil means not yet scored.
type Interview struct {
	ID            string `json:"id" db:"id"`
	ApplicationID string `json:"applicationId" db:"application_id"`

	InterviewerID   string     `json:"interviewerId" db:"interviewer_id"`
	InterviewerName string     `json:"interviewerName,omitempty" db:"interviewer_name"`
	InterviewDate   *time.Time `json:"interviewDate,omitempty" db:"interview_date"`

	TechnicalScore     *int `json:"technicalScore,omitempty" db:"technical_score"`
	CommunicationScore *int `json:"communicationScore,omitempty" db:"communication_score"`
	MotivationScore    *int `json:"motivationScore,omitempty" db:"motivation_score"`
	CultureFitScore    *int `json:"cultureFitScore,omitempty" db:"culture_fit_score"`

	// OverallScore is the mean of the scores that are present.
	OverallScore float64 `json:"overallScore" db:"overall_score"`

	Strengths string `json:"strengths,omitempty" db:"strengths"`
	Concerns  string `json:"concerns,omitempty" db:"concerns"`
	Notes     string `json:"notes,omitempty" db:"notes"`

	Recommendation Recommendation `json:"recommendation,omitempty" db:"recommendation"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

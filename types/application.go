package types

import "time"

// Application status values set by admins during review.
const (
	StatusSubmitted   = "submitted"
	StatusUnderReview = "under_review"
	StatusAccepted    = "accepted"
	StatusRejected    = "rejected"
)

// StudentApplication is a student's intake form for a program term.
type StudentApplication struct {
	ID string `json:"id" db:"id"`

	// UserID links the application to the authenticated user that submitted it.
	UserID string `json:"userId" db:"user_id"`

	// Personal information.
	FullName         string `json:"fullName" db:"full_name"`
	Pronouns         string `json:"pronouns,omitempty" db:"pronouns"`
	Email            string `json:"email" db:"email"`
	GradYear         string `json:"gradYear" db:"grad_year"`
	School           string `json:"school" db:"school"`
	Major            string `json:"major" db:"major"`
	LinkedinProfile  string `json:"linkedinProfile,omitempty" db:"linkedin_profile"`
	PortfolioWebsite string `json:"portfolioWebsite,omitempty" db:"portfolio_website"`

	// ResumeKey is the object-storage key of the uploaded resume, if any.
	ResumeKey string `json:"resumeKey,omitempty" db:"resume_key"`

	// Discovery.
	HowDidYouHear  string `json:"howDidYouHear,omitempty" db:"how_did_you_hear"`
	ReferralSource string `json:"referralSource,omitempty" db:"referral_source"`

	// RolePreferences holds the preferred role tracks (creative, business, tech).
	RolePreferences []string `json:"rolePreferences,omitempty" db:"role_preferences"`

	// Short answers.
	StartupsAndIndustries     string `json:"startupsAndIndustries,omitempty" db:"startups_and_industries"`
	ContributionAndExperience string `json:"contributionAndExperience,omitempty" db:"contribution_and_experience"`
	WorkMode                  string `json:"workMode,omitempty" db:"work_mode"`
	TimeCommitment            string `json:"timeCommitment,omitempty" db:"time_commitment"`

	// Miscellaneous.
	AdditionalComments          string `json:"additionalComments,omitempty" db:"additional_comments"`
	PreviouslyApplied           bool   `json:"previouslyApplied" db:"previously_applied"`
	PreviouslyParticipated      bool   `json:"previouslyParticipated" db:"previously_participated"`
	HasUpcomingInternshipOffers bool   `json:"hasUpcomingInternshipOffers" db:"has_upcoming_internship_offers"`

	// Administrative fields, not editable by applicants.
	Term        string     `json:"term,omitempty" db:"term"`
	Status      string     `json:"status" db:"status"`
	SubmittedAt time.Time  `json:"submittedAt" db:"submitted_at"`
	UpdatedAt   time.Time  `json:"updatedAt" db:"updated_at"`
	ReviewedBy  string     `json:"reviewedBy,omitempty" db:"reviewed_by"`
	ReviewNotes string     `json:"reviewNotes,omitempty" db:"review_notes"`
	ReviewedAt  *time.Time `json:"reviewedAt,omitempty" db:"reviewed_at"`
}

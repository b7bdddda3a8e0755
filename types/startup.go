package types

import "time"

// Position describes a single internship role a startup is hiring for.
type Position struct {
	RoleType       string   `json:"roleType"`
	Description    string   `json:"description"`
	RequiredSkills []string `json:"requiredSkills,omitempty"`
	TimeCommitment string   `json:"timeCommitment,omitempty"`
}

// Startup is a startup's intake form for a program term.
type Startup struct {
	ID string `json:"id" db:"id"`

	// UserID links the record to the authenticated user that submitted it.
	UserID string `json:"userId" db:"user_id"`

	// Company information.
	CompanyName string `json:"companyName" db:"company_name"`
	Website     string `json:"website,omitempty" db:"website"`
	Industry    string `json:"industry,omitempty" db:"industry"`
	Description string `json:"description" db:"description"`
	Stage       string `json:"stage,omitempty" db:"stage"`
	TeamSize    string `json:"teamSize,omitempty" db:"team_size"`
	FoundedYear string `json:"foundedYear,omitempty" db:"founded_year"`

	// Contact information.
	ContactName  string `json:"contactName" db:"contact_name"`
	ContactTitle string `json:"contactTitle,omitempty" db:"contact_title"`
	ContactEmail string `json:"contactEmail" db:"contact_email"`
	ContactPhone string `json:"contactPhone,omitempty" db:"contact_phone"`

	// Operating details.
	OperatingMode string `json:"operatingMode,omitempty" db:"operating_mode"`
	TimeZone      string `json:"timeZone,omitempty" db:"time_zone"`

	// Internship details.
	InternsSupervisor         string     `json:"internsSupervisor,omitempty" db:"interns_supervisor"`
	HasHiredInternsPreviously bool       `json:"hasHiredInternsPreviously" db:"has_hired_interns_previously"`
	NumberOfInternsNeeded     int        `json:"numberOfInternsNeeded" db:"number_of_interns_needed"`
	Positions                 []Position `json:"positions,omitempty" db:"positions"`
	WillPayInterns            string     `json:"willPayInterns,omitempty" db:"will_pay_interns"`
	PayAmount                 string     `json:"payAmount,omitempty" db:"pay_amount"`
	LookingForPermanentIntern string     `json:"lookingForPermanentIntern,omitempty" db:"looking_for_permanent_intern"`
	ProjectDescriptionURL     string     `json:"projectDescriptionUrl,omitempty" db:"project_description_url"`

	// Discovery and commitment.
	ReferralSource         string `json:"referralSource,omitempty" db:"referral_source"`
	CommitmentAcknowledged bool   `json:"commitmentAcknowledged" db:"commitment_acknowledged"`

	// Administrative fields, not editable by applicants.
	Term        string    `json:"term,omitempty" db:"term"`
	Status      string    `json:"status" db:"status"`
	SubmittedAt time.Time `json:"submittedAt" db:"submitted_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
	ReviewedBy  string    `json:"reviewedBy,omitempty" db:"reviewed_by"`
	ReviewNotes string    `json:"reviewNotes,omitempty" db:"review_notes"`
}

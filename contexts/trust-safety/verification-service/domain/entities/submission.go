package entities

import "time"

type SubmissionStatus string

const (
	SubmissionStatusPending           SubmissionStatus = "pending"
	SubmissionStatusModeratorReviewed SubmissionStatus = "moderator_reviewed"
	SubmissionStatusApproved          SubmissionStatus = "approved"
	SubmissionStatusRejected          SubmissionStatus = "rejected"
)

// Terminal reports whether no further transitions exist from the status.
func (s SubmissionStatus) Terminal() bool {
	return s == SubmissionStatusApproved || s == SubmissionStatusRejected
}

type SubmissionType string

const (
	SubmissionTypeAgencyLegalDocs          SubmissionType = "agency_legal_docs"
	SubmissionTypeAgencyPhysical           SubmissionType = "agency_physical"
	SubmissionTypeCaregiverCertificate     SubmissionType = "caregiver_certificate"
	SubmissionTypeCaregiverPoliceClearance SubmissionType = "caregiver_police_clearance"
	SubmissionTypeCaregiverInterview       SubmissionType = "caregiver_interview"
	SubmissionTypeCaregiverPsych           SubmissionType = "caregiver_psych"
)

func ValidSubmissionType(t SubmissionType) bool {
	switch t {
	case SubmissionTypeAgencyLegalDocs,
		SubmissionTypeAgencyPhysical,
		SubmissionTypeCaregiverCertificate,
		SubmissionTypeCaregiverPoliceClearance,
		SubmissionTypeCaregiverInterview,
		SubmissionTypeCaregiverPsych:
		return true
	}
	return false
}

// Recommendation is the first-tier moderator verdict. It recommends but
// never finalizes.
type Recommendation string

const (
	RecommendationApprove Recommendation = "approve"
	RecommendationReject  Recommendation = "reject"
)

// AdminDecision is the binding second-tier verdict.
type AdminDecision string

const (
	AdminDecisionApprove        AdminDecision = "approve"
	AdminDecisionSendBack       AdminDecision = "send_back"
	AdminDecisionOverrideReject AdminDecision = "override_reject"
)

// Submission is a verification artifact under review. A send-back returns
// the same record to pending with ReviewCycle incremented; it never creates
// a new entity.
type Submission struct {
	SubmissionID   string
	Type           SubmissionType
	SubmitterID    string
	Status         SubmissionStatus
	ModeratorID    string
	Recommendation Recommendation
	ModeratorNotes string
	AdminDecision  AdminDecision
	AdminFeedback  string
	ReviewCycle    int
	Version        int64
	SubmittedAt    time.Time
	ReviewedAt     *time.Time
	DecidedAt      *time.Time
	UpdatedAt      time.Time
}

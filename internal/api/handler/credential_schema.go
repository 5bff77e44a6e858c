package handler

import (
	"time"

	"github.com/proconnect/verification-system/internal/core/domain"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Request / Response types ---

type submitCredentialRequest struct {
	Type         string     `json:"type"         validate:"required,oneof=certification education work_experience"`
	Title        string     `json:"title"        validate:"required,max=200"`
	Organization string     `json:"organization" validate:"required,max=200"`
	StartDate    *time.Time `json:"start_date"`
	EndDate      *time.Time `json:"end_date"`
}

type submitVerificationRequest struct {
	Type         string `json:"type"          validate:"required,oneof=certification education work_experience"`
	CredentialID string `json:"credential_id" validate:"required"`
}

// credentialResponse is the transport shape of a single credential. It is
// intentionally separate from the domain type so the JSON contract is not
// coupled to internal changes.
type credentialResponse struct {
	ID              string     `json:"id"`
	Type            string     `json:"type"`
	Title           string     `json:"title"`
	Organization    string     `json:"organization"`
	StartDate       *time.Time `json:"start_date,omitempty"`
	EndDate         *time.Time `json:"end_date,omitempty"`
	Status          string     `json:"status"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
	VerifiedAt      *time.Time `json:"verified_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

type listCredentialsResponse struct {
	Certifications  []credentialResponse `json:"certifications"`
	Educations      []credentialResponse `json:"educations"`
	WorkExperiences []credentialResponse `json:"work_experiences"`
}

type verificationRequestResponse struct {
	ID             string    `json:"id"`
	CredentialType string    `json:"credential_type"`
	CredentialID   string    `json:"credential_id"`
	OwnerID        string    `json:"owner_id"`
	Status         string    `json:"status"`
	ReviewerID     string    `json:"reviewer_id,omitempty"`
	Notes          string    `json:"notes,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func toCredentialResponse(c *domain.Credential) credentialResponse {
	return credentialResponse{
		ID:              c.ID,
		Type:            string(c.Type),
		Title:           c.Title,
		Organization:    c.Organization,
		StartDate:       c.StartDate,
		EndDate:         c.EndDate,
		Status:          string(c.Status),
		RejectionReason: c.RejectionReason,
		VerifiedAt:      c.VerifiedAt,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

func toCredentialResponses(creds []*domain.Credential) []credentialResponse {
	out := make([]credentialResponse, 0, len(creds))
	for _, c := range creds {
		out = append(out, toCredentialResponse(c))
	}
	return out
}

func toRequestResponse(r *domain.VerificationRequest) verificationRequestResponse {
	return verificationRequestResponse{
		ID:             r.ID,
		CredentialType: string(r.Credential.Type),
		CredentialID:   r.Credential.ID,
		OwnerID:        r.OwnerID,
		Status:         string(r.Status),
		ReviewerID:     r.ReviewerID,
		Notes:          r.Notes,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

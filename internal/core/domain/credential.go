package domain

import (
	"errors"
	"time"
)

// CredentialType identifies one of the three credential variants.
type CredentialType string

const (
	TypeCertification  CredentialType = "certification"
	TypeEducation      CredentialType = "education"
	TypeWorkExperience CredentialType = "work_experience"
)

// CredentialStatus represents the verification lifecycle state of a credential.
type CredentialStatus string

const (
	CredentialPending  CredentialStatus = "pending"
	CredentialVerified CredentialStatus = "verified"
	CredentialRejected CredentialStatus = "rejected"
)

var ErrCredentialNotFound = errors.New("credential not found")
var ErrRequestNotFound = errors.New("verification request not found")
var ErrInvalidCredentialType = errors.New("invalid credential type")
var ErrInvalidStatus = errors.New("invalid credential status")
var ErrNoteRequired = errors.New("a note is required when rejecting a credential")
var ErrForbidden = errors.New("access forbidden")
var ErrRequestAlreadyQueued = errors.New("credential already has a queued verification request")

// ValidCredentialType reports whether t is one of the three known variants.
func ValidCredentialType(t CredentialType) bool {
	switch t {
	case TypeCertification, TypeEducation, TypeWorkExperience:
		return true
	}
	return false
}

// ValidCredentialStatus reports whether s is a recognized lifecycle state.
func ValidCredentialStatus(s CredentialStatus) bool {
	switch s {
	case CredentialPending, CredentialVerified, CredentialRejected:
		return true
	}
	return false
}

// Credential is the common shape shared by all three variants. The Type tag
// selects the variant; the Status Transition Engine dispatches on it rather
// than on field presence.
type Credential struct {
	ID              string           `json:"id" bson:"_id,omitempty"`
	Type            CredentialType   `json:"type" bson:"-"`
	OwnerID         string           `json:"owner_id" bson:"owner_id"`
	Title           string           `json:"title" bson:"title"`
	Organization    string           `json:"organization" bson:"organization"`
	StartDate       *time.Time       `json:"start_date,omitempty" bson:"start_date,omitempty"`
	EndDate         *time.Time       `json:"end_date,omitempty" bson:"end_date,omitempty"`
	Status          CredentialStatus `json:"status" bson:"status"`
	RejectionReason string           `json:"rejection_reason,omitempty" bson:"rejection_reason,omitempty"`
	VerifiedAt      *time.Time       `json:"verified_at,omitempty" bson:"verified_at,omitempty"`
	CreatedAt       time.Time        `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at" bson:"updated_at"`
}

// ApplyStatus transitions the credential to status at time now, maintaining
// the field invariants: verified_at is set iff status is verified, and
// rejection_reason is set iff status is rejected.
func (c *Credential) ApplyStatus(status CredentialStatus, note string, now time.Time) {
	c.Status = status
	c.UpdatedAt = now

	switch status {
	case CredentialVerified:
		ts := now
		c.VerifiedAt = &ts
		c.RejectionReason = ""
	case CredentialRejected:
		c.VerifiedAt = nil
		c.RejectionReason = note
	default:
		c.VerifiedAt = nil
		c.RejectionReason = ""
	}
}

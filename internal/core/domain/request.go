package domain

import (
	"errors"
	"time"
)

var ErrRequestNotQueued = errors.New("verification request already resolved")
var ErrInvalidDecision = errors.New("invalid review decision")

// RequestStatus represents the lifecycle state of a verification request.
type RequestStatus string

const (
	RequestQueued    RequestStatus = "queued"
	RequestCompleted RequestStatus = "completed"
	RequestRejected  RequestStatus = "rejected"
)

// CredentialRef points at exactly one credential by type and id.
type CredentialRef struct {
	Type CredentialType `json:"type" bson:"type"`
	ID   string         `json:"id" bson:"id"`
}

// VerificationRequest is one tracked attempt to have a credential reviewed.
// A credential has at most one queued request outstanding at any time; the
// engine enforces this at creation.
type VerificationRequest struct {
	ID         string        `json:"id" bson:"_id,omitempty"`
	Credential CredentialRef `json:"credential" bson:"credential"`
	OwnerID    string        `json:"owner_id" bson:"owner_id"`
	Status     RequestStatus `json:"status" bson:"status"`
	ReviewerID string        `json:"reviewer_id,omitempty" bson:"reviewer_id,omitempty"`
	Notes      string        `json:"notes,omitempty" bson:"notes,omitempty"`
	CreatedAt  time.Time     `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at" bson:"updated_at"`
}

// Close resolves a queued request. Approved attempts complete; any other
// resolution (rejection or reset of the credential) rejects the attempt.
func (r *VerificationRequest) Close(approved bool, reviewerID, note string, now time.Time) {
	if approved {
		r.Status = RequestCompleted
	} else {
		r.Status = RequestRejected
	}
	r.ReviewerID = reviewerID
	r.Notes = note
	r.UpdatedAt = now
}

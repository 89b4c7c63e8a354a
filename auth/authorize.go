package auth

import (
	"time"

	"github.com/clinicware/clinic-backend/models"
)

// Authorizer decides whether a download request may receive file bytes.
// Access is all-or-nothing; there is no metadata-only grant.
type Authorizer struct {
	Tokens   *TokenService
	TokenTTL time.Duration
}

func NewAuthorizer(tokens *TokenService, ttl time.Duration) *Authorizer {
	return &Authorizer{Tokens: tokens, TokenTTL: ttl}
}

// Authorize evaluates the three independent access paths in order, first
// match wins:
//  1. a patient session owning the file,
//  2. any staff or admin session,
//  3. a supplied token that verifies and names this exact file.
func (a *Authorizer) Authorize(si SessionInfo, file models.PatientFile, token string) bool {
	if si.HasPatient && si.PatientID == file.PatientID {
		return true
	}
	if si.HasStaff || si.IsAdmin {
		return true
	}
	if token != "" {
		fileID, err := a.Tokens.Verify(token, a.TokenTTL)
		if err == nil && fileID == file.ID {
			return true
		}
	}
	return false
}

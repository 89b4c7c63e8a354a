package auth

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/clinicware/clinic-backend/models"
)

// Session keys. Staff impersonation sets the patient keys on top of the
// staff ones and records who is impersonating.
const (
	KeyPatientID      = "patient_id"
	KeyPatientEmail   = "patient_email"
	KeyStaffID        = "staff_id"
	KeyStaffEmail     = "staff_email"
	KeyStaffRole      = "staff_role"
	KeyIsAdmin        = "is_admin"
	KeyImpersonatedBy = "impersonated_by"
)

// SessionInfo is a plain snapshot of the requester's session, extracted
// once per request and passed explicitly to authorization logic.
type SessionInfo struct {
	PatientID    uint
	PatientEmail string
	HasPatient   bool
	StaffEmail   string
	StaffRole    string
	HasStaff     bool
	IsAdmin      bool
}

// Info reads the current session into a SessionInfo.
func Info(c *gin.Context) SessionInfo {
	sess := sessions.Default(c)
	var si SessionInfo
	if v, ok := sess.Get(KeyPatientID).(uint); ok && v != 0 {
		si.PatientID = v
		si.HasPatient = true
	}
	if v, ok := sess.Get(KeyPatientEmail).(string); ok {
		si.PatientEmail = v
	}
	if v, ok := sess.Get(KeyStaffEmail).(string); ok && v != "" {
		si.StaffEmail = v
		si.HasStaff = true
	}
	if v, ok := sess.Get(KeyStaffRole).(string); ok {
		si.StaffRole = v
	}
	if v, ok := sess.Get(KeyIsAdmin).(bool); ok {
		si.IsAdmin = v
	}
	return si
}

// Actor names the requester for audit entries: staff first, then patient,
// falling back to "system".
func (si SessionInfo) Actor() string {
	if si.StaffEmail != "" {
		return si.StaffEmail
	}
	if si.PatientEmail != "" {
		return si.PatientEmail
	}
	return "system"
}

// CanAdmin reports whether the session may use admin pages: either the
// admin-password login or a staff account with the admin role.
func (si SessionInfo) CanAdmin() bool {
	return si.IsAdmin || si.StaffRole == models.RoleAdmin
}

// CanStaff reports whether the session may use staff pages. Admin-password
// sessions count as staff.
func (si SessionInfo) CanStaff() bool {
	return si.HasStaff || si.IsAdmin
}

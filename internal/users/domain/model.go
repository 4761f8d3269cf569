package domain

import (
	"strings"
	"time"
)

type Role string

const (
	RoleAdmin       Role = "admin"
	RoleProcurement Role = "procurement"
	RolePM          Role = "pm"
	RoleEngineer    Role = "engineer"
)

// DefaultRole is assigned when an administrator creates a user without one.
const DefaultRole = RoleEngineer

func ParseRole(s string) (Role, bool) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleAdmin, RoleProcurement, RolePM, RoleEngineer:
		return r, true
	}
	return "", false
}

// CanApprove reports whether the role may approve documents. The check is
// global: a pm may approve documents of any project.
func (r Role) CanApprove() bool {
	return r == RoleAdmin || r == RolePM
}

// UserProfile is the application-level user record stored at users/{uid}.
// UID is the document ID and never changes.
type UserProfile struct {
	UID         string    `firestore:"-" json:"uid"`
	Email       string    `firestore:"email" json:"email"`
	DisplayName string    `firestore:"displayName" json:"displayName"`
	Role        Role      `firestore:"role" json:"role"`
	IsActive    bool      `firestore:"isActive" json:"isActive"`
	PhoneNumber *string   `firestore:"phoneNumber" json:"phoneNumber"`
	LineUserID  *string   `firestore:"lineUserId" json:"lineUserId"`
	LinePic     *string   `firestore:"linePic" json:"linePic"`
	CreatedAt   time.Time `firestore:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time `firestore:"updatedAt" json:"updatedAt"`
}

func (p *UserProfile) Phone() string {
	if p == nil || p.PhoneNumber == nil {
		return ""
	}
	return *p.PhoneNumber
}

func (p *UserProfile) LineID() string {
	if p == nil || p.LineUserID == nil {
		return ""
	}
	return *p.LineUserID
}

// CreateProfile is the administrator's input for provisioning a user.
type CreateProfile struct {
	Email       string
	Password    string
	DisplayName string
	Role        Role
	PhoneNumber string
}

// UpdateProfile carries a partial update. Nil fields are left untouched; an
// empty PhoneNumber clears the stored number.
type UpdateProfile struct {
	DisplayName *string
	Role        *Role
	IsActive    *bool
	PhoneNumber *string
}

func (u UpdateProfile) Empty() bool {
	return u.DisplayName == nil && u.Role == nil && u.IsActive == nil && u.PhoneNumber == nil
}

// Binding is the change written to a profile when a LINE account is linked.
type Binding struct {
	UID        string
	LineUserID string
	LinePic    *string
}

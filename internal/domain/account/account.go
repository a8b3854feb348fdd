package account

import (
	"errors"
	"time"
)

var (
	ErrNotFound    = errors.New("account not found")
	ErrDuplicateID = errors.New("account id already taken")
)

const (
	RoleUser  = "user"
	RoleAdmin = "administrator"
)

type Account struct {
	UserID       string    `json:"userId"`
	PasswordHash string    `json:"-"` // never expose hash in JSON
	Email        string    `json:"email"`
	Nickname     string    `json:"nickname"`
	Memo         string    `json:"memo,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	CreatedBy    string    `json:"createdBy"`
	ModifiedAt   time.Time `json:"modifiedAt"`
	ModifiedBy   string    `json:"modifiedBy"`
}

// Principal is the authenticated view of an Account. It lives for one
// request and is never persisted; the hash rides along only so the
// authentication pipeline can verify credentials.
type Principal struct {
	UserID       string   `json:"userId"`
	PasswordHash string   `json:"-"`
	Roles        []string `json:"roles"`
	Email        string   `json:"email"`
	Nickname     string   `json:"nickname"`
	Memo         string   `json:"memo,omitempty"`
}

func (p Principal) IsAnonymous() bool {
	return p.UserID == ""
}

func (p Principal) HasRole(role string) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}

	return false
}

// NewPrincipal derives a Principal from a stored account plus the resolved
// role set. Everyone carries at least the user role.
func NewPrincipal(a Account, roles []string) Principal {
	if len(roles) == 0 {
		roles = []string{RoleUser}
	}

	return Principal{
		UserID:       a.UserID,
		PasswordHash: a.PasswordHash,
		Roles:        roles,
		Email:        a.Email,
		Nickname:     a.Nickname,
		Memo:         a.Memo,
	}
}

// RoleResolver decides which roles an identifier carries. Administrator
// membership is provisioned out of band (config), never read from account rows,
// so swapping the resolver leaves the authorization policy untouched.
type RoleResolver interface {
	Resolve(userID string) []string
}

type StaticRoleResolver struct {
	admins map[string]struct{}
}

func NewStaticRoleResolver(adminIDs []string) *StaticRoleResolver {
	admins := make(map[string]struct{}, len(adminIDs))

	for _, id := range adminIDs {
		if id != "" {
			admins[id] = struct{}{}
		}
	}

	return &StaticRoleResolver{admins: admins}
}

func (r *StaticRoleResolver) Resolve(userID string) []string {
	if _, ok := r.admins[userID]; ok {
		return []string{RoleUser, RoleAdmin}
	}

	return []string{RoleUser}
}

type RegisterRequest struct {
	UserID   string `json:"userId" binding:"required,min=3,max=50"`
	Password string `json:"password" binding:"required,min=8"`
	Email    string `json:"email" binding:"required,email"`
	Nickname string `json:"nickname" binding:"required,max=100"`
	Memo     string `json:"memo" binding:"omitempty,max=1000"`
}

// a full update payload, might switch to a patch which optionally provides means for partial updates.
type UpdateRequest struct {
	Password string `json:"password" binding:"required,min=8"`
	Email    string `json:"email" binding:"required,email"`
	Nickname string `json:"nickname" binding:"required,max=100"`
	Memo     string `json:"memo" binding:"omitempty,max=1000"`
}

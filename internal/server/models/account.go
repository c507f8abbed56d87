package models

import "time"

// Account is a user account row. RefreshToken holds the single live refresh
// token for the account (nil when logged out); it is written only by the
// session service.
type Account struct {
	ID            string
	Username      string
	FullName      string
	Email         string
	PasswordHash  string
	AvatarURL     string
	CoverImageURL string
	RefreshToken  *string
	CreatedAt     time.Time
}

// AccountView is the sanitized representation returned to callers.
// It never carries the password hash or the refresh token.
type AccountView struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	FullName      string    `json:"fullName"`
	Email         string    `json:"email"`
	AvatarURL     string    `json:"avatar"`
	CoverImageURL string    `json:"coverImage"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Sanitized strips credential fields from the account.
func (a *Account) Sanitized() *AccountView {
	return &AccountView{
		ID:            a.ID,
		Username:      a.Username,
		FullName:      a.FullName,
		Email:         a.Email,
		AvatarURL:     a.AvatarURL,
		CoverImageURL: a.CoverImageURL,
		CreatedAt:     a.CreatedAt,
	}
}

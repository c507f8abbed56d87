// Package services contains server-side business logic. This file implements
// SessionService, which handles registration, login, logout, refresh-token
// rotation, and account/media updates.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/viewtube/internal/common"
	"github.com/dmitrijs2005/viewtube/internal/dbx"
	"github.com/dmitrijs2005/viewtube/internal/logging"
	"github.com/dmitrijs2005/viewtube/internal/server/auth"
	"github.com/dmitrijs2005/viewtube/internal/server/models"
	"github.com/dmitrijs2005/viewtube/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/viewtube/internal/server/storage"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// RegisterInput carries the fields and file handles of a registration request.
// Avatar is required; CoverImage may be nil.
type RegisterInput struct {
	Username   string
	FullName   string
	Email      string
	Password   string
	Avatar     *storage.Upload
	CoverImage *storage.Upload
}

// LoginResult is the outcome of a successful login or refresh: the sanitized
// account plus both tokens for cookie delivery.
type LoginResult struct {
	Account *models.AccountView
	Tokens  TokenPair
}

// RepositoryFactory binds an accounts repository to a DB handle, so the same
// repository implementation can run against *sql.DB or a transaction.
type RepositoryFactory func(db dbx.DBTX) accounts.Repository

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// SessionService provides the account and session lifecycle:
//   - Register: create accounts with uploaded media
//   - Login: verify credentials and mint a token pair
//   - Refresh: rotate the stored refresh token and mint a new pair
//   - Logout: clear the stored refresh token
//
// plus credential and profile updates. The stored refresh-token value is the
// single live one per account and is mutated only here.
type SessionService struct {
	db      *sql.DB
	repoFor RepositoryFactory
	media   storage.MediaStore
	codec   *auth.TokenCodec
	logger  logging.Logger

	// locks serializes login/refresh/logout per account so two concurrent
	// refreshes cannot both succeed with the same presented token. Entries
	// are never removed; the map is bounded by the number of accounts seen
	// by this process.
	locks sync.Map
}

// NewSessionService constructs a SessionService.
func NewSessionService(db *sql.DB, repoFor RepositoryFactory, media storage.MediaStore, codec *auth.TokenCodec, logger logging.Logger) *SessionService {
	return &SessionService{
		db:      db,
		repoFor: repoFor,
		media:   media,
		codec:   codec,
		logger:  logger.With("module", "session_service"),
	}
}

// Register validates the input, uploads the avatar (required) and cover
// image (optional), and creates the account. The returned view carries no
// credential fields.
func (s *SessionService) Register(ctx context.Context, input RegisterInput) (*models.AccountView, error) {
	username := strings.ToLower(strings.TrimSpace(input.Username))
	fullName := strings.TrimSpace(input.FullName)
	// Emails are stored lowercase so the case-folded login lookup finds them.
	email := strings.ToLower(strings.TrimSpace(input.Email))

	if username == "" || fullName == "" || email == "" || input.Password == "" {
		return nil, fmt.Errorf("%w: all fields are required", common.ErrorBadRequest)
	}
	if !emailRe.MatchString(email) {
		return nil, fmt.Errorf("%w: email is invalid", common.ErrorBadRequest)
	}
	if input.Avatar == nil {
		return nil, fmt.Errorf("%w: avatar file is required", common.ErrorValidation)
	}

	repo := s.repoFor(s.db)

	if _, err := repo.GetByIdentifier(ctx, username); err == nil {
		return nil, fmt.Errorf("%w: user with username or email already exists", common.ErrorConflict)
	} else if !errors.Is(err, common.ErrorNotFound) {
		return nil, err
	}
	if _, err := repo.GetByIdentifier(ctx, email); err == nil {
		return nil, fmt.Errorf("%w: user with username or email already exists", common.ErrorConflict)
	} else if !errors.Is(err, common.ErrorNotFound) {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	avatarURL, err := s.media.Upload(ctx, *input.Avatar)
	if err != nil {
		return nil, fmt.Errorf("%w: avatar upload failed", common.ErrorValidation)
	}

	coverURL := ""
	if input.CoverImage != nil {
		coverURL, err = s.media.Upload(ctx, *input.CoverImage)
		if err != nil {
			return nil, fmt.Errorf("%w: cover image upload failed", common.ErrorValidation)
		}
	}

	account, err := repo.Create(ctx, &models.Account{
		Username:      username,
		FullName:      fullName,
		Email:         email,
		PasswordHash:  hash,
		AvatarURL:     avatarURL,
		CoverImageURL: coverURL,
	})
	if err != nil {
		if errors.Is(err, common.ErrorConflict) {
			return nil, fmt.Errorf("%w: user with username or email already exists", common.ErrorConflict)
		}
		return nil, err
	}

	return account.Sanitized(), nil
}

// Login verifies the identifier/password pair and, on success, issues a
// fresh token pair and persists the refresh value on the account. Any
// previously stored refresh token is overwritten: last login wins.
func (s *SessionService) Login(ctx context.Context, identifier, password string) (*LoginResult, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, fmt.Errorf("%w: username or email is required", common.ErrorBadRequest)
	}
	if password == "" {
		return nil, fmt.Errorf("%w: password is required", common.ErrorBadRequest)
	}

	repo := s.repoFor(s.db)

	account, err := repo.GetByIdentifier(ctx, strings.ToLower(identifier))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("%w: user does not exist", common.ErrorNotFound)
		}
		return nil, err
	}

	ok, err := auth.CheckPassword(password, account.PasswordHash)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: invalid user credentials", common.ErrorUnauthorized)
	}

	unlock := s.lockAccount(account.ID)
	defer unlock()

	pair, err := s.issueTokenPair(ctx, repo, account.ID)
	if err != nil {
		return nil, err
	}

	return &LoginResult{Account: account.Sanitized(), Tokens: *pair}, nil
}

// Logout clears the stored refresh token unconditionally. Logging out an
// already logged-out account is not an error.
func (s *SessionService) Logout(ctx context.Context, accountID string) error {
	unlock := s.lockAccount(accountID)
	defer unlock()

	err := s.repoFor(s.db).SetRefreshToken(ctx, accountID, nil)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		return err
	}
	return nil
}

// Refresh exchanges a live refresh token for a brand-new pair and rotates
// the stored value, so the presented token becomes permanently unusable.
// A token that verifies but no longer equals the stored value is replay of
// a rotated token and is rejected without touching the current generation.
func (s *SessionService) Refresh(ctx context.Context, presented string) (*LoginResult, error) {
	if presented == "" {
		return nil, fmt.Errorf("%w: missing refresh token", common.ErrorUnauthorized)
	}

	userID, err := s.codec.Verify(presented, auth.KindRefresh)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid refresh token", common.ErrorUnauthorized)
	}

	unlock := s.lockAccount(userID)
	defer unlock()

	var result *LoginResult
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repoFor(tx)

		account, err := repo.GetByID(ctx, userID)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return fmt.Errorf("%w: user does not exist", common.ErrorNotFound)
			}
			return err
		}

		if account.RefreshToken == nil || *account.RefreshToken != presented {
			return fmt.Errorf("%w: refresh token expired or used", common.ErrorUnauthorized)
		}

		pair, err := s.issueTokenPair(ctx, repo, account.ID)
		if err != nil {
			return err
		}

		result = &LoginResult{Account: account.Sanitized(), Tokens: *pair}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GetAccount returns the sanitized account for the given ID.
func (s *SessionService) GetAccount(ctx context.Context, accountID string) (*models.AccountView, error) {
	account, err := s.repoFor(s.db).GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return account.Sanitized(), nil
}

// ChangePassword re-hashes and stores the new password after verifying the
// old one. It deliberately does not rotate the refresh token: no forced
// re-login on password change.
func (s *SessionService) ChangePassword(ctx context.Context, accountID, oldPassword, newPassword string) error {
	if oldPassword == "" || newPassword == "" {
		return fmt.Errorf("%w: old and new passwords are required", common.ErrorBadRequest)
	}

	repo := s.repoFor(s.db)

	account, err := repo.GetByID(ctx, accountID)
	if err != nil {
		return err
	}

	ok, err := auth.CheckPassword(oldPassword, account.PasswordHash)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: invalid password", common.ErrorUnauthorized)
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return repo.UpdatePassword(ctx, accountID, hash)
}

// UpdateDetails updates full name and/or email. At least one field must be
// provided.
func (s *SessionService) UpdateDetails(ctx context.Context, accountID, fullName, email string) (*models.AccountView, error) {
	fullName = strings.TrimSpace(fullName)
	email = strings.ToLower(strings.TrimSpace(email))

	if fullName == "" && email == "" {
		return nil, fmt.Errorf("%w: please provide a field to update", common.ErrorBadRequest)
	}
	if email != "" && !emailRe.MatchString(email) {
		return nil, fmt.Errorf("%w: email is invalid", common.ErrorBadRequest)
	}

	account, err := s.repoFor(s.db).UpdateDetails(ctx, accountID, fullName, email)
	if err != nil {
		return nil, err
	}
	return account.Sanitized(), nil
}

// UpdateAvatar uploads the new avatar, stores its URL, and schedules a
// best-effort deletion of the superseded object.
func (s *SessionService) UpdateAvatar(ctx context.Context, accountID string, upload *storage.Upload) (*models.AccountView, error) {
	return s.updateMedia(ctx, accountID, upload, "avatar",
		func(a *models.Account) string { return a.AvatarURL },
		func(repo accounts.Repository, url string) error {
			return repo.UpdateAvatarURL(ctx, accountID, url)
		},
		func(a *models.Account, url string) { a.AvatarURL = url },
	)
}

// UpdateCoverImage uploads the new cover image, stores its URL, and
// schedules a best-effort deletion of the superseded object.
func (s *SessionService) UpdateCoverImage(ctx context.Context, accountID string, upload *storage.Upload) (*models.AccountView, error) {
	return s.updateMedia(ctx, accountID, upload, "cover image",
		func(a *models.Account) string { return a.CoverImageURL },
		func(repo accounts.Repository, url string) error {
			return repo.UpdateCoverImageURL(ctx, accountID, url)
		},
		func(a *models.Account, url string) { a.CoverImageURL = url },
	)
}

// ChannelProfile returns the public channel view of username as seen by
// viewerID.
func (s *SessionService) ChannelProfile(ctx context.Context, username, viewerID string) (*models.ChannelProfile, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return nil, fmt.Errorf("%w: username is missing", common.ErrorBadRequest)
	}
	return s.repoFor(s.db).ChannelProfile(ctx, username, viewerID)
}

// WatchHistory returns the account's watch events, most recent first.
func (s *SessionService) WatchHistory(ctx context.Context, accountID string) ([]*models.WatchEvent, error) {
	return s.repoFor(s.db).WatchHistory(ctx, accountID)
}

// --- helpers below ---

func (s *SessionService) lockAccount(accountID string) func() {
	v, _ := s.locks.LoadOrStore(accountID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// issueTokenPair mints a fresh access+refresh pair and persists the refresh
// value on the account, superseding any previous one.
func (s *SessionService) issueTokenPair(ctx context.Context, repo accounts.Repository, accountID string) (*TokenPair, error) {
	access, err := s.codec.SignAccess(accountID)
	if err != nil {
		return nil, common.ErrorInternal
	}
	refresh, err := s.codec.SignRefresh(accountID)
	if err != nil {
		return nil, common.ErrorInternal
	}
	if err := repo.SetRefreshToken(ctx, accountID, &refresh); err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *SessionService) updateMedia(ctx context.Context, accountID string, upload *storage.Upload, kind string,
	currentURL func(*models.Account) string,
	storeURL func(accounts.Repository, string) error,
	applyURL func(*models.Account, string),
) (*models.AccountView, error) {
	if upload == nil {
		return nil, fmt.Errorf("%w: %s file is missing", common.ErrorValidation, kind)
	}

	repo := s.repoFor(s.db)

	account, err := repo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	newURL, err := s.media.Upload(ctx, *upload)
	if err != nil {
		return nil, err
	}

	if err := storeURL(repo, newURL); err != nil {
		return nil, err
	}

	// The user-facing record is already correct; removing the superseded
	// object must not roll it back, so the deletion runs detached and a
	// failure is only logged.
	if oldURL := currentURL(account); oldURL != "" {
		go s.deleteSuperseded(kind, oldURL)
	}

	applyURL(account, newURL)
	return account.Sanitized(), nil
}

func (s *SessionService) deleteSuperseded(kind, url string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.media.Delete(ctx, url); err != nil {
		s.logger.Warn(ctx, "failed to delete superseded media object", "kind", kind, "url", url, "error", err.Error())
	}
}

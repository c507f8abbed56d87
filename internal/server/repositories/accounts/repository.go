// Package accounts declares the repository contract for account records,
// including the single stored refresh-token value per account.
package accounts

import (
	"context"

	"github.com/dmitrijs2005/viewtube/internal/server/models"
)

// Repository defines persistence operations for accounts. All methods are
// thin pass-throughs to storage; no business logic lives here.
type Repository interface {
	// Create inserts a new account and returns it with its generated ID.
	// A username or email collision yields common.ErrorConflict.
	Create(ctx context.Context, account *models.Account) (*models.Account, error)

	// GetByID returns the account with the given ID or common.ErrorNotFound.
	GetByID(ctx context.Context, id string) (*models.Account, error)

	// GetByIdentifier resolves an account by username or email.
	GetByIdentifier(ctx context.Context, identifier string) (*models.Account, error)

	// SetRefreshToken atomically replaces the stored refresh-token value.
	// A nil token clears it.
	SetRefreshToken(ctx context.Context, id string, token *string) error

	// UpdatePassword stores a new password hash.
	UpdatePassword(ctx context.Context, id string, passwordHash string) error

	// UpdateDetails updates full name and/or email and returns the fresh row.
	UpdateDetails(ctx context.Context, id string, fullName, email string) (*models.Account, error)

	// UpdateAvatarURL / UpdateCoverImageURL replace the stored asset URL.
	UpdateAvatarURL(ctx context.Context, id string, url string) error
	UpdateCoverImageURL(ctx context.Context, id string, url string) error

	// ChannelProfile returns the public channel aggregation for username,
	// evaluated from the point of view of viewerID.
	ChannelProfile(ctx context.Context, username, viewerID string) (*models.ChannelProfile, error)

	// WatchHistory returns the account's watch events, most recent first.
	WatchHistory(ctx context.Context, accountID string) ([]*models.WatchEvent, error)
}

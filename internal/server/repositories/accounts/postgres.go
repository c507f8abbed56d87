package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/viewtube/internal/common"
	"github.com/dmitrijs2005/viewtube/internal/dbx"
	"github.com/dmitrijs2005/viewtube/internal/server/models"
)

// PostgresRepository implements Repository over dbx.DBTX (satisfied by
// *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const accountColumns = `id, username, full_name, email, password_hash, avatar_url, cover_image_url, refresh_token, created_at`

// translateDBError maps database/sql and driver errors onto the shared
// sentinels: missing rows to ErrorNotFound, unique violations to
// ErrorConflict, and anything else (connection loss, timeouts) to
// ErrorUpstreamUnavailable so callers surface a 503, not a generic 500.
func translateDBError(err error) error {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return common.ErrorNotFound
	case isUniqueViolation(err):
		return common.ErrorConflict
	default:
		return fmt.Errorf("%w: %v", common.ErrorUpstreamUnavailable, err)
	}
}

func scanAccount(row *sql.Row) (*models.Account, error) {
	a := &models.Account{}
	var refresh sql.NullString
	err := row.Scan(&a.ID, &a.Username, &a.FullName, &a.Email, &a.PasswordHash,
		&a.AvatarURL, &a.CoverImageURL, &refresh, &a.CreatedAt)
	if err != nil {
		return nil, translateDBError(err)
	}
	if refresh.Valid {
		a.RefreshToken = &refresh.String
	}
	return a, nil
}

func (r *PostgresRepository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	query := `
		INSERT INTO accounts (username, full_name, email, password_hash, avatar_url, cover_image_url)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		account.Username, account.FullName, account.Email,
		account.PasswordHash, account.AvatarURL, account.CoverImageURL,
	).Scan(&account.ID, &account.CreatedAt)

	if err != nil {
		return nil, translateDBError(err)
	}

	return account, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return scanAccount(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) GetByIdentifier(ctx context.Context, identifier string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE username = $1 OR email = $1`
	return scanAccount(r.db.QueryRowContext(ctx, query, identifier))
}

// SetRefreshToken replaces the single stored refresh-token value for the
// account. Passing nil clears it (logout).
func (r *PostgresRepository) SetRefreshToken(ctx context.Context, id string, token *string) error {
	query := `UPDATE accounts SET refresh_token = $2 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, token)
	if err != nil {
		return translateDBError(err)
	}
	return requireRowAffected(res)
}

func (r *PostgresRepository) UpdatePassword(ctx context.Context, id string, passwordHash string) error {
	query := `UPDATE accounts SET password_hash = $2 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, passwordHash)
	if err != nil {
		return translateDBError(err)
	}
	return requireRowAffected(res)
}

// UpdateDetails overwrites full name and/or email, keeping the current value
// for any empty argument, and returns the fresh row.
func (r *PostgresRepository) UpdateDetails(ctx context.Context, id string, fullName, email string) (*models.Account, error) {
	query := `
		UPDATE accounts
		SET full_name = COALESCE(NULLIF($2, ''), full_name),
		    email = COALESCE(NULLIF($3, ''), email)
		WHERE id = $1
		RETURNING ` + accountColumns
	return scanAccount(r.db.QueryRowContext(ctx, query, id, fullName, email))
}

func (r *PostgresRepository) UpdateAvatarURL(ctx context.Context, id string, url string) error {
	query := `UPDATE accounts SET avatar_url = $2 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, url)
	if err != nil {
		return translateDBError(err)
	}
	return requireRowAffected(res)
}

func (r *PostgresRepository) UpdateCoverImageURL(ctx context.Context, id string, url string) error {
	query := `UPDATE accounts SET cover_image_url = $2 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, url)
	if err != nil {
		return translateDBError(err)
	}
	return requireRowAffected(res)
}

func (r *PostgresRepository) ChannelProfile(ctx context.Context, username, viewerID string) (*models.ChannelProfile, error) {
	query := `
		SELECT a.username, a.full_name, a.email, a.avatar_url, a.cover_image_url,
		       (SELECT count(*) FROM subscriptions s WHERE s.channel_id = a.id) AS subscriber_count,
		       (SELECT count(*) FROM subscriptions s WHERE s.subscriber_id = a.id) AS subscribed_to,
		       EXISTS (SELECT 1 FROM subscriptions s WHERE s.channel_id = a.id AND s.subscriber_id = $2) AS is_subscribed
		FROM accounts a
		WHERE a.username = $1
	`
	p := &models.ChannelProfile{}
	err := r.db.QueryRowContext(ctx, query, username, viewerID).Scan(
		&p.Username, &p.FullName, &p.Email, &p.AvatarURL, &p.CoverImageURL,
		&p.SubscriberCount, &p.SubscribedTo, &p.IsSubscribed)
	if err != nil {
		return nil, translateDBError(err)
	}
	return p, nil
}

func (r *PostgresRepository) WatchHistory(ctx context.Context, accountID string) ([]*models.WatchEvent, error) {
	query := `
		SELECT video_id, title, watched_at
		FROM watch_history
		WHERE account_id = $1
		ORDER BY watched_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, translateDBError(err)
	}
	defer rows.Close()

	events := []*models.WatchEvent{}
	for rows.Next() {
		e := &models.WatchEvent{}
		if err := rows.Scan(&e.VideoID, &e.Title, &e.WatchedAt); err != nil {
			return nil, translateDBError(err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, translateDBError(err)
	}
	return events, nil
}

func requireRowAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return translateDBError(err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

// isUniqueViolation detects a PostgreSQL unique constraint violation
// (SQLSTATE 23505) without importing the driver's error type.
func isUniqueViolation(err error) bool {
	type pgError interface{ SQLState() string }
	var pgErr pgError
	if errors.As(err, &pgErr) {
		return pgErr.SQLState() == "23505"
	}
	return false
}

package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// APIKey mirrors one row of the api_keys table. Only the SHA-256 hash of
// the raw key is stored.
type APIKey struct {
	ID                 uuid.UUID
	KeyHash            string
	Label              string
	IsAdmin            bool
	RateLimitPerMinute sql.NullInt32
	CreatedAt          time.Time
}

const apiKeyColumns = `id, key_hash, label, is_admin, rate_limit_per_minute, created_at`

func scanAPIKey(row interface{ Scan(dest ...any) error }) (APIKey, error) {
	var k APIKey
	err := row.Scan(&k.ID, &k.KeyHash, &k.Label, &k.IsAdmin, &k.RateLimitPerMinute, &k.CreatedAt)
	return k, err
}

// GetAPIKeyByRawKey looks up an API key by its raw value.
func (s *Store) GetAPIKeyByRawKey(ctx context.Context, rawKey string) (APIKey, error) {
	row := s.DB.QueryRowContext(ctx,
		`SELECT `+apiKeyColumns+` FROM api_keys WHERE key_hash = $1`, hashAPIKey(rawKey))
	return scanAPIKey(row)
}

// EnsureAdminAPIKey ensures that there is an admin API key for the given
// raw key and label. If it already exists, it is returned; otherwise, it
// is created.
func (s *Store) EnsureAdminAPIKey(ctx context.Context, rawKey, label string) (APIKey, error) {
	hash := hashAPIKey(rawKey)

	key, err := scanAPIKey(s.DB.QueryRowContext(ctx,
		`SELECT `+apiKeyColumns+` FROM api_keys WHERE key_hash = $1`, hash))
	if err == nil {
		return key, nil
	}
	if err != sql.ErrNoRows {
		return APIKey{}, err
	}

	row := s.DB.QueryRowContext(ctx, `
		INSERT INTO api_keys (id, key_hash, label, is_admin)
		VALUES ($1,$2,$3,TRUE)
		RETURNING `+apiKeyColumns,
		uuid.New(), hash, label)
	return scanAPIKey(row)
}

// CreateRandomAPIKey creates a new random API key (with sg_ prefix). It
// returns the raw key plus the stored record.
func (s *Store) CreateRandomAPIKey(ctx context.Context, label string, isAdmin bool, rateLimitPerMinute *int) (string, APIKey, error) {
	raw := "sg_" + uuid.New().String()

	var rl sql.NullInt32
	if rateLimitPerMinute != nil && *rateLimitPerMinute > 0 {
		rl = sql.NullInt32{Int32: int32(*rateLimitPerMinute), Valid: true}
	}

	row := s.DB.QueryRowContext(ctx, `
		INSERT INTO api_keys (id, key_hash, label, is_admin, rate_limit_per_minute)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING `+apiKeyColumns,
		uuid.New(), hashAPIKey(raw), label, isAdmin, rl)
	key, err := scanAPIKey(row)
	if err != nil {
		return "", APIKey{}, err
	}
	return raw, key, nil
}

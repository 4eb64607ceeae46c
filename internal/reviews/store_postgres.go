package reviews

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists both review documents in Postgres. Each document is
// one row holding its entries as a jsonb array, so every append and removal
// is a single atomic statement over one document.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a store backed by Postgres.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) GetTitle(ctx context.Context, mediaID string) (TitleReview, error) {
	const q = `SELECT media_id, title, image, media_type, average_rating, entries
	           FROM title_reviews WHERE media_id = $1`
	var (
		t   TitleReview
		raw []byte
	)
	err := s.pool.QueryRow(ctx, q, mediaID).Scan(
		&t.MediaID, &t.Title, &t.Image, &t.MediaType, &t.AverageRating, &raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return TitleReview{}, ErrNotFound
		}
		return TitleReview{}, err
	}
	if err := json.Unmarshal(raw, &t.Entries); err != nil {
		return TitleReview{}, fmt.Errorf("decode title entries: %w", err)
	}
	return t, nil
}

func (s *PostgresStore) AppendTitleEntry(ctx context.Context, meta TitleMeta, e Entry) (bool, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return false, err
	}
	// Conditional append: the DO UPDATE only fires while no entry for this
	// user exists, which makes the per-user guard atomic under concurrency.
	const q = `INSERT INTO title_reviews (media_id, title, image, media_type, entries)
	           VALUES ($1, $2, $3, $4, jsonb_build_array($5::jsonb))
	           ON CONFLICT (media_id) DO UPDATE
	             SET entries = title_reviews.entries || $5::jsonb
	           WHERE NOT title_reviews.entries @> jsonb_build_array(jsonb_build_object('user', $6::text))`
	tag, err := s.pool.Exec(ctx, q, meta.MediaID, meta.Title, meta.Image, meta.MediaType, payload, e.User)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *PostgresStore) RemoveTitleEntry(ctx context.Context, mediaID, user string) (bool, error) {
	const q = `UPDATE title_reviews
	           SET entries = COALESCE(
	             (SELECT jsonb_agg(e) FROM jsonb_array_elements(entries) AS e WHERE e->>'user' <> $2),
	             '[]'::jsonb)
	           WHERE media_id = $1
	             AND entries @> jsonb_build_array(jsonb_build_object('user', $2::text))`
	tag, err := s.pool.Exec(ctx, q, mediaID, user)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *PostgresStore) SetAverage(ctx context.Context, mediaID string, avg *float64) error {
	const q = `UPDATE title_reviews SET average_rating = $2 WHERE media_id = $1`
	tag, err := s.pool.Exec(ctx, q, mediaID, avg)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) GetHistory(ctx context.Context, user string) (UserHistory, error) {
	const q = `SELECT username, entries FROM user_review_histories WHERE username = $1`
	var (
		h   UserHistory
		raw []byte
	)
	err := s.pool.QueryRow(ctx, q, user).Scan(&h.User, &raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return UserHistory{}, ErrNotFound
		}
		return UserHistory{}, err
	}
	if err := json.Unmarshal(raw, &h.Entries); err != nil {
		return UserHistory{}, fmt.Errorf("decode history entries: %w", err)
	}
	return h, nil
}

func (s *PostgresStore) AppendHistoryEntry(ctx context.Context, user string, e HistoryEntry) (bool, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return false, err
	}
	const q = `INSERT INTO user_review_histories (username, entries)
	           VALUES ($1, jsonb_build_array($2::jsonb))
	           ON CONFLICT (username) DO UPDATE
	             SET entries = user_review_histories.entries || $2::jsonb
	           WHERE NOT user_review_histories.entries @> jsonb_build_array(jsonb_build_object('media_id', $3::text))`
	tag, err := s.pool.Exec(ctx, q, user, payload, e.MediaID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *PostgresStore) RemoveHistoryEntry(ctx context.Context, user, mediaID string) (bool, error) {
	const q = `UPDATE user_review_histories
	           SET entries = COALESCE(
	             (SELECT jsonb_agg(e) FROM jsonb_array_elements(entries) AS e WHERE e->>'media_id' <> $2),
	             '[]'::jsonb)
	           WHERE username = $1
	             AND entries @> jsonb_build_array(jsonb_build_object('media_id', $2::text))`
	tag, err := s.pool.Exec(ctx, q, user, mediaID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *PostgresStore) HistoryUsersFor(ctx context.Context, mediaID string) ([]string, error) {
	const q = `SELECT username FROM user_review_histories
	           WHERE entries @> jsonb_build_array(jsonb_build_object('media_id', $1::text))
	           ORDER BY username`
	rows, err := s.pool.Query(ctx, q, mediaID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *PostgresStore) TopRated(ctx context.Context, limit int) ([]TitleReview, error) {
	if limit <= 0 {
		limit = 10
	}
	const q = `SELECT media_id, title, image, media_type, average_rating, entries
	           FROM title_reviews
	           WHERE average_rating IS NOT NULL
	           ORDER BY average_rating DESC, media_id
	           LIMIT $1`
	rows, err := s.pool.Query(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TitleReview
	for rows.Next() {
		var (
			t   TitleReview
			raw []byte
		)
		if err := rows.Scan(&t.MediaID, &t.Title, &t.Image, &t.MediaType, &t.AverageRating, &raw); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, &t.Entries); err != nil {
			return nil, fmt.Errorf("decode title entries: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

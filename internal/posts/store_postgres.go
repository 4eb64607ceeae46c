package posts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/example/review-platform/internal/media"
)

// PostgresStore keeps each post as one row with its replies in a jsonb
// column, so a reply append is a single atomic statement.
//
//	CREATE TABLE posts (
//	    id         TEXT PRIMARY KEY,
//	    media_id   TEXT NOT NULL DEFAULT '',
//	    title      TEXT NOT NULL DEFAULT '',
//	    image      TEXT NOT NULL DEFAULT '',
//	    media_type TEXT NOT NULL DEFAULT '',
//	    author     TEXT NOT NULL,
//	    subject    TEXT NOT NULL,
//	    body       TEXT NOT NULL,
//	    created_at TIMESTAMPTZ NOT NULL,
//	    replies    JSONB NOT NULL DEFAULT '[]'::jsonb
//	);
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Create(ctx context.Context, p Post) (Post, error) {
	p.ID = uuid.NewString()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = media.Timestamp(time.Now())
	}
	p.Replies = []Reply{}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO posts (id, media_id, title, image, media_type, author, subject, body, created_at, replies)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, '[]'::jsonb)`,
		p.ID, p.MediaID, p.Title, p.Image, string(p.MediaType),
		p.Author, p.Subject, p.Body, p.CreatedAt,
	)
	if err != nil {
		return Post{}, fmt.Errorf("insert post: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) Get(ctx context.Context, postID string) (Post, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, media_id, title, image, media_type, author, subject, body, created_at, replies
		FROM posts WHERE id = $1`, postID)
	p, err := scanPost(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Post{}, ErrNotFound
		}
		return Post{}, fmt.Errorf("select post: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) AddReply(ctx context.Context, postID string, r Reply) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal reply: %w", err)
	}
	tag, err := s.pool.Exec(ctx, `
		UPDATE posts SET replies = replies || $2::jsonb WHERE id = $1`,
		postID, string(payload),
	)
	if err != nil {
		return fmt.Errorf("append reply: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context, page, pageSize int) ([]Post, error) {
	page = NormalizePage(page)
	pageSize = normalizePageSize(pageSize)

	rows, err := s.pool.Query(ctx, `
		SELECT id, media_id, title, image, media_type, author, subject, body, created_at, replies
		FROM posts
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2`,
		pageSize, (page-1)*pageSize,
	)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	out := []Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (Post, error) {
	var (
		p         Post
		mediaType string
		replies   []byte
	)
	if err := row.Scan(&p.ID, &p.MediaID, &p.Title, &p.Image, &mediaType,
		&p.Author, &p.Subject, &p.Body, &p.CreatedAt, &replies); err != nil {
		return Post{}, err
	}
	p.MediaType = media.Type(mediaType)
	p.Replies = []Reply{}
	if len(replies) > 0 {
		if err := json.Unmarshal(replies, &p.Replies); err != nil {
			return Post{}, fmt.Errorf("decode replies: %w", err)
		}
	}
	return p, nil
}

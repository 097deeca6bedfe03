package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	pgx "github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"blogspace/internal/common/db"
	"blogspace/internal/post/domain"
)

var ErrPostNotFound = errors.New("post not found")

type Repository interface {
	List(ctx context.Context) ([]domain.PostWithAuthor, error)
	FindByID(ctx context.Context, id domain.ID) (domain.PostWithAuthor, error)
	Create(ctx context.Context, post domain.Post) error
	Update(ctx context.Context, post domain.Post) error
	Delete(ctx context.Context, id domain.ID) error
}

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func (r *PgRepository) List(ctx context.Context) ([]domain.PostWithAuthor, error) {
	start := time.Now()
	rows, err := r.pool.Query(
		ctx,
		`SELECT p.id, p.title, p.content, p.author_id, p.author_name, p.created_at, p.updated_at, u.username
		 FROM posts p
		 JOIN users u ON u.id = p.author_id
		 ORDER BY p.created_at DESC`,
	)
	db.ObserveQuery("list_posts", "posts", start)
	if err != nil {
		db.CountQueryError("list_posts", "posts")
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	var posts []domain.PostWithAuthor
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			db.CountQueryError("list_posts", "posts")
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, p)
	}

	if rows.Err() != nil {
		db.CountQueryError("list_posts", "posts")
		return nil, fmt.Errorf("rows iteration error: %w", rows.Err())
	}

	return posts, nil
}

func (r *PgRepository) FindByID(ctx context.Context, id domain.ID) (domain.PostWithAuthor, error) {
	start := time.Now()
	row := r.pool.QueryRow(
		ctx,
		`SELECT p.id, p.title, p.content, p.author_id, p.author_name, p.created_at, p.updated_at, u.username
		 FROM posts p
		 JOIN users u ON u.id = p.author_id
		 WHERE p.id = $1`,
		string(id),
	)

	p, err := scanPost(row)
	db.ObserveQuery("find_post_by_id", "posts", start)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.PostWithAuthor{}, ErrPostNotFound
		}
		db.CountQueryError("find_post_by_id", "posts")
		return domain.PostWithAuthor{}, fmt.Errorf("failed to find post by id: %w", err)
	}

	return p, nil
}

func (r *PgRepository) Create(ctx context.Context, post domain.Post) error {
	start := time.Now()
	_, err := r.pool.Exec(
		ctx,
		`INSERT INTO posts (id, title, content, author_id, author_name, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		string(post.ID),
		post.Title,
		post.Content,
		post.AuthorID,
		post.AuthorName,
		post.CreatedAt,
		post.UpdatedAt,
	)
	db.ObserveQuery("create_post", "posts", start)
	if err != nil {
		db.CountQueryError("create_post", "posts")
		return fmt.Errorf("failed to create post: %w", err)
	}
	return nil
}

// Update overwrites title, content and updated_at only; author columns and
// created_at are immutable after creation.
func (r *PgRepository) Update(ctx context.Context, post domain.Post) error {
	start := time.Now()
	tag, err := r.pool.Exec(
		ctx,
		`UPDATE posts SET title = $2, content = $3, updated_at = $4 WHERE id = $1`,
		string(post.ID),
		post.Title,
		post.Content,
		post.UpdatedAt,
	)
	db.ObserveQuery("update_post", "posts", start)
	if err != nil {
		db.CountQueryError("update_post", "posts")
		return fmt.Errorf("failed to update post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPostNotFound
	}
	return nil
}

func (r *PgRepository) Delete(ctx context.Context, id domain.ID) error {
	start := time.Now()
	tag, err := r.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1`, string(id))
	db.ObserveQuery("delete_post", "posts", start)
	if err != nil {
		db.CountQueryError("delete_post", "posts")
		return fmt.Errorf("failed to delete post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPostNotFound
	}
	return nil
}

func scanPost(row pgx.Row) (domain.PostWithAuthor, error) {
	var p domain.PostWithAuthor
	err := row.Scan(
		&p.ID,
		&p.Title,
		&p.Content,
		&p.AuthorID,
		&p.AuthorName,
		&p.CreatedAt,
		&p.UpdatedAt,
		&p.Author.Username,
	)
	if err != nil {
		return domain.PostWithAuthor{}, err
	}
	p.Author.ID = p.AuthorID
	return p, nil
}

package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"awaaznow/internal/config"
	"awaaznow/internal/models"
	"awaaznow/internal/storage"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

type PostgresRepo struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, cfg *config.Config) (*PostgresRepo, error) {
	const op = "storage.postgres.New"

	dsn := dsn(cfg)

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse config: %w", op, err)
	}

	poolConfig.MaxConns = 10
	poolConfig.MinConns = 2
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = time.Minute * 30

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create pool: %w", op, err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%s: failed to ping database: %w", op, err)
	}

	return &PostgresRepo{pool: pool}, nil
}

func (r *PostgresRepo) SaveUser(ctx context.Context, email, username string, passHash []byte) (int64, error) {
	const op = "storage.postgres.SaveUser"

	query := `
		INSERT INTO users (email, username, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id;
	`

	var id int64

	err := r.pool.QueryRow(ctx, query, email, username, string(passHash)).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			// constraint name tells which field collided
			if strings.Contains(pgErr.ConstraintName, "username") {
				return 0, storage.ErrUsernameTaken
			}
			return 0, storage.ErrEmailTaken
		}

		return 0, fmt.Errorf("%s: failed to save user: %w", op, err)
	}

	return id, nil
}

func (r *PostgresRepo) User(ctx context.Context, email string) (models.User, error) {
	query := `
		SELECT id, email, username, password_hash, created_at
		FROM users
		WHERE email = $1;
	`

	row := r.pool.QueryRow(ctx, query, email)

	var u models.User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Username,
		&u.PassHash,
		&u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, storage.ErrUserNotFound
		}

		return models.User{}, err
	}

	return u, nil
}

func (r *PostgresRepo) UserByID(ctx context.Context, id int64) (models.User, error) {
	query := `
		SELECT id, email, username, password_hash, created_at
		FROM users
		WHERE id = $1;
	`

	row := r.pool.QueryRow(ctx, query, id)

	var u models.User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Username,
		&u.PassHash,
		&u.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.User{}, storage.ErrUserNotFound
	}

	return u, err
}

// UserByResetToken matches the stored token hash and requires the expiry
// to still be in the future, so expired tokens behave exactly like
// unknown ones.
func (r *PostgresRepo) UserByResetToken(ctx context.Context, tokenHash string) (models.User, error) {
	query := `
		SELECT id, email, username, password_hash, created_at
		FROM users
		WHERE reset_token_hash = $1 AND reset_token_expires_at > NOW();
	`

	row := r.pool.QueryRow(ctx, query, tokenHash)

	var u models.User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Username,
		&u.PassHash,
		&u.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.User{}, storage.ErrUserNotFound
	}

	return u, err
}

func (r *PostgresRepo) SetResetToken(ctx context.Context, userID int64, tokenHash string, expiresAt time.Time) error {
	query := `
		UPDATE users
		SET reset_token_hash = $1, reset_token_expires_at = $2, updated_at = NOW()
		WHERE id = $3;
	`

	_, err := r.pool.Exec(ctx, query, tokenHash, expiresAt, userID)

	return err
}

func (r *PostgresRepo) ClearResetToken(ctx context.Context, userID int64) error {
	query := `
		UPDATE users
		SET reset_token_hash = NULL, reset_token_expires_at = NULL, updated_at = NOW()
		WHERE id = $1;
	`

	_, err := r.pool.Exec(ctx, query, userID)

	return err
}

// UpdatePassword rewrites the password hash and clears the reset fields in
// one statement, making a reset token single-use.
func (r *PostgresRepo) UpdatePassword(ctx context.Context, userID int64, passHash []byte) error {
	query := `
		UPDATE users
		SET password_hash = $1, reset_token_hash = NULL, reset_token_expires_at = NULL, updated_at = NOW()
		WHERE id = $2;
	`

	_, err := r.pool.Exec(ctx, query, string(passHash), userID)

	return err
}

func (r *PostgresRepo) SaveArticle(ctx context.Context, article models.SavedArticle) (int64, error) {
	const op = "storage.postgres.SaveArticle"

	query := `
		INSERT INTO saved_articles
			(user_id, title, url, source_name, image_url, original_content, summarized_content, saved_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id;
	`

	var id int64

	err := r.pool.QueryRow(ctx, query,
		article.UserID,
		article.Title,
		article.URL,
		article.SourceName,
		article.ImageURL,
		article.OriginalContent,
		article.SummarizedContent,
		article.SavedAt,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return 0, storage.ErrArticleExists
		}

		return 0, fmt.Errorf("%s: failed to save article: %w", op, err)
	}

	return id, nil
}

func (r *PostgresRepo) ArticleByUserAndURL(ctx context.Context, userID int64, url string) (models.SavedArticle, error) {
	query := `
		SELECT id, user_id, title, url, source_name, image_url, original_content, summarized_content, saved_at
		FROM saved_articles
		WHERE user_id = $1 AND url = $2;
	`

	row := r.pool.QueryRow(ctx, query, userID, url)

	var a models.SavedArticle
	err := row.Scan(
		&a.ID,
		&a.UserID,
		&a.Title,
		&a.URL,
		&a.SourceName,
		&a.ImageURL,
		&a.OriginalContent,
		&a.SummarizedContent,
		&a.SavedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.SavedArticle{}, storage.ErrArticleNotFound
	}

	return a, err
}

func (r *PostgresRepo) ArticlesByUser(ctx context.Context, userID int64) ([]models.SavedArticle, error) {
	const op = "storage.postgres.ArticlesByUser"

	query := `
		SELECT id, user_id, title, url, source_name, image_url, original_content, summarized_content, saved_at
		FROM saved_articles
		WHERE user_id = $1
		ORDER BY saved_at DESC;
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	articles := []models.SavedArticle{}

	for rows.Next() {
		var a models.SavedArticle

		err := rows.Scan(
			&a.ID,
			&a.UserID,
			&a.Title,
			&a.URL,
			&a.SourceName,
			&a.ImageURL,
			&a.OriginalContent,
			&a.SummarizedContent,
			&a.SavedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		articles = append(articles, a)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("%s: %w", op, rows.Err())
	}

	return articles, nil
}

// DeleteArticle is scoped by owner, so "not yours" and "does not exist"
// are indistinguishable to the caller.
func (r *PostgresRepo) DeleteArticle(ctx context.Context, id, userID int64) error {
	query := `DELETE FROM saved_articles WHERE id = $1 AND user_id = $2;`

	tag, err := r.pool.Exec(ctx, query, id, userID)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return storage.ErrArticleNotFound
	}

	return nil
}

func (r *PostgresRepo) Close() {
	r.pool.Close()
}

func dsn(cfg *config.Config) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s database=%s sslmode=%s",
		cfg.Postgres.Host,
		cfg.Postgres.Port,
		cfg.Postgres.User,
		cfg.Postgres.Password,
		cfg.Postgres.DBName,
		cfg.Postgres.SSLMode,
	)
}

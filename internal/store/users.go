package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/geraldfingburke/newsloom/internal/models"
)

// GetOrCreateUser looks up a user by email, creating one if absent — the
// Read API's ratings endpoint is the only caller.
func (s *Store) GetOrCreateUser(ctx context.Context, id, email string) (*models.User, error) {
	var u models.User
	err := s.db.QueryRowContext(ctx, `SELECT id, email, created_at FROM users WHERE email = $1`, email).
		Scan(&u.ID, &u.Email, &u.CreatedAt)
	if err == nil {
		return &u, nil
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("store: lookup user: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `INSERT INTO users (id, email, created_at) VALUES ($1,$2,now())`, id, email)
	if err != nil {
		return nil, fmt.Errorf("store: create user: %w", err)
	}
	return &models.User{ID: id, Email: email}, nil
}

// UsersInterestedInCluster returns the distinct set of users who have
// rated any article belonging to a cluster — the Coverage Tracker's proxy
// for "users who read this story" when deciding who a blindspot advisory
// applies to.
func (s *Store) UsersInterestedInCluster(ctx context.Context, clusterID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT r.user_id
		FROM user_article_ratings r
		JOIN articles a ON a.id = r.article_id
		WHERE a.cluster_id = $1
	`, clusterID)
	if err != nil {
		return nil, fmt.Errorf("store: users interested in cluster: %w", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// UpsertRating creates or updates a user's rating on an article.
func (s *Store) UpsertRating(ctx context.Context, r *models.Rating) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_article_ratings (id, user_id, article_id, score, created_at, updated_at)
		VALUES ($1,$2,$3,$4,now(),now())
		ON CONFLICT (user_id, article_id) DO UPDATE SET score = EXCLUDED.score, updated_at = now()
	`, r.ID, r.UserID, r.ArticleID, r.Score)
	if err != nil {
		return fmt.Errorf("store: upsert rating: %w", err)
	}
	return nil
}

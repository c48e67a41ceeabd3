package database

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"

	"github.com/nais/sitedeploy/pkg/credentials"
	"github.com/nais/sitedeploy/pkg/crypto"
)

type credentialStore struct {
	db      *Database
	project string
}

var _ credentials.Store = &credentialStore{}

// Credentials returns the credential store for a single project.
// Tokens are encrypted at rest.
func (db *Database) Credentials(project string) credentials.Store {
	return &credentialStore{
		db:      db,
		project: project,
	}
}

func (db *Database) encrypt(plaintext string) (string, error) {
	encrypted, err := crypto.Encrypt([]byte(plaintext), db.encryptionKey)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(encrypted), nil
}

func (db *Database) decrypt(encrypted string) (string, error) {
	decoded, err := hex.DecodeString(encrypted)
	if err != nil {
		return "", fmt.Errorf("decode hex: %w", err)
	}
	plaintext, err := crypto.Decrypt(decoded, db.encryptionKey)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}

func (s *credentialStore) Token(ctx context.Context) (string, error) {
	var encrypted string

	query := `SELECT token FROM credential WHERE project = $1;`
	err := s.db.timedQueryRow(ctx, query, s.project).Scan(&encrypted)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", credentials.ErrNotFound
		}
		return "", fmt.Errorf("read credential: %w", err)
	}

	token, err := s.db.decrypt(encrypted)
	if err != nil {
		return "", fmt.Errorf("decrypt credential: %w", err)
	}

	return token, nil
}

func (s *credentialStore) SetToken(ctx context.Context, token string) error {
	if len(token) == 0 {
		return credentials.ErrEmptyToken
	}

	encrypted, err := s.db.encrypt(token)
	if err != nil {
		return fmt.Errorf("encrypt credential: %w", err)
	}

	query := `
INSERT INTO credential (project, token, updated)
VALUES ($1, $2, NOW())
ON CONFLICT (project) DO UPDATE
SET token = EXCLUDED.token, updated = EXCLUDED.updated;
`
	_, err = s.db.timedExec(ctx, query, s.project, encrypted)
	if err != nil {
		return fmt.Errorf("save credential: %w", err)
	}

	return nil
}

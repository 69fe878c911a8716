// Package session owns the single persisted bearer token and the device id
// of this installation.
package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/google/uuid"
)

// ErrNoSession is returned by views that require a signed-in user.
var ErrNoSession = errors.New("no active session")

// Manager is the session contract consumed by the HTTP adapter and the
// login paths.
type Manager interface {
	Token(ctx context.Context) (string, error)
	SetToken(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// Store persists the token in the metadata table. At most one token exists;
// SetToken replaces any previous one.
type Store struct {
	db *sql.DB

	mu       sync.Mutex
	deviceID string
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) repo(tx dbx.DBTX) metadata.Repository {
	return metadata.NewSQLiteRepository(tx)
}

// Token returns the stored token or "" when signed out.
func (s *Store) Token(ctx context.Context) (string, error) {
	v, err := s.repo(s.db).Get(ctx, common.SessionTokenKey)
	if err != nil {
		return "", err
	}
	return string(v), nil
}

// SignedInAt reports when the current token was stored. ok is false when
// signed out.
func (s *Store) SignedInAt(ctx context.Context) (t time.Time, ok bool, err error) {
	e, err := s.repo(s.db).GetEntry(ctx, common.SessionTokenKey)
	if err != nil || e == nil {
		return time.Time{}, false, err
	}
	return e.UpdatedAt, true, nil
}

func (s *Store) SetToken(ctx context.Context, token string) error {
	if token == "" {
		return errors.New("empty session token")
	}
	return dbx.WithTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		r := s.repo(tx)
		if err := r.Delete(ctx, common.SessionTokenKey); err != nil {
			return err
		}
		return r.Set(ctx, common.SessionTokenKey, []byte(token))
	})
}

// Clear removes the token. The device id survives so login history keeps
// attributing this installation consistently.
func (s *Store) Clear(ctx context.Context) error {
	return s.repo(s.db).Delete(ctx, common.SessionTokenKey)
}

// DeviceID returns the installation id, generating and persisting it on
// first use.
func (s *Store) DeviceID(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.deviceID != "" {
		return s.deviceID, nil
	}

	r := s.repo(s.db)
	v, err := r.Get(ctx, common.DeviceIDKey)
	if err != nil {
		return "", err
	}
	if len(v) == 0 {
		id := uuid.NewString()
		if err := r.Set(ctx, common.DeviceIDKey, []byte(id)); err != nil {
			return "", fmt.Errorf("store device id: %w", err)
		}
		v = []byte(id)
	}

	s.deviceID = string(v)
	return s.deviceID, nil
}

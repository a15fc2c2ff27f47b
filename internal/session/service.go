// Package session implements operator authentication and the
// single-active-session policy: each login issues a fresh token and
// overwrites the operator's live token in the store, superseding whichever
// client held the previous one.
//
// The Session value is passed explicitly to every component that needs to
// validate it; there is deliberately no package-level "current session".
package session

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"time"

	"github.com/rfaguiar/manifestops/internal/common"
	"github.com/rfaguiar/manifestops/internal/cryptox"
	"github.com/rfaguiar/manifestops/internal/logging"
	"github.com/rfaguiar/manifestops/internal/store/storemanager"
)

// Session identifies a logged-in operator. Immutable after login.
type Session struct {
	OperatorID  string
	Username    string
	DisplayName string
	Role        string
	Token       string
}

// Service performs logins and session validation against the store.
type Service struct {
	db       *sql.DB
	manager  storemanager.Manager
	secret   []byte
	validity time.Duration
	logger   logging.Logger
}

// NewService constructs a session Service.
func NewService(db *sql.DB, manager storemanager.Manager, secret []byte, validity time.Duration, logger logging.Logger) *Service {
	return &Service{
		db:       db,
		manager:  manager,
		secret:   secret,
		validity: validity,
		logger:   logger.With("module", "session"),
	}
}

// Login verifies the operator's password, issues a session token and makes
// it the single live token for that operator. The store-side write is what
// kicks out any previously-active client.
func (s *Service) Login(ctx context.Context, username string, password []byte) (*Session, error) {
	ops := s.manager.Operators(s.db)

	op, err := ops.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUnauthorized
		}
		return nil, common.ErrInternal
	}

	key := cryptox.DeriveKey(password, op.Salt)
	defer cryptox.Wipe(key)

	if subtle.ConstantTimeCompare(op.Verifier, cryptox.MakeVerifier(key)) != 1 {
		return nil, common.ErrUnauthorized
	}

	token, err := GenerateToken(op.ID, s.secret, s.validity)
	if err != nil {
		return nil, common.ErrInternal
	}

	if err := ops.SetActiveToken(ctx, op.ID, token); err != nil {
		return nil, common.ErrInternal
	}

	s.logger.Info(ctx, "operator logged in", "username", op.Username)

	return &Session{
		OperatorID:  op.ID,
		Username:    op.Username,
		DisplayName: op.DisplayName,
		Role:        op.Role,
		Token:       token,
	}, nil
}

// Validate checks that sess still holds the operator's live token.
// A mismatch means a newer login superseded this session. Validation is
// idempotent: calling it repeatedly after invalidation keeps returning
// ErrSessionSuperseded without side effects.
func (s *Service) Validate(ctx context.Context, sess *Session) error {
	if sess == nil {
		return common.ErrUnauthorized
	}

	active, err := s.manager.Operators(s.db).ActiveToken(ctx, sess.OperatorID)
	if err != nil {
		return common.ErrInternal
	}
	if subtle.ConstantTimeCompare([]byte(active), []byte(sess.Token)) != 1 {
		return common.ErrSessionSuperseded
	}
	return nil
}

// Logout clears the operator's live token, but only when sess still owns
// it; logging out a superseded session must not kick the newer one.
func (s *Service) Logout(ctx context.Context, sess *Session) error {
	if sess == nil {
		return nil
	}

	if err := s.Validate(ctx, sess); err != nil {
		if errors.Is(err, common.ErrSessionSuperseded) {
			return nil
		}
		return err
	}

	if err := s.manager.Operators(s.db).SetActiveToken(ctx, sess.OperatorID, ""); err != nil {
		return common.ErrInternal
	}

	s.logger.Info(ctx, "operator logged out", "username", sess.Username)
	return nil
}

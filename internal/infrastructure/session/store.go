package session

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/memberdesk/accounts-api/internal/core/domain"
)

const (
	descriptorKeyPrefix = "session:"
	welcomeKeyPrefix    = "welcome_shown:"
)

// Store implements ports.SessionStore over a durable and an ephemeral scope.
// Records are keyed by user id: each login overwrites the account's previous
// session, so a remember-me descriptor cannot outlive a later plain login.
type Store struct {
	durable   Scope
	ephemeral Scope
	log       zerolog.Logger
}

func NewStore(durable, ephemeral Scope, log zerolog.Logger) *Store {
	return &Store{durable: durable, ephemeral: ephemeral, log: log}
}

// Persist writes the descriptor to exactly one scope. The user's previous
// descriptor and welcome flag are cleared from both scopes first, so a prior
// session's record cannot linger in the scope that was not chosen this time.
func (s *Store) Persist(ctx context.Context, rememberMe bool, descriptor *domain.SessionDescriptor) error {
	if descriptor == nil || descriptor.SessionID == "" || descriptor.UserID == "" {
		return domain.ErrNoActiveSession
	}

	if err := s.Clear(ctx, descriptor.UserID); err != nil {
		return err
	}

	data, err := json.Marshal(descriptor)
	if err != nil {
		return fmt.Errorf("encode descriptor: %w", err)
	}

	target := s.ephemeral
	if rememberMe {
		target = s.durable
	}
	if err := target.Write(ctx, descriptorKeyPrefix+descriptor.UserID, data); err != nil {
		return err
	}

	s.log.Debug().Str("user_id", descriptor.UserID).Bool("remember_me", rememberMe).Msg("session persisted")
	return nil
}

// Current returns the user's descriptor, durable scope first. A missing
// record yields (nil, nil): absence of a session is not an error. A stored
// session id that differs from sessionID means the presented token was
// superseded by a later login; that also reads as no session.
func (s *Store) Current(ctx context.Context, userID, sessionID string) (*domain.SessionDescriptor, error) {
	if userID == "" || sessionID == "" {
		return nil, nil
	}

	key := descriptorKeyPrefix + userID
	for _, scope := range []Scope{s.durable, s.ephemeral} {
		data, ok, err := scope.Read(ctx, key)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		var descriptor domain.SessionDescriptor
		if err := json.Unmarshal(data, &descriptor); err != nil {
			// A corrupt record is treated as absent; it gets overwritten on
			// the next login.
			s.log.Warn().Err(err).Str("user_id", userID).Msg("discarding undecodable session record")
			continue
		}
		if descriptor.SessionID != sessionID {
			return nil, nil
		}
		return &descriptor, nil
	}
	return nil, nil
}

// Clear removes the user's descriptor and welcome flag from both scopes.
func (s *Store) Clear(ctx context.Context, userID string) error {
	if userID == "" {
		return nil
	}
	for _, key := range []string{descriptorKeyPrefix + userID, welcomeKeyPrefix + userID} {
		if err := s.durable.Delete(ctx, key); err != nil {
			return err
		}
		if err := s.ephemeral.Delete(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

// MarkWelcomeShown sets the one-time welcome-modal flag. The flag lives in
// the ephemeral scope: a restart shows the modal again.
func (s *Store) MarkWelcomeShown(ctx context.Context, userID string) error {
	if userID == "" {
		return domain.ErrNoActiveSession
	}
	return s.ephemeral.Write(ctx, welcomeKeyPrefix+userID, []byte("1"))
}

func (s *Store) WelcomeShown(ctx context.Context, userID string) (bool, error) {
	if userID == "" {
		return false, nil
	}
	_, ok, err := s.ephemeral.Read(ctx, welcomeKeyPrefix+userID)
	return ok, err
}

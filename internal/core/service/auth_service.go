package service

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/fieldsales/visit-tracker/internal/core/domain"
	"github.com/fieldsales/visit-tracker/internal/core/ports"
)

// AuthService implements registration, login and logout. Each login opens a
// session in the session store; the issued token carries its id.
type AuthService struct {
	repo       ports.AuthRepository
	sessions   ports.SessionStore
	directory  ports.RoleDirectory
	events     ports.AccessEvents
	terminator ports.SessionTerminator
	log        zerolog.Logger

	jwtSecret      string
	tokenTTL       time.Duration
	bootstrapAdmin string
}

// AuthOptions groups the tunables of AuthService.
type AuthOptions struct {
	JWTSecret string
	TokenTTL  time.Duration
	// BootstrapAdminEmail receives the admin role when it registers.
	BootstrapAdminEmail string
}

func NewAuthService(
	repo ports.AuthRepository,
	sessions ports.SessionStore,
	directory ports.RoleDirectory,
	events ports.AccessEvents,
	terminator ports.SessionTerminator,
	opts AuthOptions,
	log zerolog.Logger,
) *AuthService {
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 24 * time.Hour
	}
	return &AuthService{
		repo:           repo,
		sessions:       sessions,
		directory:      directory,
		events:         events,
		terminator:     terminator,
		log:            log,
		jwtSecret:      opts.JWTSecret,
		tokenTTL:       opts.TokenTTL,
		bootstrapAdmin: strings.ToLower(strings.TrimSpace(opts.BootstrapAdminEmail)),
	}
}

func (s *AuthService) Register(ctx context.Context, username, password, email string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if username == "" || password == "" || email == "" {
		return nil, domain.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	if s.bootstrapAdmin != "" && created.Email == s.bootstrapAdmin {
		if !s.directory.AssignRole(ctx, created.ID, domain.RoleAdmin) {
			s.log.Error().Str("actor_id", created.ID).Msg("bootstrap admin role assignment failed")
		} else {
			s.log.Info().Str("actor_id", created.ID).Msg("bootstrap admin role assigned")
		}
	}
	return created, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return "", nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	identity := domain.Identity{
		ActorID:   user.ID,
		Email:     user.Email,
		SessionID: uuid.NewString(),
		IssuedAt:  time.Now().UTC(),
	}
	if err := s.sessions.Save(ctx, identity, s.tokenTTL); err != nil {
		return "", nil, err
	}

	token, err := s.generateToken(identity)
	if err != nil {
		return "", nil, err
	}

	s.publish(ctx, domain.AccessEvent{
		Kind:       domain.EventSignedIn,
		ActorID:    identity.ActorID,
		SessionID:  identity.SessionID,
		OccurredAt: identity.IssuedAt,
	})
	return token, user, nil
}

// Logout closes the session. Closing an unknown session is not an error.
// The session's resolver is torn down before Logout returns; the signed-out
// event only informs other listeners.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return domain.ErrSessionNotFound
	}
	identity, err := s.sessions.Delete(ctx, sessionID)
	s.terminator.Terminate(sessionID)
	if err != nil {
		return err
	}

	event := domain.AccessEvent{
		Kind:       domain.EventSignedOut,
		SessionID:  sessionID,
		OccurredAt: time.Now().UTC(),
	}
	if identity != nil {
		event.ActorID = identity.ActorID
	}
	s.publish(ctx, event)
	return nil
}

func (s *AuthService) publish(ctx context.Context, event domain.AccessEvent) {
	if err := s.events.Publish(ctx, event); err != nil {
		s.log.Error().Err(err).Str("kind", string(event.Kind)).Str("session_id", event.SessionID).Msg("failed to publish access event")
	}
}

func (s *AuthService) generateToken(identity domain.Identity) (string, error) {
	claims := jwt.MapClaims{
		"sub":   identity.ActorID,
		"sid":   identity.SessionID,
		"email": identity.Email,
		"iat":   identity.IssuedAt.Unix(),
		"exp":   identity.IssuedAt.Add(s.tokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}

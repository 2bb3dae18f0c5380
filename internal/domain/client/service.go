package client

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/exp/slog"

	"cipherkeeper/internal/crypto"
	"cipherkeeper/internal/errs"
)

const (
	apiKeyIDLen  = 12
	apiSecretLen = 32
)

type Servicer interface {
	Register(ctx context.Context, email, publicKey string) (Credentials, error)
	Authenticate(ctx context.Context, apiKeyID, secret string) (uuid.UUID, error)
	Info(ctx context.Context, idOrEmail string) (Info, error)
	PublicKey(ctx context.Context, clientID uuid.UUID) (string, error)
}

type Service struct {
	repo      Repository
	validator Validator
	log       *slog.Logger
}

func NewService(repo Repository, validator Validator, log *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		validator: validator,
		log:       log.With("component", "client_service"),
	}
}

// Register регистрирует клиента с его открытым ключом и выдает API-ключ.
func (s *Service) Register(ctx context.Context, email, publicKey string) (Credentials, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := s.validator.ValidateEmail(email); err != nil {
		s.log.Debug("validation failed", "email", email, "error", err)
		return Credentials{}, fmt.Errorf("%w: %v", errs.ErrInvalidInput, err)
	}
	if err := s.validator.ValidatePublicKey(publicKey); err != nil {
		return Credentials{}, fmt.Errorf("%w: %v", errs.ErrInvalidInput, err)
	}

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return Credentials{}, fmt.Errorf("%w: email already registered", errs.ErrConflict)
	} else if !errors.Is(err, errs.ErrNotFound) {
		return Credentials{}, fmt.Errorf("find client: %w", err)
	}

	keyID, err := crypto.GenerateRandomBytes(apiKeyIDLen)
	if err != nil {
		return Credentials{}, err
	}
	secret, err := crypto.GenerateRandomBytes(apiSecretLen)
	if err != nil {
		return Credentials{}, err
	}

	creds := Credentials{
		ClientID:  uuid.New(),
		APIKeyID:  hex.EncodeToString(keyID),
		APISecret: crypto.EncodeBase64URL(secret),
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(creds.APISecret), bcrypt.DefaultCost)
	if err != nil {
		return Credentials{}, fmt.Errorf("hash api secret: %w", err)
	}

	err = s.repo.Create(ctx, Client{
		ID:         creds.ClientID,
		Email:      email,
		PublicKey:  publicKey,
		APIKeyID:   creds.APIKeyID,
		SecretHash: string(hash),
	})
	if err != nil {
		s.log.Error("failed to create client", "email", email, "error", err)
		return Credentials{}, fmt.Errorf("create client: %w", err)
	}

	s.log.Info("client registered", "client_id", creds.ClientID)
	return creds, nil
}

// Authenticate проверяет пару API-ключ/секрет
func (s *Service) Authenticate(ctx context.Context, apiKeyID, secret string) (uuid.UUID, error) {
	c, err := s.repo.FindByAPIKey(ctx, apiKeyID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return uuid.Nil, errs.ErrUnauthorized
		}
		return uuid.Nil, fmt.Errorf("find client: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(c.SecretHash), []byte(secret)); err != nil {
		return uuid.Nil, errs.ErrUnauthorized
	}
	return c.ID, nil
}

// Info ищет клиента по идентификатору или по адресу.
func (s *Service) Info(ctx context.Context, idOrEmail string) (Info, error) {
	var (
		c   Client
		err error
	)
	if IsEmail(idOrEmail) {
		c, err = s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(idOrEmail)))
	} else {
		id, perr := uuid.Parse(idOrEmail)
		if perr != nil {
			return Info{}, fmt.Errorf("%w: %q is neither a client id nor an email", errs.ErrInvalidInput, idOrEmail)
		}
		c, err = s.repo.FindByID(ctx, id)
	}
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return Info{}, fmt.Errorf("client %s: %w", idOrEmail, errs.ErrNotFound)
		}
		return Info{}, fmt.Errorf("find client: %w", err)
	}
	return c.Info(), nil
}

func (s *Service) PublicKey(ctx context.Context, clientID uuid.UUID) (string, error) {
	c, err := s.repo.FindByID(ctx, clientID)
	if err != nil {
		return "", fmt.Errorf("find client: %w", err)
	}
	return c.PublicKey, nil
}

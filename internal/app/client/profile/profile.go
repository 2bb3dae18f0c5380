// Package profile хранит локальные профили клиента в SQLite. Закрытый ключ
// и API-секрет профиля зашифрованы ключом, полученным из пароля.
package profile

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
	"golang.org/x/crypto/curve25519"
	"golang.org/x/exp/slog"

	"cipherkeeper/internal/app/client/access"
	"cipherkeeper/internal/app/client/transport"
	"cipherkeeper/internal/crypto"
	"cipherkeeper/internal/errs"
)

const DefaultName = "default"

// Profile - открытая часть профиля
type Profile struct {
	Name          string
	ServerAddress string
	EnableTLS     bool
	ClientID      uuid.UUID
	Email         string
	APIKeyID      string
	PublicKey     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Secrets - то, что хранится только в зашифрованном виде
type Secrets struct {
	PrivateKey *[crypto.KeySize]byte
	APISecret  string
}

// Unlocked - профиль, готовый для работы с сервером
type Unlocked struct {
	Profile
	Identity    access.Identity
	Credentials transport.Credentials
}

type Store struct {
	db  *sql.DB
	kdf KDF
	log *slog.Logger
}

type Option func(*Store)

// WithKDF задает алгоритм для новых и перешифрованных профилей
func WithKDF(kdf KDF) Option {
	return func(s *Store) { s.kdf = kdf }
}

// Open открывает (или создает) базу профилей по пути path
func Open(path string, log *slog.Logger, opts ...Option) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create profile dir: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open profile db: %w", err)
	}

	s := &Store{db: db, kdf: KDFArgon2id, log: log.With("component", "profile_store")}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.initTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init profile db: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initTables() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS profiles (
			name TEXT PRIMARY KEY,
			server_address TEXT NOT NULL,
			enable_tls BOOLEAN NOT NULL DEFAULT 0,
			client_id TEXT NOT NULL,
			email TEXT NOT NULL,
			api_key_id TEXT NOT NULL,
			public_key TEXT NOT NULL,
			sealed_private_key TEXT NOT NULL,
			sealed_api_secret TEXT NOT NULL,
			kdf TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		);
	`)
	return err
}

// Save сохраняет новый профиль. Имя занято - ErrConflict.
func (s *Store) Save(ctx context.Context, p Profile, secrets Secrets, passphrase []byte) error {
	params, sealedKey, sealedSecret, err := s.seal(secrets, passphrase)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO profiles (name, server_address, enable_tls, client_id, email, api_key_id, public_key,
		                      sealed_private_key, sealed_api_secret, kdf, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, p.Name, p.ServerAddress, p.EnableTLS, p.ClientID.String(), p.Email, p.APIKeyID, p.PublicKey,
		sealedKey, sealedSecret, params.String(), now, now)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
			return fmt.Errorf("profile %q: %w", p.Name, errs.ErrConflict)
		}
		return fmt.Errorf("save profile: %w", err)
	}

	s.log.Info("profile saved", "profile", p.Name, "client_id", p.ClientID, "kdf", params.Algorithm)
	return nil
}

const profileColumns = `name, server_address, enable_tls, client_id, email, api_key_id, public_key, created_at, updated_at`

func (s *Store) Get(ctx context.Context, name string) (Profile, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM profiles WHERE name = ?`, name)
	p, err := scanProfile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Profile{}, fmt.Errorf("profile %q: %w", name, errs.ErrNotFound)
	}
	return p, err
}

func (s *Store) List(ctx context.Context) ([]Profile, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+profileColumns+` FROM profiles ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	var profiles []Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

func (s *Store) Delete(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM profiles WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("profile %q: %w", name, errs.ErrNotFound)
	}
	return nil
}

// Unlock раскрывает секреты профиля. Неверный пароль дает errs.ErrDecryption.
func (s *Store) Unlock(ctx context.Context, name string, passphrase []byte) (Unlocked, error) {
	p, secrets, err := s.unlock(ctx, name, passphrase)
	if err != nil {
		return Unlocked{}, err
	}

	pub, err := crypto.ParseKey(p.PublicKey)
	if err != nil {
		return Unlocked{}, fmt.Errorf("profile public key: %w", err)
	}

	return Unlocked{
		Profile:  p,
		Identity: access.Identity{ClientID: p.ClientID, Keys: crypto.KeyPair{Public: pub, Private: secrets.PrivateKey}},
		Credentials: transport.Credentials{
			ClientID:  p.ClientID,
			APIKeyID:  p.APIKeyID,
			APISecret: secrets.APISecret,
		},
	}, nil
}

// ChangePassphrase перешифровывает секреты профиля на новой соли
func (s *Store) ChangePassphrase(ctx context.Context, name string, oldPassphrase, newPassphrase []byte) error {
	_, secrets, err := s.unlock(ctx, name, oldPassphrase)
	if err != nil {
		return err
	}
	defer crypto.Wipe(secrets.PrivateKey)

	params, sealedKey, sealedSecret, err := s.seal(secrets, newPassphrase)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE profiles SET sealed_private_key = ?, sealed_api_secret = ?, kdf = ?, updated_at = ?
		WHERE name = ?
	`, sealedKey, sealedSecret, params.String(), time.Now().UTC(), name)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}

	s.log.Info("profile passphrase changed", "profile", name, "kdf", params.Algorithm)
	return nil
}

func (s *Store) unlock(ctx context.Context, name string, passphrase []byte) (Profile, Secrets, error) {
	p, err := s.Get(ctx, name)
	if err != nil {
		return Profile{}, Secrets{}, err
	}

	var sealedKey, sealedSecret, rawParams string
	err = s.db.QueryRowContext(ctx,
		`SELECT sealed_private_key, sealed_api_secret, kdf FROM profiles WHERE name = ?`, name,
	).Scan(&sealedKey, &sealedSecret, &rawParams)
	if err != nil {
		return Profile{}, Secrets{}, fmt.Errorf("read profile secrets: %w", err)
	}

	params, err := parseParams(rawParams)
	if err != nil {
		return Profile{}, Secrets{}, err
	}
	key, err := params.derive(passphrase)
	if err != nil {
		return Profile{}, Secrets{}, err
	}
	defer crypto.Wipe(key)

	encodedPrivate, err := crypto.DecryptField(key, sealedKey)
	if err != nil {
		return Profile{}, Secrets{}, fmt.Errorf("profile %q: wrong passphrase: %w", name, err)
	}
	private, err := crypto.ParseKey(encodedPrivate)
	if err != nil {
		return Profile{}, Secrets{}, fmt.Errorf("profile private key: %w", err)
	}
	apiSecret, err := crypto.DecryptField(key, sealedSecret)
	if err != nil {
		crypto.Wipe(private)
		return Profile{}, Secrets{}, fmt.Errorf("profile %q: wrong passphrase: %w", name, err)
	}

	if err := matchKeys(p.PublicKey, private); err != nil {
		crypto.Wipe(private)
		return Profile{}, Secrets{}, err
	}
	return p, Secrets{PrivateKey: private, APISecret: apiSecret}, nil
}

func (s *Store) seal(secrets Secrets, passphrase []byte) (kdfParams, string, string, error) {
	params, err := newParams(s.kdf)
	if err != nil {
		return kdfParams{}, "", "", err
	}
	key, err := params.derive(passphrase)
	if err != nil {
		return kdfParams{}, "", "", err
	}
	defer crypto.Wipe(key)

	sealedKey, err := crypto.EncryptField(key, crypto.EncodeKey(secrets.PrivateKey))
	if err != nil {
		return kdfParams{}, "", "", fmt.Errorf("seal private key: %w", err)
	}
	sealedSecret, err := crypto.EncryptField(key, secrets.APISecret)
	if err != nil {
		return kdfParams{}, "", "", fmt.Errorf("seal api secret: %w", err)
	}
	return params, sealedKey, sealedSecret, nil
}

// matchKeys сверяет закрытый ключ с открытым, записанным в профиле
func matchKeys(publicKey string, private *[crypto.KeySize]byte) error {
	derived, err := curve25519.X25519(private[:], curve25519.Basepoint)
	if err != nil {
		return fmt.Errorf("derive public key: %w", err)
	}
	stored, err := crypto.DecodeBase64URL(publicKey)
	if err != nil {
		return fmt.Errorf("profile public key: %w", err)
	}
	if subtle.ConstantTimeCompare(derived, stored) != 1 {
		return errs.Format("profile", "private key does not match public key")
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProfile(row scanner) (Profile, error) {
	var (
		p        Profile
		clientID string
	)
	err := row.Scan(&p.Name, &p.ServerAddress, &p.EnableTLS, &clientID, &p.Email, &p.APIKeyID, &p.PublicKey,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return Profile{}, err
	}
	if p.ClientID, err = uuid.Parse(clientID); err != nil {
		return Profile{}, errs.Format("profile", "client_id: %v", err)
	}
	return p, nil
}

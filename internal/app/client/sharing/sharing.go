// Package sharing раздает и отзывает доступ к записям своего типа.
package sharing

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"

	"cipherkeeper/internal/app/client/access"
	"cipherkeeper/internal/app/client/storage"
	"cipherkeeper/internal/crypto"
	"cipherkeeper/internal/errs"
)

// KeyResolver возвращает ключ доступа области
type KeyResolver interface {
	Resolve(ctx context.Context, writerID, userID, readerID uuid.UUID, typ string) (*[crypto.KeySize]byte, error)
}

type Controller struct {
	store    storage.Service
	resolver KeyResolver
	self     access.Identity
	log      *slog.Logger
}

func NewController(store storage.Service, resolver KeyResolver, self access.Identity, log *slog.Logger) *Controller {
	return &Controller{
		store:    store,
		resolver: resolver,
		self:     self,
		log:      log.With("component", "sharing"),
	}
}

type revokeOptions struct {
	removeKey bool
}

type RevokeOption func(*revokeOptions)

// WithKeyRemoval дополнительно удаляет опубликованный для читателя ключ.
// Ключ, который читатель уже получил, это не отзывает.
func WithKeyRemoval() RevokeOption {
	return func(o *revokeOptions) { o.removeKey = true }
}

// Share открывает читателю записи типа typ, которые клиент пишет о себе.
// Читателю публикуется тот же ключ доступа, перешифровывать записи не нужно.
func (c *Controller) Share(ctx context.Context, typ, reader string) error {
	if c.isSelf(reader) {
		return nil
	}

	info, err := c.lookup(ctx, reader)
	if err != nil {
		return err
	}
	if info.ClientID == c.self.ClientID {
		return nil
	}
	readerPublic, err := crypto.ParseKey(info.PublicKey)
	if err != nil {
		return fmt.Errorf("reader public key: %w", err)
	}

	self := c.self.ClientID
	key, err := c.resolver.Resolve(ctx, self, self, self, typ)
	if err != nil {
		return fmt.Errorf("resolve own access key: %w", err)
	}
	defer crypto.Wipe(key)

	eak, err := crypto.WrapKey(key, readerPublic, c.self.Keys.Private)
	if err != nil {
		return err
	}
	if err := c.store.PutAccessKey(ctx, self, self, info.ClientID, typ, eak); err != nil {
		return fmt.Errorf("publish access key: %w", err)
	}
	if err := c.store.PutPolicy(ctx, self, self, info.ClientID, typ, storage.Allow); err != nil {
		return fmt.Errorf("allow reader: %w", err)
	}

	c.log.Info("access shared", "reader_id", info.ClientID, "type", typ)
	return nil
}

// Revoke запрещает читателю чтение записей типа typ.
func (c *Controller) Revoke(ctx context.Context, typ, reader string, opts ...RevokeOption) error {
	var o revokeOptions
	for _, opt := range opts {
		opt(&o)
	}

	if c.isSelf(reader) {
		return nil
	}
	readerID, err := c.readerID(ctx, reader)
	if err != nil {
		return err
	}
	if readerID == c.self.ClientID {
		return nil
	}

	self := c.self.ClientID
	if err := c.store.PutPolicy(ctx, self, self, readerID, typ, storage.Deny); err != nil {
		return fmt.Errorf("deny reader: %w", err)
	}
	if o.removeKey {
		if err := c.store.DeleteAccessKey(ctx, self, self, readerID, typ); err != nil {
			return fmt.Errorf("remove access key: %w", err)
		}
	}

	c.log.Info("access revoked", "reader_id", readerID, "type", typ, "key_removed", o.removeKey)
	return nil
}

func (c *Controller) isSelf(reader string) bool {
	id, err := uuid.Parse(reader)
	return err == nil && id == c.self.ClientID
}

func (c *Controller) readerID(ctx context.Context, reader string) (uuid.UUID, error) {
	if !isEmail(reader) {
		id, err := uuid.Parse(reader)
		if err != nil {
			return uuid.Nil, fmt.Errorf("%w: %q is neither a client id nor an email", errs.ErrInvalidInput, reader)
		}
		return id, nil
	}
	info, err := c.lookup(ctx, reader)
	if err != nil {
		return uuid.Nil, err
	}
	return info.ClientID, nil
}

func (c *Controller) lookup(ctx context.Context, reader string) (storage.ClientInfo, error) {
	if !isEmail(reader) {
		if _, err := uuid.Parse(reader); err != nil {
			return storage.ClientInfo{}, fmt.Errorf("%w: %q is neither a client id nor an email", errs.ErrInvalidInput, reader)
		}
	}
	info, err := c.store.GetClientInfo(ctx, reader)
	if err != nil {
		return storage.ClientInfo{}, fmt.Errorf("client %s: %w", reader, err)
	}
	return info, nil
}

func isEmail(s string) bool {
	return strings.Contains(s, "@")
}

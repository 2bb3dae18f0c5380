package auth

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"cipherkeeper/cmd/client/cmd/types"
	"cipherkeeper/internal/app/client/profile"
	"cipherkeeper/internal/app/client/transport"
	"cipherkeeper/internal/crypto"
	"cipherkeeper/internal/errs"
)

var email string

var RegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Зарегистрировать клиента на сервере",
	Long: `Создает ключевую пару, регистрирует открытый ключ на сервере и сохраняет
локальный профиль. Закрытый ключ и API-секрет хранятся только в профиле,
зашифрованные паролем профиля. Без пароля восстановить их невозможно.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		env, err := types.FromContext(cmd.Context())
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		cfg := env.Config

		store, err := env.Profiles()
		if err != nil {
			return err
		}
		defer store.Close()

		if _, err := store.Get(ctx, cfg.Profile); err == nil {
			return fmt.Errorf("профиль %q уже существует", cfg.Profile)
		} else if !errors.Is(err, errs.ErrNotFound) {
			return err
		}

		passphrase, err := env.NewPassphrase()
		if err != nil {
			return err
		}
		defer clear(passphrase)

		keys, err := crypto.GenerateKeyPair()
		if err != nil {
			return err
		}
		defer crypto.Wipe(keys.Private)

		httpClient := transport.New(transport.BaseURL(cfg.ServerAddress, cfg.EnableTLS), transport.Credentials{}, env.Log)
		creds, err := httpClient.Register(ctx, email, crypto.EncodeKey(keys.Public))
		if err != nil {
			return fmt.Errorf("ошибка регистрации: %w", err)
		}

		p := profile.Profile{
			Name:          cfg.Profile,
			ServerAddress: cfg.ServerAddress,
			EnableTLS:     cfg.EnableTLS,
			ClientID:      creds.ClientID,
			Email:         email,
			APIKeyID:      creds.APIKeyID,
			PublicKey:     crypto.EncodeKey(keys.Public),
		}
		secrets := profile.Secrets{PrivateKey: keys.Private, APISecret: creds.APISecret}
		if err := store.Save(ctx, p, secrets, passphrase); err != nil {
			return fmt.Errorf("ошибка сохранения профиля: %w", err)
		}

		if env.JSON {
			return env.PrintJSON(map[string]any{"profile": p.Name, "client_id": p.ClientID, "email": p.Email})
		}
		env.Success("Клиент %s зарегистрирован, профиль %q сохранен", p.ClientID, p.Name)
		return nil
	},
}

func init() {
	RegisterCmd.Flags().StringVar(&email, "email", "", "адрес клиента")
	_ = RegisterCmd.MarkFlagRequired("email")
}

package auth

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"cipherkeeper/cmd/client/cmd/types"
	"cipherkeeper/internal/errs"
)

var ChangePasswordCmd = &cobra.Command{
	Use:   "change-password",
	Short: "Изменить пароль профиля",
	Long: `Перешифровывает закрытый ключ и API-секрет профиля новым паролем.
Записи на сервере не меняются.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		env, err := types.FromContext(cmd.Context())
		if err != nil {
			return err
		}

		store, err := env.Profiles()
		if err != nil {
			return err
		}
		defer store.Close()

		current, err := env.Passphrase("Текущий пароль профиля: ")
		if err != nil {
			return err
		}
		defer clear(current)

		// CIPHERKEEPER_PASSPHRASE подходит только для текущего пароля
		env.Config.Passphrase = ""
		next, err := env.NewPassphrase()
		if err != nil {
			return err
		}
		defer clear(next)

		if err := store.ChangePassphrase(cmd.Context(), env.Config.Profile, current, next); err != nil {
			if errors.Is(err, errs.ErrDecryption) {
				return fmt.Errorf("неверный пароль профиля")
			}
			return err
		}

		env.Success("Пароль профиля %q изменен", env.Config.Profile)
		return nil
	},
}

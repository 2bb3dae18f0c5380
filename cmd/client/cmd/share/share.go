// Package share - команды выдачи и отзыва доступа к записям
package share

import (
	"fmt"

	"github.com/spf13/cobra"

	"cipherkeeper/cmd/client/cmd/types"
	"cipherkeeper/internal/app/client/sharing"
)

var ShareCmd = &cobra.Command{
	Use:   "share [type] [reader]",
	Short: "Открыть записи типа другому клиенту",
	Long: `Открывает читателю (email или ID клиента) все записи указанного типа,
текущие и будущие. Ключ доступа шифруется открытым ключом читателя.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := types.FromContext(cmd.Context())
		if err != nil {
			return err
		}
		typ, reader := args[0], args[1]

		session, err := env.Open(cmd.Context())
		if err != nil {
			return err
		}

		if err := session.Client.Share(cmd.Context(), typ, reader); err != nil {
			return fmt.Errorf("ошибка выдачи доступа: %w", err)
		}
		env.Success("Записи типа %q открыты для %s", typ, reader)
		return nil
	},
}

var removeKey bool

var RevokeCmd = &cobra.Command{
	Use:   "revoke [type] [reader]",
	Short: "Отозвать доступ к записям типа",
	Long: `Запрещает читателю чтение записей указанного типа. С --remove-key
ключ доступа читателя также удаляется с сервера (по умолчанию REVOKE_REMOVES_KEY).

Расшифрованные ранее данные у читателя остаются.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := types.FromContext(cmd.Context())
		if err != nil {
			return err
		}
		typ, reader := args[0], args[1]

		var opts []sharing.RevokeOption
		if removeKey || env.Config.RevokeRemovesKey {
			opts = append(opts, sharing.WithKeyRemoval())
		}

		session, err := env.Open(cmd.Context())
		if err != nil {
			return err
		}

		if err := session.Client.Revoke(cmd.Context(), typ, reader, opts...); err != nil {
			return fmt.Errorf("ошибка отзыва доступа: %w", err)
		}
		env.Success("Доступ %s к записям типа %q отозван", reader, typ)
		return nil
	},
}

func init() {
	RevokeCmd.Flags().BoolVar(&removeKey, "remove-key", false, "удалить ключ доступа читателя")
}

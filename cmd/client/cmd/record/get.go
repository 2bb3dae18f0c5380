package record

import (
	"fmt"

	"github.com/spf13/cobra"

	"cipherkeeper/cmd/client/cmd/types"
)

var GetCmd = &cobra.Command{
	Use:   "get [id]",
	Short: "Просмотреть запись",
	Long:  `Получает запись по ID и расшифровывает ее поля.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := types.FromContext(cmd.Context())
		if err != nil {
			return err
		}

		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		session, err := env.Open(cmd.Context())
		if err != nil {
			return err
		}

		rec, err := session.Client.Read(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("ошибка получения записи: %w", err)
		}
		return env.PrintRecord(rec)
	},
}

package record

import (
	"fmt"

	"github.com/spf13/cobra"

	"cipherkeeper/cmd/client/cmd/types"
)

var DeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Удалить запись",
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

		if err := session.Client.Delete(cmd.Context(), id); err != nil {
			return fmt.Errorf("ошибка удаления записи: %w", err)
		}
		env.Success("Запись %s удалена", id)
		return nil
	},
}

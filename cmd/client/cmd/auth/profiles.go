package auth

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"cipherkeeper/cmd/client/cmd/types"
)

var ProfilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "Список локальных профилей",
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

		profiles, err := store.List(cmd.Context())
		if err != nil {
			return err
		}
		if env.JSON {
			return env.PrintJSON(profiles)
		}
		if len(profiles) == 0 {
			fmt.Fprintln(env.Out, "Профили не найдены")
			return nil
		}

		w := tabwriter.NewWriter(env.Out, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "Профиль\tEmail\tСервер\tClient ID\t\n")
		for _, p := range profiles {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t\n", p.Name, p.Email, p.ServerAddress, p.ClientID)
		}
		return w.Flush()
	},
}

var ForgetCmd = &cobra.Command{
	Use:   "forget",
	Short: "Удалить локальный профиль",
	Long: `Удаляет профиль вместе с закрытым ключом. Записи на сервере остаются,
но прочитать их без ключа будет невозможно.`,
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

		if err := store.Delete(cmd.Context(), env.Config.Profile); err != nil {
			return err
		}
		env.Success("Профиль %q удален", env.Config.Profile)
		return nil
	},
}

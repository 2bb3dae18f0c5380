package auth

import (
	"github.com/spf13/cobra"

	"cipherkeeper/cmd/client/cmd/types"
)

var WhoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Показать текущий профиль",
	Long:  `Разблокирует профиль, проверяет сервер и выводит сведения о клиенте, известные серверу.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		env, err := types.FromContext(cmd.Context())
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		session, err := env.Open(ctx)
		if err != nil {
			return err
		}

		online := session.HTTP.HealthCheck(ctx) == nil
		info, err := session.Client.ClientInfo(ctx, session.Client.ID().String())
		if err != nil && online {
			return err
		}

		if env.JSON {
			return env.PrintJSON(map[string]any{
				"profile":    session.Profile.Name,
				"server":     session.Profile.ServerAddress,
				"online":     online,
				"client_id":  session.Profile.ClientID,
				"email":      session.Profile.Email,
				"public_key": session.Profile.PublicKey,
			})
		}

		env.Success("Профиль %q: %s (%s)", session.Profile.Name, session.Profile.Email, session.Profile.ClientID)
		if !online {
			env.Warn("Сервер %s недоступен", session.Profile.ServerAddress)
			return nil
		}
		if info.PublicKey != session.Profile.PublicKey {
			env.Warn("Открытый ключ на сервере не совпадает с ключом профиля")
		}
		return nil
	},
}

package record

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"cipherkeeper/cmd/client/cmd/types"
	"cipherkeeper/internal/app/client/kinds"
	"cipherkeeper/internal/errs"
)

var (
	updateFields []string
	updatePlain  []string
	updateUnset  []string
)

var UpdateCmd = &cobra.Command{
	Use:   "update [id]",
	Short: "Изменить запись",
	Long: `Изменяет поля записи. Указанные поля заменяются, остальные сохраняются.
Если запись изменили с другого устройства после чтения, обновление
отклоняется; повторите команду.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := types.FromContext(cmd.Context())
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		changes, err := types.ParseFields(updateFields)
		if err != nil {
			return err
		}
		plainChanges, err := types.ParseFields(updatePlain)
		if err != nil {
			return err
		}

		session, err := env.Open(ctx)
		if err != nil {
			return err
		}

		rec, err := session.Client.Read(ctx, id)
		if err != nil {
			return fmt.Errorf("ошибка получения записи: %w", err)
		}

		data := rec.Data()
		for name, value := range changes.All() {
			data.Set(name, value)
		}
		plain := rec.Meta().Plain()
		for name, value := range plainChanges.All() {
			plain.Set(name, value)
		}
		if len(updateUnset) > 0 {
			data = without(data, updateUnset)
		}
		if err := kinds.Validate(rec.Meta().Type(), data); err != nil {
			return err
		}

		updated, err := session.Client.Update(ctx, rec.WithMeta(rec.Meta().WithPlain(plain)).WithData(data))
		if errors.Is(err, errs.ErrConflict) {
			return fmt.Errorf("запись изменена другим клиентом, повторите обновление")
		}
		if err != nil {
			return fmt.Errorf("ошибка обновления записи: %w", err)
		}

		if env.JSON {
			return env.PrintRecord(updated)
		}
		env.Success("Запись %s обновлена, версия %s", updated.ID(), updated.Meta().Version())
		return nil
	},
}

func init() {
	UpdateCmd.Flags().StringArrayVarP(&updateFields, "field", "f", nil, "шифруемое поле key=value (можно повторять)")
	UpdateCmd.Flags().StringArrayVar(&updatePlain, "plain", nil, "открытое поле key=value (можно повторять)")
	UpdateCmd.Flags().StringArrayVar(&updateUnset, "unset", nil, "удалить шифруемое поле")
}

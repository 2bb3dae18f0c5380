package record

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"cipherkeeper/cmd/client/cmd/types"
	"cipherkeeper/internal/app/client/kinds"
)

var (
	createType   string
	createFields []string
	createPlain  []string
	createFile   string
)

var CreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Создать запись",
	Long: `Шифрует поля и сохраняет новую запись.

  cipherkeeper record create -t login -f username=alice -f password=secret --plain site=example.com
  cipherkeeper record create -t binary --file ./id_rsa

Поля --plain не шифруются и доступны для поиска.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		env, err := types.FromContext(cmd.Context())
		if err != nil {
			return err
		}

		data, err := types.ParseFields(createFields)
		if err != nil {
			return err
		}
		plain, err := types.ParseFields(createPlain)
		if err != nil {
			return err
		}

		if createFile != "" {
			content, err := os.ReadFile(createFile)
			if err != nil {
				return fmt.Errorf("ошибка чтения файла: %w", err)
			}
			fileData, filePlain := kinds.BinaryFields(createFile, content)
			for name, value := range fileData.All() {
				data.Set(name, value)
			}
			for name, value := range filePlain.All() {
				if _, ok := plain.Get(name); !ok {
					plain.Set(name, value)
				}
			}
		}

		if err := kinds.Validate(createType, data); err != nil {
			return err
		}

		session, err := env.Open(cmd.Context())
		if err != nil {
			return err
		}

		rec, err := session.Client.Write(cmd.Context(), createType, data, plain)
		if err != nil {
			return fmt.Errorf("ошибка создания записи: %w", err)
		}

		if env.JSON {
			return env.PrintRecord(rec)
		}
		env.Success("Запись %s создана", rec.ID())
		return nil
	},
}

func init() {
	CreateCmd.Flags().StringVarP(&createType, "type", "t", "", "тип записи")
	CreateCmd.Flags().StringArrayVarP(&createFields, "field", "f", nil, "шифруемое поле key=value (можно повторять)")
	CreateCmd.Flags().StringArrayVar(&createPlain, "plain", nil, "открытое поле key=value (можно повторять)")
	CreateCmd.Flags().StringVar(&createFile, "file", "", "файл для записи типа binary")
	_ = CreateCmd.MarkFlagRequired("type")
}

package record

import (
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"cipherkeeper/internal/app/client/kinds"
	"cipherkeeper/internal/domain/record"
)

// RecordCmd - родительская команда для всех операций с записями
var RecordCmd = &cobra.Command{
	Use:   "record",
	Short: "Управление записями",
	Long: `Создание, просмотр, обновление и удаление зашифрованных записей.

Известные типы с проверкой полей: ` + strings.Join(kinds.Names(), ", ") + `.
Записи других типов сохраняются без проверок.`,
}

func parseID(arg string) (uuid.UUID, error) {
	id, err := uuid.Parse(arg)
	if err != nil {
		return uuid.Nil, fmt.Errorf("неверный ID записи: %w", err)
	}
	return id, nil
}

func parseIDs(args []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(args))
	for _, arg := range args {
		id, err := uuid.Parse(arg)
		if err != nil {
			return nil, fmt.Errorf("неверный ID %q: %w", arg, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// without возвращает поля без перечисленных имен
func without(fields record.Fields, names []string) record.Fields {
	var out record.Fields
	for name, value := range fields.All() {
		if !slices.Contains(names, name) {
			out.Set(name, value)
		}
	}
	return out
}

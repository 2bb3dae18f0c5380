package record

import (
	"fmt"

	"github.com/spf13/cobra"

	"cipherkeeper/cmd/client/cmd/types"
	"cipherkeeper/internal/app/client"
	"cipherkeeper/internal/domain/record"
)

var (
	listTypes      []string
	listWriters    []string
	listAllWriters bool
	listPlain      []string
	listData       bool
	listRaw        bool
	listLimit      int
	listAfter      int64
)

var ListCmd = &cobra.Command{
	Use:   "list",
	Short: "Список записей",
	Long: `Поиск записей по типу, автору и открытым полям.

Без --limit выводятся все подходящие записи, постранично запрашиваемые
у сервера по QUERY_PAGE_SIZE. С --limit выводится одна страница, а номер
последней записи подходит для --after.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		env, err := types.FromContext(cmd.Context())
		if err != nil {
			return err
		}

		writers, err := parseIDs(listWriters)
		if err != nil {
			return err
		}
		plain, err := types.ParseFields(listPlain)
		if err != nil {
			return err
		}

		q := client.Query{
			WriterIDs:   writers,
			AllWriters:  listAllWriters,
			Types:       listTypes,
			Plain:       plain,
			IncludeData: listData || listRaw,
			Raw:         listRaw,
			PageSize:    env.Config.PageSize,
			AfterIndex:  listAfter,
		}

		session, err := env.Open(cmd.Context())
		if err != nil {
			return err
		}

		if listLimit > 0 {
			q.PageSize = listLimit
			page, err := session.Client.Query(cmd.Context(), q)
			if err != nil {
				return fmt.Errorf("ошибка получения списка записей: %w", err)
			}
			if err := env.PrintRecords(page.Records); err != nil {
				return err
			}
			if !env.JSON {
				fmt.Fprintf(env.Out, "Следующая страница: --after %d\n", page.LastIndex)
			}
			return nil
		}

		var records []record.Record
		for rec, err := range session.Client.QueryAll(cmd.Context(), q) {
			if err != nil {
				return fmt.Errorf("ошибка получения списка записей: %w", err)
			}
			records = append(records, rec)
		}
		return env.PrintRecords(records)
	},
}

func init() {
	ListCmd.Flags().StringArrayVarP(&listTypes, "type", "t", nil, "тип записи (можно повторять)")
	ListCmd.Flags().StringArrayVar(&listWriters, "writer", nil, "ID автора (можно повторять)")
	ListCmd.Flags().BoolVarP(&listAllWriters, "all", "a", false, "включить записи, открытые другими клиентами")
	ListCmd.Flags().StringArrayVar(&listPlain, "plain", nil, "отбор по открытому полю key=value")
	ListCmd.Flags().BoolVar(&listData, "data", false, "получить и расшифровать поля")
	ListCmd.Flags().BoolVar(&listRaw, "raw", false, "получить поля без расшифровки")
	ListCmd.Flags().IntVar(&listLimit, "limit", 0, "размер одной страницы")
	ListCmd.Flags().Int64Var(&listAfter, "after", 0, "начать после записи с этим номером")
}

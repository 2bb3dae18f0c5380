package auth

import (
	"github.com/spf13/cobra"
)

// AuthCmd - родительская команда для операций с профилем клиента
var AuthCmd = &cobra.Command{
	Use:   "auth",
	Short: "Управление профилем",
	Long:  `Регистрация на сервере, просмотр и удаление локальных профилей, смена пароля профиля.`,
}

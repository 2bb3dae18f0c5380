package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"cipherkeeper/cmd/client/cmd/types"
	"cipherkeeper/internal/app/client/config"
	"cipherkeeper/internal/utils/logger"
)

var (
	profileName string
	serverAddr  string
	debug       bool
	jsonOutput  bool
)

var rootCmd = &cobra.Command{
	Use:   "cipherkeeper",
	Short: "Cipherkeeper - клиент хранилища зашифрованных записей",
	Long: `Cipherkeeper шифрует записи на стороне клиента и хранит на сервере
только шифротекст. Доступ к записям определенного типа можно открыть
другим клиентам и отозвать.`,
	PersistentPreRunE: setupApp,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка: %v\n", err)
		os.Exit(1)
	}
}

func setupApp(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("ошибка загрузки конфигурации: %w", err)
	}

	// флаги важнее окружения
	if profileName != "" {
		cfg.Profile = profileName
	}
	if serverAddr != "" {
		cfg.ServerAddress = serverAddr
	}

	log := logger.Discard()
	if debug {
		log = logger.New(cfg.Env)
	}

	env := &types.Env{
		Config: cfg,
		Log:    log,
		JSON:   jsonOutput,
		Out:    cmd.OutOrStdout(),
		In:     os.Stdin,
	}
	cmd.SetContext(types.WithEnv(cmd.Context(), env))
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&profileName, "profile", "p", "", "имя профиля (по умолчанию PROFILE или default)")
	rootCmd.PersistentFlags().StringVar(&serverAddr, "server", "", "адрес сервера host:port для регистрации")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "включить отладочный режим")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "вывод в формате JSON")
}

// Package types - общее окружение команд CLI
package types

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"golang.org/x/exp/slog"
	"golang.org/x/term"

	"cipherkeeper/internal/app/client"
	"cipherkeeper/internal/app/client/config"
	"cipherkeeper/internal/app/client/profile"
	"cipherkeeper/internal/app/client/transport"
	"cipherkeeper/internal/domain/record"
	"cipherkeeper/internal/errs"
)

type contextKey string

// ClientAppKey - ключ окружения в контексте команды
const ClientAppKey contextKey = "app"

const minPassphraseLen = 8

var (
	successColor = color.New(color.FgGreen, color.Bold)
	warnColor    = color.New(color.FgYellow)
	labelColor   = color.New(color.FgCyan)
)

// Env создается в PersistentPreRunE корневой команды
type Env struct {
	Config *config.Config
	Log    *slog.Logger
	JSON   bool
	Out    io.Writer
	In     io.Reader

	lines *bufio.Reader
}

func WithEnv(ctx context.Context, env *Env) context.Context {
	return context.WithValue(ctx, ClientAppKey, env)
}

func FromContext(ctx context.Context) (*Env, error) {
	env, ok := ctx.Value(ClientAppKey).(*Env)
	if !ok || env == nil {
		return nil, fmt.Errorf("приложение не инициализировано")
	}
	return env, nil
}

// Profiles открывает базу профилей. Вызывающий закрывает ее.
func (e *Env) Profiles() (*profile.Store, error) {
	return profile.Open(e.Config.ProfilePath, e.Log, profile.WithKDF(e.Config.KDF))
}

// Session - разблокированный профиль и клиент поверх него
type Session struct {
	Profile profile.Unlocked
	Client  *client.Client
	HTTP    *transport.HTTPClient
}

// Open разблокирует текущий профиль и подключается к его серверу
func (e *Env) Open(ctx context.Context) (*Session, error) {
	store, err := e.Profiles()
	if err != nil {
		return nil, err
	}
	defer store.Close()

	if _, err := store.Get(ctx, e.Config.Profile); errors.Is(err, errs.ErrNotFound) {
		return nil, fmt.Errorf("профиль %q не найден, выполните: cipherkeeper auth register", e.Config.Profile)
	} else if err != nil {
		return nil, err
	}

	passphrase, err := e.Passphrase("Пароль профиля: ")
	if err != nil {
		return nil, err
	}
	defer clear(passphrase)

	unlocked, err := store.Unlock(ctx, e.Config.Profile, passphrase)
	if err != nil {
		if errors.Is(err, errs.ErrDecryption) {
			return nil, fmt.Errorf("неверный пароль профиля")
		}
		return nil, err
	}

	httpClient := transport.New(transport.BaseURL(unlocked.ServerAddress, unlocked.EnableTLS), unlocked.Credentials, e.Log)
	return &Session{
		Profile: unlocked,
		Client:  client.New(httpClient, unlocked.Identity, e.Log),
		HTTP:    httpClient,
	}, nil
}

// Passphrase берет пароль из CIPHERKEEPER_PASSPHRASE или спрашивает его
func (e *Env) Passphrase(prompt string) ([]byte, error) {
	if e.Config.Passphrase != "" {
		return []byte(e.Config.Passphrase), nil
	}
	return e.readSecret(prompt)
}

// NewPassphrase запрашивает новый пароль с подтверждением
func (e *Env) NewPassphrase() ([]byte, error) {
	if e.Config.Passphrase != "" {
		return checkPassphrase([]byte(e.Config.Passphrase))
	}

	password, err := e.readSecret("Новый пароль профиля: ")
	if err != nil {
		return nil, err
	}
	confirm, err := e.readSecret("Повторите пароль: ")
	if err != nil {
		return nil, err
	}
	defer clear(confirm)

	if string(password) != string(confirm) {
		return nil, fmt.Errorf("пароли не совпадают")
	}
	return checkPassphrase(password)
}

func checkPassphrase(p []byte) ([]byte, error) {
	if len(p) < minPassphraseLen {
		return nil, fmt.Errorf("пароль должен содержать минимум %d символов", minPassphraseLen)
	}
	return p, nil
}

func (e *Env) readSecret(prompt string) ([]byte, error) {
	fd := int(os.Stdin.Fd())
	if e.In == os.Stdin && term.IsTerminal(fd) {
		fmt.Fprint(os.Stderr, prompt)
		p, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return nil, fmt.Errorf("ошибка чтения пароля: %w", err)
		}
		return p, nil
	}

	if e.lines == nil {
		e.lines = bufio.NewReader(e.In)
	}
	line, err := e.lines.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("ошибка чтения пароля: %w", err)
	}
	return []byte(strings.TrimRight(line, "\r\n")), nil
}

// ParseFields разбирает пары key=value в порядке их указания
func ParseFields(pairs []string) (record.Fields, error) {
	var fields record.Fields
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return record.Fields{}, fmt.Errorf("ожидается key=value, получено %q", pair)
		}
		fields.Set(name, value)
	}
	return fields, nil
}

func (e *Env) Success(format string, args ...any) {
	successColor.Fprintf(e.Out, "✓ "+format+"\n", args...)
}

func (e *Env) Warn(format string, args ...any) {
	warnColor.Fprintf(e.Out, format+"\n", args...)
}

// PrintJSON выводит значение с отступами
func (e *Env) PrintJSON(v any) error {
	encoder := json.NewEncoder(e.Out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// PrintRecord выводит запись целиком
func (e *Env) PrintRecord(rec record.Record) error {
	if e.JSON {
		return e.PrintJSON(rec)
	}

	meta := rec.Meta()
	w := tabwriter.NewWriter(e.Out, 0, 0, 2, ' ', 0)
	row := func(label, value string) {
		fmt.Fprintf(w, "%s\t%s\n", labelColor.Sprint(label), value)
	}

	row("ID:", rec.ID().String())
	row("Тип:", meta.Type())
	row("Автор:", meta.WriterID().String())
	row("Версия:", meta.Version())
	if t := meta.LastModified(); t != nil {
		row("Обновлено:", t.Local().Format("2006-01-02 15:04:05"))
	}
	for name, value := range meta.Plain().All() {
		row("#"+name+":", value)
	}
	for name, value := range rec.Data().All() {
		row(name+":", value)
	}
	return w.Flush()
}

// PrintRecords выводит записи таблицей без значений полей
func (e *Env) PrintRecords(records []record.Record) error {
	if e.JSON {
		if records == nil {
			records = []record.Record{}
		}
		return e.PrintJSON(records)
	}
	if len(records) == 0 {
		fmt.Fprintln(e.Out, "Записи не найдены")
		return nil
	}

	w := tabwriter.NewWriter(e.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID\tТип\tАвтор\tМетки\tПоля\t\n")
	fmt.Fprintf(w, "---\t---\t---\t---\t---\t\n")
	for _, rec := range records {
		meta := rec.Meta()
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t\n",
			rec.ID(),
			meta.Type(),
			meta.WriterID(),
			truncate(formatPlain(meta.Plain()), 40),
			strings.Join(rec.Data().Keys(), ","),
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(e.Out, "\nВсего записей: %d\n", len(records))
	return nil
}

func formatPlain(plain record.Fields) string {
	pairs := make([]string, 0, plain.Len())
	for name, value := range plain.All() {
		pairs = append(pairs, name+"="+value)
	}
	return strings.Join(pairs, " ")
}

func truncate(s string, n int) string {
	if len([]rune(s)) <= n {
		return s
	}
	return string([]rune(s)[:n-1]) + "…"
}

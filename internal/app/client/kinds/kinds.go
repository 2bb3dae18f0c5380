// Package kinds описывает известные типы записей CLI: какие поля они
// ожидают и как эти поля проверяются. Прочие типы записываются без проверок.
package kinds

import (
	"fmt"
	"mime"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"cipherkeeper/internal/crypto"
	"cipherkeeper/internal/domain/record"
	"cipherkeeper/internal/errs"
)

const (
	Login  = "login"
	Text   = "text"
	Binary = "binary"
	Card   = "card"

	maxTextSize   = 10 * 1024 * 1024
	maxBinarySize = 100 * 1024 * 1024
)

var (
	cardSeparators = regexp.MustCompile(`[-\s]`)
	cardDigits     = regexp.MustCompile(`^\d{13,19}$`)
	expiryMonth    = regexp.MustCompile(`^(0[1-9]|1[0-2])$`)
	expiryYear     = regexp.MustCompile(`^20\d{2}$`)
	cvv            = regexp.MustCompile(`^\d{3,4}$`)
)

// Kind - известный тип записи
type Kind struct {
	Name        string
	DisplayName string
	// Required - поля данных, без которых запись не сохраняется
	Required []string
	validate func(data record.Fields, now time.Time) error
}

var known = map[string]Kind{
	Login: {
		Name:        Login,
		DisplayName: "Логин/Пароль",
		Required:    []string{"username", "password"},
	},
	Text: {
		Name:        Text,
		DisplayName: "Текстовые данные",
		Required:    []string{"content"},
		validate:    validateText,
	},
	Binary: {
		Name:        Binary,
		DisplayName: "Бинарные данные",
		Required:    []string{"filename", "data"},
		validate:    validateBinary,
	},
	Card: {
		Name:        Card,
		DisplayName: "Банковская карта",
		Required:    []string{"card_number", "card_holder", "expiry_month", "expiry_year", "cvv"},
		validate:    validateCard,
	},
}

// Lookup возвращает описание типа, если он известен
func Lookup(name string) (Kind, bool) {
	k, ok := known[name]
	return k, ok
}

// Names - известные типы в порядке вывода
func Names() []string {
	return []string{Login, Text, Binary, Card}
}

// Validate проверяет данные записи типа typ. Для неизвестных типов
// проверяется только непустота.
func Validate(typ string, data record.Fields) error {
	return validateAt(typ, data, time.Now())
}

func validateAt(typ string, data record.Fields, now time.Time) error {
	if data.Len() == 0 {
		return fmt.Errorf("%w: record has no fields", errs.ErrInvalidInput)
	}

	k, ok := known[typ]
	if !ok {
		return nil
	}
	for _, name := range k.Required {
		if v, _ := data.Get(name); strings.TrimSpace(v) == "" {
			return fmt.Errorf("%w: %s: %s is required", errs.ErrInvalidInput, typ, name)
		}
	}
	if k.validate != nil {
		if err := k.validate(data, now); err != nil {
			return fmt.Errorf("%w: %s: %v", errs.ErrInvalidInput, typ, err)
		}
	}
	return nil
}

func validateText(data record.Fields, _ time.Time) error {
	if content, _ := data.Get("content"); len(content) > maxTextSize {
		return fmt.Errorf("content too large (max 10MB)")
	}
	return nil
}

func validateBinary(data record.Fields, _ time.Time) error {
	encoded, _ := data.Get("data")
	raw, err := crypto.DecodeBase64URL(encoded)
	if err != nil {
		return fmt.Errorf("data must be base64url: %w", err)
	}
	if len(raw) > maxBinarySize {
		return fmt.Errorf("file too large (max 100MB)")
	}
	return nil
}

func validateCard(data record.Fields, now time.Time) error {
	number, _ := data.Get("card_number")
	if !cardDigits.MatchString(cardSeparators.ReplaceAllString(number, "")) {
		return fmt.Errorf("invalid card number")
	}

	month, _ := data.Get("expiry_month")
	year, _ := data.Get("expiry_year")
	if !expiryMonth.MatchString(month) || !expiryYear.MatchString(year) {
		return fmt.Errorf("invalid expiry date")
	}
	m, _ := strconv.Atoi(month)
	y, _ := strconv.Atoi(year)
	if y < now.Year() || (y == now.Year() && m < int(now.Month())) {
		return fmt.Errorf("card expired")
	}

	if code, _ := data.Get("cvv"); !cvv.MatchString(code) {
		return fmt.Errorf("CVV must be 3 or 4 digits")
	}
	return nil
}

// BinaryFields собирает поля записи типа binary из содержимого файла.
// Имя и тип содержимого попадают и в открытые метаданные для поиска.
func BinaryFields(filename string, content []byte) (data, plain record.Fields) {
	name := filepath.Base(filename)
	contentType := mime.TypeByExtension(strings.ToLower(filepath.Ext(name)))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	data = record.FieldsOf(
		"filename", name,
		"data", crypto.EncodeBase64URL(content),
	)
	plain = record.FieldsOf(
		"filename", name,
		"content_type", contentType,
		"size", strconv.Itoa(len(content)),
	)
	return data, plain
}

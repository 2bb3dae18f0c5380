package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"iter"

	"cipherkeeper/internal/errs"
)

// Fields - упорядоченное отображение имя → значение.
// Порядок вставки сохраняется при сериализации и при преобразованиях.
type Fields struct {
	keys   []string
	values map[string]string
}

// FieldsOf собирает Fields из пар ключ, значение.
func FieldsOf(kv ...string) Fields {
	var f Fields
	for i := 0; i+1 < len(kv); i += 2 {
		f.Set(kv[i], kv[i+1])
	}
	return f
}

// Set добавляет или заменяет значение. Замена не меняет позицию ключа.
func (f *Fields) Set(name, value string) {
	if f.values == nil {
		f.values = make(map[string]string)
	}
	if _, ok := f.values[name]; !ok {
		f.keys = append(f.keys, name)
	}
	f.values[name] = value
}

func (f Fields) Get(name string) (string, bool) {
	v, ok := f.values[name]
	return v, ok
}

func (f Fields) Len() int {
	return len(f.keys)
}

// Keys возвращает копию списка ключей в порядке вставки.
func (f Fields) Keys() []string {
	keys := make([]string, len(f.keys))
	copy(keys, f.keys)
	return keys
}

// All перебирает пары в порядке вставки.
func (f Fields) All() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for _, k := range f.keys {
			if !yield(k, f.values[k]) {
				return
			}
		}
	}
}

// Clone возвращает независимую копию.
func (f Fields) Clone() Fields {
	var out Fields
	for k, v := range f.All() {
		out.Set(k, v)
	}
	return out
}

// Map строит новое отображение с теми же ключами в том же порядке.
func (f Fields) Map(fn func(name, value string) (string, error)) (Fields, error) {
	var out Fields
	for k, v := range f.All() {
		nv, err := fn(k, v)
		if err != nil {
			return Fields{}, err
		}
		out.Set(k, nv)
	}
	return out, nil
}

// Equal сравнивает содержимое и порядок ключей.
func (f Fields) Equal(other Fields) bool {
	if f.Len() != other.Len() {
		return false
	}
	for i, k := range f.keys {
		if other.keys[i] != k || other.values[k] != f.values[k] {
			return false
		}
	}
	return true
}

// AsMap возвращает обычную map (порядок теряется).
func (f Fields) AsMap() map[string]string {
	m := make(map[string]string, len(f.keys))
	for k, v := range f.All() {
		m[k] = v
	}
	return m
}

func (f Fields) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range f.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(f.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (f *Fields) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return errs.Format("fields", "%v", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return errs.Format("fields", "expected object, got %v", tok)
	}

	var out Fields
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return errs.Format("fields", "%v", err)
		}
		key, ok := tok.(string)
		if !ok {
			return errs.Format("fields", "unexpected key %v", tok)
		}
		var value string
		if err := dec.Decode(&value); err != nil {
			return errs.Format("fields", "value of %q: %v", key, err)
		}
		out.Set(key, value)
	}
	if _, err := dec.Token(); err != nil {
		return errs.Format("fields", "%v", err)
	}

	*f = out
	return nil
}

func (f Fields) String() string {
	return fmt.Sprintf("Fields%v", f.keys)
}

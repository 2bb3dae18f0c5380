package record

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"cipherkeeper/internal/errs"
)

// Meta - метаданные записи: происхождение, владелец и открытые аннотации.
// Значение неизменяемо, доступ только через методы.
type Meta struct {
	recordID     uuid.UUID
	writerID     uuid.UUID
	userID       uuid.UUID
	typ          string
	plain        Fields
	created      *time.Time
	lastModified *time.Time
	version      string
}

// MetaState - открытое состояние Meta для репозиториев и транспорта.
type MetaState struct {
	RecordID     uuid.UUID
	WriterID     uuid.UUID
	UserID       uuid.UUID
	Type         string
	Plain        Fields
	Created      *time.Time
	LastModified *time.Time
	Version      string
}

// NewMeta создает метаданные новой, еще не сохраненной записи.
func NewMeta(writerID, userID uuid.UUID, typ string, plain Fields) (Meta, error) {
	switch {
	case writerID == uuid.Nil:
		return Meta{}, errs.Format("meta", "writer_id is required")
	case userID == uuid.Nil:
		return Meta{}, errs.Format("meta", "user_id is required")
	case typ == "":
		return Meta{}, errs.Format("meta", "type is required")
	}

	return Meta{
		writerID: writerID,
		userID:   userID,
		typ:      typ,
		plain:    plain.Clone(),
	}, nil
}

// Meta собирает значение из сохраненного состояния.
func (s MetaState) Meta() Meta {
	return Meta{
		recordID:     s.RecordID,
		writerID:     s.WriterID,
		userID:       s.UserID,
		typ:          s.Type,
		plain:        s.Plain.Clone(),
		created:      copyTime(s.Created),
		lastModified: copyTime(s.LastModified),
		version:      s.Version,
	}
}

// State возвращает копию состояния.
func (m Meta) State() MetaState {
	return MetaState{
		RecordID:     m.recordID,
		WriterID:     m.writerID,
		UserID:       m.userID,
		Type:         m.typ,
		Plain:        m.plain.Clone(),
		Created:      copyTime(m.created),
		LastModified: copyTime(m.lastModified),
		Version:      m.version,
	}
}

// RecordID возвращает uuid.Nil, пока запись не сохранена.
func (m Meta) RecordID() uuid.UUID { return m.recordID }
func (m Meta) WriterID() uuid.UUID { return m.writerID }

// UserID - субъект записи, может отличаться от автора.
func (m Meta) UserID() uuid.UUID { return m.userID }
func (m Meta) Type() string      { return m.typ }
func (m Meta) Plain() Fields     { return m.plain.Clone() }
func (m Meta) Version() string   { return m.version }

func (m Meta) Created() *time.Time      { return copyTime(m.created) }
func (m Meta) LastModified() *time.Time { return copyTime(m.lastModified) }

// Stored сообщает, назначил ли сервер идентификатор.
func (m Meta) Stored() bool { return m.recordID != uuid.Nil }

// WithPlain возвращает копию с новыми открытыми аннотациями.
func (m Meta) WithPlain(plain Fields) Meta {
	m.plain = plain.Clone()
	return m
}

type metaJSON struct {
	RecordID     *uuid.UUID `json:"record_id"`
	WriterID     *uuid.UUID `json:"writer_id"`
	UserID       *uuid.UUID `json:"user_id"`
	Type         *string    `json:"type"`
	Plain        Fields     `json:"plain"`
	Created      *time.Time `json:"created"`
	LastModified *time.Time `json:"last_modified"`
	Version      *string    `json:"version"`
}

func (m Meta) MarshalJSON() ([]byte, error) {
	out := metaJSON{
		WriterID:     &m.writerID,
		UserID:       &m.userID,
		Type:         &m.typ,
		Plain:        m.plain,
		Created:      m.created,
		LastModified: m.lastModified,
	}
	if m.recordID != uuid.Nil {
		out.RecordID = &m.recordID
	}
	if m.version != "" {
		out.Version = &m.version
	}
	return json.Marshal(out)
}

func (m *Meta) UnmarshalJSON(data []byte) error {
	var in metaJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return errs.Format("meta", "%v", err)
	}

	switch {
	case in.WriterID == nil:
		return errs.Format("meta", "missing key %q", "writer_id")
	case in.UserID == nil:
		return errs.Format("meta", "missing key %q", "user_id")
	case in.Type == nil:
		return errs.Format("meta", "missing key %q", "type")
	}

	state := MetaState{
		WriterID:     *in.WriterID,
		UserID:       *in.UserID,
		Type:         *in.Type,
		Plain:        in.Plain,
		Created:      in.Created,
		LastModified: in.LastModified,
	}
	if in.RecordID != nil {
		state.RecordID = *in.RecordID
	}
	if in.Version != nil {
		state.Version = *in.Version
	}

	*m = state.Meta()
	return nil
}

// Record - метаданные и упорядоченные поля. В открытом виде значения полей
// содержат исходные байты, в зашифрованном - строки формата конверта.
type Record struct {
	meta Meta
	data Fields
}

func New(meta Meta, data Fields) Record {
	return Record{meta: meta, data: data.Clone()}
}

func (r Record) Meta() Meta    { return r.meta }
func (r Record) Data() Fields  { return r.data.Clone() }
func (r Record) ID() uuid.UUID { return r.meta.recordID }

// Field возвращает значение одного поля.
func (r Record) Field(name string) (string, bool) {
	return r.data.Get(name)
}

func (r Record) WithMeta(meta Meta) Record {
	return Record{meta: meta, data: r.data}
}

func (r Record) WithData(data Fields) Record {
	return Record{meta: r.meta, data: data.Clone()}
}

// MapData применяет fn к каждому полю и возвращает новую запись.
func (r Record) MapData(fn func(name, value string) (string, error)) (Record, error) {
	data, err := r.data.Map(fn)
	if err != nil {
		return Record{}, err
	}
	return Record{meta: r.meta, data: data}, nil
}

type recordJSON struct {
	Meta *Meta   `json:"meta"`
	Data *Fields `json:"data"`
}

func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(recordJSON{Meta: &r.meta, Data: &r.data})
}

func (r *Record) UnmarshalJSON(data []byte) error {
	var in recordJSON
	if err := json.Unmarshal(data, &in); err != nil {
		if errors.Is(err, errs.ErrFormat) {
			return err
		}
		return errs.Format("record", "%v", err)
	}
	if in.Meta == nil {
		return errs.Format("record", "missing key %q", "meta")
	}

	r.meta = *in.Meta
	r.data = Fields{}
	if in.Data != nil {
		r.data = *in.Data
	}
	return nil
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

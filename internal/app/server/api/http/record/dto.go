package record

import "cipherkeeper/internal/domain/record"

type recordOutput struct {
	Body recordBody
}

// recordBody повторяет JSON-форму record.Record экспортируемыми полями,
// иначе huma соберет тело ответа без meta и data
type recordBody struct {
	Meta record.Meta   `json:"meta"`
	Data record.Fields `json:"data"`
}

func bodyOf(rec record.Record) recordBody {
	return recordBody{Meta: rec.Meta(), Data: rec.Data()}
}

// тело разбирается вручную: порядок полей записи должен сохраниться
type createInput struct {
	RawBody []byte
}

type findInput struct {
	ID string `path:"id" format:"uuid" doc:"Идентификатор записи"`
}

type updateInput struct {
	ID      string `path:"id" format:"uuid" doc:"Идентификатор записи"`
	RawBody []byte
}

type deleteOutput struct {
	Body struct {
		Status string `json:"status"`
	}
}

type queryInput struct {
	Body queryRequest
}

type queryRequest struct {
	WriterIDs   []string          `json:"writer_ids,omitempty" doc:"Авторы; по умолчанию - сам клиент"`
	AllWriters  bool              `json:"all_writers,omitempty" doc:"Все авторы, открывшие доступ клиенту"`
	UserIDs     []string          `json:"user_ids,omitempty"`
	RecordIDs   []string          `json:"record_ids,omitempty"`
	Types       []string          `json:"types,omitempty"`
	Plain       map[string]string `json:"plain,omitempty" doc:"Записи, открытые поля которых содержат все пары"`
	IncludeData bool              `json:"include_data,omitempty"`
	Count       int               `json:"count,omitempty" minimum:"0" maximum:"1000"`
	AfterIndex  int64             `json:"after_index,omitempty" minimum:"0"`
}

type queryOutput struct {
	Body queryResponse
}

type queryResponse struct {
	Results   []recordBody `json:"results"`
	LastIndex int64        `json:"last_index"`
}

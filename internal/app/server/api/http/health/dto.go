package health

type checkInput struct{}

type checkOutput struct {
	Body Status
}

// Status - состояние сервера и его хранилища записей
type Status struct {
	Status string `json:"status" example:"OK" doc:"OK, если хранилище записей отвечает"`
}

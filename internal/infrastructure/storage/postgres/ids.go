package postgres

import "github.com/google/uuid"

// uuidArray готовит параметр для "= ANY($n::uuid[])"
func uuidArray(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

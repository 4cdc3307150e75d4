package models

// Todo represents a todo item
type Todo struct {
	ID      int64  `json:"id" db:"id"`
	Content string `json:"content" db:"content"`
}

// IsPersisted returns true once the storage layer has assigned an id
func (t *Todo) IsPersisted() bool {
	return t.ID > 0
}

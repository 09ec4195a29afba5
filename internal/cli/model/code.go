package model

import core "CodeVault/internal/model"

// StoredCode — код, сохранённый в локальной базе клиента под коротким именем.
type StoredCode struct {
	ID        string // ID контейнера
	Name      string
	Payload   string
	Version   int
	Counts    core.Counts
	Reveals   int
	CreatedAt int64 // unix ms
}

package domain

import (
	"database/sql/driver"
	"fmt"
)

// JSONTexto guarda JSON em colunas text para manter o mesmo schema no Postgres e no SQLite.
type JSONTexto []byte

func (j JSONTexto) Value() (driver.Value, error) {
	if len(j) == 0 {
		return nil, nil
	}
	return string(j), nil
}

func (j *JSONTexto) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*j = nil
	case string:
		*j = JSONTexto(v)
	case []byte:
		*j = append(JSONTexto(nil), v...)
	default:
		return fmt.Errorf("domain: tipo %T nao suportado em JSONTexto", src)
	}
	return nil
}

func (j JSONTexto) MarshalJSON() ([]byte, error) {
	if len(j) == 0 {
		return []byte("null"), nil
	}
	return j, nil
}

func (j *JSONTexto) UnmarshalJSON(data []byte) error {
	*j = append((*j)[:0], data...)
	return nil
}

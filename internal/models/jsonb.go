package models

import (
	"database/sql/driver"
	"encoding/json"

	"github.com/iamail/mailgate/internal/enum"
)

// JSONMap backs schemaless jsonb columns such as detection metadata.
// Values round-trip through Postgres as whatever encoding/json produces,
// callers must not assume concrete value types beyond that.
type JSONMap map[string]interface{}

func (j JSONMap) Value() (driver.Value, error) {
	return json.Marshal(j)
}

func (j *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*j = make(JSONMap)
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}

	return json.Unmarshal(bytes, j)
}

// EndpointOverride replaces a provider descriptor's endpoint for
// custom/self-hosted mail servers. Stored as a jsonb column.
type EndpointOverride struct {
	Host     string             `json:"host"`
	Port     int                `json:"port"`
	Security enum.EmailSecurity `json:"security"`
}

func (e EndpointOverride) Value() (driver.Value, error) {
	return json.Marshal(e)
}

func (e *EndpointOverride) Scan(value interface{}) error {
	if value == nil {
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}

	return json.Unmarshal(bytes, e)
}

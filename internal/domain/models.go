package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Domain contains the fleet records the app layer inspects.

// ID is a fleet identifier. The API sends numbers, older payloads strings.
type ID string

// UnmarshalJSON accepts both JSON numbers and strings.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("decode id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }

type Organization struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type Store struct {
	ID             ID     `json:"id"`
	Name           string `json:"name"`
	OrganizationID ID     `json:"organization_id"`
}

type Robot struct {
	ID      ID     `json:"id"`
	Name    string `json:"name"`
	StoreID ID     `json:"store_id"`
}

package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// 통용 JSON 컬럼 타입
type JSONB map[string]interface{}

// JSONBStringArray 문자열 배열용 JSONB 타입 (시나리오 system_ids 등)
type JSONBStringArray []string

// Scanner 인터페이스 구현
func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("타입 단언 실패: []byte 또는 string 아님")
	}
	return json.Unmarshal(bytes, j)
}

// Valuer 인터페이스 구현
func (j JSONB) Value() (driver.Value, error) {
	return json.Marshal(j)
}

// JSONBStringArray 의 Scanner 인터페이스 구현
func (j *JSONBStringArray) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("타입 단언 실패: []byte 또는 string 아님")
	}
	return json.Unmarshal(bytes, j)
}

// JSONBStringArray 의 Valuer 인터페이스 구현
func (j JSONBStringArray) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Transcript is a unit of transcribed text. The wire names match the
// browser client, which reads createdAt/updatedAt in camel case.
type Transcript struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Text      string    `json:"text" db:"text"`
	Language  string    `json:"language" db:"language"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// MarshalJSON also writes the id as "_id", the key the browser client uses
// for list keys and delete calls.
func (t Transcript) MarshalJSON() ([]byte, error) {
	type plain Transcript
	return json.Marshal(struct {
		LegacyID uuid.UUID `json:"_id"`
		plain
	}{LegacyID: t.ID, plain: plain(t)})
}

const DefaultLanguage = "en-US"

// AudioUpload describes an audio file accepted by the upload endpoint.
type AudioUpload struct {
	FileName    string    `json:"fileName"`
	FilePath    string    `json:"filePath"`
	ContentType string    `json:"contentType"`
	SizeBytes   int64     `json:"sizeBytes"`
	UploadedAt  time.Time `json:"uploadedAt"`
}

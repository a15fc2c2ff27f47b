package models

import "time"

// Attachment is a scanned document (typically the signed manifest sheet)
// linked to a manifest's dossier. The binary lives in object storage under
// StorageKey; the store row carries only the reference.
type Attachment struct {
	ID         string
	ManifestID string
	FileName   string
	StorageKey string
	UploadedBy string
	CreatedAt  time.Time
}

package models

import "time"

// ArtifactInfo is the metadata of one generated report file.
type ArtifactInfo struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"createdAt"`
}

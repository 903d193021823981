package models

import "time"

// Document is a registered source PDF. Name is the file name evidence and
// highlight requests refer to; Path is where the PDF lives on disk.
type Document struct {
	Name       string    `json:"name"`
	Path       string    `json:"path"`
	PageCount  int       `json:"pageCount"`
	ChunkCount int       `json:"chunkCount"`
	IngestedAt time.Time `json:"ingestedAt"`
}

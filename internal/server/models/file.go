package models

import "time"

// File is the metadata record of one stored file. Together with the object
// at Path it forms a single logical entity.
type File struct {
	// ID is assigned by the store on first save; zero means "not saved yet".
	ID int64
	// UserID is the owner. (UserID, Filename) is unique.
	UserID   string
	Filename string
	// Path is the absolute on-disk location, always inside the storage root.
	Path string
	// Size is the on-disk length in bytes when the record was written.
	Size      int64
	UpdatedAt time.Time
}

// FileInfo is the listing view of a File.
type FileInfo struct {
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
}

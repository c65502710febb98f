package manual

import "errors"

var (
	// ErrNotFound indicates the requested manual does not exist.
	ErrNotFound = errors.New("manual not found")

	// ErrDuplicate indicates a manual with the same filename already exists.
	ErrDuplicate = errors.New("manual already exists")

	// ErrInvalidFilename indicates the filename is empty or unsafe.
	ErrInvalidFilename = errors.New("invalid filename")

	// ErrNotPDF indicates the uploaded content is not a PDF document.
	ErrNotPDF = errors.New("file is not a PDF")
)

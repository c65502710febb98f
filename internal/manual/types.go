package manual

import "time"

// Manual describes one stored PDF file.
type Manual struct {
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	Pages      int       `json:"pages"`
	UploadedAt time.Time `json:"uploaded_at"`
}

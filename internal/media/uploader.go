// Package media uploads video and thumbnail files to durable object
// storage and derives playback metadata for them.
package media

import "context"

type UploadResult struct {
	// URL is the durable public location of the uploaded object.
	URL string
	// Duration is the playback length in seconds, derived for video
	// uploads; zero for images and containers without an mvhd box.
	Duration float64
}

type Uploader interface {
	Upload(ctx context.Context, localPath string, contentType string) (*UploadResult, error)
}

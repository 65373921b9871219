package media

import (
	"path/filepath"
	"strings"
)

// FileType represents the kind of an uploaded file.
type FileType string

const (
	// FileTypeImage represents an image file.
	FileTypeImage FileType = "image"
	// FileTypeVideo represents a video file.
	FileTypeVideo FileType = "video"
	// FileTypeAudio represents an audio file.
	FileTypeAudio FileType = "audio"
	// FileTypeOther represents an unknown or unsupported file type.
	FileTypeOther FileType = "other"
)

// ImageExtensions lists the image formats that can be decoded in-process.
var ImageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true,
	".bmp": true, ".webp": true, ".tiff": true, ".tif": true,
}

// VideoExtensions lists the video containers handed to ffmpeg.
var VideoExtensions = map[string]bool{
	".mp4": true, ".mkv": true, ".avi": true, ".mov": true,
	".wmv": true, ".flv": true, ".webm": true, ".m4v": true,
	".mpeg": true, ".mpg": true, ".3gp": true, ".ts": true,
	".y4m": true,
}

// AudioExtensions lists the audio formats produced by the BBB pipeline.
var AudioExtensions = map[string]bool{
	".m4a": true, ".aac": true, ".mp3": true, ".ac3": true, ".wav": true,
}

// MimeTypes maps file extensions to their MIME types.
var MimeTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
	".webp": "image/webp",
	".tiff": "image/tiff",
	".tif":  "image/tiff",

	".mp4":  "video/mp4",
	".mkv":  "video/x-matroska",
	".avi":  "video/x-msvideo",
	".mov":  "video/quicktime",
	".wmv":  "video/x-ms-wmv",
	".flv":  "video/x-flv",
	".webm": "video/webm",
	".m4v":  "video/x-m4v",
	".mpeg": "video/mpeg",
	".mpg":  "video/mpeg",
	".3gp":  "video/3gpp",
	".ts":   "video/mp2t",
	".y4m":  "video/x-yuv4mpeg",

	".m4a": "audio/mp4",
	".aac": "audio/aac",
	".mp3": "audio/mpeg",
	".ac3": "audio/ac3",
	".wav": "audio/wav",
}

// Ext returns the lower-cased extension of name, including the dot.
func Ext(name string) string {
	return strings.ToLower(filepath.Ext(name))
}

// Classify returns the FileType of a file name based on its extension.
func Classify(name string) FileType {
	ext := Ext(name)
	switch {
	case ImageExtensions[ext]:
		return FileTypeImage
	case VideoExtensions[ext]:
		return FileTypeVideo
	case AudioExtensions[ext]:
		return FileTypeAudio
	default:
		return FileTypeOther
	}
}

// MimeType returns the MIME type for a file name, or
// "application/octet-stream" if the extension is not recognized.
func MimeType(name string) string {
	if mime, ok := MimeTypes[Ext(name)]; ok {
		return mime
	}
	return "application/octet-stream"
}

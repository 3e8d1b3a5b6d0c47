package services

import (
	"net/url"
	"strings"

	"github.com/AI-ZeeK/comms/internal/core/domain"
)

var imageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".svg"}

var audioExtensions = []string{".mp3", ".wav", ".ogg", ".webm", ".m4a"}

func isImageURL(raw string) bool {
	if strings.TrimSpace(raw) == "" {
		return false
	}
	// Embedded base64 images pass as-is.
	if strings.HasPrefix(strings.ToLower(raw), "data:image/") {
		return true
	}
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Scheme == "" {
		return false
	}
	path := strings.ToLower(parsed.Path)
	for _, ext := range imageExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

func isAudioURL(raw string) bool {
	if strings.TrimSpace(raw) == "" {
		return false
	}
	lower := strings.ToLower(raw)
	for _, ext := range audioExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	// Object-storage audio paths carry no extension.
	return strings.Contains(lower, "/audio/")
}

// validateMedia enforces the per-type attachment shape before any write.
func validateMedia(mtype domain.MessageType, mediaURLs []string) error {
	switch mtype {
	case domain.MessageImage:
		if len(mediaURLs) == 0 {
			return domain.ValidationError("image message requires at least one media url")
		}
		for _, u := range mediaURLs {
			if !isImageURL(u) {
				return domain.ValidationError("invalid image url: %s", u)
			}
		}
	case domain.MessageAudio:
		if len(mediaURLs) != 1 {
			return domain.ValidationError("audio message requires exactly one media url")
		}
		if !isAudioURL(mediaURLs[0]) {
			return domain.ValidationError("invalid audio url: %s", mediaURLs[0])
		}
	}
	return nil
}

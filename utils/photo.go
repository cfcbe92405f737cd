package utils

import (
	"fmt"
	"net/url"
	"path"
	"strings"
)

const (
	// MaxPhotosPerJob caps each of the before/after photo lists
	MaxPhotosPerJob = 20
	// MaxPhotoRefLength is the longest accepted photo reference
	MaxPhotoRefLength = 2048
)

// AllowedPhotoExtensions lists the accepted image extensions for object keys
var AllowedPhotoExtensions = []string{".png", ".jpg", ".jpeg", ".webp"}

// PhotoRefError represents a photo reference validation error
type PhotoRefError struct {
	Code    string
	Message string
}

func (e *PhotoRefError) Error() string {
	return e.Message
}

// IsPhotoURL reports whether ref is an absolute http(s) URL rather than an object key
func IsPhotoURL(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}

// ValidatePhotoRef checks a photo reference. Photos are never uploaded
// through the API: a reference is either an absolute http(s) URL or an
// object-storage key such as "jobs/123/before-1.png".
func ValidatePhotoRef(ref string) error {
	if strings.TrimSpace(ref) == "" {
		return &PhotoRefError{Code: "EMPTY_PHOTO_REF", Message: "Photo reference is empty"}
	}
	if len(ref) > MaxPhotoRefLength {
		return &PhotoRefError{
			Code:    "PHOTO_REF_TOO_LONG",
			Message: fmt.Sprintf("Photo reference exceeds %d characters", MaxPhotoRefLength),
		}
	}

	if IsPhotoURL(ref) {
		u, err := url.Parse(ref)
		if err != nil || u.Host == "" {
			return &PhotoRefError{Code: "INVALID_PHOTO_URL", Message: "Photo URL is not valid"}
		}
		return nil
	}

	// Security: object keys must stay inside the bucket prefix
	if strings.HasPrefix(ref, "/") || strings.Contains(ref, "..") || strings.Contains(ref, "\\") {
		return &PhotoRefError{Code: "INVALID_PHOTO_KEY", Message: "Invalid photo key"}
	}

	ext := strings.ToLower(path.Ext(ref))
	for _, allowed := range AllowedPhotoExtensions {
		if ext == allowed {
			return nil
		}
	}
	return &PhotoRefError{
		Code:    "INVALID_FILE_FORMAT",
		Message: fmt.Sprintf("Only %s files are allowed", strings.Join(AllowedPhotoExtensions, ", ")),
	}
}

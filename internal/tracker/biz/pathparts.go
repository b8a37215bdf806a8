package biz

import "strings"

const unknownFileType = "unknown"

// PathParts pieces of an object key
type PathParts struct {
	Folder      string `json:"folder"`
	Filename    string `json:"filename"`
	FileType    string `json:"file_type"`
	Compression string `json:"compression,omitempty"`
}

// Decompose splits an object key into folder, filename, base file type and
// compression suffix. It never fails.
func Decompose(key string) PathParts {
	var parts PathParts

	if idx := strings.LastIndex(key, "/"); idx >= 0 {
		parts.Folder = key[:idx]
		parts.Filename = key[idx+1:]
	} else {
		parts.Filename = key
	}

	name := parts.Filename
	for _, suffix := range []string{".gz", ".tar"} {
		if strings.HasSuffix(name, suffix) {
			parts.Compression = suffix[1:]
			name = strings.TrimSuffix(name, suffix)
			break
		}
	}

	if idx := strings.LastIndex(name, "."); idx >= 0 {
		parts.FileType = strings.ToLower(name[idx+1:])
	} else {
		parts.FileType = unknownFileType
	}
	return parts
}

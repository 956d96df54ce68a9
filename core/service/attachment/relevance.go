// Package attachment filters and searches email attachments.
package attachment

import "strings"

// MIME types that are always decorative.
var skipMimeTypes = map[string]bool{
	"image/gif":    true,
	"image/x-icon": true,
	"image/bmp":    true,
}

// Filename prefixes and fragments that mark signature and layout images.
var (
	skipPrefixes = []string{"logo", "signature", "icon", "banner", "footer", "header"}
	skipInfixes  = []string{"_signature.", "_logo."}
)

// Extensions that always count as real documents.
var documentExtensions = map[string]bool{
	".pdf": true, ".doc": true, ".docx": true,
	".xls": true, ".xlsx": true, ".csv": true,
	".txt": true, ".ppt": true, ".pptx": true,
	".rtf": true, ".odt": true, ".ods": true,
	".zip": true, ".rar": true,
}

// Words that rescue an image filename from the decorative heuristic.
var meaningfulWords = []string{
	"invoice", "receipt", "document", "scan",
	"contract", "report", "screenshot",
}

// IsRelevantAttachment reports whether an attachment is worth surfacing
// to the user, as opposed to inline signature images and mail-client
// decoration. Rules apply in order; the first match decides.
func IsRelevantAttachment(filename, mimeType string) bool {
	if filename == "" {
		return false
	}

	if skipMimeTypes[strings.ToLower(mimeType)] {
		return false
	}

	name := strings.ToLower(filename)

	if isDecorativeName(name) {
		return false
	}

	if ext := extension(name); documentExtensions[ext] {
		return true
	}

	// Generic images need a long, descriptive name to pass.
	if strings.HasPrefix(strings.ToLower(mimeType), "image/") {
		if len(name) < 10 {
			return false
		}
		for _, w := range meaningfulWords {
			if strings.Contains(name, w) {
				return true
			}
		}
		return false
	}

	return true
}

func isDecorativeName(name string) bool {
	// imageNNN.ext is the classic inline-image name.
	if strings.HasPrefix(name, "image") {
		rest := strings.TrimPrefix(name, "image")
		i := 0
		for i < len(rest) && rest[i] >= '0' && rest[i] <= '9' {
			i++
		}
		if i < len(rest) && rest[i] == '.' {
			return true
		}
	}

	for _, p := range skipPrefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	for _, in := range skipInfixes {
		if strings.Contains(name, in) {
			return true
		}
	}
	return false
}

func extension(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[i:]
	}
	return ""
}

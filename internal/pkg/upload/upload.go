package upload

import (
	"mime/multipart"
	"path"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// URLPrefix is the public prefix uploaded documents are served under.
const URLPrefix = "/uploads"

// NormalizePath converts any path separators in p to forward slashes.
// Stored document paths must use forward slashes regardless of the
// separator style the client sent.
func NormalizePath(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}

// FileURL derives the public URL for a stored document path from its
// final path segment. Empty paths map to an empty URL.
func FileURL(storedPath string) string {
	if storedPath == "" {
		return ""
	}
	return URLPrefix + "/" + path.Base(NormalizePath(storedPath))
}

// StoredName returns a collision-free file name for an uploaded file,
// keeping the original extension.
func StoredName(originalName string) string {
	return uuid.New().String() + strings.ToLower(filepath.Ext(originalName))
}

// Save writes an uploaded file into dir under a generated name and
// returns the normalized stored path.
func Save(c *fiber.Ctx, file *multipart.FileHeader, dir string) (string, error) {
	stored := filepath.Join(dir, StoredName(file.Filename))
	if err := c.SaveFile(file, stored); err != nil {
		return "", err
	}
	return NormalizePath(stored), nil
}

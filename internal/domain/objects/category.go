package objects

import (
	"path"
	"strings"
)

// Category groups objects by file extension.
type Category string

const (
	CategoryImage    Category = "image"
	CategoryDocument Category = "document"
	CategoryCode     Category = "code"
	CategoryMedia    Category = "media"
	CategoryArchive  Category = "archive"
	CategoryOther    Category = "other"
)

var categoryExtensions = map[Category][]string{
	CategoryImage:    {"jpg", "jpeg", "png", "gif", "webp", "svg", "bmp", "ico", "tif", "tiff", "avif", "heic"},
	CategoryDocument: {"pdf", "doc", "docx", "xls", "xlsx", "ppt", "pptx", "txt", "md", "rtf", "odt", "ods", "odp", "csv"},
	CategoryCode:     {"js", "ts", "jsx", "tsx", "py", "go", "rb", "java", "c", "cpp", "h", "hpp", "cs", "php", "html", "css", "scss", "json", "xml", "yaml", "yml", "sh", "rs", "swift", "kt", "sql", "toml"},
	CategoryMedia:    {"mp4", "webm", "mov", "avi", "mkv", "mp3", "wav", "ogg", "flac", "m4a", "aac"},
	CategoryArchive:  {"zip", "tar", "gz", "tgz", "rar", "7z", "bz2", "xz", "zst"},
}

var extensionCategory = func() map[string]Category {
	index := make(map[string]Category)
	for category, exts := range categoryExtensions {
		for _, ext := range exts {
			index[ext] = category
		}
	}
	return index
}()

var categoryAliases = map[string]Category{
	"image":     CategoryImage,
	"images":    CategoryImage,
	"document":  CategoryDocument,
	"documents": CategoryDocument,
	"docs":      CategoryDocument,
	"code":      CategoryCode,
	"media":     CategoryMedia,
	"video":     CategoryMedia,
	"videos":    CategoryMedia,
	"audio":     CategoryMedia,
	"archive":   CategoryArchive,
	"archives":  CategoryArchive,
}

// ParseCategory resolves a user supplied category name, accepting plural aliases.
func ParseCategory(value string) (Category, bool) {
	category, ok := categoryAliases[strings.ToLower(strings.TrimSpace(value))]
	return category, ok
}

// Extension returns the lowercased extension of key without the dot.
func Extension(key string) string {
	return strings.ToLower(strings.TrimPrefix(path.Ext(BaseName(key)), "."))
}

// CategoryOf classifies key by its extension. Folder keys are CategoryOther.
func CategoryOf(key string) Category {
	if strings.HasSuffix(key, "/") {
		return CategoryOther
	}
	if category, ok := extensionCategory[Extension(key)]; ok {
		return category
	}
	return CategoryOther
}

// Extensions returns the extension set of a category.
func Extensions(category Category) []string {
	return append([]string(nil), categoryExtensions[category]...)
}

package task

import (
	"strings"
	"unicode"
)

const maxSlugLength = 50

// GenerateSlug converts a title to a lowercase ASCII slug for file names.
// Runs of other characters collapse to one hyphen; long slugs are cut at
// the last hyphen that fits.
func GenerateSlug(title string) string {
	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(title) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}

	slug := b.String()
	if len(slug) > maxSlugLength {
		cut := slug[:maxSlugLength]
		if slug[maxSlugLength] != '-' {
			if idx := strings.LastIndexByte(cut, '-'); idx > 0 {
				cut = cut[:idx]
			}
		}
		slug = strings.TrimRight(cut, "-")
	}

	if slug == "" {
		return "task"
	}
	return slug
}

// Filename returns the file name a task is stored under: the short id and
// the title slug. The full id lives in the frontmatter.
func Filename(t *Task) string {
	return GenerateFilename(t.ID, GenerateSlug(t.Title))
}

// GenerateFilename joins a short id and a slug into a task file name.
func GenerateFilename(id, slug string) string {
	return ShortID(id) + "-" + slug + ".md"
}

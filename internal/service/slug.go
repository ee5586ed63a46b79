package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	fallbackSlug      = "event"
	slugSuffixLen     = 6
	maxSlugCandidates = 10
)

var (
	errSlugExhausted = errors.New("could not find a free slug")

	nonSlugChars = regexp.MustCompile(`[^\w\s-]`)
	spaceRuns    = regexp.MustCompile(`\s+`)
	hyphenRuns   = regexp.MustCompile(`-{2,}`)

	// Static path segments under /events that a slug must not shadow.
	reservedSlugs = map[string]bool{"interest": true}
)

// Slugify turns a title into a lower-case, URL-safe token: diacritics are
// stripped, punctuation dropped and whitespace replaced with single hyphens.
// It never returns an empty string.
func Slugify(title string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	s, _, err := transform.String(t, strings.ToLower(title))
	if err != nil {
		s = strings.ToLower(title)
	}

	s = nonSlugChars.ReplaceAllString(s, "")
	s = spaceRuns.ReplaceAllString(strings.TrimSpace(s), "-")
	s = hyphenRuns.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")

	if s == "" {
		return fallbackSlug
	}
	return s
}

func slugSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:slugSuffixLen]
}

type slugChecker interface {
	SlugExists(ctx context.Context, slug string) (bool, error)
}

// freeSlug returns base if unused, otherwise base with a random suffix that is.
// Reserved slugs always get a suffix.
func freeSlug(ctx context.Context, repo slugChecker, base string) (string, error) {
	candidate := base
	if reservedSlugs[candidate] {
		candidate = base + "-" + slugSuffix()
	}
	for i := 0; i < maxSlugCandidates; i++ {
		exists, err := repo.SlugExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = base + "-" + slugSuffix()
	}

	return "", errSlugExhausted
}

package app

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"reviewhub/internal/domain"
)

const (
	// slugWriteAttempts bounds retries after a write loses a slug race.
	slugWriteAttempts = 50
	slugProbeLimit    = 10_000
)

var (
	companySlugDrop = regexp.MustCompile(`[^a-z0-9\s-]`)
	strictSlugDrop  = regexp.MustCompile(`[^A-Za-z0-9\s]`)
	spaceRun        = regexp.MustCompile(`\s+`)
	dashRun         = regexp.MustCompile(`-+`)

	symbolWords = map[rune]string{
		'&': "and", '$': "dollar", '%': "percent", '<': "less", '>': "greater",
		'|': "or", '€': "euro", '£': "pound", '¢': "cent", '¥': "yen",
	}
)

// CompanySlug lowercases name, drops everything but ASCII letters, digits,
// spaces and dashes, turns whitespace runs into dashes and collapses dashes.
func CompanySlug(name string) string {
	s := companySlugDrop.ReplaceAllString(strings.ToLower(name), "")
	s = spaceRun.ReplaceAllString(s, "-")
	s = dashRun.ReplaceAllString(s, "-")
	return strings.TrimSpace(s)
}

// TaxonomySlug is the strict slug used for categories and subcategories:
// accents are folded, a few symbols become words, anything else
// non-alphanumeric is dropped. "Food & Drink" becomes "food-and-drink".
func TaxonomySlug(name string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), name)
	if err != nil {
		folded = name
	}
	var b strings.Builder
	for _, r := range folded {
		if w, ok := symbolWords[r]; ok {
			b.WriteString(w)
			continue
		}
		b.WriteRune(r)
	}
	s := strings.TrimSpace(strictSlugDrop.ReplaceAllString(b.String(), ""))
	return strings.ToLower(spaceRun.ReplaceAllString(s, "-"))
}

func withSuffix(base string, n int) string {
	if n == 0 {
		return base
	}
	return fmt.Sprintf("%s-%d", base, n)
}

// slugTaken reports whether slug is used by an entity other than self.
type slugTaken func(ctx context.Context, slug string) (bool, error)

// writeWithSlug probes base, base-1, base-2, ... for a free slug and calls
// write with it. When the store still rejects the slug the probe resumes
// from the next suffix, at most slugWriteAttempts times.
func writeWithSlug[T any](ctx context.Context, base string, taken slugTaken, write func(slug string) (T, error)) (T, error) {
	var zero T
	n := 0
	for attempt := 0; attempt < slugWriteAttempts; attempt++ {
		for ; n < slugProbeLimit; n++ {
			busy, err := taken(ctx, withSuffix(base, n))
			if err != nil {
				return zero, err
			}
			if !busy {
				break
			}
		}
		slug := withSuffix(base, n)
		v, err := write(slug)
		if !errors.Is(err, domain.ErrSlugTaken) {
			return v, err
		}
		log.Debug().Str("slug", slug).Int("attempt", attempt+1).Msg("slug taken at write, retrying")
		n++
	}
	return zero, fmt.Errorf("%w: no free slug for %q", domain.ErrConflict, base)
}

func lookupTaken[T any](get func(context.Context, string) (T, error), id func(T) int64, self int64) slugTaken {
	return func(ctx context.Context, slug string) (bool, error) {
		v, err := get(ctx, slug)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			return false, nil
		case err != nil:
			return false, err
		}
		return id(v) != self, nil
	}
}

// Package translate detects non-English content and translates titles and
// evidence snippets before claim extraction. Detection is a cheap character
// ratio heuristic; actual translation goes through an injected Translator so
// the pipeline works with translation disabled.
package translate

import (
	"context"
	"strings"
	"unicode"
)

// Translator converts a batch of texts to English. Implementations must
// preserve order and length of the input slice.
type Translator interface {
	Translate(ctx context.Context, texts []string) ([]string, error)
}

// NonEnglishRatio returns the fraction of letters in text that fall outside
// the Latin script. Digits, punctuation and whitespace are ignored so that
// benchmark tables do not skew the ratio.
func NonEnglishRatio(text string) float64 {
	var letters, nonLatin int
	for _, r := range text {
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		if !unicode.Is(unicode.Latin, r) {
			nonLatin++
		}
	}

	if letters == 0 {
		return 0
	}
	return float64(nonLatin) / float64(letters)
}

// Result carries the translated title and snippets of one document.
type Result struct {
	Title      string
	Snippets   []string
	Translated bool
}

// IfNonEnglish translates title and snippets when the combined non-Latin
// letter ratio crosses threshold. With a nil translator, or below the
// threshold, the originals pass through unchanged.
func IfNonEnglish(ctx context.Context, tr Translator, title string, snippets []string, threshold float64) (Result, error) {
	pass := Result{Title: title, Snippets: snippets}

	if tr == nil {
		return pass, nil
	}

	combined := title + " " + strings.Join(snippets, " ")
	if NonEnglishRatio(combined) < threshold {
		return pass, nil
	}

	texts := append([]string{title}, snippets...)
	translated, err := tr.Translate(ctx, texts)
	if err != nil {
		return pass, err
	}
	if len(translated) != len(texts) {
		return pass, nil
	}

	return Result{
		Title:      translated[0],
		Snippets:   translated[1:],
		Translated: true,
	}, nil
}

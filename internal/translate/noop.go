package translate

import (
	"context"

	"nidaan-triage/pkg"
)

// Noop is the translation adapter used when language support is disabled.
// Every call succeeds as a skipped passthrough, which collapses the
// language-aware pipeline into the language-naive one.
type Noop struct{}

func (Noop) Translate(ctx context.Context, text, sourceCode, targetCode string) pkg.TranslationResult {
	return passthrough(text)
}

func (Noop) ToEnglish(ctx context.Context, text, sourceLanguage string) pkg.TranslationResult {
	return passthrough(text)
}

func (Noop) FromEnglish(ctx context.Context, text, targetLanguage string) pkg.TranslationResult {
	return passthrough(text)
}

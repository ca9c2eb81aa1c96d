package translate

// EnglishLanguage is the canonical sentinel for the no-translation fast path.
const EnglishLanguage = "English"

// EnglishCode is the provider code for English.
const EnglishCode = "en-IN"

// languageCodes maps outward-facing language names (in their own script) to
// provider language codes.  Every name has exactly one code and vice versa.
var languageCodes = map[string]string{
	"English":  "en-IN",
	"हिंदी":    "hi-IN",
	"தமிழ்":    "ta-IN",
	"తెలుగు":   "te-IN",
	"मराठी":    "mr-IN",
	"ಕನ್ನಡ":    "kn-IN",
	"বাংলা":    "bn-IN",
	"ગુજરાતી":  "gu-IN",
	"മലയാളം":   "ml-IN",
	"ਪੰਜਾਬੀ":   "pa-IN",
}

// codeLanguages is the reverse mapping, built once at init.
var codeLanguages = func() map[string]string {
	m := make(map[string]string, len(languageCodes))
	for name, code := range languageCodes {
		m[code] = name
	}
	return m
}()

// CodeFor returns the provider code for a language name.  Unknown names fall
// back to the English code.
func CodeFor(name string) string {
	if code, ok := languageCodes[name]; ok {
		return code
	}
	return EnglishCode
}

// NameFor returns the language name for a provider code, falling back to
// English for unknown codes.
func NameFor(code string) string {
	if name, ok := codeLanguages[code]; ok {
		return name
	}
	return EnglishLanguage
}

// SupportedLanguages lists the language names advertised by the health
// endpoint, English first.
func SupportedLanguages() []string {
	return []string{"English", "हिंदी", "தமிழ்", "తెలుగు", "मराठी", "ಕನ್ನಡ", "বাংলা", "ગુજરાતી", "മലയാളം", "ਪੰਜਾਬੀ"}
}

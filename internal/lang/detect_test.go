package lang

import (
	"testing"

	"tercuman/internal/domain"
)

func TestDetect(t *testing.T) {
	t.Parallel()

	cases := map[string]domain.Language{
		"":                             domain.LanguageEnglish,
		"   ":                          domain.LanguageEnglish,
		"hello there, how are you":     domain.LanguageEnglish,
		"merhaba nasılsın":             domain.LanguageTurkish,
		"çok güzel":                    domain.LanguageTurkish,
		"bu bir test ve tamam":         domain.LanguageTurkish,
		"the deployment is done":       domain.LanguageEnglish,
		"EVET TAMAM":                   domain.LanguageTurkish,
		"x1 x2 x3":                     domain.LanguageEnglish,
		"ok this is fine ama bu daha":  domain.LanguageTurkish,
		"yes we have more of this ve":  domain.LanguageEnglish,
	}

	for text, want := range cases {
		text := text
		want := want
		t.Run(text, func(t *testing.T) {
			t.Parallel()
			if got := Detect(text); got != want {
				t.Fatalf("Detect(%q) = %s, want %s", text, got, want)
			}
		})
	}
}

func TestDetectIsDeterministic(t *testing.T) {
	t.Parallel()

	const sample = "mixed merhaba hello input"
	first := Detect(sample)
	for i := 0; i < 10; i++ {
		if got := Detect(sample); got != first {
			t.Fatalf("detection not stable: %s then %s", first, got)
		}
	}
}

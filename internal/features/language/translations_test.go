package language

import (
	"strings"
	"testing"
)

func TestT(t *testing.T) {
	tests := []struct {
		name string
		lang string
		key  string
		args []interface{}
		want string
	}{
		{
			name: "английский базовый",
			lang: "en",
			key:  MsgRepSelf,
			want: "❌ You cannot rate yourself.",
		},
		{
			name: "французский перевод",
			lang: "fr",
			key:  MsgAskAmount,
			want: "Combien de kamas ? (ex. 10M)",
		},
		{
			name: "испанский с аргументами",
			lang: "es",
			key:  MsgLanguageSet,
			args: []interface{}{"es"},
			want: "✅ Idioma cambiado a es.",
		},
		{
			name: "отсутствующий перевод падает в английский",
			lang: "fr",
			key:  MsgAdminsOnly,
			want: "❌ This command is for administrators only.",
		},
		{
			name: "неизвестный язык падает в английский",
			lang: "de",
			key:  MsgRepSelf,
			want: "❌ You cannot rate yourself.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := T(tt.lang, tt.key, tt.args...)
			if got != tt.want {
				t.Errorf("T(%q, %q) = %q, ожидали %q", tt.lang, tt.key, got, tt.want)
			}
		})
	}
}

func TestTUnknownKey(t *testing.T) {
	if got := T("en", "no_such_key"); got != "no_such_key" {
		t.Errorf("неизвестный ключ должен возвращаться как есть, получили %q", got)
	}
}

// Каждый ключ обязан присутствовать в опорном английском словаре.
func TestEnglishCoversAllKeys(t *testing.T) {
	for lang, dict := range translations {
		if lang == "en" {
			continue
		}
		for key := range dict {
			if _, ok := translations["en"][key]; !ok {
				t.Errorf("ключ %q есть в %q, но отсутствует в en", key, lang)
			}
		}
	}
}

func TestFormatDirectivesMatch(t *testing.T) {
	for lang, dict := range translations {
		if lang == "en" {
			continue
		}
		for key, tmpl := range dict {
			en := translations["en"][key]
			if strings.Count(en, "%") != strings.Count(tmpl, "%") {
				t.Errorf("число подстановок в %s/%s не совпадает с en", lang, key)
			}
		}
	}
}

package i18n

import (
	"testing"
	"testing/fstest"
)

func TestNewDefaultManagerLoadsEmbeddedLocales(t *testing.T) {
	manager, err := NewDefaultManager("ru")
	if err != nil {
		t.Fatalf("init manager: %v", err)
	}
	if manager.DefaultLanguage() != LangRU {
		t.Fatalf("expected default language ru, got %q", manager.DefaultLanguage())
	}
	languages := manager.SupportedLanguages()
	if len(languages) != 2 || languages[0] != LangEN || languages[1] != LangRU {
		t.Fatalf("unexpected supported languages: %v", languages)
	}
}

func TestNewManagerRequiresBothLocales(t *testing.T) {
	locales := fstest.MapFS{
		"en.json": {Data: []byte(`{"greeting":"hello"}`)},
	}
	if _, err := NewManager("en", locales); err == nil {
		t.Fatal("expected error when ru locale is missing")
	}

	locales["ru.json"] = &fstest.MapFile{Data: []byte(`{}`)}
	if _, err := NewManager("en", locales); err == nil {
		t.Fatal("expected error for empty locale")
	}
}

func TestUnknownDefaultLanguageFallsBackToEnglish(t *testing.T) {
	manager, err := NewDefaultManager("de")
	if err != nil {
		t.Fatalf("init manager: %v", err)
	}
	if manager.DefaultLanguage() != LangEN {
		t.Fatalf("expected en fallback, got %q", manager.DefaultLanguage())
	}
}

func TestDetectFromAcceptLanguage(t *testing.T) {
	manager, err := NewDefaultManager("en")
	if err != nil {
		t.Fatalf("init manager: %v", err)
	}

	tests := []struct {
		header string
		want   string
	}{
		{header: "ru-RU,ru;q=0.9,en;q=0.8", want: LangRU},
		{header: "de-DE, en_US;q=0.5", want: LangEN},
		{header: "fr", want: LangEN},
		{header: "", want: LangEN},
	}
	for _, testCase := range tests {
		if got := manager.DetectFromAcceptLanguage(testCase.header); got != testCase.want {
			t.Fatalf("DetectFromAcceptLanguage(%q) = %q, want %q", testCase.header, got, testCase.want)
		}
	}
}

func TestNodeLabel(t *testing.T) {
	manager, err := NewDefaultManager("en")
	if err != nil {
		t.Fatalf("init manager: %v", err)
	}

	if got := manager.NodeLabel("en", "metta-friend"); got != "Metta (Loving-kindness) for Dear Friend" {
		t.Fatalf("unexpected en label: %q", got)
	}
	if got := manager.NodeLabel("ru", "karuna-self"); got != "Каруна (сострадание): к себе" {
		t.Fatalf("unexpected ru label: %q", got)
	}
	if got := manager.NodeLabel("en", "metta-stranger"); got != "metta-stranger" {
		t.Fatalf("expected raw id for unknown object, got %q", got)
	}
}

func TestTranslateFallsBackToKey(t *testing.T) {
	manager, err := NewDefaultManager("en")
	if err != nil {
		t.Fatalf("init manager: %v", err)
	}
	if got := manager.LogEntryTypeLabel("ru", "eod"); got != "Конец дня" {
		t.Fatalf("unexpected label: %q", got)
	}
	if got := manager.Translate("en", "missing.key"); got != "missing.key" {
		t.Fatalf("expected key fallback, got %q", got)
	}
}

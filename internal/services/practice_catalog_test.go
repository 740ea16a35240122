package services

import (
	"errors"
	"strings"
	"testing"
)

func TestDefaultPracticeCatalog(t *testing.T) {
	catalog, err := DefaultPracticeCatalog()
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	if len(catalog.Practices) == 0 || len(catalog.Aspirations) == 0 || len(catalog.Dedications) == 0 {
		t.Fatalf("expected practices, aspirations and dedications, got %d/%d/%d",
			len(catalog.Practices), len(catalog.Aspirations), len(catalog.Dedications))
	}

	practice, err := catalog.Find("metta-self-theravada-1")
	if err != nil {
		t.Fatalf("find practice: %v", err)
	}
	if !practice.IsFormal() || practice.DurationMinutes != 10 || len(practice.ReflectionPrompts) == 0 {
		t.Fatalf("unexpected practice: %+v", practice)
	}
	if strings.HasSuffix(practice.Instructions, "\n") {
		t.Fatal("expected instructions without trailing newline")
	}

	if _, err := catalog.Find("missing"); !errors.Is(err, ErrPracticeNotFound) {
		t.Fatalf("expected ErrPracticeNotFound, got %v", err)
	}
}

func TestPracticeCatalogForNode(t *testing.T) {
	catalog, err := DefaultPracticeCatalog()
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}

	selfPractices := catalog.ForNode("metta-self")
	if len(selfPractices) != 2 {
		t.Fatalf("expected 2 metta-self practices, got %d", len(selfPractices))
	}
	if selfPractices[0].ID != "metta-self-theravada-1" {
		t.Fatalf("expected catalog order, got %q first", selfPractices[0].ID)
	}

	if practices := catalog.ForNode("upekkha-all"); len(practices) != 0 {
		t.Fatalf("expected no practices for upekkha-all, got %d", len(practices))
	}
	if practices := catalog.ForNode("bogus"); practices == nil || len(practices) != 0 {
		t.Fatal("expected an empty, non-nil list for an unknown node")
	}
}

func TestPracticeCatalogRandom(t *testing.T) {
	catalog, err := DefaultPracticeCatalog()
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}

	for i := 0; i < 10; i++ {
		practice, ok := catalog.Random("metta-self")
		if !ok {
			t.Fatal("expected a practice for metta-self")
		}
		if practice.Category != "metta" || practice.Object != "self" {
			t.Fatalf("unexpected practice node %s-%s", practice.Category, practice.Object)
		}
	}
	if _, ok := catalog.Random("karuna-neutral"); ok {
		t.Fatal("expected no practice for karuna-neutral")
	}
}

func TestParsePracticeCatalogValidates(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "missing id", raw: "practices:\n  - title: x\n    category: metta\n    object: self\n    type: formal\n"},
		{name: "duplicate id", raw: "practices:\n  - {id: a, category: metta, object: self, type: formal}\n  - {id: a, category: metta, object: self, type: micro}\n"},
		{name: "unknown node", raw: "practices:\n  - {id: a, category: tonglen, object: self, type: formal}\n"},
		{name: "unknown type", raw: "practices:\n  - {id: a, category: metta, object: self, type: chant}\n"},
		{name: "malformed yaml", raw: "practices: [\n"},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			if _, err := ParsePracticeCatalog([]byte(testCase.raw)); err == nil {
				t.Fatal("expected parse error")
			}
		})
	}
}

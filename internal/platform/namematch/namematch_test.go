package namematch

import "testing"

func TestNormalize(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"FK Crvena Zvezda":     "fk crvena zvezda",
		"  Ferencvárosi TC ":   "ferencvarosi tc",
		"Olympiakos Piraeus":   "olympiakos piraeus",
		"Red Bull-Salzburg!!":  "red bull salzburg",
		"Šachtar   Doneck":     "sachtar doneck",
		"1. FC Köln":           "1 fc koln",
		"---":                  "",
		"ＰＡＯＫ":                 "paok",
		"Slovan   Bratislava.": "slovan bratislava",
	}
	for in, want := range cases {
		if got := Normalize(in); got != want {
			t.Fatalf("Normalize(%q)=%q, want %q", in, got, want)
		}
	}
}

func TestEqual(t *testing.T) {
	t.Parallel()

	if !Equal("Ferencvarosi TC", "FERENCVÁROSI-TC") {
		t.Fatalf("expected diacritic and case insensitive match")
	}
	if Equal("Crvena Zvezda", "FK Crvena Zvezda") {
		t.Fatalf("exact comparison must not tolerate prefixes")
	}
	if Equal("", "") {
		t.Fatalf("empty names must not match")
	}
}

type club struct {
	Name        string
	Coefficient float64
}

func clubName(c club) string { return c.Name }

func TestIndex_LookupCrvenaZvezdaVariants(t *testing.T) {
	t.Parallel()

	idx := NewIndex([]club{
		{Name: "Crvena Zvezda", Coefficient: 44.5},
		{Name: "Celtic", Coefficient: 42},
		{Name: "Rangers", Coefficient: 53.25},
	}, clubName)

	got, kind := idx.Lookup("FK Crvena Zvezda")
	if kind != KindContains || got.Coefficient != 44.5 {
		t.Fatalf("expected containment match for FK prefix, got kind=%q club=%+v", kind, got)
	}

	got, kind = idx.Lookup("Red Star Belgrade", "Crvena Zvezda")
	if kind != KindAlias || got.Name != "Crvena Zvezda" {
		t.Fatalf("expected alias match, got kind=%q club=%+v", kind, got)
	}

	got, kind = idx.Lookup("CELTIC")
	if kind != KindExact || got.Name != "Celtic" {
		t.Fatalf("expected exact match, got kind=%q club=%+v", kind, got)
	}
}

func TestIndex_LookupRejectsAmbiguousAndPartialWords(t *testing.T) {
	t.Parallel()

	idx := NewIndex([]club{
		{Name: "FC Copenhagen"},
		{Name: "FC Midtjylland"},
		{Name: "Salzburg"},
	}, clubName)

	if _, kind := idx.Lookup("FC"); kind != KindNone {
		t.Fatalf("expected ambiguous containment to miss, got kind=%q", kind)
	}
	if _, kind := idx.Lookup("Salz"); kind != KindNone {
		t.Fatalf("expected partial word to miss, got kind=%q", kind)
	}
	if got, kind := idx.Lookup("Red Bull Salzburg"); kind != KindContains || got.Name != "Salzburg" {
		t.Fatalf("expected containment match, got kind=%q club=%+v", kind, got)
	}
	if _, kind := idx.Lookup("Unknown United"); kind != KindNone {
		t.Fatalf("expected miss, got kind=%q", kind)
	}
}

func TestIndex_FirstValueWinsOnDuplicateNames(t *testing.T) {
	t.Parallel()

	idx := NewIndex([]club{{Name: "PAOK", Coefficient: 1}, {Name: "paok", Coefficient: 2}}, clubName)
	if idx.Len() != 1 {
		t.Fatalf("expected 1 indexed entry, got=%d", idx.Len())
	}
	got, ok := idx.Exact("Paok")
	if !ok || got.Coefficient != 1 {
		t.Fatalf("expected first value, got=%+v ok=%v", got, ok)
	}
}

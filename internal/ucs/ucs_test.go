package ucs

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testCSV = `CatID,Category,SubCategory,Explanations,Synonyms - Comma Separated
DOORWood,DOORS,WOOD,Wooden doors,"creak, slam"
DOORMetl,DOORS,METAL,Metal doors,clang
GUNAuto,GUNS,AUTOMATIC,Automatic guns,"machine gun, metal"
,EMPTY,ID,ignored,
`

func loadTestTable(t *testing.T) *Table {
	t.Helper()

	table, err := LoadTable(strings.NewReader(testCSV))
	if err != nil {
		t.Fatalf("LoadTable: %v", err)
	}
	return table
}

func TestLoadTable(t *testing.T) {
	table := loadTestTable(t)

	if table.Len() != 3 {
		t.Fatalf("expected 3 categories, got %d", table.Len())
	}

	c := table.entries[0]
	if c.FullName != "DOORS WOOD" {
		t.Fatalf("full name fallback = %q", c.FullName)
	}
	if c.Description != "Wooden doors" {
		t.Fatalf("description = %q", c.Description)
	}
	if len(c.Keywords) != 2 || c.Keywords[0] != "creak" || c.Keywords[1] != "slam" {
		t.Fatalf("keywords = %q", c.Keywords)
	}
}

func TestLoadTableHeaderCaseInsensitive(t *testing.T) {
	table, err := LoadTable(strings.NewReader("catid,CATEGORY,subCategory\nAMBForst,AMBIENCE,FOREST\n"))
	if err != nil {
		t.Fatalf("LoadTable: %v", err)
	}

	c, ok := table.Lookup("AMBForst_Birds.wav")
	if !ok {
		t.Fatal("expected lookup hit")
	}
	if c.Category != "AMBIENCE" || c.SubCategory != "FOREST" {
		t.Fatalf("unexpected category: %+v", c)
	}
}

func TestLoadTableMissingColumns(t *testing.T) {
	tests := []string{
		"",
		"Name,Other\nfoo,bar\n",
		"CatID,SubCategory\nX,Y\n",
	}

	for _, input := range tests {
		if _, err := LoadTable(strings.NewReader(input)); !errors.Is(err, ErrMissingColumns) {
			t.Fatalf("LoadTable(%q) error = %v, want ErrMissingColumns", input, err)
		}
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ucs.csv")
	if err := os.WriteFile(path, []byte(testCSV), 0o644); err != nil {
		t.Fatal(err)
	}

	table, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if table.Len() != 3 {
		t.Fatalf("expected 3 categories, got %d", table.Len())
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.csv")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLookup(t *testing.T) {
	table := loadTestTable(t)

	tests := []struct {
		filename string
		want     string
		ok       bool
	}{
		{"doorwood_Old Barn Door Creak.wav", "WOOD", true},
		{"/library/DOORMETL_Slam.wav", "METAL", true},
		{"GUNAuto.wav", "", false},
		{"nocat.wav", "", false},
	}

	for _, tt := range tests {
		c, ok := table.Lookup(tt.filename)
		if ok != tt.ok {
			t.Fatalf("Lookup(%q) ok = %v, want %v", tt.filename, ok, tt.ok)
		}
		if c.SubCategory != tt.want {
			t.Fatalf("Lookup(%q) subcategory = %q, want %q", tt.filename, c.SubCategory, tt.want)
		}
	}

	var nilTable *Table
	if _, ok := nilTable.Lookup("DOORWood_x.wav"); ok {
		t.Fatal("nil table must not match")
	}
}

func TestCategorizeScoresKeywordsAndSubcategory(t *testing.T) {
	table := loadTestTable(t)

	res, ok := table.Categorize("DOORWood_Creak Slam.wav", "")
	if !ok {
		t.Fatal("expected a match")
	}

	// subcategory 7 + two keywords 3 + partial "wood" in "doorwood" 0.5
	if res.Primary.ID != "DOORWood" || res.Primary.Score != 13.5 {
		t.Fatalf("unexpected primary: %s %.1f", res.Primary.ID, res.Primary.Score)
	}
	if len(res.Alternatives) != 0 {
		t.Fatalf("unexpected alternatives: %+v", res.Alternatives)
	}
}

func TestCategorizeAlternatives(t *testing.T) {
	table := loadTestTable(t)

	res, ok := table.Categorize("DOORS_WOOD-DOORS_METAL.wav", "")
	if !ok {
		t.Fatal("expected a match")
	}

	if res.Primary.ID != "DOORWood" || res.Primary.Score != 27 {
		t.Fatalf("unexpected primary: %s %.1f", res.Primary.ID, res.Primary.Score)
	}

	// GUNAuto only scores its "metal" keyword, well under 70% of the best.
	if len(res.Alternatives) != 1 {
		t.Fatalf("expected one alternative, got %+v", res.Alternatives)
	}
	if alt := res.Alternatives[0]; alt.ID != "DOORMetl" || alt.Score != 27 {
		t.Fatalf("unexpected alternative: %s %.1f", alt.ID, alt.Score)
	}
}

func TestCategorizeNoMatch(t *testing.T) {
	table := loadTestTable(t)

	if _, ok := table.Categorize("xyz.wav", "nothing here"); ok {
		t.Fatal("expected no match")
	}

	var empty *Table
	if _, ok := empty.Categorize("DOORS_WOOD.wav", ""); ok {
		t.Fatal("nil table must not match")
	}
}

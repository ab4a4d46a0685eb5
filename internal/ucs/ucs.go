// Package ucs maps sound effect file names onto the Universal Category
// System (UCS).
//
// A Table is loaded once from the published UCS CSV and is read-only
// afterwards, so it can be shared between goroutines. Two lookups are
// offered: Lookup resolves the CatID prefix of a UCS-conformant file name,
// and Categorize scores free text against every category.
package ucs

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// ErrMissingColumns is returned when the CSV header lacks a CatID or
// Category column.
var ErrMissingColumns = errors.New("ucs: csv is missing required columns")

// Category is one row of the UCS list.
type Category struct {
	ID          string
	FullName    string
	Category    string
	SubCategory string
	Description string
	Keywords    []string
}

// Table is an immutable UCS lookup table.
type Table struct {
	entries []Category
	byID    map[string]int
}

var headerAliases = map[string][]string{
	"id":          {"catid", "id", "catshort"},
	"category":    {"category"},
	"subcategory": {"subcategory"},
	"fullname":    {"fullname"},
	"description": {"description", "explanations"},
	"keywords":    {"keywords", "synonyms - comma separated", "synonyms"},
}

// LoadTable parses a UCS CSV. Header names are matched case-insensitively.
// Rows without an ID or category are ignored; a repeated ID replaces the
// earlier row.
func LoadTable(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty file", ErrMissingColumns)
		}
		return nil, fmt.Errorf("read ucs header: %w", err)
	}

	cols := resolveColumns(header)
	if cols["id"] < 0 || cols["category"] < 0 {
		return nil, fmt.Errorf("%w: found %v", ErrMissingColumns, header)
	}

	t := &Table{byID: make(map[string]int)}

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read ucs row: %w", err)
		}

		field := func(name string) string {
			i := cols[name]
			if i < 0 || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		c := Category{
			ID:          field("id"),
			Category:    field("category"),
			SubCategory: field("subcategory"),
			FullName:    field("fullname"),
			Description: field("description"),
		}
		if c.ID == "" || c.Category == "" {
			continue
		}
		if c.FullName == "" {
			c.FullName = strings.TrimSpace(c.Category + " " + c.SubCategory)
		}
		for kw := range strings.SplitSeq(field("keywords"), ",") {
			if kw = strings.TrimSpace(kw); kw != "" {
				c.Keywords = append(c.Keywords, kw)
			}
		}

		key := strings.ToUpper(c.ID)
		if i, ok := t.byID[key]; ok {
			t.entries[i] = c
			continue
		}
		t.byID[key] = len(t.entries)
		t.entries = append(t.entries, c)
	}

	return t, nil
}

// LoadFile opens path and parses it with LoadTable.
func LoadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ucs csv: %w", err)
	}
	defer f.Close()

	t, err := LoadTable(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

func resolveColumns(header []string) map[string]int {
	index := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, seen := index[h]; !seen {
			index[h] = i
		}
	}

	cols := make(map[string]int, len(headerAliases))
	for name, aliases := range headerAliases {
		cols[name] = -1
		for _, alias := range aliases {
			if i, ok := index[alias]; ok {
				cols[name] = i
				break
			}
		}
	}
	return cols
}

// Len returns the number of categories in the table.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// Lookup resolves the CatID prefix of filename, the text before the first
// underscore, case-insensitively.
func (t *Table) Lookup(filename string) (Category, bool) {
	if t == nil {
		return Category{}, false
	}

	base := filepath.Base(filename)
	catID, _, _ := strings.Cut(base, "_")

	i, ok := t.byID[strings.ToUpper(strings.TrimSpace(catID))]
	if !ok {
		return Category{}, false
	}
	return t.entries[i], true
}

// Match is a scored category.
type Match struct {
	Category
	Score float64
}

// Result is the outcome of Categorize.
type Result struct {
	Primary      Match
	Alternatives []Match
}

const (
	maxAlternatives  = 5
	alternativeRatio = 0.7
)

// Categorize scores filename and description against every category and
// returns the best match together with up to five runners-up scoring at
// least 70% of the best. ok is false when nothing scores.
func (t *Table) Categorize(filename, description string) (Result, bool) {
	if t.Len() == 0 {
		return Result{}, false
	}

	text := normalizeText(filename, description)

	var matches []Match
	for _, c := range t.entries {
		if score := matchScore(text, c); score > 0 {
			matches = append(matches, Match{Category: c, Score: score})
		}
	}
	if len(matches) == 0 {
		return Result{}, false
	}

	slices.SortStableFunc(matches, func(a, b Match) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		default:
			return 0
		}
	})

	res := Result{Primary: matches[0]}
	for _, m := range matches[1:min(len(matches), maxAlternatives+1)] {
		if m.Score >= res.Primary.Score*alternativeRatio {
			res.Alternatives = append(res.Alternatives, m)
		}
	}
	return res, true
}

var separators = strings.NewReplacer("_", " ", "-", " ", ".", " ")

func normalizeText(filename, description string) string {
	name := filepath.Base(filename)
	switch strings.ToLower(filepath.Ext(name)) {
	case ".wav", ".wave":
		name = strings.TrimSuffix(name, filepath.Ext(name))
	}

	text := strings.ToLower(strings.TrimSpace(name + " " + description))
	return separators.Replace(text)
}

func matchScore(text string, c Category) float64 {
	var score float64

	fullName := strings.ToLower(c.FullName)
	category := strings.ToLower(c.Category)
	subcategory := strings.ToLower(c.SubCategory)

	if fullName != "" && strings.Contains(text, fullName) {
		score += 10
	}
	if category != "" && strings.Contains(text, category) {
		score += 5
	}
	if subcategory != "" && strings.Contains(text, subcategory) {
		score += 7
	}

	for _, kw := range c.Keywords {
		if kw = strings.ToLower(kw); strings.Contains(text, kw) {
			score += 3
		}
	}

	textWords := wordSet(text)
	nameWords := wordSet(fullName)
	categoryWords := wordSet(category)
	subcategoryWords := wordSet(subcategory)

	for word := range textWords {
		if len(word) <= 2 {
			continue
		}
		switch {
		case nameWords[word]:
			score += 2
		case categoryWords[word]:
			score += 1.5
		case subcategoryWords[word]:
			score += 1.5
		}
	}

	// partial word overlap
	for word := range textWords {
		if len(word) <= 3 {
			continue
		}
		for nameWord := range nameWords {
			if len(nameWord) > 3 && (strings.Contains(nameWord, word) || strings.Contains(word, nameWord)) {
				score += 0.5
			}
		}
	}

	return score
}

func wordSet(s string) map[string]bool {
	words := make(map[string]bool)
	for _, w := range strings.Fields(s) {
		words[w] = true
	}
	return words
}

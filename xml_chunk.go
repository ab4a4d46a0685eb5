package wavmeta

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

var (
	ebuCoreOpen  = []byte("<ebucore:ebuCoreMain")
	ebuCoreClose = []byte("</ebucore:ebuCoreMain>")
)

// XMLTagMap maps a namespace-free XML element name to its trimmed text.
type XMLTagMap map[string]string

// ExtractEmbeddedXML finds the first ebuCore fragment in data and flattens
// it into element name -> text pairs. It returns an empty map when no
// fragment is present or the fragment is not well-formed.
func ExtractEmbeddedXML(data []byte) XMLTagMap {
	tags, _ := DecodeEmbeddedXML(data)
	return tags
}

// DecodeEmbeddedXML is like ExtractEmbeddedXML but also reports why a
// fragment that was found could not be parsed. The returned map is always
// non-nil and empty on error.
//
// The fragment is bracketed by byte search: the first opening
// <ebucore:ebuCoreMain up to the first closing tag after it. A second
// opening tag nested before that close is not detected.
func DecodeEmbeddedXML(data []byte) (XMLTagMap, error) {
	start := bytes.Index(data, ebuCoreOpen)
	if start < 0 {
		return XMLTagMap{}, nil
	}

	end := bytes.Index(data[start:], ebuCoreClose)
	if end < 0 {
		return XMLTagMap{}, nil
	}

	fragment := data[start : start+end+len(ebuCoreClose)]

	tags, err := flattenXML(strings.ToValidUTF8(string(fragment), "\uFFFD"))
	if err != nil {
		return XMLTagMap{}, err
	}

	return tags, nil
}

type xmlElement struct {
	name     string
	text     strings.Builder
	sawChild bool
	// index of this element in document (start tag) order
	order int
}

// flattenXML collects the leading text of every element, keyed by local
// name. Elements are applied in document order so a later element wins over
// an earlier one with the same name.
func flattenXML(doc string) (XMLTagMap, error) {
	dec := xml.NewDecoder(strings.NewReader(doc))

	var (
		stack []*xmlElement
		texts []struct{ name, text string }
	)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("failed to parse embedded XML: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if len(stack) > 0 {
				stack[len(stack)-1].sawChild = true
			}

			stack = append(stack, &xmlElement{name: localName(t.Name.Local), order: len(texts)})
			texts = append(texts, struct{ name, text string }{})
		case xml.CharData:
			if len(stack) > 0 && !stack[len(stack)-1].sawChild {
				stack[len(stack)-1].text.Write(t)
			}
		case xml.EndElement:
			if len(stack) == 0 {
				continue
			}

			el := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			texts[el.order].name = el.name
			texts[el.order].text = sanitize(strings.TrimSpace(el.text.String()))
		}
	}

	tags := XMLTagMap{}

	for _, entry := range texts {
		if entry.text != "" {
			tags[entry.name] = entry.text
		}
	}

	return tags, nil
}

func localName(tag string) string {
	if i := strings.LastIndexAny(tag, "}:"); i >= 0 {
		return tag[i+1:]
	}

	return tag
}

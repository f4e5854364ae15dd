// Package planxml parses plan-provisioning XML documents into flag sets.
package planxml

import (
	"encoding/xml"
	"io"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/htmlindex"

	"github.com/sells-group/planfill-cli/internal/model"
)

// Element and attribute names recognized in plan documents.
const (
	elemLinkName = "LinkName"
	elemPlanData = "PlanData"

	attrValue     = "value"
	attrSelected  = "selected"
	attrInsert    = "insert"
	attrFieldName = "FieldName"
)

// linkElem is one flag-style element: a named checkbox carrying selection
// and insert indicators plus optional inline text.
type linkElem struct {
	name     string
	selected int
	insert   int
	text     string
}

// dataElem is one field-style element: a named free-text field.
type dataElem struct {
	name string
	text string
}

// Parse reads one plan document and returns its flag set. Flag-style
// elements are applied before field-style elements regardless of document
// order, so a field-style element can never override selection state. When
// the same linkname appears on several flag-style elements, the first
// occurrence wins for selection state and the first non-empty text is kept.
func Parse(r io.Reader) (model.FlagSet, error) {
	links, data, err := walk(r)
	if err != nil {
		return nil, err
	}

	flags := make(model.FlagSet, len(links)+len(data))
	for _, le := range links {
		cur, ok := flags[le.name]
		if !ok {
			flags[le.name] = model.Flag{Selected: le.selected, Insert: le.insert, Text: le.text}
			continue
		}
		if cur.Text == "" && le.text != "" {
			cur.Text = le.text
			flags[le.name] = cur
		}
	}
	for _, de := range data {
		cur, ok := flags[de.name]
		if !ok {
			// A bare field implies the provision is present.
			flags[de.name] = model.Flag{Selected: 1, Insert: 0, Text: de.text}
			continue
		}
		if cur.Text == "" && de.text != "" {
			cur.Text = de.text
			flags[de.name] = cur
		}
	}
	return flags, nil
}

// ParseString parses a document held in memory.
func ParseString(doc string) (model.FlagSet, error) {
	return Parse(strings.NewReader(doc))
}

// openElem tracks an element whose leading inline text is still being read.
// Only text before the first child element counts as the element's own text.
type openElem struct {
	local string
	attrs map[string]string
	text  strings.Builder
}

// walk scans every element in the document, at any depth, and collects the
// flag-style and field-style elements in document order.
func walk(r io.Reader) ([]linkElem, []dataElem, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = func(charset string, input io.Reader) (io.Reader, error) {
		enc, err := htmlindex.Get(charset)
		if err != nil {
			return nil, eris.Wrapf(err, "planxml: unsupported charset %q", charset)
		}
		return enc.NewDecoder().Reader(input), nil
	}

	var (
		links []linkElem
		data  []dataElem
		open  *openElem
	)

	flush := func() {
		if open == nil {
			return
		}
		text := strings.TrimSpace(open.text.String())
		switch open.local {
		case elemLinkName:
			if name := strings.TrimSpace(open.attrs[attrValue]); name != "" {
				links = append(links, linkElem{
					name:     name,
					selected: indicator(open.attrs[attrSelected]),
					insert:   indicator(open.attrs[attrInsert]),
					text:     text,
				})
			}
		case elemPlanData:
			if name := strings.TrimSpace(open.attrs[attrFieldName]); name != "" {
				data = append(data, dataElem{name: name, text: text})
			}
		}
		open = nil
	}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return links, data, nil
		}
		if err != nil {
			return nil, nil, eris.Wrap(err, "planxml: read token")
		}

		switch t := tok.(type) {
		case xml.StartElement:
			flush()
			if t.Name.Local != elemLinkName && t.Name.Local != elemPlanData {
				continue
			}
			attrs := make(map[string]string, len(t.Attr))
			for _, a := range t.Attr {
				attrs[a.Name.Local] = a.Value
			}
			open = &openElem{local: t.Name.Local, attrs: attrs}
		case xml.EndElement:
			flush()
		case xml.CharData:
			if open != nil {
				open.text.Write(t)
			}
		}
	}
}

// indicator parses a selection or insert attribute. Only unsigned digit
// strings count; anything else, including an absent attribute, reads as 0.
func indicator(s string) int {
	if s == "" {
		return 0
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

package svg

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strings"
)

var (
	ErrNotSVG = errors.New("not an svg document")
	// ErrMalformed is returned for documents that are not well-formed XML.
	// Browsers are more lenient than the parser, so these are never stored.
	ErrMalformed = errors.New("malformed svg document")
)

var blockedSchemes = []string{"javascript:", "vbscript:"}

// Sanitize re-serializes an SVG photo without script elements,
// foreignObject islands, inline event handlers and script links.
// Processing instructions and DOCTYPE directives are dropped too.
func Sanitize(input []byte) ([]byte, error) {
	if !bytes.Contains(bytes.ToLower(input), []byte("<svg")) {
		return nil, ErrNotSVG
	}

	dec := xml.NewDecoder(bytes.NewReader(input))
	dec.Strict = true

	var (
		out      bytes.Buffer
		open     []xml.Name
		skip     int
		unclosed bool
		seenRoot bool
	)

	closeStart := func() {
		if unclosed {
			out.WriteByte('>')
			unclosed = false
		}
	}

	for {
		tok, err := dec.RawToken()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, ErrMalformed
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if !seenRoot {
				if !strings.EqualFold(t.Name.Local, "svg") {
					return nil, ErrNotSVG
				}
				seenRoot = true
			} else if len(open) == 0 {
				return nil, ErrMalformed
			}
			open = append(open, t.Name)
			if skip > 0 || blockedElement(t.Name) {
				skip++
				continue
			}
			closeStart()
			out.WriteByte('<')
			out.WriteString(qualified(t.Name))
			for _, attr := range t.Attr {
				if blockedAttr(attr) {
					continue
				}
				out.WriteByte(' ')
				out.WriteString(qualified(attr.Name))
				out.WriteString(`="`)
				if err := xml.EscapeText(&out, []byte(attr.Value)); err != nil {
					return nil, err
				}
				out.WriteByte('"')
			}
			unclosed = true

		case xml.EndElement:
			if len(open) == 0 || open[len(open)-1] != t.Name {
				return nil, ErrMalformed
			}
			open = open[:len(open)-1]
			if skip > 0 {
				skip--
				continue
			}
			if unclosed {
				out.WriteString("/>")
				unclosed = false
				continue
			}
			out.WriteString("</")
			out.WriteString(qualified(t.Name))
			out.WriteByte('>')

		case xml.CharData:
			if skip > 0 || len(open) == 0 {
				continue
			}
			closeStart()
			if err := xml.EscapeText(&out, t); err != nil {
				return nil, err
			}

		case xml.Comment:
			if skip > 0 || len(open) == 0 {
				continue
			}
			closeStart()
			out.WriteString("<!--")
			out.Write(t)
			out.WriteString("-->")
		}
	}

	if !seenRoot {
		return nil, ErrNotSVG
	}
	if len(open) != 0 {
		return nil, ErrMalformed
	}
	return out.Bytes(), nil
}

func qualified(name xml.Name) string {
	if name.Space == "" {
		return name.Local
	}
	return name.Space + ":" + name.Local
}

func blockedElement(name xml.Name) bool {
	return strings.EqualFold(name.Local, "script") || strings.EqualFold(name.Local, "foreignObject")
}

func blockedAttr(attr xml.Attr) bool {
	local := strings.ToLower(attr.Name.Local)
	if strings.HasPrefix(local, "on") {
		return true
	}
	if local != "href" && local != "src" {
		return false
	}

	// Browsers ignore whitespace and control characters inside the scheme.
	value := strings.Map(func(r rune) rune {
		if r <= ' ' {
			return -1
		}
		return r
	}, strings.ToLower(attr.Value))
	for _, scheme := range blockedSchemes {
		if strings.HasPrefix(value, scheme) {
			return true
		}
	}
	return false
}

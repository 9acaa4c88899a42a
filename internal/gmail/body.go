package gmail

import (
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	gmail "google.golang.org/api/gmail/v1"
)

// HeaderValue extracts a header value from a Gmail message
func HeaderValue(m *gmail.Message, header string) string {
	mpart := m.Payload
	if mpart == nil {
		return ""
	}
	for _, mph := range mpart.Headers {
		if strings.EqualFold(mph.Name, header) {
			return mph.Value
		}
	}
	return ""
}

// walkParts recursively walks through message parts
func walkParts(part *gmail.MessagePart, fn func(*gmail.MessagePart)) {
	if part == nil {
		return
	}

	fn(part)

	for _, subpart := range part.Parts {
		walkParts(subpart, fn)
	}
}

// extractBodies returns the first decoded text/plain and text/html parts.
// Attachments are skipped.
func extractBodies(payload *gmail.MessagePart) (plain, htmlBody string, err error) {
	walkParts(payload, func(part *gmail.MessagePart) {
		if err != nil || part.Body == nil || part.Body.Data == "" || part.Filename != "" {
			return
		}
		switch part.MimeType {
		case "text/plain":
			if plain == "" {
				plain, err = decodeBody(part.Body.Data)
			}
		case "text/html":
			if htmlBody == "" {
				htmlBody, err = decodeBody(part.Body.Data)
			}
		}
	})
	return plain, htmlBody, err
}

// decodeBody decodes base64url-encoded body data
func decodeBody(data string) (string, error) {
	decoded, err := base64.URLEncoding.DecodeString(data)
	if err != nil {
		// Gmail omits padding on some parts
		decoded, err = base64.RawURLEncoding.DecodeString(data)
		if err != nil {
			decoded, err = base64.StdEncoding.DecodeString(data)
			if err != nil {
				return "", fmt.Errorf("failed to decode message body: %w", err)
			}
		}
	}
	return string(decoded), nil
}

// htmlToText renders the visible text of an HTML document, one line per block.
func htmlToText(doc string) string {
	root, err := html.Parse(strings.NewReader(doc))
	if err != nil {
		return ""
	}

	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Script, atom.Style, atom.Head, atom.Title, atom.Noscript:
				return
			case atom.Br:
				b.WriteString("\n")
				return
			}
		}
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode && isBlock(n.DataAtom) {
			b.WriteString("\n")
		}
	}
	walk(root)

	var lines []string
	for _, line := range strings.Split(b.String(), "\n") {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

func isBlock(a atom.Atom) bool {
	switch a {
	case atom.P, atom.Div, atom.Li, atom.Tr, atom.Table, atom.Blockquote,
		atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6, atom.Section, atom.Article:
		return true
	}
	return false
}

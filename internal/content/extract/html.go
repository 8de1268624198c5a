// Package extract derives plain-text facts from post HTML: the text, the
// first paragraph, embedded image URLs and a word count.
package extract

import (
	"strings"

	"golang.org/x/net/html"
)

const maxDepth = 100

// Document is parsed post content
type Document struct {
	root *html.Node
}

// Parse parses an HTML fragment. Malformed markup is repaired by the
// parser; the error is only returned for reader failures.
func Parse(content string) (*Document, error) {
	root, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return nil, err
	}
	return &Document{root: root}, nil
}

// Text returns the visible text with whitespace collapsed
func (d *Document) Text() string {
	var sb strings.Builder
	collectText(d.root, &sb, 0)
	return strings.Join(strings.Fields(sb.String()), " ")
}

// FirstParagraph returns the text of the first non-empty <p>
func (d *Document) FirstParagraph() string {
	var found string
	walk(d.root, 0, func(n *html.Node) bool {
		if n.Type != html.ElementNode || n.Data != "p" {
			return true
		}
		var sb strings.Builder
		collectText(n, &sb, 0)
		if text := strings.Join(strings.Fields(sb.String()), " "); text != "" {
			found = text
			return false
		}
		return true
	})
	return found
}

// Images returns the distinct <img src> values in document order
func (d *Document) Images() []string {
	var urls []string
	seen := make(map[string]bool)
	walk(d.root, 0, func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.Data == "img" {
			src := getAttr(n, "src")
			if src != "" && !seen[src] {
				seen[src] = true
				urls = append(urls, src)
			}
		}
		return true
	})
	return urls
}

// WordCount counts whitespace-separated words of the visible text
func (d *Document) WordCount() int {
	return len(strings.Fields(d.Text()))
}

// Text is a convenience for Parse(content).Text() that falls back to the
// raw content.
func Text(content string) string {
	doc, err := Parse(content)
	if err != nil {
		return strings.TrimSpace(content)
	}
	return doc.Text()
}

// Summary returns at most maxWords words of the text, marking truncation
// with an ellipsis.
func Summary(content string, maxWords int) string {
	words := strings.Fields(Text(content))
	if maxWords <= 0 || len(words) <= maxWords {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:maxWords], " ") + "…"
}

func collectText(n *html.Node, sb *strings.Builder, depth int) {
	if depth > maxDepth {
		return
	}
	switch n.Type {
	case html.TextNode:
		sb.WriteString(n.Data)
		sb.WriteString(" ")
		return
	case html.CommentNode:
		return
	case html.ElementNode:
		switch n.Data {
		case "script", "style", "noscript", "iframe", "svg", "template":
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, sb, depth+1)
	}
}

// walk visits nodes depth-first until fn returns false
func walk(n *html.Node, depth int, fn func(*html.Node) bool) bool {
	if depth > maxDepth {
		return true
	}
	if !fn(n) {
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !walk(c, depth+1, fn) {
			return false
		}
	}
	return true
}

func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

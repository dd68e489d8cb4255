package convert

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// HTMLConverter walks an HTML document with golang.org/x/net/html's
// tokenizer and renders a Markdown approximation: headings, paragraphs,
// list items, and links. It is not a full HTML-to-Markdown engine — only
// the tags that matter to S2's structural flags and S4's entity detection
// are handled; everything else degrades to its text content.
type HTMLConverter struct{}

func (c *HTMLConverter) Convert(content []byte) (Result, error) {
	node, err := html.Parse(bytes.NewReader(content))
	if err != nil {
		return Result{}, fmt.Errorf("parse HTML: %w", err)
	}
	var buf strings.Builder
	renderNode(&buf, node)
	md := strings.TrimSpace(collapseBlankLines(buf.String()))
	return Result{Markdown: []byte(md), MIMEDetected: "text/html"}, nil
}

func renderNode(buf *strings.Builder, n *html.Node) {
	if n.Type == html.TextNode {
		if s := strings.TrimSpace(n.Data); s != "" {
			buf.WriteString(s)
			buf.WriteByte(' ')
		}
		return
	}
	if n.Type != html.ElementNode {
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			renderNode(buf, child)
		}
		return
	}

	switch n.DataAtom {
	case atom.Script, atom.Style, atom.Head:
		return
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		level := int(n.Data[1] - '0')
		buf.WriteString("\n\n" + strings.Repeat("#", level) + " ")
		renderChildren(buf, n)
		buf.WriteString("\n\n")
	case atom.P, atom.Div:
		buf.WriteString("\n\n")
		renderChildren(buf, n)
		buf.WriteString("\n\n")
	case atom.Li:
		buf.WriteString("\n- ")
		renderChildren(buf, n)
	case atom.Br:
		buf.WriteString("\n")
	case atom.A:
		href := attr(n, "href")
		var text strings.Builder
		renderChildren(&text, n)
		buf.WriteString("[" + strings.TrimSpace(text.String()) + "](" + href + ")")
	default:
		renderChildren(buf, n)
	}
}

func renderChildren(buf *strings.Builder, n *html.Node) {
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		renderNode(buf, child)
	}
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func collapseBlankLines(s string) string {
	for strings.Contains(s, "\n\n\n") {
		s = strings.ReplaceAll(s, "\n\n\n", "\n\n")
	}
	return s
}

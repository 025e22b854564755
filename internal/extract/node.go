package extract

import (
	"strings"

	"golang.org/x/net/html"
)

// Node traversal helpers shared by the extractor.

// findAll finds all nodes matching a predicate, in document order.
func findAll(n *html.Node, predicate func(*html.Node) bool) []*html.Node {
	var results []*html.Node

	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if predicate(node) {
			results = append(results, node)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(n)
	return results
}

// findFirst finds the first node matching a predicate.
func findFirst(n *html.Node, predicate func(*html.Node) bool) *html.Node {
	var result *html.Node

	var walk func(*html.Node) bool
	walk = func(node *html.Node) bool {
		if predicate(node) {
			result = node
			return true
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			if walk(c) {
				return true
			}
		}
		return false
	}

	walk(n)
	return result
}

// hasClass checks if a node carries a specific CSS class.
func hasClass(n *html.Node, className string) bool {
	if n.Type != html.ElementNode {
		return false
	}
	for _, attr := range n.Attr {
		if attr.Key == "class" {
			for _, class := range strings.Fields(attr.Val) {
				if class == className {
					return true
				}
			}
		}
	}
	return false
}

// getAttribute gets an attribute value from a node.
func getAttribute(n *html.Node, attrKey string) string {
	for _, attr := range n.Attr {
		if attr.Key == attrKey {
			return attr.Val
		}
	}
	return ""
}

// nodeText extracts the whitespace-normalized text content of a node.
func nodeText(n *html.Node) string {
	var buf strings.Builder

	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			buf.WriteString(node.Data)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)

	return strings.Join(strings.Fields(buf.String()), " ")
}

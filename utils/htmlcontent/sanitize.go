// Package htmlcontent sanitizes teacher-authored worksheet HTML before it
// is stored. Script and style elements are dropped entirely, as are
// event-handler and javascript: attributes.
package htmlcontent

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var droppedElements = map[string]bool{
	"script": true,
	"style":  true,
	"iframe": true,
	"object": true,
	"embed":  true,
}

// Sanitize parses the fragment and re-renders it without dangerous
// elements and attributes. Invalid markup is normalized by the parser
// rather than rejected.
func Sanitize(fragment string) (string, error) {
	nodes, err := html.ParseFragment(strings.NewReader(fragment), &html.Node{
		Type:     html.ElementNode,
		Data:     "div",
		DataAtom: atom.Div,
	})
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, n := range nodes {
		clean(n)
		if n.Type == html.ElementNode && droppedElements[n.Data] {
			continue
		}
		if err := html.Render(&b, n); err != nil {
			return "", err
		}
	}
	return b.String(), nil
}

func clean(n *html.Node) {
	if n.Type == html.ElementNode {
		kept := n.Attr[:0]
		for _, attr := range n.Attr {
			if strings.HasPrefix(strings.ToLower(attr.Key), "on") {
				continue
			}
			if isURLAttr(attr.Key) && hasScriptScheme(attr.Val) {
				continue
			}
			kept = append(kept, attr)
		}
		n.Attr = kept
	}

	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if c.Type == html.ElementNode && droppedElements[c.Data] {
			n.RemoveChild(c)
		} else {
			clean(c)
		}
		c = next
	}
}

func isURLAttr(key string) bool {
	switch strings.ToLower(key) {
	case "href", "src", "action", "formaction":
		return true
	}
	return false
}

func hasScriptScheme(val string) bool {
	v := strings.ToLower(strings.TrimSpace(val))
	return strings.HasPrefix(v, "javascript:") || strings.HasPrefix(v, "data:text/html")
}

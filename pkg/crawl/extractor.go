package crawl

import (
	"bytes"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/campuslife/campus-engine/pkg/models"
)

// LinkType classifies an outbound link.
type LinkType string

const (
	LinkPage LinkType = "page"
	LinkPDF  LinkType = "pdf"
)

// Link is an absolutised outbound link found on a page.
type Link struct {
	URL  string
	Type LinkType
}

// FAQ is a question/answer pair paired from a definition list.
type FAQ struct {
	Question string
	Answer   string
}

// Page is the structured content extracted from one fetched document.
type Page struct {
	Title       string
	Description string
	Content     string
	Tables      [][][]string // per table: rows of stripped cells
	FAQs        []FAQ
	Contacts    []models.Contact
	Links       []Link
}

var (
	whitespacePattern = regexp.MustCompile(`\s+`)
	// Characters kept in cleaned body text.
	allowedCharPattern = regexp.MustCompile(`[^\w\s.,!?@\-:()]`)
)

// skippedElements are subtrees removed before text extraction.
var skippedElements = map[string]struct{}{
	"script": {}, "style": {}, "nav": {}, "footer": {}, "header": {},
}

// contentContainers are preferred over the element-by-element fallback
// when at least one is present.
var contentContainers = map[string]struct{}{
	"main": {}, "article": {}, "section": {},
}

// fallbackElements contribute text when no content container exists and
// their text is longer than minFallbackText.
var fallbackElements = map[string]struct{}{
	"p": {}, "h1": {}, "h2": {}, "h3": {}, "h4": {}, "h5": {}, "h6": {},
	"div": {}, "span": {},
}

const minFallbackText = 20

// NormalizeText collapses whitespace and strips characters outside the
// allowed set. Applied to every extracted text field, HTML and PDF alike.
func NormalizeText(s string) string {
	s = allowedCharPattern.ReplaceAllString(s, "")
	s = whitespacePattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// ExtractHTML parses raw HTML into a Page. pageURL is used to absolutise
// outbound links. A parse failure yields an empty Page; the crawl goes on.
func ExtractHTML(body []byte, pageURL string) *Page {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return &Page{}
	}

	page := &Page{
		Title:       NormalizeText(nodeText(findFirst(doc, "title"))),
		Description: NormalizeText(metaDescription(doc)),
		Content:     NormalizeText(bodyText(doc)),
	}

	page.Tables = extractTables(doc)
	page.FAQs = extractFAQs(doc)
	page.Links = extractLinks(doc, pageURL)
	page.Contacts = ExtractContacts(fullText(doc))

	return page
}

// bodyText picks text from main/article/section containers when present,
// otherwise from paragraph-like elements with enough text.
func bodyText(doc *html.Node) string {
	var containers []*html.Node
	walkElements(doc, func(n *html.Node) bool {
		if _, ok := skippedElements[n.Data]; ok {
			return false
		}
		if _, ok := contentContainers[n.Data]; ok {
			containers = append(containers, n)
			return false // do not also collect nested containers
		}
		return true
	})

	var parts []string
	if len(containers) > 0 {
		for _, c := range containers {
			parts = append(parts, nodeText(c))
		}
		return strings.Join(parts, " ")
	}

	walkElements(doc, func(n *html.Node) bool {
		if _, ok := skippedElements[n.Data]; ok {
			return false
		}
		if _, ok := fallbackElements[n.Data]; ok {
			if text := strings.TrimSpace(nodeText(n)); len(text) > minFallbackText {
				parts = append(parts, text)
			}
		}
		return true
	})
	return strings.Join(parts, " ")
}

func metaDescription(doc *html.Node) string {
	var desc string
	walkElements(doc, func(n *html.Node) bool {
		if n.Data == "meta" && attr(n, "name") == "description" {
			desc = attr(n, "content")
			return false
		}
		return desc == ""
	})
	return strings.TrimSpace(desc)
}

func extractTables(doc *html.Node) [][][]string {
	var tables [][][]string
	walkElements(doc, func(n *html.Node) bool {
		if _, ok := skippedElements[n.Data]; ok {
			return false
		}
		if n.Data != "table" {
			return true
		}
		var rows [][]string
		walkElements(n, func(tr *html.Node) bool {
			if tr.Data != "tr" {
				return true
			}
			var cells []string
			walkElements(tr, func(cell *html.Node) bool {
				if cell.Data == "td" || cell.Data == "th" {
					cells = append(cells, strings.TrimSpace(nodeText(cell)))
					return false
				}
				return true
			})
			if len(cells) > 0 {
				rows = append(rows, cells)
			}
			return false
		})
		if len(rows) > 0 {
			tables = append(tables, rows)
		}
		return false // tables are not nested in practice
	})
	return tables
}

// extractFAQs pairs consecutive dt/dd children under each dl element.
func extractFAQs(doc *html.Node) []FAQ {
	var faqs []FAQ
	walkElements(doc, func(n *html.Node) bool {
		if n.Data != "dl" {
			return true
		}
		var question string
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			if child.Type != html.ElementNode {
				continue
			}
			switch child.Data {
			case "dt":
				question = strings.TrimSpace(nodeText(child))
			case "dd":
				if question != "" {
					faqs = append(faqs, FAQ{
						Question: question,
						Answer:   strings.TrimSpace(nodeText(child)),
					})
					question = ""
				}
			}
		}
		return false
	})
	return faqs
}

func extractLinks(doc *html.Node, pageURL string) []Link {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil
	}

	var links []Link
	walkElements(doc, func(n *html.Node) bool {
		if n.Data != "a" {
			return true
		}
		href := strings.TrimSpace(attr(n, "href"))
		if href == "" {
			return true
		}
		for _, scheme := range blockedSchemes {
			if strings.HasPrefix(strings.ToLower(href), scheme) {
				return true
			}
		}

		ref, err := url.Parse(href)
		if err != nil {
			return true
		}
		abs := base.ResolveReference(ref)
		abs.Fragment = ""
		if abs.String() == "" {
			return true
		}

		linkType := LinkPage
		if strings.HasSuffix(strings.ToLower(abs.Path), ".pdf") {
			linkType = LinkPDF
		}
		links = append(links, Link{URL: abs.String(), Type: linkType})
		return true
	})
	return links
}

// walkElements runs fn on every element node in document order. Returning
// false from fn stops descent into that node's subtree.
func walkElements(n *html.Node, fn func(*html.Node) bool) {
	if n.Type == html.ElementNode {
		if !fn(n) {
			return
		}
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		walkElements(child, fn)
	}
}

// nodeText concatenates all text beneath n, skipping removed subtrees.
func nodeText(n *html.Node) string {
	if n == nil {
		return ""
	}
	var sb strings.Builder
	var visit func(*html.Node)
	visit = func(node *html.Node) {
		if node.Type == html.ElementNode {
			if _, ok := skippedElements[node.Data]; ok {
				return
			}
		}
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
			sb.WriteString(" ")
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			visit(child)
		}
	}
	visit(n)
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(sb.String(), " "))
}

// fullText is nodeText over the whole document, used for contact scanning.
func fullText(doc *html.Node) string {
	return nodeText(doc)
}

func findFirst(n *html.Node, name string) *html.Node {
	var found *html.Node
	walkElements(n, func(node *html.Node) bool {
		if node.Data == name {
			found = node
			return false
		}
		return found == nil
	})
	return found
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

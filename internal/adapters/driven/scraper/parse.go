package scraper

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// category is one genre link from the home page sidebar
type category struct {
	Name string
	Href string
}

// listing is one page of a category
type listing struct {
	Books []string // detail page hrefs
	Next  string   // href of the next page, "" on the last page
}

// detail holds the fields of a book page
type detail struct {
	Title        string
	Price        float64
	Description  *string
	Rating       string
	UPC          string
	ProductType  string
	PriceExclTax float64
	PriceInclTax float64
	Tax          float64
	Availability int
	Reviews      int
	Image        string // src of the cover image
}

var digits = regexp.MustCompile(`\d+`)

// cleanCurrency strips the pound sign (and its mis-decoded prefix) and
// parses the rest. Unparseable prices are 0.
func cleanCurrency(s string) float64 {
	s = strings.NewReplacer("Â", "", "£", "").Replace(strings.TrimSpace(s))
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// availabilityCount extracts the stock count from "In stock (22 available)"
func availabilityCount(s string) int {
	m := digits.FindString(s)
	if m == "" {
		return 0
	}
	n, _ := strconv.Atoi(m)
	return n
}

func parseCategories(r io.Reader) ([]category, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	nav := find(doc, func(n *html.Node) bool { return isElem(n, "ul") && hasClass(n, "nav-list") })
	if nav == nil {
		return nil, fmt.Errorf("category list not found")
	}
	// the first item is the "Books" root; genres are nested under it
	inner := find(nav, func(n *html.Node) bool { return n != nav && isElem(n, "ul") })
	if inner == nil {
		return nil, fmt.Errorf("category list is empty")
	}

	var cats []category
	for _, a := range findAll(inner, func(n *html.Node) bool { return isElem(n, "a") }) {
		href := attr(a, "href")
		if href == "" {
			continue
		}
		cats = append(cats, category{Name: text(a), Href: href})
	}
	return cats, nil
}

func parseListing(r io.Reader) (*listing, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	page := &listing{}
	for _, pod := range findAll(doc, func(n *html.Node) bool { return isElem(n, "article") && hasClass(n, "product_pod") }) {
		h3 := find(pod, func(n *html.Node) bool { return isElem(n, "h3") })
		if h3 == nil {
			continue
		}
		if a := find(h3, func(n *html.Node) bool { return isElem(n, "a") }); a != nil && attr(a, "href") != "" {
			page.Books = append(page.Books, attr(a, "href"))
		}
	}
	if next := find(doc, func(n *html.Node) bool { return isElem(n, "li") && hasClass(n, "next") }); next != nil {
		if a := find(next, func(n *html.Node) bool { return isElem(n, "a") }); a != nil {
			page.Next = attr(a, "href")
		}
	}
	return page, nil
}

func parseDetail(r io.Reader) (*detail, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	d := &detail{}

	h1 := find(doc, func(n *html.Node) bool { return isElem(n, "h1") })
	if h1 == nil {
		return nil, fmt.Errorf("title not found")
	}
	d.Title = text(h1)

	if p := find(doc, func(n *html.Node) bool { return isElem(n, "p") && hasClass(n, "price_color") }); p != nil {
		d.Price = cleanCurrency(text(p))
	}

	if marker := find(doc, func(n *html.Node) bool { return isElem(n, "div") && attr(n, "id") == "product_description" }); marker != nil {
		for sib := marker.NextSibling; sib != nil; sib = sib.NextSibling {
			if isElem(sib, "p") {
				desc := text(sib)
				d.Description = &desc
				break
			}
		}
	}

	if p := find(doc, func(n *html.Node) bool { return isElem(n, "p") && hasClass(n, "star-rating") }); p != nil {
		for _, c := range strings.Fields(attr(p, "class")) {
			if c != "star-rating" {
				d.Rating = c
				break
			}
		}
	}

	table := find(doc, func(n *html.Node) bool { return isElem(n, "table") && hasClass(n, "table-striped") })
	if table == nil {
		return nil, fmt.Errorf("product table not found")
	}
	cells := findAll(table, func(n *html.Node) bool { return isElem(n, "td") })
	if len(cells) < 7 {
		return nil, fmt.Errorf("product table has %d cells, want 7", len(cells))
	}
	d.UPC = text(cells[0])
	d.ProductType = text(cells[1])
	d.PriceExclTax = cleanCurrency(text(cells[2]))
	d.PriceInclTax = cleanCurrency(text(cells[3]))
	d.Tax = cleanCurrency(text(cells[4]))
	d.Availability = availabilityCount(text(cells[5]))
	d.Reviews, _ = strconv.Atoi(text(cells[6]))

	if item := find(doc, func(n *html.Node) bool { return isElem(n, "div") && hasClass(n, "item") }); item != nil {
		if img := find(item, func(n *html.Node) bool { return isElem(n, "img") }); img != nil {
			d.Image = attr(img, "src")
		}
	}
	return d, nil
}

func isElem(n *html.Node, tag string) bool {
	return n.Type == html.ElementNode && n.Data == tag
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

// find returns the first node in document order under root (root included)
// matching match.
func find(root *html.Node, match func(*html.Node) bool) *html.Node {
	if match(root) {
		return root
	}
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if n := find(c, match); n != nil {
			return n
		}
	}
	return nil
}

func findAll(root *html.Node, match func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if match(n) {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return out
}

// text concatenates the text under n with surrounding whitespace trimmed
func text(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(b.String())
}

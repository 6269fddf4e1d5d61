package report

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Block kinds produced from rendered assistant commentary.
const (
	BlockHeading   = "heading"
	BlockParagraph = "paragraph"
	BlockBullet    = "bullet"
)

type Block struct {
	Kind string
	Text string
}

// CommentaryBlocks flattens rendered HTML into plain-text blocks the PDF
// writer can lay out. Tables and code are reduced to their text.
func CommentaryBlocks(html string) ([]Block, error) {
	if strings.TrimSpace(html) == "" {
		return nil, nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse commentary HTML: %w", err)
	}

	var blocks []Block
	doc.Find("h1, h2, h3, h4, p, li, pre, td").Each(func(i int, sel *goquery.Selection) {
		// Paragraphs inside list items are emitted with the item.
		if goquery.NodeName(sel) == "p" && sel.ParentsFiltered("li").Length() > 0 {
			return
		}
		text := strings.Join(strings.Fields(sel.Text()), " ")
		if text == "" {
			return
		}
		kind := BlockParagraph
		switch goquery.NodeName(sel) {
		case "h1", "h2", "h3", "h4":
			kind = BlockHeading
		case "li":
			kind = BlockBullet
		}
		blocks = append(blocks, Block{Kind: kind, Text: text})
	})
	return blocks, nil
}

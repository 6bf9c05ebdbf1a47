// Package lesson turns generated module text into renderable blocks.
package lesson

import (
	"iter"
	"strings"

	"github.com/dalemusser/studydesk/internal/app/system/htmlsanitize"
)

// Kind classifies one line of module text.
type Kind int

const (
	Paragraph Kind = iota
	Subheading
	ListItem
)

// Block is one classified, trimmed line.
type Block struct {
	Kind Kind
	Text string
}

func (b Block) IsParagraph() bool  { return b.Kind == Paragraph }
func (b Block) IsSubheading() bool { return b.Kind == Subheading }
func (b Block) IsListItem() bool   { return b.Kind == ListItem }

const bullet = "•"

// Blocks yields the blocks of text lazily, one per non-empty line. Markup
// in the text is stripped first.
//
// A line starting with a bullet glyph is a list item (glyph removed). A line
// ending with a colon, or containing no period, is a subheading. Anything
// else is a paragraph.
func Blocks(text string) iter.Seq[Block] {
	text = htmlsanitize.StripTags(text)
	return func(yield func(Block) bool) {
		for line := range strings.Lines(text) {
			b, ok := Classify(line)
			if !ok {
				continue
			}
			if !yield(b) {
				return
			}
		}
	}
}

// Classify classifies a single line. ok is false for blank lines.
func Classify(line string) (Block, bool) {
	t := strings.TrimSpace(line)
	switch {
	case t == "":
		return Block{}, false
	case strings.HasPrefix(t, bullet):
		return Block{Kind: ListItem, Text: strings.TrimSpace(strings.TrimPrefix(t, bullet))}, true
	case strings.HasSuffix(t, ":") || !strings.Contains(t, "."):
		return Block{Kind: Subheading, Text: t}, true
	default:
		return Block{Kind: Paragraph, Text: t}, true
	}
}

package console

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/hnrobert/ttylogin/internal/hostfs"
	"github.com/hnrobert/ttylogin/internal/logger"
)

// LoadIssue reads the Markdown banner at path and renders it for the console.
// A missing file is an empty banner.
func LoadIssue(path string) string {
	if path == "" {
		return ""
	}
	b, err := hostfs.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logger.Warn("issue file %s: %v", path, err)
		}
		return ""
	}
	return RenderIssue(b)
}

// RenderIssue flattens Markdown to plain console text. Emphasis and links keep
// only their text; list items are indented with a bullet or their number.
func RenderIssue(src []byte) string {
	doc := goldmark.DefaultParser().Parse(text.NewReader(src))
	var b strings.Builder
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		switch n := n.(type) {
		case *ast.Text:
			if entering {
				b.Write(n.Segment.Value(src))
				if n.SoftLineBreak() || n.HardLineBreak() {
					b.WriteByte('\n')
				}
			}
		case *ast.String:
			if entering {
				b.Write(n.Value)
			}
		case *ast.AutoLink:
			if entering {
				b.Write(n.Label(src))
			}
			return ast.WalkSkipChildren, nil
		case *ast.RawHTML, *ast.HTMLBlock:
			return ast.WalkSkipChildren, nil
		case *ast.ListItem:
			if entering {
				b.WriteString(bullet(n))
			}
		case *ast.CodeBlock, *ast.FencedCodeBlock:
			if entering {
				lines := n.Lines()
				for i := 0; i < lines.Len(); i++ {
					seg := lines.At(i)
					b.Write(seg.Value(src))
				}
			}
		case *ast.ThematicBreak:
			if entering {
				b.WriteString("----")
			}
		}
		if entering || n.Type() != ast.TypeBlock {
			return ast.WalkContinue, nil
		}
		switch n.Kind() {
		case ast.KindParagraph, ast.KindTextBlock, ast.KindHeading, ast.KindThematicBreak:
			b.WriteByte('\n')
		}
		if _, top := n.Parent().(*ast.Document); top {
			b.WriteByte('\n')
		}
		return ast.WalkContinue, nil
	})
	out := strings.TrimRight(b.String(), " \n")
	if out == "" {
		return ""
	}
	return out + "\n"
}

func bullet(item *ast.ListItem) string {
	list, ok := item.Parent().(*ast.List)
	if !ok || !list.IsOrdered() {
		return "  - "
	}
	n := list.Start
	for s := item.PreviousSibling(); s != nil; s = s.PreviousSibling() {
		n++
	}
	return "  " + strconv.Itoa(n) + ". "
}

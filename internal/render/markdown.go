package render

import (
	"bytes"
	"html/template"
	"strings"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// The goldmark instance is immutable once built and safe to share;
// per-call state lives in the parser context.
var (
	markdownInstance goldmark.Markdown
	markdownOnce     sync.Once
)

func markdown() goldmark.Markdown {
	markdownOnce.Do(func() {
		markdownInstance = goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
			),
		)
	})
	return markdownInstance
}

// MarkdownHTML renders Markdown to HTML. Raw HTML in the source is
// escaped, so the result can be embedded as-is.
func MarkdownHTML(source string) (template.HTML, error) {
	if strings.TrimSpace(source) == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := markdown().Convert([]byte(source), &buf); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

// MarkdownText flattens Markdown into plain text for PDF and text mail
// bodies. Blocks end with a newline, list items get a dash and soft line
// breaks reflow into spaces.
func MarkdownText(source string) string {
	if strings.TrimSpace(source) == "" {
		return ""
	}

	src := []byte(source)
	document := markdown().Parser().Parse(text.NewReader(src))

	var out bytes.Buffer
	endLine := func() {
		trimmed := bytes.TrimRight(out.Bytes(), " ")
		out.Truncate(len(trimmed))
		if out.Len() > 0 && !bytes.HasSuffix(out.Bytes(), []byte("\n")) {
			out.WriteByte('\n')
		}
	}

	_ = ast.Walk(document, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		switch n := node.(type) {
		case *ast.ListItem:
			if entering {
				out.WriteString("- ")
			}
		case *ast.Text:
			if entering {
				out.Write(n.Segment.Value(src))
				switch {
				case n.HardLineBreak():
					endLine()
				case n.SoftLineBreak():
					out.WriteByte(' ')
				}
			}
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			if entering {
				lines := n.Lines()
				for i := 0; i < lines.Len(); i++ {
					segment := lines.At(i)
					out.Write(segment.Value(src))
				}
				return ast.WalkSkipChildren, nil
			}
		}

		if !entering && node.Type() == ast.TypeBlock {
			endLine()
		}
		return ast.WalkContinue, nil
	})

	return strings.TrimSpace(out.String())
}

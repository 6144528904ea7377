package backend

import (
	"fmt"
	"strings"

	"github.com/MeKo-Tech/docpipe/internal/document"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownBackend converts markdown sources declaratively by walking
// the goldmark AST.
type MarkdownBackend struct {
	name   string
	source []byte
	root   ast.Node
}

// NewMarkdown parses the source. Markdown parsing is total, so the
// backend is always valid once the bytes are readable.
func NewMarkdown(src Source) (document.Backend, error) {
	data, err := src.Bytes()
	if err != nil {
		return nil, err
	}
	md := goldmark.New()
	root := md.Parser().Parse(text.NewReader(data))
	return &MarkdownBackend{name: src.Name, source: data, root: root}, nil
}

// IsValid reports whether the backend holds a parsed tree.
func (b *MarkdownBackend) IsValid() bool { return b.root != nil }

// Close releases the parsed tree.
func (b *MarkdownBackend) Close() error {
	b.root = nil
	b.source = nil
	return nil
}

// Convert emits document items for the block-level markdown nodes.
func (b *MarkdownBackend) Convert() (*document.Document, error) {
	if b.root == nil {
		return nil, fmt.Errorf("markdown backend for %s is not valid", b.name)
	}
	doc := document.NewDocument(b.name)

	err := ast.Walk(b.root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Heading:
			label := document.LabelSectionHeader
			if node.Level == 1 {
				label = document.LabelTitle
			}
			addTextItem(doc, label, nodeText(node, b.source))
			return ast.WalkSkipChildren, nil
		case *ast.Paragraph:
			// Paragraphs nested in list items surface as list items.
			label := document.LabelText
			if _, inList := node.Parent().(*ast.ListItem); inList {
				label = document.LabelListItem
			}
			addParagraph(doc, label, node, b.source)
			return ast.WalkSkipChildren, nil
		case *ast.TextBlock:
			if _, inList := node.Parent().(*ast.ListItem); inList {
				addTextItem(doc, document.LabelListItem, nodeText(node, b.source))
				return ast.WalkSkipChildren, nil
			}
		case *ast.FencedCodeBlock:
			item := &document.Item{
				Label:        document.LabelCode,
				Text:         blockLines(node, b.source),
				CodeLanguage: string(node.Language(b.source)),
			}
			if item.Text != "" {
				doc.AddItem(item)
			}
			return ast.WalkSkipChildren, nil
		case *ast.CodeBlock:
			addTextItem(doc, document.LabelCode, blockLines(node, b.source))
			return ast.WalkSkipChildren, nil
		case *ast.Image:
			doc.AddItem(&document.Item{
				Label:       document.LabelPicture,
				Description: nodeText(node, b.source),
			})
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk markdown %s: %w", b.name, err)
	}
	return doc, nil
}

// addParagraph emits a paragraph's inline images as picture items and
// whatever text remains as one item with the given label.
func addParagraph(doc *document.Document, label document.ElementLabel, n ast.Node, source []byte) {
	var sb strings.Builder
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		if img, ok := child.(*ast.Image); ok {
			doc.AddItem(&document.Item{
				Label:       document.LabelPicture,
				Description: nodeText(img, source),
			})
			continue
		}
		sb.WriteString(nodeText(child, source))
	}
	addTextItem(doc, label, sb.String())
}

// nodeText collects the raw text content beneath a node.
func nodeText(n ast.Node, source []byte) string {
	var sb strings.Builder
	_ = ast.Walk(n, func(child ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if t, ok := child.(*ast.Text); ok {
			sb.Write(t.Segment.Value(source))
			if t.SoftLineBreak() || t.HardLineBreak() {
				sb.WriteByte(' ')
			}
		}
		return ast.WalkContinue, nil
	})
	return sb.String()
}

// blockLines joins the literal lines of a code block.
func blockLines(n ast.Node, source []byte) string {
	var sb strings.Builder
	lines := n.Lines()
	for i := range lines.Len() {
		seg := lines.At(i)
		sb.Write(seg.Value(source))
	}
	return strings.TrimRight(sb.String(), "\n")
}

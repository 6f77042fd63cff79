package content

import (
	"bytes"

	"github.com/PuerkitoBio/goquery"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// PlainText renders Markdown to HTML and returns the document's visible text.
func PlainText(md []byte) (string, error) {
	var html bytes.Buffer
	if err := markdown.Convert(md, &html); err != nil {
		return "", err
	}

	doc, err := goquery.NewDocumentFromReader(&html)
	if err != nil {
		return "", err
	}
	doc.Find("script, style").Remove()

	return doc.Text(), nil
}

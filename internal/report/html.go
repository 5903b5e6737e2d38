package report

import (
	"bytes"
	"fmt"

	"github.com/camtrap-arena/duelrank/internal/leaderboard"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

const htmlHead = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Camera trap arena leaderboard</title>
<style>
body { font-family: system-ui, sans-serif; margin: 2rem; }
table { border-collapse: collapse; margin-bottom: 1.5rem; }
th, td { border: 1px solid #ccc; padding: 0.25rem 0.6rem; text-align: left; }
</style>
</head>
<body>
`

const htmlTail = "</body>\n</html>\n"

// HTML renders the Markdown report to a standalone HTML page.
func HTML(b *leaderboard.Board) (string, error) {
	return HTMLPage(Markdown(b))
}

// HTMLPage converts GitHub-flavored Markdown tables into a standalone page.
func HTMLPage(markdown string) (string, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))

	var buf bytes.Buffer
	buf.WriteString(htmlHead)
	if err := md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("rendering html: %w", err)
	}
	buf.WriteString(htmlTail)
	return buf.String(), nil
}

package report

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

const styleCSS = `body{font-family:Georgia,serif;max-width:860px;margin:0 auto;padding:1.5rem;color:#1c1917;background:#fff;}
h1{border-bottom:2px solid #92400e;padding-bottom:0.3rem;}
h2{font-family:Helvetica,Arial,sans-serif;font-weight:700;margin-top:1.6rem;}
table{width:100%;border-collapse:collapse;font-size:0.85rem;margin:0.6rem 0;}
th,td{border:1px solid #a8a29e;padding:0.35rem 0.45rem;text-align:left;vertical-align:top;}
thead th{background:#f1f5f9;font-weight:700;}
blockquote{border-left:3px solid #fcd34d;margin:0.5rem 0;padding:0.2rem 0.8rem;color:#44403c;background:#fffbeb;}
code{background:#f5f5f4;padding:0.1rem 0.25rem;border-radius:3px;font-size:0.85em;}`

// RenderHTML converts a markdown report into a self-contained HTML page.
func RenderHTML(markdown string) (string, error) {
	var content strings.Builder
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	if err := md.Convert([]byte(markdown), &content); err != nil {
		return "", fmt.Errorf("markdown convert: %w", err)
	}
	return "<!doctype html><html><head><meta charset='utf-8'><title>Pricing Simulation Report</title>" +
		"<style>" + styleCSS + "</style></head><body>" +
		content.String() +
		"</body></html>", nil
}

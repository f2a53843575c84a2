package report

import (
	"strings"
	"testing"
)

func TestRenderHTMLConvertsTables(t *testing.T) {
	md := "# Title\n\n| A | B |\n|---|---|\n| 1 | 2 |\n"
	html, err := RenderHTML(md)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(html, "<table>") {
		t.Error("GFM table not converted")
	}
	if !strings.Contains(html, "<h1") {
		t.Error("heading not converted")
	}
	if !strings.HasPrefix(html, "<!doctype html>") {
		t.Error("not a full document")
	}
	if !strings.Contains(html, "<style>") {
		t.Error("inline style missing")
	}
}

func TestRenderHTMLBlockquotes(t *testing.T) {
	html, err := RenderHTML("> a customer comment\n")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(html, "<blockquote>") {
		t.Error("blockquote not converted")
	}
}

package ingest

import (
	"strings"

	"golang.org/x/net/html"
)

// ExtractLineup はフィード項目のHTML本文から出演アーティスト名を抽出する。
// パートナーフィードの本文は出演者を<li>要素で列挙する慣習のため、
// <li>のテキストを収集する。重複と空文字列は除外される。
// <li>が1つも無い場合は空スライスを返す。
func ExtractLineup(rawHTML string) []string {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return nil
	}

	var names []string
	seen := make(map[string]bool)

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "li" {
			name := strings.TrimSpace(nodeText(n))
			if name != "" && !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return names
}

// nodeText はノード配下のテキストを連結して返す。
func nodeText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(nodeText(c))
	}
	return b.String()
}

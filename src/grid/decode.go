// backend/src/grid/decode.go
package grid

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
	"golang.org/x/net/html"
)

// ErrDecode marks a spreadsheet that cannot be turned into a grid at all.
// This is the only fatal error kind the adapter produces; everything else
// about a messy export is absorbed downstream.
var ErrDecode = errors.New("grid: unable to decode spreadsheet")

const xlsCodepage = "utf-8"

var (
	zipMagic = []byte{0x50, 0x4B, 0x03, 0x04}
	oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// Decode sniffs the actual file content and produces a grid. POS systems
// are sloppy about extensions: ".xls" exports are frequently HTML tables,
// so detection goes by magic bytes first and extension last.
func Decode(data []byte, filename string) (*Grid, error) {
	switch {
	case bytes.HasPrefix(data, zipMagic):
		return decodeXLSX(data)
	case bytes.HasPrefix(data, oleMagic):
		return decodeXLS(data)
	case looksLikeHTML(data):
		return decodeHTMLTable(data)
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx":
		return decodeXLSX(data)
	case ".xls":
		return decodeXLS(data)
	}
	return nil, fmt.Errorf("%w: unrecognized content in %q", ErrDecode, filename)
}

func looksLikeHTML(data []byte) bool {
	head := data
	if len(head) > 1024 {
		head = head[:1024]
	}
	lower := bytes.ToLower(head)
	return bytes.Contains(lower, []byte("<html")) || bytes.Contains(lower, []byte("<table"))
}

func decodeXLSX(data []byte) (*Grid, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: xlsx: %v", ErrDecode, err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("%w: xlsx has no sheets", ErrDecode)
	}
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("%w: xlsx rows: %v", ErrDecode, err)
	}
	return FromStrings(rows), nil
}

func decodeXLS(data []byte) (*Grid, error) {
	workbook, err := xls.OpenReader(bytes.NewReader(data), xlsCodepage)
	if err != nil {
		return nil, fmt.Errorf("%w: xls: %v", ErrDecode, err)
	}
	rows := workbook.ReadAllCells(100000)
	return FromStrings(rows), nil
}

// decodeHTMLTable reads the first <table> of an HTML document, one grid
// row per <tr>, one cell per <td>/<th>. Mirrors the lxml fallback the
// original export path relied on.
func decodeHTMLTable(data []byte) (*Grid, error) {
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: html: %v", ErrDecode, err)
	}

	table := findFirst(doc, "table")
	if table == nil {
		return nil, fmt.Errorf("%w: html document contains no table", ErrDecode)
	}

	var rows [][]string
	var walkRows func(n *html.Node)
	walkRows = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "tr" {
			var row []string
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
					row = append(row, nodeText(c))
				}
			}
			rows = append(rows, row)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walkRows(c)
		}
	}
	walkRows(table)
	return FromStrings(rows), nil
}

func findFirst(n *html.Node, name string) *html.Node {
	if n.Type == html.ElementNode && n.Data == name {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, name); found != nil {
			return found
		}
	}
	return nil
}

func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(sb.String())
}

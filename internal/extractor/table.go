package extractor

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// parseTable converts a table element into header and row data. The second
// return value is false when the table has no data rows.
//
// Headers come from the first thead row, or from the first table row when it
// holds only th cells. Data rows come from tbody when present (minus a header
// row found there), otherwise from every row except the header row.
func parseTable(table *goquery.Selection) (Table, bool) {
	result := Table{
		Caption: selectionText(table.ChildrenFiltered("caption").First()),
		Headers: []string{},
		Rows:    [][]Cell{},
	}

	rows := ownRows(table)
	var headerRow *goquery.Selection

	if thead := table.ChildrenFiltered("thead").First(); thead.Length() > 0 {
		if first := thead.ChildrenFiltered("tr").First(); first.Length() > 0 {
			headerRow = first
		}
	} else if len(rows) > 0 && isHeaderOnlyRow(rows[0]) {
		headerRow = rows[0]
	}

	if headerRow != nil {
		headerRow.ChildrenFiltered("th, td").Each(func(_ int, cell *goquery.Selection) {
			result.Headers = append(result.Headers, selectionText(cell))
		})
	}

	var dataRows []*goquery.Selection
	if tbody := table.ChildrenFiltered("tbody"); tbody.Length() > 0 {
		tbody.ChildrenFiltered("tr").Each(func(_ int, tr *goquery.Selection) {
			dataRows = append(dataRows, tr)
		})
	} else {
		dataRows = rows
	}

	for _, tr := range dataRows {
		if headerRow != nil && tr.IsSelection(headerRow) {
			continue
		}
		var cells []Cell
		tr.ChildrenFiltered("th, td").Each(func(_ int, cell *goquery.Selection) {
			cells = append(cells, Cell{
				Text:    selectionText(cell),
				Colspan: spanValue(cell, "colspan"),
				Rowspan: spanValue(cell, "rowspan"),
			})
		})
		if len(cells) > 0 {
			result.Rows = append(result.Rows, cells)
		}
	}

	return result, len(result.Rows) > 0
}

// ownRows lists the rows of this table in order, skipping nested tables.
func ownRows(table *goquery.Selection) []*goquery.Selection {
	var rows []*goquery.Selection
	table.Children().Each(func(_ int, child *goquery.Selection) {
		switch goquery.NodeName(child) {
		case "tr":
			rows = append(rows, child)
		case "thead", "tbody", "tfoot":
			child.ChildrenFiltered("tr").Each(func(_ int, tr *goquery.Selection) {
				rows = append(rows, tr)
			})
		}
	})
	return rows
}

func isHeaderOnlyRow(tr *goquery.Selection) bool {
	cells := tr.ChildrenFiltered("th, td")
	return cells.Length() > 0 && cells.Length() == tr.ChildrenFiltered("th").Length()
}

// spanValue parses a positive span attribute, defaulting to 1.
func spanValue(cell *goquery.Selection, attr string) int {
	raw, ok := cell.Attr(attr)
	if !ok {
		return 1
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

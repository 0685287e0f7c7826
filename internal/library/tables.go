package library

import (
	"regexp"
	"strings"

	"github.com/dronebassan/pdf-parser-pro-v5-sub000/internal/extract"
)

var columnGap = regexp.MustCompile(`\s{2,}`)

// tablesFromLayout detects column-aligned tables in `pdftotext -layout`
// output. Consecutive lines that split into the same number of columns (two
// or more) are treated as one table; the first line is its header row.
func tablesFromLayout(text string) []extract.Table {
	var tables []extract.Table
	for pageIdx, pageText := range strings.Split(text, "\f") {
		var run [][]string
		number := 0

		flush := func() {
			if len(run) >= 2 {
				number++
				tables = append(tables, extract.Table{
					Page:    pageIdx + 1,
					Number:  number,
					Headers: run[0],
					Rows:    run[1:],
				})
			}
			run = nil
		}

		for _, line := range strings.Split(pageText, "\n") {
			cells := splitColumns(line)
			if len(cells) < 2 {
				flush()
				continue
			}
			if len(run) > 0 && len(cells) != len(run[len(run)-1]) {
				flush()
			}
			run = append(run, cells)
		}
		flush()
	}
	return tables
}

func splitColumns(line string) []string {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return nil
	}
	parts := columnGap.Split(trimmed, -1)
	cells := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			cells = append(cells, p)
		}
	}
	return cells
}

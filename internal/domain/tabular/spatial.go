package tabular

import (
	"sort"
	"strings"
)

// TextItem is one positioned text fragment from a PDF page, produced by an
// external text-layout collaborator. X/Y are page coordinates with Y
// growing downward; Width is the rendered width of the fragment.
type TextItem struct {
	Text  string
	X     float64
	Y     float64
	Width float64
}

// lineTolerance is the vertical distance within which two fragments are
// considered part of the same visual line.
const lineTolerance = 3.0

// ExtractTable clusters positioned text fragments into a header row plus
// data rows. The first visual line becomes the header; every later
// fragment is assigned to the column whose header is horizontally nearest.
// Confidence reflects how cleanly the fragments fit that grid.
func ExtractTable(items []TextItem) *TableData {
	table := &TableData{}
	if len(items) == 0 {
		return table
	}

	lines := clusterLines(items)
	if len(lines) == 0 {
		return table
	}

	headerLine := lines[0]
	centers := make([]float64, 0, len(headerLine))
	for _, item := range headerLine {
		header := strings.TrimSpace(item.Text)
		if header == "" {
			continue
		}
		table.Headers = append(table.Headers, header)
		centers = append(centers, item.X+item.Width/2)
	}
	if len(table.Headers) == 0 {
		return table
	}

	totalCells := 0
	collisions := 0
	overflowRows := 0

	for _, line := range lines[1:] {
		row := make(Row, len(table.Headers))
		if len(line) > len(table.Headers) {
			overflowRows++
		}
		for _, item := range line {
			text := strings.TrimSpace(item.Text)
			if text == "" {
				continue
			}
			totalCells++
			col := table.Headers[nearestColumn(centers, item.X+item.Width/2)]
			if row[col] != "" {
				// Two fragments fell into one column; join and note the miss.
				row[col] = row[col] + " " + text
				collisions++
				continue
			}
			row[col] = text
		}
		if len(row) > 0 {
			table.Rows = append(table.Rows, row)
		}
	}

	table.Confidence = scoreExtraction(totalCells, collisions, len(table.Rows), overflowRows)
	return table
}

// clusterLines groups fragments into visual lines by Y proximity and sorts
// each line left to right.
func clusterLines(items []TextItem) [][]TextItem {
	sorted := make([]TextItem, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Y != sorted[j].Y {
			return sorted[i].Y < sorted[j].Y
		}
		return sorted[i].X < sorted[j].X
	})

	var lines [][]TextItem
	var current []TextItem
	anchorY := 0.0

	for _, item := range sorted {
		if len(current) == 0 || item.Y-anchorY <= lineTolerance {
			if len(current) == 0 {
				anchorY = item.Y
			}
			current = append(current, item)
			continue
		}
		lines = append(lines, current)
		current = []TextItem{item}
		anchorY = item.Y
	}
	if len(current) > 0 {
		lines = append(lines, current)
	}

	for _, line := range lines {
		sort.SliceStable(line, func(i, j int) bool { return line[i].X < line[j].X })
	}
	return lines
}

func nearestColumn(centers []float64, x float64) int {
	best := 0
	bestDist := abs(centers[0] - x)
	for i := 1; i < len(centers); i++ {
		if d := abs(centers[i] - x); d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best
}

func scoreExtraction(totalCells, collisions, rows, overflowRows int) float64 {
	if totalCells == 0 || rows == 0 {
		return 0
	}
	cellScore := float64(totalCells-collisions) / float64(totalCells)
	shapeScore := float64(rows-overflowRows) / float64(rows)
	score := 0.5*cellScore + 0.5*shapeScore
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

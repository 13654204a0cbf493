package raster

// RowRange is a half-open [Start, End) band of grid rows.
type RowRange struct {
	Start, End int
}

// PartitionRows splits rows into at most parts contiguous bands of
// near-equal size, for fan-out across workers.
func PartitionRows(rows, parts int) []RowRange {
	if parts < 1 {
		parts = 1
	}
	if parts > rows {
		parts = rows
	}
	out := make([]RowRange, 0, parts)
	size := rows / parts
	extra := rows % parts
	start := 0
	for i := 0; i < parts; i++ {
		end := start + size
		if i < extra {
			end++
		}
		out = append(out, RowRange{Start: start, End: end})
		start = end
	}
	return out
}

package cli

// direction is an arrow-key movement across the element grid.
type direction int

const (
	dirUp direction = iota
	dirDown
	dirLeft
	dirRight
)

// focus addresses one editable cell: a visible row and a column.
type focus struct {
	Row int
	Col int
}

// nextFocus moves cur one step in dir over a grid whose rows list which
// cells accept focus. Disabled cells are skipped: horizontal moves keep
// their direction, vertical moves continue leftwards along the target row.
// Moving left off the first column lands on the last column of the previous
// row; moving right off the last column lands on the first column of the
// next row. When nothing focusable lies in that direction, cur is returned.
func nextFocus(cur focus, dir direction, rows [][]bool) focus {
	limit := 1
	for _, r := range rows {
		limit += len(r)
	}

	pos := cur
	for range limit {
		next, ok := step(pos, dir, rows)
		if !ok {
			return cur
		}
		if cellEnabled(rows, next) {
			return next
		}
		if dir == dirUp || dir == dirDown {
			dir = dirLeft
		}
		pos = next
	}
	return cur
}

func step(pos focus, dir direction, rows [][]bool) (focus, bool) {
	if pos.Row < 0 || pos.Row >= len(rows) {
		return pos, false
	}
	switch dir {
	case dirUp:
		if pos.Row == 0 {
			return pos, false
		}
		return focus{Row: pos.Row - 1, Col: min(pos.Col, len(rows[pos.Row-1])-1)}, true
	case dirDown:
		if pos.Row == len(rows)-1 {
			return pos, false
		}
		return focus{Row: pos.Row + 1, Col: min(pos.Col, len(rows[pos.Row+1])-1)}, true
	case dirLeft:
		if pos.Col > 0 {
			return focus{Row: pos.Row, Col: pos.Col - 1}, true
		}
		if pos.Row == 0 {
			return pos, false
		}
		return focus{Row: pos.Row - 1, Col: len(rows[pos.Row-1]) - 1}, true
	case dirRight:
		if pos.Col < len(rows[pos.Row])-1 {
			return focus{Row: pos.Row, Col: pos.Col + 1}, true
		}
		if pos.Row == len(rows)-1 {
			return pos, false
		}
		return focus{Row: pos.Row + 1, Col: 0}, true
	}
	return pos, false
}

func cellEnabled(rows [][]bool, f focus) bool {
	if f.Row < 0 || f.Row >= len(rows) || f.Col < 0 || f.Col >= len(rows[f.Row]) {
		return false
	}
	return rows[f.Row][f.Col]
}

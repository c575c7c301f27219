package tui

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"studio-booking-cli/model"
	"studio-booking-cli/service"
)

const (
	tokenAvailable = "[]"
	tokenTaken     = "XX"
	tokenSelected  = "**"
	tokenConflict  = "!!"
)

type seatCell struct {
	seat    model.Seat
	present bool
	token   string
	label   string
	cursor  bool
}

// seatColumn is the grid column of a seat: the number in its label, or its
// position for seats whose label does not parse.
func seatColumn(seat model.Seat, index int) int {
	if _, col, err := service.ParseSeatLabel(seat.Label); err == nil && col > 0 {
		return col
	}
	return index + 1
}

func (m appModel) seatToken(seat model.Seat) string {
	selected := m.checkout.State().Has(seat.ID)
	switch {
	case selected && !seat.Available:
		return tokenConflict
	case selected:
		return tokenSelected
	case !seat.Available:
		return tokenTaken
	default:
		return tokenAvailable
	}
}

// cursorSeat returns the seat under the cursor.
func (m appModel) cursorSeat() (model.Seat, bool) {
	if m.cursorRow < 0 || m.cursorRow >= len(m.rows) {
		return model.Seat{}, false
	}
	row := m.rows[m.cursorRow]
	if m.cursorCol < 0 || m.cursorCol >= len(row.Seats) {
		return model.Seat{}, false
	}
	return row.Seats[m.cursorCol], true
}

func (m *appModel) moveCursor(dRow int, dCol int) {
	if len(m.rows) == 0 {
		return
	}
	m.cursorRow = clamp(m.cursorRow+dRow, 0, len(m.rows)-1)
	m.cursorCol = clamp(m.cursorCol+dCol, 0, len(m.rows[m.cursorRow].Seats)-1)
}

func clamp(v int, lo int, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func (m appModel) renderSeatMap() string {
	if len(m.rows) == 0 {
		return "No seats in this studio."
	}

	maxCol := 0
	rowWidth := 2
	grid := make([]map[int]seatCell, len(m.rows))
	for r, row := range m.rows {
		grid[r] = map[int]seatCell{}
		if len(row.Row) > rowWidth {
			rowWidth = len(row.Row)
		}
		for i, seat := range row.Seats {
			col := seatColumn(seat, i)
			maxCol = max(maxCol, col)
			grid[r][col] = seatCell{
				seat:    seat,
				present: true,
				token:   m.seatToken(seat),
				label:   strconv.Itoa(col),
				cursor:  r == m.cursorRow && i == m.cursorCol,
			}
		}
	}

	cellWidth := 2
	if m.showSeatNumbers {
		cellWidth = max(cellWidth, len(strconv.Itoa(maxCol)))
	}

	seatStyleAvailable := lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	seatStyleTaken := lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	seatStyleSelected := lipgloss.NewStyle().Foreground(lipgloss.Color("5")).Bold(true)
	seatStyleConflict := lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	cursorStyle := lipgloss.NewStyle().Reverse(true)

	var b strings.Builder
	for r, row := range m.rows {
		b.WriteString(fmt.Sprintf("%*s ", rowWidth, row.Row))
		for c := 1; c <= maxCol; c++ {
			cell := grid[r][c]
			text := cell.token
			if m.showSeatNumbers && cell.present && cell.token == tokenAvailable {
				text = cell.label
			}
			rendered := padCell(text, cellWidth)
			switch cell.token {
			case tokenAvailable:
				rendered = seatStyleAvailable.Render(rendered)
			case tokenTaken:
				rendered = seatStyleTaken.Render(rendered)
			case tokenSelected:
				rendered = seatStyleSelected.Render(rendered)
			case tokenConflict:
				rendered = seatStyleConflict.Render(rendered)
			}
			if cell.cursor {
				rendered = cursorStyle.Render(rendered)
			}
			b.WriteString(rendered)
			if c < maxCol {
				b.WriteString(" ")
			}
		}
		b.WriteString(fmt.Sprintf(" %*s\n", rowWidth, row.Row))
	}

	gridWidth := maxCol*(cellWidth+1) - 1
	screenStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("0")).
		Background(lipgloss.Color("214"))
	screenBorderStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("214")).
		Background(lipgloss.Color("236"))

	screenBar := screenBarBlock(gridWidth, "SCREEN")
	indent := strings.Repeat(" ", rowWidth+1)

	b.WriteString("\n")
	b.WriteString(indent + screenBorderStyle.Render(screenBar.top) + "\n")
	b.WriteString(indent + screenStyle.Render(screenBar.mid) + "\n")
	b.WriteString(indent + screenBorderStyle.Render(screenBar.bot) + "\n\n")

	counts := countSeats(m.seats, m.checkout.State().Has)
	legend := "Legend: [] available • XX taken • ** selected • !! selected but taken"
	summary := fmt.Sprintf("Available: %d • Pairs: %d • Taken: %d • Selected: %d • Total: %d",
		counts.available, counts.pairs, counts.taken, counts.selected, counts.total)

	lines := []string{b.String() + hint(legend), hint(summary)}
	if seat, ok := m.cursorSeat(); ok {
		status := "available"
		if !seat.Available {
			status = "taken"
		}
		lines = append(lines, hint(fmt.Sprintf("Cursor: %s (%s)", seat.Label, status)))
	}
	if labels := m.selectedLabels(); len(labels) > 0 {
		lines = append(lines, lipgloss.NewStyle().Bold(true).Render("Selected: "+strings.Join(labels, ", ")))
	}
	return strings.Join(lines, "\n")
}

// selectedLabels lists the selected seats by label, falling back to ids for
// seats missing from the current availability read.
func (m appModel) selectedLabels() []string {
	index := service.SeatIndex(m.seats)
	ids := m.checkout.State().Seats()
	labels := make([]string, 0, len(ids))
	for _, id := range ids {
		if seat, ok := index[id]; ok && seat.Label != "" {
			labels = append(labels, seat.Label)
			continue
		}
		labels = append(labels, fmt.Sprintf("#%d", id))
	}
	return labels
}

type seatCount struct {
	available int
	taken     int
	selected  int
	total     int
	pairs     int
}

func countSeats(seats []model.Seat, selected func(int64) bool) seatCount {
	var count seatCount
	cols := map[string][]int{}
	for _, seat := range seats {
		count.total++
		if selected(seat.ID) {
			count.selected++
		}
		if !seat.Available {
			count.taken++
			continue
		}
		count.available++
		if row, col, err := service.ParseSeatLabel(seat.Label); err == nil {
			cols[row] = append(cols[row], col)
		}
	}
	count.pairs = countAdjacentPairsFromCols(cols)
	return count
}

// countAdjacentPairsFromCols counts disjoint pairs of neighbouring free seats.
func countAdjacentPairsFromCols(cols map[string][]int) int {
	count := 0
	for _, list := range cols {
		if len(list) == 0 {
			continue
		}
		sort.Ints(list)
		for i := 0; i < len(list)-1; {
			if list[i]+1 == list[i+1] {
				count++
				i += 2
				continue
			}
			i++
		}
	}
	return count
}

func padCell(text string, width int) string {
	if width <= 0 {
		return ""
	}
	if text == "" {
		return strings.Repeat(" ", width)
	}
	if len(text) >= width {
		return text[:width]
	}
	padding := width - len(text)
	left := padding / 2
	right := padding - left
	return strings.Repeat(" ", left) + text + strings.Repeat(" ", right)
}

type screenBlock struct {
	top string
	mid string
	bot string
}

func screenBarBlock(width int, label string) screenBlock {
	if width < len(label)+4 {
		width = len(label) + 4
	}
	if width < 10 {
		width = 10
	}

	border := "╭" + strings.Repeat("─", width-2) + "╮"
	bottom := "╰" + strings.Repeat("─", width-2) + "╯"

	labelText := " " + label + " "
	padding := width - len(labelText) - 2
	left := padding / 2
	right := padding - left
	mid := "│" + strings.Repeat(" ", left) + labelText + strings.Repeat(" ", right) + "│"
	return screenBlock{top: border, mid: mid, bot: bottom}
}

package component

import (
	"fmt"
	"strconv"

	"github.com/rivo/tview"

	"github.com/blume-tech/jetson-app/internal/camera"
	"github.com/blume-tech/jetson-app/internal/discovery"
	"github.com/blume-tech/jetson-app/internal/event"
	"github.com/blume-tech/jetson-app/internal/ui/style"
)

type EventTable struct {
	table         *tview.Table
	columnHeaders []string
	count         uint
	maxEvents     uint
}

func NewEventTable() *EventTable {
	columnHeaders := []string{
		"NO",
		"EVENT TYPE",
		"DETAILS",
	}

	return &EventTable{
		table:         createTable("events", columnHeaders),
		columnHeaders: columnHeaders,
		count:         0,
		maxEvents:     50,
	}
}

func (t *EventTable) Primitive() tview.Primitive {
	return t.table
}

func (t *EventTable) UpdateTable(evt event.Event) {
	t.count++

	countStr := strconv.Itoa(int(t.count))

	row := []string{countStr, string(evt.Type), describe(evt)}
	rowIdx := t.table.GetRowCount()

	for col, text := range row {
		cell := tview.NewTableCell(text)
		cell.SetExpansion(1)
		cell.SetAlign(tview.AlignLeft)
		cell.SetTextColor(style.ColorWhite)
		t.table.SetCell(rowIdx, col, cell)
	}

	if t.count > t.maxEvents {
		t.table.RemoveRow(2)
	}
}

// describe renders an event payload as a single detail cell
func describe(evt event.Event) string {
	switch payload := evt.Payload.(type) {
	case discovery.ScanStatus:
		return fmt.Sprintf(
			"scan %d: %s (%d/%d checked, %d found)",
			payload.ID,
			payload.State,
			payload.CandidatesChecked,
			payload.CandidatesTotal,
			payload.CamerasFound,
		)
	case []camera.Camera:
		return fmt.Sprintf("%d cameras in registry", len(payload))
	case error:
		return payload.Error()
	default:
		return fmt.Sprintf("%v", payload)
	}
}

package component

import (
	"strconv"

	"github.com/rivo/tview"

	"github.com/blume-tech/jetson-app/internal/camera"
	"github.com/blume-tech/jetson-app/internal/ui/style"
)

type CameraTable struct {
	table         *tview.Table
	columnHeaders []string
}

func NewCameraTable() *CameraTable {
	columnHeaders := []string{
		"IP",
		"PORT",
		"PROTOCOL",
		"MANUFACTURER",
		"URL",
		"DISCOVERED",
	}

	return &CameraTable{
		table:         createTable("cameras", columnHeaders),
		columnHeaders: columnHeaders,
	}
}

func (t *CameraTable) Primitive() tview.Primitive {
	return t.table
}

// UpdateTable replaces all rows with the given registry snapshot
func (t *CameraTable) UpdateTable(cameras []camera.Camera) {
	t.clearRows()

	for rowIdx, cam := range cameras {
		row := []string{
			cam.Host,
			strconv.Itoa(cam.Port),
			string(cam.Protocol),
			cam.Manufacturer,
			cam.URL,
			cam.DiscoveredAt.Format("2006-01-02 15:04:05"),
		}

		for col, text := range row {
			cell := tview.NewTableCell(text)
			cell.SetExpansion(1)
			cell.SetAlign(tview.AlignLeft)
			color := style.ColorWhite

			if text == string(camera.ProtocolRTSP) {
				color = style.ColorMediumGreen
			}

			if text == string(camera.ProtocolMJPEG) {
				color = style.ColorLightGreen
			}

			cell.SetTextColor(color)
			t.table.SetCell(rowIdx+2, col, cell)
		}
	}
}

func (t *CameraTable) clearRows() {
	count := t.table.GetRowCount()

	// skip header rows
	for i := count - 1; i >= 2; i-- {
		t.table.RemoveRow(i)
	}
}

package logconv

import (
	"fmt"
	"io"
	"time"

	"github.com/storecheck/storecheck/internal/meta"
	api "github.com/storecheck/storecheck/lib-storecheck"
	"github.com/xuri/excelize/v2"
)

const sheetName = "history"

func excelPos(x, y uint) string {
	pos, err := excelize.CoordinatesToCellName(int(x+1), int(y+1))
	if err != nil {
		panic(err)
	}
	return pos
}

var statusColors = map[api.Status]string{
	api.StatusHealthy:  "89C923",
	api.StatusDegraded: "DDA100",
	api.StatusDown:     "FF2D00",
}

func ToXlsx(w io.Writer, rs []api.Record, createdAt time.Time) error {
	xlsx := excelize.NewFile()
	defer xlsx.Close()
	if err := xlsx.SetSheetName("Sheet1", sheetName); err != nil {
		return err
	}

	xlsx.SetAppProps(&excelize.AppProperties{
		Application: "storecheck",
		AppVersion:  meta.Version,
	})
	xlsx.SetDocProps(&excelize.DocProperties{
		Created:        createdAt.Format(time.RFC3339),
		Modified:       createdAt.Format(time.RFC3339),
		Creator:        "storecheck",
		LastModifiedBy: "storecheck",
	})

	zone, _ := createdAt.Zone()
	for i, h := range []string{fmt.Sprintf("timestamp (%s)", zone), "id", "status", "latency", "diagnostic"} {
		xlsx.SetCellStr(sheetName, excelPos(uint(i), 0), h)
	}

	datefmt := "yyyy-mm-dd hh:mm:ss"
	latencyfmt := "#,##0 \"ms\""

	styles := make(map[string]int)
	style := func(color string, border int, format *string) int {
		key := fmt.Sprintf("%s/%d/%v", color, border, format != nil)
		if id, ok := styles[key]; ok {
			return id
		}
		id, _ := xlsx.NewStyle(&excelize.Style{
			CustomNumFmt: format,
			Border:       []excelize.Border{{Type: "bottom", Style: border, Color: color}},
		})
		styles[key] = id
		return id
	}

	setValue := func(x, y uint, value any, sid int) {
		pos := excelPos(x, y)
		xlsx.SetCellValue(sheetName, pos, value)
		xlsx.SetCellStyle(sheetName, pos, pos, sid)
	}

	for i, r := range rs {
		row := uint(i + 1)
		color := statusColors[r.Status]

		setValue(0, row, r.Timestamp.In(createdAt.Location()), style(color, 1, &datefmt))
		setValue(1, row, r.ID, style(color, 1, nil))
		setValue(2, row, r.Status.String(), style(color, 5, nil))
		setValue(3, row, r.Latency.Milliseconds(), style(color, 1, &latencyfmt))
		setValue(4, row, r.Diagnostic, style(color, 1, nil))
	}

	if err := xlsx.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return err
	}

	xlsx.SetColWidth(sheetName, "A", "A", 20)
	xlsx.SetColWidth(sheetName, "B", "B", 25)
	xlsx.SetColWidth(sheetName, "D", "D", 12)
	xlsx.SetColWidth(sheetName, "E", "E", 60)

	if err := xlsx.AutoFilter(sheetName, "A1:E1", nil); err != nil {
		return err
	}

	return xlsx.Write(w)
}

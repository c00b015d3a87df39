package report

import (
	"MissionLaunches/src/processor"
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Console 控制台文本报表
type Console struct {
	w       io.Writer
	printer *message.Printer
}

// NewConsole 数字按英文习惯输出千位分隔符
func NewConsole(w io.Writer) *Console {
	return &Console{w: w, printer: message.NewPrinter(language.English)}
}

func (c *Console) table(header []string) *tablewriter.Table {
	t := tablewriter.NewWriter(c.w)
	t.SetHeader(header)
	t.SetAutoFormatHeaders(false)
	return t
}

// PrintSummary 数据集概况：行列数、空值、重复行、列名
func (c *Console) PrintSummary(s processor.DataSummary) {
	c.printer.Fprintf(c.w, "Amount of rows and columns: (%d, %d)\n", s.Rows, s.Cols)
	fmt.Fprintf(c.w, "Nan: %t\n", s.HasMissing)
	c.printer.Fprintf(c.w, "Duplicates: %t (%d rows)\n", s.HasDuplicates, s.Duplicates)
	fmt.Fprintf(c.w, "Columns Names: %s\n", strings.Join(s.Columns, ", "))

	if !s.HasMissing {
		return
	}
	t := c.table([]string{"Column", "Missing"})
	t.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT})
	for _, col := range s.Columns {
		if n := s.MissingByCol[col]; n > 0 {
			t.Append([]string{col, c.printer.Sprintf("%d", n)})
		}
	}
	t.Render()
}

// PrintValueCounts 某列取值计数
func (c *Console) PrintValueCounts(col string, rows processor.CountRows) {
	t := c.table([]string{col, "Count"})
	t.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT})
	for _, r := range rows {
		t.Append([]string{r.Key, c.printer.Sprintf("%d", r.Count)})
	}
	t.SetFooter([]string{"Total", c.printer.Sprintf("%d", rows.Total())})
	t.Render()
}

// PrintSpending 组织总花费表，单位百万美元
func (c *Console) PrintSpending(rows processor.Spendings) {
	t := c.table([]string{"Organization", "Price"})
	t.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT})
	for _, r := range rows {
		t.Append([]string{r.Organization, c.printer.Sprintf("%.2f", r.Total)})
	}
	t.Render()
}

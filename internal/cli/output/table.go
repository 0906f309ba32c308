package output

import (
	"io"

	"github.com/olekukonko/tablewriter"
)

// TableSource supplies the headers and rows a result type wants shown
// in table format.
type TableSource interface {
	Headers() []string
	Rows() [][]string
}

// newTable returns a tablewriter configured for borderless kubectl-style
// output. Callers adjust header formatting and separators as needed.
func newTable(w io.Writer) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("  ")
	table.SetNoWhiteSpace(true)
	return table
}

// PrintTable renders data with upper-cased column headers.
func PrintTable(w io.Writer, data TableSource) error {
	table := newTable(w)
	table.SetAutoFormatHeaders(true)
	table.SetHeader(data.Headers())

	for _, row := range data.Rows() {
		table.Append(row)
	}

	table.Render()
	return nil
}

// TableData builds an ad-hoc TableSource for commands without a
// dedicated result type.
type TableData struct {
	headers []string
	rows    [][]string
}

// NewTableData starts an empty table with the given column headers.
func NewTableData(headers ...string) *TableData {
	return &TableData{headers: headers}
}

// AddRow appends one row of cells.
func (t *TableData) AddRow(row ...string) {
	t.rows = append(t.rows, row)
}

func (t *TableData) Headers() []string {
	return t.headers
}

func (t *TableData) Rows() [][]string {
	return t.rows
}

// KeyValueTable prints a two-column key: value table without headers,
// used for single resources and command summaries.
func KeyValueTable(w io.Writer, rows [][2]string) error {
	table := newTable(w)
	table.SetAutoFormatHeaders(false)
	table.SetColumnSeparator(":")

	for _, kv := range rows {
		table.Append([]string{kv[0], kv[1]})
	}

	table.Render()
	return nil
}

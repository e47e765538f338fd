package export

// Table is a titled block of rows sharing one header line.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// Document groups tables rendered one after another.
type Document struct {
	Title    string
	Subtitle string
	Tables   []Table
}

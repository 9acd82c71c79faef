package parser

// DataMarker is the literal token that separates the metadata header from the
// numeric payload of an IDF file.
const DataMarker = "primary_data"

// Header key tokens recognised by the metadata scanner.
const (
	keyMethod    = "Method="
	keyTechnique = "Technique="
	keyTitle     = "Title="
	keyStages    = "Stages="
	keyInterval  = "Interval time="

	// titleWindow is how far into a line the title token may appear.
	titleWindow = 6
)

// Metadata holds the header fields recovered from an IDF file.
// Every field is optional; absent fields keep their zero value (or nil).
type Metadata struct {
	Method    string
	Technique string
	Title     string
	Stages    *int     // nil when the header carries no Stages line
	Interval  *float64 // seconds; nil when absent
	Columns   int      // nominal column count from the data block
	Points    int      // number of samples in the data block
}

// DataBlockDescriptor carries the two integers that govern the payload.
type DataBlockDescriptor struct {
	ColumnCount int
	PointCount  int
}

// SampleTriple is one payload line: time followed by two measurement columns.
type SampleTriple [3]float64

// DataBlock is the decoded numeric payload, in file order.
type DataBlock struct {
	DataBlockDescriptor
	Samples []SampleTriple
}

// IDFFile is the result of a complete parse of one instrument file.
type IDFFile struct {
	Metadata    Metadata
	MarkerIndex int // zero-based line index of the data marker
	Block       DataBlock
}

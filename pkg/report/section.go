package report

// SectionKind tags a section node for the renderer.
type SectionKind int

const (
	SectionHeader SectionKind = iota
	SectionKeyValue
	SectionList
	SectionText
)

// Section is one abstract block of a generated report. The engine emits an
// ordered slice of these; markup conversion belongs to the presentation layer.
type Section struct {
	Kind  SectionKind
	Label string
	Value string
}

func Header(text string) Section {
	return Section{Kind: SectionHeader, Value: text}
}

func KeyValue(label, value string) Section {
	return Section{Kind: SectionKeyValue, Label: label, Value: value}
}

func List(text string) Section {
	return Section{Kind: SectionList, Value: text}
}

func Text(text string) Section {
	return Section{Kind: SectionText, Value: text}
}

// Blank separates report blocks with an empty line.
func Blank() Section {
	return Text("")
}

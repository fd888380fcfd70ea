package models

// Kind selects the query a command runs.
type Kind int

const (
	KindUnknown Kind = iota
	KindLocate
	KindCompare
	KindMode
)

// Command verbs as they appear in the command stream.
const (
	VerbSearch = "search"
	VerbDiff   = "diff"
	VerbMode   = "mode"
)

// String returns the command-stream verb for k.
func (k Kind) String() string {
	switch k {
	case KindLocate:
		return VerbSearch
	case KindCompare:
		return VerbDiff
	case KindMode:
		return VerbMode
	default:
		return "unknown"
	}
}

// Command is one parsed line of the command stream.
//
// Index is the 1-based position in the stream and is used only for
// report formatting. Args holds the verb arguments: the compact pattern
// for KindLocate, both names for KindCompare, the name for KindMode.
type Command struct {
	Index int
	Kind  Kind
	Args  []string
	Raw   string
}

// Locate builds a search command.
func Locate(index int, pattern string) Command {
	return Command{Index: index, Kind: KindLocate, Args: []string{pattern}}
}

// Compare builds a diff command.
func Compare(index int, nameA, nameB string) Command {
	return Command{Index: index, Kind: KindCompare, Args: []string{nameA, nameB}}
}

// Mode builds a mode command.
func Mode(index int, name string) Command {
	return Command{Index: index, Kind: KindMode, Args: []string{name}}
}

// Unknown builds an unrecognized command.
func Unknown(index int, raw string) Command {
	return Command{Index: index, Kind: KindUnknown, Raw: raw}
}

// Arg returns the i-th argument or "" when absent.
func (c Command) Arg(i int) string {
	if i < 0 || i >= len(c.Args) {
		return ""
	}
	return c.Args[i]
}

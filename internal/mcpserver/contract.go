package mcpserver

// CommandFormat describes the command stream accepted by run_report and the
// layout of the report it returns.
const CommandFormat = `# genedata command format

One command per line. Fields are separated by a single TAB.

| Command | Fields | Answer |
|---------|--------|--------|
| search  | search<TAB>PATTERN | first record whose decoded formula contains the decoded PATTERN |
| diff    | diff<TAB>NAME_A<TAB>NAME_B | positional mismatches plus the length difference |
| mode    | mode<TAB>NAME | most frequent amino acid and its count; ties go to the smallest byte |

Anything else, including a known verb with too few fields or an empty line,
is reported as UNKNOWN COMMAND. Extra fields are ignored.

## Compact formulas

A digit N followed by a symbol stands for N copies of that symbol:
` + "`" + `3A2B` + "`" + ` decodes to ` + "`" + `AAABB` + "`" + `. Only one digit is read before a symbol.
A pattern ending on a digit is MALFORMED SEQUENCE.

## Report layout

The report opens with the label line and a line of 48 '=' characters.
Every command then adds one block, numbered from 001, closed by the same
separator line:

` + "```" + `
001 search AAB
organism                protein
Org1    P1
================================================
002 diff P1 P2
amino-acids difference: 1
================================================
003 mode P1
amino-acid occurs:
A 2
================================================
004 UNKNOWN COMMAND
================================================
` + "```" + `
`

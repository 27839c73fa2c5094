package parser

import (
	"regexp"
	"strings"

	"github.com/minisql/minisql/internal/types"
)

var (
	select_re = regexp.MustCompile(`(?i)^SELECT\s+(.+?)\s+FROM\s+(\w+)` +
		`(?:\s+INNER\s+JOIN\s+(\w+)\s+ON\s+(\w+)\.(\w+)\s*=\s*(\w+)\.(\w+))?` +
		`(?:\s+WHERE\s+(\w+)\s*=\s*(.+))?$`)
	insert_re = regexp.MustCompile(`(?i)^INSERT\s+INTO\s+(\w+)\s+VALUES\s*\((.+)\)$`)
	where_re  = regexp.MustCompile(`(?i)\bWHERE\b`)
	set_re    = regexp.MustCompile(`(?i)\bSET\b`)
)

// Parse converts raw statement text into a Command. It is pure and
// total: anything it cannot make sense of comes back as Unknown, blank
// input as Empty. Keywords match case-insensitively; identifiers are
// lowercased.
func Parse(query string) Command {
	raw := strings.TrimSpace(query)
	if raw == "" {
		return Empty{}
	}
	text := strings.TrimSpace(strings.TrimSuffix(raw, ";"))
	tokens := strings.Fields(text)
	keyword := strings.ToUpper(tokens[0])

	switch keyword {
	case "COMMIT":
		return Commit{}
	case "USE":
		if len(tokens) > 1 {
			return UseDatabase{Name: strings.ToLower(tokens[1])}
		}
		return Unknown{Raw: raw}
	case "INSERT":
		return parseInsert(text, raw)
	case "UPDATE":
		return parseUpdate(text, raw)
	case "DELETE":
		return parseDelete(text, raw)
	case "SELECT":
		return parseSelect(text, raw)
	}

	if len(tokens) > 2 {
		switch keyword + " " + strings.ToUpper(tokens[1]) {
		case "CREATE DATABASE":
			return CreateDatabase{Name: strings.ToLower(tokens[2])}
		case "ALTER DATABASE":
			return AlterDatabase{Name: strings.ToLower(tokens[2])}
		case "CREATE TABLE":
			return parseCreateTable(text, raw)
		case "ALTER TABLE":
			return parseAlterTable(tokens, raw)
		case "DROP TABLE":
			return DropTable{Table: strings.ToLower(tokens[2])}
		case "CREATE INDEX":
			if len(tokens) > 3 {
				return CreateIndex{Table: strings.ToLower(tokens[2]), Column: strings.ToLower(tokens[3])}
			}
		case "DROP INDEX":
			if len(tokens) > 3 {
				return DropIndex{Table: strings.ToLower(tokens[2]), Column: strings.ToLower(tokens[3])}
			}
		}
	}
	return Unknown{Raw: raw}
}

func parseCreateTable(text, raw string) Command {
	open := strings.Index(text, "(")
	if open < 0 {
		return Unknown{Raw: raw}
	}
	header := strings.Fields(text[:open])
	if len(header) < 3 {
		return Unknown{Raw: raw}
	}
	inner := text[open+1:]
	if close := strings.LastIndex(inner, ")"); close >= 0 {
		inner = inner[:close]
	}

	columns := []ColumnDef{}
	for _, chunk := range strings.Split(inner, ",") {
		parts := strings.Fields(chunk)
		if len(parts) == 0 {
			continue
		}
		col := ColumnDef{Name: strings.ToLower(parts[0]), Type: "TEXT"}
		if len(parts) > 1 {
			col.Type = strings.ToUpper(parts[1])
		}
		columns = append(columns, col)
	}
	return CreateTable{Table: strings.ToLower(header[2]), Columns: columns}
}

func parseAlterTable(tokens []string, raw string) Command {
	if len(tokens) < 6 ||
		strings.ToUpper(tokens[3]) != "ADD" || strings.ToUpper(tokens[4]) != "COLUMN" {
		return Unknown{Raw: raw}
	}
	col := ColumnDef{Name: strings.ToLower(tokens[5]), Type: "TEXT"}
	if len(tokens) > 6 {
		col.Type = strings.ToUpper(tokens[6])
	}
	return AddColumn{Table: strings.ToLower(tokens[2]), Column: col}
}

func parseInsert(text, raw string) Command {
	m := insert_re.FindStringSubmatch(text)
	if m == nil {
		return Unknown{Raw: raw}
	}
	values := []types.Value{}
	for _, part := range splitList(m[2]) {
		values = append(values, types.ParseLiteral(part))
	}
	return Insert{Table: strings.ToLower(m[1]), Values: values}
}

func parseUpdate(text, raw string) Command {
	prefix, where_part := splitKeyword(text, where_re)
	loc := set_re.FindStringIndex(prefix)
	if loc == nil {
		return Unknown{Raw: raw}
	}
	header := strings.Fields(prefix[:loc[0]])
	if len(header) < 2 {
		return Unknown{Raw: raw}
	}

	assignments := []Assignment{}
	for _, chunk := range splitList(prefix[loc[1]:]) {
		column, value, ok := strings.Cut(chunk, "=")
		if !ok {
			return Unknown{Raw: raw}
		}
		assignments = append(assignments, Assignment{
			Column: strings.ToLower(strings.TrimSpace(column)),
			Value:  types.ParseLiteral(value),
		})
	}

	where, ok := parseCondition(where_part)
	if !ok {
		return Unknown{Raw: raw}
	}
	return Update{Table: strings.ToLower(header[1]), Assignments: assignments, Where: where}
}

func parseDelete(text, raw string) Command {
	prefix, where_part := splitKeyword(text, where_re)
	tokens := strings.Fields(prefix)
	if len(tokens) < 3 {
		return Unknown{Raw: raw}
	}
	where, ok := parseCondition(where_part)
	if !ok {
		return Unknown{Raw: raw}
	}
	return Delete{Table: strings.ToLower(tokens[2]), Where: where}
}

func parseSelect(text, raw string) Command {
	m := select_re.FindStringSubmatch(text)
	if m == nil {
		return Unknown{Raw: raw}
	}

	columns := []string{}
	for _, col := range strings.Split(m[1], ",") {
		columns = append(columns, strings.TrimSpace(col))
	}

	cmd := Select{Table: strings.ToLower(m[2]), Columns: columns}
	if m[3] != "" {
		cmd.Join = &Join{
			Table:       strings.ToLower(m[3]),
			LeftTable:   strings.ToLower(m[4]),
			LeftColumn:  strings.ToLower(m[5]),
			RightTable:  strings.ToLower(m[6]),
			RightColumn: strings.ToLower(m[7]),
		}
	}
	if m[8] != "" {
		cmd.Where = &Condition{
			Column: strings.ToLower(m[8]),
			Value:  types.ParseLiteral(m[9]),
		}
	}
	return cmd
}

// splitKeyword cuts text at the first occurrence of the keyword,
// returning the trimmed parts before and after. The second part is
// empty when the keyword is absent.
func splitKeyword(text string, keyword *regexp.Regexp) (string, string) {
	loc := keyword.FindStringIndex(text)
	if loc == nil {
		return text, ""
	}
	return strings.TrimSpace(text[:loc[0]]), strings.TrimSpace(text[loc[1]:])
}

func parseCondition(clause string) (*Condition, bool) {
	if clause == "" {
		return nil, true
	}
	column, value, ok := strings.Cut(clause, "=")
	if !ok {
		return nil, false
	}
	return &Condition{
		Column: strings.ToLower(strings.TrimSpace(column)),
		Value:  types.ParseLiteral(value),
	}, true
}

// splitList splits on commas outside of quotes, so quoted strings can
// carry commas in VALUES lists and SET clauses.
func splitList(segment string) []string {
	parts := []string{}
	var current strings.Builder
	var quote byte
	for i := 0; i < len(segment); i++ {
		c := segment[i]
		switch {
		case quote != 0:
			current.WriteByte(c)
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
			current.WriteByte(c)
		case c == ',':
			parts = append(parts, current.String())
			current.Reset()
		default:
			current.WriteByte(c)
		}
	}
	// a trailing comma leaves a blank final segment; drop it so
	// VALUES (1,) means one value, not one value and a null
	if last := current.String(); strings.TrimSpace(last) != "" || len(parts) == 0 {
		parts = append(parts, last)
	}
	return parts
}

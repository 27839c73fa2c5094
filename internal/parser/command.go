package parser

import "github.com/minisql/minisql/internal/types"

// Command is the parser's structured representation of one statement.
// The set of variants is closed: the executor dispatches on the
// concrete type, one struct per statement kind.
type Command interface{ isCommand() }

// Empty is returned for blank input.
type Empty struct{}

// Unknown carries the raw text of a statement the parser could not
// make sense of. It is the total-function fallback, never an error.
type Unknown struct{ Raw string }

type CreateDatabase struct{ Name string }

type AlterDatabase struct{ Name string }

type UseDatabase struct{ Name string }

type ColumnDef struct {
	Name string
	// Declared type, kept for display only. Values take their kind
	// from literal syntax, not from this.
	Type string
}

type CreateTable struct {
	Table   string
	Columns []ColumnDef
}

// AddColumn is the ALTER TABLE ... ADD COLUMN form, the only table
// alteration the dialect supports.
type AddColumn struct {
	Table  string
	Column ColumnDef
}

type DropTable struct{ Table string }

type CreateIndex struct{ Table, Column string }

type DropIndex struct{ Table, Column string }

type Insert struct {
	Table  string
	Values []types.Value
}

type Assignment struct {
	Column string
	Value  types.Value
}

// Condition is the single equality predicate WHERE supports.
type Condition struct {
	Column string
	Value  types.Value
}

// Join describes the single INNER JOIN clause of a SELECT. Tables and
// columns appear as written in the ON clause, lowercased.
type Join struct {
	Table       string
	LeftTable   string
	LeftColumn  string
	RightTable  string
	RightColumn string
}

type Update struct {
	Table       string
	Assignments []Assignment
	Where       *Condition
}

type Delete struct {
	Table string
	Where *Condition
}

type Select struct {
	Table string
	// Requested columns as written, including table.column qualifiers
	// and the wildcard *.
	Columns []string
	Where   *Condition
	Join    *Join
}

type Commit struct{}

func (Empty) isCommand()          {}
func (Unknown) isCommand()        {}
func (CreateDatabase) isCommand() {}
func (AlterDatabase) isCommand()  {}
func (UseDatabase) isCommand()    {}
func (CreateTable) isCommand()    {}
func (AddColumn) isCommand()      {}
func (DropTable) isCommand()      {}
func (CreateIndex) isCommand()    {}
func (DropIndex) isCommand()      {}
func (Insert) isCommand()         {}
func (Update) isCommand()         {}
func (Delete) isCommand()         {}
func (Select) isCommand()         {}
func (Commit) isCommand()         {}

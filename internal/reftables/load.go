package reftables

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Table is one reference table loaded fully into memory. Cell values stay
// untyped; key comparisons normalize on the fly.
type Table struct {
	Name    string
	Columns []string
	Rows    []map[string]any
}

func (t Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// MissingColumnError reports a reference table without one of its required
// key columns. A terminal, user-visible condition for the run, not a crash.
type MissingColumnError struct {
	Table  string
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("reference table %s: missing required column %s", e.Table, e.Column)
}

// MissingFileError reports an absent reference table file.
type MissingFileError struct {
	Path string
}

func (e *MissingFileError) Error() string {
	return fmt.Sprintf("reference table file not found: %s", e.Path)
}

// Set holds the five Vega reference tables in chain order.
type Set struct {
	Clienti   Table
	Ctbcont   Table
	Contratti Table
	Unopv     Table
	Modelli   Table
}

func (s Set) All() []Table {
	return []Table{s.Clienti, s.Ctbcont, s.Contratti, s.Unopv, s.Modelli}
}

var requiredColumns = map[string][]string{
	"clienti":   {"CLI_COD", "CLI_NOME"},
	"ctbcont":   {"CTB_COD"},
	"contratti": {"CNTR_SEDELEGALE"},
	"unopv":     {"UPV_CLI", "UPV_MOD"},
	"modelli":   {"MOD_COD"},
}

// LoadDir loads clienti/ctbcont/contratti/unopv/modelli xlsx files from dir
// and validates their key columns.
func LoadDir(dir string) (Set, error) {
	var set Set
	targets := []struct {
		name string
		dst  *Table
	}{
		{"clienti", &set.Clienti},
		{"ctbcont", &set.Ctbcont},
		{"contratti", &set.Contratti},
		{"unopv", &set.Unopv},
		{"modelli", &set.Modelli},
	}
	for _, target := range targets {
		path := filepath.Join(dir, target.name+".xlsx")
		table, err := LoadXLSX(path, target.name)
		if err != nil {
			return Set{}, err
		}
		*target.dst = table
	}
	return set, nil
}

// LoadXLSX reads the first sheet of an xlsx file; the first row is the
// column header, every later row becomes a map keyed by column name.
func LoadXLSX(path, name string) (Table, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Table{}, &MissingFileError{Path: path}
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return Table{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return Table{}, fmt.Errorf("read %s: %w", path, err)
	}

	table, err := FromRows(name, rows)
	if err != nil {
		return Table{}, err
	}
	return table, nil
}

// FromRows builds and validates a Table from raw sheet rows.
func FromRows(name string, rows [][]string) (Table, error) {
	table := Table{Name: name}
	if len(rows) == 0 {
		return table, missingRequired(table)
	}

	for _, header := range rows[0] {
		table.Columns = append(table.Columns, strings.TrimSpace(header))
	}
	for _, raw := range rows[1:] {
		row := make(map[string]any, len(table.Columns))
		empty := true
		for i, col := range table.Columns {
			if col == "" {
				continue
			}
			value := ""
			if i < len(raw) {
				value = strings.TrimSpace(raw[i])
			}
			if value != "" {
				empty = false
			}
			row[col] = value
		}
		if !empty {
			table.Rows = append(table.Rows, row)
		}
	}

	if err := missingRequired(table); err != nil {
		return Table{}, err
	}
	return table, nil
}

func missingRequired(table Table) error {
	for _, col := range requiredColumns[table.Name] {
		if !table.HasColumn(col) {
			return &MissingColumnError{Table: table.Name, Column: col}
		}
	}
	return nil
}

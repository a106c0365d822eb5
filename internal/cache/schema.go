package cache

import (
	"strings"
)

// FormatVersion is stored in PRAGMA user_version. Bump it when the meaning
// of cached properties changes so that existing caches are rebuilt.
const FormatVersion = 1

const tableName = "fileinfo"

type columnType string

const (
	colText columnType = "TEXT"
	colInt  columnType = "INTEGER"
	colReal columnType = "REAL"
)

type column struct {
	name string
	typ  columnType
}

// defaultValue is used when a column is added to an existing table.
func (c column) defaultValue() string {
	if c.typ == colText {
		return "''"
	}
	return "0"
}

// columns lists every stored FileInfo field in the order used by the
// insert statement and by scanRow. ThumbnailURL is derived and not stored.
var columns = []column{
	{"path", colText},
	{"root_name", colText},
	{"root_dir", colText},
	{"leaf_dir", colText},
	{"size", colInt},
	{"mtime_ms", colReal},
	{"birthtime_ms", colReal},
	{"content_type", colText},
	{"duration", colInt},
	{"width", colInt},
	{"height", colInt},
	{"rating", colInt},
	{"rating_text", colText},
	{"keywords", colText},
	{"camera_model", colText},
	{"date_taken", colReal},
	{"latitude_decimal", colReal},
	{"longitude_decimal", colReal},
	{"more", colText},
}

const primaryKey = "path"

func columnNames() []string {
	names := make([]string, len(columns))
	for i, c := range columns {
		names[i] = c.name
	}
	return names
}

func createTableSQL() string {
	defs := make([]string, len(columns))
	for i, c := range columns {
		def := c.name + " " + string(c.typ) + " NOT NULL"
		if c.name == primaryKey {
			def += " PRIMARY KEY"
		} else {
			def += " DEFAULT " + c.defaultValue()
		}
		defs[i] = def
	}
	return "CREATE TABLE IF NOT EXISTS " + tableName + " (\n\t" + strings.Join(defs, ",\n\t") + "\n)"
}

func upsertSQL() string {
	names := columnNames()
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(names)), ", ")

	updates := make([]string, 0, len(names)-1)
	for _, name := range names {
		if name == primaryKey {
			continue
		}
		updates = append(updates, name+"=excluded."+name)
	}

	return "INSERT INTO " + tableName + " (" + strings.Join(names, ", ") + ") VALUES (" + placeholders + ")\n" +
		"ON CONFLICT(" + primaryKey + ") DO UPDATE SET " + strings.Join(updates, ", ")
}

func selectAllSQL() string {
	return "SELECT " + strings.Join(columnNames(), ", ") + " FROM " + tableName
}

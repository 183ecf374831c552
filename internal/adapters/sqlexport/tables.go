package sqlexport

import (
	"database/sql"

	"github.com/FAU-CDI/roald/internal/resource"
	"github.com/FAU-CDI/roald/internal/vocabulary"
)

// Column is a single column of a table.
type Column struct {
	Name string
	Type string
}

// Table describes a table of the export, and how each resource contributes rows to it.
type Table struct {
	Name    string
	Columns []Column
	Rows    func(res *resource.Resource) [][]any
}

// ColumnNames returns the names of the columns of t.
func (t Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, column := range t.Columns {
		names[i] = column.Name
	}
	return names
}

const (
	idColumn       = "id"
	positionColumn = "position"
	kindColumn     = "kind"
	languageColumn = "language"
	valueColumn    = "value"
	relationColumn = "relation"
	targetColumn   = "target"
)

var (
	idDef       = Column{idColumn, "TEXT NOT NULL"}
	positionDef = Column{positionColumn, "INTEGER NOT NULL"}
	kindDef     = Column{kindColumn, "TEXT NOT NULL"}
	languageDef = Column{languageColumn, "TEXT"}
	valueDef    = Column{valueColumn, "TEXT NOT NULL"}
)

var (
	noteFields     = []resource.Field{resource.FieldDefinition, resource.FieldScopeNote, resource.FieldEditorialNote}
	codeFields     = []resource.Field{resource.FieldNotation, resource.FieldMSC, resource.FieldDDC, resource.FieldLibCode, resource.FieldAcronym, resource.FieldElementSymbol}
	relationFields = []resource.Field{resource.FieldBroader, resource.FieldRelated, resource.FieldReplacedBy, resource.FieldMemberOf, resource.FieldMember, resource.FieldSuperOrdinate, resource.FieldComponent}
)

func nullable(value string, ok bool) sql.NullString {
	return sql.NullString{String: value, Valid: ok}
}

// Tables returns the tables a vocabulary is exported into.
func Tables(voc *vocabulary.Vocabulary, sep string) []Table {
	return []Table{
		resourcesTable(voc, sep),
		labelsTable(),
		notesTable(),
		codesTable(),
		relationsTable(),
		mappingsTable(),
	}
}

func resourcesTable(voc *vocabulary.Vocabulary, sep string) Table {
	position := 0
	return Table{
		Name: "resources",
		Columns: []Column{
			idDef,
			positionDef,
			{"class", "TEXT NOT NULL"},
			{"types", "TEXT"},
			{"uri", "TEXT"},
			{"term", "TEXT"},
			{"created", "TEXT"},
			{"modified", "TEXT"},
			{"deprecated", "TEXT"},
			{"top_concept", "INTEGER NOT NULL"},
		},
		Rows: func(res *resource.Resource) [][]any {
			types := res.Types()
			names := make([]string, len(types))
			for i, t := range types {
				names[i] = string(t)
			}

			var uri sql.NullString
			if voc.URIFormat != "" {
				value, err := voc.URI(res.ID())
				uri = nullable(value, err == nil)
			}

			term, hasTerm := voc.Resources.Term(res.ID())
			created, hasCreated := res.Get(resource.FieldCreated)
			modified, hasModified := res.Get(resource.FieldModified)
			deprecated, hasDeprecated := res.Get(resource.FieldDeprecated)

			topConcept := 0
			if res.Flag(resource.FieldIsTopConcept) {
				topConcept = 1
			}

			position++
			return [][]any{{
				res.ID(),
				position,
				res.Class().String(),
				joined(names, sep),
				uri,
				nullable(term, hasTerm),
				nullable(created, hasCreated),
				nullable(modified, hasModified),
				nullable(deprecated, hasDeprecated),
				topConcept,
			}}
		},
	}
}

func labelsTable() Table {
	return Table{
		Name: "labels",
		Columns: []Column{
			idDef,
			kindDef,
			languageDef,
			positionDef,
			valueDef,
			{"has_acronym", "TEXT"},
			{"acronym_for", "TEXT"},
		},
		Rows: func(res *resource.Resource) (rows [][]any) {
			add := func(kind, lang string, position int, label resource.Label) {
				rows = append(rows, []any{
					res.ID(), kind, lang, position, label.Value,
					nullable(label.HasAcronym, label.HasAcronym != ""),
					nullable(label.AcronymFor, label.AcronymFor != ""),
				})
			}

			for _, lang := range res.Keys(resource.FieldPrefLabel) {
				label, _ := res.Label(resource.FieldPrefLabel, lang)
				add(resource.FieldPrefLabel.String(), lang, 0, label)
			}
			for _, lang := range res.Keys(resource.FieldAltLabel) {
				for i, label := range res.LabelList(resource.FieldAltLabel, lang) {
					add(resource.FieldAltLabel.String(), lang, i, label)
				}
			}
			return rows
		},
	}
}

func notesTable() Table {
	return Table{
		Name:    "notes",
		Columns: []Column{idDef, kindDef, languageDef, positionDef, valueDef},
		Rows: func(res *resource.Resource) (rows [][]any) {
			for _, f := range noteFields {
				kind := f.String()
				if !f.Shape().Keyed() {
					for i, value := range res.List(f) {
						rows = append(rows, []any{res.ID(), kind, sql.NullString{}, i, value})
					}
					continue
				}
				for _, lang := range res.Keys(f) {
					if f.Shape() == resource.ShapeText {
						value, _ := res.Text(f, lang)
						rows = append(rows, []any{res.ID(), kind, lang, 0, value})
						continue
					}
					for i, value := range res.TextList(f, lang) {
						rows = append(rows, []any{res.ID(), kind, lang, i, value})
					}
				}
			}
			return rows
		},
	}
}

func codesTable() Table {
	return Table{
		Name:    "codes",
		Columns: []Column{idDef, kindDef, positionDef, valueDef},
		Rows: func(res *resource.Resource) (rows [][]any) {
			for _, f := range codeFields {
				if f.Shape() == resource.ShapeScalar {
					if value, ok := res.Get(f); ok {
						rows = append(rows, []any{res.ID(), f.String(), 0, value})
					}
					continue
				}
				for i, value := range res.List(f) {
					rows = append(rows, []any{res.ID(), f.String(), i, value})
				}
			}
			return rows
		},
	}
}

func relationsTable() Table {
	return Table{
		Name: "relations",
		Columns: []Column{
			idDef,
			{relationColumn, "TEXT NOT NULL"},
			positionDef,
			{targetColumn, "TEXT NOT NULL"},
		},
		Rows: func(res *resource.Resource) (rows [][]any) {
			for _, f := range relationFields {
				for i, target := range res.List(f) {
					rows = append(rows, []any{res.ID(), f.String(), i, target})
				}
			}
			return rows
		},
	}
}

func mappingsTable() Table {
	return Table{
		Name: "mappings",
		Columns: []Column{
			idDef,
			{relationColumn, "TEXT NOT NULL"},
			{targetColumn, "TEXT NOT NULL"},
		},
		Rows: func(res *resource.Resource) (rows [][]any) {
			for _, relation := range res.Keys(resource.FieldMappings) {
				for _, target := range res.TextList(resource.FieldMappings, relation) {
					rows = append(rows, []any{res.ID(), relation, target})
				}
			}
			return rows
		},
	}
}

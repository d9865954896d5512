package database

import (
	"fmt"

	"github.com/huandu/go-sqlbuilder"
)

type SelectBuilder struct {
	*sqlbuilder.SelectBuilder
}

func NewSelectBuilder(flavor sqlbuilder.Flavor) *SelectBuilder {
	return &SelectBuilder{flavor.NewSelectBuilder()}
}

// TableName quotes a table name for the flavor, prefixed with schema when one is set.
// Table names such as "action" are reserved words in some dialects.
func TableName(flavor sqlbuilder.Flavor, schema, table string) string {
	quote := flavor.Quote
	if flavor == sqlbuilder.SQLServer {
		quote = func(name string) string { return fmt.Sprintf("[%s]", name) }
	}

	if schema == "" {
		return quote(table)
	}
	return fmt.Sprintf("%s.%s", quote(schema), quote(table))
}

// SelectAll builds "SELECT * FROM <table>" with every column in store order.
func SelectAll(flavor sqlbuilder.Flavor, schema, table string) string {
	sb := NewSelectBuilder(flavor)
	sb.Select("*").From(TableName(flavor, schema, table))
	query, _ := sb.Build()
	return query
}

// PingQuery is the cheapest round trip every supported dialect accepts.
const PingQuery = "SELECT 1 AS ok"

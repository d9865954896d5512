package database

import (
	"strings"

	"github.com/Ramsey-B/fern/pkg/models"
	mssql "github.com/microsoft/go-mssqldb"
)

const typeUniqueIdentifier = "UNIQUEIDENTIFIER"

// ColumnValue converts a scanned value into its JSON form using the column's
// database type name. SQL Server scans uniqueidentifier columns as 16 bytes in
// its mixed-endian layout; those become the canonical GUID text.
func ColumnValue(typeName string, value any) any {
	if raw, ok := value.([]byte); ok && len(raw) == 16 && strings.EqualFold(typeName, typeUniqueIdentifier) {
		var id mssql.UniqueIdentifier
		if err := id.Scan(raw); err == nil {
			return id.String()
		}
	}
	return models.NormalizeValue(value)
}

package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
)

// DataSourceError is returned when the store cannot be reached or a query fails.
type DataSourceError struct {
	Op    string
	Table string
	Err   error
}

func NewDataSourceError(op, table string, err error) *DataSourceError {
	return &DataSourceError{
		Op:    op,
		Table: table,
		Err:   err,
	}
}

func (e *DataSourceError) Error() string {
	msg := fmt.Sprintf("data source %s failed", e.Op)
	if e.Table != "" {
		msg = fmt.Sprintf("data source %s on table '%s' failed", e.Op, e.Table)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DataSourceError) Unwrap() error {
	return e.Err
}

// ToHTTPError hides the driver error from the client. The cause is logged by the error handler.
func (e *DataSourceError) ToHTTPError() *httperror.HTTPError {
	msg := "error reading from data source"
	if e.Table != "" {
		msg = fmt.Sprintf("error reading table '%s'", e.Table)
	}
	return httperror.NewHTTPError(http.StatusInternalServerError, msg).AddMetaValue("op", e.Op).AddMetaValue("table", e.Table)
}

// MalformedRowError is returned when a fetched row lacks a field required for indexing.
type MalformedRowError struct {
	Table  string
	Field  string
	Index  int
	Reason string
}

func NewMalformedRowError(table, field string, index int, reason string) *MalformedRowError {
	return &MalformedRowError{
		Table:  table,
		Field:  field,
		Index:  index,
		Reason: reason,
	}
}

func (e *MalformedRowError) Error() string {
	return fmt.Sprintf("malformed row %d in table '%s': field '%s' %s", e.Index, e.Table, e.Field, e.Reason)
}

func (e *MalformedRowError) ToHTTPError() *httperror.HTTPError {
	return httperror.NewHTTPError(http.StatusInternalServerError, e.Error()).AddMetaValue("table", e.Table).AddMetaValue("field", e.Field).AddMetaValue("row_index", e.Index)
}

type httpErrorConverter interface {
	ToHTTPError() *httperror.HTTPError
}

// ToHTTPError converts any error in the chain that knows its HTTP shape.
func ToHTTPError(err error) (*httperror.HTTPError, bool) {
	var converter httpErrorConverter
	if stderrors.As(err, &converter) {
		return converter.ToHTTPError(), true
	}
	return nil, false
}

func IsDataSourceError(err error) bool {
	var target *DataSourceError
	return stderrors.As(err, &target)
}

func IsMalformedRowError(err error) bool {
	var target *MalformedRowError
	return stderrors.As(err, &target)
}

package models

import "encoding/json"

// Tables and columns of the action catalog.
const (
	TableAction       = "action"
	TableActionInput  = "action_input"
	TableActionOutput = "action_output"
	TableActionSource = "action_source"
	TableSource       = "source"
	TableItem         = "item"

	ColumnID       = "id"
	ColumnActionID = "action_id"
	ColumnItemID   = "item_id"
	ColumnSourceID = "source_id"
	ColumnQty      = "qty"

	FieldInputs  = "inputs"
	FieldOutputs = "outputs"
	FieldSources = "sources"
)

// ItemRef is the result of resolving an item_id. When Found is false the
// reference did not match any item and the ref encodes as null.
type ItemRef struct {
	Item  Row
	Found bool
}

func FoundItem(item Row) ItemRef {
	return ItemRef{Item: item, Found: true}
}

func MissingItem() ItemRef {
	return ItemRef{}
}

func (r ItemRef) MarshalJSON() ([]byte, error) {
	if !r.Found {
		return []byte("null"), nil
	}
	return r.Item.MarshalJSON()
}

// Line is one input or output of an action.
type Line struct {
	Item ItemRef `json:"item"`
	Qty  any     `json:"qty"`
}

// AssembledAction is an action row with its inputs, outputs and sources attached.
type AssembledAction struct {
	Action  Row
	Inputs  []Line
	Outputs []Line
	Sources []Row
}

// ID returns the normalized id of the action.
func (a AssembledAction) ID() Key {
	value, _ := a.Action.Get(ColumnID)
	key, _ := KeyOf(value)
	return key
}

// Document flattens the action into a single row: the action columns followed by
// inputs, outputs and sources. A relation replaces an action column of the same name.
func (a AssembledAction) Document() Row {
	doc := a.Action.Clone()
	doc.Set(FieldInputs, nonNil(a.Inputs))
	doc.Set(FieldOutputs, nonNil(a.Outputs))
	doc.Set(FieldSources, nonNil(a.Sources))
	return doc
}

func (a AssembledAction) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.Document())
}

func nonNil[T any](values []T) []T {
	if values == nil {
		return []T{}
	}
	return values
}

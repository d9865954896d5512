// Package assembler turns the flat action catalog tables into nested action documents.
//
// Every child table is indexed once up front so each action is joined with map
// lookups instead of scanning the child tables per action.
package assembler

import (
	"github.com/Ramsey-B/fern/pkg/errors"
	"github.com/Ramsey-B/fern/pkg/models"
)

// Tables is one snapshot of the six catalog tables.
type Tables struct {
	Actions     []models.Row
	Inputs      []models.Row
	Outputs     []models.Row
	SourceLinks []models.Row
	Sources     []models.Row
	Items       []models.Row
}

// Result holds the assembled actions in fetch order and the anomalies found on the way.
type Result struct {
	Actions   []models.AssembledAction
	Anomalies []Anomaly
}

func (t Tables) Assemble() (*Result, error) {
	return Assemble(t.Actions, t.Inputs, t.Outputs, t.SourceLinks, t.Sources, t.Items)
}

// link is a parsed action_input, action_output or action_source row.
type link struct {
	actionID models.Key
	ref      models.Key
	hasRef   bool
	qty      any
	row      models.Row
}

// Assemble joins every action with its inputs, outputs and sources. Dangling or
// ambiguous references never fail the call; they are reported as anomalies.
// Only a row missing an indexing field returns an error.
func Assemble(actions, inputs, outputs, sourceLinks, sources, items []models.Row) (*Result, error) {
	result := &Result{
		Actions: make([]models.AssembledAction, 0, len(actions)),
	}

	itemByID, err := result.indexItems(items)
	if err != nil {
		return nil, err
	}

	sourcesByID := make(map[models.Key][]models.Row, len(sources))
	for i, source := range sources {
		id, err := requireKey(models.TableSource, i, source, models.ColumnID)
		if err != nil {
			return nil, err
		}
		sourcesByID[id] = append(sourcesByID[id], source)
	}

	inputLinks, err := parseLinks(models.TableActionInput, inputs, models.ColumnItemID, true)
	if err != nil {
		return nil, err
	}
	outputLinks, err := parseLinks(models.TableActionOutput, outputs, models.ColumnItemID, true)
	if err != nil {
		return nil, err
	}
	sourceLinkRows, err := parseLinks(models.TableActionSource, sourceLinks, models.ColumnSourceID, false)
	if err != nil {
		return nil, err
	}

	inputsByAction := groupByAction(inputLinks)
	outputsByAction := groupByAction(outputLinks)
	sourceLinksByAction := groupByAction(sourceLinkRows)

	actionIDs := make(map[models.Key]struct{}, len(actions))
	for i, action := range actions {
		id, err := requireKey(models.TableAction, i, action, models.ColumnID)
		if err != nil {
			return nil, err
		}
		actionIDs[id] = struct{}{}

		assembled := models.AssembledAction{
			Action:  action,
			Inputs:  result.resolveLines(id, inputsByAction[id], itemByID, AnomalyDanglingInputItem),
			Outputs: result.resolveLines(id, outputsByAction[id], itemByID, AnomalyDanglingOutputItem),
			Sources: result.resolveSources(id, sourceLinksByAction[id], sourcesByID),
		}
		result.Actions = append(result.Actions, assembled)
	}

	result.reportOrphans(inputLinks, actionIDs, AnomalyOrphanInput)
	result.reportOrphans(outputLinks, actionIDs, AnomalyOrphanOutput)
	result.reportOrphans(sourceLinkRows, actionIDs, AnomalyOrphanSourceLink)

	return result, nil
}

// indexItems maps item ids to rows. The last row of a duplicated id wins.
func (r *Result) indexItems(items []models.Row) (map[models.Key]models.Row, error) {
	itemByID := make(map[models.Key]models.Row, len(items))
	rowsByID := make(map[models.Key][]models.Row, len(items))
	order := make([]models.Key, 0, len(items))
	for i, item := range items {
		id, err := requireKey(models.TableItem, i, item, models.ColumnID)
		if err != nil {
			return nil, err
		}
		if _, seen := rowsByID[id]; !seen {
			order = append(order, id)
		}
		rowsByID[id] = append(rowsByID[id], item)
		itemByID[id] = item
	}

	for _, id := range order {
		if rows := rowsByID[id]; len(rows) > 1 {
			r.record(Anomaly{Kind: AnomalyDuplicateItem, Ref: id, Count: len(rows), Rows: rows})
		}
	}
	return itemByID, nil
}

func (r *Result) resolveLines(actionID models.Key, links []link, itemByID map[models.Key]models.Row, dangling AnomalyKind) []models.Line {
	lines := make([]models.Line, 0, len(links))
	for _, l := range links {
		ref := models.MissingItem()
		if l.hasRef {
			if item, ok := itemByID[l.ref]; ok {
				ref = models.FoundItem(item)
			}
		}
		if !ref.Found {
			r.record(Anomaly{Kind: dangling, ActionID: actionID, Ref: l.ref, Count: 0, Rows: []models.Row{l.row}})
		}
		lines = append(lines, models.Line{Item: ref, Qty: l.qty})
	}
	return lines
}

func (r *Result) resolveSources(actionID models.Key, links []link, sourcesByID map[models.Key][]models.Row) []models.Row {
	resolved := make([]models.Row, 0, len(links))
	for _, l := range links {
		var matches []models.Row
		if l.hasRef {
			matches = sourcesByID[l.ref]
		}
		switch len(matches) {
		case 1:
			resolved = append(resolved, matches[0])
		case 0:
			r.record(Anomaly{Kind: AnomalyMissingSource, ActionID: actionID, Ref: l.ref, Count: 0, Rows: []models.Row{l.row}})
		default:
			r.record(Anomaly{Kind: AnomalyAmbiguousSource, ActionID: actionID, Ref: l.ref, Count: len(matches), Rows: matches})
		}
	}
	return resolved
}

func (r *Result) reportOrphans(links []link, actionIDs map[models.Key]struct{}, kind AnomalyKind) {
	for _, l := range links {
		if _, ok := actionIDs[l.actionID]; !ok {
			r.record(Anomaly{Kind: kind, ActionID: l.actionID, Ref: l.ref, Count: 0, Rows: []models.Row{l.row}})
		}
	}
}

func (r *Result) record(anomaly Anomaly) {
	r.Anomalies = append(r.Anomalies, anomaly)
}

func parseLinks(table string, rows []models.Row, refColumn string, withQty bool) ([]link, error) {
	links := make([]link, 0, len(rows))
	for i, row := range rows {
		actionID, err := requireKey(table, i, row, models.ColumnActionID)
		if err != nil {
			return nil, err
		}

		value, ok := row.Get(refColumn)
		if !ok {
			return nil, errors.NewMalformedRowError(table, refColumn, i, "is missing")
		}
		ref, hasRef := models.KeyOf(value)

		l := link{actionID: actionID, ref: ref, hasRef: hasRef, row: row}
		if withQty {
			qty, ok := row.Get(models.ColumnQty)
			if !ok {
				return nil, errors.NewMalformedRowError(table, models.ColumnQty, i, "is missing")
			}
			l.qty = qty
		}
		links = append(links, l)
	}
	return links, nil
}

func groupByAction(links []link) map[models.Key][]link {
	grouped := make(map[models.Key][]link)
	for _, l := range links {
		grouped[l.actionID] = append(grouped[l.actionID], l)
	}
	return grouped
}

func requireKey(table string, index int, row models.Row, column string) (models.Key, error) {
	value, ok := row.Get(column)
	if !ok {
		return "", errors.NewMalformedRowError(table, column, index, "is missing")
	}
	key, ok := models.KeyOf(value)
	if !ok {
		return "", errors.NewMalformedRowError(table, column, index, "is null")
	}
	return key, nil
}

/*-------------------------------------------------------------------------
 *
 * pgEdge Natural Language Agent
 *
 * Portions copyright (c) 2025, pgEdge, Inc.
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

package metadata

import "fmt"

// FromPayload decodes an index payload into a TableMetadata, applying
// defaults for missing optional fields. Malformed entries inside the
// columns or relationships lists are skipped rather than failing the
// whole record.
func FromPayload(payload map[string]interface{}) TableMetadata {
	t := TableMetadata{
		TableName:     UnknownTable,
		TableOwner:    []string{UnknownOwner},
		BusinessLogic: map[string]string{},
	}

	if name := stringField(payload, "table_name"); name != "" {
		t.TableName = name
	}

	switch owner := payload["table_owner"].(type) {
	case string:
		if owner != "" {
			t.TableOwner = []string{owner}
		}
	case []interface{}:
		if owners := stringList(owner); len(owners) > 0 {
			t.TableOwner = owners
		}
	case []string:
		if len(owner) > 0 {
			t.TableOwner = append([]string(nil), owner...)
		}
	}

	if cols, ok := payload["columns"].([]interface{}); ok {
		for _, raw := range cols {
			col, ok := raw.(map[string]interface{})
			if !ok {
				continue
			}
			t.Columns = append(t.Columns, ColumnMetadata{
				ColumnName:  stringField(col, "column_name"),
				DataType:    stringField(col, "data_type"),
				Description: stringField(col, "description"),
			})
		}
	}

	if rels, ok := payload["relationships"].([]interface{}); ok {
		for _, raw := range rels {
			rel, ok := raw.(map[string]interface{})
			if !ok {
				continue
			}
			var conds []string
			if list, ok := rel["on_conditions"].([]interface{}); ok {
				conds = stringList(list)
			}
			t.Relationships = append(t.Relationships, RelationshipMetadata{
				RelatedTable: stringField(rel, "related_table"),
				OnConditions: conds,
			})
		}
	}

	if logic, ok := payload["business_logic"].(map[string]interface{}); ok {
		for k, v := range logic {
			t.BusinessLogic[k] = stringify(v)
		}
	}

	return t
}

func stringField(m map[string]interface{}, key string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return ""
	}
	return stringify(v)
}

func stringList(list []interface{}) []string {
	out := make([]string, 0, len(list))
	for _, v := range list {
		if v == nil {
			continue
		}
		out = append(out, stringify(v))
	}
	return out
}

func stringify(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", val)
	}
}

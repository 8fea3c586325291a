/*-------------------------------------------------------------------------
 *
 * pgEdge Natural Language Agent
 *
 * Portions copyright (c) 2025, pgEdge, Inc.
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

// Package metadata holds the table metadata records retrieved from the
// vector index and renders them into prompt text.
package metadata

const (
	// UnknownOwner marks a table whose owning schema is not recorded
	UnknownOwner = "UNKNOWN_OWNER"

	// UnknownTable is used when a payload carries no table name
	UnknownTable = "UNKNOWN_TABLE"
)

// TableMetadata describes one table as stored in the metadata index.
// Values are treated as immutable once retrieved.
type TableMetadata struct {
	TableName     string                 `json:"table_name"`
	TableOwner    []string               `json:"table_owner"`
	Columns       []ColumnMetadata       `json:"columns"`
	Relationships []RelationshipMetadata `json:"relationships"`
	BusinessLogic map[string]string      `json:"business_logic"`
}

// ColumnMetadata describes a single column. Description may be empty.
type ColumnMetadata struct {
	ColumnName  string `json:"column_name"`
	DataType    string `json:"data_type"`
	Description string `json:"description"`
}

// RelationshipMetadata describes how a table joins to another. Each
// condition is a raw SQL boolean fragment.
type RelationshipMetadata struct {
	RelatedTable string   `json:"related_table"`
	OnConditions []string `json:"on_conditions"`
}

// Owner returns the primary owner, or UnknownOwner when none is recorded.
func (t TableMetadata) Owner() string {
	if len(t.TableOwner) == 0 || t.TableOwner[0] == "" {
		return UnknownOwner
	}
	return t.TableOwner[0]
}

// QualifiedName returns owner.table when the owner is known, otherwise the
// bare table name.
func (t TableMetadata) QualifiedName() string {
	owner := t.Owner()
	if owner == UnknownOwner {
		return t.TableName
	}
	return owner + "." + t.TableName
}

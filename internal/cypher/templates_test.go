package cypher

import (
	"strings"
	"testing"
)

func TestInsertDocumentsTemplate(t *testing.T) {
	query := MustTemplate(InsertDocuments, map[string]string{"Label": ":`baseline`"})
	if !strings.Contains(query, "MERGE (n:`baseline` {uuid: row.uuid, objectId: row.objectId})") {
		t.Fatalf("unexpected query %s", query)
	}
}

func TestEnsureSchemaStatements(t *testing.T) {
	stmts := Statements(EnsureSchema, map[string]string{
		"Label":          ":`pageload`",
		"ConstraintName": "`pageload_identity`",
		"IndexName":      "`pageload_uuid`",
	})
	if len(stmts) != 2 {
		t.Fatalf("expect 2 statements, got %d", len(stmts))
	}
	if !strings.HasPrefix(stmts[0], "CREATE CONSTRAINT `pageload_identity`") {
		t.Fatalf("unexpected constraint statement %s", stmts[0])
	}
	if !strings.Contains(stmts[1], "ON (n.uuid)") {
		t.Fatalf("unexpected index statement %s", stmts[1])
	}
}

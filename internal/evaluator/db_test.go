package evaluator

import (
	"fmt"
	"path/filepath"
	"testing"

	"gecko/internal/object"
)

func TestDbRoundTrip(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	input := fmt.Sprintf(`
var db = dbConnect("sqlite3", %q);
dbExec(db, "CREATE TABLE users (id INTEGER, name TEXT)");
print dbExec(db, "INSERT INTO users (id, name) VALUES (1, 'a'), (2, 'b')");
print dbQuery(db, "SELECT id, name FROM users ORDER BY id");
print dbQuery(db, "SELECT name FROM users WHERE id = ?", 1);
dbClose(db);
`, dbPath)

	expectOutput(t, input, "2\nid\tname\n1\ta\n2\tb\nname\na\n")
}

func TestDbQueryEmptyResult(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	input := fmt.Sprintf(`
var db = dbConnect("sqlite3", %q);
dbExec(db, "CREATE TABLE t (x INTEGER)");
print dbQuery(db, "SELECT x FROM t");
dbClose(db);
`, dbPath)

	expectOutput(t, input, "x\n")
}

func TestDbNullRendersAsNil(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	input := fmt.Sprintf(`
var db = dbConnect("sqlite3", %q);
dbExec(db, "CREATE TABLE t (x TEXT)");
dbExec(db, "INSERT INTO t (x) VALUES (NULL)");
print dbQuery(db, "SELECT x FROM t");
dbClose(db);
`, dbPath)

	expectOutput(t, input, "x\nnil\n")
}

func TestDbInvalidHandle(t *testing.T) {
	expectRuntimeError(t, `dbQuery(99999, "SELECT 1");`, "invalid connection handle")
}

func TestDbCloseTwice(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	input := fmt.Sprintf(`
var db = dbConnect("sqlite3", %q);
dbClose(db);
dbClose(db);
`, dbPath)

	result, _ := run(t, input)
	err, ok := result.(*object.Error)
	if !ok {
		t.Fatalf("expected a runtime error, got %T", result)
	}
	if err.Message != "invalid connection handle" {
		t.Errorf("wrong error: %q", err.Message)
	}
}

func TestDbConnectArgValidation(t *testing.T) {
	expectRuntimeError(t, "dbConnect(1, 2);", "driver must be STRING, got NUMBER")
	expectRuntimeError(t, `dbConnect("sqlite3");`, "dbConnect expects 2 arguments: driver, connectionString")
}

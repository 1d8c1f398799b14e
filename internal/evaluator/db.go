package evaluator

import (
	"database/sql"
	"fmt"
	"sync/atomic"

	"gecko/internal/object"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

var (
	dbConnections = map[int64]*sql.DB{}
	nextDbHandle  atomic.Int64
)

func funcDbConnect() *object.Builtin {
	return &object.Builtin{
		Name: "dbConnect",
		Fn: func(args ...object.Object) object.Object {
			if len(args) != 2 {
				return newError(0, "dbConnect expects 2 arguments: driver, connectionString")
			}
			driver, ok := unpackString(args[0])
			if !ok {
				return newError(0, "driver must be STRING, got %s", args[0].Type())
			}
			connStr, ok := unpackString(args[1])
			if !ok {
				return newError(0, "connectionString must be STRING, got %s", args[1].Type())
			}

			db, err := sql.Open(driver, connStr)
			if err != nil {
				return newError(0, "failed to open connection: %v", err)
			}
			if err := db.Ping(); err != nil {
				db.Close()
				return newError(0, "failed to ping database: %v", err)
			}

			id := nextDbHandle.Add(1)
			dbConnections[id] = db
			return &object.Number{Value: float64(id)}
		},
	}
}

func funcDbQuery() *object.Builtin {
	return &object.Builtin{
		Name: "dbQuery",
		Fn: func(args ...object.Object) object.Object {
			if len(args) < 2 {
				return newError(0, "dbQuery expects at least 2 arguments: connection, sql")
			}
			db, errObj := connectionArg(args[0])
			if errObj != nil {
				return errObj
			}
			query, ok := unpackString(args[1])
			if !ok {
				return newError(0, "sql must be STRING, got %s", args[1].Type())
			}

			rows, err := db.Query(query, queryParams(args[2:])...)
			if err != nil {
				return newError(0, "query failed: %v", err)
			}
			defer rows.Close()

			return renderRows(rows)
		},
	}
}

func funcDbExec() *object.Builtin {
	return &object.Builtin{
		Name: "dbExec",
		Fn: func(args ...object.Object) object.Object {
			if len(args) < 2 {
				return newError(0, "dbExec expects at least 2 arguments: connection, sql")
			}
			db, errObj := connectionArg(args[0])
			if errObj != nil {
				return errObj
			}
			stmt, ok := unpackString(args[1])
			if !ok {
				return newError(0, "sql must be STRING, got %s", args[1].Type())
			}

			result, err := db.Exec(stmt, queryParams(args[2:])...)
			if err != nil {
				return newError(0, "exec failed: %v", err)
			}
			affected, err := result.RowsAffected()
			if err != nil {
				affected = 0
			}
			return &object.Number{Value: float64(affected)}
		},
	}
}

func funcDbClose() *object.Builtin {
	return &object.Builtin{
		Name: "dbClose",
		Fn: func(args ...object.Object) object.Object {
			if len(args) != 1 {
				return newError(0, "dbClose expects 1 argument: connection")
			}
			id, ok := unpackNumber(args[0])
			if !ok {
				return newError(0, "connection must be NUMBER, got %s", args[0].Type())
			}
			db, found := dbConnections[int64(id)]
			if !found {
				return newError(0, "invalid connection handle")
			}
			delete(dbConnections, int64(id))
			if err := db.Close(); err != nil {
				return newError(0, "failed to close connection: %v", err)
			}
			return NIL
		},
	}
}

func connectionArg(obj object.Object) (*sql.DB, *object.Error) {
	id, ok := unpackNumber(obj)
	if !ok {
		return nil, newError(0, "connection must be NUMBER, got %s", obj.Type())
	}
	db, found := dbConnections[int64(id)]
	if !found {
		return nil, newError(0, "invalid connection handle")
	}
	return db, nil
}

func queryParams(args []object.Object) []interface{} {
	params := make([]interface{}, len(args))
	for i, arg := range args {
		switch arg := arg.(type) {
		case *object.Number:
			params[i] = arg.Value
		case *object.Boolean:
			params[i] = arg.Value
		case *object.Nil:
			params[i] = nil
		default:
			params[i] = arg.Inspect()
		}
	}
	return params
}

// renderRows materializes a result set into a tab-separated string table.
func renderRows(rows *sql.Rows) object.Object {
	columns, err := rows.Columns()
	if err != nil {
		return newError(0, "failed to read columns: %v", err)
	}

	var rendered [][]string
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return newError(0, "failed to scan row: %v", err)
		}
		row := make([]string, len(columns))
		for i, v := range values {
			switch v := v.(type) {
			case nil:
				row[i] = "nil"
			case []byte:
				row[i] = string(v)
			default:
				row[i] = fmt.Sprintf("%v", v)
			}
		}
		rendered = append(rendered, row)
	}
	if err := rows.Err(); err != nil {
		return newError(0, "row iteration failed: %v", err)
	}

	return &object.String{Value: object.FormatTable(columns, rendered)}
}

package evaluator

import (
	"os"
	"time"

	"gecko/internal/object"
)

// builtins are the native functions preloaded into the root environment.
var builtins = map[string]*object.Builtin{
	"clock": funcClock(),
	"env":   funcEnv(),

	// database functions
	"dbConnect": funcDbConnect(),
	"dbQuery":   funcDbQuery(),
	"dbExec":    funcDbExec(),
	"dbClose":   funcDbClose(),
}

// funcClock returns the current time in seconds since the epoch, fractional
// part included.
func funcClock() *object.Builtin {
	return &object.Builtin{
		Name: "clock",
		Fn: func(args ...object.Object) object.Object {
			if len(args) != 0 {
				return newError(0, "wrong number of arguments. got=%d, want=0", len(args))
			}
			return &object.Number{Value: float64(time.Now().UnixNano()) / 1e9}
		},
	}
}

// funcEnv reads a process environment variable; unset names yield nil.
func funcEnv() *object.Builtin {
	return &object.Builtin{
		Name: "env",
		Fn: func(args ...object.Object) object.Object {
			if len(args) != 1 {
				return newError(0, "wrong number of arguments. got=%d, want=1", len(args))
			}
			name, ok := args[0].(*object.String)
			if !ok {
				return newError(0, "argument to `env` must be STRING, got %s", args[0].Type())
			}
			value, found := os.LookupEnv(name.Value)
			if !found {
				return NIL
			}
			return &object.String{Value: value}
		},
	}
}

func unpackString(obj object.Object) (string, bool) {
	s, ok := obj.(*object.String)
	if !ok {
		return "", false
	}
	return s.Value, true
}

func unpackNumber(obj object.Object) (float64, bool) {
	n, ok := obj.(*object.Number)
	if !ok {
		return 0, false
	}
	return n.Value, true
}

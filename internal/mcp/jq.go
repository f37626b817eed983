package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/itchyny/gojq"
	api "github.com/storecheck/storecheck/lib-storecheck"
)

// MaxOutputs is the maximum number of values a query can emit.
const MaxOutputs = 1000

// statusRank maps a status name to its severity, so queries can sort or compare statuses with `status_rank`.
func statusRank(x any, _ []any) any {
	name, ok := x.(string)
	if !ok {
		return fmt.Errorf("status_rank/0: expected a status name but got %T (%v)", x, x)
	}
	s, err := api.ParseStatus(name)
	if err != nil {
		return fmt.Errorf("status_rank/0: %v", err)
	}
	return s.Severity()
}

// Query is a compiled jq program that tools apply to their input.
type Query struct {
	code *gojq.Code
}

// CompileQuery compiles a jq program. An empty source is the identity.
func CompileQuery(src string) (*Query, error) {
	if src == "" {
		src = "."
	}

	parsed, err := gojq.Parse(src)
	if err != nil {
		return nil, err
	}

	code, err := gojq.Compile(parsed, gojq.WithFunction("status_rank", 0, 0, statusRank))
	if err != nil {
		return nil, err
	}
	return &Query{code: code}, nil
}

// Output is the result of a tool call.
type Output struct {
	Result any `json:"result" jsonschema:"The result of the query."`
}

// Run applies the query to input.
//
// A query that emits exactly one value gives that value, and anything else gives an array.
// `halt` stops the query quietly, and `halt_error` fails the tool call with its message.
func (q *Query) Run(ctx context.Context, input any) (Output, error) {
	var values []any

	iter := q.code.RunWithContext(ctx, input)
	for v, ok := iter.Next(); ok; v, ok = iter.Next() {
		if err, isErr := v.(error); isErr {
			var halt *gojq.HaltError
			if errors.As(err, &halt) {
				if halt.ExitCode() == 0 {
					break
				}
				return Output{}, fmt.Errorf("query halted with exit code %d: %v", halt.ExitCode(), halt.Value())
			}
			return Output{}, err
		}

		if len(values) == MaxOutputs {
			return Output{}, fmt.Errorf("query emitted more than %d values; please aggregate them", MaxOutputs)
		}
		values = append(values, v)
	}

	if len(values) == 1 {
		return Output{Result: values[0]}, nil
	}
	return Output{Result: values}, nil
}

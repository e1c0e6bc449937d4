package server

import (
	"context"
	"strings"
	"sync"

	"github.com/itchyny/gojq"

	"github.com/crmarques/reason/faults"
)

var jqCodeCache sync.Map

// ApplyJQ evaluates expression against value. A single result is returned
// as is, several results as a list and no result as an empty list.
func ApplyJQ(ctx context.Context, value any, expression string) (any, error) {
	trimmedExpression := strings.TrimSpace(expression)
	if trimmedExpression == "" {
		return value, nil
	}

	code, err := cachedJQCode(trimmedExpression)
	if err != nil {
		return nil, faults.NewTypedError(faults.ValidationError, "invalid jq expression", err)
	}

	runCtx := ctx
	if runCtx == nil {
		runCtx = context.Background()
	}
	iterator := code.RunWithContext(runCtx, value)
	results := make([]any, 0, 1)
	for {
		item, ok := iterator.Next()
		if !ok {
			break
		}
		if itemErr, isErr := item.(error); isErr {
			return nil, faults.NewTypedError(faults.ValidationError, "failed to evaluate jq expression", itemErr)
		}
		results = append(results, item)
	}

	if len(results) == 0 {
		return []any{}, nil
	}
	if len(results) == 1 {
		return results[0], nil
	}
	return results, nil
}

func cachedJQCode(expression string) (*gojq.Code, error) {
	if cached, ok := jqCodeCache.Load(expression); ok {
		if typed, ok := cached.(*gojq.Code); ok && typed != nil {
			return typed, nil
		}
	}

	query, err := gojq.Parse(expression)
	if err != nil {
		return nil, err
	}
	code, err := gojq.Compile(query)
	if err != nil {
		return nil, err
	}

	actual, _ := jqCodeCache.LoadOrStore(expression, code)
	typed, _ := actual.(*gojq.Code)
	if typed == nil {
		return code, nil
	}
	return typed, nil
}

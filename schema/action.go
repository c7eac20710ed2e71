package schema

import (
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/shopspring/decimal"
)

type actionOp uint8

const (
	actionSet actionOp = iota + 1
	actionRemove
	actionAdd
)

// Action is one clause of an update expression.
type Action struct {
	op    actionOp
	name  string
	value types.AttributeValue
	err   error
}

// Name returns the attribute the action writes.
func (a Action) Name() string { return a.name }

// Err returns the error recorded while building the action.
func (a Action) Err() error { return a.err }

// String returns a readable form of the action.
func (a Action) String() string {
	switch a.op {
	case actionSet:
		return fmt.Sprintf("SET %s = %s", a.name, formatValue(a.value))
	case actionRemove:
		return "REMOVE " + a.name
	case actionAdd:
		return fmt.Sprintf("ADD %s %s", a.name, formatValue(a.value))
	default:
		return ""
	}
}

// Apply applies the action to a stored item in place.
func (a Action) Apply(av map[string]types.AttributeValue) error {
	if a.err != nil {
		return a.err
	}
	switch a.op {
	case actionSet:
		av[a.name] = a.value
	case actionRemove:
		delete(av, a.name)
	case actionAdd:
		cur, ok := av[a.name]
		if !ok {
			av[a.name] = a.value
			return nil
		}
		x, ok1 := cur.(*types.AttributeValueMemberN)
		y, ok2 := a.value.(*types.AttributeValueMemberN)
		if !ok1 || !ok2 {
			return fmt.Errorf("schema: ADD on %q requires number operands", a.name)
		}
		dx, err := decimal.NewFromString(x.Value)
		if err != nil {
			return fmt.Errorf("schema: ADD on %q: %w", a.name, err)
		}
		dy, err := decimal.NewFromString(y.Value)
		if err != nil {
			return fmt.Errorf("schema: ADD on %q: %w", a.name, err)
		}
		av[a.name] = &types.AttributeValueMemberN{Value: dx.Add(dy).String()}
	default:
		return fmt.Errorf("schema: unknown action %d", a.op)
	}
	return nil
}

// Set assigns v to the attribute.
func (a *Attribute[T]) Set(v T) Action {
	av, err := a.Encode(v)
	return Action{op: actionSet, name: a.name, value: av, err: err}
}

// Remove deletes the attribute from the item.
func (a *Attribute[T]) Remove() Action {
	return Action{op: actionRemove, name: a.name}
}

// Add increments a number attribute by v. A missing attribute is set to v.
func (a *Attribute[T]) Add(v T) Action {
	av, err := a.Encode(v)
	if err == nil {
		if _, ok := av.(*types.AttributeValueMemberN); !ok {
			err = fmt.Errorf("schema: ADD on %q requires a number attribute", a.name)
		}
	}
	return Action{op: actionAdd, name: a.name, value: av, err: err}
}

// BuildUpdate compiles actions into an update expression builder.
func BuildUpdate(actions []Action) (expression.UpdateBuilder, error) {
	var ub expression.UpdateBuilder
	if len(actions) == 0 {
		return ub, errors.New("schema: update requires at least one action")
	}
	for _, a := range actions {
		if a.err != nil {
			return ub, a.err
		}
		name := expression.Name(a.name)
		switch a.op {
		case actionSet:
			ub = ub.Set(name, value(a.value))
		case actionRemove:
			ub = ub.Remove(name)
		case actionAdd:
			ub = ub.Add(name, value(a.value))
		default:
			return ub, fmt.Errorf("schema: unknown action %d", a.op)
		}
	}
	return ub, nil
}

// Package filterexpr binds CEL-style filter and order_by strings onto plain query structs. Only
// conjunctions of simple comparisons are accepted.
package filterexpr

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"slices"
	"strings"
	"time"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/operators"
	"github.com/google/cel-go/common/overloads"
	exprpb "google.golang.org/genproto/googleapis/api/expr/v1alpha1"
)

// ErrInvalidExpression wraps every rejection of a filter or order_by clause.
var ErrInvalidExpression = errors.New("invalid query expression")

// Msg wraps request DTOs that expose filter and order_by raw inputs.
type Msg interface {
	GetFilter() string
	GetOrderBy() string
}

// ValueKind describes the kind of literal value a field accepts.
type ValueKind string

const (
	KindString    ValueKind = "string"
	KindNumber    ValueKind = "number"
	KindTimestamp ValueKind = "timestamp"
)

// Op represents a supported comparison operation.
type Op string

const (
	OpEQ  Op = "=="
	OpGTE Op = ">="
	OpLTE Op = "<="
	OpSW  Op = "startsWith"
	OpIN  Op = "in"
)

// SetterFunc allows custom assignment of literal values to struct fields.
type SetterFunc func(field reflect.Value, value any) error

// FilterField maps one filter identifier onto params struct fields, keyed by operator.
type FilterField struct {
	Kind   ValueKind
	Ops    map[Op]string
	Setter SetterFunc
}

// OrderSchema describes ordering defaults and whitelisted keys. Keys is ordered so that the
// tie-breaker chosen for a duplicated fallback is deterministic.
type OrderSchema struct {
	DefaultPrimary     string
	DefaultPrimaryDesc bool
	FallbackKey        string
	FallbackDesc       bool
	Keys               []string
}

// ResourceSchema aggregates filtering and ordering rules for a resource.
type ResourceSchema struct {
	Filter map[string]FilterField
	Order  OrderSchema
}

var celTypes = map[ValueKind]*cel.Type{
	KindString:    cel.StringType,
	KindNumber:    cel.DoubleType,
	KindTimestamp: cel.TimestampType,
}

// callOps lists the CEL functions a predicate may use.
var callOps = map[string]Op{
	operators.Equals:        OpEQ,
	operators.GreaterEquals: OpGTE,
	operators.LessEquals:    OpLTE,
	operators.In:            OpIN,
	operators.OldIn:         OpIN,
	overloads.StartsWith:    OpSW,
}

// Bind parses the request filter and order_by and writes the result into binding. The order keys
// land in PrimaryKey, PrimaryDesc, SecondaryKey and SecondaryDesc.
func Bind[M Msg, P any](msg M, binding *P, schema ResourceSchema) error {
	if binding == nil {
		return errors.New("filterexpr: nil binding")
	}
	dest := reflect.ValueOf(binding).Elem()
	if dest.Kind() != reflect.Struct {
		return fmt.Errorf("filterexpr: binding %s is not a struct", dest.Type())
	}

	preds, err := compileFilter(msg.GetFilter(), schema.Filter)
	if err != nil {
		return fmt.Errorf("%w: filter: %v", ErrInvalidExpression, err)
	}
	for _, p := range preds {
		if err := p.bind(dest, schema.Filter[p.field]); err != nil {
			return fmt.Errorf("%w: filter: %v", ErrInvalidExpression, err)
		}
	}

	terms, err := parseOrderBy(msg.GetOrderBy(), schema.Order)
	if err != nil {
		return fmt.Errorf("%w: order_by: %v", ErrInvalidExpression, err)
	}
	return bindOrder(dest, terms)
}

type predicate struct {
	field string
	op    Op
	value any
}

// compileFilter parses filter and checks every conjunct against the schema.
func compileFilter(filter string, fields map[string]FilterField) ([]predicate, error) {
	filter = strings.TrimSpace(filter)
	if filter == "" {
		return nil, nil
	}
	if len(fields) == 0 {
		return nil, errors.New("resource has no filterable fields")
	}

	env, err := newEnv(fields)
	if err != nil {
		return nil, err
	}
	ast, iss := env.Parse(filter)
	if iss != nil && iss.Err() != nil {
		return nil, iss.Err()
	}
	parsed, err := cel.AstToParsedExpr(ast)
	if err != nil {
		return nil, fmt.Errorf("convert AST: %w", err)
	}

	var preds []predicate
	err = walkConjuncts(parsed.GetExpr(), func(e *exprpb.Expr) error {
		p, err := decodePredicate(e)
		if err != nil {
			return err
		}
		rule, ok := fields[p.field]
		if !ok {
			return fmt.Errorf("field %q is not filterable", p.field)
		}
		if _, ok := rule.Ops[p.op]; !ok {
			return fmt.Errorf("operator %q is not allowed for field %q", p.op, p.field)
		}
		if err := checkLiteral(rule.Kind, p.op, p.value); err != nil {
			return fmt.Errorf("field %q: %w", p.field, err)
		}
		preds = append(preds, p)
		return nil
	})
	return preds, err
}

func newEnv(fields map[string]FilterField) (*cel.Env, error) {
	opts := []cel.EnvOption{cel.CrossTypeNumericComparisons(true)}
	for name, rule := range fields {
		t, ok := celTypes[rule.Kind]
		if !ok {
			return nil, fmt.Errorf("field %q: unsupported kind %q", name, rule.Kind)
		}
		opts = append(opts, cel.Variable(name, t))
	}
	return cel.NewEnv(opts...)
}

// walkConjuncts flattens nested && chains and visits each operand in source order.
func walkConjuncts(e *exprpb.Expr, visit func(*exprpb.Expr) error) error {
	if e == nil {
		return errors.New("empty expression")
	}
	call := e.GetCallExpr()
	if call == nil || call.GetFunction() != operators.LogicalAnd {
		return visit(e)
	}
	if call.GetTarget() != nil || len(call.GetArgs()) < 2 {
		return errors.New("malformed && expression")
	}
	for _, arg := range call.GetArgs() {
		if err := walkConjuncts(arg, visit); err != nil {
			return err
		}
	}
	return nil
}

// decodePredicate reads `field <op> literal`. Receiver calls such as word.startsWith('a') treat
// the target as the first operand.
func decodePredicate(e *exprpb.Expr) (predicate, error) {
	call := e.GetCallExpr()
	if call == nil {
		return predicate{}, errors.New("expected a comparison or function call")
	}
	fn := call.GetFunction()
	op, ok := callOps[fn]
	if !ok {
		switch fn {
		case operators.LogicalOr, operators.LogicalNot, operators.Conditional:
			return predicate{}, fmt.Errorf("operator %q is not supported; only && may combine terms", fn)
		}
		return predicate{}, fmt.Errorf("function %q is not supported", fn)
	}

	operands := call.GetArgs()
	if target := call.GetTarget(); target != nil {
		operands = append([]*exprpb.Expr{target}, operands...)
	}
	if len(operands) != 2 {
		return predicate{}, fmt.Errorf("operator %q expects two operands", op)
	}

	ident := operands[0].GetIdentExpr()
	if ident == nil {
		return predicate{}, errors.New("left-hand side must be a field name")
	}
	value, err := literal(operands[1])
	if err != nil {
		return predicate{}, err
	}
	return predicate{field: ident.GetName(), op: op, value: value}, nil
}

// literal yields string, float64, time.Time, []string or []float64.
func literal(e *exprpb.Expr) (any, error) {
	if c := e.GetConstExpr(); c != nil {
		switch k := c.GetConstantKind().(type) {
		case *exprpb.Constant_StringValue:
			return k.StringValue, nil
		case *exprpb.Constant_Int64Value:
			return float64(k.Int64Value), nil
		case *exprpb.Constant_Uint64Value:
			return float64(k.Uint64Value), nil
		case *exprpb.Constant_DoubleValue:
			return k.DoubleValue, nil
		default:
			return nil, fmt.Errorf("literal type %T is not supported", k)
		}
	}
	if list := e.GetListExpr(); list != nil {
		return listLiteral(list.GetElements())
	}
	if call := e.GetCallExpr(); call != nil && call.GetFunction() == overloads.TypeConvertTimestamp {
		return timestampLiteral(call)
	}
	return nil, errors.New("right-hand side must be a literal, a list literal or timestamp()")
}

func listLiteral(elems []*exprpb.Expr) (any, error) {
	strs := make([]string, 0, len(elems))
	var nums []float64
	for i, el := range elems {
		v, err := literal(el)
		if err != nil {
			return nil, fmt.Errorf("list element %d: %w", i, err)
		}
		switch v := v.(type) {
		case string:
			strs = append(strs, v)
		case float64:
			nums = append(nums, v)
		default:
			return nil, fmt.Errorf("list element %d: lists hold strings or numbers", i)
		}
	}
	switch {
	case len(strs) > 0 && len(nums) > 0:
		return nil, errors.New("list elements must share one type")
	case len(nums) > 0:
		return nums, nil
	}
	return strs, nil
}

func timestampLiteral(call *exprpb.Expr_Call) (time.Time, error) {
	if call.GetTarget() != nil || len(call.GetArgs()) != 1 {
		return time.Time{}, errors.New("timestamp() takes one string argument")
	}
	raw := call.GetArgs()[0].GetConstExpr().GetStringValue()
	if raw == "" {
		return time.Time{}, errors.New("timestamp() needs a non-empty string literal")
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("timestamp literal %q is not RFC3339", raw)
	}
	return t, nil
}

func checkLiteral(kind ValueKind, op Op, v any) error {
	if op == OpIN {
		return checkList(kind, v)
	}
	var ok bool
	switch kind {
	case KindString:
		_, ok = v.(string)
	case KindNumber:
		_, ok = v.(float64)
	case KindTimestamp:
		_, ok = v.(time.Time)
	default:
		return fmt.Errorf("unsupported kind %q", kind)
	}
	if !ok {
		return fmt.Errorf("expected %s literal, got %T", kind, v)
	}
	return nil
}

func checkList(kind ValueKind, v any) error {
	var n int
	switch kind {
	case KindString:
		list, ok := v.([]string)
		if !ok {
			return fmt.Errorf("expected list of %s literals", kind)
		}
		if slices.Contains(list, "") {
			return errors.New("list literal must not contain empty strings")
		}
		n = len(list)
	case KindNumber:
		list, ok := v.([]float64)
		if !ok {
			return fmt.Errorf("expected list of %s literals", kind)
		}
		n = len(list)
	default:
		return fmt.Errorf("operator in is not supported for %s fields", kind)
	}
	if n == 0 {
		return errors.New("list literal must not be empty")
	}
	return nil
}

func (p predicate) bind(dest reflect.Value, rule FilterField) error {
	name := rule.Ops[p.op]
	field, err := settableField(dest, name)
	if err != nil {
		return err
	}
	if rule.Setter == nil {
		if err := assign(field, p.value); err != nil {
			return fmt.Errorf("field %q: %w", name, err)
		}
		return nil
	}
	if field.Kind() == reflect.Pointer && field.IsNil() {
		field.Set(reflect.New(field.Type().Elem()))
	}
	if err := rule.Setter(field, p.value); err != nil {
		return fmt.Errorf("setter for field %q: %w", name, err)
	}
	return nil
}

func settableField(dest reflect.Value, name string) (reflect.Value, error) {
	field := dest.FieldByName(name)
	if !field.IsValid() || !field.CanSet() {
		return reflect.Value{}, fmt.Errorf("params struct %s has no settable field %q", dest.Type(), name)
	}
	return field, nil
}

// assign stores v in field, allocating pointers on the way. Numbers are range-checked against
// integer destinations.
func assign(field reflect.Value, v any) error {
	for field.Kind() == reflect.Pointer {
		if field.IsNil() {
			field.Set(reflect.New(field.Type().Elem()))
		}
		field = field.Elem()
	}

	switch v := v.(type) {
	case float64:
		return setNumber(field, v)
	case []float64:
		if field.Kind() != reflect.Slice {
			return fmt.Errorf("cannot assign a number list to %s", field.Type())
		}
		out := reflect.MakeSlice(field.Type(), len(v), len(v))
		for i, n := range v {
			if err := setNumber(out.Index(i), n); err != nil {
				return fmt.Errorf("element %d: %w", i, err)
			}
		}
		field.Set(out)
		return nil
	}

	rv := reflect.ValueOf(v)
	if !rv.Type().ConvertibleTo(field.Type()) {
		return fmt.Errorf("cannot assign %T to %s", v, field.Type())
	}
	field.Set(rv.Convert(field.Type()))
	return nil
}

func setNumber(field reflect.Value, n float64) error {
	switch {
	case field.CanFloat():
		field.SetFloat(n)
		return nil
	case field.CanInt():
		if n != math.Trunc(n) {
			return fmt.Errorf("%v is not an integer", n)
		}
		if n < math.MinInt64 || n >= math.MaxInt64 || field.OverflowInt(int64(n)) {
			return fmt.Errorf("%v overflows %s", n, field.Type())
		}
		field.SetInt(int64(n))
		return nil
	case field.CanUint():
		if n != math.Trunc(n) || n < 0 {
			return fmt.Errorf("%v is not a non-negative integer", n)
		}
		if n >= math.MaxUint64 || field.OverflowUint(uint64(n)) {
			return fmt.Errorf("%v overflows %s", n, field.Type())
		}
		field.SetUint(uint64(n))
		return nil
	case field.Kind() == reflect.Interface:
		field.Set(reflect.ValueOf(n))
		return nil
	default:
		return fmt.Errorf("cannot assign a number to %s", field.Type())
	}
}

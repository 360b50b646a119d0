package memory

import (
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fekuna/omnipos-catalog-service/internal/store"
	"github.com/shopspring/decimal"
)

// fieldIndex maps db column names to struct field index paths, following
// embedded structs.
type fieldIndex map[string][]int

var (
	indexMu    sync.Mutex
	indexCache = map[reflect.Type]fieldIndex{}
)

func indexOf(t reflect.Type) fieldIndex {
	indexMu.Lock()
	defer indexMu.Unlock()
	if idx, ok := indexCache[t]; ok {
		return idx
	}
	idx := fieldIndex{}
	var walk func(t reflect.Type, prefix []int)
	walk = func(t reflect.Type, prefix []int) {
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			path := append(append([]int{}, prefix...), i)
			if f.Anonymous && f.Type.Kind() == reflect.Struct {
				walk(f.Type, path)
				continue
			}
			if tag := f.Tag.Get("db"); tag != "" && tag != "-" {
				idx[tag] = path
			}
		}
	}
	walk(t, nil)
	indexCache[t] = idx
	return idx
}

// value returns the field as a comparable Go value; nil for NULL.
func value(rec reflect.Value, path []int) interface{} {
	v := rec.FieldByIndex(path)
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	return v.Interface()
}

// apply filters, orders and paginates rows the way the SQL adapter would.
func apply[T any](rows []T, q store.Query) ([]T, error) {
	var zero T
	idx := indexOf(reflect.TypeOf(zero))
	for _, f := range q.Fields() {
		if _, ok := idx[f]; !ok {
			return nil, fmt.Errorf("%w: %s", store.ErrUnknownField, f)
		}
	}

	out := make([]T, 0, len(rows))
	for _, r := range rows {
		ok, err := matches(reflect.ValueOf(r), idx, q.Filter)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, r)
		}
	}

	if len(q.OrderBy) > 0 {
		sort.SliceStable(out, func(i, j int) bool {
			a, b := reflect.ValueOf(out[i]), reflect.ValueOf(out[j])
			for _, o := range q.OrderBy {
				c := compareNullsLast(value(a, idx[o.Field]), value(b, idx[o.Field]))
				if c == 0 {
					continue
				}
				if o.Desc {
					return c > 0
				}
				return c < 0
			}
			return false
		})
	}

	if q.Offset > 0 {
		if q.Offset >= len(out) {
			return []T{}, nil
		}
		out = out[q.Offset:]
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func matches(rec reflect.Value, idx fieldIndex, f store.Filter) (bool, error) {
	for _, p := range f.All {
		ok, err := eval(value(rec, idx[p.Field]), p)
		if err != nil || !ok {
			return false, err
		}
	}
	for _, group := range f.AnyOf {
		hit := false
		for _, p := range group {
			ok, err := eval(value(rec, idx[p.Field]), p)
			if err != nil {
				return false, err
			}
			if ok {
				hit = true
				break
			}
		}
		if !hit {
			return false, nil
		}
	}
	return true, nil
}

func eval(v interface{}, p store.Predicate) (bool, error) {
	switch p.Op {
	case store.OpIsNull:
		return v == nil, nil
	case store.OpNotNull:
		return v != nil, nil
	}
	// SQL semantics: comparisons against NULL are never true
	if v == nil {
		return false, nil
	}

	switch p.Op {
	case store.OpIn:
		vs, ok := p.Value.([]string)
		if !ok {
			return false, fmt.Errorf("%w: IN expects []string for %s", store.ErrInvalidOp, p.Field)
		}
		s := fmt.Sprint(v)
		for _, x := range vs {
			if x == s {
				return true, nil
			}
		}
		return false, nil
	case store.OpLike:
		pattern, ok := p.Value.(string)
		if !ok {
			return false, fmt.Errorf("%w: LIKE expects a string for %s", store.ErrInvalidOp, p.Field)
		}
		return likeRegexp(pattern).MatchString(fmt.Sprint(v)), nil
	}

	c, err := compare(v, p.Value)
	if err != nil {
		return false, fmt.Errorf("%s: %w", p, err)
	}
	switch p.Op {
	case store.OpEq:
		return c == 0, nil
	case store.OpNe:
		return c != 0, nil
	case store.OpGt:
		return c > 0, nil
	case store.OpGte:
		return c >= 0, nil
	case store.OpLt:
		return c < 0, nil
	case store.OpLte:
		return c <= 0, nil
	}
	return false, fmt.Errorf("%w: %q", store.ErrInvalidOp, p.Op)
}

var (
	likeMu    sync.Mutex
	likeCache = map[string]*regexp.Regexp{}
)

func likeRegexp(pattern string) *regexp.Regexp {
	likeMu.Lock()
	defer likeMu.Unlock()
	if re, ok := likeCache[pattern]; ok {
		return re
	}
	var b strings.Builder
	b.WriteString("(?is)^")
	escaped := false
	for _, r := range pattern {
		if escaped {
			b.WriteString(regexp.QuoteMeta(string(r)))
			escaped = false
			continue
		}
		switch r {
		case '\\':
			escaped = true
		case '%':
			b.WriteString(".*")
		case '_':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString("$")
	re := regexp.MustCompile(b.String())
	likeCache[pattern] = re
	return re
}

// compareNullsLast orders NULL after every value, as Postgres does for ASC.
func compareNullsLast(a, b interface{}) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	c, err := compare(a, b)
	if err != nil {
		return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
	}
	return c
}

func compare(a, b interface{}) (int, error) {
	if pb, ok := b.(*string); ok && pb != nil {
		b = *pb
	}
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		if !ok {
			return 0, fmt.Errorf("cannot compare string with %T", b)
		}
		return strings.Compare(av, bv), nil
	case bool:
		bv, ok := b.(bool)
		if !ok {
			return 0, fmt.Errorf("cannot compare bool with %T", b)
		}
		switch {
		case av == bv:
			return 0, nil
		case !av:
			return -1, nil
		default:
			return 1, nil
		}
	case time.Time:
		bv, ok := b.(time.Time)
		if !ok {
			return 0, fmt.Errorf("cannot compare time with %T", b)
		}
		return av.Compare(bv), nil
	case decimal.Decimal:
		bv, err := toDecimal(b)
		if err != nil {
			return 0, err
		}
		return av.Cmp(bv), nil
	case int:
		bv, err := toDecimal(b)
		if err != nil {
			return 0, err
		}
		return decimal.NewFromInt(int64(av)).Cmp(bv), nil
	}
	return 0, fmt.Errorf("unsupported field type %T", a)
}

func toDecimal(v interface{}) (decimal.Decimal, error) {
	switch x := v.(type) {
	case decimal.Decimal:
		return x, nil
	case int:
		return decimal.NewFromInt(int64(x)), nil
	case int64:
		return decimal.NewFromInt(x), nil
	case float64:
		return decimal.NewFromFloat(x), nil
	case string:
		return decimal.NewFromString(x)
	}
	return decimal.Zero, fmt.Errorf("cannot compare number with %T", v)
}

package odata

import (
	"fmt"
	"strconv"
	"strings"
)

// sqlBuilder collects positional arguments for pgx ($1, $2, ...).
type sqlBuilder struct {
	offset int
	args   []any
}

func (b *sqlBuilder) arg(v any) string {
	b.args = append(b.args, v)
	return "$" + strconv.Itoa(b.offset+len(b.args))
}

// Where renders the filter as a SQL boolean expression. Placeholders start at
// argOffset+1 so the fragment can be appended to a query that already has args.
// An empty string means no filter.
func (o *Options) Where(argOffset int) (string, []any) {
	if o == nil || o.Filter == nil {
		return "", nil
	}
	b := &sqlBuilder{offset: argOffset}
	return b.render(o.Filter), b.args
}

func (b *sqlBuilder) render(e Expr) string {
	switch e := e.(type) {
	case LogicalExpr:
		return "(" + b.render(e.Left) + " " + strings.ToUpper(e.Op) + " " + b.render(e.Right) + ")"

	case NotExpr:
		return "NOT (" + b.render(e.X) + ")"

	case BoolFieldExpr:
		return e.Field.Column

	case FuncExpr:
		p := b.arg(e.Arg)
		switch e.Name {
		case "contains":
			return fmt.Sprintf("strpos(%s, %s) > 0", e.Field.Column, p)
		case "startswith":
			return fmt.Sprintf("starts_with(%s, %s)", e.Field.Column, p)
		default:
			return fmt.Sprintf("right(%s, char_length(%s)) = %s", e.Field.Column, p, p)
		}

	case CompareExpr:
		col := e.Field.Column
		if e.Value.Null {
			if e.Op == "eq" {
				return col + " IS NULL"
			}
			return col + " IS NOT NULL"
		}
		cond := fmt.Sprintf("%s %s %s", col, compareOps[e.Op], b.arg(e.Value.Value))
		// ne для nullable-поля должен включать строки с NULL
		if e.Op == "ne" && e.Field.Nullable {
			return "(" + cond + " OR " + col + " IS NULL)"
		}
		return cond
	}

	return "TRUE"
}

// OrderSQL renders the ORDER BY list. keyColumn is appended as the final sort
// key unless already present, so paging over equal values is stable.
func (o *Options) OrderSQL(keyColumn string) string {
	var (
		parts   []string
		hasKey  bool
		orderBy []OrderItem
	)
	if o != nil {
		orderBy = o.OrderBy
	}
	for _, item := range orderBy {
		dir := "ASC"
		if item.Desc {
			dir = "DESC"
		}
		if item.Field.Column == keyColumn {
			hasKey = true
		}
		parts = append(parts, item.Field.Column+" "+dir)
	}
	if !hasKey && keyColumn != "" {
		parts = append(parts, keyColumn+" ASC")
	}
	return strings.Join(parts, ", ")
}

// Page renders LIMIT/OFFSET with placeholders starting at argOffset+1.
func (o *Options) Page(argOffset int) (string, []any) {
	if o == nil {
		return "", nil
	}
	b := &sqlBuilder{offset: argOffset}
	var parts []string
	if o.Top != nil {
		parts = append(parts, "LIMIT "+b.arg(*o.Top))
	}
	if o.Skip > 0 {
		parts = append(parts, "OFFSET "+b.arg(o.Skip))
	}
	return strings.Join(parts, " "), b.args
}

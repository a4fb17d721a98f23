package odata

import (
	"strconv"
	"strings"
)

// MaxTop is the largest page size a client may ask for.
const MaxTop = 100

// RawOptions are the system query options as they arrive in the query string.
type RawOptions struct {
	Filter  string
	OrderBy string
	Skip    string
	Top     string
	Select  string
	Count   string
}

type OrderItem struct {
	Field Field
	Desc  bool
}

type Options struct {
	Filter  Expr
	OrderBy []OrderItem
	Skip    int
	Top     *int
	Select  []Field
	Count   bool
}

// ErrTopLimit is returned when $top exceeds MaxTop.
var ErrTopLimit = &Error{Option: "$top", Msg: "the limit of " + strconv.Itoa(MaxTop) + " has been exceeded"}

// Parse validates every option against the schema.
func Parse(schema *Schema, raw RawOptions) (*Options, error) {
	var (
		opts = &Options{}
		err  error
	)

	if opts.Filter, err = ParseFilter(schema, raw.Filter); err != nil {
		return nil, err
	}
	if opts.OrderBy, err = parseOrderBy(schema, raw.OrderBy); err != nil {
		return nil, err
	}
	if opts.Select, err = parseSelect(schema, raw.Select); err != nil {
		return nil, err
	}

	if s := strings.TrimSpace(raw.Skip); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return nil, errorf("$skip", "expected a non-negative integer, got %q", s)
		}
		opts.Skip = n
	}

	if s := strings.TrimSpace(raw.Top); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return nil, errorf("$top", "expected a non-negative integer, got %q", s)
		}
		if n > MaxTop {
			return nil, ErrTopLimit
		}
		opts.Top = &n
	}

	if s := strings.TrimSpace(raw.Count); s != "" {
		switch strings.ToLower(s) {
		case "true":
			opts.Count = true
		case "false":
		default:
			return nil, errorf("$count", "expected true or false, got %q", s)
		}
	}

	return opts, nil
}

func parseOrderBy(schema *Schema, src string) ([]OrderItem, error) {
	const option = "$orderby"
	if strings.TrimSpace(src) == "" {
		return nil, nil
	}

	var items []OrderItem
	for _, part := range strings.Split(src, ",") {
		words := strings.Fields(part)
		if len(words) == 0 || len(words) > 2 {
			return nil, errorf(option, "malformed clause %q", strings.TrimSpace(part))
		}
		f, ok := schema.Lookup(words[0])
		if !ok {
			return nil, errorf(option, "unknown property %q", words[0])
		}
		item := OrderItem{Field: f}
		if len(words) == 2 {
			switch strings.ToLower(words[1]) {
			case "asc":
			case "desc":
				item.Desc = true
			default:
				return nil, errorf(option, "unknown direction %q", words[1])
			}
		}
		items = append(items, item)
	}
	return items, nil
}

func parseSelect(schema *Schema, src string) ([]Field, error) {
	const option = "$select"
	src = strings.TrimSpace(src)
	if src == "" || src == "*" {
		return nil, nil
	}

	var (
		fields []Field
		seen   = make(map[string]bool)
	)
	for _, part := range strings.Split(src, ",") {
		name := strings.TrimSpace(part)
		f, ok := schema.Lookup(name)
		if !ok {
			return nil, errorf(option, "unknown property %q", name)
		}
		if seen[f.Name] {
			continue
		}
		seen[f.Name] = true
		fields = append(fields, f)
	}
	return fields, nil
}

// Project keeps only the selected properties of a record. Without $select the
// record is returned unchanged.
func (o *Options) Project(record map[string]any) map[string]any {
	if o == nil || len(o.Select) == 0 {
		return record
	}
	out := make(map[string]any, len(o.Select))
	for _, f := range o.Select {
		out[f.Name] = record[f.Name]
	}
	return out
}

package odata

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSchema = NewSchema(
	Field{Name: "Id", Column: "id", Kind: KindInt},
	Field{Name: "Title", Column: "title", Kind: KindString},
	Field{Name: "Description", Column: "description", Kind: KindString, Nullable: true},
	Field{Name: "ReminderDateTime", Column: "reminder_date_time", Kind: KindDateTime},
	Field{Name: "NotificationSent", Column: "notification_sent", Kind: KindBool},
)

func parseWhere(t *testing.T, filter string) (string, []any) {
	t.Helper()
	opts, err := Parse(testSchema, RawOptions{Filter: filter})
	require.NoError(t, err)
	return opts.Where(0)
}

func TestTokenize(t *testing.T) {
	tokens, err := tokenize(filterOption, "Title eq 'it''s' and Id ge -3 or ReminderDateTime lt 2025-02-01T10:00:00Z")
	require.NoError(t, err)

	var kinds []tokenKind
	for _, tok := range tokens {
		kinds = append(kinds, tok.kind)
	}
	assert.Equal(t, []tokenKind{
		tokIdent, tokIdent, tokString, tokIdent,
		tokIdent, tokIdent, tokNumber, tokIdent,
		tokIdent, tokIdent, tokDateTime, tokEOF,
	}, kinds)
	assert.Equal(t, "it's", tokens[2].text)
	assert.Equal(t, "-3", tokens[6].text)
}

func TestTokenize_Errors(t *testing.T) {
	_, err := tokenize(filterOption, "Title eq 'open")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unterminated")

	_, err = tokenize(filterOption, "Id eq 1;")
	require.Error(t, err)
}

func TestWhere_Comparisons(t *testing.T) {
	sql, args := parseWhere(t, "Title eq 'Meeting'")
	assert.Equal(t, "title = $1", sql)
	assert.Equal(t, []any{"Meeting"}, args)

	sql, args = parseWhere(t, "Id gt 5 and Id le 10")
	assert.Equal(t, "(id > $1 AND id <= $2)", sql)
	assert.Equal(t, []any{int64(5), int64(10)}, args)

	sql, _ = parseWhere(t, "not (Id eq 1 or Id eq 2)")
	assert.Equal(t, "NOT ((id = $1 OR id = $2))", sql)
}

func TestWhere_LiteralOnLeftIsFlipped(t *testing.T) {
	sql, args := parseWhere(t, "5 lt Id")
	assert.Equal(t, "id > $1", sql)
	assert.Equal(t, []any{int64(5)}, args)
}

func TestWhere_AndBindsTighterThanOr(t *testing.T) {
	sql, _ := parseWhere(t, "Id eq 1 or Id eq 2 and Id eq 3")
	assert.Equal(t, "(id = $1 OR (id = $2 AND id = $3))", sql)
}

func TestWhere_Null(t *testing.T) {
	sql, args := parseWhere(t, "Description eq null")
	assert.Equal(t, "description IS NULL", sql)
	assert.Empty(t, args)

	sql, _ = parseWhere(t, "Description ne null")
	assert.Equal(t, "description IS NOT NULL", sql)

	sql, args = parseWhere(t, "Description ne 'x'")
	assert.Equal(t, "(description <> $1 OR description IS NULL)", sql)
	assert.Equal(t, []any{"x"}, args)
}

func TestWhere_StringFunctions(t *testing.T) {
	sql, args := parseWhere(t, "contains(Title, '50%_off')")
	assert.Equal(t, "strpos(title, $1) > 0", sql)
	assert.Equal(t, []any{"50%_off"}, args)

	sql, _ = parseWhere(t, "startswith(Title,'Meet')")
	assert.Equal(t, "starts_with(title, $1)", sql)

	sql, _ = parseWhere(t, "endswith(Description, 'end')")
	assert.Equal(t, "right(description, char_length($1)) = $1", sql)
}

func TestWhere_StringFunctionComparedWithBool(t *testing.T) {
	sql, args := parseWhere(t, "contains(Title,'a') eq true")
	assert.Equal(t, "strpos(title, $1) > 0", sql)
	assert.Equal(t, []any{"a"}, args)

	sql, _ = parseWhere(t, "startswith(Title,'a') eq false")
	assert.Equal(t, "NOT (starts_with(title, $1))", sql)

	sql, _ = parseWhere(t, "contains(Title,'a') ne true and Id gt 1")
	assert.Equal(t, "(NOT (strpos(title, $1) > 0) AND id > $2)", sql)
}

func TestWhere_DateTimeAndBool(t *testing.T) {
	sql, args := parseWhere(t, "ReminderDateTime ge 2025-02-01T10:00:00Z and NotificationSent eq false")
	assert.Equal(t, "(reminder_date_time >= $1 AND notification_sent = $2)", sql)
	require.Len(t, args, 2)
	assert.Equal(t, time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC), args[0])
	assert.Equal(t, false, args[1])

	sql, args = parseWhere(t, "ReminderDateTime lt '2025-03-01'")
	assert.Equal(t, "reminder_date_time < $1", sql)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), args[0])

	sql, _ = parseWhere(t, "not NotificationSent")
	assert.Equal(t, "NOT (notification_sent)", sql)
}

func TestWhere_ArgOffset(t *testing.T) {
	opts, err := Parse(testSchema, RawOptions{Filter: "Id eq 1"})
	require.NoError(t, err)

	sql, _ := opts.Where(2)
	assert.Equal(t, "id = $3", sql)
}

func TestParseFilter_Rejects(t *testing.T) {
	cases := map[string]string{
		"unknown property":       "Owner eq 'x'",
		"type mismatch":          "Id eq 'x'",
		"null on non-nullable":   "Title eq null",
		"null with gt":           "Description gt null",
		"bool ordering":          "NotificationSent gt true",
		"function on int":        "contains(Id, '1')",
		"function ordering":      "contains(Title, 'a') gt true",
		"function vs number":     "contains(Title, 'a') eq 1",
		"missing operator":       "Title 'x'",
		"unbalanced parenthesis": "(Id eq 1",
		"trailing tokens":        "Id eq 1 2",
		"unknown function":       "substringof('a', Title)",
		"bad datetime":           "ReminderDateTime eq 2025-13-45",
	}
	for name, filter := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(testSchema, RawOptions{Filter: filter})
			require.Error(t, err)
			var oerr *Error
			assert.True(t, errors.As(err, &oerr))
			assert.Equal(t, "$filter", oerr.Option)
		})
	}
}

func TestParse_OrderByAndTiebreak(t *testing.T) {
	opts, err := Parse(testSchema, RawOptions{OrderBy: "ReminderDateTime desc, title"})
	require.NoError(t, err)
	assert.Equal(t, "reminder_date_time DESC, title ASC, id ASC", opts.OrderSQL("id"))

	opts, err = Parse(testSchema, RawOptions{OrderBy: "Id desc"})
	require.NoError(t, err)
	assert.Equal(t, "id DESC", opts.OrderSQL("id"))

	opts, err = Parse(testSchema, RawOptions{})
	require.NoError(t, err)
	assert.Equal(t, "id ASC", opts.OrderSQL("id"))

	_, err = Parse(testSchema, RawOptions{OrderBy: "Title sideways"})
	require.Error(t, err)
	_, err = Parse(testSchema, RawOptions{OrderBy: "Nope"})
	require.Error(t, err)
}

func TestParse_Paging(t *testing.T) {
	opts, err := Parse(testSchema, RawOptions{Top: "10", Skip: "20"})
	require.NoError(t, err)
	sql, args := opts.Page(1)
	assert.Equal(t, "LIMIT $2 OFFSET $3", sql)
	assert.Equal(t, []any{10, 20}, args)

	opts, err = Parse(testSchema, RawOptions{})
	require.NoError(t, err)
	sql, args = opts.Page(0)
	assert.Empty(t, sql)
	assert.Empty(t, args)

	_, err = Parse(testSchema, RawOptions{Top: "101"})
	assert.ErrorIs(t, err, ErrTopLimit)

	_, err = Parse(testSchema, RawOptions{Top: "100"})
	assert.NoError(t, err)

	_, err = Parse(testSchema, RawOptions{Skip: "-1"})
	assert.Error(t, err)

	_, err = Parse(testSchema, RawOptions{Top: "ten"})
	assert.Error(t, err)
}

func TestParse_SelectAndCount(t *testing.T) {
	opts, err := Parse(testSchema, RawOptions{Select: "title, Id, Title", Count: "true"})
	require.NoError(t, err)
	assert.True(t, opts.Count)
	require.Len(t, opts.Select, 2)

	projected := opts.Project(map[string]any{"Id": int64(1), "Title": "A", "Description": nil})
	assert.Equal(t, map[string]any{"Id": int64(1), "Title": "A"}, projected)

	_, err = Parse(testSchema, RawOptions{Select: "Secret"})
	assert.Error(t, err)

	_, err = Parse(testSchema, RawOptions{Count: "maybe"})
	assert.Error(t, err)
}

func TestParseDateTime(t *testing.T) {
	got, err := ParseDateTime("2025-02-01T12:00:00+03:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC), got)

	got, err = ParseDateTime("2025-02-01T12:00")
	require.NoError(t, err)
	assert.Equal(t, time.UTC, got.Location())

	_, err = ParseDateTime("yesterday")
	assert.Error(t, err)
}

package binding_test

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/reoring/bindjson"
	"github.com/reoring/bindjson/binding"
)

type person struct {
	Name string
	Age  int
	Tags []string
}

func personBinding() *binding.ObjectBuilder[person] {
	b := binding.Object[person](binding.UnknownFail(), binding.Name("person"))
	binding.Field(b, "name", func(p *person) *string { return &p.Name }).Mandatory()
	binding.Field(b, "age", func(p *person) *int { return &p.Age })
	binding.Field(b, "tags", func(p *person) *[]string { return &p.Tags }).OmitEmpty()
	return b
}

func personTable(t *testing.T) *binding.Table {
	t.Helper()
	table, err := binding.NewTableBuilder().Bind(personBinding()).Build()
	require.NoError(t, err)
	return table
}

func TestObjectBuilder_Encode(t *testing.T) {
	table := personTable(t)

	out, err := table.Encode(person{Name: "Ada", Age: 36})
	require.NoError(t, err)
	require.Equal(t, `{"name":"Ada","age":36}`, string(out))

	out, err = table.Encode(person{Name: "Ada", Age: 36, Tags: []string{"a", "b"}})
	require.NoError(t, err)
	require.Equal(t, `{"name":"Ada","age":36,"tags":["a","b"]}`, string(out))

	out, err = table.Encode(&person{Name: "p"})
	require.NoError(t, err)
	require.Equal(t, `{"name":"p","age":0}`, string(out))
}

func TestObjectBuilder_Decode(t *testing.T) {
	table := personTable(t)

	p, err := binding.Decode[person](table, []byte(` {"tags":["x"], "age":7, "name":"Bo"} `))
	require.NoError(t, err)
	require.Equal(t, person{Name: "Bo", Age: 7, Tags: []string{"x"}}, p)

	p, err = binding.Decode[person](table, []byte(`{"name":"a","tags":null}`))
	require.NoError(t, err)
	require.Nil(t, p.Tags)

	p, err = binding.Decode[person](table, []byte(`{"n\u0061me":"esc\"aped"}`))
	require.NoError(t, err)
	require.Equal(t, `esc"aped`, p.Name)
}

func TestObjectBuilder_DecodeErrors(t *testing.T) {
	table := personTable(t)

	_, err := binding.Decode[person](table, []byte(`{"name":"Bo","nick":"b"}`))
	require.ErrorIs(t, err, bindjson.ErrUnknownAttribute)
	iss, ok := bindjson.AsIssues(err)
	require.True(t, ok)
	require.Equal(t, "/nick", iss[0].Path)
	require.Equal(t, "nick", iss[0].Params["key"])
	require.Equal(t, "person", iss[0].Params["type"])
	require.EqualValues(t, 13, iss[0].Offset)

	_, err = binding.Decode[person](table, []byte(`{"age":1}`))
	require.ErrorIs(t, err, bindjson.ErrMissingMandatory)
	iss, _ = bindjson.AsIssues(err)
	require.Equal(t, "/name", iss[0].Path)

	_, err = binding.Decode[person](table, []byte(`{"name":null}`))
	require.ErrorIs(t, err, bindjson.ErrNotNullable)

	_, err = binding.Decode[person](table, []byte(`{"name":"x","age":"old"}`))
	require.ErrorIs(t, err, bindjson.ErrTypeMismatch)
	iss, _ = bindjson.AsIssues(err)
	require.Equal(t, "/age", iss[0].Path)

	_, err = binding.Decode[person](table, []byte(`{"name":"x","tags":["a",1]}`))
	require.ErrorIs(t, err, bindjson.ErrTypeMismatch)
	iss, _ = bindjson.AsIssues(err)
	require.Equal(t, "/tags/1", iss[0].Path)

	_, err = binding.Decode[person](table, []byte(`{"name":"x"`))
	require.ErrorIs(t, err, bindjson.ErrParse)

	_, err = binding.Decode[person](table, []byte(`{"name":"x"} {}`))
	require.ErrorIs(t, err, bindjson.ErrParse)

	_, err = binding.Decode[person](table, []byte(`[]`))
	require.ErrorIs(t, err, bindjson.ErrTypeMismatch)
}

func TestObjectBuilder_NullTopLevel(t *testing.T) {
	table := personTable(t)
	p, err := binding.Decode[person](table, []byte(`null`))
	require.NoError(t, err)
	require.Equal(t, person{}, p)
}

type wide struct{ v [65]int }

func TestBuild_TooManyMandatory(t *testing.T) {
	b := binding.Object[wide]()
	for i := range 65 {
		binding.Field(b, fmt.Sprintf("f%d", i), func(w *wide) *int { return &w.v[i] }).Mandatory()
	}
	_, err := binding.NewTableBuilder().Bind(b).Build()
	require.ErrorIs(t, err, bindjson.ErrTooManyMandatory)
	require.NotErrorIs(t, err, bindjson.ErrInvalidBinding)
}

func TestBuild_SixtyFourMandatory(t *testing.T) {
	b := binding.Object[wide]()
	for i := range 64 {
		binding.Field(b, fmt.Sprintf("f%d", i), func(w *wide) *int { return &w.v[i] }).Mandatory()
	}
	table, err := binding.NewTableBuilder().Bind(b).Build()
	require.NoError(t, err)

	d, ok := table.Descriptor(b.Type())
	require.True(t, ok)
	require.Equal(t, ^uint64(0), d.RequiredMask())

	_, err = binding.Decode[wide](table, []byte(`{"f0":1}`))
	require.ErrorIs(t, err, bindjson.ErrMissingMandatory)
	iss, _ := bindjson.AsIssues(err)
	require.Len(t, iss, 63)
}

type queryResult struct {
	count int
	items []string
}

var errNegative = errors.New("negative count")

func newQueryResult(count int, items []string) (queryResult, error) {
	if count < 0 {
		return queryResult{}, errNegative
	}
	return queryResult{count: count, items: items}, nil
}

func queryResultBinding(creators ...binding.Creator) *binding.ObjectBuilder[queryResult] {
	b := binding.Object[queryResult](binding.Name("QueryResult"))
	binding.Getter(b, "i2", func(q *queryResult) int { return q.count }).Mandatory()
	binding.Getter(b, "items", func(q *queryResult) []string { return q.items })
	for _, c := range creators {
		b.Constructor(c)
	}
	return b
}

var queryResultCreator = binding.Creator{
	Name:   "newQueryResult",
	Params: []string{"i2", "items"},
	Marked: true,
	New: func(args []any) (any, error) {
		return newQueryResult(binding.Arg[int](args, 0), binding.Arg[[]string](args, 1))
	},
}

func TestConstructor(t *testing.T) {
	table, err := binding.NewTableBuilder().Bind(queryResultBinding(queryResultCreator)).Build()
	require.NoError(t, err)

	d, ok := table.Descriptor(reflect.TypeFor[queryResult]())
	require.True(t, ok)
	require.Equal(t, binding.ConstructorArgs, d.Plan())
	a, ok := d.Attribute("items")
	require.True(t, ok)
	require.Equal(t, 1, a.Param())

	out, err := table.Encode(queryResult{count: 2, items: []string{"a", "b"}})
	require.NoError(t, err)
	require.Equal(t, `{"i2":2,"items":["a","b"]}`, string(out))

	q, err := binding.Decode[queryResult](table, out)
	require.NoError(t, err)
	require.Equal(t, queryResult{count: 2, items: []string{"a", "b"}}, q)

	q, err = binding.Decode[queryResult](table, []byte(`{"i2":0}`))
	require.NoError(t, err)
	require.Equal(t, queryResult{}, q)

	_, err = binding.Decode[queryResult](table, []byte(`{"items":[]}`))
	require.ErrorIs(t, err, bindjson.ErrMissingMandatory)

	_, err = binding.Decode[queryResult](table, []byte(`{"i2":-1}`))
	require.ErrorIs(t, err, bindjson.ErrConstruction)
	require.ErrorIs(t, err, errNegative)
}

func TestConstructor_Ambiguity(t *testing.T) {
	unmarked := queryResultCreator
	unmarked.Marked = false

	_, err := binding.NewTableBuilder().Bind(queryResultBinding(queryResultCreator, queryResultCreator)).Build()
	require.ErrorIs(t, err, bindjson.ErrConstructionAmbiguity)

	_, err = binding.NewTableBuilder().Bind(queryResultBinding(unmarked)).Build()
	require.ErrorIs(t, err, bindjson.ErrConstructionAmbiguity)

	_, err = binding.NewTableBuilder().Bind(queryResultBinding(queryResultCreator, unmarked)).Build()
	require.NoError(t, err)
}

func TestConstructor_UnknownParam(t *testing.T) {
	c := queryResultCreator
	c.Params = []string{"i2", "missing"}
	_, err := binding.NewTableBuilder().Bind(queryResultBinding(c)).Build()
	require.ErrorIs(t, err, bindjson.ErrInvalidBinding)
}

func TestGetter_MandatoryWithoutSetter(t *testing.T) {
	_, err := binding.NewTableBuilder().Bind(queryResultBinding()).Build()
	require.ErrorIs(t, err, bindjson.ErrInvalidBinding)
}

type money struct {
	amount   int64
	currency string
}

type moneyBuilder struct {
	amount   int64
	currency string
}

func moneyBinding() *binding.ObjectBuilder[money] {
	b := binding.Object[money]()
	binding.WithBuilder(b,
		func() *moneyBuilder { return &moneyBuilder{currency: "EUR"} },
		func(mb *moneyBuilder) (money, error) {
			if mb.currency == "" {
				return money{}, errors.New("currency required")
			}
			return money{amount: mb.amount, currency: mb.currency}, nil
		})
	binding.BuilderField(b, "amount", func(m *money) int64 { return m.amount }, func(mb *moneyBuilder, v int64) { mb.amount = v })
	binding.BuilderField(b, "currency", func(m *money) string { return m.currency }, func(mb *moneyBuilder, v string) { mb.currency = v })
	return b
}

func TestBuilderPlan(t *testing.T) {
	table, err := binding.NewTableBuilder().Bind(moneyBinding()).Build()
	require.NoError(t, err)

	m, err := binding.Decode[money](table, []byte(`{"amount":5}`))
	require.NoError(t, err)
	require.Equal(t, money{amount: 5, currency: "EUR"}, m)

	out, err := table.Encode(money{amount: 7, currency: "JPY"})
	require.NoError(t, err)
	require.Equal(t, `{"amount":7,"currency":"JPY"}`, string(out))

	_, err = binding.Decode[money](table, []byte(`{"currency":""}`))
	require.ErrorIs(t, err, bindjson.ErrConstruction)
}

func TestBuilderPlan_SetterOwnerMismatch(t *testing.T) {
	b := moneyBinding()
	binding.Accessor(b, "raw", func(m *money) int64 { return m.amount }, func(m *money, v int64) { m.amount = v })
	_, err := binding.NewTableBuilder().Bind(b).Build()
	require.ErrorIs(t, err, bindjson.ErrInvalidBinding)
}

func TestBuild_DuplicateNames(t *testing.T) {
	b := binding.Object[person]()
	binding.Field(b, "name", func(p *person) *string { return &p.Name })
	binding.Field(b, "nick", func(p *person) *string { return &p.Name }).Alias("name")
	_, err := binding.NewTableBuilder().Bind(b).Build()
	require.ErrorIs(t, err, bindjson.ErrInvalidBinding)
}

func TestBuild_MandatoryIgnored(t *testing.T) {
	b := binding.Object[person]()
	binding.Field(b, "name", func(p *person) *string { return &p.Name }).Mandatory().Ignore()
	_, err := binding.NewTableBuilder().Bind(b).Build()
	require.ErrorIs(t, err, bindjson.ErrInvalidBinding)
}

func TestAttribute_NullableOverride(t *testing.T) {
	b := binding.Object[person]()
	binding.Field(b, "name", func(p *person) *string { return &p.Name }).Nullable(true)
	binding.Field(b, "tags", func(p *person) *[]string { return &p.Tags }).Nullable(false)
	table, err := binding.NewTableBuilder().Bind(b).Build()
	require.NoError(t, err)

	p, err := binding.Decode[person](table, []byte(`{"name":null}`))
	require.NoError(t, err)
	require.Equal(t, "", p.Name)

	_, err = binding.Decode[person](table, []byte(`{"tags":null}`))
	require.ErrorIs(t, err, bindjson.ErrNotNullable)
}

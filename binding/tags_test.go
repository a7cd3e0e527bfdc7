package binding_test

import (
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/reoring/bindjson"
	"github.com/reoring/bindjson/binding"
	"github.com/reoring/bindjson/codec"
)

type invoice struct {
	ID       uuid.UUID      `bindjson:"id,mandatory"`
	Total    codec.Decimal  `bindjson:"total,converter=money"`
	Issued   time.Time      `bindjson:"issued"`
	Customer string         `bindjson:"customer,alias=client|buyer"`
	Secret   string         `bindjson:"-"`
	Cache    string         `bindjson:"cache,ignore"`
	Lines    map[string]int `json:"lines,omitempty"`
	note     string
}

var invoiceID = uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

func invoiceTable(t *testing.T) *binding.Table {
	t.Helper()
	tb := binding.NewTableBuilder().NamedConverter("money", codec.FixedScale(2))
	binding.Register[invoice](tb, binding.Name("Invoice"), binding.UnknownFail())
	table, err := tb.Build()
	require.NoError(t, err)
	return table
}

func TestRegister_Encode(t *testing.T) {
	table := invoiceTable(t)
	out, err := table.Encode(invoice{
		ID:       invoiceID,
		Total:    decimal.RequireFromString("12.5"),
		Issued:   time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Customer: "acme",
		Secret:   "s",
		Cache:    "c",
		note:     "n",
	})
	require.NoError(t, err)
	require.Equal(t,
		`{"id":"6ba7b810-9dad-11d1-80b4-00c04fd430c8","total":12.50,"issued":"2024-01-02T03:04:05Z","customer":"acme"}`,
		string(out))
}

func TestRegister_Decode(t *testing.T) {
	table := invoiceTable(t)
	in := `{"id":"6ba7b810-9dad-11d1-80b4-00c04fd430c8","total":3.456,"buyer":"b","cache":"x","lines":{"a":1},"issued":"2024-01-02T04:04:05+01:00"}`
	inv, err := binding.Decode[invoice](table, []byte(in))
	require.NoError(t, err)
	require.Equal(t, invoiceID, inv.ID)
	require.Equal(t, "3.46", inv.Total.String())
	require.Equal(t, "b", inv.Customer)
	require.Empty(t, inv.Cache)
	require.Equal(t, map[string]int{"a": 1}, inv.Lines)
	require.True(t, inv.Issued.Equal(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)))

	_, err = binding.Decode[invoice](table, []byte(`{"total":1}`))
	require.ErrorIs(t, err, bindjson.ErrMissingMandatory)

	_, err = binding.Decode[invoice](table, []byte(`{"id":"6ba7b810-9dad-11d1-80b4-00c04fd430c8","Secret":"x"}`))
	require.ErrorIs(t, err, bindjson.ErrUnknownAttribute)

	_, err = binding.Decode[invoice](table, []byte(`{"id":"not-a-uuid"}`))
	require.ErrorIs(t, err, bindjson.ErrTypeMismatch)
	iss, _ := bindjson.AsIssues(err)
	require.Equal(t, "/id", iss[0].Path)
}

func TestRegister_Descriptor(t *testing.T) {
	table := invoiceTable(t)
	d, ok := table.Descriptor(reflect.TypeFor[invoice]())
	require.True(t, ok)
	require.Equal(t, "Invoice", d.Name())
	require.Equal(t, bindjson.UnknownFail, d.UnknownPolicy())
	require.Equal(t, binding.DefaultThenSet, d.Plan())

	names := []string{}
	for _, a := range d.Attributes() {
		names = append(names, a.Name())
	}
	require.Equal(t, []string{"id", "total", "issued", "customer", "cache", "lines"}, names)

	a, ok := d.Attribute("client")
	require.True(t, ok)
	require.Equal(t, "customer", a.Name())
	require.Equal(t, []string{"client", "buyer"}, a.Aliases())

	id, _ := d.Attribute("id")
	require.True(t, id.Mandatory())
	require.Equal(t, uint64(1), id.Bit())
	require.False(t, id.Nullable())

	lines, _ := d.Attribute("lines")
	require.True(t, lines.Nullable())

	cache, _ := d.Attribute("cache")
	require.True(t, cache.Ignored())
}

func TestRegister_MissingNamedConverter(t *testing.T) {
	tb := binding.NewTableBuilder()
	binding.Register[invoice](tb)
	_, err := tb.Build()
	require.ErrorIs(t, err, bindjson.ErrUnresolvedConverter)
}

type badTag struct {
	A string `bindjson:"a,bogus"`
}

func TestRegister_BadTag(t *testing.T) {
	tb := binding.NewTableBuilder()
	binding.Register[badTag](tb)
	_, err := tb.Build()
	require.ErrorIs(t, err, bindjson.ErrInvalidBinding)
}

func TestRegister_Twice(t *testing.T) {
	tb := binding.NewTableBuilder()
	binding.Register[derived](tb)
	tb.Register(reflect.TypeFor[derived]())
	_, err := tb.Build()
	require.ErrorIs(t, err, bindjson.ErrInvalidBinding)
}

type withChan struct {
	C chan int
}

func TestRegister_Unresolved(t *testing.T) {
	tb := binding.NewTableBuilder()
	binding.Register[withChan](tb)
	_, err := tb.Build()
	require.ErrorIs(t, err, bindjson.ErrUnresolvedConverter)
	iss, _ := bindjson.AsIssues(err)
	require.Equal(t, "/C", iss[0].Path)
}

type Base struct {
	ID string `json:"id"`
}

type derived struct {
	Base
	Name string `json:"name"`
}

type tagged struct {
	Base `json:"base"`
	Name string `json:"name"`
}

func TestRegister_Embedded(t *testing.T) {
	tb := binding.NewTableBuilder()
	binding.Register[derived](tb)
	binding.Register[tagged](tb)
	table, err := tb.Build()
	require.NoError(t, err)

	out, err := table.Encode(derived{Base: Base{ID: "1"}, Name: "n"})
	require.NoError(t, err)
	require.Equal(t, `{"id":"1","name":"n"}`, string(out))

	d, err := binding.Decode[derived](table, []byte(`{"name":"m","id":"2"}`))
	require.NoError(t, err)
	require.Equal(t, derived{Base: Base{ID: "2"}, Name: "m"}, d)

	out, err = table.Encode(tagged{Base: Base{ID: "1"}, Name: "n"})
	require.NoError(t, err)
	require.Equal(t, `{"base":{"id":"1"},"name":"n"}`, string(out))
}

type kindOnly struct {
	Kind string `bindjson:"kind"`
}

func TestRegister_Settings(t *testing.T) {
	s := bindjson.DefaultSettings()
	s.UnknownPolicy = bindjson.UnknownFail
	tb := binding.NewTableBuilder(binding.WithSettings(s))
	binding.Register[kindOnly](tb)
	binding.Register[derived](tb, binding.UnknownIgnore())
	table, err := tb.Build()
	require.NoError(t, err)

	_, err = binding.Decode[kindOnly](table, []byte(`{"kind":"a","other":1}`))
	require.ErrorIs(t, err, bindjson.ErrUnknownAttribute)

	_, err = binding.Decode[derived](table, []byte(`{"name":"a","other":1}`))
	require.NoError(t, err)
}

// "liquid" and "costarring" share an FNV-1a hash.
type liquid struct {
	Liquid int `json:"liquid"`
}

type strictLiquid struct {
	Liquid int `json:"liquid"`
}

type hashedLiquid struct {
	Liquid int `bindjson:"liquid,hashmatch"`
}

type strictHashedLiquid struct {
	Liquid int `bindjson:"liquid,hashmatch"`
}

func TestRegister_HashCollision(t *testing.T) {
	tb := binding.NewTableBuilder()
	binding.Register[liquid](tb)
	binding.Register[strictLiquid](tb, binding.UnknownFail())
	binding.Register[hashedLiquid](tb)
	binding.Register[strictHashedLiquid](tb, binding.UnknownFail())
	table, err := tb.Build()
	require.NoError(t, err)

	l, err := binding.Decode[liquid](table, []byte(`{"liquid":1,"costarring":2}`))
	require.NoError(t, err)
	require.Equal(t, liquid{Liquid: 1}, l)

	_, err = binding.Decode[strictLiquid](table, []byte(`{"costarring":2}`))
	require.ErrorIs(t, err, bindjson.ErrUnknownAttribute)
	iss, ok := bindjson.AsIssues(err)
	require.True(t, ok)
	require.Equal(t, "/costarring", iss[0].Path)

	h, err := binding.Decode[hashedLiquid](table, []byte(`{"costarring":2}`))
	require.NoError(t, err)
	require.Equal(t, hashedLiquid{Liquid: 2}, h)

	_, err = binding.Decode[strictHashedLiquid](table, []byte(`{"costarring":2}`))
	require.ErrorIs(t, err, bindjson.ErrUnknownAttribute)
}

package schema

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/formgrid-dev/formgrid/pkg/widget"
)

type fakeSource struct {
	calls  int
	fields []RawField
	err    error
}

func (f *fakeSource) FetchFields(context.Context, string) ([]RawField, error) {
	f.calls++
	return f.fields, f.err
}

func newTestResolver(src FieldSource, cache Cache) *Resolver {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewResolver(src, widget.NewStore("", logger), cache, logger)
}

func TestResolveProvinceTable(t *testing.T) {
	src := &fakeSource{fields: []RawField{
		{Nombre: "id_provincia", Tipo: "entero"},
		{Nombre: "descripcion", Tipo: "texto", Requerido: true},
		{Nombre: "fecha_registro", Tipo: "fecha"},
		{Nombre: "id_usuario", Tipo: "entero"},
	}}
	r := newTestResolver(src, nil)

	fields, err := r.Resolve(context.Background(), "provincias", "id_provincia")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(fields) != 2 {
		t.Fatalf("bookkeeping columns must be dropped, got %d fields", len(fields))
	}

	pk := fields[0]
	if !pk.IsPrimaryKey || !pk.Hidden || pk.Widget != widget.KindPlainInput {
		t.Fatalf("primary key must be a hidden plain input, got %+v", pk)
	}
	if pk.Select != nil {
		t.Fatal("primary key must not become a select despite the id_ prefix")
	}

	desc := fields[1]
	if desc.Name != "descripcion" || desc.Label != "Descripcion" || !desc.Required {
		t.Fatalf("descripcion mapped wrong: %+v", desc)
	}
	if desc.Widget != widget.KindPlainInput || desc.DataType != TypeText {
		t.Fatalf("descripcion widget: %+v", desc)
	}
}

func TestResolveForeignKeyAndMask(t *testing.T) {
	src := &fakeSource{fields: []RawField{
		{Nombre: "id_cliente", Tipo: "entero"},
		{Nombre: "id_pais", Tipo: "entero", Titulo: "País"},
		{Nombre: "telefono", Tipo: "texto"},
		{Nombre: "fecha_visita", Tipo: "fecha"},
	}}
	r := newTestResolver(src, nil)

	fields, err := r.Resolve(context.Background(), "clientes", "id_cliente")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	byName := map[string]FieldDescriptor{}
	for _, f := range fields {
		byName[f.Name] = f
	}

	pais := byName["id_pais"]
	if pais.Widget != widget.KindDynamicSelect || pais.ReferenceTable != "paises" {
		t.Fatalf("id_pais: %+v", pais)
	}
	if pais.Select == nil || pais.Select.Procedure != "listar_paises" {
		t.Fatalf("id_pais select source: %+v", pais.Select)
	}
	if pais.Label != "País" {
		t.Fatalf("declared title must win: %q", pais.Label)
	}

	tel := byName["telefono"]
	if tel.Widget != widget.KindMaskedInput || tel.DataType != TypeMasked || tel.Mask != widget.MaskPhone {
		t.Fatalf("telefono: %+v", tel)
	}

	visita := byName["fecha_visita"]
	if visita.Widget != widget.KindDatePicker || visita.DataType != TypeDateTime {
		t.Fatalf("fecha_visita: %+v", visita)
	}
}

func TestResolveErrorIsNotEmptySchema(t *testing.T) {
	r := newTestResolver(&fakeSource{err: errors.New("timeout")}, nil)
	fields, err := r.Resolve(context.Background(), "clientes", "id_cliente")
	if err == nil {
		t.Fatal("fetch failure must surface as an error")
	}
	if fields != nil {
		t.Fatalf("no fields on error, got %v", fields)
	}

	r = newTestResolver(&fakeSource{fields: []RawField{{Nombre: "fecha_registro"}}}, nil)
	fields, err = r.Resolve(context.Background(), "bitacora", "id_bitacora")
	if err != nil {
		t.Fatalf("all-bookkeeping table is valid: %v", err)
	}
	if fields == nil || len(fields) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", fields)
	}
}

func TestResolveUsesCache(t *testing.T) {
	src := &fakeSource{fields: []RawField{{Nombre: "descripcion", Tipo: "texto"}}}
	r := newTestResolver(src, NewMemoryCache())

	if _, err := r.Resolve(context.Background(), "paises", "id_pais"); err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	if _, err := r.Resolve(context.Background(), "paises", "id_pais"); err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	if src.calls != 1 {
		t.Fatalf("second resolve must hit the cache, got %d fetches", src.calls)
	}

	r.Invalidate(context.Background(), "paises")
	if _, err := r.Resolve(context.Background(), "paises", "id_pais"); err != nil {
		t.Fatalf("post-invalidate resolve: %v", err)
	}
	if src.calls != 2 {
		t.Fatalf("invalidate must force a refetch, got %d fetches", src.calls)
	}
}

func TestRefreshHotRefetchesResolvedTables(t *testing.T) {
	src := &fakeSource{fields: []RawField{{Nombre: "descripcion", Tipo: "texto"}}}
	r := newTestResolver(src, NewMemoryCache())

	if _, err := r.Resolve(context.Background(), "paises", "id_pais"); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if src.calls != 1 {
		t.Fatalf("fetches = %d, want 1", src.calls)
	}

	r.RefreshHot(context.Background())
	if src.calls != 2 {
		t.Fatalf("refresh must refetch resolved tables, got %d fetches", src.calls)
	}

	// The refreshed entry is warm again.
	if _, err := r.Resolve(context.Background(), "paises", "id_pais"); err != nil {
		t.Fatalf("post-refresh resolve: %v", err)
	}
	if src.calls != 2 {
		t.Fatalf("post-refresh resolve must hit the cache, got %d fetches", src.calls)
	}

	// A table never resolved is not touched.
	r.RefreshHot(context.Background())
	if src.calls != 3 {
		t.Fatalf("second refresh fetches = %d, want 3", src.calls)
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := NewMemoryCache()
	c.Set(context.Background(), "k", []byte("v"), 10*time.Millisecond)
	if _, ok := c.Get(context.Background(), "k"); !ok {
		t.Fatal("fresh entry must hit")
	}
	time.Sleep(20 * time.Millisecond)
	if _, ok := c.Get(context.Background(), "k"); ok {
		t.Fatal("expired entry must miss")
	}
	c.Set(context.Background(), "k", []byte("v"), 10*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	c.Sweep()
	if len(c.items) != 0 {
		t.Fatalf("sweep must drop expired entries, %d left", len(c.items))
	}
}

func TestLabel(t *testing.T) {
	cases := []struct {
		name, titulo, want string
	}{
		{"descripcion", "", "Descripcion"},
		{"fecha_nacimiento", "", "Fecha Nacimiento"},
		{"descripcion", "Descripción", "Descripción"},
	}
	for _, c := range cases {
		if got := label(c.name, c.titulo); got != c.want {
			t.Errorf("label(%q, %q) = %q, want %q", c.name, c.titulo, got, c.want)
		}
	}
}

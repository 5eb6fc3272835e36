package grid

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type fakeTableFetcher struct {
	calls       int
	skipHistory []bool
	payload     *Payload
	err         error
}

func (f *fakeTableFetcher) FetchTable(_ context.Context, _ string, skipColumns bool) (*Payload, error) {
	f.calls++
	f.skipHistory = append(f.skipHistory, skipColumns)
	return f.payload, f.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func visitPayload() *Payload {
	return &Payload{
		Encabezado: []ColumnSpec{
			{Columna: "id_visita", Titulo: "ID", Tipo: "entero"},
			{Columna: "monto", Titulo: "Monto", Tipo: "decimal", Sumar: "1"},
		},
		Datos: []Row{
			{"id_visita": "1", "monto": "10"},
			{"id_visita": "2", "monto": "20.5"},
		},
	}
}

func TestEngineLoad(t *testing.T) {
	f := &fakeTableFetcher{payload: visitPayload()}
	e := NewEngine(f, testLogger())

	tab, err := e.Load(context.Background(), "visitas", "id_visita")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(tab.Columns) != 3 || tab.Columns[2].Field != ActionsColumn {
		t.Fatalf("actions column missing: %+v", tab.Columns)
	}
	if tab.Footer["monto"] != "30.50" {
		t.Fatalf("footer = %v", tab.Footer)
	}
	if diff := cmp.Diff(visitPayload().Datos, tab.Rows); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestEngineColumnCache(t *testing.T) {
	f := &fakeTableFetcher{payload: visitPayload()}
	e := NewEngine(f, testLogger())

	first, err := e.Load(context.Background(), "visitas", "id_visita")
	if err != nil {
		t.Fatalf("first load: %v", err)
	}
	second, err := e.Refresh(context.Background(), "visitas", "id_visita")
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if diff := cmp.Diff(first.Columns, second.Columns); diff != "" {
		t.Fatalf("columns must be stable across refresh (-first +second):\n%s", diff)
	}
	want := []bool{false, true}
	if diff := cmp.Diff(want, f.skipHistory); diff != "" {
		t.Fatalf("refresh must skip the column fetch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(first.Rows, second.Rows); diff != "" {
		t.Fatalf("refresh with no writes must reproduce the rows (-first +second):\n%s", diff)
	}

	e.Forget("visitas")
	if _, err := e.Load(context.Background(), "visitas", "id_visita"); err != nil {
		t.Fatalf("post-forget load: %v", err)
	}
	if f.skipHistory[2] {
		t.Fatal("forget must force a full column fetch")
	}
}

func TestEngineLoadError(t *testing.T) {
	f := &fakeTableFetcher{err: errors.New("backend down")}
	e := NewEngine(f, testLogger())
	if _, err := e.Load(context.Background(), "visitas", "id_visita"); err == nil {
		t.Fatal("fetch failure must surface")
	}
}

func TestCell(t *testing.T) {
	r := Row{"nombre": "Juan", "monto": 10.5, "nota": nil}
	if Cell(r, "nombre") != "Juan" {
		t.Fatalf("nombre = %q", Cell(r, "nombre"))
	}
	if Cell(r, "monto") != "10.5" {
		t.Fatalf("monto = %q", Cell(r, "monto"))
	}
	if Cell(r, "nota") != "" || Cell(r, "ausente") != "" {
		t.Fatal("nil and missing cells must render blank")
	}
}

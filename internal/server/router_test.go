package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/formgrid-dev/formgrid/pkg/grid"
	"github.com/formgrid-dev/formgrid/pkg/schema"
)

// fakeBackend mimics the legacy administrative API.
type fakeBackend struct {
	writes int32
	syncs  int32
}

func (b *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()
	writeJSON := func(w http.ResponseWriter, v any) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(v)
	}
	mux.HandleFunc("/api/esquema", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []map[string]any{
			{"nombre": "id_provincia", "tipo": "entero"},
			{"nombre": "provincia", "tipo": "texto", "requerido": true},
			{"nombre": "referencia", "tipo": "texto"},
			{"nombre": "fecha_registro", "tipo": "fecha"},
		})
	})
	mux.HandleFunc("/api/tabla", func(w http.ResponseWriter, r *http.Request) {
		inner := `{"encabezado":[{"columna":"id_provincia","titulo":"ID","tipo":"entero"},{"columna":"provincia","titulo":"Provincia"},{"columna":"monto","tipo":"decimal","sumar":"1"}],` +
			`"datos":[{"id_provincia":"1","provincia":"Azua","monto":"10"},{"id_provincia":"2","provincia":"Barahona","monto":"20.5"}]}`
		writeJSON(w, map[string]string{"respuesta": inner})
	})
	mux.HandleFunc("/api/filtros", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{"respuesta": `[{"valor":"1","descripcion":"Azua"}]`})
	})
	mux.HandleFunc("/api/grabar", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&b.writes, 1)
		writeJSON(w, map[string]any{"codigo_estado": 200, "mensaje": "grabado"})
	})
	mux.HandleFunc("/api/configuraciones", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			atomic.AddInt32(&b.syncs, 1)
			w.WriteHeader(http.StatusOK)
			return
		}
		writeJSON(w, []map[string]string{{"campo": "tema", "valor": "oscuro"}})
	})
	return mux
}

func newTestServer(t *testing.T) (*httptest.Server, *fakeBackend) {
	t.Helper()
	backend := &fakeBackend{}
	bs := httptest.NewServer(backend.handler())
	t.Cleanup(bs.Close)

	rt, err := New(Config{UpstreamURL: bs.URL})
	if err != nil {
		t.Fatalf("server: %v", err)
	}
	srv := httptest.NewServer(rt.API.Adapter())
	t.Cleanup(srv.Close)
	return srv, backend
}

func getJSON(t *testing.T, url string, out any) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("get %s: %v", url, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp
}

func postJSON(t *testing.T, url, body string, out any) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("post %s: %v", url, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp
}

func TestSchemaEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	var fields []schema.FieldDescriptor
	resp := getJSON(t, srv.URL+"/v1/tables/provincias/schema", &fields)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d", resp.StatusCode)
	}
	if len(fields) != 3 {
		t.Fatalf("bookkeeping columns must be filtered, got %d", len(fields))
	}
	if !fields[0].IsPrimaryKey || !fields[0].Hidden {
		t.Fatalf("id_provincia: %+v", fields[0])
	}
}

func TestGridEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	var out struct {
		Rows   []grid.Row        `json:"rows"`
		Footer map[string]string `json:"footer"`
		Total  int               `json:"total"`
	}
	resp := getJSON(t, srv.URL+"/v1/tables/provincias/grid", &out)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d", resp.StatusCode)
	}
	if out.Total != 2 || out.Footer["monto"] != "30.50" {
		t.Fatalf("grid: total=%d footer=%v", out.Total, out.Footer)
	}

	getJSON(t, srv.URL+"/v1/tables/provincias/grid?search=azua", &out)
	if out.Total != 1 || grid.Cell(out.Rows[0], "provincia") != "Azua" {
		t.Fatalf("filtered grid: %+v", out)
	}

	// A negative page is rejected at the parameter level, never a panic.
	resp = getJSON(t, srv.URL+"/v1/tables/provincias/grid?page=-1", nil)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("negative page status=%d", resp.StatusCode)
	}
}

func TestRecordEndpoint(t *testing.T) {
	srv, backend := newTestServer(t)

	var out struct {
		Outcome struct {
			OK      bool `json:"ok"`
			Refresh bool `json:"refresh"`
		} `json:"outcome"`
		Errors map[string]string `json:"errors"`
	}

	// Missing required field: rejected locally, nothing reaches the backend.
	resp := postJSON(t, srv.URL+"/v1/tables/provincias/records",
		`{"mode":"create","values":{}}`, &out)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d", resp.StatusCode)
	}
	if out.Outcome.OK || out.Errors["provincia"] == "" {
		t.Fatalf("validation outcome: %+v", out)
	}
	if atomic.LoadInt32(&backend.writes) != 0 {
		t.Fatal("validation failure must not reach the backend")
	}

	resp = postJSON(t, srv.URL+"/v1/tables/provincias/records",
		`{"mode":"create","values":{"provincia":"Azua"}}`, &out)
	if resp.StatusCode != http.StatusOK || !out.Outcome.OK || !out.Outcome.Refresh {
		t.Fatalf("create outcome: status=%d %+v", resp.StatusCode, out)
	}
	if atomic.LoadInt32(&backend.writes) != 1 {
		t.Fatalf("writes=%d", backend.writes)
	}

	// Edit without a truthy primary key is rejected up front.
	resp = postJSON(t, srv.URL+"/v1/tables/provincias/records",
		`{"mode":"edit","row":{"id_provincia":"0"},"values":{}}`, nil)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("invalid edit status=%d", resp.StatusCode)
	}
}

func TestOptionsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	var out struct {
		Options []struct {
			Value string `json:"value"`
			Label string `json:"label"`
		} `json:"options"`
		Enabled bool `json:"enabled"`
	}
	postJSON(t, srv.URL+"/v1/options",
		`{"source":{"procedure":"listar_provincias"}}`, &out)
	if !out.Enabled || len(out.Options) != 1 || out.Options[0].Label != "Azua" {
		t.Fatalf("options: %+v", out)
	}

	// Dependent source without its dependency value stays disabled.
	postJSON(t, srv.URL+"/v1/options",
		`{"source":{"procedure":"listar_municipios","dependsOn":"id_provincia","dependentParam":"id_provincia"}}`, &out)
	if out.Enabled || len(out.Options) != 0 {
		t.Fatalf("dependent gate: %+v", out)
	}
}

func TestConfigEndpoints(t *testing.T) {
	srv, backend := newTestServer(t)

	var out struct {
		Values    map[string]string `json:"values"`
		SyncState string            `json:"syncState"`
	}
	getJSON(t, srv.URL+"/v1/config", &out)
	if out.Values["tema"] != "oscuro" {
		t.Fatalf("startup hydration missing: %v", out.Values)
	}

	req, _ := http.NewRequest(http.MethodPut, srv.URL+"/v1/config/ancho_boton", strings.NewReader(`{"value":"200"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("put status=%d", resp.StatusCode)
	}

	getJSON(t, srv.URL+"/v1/config", &out)
	if out.Values["ancho_boton"] != "200" || out.SyncState != "pending" {
		t.Fatalf("after set: %+v", out)
	}

	postJSON(t, srv.URL+"/v1/config/flush", `{}`, &out)
	if out.SyncState != "idle" {
		t.Fatalf("after flush: %+v", out)
	}
	if atomic.LoadInt32(&backend.syncs) != 1 {
		t.Fatalf("syncs=%d", backend.syncs)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	resp := getJSON(t, srv.URL+"/metrics", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d", resp.StatusCode)
	}
}

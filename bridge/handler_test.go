package bridge

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ulrichard/uttesla/app"
	"github.com/ulrichard/uttesla/credentials"
	"github.com/ulrichard/uttesla/session"
	"github.com/ulrichard/uttesla/session/sessiontest"
	"github.com/ulrichard/uttesla/tesla"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func newRouter(t *testing.T) (*gin.Engine, *sessiontest.FakeAPI) {
	t.Helper()
	api := sessiontest.NewFakeAPI()
	api.ProductList = sessiontest.Vehicles("Blue Thunder", "Red Rocket")

	store := credentials.NewStore(t.TempDir())
	require.NoError(t, os.WriteFile(store.AccessTokenPath(), []byte("token"), 0o600))
	s := session.New(store, tesla.Config{}, session.WithConnector(&sessiontest.FakeConnector{Client: api}))
	return NewRouter(app.New(s)), api
}

func do(t *testing.T, r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var res map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	return res
}

func login(t *testing.T, r http.Handler) {
	t.Helper()
	w := do(t, r, http.MethodPost, "/api/login", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, true, decode(t, w)["ok"])

	w = do(t, r, http.MethodGet, "/api/roster", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "Blue Thunder\nRed Rocket", decode(t, w)["roster"])
}

func TestBridge_LoginAndRoster(t *testing.T) {
	r, _ := newRouter(t)
	login(t, r)

	w := do(t, r, http.MethodGet, "/api/vehicles", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":[
		{"index":0,"id":"1","display_name":"Blue Thunder"},
		{"index":1,"id":"2","display_name":"Red Rocket"}
	]}`, w.Body.String())

	w = do(t, r, http.MethodGet, "/api/state", "")
	assert.Equal(t, session.StateReady, decode(t, w)["state"])
}

func TestBridge_Snapshot(t *testing.T) {
	r, api := newRouter(t)
	api.Data = &tesla.VehicleData{State: "online", ChargeState: &tesla.ChargeState{IdealBatteryRange: 100.0, ChargeLimitSoc: 90}}
	login(t, r)

	w := do(t, r, http.MethodGet, "/api/vehicles/0/snapshot", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, `{"state":"online","gps_pos":"","inside_temp":"","outside_temp":"",`+
		`"driver_temp_setting":20,"hvac_enabled":false,"battery_level":0,"battery_range":160.9344,`+
		`"charge_rate":0,"minutes_to_full_charge":0,"charge_energy_added":0,"charge_limit":90}`, w.Body.String())
}

func TestBridge_SnapshotUnavailable(t *testing.T) {
	r, _ := newRouter(t)

	w := do(t, r, http.MethodGet, "/api/vehicles/0/snapshot", "")
	assert.Equal(t, http.StatusBadGateway, w.Code)

	w = do(t, r, http.MethodGet, "/api/log", "")
	assert.Equal(t, "failed to get vehicle 0: not logged in", decode(t, w)["log"])
}

func TestBridge_BadIndex(t *testing.T) {
	r, api := newRouter(t)
	login(t, r)

	for _, path := range []string{
		"/api/vehicles/abc/honk",
		"/api/vehicles/1.5/flash",
		"/api/vehicles/x/remote-start",
	} {
		w := do(t, r, http.MethodPost, path, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
	}
	w := do(t, r, http.MethodGet, "/api/vehicles/first/snapshot", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	assert.Equal(t, []string{"Products"}, api.Methods())
	w = do(t, r, http.MethodGet, "/api/log", "")
	assert.Equal(t, "", decode(t, w)["log"])
}

func TestBridge_BadBody(t *testing.T) {
	r, api := newRouter(t)
	login(t, r)

	tests := []struct {
		path string
		body string
	}{
		{path: "/api/vehicles/0/climate", body: `{"temperature": 21}`},
		{path: "/api/vehicles/0/climate", body: `not json`},
		{path: "/api/vehicles/0/doors", body: `{}`},
		{path: "/api/vehicles/0/charging", body: `{"start": "yes"}`},
	}
	for _, tt := range tests {
		w := do(t, r, http.MethodPost, tt.path, tt.body)
		assert.Equal(t, http.StatusBadRequest, w.Code, tt.body)
	}
	assert.Equal(t, []string{"Products"}, api.Methods())
}

func TestBridge_Commands(t *testing.T) {
	r, api := newRouter(t)
	login(t, r)

	requests := []struct {
		path string
		body string
	}{
		{path: "/api/vehicles/0/climate", body: `{"enable": true}`},
		{path: "/api/vehicles/0/doors", body: `{"unlock": false}`},
		{path: "/api/vehicles/1/charging", body: `{"start": true}`},
		{path: "/api/vehicles/1/honk"},
		{path: "/api/vehicles/1/flash"},
		{path: "/api/vehicles/0/remote-start"},
	}
	for _, req := range requests {
		w := do(t, r, http.MethodPost, req.path, req.body)
		require.Equal(t, http.StatusOK, w.Code, req.path)
		assert.Equal(t, true, decode(t, w)["ok"], req.path)
	}

	calls := api.Calls()
	assert.Equal(t, sessiontest.Call{Method: "SetTemps", ID: 1, Args: []any{21.0, 21.0}}, calls[1])
	assert.Equal(t, sessiontest.Call{Method: "SetChargeLimit", ID: 2, Args: []any{80}}, calls[4])

	w := do(t, r, http.MethodGet, "/api/log", "")
	assert.Equal(t, "keyless driving active for two minutes\n"+
		"lights flashed\n"+
		"horn honked\n"+
		"charging started up to 80%\n"+
		"doors locked", decode(t, w)["log"])
}

func TestBridge_CommandFailure(t *testing.T) {
	r, _ := newRouter(t)
	login(t, r)

	w := do(t, r, http.MethodPost, "/api/vehicles/7/honk", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decode(t, w)["ok"])
}

func TestBridge_Metrics(t *testing.T) {
	r, _ := newRouter(t)
	login(t, r)
	do(t, r, http.MethodPost, "/api/vehicles/0/honk", "")

	w := do(t, r, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `uttesla_http_requests_total{method="POST",path="/api/vehicles/:idx/honk",status="200"}`)
	assert.Contains(t, body, `uttesla_calls_total{call="honk",result="ok"}`)
	assert.Contains(t, body, `uttesla_calls_total{call="login",result="ok"}`)
}

func TestBridge_Preflight(t *testing.T) {
	r, _ := newRouter(t)

	w := do(t, r, http.MethodOptions, "/api/login", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestBridge_ConcurrentRequests(t *testing.T) {
	r, api := newRouter(t)
	login(t, r)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w := do(t, r, http.MethodPost, "/api/vehicles/0/honk", "")
			assert.Equal(t, http.StatusOK, w.Code)
		}()
	}
	wg.Wait()
	assert.Len(t, api.Calls(), 21)
}

func TestSerialize(t *testing.T) {
	mu := &sync.Mutex{}
	router := gin.New()
	router.Use(serialize(mu))

	var active, maxActive int
	var counter sync.Mutex
	router.GET("/", func(c *gin.Context) {
		counter.Lock()
		active++
		if active > maxActive {
			maxActive = active
		}
		counter.Unlock()

		time.Sleep(time.Millisecond)

		counter.Lock()
		active--
		counter.Unlock()
		c.Status(http.StatusOK)
	})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, maxActive)
}

func TestListenAndServe_Shutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- ListenAndServe(ctx, "127.0.0.1:0", http.NotFoundHandler())
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

package screens

import (
	"context"
	"encoding/json"
	"net/url"
	"sync"

	"github.com/dmitrijs2005/fleetadmin/internal/client/client"
)

type call struct {
	Method string
	Path   string
	Query  url.Values
	Body   string
}

type fakeAPI struct {
	mu     sync.Mutex
	bodies map[string]string
	errs   map[string]error
	gates  map[string]chan struct{}
	calls  []call
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{bodies: map[string]string{}, errs: map[string]error{}, gates: map[string]chan struct{}{}}
}

func (f *fakeAPI) on(method, path, body string) *fakeAPI {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bodies[method+" "+path] = body
	return f
}

func (f *fakeAPI) fail(method, path string, err error) *fakeAPI {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[method+" "+path] = err
	return f
}

func (f *fakeAPI) record(method, path string, q url.Values, body any) (string, error) {
	f.mu.Lock()
	var raw string
	if body != nil {
		b, _ := json.Marshal(body)
		raw = string(b)
	}
	f.calls = append(f.calls, call{Method: method, Path: path, Query: q, Body: raw})
	key := method + " " + path
	gate := f.gates[key]
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errs[key]; err != nil {
		return "", err
	}
	return f.bodies[key], nil
}

func (f *fakeAPI) Do(_ context.Context, req client.Request, out any) error {
	body, err := f.record(req.Method, req.Path, req.Query, req.Body)
	if err != nil {
		return err
	}
	if out == nil || body == "" {
		return nil
	}
	return json.Unmarshal([]byte(body), out)
}

func (f *fakeAPI) Get(_ context.Context, path string, q url.Values) ([]byte, error) {
	body, err := f.record("GET", path, q, nil)
	return []byte(body), err
}

func (f *fakeAPI) count(method, path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c.Method == method && c.Path == path {
			n++
		}
	}
	return n
}

func (f *fakeAPI) last() call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

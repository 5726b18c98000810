package testkit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"regexp"
	"strings"
	"testing"
)

// HandlerFactory builds a fresh handler for each flow so flows never share
// state.
type HandlerFactory func(t *testing.T) http.Handler

// Run executes the flow in path against handler.
func Run(t *testing.T, handler http.Handler, path string) {
	t.Helper()

	f, err := LoadFlow(path)
	if err != nil {
		t.Fatalf("testkit: load flow %q: %v", path, err)
	}
	t.Run(f.Name, func(t *testing.T) {
		runFlow(t, handler, f)
	})
}

// RunDir runs every *.json flow in dir as a subtest, each against a handler
// from newHandler.
func RunDir(t *testing.T, newHandler HandlerFactory, dir string) {
	t.Helper()

	flows, errs := LoadAllFromDir(dir)
	for _, err := range errs {
		t.Errorf("%v", err)
	}
	for _, f := range flows {
		t.Run(f.Name, func(t *testing.T) {
			runFlow(t, newHandler(t), f)
		})
	}
}

func runFlow(t *testing.T, handler http.Handler, f *Flow) {
	t.Helper()

	vars := map[string]string{}
	for i := range f.Steps {
		s := &f.Steps[i]
		if !runStep(t, handler, f, s, vars) {
			t.Fatalf("[%s] step %d (%s) failed, stopping flow", f.Name, i, s.Name)
		}
	}
}

func runStep(t *testing.T, handler http.Handler, f *Flow, s *Step, vars map[string]string) bool {
	t.Helper()

	body, err := stepBody(f, s)
	if err != nil {
		t.Errorf("[%s] %v", s.Name, err)
		return false
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(expand(body, vars))
	}

	req := httptest.NewRequest(strings.ToUpper(s.Method), string(expand([]byte(s.URL), vars)), reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, v := range s.Headers {
		req.Header.Set(k, string(expand([]byte(v), vars)))
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	ok := AssertStatusCode(t, s, rec.Code, rec.Body.Bytes())

	expected, err := expectedBody(f, s)
	if err != nil {
		t.Errorf("[%s] %v", s.Name, err)
		return false
	}
	if expected != nil {
		ok = AssertJSONSubset(t, s, expand(expected, vars), rec.Body.Bytes()) && ok
	}

	if len(s.Capture) > 0 {
		var got any
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Errorf("[%s] capture: response is not JSON: %s", s.Name, rec.Body.String())
			return false
		}
		for name, path := range s.Capture {
			v, found := Lookup(got, path)
			if !found {
				t.Errorf("[%s] capture %q: path %q not found in %s", s.Name, name, path, rec.Body.String())
				ok = false
				continue
			}
			vars[name] = scalar(v)
		}
	}
	return ok
}

// stepBody returns the raw request body, or nil when the step has none.
func stepBody(f *Flow, s *Step) ([]byte, error) {
	if s.BodyFile != "" {
		data, err := os.ReadFile(f.path(s.BodyFile))
		if err != nil {
			return nil, fmt.Errorf("read body file: %w", err)
		}
		return data, nil
	}
	if len(s.Body) == 0 {
		return nil, nil
	}
	// A JSON string is sent verbatim.
	var raw string
	if err := json.Unmarshal(s.Body, &raw); err == nil {
		return []byte(raw), nil
	}
	return s.Body, nil
}

func expectedBody(f *Flow, s *Step) ([]byte, error) {
	if s.ResponseFile != "" {
		data, err := os.ReadFile(f.path(s.ResponseFile))
		if err != nil {
			return nil, fmt.Errorf("read response file: %w", err)
		}
		return data, nil
	}
	if len(s.Response) == 0 {
		return nil, nil
	}
	return s.Response, nil
}

var placeholder = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_]+)\s*\}\}`)

// expand replaces {{name}} with captured values. Unknown names are kept.
func expand(b []byte, vars map[string]string) []byte {
	if len(vars) == 0 {
		return b
	}
	return placeholder.ReplaceAllFunc(b, func(m []byte) []byte {
		name := string(placeholder.FindSubmatch(m)[1])
		if v, ok := vars[name]; ok {
			return []byte(v)
		}
		return m
	})
}

func scalar(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return ""
	default:
		b, _ := json.Marshal(t)
		return string(b)
	}
}

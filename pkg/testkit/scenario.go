// Package testkit drives REST API tests from JSON flow files.
//
// A flow is an ordered list of steps fired against one http.Handler, so
// state created by an early step (a user, an item, a token) is visible to
// the later ones:
//
//	{
//	  "name": "signup then me",
//	  "steps": [
//	    {"name": "signup", "method": "POST", "url": "/auth/signup",
//	     "body": {"username": "ann", "email": "ann@example.com", "password": "pw"},
//	     "expectedCode": 201},
//	    {"name": "login", "method": "POST", "url": "/auth/login",
//	     "body": {"email": "ann@example.com", "password": "pw"},
//	     "expectedCode": 200,
//	     "capture": {"token": "access_token", "uid": "user.id"}},
//	    {"name": "me", "url": "/auth/me",
//	     "headers": {"Authorization": "Bearer {{token}}"},
//	     "expectedCode": 200, "response": {"user": {"id": "{{uid}}"}}}
//	  ]
//	}
//
// Body and response files (bodyFile, responseFile) resolve against the flow
// file's directory; keep them in a subdirectory so RunDir does not load
// them as flows.
//
// Captured values are substituted into later urls, headers and bodies.
// "response" is a subset match: every key it names must be present in the
// actual body with the same value, other keys are ignored.
//
//	func TestFlows(t *testing.T) {
//	    testkit.RunDir(t, func(t *testing.T) http.Handler { return newApp(t).Handler() }, "testdata/flows")
//	}
package testkit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Flow is one JSON flow file.
type Flow struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Steps       []Step `json:"steps"`

	dir string
}

// Step is a single request with its expectations.
type Step struct {
	Name    string            `json:"name"`
	Method  string            `json:"method"` // defaults to GET
	URL     string            `json:"url"`
	Headers map[string]string `json:"headers"`

	// Body is sent as-is. Use BodyFile for larger payloads kept next to the
	// flow file. A JSON string body is sent raw, which allows malformed input.
	Body     json.RawMessage `json:"body"`
	BodyFile string          `json:"bodyFile"`

	ExpectedCode int             `json:"expectedCode"`
	Response     json.RawMessage `json:"response"`
	ResponseFile string          `json:"responseFile"`

	// Capture maps a variable name to a dotted path into the response body,
	// e.g. "item.id" or "0.item_id".
	Capture map[string]string `json:"capture"`
}

// LoadFlow reads and validates a flow from a JSON file.
func LoadFlow(path string) (*Flow, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("testkit: resolve path %q: %w", path, err)
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("testkit: read %q: %w", abs, err)
	}

	var f Flow
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("testkit: parse %q: %w", abs, err)
	}

	if err := f.validate(); err != nil {
		return nil, fmt.Errorf("testkit: invalid flow %q: %w", abs, err)
	}

	f.dir = filepath.Dir(abs)
	return &f, nil
}

func (f *Flow) validate() error {
	if f.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(f.Steps) == 0 {
		return fmt.Errorf("at least one step is required")
	}
	for i := range f.Steps {
		s := &f.Steps[i]
		if s.URL == "" {
			return fmt.Errorf("steps[%d].url is required", i)
		}
		if s.ExpectedCode == 0 {
			return fmt.Errorf("steps[%d].expectedCode is required", i)
		}
		if s.Method == "" {
			s.Method = "GET"
		}
		if s.Name == "" {
			s.Name = fmt.Sprintf("%s %s", s.Method, s.URL)
		}
	}
	return nil
}

// path resolves name relative to the flow file's directory.
func (f *Flow) path(name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(f.dir, name)
}

// LoadAllFromDir loads every *.json file in dir as a Flow. Files that fail
// to parse are collected as errors.
func LoadAllFromDir(dir string) ([]*Flow, []error) {
	entries, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil || len(entries) == 0 {
		return nil, []error{fmt.Errorf("testkit: no flow files found in %q", dir)}
	}

	var (
		flows []*Flow
		errs  []error
	)
	for _, path := range entries {
		f, err := LoadFlow(path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		flows = append(flows, f)
	}
	return flows, errs
}

package testkit_test

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/storefront/pkg/testkit"
)

// notes is a tiny stateful handler: POST /notes stores a note, GET
// /notes/{id} reads it back.
func notes() http.Handler {
	var (
		mu   sync.Mutex
		data = map[string]string{}
	)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		mu.Lock()
		defer mu.Unlock()

		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/notes":
			var in struct {
				Text string `json:"text"`
			}
			if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"msg":"invalid JSON body"}`))
				return
			}
			id := "n" + string(rune('0'+len(data)))
			data[id] = in.Text
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(map[string]any{"note": map[string]string{"id": id, "text": in.Text}})
		case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/notes/"):
			if r.Header.Get("Authorization") != "Bearer secret" {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"msg":"unauthorized"}`))
				return
			}
			text, ok := data[strings.TrimPrefix(r.URL.Path, "/notes/")]
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				_, _ = w.Write([]byte(`{"msg":"not found"}`))
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"text": text, "length": len(text)})
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"msg":"route not found"}`))
		}
	})
}

func TestRunDir(t *testing.T) {
	testkit.RunDir(t, func(*testing.T) http.Handler { return notes() }, "testdata")
}

func TestLoadFlow_Validation(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) string {
		p := dir + "/" + name
		require.NoError(t, writeFile(p, body))
		return p
	}

	_, err := testkit.LoadFlow(write("noname.json", `{"steps":[{"url":"/","expectedCode":200}]}`))
	assert.ErrorContains(t, err, "name is required")

	_, err = testkit.LoadFlow(write("nosteps.json", `{"name":"x"}`))
	assert.ErrorContains(t, err, "at least one step")

	_, err = testkit.LoadFlow(write("nocode.json", `{"name":"x","steps":[{"url":"/"}]}`))
	assert.ErrorContains(t, err, "steps[0].expectedCode")

	f, err := testkit.LoadFlow(write("ok.json", `{"name":"x","steps":[{"url":"/health","expectedCode":200}]}`))
	require.NoError(t, err)
	assert.Equal(t, "GET", f.Steps[0].Method)
	assert.Equal(t, "GET /health", f.Steps[0].Name)
}

func TestDiffJSON_Subset(t *testing.T) {
	var exp, act any
	require.NoError(t, json.Unmarshal([]byte(`{"user":{"id":"1"},"list":[1,2]}`), &exp))
	require.NoError(t, json.Unmarshal([]byte(`{"user":{"id":"1","email":"a@b.c"},"list":[1,2],"extra":true}`), &act))
	assert.Empty(t, testkit.DiffJSON("", exp, act))

	require.NoError(t, json.Unmarshal([]byte(`{"user":{"id":"2"},"list":[1]}`), &act))
	diffs := testkit.DiffJSON("", exp, act)
	assert.Len(t, diffs, 2)
}

func TestLookup(t *testing.T) {
	var v any
	require.NoError(t, json.Unmarshal([]byte(`{"items":[{"id":"a"},{"id":"b"}],"n":3}`), &v))

	got, ok := testkit.Lookup(v, "items.1.id")
	assert.True(t, ok)
	assert.Equal(t, "b", got)

	got, ok = testkit.Lookup(v, "n")
	assert.True(t, ok)
	assert.EqualValues(t, 3, got)

	_, ok = testkit.Lookup(v, "items.5.id")
	assert.False(t, ok)
	_, ok = testkit.Lookup(v, "n.x")
	assert.False(t, ok)
}

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/glyphtools/pkg/errors"
	"github.com/matzehuels/glyphtools/pkg/nglyph"
	"github.com/matzehuels/glyphtools/pkg/observability"
	"github.com/matzehuels/glyphtools/pkg/pipeline"
)

const songLabels = "0\t0\tLABEL_VERSION=1\n" +
	"0\t0\tPHONE_MODEL=PHONE1\n" +
	"1\t2\t1-0-100-LIN\n" +
	"3\t4\t2-100\n" +
	"5\t5\tEND\n"

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := log.NewWithOptions(io.Discard, log.Options{})
	s := New(pipeline.NewRunner(nil, nil, nil, logger), nil, logger)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func post(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	var data []byte
	switch b := body.(type) {
	case string:
		data = []byte(b)
	case []byte:
		data = b
	default:
		var err error
		if data, err = json.Marshal(body); err != nil {
			t.Fatal(err)
		}
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func expectError(t *testing.T, resp *http.Response, status int, code errors.Code) {
	t.Helper()
	if resp.StatusCode != status {
		t.Errorf("status = %d, want %d", resp.StatusCode, status)
	}
	var body errorBody
	decodeBody(t, resp, &body)
	if body.Error.Code != code || body.Error.Message == "" {
		t.Errorf("error = %+v, want code %s", body.Error, code)
	}
}

func translate(t *testing.T, ts *httptest.Server, req translateRequest) translateResponse {
	t.Helper()
	resp := post(t, ts.URL+"/v1/translate", req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("translate status = %d", resp.StatusCode)
	}
	var out translateResponse
	decodeBody(t, resp, &out)
	return out
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var body map[string]string
	decodeBody(t, resp, &body)
	if resp.StatusCode != http.StatusOK || body["status"] != "ok" {
		t.Errorf("healthz = %d %v", resp.StatusCode, body)
	}
}

func TestTranslate(t *testing.T) {
	ts := newTestServer(t)
	out := translate(t, ts, translateRequest{Labels: songLabels, Name: "song.txt"})

	if out.Name != "song.nglyph" || out.Rows != 301 || out.Directives != 2 {
		t.Errorf("response = %+v", out)
	}
	if out.Warnings == nil {
		t.Error("warnings should be an empty list, not null")
	}
	f, err := nglyph.Read(bytes.NewReader(out.Composition))
	if err != nil {
		t.Fatalf("composition is not a valid nglyph document: %v", err)
	}
	if f.Sealed() {
		t.Error("composition without watermark is sealed")
	}
}

func TestTranslateErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   any
		status int
		code   errors.Code
	}{
		{"empty labels", translateRequest{}, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"bad json", "{", http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"unknown field", `{"labels": "x", "phone": 1}`, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"bad label", translateRequest{Labels: strings.Replace(songLabels, "2-100", "9-100", 1)}, http.StatusUnprocessableEntity, errors.ErrCodeValidation},
		{"bad watermark", translateRequest{Labels: songLabels, Watermark: "a\x00b"}, http.StatusBadRequest, errors.ErrCodeInvalidInput},
	}
	ts := newTestServer(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectError(t, post(t, ts.URL+"/v1/translate", tt.body), tt.status, tt.code)
		})
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	ts := newTestServer(t)
	doc := translate(t, ts, translateRequest{Labels: songLabels}).Composition

	resp := post(t, ts.URL+"/v1/encode", encodeRequest{Composition: doc, Title: "Song"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("encode status = %d", resp.StatusCode)
	}
	var enc encodeResponse
	decodeBody(t, resp, &enc)
	if len(enc.Tags) != 6 || enc.Tags[0].Key != pipeline.TagTitle || enc.Tags[0].Value != "Song" {
		t.Fatalf("tags = %+v", enc.Tags)
	}

	tags := map[string]string{}
	for _, tag := range enc.Tags {
		tags[strings.ToLower(tag.Key)] = tag.Value
	}
	resp = post(t, ts.URL+"/v1/decode", decodeRequest{Tags: tags})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("decode status = %d", resp.StatusCode)
	}
	var dec decodeResponse
	decodeBody(t, resp, &dec)

	want, _ := nglyph.Read(bytes.NewReader(doc))
	got, err := nglyph.Read(bytes.NewReader(dec.Composition))
	if err != nil {
		t.Fatal(err)
	}
	wt, _ := want.Table()
	gt, _ := got.Table()
	if !wt.Equal(gt) || len(dec.Warnings) != 0 {
		t.Errorf("round trip changed the composition (warnings: %v)", dec.Warnings)
	}
}

func TestDecodeMissingTags(t *testing.T) {
	ts := newTestServer(t)
	resp := post(t, ts.URL+"/v1/decode", decodeRequest{Tags: map[string]string{"TITLE": "x"}})
	expectError(t, resp, http.StatusBadRequest, errors.ErrCodeFormat)
}

func TestCompositions(t *testing.T) {
	ts := newTestServer(t)
	doc := translate(t, ts, translateRequest{Labels: songLabels}).Composition

	resp := post(t, ts.URL+"/v1/compositions", []byte(doc))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("store status = %d", resp.StatusCode)
	}
	var stored storeResponse
	decodeBody(t, resp, &stored)
	if resp.Header.Get("Location") != "/v1/compositions/"+stored.ID {
		t.Errorf("Location = %q", resp.Header.Get("Location"))
	}

	get, err := http.Get(ts.URL + "/v1/compositions/" + stored.ID)
	if err != nil {
		t.Fatal(err)
	}
	defer get.Body.Close()
	f, err := nglyph.Read(get.Body)
	if err != nil || get.StatusCode != http.StatusOK {
		t.Fatalf("get = %d, %v", get.StatusCode, err)
	}
	if tbl, _ := f.Table(); len(tbl.Rows) != 301 {
		t.Errorf("stored table has %d rows", len(tbl.Rows))
	}

	for _, tt := range []struct {
		id     string
		status int
		code   errors.Code
	}{
		{uuid.NewString(), http.StatusNotFound, errors.ErrCodeNotFound},
		{"not-an-id", http.StatusBadRequest, errors.ErrCodeInvalidInput},
	} {
		resp, err := http.Get(ts.URL + "/v1/compositions/" + tt.id)
		if err != nil {
			t.Fatal(err)
		}
		expectError(t, resp, tt.status, tt.code)
		resp.Body.Close()
	}

	expectError(t, post(t, ts.URL+"/v1/compositions", `{"VERSION": 1}`), http.StatusBadRequest, errors.ErrCodeFormat)
}

func TestBodyLimit(t *testing.T) {
	logger := log.NewWithOptions(io.Discard, log.Options{})
	s := New(pipeline.NewRunner(nil, nil, nil, logger), nil, logger)
	s.MaxBody = 16
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	resp := post(t, ts.URL+"/v1/translate", translateRequest{Labels: songLabels})
	expectError(t, resp, http.StatusRequestEntityTooLarge, errors.ErrCodeInvalidInput)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		code errors.Code
		want int
	}{
		{errors.ErrCodeInvalidInput, http.StatusBadRequest},
		{errors.ErrCodeFormat, http.StatusBadRequest},
		{errors.ErrCodeValidation, http.StatusUnprocessableEntity},
		{errors.ErrCodeTopology, http.StatusUnprocessableEntity},
		{errors.ErrCodeCodec, http.StatusUnprocessableEntity},
		{errors.ErrCodeNotFound, http.StatusNotFound},
		{errors.ErrCodeExternalTool, http.StatusBadGateway},
		{errors.ErrCodeInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.code); got != tt.want {
			t.Errorf("statusFor(%s) = %d, want %d", tt.code, got, tt.want)
		}
	}
}

type recordingHTTPHooks struct {
	mu     sync.Mutex
	routes []string
}

func (h *recordingHTTPHooks) OnRequest(context.Context, string, string) {}

func (h *recordingHTTPHooks) OnResponse(_ context.Context, method, route string, status int, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.routes = append(h.routes, method+" "+route+" "+http.StatusText(status))
}

func TestHTTPHooks(t *testing.T) {
	hooks := &recordingHTTPHooks{}
	observability.SetHTTPHooks(hooks)
	defer observability.Reset()

	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/v1/compositions/" + uuid.NewString())
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	hooks.mu.Lock()
	defer hooks.mu.Unlock()
	if len(hooks.routes) != 1 || hooks.routes[0] != "GET /v1/compositions/{id} Not Found" {
		t.Errorf("routes = %v", hooks.routes)
	}
}

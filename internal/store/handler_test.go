package store

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"

	"github.com/inamate/sketch/internal/auth"
	"github.com/inamate/sketch/internal/codec"
)

type testServer struct {
	router *mux.Router
	codec  *codec.Codec
	auth   *auth.Service
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	service, c := newTestService(t)
	h := NewHandler(service)
	authSvc := auth.NewService("test-secret")

	r := mux.NewRouter()
	r.HandleFunc("/scenes/normalize", h.Normalize).Methods("POST")
	api := r.PathPrefix("/api").Subrouter()
	api.Use(authSvc.AuthMiddleware)
	api.HandleFunc("/scenes", h.List).Methods("GET")
	api.HandleFunc("/scenes", h.Create).Methods("POST")
	api.HandleFunc("/scenes/{sceneId}", h.Get).Methods("GET")
	api.HandleFunc("/scenes/{sceneId}", h.Replace).Methods("PUT")
	api.HandleFunc("/scenes/{sceneId}", h.Delete).Methods("DELETE")
	api.HandleFunc("/scenes/{sceneId}/summary", h.Summary).Methods("GET")
	return &testServer{router: r, codec: c, auth: authSvc}
}

func (s *testServer) do(t *testing.T, user, method, path string, body []byte, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if user != "" {
		token, err := s.auth.IssueToken(user, 0)
		if err != nil {
			t.Fatal(err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func TestHandlerSceneLifecycle(t *testing.T) {
	srv := newTestServer(t)
	data := sceneFile(t, srv.codec, 2)

	w := srv.do(t, "user-1", "POST", "/api/scenes?name=Board", data, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", w.Code, w.Body)
	}
	var scene Scene
	if err := json.Unmarshal(w.Body.Bytes(), &scene); err != nil {
		t.Fatal(err)
	}
	etag := w.Header().Get("ETag")
	if scene.Name != "Board" || etag != `"`+scene.Digest+`"` {
		t.Errorf("scene = %+v etag %s", scene, etag)
	}

	w = srv.do(t, "user-1", "GET", "/api/scenes/"+scene.ID, nil, nil)
	if w.Code != http.StatusOK || Digest(w.Body.Bytes()) != scene.Digest {
		t.Errorf("get status = %d", w.Code)
	}
	w = srv.do(t, "user-1", "GET", "/api/scenes/"+scene.ID, nil, map[string]string{"If-None-Match": etag})
	if w.Code != http.StatusNotModified {
		t.Errorf("conditional get status = %d, want 304", w.Code)
	}
	w = srv.do(t, "user-2", "GET", "/api/scenes/"+scene.ID, nil, nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("foreign get status = %d, want 403", w.Code)
	}

	update := sceneFile(t, srv.codec, 3)
	w = srv.do(t, "user-1", "PUT", "/api/scenes/"+scene.ID, update, map[string]string{"If-Match": `"stale"`})
	if w.Code != http.StatusPreconditionFailed {
		t.Errorf("stale put status = %d, want 412", w.Code)
	}
	w = srv.do(t, "user-1", "PUT", "/api/scenes/"+scene.ID, update, map[string]string{"If-Match": etag})
	if w.Code != http.StatusOK {
		t.Errorf("put status = %d, body %s", w.Code, w.Body)
	}

	w = srv.do(t, "user-1", "GET", "/api/scenes/"+scene.ID+"/summary", nil, nil)
	var sum codec.Summary
	json.Unmarshal(w.Body.Bytes(), &sum)
	if w.Code != http.StatusOK || sum.Layers != 3 {
		t.Errorf("summary status = %d layers %d", w.Code, sum.Layers)
	}

	w = srv.do(t, "user-1", "GET", "/api/scenes", nil, nil)
	var list []Scene
	json.Unmarshal(w.Body.Bytes(), &list)
	if len(list) != 1 {
		t.Errorf("list = %v", list)
	}

	w = srv.do(t, "user-1", "DELETE", "/api/scenes/"+scene.ID, nil, nil)
	if w.Code != http.StatusNoContent {
		t.Errorf("delete status = %d", w.Code)
	}
	w = srv.do(t, "user-1", "GET", "/api/scenes/"+scene.ID, nil, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want 404", w.Code)
	}
}

func TestHandlerErrors(t *testing.T) {
	srv := newTestServer(t)
	tests := []struct {
		name   string
		user   string
		method string
		path   string
		body   []byte
		want   int
	}{
		{"no token", "", "GET", "/api/scenes", nil, http.StatusUnauthorized},
		{"empty body", "user-1", "POST", "/api/scenes", nil, http.StatusBadRequest},
		{"malformed", "user-1", "POST", "/api/scenes", []byte("SKCH\x01@@@"), http.StatusBadRequest},
		{"future version", "user-1", "POST", "/api/scenes", []byte("SKCH\x09AAAA"), http.StatusUnprocessableEntity},
		{"missing scene", "user-1", "GET", "/api/scenes/nope", nil, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := srv.do(t, tt.user, tt.method, tt.path, tt.body, nil); w.Code != tt.want {
				t.Errorf("status = %d, want %d (%s)", w.Code, tt.want, w.Body)
			}
		})
	}
}

func TestHandlerNormalize(t *testing.T) {
	srv := newTestServer(t)
	data := sceneFile(t, srv.codec, 1)
	w := srv.do(t, "", "POST", "/scenes/normalize", data, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body)
	}
	if !bytes.HasPrefix(w.Body.Bytes(), []byte(codec.Magic)) {
		t.Error("normalized output has no header")
	}
}

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestStaticHandler(t *testing.T) {
	root := fstest.MapFS{
		"index.html":       {Data: []byte("<html>app</html>")},
		"assets/app.js":    {Data: []byte("console.log(1)")},
		"assets/style.css": {Data: []byte("body{}")},
	}
	h := NewStaticHandlerFS(root, zap.NewNop())

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantBody   string
	}{
		{"root", "/", http.StatusOK, "<html>app</html>"},
		{"asset", "/assets/app.js", http.StatusOK, "console.log(1)"},
		{"client route", "/tasks/12", http.StatusOK, "<html>app</html>"},
		{"unknown api", "/api/nothing", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(h, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, rec.Body.String())
			}
		})
	}
}

func TestStaticHandler_NoFrontEnd(t *testing.T) {
	h := NewStaticHandlerFS(fstest.MapFS{}, zap.NewNop())

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/tasks", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

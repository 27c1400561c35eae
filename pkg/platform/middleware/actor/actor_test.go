package actor

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"casegate/pkg/requestcontext"
)

func TestMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		headers    map[string]string
		remoteAddr string
		wantActor  string
		wantIP     string
	}{
		{
			name:       "explicit actor header",
			headers:    map[string]string{"X-Actor": "reviewer@x"},
			remoteAddr: "10.0.0.5:4312",
			wantActor:  "reviewer@x",
			wantIP:     "10.0.0.5",
		},
		{
			name:       "falls back to client ip",
			remoteAddr: "10.0.0.5:4312",
			wantActor:  "10.0.0.5",
			wantIP:     "10.0.0.5",
		},
		{
			name:       "forwarded-for wins over remote addr",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.9, 10.0.0.1"},
			remoteAddr: "10.0.0.5:4312",
			wantActor:  "203.0.113.9",
			wantIP:     "203.0.113.9",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotActor, gotIP string
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotActor = requestcontext.Actor(r.Context())
				gotIP = requestcontext.ClientIP(r.Context())
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}

			Middleware(next).ServeHTTP(httptest.NewRecorder(), req)

			assert.Equal(t, tt.wantActor, gotActor)
			assert.Equal(t, tt.wantIP, gotIP)
		})
	}
}

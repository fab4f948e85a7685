package api

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/rileyhilliard/nevconsole/internal/errors"
	"github.com/rileyhilliard/nevconsole/internal/feedtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		server  string
		wantErr bool
	}{
		{"http://localhost:8080", false},
		{"https://console.example.com/base/", false},
		{"ws://localhost:8080", true},
		{"localhost:8080", true},
		{"http://", true},
	}

	for _, tt := range tests {
		t.Run(tt.server, func(t *testing.T) {
			_, err := New(tt.server, time.Second)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsCode(err, errors.ErrConfig))
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestClient_Endpoint(t *testing.T) {
	c, err := New("https://console.example.com/base/", 0)
	require.NoError(t, err)
	assert.Equal(t, "https://console.example.com/base/api/estop", c.Endpoint(PathEStop))
}

func TestClient_PostJSON(t *testing.T) {
	srv := feedtest.NewServer()
	defer srv.Close()

	c, err := New(srv.URL, time.Second)
	require.NoError(t, err)

	var out struct {
		OK bool `json:"ok"`
	}
	err = c.PostJSON(context.Background(), PathEStop, "req-1", map[string]bool{"active": true}, &out)
	require.NoError(t, err)
	assert.True(t, out.OK)

	reqs := srv.RequestsTo(feedtest.PathEStop)
	require.Len(t, reqs, 1)
	assert.Equal(t, "req-1", reqs[0].RequestID)
	assert.Equal(t, true, reqs[0].Body["active"])
}

func TestClient_PostJSON_StatusError(t *testing.T) {
	srv := feedtest.NewServer()
	defer srv.Close()
	srv.SetResponse(feedtest.PathMode, feedtest.Response{Status: http.StatusUnprocessableEntity, Body: `{"detail": "bad"}`})

	c, err := New(srv.URL, time.Second)
	require.NoError(t, err)

	err = c.PostJSON(context.Background(), PathMode, "", map[string]int{"mode": 2}, nil)
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusUnprocessableEntity, statusErr.Status)
	assert.Contains(t, statusErr.Error(), "bad")
}

func TestClient_State(t *testing.T) {
	srv := feedtest.NewServer()
	defer srv.Close()
	srv.SetInitial(`{"mux": {"requested_mode": 2}, "station_connected": true}`)

	c, err := New(srv.URL, time.Second)
	require.NoError(t, err)

	s, err := c.State(context.Background())
	require.NoError(t, err)
	require.NotNil(t, s.Mux)
	assert.Equal(t, 2, *s.Mux.RequestedMode)
	assert.True(t, *s.StationConnected)
}

func TestClient_Offer(t *testing.T) {
	srv := feedtest.NewServer()
	defer srv.Close()

	var seen SessionDescription
	srv.SetOffer(func(sdp, typ string) feedtest.Response {
		seen = SessionDescription{SDP: sdp, Type: typ}
		return feedtest.Response{Body: `{"sdp": "v=0 answer", "type": "answer"}`}
	})

	c, err := New(srv.URL, time.Second)
	require.NoError(t, err)

	answer, err := c.Offer(context.Background(), SessionDescription{SDP: "v=0 offer", Type: "offer"})
	require.NoError(t, err)
	assert.Equal(t, SessionDescription{SDP: "v=0 answer", Type: "answer"}, answer)
	assert.Equal(t, SessionDescription{SDP: "v=0 offer", Type: "offer"}, seen)

	reqs := srv.RequestsTo(feedtest.PathOffer)
	require.Len(t, reqs, 1)
	assert.NotEmpty(t, reqs[0].RequestID)
}

func TestClient_OfferFailures(t *testing.T) {
	tests := []struct {
		name string
		resp feedtest.Response
	}{
		{"server error", feedtest.Response{Status: http.StatusInternalServerError, Body: "boom"}},
		{"not json", feedtest.Response{Body: "<html>"}},
		{"missing sdp", feedtest.Response{Body: `{"type": "answer"}`}},
		{"wrong type", feedtest.Response{Body: `{"sdp": "v=0", "type": "offer"}`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := feedtest.NewServer()
			defer srv.Close()
			srv.SetOffer(func(string, string) feedtest.Response { return tt.resp })

			c, err := New(srv.URL, time.Second)
			require.NoError(t, err)

			_, err = c.Offer(context.Background(), SessionDescription{SDP: "v=0", Type: "offer"})
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrNegotiation))
		})
	}
}

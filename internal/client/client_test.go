package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isdelr/placeit-be/internal/models"
)

func TestLoginAndMe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/auth/login":
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			if body["password"] != "secret1" {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"message":"Invalid email or password."}`))
				return
			}
			_, _ = w.Write([]byte(`{"token":"tok","user":{"id":"u1","email":"a@x.io"}}`))
		case "/api/auth/me":
			if r.Header.Get("Authorization") != "Bearer tok" {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"message":"Invalid auth token"}`))
				return
			}
			_, _ = w.Write([]byte(`{"id":"u1","email":"a@x.io"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := New(srv.URL+"/", time.Second)
	ctx := context.Background()

	_, err := c.Login(ctx, "a@x.io", "wrong")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "Invalid email or password.", apiErr.Error())

	res, err := c.Login(ctx, "a@x.io", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "tok", res.Token)
	assert.Equal(t, models.PublicUser{ID: "u1", Email: "a@x.io"}, res.User)

	me, err := c.Me(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, "a@x.io", me.Email)

	_, err = c.Me(ctx, "bad")
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
}

func TestSearchAndAnalyze(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/geocode":
			assert.Equal(t, "Puri, Odisha", r.URL.Query().Get("q"))
			_, _ = w.Write([]byte(`{"location":{"lat":19.81,"lng":85.83,"name":"Puri"},"warning":""}`))
		case "/api/analyze":
			var req models.PredictionRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, 2.5, req.RadiusKm)
			_, _ = w.Write([]byte(`{"radiusKm":2.5,"suitableCount":1,"total":2}`))
		}
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	ctx := context.Background()

	found, err := c.Search(ctx, "tok", "Puri, Odisha")
	require.NoError(t, err)
	assert.Equal(t, "Puri", found.Location.Name)

	res, err := c.Analyze(ctx, "tok", models.PredictionRequest{Latitude: 19.81, Longitude: 85.83, RadiusKm: 2.5})
	require.NoError(t, err)
	assert.Equal(t, 1, res.SuitableCount)
	assert.Equal(t, 2, res.Total)
}

func TestUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(url, time.Second).Register(context.Background(), "a@x.io", "secret1")
	assert.ErrorIs(t, err, ErrUnavailable)
}

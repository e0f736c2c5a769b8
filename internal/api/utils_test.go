package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorResponse(t *testing.T) {
	rec := httptest.NewRecorder()
	ErrorResponse(rec, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusBadGateway, "provider down")

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "provider down", body.Error)
}

func TestDecodeJSONBody(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{name: "valid", body: `{"name":"Kashgar"}`},
		{name: "empty", body: ``, wantErr: "body must not be empty"},
		{name: "malformed", body: `{"name":`, wantErr: "badly-formed JSON"},
		{name: "unknown field", body: `{"city":"x"}`, wantErr: `unknown key "city"`},
		{name: "wrong type", body: `{"name":3}`, wantErr: `incorrect JSON type for field "name"`},
		{name: "trailing data", body: `{"name":"a"}{"name":"b"}`, wantErr: "single JSON value"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var dst payload
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			err := DecodeJSONBody(httptest.NewRecorder(), r, &dst)
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, "Kashgar", dst.Name)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestQueryHelpers(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?zoom=7&limit=abc&north=44.5&cluster=true&bad=yes", nil)

	require.NotNil(t, QueryInt(r, "zoom"))
	assert.Equal(t, 7, *QueryInt(r, "zoom"))
	assert.Nil(t, QueryInt(r, "limit"))
	assert.Nil(t, QueryInt(r, "missing"))

	require.NotNil(t, QueryFloat(r, "north"))
	assert.InDelta(t, 44.5, *QueryFloat(r, "north"), 1e-9)
	assert.Nil(t, QueryFloat(r, "south"))

	assert.True(t, QueryBool(r, "cluster", false))
	assert.False(t, QueryBool(r, "bad", false))
	assert.True(t, QueryBool(r, "missing", true))
}

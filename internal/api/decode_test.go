package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type reasonBody struct {
	Reason string `json:"reason" validate:"max=5"`
}

func TestDecodeOptionalJSON(t *testing.T) {
	cases := []struct {
		name    string
		body    string
		chunked bool
		ok      bool
		want    string
	}{
		{name: "empty", body: "", ok: true},
		{name: "empty chunked", body: "", chunked: true, ok: true},
		{name: "value", body: `{"reason":"late"}`, ok: true, want: "late"},
		{name: "broken", body: `{"reason":`, ok: false},
		{name: "too long", body: `{"reason":"far too long"}`, ok: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body))
			if tc.chunked {
				r.ContentLength = -1
			}
			w := httptest.NewRecorder()

			var got reasonBody
			assert.Equal(t, tc.ok, DecodeOptionalJSON(w, r, &got))
			if tc.ok {
				assert.Equal(t, tc.want, got.Reason)
			} else {
				assert.Equal(t, http.StatusBadRequest, w.Code)
			}
		})
	}
}

func TestDecodeJSON_EmptyBodyRejected(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	w := httptest.NewRecorder()

	var got reasonBody
	assert.False(t, DecodeJSON(w, r, &got))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

package matching

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter() *Router[string] {
	r := &Router[string]{}
	r.Add("get", MustParseTemplate("/orders/{orderId}"), "GetOrder")
	r.Add("GET", MustParseTemplate("/orders/latest"), "LatestOrder")
	r.Add("POST", MustParseTemplate("/orders"), "PlaceOrder")
	r.Add("DELETE", MustParseTemplate("/orders/{id}"), "CancelOrder")
	r.Add("GET", MustParseTemplate("/orders/{other}"), "Shadowed")
	return r
}

func TestRouter_Find(t *testing.T) {
	r := newTestRouter()

	tests := []struct {
		name       string
		method     string
		path       string
		wantValue  string
		wantParams map[string]string
		wantOK     bool
	}{
		{name: "param", method: "GET", path: "/orders/17", wantValue: "GetOrder", wantParams: map[string]string{"orderId": "17"}, wantOK: true},
		{name: "literal wins over param", method: "GET", path: "/orders/latest", wantValue: "LatestOrder", wantParams: map[string]string{}, wantOK: true},
		{name: "method case", method: "post", path: "/orders", wantValue: "PlaceOrder", wantParams: map[string]string{}, wantOK: true},
		{name: "same path other method", method: "DELETE", path: "/orders/17", wantValue: "CancelOrder", wantParams: map[string]string{"id": "17"}, wantOK: true},
		{name: "no method", method: "PUT", path: "/orders/17"},
		{name: "no path", method: "GET", path: "/customers/1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok := r.Find(tt.method, tt.path)
			require.Equal(t, tt.wantOK, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.wantValue, m.Route.Value)
			assert.Equal(t, tt.wantParams, m.Params)
		})
	}
	assert.Len(t, r.Routes(), 5)
}

func TestRouter_NearMisses(t *testing.T) {
	r := newTestRouter()

	misses := r.NearMisses("PUT", "/orders/17")
	require.Len(t, misses, 3)
	assert.Equal(t, NearMiss{Method: "DELETE", Path: "/orders/{id}", Reason: "method mismatch"}, misses[0])
	assert.Equal(t, "GET", misses[1].Method)
	assert.Equal(t, "GET", misses[2].Method)

	assert.Empty(t, r.NearMisses("GET", "/customers"))
}

func TestParseQuery(t *testing.T) {
	tests := []struct {
		raw  string
		want url.Values
	}{
		{raw: "", want: url.Values{}},
		{raw: "a=1&b=2", want: url.Values{"a": {"1"}, "b": {"2"}}},
		{raw: "verbose", want: url.Values{"verbose": {"true"}}},
		{raw: "tag=a&tag=b&tag", want: url.Values{"tag": {"a", "b", "true"}}},
		{raw: "q=hello+world&x=%C3%A9", want: url.Values{"q": {"hello world"}, "x": {"é"}}},
		{raw: "empty=&&=v", want: url.Values{"empty": {""}}},
		{raw: "bad=%zz", want: url.Values{"bad": {"%zz"}}},
		{raw: "eq=a=b", want: url.Values{"eq": {"a=b"}}},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseQuery(tt.raw))
		})
	}
}

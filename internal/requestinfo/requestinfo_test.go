package requestinfo

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/avct/uasurfer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const iphoneUA = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_3 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.3 Mobile/15E148 Safari/604.1"

func TestPrimaryLang(t *testing.T) {
	assert.Equal(t, "en-us", primaryLang("en-US,en;q=0.9"))
	assert.Equal(t, "fr", primaryLang("fr;q=0.8"))
	assert.Empty(t, primaryLang(""))
}

func TestTrimVersion(t *testing.T) {
	assert.Equal(t, "17", trimVersion(uasurfer.Version{Major: 17}))
	assert.Equal(t, "17.3", trimVersion(uasurfer.Version{Major: 17, Minor: 3}))
	assert.Equal(t, "1.0.2", trimVersion(uasurfer.Version{Major: 1, Patch: 2}))
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.1:5555"
	assert.Equal(t, "10.0.0.1", clientIP(r).String())

	r.Header.Set("X-Real-Ip", "192.0.2.7")
	assert.Equal(t, "192.0.2.7", clientIP(r).String())

	r.Header.Set("X-Forwarded-For", "garbage, 203.0.113.9, 10.0.0.2")
	assert.Equal(t, "203.0.113.9", clientIP(r).String())
}

func TestEnrichStoresInfo(t *testing.T) {
	var got *RequestInfo
	h := Enrich(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		got = FromContext(r.Context())
	}))

	r := httptest.NewRequest(http.MethodGet, "/form/", nil)
	r.Header.Set("User-Agent", iphoneUA)
	r.Header.Set("Accept-Language", "de-DE,de;q=0.9")
	h.ServeHTTP(httptest.NewRecorder(), r)

	require.NotNil(t, got)
	assert.Equal(t, "Phone", got.UA.Device)
	assert.Equal(t, "de-de", got.UA.PrimaryLang)
	assert.False(t, got.Timestamp.IsZero())
	assert.Empty(t, got.Geo.CountryISO, "no GeoLite2 DB configured")

	// second request hits the parse cache but keeps its own language
	r2 := httptest.NewRequest(http.MethodGet, "/", nil)
	r2.Header.Set("User-Agent", iphoneUA)
	h.ServeHTTP(httptest.NewRecorder(), r2)
	assert.Empty(t, got.UA.PrimaryLang)
	assert.Equal(t, "Phone", got.UA.Device)
}

func TestDeviceDefault(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Equal(t, "Unknown", Device(r.Context()))
}

func TestInitGeoEmptyPathDisables(t *testing.T) {
	require.NoError(t, InitGeo(""))
	require.NoError(t, CloseGeo())
	assert.Error(t, InitGeo("/nonexistent/GeoLite2-City.mmdb"))
}

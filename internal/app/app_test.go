package app

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/deusflow/goodnews/internal/config"
	"github.com/deusflow/goodnews/internal/rss"
)

func TestHandlerReportsAPILimits(t *testing.T) {
	cfg := config.Default()
	cfg.GeoDailyLimit = 5
	cfg.WeatherDailyLimit = 0

	a := New(cfg, rss.DefaultFeeds())
	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	var body struct {
		APILimits []struct {
			API       string `json:"api"`
			Limit     int    `json:"limit"`
			Remaining int    `json:"remaining"`
		} `json:"api_limits"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding %s: %v", rec.Body.String(), err)
	}
	if len(body.APILimits) != 2 {
		t.Fatalf("api_limits = %+v", body.APILimits)
	}
	geo, weather := body.APILimits[0], body.APILimits[1]
	if geo.API != "ipapi" || geo.Limit != 5 || geo.Remaining != 5 {
		t.Errorf("geo limit = %+v", geo)
	}
	if weather.API != "openweathermap" || weather.Remaining != -1 {
		t.Errorf("weather limit = %+v", weather)
	}
}

package location

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"bloommarket/pkg/logger"
	"bloommarket/pkg/utils"
)

const DefaultORSBaseURL = "https://api.openrouteservice.org"

// ORSGeocoder labels coordinates through the OpenRouteService reverse
// geocoding endpoint.
type ORSGeocoder struct {
	apiKey  string
	baseURL string
	session *http.Client
	retry   utils.RetryPolicy
}

func NewORSGeocoder(apiKey, baseURL string, session *http.Client) *ORSGeocoder {
	if baseURL == "" {
		baseURL = DefaultORSBaseURL
	}
	if session == nil {
		session = &http.Client{Timeout: 15 * time.Second}
	}
	return &ORSGeocoder{
		apiKey:  apiKey,
		baseURL: baseURL,
		session: session,
		retry:   utils.DefaultRetryPolicy,
	}
}

type reverseResponse struct {
	Features []struct {
		Properties struct {
			Label string `json:"label"`
		} `json:"properties"`
	} `json:"features"`
}

func (o *ORSGeocoder) Reverse(ctx context.Context, lat, lon float64) (_ string, err error) {
	defer logger.Time(ctx, "ors.reverse")(&err)

	endpoint := o.baseURL + "/geocode/reverse"

	resp, err := utils.DoWithRetry(ctx, o.session, o.retry, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", o.apiKey)
		req.Header.Set("Accept", "application/json")

		q := req.URL.Query()
		q.Set("point.lat", strconv.FormatFloat(lat, 'f', 6, 64))
		q.Set("point.lon", strconv.FormatFloat(lon, 'f', 6, 64))
		q.Set("size", "1")
		req.URL.RawQuery = q.Encode()
		return req, nil
	})
	if err != nil {
		return "", fmt.Errorf("execute reverse geocode: %w", err)
	}
	defer resp.Body.Close()

	var decoded reverseResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode reverse geocode: %w", err)
	}

	if len(decoded.Features) == 0 || decoded.Features[0].Properties.Label == "" {
		return "", fmt.Errorf("no reverse geocode result for %.4f, %.4f", lat, lon)
	}

	return decoded.Features[0].Properties.Label, nil
}

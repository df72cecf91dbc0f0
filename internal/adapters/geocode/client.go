package geocode

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	domain "github.com/metkashop/metka-miniapp/internal/domain/delivery"
	"github.com/metkashop/metka-miniapp/internal/logging"
)

const maxSuggestions = 7

// Client — обертка над сервисом адресных подсказок. Геокодирование здесь
// улучшение, а не требование корректности: любые сбои наверху превращаются
// в "не нашли", не в ошибку.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type suggestRequest struct {
	Query string `json:"query"`
	Count int    `json:"count,omitempty"`
}

type suggestResponse struct {
	Suggestions []struct {
		Value string `json:"value"`
		Data  struct {
			GeoLat string `json:"geo_lat"`
			GeoLon string `json:"geo_lon"`
		} `json:"data"`
	} `json:"suggestions"`
}

// Geocode находит координаты по полному адресу. (nil, nil) — подсказок нет
// или у лучшей подсказки нет координат.
func (c *Client) Geocode(ctx context.Context, fullAddress string) (*domain.Coordinates, error) {
	var sr suggestResponse
	if err := c.suggest(ctx, suggestRequest{Query: fullAddress, Count: 1}, &sr); err != nil {
		logging.LogDebug("geocode suggest failed", logrus.Fields{"method": "Geocode", "error": err.Error()})
		return nil, nil
	}
	if len(sr.Suggestions) == 0 {
		return nil, nil
	}

	data := sr.Suggestions[0].Data
	if data.GeoLat == "" || data.GeoLon == "" {
		return nil, nil
	}
	lat, latErr := strconv.ParseFloat(data.GeoLat, 64)
	lon, lonErr := strconv.ParseFloat(data.GeoLon, 64)
	if latErr != nil || lonErr != nil {
		return nil, nil
	}
	return &domain.Coordinates{Lat: lat, Lon: lon}, nil
}

// SuggestStreets отдает до 7 подсказок улиц в рамках города. Пустой список
// на любой сбой наверху.
func (c *Client) SuggestStreets(ctx context.Context, city, query string) ([]string, error) {
	var sr suggestResponse
	req := suggestRequest{Query: city + ", " + query, Count: maxSuggestions}
	if err := c.suggest(ctx, req, &sr); err != nil {
		logging.LogDebug("street suggest failed", logrus.Fields{"method": "SuggestStreets", "error": err.Error()})
		return []string{}, nil
	}

	out := make([]string, 0, len(sr.Suggestions))
	for _, s := range sr.Suggestions {
		out = append(out, s.Value)
	}
	if len(out) > maxSuggestions {
		out = out[:maxSuggestions]
	}
	return out, nil
}

func (c *Client) suggest(ctx context.Context, body suggestRequest, out *suggestResponse) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/suggest/address", bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Token "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("suggest: status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

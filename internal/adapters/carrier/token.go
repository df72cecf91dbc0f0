package carrier

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	app "github.com/metkashop/metka-miniapp/internal/app/delivery"
	"github.com/metkashop/metka-miniapp/internal/logging"
)

// Запас до заявленного истечения токена: обновляемся заранее, чтобы не
// поймать 401 на границе.
const tokenSafetyMargin = 60 * time.Second

type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// CachedTokenSource держит один bearer-токен перевозчика на весь процесс и
// обновляет его по истечении. Параллельные промахи кэша допустимы: обновление
// идемпотентно, выигравший просто перезапишет слот.
type CachedTokenSource struct {
	authURL      string
	clientID     string
	clientSecret string
	httpClient   *http.Client

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

func NewCachedTokenSource(authURL, clientID, clientSecret string, httpClient *http.Client) *CachedTokenSource {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &CachedTokenSource{
		authURL:      authURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient:   httpClient,
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// Token возвращает кэшированный токен без похода в сеть, пока он не истек,
// иначе выполняет client-credentials grant и запоминает результат.
func (s *CachedTokenSource) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != "" && time.Now().Before(s.expiresAt) {
		return s.token, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", s.clientID)
	form.Set("client_secret", s.clientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.authURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("%w: %v", app.ErrAuthFailure, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", app.ErrAuthFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", app.ErrAuthFailure, resp.StatusCode)
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", fmt.Errorf("%w: %v", app.ErrAuthFailure, err)
	}
	if tr.AccessToken == "" {
		return "", fmt.Errorf("%w: empty access_token", app.ErrAuthFailure)
	}

	s.token = tr.AccessToken
	s.expiresAt = time.Now().Add(time.Duration(tr.ExpiresIn)*time.Second - tokenSafetyMargin)

	logging.LogInfo("carrier token refreshed", logrus.Fields{
		"method":     "Token",
		"expires_in": tr.ExpiresIn,
	})
	return s.token, nil
}

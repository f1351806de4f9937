// Package source реализует клиент слоя дорожных событий Яндекс.Карт.
package source

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/paulmach/orb/maptile"
	"github.com/sirupsen/logrus"
)

const (
	DefaultCoverageURL = "https://api-maps.yandex.ru/services/coverage/v2/layers_stamps"
	DefaultTilesURL    = "https://core-road-events-renderer.maps.yandex.net/1.1/tiles"

	// VersionLayer - слой, чья версия валидирует запросы тайлов событий
	VersionLayer = "trfe"
	// TileLayer - слой дорожных событий
	TileLayer   = "trje"
	DefaultLang = "ru_RU"

	maxResponseSize int64 = 16 << 20
)

// Options - параметры клиента
type Options struct {
	APIKey      string
	CoverageURL string
	TilesURL    string
	Lang        string
	Timeout     time.Duration
}

// Client - клиент источника. Любая ошибка сети или разбора превращается в
// "нет данных" и логируется, наружу ошибки не выходят.
type Client struct {
	opts       Options
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewClient создает новый клиент источника
func NewClient(opts Options, logger *logrus.Logger) *Client {
	if opts.CoverageURL == "" {
		opts.CoverageURL = DefaultCoverageURL
	}
	if opts.TilesURL == "" {
		opts.TilesURL = DefaultTilesURL
	}
	if opts.Lang == "" {
		opts.Lang = DefaultLang
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	return &Client{
		opts:       opts,
		httpClient: &http.Client{Timeout: opts.Timeout},
		logger:     logger,
	}
}

// LayerVersion возвращает текущую версию слоя событий
func (c *Client) LayerVersion(ctx context.Context) (string, bool) {
	log := c.logger.WithFields(logrus.Fields{"service": "source", "method": "LayerVersion", "layer": VersionLayer})

	q := url.Values{}
	q.Set("lang", c.opts.Lang)
	q.Set("l", VersionLayer)

	body, err := c.get(ctx, c.opts.CoverageURL+"?"+q.Encode())
	if err != nil {
		log.WithError(err).Warn("Failed to fetch layer version")
		return "", false
	}

	var stamps map[string]struct {
		Version string `json:"version"`
	}
	if err := json.Unmarshal(body, &stamps); err != nil {
		log.WithError(err).Warn("Failed to decode layer version response")
		return "", false
	}
	stamp, ok := stamps[VersionLayer]
	if !ok || stamp.Version == "" {
		log.Warn("Layer version is missing from response")
		return "", false
	}
	return stamp.Version, true
}

// Tile скачивает тайл событий и возвращает сырые фичи
func (c *Client) Tile(ctx context.Context, tile maptile.Tile, version string) ([]json.RawMessage, bool) {
	log := c.logger.WithFields(logrus.Fields{
		"service": "source",
		"method":  "Tile",
		"tile_x":  tile.X,
		"tile_y":  tile.Y,
		"tile_z":  tile.Z,
	})

	x := strconv.FormatUint(uint64(tile.X), 10)
	y := strconv.FormatUint(uint64(tile.Y), 10)
	z := strconv.FormatUint(uint64(tile.Z), 10)

	q := url.Values{}
	q.Set("l", TileLayer)
	q.Set("lang", c.opts.Lang)
	q.Set("x", x)
	q.Set("y", y)
	q.Set("z", z)
	q.Set("scale", "1")
	q.Set("v", version)
	q.Set("apikey", c.opts.APIKey)
	q.Set("callback", fmt.Sprintf("x_%s_y_%s_z_%s_l_%s__t", x, y, z, TileLayer))

	log.Debug("Fetching tile")
	body, err := c.get(ctx, c.opts.TilesURL+"?"+q.Encode())
	if err != nil {
		log.WithError(err).Warn("Failed to fetch tile")
		return nil, false
	}

	features, err := DecodeTile(body)
	if err != nil {
		log.WithError(err).Warn("Failed to decode tile")
		return nil, false
	}
	log.WithField("features", len(features)).Debug("Tile fetched")
	return features, true
}

func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, nil
}

type tilePayload struct {
	Data *struct {
		Features []json.RawMessage `json:"features"`
	} `json:"data"`
}

// DecodeTile разбирает ответ тайла: JSONP-обёртку cb({...}); или чистый JSON
func DecodeTile(body []byte) ([]json.RawMessage, error) {
	payload := bytes.TrimSpace(body)
	if len(payload) == 0 {
		return nil, errors.New("empty tile body")
	}
	if payload[0] != '{' {
		start := bytes.IndexByte(payload, '(')
		end := bytes.LastIndex(payload, []byte(");"))
		if end < 0 && bytes.HasSuffix(payload, []byte(")")) {
			end = len(payload) - 1
		}
		if start < 0 || end <= start {
			return nil, errors.New("tile body is not JSONP")
		}
		payload = payload[start+1 : end]
	}

	var tile tilePayload
	if err := json.Unmarshal(payload, &tile); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tile: %w", err)
	}
	if tile.Data == nil {
		return []json.RawMessage{}, nil
	}
	return tile.Data.Features, nil
}

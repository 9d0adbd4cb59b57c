// Package kuboClient talks to a Kubo node over its HTTP RPC API and serves as
// the pin lister, object fetcher, pin remover and provider finder.
package kuboClient

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/i5heu/pinforest/pkg/interfaces"
	"github.com/i5heu/pinforest/pkg/types"
)

const (
	DefaultAPI     = "http://127.0.0.1:5001"
	DefaultPinType = "all"

	// Type of a routing query event that carries providers.
	routingProvider = 4
)

type Config struct {
	API           string
	PinType       string
	Timeout       time.Duration
	ProviderLimit int
	HTTPClient    *http.Client
	Logger        *logrus.Logger
}

type Client struct {
	api           string
	pinType       string
	timeout       time.Duration
	providerLimit int
	http          *http.Client
	log           *logrus.Logger
}

var _ interfaces.ContentStore = (*Client)(nil)

func New(config Config) *Client {
	if config.API == "" {
		config.API = DefaultAPI
	}
	if config.PinType == "" {
		config.PinType = DefaultPinType
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	if config.ProviderLimit <= 0 {
		config.ProviderLimit = 20
	}
	if config.HTTPClient == nil {
		config.HTTPClient = &http.Client{}
	}
	if config.Logger == nil {
		config.Logger = logrus.New()
	}

	return &Client{
		api:           strings.TrimRight(config.API, "/"),
		pinType:       config.PinType,
		timeout:       config.Timeout,
		providerLimit: config.ProviderLimit,
		http:          config.HTTPClient,
		log:           config.Logger,
	}
}

type apiError struct {
	Message string
	Code    int
	Type    string
}

type pinLsResponse struct {
	Keys map[string]struct {
		Type string
	}
}

// ListPins returns the pinned references sorted by id.
func (c *Client) ListPins(ctx context.Context) ([]types.ContentID, error) {
	body, err := c.call(ctx, "pin/ls", url.Values{"type": {c.pinType}})
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var res pinLsResponse
	if err := json.NewDecoder(body).Decode(&res); err != nil {
		return nil, fmt.Errorf("error decoding pin/ls response: %v: %w", err, types.ErrFetch)
	}

	pins := make([]types.ContentID, 0, len(res.Keys))
	for k := range res.Keys {
		pins = append(pins, types.ContentID(k))
	}
	sort.Slice(pins, func(i, j int) bool { return pins[i] < pins[j] })
	return pins, nil
}

// FetchObject reads the raw block and decodes it according to its codec.
func (c *Client) FetchObject(ctx context.Context, id types.ContentID) (types.ObjectRecord, error) {
	body, err := c.call(ctx, "block/get", url.Values{"arg": {id.String()}})
	if err != nil {
		return types.ObjectRecord{}, err
	}
	defer body.Close()

	raw, err := io.ReadAll(body)
	if err != nil {
		return types.ObjectRecord{}, fmt.Errorf("error reading block %s: %v: %w", id, err, types.ErrFetch)
	}

	return DecodeBlock(id, raw)
}

func (c *Client) RemovePin(ctx context.Context, id types.ContentID, recursive bool) error {
	body, err := c.call(ctx, "pin/rm", url.Values{
		"arg":       {id.String()},
		"recursive": {strconv.FormatBool(recursive)},
	})
	if err != nil {
		return err
	}
	defer body.Close()
	_, _ = io.Copy(io.Discard, body)
	return nil
}

type routingEvent struct {
	Type      int
	Responses []struct {
		ID    string
		Addrs []string
	}
}

// FindProviders reads the streamed routing events until the node closes the
// stream or the provider limit is reached.
func (c *Client) FindProviders(ctx context.Context, id types.ContentID) ([]types.PeerInfo, error) {
	body, err := c.call(ctx, "routing/findprovs", url.Values{
		"arg":           {id.String()},
		"num-providers": {strconv.Itoa(c.providerLimit)},
	})
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var peers []types.PeerInfo
	seen := make(map[string]struct{})
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var ev routingEvent
		if err := json.Unmarshal(line, &ev); err != nil {
			return peers, fmt.Errorf("error decoding routing event: %v: %w", err, types.ErrFetch)
		}
		if ev.Type != routingProvider {
			continue
		}
		for _, r := range ev.Responses {
			if _, dup := seen[r.ID]; dup {
				continue
			}
			seen[r.ID] = struct{}{}
			peers = append(peers, types.PeerInfo{ID: r.ID, Addrs: r.Addrs})
		}
	}
	if err := scanner.Err(); err != nil {
		return peers, fmt.Errorf("error reading providers of %s: %v: %w", id, err, types.ErrFetch)
	}
	return peers, nil
}

// call issues an RPC and returns the response body for a 2xx answer. The
// request context is bounded by the client timeout; the timer is released
// when the body is closed.
func (c *Client) call(ctx context.Context, cmd string, args url.Values) (io.ReadCloser, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)

	endpoint := c.api + "/api/v0/" + cmd + "?" + args.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("error building %s request: %w", cmd, err)
	}

	c.log.WithFields(logrus.Fields{"cmd": cmd, "args": args.Encode()}).Debug("kubo rpc")

	resp, err := c.http.Do(req)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("error calling %s: %v: %w", cmd, err, types.ErrFetch)
	}

	if resp.StatusCode/100 != 2 {
		defer cancel()
		defer resp.Body.Close()
		return nil, decodeAPIError(cmd, resp)
	}

	return &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}, nil
}

func decodeAPIError(cmd string, resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))

	var apiErr apiError
	msg := strings.TrimSpace(string(raw))
	if err := json.Unmarshal(raw, &apiErr); err == nil && apiErr.Message != "" {
		msg = apiErr.Message
	}

	kind := types.ErrFetch
	lower := strings.ToLower(msg)
	if resp.StatusCode == http.StatusNotFound ||
		strings.Contains(lower, "not found") ||
		strings.Contains(lower, "not pinned") {
		kind = types.ErrNotFound
	}
	return fmt.Errorf("%s: %s (status %d): %w", cmd, msg, resp.StatusCode, kind)
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelOnClose) Close() error {
	defer c.cancel()
	return c.ReadCloser.Close()
}

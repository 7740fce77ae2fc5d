package skport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/tidwall/gjson"
)

const (
	authBaseURL = "https://as.gryphline.com"
	apiBaseURL  = "https://zonai.skport.com"
	webBaseURL  = "https://web-api.skport.com"
	hubBaseURL  = "https://game-hub.gryphline.com"

	gameOrigin = "https://game.skport.com"

	// platformWeb is the platform identifier the web client sends. It also
	// prefixes the sk-game-role header (3_<roleId>_<serverId>).
	platformWeb   = "3"
	clientVersion = "1.0.0"

	userAgent = "Mozilla/5.0 (iPhone; CPU iPhone OS 18_7 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Mobile/15E148 SKPort/0.7.1(701014)"

	// defaultTimeout bounds every request. The remote has no server-side
	// keepalive guarantees, so an unbounded call would pin a sweep slot
	// indefinitely.
	defaultTimeout = 30 * time.Second
)

// Client talks to the SKPort game API. All endpoints normalize transport
// failures and application-level envelope failures into *Error, so callers
// only branch on err != nil.
type Client struct {
	httpClient *http.Client

	authBase string
	apiBase  string
	webBase  string
	hubBase  string

	language string

	// now is swapped out in tests to pin signature timestamps.
	now func() time.Time
}

// NewClient creates an API client with the given http.Client. If httpClient
// is nil, a client with a 30s timeout is used.
func NewClient(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}

	return &Client{
		httpClient: httpClient,
		authBase:   authBaseURL,
		apiBase:    apiBaseURL,
		webBase:    webBaseURL,
		hubBase:    hubBaseURL,
		language:   "en",
		now:        time.Now,
	}
}

// SetLanguage overrides the sk-language header value. Empty input keeps
// the current value.
func (c *Client) SetLanguage(lang string) {
	if lang != "" {
		c.language = lang
	}
}

// request describes one outbound API call. The do method centralizes URL
// construction, identity headers and signature attachment so endpoint
// functions stay declarative.
type request struct {
	method string
	base   string
	path   string
	query  url.Values

	// body is marshalled to JSON when non-nil.
	body any

	// session attaches cred and sign headers when set.
	session *Session

	// signBody is the body string the signature covers. Some GET endpoints
	// sign "{}" while sending no body at all; it is independent of body.
	signBody string

	// role attaches the sk-game-role header when set.
	role *GameRole

	// dataPath selects the subtree of the envelope to decode into the
	// result. Defaults to "data".
	dataPath string
}

// do performs req and decodes the selected envelope subtree into result.
// The returned error is always *Error (or nil).
func (c *Client) do(ctx context.Context, req request, result any) error {
	body, _, err := c.doRaw(ctx, req)
	if err != nil {
		return err
	}

	dataPath := req.dataPath
	if dataPath == "" {
		dataPath = "data"
	}

	if result == nil {
		return nil
	}

	sub := gjson.GetBytes(body, dataPath)
	if !sub.Exists() {
		return apiErr(KindApplication, fmt.Sprintf("response from %s missing %s", req.path, dataPath), nil)
	}

	if err := json.Unmarshal([]byte(sub.Raw), result); err != nil {
		return apiErr(KindApplication, fmt.Sprintf("decoding response from %s: %v", req.path, err), err)
	}

	return nil
}

// doRaw performs req, normalizes transport and envelope failures, and
// returns the raw response body for callers that need more than the data
// subtree (e.g. Set-Cookie extraction).
func (c *Client) doRaw(ctx context.Context, req request) ([]byte, *http.Response, error) {
	var payload []byte

	if req.body != nil {
		var err error

		payload, err = json.Marshal(req.body)
		if err != nil {
			return nil, nil, apiErr(KindTransport, fmt.Sprintf("marshalling request body: %v", err), err)
		}
	}

	u := req.base + req.path
	if len(req.query) > 0 {
		u += "?" + req.query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, u, bytes.NewReader(payload))
	if err != nil {
		return nil, nil, apiErr(KindTransport, fmt.Sprintf("creating request: %v", err), err)
	}

	ts := c.now().Unix()

	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("User-Agent", userAgent)
	httpReq.Header.Set("Origin", gameOrigin)
	httpReq.Header.Set("Referer", gameOrigin+"/")
	httpReq.Header.Set("platform", platformWeb)
	httpReq.Header.Set("sk-language", c.language)
	httpReq.Header.Set("vName", clientVersion)
	httpReq.Header.Set("timestamp", strconv.FormatInt(ts, 10))

	if req.session != nil {
		sign, err := ComputeSign(req.session.signToken, req.path, req.signBody, ts)
		if err != nil {
			return nil, nil, apiErr(KindTransport, err.Error(), err)
		}

		httpReq.Header.Set("cred", req.session.Cred)
		httpReq.Header.Set("sign", sign)
	}

	if req.role != nil {
		httpReq.Header.Set("sk-game-role", fmt.Sprintf("%s_%s_%s", platformWeb, req.role.RoleID, req.role.ServerID))
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, nil, apiErr(KindTransport, fmt.Sprintf("sending request to %s: %v", req.path, err), err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, apiErr(KindTransport, fmt.Sprintf("reading response from %s: %v", req.path, err), err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := envelopeMsg(respBody)
		if msg == "" {
			msg = fmt.Sprintf("%s returned status %d", req.path, resp.StatusCode)
		}

		return nil, nil, apiErr(KindTransport, msg, nil)
	}

	// Envelope variation: older endpoints report "status", newer ones
	// "code"; error text lives in "msg" or "message". Zero means success
	// in every variant.
	if code, ok := envelopeCode(respBody); ok && code != 0 {
		msg := envelopeMsg(respBody)
		if msg == "" {
			msg = fmt.Sprintf("%s returned code %d", req.path, code)
		}

		return nil, nil, apiErr(KindApplication, msg, nil)
	}

	return respBody, resp, nil
}

// envelopeCode extracts the status/code field from an envelope body.
func envelopeCode(body []byte) (int64, bool) {
	if v := gjson.GetBytes(body, "code"); v.Exists() {
		return v.Int(), true
	}

	if v := gjson.GetBytes(body, "status"); v.Exists() {
		return v.Int(), true
	}

	return 0, false
}

// envelopeMsg extracts the human-readable message from an envelope body.
func envelopeMsg(body []byte) string {
	if v := gjson.GetBytes(body, "msg"); v.Exists() && v.Str != "" {
		return v.Str
	}

	if v := gjson.GetBytes(body, "message"); v.Exists() && v.Str != "" {
		return v.Str
	}

	return ""
}

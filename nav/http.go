package nav

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/sri-akshat/wealth-manager"
	"go.uber.org/zap"
)

// DefaultPath selects the NAV in responses shaped like {"data": [{"nav": "..."}]}.
const DefaultPath = "$.data[0].nav"

var _ Provider = (*HTTP)(nil)

// HTTP fetches NAVs from a JSON API.
type HTTP struct {
	// URLTemplate is the address to GET, with {scheme_code} replaced by the
	// fund scheme code.
	URLTemplate string
	// Path is the JSONPath expression selecting the NAV, DefaultPath when empty.
	Path   string
	Client *http.Client
}

// NewHTTP returns a provider querying urlTemplate through a daily disk cache in dir.
func NewHTTP(urlTemplate, dir string, logger *zap.Logger) *HTTP {
	return &HTTP{URLTemplate: urlTemplate, Client: Daily(dir, logger)}
}

func (p *HTTP) Latest(ctx context.Context, inv wealth.Investment) (wealth.Quantity, error) {
	if inv.Fund == nil {
		return wealth.Quantity{}, fmt.Errorf("investment %d: fund not loaded", inv.ID)
	}
	code := inv.Fund.SchemeCode
	addr := strings.ReplaceAll(p.URLTemplate, "{scheme_code}", url.PathEscape(code))

	var jobj any
	if err := p.get(ctx, addr, &jobj); err != nil {
		return wealth.Quantity{}, fmt.Errorf("cannot fetch nav of %s: %w", code, err)
	}
	path := p.Path
	if path == "" {
		path = DefaultPath
	}
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return wealth.Quantity{}, fmt.Errorf("cannot read nav of %s at %q: %w", code, path, err)
	}
	// filters return a list, keep the first match.
	if jlist, ok := jval.([]any); ok && len(jlist) > 0 {
		jval = jlist[0]
	}
	nav, err := quantity(jval)
	if err != nil {
		return wealth.Quantity{}, fmt.Errorf("cannot read nav of %s at %q: %w", code, path, err)
	}
	if !nav.IsPositive() {
		return wealth.Quantity{}, fmt.Errorf("nav of %s is %s: %w", code, nav, wealth.ErrInvalidAmount)
	}
	return nav, nil
}

// quantity reads a JSON number, or a numeric string as some APIs send.
func quantity(jval any) (wealth.Quantity, error) {
	switch v := jval.(type) {
	case json.Number:
		return wealth.ParseQuantity(v.String())
	case float64:
		return wealth.Q(v), nil
	case string:
		return wealth.ParseQuantity(strings.ReplaceAll(strings.TrimSpace(v), ",", ""))
	}
	return wealth.Quantity{}, fmt.Errorf("not a number: %v", jval)
}

func (p *HTTP) get(ctx context.Context, addr string, data any) error {
	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %v%v: %v", resp.Request.URL.Host, resp.Request.URL.Path, resp.Status)
	}
	dec := json.NewDecoder(io.LimitReader(resp.Body, 1<<20))
	dec.UseNumber()
	if err := dec.Decode(data); err != nil {
		return errors.Join(errors.New("invalid JSON response"), err)
	}
	return nil
}

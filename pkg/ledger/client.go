package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/eatglobe/globe-middleware/internal/metrics"
)

const (
	defaultPageSize = 100
	maxBodySize     = 1 << 20 // record bodies are small JSON documents
)

// recordsQuery is the tag-filtered index query. Results are sorted by block
// height descending, so the newest records come first.
const recordsQuery = `query($tags: [TagFilter!], $first: Int!, $after: String) {
  transactions(tags: $tags, first: $first, after: $after, sort: HEIGHT_DESC) {
    pageInfo { hasNextPage }
    edges {
      cursor
      node {
        id
        block { height timestamp }
        tags { name value }
      }
    }
  }
}`

// TagFilter selects records whose tag with the given name has one of the
// given values.
type TagFilter struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

// Client reads records from the ledger's GraphQL index and fetches record
// bodies from the gateway. It owns no state beyond its endpoints.
type Client struct {
	graphqlURL string
	gatewayURL string
	pageSize   int
	httpClient *http.Client
	logger     *zap.Logger
}

// ClientOption configures the read client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// WithPageSize sets the GraphQL page size.
func WithPageSize(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// NewClient creates a read client for the given GraphQL index endpoint and
// gateway base URL (record bodies are fetched as GET {gatewayURL}/{id}).
func NewClient(graphqlURL, gatewayURL string, logger *zap.Logger, opts ...ClientOption) *Client {
	c := &Client{
		graphqlURL: graphqlURL,
		gatewayURL: gatewayURL,
		pageSize:   defaultPageSize,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphqlResponse struct {
	Data struct {
		Transactions struct {
			PageInfo struct {
				HasNextPage bool `json:"hasNextPage"`
			} `json:"pageInfo"`
			Edges []struct {
				Cursor string `json:"cursor"`
				Node   struct {
					ID    string `json:"id"`
					Block *struct {
						Height    int64 `json:"height"`
						Timestamp int64 `json:"timestamp"`
					} `json:"block"`
					Tags []Tag `json:"tags"`
				} `json:"node"`
			} `json:"edges"`
		} `json:"transactions"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// QueryRecords returns all records matching the tag filters, paginated
// through the index, in height-descending order.
func (c *Client) QueryRecords(ctx context.Context, filters []TagFilter) ([]Record, error) {
	var (
		records []Record
		cursor  string
	)

	for {
		page, nextCursor, hasNext, err := c.queryPage(ctx, filters, cursor)
		if err != nil {
			metrics.LedgerQueriesTotal.WithLabelValues("error").Inc()
			return nil, err
		}
		records = append(records, page...)
		if !hasNext || nextCursor == "" {
			break
		}
		cursor = nextCursor
	}

	metrics.LedgerQueriesTotal.WithLabelValues("ok").Inc()
	return records, nil
}

func (c *Client) queryPage(ctx context.Context, filters []TagFilter, cursor string) ([]Record, string, bool, error) {
	vars := map[string]any{
		"tags":  filters,
		"first": c.pageSize,
	}
	if cursor != "" {
		vars["after"] = cursor
	}

	body, err := json.Marshal(graphqlRequest{Query: recordsQuery, Variables: vars})
	if err != nil {
		return nil, "", false, fmt.Errorf("failed to encode query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.graphqlURL, bytes.NewReader(body))
	if err != nil {
		return nil, "", false, fmt.Errorf("failed to create query request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", false, fmt.Errorf("ledger query failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", false, fmt.Errorf("ledger index returned status %d", resp.StatusCode)
	}

	var decoded graphqlResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, "", false, fmt.Errorf("failed to decode query response: %w", err)
	}
	if len(decoded.Errors) > 0 {
		return nil, "", false, fmt.Errorf("ledger index error: %s", decoded.Errors[0].Message)
	}

	txs := decoded.Data.Transactions
	records := make([]Record, 0, len(txs.Edges))
	var lastCursor string
	for _, edge := range txs.Edges {
		rec := Record{
			ID:   edge.Node.ID,
			Tags: edge.Node.Tags,
		}
		if edge.Node.Block != nil {
			rec.Height = edge.Node.Block.Height
			rec.Timestamp = edge.Node.Block.Timestamp
		}
		records = append(records, rec)
		lastCursor = edge.Cursor
	}

	return records, lastCursor, txs.PageInfo.HasNextPage, nil
}

// FetchBody fetches a record's JSON body from the gateway and decodes it
// into out. Callers on the read path treat a failure here as skippable:
// the record is logged and dropped rather than aborting the whole read.
func (c *Client) FetchBody(ctx context.Context, id string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.gatewayURL+"/"+id, nil)
	if err != nil {
		return fmt.Errorf("failed to create body request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch record %s: %w", id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("gateway returned status %d for record %s", resp.StatusCode, id)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("failed to read record %s: %w", id, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode record %s: %w", id, err)
	}
	return nil
}

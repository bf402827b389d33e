// Package splitwise implements the expense-source collaborator: a thin HTTP
// client for a Splitwise-style API that supplies expenses with settled
// per-participant net balances.
package splitwise

import (
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

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitsettle/internal/models"
)

const defaultBaseURL = "https://secure.splitwise.com/api/v3.0"

// Client is an HTTP client for the expense source API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithBaseURL overrides the API base URL.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// NewClient creates an expense source client authenticated with apiKey.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("splitwise api key is empty")
	}

	client := &Client{
		baseURL: defaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

type currentUserResponse struct {
	User struct {
		ID int64 `json:"id"`
	} `json:"user"`
}

// CurrentUser returns the authenticated participant's ID.
func (c *Client) CurrentUser(ctx context.Context) (int64, error) {
	var resp currentUserResponse
	if err := c.get(ctx, "/get_current_user", nil, &resp); err != nil {
		return 0, err
	}
	return resp.User.ID, nil
}

// Wire types. Splitwise reports money as decimal strings; they are parsed
// into decimal.Decimal without ever passing through a float.
type expensesResponse struct {
	Expenses []expenseDTO `json:"expenses"`
}

type expenseDTO struct {
	ID           int64      `json:"id"`
	GroupID      int64      `json:"group_id"`
	Description  string     `json:"description"`
	Details      string     `json:"details"`
	Date         time.Time  `json:"date"`
	Cost         string     `json:"cost"`
	CurrencyCode string     `json:"currency_code"`
	Payment      bool       `json:"payment"`
	DeletedAt    *time.Time `json:"deleted_at"`
	Users        []shareDTO `json:"users"`
}

type shareDTO struct {
	UserID     int64  `json:"user_id"`
	PaidShare  string `json:"paid_share"`
	OwedShare  string `json:"owed_share"`
	NetBalance string `json:"net_balance"`
}

// Expenses fetches expenses for a group, skipping deleted records.
// A zero datedAfter fetches without a lower bound.
func (c *Client) Expenses(ctx context.Context, groupID int64, datedAfter time.Time, limit int) ([]models.Expense, error) {
	params := url.Values{}
	params.Set("group_id", strconv.FormatInt(groupID, 10))
	params.Set("limit", strconv.Itoa(limit))
	if !datedAfter.IsZero() {
		params.Set("dated_after", datedAfter.Format(time.RFC3339))
	}

	var resp expensesResponse
	if err := c.get(ctx, "/get_expenses", params, &resp); err != nil {
		return nil, err
	}

	expenses := make([]models.Expense, 0, len(resp.Expenses))
	for _, dto := range resp.Expenses {
		if dto.DeletedAt != nil {
			continue
		}
		expense, err := dto.toModel()
		if err != nil {
			return nil, fmt.Errorf("expense %d: %w", dto.ID, err)
		}
		expenses = append(expenses, expense)
	}
	return expenses, nil
}

func (d *expenseDTO) toModel() (models.Expense, error) {
	cost, err := decimal.NewFromString(d.Cost)
	if err != nil {
		return models.Expense{}, fmt.Errorf("invalid cost %q: %w", d.Cost, err)
	}

	shares := make([]models.Share, 0, len(d.Users))
	for _, u := range d.Users {
		paid, err := decimal.NewFromString(u.PaidShare)
		if err != nil {
			return models.Expense{}, fmt.Errorf("invalid paid share %q: %w", u.PaidShare, err)
		}
		owed, err := decimal.NewFromString(u.OwedShare)
		if err != nil {
			return models.Expense{}, fmt.Errorf("invalid owed share %q: %w", u.OwedShare, err)
		}
		net, err := decimal.NewFromString(u.NetBalance)
		if err != nil {
			return models.Expense{}, fmt.Errorf("invalid net balance %q: %w", u.NetBalance, err)
		}
		shares = append(shares, models.Share{UserID: u.UserID, Paid: paid, Owed: owed, Net: net})
	}

	return models.Expense{
		ID:           d.ID,
		GroupID:      d.GroupID,
		Description:  d.Description,
		Details:      d.Details,
		Date:         d.Date,
		Cost:         cost,
		CurrencyCode: d.CurrencyCode,
		Payment:      d.Payment,
		Shares:       shares,
	}, nil
}

// SettlementHistory returns the count most recent settle-up payments in the
// group, sorted newest first.
func (c *Client) SettlementHistory(ctx context.Context, groupID int64, count int) ([]models.Expense, error) {
	expenses, err := c.Expenses(ctx, groupID, time.Time{}, 1000)
	if err != nil {
		return nil, err
	}

	var settlements []models.Expense
	for _, exp := range expenses {
		if exp.Payment {
			settlements = append(settlements, exp)
		}
	}
	sort.Slice(settlements, func(i, j int) bool {
		return settlements[i].Date.After(settlements[j].Date)
	})

	if len(settlements) > count {
		settlements = settlements[:count]
	}
	return settlements, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create splitwise request failed: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request splitwise api failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read splitwise response failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("splitwise api returned status %d for %s", resp.StatusCode, path)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode splitwise response failed: %w", err)
	}
	return nil
}

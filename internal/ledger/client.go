// Package ledger implements the ledger collaborator: a thin HTTP client that
// applies clearing transaction drafts to a YNAB-style ledger API and reads
// back its categories and accounts.
package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mmynk/splitsettle/internal/models"
)

const defaultBaseURL = "https://api.ynab.com/v1"

// ErrDuplicate is returned when the ledger reports that an equivalent
// transaction already exists. Callers distinguish it from real failures.
var ErrDuplicate = errors.New("ledger transaction already exists")

// Client is an HTTP client for the ledger API.
type Client struct {
	baseURL     string
	accessToken string
	httpClient  *http.Client
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

// NewClient creates a ledger client authenticated with accessToken.
func NewClient(accessToken string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(accessToken) == "" {
		return nil, fmt.Errorf("ledger access token is empty")
	}

	client := &Client{
		baseURL:     defaultBaseURL,
		accessToken: accessToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

type categoriesResponse struct {
	Data struct {
		CategoryGroups []struct {
			Name       string `json:"name"`
			Categories []struct {
				ID              string  `json:"id"`
				Name            string  `json:"name"`
				CategoryGroupID *string `json:"category_group_id"`
				Hidden          bool    `json:"hidden"`
				Deleted         bool    `json:"deleted"`
			} `json:"categories"`
		} `json:"category_groups"`
	} `json:"data"`
}

// Categories returns the budget's categories, flattening category groups.
// Internal categories (no group id) are always skipped; with activeOnly,
// hidden and deleted categories are skipped too.
func (c *Client) Categories(ctx context.Context, budgetID string, activeOnly bool) ([]models.Category, error) {
	var resp categoriesResponse
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/budgets/%s/categories", budgetID), nil, &resp); err != nil {
		return nil, err
	}

	var categories []models.Category
	for _, group := range resp.Data.CategoryGroups {
		for _, cat := range group.Categories {
			if cat.CategoryGroupID == nil {
				continue
			}
			if activeOnly && (cat.Hidden || cat.Deleted) {
				continue
			}
			categories = append(categories, models.Category{
				ID:        cat.ID,
				Name:      cat.Name,
				GroupName: group.Name,
				Hidden:    cat.Hidden,
				Deleted:   cat.Deleted,
			})
		}
	}
	return categories, nil
}

type accountsResponse struct {
	Data struct {
		Accounts []struct {
			ID       string `json:"id"`
			Name     string `json:"name"`
			Type     string `json:"type"`
			OnBudget bool   `json:"on_budget"`
			Closed   bool   `json:"closed"`
			Balance  int64  `json:"balance"`
		} `json:"accounts"`
	} `json:"data"`
}

// Accounts returns the budget's accounts.
func (c *Client) Accounts(ctx context.Context, budgetID string) ([]models.Account, error) {
	var resp accountsResponse
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/budgets/%s/accounts", budgetID), nil, &resp); err != nil {
		return nil, err
	}

	accounts := make([]models.Account, 0, len(resp.Data.Accounts))
	for _, acc := range resp.Data.Accounts {
		accounts = append(accounts, models.Account{
			ID:       acc.ID,
			Name:     acc.Name,
			Type:     acc.Type,
			OnBudget: acc.OnBudget,
			Closed:   acc.Closed,
			Balance:  acc.Balance,
		})
	}
	return accounts, nil
}

type subtransactionDTO struct {
	Amount     int64  `json:"amount"`
	CategoryID string `json:"category_id,omitempty"`
	Memo       string `json:"memo"`
}

type transactionDTO struct {
	AccountID       string              `json:"account_id"`
	Date            string              `json:"date"`
	Amount          int64               `json:"amount"`
	PayeeName       string              `json:"payee_name"`
	Memo            string              `json:"memo"`
	Cleared         string              `json:"cleared"`
	Approved        bool                `json:"approved"`
	Subtransactions []subtransactionDTO `json:"subtransactions"`
}

type createTransactionRequest struct {
	Transaction transactionDTO `json:"transaction"`
}

type createTransactionResponse struct {
	Data struct {
		Transaction struct {
			ID string `json:"id"`
		} `json:"transaction"`
	} `json:"data"`
}

// CreateTransaction applies a draft as a split transaction and returns the
// ledger's transaction ID. No import/dedup marker is set; the ledger is free
// to auto-match the transaction against bank imports, and duplicate detection
// stays with the local processed-settlement store.
func (c *Client) CreateTransaction(ctx context.Context, budgetID string, draft *models.Draft) (string, error) {
	subtransactions := make([]subtransactionDTO, 0, len(draft.Lines))
	for i := range draft.Lines {
		subtransactions = append(subtransactions, subtransactionDTO{
			Amount:     draft.Lines[i].Amount,
			CategoryID: draft.Lines[i].CategoryID,
			Memo:       draft.Lines[i].Memo,
		})
	}

	reqBody := createTransactionRequest{
		Transaction: transactionDTO{
			AccountID:       draft.AccountID,
			Date:            draft.SettlementDate.Format("2006-01-02"),
			Amount:          draft.TotalAmount,
			PayeeName:       draft.PayeeName,
			Memo:            fmt.Sprintf("Splitwise settlement (draft: %s)", draft.DraftID),
			Cleared:         "cleared",
			Approved:        true,
			Subtransactions: subtransactions,
		},
	}

	var resp createTransactionResponse
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/budgets/%s/transactions", budgetID), reqBody, &resp); err != nil {
		return "", err
	}
	return resp.Data.Transaction.ID, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal ledger request failed: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create ledger request failed: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request ledger api failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read ledger response failed: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusConflict:
		return ErrDuplicate
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return fmt.Errorf("ledger api returned status %d for %s", resp.StatusCode, path)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode ledger response failed: %w", err)
	}
	return nil
}

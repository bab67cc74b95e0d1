// Package roblox implements cloud.Remote over the Roblox Open Cloud and
// legacy endpoints: game-passes v1, developer-products v2, legacy-badges
// v1, assets v1, universes v2 and place version publishing.
package roblox

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/rbxsync/rbxsync/internal/transport"
	"github.com/rbxsync/rbxsync/pkg/cloud"
	"github.com/rbxsync/rbxsync/pkg/errors"
	"github.com/rbxsync/rbxsync/pkg/logging"
)

// Default endpoint roots. Badge listing still lives on the legacy web API.
const (
	DefaultBaseURL      = "https://apis.roblox.com"
	DefaultBadgeListURL = "https://badges.roblox.com"
)

const listPageSize = 100

// Creator identifies the account or group that owns uploaded assets.
type Creator struct {
	Type string // "user" or "group"
	ID   string
}

// Config wires a Client.
type Config struct {
	APIKey  string
	Creator Creator

	// BaseURL and BadgeListURL override the endpoint roots, primarily for
	// tests against httptest servers.
	BaseURL      string
	BadgeListURL string
}

// Client is the concrete cloud.Remote over HTTP.
type Client struct {
	transport    *transport.Client
	creator      Creator
	baseURL      string
	badgeListURL string
}

// Compile-time interface check.
var _ cloud.Remote = (*Client)(nil)

// New creates an Open Cloud client.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.BadgeListURL == "" {
		cfg.BadgeListURL = DefaultBadgeListURL
	}
	return &Client{
		transport:    transport.New(cfg.APIKey),
		creator:      cfg.Creator,
		baseURL:      cfg.BaseURL,
		badgeListURL: cfg.BadgeListURL,
	}
}

// listURL builds the category's listing URL with pagination parameters.
// The endpoints disagree on cursor parameter names.
func (c *Client) listURL(category cloud.Category, universeID int64, cursor string) string {
	query := url.Values{}
	var endpoint string

	switch category {
	case cloud.CategoryGamePass:
		endpoint = fmt.Sprintf("%s/game-passes/v1/universes/%d/game-passes", c.baseURL, universeID)
		query.Set("limit", fmt.Sprint(listPageSize))
		if cursor != "" {
			query.Set("cursor", cursor)
		}
	case cloud.CategoryDeveloperProduct:
		endpoint = fmt.Sprintf("%s/developer-products/v2/universes/%d/developer-products/creator", c.baseURL, universeID)
		query.Set("pageSize", fmt.Sprint(listPageSize))
		if cursor != "" {
			query.Set("pageToken", cursor)
		}
	case cloud.CategoryBadge:
		endpoint = fmt.Sprintf("%s/v1/universes/%d/badges", c.badgeListURL, universeID)
		query.Set("limit", fmt.Sprint(listPageSize))
		if cursor != "" {
			query.Set("cursor", cursor)
		}
	}
	return endpoint + "?" + query.Encode()
}

// createURL builds the category's creation endpoint.
func (c *Client) createURL(category cloud.Category, universeID int64) string {
	switch category {
	case cloud.CategoryGamePass:
		return fmt.Sprintf("%s/game-passes/v1/universes/%d/game-passes", c.baseURL, universeID)
	case cloud.CategoryDeveloperProduct:
		return fmt.Sprintf("%s/developer-products/v2/universes/%d/developer-products", c.baseURL, universeID)
	case cloud.CategoryBadge:
		return fmt.Sprintf("%s/legacy-badges/v1/universes/%d/badges", c.baseURL, universeID)
	}
	return ""
}

// updateURL builds the category's update endpoint. Badges are addressed
// without the universe.
func (c *Client) updateURL(category cloud.Category, universeID, id int64) string {
	switch category {
	case cloud.CategoryGamePass:
		return fmt.Sprintf("%s/game-passes/v1/universes/%d/game-passes/%d", c.baseURL, universeID, id)
	case cloud.CategoryDeveloperProduct:
		return fmt.Sprintf("%s/developer-products/v2/universes/%d/developer-products/%d", c.baseURL, universeID, id)
	case cloud.CategoryBadge:
		return fmt.Sprintf("%s/legacy-badges/v1/badges/%d", c.baseURL, id)
	}
	return ""
}

// List implements cloud.Remote.
func (c *Client) List(ctx context.Context, category cloud.Category, universeID int64, cursor string) (*cloud.Page, error) {
	endpoint := c.listURL(category, universeID, cursor)
	logging.Debug().Str("url", endpoint).Msg("Listing resources")

	resp, err := c.transport.Get(ctx, endpoint)
	if err != nil {
		return nil, &errors.APIError{Endpoint: endpoint, Message: "request failed", Err: err}
	}

	var envelope listEnvelope
	if err := transport.DecodeResponse(resp, &envelope); err != nil {
		return nil, err
	}

	page := &cloud.Page{NextCursor: envelope.cursor()}
	for _, w := range envelope.items() {
		item, err := w.toItem(endpoint)
		if err != nil {
			return nil, err
		}
		page.Items = append(page.Items, item)
	}
	return page, nil
}

// Create implements cloud.Remote.
func (c *Client) Create(ctx context.Context, category cloud.Category, universeID int64, fields cloud.Fields) (int64, error) {
	endpoint := c.createURL(category, universeID)
	logging.Debug().Str("url", endpoint).Str("name", fields.Name).Msg("Creating resource")

	var created wireItem
	if err := c.postJSON(ctx, http.MethodPost, endpoint, encodeFields(category, fields), &created); err != nil {
		return 0, err
	}
	if created.ID == 0 {
		return 0, errors.NewParseError("json", endpoint, "created resource has no identifier", nil)
	}
	return int64(created.ID), nil
}

// Update implements cloud.Remote. Some endpoints return no body on success.
func (c *Client) Update(ctx context.Context, category cloud.Category, universeID, id int64, fields cloud.Fields) error {
	endpoint := c.updateURL(category, universeID, id)
	logging.Debug().Str("url", endpoint).Str("name", fields.Name).Msg("Updating resource")

	return c.postJSON(ctx, http.MethodPatch, endpoint, encodeFields(category, fields), nil)
}

// UpdateUniverseSettings implements cloud.Remote.
func (c *Client) UpdateUniverseSettings(ctx context.Context, universeID int64, settings cloud.UniverseSettings) error {
	endpoint := fmt.Sprintf("%s/cloud/v2/universes/%d", c.baseURL, universeID)

	body := map[string]any{}
	if settings.Name != nil {
		body["displayName"] = *settings.Name
	}
	if settings.Description != nil {
		body["description"] = *settings.Description
	}
	if settings.Genre != nil {
		body["genre"] = *settings.Genre
	}
	if len(settings.PlayableDevices) > 0 {
		body["playableDevices"] = settings.PlayableDevices
	}

	logging.Debug().Str("url", endpoint).Msg("Updating universe settings")
	return c.postJSON(ctx, http.MethodPatch, endpoint, body, nil)
}

// postJSON sends a JSON body and decodes the response into target (which
// may be nil for empty-body endpoints).
func (c *Client) postJSON(ctx context.Context, method, endpoint string, body map[string]any, target any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return errors.WrapParse("json", endpoint, err)
	}

	req, err := c.transport.NewRequest(ctx, method, endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}

	resp, err := c.transport.Do(req)
	if err != nil {
		return &errors.APIError{Endpoint: endpoint, Message: "request failed", Err: err}
	}
	return transport.DecodeResponse(resp, target)
}

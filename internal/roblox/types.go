package roblox

import (
	"strconv"
	"strings"

	"github.com/rbxsync/rbxsync/pkg/cloud"
	"github.com/rbxsync/rbxsync/pkg/errors"
)

// flexID decodes an identifier that the platform encodes inconsistently as
// either a JSON number or a quoted string, normalizing to int64 at the
// boundary.
type flexID int64

// UnmarshalJSON implements json.Unmarshaler.
func (f *flexID) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return err
	}
	*f = flexID(v)
	return nil
}

// wireItem is one resource entry as the listing and create endpoints
// report it. The icon field name differs between passes/products and
// badges.
type wireItem struct {
	ID          flexID `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       *int64 `json:"price"`
	IconAssetID flexID `json:"iconAssetId"`
	IconImageID flexID `json:"iconImageId"`
	IsForSale   *bool  `json:"isForSale"`
	Enabled     *bool  `json:"enabled"`
}

// toItem validates a wire entry into a typed directory item. A missing
// identifier or name is a parse error: the reconciler cannot safely guess.
func (w wireItem) toItem(endpoint string) (cloud.Item, error) {
	if w.ID == 0 {
		return cloud.Item{}, errors.NewParseError("json", endpoint, "listing item missing identifier", nil)
	}
	if w.Name == "" {
		return cloud.Item{}, errors.NewParseError("json", endpoint, "listing item missing name", nil)
	}

	item := cloud.Item{
		ID:          int64(w.ID),
		Name:        w.Name,
		Description: w.Description,
		Price:       w.Price,
	}
	if w.IconAssetID != 0 {
		item.IconAssetID = int64(w.IconAssetID)
	} else if w.IconImageID != 0 {
		item.IconAssetID = int64(w.IconImageID)
	}
	if w.IsForSale != nil {
		item.Active = w.IsForSale
	} else if w.Enabled != nil {
		item.Active = w.Enabled
	}
	return item, nil
}

// listEnvelope covers the three listing response shapes: the category
// endpoints disagree on both the array key and the cursor key.
type listEnvelope struct {
	Data              []wireItem `json:"data"`
	GamePasses        []wireItem `json:"gamePasses"`
	DeveloperProducts []wireItem `json:"developerProducts"`
	NextPageCursor    string     `json:"nextPageCursor"`
	NextPageToken     string     `json:"nextPageToken"`
}

func (e *listEnvelope) items() []wireItem {
	switch {
	case e.Data != nil:
		return e.Data
	case e.GamePasses != nil:
		return e.GamePasses
	default:
		return e.DeveloperProducts
	}
}

func (e *listEnvelope) cursor() string {
	if e.NextPageCursor != "" {
		return e.NextPageCursor
	}
	return e.NextPageToken
}

// operationEnvelope is the asset upload / poll response shape.
type operationEnvelope struct {
	Path     string `json:"path"`
	Done     bool   `json:"done"`
	Response *struct {
		AssetID flexID `json:"assetId"`
	} `json:"response"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// toOperation maps the wire shape onto the tagged operation state.
func (e *operationEnvelope) toOperation() *cloud.Operation {
	if e.Error != nil {
		msg := e.Error.Message
		if msg == "" {
			msg = "unknown error"
		}
		return &cloud.Operation{Status: cloud.OperationFailed, Message: msg}
	}
	if e.Done {
		op := &cloud.Operation{Status: cloud.OperationCompleted}
		if e.Response != nil {
			op.AssetID = int64(e.Response.AssetID)
		}
		return op
	}
	return &cloud.Operation{Status: cloud.OperationPending, Path: e.Path}
}

// uploadRequest is the JSON metadata part of the multipart asset upload.
type uploadRequest struct {
	AssetType       string          `json:"assetType"`
	DisplayName     string          `json:"displayName"`
	Description     string          `json:"description"`
	CreationContext creationContext `json:"creationContext"`
}

type creationContext struct {
	Creator assetCreator `json:"creator"`
}

// assetCreator carries either a user or a group identifier.
type assetCreator struct {
	UserID  string `json:"userId,omitempty"`
	GroupID string `json:"groupId,omitempty"`
}

// encodeFields maps the declared field set onto the category's wire keys.
// Badges name their icon field differently and have no price.
func encodeFields(category cloud.Category, fields cloud.Fields) map[string]any {
	body := map[string]any{"name": fields.Name}
	if fields.Description != nil {
		body["description"] = *fields.Description
	}

	switch category {
	case cloud.CategoryBadge:
		if fields.Active != nil {
			body["enabled"] = *fields.Active
		}
		if fields.IconAssetID != nil {
			body["iconImageId"] = *fields.IconAssetID
		}
	default:
		if fields.Price != nil {
			body["price"] = *fields.Price
		}
		if fields.Active != nil {
			body["isForSale"] = *fields.Active
		}
		if fields.IconAssetID != nil {
			body["iconAssetId"] = *fields.IconAssetID
		}
	}
	return body
}

package roblox

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"

	"github.com/rbxsync/rbxsync/internal/transport"
	"github.com/rbxsync/rbxsync/pkg/cloud"
	"github.com/rbxsync/rbxsync/pkg/errors"
	"github.com/rbxsync/rbxsync/pkg/logging"
)

// contentType maps an icon file extension to its MIME type.
func contentType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".bmp":
		return "image/bmp"
	case ".tga":
		return "image/tga"
	default:
		return "image/png"
	}
}

// UploadAsset implements cloud.Remote. It submits the file as a multipart
// request to the assets endpoint. The platform either embeds a terminal
// result immediately (small assets) or returns an operation to poll.
func (c *Client) UploadAsset(ctx context.Context, path, displayName string) (*cloud.Operation, error) {
	endpoint := c.baseURL + "/assets/v1/assets"

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}

	creator := assetCreator{}
	if c.creator.Type == "group" {
		creator.GroupID = c.creator.ID
	} else {
		creator.UserID = c.creator.ID
	}

	meta := uploadRequest{
		AssetType:   "Image",
		DisplayName: displayName,
		Description: fmt.Sprintf("Uploaded by rbxsync from %s", filepath.Base(path)),
		CreationContext: creationContext{
			Creator: creator,
		},
	}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return nil, errors.WrapParse("json", endpoint, err)
	}

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	if err := form.WriteField("request", string(metaJSON)); err != nil {
		return nil, errors.WrapIO("write", "multipart form", err)
	}

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="fileContent"; filename=%q`, filepath.Base(path)))
	header.Set("Content-Type", contentType(path))
	part, err := form.CreatePart(header)
	if err != nil {
		return nil, errors.WrapIO("write", "multipart form", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, errors.WrapIO("write", "multipart form", err)
	}
	if err := form.Close(); err != nil {
		return nil, errors.WrapIO("close", "multipart form", err)
	}

	req, err := c.transport.NewRequest(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	logging.Debug().Str("url", endpoint).Str("path", path).Msg("Submitting asset upload")
	resp, err := c.transport.Do(req)
	if err != nil {
		return nil, &errors.APIError{Endpoint: endpoint, Message: "request failed", Err: err}
	}

	var envelope operationEnvelope
	if err := transport.DecodeResponse(resp, &envelope); err != nil {
		return nil, err
	}

	op := envelope.toOperation()
	if op.Status == cloud.OperationPending && op.Path == "" {
		return nil, errors.NewParseError("json", endpoint, "operation response missing path", nil)
	}
	return op, nil
}

// PollOperation implements cloud.Remote.
func (c *Client) PollOperation(ctx context.Context, operationPath string) (*cloud.Operation, error) {
	endpoint := fmt.Sprintf("%s/assets/v1/%s", c.baseURL, strings.TrimPrefix(operationPath, "/"))

	resp, err := c.transport.Get(ctx, endpoint)
	if err != nil {
		return nil, &errors.APIError{Endpoint: endpoint, Message: "request failed", Err: err}
	}

	var envelope operationEnvelope
	if err := transport.DecodeResponse(resp, &envelope); err != nil {
		return nil, err
	}

	op := envelope.toOperation()
	if op.Status == cloud.OperationPending && op.Path == "" {
		// Keep polling the same handle when the response omits its path.
		op.Path = operationPath
	}
	return op, nil
}

// PublishPlace implements cloud.Remote. The place file is uploaded as a new
// published version; nothing about places is reconciled or recorded.
func (c *Client) PublishPlace(ctx context.Context, universeID, placeID int64, path string) error {
	endpoint := fmt.Sprintf("%s/universes/v1/%d/places/%d/versions?versionType=Published",
		c.baseURL, universeID, placeID)

	data, err := os.ReadFile(path)
	if err != nil {
		return errors.WrapIO("read", path, err)
	}

	req, err := c.transport.NewRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	logging.Debug().Str("url", endpoint).Str("path", path).Msg("Publishing place version")
	resp, err := c.transport.Do(req)
	if err != nil {
		return &errors.APIError{Endpoint: endpoint, Message: "request failed", Err: err}
	}
	return transport.DecodeResponse(resp, nil)
}

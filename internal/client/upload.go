package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"r2-dashboard/internal/interfaces/httpserver/responses"
	"r2-dashboard/internal/uploader"
	"r2-dashboard/internal/utils/platformerrors"
)

// Upload sends body as a multipart "file" part. The body is streamed through a
// pipe so large files never sit in memory.
func (c *Client) Upload(ctx context.Context, bucket, path, name string, body io.Reader) (*responses.UploadResponse, error) {
	pr, pw := io.Pipe()
	form := multipart.NewWriter(pw)

	go func() {
		err := writeForm(form, path, name, body)
		pw.CloseWithError(err)
	}()

	endpoint := c.baseURL + "/api/buckets/" + url.PathEscape(bucket) + "/objects"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, pr)
	if err != nil {
		pr.Close()
		return nil, err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("User-Agent", userAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	defer pr.Close()

	resp, err := c.streaming.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upload %s: %w", name, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, decodeError(resp.StatusCode, resp.Body)
	}
	var out responses.UploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode upload response: %w", err)
	}
	return &out, nil
}

func writeForm(form *multipart.Writer, path, name string, body io.Reader) error {
	if path != "" {
		if err := form.WriteField("path", path); err != nil {
			return err
		}
	}
	part, err := form.CreateFormFile("file", name)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, body); err != nil {
		return err
	}
	return form.Close()
}

func decodeError(status int, body io.Reader) error {
	apiErr := &APIError{StatusCode: status}
	var payload platformerrors.HTTPErrorResponse
	if err := json.NewDecoder(io.LimitReader(body, 1<<20)).Decode(&payload); err == nil && payload.Error != nil {
		apiErr.Type = payload.Error.Type
		apiErr.Message = payload.Error.Message
		apiErr.RequestID = payload.Error.RequestID
	}
	return apiErr
}

// BucketTransport uploads manager items into one bucket under a path prefix.
type BucketTransport struct {
	Client *Client
	Bucket string
	Path   string
}

var _ uploader.Transport = (*BucketTransport)(nil)

func (t *BucketTransport) Upload(ctx context.Context, name string, body io.Reader, _ int64) error {
	_, err := t.Client.Upload(ctx, t.Bucket, t.Path, name, body)
	return err
}

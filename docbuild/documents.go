package docbuild

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/jrsteele09/go-docbuild/transport"
)

// Document is a file stored by DocBuild.
type Document struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Extension string `json:"extension"`
	Status    int    `json:"status"`
}

func documentResource(id string) string {
	return "documents/" + url.PathEscape(id)
}

func requireID(id string) error {
	if err := validation.Validate(id, validation.Required); err != nil {
		return fmt.Errorf("%w: document id: %w", ErrInvalidArgument, err)
	}
	return nil
}

func (c *Client) GetDocuments(ctx context.Context) ([]Document, error) {
	var docs []Document
	if err := c.Get(ctx, "documents", nil, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func (c *Client) GetDocument(ctx context.Context, id string) (*Document, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	var doc Document
	if err := c.Get(ctx, documentResource(id), nil, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// DownloadDocument copies the document's contents into w and returns the
// number of bytes written. w is not closed.
func (c *Client) DownloadDocument(ctx context.Context, id string, w io.Writer) (int64, error) {
	if err := requireID(id); err != nil {
		return 0, err
	}
	if w == nil {
		return 0, fmt.Errorf("%w: nil writer", ErrInvalidArgument)
	}

	body, err := c.Do(ctx, Call{
		Method:     http.MethodGet,
		Resource:   documentResource(id) + "/payload",
		ReturnType: ReturnStream,
	})
	if err != nil {
		return 0, err
	}
	stream := body.Stream()
	defer stream.Close()

	n, err := io.Copy(w, stream)
	if err != nil {
		return n, fmt.Errorf("download document %s: %w", id, err)
	}
	return n, nil
}

// CreateDocument registers a new document. file is optional; when given it
// is uploaded as the document's contents.
func (c *Client) CreateDocument(ctx context.Context, name, extension string, file io.Reader) (*Document, error) {
	err := validation.Errors{
		"name":      validation.Validate(name, validation.Required),
		"extension": validation.Validate(extension, validation.Required),
	}.Filter()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	call := Call{
		Method:   http.MethodPost,
		Resource: "documents",
		Params: map[string]any{
			"document[name]":      name,
			"document[extension]": extension,
		},
		ReturnType: ReturnJSON,
	}
	if file != nil {
		if err := checkStream(file); err != nil {
			return nil, err
		}
		call.Files = map[string]transport.File{fileField: uploadFile(file)}
	}
	return c.doDocument(ctx, call)
}

// UploadDocument replaces the contents of an existing document.
func (c *Client) UploadDocument(ctx context.Context, id string, file io.Reader) (*Document, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	if err := checkStream(file); err != nil {
		return nil, err
	}
	return c.doDocument(ctx, Call{
		Method:     http.MethodPost,
		Resource:   documentResource(id) + "/payload",
		Files:      map[string]transport.File{fileField: uploadFile(file)},
		ReturnType: ReturnJSON,
	})
}

func (c *Client) doDocument(ctx context.Context, call Call) (*Document, error) {
	body, err := c.Do(ctx, call)
	if err != nil {
		return nil, err
	}
	var doc Document
	if err := body.Decode(&doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// CreateCallback asks DocBuild to POST to callbackURL once source is ready.
func (c *Client) CreateCallback(ctx context.Context, source, callbackURL string) (map[string]any, error) {
	return c.postJob(ctx, "callback", map[string]any{
		"source": source,
		"url":    callbackURL,
	})
}

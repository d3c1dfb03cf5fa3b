package docbuild

import (
	"context"
	"net/http"
)

// Get issues an authenticated GET and decodes the JSON response into out,
// which may be nil.
func (c *Client) Get(ctx context.Context, resource string, params map[string]any, out any) error {
	body, err := c.Do(ctx, Call{
		Method:     http.MethodGet,
		Resource:   resource,
		Params:     params,
		ReturnType: ReturnJSON,
	})
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return body.Decode(out)
}

// Post issues an authenticated POST with params as the JSON body and
// decodes the JSON response into out, which may be nil.
func (c *Client) Post(ctx context.Context, resource string, params map[string]any, out any) error {
	body, err := c.Do(ctx, Call{
		Method:     http.MethodPost,
		Resource:   resource,
		Params:     params,
		ReturnType: ReturnJSON,
	})
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return body.Decode(out)
}

// postJob posts a processing request and returns the job description.
func (c *Client) postJob(ctx context.Context, resource string, params map[string]any) (map[string]any, error) {
	var job map[string]any
	if err := c.Post(ctx, resource, params, &job); err != nil {
		return nil, err
	}
	return job, nil
}

// withCallback adds the callback URL to params unless it is empty.
func withCallback(params map[string]any, callback string) map[string]any {
	if callback != "" {
		params["callback"] = callback
	}
	return params
}

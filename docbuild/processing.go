package docbuild

import (
	"context"
	"fmt"
)

// CombineDocument merges sources into a single document called name.
func (c *Client) CombineDocument(ctx context.Context, name string, sources []string, callback string) (map[string]any, error) {
	if len(sources) == 0 {
		return nil, fmt.Errorf("%w: at least one source is required", ErrInvalidArgument)
	}
	return c.postJob(ctx, "combine", withCallback(map[string]any{
		"name":   name,
		"source": sources,
	}, callback))
}

func (c *Client) ConvertToPDF(ctx context.Context, source, callback string) (map[string]any, error) {
	return c.postJob(ctx, "pdf", withCallback(map[string]any{"source": source}, callback))
}

func (c *Client) ConvertToXLSX(ctx context.Context, source, callback string) (map[string]any, error) {
	return c.postJob(ctx, "xlsx", withCallback(map[string]any{"source": source}, callback))
}

// MailMergeDocument fills the merge fields of source.
func (c *Client) MailMergeDocument(ctx context.Context, source string, fields map[string]any, callback string) (map[string]any, error) {
	return c.postJob(ctx, "mailmerge", mergeParams(source, fields, callback))
}

// V2MailMergeDocument is MailMergeDocument against the v2 merge engine.
func (c *Client) V2MailMergeDocument(ctx context.Context, source string, fields map[string]any, callback string) (map[string]any, error) {
	return c.postJob(ctx, "v2/mailmerge", mergeParams(source, fields, callback))
}

func mergeParams(source string, fields map[string]any, callback string) map[string]any {
	if fields == nil {
		fields = map[string]any{}
	}
	return withCallback(map[string]any{
		"source": source,
		"fields": fields,
	}, callback)
}

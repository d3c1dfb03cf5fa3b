package docbuild

import (
	"context"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Recipient is a signer on a Signable envelope.
type Recipient struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	TemplateID string `json:"templateId"`
}

// Validate fails with ErrInvalidArgument on the first missing field.
func (r Recipient) Validate() error {
	rules := []struct {
		value   string
		message string
	}{
		{r.Name, "Recipient is missing a name."},
		{r.Email, "Recipient is missing an email."},
		{r.TemplateID, "Recipient is missing a templateId."},
	}
	for _, rule := range rules {
		if err := validation.Validate(rule.value, validation.Required.Error(rule.message)); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
		}
	}
	return nil
}

// SignableRequest sends source out for signature through Signable.
type SignableRequest struct {
	Source        string
	SignableKey   string
	EnvelopeTitle string
	DocumentTitle string
	Recipients    []Recipient
	Callback      string
}

// Validate checks every recipient, stopping at the first problem.
func (r SignableRequest) Validate() error {
	for i, recipient := range r.Recipients {
		if err := recipient.Validate(); err != nil {
			return fmt.Errorf("recipient %d: %w", i, err)
		}
	}
	return nil
}

func (c *Client) Signable(ctx context.Context, req SignableRequest) (map[string]any, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	recipients := req.Recipients
	if recipients == nil {
		recipients = []Recipient{}
	}
	return c.postJob(ctx, "signable", withCallback(map[string]any{
		"signableKey":   req.SignableKey,
		"recipients":    recipients,
		"envelopeTitle": req.EnvelopeTitle,
		"documentTitle": req.DocumentTitle,
		"source":        req.Source,
	}, req.Callback))
}

// SignableReminder re-sends the signing request for an open envelope.
func (c *Client) SignableReminder(ctx context.Context, source, signableKey string) (map[string]any, error) {
	return c.postJob(ctx, "signable/remind", map[string]any{
		"signableKey": signableKey,
		"source":      source,
	})
}

func (c *Client) SignableCancel(ctx context.Context, source, signableKey string) (map[string]any, error) {
	return c.postJob(ctx, "signable/cancel", map[string]any{
		"signableKey": signableKey,
		"source":      source,
	})
}

// AdobeSignRequest sends source out for signature through Adobe Sign using
// the caller's Adobe API credentials.
type AdobeSignRequest struct {
	Source         string
	EmailAddresses []string
	APIURL         string
	ClientID       string
	ClientSecret   string
	RefreshToken   string
	Callback       string
}

func (c *Client) AdobeSign(ctx context.Context, req AdobeSignRequest) (map[string]any, error) {
	emails := req.EmailAddresses
	if emails == nil {
		emails = []string{}
	}
	return c.postJob(ctx, "adobe-sign", withCallback(map[string]any{
		"source":         req.Source,
		"emailAddresses": emails,
		"apiUrl":         req.APIURL,
		"clientId":       req.ClientID,
		"clientSecret":   req.ClientSecret,
		"token":          req.RefreshToken,
	}, req.Callback))
}

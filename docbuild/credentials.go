package docbuild

import (
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/jrsteele09/go-docbuild/internal/config"
)

// Credentials are the OAuth client id and secret issued by DocBuild.
type Credentials struct {
	ClientID     string
	ClientSecret string
}

// Validate fails with ErrBadCredentials when either field is blank.
func (c Credentials) Validate() error {
	id, secret := strings.TrimSpace(c.ClientID), strings.TrimSpace(c.ClientSecret)
	err := validation.Errors{
		"client_id":     validation.Validate(id, validation.Required),
		"client_secret": validation.Validate(secret, validation.Required),
	}.Filter()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBadCredentials, err)
	}
	return nil
}

// String never prints the secret.
func (c Credentials) String() string {
	return fmt.Sprintf("Credentials{ClientID: %q}", c.ClientID)
}

// CredentialsFromEnv reads DOCBUILD_CLIENT_ID and DOCBUILD_CLIENT_SECRET.
func CredentialsFromEnv() Credentials {
	var env config.EnvVars
	return Credentials{
		ClientID:     env.GetClientID(),
		ClientSecret: env.GetClientSecret(),
	}
}

package google

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"
)

// ScopeDriveReadOnly allows reading files shared with the credentials.
const ScopeDriveReadOnly = "https://www.googleapis.com/auth/drive.readonly"

// EnvServiceAccountJSON holds inline service account credentials for CI.
//
//nolint:gosec // G101: environment variable name, not a credential.
const EnvServiceAccountJSON = "GOOGLE_SERVICE_ACCOUNT_JSON"

// NewTokenSource returns an oauth2.TokenSource for scopes.
// Credentials are taken, in order, from credentialsFile, from the
// GOOGLE_SERVICE_ACCOUNT_JSON environment variable, and finally from
// Application Default Credentials.
func NewTokenSource(ctx context.Context, credentialsFile string, scopes ...string) (oauth2.TokenSource, error) {
	var data []byte
	switch {
	case credentialsFile != "":
		b, err := os.ReadFile(credentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read google credentials: %w", err)
		}
		data = b
	case os.Getenv(EnvServiceAccountJSON) != "":
		data = []byte(os.Getenv(EnvServiceAccountJSON))
	default:
		creds, err := googleoauth.FindDefaultCredentials(ctx, scopes...)
		if err != nil {
			return nil, fmt.Errorf("find default google credentials: %w", err)
		}
		return creds.TokenSource, nil
	}

	creds, err := googleoauth.CredentialsFromJSON(ctx, data, scopes...) //nolint:staticcheck // SA1019: credential type varies
	if err != nil {
		return nil, fmt.Errorf("parse google credentials: %w", err)
	}
	return creds.TokenSource, nil
}

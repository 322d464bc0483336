// Package google provides shared infrastructure for reading the requirements
// document from Google Drive:
//   - token sources from a credentials file or Application Default Credentials
//   - the Drive service factory
//   - error mapping for common Google API errors (401, 403, 404, 429)
//   - rate limiting to respect Drive quotas
//
// # Usage
//
//	ts, err := google.NewTokenSource(ctx, credentialsFile, google.ScopeDriveReadOnly)
//	svc, err := google.NewDriveService(ctx, ts)
//
// The Drive file must be shared with the service account, or readable by the
// authorised user, behind the credentials.
package google

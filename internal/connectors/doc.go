// Package connectors holds the requirements document sources.
// Each source fetches one document and hands it to a normaliser:
//
//	filesystem  a local .docx, .md or .txt file, optionally watched for changes
//	google      a Google Drive document exported as .docx
package connectors

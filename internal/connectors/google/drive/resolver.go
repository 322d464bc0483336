package drive

// ResolveWebURL returns the web link for a file, falling back to the
// standard viewer URL when the API did not return one.
func ResolveWebURL(fileID, webViewLink string) string {
	if webViewLink != "" {
		return webViewLink
	}
	if fileID == "" {
		return ""
	}
	return "https://drive.google.com/file/d/" + fileID + "/view"
}

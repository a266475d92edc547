package api

import (
	"fmt"
	"html"
	"net/http"
	"strconv"
	"strings"
)

// scalarCSP relaxes the page policy for the Scalar bundle and its inline
// bootstrap script.
var scalarCSP = strings.Join([]string{
	"default-src 'self'",
	"script-src 'self' 'unsafe-inline' https://cdn.jsdelivr.net",
	"style-src 'self' 'unsafe-inline' https://cdn.jsdelivr.net https://fonts.scalar.com",
	"font-src 'self' data: https://fonts.scalar.com",
	"img-src 'self' data: https:",
	"connect-src 'self'",
	"base-uri 'none'",
	"frame-ancestors 'none'",
}, "; ")

// ScalarHandler returns an HTTP handler that serves the Scalar API documentation UI.
func ScalarHandler(specURL, title, description string) http.Handler {
	page := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
	<title>%s - API Documentation</title>
	<meta charset="utf-8" />
	<meta name="viewport" content="width=device-width, initial-scale=1" />
	<style>
		body {
			margin: 0;
			padding: 0;
		}
	</style>
</head>
<body>
	<script id="api-reference" data-url="%s"></script>
	<script>
		var configuration = {
			theme: 'purple',
			layout: 'modern',
			showSidebar: true,
			hideModels: false,
			hideDownloadButton: false,
			hideTestRequestButton: false,
			darkMode: true,
			forceDarkModeState: 'dark',
			metaData: {
				title: %s,
				description: %s
			},
			servers: [
				{
					url: window.location.origin,
					description: 'Current server'
				}
			]
		}
		document.getElementById('api-reference').dataset.configuration = JSON.stringify(configuration)
	</script>
	<script src="https://cdn.jsdelivr.net/npm/@scalar/api-reference"></script>
</body>
</html>`, html.EscapeString(title), html.EscapeString(specURL), jsString(title), jsString(description))

	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Content-Security-Policy", scalarCSP)
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(page))
	})
}

// jsString quotes s as a JavaScript string literal safe inside a script tag.
func jsString(s string) string {
	return strings.ReplaceAll(strconv.Quote(s), "</", `<\/`)
}

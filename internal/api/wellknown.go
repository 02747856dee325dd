package api

import "net/http"

// wellKnownManifest is the static JSON manifest for /.well-known/guide.json.
const wellKnownManifest = `{
  "name": "Gentle Separation Guide",
  "description": "Co-parenting coordination for separated families",
  "version": "0.1.0",
  "api_base": "/api/v1",
  "auth": {
    "type": "bearer",
    "header": "Authorization"
  },
  "endpoints": {
    "family": "/api/v1/family",
    "invitations": "/api/v1/invitations",
    "finances": "/api/v1/finances",
    "holidays": "/api/v1/holidays",
    "chat": "/api/v1/chat/messages",
    "stream": "/api/v1/stream/{table}"
  },
  "health": "/health"
}`

// WellKnownHandler returns the static well-known manifest.
func WellKnownHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(wellKnownManifest))
}

// Package web implements the HTML driving adapter: the auth-injecting
// redirect page and the embedded single-page UI.
package web

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"github.com/ericfisherdev/streamfinder/internal/domain/model"
)

// profilePayload mirrors the object Stremio Web keeps under its "profile"
// localStorage key. Only the fields the web app reads on boot are populated.
type profilePayload struct {
	Auth struct {
		Key  string `json:"key"`
		User struct {
			Email string `json:"email"`
		} `json:"user"`
	} `json:"auth"`
}

// RedirectPage builds the one-shot handoff page. With an authenticated
// identity the page writes the serialized profile into the target app's
// localStorage before navigating; the write sits in a try/catch so a disabled
// or full storage only logs client-side and never blocks the navigation.
// Without an identity no write instruction is emitted and the page navigates
// unauthenticated. fragment is appended to webBaseURL as a URL fragment.
func RedirectPage(identity *model.SessionIdentity, fragment, webBaseURL string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		targetJSON, err := templ.JSONString(webBaseURL + "#" + fragment)
		if err != nil {
			return fmt.Errorf("encode redirect target: %w", err)
		}

		injection := ""
		if identity != nil && identity.IsAuthenticated() {
			var profile profilePayload
			profile.Auth.Key = identity.AuthKey
			profile.Auth.User.Email = identity.Email

			profileJSON, err := templ.JSONString(profile)
			if err != nil {
				return fmt.Errorf("encode profile payload: %w", err)
			}
			injection = fmt.Sprintf(injectScript, profileJSON)
		}

		_, err = fmt.Fprintf(w, redirectHTML, injection, targetJSON)
		return err
	})
}

// injectScript writes the profile before handoff. Its %s slot receives the
// JSON-encoded profile object.
const injectScript = `      const profile = %s;
      try {
        localStorage.setItem('profile', JSON.stringify(profile));
      } catch (e) {
        console.error('Failed to inject auth:', e);
      }
`

// redirectHTML is the page shell. First %s receives the optional injection
// block, second the JSON-encoded navigation target.
const redirectHTML = `<!DOCTYPE html>
<html>
<head>
  <title>Redirecting to Stremio...</title>
  <style>
    body {
      background: #141414;
      color: white;
      font-family: -apple-system, BlinkMacSystemFont, sans-serif;
      display: flex;
      justify-content: center;
      align-items: center;
      height: 100vh;
      margin: 0;
    }
    .loader { text-align: center; }
    .spinner {
      width: 48px;
      height: 48px;
      border: 4px solid #333;
      border-top-color: #8a5cf5;
      border-radius: 50%%;
      animation: spin 1s linear infinite;
      margin: 0 auto 20px;
    }
    @keyframes spin { to { transform: rotate(360deg); } }
  </style>
</head>
<body>
  <div class="loader">
    <div class="spinner"></div>
    <p>Opening in Stremio Web...</p>
  </div>
  <script>
    (function() {
%s      window.location.href = %s;
    })();
  </script>
</body>
</html>
`

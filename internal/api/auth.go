package api

import (
	"errors"
	"mime"
	"net/http"

	"github.com/nerrad567/gps-tracker/internal/auth"
)

// maxFormMemory bounds multipart form parsing for the login endpoint.
const maxFormMemory = 32 << 10

// tokenRequest is the request body for POST /token.
type tokenRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// tokenResponse is the response body for POST /token.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// handleToken exchanges a username and password for a bearer token. It
// accepts a JSON body or the form encoding used by OAuth2 password clients.
func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	req, err := readTokenRequest(r)
	if err != nil {
		writeValidationError(w, err.Error())
		return
	}
	if req.Username == "" || req.Password == "" {
		writeValidationError(w, "username and password are required")
		return
	}

	user, err := auth.CheckCredentials(r.Context(), s.users, req.Username, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		writeUnauthorized(w, "Incorrect username or password")
		return
	}
	if err != nil {
		s.logger.Error("checking credentials", "error", err, "request_id", requestIDFrom(r.Context()))
		writeInternalError(w, "internal server error")
		return
	}

	token, err := s.tokens.IssueDefault(user.Username)
	if err != nil {
		s.logger.Error("issuing token", "error", err, "request_id", requestIDFrom(r.Context()))
		writeInternalError(w, "failed to generate token")
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int(s.tokens.DefaultTTL().Seconds()),
	})
}

func readTokenRequest(r *http.Request) (tokenRequest, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")) //nolint:errcheck // empty type means JSON

	var parseErr error
	switch mediaType {
	case "application/x-www-form-urlencoded":
		parseErr = r.ParseForm()
	case "multipart/form-data":
		parseErr = r.ParseMultipartForm(maxFormMemory)
	default:
		var req tokenRequest
		err := decodeJSON(r, &req)
		return req, err
	}
	if parseErr != nil {
		return tokenRequest{}, errors.New("invalid form body")
	}
	return tokenRequest{
		Username: r.PostForm.Get("username"),
		Password: r.PostForm.Get("password"),
	}, nil
}

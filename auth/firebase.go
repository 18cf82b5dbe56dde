package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	firebaseauth "firebase.google.com/go/v4/auth"
)

// FirebaseProvider is an auth provider backed by Firebase Authentication
type FirebaseProvider struct {
	AuthClient *firebaseauth.Client
	AdminUIDs  []string
}

// FromRequest parses an Authorization header or Cookie as a Firebase JWT token.
func (f *FirebaseProvider) FromRequest(r *http.Request) (Info, error) {
	tokenStr, err := parseRequest(r)
	if err != nil {
		return Info{}, err
	}
	if tokenStr == "" {
		return Info{}, nil
	}

	token, err := f.AuthClient.VerifyIDToken(r.Context(), tokenStr)
	if err != nil && firebaseauth.IsIDTokenExpired(err) {
		return Info{}, ErrExpired
	} else if err != nil {
		return Info{}, err
	}

	// Admins are listed by uid or carry an admin custom claim.
	isAdmin, _ := token.Claims["admin"].(bool)
	for _, u := range f.AdminUIDs {
		if u == token.UID {
			isAdmin = true
			break
		}
	}

	info := Info{
		ID:      token.UID,
		IsAdmin: isAdmin,
	}
	if token.AuthTime > 0 {
		info.AuthTime = time.Unix(token.AuthTime, 0)
	}
	info.Email, _ = token.Claims["email"].(string)
	info.Name, _ = token.Claims["name"].(string)
	info.PhotoURL, _ = token.Claims["picture"].(string)

	return info, nil
}

// DeleteIdentity removes the Firebase account. An account that's already
// gone isn't an error.
func (f *FirebaseProvider) DeleteIdentity(ctx context.Context, id string) error {
	err := f.AuthClient.DeleteUser(ctx, id)
	if firebaseauth.IsUserNotFound(err) {
		return nil
	}
	return err
}

func parseRequest(r *http.Request) (string, error) {
	// First try to get it from a cookie
	cookie, err := r.Cookie("jwt")
	if err == nil && cookie.Value != "" {
		return cookie.Value, nil
	}

	// Then see if it's in a Bearer token
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return "", nil
	}

	authParts := strings.Split(auth, " ")
	if len(authParts) != 2 {
		return "", errors.New("malformed Authorization header")
	}

	authType := authParts[0]
	tokenString := authParts[1]

	if authType != "Bearer" {
		return "", fmt.Errorf("unknown auth type %q", authType)
	}

	return tokenString, nil
}

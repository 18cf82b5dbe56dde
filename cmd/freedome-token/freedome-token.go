// package main provides a utility for creating service tokens for
// authenticating with freedome via firebase. It prints the sign-in response,
// whose idToken can be passed to rest/client.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"

	firebase "firebase.google.com/go/v4"
	"github.com/joho/godotenv"
	"google.golang.org/api/option"
)

func main() {
	godotenv.Load()

	var (
		firebaseProjectID = flag.String("project-id", os.Getenv("FIREBASE_PROJECT_ID"), "The firebase project-id used for auth")
		serviceAccount    = flag.String("service-account", os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"), "Google service account JSON file associated with the firebase project")
		apiKey            = flag.String("api-key", os.Getenv("FIREBASE_API_KEY"), "The firebase web API key")
		admin             = flag.Bool("admin", false, "add an admin claim to the token")
	)
	flag.Parse()

	tokenName := flag.Arg(0)
	if tokenName == "" {
		log.Fatal("usage: freedome-token [-admin] <token name>")
	}

	ctx := context.Background()

	app, err := firebase.NewApp(ctx, &firebase.Config{
		ProjectID: *firebaseProjectID,
	}, option.WithCredentialsFile(*serviceAccount))
	if err != nil {
		log.Fatal(err)
	}
	auth, err := app.Auth(ctx)
	if err != nil {
		log.Fatal(err)
	}

	uid := fmt.Sprintf("service-%s", tokenName)
	var customToken string
	if *admin {
		customToken, err = auth.CustomTokenWithClaims(ctx, uid, map[string]interface{}{"admin": true})
	} else {
		customToken, err = auth.CustomToken(ctx, uid)
	}
	if err != nil {
		log.Fatal(err)
	}

	signInReq, err := json.Marshal(map[string]interface{}{
		"returnSecureToken": true,
		"token":             customToken,
	})
	if err != nil {
		log.Fatal(err)
	}

	signInURL := fmt.Sprintf("https://identitytoolkit.googleapis.com/v1/accounts:signInWithCustomToken?key=%s", *apiKey)
	resp, err := http.Post(signInURL, "application/json", bytes.NewReader(signInReq))
	if err != nil {
		log.Fatal(err)
	}
	defer resp.Body.Close()

	if _, err := io.Copy(os.Stdout, resp.Body); err != nil {
		log.Fatal(err)
	}
}

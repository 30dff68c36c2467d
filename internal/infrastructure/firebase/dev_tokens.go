package firebase

import (
	"context"
)

// GenerateLongLivedToken mints a token for uid for local testing. With an
// identity client the custom token is exchanged for an ID token the API
// accepts; otherwise the custom token itself is returned.
func (f *FirebaseAuthClient) GenerateLongLivedToken(ctx context.Context, uid string) (string, error) {
	customToken, err := f.client.CustomToken(ctx, uid)
	if err != nil {
		return "", err
	}

	if f.identity != nil {
		signedIn, err := f.identity.SignInWithCustomToken(ctx, customToken)
		if err != nil {
			return "", err
		}
		return signedIn.IDToken, nil
	}

	return customToken, nil
}

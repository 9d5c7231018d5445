// Package brokersdk is the Go client for the brokerage API and the home of
// its wire types.
//
// The server encodes its responses with the same structs, so a change to a
// JSON field here is a change to the API.
//
// Anonymous calls hang off SDKClient:
//
//	client := brokersdk.NewSDKClient("https://api.example.com")
//	session, err := client.Login(ctx, "a@x.com", "secret123")
//
// A Session carries the access and refresh token pair and transparently
// refreshes the access token shortly before it expires:
//
//	me, err := session.Me(ctx)
//	refs, err := session.MyReferrals(ctx)
//
// Errors returned by the server surface as *APIError, so callers can switch
// on StatusCode or Code:
//
//	var apiErr *brokersdk.APIError
//	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusForbidden {
//		...
//	}
package brokersdk

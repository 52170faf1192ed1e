// Package apiclient implements the 8 server API endpoints Ctx calls
// through the runtime.Environment fetch collaborator (spec.md §6): POST
// JSON under `<api_url()>/api/<endpoint>`, decoding the
// `{"result": ...} | {"error": {message, code}}` envelope every endpoint
// shares.
package apiclient

import (
	"context"
	"encoding/json"

	"github.com/addonify/core/internal/corerr"
	"github.com/addonify/core/internal/runtime"
	"github.com/addonify/core/internal/types"
)

// libraryItemCollection is the fixed Datastore collection name (§6).
const libraryItemCollection = "libraryItem"

// Fetcher is the one-shot JSON HTTP contract the client needs —
// runtime.Environment satisfies it directly.
type Fetcher interface {
	Fetch(ctx context.Context, req runtime.FetchRequest) (runtime.FetchResult, error)
}

// envelope is the shared response shape every endpoint decodes into
// before unwrapping into its specific result type.
type envelope struct {
	Result json.RawMessage `json:"result"`
	Error  *envelopeError  `json:"error"`
}

type envelopeError struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// Client calls the server API under base ("<api_url()>/api").
type Client struct {
	fetcher Fetcher
	base    string
}

// New returns a Client that POSTs under apiURL+"/api".
func New(fetcher Fetcher, apiURL string) *Client {
	return &Client{fetcher: fetcher, base: apiURL + "/api"}
}

func (c *Client) call(ctx context.Context, endpoint string, body any, out any) error {
	result, err := c.fetcher.Fetch(ctx, runtime.FetchRequest{
		Method: "POST",
		URL:    c.base + "/" + endpoint,
		Body:   body,
	})
	if err != nil {
		return corerr.Env(err)
	}
	var env envelope
	if err := json.Unmarshal(result.Body, &env); err != nil {
		return corerr.Env(err)
	}
	if env.Error != nil {
		return corerr.API(env.Error.Message, env.Error.Code)
	}
	if out == nil || len(env.Result) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Result, out); err != nil {
		return corerr.Env(err)
	}
	return nil
}

// LoginRequest is the body for both Login and Register.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResult is the decoded result of a successful Login/Register call.
type AuthResult struct {
	Key  string    `json:"authKey"`
	User types.User `json:"user"`
}

// Login POSTs /login.
func (c *Client) Login(ctx context.Context, req LoginRequest) (AuthResult, error) {
	var out AuthResult
	err := c.call(ctx, "login", req, &out)
	return out, err
}

// Register POSTs /register.
func (c *Client) Register(ctx context.Context, req LoginRequest) (AuthResult, error) {
	var out AuthResult
	err := c.call(ctx, "register", req, &out)
	return out, err
}

// logoutRequest carries the session key of the account being logged out.
type logoutRequest struct {
	AuthKey string `json:"authKey"`
}

// Logout POSTs /logout. Per §4.3 this is fire-and-forget from Ctx's point
// of view: the caller schedules it but never blocks the local reset on
// its result.
func (c *Client) Logout(ctx context.Context, authKey string) error {
	return c.call(ctx, "logout", logoutRequest{AuthKey: authKey}, nil)
}

// addonCollectionGetRequest carries the session key.
type addonCollectionGetRequest struct {
	AuthKey string `json:"authKey"`
}

// AddonCollectionGetResult is the decoded add-ons list from the server.
type AddonCollectionGetResult struct {
	Addons []types.Descriptor `json:"addons"`
}

// AddonCollectionGet POSTs /addonCollectionGet.
func (c *Client) AddonCollectionGet(ctx context.Context, authKey string) (AddonCollectionGetResult, error) {
	var out AddonCollectionGetResult
	err := c.call(ctx, "addonCollectionGet", addonCollectionGetRequest{AuthKey: authKey}, &out)
	return out, err
}

// addonCollectionSetRequest pushes the full installed add-on list.
type addonCollectionSetRequest struct {
	AuthKey string             `json:"authKey"`
	Addons  []types.Descriptor `json:"addons"`
}

// AddonCollectionSet POSTs /addonCollectionSet with the caller's full
// add-on list (scenario 2: "exactly one POST ... with body containing
// authKey and the new addons list").
func (c *Client) AddonCollectionSet(ctx context.Context, authKey string, addons []types.Descriptor) error {
	return c.call(ctx, "addonCollectionSet", addonCollectionSetRequest{AuthKey: authKey, Addons: addons}, nil)
}

// datastoreMetaRequest requests the (id, mtime) list for a collection.
type datastoreMetaRequest struct {
	AuthKey    string `json:"authKey"`
	Collection string `json:"collection"`
}

// DatastoreMetaEntry is one (id, mtime) pair returned by datastoreMeta.
type DatastoreMetaEntry struct {
	ID    string         `json:"id"`
	MTime types.Timestamp `json:"mtime"`
}

// datastoreMetaResult wraps the decoded entry list.
type datastoreMetaResult struct {
	Entries []DatastoreMetaEntry `json:"entries"`
}

// DatastoreMeta POSTs /datastoreMeta (§4.4 merge-sync step 1).
func (c *Client) DatastoreMeta(ctx context.Context, authKey string) ([]DatastoreMetaEntry, error) {
	var out datastoreMetaResult
	err := c.call(ctx, "datastoreMeta", datastoreMetaRequest{AuthKey: authKey, Collection: libraryItemCollection}, &out)
	return out.Entries, err
}

// datastoreGetRequest asks for the full records of the given ids, or all
// records when All is true.
type datastoreGetRequest struct {
	AuthKey    string   `json:"authKey"`
	Collection string   `json:"collection"`
	IDs        []string `json:"ids,omitempty"`
	All        bool     `json:"all,omitempty"`
}

// datastoreGetResult wraps the decoded item list.
type datastoreGetResult struct {
	Items []types.LibItem `json:"items"`
}

// DatastoreGet POSTs /datastoreGet for the given ids (§4.4 merge-sync
// step 4's "get(ids_to_pull)"). Pass ids=nil, all=true for the initial
// PullFromStorage-adjacent fetch (§4.3 "POST ... Datastore.Get(all=true)
// in parallel").
func (c *Client) DatastoreGet(ctx context.Context, authKey string, ids []string, all bool) ([]types.LibItem, error) {
	var out datastoreGetResult
	err := c.call(ctx, "datastoreGet", datastoreGetRequest{
		AuthKey:    authKey,
		Collection: libraryItemCollection,
		IDs:        ids,
		All:        all,
	}, &out)
	return out.Items, err
}

// datastorePutRequest pushes a batch of dirty items.
type datastorePutRequest struct {
	AuthKey    string          `json:"authKey"`
	Collection string          `json:"collection"`
	Items      []types.LibItem `json:"items"`
}

// DatastorePut POSTs /datastorePut for items (§4.4 merge-sync step 4's
// "put(items_to_push)").
func (c *Client) DatastorePut(ctx context.Context, authKey string, items []types.LibItem) error {
	return c.call(ctx, "datastorePut", datastorePutRequest{
		AuthKey:    authKey,
		Collection: libraryItemCollection,
		Items:      items,
	}, nil)
}

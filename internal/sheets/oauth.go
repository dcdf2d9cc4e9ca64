package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"
)

// ErrInvalidState is returned when a consent callback does not match a pending request
var ErrInvalidState = errors.New("invalid oauth state")

// Authorizer runs the browser consent flow for an OAuth client and keeps
// the resulting token on disk so restarts do not need a new consent.
type Authorizer struct {
	config    *oauth2.Config
	tokenFile string
	store     *Store

	mu     sync.Mutex
	states map[string]struct{}
}

// NewAuthorizer reads a Google OAuth client file (the JSON downloaded from
// the cloud console) and binds the flow to store.
func NewAuthorizer(clientFile, tokenFile, redirectURL string, store *Store) (*Authorizer, error) {
	b, err := os.ReadFile(clientFile)
	if err != nil {
		return nil, fmt.Errorf("read oauth client file: %w", err)
	}
	cfg, err := google.ConfigFromJSON(b, gsheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse oauth client file: %w", err)
	}
	if redirectURL != "" {
		cfg.RedirectURL = redirectURL
	}
	return newAuthorizer(cfg, tokenFile, store), nil
}

func newAuthorizer(cfg *oauth2.Config, tokenFile string, store *Store) *Authorizer {
	return &Authorizer{config: cfg, tokenFile: tokenFile, store: store, states: make(map[string]struct{})}
}

// Restore attaches a previously saved token to the store. A missing token
// file is not an error; the store simply stays unauthorized.
func (a *Authorizer) Restore(ctx context.Context) error {
	tok, err := a.loadToken()
	if errors.Is(err, os.ErrNotExist) {
		log.Printf("⚠️  No saved Google token at %s, consent required", a.tokenFile)
		return nil
	}
	if err != nil {
		return err
	}
	return a.attach(ctx, tok)
}

// AuthURL starts a consent request and returns the Google URL to redirect to
func (a *Authorizer) AuthURL() string {
	state := uuid.New().String()
	a.mu.Lock()
	a.states[state] = struct{}{}
	a.mu.Unlock()
	return a.config.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// Exchange completes a consent request: it checks state, trades the code for
// a token, saves it and attaches it to the store.
func (a *Authorizer) Exchange(ctx context.Context, state, code string) error {
	a.mu.Lock()
	_, ok := a.states[state]
	delete(a.states, state)
	a.mu.Unlock()
	if !ok {
		return ErrInvalidState
	}

	tok, err := a.config.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("exchange oauth code: %w", err)
	}
	if err := a.saveToken(tok); err != nil {
		return err
	}
	log.Println("✅ Google Sheets access authorized")
	return a.attach(ctx, tok)
}

func (a *Authorizer) attach(ctx context.Context, tok *oauth2.Token) error {
	// Background so the refreshing client outlives the request that created it
	src := a.config.TokenSource(context.Background(), tok)
	return a.store.Connect(ctx, option.WithTokenSource(src))
}

func (a *Authorizer) loadToken() (*oauth2.Token, error) {
	f, err := os.Open(a.tokenFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tok := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(tok); err != nil {
		return nil, fmt.Errorf("decode token file: %w", err)
	}
	return tok, nil
}

func (a *Authorizer) saveToken(tok *oauth2.Token) error {
	f, err := os.OpenFile(a.tokenFile, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(tok)
}

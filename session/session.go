package session

import (
	"context"
	"strings"

	"github.com/looplab/fsm"
	"github.com/sirupsen/logrus"

	"github.com/ulrichard/uttesla/credentials"
	"github.com/ulrichard/uttesla/tesla"
)

// Session lifecycle states
const (
	StateLoggedOut     = "logged_out"
	StateAuthenticated = "authenticated"
	StateReady         = "ready"
)

const (
	EventLogin   = "login"
	EventLogout  = "logout"
	EventResolve = "resolve"
)

// API is the part of the Owner API the session and the dispatcher use.
// *tesla.Client implements it.
type API interface {
	Products(ctx context.Context) ([]tesla.Product, error)
	WakeUp(ctx context.Context, id tesla.VehicleID) (*tesla.Vehicle, error)
	VehicleData(ctx context.Context, id tesla.VehicleID) (*tesla.VehicleData, error)
	SetTemps(ctx context.Context, id tesla.VehicleID, driver, passenger float64) error
	AutoConditioningStart(ctx context.Context, id tesla.VehicleID) error
	AutoConditioningStop(ctx context.Context, id tesla.VehicleID) error
	DoorLock(ctx context.Context, id tesla.VehicleID) error
	DoorUnlock(ctx context.Context, id tesla.VehicleID) error
	SetChargeLimit(ctx context.Context, id tesla.VehicleID, percent int) error
	ChargeStart(ctx context.Context, id tesla.VehicleID) error
	ChargeStop(ctx context.Context, id tesla.VehicleID) error
	HonkHorn(ctx context.Context, id tesla.VehicleID) error
	FlashLights(ctx context.Context, id tesla.VehicleID) error
	RemoteStartDrive(ctx context.Context, id tesla.VehicleID) error
}

// Connector builds API clients from stored tokens.
type Connector interface {
	FromAccessToken(accessToken string) API
	FromRefreshToken(ctx context.Context, refreshToken string) (API, *tesla.Token, error)
}

// Vehicle is one roster entry.
type Vehicle struct {
	ID          tesla.VehicleID
	DisplayName string
}

// Session owns the authenticated client and the vehicle roster. It is not
// safe for concurrent use.
type Session struct {
	store     *credentials.Store
	connector Connector
	machine   *fsm.FSM
	client    API
	roster    []Vehicle
}

type Option func(*Session)

// WithConnector replaces the Owner API connector.
func WithConnector(c Connector) Option {
	return func(s *Session) {
		s.connector = c
	}
}

var log = logrus.StandardLogger()

func New(store *credentials.Store, config tesla.Config, opts ...Option) *Session {
	s := &Session{
		store:     store,
		connector: teslaConnector{config: config},
	}
	for _, opt := range opts {
		opt(s)
	}

	s.machine = fsm.NewFSM(
		StateLoggedOut,
		fsm.Events{
			{Name: EventLogin, Src: []string{StateLoggedOut}, Dst: StateAuthenticated},
			{Name: EventResolve, Src: []string{StateAuthenticated}, Dst: StateReady},
			{Name: EventLogout, Src: []string{StateAuthenticated, StateReady}, Dst: StateLoggedOut},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				log.Debugf("session: %s -> %s", e.Src, e.Dst)
			},
		},
	)
	return s
}

// Login obtains a client from the stored credentials. A stored refresh
// token always wins over a stored access token. Every call drops the
// previous client and roster, whatever the outcome.
func (s *Session) Login(ctx context.Context) error {
	s.client = nil
	s.roster = nil
	s.fire(EventLogout)

	client, err := s.connect(ctx)
	if err != nil {
		return err
	}
	s.client = client
	s.fire(EventLogin)
	return nil
}

func (s *Session) connect(ctx context.Context) (API, error) {
	if err := s.store.EnsureDir(); err != nil {
		return nil, &AuthError{Kind: ErrCredentials, Err: err}
	}

	refreshToken, ok, err := s.store.ReadRefreshToken()
	if err != nil {
		return nil, &AuthError{Kind: ErrCredentials, Err: err}
	}
	if ok {
		return s.refresh(ctx, refreshToken)
	}

	accessToken, ok, err := s.store.ReadAccessToken()
	if err != nil {
		return nil, &AuthError{Kind: ErrCredentials, Err: err}
	}
	if ok {
		log.Debugf("using stored access token from %s", s.store.AccessTokenPath())
		return s.connector.FromAccessToken(accessToken), nil
	}

	return nil, &AuthError{Kind: ErrNoCredentials}
}

// refresh exchanges the refresh token and persists what the service issued.
// There is no fallback to a stored access token.
func (s *Session) refresh(ctx context.Context, refreshToken string) (API, error) {
	log.Debugf("refreshing access token with %s", s.store.RefreshTokenPath())
	client, token, err := s.connector.FromRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, &AuthError{Kind: ErrRefreshFailed, Err: err}
	}

	if err := s.store.WriteAccessToken(token.AccessToken); err != nil {
		return nil, &AuthError{Kind: ErrCredentials, Err: err}
	}
	if token.RefreshToken != "" && token.RefreshToken != refreshToken {
		if err := s.store.WriteRefreshToken(token.RefreshToken); err != nil {
			return nil, &AuthError{Kind: ErrCredentials, Err: err}
		}
		log.Debugf("refresh token rotated")
	}
	return client, nil
}

// ResolveRoster lists the account's vehicles, keeps them as the roster and
// returns their display names, one per line.
func (s *Session) ResolveRoster(ctx context.Context) (string, error) {
	if s.client == nil {
		return "", &RosterError{Kind: ErrNotAuthenticated}
	}

	products, err := s.client.Products(ctx)
	if err != nil {
		return "", &RosterError{Kind: ErrFetchFailed, Err: err}
	}

	roster := make([]Vehicle, 0, len(products))
	names := make([]string, 0, len(products))
	for _, p := range products {
		if !p.IsVehicle() {
			continue
		}
		roster = append(roster, Vehicle{ID: p.Vehicle.ID, DisplayName: p.Vehicle.DisplayName})
		names = append(names, p.Vehicle.DisplayName)
	}
	s.roster = roster
	s.fire(EventResolve)
	log.Debugf("roster: %d vehicles out of %d products", len(roster), len(products))

	return strings.TrimSpace(strings.Join(names, "\n")), nil
}

// Client returns the authenticated client, or nil before a successful Login.
func (s *Session) Client() API {
	return s.client
}

// Roster returns a copy of the resolved roster.
func (s *Session) Roster() []Vehicle {
	roster := make([]Vehicle, len(s.roster))
	copy(roster, s.roster)
	return roster
}

// State returns the lifecycle state (StateLoggedOut, StateAuthenticated or
// StateReady).
func (s *Session) State() string {
	return s.machine.Current()
}

func (s *Session) fire(event string) {
	if !s.machine.Can(event) {
		return
	}
	if err := s.machine.Event(context.Background(), event); err != nil {
		log.Warnf("session: %s: %v", event, err)
	}
}

type teslaConnector struct {
	config tesla.Config
}

func (c teslaConnector) FromAccessToken(accessToken string) API {
	return tesla.New(c.config, accessToken)
}

func (c teslaConnector) FromRefreshToken(ctx context.Context, refreshToken string) (API, *tesla.Token, error) {
	client, token, err := tesla.NewFromRefreshToken(ctx, c.config, refreshToken)
	if err != nil {
		return nil, nil, err
	}
	return client, token, nil
}

// Package httpapi exposes a read-only JSON view of deployed contracts.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/R3E-Network/nft_layer/internal/deploy"
	"github.com/R3E-Network/nft_layer/internal/events"
	"github.com/R3E-Network/nft_layer/internal/metrics"
	"github.com/R3E-Network/nft_layer/internal/middleware"
	"github.com/R3E-Network/nft_layer/internal/nft"
	"github.com/R3E-Network/nft_layer/internal/storage"
	"github.com/R3E-Network/nft_layer/pkg/logger"
)

// Contracts resolves deployed proxies. *deploy.Manager implements it.
type Contracts interface {
	Proxy(ctx context.Context, addr nft.Address) (*nft.Proxy, error)
	List(ctx context.Context) ([]deploy.Summary, error)
}

// Options configures the handler.
type Options struct {
	Logger         *logger.Logger
	Events         events.Log
	RateLimit      float64
	Burst          int
	AllowedOrigins []string
	// TrustedProxies may set X-Forwarded-For for rate limiting.
	TrustedProxies []string
	// Done stops background limiter cleanup; nil disables cleanup.
	Done <-chan struct{}
}

const maxEventLimit = 500

// errBadRequest marks malformed path or query values.
var errBadRequest = errors.New("bad request")

type handler struct {
	contracts Contracts
	events    events.Log
	log       *logger.Logger
}

// ContractInfo is the body of GET /contracts/{address}.
type ContractInfo struct {
	Address           string `json:"address"`
	Name              string `json:"name"`
	Symbol            string `json:"symbol"`
	Implementation    string `json:"implementation"`
	Owner             string `json:"owner"`
	TotalSupply       uint64 `json:"total_supply"`
	MaxSupply         uint64 `json:"max_supply"`
	MintPrice         string `json:"mint_price"`
	MintPriceNative   string `json:"mint_price_native"`
	BaseURI           string `json:"base_uri"`
	RoyaltyPercentage uint8  `json:"royalty_percentage"`
}

// Describe summarizes a proxy's public state.
func Describe(p *nft.Proxy) ContractInfo {
	return ContractInfo{
		Address:           nft.FormatAddress(p.Address()),
		Name:              p.Name(),
		Symbol:            p.Symbol(),
		Implementation:    p.Implementation(),
		Owner:             nft.FormatAddress(p.Owner()),
		TotalSupply:       p.TotalSupply(),
		MaxSupply:         p.MaxSupply(),
		MintPrice:         p.MintPrice().String(),
		MintPriceNative:   nft.FormatNative(p.MintPrice()),
		BaseURI:           p.BaseURI(),
		RoyaltyPercentage: p.RoyaltyPercentage(),
	}
}

// NewHandler returns the API router wrapped in tracing, CORS, rate
// limiting and request metrics.
func NewHandler(contracts Contracts, opts Options) http.Handler {
	if opts.Logger == nil {
		opts.Logger = logger.NewDefault("httpapi")
	}
	if opts.Events == nil {
		opts.Events = events.Discard{}
	}
	h := &handler{contracts: contracts, events: opts.Events, log: opts.Logger}

	r := mux.NewRouter()
	r.HandleFunc("/health", h.health).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/contracts", h.list).Methods(http.MethodGet)

	c := r.PathPrefix("/contracts/{address}").Subrouter()
	c.HandleFunc("", h.info).Methods(http.MethodGet)
	c.HandleFunc("/tokens/{id:[0-9]+}/uri", h.tokenURI).Methods(http.MethodGet)
	c.HandleFunc("/tokens/{id:[0-9]+}/owner", h.ownerOf).Methods(http.MethodGet)
	c.HandleFunc("/royalty", h.royalty).Methods(http.MethodGet)
	c.HandleFunc("/balances/{account}", h.balance).Methods(http.MethodGet)
	c.HandleFunc("/events", h.recentEvents).Methods(http.MethodGet)

	limiter := middleware.NewRateLimiter(opts.RateLimit, opts.Burst, opts.Logger)
	if err := limiter.TrustProxies(opts.TrustedProxies); err != nil {
		opts.Logger.WithError(err).Warn("ignoring trusted proxies, keying on peer address")
	}
	if opts.Done != nil {
		limiter.StartCleanup(time.Minute, opts.Done)
	}
	var out http.Handler = r
	out = metrics.InstrumentHandler(out)
	out = limiter.Handler(out)
	out = middleware.NewCORSMiddleware(opts.AllowedOrigins).Handler(out)
	out = middleware.NewTracingMiddleware(opts.Logger).Handler(out)
	return out
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) list(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.contracts.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (h *handler) info(w http.ResponseWriter, r *http.Request) {
	p, ok := h.proxy(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, Describe(p))
}

func (h *handler) tokenURI(w http.ResponseWriter, r *http.Request) {
	p, ok := h.proxy(w, r)
	if !ok {
		return
	}
	id, err := tokenID(mux.Vars(r)["id"])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	uri, err := p.TokenURI(id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"token_id": id, "uri": uri})
}

func (h *handler) ownerOf(w http.ResponseWriter, r *http.Request) {
	p, ok := h.proxy(w, r)
	if !ok {
		return
	}
	id, err := tokenID(mux.Vars(r)["id"])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	owner, err := p.OwnerOf(id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"token_id": id, "owner": nft.FormatAddress(owner)})
}

func (h *handler) royalty(w http.ResponseWriter, r *http.Request) {
	p, ok := h.proxy(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	id, err := tokenID(q.Get("tokenId"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	salePrice, ok := new(big.Int).SetString(q.Get("salePrice"), 10)
	if !ok {
		h.fail(w, r, fmt.Errorf("%w: salePrice %q", nft.ErrInvalidAmount, q.Get("salePrice")))
		return
	}
	receiver, amount, err := p.RoyaltyInfo(id, salePrice)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"token_id":   id,
		"sale_price": salePrice.String(),
		"receiver":   nft.FormatAddress(receiver),
		"amount":     amount.String(),
	})
}

func (h *handler) balance(w http.ResponseWriter, r *http.Request) {
	p, ok := h.proxy(w, r)
	if !ok {
		return
	}
	account, err := nft.ParseAddress(mux.Vars(r)["account"])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"account": nft.FormatAddress(account),
		"balance": p.BalanceOf(account),
	})
}

func (h *handler) recentEvents(w http.ResponseWriter, r *http.Request) {
	p, ok := h.proxy(w, r)
	if !ok {
		return
	}
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			h.fail(w, r, fmt.Errorf("%w: limit %q", errBadRequest, raw))
			return
		}
		limit = min(n, maxEventLimit)
	}
	list := h.events.RecentByContract(nft.FormatAddress(p.Address()), limit)
	if list == nil {
		list = []events.Event{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *handler) proxy(w http.ResponseWriter, r *http.Request) (*nft.Proxy, bool) {
	addr, err := nft.ParseAddress(mux.Vars(r)["address"])
	if err != nil {
		h.fail(w, r, err)
		return nil, false
	}
	p, err := h.contracts.Proxy(r.Context(), addr)
	if err != nil {
		h.fail(w, r, err)
		return nil, false
	}
	return p, true
}

func (h *handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	reason := nft.Reason(err)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		reason = "not_found"
	case errors.Is(err, errBadRequest):
		reason = "bad_request"
	}
	if status >= http.StatusInternalServerError {
		h.log.WithError(err).WithField("path", r.URL.Path).Error("request failed")
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error(), "reason": reason})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, nft.ErrNonexistentToken), errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errBadRequest), errors.Is(err, nft.ErrInvalidAmount), errors.Is(err, nft.ErrInvalidAddress):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func tokenID(raw string) (uint64, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: token id %q", errBadRequest, raw)
	}
	return id, nil
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

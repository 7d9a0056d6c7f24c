package api

import (
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strconv"

	"github.com/emicklei/go-restful"

	"github.com/ultiledger/go-marketledger/currency"
	"github.com/ultiledger/go-marketledger/event"
	"github.com/ultiledger/go-marketledger/ledger"
	"github.com/ultiledger/go-marketledger/log"
	"github.com/ultiledger/go-marketledger/market"
	"github.com/ultiledger/go-marketledger/op"
	"github.com/ultiledger/go-marketledger/types"
)

const (
	maxEvents = 1000
	// operations are small JSON objects
	maxOpBytes = 64 << 10
)

// Service implements the routes registered by NewHandler.
type Service struct {
	ledger    *ledger.Ledger
	submitter Submitter
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type OpResponse struct {
	Events []*event.Envelope `json:"events"`
}

type AccountResponse struct {
	Account string `json:"account"`
	Native  string `json:"native"`
	Gold    string `json:"gold"`
	Relics  uint64 `json:"relics"`
}

type GoldResponse struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals int    `json:"decimals"`
	Supply   string `json:"supply"`
	Reserve  string `json:"reserve"`
}

type PackResponse struct {
	AssetID uint64 `json:"asset_id"`
	Supply  uint64 `json:"supply"`
	URI     string `json:"uri"`
}

type RelicResponse struct {
	AssetID  uint64 `json:"asset_id"`
	Owner    string `json:"owner"`
	URI      string `json:"uri"`
	Approved string `json:"approved"`
}

type MarketResponse struct {
	Kind       string `json:"kind"`
	Operator   string `json:"operator"`
	Settlement string `json:"settlement"`
	Fees       string `json:"fees"`
}

type PackListingResponse struct {
	Seller    string `json:"seller"`
	AssetID   uint64 `json:"asset_id"`
	Amount    uint64 `json:"amount"`
	UnitPrice string `json:"unit_price"`
	Active    bool   `json:"active"`
}

type RelicListingResponse struct {
	AssetID uint64 `json:"asset_id"`
	Seller  string `json:"seller"`
	Price   string `json:"price"`
	Active  bool   `json:"active"`
}

// SubmitOp decodes an operation from the request body and waits for
// the sequencer to apply it.
func (s *Service) SubmitOp(request *restful.Request, response *restful.Response) {
	body := http.MaxBytesReader(response.ResponseWriter, request.Request.Body, maxOpBytes)
	b, err := io.ReadAll(body)
	if err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		writeError(response, status, err)
		return
	}
	o, err := op.Decode(b)
	if err != nil {
		writeError(response, http.StatusBadRequest, err)
		return
	}
	envs, err := s.submitter.Submit(o)
	if err != nil {
		writeError(response, statusOf(err), err)
		return
	}
	if envs == nil {
		envs = []*event.Envelope{}
	}
	writeEntity(response, &OpResponse{Events: envs})
}

// QueryEvents returns the journaled events after the "from" sequence.
func (s *Service) QueryEvents(request *restful.Request, response *restful.Response) {
	from, err := queryUint(request, "from", 0)
	if err != nil {
		writeError(response, http.StatusBadRequest, err)
		return
	}
	limit, err := queryUint(request, "limit", maxEvents)
	if err != nil {
		writeError(response, http.StatusBadRequest, err)
		return
	}
	if limit == 0 || limit > maxEvents {
		limit = maxEvents
	}
	envs, err := s.ledger.Events(from, int(limit))
	if err != nil {
		writeError(response, statusOf(err), err)
		return
	}
	if envs == nil {
		envs = []*event.Envelope{}
	}
	writeEntity(response, envs)
}

func (s *Service) QueryRole(request *restful.Request, response *restful.Response) {
	members, err := s.ledger.RoleMembers(request.PathParameter("role"))
	if err != nil {
		writeError(response, statusOf(err), err)
		return
	}
	if members == nil {
		members = []string{}
	}
	writeEntity(response, members)
}

func (s *Service) QueryAccount(request *restful.Request, response *restful.Response) {
	acc := request.PathParameter("account")
	native, err := s.ledger.NativeBalance(acc)
	if err != nil {
		writeError(response, statusOf(err), err)
		return
	}
	gold, err := s.ledger.GoldBalance(acc)
	if err != nil {
		writeError(response, statusOf(err), err)
		return
	}
	relics, err := s.ledger.RelicBalance(acc)
	if err != nil {
		writeError(response, statusOf(err), err)
		return
	}
	writeEntity(response, &AccountResponse{
		Account: acc,
		Native:  native.String(),
		Gold:    gold.String(),
		Relics:  relics,
	})
}

func (s *Service) QueryGold(request *restful.Request, response *restful.Response) {
	supply, err := s.ledger.GoldSupply()
	if err != nil {
		writeError(response, statusOf(err), err)
		return
	}
	reserve, err := s.ledger.Reserve()
	if err != nil {
		writeError(response, statusOf(err), err)
		return
	}
	writeEntity(response, &GoldResponse{
		Name:     currency.Name,
		Symbol:   currency.Symbol,
		Decimals: currency.Decimals,
		Supply:   supply.String(),
		Reserve:  reserve.String(),
	})
}

func (s *Service) QueryAllowance(request *restful.Request, response *restful.Response) {
	allowance, err := s.ledger.GoldAllowance(request.PathParameter("owner"), request.PathParameter("spender"))
	if err != nil {
		writeError(response, statusOf(err), err)
		return
	}
	writeAmount(response, allowance)
}

func (s *Service) QueryPack(request *restful.Request, response *restful.Response) {
	id, err := pathUint(request, "id")
	if err != nil {
		writeError(response, http.StatusBadRequest, err)
		return
	}
	supply, err := s.ledger.PackSupply(id)
	if err != nil {
		writeError(response, statusOf(err), err)
		return
	}
	uri, err := s.ledger.PackURI(id)
	if err != nil {
		writeError(response, statusOf(err), err)
		return
	}
	writeEntity(response, &PackResponse{AssetID: id, Supply: supply, URI: uri})
}

func (s *Service) QueryPackBalance(request *restful.Request, response *restful.Response) {
	id, err := pathUint(request, "id")
	if err != nil {
		writeError(response, http.StatusBadRequest, err)
		return
	}
	bal, err := s.ledger.PackBalance(request.PathParameter("owner"), id)
	if err != nil {
		writeError(response, statusOf(err), err)
		return
	}
	writeEntity(response, map[string]uint64{"balance": bal})
}

func (s *Service) QueryPackOperator(request *restful.Request, response *restful.Response) {
	ok, err := s.ledger.IsPackApprovedForAll(request.PathParameter("owner"), request.PathParameter("operator"))
	if err != nil {
		writeError(response, statusOf(err), err)
		return
	}
	writeEntity(response, map[string]bool{"approved": ok})
}

func (s *Service) QueryMintedRelics(request *restful.Request, response *restful.Response) {
	ids, err := s.ledger.MintedRelics()
	if err != nil {
		writeError(response, statusOf(err), err)
		return
	}
	writeEntity(response, ids)
}

func (s *Service) QueryRelic(request *restful.Request, response *restful.Response) {
	id, err := pathUint(request, "id")
	if err != nil {
		writeError(response, http.StatusBadRequest, err)
		return
	}
	r, err := s.ledger.Relic(id)
	if err != nil {
		writeError(response, statusOf(err), err)
		return
	}
	writeEntity(response, &RelicResponse{AssetID: r.AssetID, Owner: r.Owner, URI: r.URI, Approved: r.Approved})
}

func (s *Service) QueryRelicOperator(request *restful.Request, response *restful.Response) {
	ok, err := s.ledger.IsRelicApprovedForAll(request.PathParameter("owner"), request.PathParameter("operator"))
	if err != nil {
		writeError(response, statusOf(err), err)
		return
	}
	writeEntity(response, map[string]bool{"approved": ok})
}

func (s *Service) QueryMarket(request *restful.Request, response *restful.Response) {
	kind := market.Kind(request.PathParameter("kind"))
	if kind != market.KindPack && kind != market.KindRelic {
		writeError(response, http.StatusNotFound, fmt.Errorf("%q: %w", kind, types.ErrUnknownMarket))
		return
	}
	fees, err := s.ledger.AccumulatedFees(kind)
	if err != nil {
		writeError(response, statusOf(err), err)
		return
	}
	writeEntity(response, &MarketResponse{
		Kind:       string(kind),
		Operator:   s.ledger.MarketOperator(kind),
		Settlement: string(s.ledger.Settlement(kind)),
		Fees:       fees.String(),
	})
}

func (s *Service) QueryActivePackListings(request *restful.Request, response *restful.Response) {
	listings, err := s.ledger.ActivePackListings()
	if err != nil {
		writeError(response, statusOf(err), err)
		return
	}
	out := make([]*PackListingResponse, 0, len(listings))
	for _, l := range listings {
		out = append(out, packListing(l))
	}
	writeEntity(response, out)
}

func (s *Service) QueryPackListing(request *restful.Request, response *restful.Response) {
	id, err := pathUint(request, "id")
	if err != nil {
		writeError(response, http.StatusBadRequest, err)
		return
	}
	l, err := s.ledger.PackListing(request.PathParameter("seller"), id)
	if err != nil {
		writeError(response, statusOf(err), err)
		return
	}
	writeEntity(response, packListing(l))
}

func (s *Service) QueryActiveRelicListings(request *restful.Request, response *restful.Response) {
	listings, err := s.ledger.ActiveRelicListings()
	if err != nil {
		writeError(response, statusOf(err), err)
		return
	}
	out := make([]*RelicListingResponse, 0, len(listings))
	for _, l := range listings {
		out = append(out, relicListing(l))
	}
	writeEntity(response, out)
}

func (s *Service) QueryRelicListing(request *restful.Request, response *restful.Response) {
	id, err := pathUint(request, "id")
	if err != nil {
		writeError(response, http.StatusBadRequest, err)
		return
	}
	l, err := s.ledger.RelicListing(id)
	if err != nil {
		writeError(response, statusOf(err), err)
		return
	}
	writeEntity(response, relicListing(l))
}

func packListing(l *types.PackListing) *PackListingResponse {
	return &PackListingResponse{
		Seller:    l.Seller,
		AssetID:   l.AssetID,
		Amount:    l.Amount,
		UnitPrice: l.UnitPrice.String(),
		Active:    l.Active,
	}
}

func relicListing(l *types.RelicListing) *RelicListingResponse {
	return &RelicListingResponse{
		AssetID: l.AssetID,
		Seller:  l.Seller,
		Price:   l.Price.String(),
		Active:  l.Active,
	}
}

func pathUint(request *restful.Request, name string) (uint64, error) {
	return strconv.ParseUint(request.PathParameter(name), 10, 64)
}

func queryUint(request *restful.Request, name string, def uint64) (uint64, error) {
	v := request.QueryParameter(name)
	if v == "" {
		return def, nil
	}
	return strconv.ParseUint(v, 10, 64)
}

func writeAmount(response *restful.Response, v *big.Int) {
	writeEntity(response, map[string]string{"amount": v.String()})
}

func writeEntity(response *restful.Response, v interface{}) {
	if err := response.WriteHeaderAndEntity(http.StatusOK, v); err != nil {
		log.Errorf("write response failed: %v", err)
	}
}

func writeError(response *restful.Response, status int, err error) {
	if werr := response.WriteHeaderAndEntity(status, &ErrorResponse{Error: err.Error()}); werr != nil {
		log.Errorf("write error response failed: %v", werr)
	}
}

// statusOf maps ledger errors to http status codes.
func statusOf(err error) int {
	switch {
	case errors.Is(err, types.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, types.ErrRelicNotExist):
		return http.StatusNotFound
	case errors.Is(err, types.ErrInvalidAmount),
		errors.Is(err, types.ErrInvalidAccountID),
		errors.Is(err, types.ErrWrongAmount),
		errors.Is(err, types.ErrUnknownRole),
		errors.Is(err, types.ErrUnknownMarket),
		errors.Is(err, op.ErrUnknownOp),
		errors.Is(err, op.ErrNoCaller):
		return http.StatusBadRequest
	case errors.Is(err, types.ErrInsufficientBalance),
		errors.Is(err, types.ErrInsufficientAllowance),
		errors.Is(err, types.ErrNotApproved),
		errors.Is(err, types.ErrNoActiveListing),
		errors.Is(err, types.ErrListingNotActive),
		errors.Is(err, types.ErrNotOwner),
		errors.Is(err, types.ErrSelfPurchase),
		errors.Is(err, types.ErrNothingToWithdraw),
		errors.Is(err, types.ErrBalanceOverflow):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

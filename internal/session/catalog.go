// Package session holds the signed-in user's view of the marketplace: the
// ranked catalog and the location polling that keeps it current.
package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"bloommarket/internal/domain/entity"
	"bloommarket/internal/domain/geo"
	"bloommarket/internal/domain/service"
	"bloommarket/pkg/errors"
	"bloommarket/pkg/logger"
)

// DefaultRefetchThresholdKm is how far the user must move before the catalog
// is fetched again instead of only being re-ranked.
const DefaultRefetchThresholdKm = 0.5

type CommunityAction string

const (
	ActionJoin  CommunityAction = "join"
	ActionLeave CommunityAction = "leave"
)

// DataService is the remote marketplace the catalog reads from and writes to.
type DataService interface {
	FetchListings(ctx context.Context, ref entity.Coordinate) ([]*entity.Plant, error)
	FetchCommunities(ctx context.Context, ref entity.Coordinate) ([]*entity.Community, error)
	FetchOrders(ctx context.Context, userID string) ([]*entity.Order, error)

	SubmitListing(ctx context.Context, plant *entity.Plant) (*entity.Plant, error)
	SubmitCommunity(ctx context.Context, community *entity.Community) (*entity.Community, error)
	// SubmitCommunityAction may return a nil community when the service has
	// nothing newer than the local copy.
	SubmitCommunityAction(ctx context.Context, communityID string, action CommunityAction) (*entity.Community, error)
	SubmitOrder(ctx context.Context, order *entity.Order) (*entity.Order, error)
}

type ListingInput struct {
	Title            string                 `json:"title" validate:"required"`
	Description      string                 `json:"description"`
	Price            float64                `json:"price" validate:"gte=0"`
	Currency         string                 `json:"currency,omitempty"`
	Image            string                 `json:"image"`
	GrowthConditions string                 `json:"growthConditions"`
	PaymentMethods   []entity.PaymentMethod `json:"paymentMethods"`
}

type CommunityInput struct {
	Name    string               `json:"name" validate:"required"`
	Type    entity.CommunityType `json:"type"`
	Purpose string               `json:"purpose"`
	Bio     string               `json:"bio"`
}

// pendingWrite re-applies a local mutation to freshly fetched collections.
// Once the service has accepted it, any refresh started after seq already
// sees it. Writes the service rejected are kept for the whole session.
type pendingWrite struct {
	seq   uint64
	local bool
	apply func()
}

// Catalog is the session-owned set of listings, communities and orders,
// ranked against the latest reference coordinate. It is safe for concurrent
// use.
type Catalog struct {
	data      DataService
	threshold float64

	mu          sync.RWMutex
	seq         uint64
	userID      string
	ref         *entity.Coordinate
	fetchedAt   *entity.Coordinate
	plants      []geo.Ranked[*entity.Plant]
	communities []geo.Ranked[*entity.Community]
	orders      []*entity.Order
	pending     []*pendingWrite
}

func NewCatalog(data DataService, thresholdKm float64) *Catalog {
	if thresholdKm <= 0 {
		thresholdKm = DefaultRefetchThresholdKm
	}
	return &Catalog{
		data:      data,
		threshold: thresholdKm,
	}
}

// SetUser scopes order fetches to userID.
func (c *Catalog) SetUser(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.userID = userID
}

// Clear empties the catalog and invalidates any refresh still in flight.
func (c *Catalog) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.seq++
	c.userID = ""
	c.ref = nil
	c.fetchedAt = nil
	c.plants = nil
	c.communities = nil
	c.orders = nil
	c.pending = nil
}

// Refresh fetches everything again and ranks it against ref. Only the most
// recently started refresh is applied; older ones that finish later are
// dropped. On failure the previous data is kept and FETCH_FAILED returned.
func (c *Catalog) Refresh(ctx context.Context, ref entity.Coordinate) (err error) {
	defer logger.Time(ctx, "catalog.refresh")(&err)

	if err := geo.ValidateCoordinate(ref); err != nil {
		return err
	}

	c.mu.Lock()
	c.seq++
	seq := c.seq
	userID := c.userID
	c.mu.Unlock()

	var (
		plants      []*entity.Plant
		communities []*entity.Community
		orders      []*entity.Order
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		plants, err = c.data.FetchListings(gctx, ref)
		return err
	})
	g.Go(func() error {
		var err error
		communities, err = c.data.FetchCommunities(gctx, ref)
		return err
	})
	if userID != "" {
		g.Go(func() error {
			var err error
			orders, err = c.data.FetchOrders(gctx, userID)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		logger.Warn("catalog refresh #%d failed, keeping previous data: %v", seq, err)
		return errors.FetchFailed("Failed to load nearby plants and communities", err)
	}

	rankedPlants, err := geo.Rank(ref, validOnly(plants))
	if err != nil {
		return err
	}
	rankedCommunities, err := geo.Rank(ref, validOnly(communities))
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if seq != c.seq {
		logger.Debug("discarding stale catalog refresh #%d (latest #%d)", seq, c.seq)
		return nil
	}

	at := ref
	c.ref = &at
	c.fetchedAt = &at
	c.plants = rankedPlants
	c.communities = rankedCommunities
	c.orders = orders
	c.replayPending(seq)
	return nil
}

// record remembers a mutation so a refresh already in flight does not drop
// it. Must be called with mu held.
func (c *Catalog) record(apply func()) *pendingWrite {
	w := &pendingWrite{seq: c.seq, apply: apply}
	c.pending = append(c.pending, w)
	return w
}

// settle marks w as accepted by the service, or as local only when err is set.
func (c *Catalog) settle(w *pendingWrite, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		w.local = true
		return
	}
	w.seq = c.seq
}

// replayPending re-applies writes the refresh seq may not have seen and
// forgets accepted ones older than it. Must be called with mu held.
func (c *Catalog) replayPending(seq uint64) {
	kept := c.pending[:0]
	for _, w := range c.pending {
		if !w.local && w.seq < seq {
			continue
		}
		w.apply()
		kept = append(kept, w)
	}
	c.pending = kept
}

// UpdateLocation re-ranks the current data against ref and refetches when
// ref is more than the threshold away from the last successful fetch.
func (c *Catalog) UpdateLocation(ctx context.Context, ref entity.Coordinate) error {
	if err := geo.ValidateCoordinate(ref); err != nil {
		return err
	}

	c.mu.Lock()
	at := ref
	c.ref = &at
	c.plants = rerank(ref, c.plants)
	c.communities = rerank(ref, c.communities)

	refetch := c.fetchedAt == nil
	if !refetch {
		moved, err := geo.Distance(*c.fetchedAt, ref)
		refetch = err != nil || moved > c.threshold
	}
	c.mu.Unlock()

	if !refetch {
		return nil
	}
	return c.Refresh(ctx, ref)
}

// CreateListing adds a listing at the owner's location and submits it.
func (c *Catalog) CreateListing(ctx context.Context, input ListingInput, owner Identity, ownerLocation *entity.Coordinate) (*entity.Plant, error) {
	if ownerLocation == nil {
		return nil, errors.LocationRequired()
	}
	if err := geo.ValidateCoordinate(*ownerLocation); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, errors.BadRequest("Title is required", nil)
	}
	if input.Price < 0 {
		return nil, errors.BadRequest("Price must not be negative", nil)
	}

	methods := input.PaymentMethods
	if len(methods) == 0 {
		methods = []entity.PaymentMethod{entity.PaymentCOD, entity.PaymentPickup}
	}
	for _, m := range methods {
		if !m.Valid() {
			return nil, errors.BadRequest(fmt.Sprintf("Unknown payment method %q", m), nil)
		}
	}

	plant := &entity.Plant{
		ID:               newLocalID("plant"),
		UserID:           owner.UserID,
		SellerName:       owner.DisplayName,
		SellerPhotoURL:   owner.PhotoURL,
		Title:            strings.TrimSpace(input.Title),
		Description:      input.Description,
		Price:            input.Price,
		Currency:         input.Currency,
		Image:            input.Image,
		GrowthConditions: input.GrowthConditions,
		PaymentMethods:   methods,
		Location:         *ownerLocation,
		CreatedAt:        time.Now(),
	}

	current := plant
	addPlant := func() {
		if indexOf(c.plants, current.ID) < 0 {
			c.plants = append([]geo.Ranked[*entity.Plant]{{Item: current, DistanceKm: c.distanceFromRef(current.Location)}}, c.plants...)
		}
	}

	c.mu.Lock()
	addPlant()
	w := c.record(addPlant)
	c.mu.Unlock()

	saved, err := c.data.SubmitListing(ctx, plant)
	c.settle(w, err)
	if err != nil {
		logger.Warn("submit listing %s failed, keeping local copy: %v", plant.ID, err)
		return plant, nil
	}
	if saved == nil {
		return plant, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.plants = replaceRanked(c.plants, plant.ID, saved)
	current = saved
	return saved, nil
}

// CreateCommunity adds a community at the creator's location with the
// creator as its only member.
func (c *Catalog) CreateCommunity(ctx context.Context, input CommunityInput, creator Identity, creatorLocation *entity.Coordinate) (*entity.Community, error) {
	if creatorLocation == nil {
		return nil, errors.LocationRequired()
	}
	if err := geo.ValidateCoordinate(*creatorLocation); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, errors.BadRequest("Name is required", nil)
	}

	kind := input.Type
	if kind == "" {
		kind = entity.CommunityPermanent
	}
	if kind != entity.CommunityPermanent && kind != entity.CommunityTemporary {
		return nil, errors.BadRequest("Type must be one of: Permanent, Temporary", nil)
	}

	community := &entity.Community{
		ID:        newLocalID("comm"),
		CreatorID: creator.UserID,
		Name:      strings.TrimSpace(input.Name),
		Type:      kind,
		Purpose:   input.Purpose,
		Bio:       input.Bio,
		Members:   []string{creator.UserID},
		Location:  *creatorLocation,
		CreatedAt: time.Now(),
	}

	current := community
	addCommunity := func() {
		if indexOf(c.communities, current.ID) < 0 {
			c.communities = append([]geo.Ranked[*entity.Community]{{Item: current, DistanceKm: c.distanceFromRef(current.Location)}}, c.communities...)
		}
	}

	c.mu.Lock()
	addCommunity()
	w := c.record(addCommunity)
	c.mu.Unlock()

	saved, err := c.data.SubmitCommunity(ctx, community)
	c.settle(w, err)
	if err != nil {
		logger.Warn("submit community %s failed, keeping local copy: %v", community.ID, err)
		return community, nil
	}
	if saved == nil {
		return community, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.communities = replaceRanked(c.communities, community.ID, saved)
	current = saved
	return saved, nil
}

// JoinCommunity adds userID to the community. Joining twice changes nothing.
func (c *Catalog) JoinCommunity(ctx context.Context, communityID, userID string) error {
	return c.changeMembership(ctx, communityID, userID, ActionJoin)
}

// LeaveCommunity removes userID. Leaving a community the user is not in
// changes nothing.
func (c *Catalog) LeaveCommunity(ctx context.Context, communityID, userID string) error {
	return c.changeMembership(ctx, communityID, userID, ActionLeave)
}

func (c *Catalog) changeMembership(ctx context.Context, communityID, userID string, action CommunityAction) error {
	c.mu.Lock()
	idx := indexOf(c.communities, communityID)
	if idx < 0 {
		c.mu.Unlock()
		return errors.CommunityNotFound(communityID)
	}

	member := c.communities[idx].Item.HasMember(userID)
	if (action == ActionJoin && member) || (action == ActionLeave && !member) {
		c.mu.Unlock()
		return nil
	}

	apply := func() {
		i := indexOf(c.communities, communityID)
		if i < 0 {
			return
		}
		current := c.communities[i].Item
		switch {
		case action == ActionJoin && !current.HasMember(userID):
			c.communities[i].Item = current.WithMember(userID)
		case action == ActionLeave && current.HasMember(userID):
			c.communities[i].Item = current.WithoutMember(userID)
		}
	}
	apply()
	w := c.record(apply)
	c.mu.Unlock()

	saved, err := c.data.SubmitCommunityAction(ctx, communityID, action)
	c.settle(w, err)
	if err != nil {
		logger.Warn("%s community %s failed, keeping local change: %v", action, communityID, err)
		return nil
	}
	if saved != nil {
		c.mu.Lock()
		c.communities = replaceRanked(c.communities, communityID, saved)
		c.mu.Unlock()
	}
	return nil
}

// PlaceOrder records a pending order for listingID and submits it.
func (c *Catalog) PlaceOrder(ctx context.Context, buyer Identity, listingID string, method entity.PaymentMethod, address string) (*entity.Order, error) {
	req := service.OrderRequest{
		BuyerID:       buyer.UserID,
		PlantID:       listingID,
		PaymentMethod: method,
		Address:       address,
	}

	c.mu.Lock()
	var plant *entity.Plant
	if idx := indexOf(c.plants, listingID); idx >= 0 {
		plant = c.plants[idx].Item
	}
	if err := service.ValidateOrder(plant, req); err != nil {
		c.mu.Unlock()
		return nil, err
	}

	order := service.NewOrder(plant, req)
	order.ID = newLocalID("order")
	order.CreatedAt = time.Now()

	current := order
	addOrder := func() {
		for _, o := range c.orders {
			if o.ID == current.ID {
				return
			}
		}
		c.orders = append([]*entity.Order{current}, c.orders...)
	}
	addOrder()
	w := c.record(addOrder)
	c.mu.Unlock()

	saved, err := c.data.SubmitOrder(ctx, order)
	c.settle(w, err)
	if err != nil {
		logger.Warn("submit order %s failed, keeping local copy: %v", order.ID, err)
		return order, nil
	}
	if saved == nil {
		return order, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for i, o := range c.orders {
		if o.ID == order.ID {
			c.orders[i] = saved
			break
		}
	}
	current = saved
	return saved, nil
}

// Views. Each returns a fresh slice.

func (c *Catalog) Plants() []geo.Ranked[*entity.Plant] {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]geo.Ranked[*entity.Plant](nil), c.plants...)
}

func (c *Catalog) Communities() []geo.Ranked[*entity.Community] {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]geo.Ranked[*entity.Community](nil), c.communities...)
}

func (c *Catalog) Orders() []*entity.Order {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]*entity.Order(nil), c.orders...)
}

// SearchPlants keeps listings whose title or description contains query,
// case-insensitively, in ranked order. A blank query returns everything.
func (c *Catalog) SearchPlants(query string) []geo.Ranked[*entity.Plant] {
	q := strings.ToLower(strings.TrimSpace(query))
	return c.filterPlants(func(p *entity.Plant) bool {
		return q == "" ||
			strings.Contains(strings.ToLower(p.Title), q) ||
			strings.Contains(strings.ToLower(p.Description), q)
	})
}

func (c *Catalog) MyPlants(userID string) []geo.Ranked[*entity.Plant] {
	return c.filterPlants(func(p *entity.Plant) bool { return p.UserID == userID })
}

func (c *Catalog) MyCommunities(userID string) []geo.Ranked[*entity.Community] {
	return c.filterCommunities(func(cm *entity.Community) bool { return cm.HasMember(userID) })
}

// NearbyCommunities are the ranked communities userID has not joined.
func (c *Catalog) NearbyCommunities(userID string) []geo.Ranked[*entity.Community] {
	return c.filterCommunities(func(cm *entity.Community) bool { return !cm.HasMember(userID) })
}

// Reference is the coordinate the current ranking was computed against.
func (c *Catalog) Reference() *entity.Coordinate {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.ref == nil {
		return nil
	}
	ref := *c.ref
	return &ref
}

// Fetched reports whether a refresh has succeeded since the last Clear.
func (c *Catalog) Fetched() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fetchedAt != nil
}

func (c *Catalog) filterPlants(keep func(*entity.Plant) bool) []geo.Ranked[*entity.Plant] {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := []geo.Ranked[*entity.Plant]{}
	for _, r := range c.plants {
		if keep(r.Item) {
			out = append(out, r)
		}
	}
	return out
}

func (c *Catalog) filterCommunities(keep func(*entity.Community) bool) []geo.Ranked[*entity.Community] {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := []geo.Ranked[*entity.Community]{}
	for _, r := range c.communities {
		if keep(r.Item) {
			out = append(out, r)
		}
	}
	return out
}

// distanceFromRef must be called with mu held. Without a reference the new
// item sits at distance zero.
func (c *Catalog) distanceFromRef(loc entity.Coordinate) float64 {
	if c.ref == nil {
		return 0
	}
	d, err := geo.Distance(*c.ref, loc)
	if err != nil {
		return 0
	}
	return d
}

func idOf(v any) string {
	switch x := v.(type) {
	case *entity.Plant:
		return x.ID
	case *entity.Community:
		return x.ID
	}
	return ""
}

func indexOf[T geo.Located](ranked []geo.Ranked[T], id string) int {
	for i, r := range ranked {
		if idOf(r.Item) == id {
			return i
		}
	}
	return -1
}

// replaceRanked swaps the item with localID for saved in place.
func replaceRanked[T geo.Located](ranked []geo.Ranked[T], localID string, saved T) []geo.Ranked[T] {
	if idx := indexOf(ranked, localID); idx >= 0 {
		ranked[idx].Item = saved
	}
	return ranked
}

func rerank[T geo.Located](ref entity.Coordinate, ranked []geo.Ranked[T]) []geo.Ranked[T] {
	if len(ranked) == 0 {
		return ranked
	}
	out, err := geo.Rank(ref, geo.Items(ranked))
	if err != nil {
		logger.Warn("re-rank failed, keeping previous order: %v", err)
		return ranked
	}
	return out
}

// validOnly drops items whose coordinate cannot be ranked.
func validOnly[T geo.Located](items []T) []T {
	valid, invalid := geo.Partition(items)
	for _, item := range invalid {
		logger.Warn("skipping %s: invalid coordinate %v", idOf(item), item.GetLocation())
	}
	return valid
}

func newLocalID(prefix string) string {
	return prefix + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/amenelu/mekina/internal/domain"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Fatal(string, ...interface{}) {}

// fakeAuctionStore keeps auctions, cars and bids in memory. PlaceBid holds a
// mutex for the whole validate-insert-commit sequence, matching the row lock
// semantics of the real store.
type fakeAuctionStore struct {
	mu       sync.Mutex
	auctions map[string]*domain.Auction
	cars     map[string]*domain.Car
	bids     map[string][]*domain.Bid
}

func newFakeAuctionStore() *fakeAuctionStore {
	return &fakeAuctionStore{
		auctions: make(map[string]*domain.Auction),
		cars:     make(map[string]*domain.Car),
		bids:     make(map[string][]*domain.Bid),
	}
}

func (s *fakeAuctionStore) addCar(car *domain.Car) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cars[car.ID] = car
}

func (s *fakeAuctionStore) CreateAuction(_ context.Context, auction *domain.Auction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *auction
	s.auctions[auction.ID] = &copied
	return nil
}

func (s *fakeAuctionStore) GetAuction(_ context.Context, auctionID string) (*domain.Auction, *domain.Car, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	auction, ok := s.auctions[auctionID]
	if !ok {
		return nil, nil, domain.ErrNotFound
	}
	car, ok := s.cars[auction.CarID]
	if !ok {
		return nil, nil, domain.ErrNotFound
	}
	auctionCopy, carCopy := *auction, *car
	return &auctionCopy, &carCopy, nil
}

func (s *fakeAuctionStore) GetAuctionByCar(_ context.Context, carID string) (*domain.Auction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, auction := range s.auctions {
		if auction.CarID == carID {
			copied := *auction
			return &copied, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *fakeAuctionStore) matches(auction *domain.Auction, car *domain.Car, filter domain.AuctionFilter) bool {
	if filter.ApprovedOnly && !car.IsApproved {
		return false
	}
	if !filter.OpenAfter.IsZero() && !auction.EndTime.After(filter.OpenAfter) {
		return false
	}
	if filter.ExcludeID != "" && auction.ID == filter.ExcludeID {
		return false
	}
	if filter.Make != "" && !strings.EqualFold(car.Make, filter.Make) {
		return false
	}
	if filter.Model != "" && !strings.EqualFold(car.Model, filter.Model) {
		return false
	}
	if filter.BodyType != "" && !strings.EqualFold(car.BodyType, filter.BodyType) {
		return false
	}
	if filter.Condition != "" && !strings.EqualFold(car.Condition, filter.Condition) {
		return false
	}
	if filter.Transmission != "" && !strings.EqualFold(car.Transmission, filter.Transmission) {
		return false
	}
	if filter.Drivetrain != "" && !strings.EqualFold(car.Drivetrain, filter.Drivetrain) {
		return false
	}
	if filter.FuelType != "" && !strings.EqualFold(car.FuelType, filter.FuelType) {
		return false
	}
	if filter.MaxPrice > 0 && auction.CurrentPrice > filter.MaxPrice {
		return false
	}
	if filter.MaxMileage > 0 && car.Mileage > filter.MaxMileage {
		return false
	}
	return true
}

func (s *fakeAuctionStore) QueryAuctions(_ context.Context, filter domain.AuctionFilter) ([]*domain.AuctionSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var results []*domain.AuctionSummary
	for _, auction := range s.auctions {
		car := s.cars[auction.CarID]
		if car == nil || !s.matches(auction, car, filter) {
			continue
		}
		results = append(results, &domain.AuctionSummary{Auction: *auction, Car: *car})
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].Auction.EndTime.Before(results[j].Auction.EndTime)
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(results) {
			return nil, nil
		}
		results = results[filter.Offset:]
	}
	if filter.Limit > 0 && len(results) > filter.Limit {
		results = results[:filter.Limit]
	}
	return results, nil
}

func (s *fakeAuctionStore) CountAuctions(ctx context.Context, filter domain.AuctionFilter) (int, error) {
	filter.Limit = 0
	filter.Offset = 0
	results, err := s.QueryAuctions(ctx, filter)
	return len(results), err
}

func (s *fakeAuctionStore) AllAuctions(_ context.Context) ([]*domain.AuctionSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var results []*domain.AuctionSummary
	for _, auction := range s.auctions {
		car := s.cars[auction.CarID]
		if car == nil {
			continue
		}
		results = append(results, &domain.AuctionSummary{Auction: *auction, Car: *car})
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].Auction.EndTime.After(results[j].Auction.EndTime)
	})
	return results, nil
}

func (s *fakeAuctionStore) highestLocked(auctionID string) *domain.Bid {
	bids := s.bids[auctionID]
	if len(bids) == 0 {
		return nil
	}
	best := bids[0]
	for _, b := range bids[1:] {
		if b.Amount > best.Amount || (b.Amount == best.Amount && b.PlacedAt.Before(best.PlacedAt)) {
			best = b
		}
	}
	return best
}

func (s *fakeAuctionStore) PlaceBid(_ context.Context, auctionID string, validate func(*domain.Auction, *domain.Bid) (*domain.Bid, error)) (*domain.Bid, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	auction, ok := s.auctions[auctionID]
	if !ok {
		return nil, domain.ErrNotFound
	}

	bid, err := validate(auction, s.highestLocked(auctionID))
	if err != nil {
		return nil, err
	}

	s.bids[auctionID] = append(s.bids[auctionID], bid)
	auction.CurrentPrice = bid.Amount
	auction.UpdatedAt = bid.PlacedAt
	return bid, nil
}

func (s *fakeAuctionStore) HighestBid(_ context.Context, auctionID string) (*domain.Bid, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.highestLocked(auctionID), nil
}

func (s *fakeAuctionStore) ListBids(_ context.Context, auctionID string) ([]*domain.Bid, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bids := append([]*domain.Bid(nil), s.bids[auctionID]...)
	sort.Slice(bids, func(i, j int) bool {
		return bids[i].PlacedAt.After(bids[j].PlacedAt)
	})
	return bids, nil
}

func (s *fakeAuctionStore) CloseDueAuctions(_ context.Context, now time.Time) ([]*domain.Auction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var closed []*domain.Auction
	for _, auction := range s.auctions {
		if auction.Status != domain.AuctionOpen || auction.EndTime.After(now) {
			continue
		}
		auction.Status = domain.AuctionClosed
		if highest := s.highestLocked(auction.ID); highest != nil {
			auction.WinnerID = highest.UserID
		}
		copied := *auction
		closed = append(closed, &copied)
	}
	return closed, nil
}

func (s *fakeAuctionStore) UpdateAuctionTerms(_ context.Context, auctionID string, startPrice float64, endTime time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	auction, ok := s.auctions[auctionID]
	if !ok {
		return domain.ErrNotFound
	}
	auction.StartPrice = startPrice
	if highest := s.highestLocked(auctionID); highest != nil {
		auction.CurrentPrice = highest.Amount
	} else {
		auction.CurrentPrice = startPrice
	}
	auction.EndTime = endTime
	return nil
}

type fakeStateCache struct {
	mu     sync.Mutex
	prices map[string]float64
	status map[string]domain.AuctionStatus
}

func newFakeStateCache() *fakeStateCache {
	return &fakeStateCache{
		prices: make(map[string]float64),
		status: make(map[string]domain.AuctionStatus),
	}
}

func (c *fakeStateCache) SetAuctionState(_ context.Context, auctionID string, currentPrice float64, status domain.AuctionStatus) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prices[auctionID] = currentPrice
	c.status[auctionID] = status
	return nil
}

func (c *fakeStateCache) GetAuctionState(_ context.Context, auctionID string) (float64, domain.AuctionStatus, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	price, ok := c.prices[auctionID]
	if !ok {
		return 0, domain.AuctionOpen, domain.ErrNotFound
	}
	return price, c.status[auctionID], nil
}

type fakeEventPublisher struct {
	mu     sync.Mutex
	events []*domain.Event
}

func (p *fakeEventPublisher) PublishEvent(_ context.Context, event *domain.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *fakeEventPublisher) published() []*domain.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*domain.Event(nil), p.events...)
}

type sentNotification struct {
	UserID  string
	Message string
	Link    string
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
}

func (n *fakeNotifier) Notify(_ context.Context, userID, message, link string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentNotification{UserID: userID, Message: message, Link: link})
	return nil
}

type fakeCarStore struct {
	mu   sync.Mutex
	cars map[string]*domain.Car
}

func newFakeCarStore() *fakeCarStore {
	return &fakeCarStore{cars: make(map[string]*domain.Car)}
}

func (s *fakeCarStore) CreateCar(_ context.Context, car *domain.Car) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *car
	s.cars[car.ID] = &copied
	return nil
}

func (s *fakeCarStore) GetCar(_ context.Context, carID string) (*domain.Car, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	car, ok := s.cars[carID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *car
	return &copied, nil
}

func (s *fakeCarStore) CarsByOwner(_ context.Context, ownerID string) ([]*domain.Car, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var cars []*domain.Car
	for _, car := range s.cars {
		if car.OwnerID == ownerID {
			copied := *car
			cars = append(cars, &copied)
		}
	}
	return cars, nil
}

func (s *fakeCarStore) PendingApproval(_ context.Context) ([]*domain.Car, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var cars []*domain.Car
	for _, car := range s.cars {
		if !car.IsApproved {
			copied := *car
			cars = append(cars, &copied)
		}
	}
	return cars, nil
}

func (s *fakeCarStore) ApproveCar(_ context.Context, carID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	car, ok := s.cars[carID]
	if !ok {
		return domain.ErrNotFound
	}
	car.IsApproved = true
	return nil
}

func (s *fakeCarStore) CountPendingApproval(ctx context.Context) (int, error) {
	pending, err := s.PendingApproval(ctx)
	return len(pending), err
}

type fakeUserStore struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]*domain.User)}
}

func (s *fakeUserStore) addUser(user *domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID] = user
}

func (s *fakeUserStore) GetUser(_ context.Context, userID string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (s *fakeUserStore) GetUserByToken(_ context.Context, token string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if "token-"+user.ID == token {
			copied := *user
			return &copied, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *fakeUserStore) UpdateUser(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.ID]; !ok {
		return domain.ErrNotFound
	}
	copied := *user
	s.users[user.ID] = &copied
	return nil
}

func (s *fakeUserStore) CountUsers(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users), nil
}

type fakeRentalStore struct {
	mu      sync.Mutex
	rentals []*domain.RentalListing
}

func (s *fakeRentalStore) CreateRental(_ context.Context, rental *domain.RentalListing) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *rental
	s.rentals = append(s.rentals, &copied)
	return nil
}

func (s *fakeRentalStore) AvailableRentals(_ context.Context) ([]*domain.RentalListing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var available []*domain.RentalListing
	for _, rental := range s.rentals {
		if rental.IsAvailable {
			copied := *rental
			available = append(available, &copied)
		}
	}
	return available, nil
}

type fakeRequestStore struct {
	mu       sync.Mutex
	requests map[string]*domain.CarRequest
	bids     map[string]*domain.DealerBid
	points   map[string]int
}

func newFakeRequestStore() *fakeRequestStore {
	return &fakeRequestStore{
		requests: make(map[string]*domain.CarRequest),
		bids:     make(map[string]*domain.DealerBid),
		points:   make(map[string]int),
	}
}

func (s *fakeRequestStore) CreateRequest(_ context.Context, request *domain.CarRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *request
	s.requests[request.ID] = &copied
	return nil
}

func (s *fakeRequestStore) GetRequest(_ context.Context, requestID string) (*domain.CarRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	request, ok := s.requests[requestID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *request
	return &copied, nil
}

func (s *fakeRequestStore) ActiveRequests(_ context.Context) ([]*domain.CarRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var active []*domain.CarRequest
	for _, request := range s.requests {
		if request.Status == domain.RequestActive {
			copied := *request
			active = append(active, &copied)
		}
	}
	return active, nil
}

func (s *fakeRequestStore) PlaceDealerBid(_ context.Context, bid *domain.DealerBid) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.points[bid.DealerID] <= 0 {
		return domain.ErrNoPoints
	}
	s.points[bid.DealerID]--
	copied := *bid
	s.bids[bid.ID] = &copied
	return nil
}

func (s *fakeRequestStore) BidsForRequest(_ context.Context, requestID string) ([]*domain.DealerBid, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var bids []*domain.DealerBid
	for _, bid := range s.bids {
		if bid.RequestID == requestID {
			copied := *bid
			bids = append(bids, &copied)
		}
	}
	sort.Slice(bids, func(i, j int) bool { return bids[i].Price < bids[j].Price })
	return bids, nil
}

func (s *fakeRequestStore) GetDealerBid(_ context.Context, bidID string) (*domain.DealerBid, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	bid, ok := s.bids[bidID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *bid
	return &copied, nil
}

func (s *fakeRequestStore) AcceptBid(_ context.Context, requestID, bidID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	request, ok := s.requests[requestID]
	if !ok {
		return domain.ErrNotFound
	}
	if request.Status != domain.RequestActive {
		return domain.ErrConflict
	}
	request.Status = domain.RequestCompleted
	request.AcceptedBidID = bidID
	return nil
}

type fakeTradeInStore struct {
	mu       sync.Mutex
	tradeIns map[string]*domain.TradeIn
}

func newFakeTradeInStore() *fakeTradeInStore {
	return &fakeTradeInStore{tradeIns: make(map[string]*domain.TradeIn)}
}

func (s *fakeTradeInStore) CreateTradeIn(_ context.Context, tradeIn *domain.TradeIn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *tradeIn
	s.tradeIns[tradeIn.ID] = &copied
	return nil
}

func (s *fakeTradeInStore) GetTradeIn(_ context.Context, tradeInID string) (*domain.TradeIn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tradeIn, ok := s.tradeIns[tradeInID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *tradeIn
	return &copied, nil
}

func (s *fakeTradeInStore) TradeInsForUser(_ context.Context, userID string) ([]*domain.TradeIn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []*domain.TradeIn
	for _, tradeIn := range s.tradeIns {
		if tradeIn.UserID == userID {
			copied := *tradeIn
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (s *fakeTradeInStore) AllTradeIns(_ context.Context) ([]*domain.TradeIn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []*domain.TradeIn
	for _, tradeIn := range s.tradeIns {
		copied := *tradeIn
		result = append(result, &copied)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (s *fakeTradeInStore) UpdateTradeInStatus(_ context.Context, tradeInID string, status domain.TradeInStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tradeIn, ok := s.tradeIns[tradeInID]
	if !ok {
		return domain.ErrNotFound
	}
	tradeIn.Status = status
	return nil
}

type fakeQuestionStore struct {
	mu        sync.Mutex
	questions map[string]*domain.Question
	owners    map[string]string // auctionID -> ownerID
}

func newFakeQuestionStore() *fakeQuestionStore {
	return &fakeQuestionStore{
		questions: make(map[string]*domain.Question),
		owners:    make(map[string]string),
	}
}

func (s *fakeQuestionStore) setOwner(auctionID, ownerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.owners[auctionID] = ownerID
}

func (s *fakeQuestionStore) CreateQuestion(_ context.Context, question *domain.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *question
	s.questions[question.ID] = &copied
	return nil
}

func (s *fakeQuestionStore) GetQuestion(_ context.Context, questionID string) (*domain.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	question, ok := s.questions[questionID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *question
	return &copied, nil
}

func (s *fakeQuestionStore) QuestionsForAuction(_ context.Context, auctionID string) ([]*domain.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []*domain.Question
	for _, question := range s.questions {
		if question.AuctionID == auctionID {
			copied := *question
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].AskedAt.After(result[j].AskedAt) })
	return result, nil
}

func (s *fakeQuestionStore) UnansweredForOwner(_ context.Context, ownerID string) ([]*domain.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []*domain.Question
	for _, question := range s.questions {
		if s.owners[question.AuctionID] == ownerID && question.AnsweredAt.IsZero() {
			copied := *question
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].AskedAt.After(result[j].AskedAt) })
	return result, nil
}

func (s *fakeQuestionStore) AnswerQuestion(_ context.Context, questionID, answer string, answeredAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	question, ok := s.questions[questionID]
	if !ok || !question.AnsweredAt.IsZero() {
		return domain.ErrNotFound
	}
	question.Answer = answer
	question.AnsweredAt = answeredAt
	return nil
}

type fakeNotificationStore struct {
	mu            sync.Mutex
	notifications []*domain.Notification
}

func (s *fakeNotificationStore) CreateNotification(_ context.Context, n *domain.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *n
	s.notifications = append(s.notifications, &copied)
	return nil
}

func (s *fakeNotificationStore) NotificationsForUser(_ context.Context, userID string) ([]*domain.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []*domain.Notification
	for _, n := range s.notifications {
		if n.UserID == userID {
			copied := *n
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (s *fakeNotificationStore) MarkRead(_ context.Context, notificationID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.notifications {
		if n.ID == notificationID && n.UserID == userID {
			n.IsRead = true
			return nil
		}
	}
	return domain.ErrNotFound
}

func (s *fakeNotificationStore) CountUnread(_ context.Context, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, n := range s.notifications {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

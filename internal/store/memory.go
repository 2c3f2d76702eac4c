package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/roadrescue/dispatch/internal/domain/history"
	"github.com/roadrescue/dispatch/internal/domain/mechanic"
	"github.com/roadrescue/dispatch/internal/domain/message"
	"github.com/roadrescue/dispatch/internal/domain/request"
	"github.com/roadrescue/dispatch/internal/domain/user"
)

// MemoryStore is an in-process Store. A single mutex serializes all
// mutations, which gives per-id atomicity for free. Getters and listers
// return copies so callers never hold a reference into the store's maps.
type MemoryStore struct {
	mu sync.RWMutex

	users     map[int]*user.User
	mechanics map[int]*mechanic.Mechanic
	requests  map[int]*request.ServiceRequest
	histories map[int]*history.Entry
	messages  map[int]*message.Message

	nextUserID     int
	nextMechanicID int
	nextRequestID  int
	nextHistoryID  int
	nextMessageID  int
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:          make(map[int]*user.User),
		mechanics:      make(map[int]*mechanic.Mechanic),
		requests:       make(map[int]*request.ServiceRequest),
		histories:      make(map[int]*history.Entry),
		messages:       make(map[int]*message.Message),
		nextUserID:     1,
		nextMechanicID: 1,
		nextRequestID:  1,
		nextHistoryID:  1,
		nextMessageID:  1,
	}
}

// User operations

func (s *MemoryStore) CreateUser(ctx context.Context, draft user.Draft) (*user.User, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u := &user.User{
		ID:        s.nextUserID,
		Username:  draft.Username,
		Name:      draft.Name,
		Email:     draft.Email,
		Phone:     draft.Phone,
		Address:   draft.Address,
		Latitude:  draft.Latitude,
		Longitude: draft.Longitude,
	}
	s.nextUserID++
	s.users[u.ID] = u

	return copyUser(u), nil
}

func (s *MemoryStore) GetUser(ctx context.Context, id int) (*user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	return copyUser(u), nil
}

func (s *MemoryStore) GetUserByUsername(ctx context.Context, username string) (*user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, id := range sortedKeys(s.users) {
		if s.users[id].Username == username {
			return copyUser(s.users[id]), nil
		}
	}
	return nil, user.ErrUserNotFound
}

func (s *MemoryStore) UpdateUserLocation(ctx context.Context, id int, lat, lng float64, address string) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	u.Latitude = &lat
	u.Longitude = &lng
	u.Address = &address

	return copyUser(u), nil
}

// Mechanic operations

func (s *MemoryStore) CreateMechanic(ctx context.Context, draft mechanic.Draft) (*mechanic.Mechanic, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	m := &mechanic.Mechanic{
		ID:           s.nextMechanicID,
		Name:         draft.Name,
		BusinessName: draft.BusinessName,
		Phone:        draft.Phone,
		Email:        draft.Email,
		Latitude:     draft.Latitude,
		Longitude:    draft.Longitude,
		Address:      draft.Address,
		Rating:       draft.Rating,
		ReviewCount:  draft.ReviewCount,
		Services:     append([]string(nil), draft.Services...),
		Availability: draft.Availability,
		ResponseTime: draft.ResponseTime,
		PriceRange:   draft.PriceRange,
		ProfileImage: draft.ProfileImage,
		Is24x7:       draft.Is24x7,
	}
	s.nextMechanicID++
	s.mechanics[m.ID] = m

	return copyMechanic(m), nil
}

func (s *MemoryStore) GetMechanic(ctx context.Context, id int) (*mechanic.Mechanic, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.mechanics[id]
	if !ok {
		return nil, mechanic.ErrMechanicNotFound
	}
	return copyMechanic(m), nil
}

func (s *MemoryStore) ListMechanics(ctx context.Context) ([]*mechanic.Mechanic, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*mechanic.Mechanic, 0, len(s.mechanics))
	for _, id := range sortedKeys(s.mechanics) {
		out = append(out, copyMechanic(s.mechanics[id]))
	}
	return out, nil
}

func (s *MemoryStore) UpdateMechanicAvailability(ctx context.Context, id int, availability mechanic.Availability) (*mechanic.Mechanic, error) {
	if !availability.IsValid() {
		return nil, mechanic.ErrInvalidAvailability
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.mechanics[id]
	if !ok {
		return nil, mechanic.ErrMechanicNotFound
	}
	m.Availability = availability

	return copyMechanic(m), nil
}

// Service request operations

func (s *MemoryStore) CreateRequest(ctx context.Context, draft request.Draft) (*request.ServiceRequest, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	r := &request.ServiceRequest{
		ID:            s.nextRequestID,
		UserID:        draft.UserID,
		ServiceType:   draft.ServiceType,
		Description:   draft.Description,
		Status:        request.StatusPending,
		Priority:      draft.Priority,
		UserLatitude:  *draft.UserLatitude,
		UserLongitude: *draft.UserLongitude,
		UserAddress:   draft.UserAddress,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	s.nextRequestID++
	s.requests[r.ID] = r

	return copyRequest(r), nil
}

func (s *MemoryStore) GetRequest(ctx context.Context, id int) (*request.ServiceRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.requests[id]
	if !ok {
		return nil, request.ErrRequestNotFound
	}
	return copyRequest(r), nil
}

func (s *MemoryStore) ListRequestsByUser(ctx context.Context, userID int) ([]*request.ServiceRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*request.ServiceRequest
	for _, id := range sortedKeys(s.requests) {
		if s.requests[id].UserID == userID {
			out = append(out, copyRequest(s.requests[id]))
		}
	}
	return out, nil
}

func (s *MemoryStore) ListRequestsByMechanic(ctx context.Context, mechanicID int) ([]*request.ServiceRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*request.ServiceRequest
	for _, id := range sortedKeys(s.requests) {
		r := s.requests[id]
		if r.MechanicID != nil && *r.MechanicID == mechanicID {
			out = append(out, copyRequest(r))
		}
	}
	return out, nil
}

func (s *MemoryStore) AssignMechanic(ctx context.Context, requestID, mechanicID int, estimatedArrival time.Time, estimatedPrice float64) (*request.ServiceRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.requests[requestID]
	if !ok {
		return nil, request.ErrRequestNotFound
	}

	// Single mutation under the lock: mechanic, status, estimates and
	// the update timestamp change together.
	mid := mechanicID
	eta := estimatedArrival
	price := estimatedPrice
	r.MechanicID = &mid
	r.Status = request.StatusAssigned
	r.EstimatedArrival = &eta
	r.EstimatedPrice = &price
	r.UpdatedAt = time.Now()

	return copyRequest(r), nil
}

func (s *MemoryStore) UpdateRequestStatus(ctx context.Context, id int, status request.Status, mechanicID *int) (*request.ServiceRequest, error) {
	if !status.IsValid() {
		return nil, request.ErrInvalidStatus
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.requests[id]
	if !ok {
		return nil, request.ErrRequestNotFound
	}

	// Terminal check happens under the same lock as the mutation, so
	// two racing completions cannot both succeed.
	if r.Status.IsTerminal() {
		if r.Status == request.StatusCompleted && status == request.StatusCompleted {
			return nil, request.ErrAlreadyCompleted
		}
		return nil, request.ErrAlreadyTerminal
	}

	r.Status = status
	if mechanicID != nil {
		mid := *mechanicID
		r.MechanicID = &mid
	}
	if status == request.StatusCompleted && r.CompletedAt == nil {
		now := time.Now()
		r.CompletedAt = &now
	}
	r.UpdatedAt = time.Now()

	return copyRequest(r), nil
}

// Service history operations

func (s *MemoryStore) CreateHistory(ctx context.Context, draft history.Draft) (*history.Entry, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e := &history.Entry{
		ID:          s.nextHistoryID,
		UserID:      draft.UserID,
		MechanicID:  draft.MechanicID,
		ServiceType: draft.ServiceType,
		Description: draft.Description,
		Price:       draft.Price,
		Rating:      draft.Rating,
		Review:      draft.Review,
		CompletedAt: draft.CompletedAt,
		CreatedAt:   time.Now(),
	}
	s.nextHistoryID++
	s.histories[e.ID] = e

	return copyHistory(e), nil
}

func (s *MemoryStore) GetHistory(ctx context.Context, id int) (*history.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.histories[id]
	if !ok {
		return nil, history.ErrHistoryNotFound
	}
	return copyHistory(e), nil
}

func (s *MemoryStore) ListHistoryByUser(ctx context.Context, userID int) ([]*history.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*history.Entry
	for _, id := range sortedKeys(s.histories) {
		if s.histories[id].UserID == userID {
			out = append(out, copyHistory(s.histories[id]))
		}
	}
	return out, nil
}

func (s *MemoryStore) ReviewHistory(ctx context.Context, id int, rating int, review string) (*history.Entry, error) {
	if rating < 1 || rating > 5 {
		return nil, history.ErrInvalidRating
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.histories[id]
	if !ok {
		return nil, history.ErrHistoryNotFound
	}
	if e.Rating != nil {
		return nil, history.ErrAlreadyReviewed
	}

	r := rating
	e.Rating = &r
	if review != "" {
		rv := review
		e.Review = &rv
	}

	return copyHistory(e), nil
}

// Message operations

func (s *MemoryStore) CreateMessage(ctx context.Context, draft message.Draft) (*message.Message, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.requests[draft.RequestID]; !ok {
		return nil, request.ErrRequestNotFound
	}

	m := &message.Message{
		ID:         s.nextMessageID,
		RequestID:  draft.RequestID,
		SenderID:   draft.SenderID,
		SenderType: draft.SenderType,
		Body:       draft.Body,
		CreatedAt:  time.Now(),
	}
	s.nextMessageID++
	s.messages[m.ID] = m

	out := *m
	return &out, nil
}

func (s *MemoryStore) ListMessagesByRequest(ctx context.Context, requestID int) ([]*message.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*message.Message
	for _, id := range sortedKeys(s.messages) {
		if s.messages[id].RequestID == requestID {
			m := *s.messages[id]
			out = append(out, &m)
		}
	}
	return out, nil
}

// Copy helpers. Ids are allocated in ascending order, so iterating keys
// ascending reproduces insertion order.

func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

func copyUser(u *user.User) *user.User {
	out := *u
	out.Address = copyStringPtr(u.Address)
	out.Latitude = copyFloatPtr(u.Latitude)
	out.Longitude = copyFloatPtr(u.Longitude)
	return &out
}

func copyMechanic(m *mechanic.Mechanic) *mechanic.Mechanic {
	out := *m
	out.Services = append([]string(nil), m.Services...)
	out.ProfileImage = copyStringPtr(m.ProfileImage)
	return &out
}

func copyRequest(r *request.ServiceRequest) *request.ServiceRequest {
	out := *r
	out.MechanicID = copyIntPtr(r.MechanicID)
	out.EstimatedPrice = copyFloatPtr(r.EstimatedPrice)
	out.FinalPrice = copyFloatPtr(r.FinalPrice)
	out.EstimatedArrival = copyTimePtr(r.EstimatedArrival)
	out.CompletedAt = copyTimePtr(r.CompletedAt)
	return &out
}

func copyHistory(e *history.Entry) *history.Entry {
	out := *e
	out.Rating = copyIntPtr(e.Rating)
	out.Review = copyStringPtr(e.Review)
	return &out
}

func copyStringPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func copyIntPtr(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func copyFloatPtr(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func copyTimePtr(p *time.Time) *time.Time {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

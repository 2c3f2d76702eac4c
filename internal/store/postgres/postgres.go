package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/roadrescue/dispatch/internal/domain/history"
	"github.com/roadrescue/dispatch/internal/domain/mechanic"
	"github.com/roadrescue/dispatch/internal/domain/message"
	"github.com/roadrescue/dispatch/internal/domain/request"
	"github.com/roadrescue/dispatch/internal/domain/user"
)

// Store is the PostgreSQL implementation of store.Store. Serial columns
// provide the per-type monotonic ids, and every mutation is a single
// UPDATE so per-row atomicity comes from the database.
type Store struct {
	db *sql.DB
}

// New creates a Store over an open connection pool
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// EnsureSchema creates the tables if they do not exist
func (s *Store) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id SERIAL PRIMARY KEY,
			username TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			email TEXT NOT NULL,
			phone TEXT NOT NULL,
			address TEXT,
			latitude DOUBLE PRECISION,
			longitude DOUBLE PRECISION
		)`,
		`CREATE TABLE IF NOT EXISTS mechanics (
			id SERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			business_name TEXT NOT NULL,
			phone TEXT NOT NULL,
			email TEXT NOT NULL,
			latitude DOUBLE PRECISION NOT NULL,
			longitude DOUBLE PRECISION NOT NULL,
			address TEXT NOT NULL DEFAULT '',
			rating DOUBLE PRECISION NOT NULL DEFAULT 0,
			review_count INTEGER NOT NULL DEFAULT 0,
			services TEXT[] NOT NULL,
			availability TEXT NOT NULL DEFAULT 'available',
			response_time INTEGER NOT NULL DEFAULT 15,
			price_range TEXT NOT NULL DEFAULT '',
			profile_image TEXT,
			is_24x7 BOOLEAN NOT NULL DEFAULT FALSE
		)`,
		`CREATE TABLE IF NOT EXISTS service_requests (
			id SERIAL PRIMARY KEY,
			user_id INTEGER NOT NULL REFERENCES users(id),
			mechanic_id INTEGER REFERENCES mechanics(id),
			service_type TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'pending',
			priority TEXT NOT NULL DEFAULT 'normal',
			user_latitude DOUBLE PRECISION NOT NULL,
			user_longitude DOUBLE PRECISION NOT NULL,
			user_address TEXT NOT NULL,
			estimated_price DOUBLE PRECISION,
			final_price DOUBLE PRECISION,
			estimated_arrival TIMESTAMPTZ,
			completed_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS service_history (
			id SERIAL PRIMARY KEY,
			user_id INTEGER NOT NULL REFERENCES users(id),
			mechanic_id INTEGER NOT NULL REFERENCES mechanics(id),
			service_type TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			price DOUBLE PRECISION NOT NULL,
			rating INTEGER,
			review TEXT,
			completed_at TIMESTAMPTZ NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS messages (
			id SERIAL PRIMARY KEY,
			request_id INTEGER NOT NULL REFERENCES service_requests(id),
			sender_id INTEGER NOT NULL,
			sender_type TEXT NOT NULL,
			message TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// User operations

func (s *Store) CreateUser(ctx context.Context, draft user.Draft) (*user.User, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		INSERT INTO users (username, name, email, phone, address, latitude, longitude)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, username, name, email, phone, address, latitude, longitude
	`, draft.Username, draft.Name, draft.Email, draft.Phone, draft.Address, draft.Latitude, draft.Longitude)

	return scanUser(row)
}

func (s *Store) GetUser(ctx context.Context, id int) (*user.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, username, name, email, phone, address, latitude, longitude
		FROM users WHERE id = $1
	`, id)

	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, user.ErrUserNotFound
	}
	return u, err
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*user.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, username, name, email, phone, address, latitude, longitude
		FROM users WHERE username = $1
	`, username)

	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, user.ErrUserNotFound
	}
	return u, err
}

func (s *Store) UpdateUserLocation(ctx context.Context, id int, lat, lng float64, address string) (*user.User, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE users SET latitude = $1, longitude = $2, address = $3
		WHERE id = $4
		RETURNING id, username, name, email, phone, address, latitude, longitude
	`, lat, lng, address, id)

	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, user.ErrUserNotFound
	}
	return u, err
}

func scanUser(row *sql.Row) (*user.User, error) {
	var u user.User
	var address sql.NullString
	var lat, lng sql.NullFloat64

	err := row.Scan(&u.ID, &u.Username, &u.Name, &u.Email, &u.Phone, &address, &lat, &lng)
	if err != nil {
		return nil, err
	}
	if address.Valid {
		u.Address = &address.String
	}
	if lat.Valid {
		u.Latitude = &lat.Float64
	}
	if lng.Valid {
		u.Longitude = &lng.Float64
	}
	return &u, nil
}

// Mechanic operations

const mechanicColumns = `id, name, business_name, phone, email, latitude, longitude, address,
	rating, review_count, services, availability, response_time, price_range, profile_image, is_24x7`

func (s *Store) CreateMechanic(ctx context.Context, draft mechanic.Draft) (*mechanic.Mechanic, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		INSERT INTO mechanics (name, business_name, phone, email, latitude, longitude, address,
			rating, review_count, services, availability, response_time, price_range, profile_image, is_24x7)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING `+mechanicColumns,
		draft.Name, draft.BusinessName, draft.Phone, draft.Email,
		draft.Latitude, draft.Longitude, draft.Address,
		draft.Rating, draft.ReviewCount,
		pq.Array(draft.Services), string(draft.Availability), draft.ResponseTime,
		draft.PriceRange, draft.ProfileImage, draft.Is24x7)

	return scanMechanic(row)
}

func (s *Store) GetMechanic(ctx context.Context, id int) (*mechanic.Mechanic, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+mechanicColumns+` FROM mechanics WHERE id = $1`, id)

	m, err := scanMechanic(row)
	if err == sql.ErrNoRows {
		return nil, mechanic.ErrMechanicNotFound
	}
	return m, err
}

func (s *Store) ListMechanics(ctx context.Context) ([]*mechanic.Mechanic, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+mechanicColumns+` FROM mechanics ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*mechanic.Mechanic
	for rows.Next() {
		m, err := scanMechanicRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *Store) UpdateMechanicAvailability(ctx context.Context, id int, availability mechanic.Availability) (*mechanic.Mechanic, error) {
	if !availability.IsValid() {
		return nil, mechanic.ErrInvalidAvailability
	}

	row := s.db.QueryRowContext(ctx, `
		UPDATE mechanics SET availability = $1 WHERE id = $2
		RETURNING `+mechanicColumns, string(availability), id)

	m, err := scanMechanic(row)
	if err == sql.ErrNoRows {
		return nil, mechanic.ErrMechanicNotFound
	}
	return m, err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMechanicFrom(sc rowScanner) (*mechanic.Mechanic, error) {
	var m mechanic.Mechanic
	var availability string
	var profileImage sql.NullString

	err := sc.Scan(&m.ID, &m.Name, &m.BusinessName, &m.Phone, &m.Email,
		&m.Latitude, &m.Longitude, &m.Address, &m.Rating, &m.ReviewCount,
		pq.Array(&m.Services), &availability, &m.ResponseTime, &m.PriceRange,
		&profileImage, &m.Is24x7)
	if err != nil {
		return nil, err
	}
	m.Availability = mechanic.Availability(availability)
	if profileImage.Valid {
		m.ProfileImage = &profileImage.String
	}
	return &m, nil
}

func scanMechanic(row *sql.Row) (*mechanic.Mechanic, error)      { return scanMechanicFrom(row) }
func scanMechanicRows(rows *sql.Rows) (*mechanic.Mechanic, error) { return scanMechanicFrom(rows) }

// Service request operations

const requestColumns = `id, user_id, mechanic_id, service_type, description, status, priority,
	user_latitude, user_longitude, user_address, estimated_price, final_price,
	estimated_arrival, completed_at, created_at, updated_at`

func (s *Store) CreateRequest(ctx context.Context, draft request.Draft) (*request.ServiceRequest, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		INSERT INTO service_requests (user_id, service_type, description, priority,
			user_latitude, user_longitude, user_address)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+requestColumns,
		draft.UserID, draft.ServiceType, draft.Description, string(draft.Priority),
		*draft.UserLatitude, *draft.UserLongitude, draft.UserAddress)

	return scanRequest(row)
}

func (s *Store) GetRequest(ctx context.Context, id int) (*request.ServiceRequest, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+requestColumns+` FROM service_requests WHERE id = $1`, id)

	r, err := scanRequest(row)
	if err == sql.ErrNoRows {
		return nil, request.ErrRequestNotFound
	}
	return r, err
}

func (s *Store) ListRequestsByUser(ctx context.Context, userID int) ([]*request.ServiceRequest, error) {
	return s.listRequests(ctx,
		`SELECT `+requestColumns+` FROM service_requests WHERE user_id = $1 ORDER BY id`, userID)
}

func (s *Store) ListRequestsByMechanic(ctx context.Context, mechanicID int) ([]*request.ServiceRequest, error) {
	return s.listRequests(ctx,
		`SELECT `+requestColumns+` FROM service_requests WHERE mechanic_id = $1 ORDER BY id`, mechanicID)
}

func (s *Store) listRequests(ctx context.Context, query string, arg interface{}) ([]*request.ServiceRequest, error) {
	rows, err := s.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*request.ServiceRequest
	for rows.Next() {
		r, err := scanRequestRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) AssignMechanic(ctx context.Context, requestID, mechanicID int, estimatedArrival time.Time, estimatedPrice float64) (*request.ServiceRequest, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE service_requests
		SET mechanic_id = $1, status = 'assigned',
		    estimated_arrival = $2, estimated_price = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING `+requestColumns,
		mechanicID, estimatedArrival, estimatedPrice, requestID)

	r, err := scanRequest(row)
	if err == sql.ErrNoRows {
		return nil, request.ErrRequestNotFound
	}
	return r, err
}

func (s *Store) UpdateRequestStatus(ctx context.Context, id int, status request.Status, mechanicID *int) (*request.ServiceRequest, error) {
	if !status.IsValid() {
		return nil, request.ErrInvalidStatus
	}

	// The status guard lives in the UPDATE so racing completions cannot
	// both succeed; a zero-row result is classified afterwards.
	row := s.db.QueryRowContext(ctx, `
		UPDATE service_requests
		SET status = $1,
		    mechanic_id = COALESCE($2, mechanic_id),
		    completed_at = CASE WHEN $1 = 'completed' THEN COALESCE(completed_at, NOW()) ELSE completed_at END,
		    updated_at = NOW()
		WHERE id = $3 AND status NOT IN ('completed', 'cancelled')
		RETURNING `+requestColumns,
		string(status), mechanicID, id)

	r, err := scanRequest(row)
	if err == sql.ErrNoRows {
		current, getErr := s.GetRequest(ctx, id)
		if getErr != nil {
			return nil, getErr
		}
		if current.Status == request.StatusCompleted && status == request.StatusCompleted {
			return nil, request.ErrAlreadyCompleted
		}
		return nil, request.ErrAlreadyTerminal
	}
	return r, err
}

func scanRequestFrom(sc rowScanner) (*request.ServiceRequest, error) {
	var r request.ServiceRequest
	var mechanicID sql.NullInt64
	var status, priority string
	var estPrice, finalPrice sql.NullFloat64
	var eta, completedAt sql.NullTime

	err := sc.Scan(&r.ID, &r.UserID, &mechanicID, &r.ServiceType, &r.Description,
		&status, &priority, &r.UserLatitude, &r.UserLongitude, &r.UserAddress,
		&estPrice, &finalPrice, &eta, &completedAt, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	r.Status = request.Status(status)
	r.Priority = request.Priority(priority)
	if mechanicID.Valid {
		mid := int(mechanicID.Int64)
		r.MechanicID = &mid
	}
	if estPrice.Valid {
		r.EstimatedPrice = &estPrice.Float64
	}
	if finalPrice.Valid {
		r.FinalPrice = &finalPrice.Float64
	}
	if eta.Valid {
		r.EstimatedArrival = &eta.Time
	}
	if completedAt.Valid {
		r.CompletedAt = &completedAt.Time
	}
	return &r, nil
}

func scanRequest(row *sql.Row) (*request.ServiceRequest, error)       { return scanRequestFrom(row) }
func scanRequestRows(rows *sql.Rows) (*request.ServiceRequest, error) { return scanRequestFrom(rows) }

// Service history operations

const historyColumns = `id, user_id, mechanic_id, service_type, description, price, rating, review, completed_at, created_at`

func (s *Store) CreateHistory(ctx context.Context, draft history.Draft) (*history.Entry, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		INSERT INTO service_history (user_id, mechanic_id, service_type, description, price, rating, review, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+historyColumns,
		draft.UserID, draft.MechanicID, draft.ServiceType, draft.Description,
		draft.Price, draft.Rating, draft.Review, draft.CompletedAt)

	return scanHistory(row)
}

func (s *Store) GetHistory(ctx context.Context, id int) (*history.Entry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+historyColumns+` FROM service_history WHERE id = $1`, id)

	e, err := scanHistory(row)
	if err == sql.ErrNoRows {
		return nil, history.ErrHistoryNotFound
	}
	return e, err
}

func (s *Store) ListHistoryByUser(ctx context.Context, userID int) ([]*history.Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+historyColumns+` FROM service_history WHERE user_id = $1 ORDER BY id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*history.Entry
	for rows.Next() {
		e, err := scanHistoryRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) ReviewHistory(ctx context.Context, id int, rating int, review string) (*history.Entry, error) {
	if rating < 1 || rating > 5 {
		return nil, history.ErrInvalidRating
	}

	var reviewArg *string
	if review != "" {
		reviewArg = &review
	}

	// The rating IS NULL guard keeps the append-once rule atomic
	row := s.db.QueryRowContext(ctx, `
		UPDATE service_history SET rating = $1, review = $2
		WHERE id = $3 AND rating IS NULL
		RETURNING `+historyColumns, rating, reviewArg, id)

	e, err := scanHistory(row)
	if err == sql.ErrNoRows {
		if _, getErr := s.GetHistory(ctx, id); getErr != nil {
			return nil, getErr
		}
		return nil, history.ErrAlreadyReviewed
	}
	return e, err
}

func scanHistoryFrom(sc rowScanner) (*history.Entry, error) {
	var e history.Entry
	var rating sql.NullInt64
	var review sql.NullString

	err := sc.Scan(&e.ID, &e.UserID, &e.MechanicID, &e.ServiceType, &e.Description,
		&e.Price, &rating, &review, &e.CompletedAt, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	if rating.Valid {
		r := int(rating.Int64)
		e.Rating = &r
	}
	if review.Valid {
		e.Review = &review.String
	}
	return &e, nil
}

func scanHistory(row *sql.Row) (*history.Entry, error)       { return scanHistoryFrom(row) }
func scanHistoryRows(rows *sql.Rows) (*history.Entry, error) { return scanHistoryFrom(rows) }

// Message operations

func (s *Store) CreateMessage(ctx context.Context, draft message.Draft) (*message.Message, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		INSERT INTO messages (request_id, sender_id, sender_type, message)
		VALUES ($1, $2, $3, $4)
		RETURNING id, request_id, sender_id, sender_type, message, created_at
	`, draft.RequestID, draft.SenderID, string(draft.SenderType), draft.Body)

	return scanMessage(row)
}

func (s *Store) ListMessagesByRequest(ctx context.Context, requestID int) ([]*message.Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, request_id, sender_id, sender_type, message, created_at
		FROM messages WHERE request_id = $1 ORDER BY id
	`, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*message.Message
	for rows.Next() {
		var m message.Message
		var senderType string
		if err := rows.Scan(&m.ID, &m.RequestID, &m.SenderID, &senderType, &m.Body, &m.CreatedAt); err != nil {
			return nil, err
		}
		m.SenderType = message.SenderType(senderType)
		out = append(out, &m)
	}
	return out, rows.Err()
}

func scanMessage(row *sql.Row) (*message.Message, error) {
	var m message.Message
	var senderType string
	if err := row.Scan(&m.ID, &m.RequestID, &m.SenderID, &senderType, &m.Body, &m.CreatedAt); err != nil {
		return nil, err
	}
	m.SenderType = message.SenderType(senderType)
	return &m, nil
}

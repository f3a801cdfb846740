package audit

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Event struct {
	ID        string          `json:"_id"`
	ActorID   string          `json:"actorId"`
	Action    string          `json:"action"`
	Entity    string          `json:"entity"`
	EntityID  string          `json:"entityId"`
	RequestID string          `json:"requestId"`
	Details   json.RawMessage `json:"details,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

type Filter struct {
	Action  string
	Entity  string
	ActorID string
}

type Service struct {
	DB *pgxpool.Pool
}

func New(db *pgxpool.Pool) *Service {
	return &Service{DB: db}
}

// Record is best effort by convention: callers log failures and move on, a
// failed audit write never fails the underlying operation.
func (s *Service) Record(ctx context.Context, actorID, action, entity, entityID, requestID string, details any) error {
	var detailsJSON []byte
	if details != nil {
		payload, err := json.Marshal(details)
		if err != nil {
			return err
		}
		detailsJSON = payload
	}
	_, err := s.DB.Exec(ctx, `
    INSERT INTO audit_log (actor_id, action, entity, entity_id, request_id, details)
    VALUES ($1,$2,$3,$4,$5,$6)
  `, actorID, action, entity, entityID, requestID, detailsJSON)
	return err
}

func (f Filter) whereClause() (string, []any) {
	where := " WHERE 1=1"
	args := []any{}
	if f.Action != "" {
		args = append(args, f.Action)
		where += " AND action = $" + strconv.Itoa(len(args))
	}
	if f.Entity != "" {
		args = append(args, f.Entity)
		where += " AND entity = $" + strconv.Itoa(len(args))
	}
	if f.ActorID != "" {
		args = append(args, f.ActorID)
		where += " AND actor_id = $" + strconv.Itoa(len(args))
	}
	return where, args
}

func (s *Service) Count(ctx context.Context, filter Filter) (int, error) {
	where, args := filter.whereClause()
	var total int
	err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM audit_log"+where, args...).Scan(&total)
	return total, err
}

func (s *Service) List(ctx context.Context, filter Filter, limit, offset int) ([]Event, error) {
	where, args := filter.whereClause()
	args = append(args, limit, offset)
	query := "SELECT id, actor_id, action, entity, entity_id, request_id, details, created_at FROM audit_log" +
		where + " ORDER BY created_at DESC LIMIT $" + strconv.Itoa(len(args)-1) + " OFFSET $" + strconv.Itoa(len(args))

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []Event{}
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.ActorID, &e.Action, &e.Entity, &e.EntityID, &e.RequestID, &e.Details, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

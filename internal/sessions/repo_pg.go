package sessions

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

// PGRepo implements Repo using Postgres. Conversation state lives in jsonb
// columns and is rewritten whole on every update.
type PGRepo struct {
	DB *sql.DB
}

func marshalJSONB(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return payload, nil
}

// Create inserts a new session.
func (r *PGRepo) Create(ctx context.Context, session Session) error {
	const query = `
INSERT INTO sessions (
	id, created_at, updated_at, event_type, title, user_goal_text,
	context, checklist, messages, interview_sessions
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	contextPayload, err := marshalJSONB(session.Context)
	if err != nil {
		return err
	}
	var checklistPayload any
	if session.Checklist != nil {
		if checklistPayload, err = marshalJSONB(session.Checklist); err != nil {
			return err
		}
	}
	messagesPayload, err := marshalJSONB(session.Messages)
	if err != nil {
		return err
	}
	interviewsPayload, err := marshalJSONB(session.Interviews)
	if err != nil {
		return err
	}

	_, err = r.DB.ExecContext(ctx, query,
		session.ID,
		session.CreatedAt,
		session.UpdatedAt,
		session.EventType,
		session.Title,
		session.UserGoalText,
		contextPayload,
		checklistPayload,
		messagesPayload,
		interviewsPayload,
	)
	return err
}

// GetByID returns a session by ID.
func (r *PGRepo) GetByID(ctx context.Context, sessionID string) (Session, error) {
	const query = `
SELECT id, created_at, updated_at, event_type, title, user_goal_text,
       context, checklist, messages, interview_sessions
FROM sessions
WHERE id = $1
LIMIT 1`

	var s Session
	var contextRaw, checklistRaw, messagesRaw, interviewsRaw sql.NullString
	err := r.DB.QueryRowContext(ctx, query, sessionID).Scan(
		&s.ID,
		&s.CreatedAt,
		&s.UpdatedAt,
		&s.EventType,
		&s.Title,
		&s.UserGoalText,
		&contextRaw,
		&checklistRaw,
		&messagesRaw,
		&interviewsRaw,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Session{}, ErrNotFound
		}
		return Session{}, err
	}

	if contextRaw.Valid {
		if err := json.Unmarshal([]byte(contextRaw.String), &s.Context); err != nil {
			return Session{}, err
		}
	}
	if checklistRaw.Valid {
		if err := json.Unmarshal([]byte(checklistRaw.String), &s.Checklist); err != nil {
			return Session{}, err
		}
	}
	if messagesRaw.Valid {
		if err := json.Unmarshal([]byte(messagesRaw.String), &s.Messages); err != nil {
			return Session{}, err
		}
	}
	if interviewsRaw.Valid {
		if err := json.Unmarshal([]byte(interviewsRaw.String), &s.Interviews); err != nil {
			return Session{}, err
		}
	}
	return s, nil
}

// Update rewrites the mutable state of an existing session.
func (r *PGRepo) Update(ctx context.Context, session Session) error {
	const query = `
UPDATE sessions
SET title = $2, context = $3, checklist = $4, messages = $5,
    interview_sessions = $6, updated_at = $7
WHERE id = $1`

	contextPayload, err := marshalJSONB(session.Context)
	if err != nil {
		return err
	}
	var checklistPayload any
	if session.Checklist != nil {
		if checklistPayload, err = marshalJSONB(session.Checklist); err != nil {
			return err
		}
	}
	messagesPayload, err := marshalJSONB(session.Messages)
	if err != nil {
		return err
	}
	interviewsPayload, err := marshalJSONB(session.Interviews)
	if err != nil {
		return err
	}

	res, err := r.DB.ExecContext(ctx, query,
		session.ID,
		session.Title,
		contextPayload,
		checklistPayload,
		messagesPayload,
		interviewsPayload,
		time.Now().UTC(),
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns sessions newest first, with limit/offset.
func (r *PGRepo) List(ctx context.Context, limit, offset int) ([]Session, error) {
	const query = `
SELECT id, created_at, updated_at, event_type, title, user_goal_text,
       context, checklist, messages, interview_sessions
FROM sessions
ORDER BY created_at DESC
LIMIT $1 OFFSET $2`

	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Session{}
	for rows.Next() {
		var s Session
		var contextRaw, checklistRaw, messagesRaw, interviewsRaw sql.NullString
		if err := rows.Scan(
			&s.ID,
			&s.CreatedAt,
			&s.UpdatedAt,
			&s.EventType,
			&s.Title,
			&s.UserGoalText,
			&contextRaw,
			&checklistRaw,
			&messagesRaw,
			&interviewsRaw,
		); err != nil {
			return nil, err
		}
		if contextRaw.Valid {
			if err := json.Unmarshal([]byte(contextRaw.String), &s.Context); err != nil {
				return nil, err
			}
		}
		if checklistRaw.Valid {
			if err := json.Unmarshal([]byte(checklistRaw.String), &s.Checklist); err != nil {
				return nil, err
			}
		}
		if messagesRaw.Valid {
			if err := json.Unmarshal([]byte(messagesRaw.String), &s.Messages); err != nil {
				return nil, err
			}
		}
		if interviewsRaw.Valid {
			if err := json.Unmarshal([]byte(interviewsRaw.String), &s.Interviews); err != nil {
				return nil, err
			}
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Delete removes a session.
func (r *PGRepo) Delete(ctx context.Context, sessionID string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, sessionID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

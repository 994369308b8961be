package booking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/example/club-scheduler/internal/crypto"
	"github.com/example/club-scheduler/internal/db"
)

// Repo reads reservation requests and writes their terminal outcomes.
// Portal passwords are stored sealed; the repo decrypts them only when a
// run needs the credentials in memory.
type Repo struct {
	db   *db.DB
	aead *crypto.AEAD
}

func NewRepo(d *db.DB, aead *crypto.AEAD) *Repo { return &Repo{db: d, aead: aead} }

func splitIDs(s string) []string {
	parts := strings.Split(s, ",")
	var out []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

func joinIDs(ids []string) string {
	var cleaned []string
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		cleaned = append(cleaned, id)
	}
	return strings.Join(cleaned, ",")
}

// DueRequests returns every pending request for the date and tier,
// joined with the requester's portal credentials. Read-only; an empty
// day is an empty slice, not an error.
func (r *Repo) DueRequests(ctx context.Context, date time.Time, tier Tier) ([]Request, error) {
	rows, err := r.db.Query(ctx, `
SELECT q.id, q.user_id, u.chat_id, u.first_name, q.sport, q.booking_date, q.booking_time,
       q.player_ids, q.tier, q.status, q.created_at, q.executed_at,
       u.portal_username, u.portal_password_enc
FROM requests q
JOIN users u ON u.id = q.user_id
WHERE q.booking_date = $1 AND q.tier = $2 AND q.status = 'pending'
ORDER BY q.created_at ASC`, date.Format("2006-01-02"), string(tier))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Request
	for rows.Next() {
		var q Request
		var playerIDs, passwordEnc string
		if err := rows.Scan(
			&q.ID, &q.UserID, &q.ChatID, &q.FirstName, &q.Sport, &q.Date, &q.Hour,
			&playerIDs, &q.Tier, &q.Status, &q.CreatedAt, &q.ExecutedAt,
			&q.Credentials.Username, &passwordEnc,
		); err != nil {
			return nil, err
		}
		q.PlayerIDs = splitIDs(playerIDs)
		if passwordEnc != "" {
			pw, err := r.aead.DecryptString(passwordEnc)
			if err != nil {
				return nil, fmt.Errorf("decrypt credentials for request %d: %w", q.ID, err)
			}
			q.Credentials.Password = pw
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

// RecordOutcome moves a pending request to a terminal status and stamps
// the execution time. Idempotent: recording the same outcome twice
// leaves the row unchanged and succeeds both times.
func (r *Repo) RecordOutcome(ctx context.Context, requestID int64, outcome Status) error {
	if outcome != StatusCompleted && outcome != StatusFailed {
		return fmt.Errorf("outcome must be terminal, got %q", outcome)
	}

	var got Status
	err := r.db.QueryRow(ctx, `
UPDATE requests SET status=$2, executed_at=now()
WHERE id=$1 AND status='pending'
RETURNING status`, requestID, string(outcome)).Scan(&got)
	if err == nil {
		return nil
	}
	if werr := db.WrapNotFound(err); !db.IsNotFound(werr) {
		return werr
	}

	// No pending row: either already recorded (fine, at-least-once
	// delivery) or the request does not exist.
	var current Status
	err = r.db.QueryRow(ctx, `SELECT status FROM requests WHERE id=$1`, requestID).Scan(&current)
	if err != nil {
		return db.WrapNotFound(err)
	}
	if current == outcome {
		return nil
	}
	return fmt.Errorf("request %d already %s, not recording %s", requestID, current, outcome)
}

// CreateRequest inserts a pending request after validating it.
func (r *Repo) CreateRequest(ctx context.Context, q Request) (int64, error) {
	if err := q.Validate(); err != nil {
		return 0, err
	}
	var id int64
	err := r.db.QueryRow(ctx, `
INSERT INTO requests(user_id, sport, booking_date, booking_time, player_ids, tier, status)
VALUES ($1,$2,$3,$4,$5,$6,'pending')
RETURNING id`,
		q.UserID, string(q.Sport), q.Date.Format("2006-01-02"), q.Hour, joinIDs(q.PlayerIDs), string(q.Tier),
	).Scan(&id)
	return id, db.WrapNotFound(err)
}

// ListRequests returns requests ordered newest first, for the operator
// dashboard and the admin CLI.
func (r *Repo) ListRequests(ctx context.Context, limit int) ([]Request, error) {
	rows, err := r.db.Query(ctx, `
SELECT q.id, q.user_id, u.chat_id, u.first_name, q.sport, q.booking_date, q.booking_time,
       q.player_ids, q.tier, q.status, q.created_at, q.executed_at
FROM requests q
JOIN users u ON u.id = q.user_id
ORDER BY q.created_at DESC
LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Request
	for rows.Next() {
		var q Request
		var playerIDs string
		if err := rows.Scan(
			&q.ID, &q.UserID, &q.ChatID, &q.FirstName, &q.Sport, &q.Date, &q.Hour,
			&playerIDs, &q.Tier, &q.Status, &q.CreatedAt, &q.ExecutedAt,
		); err != nil {
			return nil, err
		}
		q.PlayerIDs = splitIDs(playerIDs)
		out = append(out, q)
	}
	return out, rows.Err()
}

// UpsertUser creates or updates a member profile keyed by chat id. The
// portal password is sealed before it touches the database.
func (r *Repo) UpsertUser(ctx context.Context, chatID int64, username, firstName, portalUser, portalPassword string, tier Tier) (int64, error) {
	enc := ""
	if portalPassword != "" {
		var err error
		enc, err = r.aead.EncryptToString(portalPassword)
		if err != nil {
			return 0, err
		}
	}
	var id int64
	err := r.db.QueryRow(ctx, `
INSERT INTO users(chat_id, username, first_name, portal_username, portal_password_enc, tier)
VALUES ($1,$2,$3,$4,$5,$6)
ON CONFLICT (chat_id) DO UPDATE SET
    username = COALESCE(NULLIF(EXCLUDED.username, ''), users.username),
    first_name = COALESCE(NULLIF(EXCLUDED.first_name, ''), users.first_name),
    portal_username = COALESCE(NULLIF(EXCLUDED.portal_username, ''), users.portal_username),
    portal_password_enc = COALESCE(NULLIF(EXCLUDED.portal_password_enc, ''), users.portal_password_enc),
    tier = EXCLUDED.tier
RETURNING id`,
		chatID, username, firstName, portalUser, enc, string(tier),
	).Scan(&id)
	return id, db.WrapNotFound(err)
}

// UserIDByChatID resolves the internal user id for a chat identity.
func (r *Repo) UserIDByChatID(ctx context.Context, chatID int64) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `SELECT id FROM users WHERE chat_id=$1`, chatID).Scan(&id)
	return id, db.WrapNotFound(err)
}

// CredentialsByChatID returns a member's decrypted portal login.
func (r *Repo) CredentialsByChatID(ctx context.Context, chatID int64) (Credentials, error) {
	var creds Credentials
	var enc string
	err := r.db.QueryRow(ctx,
		`SELECT portal_username, portal_password_enc FROM users WHERE chat_id=$1`, chatID,
	).Scan(&creds.Username, &enc)
	if err != nil {
		return Credentials{}, db.WrapNotFound(err)
	}
	if enc != "" {
		pw, err := r.aead.DecryptString(enc)
		if err != nil {
			return Credentials{}, fmt.Errorf("decrypt credentials: %w", err)
		}
		creds.Password = pw
	}
	return creds, nil
}

// DeductCredit spends one booking credit if the balance allows it. A
// single conditional decrement so concurrent attempts from the same
// requester can never drive the balance negative.
func (r *Repo) DeductCredit(ctx context.Context, userID int64) (bool, error) {
	var remaining int
	err := r.db.QueryRow(ctx, `
UPDATE users SET booking_credits = booking_credits - 1
WHERE id=$1 AND booking_credits > 0
RETURNING booking_credits`, userID).Scan(&remaining)
	if err == nil {
		return true, nil
	}
	if werr := db.WrapNotFound(err); db.IsNotFound(werr) {
		return false, nil
	}
	return false, err
}

// RefundCredit returns one booking credit after a failed or cancelled
// premium attempt.
func (r *Repo) RefundCredit(ctx context.Context, userID int64) error {
	return r.db.Exec(ctx, `UPDATE users SET booking_credits = booking_credits + 1 WHERE id=$1`, userID)
}

// AddCredits tops up a member's balance (purchases, manual grants).
func (r *Repo) AddCredits(ctx context.Context, userID int64, n int) error {
	if n <= 0 {
		return fmt.Errorf("credit amount must be positive")
	}
	return r.db.Exec(ctx, `UPDATE users SET booking_credits = booking_credits + $2 WHERE id=$1`, userID, n)
}

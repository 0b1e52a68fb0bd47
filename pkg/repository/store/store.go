package store

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/turfhub/tg_turf_bot/pkg/repository/model"
)

// PGRepo implements model.Repo on a pgx pool. Schema lives in
// migrations/schema.sql.
type PGRepo struct{ pool *pgxpool.Pool }

func NewRepo(ctx context.Context, dsn string) (*PGRepo, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &PGRepo{pool: pool}, nil
}

func (r *PGRepo) Close() { r.pool.Close() }

func (r *PGRepo) UpsertUser(ctx context.Context, u model.User) (int64, error) {
	q := `
		INSERT INTO app_user (tg_user_id, tg_chat_id, phone, name, email)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (tg_user_id) DO UPDATE
		   SET tg_chat_id = EXCLUDED.tg_chat_id,
		       updated_at = now()
		RETURNING id;
	`
	var id int64
	err := r.pool.QueryRow(ctx, q, u.TgUserID, u.TgChatID, u.Phone, u.Name, u.Email).Scan(&id)
	return id, err
}

func (r *PGRepo) GetUserByTG(ctx context.Context, tgUserID int64) (*model.User, error) {
	const q = `
		SELECT id, tg_user_id, tg_chat_id,
		       COALESCE(phone,''), COALESCE(api_token,''),
		       COALESCE(name,''), COALESCE(email,'')
		FROM app_user WHERE tg_user_id = $1;
	`
	var u model.User
	err := r.pool.QueryRow(ctx, q, tgUserID).Scan(
		&u.ID, &u.TgUserID, &u.TgChatID, &u.Phone, &u.APIToken, &u.Name, &u.Email,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *PGRepo) SaveCredentials(ctx context.Context, tgUserID int64, phone, token string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE app_user SET phone=$2, api_token=$3, updated_at=now()
		WHERE tg_user_id=$1
	`, tgUserID, phone, token)
	return err
}

func (r *PGRepo) ClearCredentials(ctx context.Context, tgUserID int64) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE app_user SET api_token=NULL, updated_at=now()
		WHERE tg_user_id=$1
	`, tgUserID)
	return err
}

func (r *PGRepo) UpdateProfile(ctx context.Context, tgUserID int64, name, email string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE app_user SET name=$2, email=$3, updated_at=now()
		WHERE tg_user_id=$1
	`, tgUserID, name, email)
	return err
}

func (r *PGRepo) LoadSession(ctx context.Context, tgUserID int64) (*model.SessionData, error) {
	var s model.SessionData
	var payload []byte
	err := r.pool.QueryRow(ctx, `SELECT state, payload FROM user_session WHERE tg_user_id=$1`, tgUserID).Scan(&s.State, &payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &model.SessionData{State: "main", Payload: map[string]any{}}, nil
		}
		return nil, err
	}
	_ = json.Unmarshal(payload, &s.Payload)
	return &s, nil
}

func (r *PGRepo) SaveSession(ctx context.Context, tgUserID int64, s model.SessionData) error {
	pb, _ := json.Marshal(s.Payload)
	_, err := r.pool.Exec(ctx, `
		INSERT INTO user_session (tg_user_id, state, payload, updated_at)
		VALUES ($1,$2,$3,now())
		ON CONFLICT (tg_user_id) DO UPDATE
		   SET state=EXCLUDED.state, payload=EXCLUDED.payload, updated_at=now()
	`, tgUserID, s.State, pb)
	return err
}

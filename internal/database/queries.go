package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/teris-io/shortid"
)

const (
	profileColumns = "id, is_moving, display_name, full_name, username, date_of_birth, role, reasons, phone, " +
		"from_country, from_state, to_country, to_province, to_city, " +
		"current_country, current_province, current_city, created_at, updated_at"
	roomColumns    = "id, name, type, country, province, city, is_active"
	messageColumns = "id, room_id, sender_id, text, created_at"
)

type scanner interface {
	Scan(dest ...any) error
}

func scanProfile(row scanner) (Profile, error) {
	var p Profile
	err := row.Scan(
		&p.Id,
		&p.IsMoving,
		&p.DisplayName,
		&p.FullName,
		&p.Username,
		&p.DateOfBirth,
		&p.Role,
		&p.Reasons,
		&p.Phone,
		&p.FromCountry,
		&p.FromState,
		&p.ToCountry,
		&p.ToProvince,
		&p.ToCity,
		&p.CurrentCountry,
		&p.CurrentProvince,
		&p.CurrentCity,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}

func scanRoom(row scanner) (Room, error) {
	var r Room
	err := row.Scan(&r.Id, &r.Name, &r.Type, &r.Country, &r.Province, &r.City, &r.IsActive)
	return r, err
}

func scanMessage(row scanner) (Message, error) {
	var m Message
	err := row.Scan(&m.Id, &m.RoomId, &m.SenderId, &m.Text, &m.CreatedAt)
	return m, err
}

func (db *PgRepository) CreateAccount(ctx context.Context, params CreateAccountParams) (Account, error) {
	now := time.Now().UTC()
	row := db.conn.QueryRowContext(ctx,
		"INSERT INTO accounts (id, email, password_hash, created_at, updated_at) "+
			"VALUES ($1, $2, $3, $4, $5) RETURNING id, email, created_at, updated_at",
		params.Id,
		params.EmailAddress,
		params.PasswordHash,
		now,
		now,
	)

	var a Account
	err := row.Scan(&a.Id, &a.EmailAddress, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

func (db *PgRepository) GetAccountById(ctx context.Context, id string) (Account, error) {
	row := db.conn.QueryRowContext(ctx,
		"SELECT id, email, created_at, updated_at FROM accounts WHERE id = $1 LIMIT 1",
		id,
	)

	var a Account
	err := row.Scan(&a.Id, &a.EmailAddress, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

func (db *PgRepository) GetAccountByEmail(ctx context.Context, email string) (Account, error) {
	row := db.conn.QueryRowContext(ctx,
		"SELECT id, email, password_hash, created_at, updated_at FROM accounts WHERE email = $1 LIMIT 1",
		email,
	)

	var a Account
	err := row.Scan(&a.Id, &a.EmailAddress, &a.PasswordHash, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

func (db *PgRepository) GetProfile(ctx context.Context, id string) (Profile, error) {
	row := db.conn.QueryRowContext(ctx,
		"SELECT "+profileColumns+" FROM profiles WHERE id = $1 LIMIT 1",
		id,
	)
	return scanProfile(row)
}

func (db *PgRepository) UsernameTaken(ctx context.Context, username, exceptId string) (bool, error) {
	var exists bool
	err := db.conn.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM profiles WHERE username = $1 AND id <> $2)",
		username,
		exceptId,
	).Scan(&exists)
	return exists, err
}

func (db *PgRepository) UpsertProfile(ctx context.Context, p Profile) (Profile, error) {
	now := time.Now().UTC()
	row := db.conn.QueryRowContext(ctx,
		"INSERT INTO profiles ("+
			"id, is_moving, display_name, full_name, username, date_of_birth, role, reasons, phone, "+
			"from_country, from_state, to_country, to_province, to_city, "+
			"current_country, current_province, current_city, created_at, updated_at"+
			") VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $18) "+
			"ON CONFLICT (id) DO UPDATE SET "+
			"is_moving = EXCLUDED.is_moving, display_name = EXCLUDED.display_name, full_name = EXCLUDED.full_name, "+
			"username = EXCLUDED.username, date_of_birth = EXCLUDED.date_of_birth, role = EXCLUDED.role, "+
			"reasons = EXCLUDED.reasons, phone = EXCLUDED.phone, from_country = EXCLUDED.from_country, "+
			"from_state = EXCLUDED.from_state, to_country = EXCLUDED.to_country, to_province = EXCLUDED.to_province, "+
			"to_city = EXCLUDED.to_city, current_country = EXCLUDED.current_country, "+
			"current_province = EXCLUDED.current_province, current_city = EXCLUDED.current_city, "+
			"updated_at = EXCLUDED.updated_at "+
			"RETURNING "+profileColumns,
		p.Id,
		p.IsMoving,
		p.DisplayName,
		p.FullName,
		p.Username,
		p.DateOfBirth,
		p.Role,
		p.Reasons,
		p.Phone,
		p.FromCountry,
		p.FromState,
		p.ToCountry,
		p.ToProvince,
		p.ToCity,
		p.CurrentCountry,
		p.CurrentProvince,
		p.CurrentCity,
		now,
	)
	return scanProfile(row)
}

func (db *PgRepository) ListProfiles(ctx context.Context, ids []string) ([]Profile, error) {
	if len(ids) == 0 {
		return []Profile{}, nil
	}

	rows, err := db.conn.QueryContext(ctx,
		"SELECT "+profileColumns+" FROM profiles WHERE id = ANY($1::uuid[])",
		pq.Array(ids),
	)
	if err != nil {
		return nil, fmt.Errorf("query profiles: %w", err)
	}
	defer rows.Close()

	profiles := make([]Profile, 0, len(ids))
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		profiles = append(profiles, p)
	}

	return profiles, rows.Err()
}

func (db *PgRepository) GetRoom(ctx context.Context, id string) (Room, error) {
	row := db.conn.QueryRowContext(ctx,
		"SELECT "+roomColumns+" FROM rooms WHERE id = $1 LIMIT 1",
		id,
	)
	return scanRoom(row)
}

func (db *PgRepository) queryRooms(ctx context.Context, query string, args ...any) ([]Room, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query rooms: %w", err)
	}
	defer rows.Close()

	rooms := make([]Room, 0)
	for rows.Next() {
		r, err := scanRoom(rows)
		if err != nil {
			return nil, fmt.Errorf("scan room: %w", err)
		}
		rooms = append(rooms, r)
	}

	return rooms, rows.Err()
}

func (db *PgRepository) ListActiveRooms(ctx context.Context, country string) ([]Room, error) {
	return db.queryRooms(ctx,
		"SELECT "+roomColumns+" FROM rooms WHERE country = $1 AND is_active = TRUE ORDER BY type, province, city",
		country,
	)
}

func (db *PgRepository) ListRoomsForUser(ctx context.Context, userId string) ([]Room, error) {
	return db.queryRooms(ctx,
		"SELECT r.id, r.name, r.type, r.country, r.province, r.city, r.is_active "+
			"FROM room_memberships m JOIN rooms r ON r.id = m.room_id "+
			"WHERE m.user_id = $1 ORDER BY m.created_at",
		userId,
	)
}

func (db *PgRepository) ListMembershipRoomIds(ctx context.Context, userId string) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx,
		"SELECT room_id FROM room_memberships WHERE user_id = $1",
		userId,
	)
	if err != nil {
		return nil, fmt.Errorf("query memberships: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan membership: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

func (db *PgRepository) MembershipExists(ctx context.Context, roomId, userId string) (bool, error) {
	var exists bool
	err := db.conn.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM room_memberships WHERE room_id = $1 AND user_id = $2)",
		roomId,
		userId,
	).Scan(&exists)
	return exists, err
}

func (db *PgRepository) CreateMembership(ctx context.Context, roomId, userId string) error {
	_, err := db.conn.ExecContext(ctx,
		"INSERT INTO room_memberships (room_id, user_id, created_at) VALUES ($1, $2, $3) "+
			"ON CONFLICT (room_id, user_id) DO NOTHING",
		roomId,
		userId,
		time.Now().UTC(),
	)
	return err
}

// SeedRooms inserts the given rooms unless a room with the same geography
// already exists. Rooms without an id get a generated short id.
func (db *PgRepository) SeedRooms(ctx context.Context, rooms []Room) (int, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	var inserted int
	for _, r := range rooms {
		id := r.Id
		if id == "" {
			id, err = shortid.Generate()
			if err != nil {
				return 0, fmt.Errorf("generate room id: %w", err)
			}
		}

		var res sql.Result
		res, err = tx.ExecContext(ctx,
			"INSERT INTO rooms (id, name, type, country, province, city, is_active) "+
				"VALUES ($1, $2, $3, $4, $5, $6, $7) "+
				"ON CONFLICT (type, country, province, city) DO NOTHING",
			id,
			r.Name,
			r.Type,
			r.Country,
			r.Province,
			r.City,
			r.IsActive,
		)
		if err != nil {
			return 0, fmt.Errorf("insert room %q: %w", r.Name, err)
		}

		n, _ := res.RowsAffected()
		inserted += int(n)
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}

	return inserted, nil
}

func (db *PgRepository) CreateMessage(ctx context.Context, params CreateMessageParams) (Message, error) {
	row := db.conn.QueryRowContext(ctx,
		"INSERT INTO messages (id, room_id, sender_id, text) VALUES ($1, $2, $3, $4) "+
			"RETURNING "+messageColumns,
		params.Id,
		params.RoomId,
		params.SenderId,
		params.Text,
	)
	return scanMessage(row)
}

func (db *PgRepository) GetMessage(ctx context.Context, id string) (Message, error) {
	row := db.conn.QueryRowContext(ctx, "SELECT "+messageColumns+" FROM messages WHERE id = $1", id)
	return scanMessage(row)
}

// GetMessages returns the most recent limit messages of a room in ascending
// creation order.
func (db *PgRepository) GetMessages(ctx context.Context, roomId string, limit int) ([]Message, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := db.conn.QueryContext(ctx,
		"SELECT "+messageColumns+" FROM ("+
			"SELECT "+messageColumns+" FROM messages WHERE room_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2"+
			") recent ORDER BY created_at ASC, id ASC",
		roomId,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	messages := make([]Message, 0, limit)
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, m)
	}

	return messages, rows.Err()
}

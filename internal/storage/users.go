package storage

import "context"

// TouchUser records a signed-in user by backend uid. Updates last_seen and,
// when non-empty, the email on each call. Returns the local row id.
func (db *DB) TouchUser(ctx context.Context, uid, email string) (int, error) {
	var id int
	err := db.Pool.QueryRow(ctx, `
		INSERT INTO users (uid, email)
		VALUES ($1, $2)
		ON CONFLICT (uid) DO UPDATE
			SET last_seen = NOW(), email = COALESCE(NULLIF($2, ''), users.email)
		RETURNING id
	`, uid, email).Scan(&id)
	return id, err
}

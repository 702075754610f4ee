package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"elo-welcoming/internal/identity"
	"elo-welcoming/internal/models"
)

const welcomerColumns = `ac.id_acolhedor, ac.acolhedor_nome, COALESCE(ac.acolhedor_apelido, ''),
	ac.acolhedor_email, COALESCE(ac.acolhedor_celular, ''), ac.id_gps`

func scanWelcomer(sc interface{ Scan(...any) error }) (models.Welcomer, error) {
	var (
		w     models.Welcomer
		group sql.NullInt64
	)
	if err := sc.Scan(&w.ID, &w.Name, &w.Alias, &w.Email, &w.Phone, &group); err != nil {
		return w, err
	}
	if group.Valid {
		id := group.Int64
		w.GroupID = &id
	}
	return w, nil
}

// FindWelcomer resolves a welcomer referenced by name. The display name and
// the alias are matched exactly, then the normalized key of ref is tried
// against the stored name (the loader stores names normalized). When several
// rows match, the lowest id wins.
func (q queries) FindWelcomer(ctx context.Context, ref string) (models.Welcomer, error) {
	row := q.q.QueryRowContext(ctx, `
		SELECT `+welcomerColumns+`
		FROM acolhedores ac
		WHERE ac.acolhedor_nome = ?1 OR ac.acolhedor_apelido = ?1 OR ac.acolhedor_nome = ?2
		ORDER BY ac.id_acolhedor
		LIMIT 1`,
		ref, identity.Normalize(ref),
	)
	w, err := scanWelcomer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Welcomer{}, ErrNotFound
	}
	if err != nil {
		return models.Welcomer{}, fmt.Errorf("failed to find welcomer %q: %w", ref, err)
	}
	return w, nil
}

// FindWelcomerByEmail resolves a welcomer by the unique email address
func (q queries) FindWelcomerByEmail(ctx context.Context, email string) (models.Welcomer, error) {
	row := q.q.QueryRowContext(ctx, `
		SELECT `+welcomerColumns+`
		FROM acolhedores ac
		WHERE ac.acolhedor_email = ? COLLATE NOCASE`, email)
	w, err := scanWelcomer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Welcomer{}, ErrNotFound
	}
	if err != nil {
		return models.Welcomer{}, fmt.Errorf("failed to find welcomer by email: %w", err)
	}
	return w, nil
}

// FindWelcomerByPhone resolves a welcomer by phone, comparing digits only
func (q queries) FindWelcomerByPhone(ctx context.Context, digits string) (models.Welcomer, error) {
	rows, err := q.q.QueryContext(ctx, `
		SELECT `+welcomerColumns+`
		FROM acolhedores ac
		WHERE ac.acolhedor_celular IS NOT NULL AND ac.acolhedor_celular <> ''
		ORDER BY ac.id_acolhedor`)
	if err != nil {
		return models.Welcomer{}, fmt.Errorf("failed to list welcomer phones: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		w, err := scanWelcomer(rows)
		if err != nil {
			return models.Welcomer{}, fmt.Errorf("failed to scan welcomer: %w", err)
		}
		if phoneMatches(w.Phone, digits) {
			return w, nil
		}
	}
	if err := rows.Err(); err != nil {
		return models.Welcomer{}, err
	}
	return models.Welcomer{}, ErrNotFound
}

// InsertWelcomer creates a welcomer row. A duplicate email surfaces as a
// unique violation (see IsUniqueViolation).
func (q queries) InsertWelcomer(ctx context.Context, w models.Welcomer) (int64, error) {
	var group sql.NullInt64
	if w.GroupID != nil {
		group = sql.NullInt64{Int64: *w.GroupID, Valid: true}
	}
	res, err := q.q.ExecContext(ctx, `
		INSERT INTO acolhedores (acolhedor_nome, acolhedor_apelido, acolhedor_email, acolhedor_celular, id_gps)
		VALUES (?, ?, ?, ?, ?)`,
		w.Name, nullString(w.Alias), w.Email, nullString(w.Phone), group,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// PendingWelcomers returns the distinct welcomers with at least one
// Pending visitor, ordered by id.
func (q queries) PendingWelcomers(ctx context.Context) ([]models.Welcomer, error) {
	rows, err := q.q.QueryContext(ctx, `
		SELECT DISTINCT `+welcomerColumns+`
		FROM acolhimento a
		JOIN acolhedores ac ON a.id_acolhedor = ac.id_acolhedor
		WHERE a.status_contato = ?
		ORDER BY ac.id_acolhedor`, models.PendingValue)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending welcomers: %w", err)
	}
	defer rows.Close()

	var out []models.Welcomer
	for rows.Next() {
		w, err := scanWelcomer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan welcomer: %w", err)
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func phoneMatches(stored, digits string) bool {
	s := onlyDigits(stored)
	if s == "" || digits == "" {
		return false
	}
	if s == digits {
		return true
	}
	// Stored numbers often lack the country code ("(11) 99999-9999") while
	// inbound senders carry it. Both sides must keep the area code.
	const minSuffix = 10
	if len(s) >= minSuffix && len(digits) >= minSuffix {
		return hasSuffix(digits, s) || hasSuffix(s, digits)
	}
	return false
}

func hasSuffix(long, short string) bool {
	return len(long) >= len(short) && long[len(long)-len(short):] == short
}

func onlyDigits(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			out = append(out, s[i])
		}
	}
	return string(out)
}

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"elo-welcoming/internal/models"
)

const visitorColumns = `a.id, a.nome, a.idade, a.numero, CAST(a.data_decisao AS TEXT),
	CAST(a.data_carga AS TEXT), a.status_contato, a.observacoes, a.id_acolhedor, a.HouM, a.evento`

const loadTimestampLayout = "2006-01-02 15:04:05"

func scanVisitor(sc interface{ Scan(...any) error }) (models.Visitor, error) {
	var (
		v        models.Visitor
		age      sql.NullInt64
		phone    sql.NullString
		loadedAt sql.NullString
		status   sql.NullString
		obs      sql.NullString
		welcomer sql.NullInt64
		gender   sql.NullString
		event    sql.NullString
	)
	err := sc.Scan(&v.ID, &v.Name, &age, &phone, &v.DecisionDate,
		&loadedAt, &status, &obs, &welcomer, &gender, &event)
	if err != nil {
		return v, err
	}

	if age.Valid {
		n := int(age.Int64)
		v.Age = &n
	}
	if welcomer.Valid {
		id := welcomer.Int64
		v.WelcomerID = &id
	}
	if loadedAt.Valid {
		if t, err := time.Parse(loadTimestampLayout, loadedAt.String); err == nil {
			v.LoadedAt = t
		}
	}
	v.Phone = phone.String
	v.Status = models.ParseContactStatus(status.String)
	v.Observation = obs.String
	v.Gender = gender.String
	v.Event = event.String
	return v, nil
}

// InsertVisitor creates a Pending visitor record. Re-submitting the same
// (name, decision date) pair surfaces as a unique violation.
func (q queries) InsertVisitor(ctx context.Context, v models.NewVisitor) (int64, error) {
	res, err := q.q.ExecContext(ctx, `
		INSERT INTO acolhimento (nome, idade, numero, data_decisao, id_acolhedor, HouM, evento, status_contato)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		v.Name, nullInt(v.Age), nullString(v.Phone), v.DecisionDate,
		v.WelcomerID, nullString(v.Gender), nullString(v.Event), models.Pending(),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// GetVisitor returns the record for a (name, decision date) pair
func (q queries) GetVisitor(ctx context.Context, name, decisionDate string) (models.Visitor, error) {
	row := q.q.QueryRowContext(ctx,
		"SELECT "+visitorColumns+" FROM acolhimento a WHERE a.nome = ? AND a.data_decisao = ?",
		name, decisionDate,
	)
	v, err := scanVisitor(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Visitor{}, ErrNotFound
	}
	if err != nil {
		return models.Visitor{}, fmt.Errorf("failed to get visitor: %w", err)
	}
	return v, nil
}

// PendingVisitors returns the Pending visitors assigned to a welcomer
func (q queries) PendingVisitors(ctx context.Context, welcomerID int64) ([]models.Visitor, error) {
	return q.listVisitors(ctx,
		"WHERE a.id_acolhedor = ? AND a.status_contato = ? ORDER BY a.id",
		welcomerID, models.PendingValue,
	)
}

// VisitorsByStatus returns every visitor currently in the given status
func (q queries) VisitorsByStatus(ctx context.Context, status models.ContactStatus) ([]models.Visitor, error) {
	return q.listVisitors(ctx, "WHERE a.status_contato = ? ORDER BY a.data_decisao, a.id", status.String())
}

// AllVisitors returns every visitor record
func (q queries) AllVisitors(ctx context.Context) ([]models.Visitor, error) {
	return q.listVisitors(ctx, "ORDER BY a.data_decisao, a.id")
}

func (q queries) listVisitors(ctx context.Context, where string, args ...any) ([]models.Visitor, error) {
	rows, err := q.q.QueryContext(ctx, "SELECT "+visitorColumns+" FROM acolhimento a "+where, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list visitors: %w", err)
	}
	defer rows.Close()

	var out []models.Visitor
	for rows.Next() {
		v, err := scanVisitor(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan visitor: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// CountVisitors returns the number of stored visitor records
func (q queries) CountVisitors(ctx context.Context) (int, error) {
	var n int
	if err := q.q.QueryRowContext(ctx, "SELECT COUNT(*) FROM acolhimento").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count visitors: %w", err)
	}
	return n, nil
}

// MarkNotified moves exactly the given records from Pending to Notified.
// Records inserted after ids were read are never touched.
func (q queries) MarkNotified(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	args := make([]any, 0, len(ids)+2)
	args = append(args, models.Notified(), models.PendingValue)
	for _, id := range ids {
		args = append(args, id)
	}

	res, err := q.q.ExecContext(ctx,
		"UPDATE acolhimento SET status_contato = ? WHERE status_contato = ? AND id IN ("+placeholders(len(ids))+")",
		args...,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to mark visitors notified: %w", err)
	}
	return res.RowsAffected()
}

// ApplyReply sets status and observation on every Notified record whose
// name contains fragment (LIKE semantics, case-insensitive for ASCII) and
// returns how many rows changed. A non-zero welcomerID restricts the match to
// that welcomer's visitors. Resolved records never match again.
func (q queries) ApplyReply(ctx context.Context, fragment string, status models.ContactStatus, observation *string, welcomerID int64) (int64, error) {
	var obs sql.NullString
	if observation != nil {
		obs = sql.NullString{String: *observation, Valid: true}
	}

	query := `
		UPDATE acolhimento
		SET status_contato = ?, observacoes = ?
		WHERE nome LIKE ? ESCAPE '\' AND status_contato = ?`
	args := []any{status, obs, "%" + escapeLike(strings.TrimSpace(fragment)) + "%", models.NotifiedValue}
	if welcomerID != 0 {
		query += " AND id_acolhedor = ?"
		args = append(args, welcomerID)
	}

	res, err := q.q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to apply reply for %q: %w", fragment, err)
	}
	return res.RowsAffected()
}

// PendingByWelcomer counts Pending visitors per welcomer for decision dates
// within [from, to] (yyyy-mm-dd, either bound may be empty).
func (q queries) PendingByWelcomer(ctx context.Context, from, to string) ([]models.PendingCount, error) {
	query := `
		SELECT COALESCE(ac.acolhedor_nome, ''), COALESCE(g.nome_lider_gps, ''), COUNT(*)
		FROM acolhimento a
		LEFT JOIN acolhedores ac ON ac.id_acolhedor = a.id_acolhedor
		LEFT JOIN gps g ON g.id_gps = ac.id_gps
		WHERE a.status_contato = ?`
	args := []any{models.PendingValue}
	if from != "" {
		query += " AND a.data_decisao >= ?"
		args = append(args, from)
	}
	if to != "" {
		query += " AND a.data_decisao <= ?"
		args = append(args, to)
	}
	query += " GROUP BY ac.id_acolhedor ORDER BY COUNT(*) DESC, ac.acolhedor_nome"

	rows, err := q.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to count pending visitors: %w", err)
	}
	defer rows.Close()

	var out []models.PendingCount
	for rows.Next() {
		var c models.PendingCount
		if err := rows.Scan(&c.WelcomerName, &c.GroupLeader, &c.Pending); err != nil {
			return nil, fmt.Errorf("failed to scan pending count: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"elo-welcoming/internal/models"
)

// FindGroupByLeader returns the id of the group whose normalized leader
// name equals leader exactly.
func (q queries) FindGroupByLeader(ctx context.Context, leader string) (int64, error) {
	var id int64
	err := q.q.QueryRowContext(ctx,
		"SELECT id_gps FROM gps WHERE nome_lider_gps = ?", leader,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to find group %q: %w", leader, err)
	}
	return id, nil
}

// InsertGroup creates a group for an already normalized leader name
func (q queries) InsertGroup(ctx context.Context, leader string) (int64, error) {
	res, err := q.q.ExecContext(ctx, "INSERT INTO gps (nome_lider_gps) VALUES (?)", leader)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListGroups returns every group ordered by id
func (q queries) ListGroups(ctx context.Context) ([]models.Group, error) {
	rows, err := q.q.QueryContext(ctx, "SELECT id_gps, nome_lider_gps FROM gps ORDER BY id_gps")
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	var groups []models.Group
	for rows.Next() {
		var g models.Group
		if err := rows.Scan(&g.ID, &g.LeaderName); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

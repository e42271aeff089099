package storage

import (
	"context"
	"fmt"

	"protoflow/internal/models"
)

type PersonRepo struct {
	db *DB
}

func NewPersonRepo(db *DB) *PersonRepo {
	return &PersonRepo{db: db}
}

// ListActivePersons returns the roster the matcher scores against, council
// members and staff alike.
func (r *PersonRepo) ListActivePersons(ctx context.Context) ([]models.Person, error) {
	rows, err := r.db.Pool.Query(ctx, `
SELECT person_id, full_name, COALESCE(faction,''), term_id, is_active, is_staff, COALESCE(role,''), created_at
FROM persons
WHERE is_active
ORDER BY full_name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list active persons: %w", err)
	}
	defer rows.Close()

	out := make([]models.Person, 0)
	for rows.Next() {
		var p models.Person
		if err := rows.Scan(&p.PersonID, &p.FullName, &p.Faction, &p.TermID, &p.IsActive, &p.IsStaff, &p.Role, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan person: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate persons: %w", err)
	}
	return out, nil
}

func (r *PersonRepo) GetPersonByID(ctx context.Context, personID int) (models.Person, error) {
	var p models.Person
	err := r.db.Pool.QueryRow(ctx, `
SELECT person_id, full_name, COALESCE(faction,''), term_id, is_active, is_staff, COALESCE(role,''), created_at
FROM persons
WHERE person_id=$1`, personID).
		Scan(&p.PersonID, &p.FullName, &p.Faction, &p.TermID, &p.IsActive, &p.IsStaff, &p.Role, &p.CreatedAt)
	if err != nil {
		return models.Person{}, fmt.Errorf("get person by id: %w", err)
	}
	return p, nil
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/contacts-api/internal/model"
)

// ContactRepo persists contacts in the 'contacts' table.  Every query is
// scoped by user_id so ownership checks live in the SQL, not the handlers.
type ContactRepo struct{ DB *sql.DB }

func NewContactRepo(db *sql.DB) *ContactRepo { return &ContactRepo{DB: db} }

const contactColumns = "id,user_id,name,surname,email,phone,birthday,COALESCE(notes,''),created_at,updated_at"

func scanContact(row *sql.Row) (model.Contact, error) {
	var ct model.Contact
	err := row.Scan(&ct.ID, &ct.UserID, &ct.Name, &ct.Surname, &ct.Email,
		&ct.Phone, &ct.Birthday, &ct.Notes, &ct.CreatedAt, &ct.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Contact{}, ErrNotFound
	}
	return ct, err
}

func collectContacts(rows *sql.Rows) ([]model.Contact, error) {
	defer rows.Close()
	out := []model.Contact{}
	for rows.Next() {
		var ct model.Contact
		if err := rows.Scan(&ct.ID, &ct.UserID, &ct.Name, &ct.Surname, &ct.Email,
			&ct.Phone, &ct.Birthday, &ct.Notes, &ct.CreatedAt, &ct.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, ct)
	}
	return out, rows.Err()
}

// List returns a page of the user's contacts ordered by id.
func (r *ContactRepo) List(ctx context.Context, userID uint64, limit, offset int) ([]model.Contact, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+contactColumns+" FROM contacts WHERE user_id=? ORDER BY id LIMIT ? OFFSET ?",
		userID, limit, offset)
	if err != nil {
		return nil, err
	}
	return collectContacts(rows)
}

// GetByID fetches a single contact owned by the user.
func (r *ContactRepo) GetByID(ctx context.Context, userID, id uint64) (model.Contact, error) {
	return scanContact(r.DB.QueryRowContext(ctx,
		"SELECT "+contactColumns+" FROM contacts WHERE id=? AND user_id=? LIMIT 1",
		id, userID))
}

// Create inserts a contact and returns it with generated fields populated.
func (r *ContactRepo) Create(ctx context.Context, ct model.Contact) (model.Contact, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO contacts (user_id, name, surname, email, phone, birthday, notes) VALUES (?,?,?,?,?,?,?)",
		ct.UserID, ct.Name, ct.Surname, ct.Email, ct.Phone, ct.Birthday, ct.Notes)
	if err != nil {
		return model.Contact{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Contact{}, err
	}
	return r.GetByID(ctx, ct.UserID, uint64(id))
}

// Update overwrites the editable fields of an existing contact.  Returns
// ErrNotFound when the contact does not exist or belongs to another user.
func (r *ContactRepo) Update(ctx context.Context, userID, id uint64, ct model.Contact) (model.Contact, error) {
	if _, err := r.GetByID(ctx, userID, id); err != nil {
		return model.Contact{}, err
	}
	_, err := r.DB.ExecContext(ctx,
		"UPDATE contacts SET name=?, surname=?, email=?, phone=?, birthday=?, notes=? WHERE id=? AND user_id=?",
		ct.Name, ct.Surname, ct.Email, ct.Phone, ct.Birthday, ct.Notes, id, userID)
	if err != nil {
		return model.Contact{}, err
	}
	return r.GetByID(ctx, userID, id)
}

// Delete removes a contact and returns the deleted row.
func (r *ContactRepo) Delete(ctx context.Context, userID, id uint64) (model.Contact, error) {
	ct, err := r.GetByID(ctx, userID, id)
	if err != nil {
		return model.Contact{}, err
	}
	if _, err := r.DB.ExecContext(ctx,
		"DELETE FROM contacts WHERE id=? AND user_id=?", id, userID); err != nil {
		return model.Contact{}, err
	}
	return ct, nil
}

// Search returns contacts whose name, surname, email or phone contains the
// query, case-insensitively.
func (r *ContactRepo) Search(ctx context.Context, userID uint64, query string) ([]model.Contact, error) {
	like := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+contactColumns+` FROM contacts
		 WHERE user_id=? AND (LOWER(name) LIKE ? OR LOWER(surname) LIKE ? OR LOWER(email) LIKE ? OR phone LIKE ?)
		 ORDER BY id`,
		userID, like, like, like, like)
	if err != nil {
		return nil, err
	}
	return collectContacts(rows)
}

// UpcomingBirthdays returns contacts whose birthday (month and day) falls
// within the next seven days.  The month-day comparison is done on a
// DATE_FORMAT projection; when the window crosses the year boundary the
// range splits into two.
func (r *ContactRepo) UpcomingBirthdays(ctx context.Context, userID uint64, now time.Time) ([]model.Contact, error) {
	from := now.Format("01-02")
	to := now.AddDate(0, 0, 7).Format("01-02")

	cond := "DATE_FORMAT(birthday,'%m-%d') BETWEEN ? AND ?"
	args := []any{userID, from, to}
	if to < from { // window wraps past December 31
		cond = "(DATE_FORMAT(birthday,'%m-%d') >= ? OR DATE_FORMAT(birthday,'%m-%d') <= ?)"
	}

	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+contactColumns+" FROM contacts WHERE user_id=? AND "+cond+" ORDER BY id",
		args...)
	if err != nil {
		return nil, err
	}
	return collectContacts(rows)
}

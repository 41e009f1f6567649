package usersgorm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type Repo struct{ db *gorm.DB }

func New(db *gorm.DB) *Repo { return &Repo{db: db} }

// sortColumns is the allowlist of sortable fields; anything else falls back
// to id so a crafted sortBy can never reach raw SQL.
var sortColumns = map[string]string{
	"id":          "id",
	"username":    "username",
	"displayName": "display_name",
	"email":       "email",
	"status":      "status",
	"balance":     "balance",
	"createdAt":   "created_at",
}

var bulkFields = map[string]string{
	"status": "status",
}

// ListOptions mirrors the wire query contract: one-based page, limit,
// sortBy/sortOrder, free-text search plus the status filter.
type ListOptions struct {
	Page     int
	PageSize int
	SortBy   string
	SortDesc bool
	Search   string
	Status   string
}

// List returns one page plus the unfiltered-after-search total so callers
// can compute totalPages.
func (r *Repo) List(ctx context.Context, opts ListOptions) ([]*UserAccount, int64, error) {
	q := r.db.WithContext(ctx).Model(&UserAccount{})
	if s := strings.TrimSpace(opts.Search); s != "" {
		pat := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(username) LIKE ? OR LOWER(display_name) LIKE ? OR LOWER(email) LIKE ?", pat, pat, pat)
	}
	if st := strings.TrimSpace(opts.Status); st != "" {
		q = q.Where("status = ?", st)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	col, ok := sortColumns[opts.SortBy]
	if !ok {
		col = "id"
	}
	dir := "ASC"
	if opts.SortDesc {
		dir = "DESC"
	}

	size := opts.PageSize
	if size <= 0 {
		size = 20
	}
	page := opts.Page
	if page <= 0 {
		page = 1
	}

	var arr []*UserAccount
	err := q.Order(col + " " + dir).Order("id ASC").
		Limit(size).Offset((page - 1) * size).
		Find(&arr).Error
	if err != nil {
		return nil, 0, err
	}
	return arr, total, nil
}

func (r *Repo) Create(ctx context.Context, u *UserAccount) error {
	return r.db.WithContext(ctx).Create(u).Error
}
func (r *Repo) Update(ctx context.Context, u *UserAccount) error {
	return r.db.WithContext(ctx).Save(u).Error
}
func (r *Repo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&UserAccount{}, id).Error
}
func (r *Repo) Get(ctx context.Context, id uint) (*UserAccount, error) {
	var u UserAccount
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}
func (r *Repo) GetByUsername(ctx context.Context, username string) (*UserAccount, error) {
	var u UserAccount
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// BulkSet applies one field update to a batch of ids inside a transaction.
// Only allowlisted fields may be touched this way.
func (r *Repo) BulkSet(ctx context.Context, ids []uint, field, value string) (int64, error) {
	col, ok := bulkFields[field]
	if !ok {
		return 0, fmt.Errorf("field %q is not bulk-updatable", field)
	}
	if len(ids) == 0 {
		return 0, nil
	}
	var n int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&UserAccount{}).Where("id IN ?", ids).Update(col, value)
		if res.Error != nil {
			return res.Error
		}
		n = res.RowsAffected
		return nil
	})
	return n, err
}

func (r *Repo) SetPassword(ctx context.Context, userID uint, plain string) error {
	if strings.TrimSpace(plain) == "" {
		return errors.New("empty password")
	}
	h, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Model(&UserAccount{}).Where("id = ?", userID).Update("password_hash", string(h)).Error
}

func (r *Repo) Verify(ctx context.Context, username, plain string) (*UserAccount, error) {
	u, err := r.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if u.PasswordHash == "" {
		return nil, errors.New("password not set")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(plain)); err != nil {
		return nil, errors.New("invalid credentials")
	}
	if u.Status == "banned" || u.Status == "disabled" {
		return nil, errors.New("user disabled")
	}
	return u, nil
}

// Roles
func (r *Repo) CreateRole(ctx context.Context, role *RoleRecord) error {
	return r.db.WithContext(ctx).Create(role).Error
}
func (r *Repo) ListRoles(ctx context.Context) ([]*RoleRecord, error) {
	var arr []*RoleRecord
	if err := r.db.WithContext(ctx).Order("id DESC").Find(&arr).Error; err != nil {
		return nil, err
	}
	return arr, nil
}
func (r *Repo) AddUserRole(ctx context.Context, userID, roleID uint) error {
	return r.db.WithContext(ctx).Create(&UserRoleRecord{UserID: userID, RoleID: roleID}).Error
}
func (r *Repo) RemoveUserRole(ctx context.Context, userID, roleID uint) error {
	return r.db.WithContext(ctx).Where("user_id = ? AND role_id = ?", userID, roleID).Delete(&UserRoleRecord{}).Error
}
func (r *Repo) ListUserRoles(ctx context.Context, userID uint) ([]string, error) {
	var names []string
	err := r.db.WithContext(ctx).
		Raw("SELECT r.name FROM role_records r JOIN user_role_records ur ON r.id=ur.role_id WHERE ur.user_id=? AND ur.deleted_at IS NULL", userID).
		Scan(&names).Error
	if err != nil {
		return nil, err
	}
	return names, nil
}

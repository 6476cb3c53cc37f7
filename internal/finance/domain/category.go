package domain

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sebuszqo/HomeBudget/internal/finance/errors"
)

const maxCategoryNameLength = 50

// Owner says whether a category is a global preset or belongs to one user.
// The zero value is Global.
type Owner struct {
	userID int64
}

func Global() Owner {
	return Owner{}
}

func OwnedBy(userID int64) Owner {
	return Owner{userID: userID}
}

func (o Owner) IsGlobal() bool {
	return o.userID == 0
}

// UserID returns the owning user and false for global categories.
func (o Owner) UserID() (int64, bool) {
	return o.userID, o.userID != 0
}

type Category struct {
	ID        int64
	Name      string
	Owner     Owner
	CreatedAt time.Time
}

// AccessibleBy reports whether userID may attach expenses to the category.
func (c Category) AccessibleBy(userID int64) bool {
	return c.Owner.IsGlobal() || c.Owner.userID == userID
}

// DeletableBy reports whether userID may delete the category. Globals never are.
func (c Category) DeletableBy(userID int64) bool {
	return !c.Owner.IsGlobal() && c.Owner.userID == userID
}

func NewUserCategory(name string, userID int64) (*Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.NewValidationError("Category name must not be empty")
	}
	if utf8.RuneCountInString(name) > maxCategoryNameLength {
		return nil, errors.NewValidationError("Category name must be of length at most 50")
	}
	return &Category{Name: name, Owner: OwnedBy(userID)}, nil
}

type CategoryRepository interface {
	// FindAccessible lists global categories and the ones owned by userID, ordered by id.
	FindAccessible(ctx context.Context, userID int64) ([]Category, error)
	Create(ctx context.Context, category *Category) error
}

package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"xp-ledger/models"
)

type CategoryInput struct {
	Name  string
	Color string
}

// displayName collapses whitespace and title-cases a user supplied name.
func displayName(name string) string {
	return cases.Title(language.English).String(strings.Join(strings.Fields(name), " "))
}

func (s *ProgressionService) CreateCategory(ctx context.Context, userID string, in CategoryInput) (*models.Category, error) {
	name := displayName(in.Name)
	if name == "" {
		return nil, ErrInvalidInput.withf("category name is required")
	}
	var out models.Category
	err := s.update(ctx, userID, func(snap *models.Snapshot) error {
		sl := slug.Make(name)
		for _, c := range snap.Categories {
			if c.Slug == sl {
				return ErrDuplicateName.withf("category %q already exists", name)
			}
		}
		out = models.Category{
			ID:        uuid.NewString(),
			Name:      name,
			Slug:      sl,
			Color:     strings.TrimSpace(in.Color),
			CreatedAt: s.now().UTC(),
		}
		snap.Categories = append(snap.Categories, out)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *ProgressionService) ListCategories(ctx context.Context, userID string) ([]models.Category, error) {
	out := []models.Category{}
	err := s.view(ctx, userID, func(snap *models.Snapshot) error {
		out = append(out, snap.Categories...)
		return nil
	})
	return out, err
}

// DeleteCategory removes a category and detaches every log, habit and goal that pointed at it.
// Detaching never changes XP.
func (s *ProgressionService) DeleteCategory(ctx context.Context, userID, categoryID string) error {
	return s.update(ctx, userID, func(snap *models.Snapshot) error {
		idx := -1
		for i, c := range snap.Categories {
			if c.ID == categoryID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return ErrCategoryNotFound
		}
		snap.Categories = append(snap.Categories[:idx], snap.Categories[idx+1:]...)

		detach := func(ref **string) {
			if *ref != nil && **ref == categoryID {
				*ref = nil
			}
		}
		for i := range snap.XPLogs {
			detach(&snap.XPLogs[i].CategoryID)
		}
		for i := range snap.Habits {
			detach(&snap.Habits[i].CategoryID)
		}
		for i := range snap.Goals {
			detach(&snap.Goals[i].CategoryID)
		}
		return nil
	})
}

package services

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/dmitrijs2005/yamdb/internal/common"
	"github.com/dmitrijs2005/yamdb/internal/server/models"
	"github.com/dmitrijs2005/yamdb/internal/server/permissions"
	"github.com/dmitrijs2005/yamdb/internal/server/repositories/repomanager"
)

const (
	minScore = 1
	maxScore = 10

	msgScore = "Ensure the score is between 1 and 10."
)

// ReviewPatch is a partial review update.
type ReviewPatch struct {
	Text  *string
	Score *int
}

// ReviewService manages reviews and their comments. Mutations of an
// existing review or comment run the object-level permission check against
// its author.
type ReviewService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	evaluator   *permissions.Evaluator
}

func NewReviewService(db *sql.DB, m repomanager.RepositoryManager, e *permissions.Evaluator) *ReviewService {
	return &ReviewService{db: db, repomanager: m, evaluator: e}
}

func (s *ReviewService) titleExists(ctx context.Context, titleID int64) error {
	if _, err := s.repomanager.Catalog(s.db).GetTitle(ctx, titleID); err != nil {
		return repoError("get title", err)
	}
	return nil
}

func validateReview(text string, score int) error {
	if text == "" {
		return common.NewFieldError("text", msgRequired, common.ErrorValidation)
	}
	if score < minScore || score > maxScore {
		return common.NewFieldError("score", msgScore, common.ErrorValidation)
	}
	return nil
}

func (s *ReviewService) ListReviews(ctx context.Context, titleID int64) ([]*models.Review, error) {
	if err := s.titleExists(ctx, titleID); err != nil {
		return nil, err
	}
	out, err := s.repomanager.Reviews(s.db).List(ctx, titleID)
	if err != nil {
		return nil, repoError("list reviews", err)
	}
	return out, nil
}

func (s *ReviewService) GetReview(ctx context.Context, titleID, id int64) (*models.Review, error) {
	r, err := s.repomanager.Reviews(s.db).Get(ctx, titleID, id)
	if err != nil {
		return nil, repoError("get review", err)
	}
	return r, nil
}

// CreateReview adds the actor's review of a title. A second review of the
// same title by the same author fails with ErrorAlreadyExists.
func (s *ReviewService) CreateReview(ctx context.Context, actor permissions.Actor, titleID int64, text string, score int) (*models.Review, error) {
	if !actor.Authenticated() {
		return nil, common.ErrForbidden
	}
	if err := validateReview(text, score); err != nil {
		return nil, err
	}
	if err := s.titleExists(ctx, titleID); err != nil {
		return nil, err
	}

	r := &models.Review{TitleID: titleID, AuthorID: actor.User.ID, Author: actor.User.UserName, Text: text, Score: score}
	created, err := s.repomanager.Reviews(s.db).Create(ctx, r)
	if err != nil {
		return nil, repoError("create review", err)
	}
	return created, nil
}

func (s *ReviewService) UpdateReview(ctx context.Context, actor permissions.Actor, titleID, id int64, patch ReviewPatch) (*models.Review, error) {
	r, err := s.GetReview(ctx, titleID, id)
	if err != nil {
		return nil, err
	}
	if err := s.evaluator.CheckObject(actor, permissions.Reviews, http.MethodPatch, r.AuthorID); err != nil {
		return nil, err
	}

	if patch.Text != nil {
		r.Text = *patch.Text
	}
	if patch.Score != nil {
		r.Score = *patch.Score
	}
	if err := validateReview(r.Text, r.Score); err != nil {
		return nil, err
	}

	if err := s.repomanager.Reviews(s.db).Update(ctx, r); err != nil {
		return nil, repoError("update review", err)
	}
	return r, nil
}

func (s *ReviewService) DeleteReview(ctx context.Context, actor permissions.Actor, titleID, id int64) error {
	r, err := s.GetReview(ctx, titleID, id)
	if err != nil {
		return err
	}
	if err := s.evaluator.CheckObject(actor, permissions.Reviews, http.MethodDelete, r.AuthorID); err != nil {
		return err
	}
	if err := s.repomanager.Reviews(s.db).Delete(ctx, titleID, id); err != nil {
		return repoError("delete review", err)
	}
	return nil
}

// comments

func (s *ReviewService) ListComments(ctx context.Context, titleID, reviewID int64) ([]*models.Comment, error) {
	if _, err := s.GetReview(ctx, titleID, reviewID); err != nil {
		return nil, err
	}
	out, err := s.repomanager.Comments(s.db).List(ctx, reviewID)
	if err != nil {
		return nil, repoError("list comments", err)
	}
	return out, nil
}

func (s *ReviewService) GetComment(ctx context.Context, titleID, reviewID, id int64) (*models.Comment, error) {
	if _, err := s.GetReview(ctx, titleID, reviewID); err != nil {
		return nil, err
	}
	c, err := s.repomanager.Comments(s.db).Get(ctx, reviewID, id)
	if err != nil {
		return nil, repoError("get comment", err)
	}
	return c, nil
}

func (s *ReviewService) CreateComment(ctx context.Context, actor permissions.Actor, titleID, reviewID int64, text string) (*models.Comment, error) {
	if !actor.Authenticated() {
		return nil, common.ErrForbidden
	}
	if text == "" {
		return nil, common.NewFieldError("text", msgRequired, common.ErrorValidation)
	}
	if _, err := s.GetReview(ctx, titleID, reviewID); err != nil {
		return nil, err
	}

	c := &models.Comment{ReviewID: reviewID, AuthorID: actor.User.ID, Author: actor.User.UserName, Text: text}
	created, err := s.repomanager.Comments(s.db).Create(ctx, c)
	if err != nil {
		return nil, repoError("create comment", err)
	}
	return created, nil
}

func (s *ReviewService) UpdateComment(ctx context.Context, actor permissions.Actor, titleID, reviewID, id int64, text *string) (*models.Comment, error) {
	c, err := s.GetComment(ctx, titleID, reviewID, id)
	if err != nil {
		return nil, err
	}
	if err := s.evaluator.CheckObject(actor, permissions.Comments, http.MethodPatch, c.AuthorID); err != nil {
		return nil, err
	}
	if text != nil {
		if *text == "" {
			return nil, common.NewFieldError("text", msgRequired, common.ErrorValidation)
		}
		c.Text = *text
	}
	if err := s.repomanager.Comments(s.db).Update(ctx, c); err != nil {
		return nil, repoError("update comment", err)
	}
	return c, nil
}

func (s *ReviewService) DeleteComment(ctx context.Context, actor permissions.Actor, titleID, reviewID, id int64) error {
	c, err := s.GetComment(ctx, titleID, reviewID, id)
	if err != nil {
		return err
	}
	if err := s.evaluator.CheckObject(actor, permissions.Comments, http.MethodDelete, c.AuthorID); err != nil {
		return err
	}
	if err := s.repomanager.Comments(s.db).Delete(ctx, reviewID, id); err != nil {
		return repoError("delete comment", err)
	}
	return nil
}

package httpapi

import (
	"time"

	"github.com/dmitrijs2005/yamdb/internal/server/models"
	"github.com/dmitrijs2005/yamdb/internal/server/services"
)

type signupRequest struct {
	UserName string `json:"username"`
	Email    string `json:"email"`
}

type signupReply struct {
	UserName string `json:"username"`
	Email    string `json:"email"`
}

type tokenRequest struct {
	UserName         string `json:"username"`
	ConfirmationCode string `json:"confirmation_code"`
}

type tokenReply struct {
	Token string `json:"token"`
}

type userJSON struct {
	UserName  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Bio       string `json:"bio"`
	Role      string `json:"role"`
}

func toUserJSON(u *models.User) userJSON {
	return userJSON{
		UserName:  u.UserName,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Bio:       u.Bio,
		Role:      u.Role.String(),
	}
}

type userPatchJSON struct {
	UserName  *string `json:"username"`
	Email     *string `json:"email"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Bio       *string `json:"bio"`
	Role      *string `json:"role"`
}

func (p userPatchJSON) patch() services.UserPatch {
	return services.UserPatch{
		UserName:  p.UserName,
		Email:     p.Email,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Bio:       p.Bio,
		Role:      p.Role,
	}
}

type categoryJSON struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type genreJSON struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type titleJSON struct {
	ID          int64         `json:"id"`
	Name        string        `json:"name"`
	Year        int           `json:"year"`
	Rating      *float64      `json:"rating"`
	Description string        `json:"description"`
	Genre       []genreJSON   `json:"genre"`
	Category    *categoryJSON `json:"category"`
}

func toTitleJSON(t *models.Title) titleJSON {
	out := titleJSON{
		ID:          t.ID,
		Name:        t.Name,
		Year:        t.Year,
		Rating:      t.Rating,
		Description: t.Description,
		Genre:       make([]genreJSON, 0, len(t.Genres)),
	}
	for _, g := range t.Genres {
		out.Genre = append(out.Genre, genreJSON(g))
	}
	if t.Category != nil {
		c := categoryJSON(*t.Category)
		out.Category = &c
	}
	return out
}

type titleInputJSON struct {
	Name        string   `json:"name"`
	Year        int      `json:"year"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Genre       []string `json:"genre"`
}

type titlePatchJSON struct {
	Name        *string   `json:"name"`
	Year        *int      `json:"year"`
	Description *string   `json:"description"`
	Category    *string   `json:"category"`
	Genre       *[]string `json:"genre"`
}

type reviewJSON struct {
	ID      int64     `json:"id"`
	Text    string    `json:"text"`
	Author  string    `json:"author"`
	Score   int       `json:"score"`
	PubDate time.Time `json:"pub_date"`
}

func toReviewJSON(r *models.Review) reviewJSON {
	return reviewJSON{ID: r.ID, Text: r.Text, Author: r.Author, Score: r.Score, PubDate: r.PubDate}
}

type reviewInputJSON struct {
	Text  string `json:"text"`
	Score int    `json:"score"`
}

type reviewPatchJSON struct {
	Text  *string `json:"text"`
	Score *int    `json:"score"`
}

type commentJSON struct {
	ID      int64     `json:"id"`
	Text    string    `json:"text"`
	Author  string    `json:"author"`
	PubDate time.Time `json:"pub_date"`
}

func toCommentJSON(c *models.Comment) commentJSON {
	return commentJSON{ID: c.ID, Text: c.Text, Author: c.Author, PubDate: c.PubDate}
}

type commentInputJSON struct {
	Text *string `json:"text"`
}

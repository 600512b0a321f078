package backend

import (
	"context"
	"net/http"

	"github.com/okian/gamerec/internal/domain/model"
)

type rateRequest struct {
	Rating model.Score `json:"rating"`
}

// SubmitRating records value for the subject on behalf of the session user.
// Any 2xx answer is success.
func (c *Client) SubmitRating(ctx context.Context, subjectID string, value model.Score) error {
	return c.do(ctx, call{
		endpoint: "games_rate",
		method:   http.MethodPost,
		path:     []string{"games", subjectID, "rate"},
		body:     rateRequest{Rating: value},
	}, nil)
}

// Register creates an account and signs it in.
func (c *Client) Register(ctx context.Context, r model.Registration) (model.AuthResult, error) {
	var out model.AuthResult
	err := c.do(ctx, call{endpoint: "auth_register", method: http.MethodPost, path: []string{"auth", "register"}, body: r}, &out)
	return out, err
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, cr model.Credentials) (model.AuthResult, error) {
	var out model.AuthResult
	err := c.do(ctx, call{endpoint: "auth_login", method: http.MethodPost, path: []string{"auth", "login"}, body: cr}, &out)
	return out, err
}

// CurrentUser returns the account the token belongs to.
func (c *Client) CurrentUser(ctx context.Context) (model.User, error) {
	var out model.User
	err := c.do(ctx, call{endpoint: "auth_me", method: http.MethodGet, path: []string{"auth", "me"}}, &out)
	return out, err
}

// Recommended returns the personalised recommendations of the session user.
func (c *Client) Recommended(ctx context.Context) ([]model.Game, error) {
	return c.games(ctx, "games_recommended", "recommended")
}

// Popular returns the most popular games.
func (c *Client) Popular(ctx context.Context) ([]model.Game, error) {
	return c.games(ctx, "games_popular", "popular")
}

// Newest returns the newest games.
func (c *Client) Newest(ctx context.Context) ([]model.Game, error) {
	return c.games(ctx, "games_new", "new")
}

func (c *Client) games(ctx context.Context, endpoint, list string) ([]model.Game, error) {
	out := []model.Game{}
	if err := c.do(ctx, call{endpoint: endpoint, method: http.MethodGet, path: []string{"games", list}}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Search returns the games matching f.
func (c *Client) Search(ctx context.Context, f model.SearchFilters) ([]model.Game, error) {
	out := []model.Game{}
	err := c.do(ctx, call{endpoint: "games_search", method: http.MethodGet, path: []string{"games", "search"}, query: f.Values()}, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Game returns one game's details.
func (c *Client) Game(ctx context.Context, id int64) (model.Game, error) {
	var out model.Game
	err := c.do(ctx, call{endpoint: "games_get", method: http.MethodGet, path: []string{"games", model.GameSubject(id)}}, &out)
	return out, err
}

// Like marks a game as liked by the session user.
func (c *Client) Like(ctx context.Context, id int64) error {
	return c.do(ctx, call{endpoint: "games_like", method: http.MethodPost, path: []string{"games", model.GameSubject(id), "like"}}, nil)
}

// Unlike removes the session user's like.
func (c *Client) Unlike(ctx context.Context, id int64) error {
	return c.do(ctx, call{endpoint: "games_unlike", method: http.MethodDelete, path: []string{"games", model.GameSubject(id), "like"}}, nil)
}

// Favorites returns the games the session user liked.
func (c *Client) Favorites(ctx context.Context) ([]model.Game, error) {
	out := []model.Game{}
	if err := c.do(ctx, call{endpoint: "user_favorites", method: http.MethodGet, path: []string{"user", "favorites"}}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateProfile saves the editable profile fields and returns the updated user.
func (c *Client) UpdateProfile(ctx context.Context, p model.ProfileUpdate) (model.User, error) {
	var out model.User
	err := c.do(ctx, call{endpoint: "user_profile", method: http.MethodPut, path: []string{"user", "profile"}, body: p}, &out)
	return out, err
}

// Ratings lists the session user's ratings as the server knows them.
func (c *Client) Ratings(ctx context.Context) ([]model.UserRating, error) {
	out := []model.UserRating{}
	if err := c.do(ctx, call{endpoint: "user_ratings", method: http.MethodGet, path: []string{"user", "ratings"}}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Health checks the backend is up.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, call{endpoint: "health", method: http.MethodGet, path: []string{"health"}}, nil)
}

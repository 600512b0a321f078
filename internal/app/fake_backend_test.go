package service_test

import (
	"context"
	"errors"
	"sync"

	"github.com/okian/gamerec/internal/domain/model"
)

var errBackendDown = errors.New("backend down")

// fakeBackend is an in-memory Backend. Every method counts its calls.
type fakeBackend struct {
	mu      sync.Mutex
	calls   map[string]int
	games   map[int64]model.Game
	users   map[string]model.User
	failing map[string]bool
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		calls: make(map[string]int),
		games: map[int64]model.Game{
			1: {ID: 1, Title: "The Witcher 3", Genre: "RPG", Likes: 10},
			2: {ID: 2, Title: "Forza Horizon 5", Genre: "Racing", Likes: 3, IsLiked: true},
		},
		users:   map[string]model.User{"u1@example.com": {ID: 1, Username: "u1", Email: "u1@example.com"}},
		failing: make(map[string]bool),
	}
}

func (f *fakeBackend) hit(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
	if f.failing[name] {
		return errBackendDown
	}
	return nil
}

func (f *fakeBackend) fail(name string, on bool) {
	f.mu.Lock()
	f.failing[name] = on
	f.mu.Unlock()
}

func (f *fakeBackend) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeBackend) SubmitRating(context.Context, string, model.Score) error {
	return f.hit("rate")
}

func (f *fakeBackend) Recommended(context.Context) ([]model.Game, error) {
	if err := f.hit("recommended"); err != nil {
		return nil, err
	}
	return []model.Game{f.games[1]}, nil
}

func (f *fakeBackend) Register(_ context.Context, r model.Registration) (model.AuthResult, error) {
	if err := f.hit("register"); err != nil {
		return model.AuthResult{}, err
	}
	u := model.User{ID: 2, Username: r.Username, Email: r.Email}
	return model.AuthResult{AccessToken: "tok-" + r.Email, User: u}, nil
}

func (f *fakeBackend) Login(_ context.Context, c model.Credentials) (model.AuthResult, error) {
	if err := f.hit("login"); err != nil {
		return model.AuthResult{}, err
	}
	u, ok := f.users[c.Email]
	if !ok {
		return model.AuthResult{}, errors.New("invalid credentials")
	}
	return model.AuthResult{AccessToken: "tok-" + c.Email, User: u}, nil
}

func (f *fakeBackend) Popular(context.Context) ([]model.Game, error) {
	if err := f.hit("popular"); err != nil {
		return nil, err
	}
	return []model.Game{f.games[2]}, nil
}

func (f *fakeBackend) Newest(context.Context) ([]model.Game, error) {
	if err := f.hit("new"); err != nil {
		return nil, err
	}
	return []model.Game{f.games[1], f.games[2]}, nil
}

func (f *fakeBackend) Search(_ context.Context, sf model.SearchFilters) ([]model.Game, error) {
	if err := f.hit("search"); err != nil {
		return nil, err
	}
	var out []model.Game
	for _, g := range []model.Game{f.games[1], f.games[2]} {
		if sf.Genre == "" || g.Genre == sf.Genre {
			out = append(out, g)
		}
	}
	return out, nil
}

func (f *fakeBackend) Game(_ context.Context, id int64) (model.Game, error) {
	if err := f.hit("game"); err != nil {
		return model.Game{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.games[id]
	if !ok {
		return model.Game{}, errors.New("not found")
	}
	return g, nil
}

func (f *fakeBackend) setLiked(id int64, liked bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	g := f.games[id]
	if g.IsLiked != liked {
		g.IsLiked = liked
		if liked {
			g.Likes++
		} else {
			g.Likes--
		}
	}
	f.games[id] = g
}

func (f *fakeBackend) Like(_ context.Context, id int64) error {
	if err := f.hit("like"); err != nil {
		return err
	}
	f.setLiked(id, true)
	return nil
}

func (f *fakeBackend) Unlike(_ context.Context, id int64) error {
	if err := f.hit("unlike"); err != nil {
		return err
	}
	f.setLiked(id, false)
	return nil
}

func (f *fakeBackend) Favorites(context.Context) ([]model.Game, error) {
	if err := f.hit("favorites"); err != nil {
		return nil, err
	}
	return []model.Game{f.games[2]}, nil
}

func (f *fakeBackend) UpdateProfile(_ context.Context, p model.ProfileUpdate) (model.User, error) {
	if err := f.hit("profile"); err != nil {
		return model.User{}, err
	}
	return model.User{ID: 1, Username: p.Username, Email: p.Email, Bio: p.Bio}, nil
}

func (f *fakeBackend) Ratings(context.Context) ([]model.UserRating, error) {
	if err := f.hit("ratings"); err != nil {
		return nil, err
	}
	return []model.UserRating{{GameID: 1, Rating: 4}}, nil
}

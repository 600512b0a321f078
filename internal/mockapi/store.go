package mockapi

import (
	"errors"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/okian/gamerec/internal/domain/model"
)

// Store errors.
var (
	errUnknownGame = errors.New("game not found")
	errUnknownUser = errors.New("user not found")
	errDuplicate   = errors.New("email or username already registered")
)

type account struct {
	user     model.User
	password []byte // bcrypt hash
	liked    map[int64]bool
	ratings  map[int64]model.Score
}

// catalog is the mutable state of the mock backend.
type catalog struct {
	mu       sync.RWMutex
	games    map[int64]model.Game
	accounts map[int64]*account
	byEmail  map[string]int64
	nextUser int64

	// seeded average per game, weighted as seedVotes ratings
	seeded map[int64]float64
}

const seedVotes = 100

func newCatalog(games []model.Game) *catalog {
	c := &catalog{
		games:    make(map[int64]model.Game, len(games)),
		accounts: make(map[int64]*account),
		byEmail:  make(map[string]int64),
		seeded:   make(map[int64]float64, len(games)),
	}
	for _, g := range games {
		c.games[g.ID] = g
		c.seeded[g.ID] = g.Rating
	}
	return c
}

func (c *catalog) addUser(u model.User, hash []byte) (model.User, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	email := strings.ToLower(u.Email)
	if _, ok := c.byEmail[email]; ok {
		return model.User{}, errDuplicate
	}
	for _, a := range c.accounts {
		if strings.EqualFold(a.user.Username, u.Username) {
			return model.User{}, errDuplicate
		}
	}
	c.nextUser++
	u.ID = c.nextUser
	u.Email = email
	c.accounts[u.ID] = &account{user: u, password: hash, liked: map[int64]bool{}, ratings: map[int64]model.Score{}}
	c.byEmail[email] = u.ID
	return u, nil
}

func (c *catalog) userByEmail(email string) (model.User, []byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	id, ok := c.byEmail[strings.ToLower(email)]
	if !ok {
		return model.User{}, nil, false
	}
	a := c.accounts[id]
	return a.user, a.password, true
}

func (c *catalog) user(id int64) (model.User, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	a, ok := c.accounts[id]
	if !ok {
		return model.User{}, false
	}
	return a.user, true
}

func (c *catalog) updateUser(id int64, p model.ProfileUpdate) (model.User, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	a, ok := c.accounts[id]
	if !ok {
		return model.User{}, errUnknownUser
	}
	email := strings.ToLower(p.Email)
	if other, taken := c.byEmail[email]; taken && other != id {
		return model.User{}, errDuplicate
	}
	delete(c.byEmail, a.user.Email)
	a.user.Username, a.user.Email = p.Username, email
	a.user.FullName, a.user.Phone, a.user.BirthDate, a.user.Bio = p.FullName, p.Phone, p.BirthDate, p.Bio
	c.byEmail[email] = id
	return a.user, nil
}

// game returns a game as seen by user uid (0 for anonymous) and counts a view.
func (c *catalog) game(id, uid int64) (model.Game, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	g, ok := c.games[id]
	if !ok {
		return model.Game{}, errUnknownGame
	}
	g.Views++
	c.games[id] = g
	if a, ok := c.accounts[uid]; ok {
		g.IsLiked = a.liked[id]
	}
	return g, nil
}

func (c *catalog) rate(uid, gid int64, v model.Score) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	g, ok := c.games[gid]
	if !ok {
		return errUnknownGame
	}
	a, ok := c.accounts[uid]
	if !ok {
		return errUnknownUser
	}
	a.ratings[gid] = v

	sum, n := c.seeded[gid]*seedVotes, float64(seedVotes)
	for _, other := range c.accounts {
		if r, rated := other.ratings[gid]; rated {
			sum += float64(r)
			n++
		}
	}
	g.Rating = math.Round(sum/n*100) / 100
	c.games[gid] = g
	return nil
}

func (c *catalog) setLiked(uid, gid int64, liked bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	g, ok := c.games[gid]
	if !ok {
		return errUnknownGame
	}
	a, ok := c.accounts[uid]
	if !ok {
		return errUnknownUser
	}
	if a.liked[gid] == liked {
		return nil
	}
	if liked {
		a.liked[gid] = true
		g.Likes++
	} else {
		delete(a.liked, gid)
		g.Likes--
	}
	c.games[gid] = g
	return nil
}

func (c *catalog) favorites(uid int64) []model.Game {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := []model.Game{}
	a, ok := c.accounts[uid]
	if !ok {
		return out
	}
	for gid := range a.liked {
		g := c.games[gid]
		g.IsLiked = true
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (c *catalog) ratings(uid int64) []model.UserRating {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := []model.UserRating{}
	if a, ok := c.accounts[uid]; ok {
		for gid, v := range a.ratings {
			out = append(out, model.UserRating{GameID: gid, Rating: v})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GameID < out[j].GameID })
	return out
}

func (c *catalog) all(uid int64) []model.Game {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]model.Game, 0, len(c.games))
	a := c.accounts[uid]
	for _, g := range c.games {
		if a != nil {
			g.IsLiked = a.liked[g.ID]
		}
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// recommended ranks the games uid has not rated: genres uid rated four
// stars or more come first, then by average rating.
func (c *catalog) recommended(uid int64, limit int) []model.Game {
	games := c.all(uid)

	c.mu.RLock()
	liked := map[string]int{}
	rated := map[int64]bool{}
	if a, ok := c.accounts[uid]; ok {
		for gid, v := range a.ratings {
			rated[gid] = true
			if v >= 4 {
				liked[c.games[gid].Genre]++
			}
		}
	}
	c.mu.RUnlock()

	out := make([]model.Game, 0, len(games))
	for _, g := range games {
		if !rated[g.ID] {
			out = append(out, g)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if li, lj := liked[out[i].Genre], liked[out[j].Genre]; li != lj {
			return li > lj
		}
		return out[i].Rating > out[j].Rating
	})
	return head(out, limit)
}

func (c *catalog) popular(uid int64, limit int) []model.Game {
	out := c.all(uid)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Likes > out[j].Likes })
	return head(out, limit)
}

func (c *catalog) newest(uid int64, limit int) []model.Game {
	out := c.all(uid)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ReleaseDate > out[j].ReleaseDate })
	return head(out, limit)
}

func (c *catalog) search(uid int64, f model.SearchFilters) []model.Game {
	q := strings.ToLower(strings.TrimSpace(f.Query))
	out := []model.Game{}
	for _, g := range c.all(uid) {
		switch {
		case q != "" && !strings.Contains(strings.ToLower(g.Title), q) && !strings.Contains(strings.ToLower(g.Description), q):
		case f.Genre != "" && !strings.EqualFold(g.Genre, f.Genre):
		case f.Platform != "" && !strings.EqualFold(g.Platform, f.Platform):
		case f.MinRating > 0 && g.Rating < f.MinRating:
		case f.MaxPrice > 0 && g.Price > f.MaxPrice:
		default:
			out = append(out, g)
		}
	}

	var less func(a, b model.Game) bool
	switch f.SortBy {
	case model.SortRating:
		less = func(a, b model.Game) bool { return a.Rating > b.Rating }
	case model.SortPriceLow:
		less = func(a, b model.Game) bool { return a.Price < b.Price }
	case model.SortPriceHigh:
		less = func(a, b model.Game) bool { return a.Price > b.Price }
	case model.SortNewest:
		less = func(a, b model.Game) bool { return a.ReleaseDate > b.ReleaseDate }
	case model.SortPopular:
		less = func(a, b model.Game) bool { return a.Likes > b.Likes }
	}
	if less != nil {
		sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	}
	return out
}

func head(games []model.Game, limit int) []model.Game {
	if limit > 0 && len(games) > limit {
		return games[:limit]
	}
	return games
}

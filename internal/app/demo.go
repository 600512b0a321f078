package service

import "github.com/okian/gamerec/internal/domain/model"

// demoGames fills catalog lists the backend failed to serve. A fresh slice
// is returned on every call.
func demoGames() []model.Game {
	return []model.Game{
		{
			ID:          1,
			Title:       "The Witcher 3: Wild Hunt",
			Description: "An action role-playing game with a vast open world and compelling story.",
			Genre:       "RPG",
			Platform:    "PC/PS4/Xbox",
			Rating:      4.8,
			Likes:       1250,
			Views:       8900,
			Price:       29.99,
		},
		{
			ID:          2,
			Title:       "Red Dead Redemption 2",
			Description: "An epic tale of life in America's unforgiving heartland.",
			Genre:       "Action",
			Platform:    "PC/PS4/Xbox",
			Rating:      4.7,
			Likes:       1100,
			Views:       7600,
			Price:       39.99,
		},
		{
			ID:          3,
			Title:       "Cyberpunk 2077",
			Description: "An open-world action-adventure story set in Night City.",
			Genre:       "RPG",
			Platform:    "PC/PS5/Xbox",
			Rating:      4.2,
			Likes:       850,
			Views:       5400,
			Price:       49.99,
		},
		{
			ID:          4,
			Title:       "Elden Ring",
			Description: "A fantasy action RPG set in the Lands Between.",
			Genre:       "Action RPG",
			Platform:    "PC/PS5/Xbox",
			Rating:      4.9,
			Likes:       1400,
			Views:       9200,
			Price:       59.99,
		},
	}
}

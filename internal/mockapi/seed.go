package mockapi

import "github.com/okian/gamerec/internal/domain/model"

// seedGames is the catalog every mock server starts with.
func seedGames() []model.Game {
	return []model.Game{
		{ID: 1, Title: "The Witcher 3: Wild Hunt", Genre: "RPG", Platform: "PC", Rating: 4.9, Likes: 1250, Views: 9800, Price: 29.99,
			Description: "Hunt monsters across a war-torn open world.", ReleaseDate: "2015-05-19", Developer: "CD Projekt Red", Publisher: "CD Projekt",
			Features: []string{"Open world", "Story rich"}},
		{ID: 2, Title: "Elden Ring", Genre: "RPG", Platform: "PC", Rating: 4.8, Likes: 1400, Views: 12000, Price: 59.99,
			Description: "Rise, Tarnished, in the Lands Between.", ReleaseDate: "2022-02-25", Developer: "FromSoftware", Publisher: "Bandai Namco"},
		{ID: 3, Title: "Baldur's Gate 3", Genre: "RPG", Platform: "PC", Rating: 4.9, Likes: 1320, Views: 10400, Price: 59.99,
			Description: "Gather your party and return to the Forgotten Realms.", ReleaseDate: "2023-08-03", Developer: "Larian Studios", Publisher: "Larian Studios"},
		{ID: 4, Title: "Forza Horizon 5", Genre: "Racing", Platform: "Xbox", Rating: 4.6, Likes: 870, Views: 7600, Price: 49.99,
			Description: "Explore the landscapes of Mexico at full throttle.", ReleaseDate: "2021-11-09", Developer: "Playground Games", Publisher: "Xbox Game Studios"},
		{ID: 5, Title: "Gran Turismo 7", Genre: "Racing", Platform: "PlayStation", Rating: 4.3, Likes: 640, Views: 5100, Price: 69.99,
			Description: "The real driving simulator.", ReleaseDate: "2022-03-04", Developer: "Polyphony Digital", Publisher: "Sony"},
		{ID: 6, Title: "Hades", Genre: "Roguelike", Platform: "PC", Rating: 4.8, Likes: 990, Views: 6900, Price: 24.99,
			Description: "Defy the god of the dead as you hack and slash out of the Underworld.", ReleaseDate: "2020-09-17", Developer: "Supergiant Games", Publisher: "Supergiant Games"},
		{ID: 7, Title: "Dead Cells", Genre: "Roguelike", Platform: "Switch", Rating: 4.5, Likes: 560, Views: 4300, Price: 24.99,
			Description: "Kill, die, learn, repeat.", ReleaseDate: "2018-08-07", Developer: "Motion Twin", Publisher: "Motion Twin"},
		{ID: 8, Title: "Stardew Valley", Genre: "Simulation", Platform: "PC", Rating: 4.8, Likes: 1100, Views: 8700, Price: 14.99,
			Description: "Inherit your grandfather's old farm plot.", ReleaseDate: "2016-02-26", Developer: "ConcernedApe", Publisher: "ConcernedApe"},
		{ID: 9, Title: "Cities: Skylines II", Genre: "Simulation", Platform: "PC", Rating: 3.6, Likes: 310, Views: 3900, Price: 49.99,
			Description: "Build the city of your dreams.", ReleaseDate: "2023-10-24", Developer: "Colossal Order", Publisher: "Paradox Interactive"},
		{ID: 10, Title: "Celeste", Genre: "Platformer", Platform: "Switch", Rating: 4.7, Likes: 720, Views: 5200, Price: 19.99,
			Description: "Help Madeline survive her inner demons on her climb up Celeste Mountain.", ReleaseDate: "2018-01-25", Developer: "Maddy Makes Games", Publisher: "Maddy Makes Games"},
		{ID: 11, Title: "Hollow Knight", Genre: "Platformer", Platform: "PC", Rating: 4.8, Likes: 1010, Views: 7300, Price: 14.99,
			Description: "Forge your own path in Hallownest.", ReleaseDate: "2017-02-24", Developer: "Team Cherry", Publisher: "Team Cherry"},
		{ID: 12, Title: "Counter-Strike 2", Genre: "Shooter", Platform: "PC", Rating: 4.1, Likes: 1500, Views: 15000, Price: 0,
			Description: "The next era of competitive tactical shooting.", ReleaseDate: "2023-09-27", Developer: "Valve", Publisher: "Valve"},
	}
}
